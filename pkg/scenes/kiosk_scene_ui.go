package scenes

import (
	"fmt"
	"image/color"
	"math"

	"github.com/decker502/curiosity/pkg/config"
	"github.com/decker502/curiosity/pkg/types"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	statsDimColor    = color.RGBA{R: 0, G: 0, B: 0, A: 170}
	labelColor       = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	errorColor       = color.RGBA{R: 255, G: 96, B: 96, A: 255}
	sliderTrackColor = color.RGBA{R: 255, G: 255, B: 255, A: 90}
	sliderSaveColor  = color.RGBA{R: 80, G: 200, B: 120, A: 160}
	sliderDeathColor = color.RGBA{R: 220, G: 60, B: 60, A: 160}
	sliderKnobColor  = color.RGBA{R: 255, G: 255, B: 255, A: 230}
	debugBackground  = color.RGBA{R: 0, G: 0, B: 0, A: 150}
)

// Debug text metrics (ebitenutil debug font)
const (
	debugLineHeight   = 16
	debugCharWidth    = 6
	debugPaddingPixel = 6
)

// Draw renders the current frame.
func (s *KioskScene) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	if s.closed {
		return
	}

	state := s.machine.State()
	switch state {
	case types.StateLoading:
		s.drawLoading(screen)
	case types.StateKilled, types.StateStatsKilled:
		s.drawVideo(screen, s.killVideo)
	default:
		s.drawVideo(screen, s.mainVideo)
	}

	if state.IsStats() {
		s.drawStats(screen, state)
	}
	if s.showSlider {
		s.drawSlider(screen)
	}
	if s.cfg.DebugOverlay {
		s.drawDebugOverlay(screen)
	}
}

// drawVideo draws the player's current frame letterboxed into the screen.
func (s *KioskScene) drawVideo(screen *ebiten.Image, v Video) {
	if v == nil {
		return
	}
	frame := v.Frame()
	if frame == nil {
		return
	}
	b := frame.Bounds()
	sb := screen.Bounds()
	scale, offX, offY := letterbox(b.Dx(), b.Dy(), sb.Dx(), sb.Dy())

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offX, offY)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(frame, op)
}

// letterbox returns the uniform scale and offset that fit a src rectangle inside dst.
func letterbox(srcW, srcH, dstW, dstH int) (scale, offX, offY float64) {
	if srcW <= 0 || srcH <= 0 {
		return 1, 0, 0
	}
	scale = math.Min(float64(dstW)/float64(srcW), float64(dstH)/float64(srcH))
	offX = (float64(dstW) - float64(srcW)*scale) / 2
	offY = (float64(dstH) - float64(srcH)*scale) / 2
	return scale, offX, offY
}

// statsText returns the count and label shown on a stats screen.
func statsText(state types.GameState, saves, kills int) (count, label string) {
	switch state {
	case types.StateStatsSaved:
		return fmt.Sprintf("%d", saves), config.SavedLabel
	case types.StateStatsKilled:
		return fmt.Sprintf("%d", kills), config.KilledLabel
	default:
		return "", ""
	}
}

// drawStats dims the frame and draws the lifetime count with its label.
func (s *KioskScene) drawStats(screen *ebiten.Image, state types.GameState) {
	sb := screen.Bounds()
	vector.DrawFilledRect(screen, 0, 0, float32(sb.Dx()), float32(sb.Dy()), statsDimColor, false)

	stats := s.machine.Stats()
	count, label := statsText(state, stats.TotalSaves, stats.TotalKills)
	cx := float64(sb.Dx()) / 2
	drawCentered(screen, count, s.countFont, cx, config.StatsCountY, labelColor)
	drawCentered(screen, label, s.labelFont, cx, config.StatsLabelY, labelColor)
}

// drawLoading draws the loading message and, if loading failed, the asset fault.
func (s *KioskScene) drawLoading(screen *ebiten.Image) {
	cx := float64(screen.Bounds().Dx()) / 2
	drawCentered(screen, config.LoadingLabel, s.loadingFont, cx, config.LoadingTextY, labelColor)
	if err := s.machine.MediaErr(); err != nil {
		drawCentered(screen, err.Error(), s.errorFont, cx, config.LoadingErrorY, errorColor)
	}
}

// drawCentered draws text centered on (cx, cy).
// Without a font face it falls back to debug text.
func drawCentered(screen *ebiten.Image, str string, face *text.GoTextFace, cx, cy float64, clr color.Color) {
	if str == "" {
		return
	}
	if face == nil {
		ebitenutil.DebugPrintAt(screen, str, int(cx)-len(str)*debugCharWidth/2, int(cy))
		return
	}

	width, height := text.Measure(str, face, 0)
	op := &text.DrawOptions{}
	op.GeoM.Translate(cx-width/2, cy-height/2)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(screen, str, face, op)
}

// sliderTrack returns the horizontal extent of the slider track.
func sliderTrack(screenWidth int) (x0, x1 float64) {
	return config.SliderMarginX, float64(screenWidth) - config.SliderMarginX
}

// sliderFraction converts a cursor x position into a slider fraction in [0, 1].
func sliderFraction(x float64, screenWidth int) float64 {
	x0, x1 := sliderTrack(screenWidth)
	if x1 <= x0 {
		return 0
	}
	return math.Max(0, math.Min(1, (x-x0)/(x1-x0)))
}

// handleSliderInput moves the simulation slider with the arrow keys or a mouse/touch drag.
func (s *KioskScene) handleSliderInput() {
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		s.slider.Nudge(-config.SliderKeyStep)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		s.slider.Nudge(config.SliderKeyStep)
	}

	p := readPointer()
	x, dragging := s.drag.Update(p, func(_, y int) bool {
		return math.Abs(float64(y)-config.SliderY) <= config.SliderKnobRadius*2
	})
	if dragging {
		s.slider.SetFraction(sliderFraction(float64(x), config.ScreenWidth))
	}
}

// drawSlider draws the track with both zones marked and the knob at the current reading.
func (s *KioskScene) drawSlider(screen *ebiten.Image) {
	x0, x1 := sliderTrack(screen.Bounds().Dx())
	width := x1 - x0
	y := config.SliderY - config.SliderTrackHeight/2
	h := float32(config.SliderTrackHeight)

	vector.DrawFilledRect(screen, float32(x0), float32(y), float32(width), h, sliderTrackColor, false)

	minD, maxD := s.slider.Range()
	span := maxD - minD
	if span > 0 {
		saveW := width * s.cfg.SaveZone / span
		deathW := width * s.cfg.DeathZone / span
		vector.DrawFilledRect(screen, float32(x1-saveW), float32(y), float32(saveW), h, sliderSaveColor, false)
		vector.DrawFilledRect(screen, float32(x0), float32(y), float32(deathW), h, sliderDeathColor, false)
	}

	knobX := x0 + width*s.slider.Fraction()
	vector.DrawFilledCircle(screen, float32(knobX), float32(config.SliderY), float32(config.SliderKnobRadius), sliderKnobColor, true)
}
