package scenes

import (
	"fmt"
	"strings"

	"github.com/decker502/curiosity/pkg/config"
	"github.com/decker502/curiosity/pkg/game"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// debugInfo is everything the overlay prints.
type debugInfo struct {
	snap      game.Snapshot
	current   float64
	direction string
	rate      float64
	volume    float64
	sensor    string
	readings  int
	tps       float64
}

// debugText formats the overlay lines.
func debugText(d debugInfo) []string {
	lines := []string{
		fmt.Sprintf("state: %s  round: %s", d.snap.State, shortID(d.snap.RoundID)),
		fmt.Sprintf("distance: %.1f  save zone: %t  kill zone: %t", d.snap.Distance, d.snap.InSaveZone, d.snap.InKillZone),
		fmt.Sprintf("video: %.2f / %.2f  target: %.2f  %s", d.current, d.snap.TotalSeconds, d.snap.TargetSeconds, d.direction),
		fmt.Sprintf("heartbeat: rate %.2f  volume %.2f", d.rate, d.volume),
		fmt.Sprintf("saves: %d  kills: %d", d.snap.Stats.TotalSaves, d.snap.Stats.TotalKills),
		fmt.Sprintf("sensor: %s  %d/s  tps: %.1f", d.sensor, d.readings, d.tps),
	}

	var timers []string
	if d.snap.SaveCountdown >= 0 {
		timers = append(timers, fmt.Sprintf("save in %.1fs", d.snap.SaveCountdown))
	}
	if d.snap.AutoSaveCountdown >= 0 {
		timers = append(timers, fmt.Sprintf("auto-save in %.1fs", d.snap.AutoSaveCountdown))
	}
	if d.snap.RestartCountdown >= 0 {
		timers = append(timers, fmt.Sprintf("restart in %.1fs", d.snap.RestartCountdown))
	}
	if len(timers) > 0 {
		lines = append(lines, strings.Join(timers, "  "))
	}

	if d.snap.MediaErr != nil {
		lines = append(lines, "media error: "+d.snap.MediaErr.Error())
	}
	return lines
}

// shortID trims a uuid for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	if id == "" {
		return "-"
	}
	return id
}

// drawDebugOverlay prints the state, timers and media positions in the top-left corner.
func (s *KioskScene) drawDebugOverlay(screen *ebiten.Image) {
	info := debugInfo{
		snap:      s.machine.Snapshot(s.now()),
		direction: s.driver.Direction().String(),
		rate:      s.driver.Rate(),
		volume:    s.driver.Volume(),
		tps:       ebiten.ActualTPS(),
	}
	if s.mainVideo != nil {
		info.current = s.mainVideo.CurrentTime()
	}
	info.sensor, info.readings = s.sensorState()

	lines := debugText(info)
	width := 0
	for _, line := range lines {
		width = max(width, len(line)*debugCharWidth)
	}

	x, y := config.DebugOverlayX, config.DebugOverlayY
	vector.DrawFilledRect(screen,
		float32(x-debugPaddingPixel),
		float32(y-debugPaddingPixel),
		float32(width+2*debugPaddingPixel),
		float32(len(lines)*debugLineHeight+2*debugPaddingPixel),
		debugBackground, false)

	for i, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, x, y+i*debugLineHeight)
	}
}
