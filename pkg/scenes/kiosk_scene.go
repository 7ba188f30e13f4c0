package scenes

import (
	"errors"
	"io"
	"log"
	"time"

	"github.com/decker502/curiosity/pkg/config"
	"github.com/decker502/curiosity/pkg/game"
	"github.com/decker502/curiosity/pkg/media"
	"github.com/decker502/curiosity/pkg/sensor"
	"github.com/decker502/curiosity/pkg/telemetry"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// Video is a tick-driven player that the scene advances and draws.
// *media.ClipVideo satisfies it.
type Video interface {
	Update(dt float64)
	CurrentTime() float64
	Frame() *ebiten.Image
}

// SensorStatus reports the health of a hardware distance source.
// *sensor.SerialReader satisfies it.
type SensorStatus interface {
	State() string
	ReadingsPerSecond() int
}

// KioskDeps holds everything the kiosk scene drives each tick.
type KioskDeps struct {
	Config    *config.Configuration
	Machine   *game.Machine
	Driver    *media.Driver
	MainVideo Video
	KillVideo Video

	// Source is polled once per tick. Slider is non-nil when it is the active source.
	Source sensor.Source
	Slider *sensor.Slider
	Sensor SensorStatus

	// Optional.
	Hub       *telemetry.Hub
	Resources *ResourceManager
	Closers   []io.Closer
	Now       func() time.Time
}

// KioskScene runs the installation: read distance, advance the game, sync media, publish telemetry.
type KioskScene struct {
	cfg     *config.Configuration
	machine *game.Machine
	driver  *media.Driver

	mainVideo Video
	killVideo Video

	source     sensor.Source
	slider     *sensor.Slider
	sensor     SensorStatus
	showSlider bool
	drag       dragTracker

	hub     *telemetry.Hub
	closers []io.Closer
	now     func() time.Time

	// Font resources (nil falls back to debug text)
	countFont   *text.GoTextFace
	labelFont   *text.GoTextFace
	loadingFont *text.GoTextFace
	errorFont   *text.GoTextFace

	closed bool
}

// NewKioskScene creates the kiosk scene.
//
// Parameters:
//   - deps: the machine, driver, players and distance source to wire together
//
// Returns:
//   - *KioskScene: the scene, ready to be passed to SceneManager.SwitchTo
func NewKioskScene(deps KioskDeps) *KioskScene {
	s := &KioskScene{
		cfg:        deps.Config,
		machine:    deps.Machine,
		driver:     deps.Driver,
		mainVideo:  deps.MainVideo,
		killVideo:  deps.KillVideo,
		source:     deps.Source,
		slider:     deps.Slider,
		sensor:     deps.Sensor,
		showSlider: deps.Config.ShowSimulationSlider && deps.Slider != nil,
		hub:        deps.Hub,
		closers:    deps.Closers,
		now:        deps.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.source == nil && s.slider != nil {
		s.source = s.slider
	}
	if deps.Resources != nil {
		s.loadFonts(deps.Resources)
	}
	return s
}

// loadFonts loads the label fonts; a failure only degrades drawing to debug text.
func (s *KioskScene) loadFonts(rm *ResourceManager) {
	load := func(size float64) *text.GoTextFace {
		face, err := rm.LoadFont(size)
		if err != nil {
			log.Printf("[KioskScene] Warning: Failed to load font (size %.0f): %v", size, err)
			return nil
		}
		return face
	}
	s.countFont = load(config.StatsCountFontSize)
	s.labelFont = load(config.StatsLabelFontSize)
	s.loadingFont = load(config.LoadingTextFontSize)
	s.errorFont = load(config.LoadingErrorFontSize)
}

// Update runs one tick.
//
// Order: advance the player clocks, read the distance, advance the machine,
// reset the source if asked to, apply the result to the media, publish telemetry.
func (s *KioskScene) Update(deltaTime float64) {
	if s.closed {
		return
	}

	if s.mainVideo != nil {
		s.mainVideo.Update(deltaTime)
	}
	if s.killVideo != nil {
		s.killVideo.Update(deltaTime)
	}

	if s.showSlider {
		s.handleSliderInput()
	}

	distance := s.machine.Distance()
	if s.source != nil {
		distance = s.source.Read()
	}

	now := s.now()
	res := s.machine.Advance(distance, now)

	for _, intent := range res.Intents {
		if intent.Kind != game.IntentResetDistance {
			continue
		}
		if r, ok := s.source.(sensor.Resetter); ok {
			r.Reset(intent.Value)
		}
	}

	s.driver.Apply(res, s.machine.Distance())
	s.publish(res, now)
}

// publish sends the transition (if any) and the current snapshot to the telemetry hub.
func (s *KioskScene) publish(res game.Result, now time.Time) {
	if s.hub == nil {
		return
	}
	if res.Changed {
		intents := make([]string, len(res.Intents))
		for i, intent := range res.Intents {
			intents[i] = intent.String()
		}
		s.hub.PublishTransition(telemetry.Transition{
			RoundID: s.machine.RoundID(),
			Time:    now,
			From:    res.From.State().String(),
			To:      res.To.State().String(),
			Intents: intents,
		})
	}
	s.hub.Publish(s.telemetrySnapshot(now))
}

// telemetrySnapshot combines the machine, driver and sensor state.
func (s *KioskScene) telemetrySnapshot(now time.Time) telemetry.Snapshot {
	snap := s.machine.Snapshot(now)
	out := telemetry.Snapshot{
		RoundID:           snap.RoundID,
		Time:              now,
		State:             snap.State.String(),
		Distance:          snap.Distance,
		InSaveZone:        snap.InSaveZone,
		InKillZone:        snap.InKillZone,
		TargetSeconds:     snap.TargetSeconds,
		TotalSeconds:      snap.TotalSeconds,
		Direction:         s.driver.Direction().String(),
		HeartbeatRate:     s.driver.Rate(),
		HeartbeatVolume:   s.driver.Volume(),
		SaveCountdown:     snap.SaveCountdown,
		AutoSaveCountdown: snap.AutoSaveCountdown,
		RestartCountdown:  snap.RestartCountdown,
		TotalSaves:        snap.Stats.TotalSaves,
		TotalKills:        snap.Stats.TotalKills,
	}
	if s.mainVideo != nil {
		out.CurrentSeconds = s.mainVideo.CurrentTime()
	}
	out.Sensor, out.ReadingsPerSecond = s.sensorState()
	if snap.MediaErr != nil {
		out.MediaError = snap.MediaErr.Error()
	}
	return out
}

// sensorState describes the active distance source.
func (s *KioskScene) sensorState() (string, int) {
	if s.sensor != nil {
		return s.sensor.State(), s.sensor.ReadingsPerSecond()
	}
	return "slider", 0
}

// Close releases the players and audio after the tick loop has stopped.
// It implements io.Closer so SceneManager releases the scene when it is replaced.
func (s *KioskScene) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for _, c := range s.closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	log.Printf("[KioskScene] Closed (%d resources)", len(s.closers))
	return errors.Join(errs...)
}
