package scenes

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/decker502/curiosity/pkg/config"
	"github.com/decker502/curiosity/pkg/game"
	"github.com/decker502/curiosity/pkg/media"
	"github.com/decker502/curiosity/pkg/sensor"
	"github.com/decker502/curiosity/pkg/telemetry"
	"github.com/decker502/curiosity/pkg/types"
	"github.com/decker502/curiosity/pkg/zone"
	"github.com/hajimehoshi/ebiten/v2"
)

// fakeVideo records commands and never decodes frames
type fakeVideo struct {
	current  float64
	duration float64
	playing  bool
	updates  int
	calls    []string
}

func (v *fakeVideo) Update(dt float64)    { v.updates++ }
func (v *fakeVideo) Frame() *ebiten.Image { return nil }
func (v *fakeVideo) CurrentTime() float64 { return v.current }
func (v *fakeVideo) Duration() float64    { return v.duration }
func (v *fakeVideo) IsPlaying() bool      { return v.playing }

func (v *fakeVideo) Seek(t float64) error {
	v.calls = append(v.calls, "seek")
	v.current = t
	return nil
}

func (v *fakeVideo) PlayForward() error {
	v.calls = append(v.calls, "forward")
	v.playing = true
	return nil
}

func (v *fakeVideo) PlayBackward() error {
	v.calls = append(v.calls, "backward")
	v.playing = true
	return nil
}

func (v *fakeVideo) Pause() error {
	v.calls = append(v.calls, "pause")
	v.playing = false
	return nil
}

func (v *fakeVideo) called(name string) bool {
	for _, c := range v.calls {
		if c == name {
			return true
		}
	}
	return false
}

// fakeAudio is an in-memory heartbeat loop
type fakeAudio struct {
	playing bool
	rate    float64
	volume  float64
}

func (a *fakeAudio) Start() error              { a.playing = true; return nil }
func (a *fakeAudio) Stop() error               { a.playing = false; return nil }
func (a *fakeAudio) IsPlaying() bool           { return a.playing }
func (a *fakeAudio) SetRate(r float64) error   { a.rate = r; return nil }
func (a *fakeAudio) SetVolume(v float64) error { a.volume = v; return nil }

// countingCloser counts Close calls
type countingCloser struct {
	closed int
	err    error
}

func (c *countingCloser) Close() error {
	c.closed++
	return c.err
}

func testConfig() *config.Configuration {
	return &config.Configuration{
		MinDistance:             0,
		MaxDistance:             400,
		SaveZone:                50,
		DeathZone:               50,
		StartingVolume:          0.2,
		FinishingVolume:         1,
		WaitingVolume:           0.1,
		StartingHeartBeatSpeed:  1,
		FinishingHeartBeatSpeed: 2,
		FrameRate:               30,
		SaveActivateSeconds:     3,
		AutoSaveSeconds:         120,
		RestartIntervalSeconds:  10,
		InputThreshold:          1,
	}
}

type kioskFixture struct {
	scene  *KioskScene
	mach   *game.Machine
	main   *fakeVideo
	kill   *fakeVideo
	audio  *fakeAudio
	slider *sensor.Slider
	hub    *telemetry.Hub
	closer *countingCloser
	now    time.Time
}

func newKioskFixture(t *testing.T) *kioskFixture {
	t.Helper()
	cfg := testConfig()
	zones := zone.NewClassifier(cfg)

	f := &kioskFixture{
		main:   &fakeVideo{duration: 20},
		kill:   &fakeVideo{duration: 5},
		audio:  &fakeAudio{},
		slider: sensor.NewSlider(cfg.MinDistance, cfg.MaxDistance),
		hub:    telemetry.NewHub(time.Millisecond),
		closer: &countingCloser{},
		now:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	f.mach = game.NewMachine(cfg, zones, f.main)
	driver := media.NewDriver(cfg, zones, f.main, f.kill, f.audio)

	f.scene = NewKioskScene(KioskDeps{
		Config:    cfg,
		Machine:   f.mach,
		Driver:    driver,
		MainVideo: f.main,
		KillVideo: f.kill,
		Slider:    f.slider,
		Hub:       f.hub,
		Closers:   []io.Closer{f.closer},
		Now:       func() time.Time { return f.now },
	})
	return f
}

// tick advances the fake clock and runs one update
func (f *kioskFixture) tick(seconds float64) {
	f.now = f.now.Add(time.Duration(seconds * float64(time.Second)))
	f.scene.Update(seconds)
}

func (f *kioskFixture) enterWaiting(t *testing.T) {
	t.Helper()
	f.mach.Post(game.EventMediaReady{TotalSeconds: 20})
	f.tick(1.0 / 30)
	if got := f.mach.State(); got != types.StateWaiting {
		t.Fatalf("expected waiting, got %s", got)
	}
}

// TestKioskSceneLoadingToWaiting 测试媒体就绪后进入等待并重置滑块
func TestKioskSceneLoadingToWaiting(t *testing.T) {
	f := newKioskFixture(t)
	f.slider.Set(100)

	f.tick(1.0 / 30)
	if f.mach.State() != types.StateLoading {
		t.Fatalf("expected loading before media is ready, got %s", f.mach.State())
	}

	f.enterWaiting(t)

	if got := f.slider.Read(); got != 400 {
		t.Errorf("slider should be reset to max distance, got %v", got)
	}
	if !f.main.called("seek") {
		t.Error("expected main video to be reset")
	}
	if f.main.updates != 2 || f.kill.updates != 2 {
		t.Errorf("expected both player clocks to advance each tick, got %d/%d", f.main.updates, f.kill.updates)
	}
	if !f.audio.playing || f.audio.volume != 0.1 {
		t.Errorf("heartbeat should idle at waiting volume, playing=%v volume=%v", f.audio.playing, f.audio.volume)
	}

	latest := f.hub.Latest()
	if latest.State != "waiting" || latest.RoundID == "" || latest.Sensor != "slider" {
		t.Errorf("unexpected telemetry snapshot: %+v", latest)
	}
}

// TestKioskSceneKillRound 测试完整的死亡流程：开始 → 死亡 → 统计 → 等待
func TestKioskSceneKillRound(t *testing.T) {
	f := newKioskFixture(t)
	f.enterWaiting(t)

	f.slider.Set(370)
	f.tick(1.0 / 30)
	if f.mach.State() != types.StateStarted {
		t.Fatalf("expected started, got %s", f.mach.State())
	}

	f.slider.Set(200)
	f.tick(1.0 / 30)
	if !f.main.called("forward") {
		t.Error("approaching should scrub the video forward")
	}

	f.slider.Set(10)
	f.tick(1.0 / 30)
	if f.mach.State() != types.StateKilled {
		t.Fatalf("expected killed, got %s", f.mach.State())
	}
	if !f.kill.called("forward") {
		t.Error("kill segment should start playing")
	}
	if f.audio.playing {
		t.Error("heartbeat should stop on kill")
	}

	f.mach.Post(game.EventKillSegmentFinished{})
	f.tick(1.0 / 30)
	if f.mach.State() != types.StateStatsKilled {
		t.Fatalf("expected stats_killed, got %s", f.mach.State())
	}
	if got := f.hub.Latest().TotalKills; got != 1 {
		t.Errorf("expected 1 kill in telemetry, got %d", got)
	}

	f.tick(11)
	if f.mach.State() != types.StateWaiting {
		t.Fatalf("expected waiting after restart interval, got %s", f.mach.State())
	}
	if got := f.slider.Read(); got != 0 {
		t.Errorf("slider should be reset to 0 after stats, got %v", got)
	}
}

// TestKioskSceneWithoutSource 测试没有读数来源时保持状态机当前距离
func TestKioskSceneWithoutSource(t *testing.T) {
	cfg := testConfig()
	zones := zone.NewClassifier(cfg)
	main := &fakeVideo{duration: 20}
	mach := game.NewMachine(cfg, zones, main)
	scene := NewKioskScene(KioskDeps{
		Config:  cfg,
		Machine: mach,
		Driver:  media.NewDriver(cfg, zones, main, nil, &fakeAudio{}),
	})

	mach.Post(game.EventMediaReady{TotalSeconds: 20})
	scene.Update(1.0 / 30)
	scene.Update(1.0 / 30)

	if mach.State() != types.StateWaiting {
		t.Errorf("expected waiting, got %s", mach.State())
	}
	if mach.Distance() != cfg.MaxDistance {
		t.Errorf("expected distance to stay at max, got %v", mach.Distance())
	}
}

// TestKioskSceneClose 测试关闭释放资源且只释放一次
func TestKioskSceneClose(t *testing.T) {
	f := newKioskFixture(t)
	f.closer.err = errors.New("boom")

	if err := f.scene.Close(); err == nil {
		t.Error("expected close error to be reported")
	}
	if err := f.scene.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}
	if f.closer.closed != 1 {
		t.Errorf("expected 1 close, got %d", f.closer.closed)
	}

	f.scene.Update(1.0 / 30)
	if f.main.updates != 0 {
		t.Error("update after close should not touch players")
	}
}

// TestKioskSceneSwitchCloses 测试场景管理器替换场景时释放资源
func TestKioskSceneSwitchCloses(t *testing.T) {
	f := newKioskFixture(t)
	sm := NewSceneManager()
	sm.SwitchTo(f.scene)

	if err := sm.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if f.closer.closed != 1 {
		t.Errorf("expected scene resources to be released, got %d", f.closer.closed)
	}
}

// TestLetterbox 测试等比缩放居中
func TestLetterbox(t *testing.T) {
	tests := []struct {
		name                   string
		srcW, srcH, dstW, dstH int
		scale, offX, offY      float64
	}{
		{"same size", 1920, 1080, 1920, 1080, 1, 0, 0},
		{"half size", 960, 540, 1920, 1080, 2, 0, 0},
		{"pillarbox", 1080, 1080, 1920, 1080, 1, 420, 0},
		{"letterbox", 1920, 540, 1920, 1080, 1, 0, 270},
		{"empty source", 0, 0, 1920, 1080, 1, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scale, offX, offY := letterbox(tt.srcW, tt.srcH, tt.dstW, tt.dstH)
			if scale != tt.scale || offX != tt.offX || offY != tt.offY {
				t.Errorf("letterbox = (%v, %v, %v), want (%v, %v, %v)", scale, offX, offY, tt.scale, tt.offX, tt.offY)
			}
		})
	}
}

// TestSliderFraction 测试光标位置到滑块比例的换算
func TestSliderFraction(t *testing.T) {
	width := config.ScreenWidth
	x0, x1 := sliderTrack(width)

	tests := []struct {
		name string
		x    float64
		want float64
	}{
		{"left of track", x0 - 50, 0},
		{"track start", x0, 0},
		{"middle", (x0 + x1) / 2, 0.5},
		{"track end", x1, 1},
		{"right of track", x1 + 50, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sliderFraction(tt.x, width); got != tt.want {
				t.Errorf("sliderFraction(%v) = %v, want %v", tt.x, got, tt.want)
			}
		})
	}
}

// TestStatsText 测试统计画面文字
func TestStatsText(t *testing.T) {
	count, label := statsText(types.StateStatsSaved, 3, 7)
	if count != "3" || label != config.SavedLabel {
		t.Errorf("saved stats = %q %q", count, label)
	}
	count, label = statsText(types.StateStatsKilled, 3, 7)
	if count != "7" || label != config.KilledLabel {
		t.Errorf("killed stats = %q %q", count, label)
	}
	count, label = statsText(types.StateStarted, 3, 7)
	if count != "" || label != "" {
		t.Errorf("non-stats state should have no text, got %q %q", count, label)
	}
}

// TestDebugText 测试调试信息内容
func TestDebugText(t *testing.T) {
	info := debugInfo{
		snap: game.Snapshot{
			State:             types.StateStarted,
			RoundID:           "0123456789abcdef",
			Distance:          321.5,
			InSaveZone:        false,
			TotalSeconds:      20,
			TargetSeconds:     3.93,
			Stats:             game.Stats{TotalSaves: 2, TotalKills: 1},
			SaveCountdown:     1.5,
			AutoSaveCountdown: 100,
			RestartCountdown:  -1,
		},
		current:   3.9,
		direction: "forward",
		sensor:    "slider",
	}

	out := strings.Join(debugText(info), "\n")
	for _, want := range []string{
		"state: started",
		"round: 01234567",
		"distance: 321.5",
		"forward",
		"saves: 2  kills: 1",
		"save in 1.5s",
		"auto-save in 100.0s",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("debug text missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "restart in") {
		t.Error("unset countdown should not be shown")
	}

	info.snap.MediaErr = errors.New("missing video")
	lines := debugText(info)
	if last := lines[len(lines)-1]; last != "media error: missing video" {
		t.Errorf("expected media error line, got %q", last)
	}
}

// TestShortID 测试 ID 截断
func TestShortID(t *testing.T) {
	if got := shortID(""); got != "-" {
		t.Errorf("shortID(\"\") = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID(abc) = %q", got)
	}
	if got := shortID("0123456789"); got != "01234567" {
		t.Errorf("shortID = %q", got)
	}
}
