// Package app 提供装置应用的核心包装器
//
// 该包把各个组件组装在一起：配置、状态机、媒体驱动、距离来源、遥测和场景，
// 并实现 ebiten.Game 接口。main.go 只负责解析命令行和加载配置。
package app

import (
	"errors"
	"image/color"
	"io"
	"log"

	"github.com/decker502/curiosity/internal/video"
	"github.com/decker502/curiosity/pkg/config"
	"github.com/decker502/curiosity/pkg/game"
	"github.com/decker502/curiosity/pkg/media"
	"github.com/decker502/curiosity/pkg/scenes"
	"github.com/decker502/curiosity/pkg/telemetry"
	"github.com/decker502/curiosity/pkg/zone"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// audioSampleRate ebiten 音频上下文采样率
const audioSampleRate = 48000

// Options 定义应用启动选项
type Options struct {
	// Config 已加载并校验的配置
	Config *config.Configuration
	// Verbose 启用详细日志输出
	Verbose bool
	// BaseDir 相对资源路径的基准目录（为空时使用工作目录）
	BaseDir string
}

// App 是装置应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	cfg          *config.Configuration
	sceneManager *scenes.SceneManager
	input        *distanceInput
	hub          *telemetry.Hub
	verbose      bool
	deltaTime    float64

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
	closed                   bool
}

// ConfigureLogging 配置日志输出
// 非 verbose 模式下丢弃所有日志
func ConfigureLogging(verbose bool) {
	if !verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}
}

// NewApp 创建并初始化装置应用
//
// 媒体在后台加载，加载结果通过事件队列通知状态机；
// 资源缺失不会让 NewApp 失败，状态机停留在 Loading 并显示故障信息。
func NewApp(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("app: configuration is required")
	}

	// 初始化音频上下文
	audioContext := audio.NewContext(audioSampleRate)

	// 创建资源管理器
	resourceManager := scenes.NewResourceManager(audioContext, opts.BaseDir)

	zones := zone.NewClassifier(cfg)
	mainVideo := media.NewClipVideo("main")
	killVideo := media.NewClipVideo("kill")
	machine := game.NewMachine(cfg, zones, mainVideo)

	killVideo.SetOnFinished(func() {
		machine.Post(game.EventKillSegmentFinished{})
	})
	loadMainVideo(resourceManager, cfg.VideoFile, mainVideo, machine)
	loadKillVideo(resourceManager, cfg.KillVideoFile, killVideo)

	closers := []io.Closer{mainVideo, killVideo}
	var heartbeat media.AudioLoop
	if hb := loadHeartbeat(resourceManager, cfg.HeartbeatFile); hb != nil {
		heartbeat = hb
		closers = append(closers, hb)
	}

	driver := media.NewDriver(cfg, zones, mainVideo, killVideo, heartbeat)

	input := newDistanceInput(cfg, nil)
	hub := startTelemetry(cfg.TelemetryAddr)

	scene := scenes.NewKioskScene(scenes.KioskDeps{
		Config:    cfg,
		Machine:   machine,
		Driver:    driver,
		MainVideo: mainVideo,
		KillVideo: killVideo,
		Source:    input.source,
		Slider:    input.slider,
		Sensor:    input.status(),
		Hub:       hub,
		Resources: resourceManager,
		Closers:   closers,
	})

	// 创建场景管理器
	sceneManager := scenes.NewSceneManager()
	sceneManager.SwitchTo(scene)

	log.Printf("[App] Started (tps=%d, fullscreen=%v, slider=%v, telemetry=%q)",
		cfg.TPS(), cfg.FullScreen, cfg.ShowSimulationSlider, cfg.TelemetryAddr)

	return &App{
		cfg:          cfg,
		sceneManager: sceneManager,
		input:        input,
		hub:          hub,
		verbose:      opts.Verbose,
		deltaTime:    1.0 / float64(cfg.TPS()),
	}, nil
}

// openFrameSource 用 OpenCV 打开视频文件
func openFrameSource(path string) (media.FrameSource, error) {
	f, err := video.Open(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// loadMainVideo 后台加载主视频，结果投递给状态机
func loadMainVideo(rm *scenes.ResourceManager, path string, v *media.ClipVideo, machine *game.Machine) {
	resolved, err := rm.CheckAsset(path)
	if err != nil {
		log.Printf("[App] Error: Main video unavailable: %v", err)
		machine.Post(game.EventMediaFailed{Err: err})
		return
	}
	v.Load(resolved, openFrameSource,
		func(duration float64) {
			machine.Post(game.EventMediaReady{TotalSeconds: duration})
		},
		func(err error) {
			machine.Post(game.EventMediaFailed{Err: err})
		},
	)
}

// loadKillVideo 后台加载死亡片段
// 加载失败时片段时长为 0，播放立即结束，游戏流程不受影响
func loadKillVideo(rm *scenes.ResourceManager, path string, v *media.ClipVideo) {
	resolved, err := rm.CheckAsset(path)
	if err != nil {
		log.Printf("[App] Warning: Kill video unavailable: %v", err)
		return
	}
	v.Load(resolved, openFrameSource,
		func(duration float64) {
			log.Printf("[App] Kill video ready (%.2fs)", duration)
		},
		func(err error) {
			log.Printf("[App] Warning: Kill video failed to load: %v", err)
		},
	)
}

// loadHeartbeat 加载心跳循环，失败时返回 nil（静音运行）
func loadHeartbeat(rm *scenes.ResourceManager, path string) *media.HeartbeatLoop {
	resolved, err := rm.CheckAsset(path)
	if err != nil {
		log.Printf("[App] Warning: Heartbeat unavailable: %v", err)
		return nil
	}
	hb, err := media.LoadHeartbeat(rm.AudioContext(), resolved)
	if err != nil {
		log.Printf("[App] Warning: Heartbeat failed to load: %v", err)
		return nil
	}
	return hb
}

// startTelemetry 启动遥测服务，地址为空或监听失败时返回 nil
func startTelemetry(addr string) *telemetry.Hub {
	if addr == "" {
		return nil
	}
	hub := telemetry.NewHub(telemetry.DefaultPublishInterval)
	if err := hub.Start(addr); err != nil {
		log.Printf("[App] Warning: Telemetry disabled: %v", err)
		return nil
	}
	return hub
}

// Update 更新装置逻辑
// 每个 tick 调用一次（频率由配置的 frameRate 决定）
func (a *App) Update() error {
	if a.closed {
		return ebiten.Termination
	}

	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(config.WindowWidth, config.WindowHeight)
			log.Printf("[App] Delayed SetWindowSize(%d, %d)", config.WindowWidth, config.WindowHeight)
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		if ebiten.IsFullscreen() {
			// 退出全屏
			ebiten.SetFullscreen(false)
			if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
				ebiten.RestoreWindow()
			}
			// 延迟几帧后设置窗口大小，让窗口管理器有时间处理
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
			log.Printf("[App] Exit fullscreen, will reset window size in 3 frames")
		} else {
			ebiten.SetFullscreen(true)
		}
	}

	// Escape 只在窗口模式下退出，避免展出时被误触
	if !ebiten.IsFullscreen() && inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		log.Printf("[App] Escape pressed, quitting")
		return ebiten.Termination
	}

	a.sceneManager.Update(a.deltaTime)
	return nil
}

// Draw 绘制画面
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	// 先填充黑色背景（全屏时两边为黑色）
	screen.Fill(color.Black)
	// 使用线性滤波绘制画面，提高缩放质量
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸
// 此尺寸独立于实际窗口大小，Ebitengine 会自动处理缩放
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return config.ScreenWidth, config.ScreenHeight
}

// Close 在 tick 循环结束后释放所有资源
//
// 顺序：遥测 → 距离来源 → 场景（播放器和音频）。
// 重复调用是安全的。
func (a *App) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true

	var errs []error
	if a.hub != nil {
		if err := a.hub.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.input != nil {
		if err := a.input.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.sceneManager.Close(); err != nil {
		errs = append(errs, err)
	}
	log.Printf("[App] Closed")
	return errors.Join(errs...)
}

// GetSceneManager 返回场景管理器
func (a *App) GetSceneManager() *scenes.SceneManager {
	return a.sceneManager
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
