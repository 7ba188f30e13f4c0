package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/decker502/curiosity/pkg/app"
	"github.com/decker502/curiosity/pkg/config"
	"github.com/decker502/curiosity/pkg/embedded"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/quasilyte/gdata/v2"
)

// appName gdata 用户数据目录名
const appName = "curiosity"

var (
	verbose       = flag.Bool("verbose", false, "显示详细日志")
	configPath    = flag.String("config", "", "配置文件路径（优先于用户配置和内嵌配置）")
	installConfig = flag.String("install-config", "", "校验并安装配置文件到用户数据目录后退出")
	portPath      = flag.String("port", "", "串口设备路径（覆盖配置中的 portPath）")
	windowed      = flag.Bool("windowed", false, "以窗口模式启动（覆盖配置中的 fullScreen）")
	baseDir       = flag.String("assets-dir", "", "媒体资源的基准目录（默认为工作目录）")
)

func main() {
	flag.Parse()

	app.ConfigureLogging(*verbose)

	// 初始化嵌入资源
	embedded.Init(dataFS)

	// 用户数据存储（不可用时只使用内嵌配置）
	var store config.UserStore
	manager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		log.Printf("[Main] Warning: User data store unavailable: %v", err)
	} else {
		store = manager
	}

	if *installConfig != "" {
		if err := installConfiguration(store, *installConfig); err != nil {
			fmt.Fprintf(os.Stderr, "install-config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("configuration installed")
		return
	}

	bundled, err := embedded.BundledConfiguration()
	if err != nil {
		log.Printf("[Main] Warning: Bundled configuration unavailable: %v", err)
	}

	cfg, source, err := config.Load(config.LoadOptions{
		Path:    *configPath,
		Store:   store,
		Bundled: bundled,
	})
	if err != nil {
		// 配置故障不可恢复
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	log.Printf("[Main] Configuration loaded from %s", source)

	if *portPath != "" {
		cfg.PortPath = *portPath
	}
	if *windowed {
		cfg.FullScreen = false
	}

	application, err := app.NewApp(app.Options{
		Config:  cfg,
		Verbose: *verbose,
		BaseDir: *baseDir,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	ebiten.SetTPS(cfg.TPS())
	ebiten.SetWindowTitle(config.WindowTitle)
	ebiten.SetWindowSize(config.WindowWidth, config.WindowHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(cfg.FullScreen)
	ebiten.SetCursorMode(cursorMode(cfg))

	runErr := ebiten.RunGame(application)

	// tick 循环已经结束，再释放播放器和音频
	if err := application.Close(); err != nil {
		log.Printf("[Main] Warning: Shutdown: %v", err)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "%v\n", runErr)
		os.Exit(1)
	}
}

// installConfiguration 校验并安装用户配置
func installConfiguration(store config.UserStore, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return config.Install(store, data)
}

// cursorMode 展出时（全屏且没有滑块）隐藏鼠标
func cursorMode(cfg *config.Configuration) ebiten.CursorModeType {
	if cfg.FullScreen && !cfg.ShowSimulationSlider {
		return ebiten.CursorModeHidden
	}
	return ebiten.CursorModeVisible
}
