package config

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Configuration 装置运行配置
//
// 每次运行只加载一次，加载后不可修改，通过构造函数显式传给状态机和媒体驱动。
// 字段名沿用旧版 configuration.json；yaml.v3 可以直接解析 JSON 文件。
type Configuration struct {
	// 距离（传感器量程）
	MaxDistance float64 `yaml:"maxDistance" json:"maxDistance"` // 最远距离，"安全"一端
	MinDistance float64 `yaml:"minDistance" json:"minDistance"` // 最近距离，"危险"一端

	// 游戏区域
	SaveZone  float64 `yaml:"saveZone" json:"saveZone"`   // 安全区宽度，从 MaxDistance 向内
	DeathZone float64 `yaml:"deathZone" json:"deathZone"` // 死亡区宽度，从 MinDistance 向外

	// 心跳音量
	StartingVolume  float64 `yaml:"startingVolume" json:"startingVolume"`   // 最远距离处音量
	FinishingVolume float64 `yaml:"finishingVolume" json:"finishingVolume"` // 最近距离处音量
	WaitingVolume   float64 `yaml:"waitingVolume" json:"waitingVolume"`     // 等待状态音量

	// 心跳速率
	StartingHeartBeatSpeed  float64 `yaml:"startingHeartBeatSpeed" json:"startingHeartBeatSpeed"`   // 最远距离处速率
	FinishingHeartBeatSpeed float64 `yaml:"finishingHeartBeatSpeed" json:"finishingHeartBeatSpeed"` // 最近距离处速率

	// 屏幕
	FullScreen           bool `yaml:"fullScreen" json:"fullScreen"`                     // 启动时全屏
	ShowSimulationSlider bool `yaml:"showSimulationSlider" json:"showSimulationSlider"` // 显示模拟距离滑块
	DebugOverlay         bool `yaml:"debugOverlay" json:"debugOverlay"`                 // 显示调试信息

	// 更新循环
	FrameRate float64 `yaml:"frameRate" json:"frameRate"` // 每秒 tick 数

	// 计时（秒）
	SaveActivateSeconds    float64 `yaml:"saveActivateSeconds" json:"saveActivateSeconds"`       // 离开安全区多久后返回才算"拯救"
	AutoSaveSeconds        float64 `yaml:"autoSaveSeconds" json:"autoSaveSeconds"`               // 无输入多久后自动拯救
	RestartIntervalSeconds float64 `yaml:"restartIntervalSeconds" json:"restartIntervalSeconds"` // 统计画面停留时长

	// 串口
	PortPath         string  `yaml:"portPath" json:"portPath"`                 // 串口设备路径，为空时只用滑块
	BaudRate         int     `yaml:"baudRate" json:"baudRate"`                 // 波特率
	UseMovingAverage bool    `yaml:"useMovingAverage" json:"useMovingAverage"` // 是否对串口读数做滑动平均
	InputThreshold   float64 `yaml:"inputThreshold" json:"inputThreshold"`     // 读数变化超过该值才算用户输入

	// 媒体资源
	VideoFile     string `yaml:"videoFile" json:"videoFile"`         // 主视频（前进/后退拖动）
	KillVideoFile string `yaml:"killVideoFile" json:"killVideoFile"` // 死亡片段
	HeartbeatFile string `yaml:"heartbeatFile" json:"heartbeatFile"` // 心跳循环音频

	// 遥测
	TelemetryAddr string `yaml:"telemetryAddr" json:"telemetryAddr"` // 遥测监听地址，为空时关闭
}

// 扩展字段的默认值（旧版配置文件里没有这些字段）
const (
	DefaultBaudRate       = 9600
	DefaultInputThreshold = 1.0
	DefaultVideoFile      = "assets/video_forward.mp4"
	DefaultKillVideoFile  = "assets/video_kill.mp4"
	DefaultHeartbeatFile  = "assets/loop.mp3"
)

// 配置错误
var (
	ErrInvalidRange    = errors.New("minDistance must be less than maxDistance")
	ErrNegativeZone    = errors.New("saveZone and deathZone must not be negative")
	ErrInvalidRate     = errors.New("frameRate must be positive")
	ErrNegativeTimer   = errors.New("timer seconds must not be negative")
	ErrInvalidVolume   = errors.New("volumes must be within [0, 1]")
	ErrInvalidSpeed    = errors.New("heartbeat speeds must be positive")
	ErrMissingMedia    = errors.New("media file paths must not be empty")
	ErrInvalidBaudRate = errors.New("baudRate must be positive")
	ErrMissingField    = errors.New("required configuration field is missing")
)

// requiredFields 配置文件必须给出的字段（旧版 configuration.json 的全部字段）
// 缺少任意一个都视为解析失败，由 Load 回退到下一个来源
var requiredFields = []string{
	"maxDistance", "minDistance",
	"saveZone", "deathZone",
	"startingVolume", "finishingVolume", "waitingVolume",
	"startingHeartBeatSpeed", "finishingHeartBeatSpeed",
	"fullScreen", "showSimulationSlider", "debugOverlay",
	"frameRate",
	"saveActivateSeconds", "autoSaveSeconds", "restartIntervalSeconds",
	"portPath",
}

// supplementDefaults 返回只填充了补充字段的配置，作为解析的起点
func supplementDefaults() Configuration {
	return Configuration{
		BaudRate:       DefaultBaudRate,
		InputThreshold: DefaultInputThreshold,
		VideoFile:      DefaultVideoFile,
		KillVideoFile:  DefaultKillVideoFile,
		HeartbeatFile:  DefaultHeartbeatFile,
	}
}

// Parse 解析配置数据（JSON 或 YAML）并校验
//
// 参数：
//   - data: 配置文件内容
//
// 返回：
//   - *Configuration: 解析并校验通过的配置
//   - error: 解析失败或校验失败
func Parse(data []byte) (*Configuration, error) {
	if err := checkRequired(data); err != nil {
		return nil, err
	}

	cfg := supplementDefaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// checkRequired 检查所有必需字段都出现在配置数据中
func checkRequired(data []byte) error {
	var fields map[string]any
	if err := yaml.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("failed to parse configuration: %w", err)
	}
	var missing []string
	for _, key := range requiredFields {
		if _, ok := fields[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}
	return nil
}

// Validate 校验配置的不变量
//
// 安全区与死亡区重叠是允许的（死亡区优先），只由 Overlaps 报告。
func (c *Configuration) Validate() error {
	if c.MinDistance >= c.MaxDistance {
		return fmt.Errorf("%w (min=%v, max=%v)", ErrInvalidRange, c.MinDistance, c.MaxDistance)
	}
	if c.SaveZone < 0 || c.DeathZone < 0 {
		return ErrNegativeZone
	}
	if c.FrameRate <= 0 {
		return ErrInvalidRate
	}
	if c.SaveActivateSeconds < 0 || c.AutoSaveSeconds < 0 || c.RestartIntervalSeconds < 0 {
		return ErrNegativeTimer
	}
	for _, v := range []float64{c.StartingVolume, c.FinishingVolume, c.WaitingVolume} {
		if v < 0 || v > 1 {
			return ErrInvalidVolume
		}
	}
	if c.StartingHeartBeatSpeed <= 0 || c.FinishingHeartBeatSpeed <= 0 {
		return ErrInvalidSpeed
	}
	if c.VideoFile == "" || c.KillVideoFile == "" || c.HeartbeatFile == "" {
		return ErrMissingMedia
	}
	if c.BaudRate <= 0 {
		return ErrInvalidBaudRate
	}
	return nil
}

// Overlaps 安全区与死亡区是否有交集
// 有交集时同一距离可能同时属于两个区域，状态机按死亡区优先处理
func (c *Configuration) Overlaps() bool {
	return c.SaveZone > 0 && c.MaxDistance-c.SaveZone < c.MinDistance+c.DeathZone
}

// TPS 返回 ebiten 需要的整数 tick 频率（至少为 1）
func (c *Configuration) TPS() int {
	tps := int(c.FrameRate + 0.5)
	if tps < 1 {
		return 1
	}
	return tps
}
