package config

// 布局配置常量
// 本文件定义了装置画面的布局参数：逻辑画面尺寸、统计文字、模拟滑块、调试信息

// Screen Configuration (画面配置)
const (
	// ScreenWidth 逻辑画面宽度，Ebitengine 负责缩放到实际窗口
	ScreenWidth = 1920

	// ScreenHeight 逻辑画面高度
	ScreenHeight = 1080

	// WindowTitle 窗口标题
	WindowTitle = "Curiosity"
)

// Stats Label Configuration (统计文字配置)
const (
	// StatsCountFontSize 统计数字字号
	StatsCountFontSize = 220.0

	// StatsLabelFontSize 统计标签字号
	StatsLabelFontSize = 64.0

	// StatsCountY 统计数字中心 Y 坐标
	StatsCountY = 470.0

	// StatsLabelY 统计标签中心 Y 坐标
	StatsLabelY = 680.0

	// SavedLabel 拯救统计标签
	SavedLabel = "SAVED"

	// KilledLabel 死亡统计标签
	KilledLabel = "KILLED"

	// LoadingLabel 加载中提示
	LoadingLabel = "Loading..."
)

// Simulation Slider Configuration (模拟滑块配置)
const (
	// SliderMarginX 滑块左右边距
	SliderMarginX = 160.0

	// SliderY 滑块轨道中心 Y 坐标
	SliderY = 1010.0

	// SliderTrackHeight 轨道高度
	SliderTrackHeight = 8.0

	// SliderKnobRadius 滑块半径
	SliderKnobRadius = 18.0

	// SliderKeyStep 方向键每 tick 移动的距离比例（相对量程）
	SliderKeyStep = 0.01
)

// Debug Overlay Configuration (调试信息配置)
const (
	// DebugOverlayX 调试文字 X 坐标
	DebugOverlayX = 16

	// DebugOverlayY 调试文字 Y 坐标
	DebugOverlayY = 16
)

// Window Configuration (窗口配置)
const (
	// WindowWidth 非全屏时的窗口宽度
	WindowWidth = 1280

	// WindowHeight 非全屏时的窗口高度
	WindowHeight = 720
)
