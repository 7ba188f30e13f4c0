package config

// Loading 配置常量

const (
	// LoadingTextFontSize 加载文字字体大小
	LoadingTextFontSize float64 = 48

	// LoadingTextY 加载文字中心 Y 坐标
	LoadingTextY float64 = 540

	// LoadingErrorFontSize 资源故障提示字体大小
	LoadingErrorFontSize float64 = 28

	// LoadingErrorY 资源故障提示中心 Y 坐标
	LoadingErrorY float64 = 620
)
