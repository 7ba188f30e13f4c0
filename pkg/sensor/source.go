// Package sensor 提供距离读数的来源：模拟滑块和串口传感器
package sensor

// Source 距离读数来源
// Read 必须是非阻塞的，每个 tick 调用一次；来源失效时返回最后一次的读数
type Source interface {
	Read() float64
}

// Resetter 可以被状态机重置读数的来源
type Resetter interface {
	Reset(value float64)
}
