package sensor

import (
	"sync"

	"github.com/decker502/curiosity/pkg/utils"
)

// Slider 模拟距离滑块
// 没有串口传感器时由操作员用键盘或鼠标拖动
type Slider struct {
	mu    sync.Mutex
	min   float64
	max   float64
	value float64
}

// NewSlider 创建范围为 [min, max] 的滑块，初始值为 max
func NewSlider(min, max float64) *Slider {
	return &Slider{min: min, max: max, value: max}
}

// Read 返回滑块当前值
func (s *Slider) Read() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set 设置滑块值（限制在范围内）
func (s *Slider) Set(value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = utils.Clamp(value, s.min, s.max)
}

// Reset 状态机要求重置读数时调用
func (s *Slider) Reset(value float64) {
	s.Set(value)
}

// Nudge 按范围比例移动滑块
//
// 参数：
//   - fraction: 移动量占整个范围的比例，正数向 max 方向
func (s *Slider) Nudge(fraction float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = utils.Clamp(s.value+fraction*(s.max-s.min), s.min, s.max)
}

// Fraction 当前值在范围中的位置 [0, 1]
func (s *Slider) Fraction() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return utils.MapRange(s.value, s.min, s.max, 0, 1)
}

// SetFraction 按范围中的位置设置滑块
func (s *Slider) SetFraction(fraction float64) {
	s.Set(utils.Lerp(s.min, s.max, utils.Clamp(fraction, 0, 1)))
}

// Range 返回滑块范围
func (s *Slider) Range() (float64, float64) {
	return s.min, s.max
}
