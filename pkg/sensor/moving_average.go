package sensor

// DefaultAverageSize 串口读数滑动平均的窗口大小
const DefaultAverageSize = 10

// MovingAverage 整数滑动平均
type MovingAverage struct {
	size   int
	values []int
}

// NewMovingAverage 创建窗口大小为 size 的滑动平均（至少为 1）
func NewMovingAverage(size int) *MovingAverage {
	if size < 1 {
		size = 1
	}
	return &MovingAverage{size: size, values: make([]int, 0, size)}
}

// Add 加入一个读数并返回新的平均值
func (m *MovingAverage) Add(value int) int {
	if len(m.values) == m.size {
		copy(m.values, m.values[1:])
		m.values = m.values[:m.size-1]
	}
	m.values = append(m.values, value)
	return m.Average()
}

// Average 当前窗口的整数平均值（向零取整），窗口为空时为 0
func (m *MovingAverage) Average() int {
	if len(m.values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range m.values {
		sum += v
	}
	return sum / len(m.values)
}

// Len 当前窗口中的读数个数
func (m *MovingAverage) Len() int { return len(m.values) }
