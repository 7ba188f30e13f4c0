package utils

// 插值函数 (Interpolation)
//
// 距离 → 视频位置、距离 → 心跳速率/音量 都是同一种线性映射。
// 所有函数都是纯函数，不做任何隐式限幅，需要限幅时显式调用 Clamp。

// Lerp 线性插值
// 在 a 和 b 之间根据 t 插值
// t=0 返回 a，t=1 返回 b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// MapRange 把 value 从输入区间 [inMin, inMax] 线性映射到输出区间 [outMin, outMax]
//
// 公式：outMin + ((value-inMin)/(inMax-inMin)) * (outMax-outMin)
// 输入区间可以是反向的（inMin > inMax），例如距离越大视频越靠前。
//
// 参数：
//   - value: 输入值（不做限幅）
//   - inMin, inMax: 输入区间端点
//   - outMin, outMax: 输出区间端点
//
// 返回：
//   - float64: 映射结果；当 inMin == inMax 时退化为 outMin（避免除零）
func MapRange(value, inMin, inMax, outMin, outMax float64) float64 {
	if inMin == inMax {
		return outMin
	}
	return Lerp(outMin, outMax, (value-inMin)/(inMax-inMin))
}

// Clamp 把 value 限制在 [lo, hi] 之间
// 如果 lo > hi，两个端点会被交换
func Clamp(value, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
