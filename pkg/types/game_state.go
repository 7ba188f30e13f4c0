// Package types 定义共享的基础类型
// 这个包不依赖任何其他业务包，用于解决循环引用问题
package types

// GameState 定义装置的逻辑状态
// 任意时刻只有一个状态处于活动中（严格有限状态机）
type GameState int

const (
	// StateLoading 等待媒体资源就绪
	StateLoading GameState = iota
	// StateWaiting 等待观众进入安全区
	StateWaiting
	// StateStarted 游戏进行中
	StateStarted
	// StateSaved 已拯救，视频倒回开头
	StateSaved
	// StateKilled 已死亡，播放死亡片段
	StateKilled
	// StateStatsSaved 显示拯救统计
	StateStatsSaved
	// StateStatsKilled 显示死亡统计
	StateStatsKilled
)

// AllStates 按声明顺序列出所有状态（用于遍历测试）
var AllStates = []GameState{
	StateLoading,
	StateWaiting,
	StateStarted,
	StateSaved,
	StateKilled,
	StateStatsSaved,
	StateStatsKilled,
}

// String 返回状态的字符串表示（遥测和日志使用）
func (s GameState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateWaiting:
		return "waiting"
	case StateStarted:
		return "started"
	case StateSaved:
		return "saved"
	case StateKilled:
		return "killed"
	case StateStatsSaved:
		return "stats_saved"
	case StateStatsKilled:
		return "stats_killed"
	default:
		return "unknown"
	}
}

// IsStats 是否处于统计画面
func (s GameState) IsStats() bool {
	return s == StateStatsSaved || s == StateStatsKilled
}

// IsRound 是否处于一轮游戏进行中（视频跟随距离拖动）
func (s GameState) IsRound() bool {
	return s == StateStarted || s == StateSaved
}
