package game

import (
	"time"

	"github.com/decker502/curiosity/pkg/types"
)

// Phase 当前所处的游戏阶段
//
// 每个阶段只携带与它相关的计时字段，零值 time.Time 表示"未设置"。
// 接口通过未导出方法封闭，只有本包定义的阶段可以实现它。
type Phase interface {
	// State 返回阶段对应的状态标签
	State() types.GameState
	phase()
}

// Loading 等待主视频就绪
type Loading struct{}

// Waiting 等待玩家进入安全区
type Waiting struct{}

// Started 一局游戏进行中
type Started struct {
	SaveZoneActivatedAt time.Time // 玩家首次离开安全区的时刻
	LastInputAt         time.Time // 最近一次读数变化的时刻
}

// Saved 玩家被拯救，视频倒回开头
type Saved struct{}

// Killed 玩家进入死亡区，播放死亡片段
type Killed struct{}

// StatsSaved 展示拯救次数
type StatsSaved struct {
	FinishedAt time.Time
}

// StatsKilled 展示死亡次数
type StatsKilled struct {
	FinishedAt time.Time
}

func (Loading) State() types.GameState     { return types.StateLoading }
func (Waiting) State() types.GameState     { return types.StateWaiting }
func (Started) State() types.GameState     { return types.StateStarted }
func (Saved) State() types.GameState       { return types.StateSaved }
func (Killed) State() types.GameState      { return types.StateKilled }
func (StatsSaved) State() types.GameState  { return types.StateStatsSaved }
func (StatsKilled) State() types.GameState { return types.StateStatsKilled }

func (Loading) phase()     {}
func (Waiting) phase()     {}
func (Started) phase()     {}
func (Saved) phase()       {}
func (Killed) phase()      {}
func (StatsSaved) phase()  {}
func (StatsKilled) phase() {}
