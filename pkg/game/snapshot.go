package game

import (
	"time"

	"github.com/decker502/curiosity/pkg/types"
)

// Snapshot 状态机在某一时刻的只读视图，供调试叠加层和遥测使用
type Snapshot struct {
	State         types.GameState
	RoundID       string
	Distance      float64
	InSaveZone    bool
	InKillZone    bool
	TotalSeconds  float64
	TargetSeconds float64
	Stats         Stats
	MediaErr      error

	SaveZoneActivatedAt time.Time
	LastInputAt         time.Time
	FinishedAt          time.Time

	// 倒计时（秒），对应计时未设置时为 -1
	SaveCountdown     float64
	AutoSaveCountdown float64
	RestartCountdown  float64
}

// Snapshot 生成当前状态的快照
//
// 参数：
//   - now: 计算倒计时使用的时间
func (m *Machine) Snapshot(now time.Time) Snapshot {
	s := Snapshot{
		State:             m.phase.State(),
		RoundID:           m.roundID,
		Distance:          m.distance,
		InSaveZone:        m.zones.InSaveZone(m.distance),
		InKillZone:        m.zones.InKillZone(m.distance),
		TotalSeconds:      m.totalSeconds,
		TargetSeconds:     m.TargetSeconds(),
		Stats:             m.stats,
		MediaErr:          m.mediaErr,
		SaveCountdown:     -1,
		AutoSaveCountdown: -1,
		RestartCountdown:  -1,
	}

	switch p := m.phase.(type) {
	case Started:
		s.SaveZoneActivatedAt = p.SaveZoneActivatedAt
		s.LastInputAt = p.LastInputAt
		if !p.SaveZoneActivatedAt.IsZero() {
			s.SaveCountdown = countdown(p.SaveZoneActivatedAt, m.cfg.SaveActivateSeconds, now)
		}
		if !p.LastInputAt.IsZero() {
			s.AutoSaveCountdown = countdown(p.LastInputAt, m.cfg.AutoSaveSeconds, now)
		}
	case StatsSaved:
		s.FinishedAt = p.FinishedAt
		s.RestartCountdown = countdown(p.FinishedAt, m.cfg.RestartIntervalSeconds, now)
	case StatsKilled:
		s.FinishedAt = p.FinishedAt
		s.RestartCountdown = countdown(p.FinishedAt, m.cfg.RestartIntervalSeconds, now)
	}
	return s
}

// countdown 返回距离计时到期还剩多少秒（不小于 0）
func countdown(since time.Time, limit float64, now time.Time) float64 {
	remaining := limit - now.Sub(since).Seconds()
	if remaining < 0 {
		return 0
	}
	return remaining
}
