// Package telemetry 通过 WebSocket 和 REST 暴露装置的运行状态
package telemetry

import (
	"math"
	"time"
)

// 消息类型
const (
	TypeSnapshot   = "snapshot"
	TypeTransition = "transition"
)

// Message WebSocket 消息信封
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Snapshot 某一 tick 的运行状态
type Snapshot struct {
	SessionID string    `json:"sessionId"`
	RoundID   string    `json:"roundId"`
	Time      time.Time `json:"time"`

	State      string  `json:"state"`
	Distance   float64 `json:"distance"`
	InSaveZone bool    `json:"inSaveZone"`
	InKillZone bool    `json:"inKillZone"`

	CurrentSeconds float64 `json:"currentSeconds"`
	TargetSeconds  float64 `json:"targetSeconds"`
	TotalSeconds   float64 `json:"totalSeconds"`
	Direction      string  `json:"direction"`

	HeartbeatRate   float64 `json:"heartbeatRate"`
	HeartbeatVolume float64 `json:"heartbeatVolume"`

	// 倒计时（秒），-1 表示未在计时
	SaveCountdown     float64 `json:"saveCountdown"`
	AutoSaveCountdown float64 `json:"autoSaveCountdown"`
	RestartCountdown  float64 `json:"restartCountdown"`

	TotalSaves int `json:"totalSaves"`
	TotalKills int `json:"totalKills"`

	Sensor            string `json:"sensor"`
	ReadingsPerSecond int    `json:"readingsPerSecond"`
	MediaError        string `json:"mediaError,omitempty"`
}

// Transition 一次状态切换
type Transition struct {
	SessionID string    `json:"sessionId"`
	RoundID   string    `json:"roundId"`
	Time      time.Time `json:"time"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Intents   []string  `json:"intents,omitempty"`
}

// Stats GET /stats 的响应
type Stats struct {
	SessionID  string    `json:"sessionId"`
	StartedAt  time.Time `json:"startedAt"`
	State      string    `json:"state"`
	RoundID    string    `json:"roundId"`
	TotalSaves int       `json:"totalSaves"`
	TotalKills int       `json:"totalKills"`
	Clients    int       `json:"clients"`
}

// sanitize 把 JSON 无法编码的 NaN/Inf 替换为 0
func (s Snapshot) sanitize() Snapshot {
	fields := []*float64{
		&s.Distance, &s.CurrentSeconds, &s.TargetSeconds, &s.TotalSeconds,
		&s.HeartbeatRate, &s.HeartbeatVolume,
		&s.SaveCountdown, &s.AutoSaveCountdown, &s.RestartCountdown,
	}
	for _, f := range fields {
		if math.IsNaN(*f) || math.IsInf(*f, 0) {
			*f = 0
		}
	}
	return s
}
