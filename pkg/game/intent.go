package game

import "fmt"

// IntentKind 状态转换附带的副作用类型
type IntentKind int

const (
	// IntentStartHeartbeat 开始心跳循环
	IntentStartHeartbeat IntentKind = iota
	// IntentStopHeartbeat 停止心跳循环
	IntentStopHeartbeat
	// IntentPlayKillSegment 从头播放死亡片段
	IntentPlayKillSegment
	// IntentStopVideo 停止所有视频播放
	IntentStopVideo
	// IntentShowSaveStats 显示拯救次数
	IntentShowSaveStats
	// IntentShowKillStats 显示死亡次数
	IntentShowKillStats
	// IntentResetPlayback 主视频回到开头
	IntentResetPlayback
	// IntentResetDistance 把距离输入重置为 Value
	IntentResetDistance
)

// String 返回副作用名称（用于日志）
func (k IntentKind) String() string {
	switch k {
	case IntentStartHeartbeat:
		return "start-heartbeat"
	case IntentStopHeartbeat:
		return "stop-heartbeat"
	case IntentPlayKillSegment:
		return "play-kill-segment"
	case IntentStopVideo:
		return "stop-video"
	case IntentShowSaveStats:
		return "show-save-stats"
	case IntentShowKillStats:
		return "show-kill-stats"
	case IntentResetPlayback:
		return "reset-playback"
	case IntentResetDistance:
		return "reset-distance"
	default:
		return "unknown"
	}
}

// Intent 一条副作用指令，由媒体驱动和场景执行
type Intent struct {
	Kind  IntentKind
	Value float64 // 仅 IntentResetDistance 使用
}

func (i Intent) String() string {
	if i.Kind == IntentResetDistance {
		return fmt.Sprintf("%s(%g)", i.Kind, i.Value)
	}
	return i.Kind.String()
}

// Result 一次 Advance 的结果
type Result struct {
	From    Phase
	To      Phase
	Changed bool     // 是否发生了状态切换（阶段内字段更新不算）
	Intents []Intent // 按执行顺序排列
}

// Has 结果中是否包含指定类型的副作用
func (r Result) Has(kind IntentKind) bool {
	for _, i := range r.Intents {
		if i.Kind == kind {
			return true
		}
	}
	return false
}
