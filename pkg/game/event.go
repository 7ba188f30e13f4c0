package game

// Event 媒体子系统发来的异步通知
//
// 事件通过 Machine.Post 投递，在下一次 Advance 开始时统一处理，
// 因此它们触发的状态转换总是发生在两个 tick 之间。
type Event interface {
	event()
}

// EventMediaReady 主视频已可播放
type EventMediaReady struct {
	TotalSeconds float64 // 主视频时长（秒）
}

// EventMediaFailed 主视频加载失败
type EventMediaFailed struct {
	Err error
}

// EventKillSegmentFinished 死亡片段播放完毕
type EventKillSegmentFinished struct{}

func (EventMediaReady) event()          {}
func (EventMediaFailed) event()         {}
func (EventKillSegmentFinished) event() {}

// eventQueueSize 事件队列容量
// 每局最多产生少量事件，满了说明 tick 已经停止，丢弃即可
const eventQueueSize = 16
