package media

import (
	"errors"
	"log"
	"math"

	"github.com/decker502/curiosity/pkg/config"
	"github.com/decker502/curiosity/pkg/game"
	"github.com/decker502/curiosity/pkg/types"
	"github.com/decker502/curiosity/pkg/utils"
	"github.com/decker502/curiosity/pkg/zone"
)

// Direction 驱动器向主视频发出的最后一条播放指令
type Direction int

const (
	DirPaused Direction = iota
	DirForward
	DirBackward
)

func (d Direction) String() string {
	switch d {
	case DirForward:
		return "forward"
	case DirBackward:
		return "backward"
	default:
		return "paused"
	}
}

// Driver 媒体同步驱动器
//
// 职责：
//   - 执行状态机产出的副作用指令
//   - 把主视频当作位置执行器，朝距离对应的目标位置前进或后退
//   - 按距离插值心跳速率和音量，只在数值变化时下发
//
// 播放方向由驱动器自己记录，不从播放器的速率反推。
type Driver struct {
	cfg       *config.Configuration
	zones     zone.Classifier
	main      VideoPlayer
	kill      VideoPlayer
	heartbeat AudioLoop

	direction Direction
	tolerance float64 // 暂停状态下允许的位置误差（秒）
	rate      float64
	volume    float64
}

// NewDriver 创建媒体同步驱动器
//
// 参数：
//   - cfg: 配置
//   - zones: 区域分类器
//   - main: 主视频（可为 nil）
//   - kill: 死亡片段（可为 nil）
//   - heartbeat: 心跳循环（可为 nil）
//
// 返回：
//   - *Driver: 驱动器实例，初始为暂停
func NewDriver(cfg *config.Configuration, zones zone.Classifier, main, kill VideoPlayer, heartbeat AudioLoop) *Driver {
	if main == nil {
		main = closedVideo{}
	}
	if kill == nil {
		kill = closedVideo{}
	}
	if heartbeat == nil {
		heartbeat = closedAudio{}
	}
	return &Driver{
		cfg:       cfg,
		zones:     zones,
		main:      main,
		kill:      kill,
		heartbeat: heartbeat,
		tolerance: 1 / cfg.FrameRate,
		rate:      math.NaN(),
		volume:    math.NaN(),
	}
}

// Direction 返回主视频的当前播放方向
func (d *Driver) Direction() Direction { return d.direction }

// Rate 返回最近一次下发的心跳速率（未下发过时为 NaN）
func (d *Driver) Rate() float64 { return d.rate }

// Volume 返回最近一次下发的心跳音量（未下发过时为 NaN）
func (d *Driver) Volume() float64 { return d.volume }

// Apply 执行一次 Advance 的结果并同步媒体
//
// 参数：
//   - res: 状态机本 tick 的结果
//   - distance: 本 tick 的距离
func (d *Driver) Apply(res game.Result, distance float64) {
	for _, intent := range res.Intents {
		d.execute(intent)
	}

	state := res.To.State()
	switch state {
	case types.StateStarted, types.StateSaved:
		d.scrub(state, distance)
	default:
		d.hold()
	}
	d.syncHeartbeat(state, distance)
}

func (d *Driver) execute(intent game.Intent) {
	switch intent.Kind {
	case game.IntentStartHeartbeat:
		d.check("heartbeat start", d.heartbeat.Start())
	case game.IntentStopHeartbeat:
		d.check("heartbeat stop", d.heartbeat.Stop())
	case game.IntentPlayKillSegment:
		d.pause()
		d.check("kill seek", d.kill.Seek(0))
		d.check("kill play", d.kill.PlayForward())
	case game.IntentStopVideo:
		d.pause()
		d.check("kill pause", d.kill.Pause())
	case game.IntentResetPlayback:
		d.pause()
		d.check("video seek", d.main.Seek(0))
	}
}

// hold 保持主视频暂停
func (d *Driver) hold() {
	if d.direction != DirPaused || d.main.IsPlaying() {
		d.pause()
	}
}

// scrub 让主视频朝目标位置移动
func (d *Driver) scrub(state types.GameState, distance float64) {
	// 播放到头后播放器自己停下，方向同步为暂停
	if d.direction != DirPaused && !d.main.IsPlaying() {
		d.direction = DirPaused
	}

	duration := d.main.Duration()
	current := d.main.CurrentTime()
	dest := d.zones.FrameForDistance(state, distance, duration)

	switch d.direction {
	case DirForward:
		if current >= dest {
			d.pause()
		}
	case DirBackward:
		if current <= dest {
			d.pause()
		}
	case DirPaused:
		// 两端由播放器精确停住，不需要容差
		tolerance := d.tolerance
		if dest <= 0 || dest >= duration {
			tolerance = 0
		}
		if current > dest+tolerance {
			d.check("video play backward", d.main.PlayBackward())
			d.direction = DirBackward
		} else if current < dest-tolerance {
			d.check("video play forward", d.main.PlayForward())
			d.direction = DirForward
		}
	}
}

func (d *Driver) pause() {
	d.check("video pause", d.main.Pause())
	d.direction = DirPaused
}

// syncHeartbeat 更新心跳的速率、音量和播放状态
// Waiting、Started、Saved 中心跳可闻，其余状态静音
func (d *Driver) syncHeartbeat(state types.GameState, distance float64) {
	switch state {
	case types.StateWaiting, types.StateStarted, types.StateSaved:
	default:
		if d.heartbeat.IsPlaying() {
			d.check("heartbeat stop", d.heartbeat.Stop())
		}
		return
	}

	minD, maxD := d.cfg.MinDistance, d.cfg.MaxDistance
	x := utils.Clamp(distance, minD, maxD)

	rate := utils.MapRange(x, minD, maxD, d.cfg.FinishingHeartBeatSpeed, d.cfg.StartingHeartBeatSpeed)
	volume := d.cfg.WaitingVolume
	if state != types.StateWaiting {
		volume = utils.MapRange(x, minD, maxD, d.cfg.FinishingVolume, d.cfg.StartingVolume)
	}

	if rate != d.rate {
		d.check("heartbeat rate", d.heartbeat.SetRate(rate))
		d.rate = rate
	}
	if volume != d.volume {
		d.check("heartbeat volume", d.heartbeat.SetVolume(volume))
		d.volume = volume
	}
	if !d.heartbeat.IsPlaying() {
		d.check("heartbeat start", d.heartbeat.Start())
	}
}

// check 记录播放器调用错误；已释放的播放器静默忽略
func (d *Driver) check(op string, err error) {
	if err == nil || errors.Is(err, ErrPlayerClosed) {
		return
	}
	log.Printf("[MediaSync] Warning: %s failed: %v", op, err)
}
