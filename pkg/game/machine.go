package game

import (
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/decker502/curiosity/pkg/config"
	"github.com/decker502/curiosity/pkg/types"
	"github.com/decker502/curiosity/pkg/zone"
)

// rewindEpsilon 判断主视频已倒回目标位置的容差（秒）
// 倒放按帧步进，当前位置可能停在目标之上不到一帧的地方
const rewindEpsilon = 0.05

// PlaybackProbe 读取主视频当前播放位置
type PlaybackProbe interface {
	CurrentTime() float64
}

// Stats 跨局累计的统计数据，只在进程重启时清零
type Stats struct {
	TotalSaves int `json:"totalSaves"`
	TotalKills int `json:"totalKills"`
}

// Machine 游戏状态机
//
// 职责：
//   - 持有当前阶段、距离和统计数据
//   - 每个 tick 根据距离和时间推进一次状态
//   - 产出副作用指令，由媒体驱动执行
//
// 除 Post 外的所有方法只能在 tick 线程调用。
type Machine struct {
	cfg   *config.Configuration
	zones zone.Classifier
	probe PlaybackProbe

	events chan Event

	phase    Phase
	distance float64
	stats    Stats
	roundID  string

	totalSeconds float64
	mediaReady   bool
	mediaErr     error
	killFinished bool
}

// NewMachine 创建状态机，初始阶段为 Loading
//
// 参数：
//   - cfg: 已校验的配置
//   - zones: 区域分类器
//   - probe: 主视频播放位置（可为 nil，此时视为已倒回）
//
// 返回：
//   - *Machine: 状态机实例
func NewMachine(cfg *config.Configuration, zones zone.Classifier, probe PlaybackProbe) *Machine {
	if zones.Overlaps() {
		log.Printf("[GameStateMachine] Warning: save zone and kill zone overlap, kill zone takes precedence")
	}
	return &Machine{
		cfg:      cfg,
		zones:    zones,
		probe:    probe,
		events:   make(chan Event, eventQueueSize),
		phase:    Loading{},
		distance: cfg.MaxDistance,
	}
}

// SetProbe 设置主视频播放位置来源
func (m *Machine) SetProbe(probe PlaybackProbe) {
	m.probe = probe
}

// Post 投递一个媒体事件（可在任意 goroutine 调用，不会阻塞）
func (m *Machine) Post(ev Event) {
	select {
	case m.events <- ev:
	default:
		log.Printf("[GameStateMachine] Warning: Event queue full, dropping %T", ev)
	}
}

// Phase 返回当前阶段
func (m *Machine) Phase() Phase { return m.phase }

// State 返回当前状态标签
func (m *Machine) State() types.GameState { return m.phase.State() }

// Distance 返回最近一次使用的距离
func (m *Machine) Distance() float64 { return m.distance }

// Stats 返回累计统计
func (m *Machine) Stats() Stats { return m.stats }

// RoundID 返回当前这一局的标识（进入 Waiting 时生成）
func (m *Machine) RoundID() string { return m.roundID }

// TotalSeconds 返回主视频时长，视频就绪前为 0
func (m *Machine) TotalSeconds() float64 { return m.totalSeconds }

// MediaErr 返回主视频加载失败的原因
func (m *Machine) MediaErr() error { return m.mediaErr }

// Zones 返回区域分类器
func (m *Machine) Zones() zone.Classifier { return m.zones }

// TargetSeconds 返回当前状态下主视频应驱动到的位置
func (m *Machine) TargetSeconds() float64 {
	return m.zones.FrameForDistance(m.phase.State(), m.distance, m.totalSeconds)
}

// Advance 推进一个 tick
//
// 先处理事件队列，再按当前阶段执行转换表。每次最多发生一次状态切换。
// Started 内的检查顺序固定为：死亡 → 确认拯救 → 记录离开安全区 → 空闲自动拯救。
//
// 参数：
//   - distance: 本 tick 的距离读数
//   - now: 本 tick 的时间
//
// 返回：
//   - Result: 切换前后的阶段及副作用指令
func (m *Machine) Advance(distance float64, now time.Time) Result {
	m.drainEvents()

	previous := m.distance
	m.distance = distance

	from := m.phase
	var intents []Intent

	switch p := m.phase.(type) {
	case Loading:
		if m.mediaReady {
			m.enterWaiting()
			m.distance = m.cfg.MaxDistance
			intents = append(intents,
				Intent{Kind: IntentResetPlayback},
				Intent{Kind: IntentResetDistance, Value: m.cfg.MaxDistance},
			)
		}

	case Waiting:
		if m.zones.InSaveZone(distance) {
			m.phase = Started{LastInputAt: now}
			intents = append(intents, Intent{Kind: IntentStartHeartbeat})
		}

	case Started:
		intents = m.advanceStarted(p, previous, distance, now)

	case Saved:
		if m.rewound() {
			m.phase = StatsSaved{FinishedAt: now}
			intents = append(intents,
				Intent{Kind: IntentStopVideo},
				Intent{Kind: IntentStopHeartbeat},
				Intent{Kind: IntentShowSaveStats},
			)
		}

	case Killed:
		if m.killFinished {
			m.killFinished = false
			m.phase = StatsKilled{FinishedAt: now}
			intents = append(intents, Intent{Kind: IntentShowKillStats})
		}

	case StatsSaved:
		intents = m.advanceStats(p.FinishedAt, now)

	case StatsKilled:
		intents = m.advanceStats(p.FinishedAt, now)
	}

	res := Result{
		From:    from,
		To:      m.phase,
		Changed: from.State() != m.phase.State(),
		Intents: intents,
	}
	if res.Changed {
		log.Printf("[GameStateMachine] %s -> %s (distance=%.1f, saves=%d, kills=%d, intents=%v)",
			res.From.State(), res.To.State(), distance, m.stats.TotalSaves, m.stats.TotalKills, intents)
	}
	return res
}

// advanceStarted 执行 Started 阶段的检查
func (m *Machine) advanceStarted(p Started, previous, distance float64, now time.Time) []Intent {
	if math.Abs(distance-previous) > m.cfg.InputThreshold {
		p.LastInputAt = now
	}

	inSave := m.zones.InSaveZone(distance)

	if m.zones.InKillZone(distance) {
		m.stats.TotalKills++
		m.killFinished = false
		m.phase = Killed{}
		return []Intent{
			{Kind: IntentStopHeartbeat},
			{Kind: IntentPlayKillSegment},
		}
	}

	if !p.SaveZoneActivatedAt.IsZero() && inSave && now.Sub(p.SaveZoneActivatedAt) > seconds(m.cfg.SaveActivateSeconds) {
		m.stats.TotalSaves++
		m.phase = Saved{}
		return nil
	}

	if !inSave && p.SaveZoneActivatedAt.IsZero() {
		p.SaveZoneActivatedAt = now
		m.phase = p
		return nil
	}

	if !p.LastInputAt.IsZero() && now.Sub(p.LastInputAt) > seconds(m.cfg.AutoSaveSeconds) {
		log.Printf("[GameStateMachine] No input for %.0fs, auto-saving", now.Sub(p.LastInputAt).Seconds())
		m.stats.TotalSaves++
		m.phase = Saved{}
		return nil
	}

	m.phase = p
	return nil
}

// advanceStats 统计画面停留足够时间后回到 Waiting
func (m *Machine) advanceStats(finishedAt, now time.Time) []Intent {
	if now.Sub(finishedAt) <= seconds(m.cfg.RestartIntervalSeconds) {
		return nil
	}
	m.enterWaiting()
	m.distance = 0
	return []Intent{
		{Kind: IntentStopVideo},
		{Kind: IntentResetPlayback},
		{Kind: IntentResetDistance, Value: 0},
	}
}

// enterWaiting 开始新的一局
// Waiting 不携带任何计时字段，进入时所有计时自然被清除
func (m *Machine) enterWaiting() {
	m.phase = Waiting{}
	m.killFinished = false
	m.roundID = uuid.NewString()
	log.Printf("[GameStateMachine] Round %s", m.roundID)
}

// rewound 主视频是否已倒回拯救状态的目标位置
func (m *Machine) rewound() bool {
	if m.probe == nil {
		return true
	}
	target := m.zones.FrameForDistance(types.StateSaved, m.distance, m.totalSeconds)
	return m.probe.CurrentTime() <= target+rewindEpsilon
}

// drainEvents 处理队列中所有待处理事件
func (m *Machine) drainEvents() {
	for {
		select {
		case ev := <-m.events:
			m.handleEvent(ev)
		default:
			return
		}
	}
}

func (m *Machine) handleEvent(ev Event) {
	switch e := ev.(type) {
	case EventMediaReady:
		m.totalSeconds = e.TotalSeconds
		m.mediaReady = true
		m.mediaErr = nil
		log.Printf("[GameStateMachine] Media ready (%.2fs)", e.TotalSeconds)
	case EventMediaFailed:
		m.mediaErr = e.Err
		log.Printf("[GameStateMachine] Error: Media failed to load: %v", e.Err)
	case EventKillSegmentFinished:
		if _, ok := m.phase.(Killed); ok {
			m.killFinished = true
		}
	}
}

// seconds 把配置中的秒数转换为 time.Duration
func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
