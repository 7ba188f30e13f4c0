package media

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/hajimehoshi/ebiten/v2/audio"

	audiostream "github.com/decker502/curiosity/internal/audio"
)

// heartbeatBufferSize 播放缓冲时长
// 缓冲越小，速率变化越快被听到
const heartbeatBufferSize = 100 * time.Millisecond

// HeartbeatLoop 循环播放的心跳音频
//
// MP3 由 beep 解码并无限循环，经过可变速率的重采样后交给 ebiten 的 audio.Player 播放。
type HeartbeatLoop struct {
	mu      sync.Mutex
	player  *audio.Player
	stream  *audiostream.Stream
	decoder io.Closer
	closed  bool
}

// LoadHeartbeat 从文件加载心跳循环
//
// 整个文件先读入内存，避免播放期间持有文件句柄。
//
// 参数：
//   - ctx: ebiten 音频上下文
//   - path: MP3 文件路径
//
// 返回：
//   - *HeartbeatLoop: 已就绪（未开始播放）的心跳循环
//   - error: 读取、解码或创建播放器失败
func LoadHeartbeat(ctx *audio.Context, path string) (*HeartbeatLoop, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read heartbeat %s: %w", path, err)
	}
	return NewHeartbeatLoop(ctx, io.NopCloser(bytes.NewReader(data)))
}

// NewHeartbeatLoop 用 MP3 数据创建心跳循环
func NewHeartbeatLoop(ctx *audio.Context, rc io.ReadCloser) (*HeartbeatLoop, error) {
	src, format, decoder, err := audiostream.DecodeLoop(rc)
	if err != nil {
		return nil, err
	}

	stream := audiostream.NewStream(src, format.SampleRate, beep.SampleRate(ctx.SampleRate()))
	player, err := ctx.NewPlayer(stream)
	if err != nil {
		decoder.Close()
		return nil, fmt.Errorf("failed to create heartbeat player: %w", err)
	}
	player.SetBufferSize(heartbeatBufferSize)

	log.Printf("[Heartbeat] Loaded (%d Hz, %d channels)", format.SampleRate, format.NumChannels)
	return &HeartbeatLoop{
		player:  player,
		stream:  stream,
		decoder: decoder,
	}, nil
}

// Start 开始（或继续）播放
func (h *HeartbeatLoop) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrPlayerClosed
	}
	h.player.Play()
	return nil
}

// Stop 暂停播放
func (h *HeartbeatLoop) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrPlayerClosed
	}
	h.player.Pause()
	return nil
}

// IsPlaying 是否正在播放
func (h *HeartbeatLoop) IsPlaying() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.closed && h.player.IsPlaying()
}

// SetRate 设置播放速率（1 为原速）
func (h *HeartbeatLoop) SetRate(rate float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrPlayerClosed
	}
	if rate <= 0 {
		return fmt.Errorf("invalid heartbeat rate %v", rate)
	}
	h.stream.SetRate(rate)
	return nil
}

// SetVolume 设置音量 [0, 1]
func (h *HeartbeatLoop) SetVolume(volume float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrPlayerClosed
	}
	h.player.SetVolume(volume)
	return nil
}

// Close 停止播放并释放解码器
func (h *HeartbeatLoop) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	h.player.Pause()
	if err := h.player.Close(); err != nil {
		h.decoder.Close()
		return fmt.Errorf("failed to close heartbeat player: %w", err)
	}
	return h.decoder.Close()
}
