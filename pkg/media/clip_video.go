package media

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"log"
	"math"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// FrameSource 按帧号解码视频
type FrameSource interface {
	FPS() float64
	FrameCount() int
	ReadFrame(index int) (image.Image, error)
	Close() error
}

// SourceOpener 打开一个视频文件
type SourceOpener func(path string) (FrameSource, error)

// ErrInvalidSource 视频源没有可播放的帧
var ErrInvalidSource = errors.New("video source has no frames")

// ClipVideo 由 tick 时钟驱动的视频播放器
//
// 播放位置只在 Update(dt) 中推进，正放到结尾或倒放到开头时自动暂停。
// 加载在后台进行，完成前所有命令都是空操作。
type ClipVideo struct {
	mu sync.Mutex

	name     string
	source   FrameSource
	duration float64
	position float64
	rate     float64 // 1 正放，-1 倒放，0 暂停
	closed   bool

	onFinished func()

	frame        *ebiten.Image
	rgba         *image.RGBA
	decodedIndex int
	decodeFailed bool
}

// NewClipVideo 创建尚未加载的视频播放器
//
// 参数：
//   - name: 用于日志的名称
func NewClipVideo(name string) *ClipVideo {
	return &ClipVideo{name: name, decodedIndex: -1}
}

// SetOnFinished 设置正放到结尾时的回调
// 回调在 Update 所在的线程调用，调用时不持有锁
func (v *ClipVideo) SetOnFinished(fn func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onFinished = fn
}

// Load 在后台打开视频源
//
// 参数：
//   - path: 视频文件路径
//   - open: 视频源打开函数
//   - onReady: 加载成功回调，参数为视频时长（秒）
//   - onError: 加载失败回调
func (v *ClipVideo) Load(path string, open SourceOpener, onReady func(duration float64), onError func(err error)) {
	go func() {
		src, err := open(path)
		if err == nil {
			err = v.attach(src)
			if err != nil {
				src.Close()
			}
		}
		if err != nil {
			err = fmt.Errorf("failed to load %s: %w", path, err)
			log.Printf("[ClipVideo] Error: %s: %v", v.name, err)
			if onError != nil {
				onError(err)
			}
			return
		}
		duration := v.Duration()
		log.Printf("[ClipVideo] %s loaded: %s (%.2fs)", v.name, path, duration)
		if onReady != nil {
			onReady(duration)
		}
	}()
}

// attach 挂接已打开的视频源
// 加载完成前下达的播放命令继续有效，位置限制在新视频范围内
func (v *ClipVideo) attach(src FrameSource) error {
	if src.FPS() <= 0 || src.FrameCount() <= 0 {
		return ErrInvalidSource
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrPlayerClosed
	}
	if v.source != nil {
		v.source.Close()
	}
	v.source = src
	v.duration = float64(src.FrameCount()) / src.FPS()
	v.position = math.Max(0, math.Min(v.position, v.duration))
	v.decodedIndex = -1
	v.decodeFailed = false
	return nil
}

// Update 按经过的时间推进播放位置
//
// 参数：
//   - dt: 距上次调用的秒数
func (v *ClipVideo) Update(dt float64) {
	v.mu.Lock()
	if v.closed || v.rate == 0 {
		v.mu.Unlock()
		return
	}

	var finished func()
	v.position += v.rate * dt
	if v.position >= v.duration {
		v.position = v.duration
		v.rate = 0
		finished = v.onFinished
	} else if v.position <= 0 {
		v.position = 0
		v.rate = 0
	}
	v.mu.Unlock()

	if finished != nil {
		finished()
	}
}

// Seek 跳转到指定位置（限制在视频范围内）
func (v *ClipVideo) Seek(seconds float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrPlayerClosed
	}
	v.position = math.Max(0, math.Min(seconds, v.duration))
	return nil
}

// PlayForward 正放
func (v *ClipVideo) PlayForward() error { return v.setRate(1) }

// PlayBackward 倒放
func (v *ClipVideo) PlayBackward() error { return v.setRate(-1) }

// Pause 暂停
func (v *ClipVideo) Pause() error { return v.setRate(0) }

func (v *ClipVideo) setRate(rate float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrPlayerClosed
	}
	v.rate = rate
	return nil
}

// IsPlaying 是否正在播放（任一方向）
func (v *ClipVideo) IsPlaying() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rate != 0
}

// CurrentTime 当前播放位置（秒）
func (v *ClipVideo) CurrentTime() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.position
}

// Duration 视频时长（秒），加载完成前为 0
func (v *ClipVideo) Duration() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.duration
}

// Ready 视频源是否已加载
func (v *ClipVideo) Ready() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.source != nil && !v.closed
}

// FrameIndex 当前位置对应的帧号
func (v *ClipVideo) FrameIndex() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frameIndexLocked()
}

func (v *ClipVideo) frameIndexLocked() int {
	if v.source == nil {
		return 0
	}
	index := int(v.position * v.source.FPS())
	if last := v.source.FrameCount() - 1; index > last {
		index = last
	}
	return index
}

// Frame 返回当前位置的画面
// 只在帧号变化时解码；尚未加载或解码失败时返回 nil（或上一帧）
func (v *ClipVideo) Frame() *ebiten.Image {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || v.source == nil {
		return nil
	}

	index := v.frameIndexLocked()
	if index == v.decodedIndex {
		return v.frame
	}

	img, err := v.source.ReadFrame(index)
	if err != nil {
		if !v.decodeFailed {
			log.Printf("[ClipVideo] Warning: %s failed to decode frame %d: %v", v.name, index, err)
			v.decodeFailed = true
		}
		return v.frame
	}
	v.decodeFailed = false
	v.decodedIndex = index
	v.upload(img)
	return v.frame
}

// upload 把解码后的画面写入复用的 ebiten 图像
func (v *ClipVideo) upload(img image.Image) {
	b := img.Bounds()
	if v.frame == nil || v.frame.Bounds().Dx() != b.Dx() || v.frame.Bounds().Dy() != b.Dy() {
		if v.frame != nil {
			v.frame.Deallocate()
		}
		v.frame = ebiten.NewImage(b.Dx(), b.Dy())
		v.rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	}

	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != 4*b.Dx() || rgba.Rect.Min != (image.Point{}) {
		draw.Draw(v.rgba, v.rgba.Bounds(), img, b.Min, draw.Src)
		rgba = v.rgba
	}
	v.frame.WritePixels(rgba.Pix)
}

// Close 释放视频源，之后的命令返回 ErrPlayerClosed
func (v *ClipVideo) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	v.closed = true
	v.rate = 0
	if v.frame != nil {
		v.frame.Deallocate()
		v.frame = nil
	}
	if v.source != nil {
		err := v.source.Close()
		v.source = nil
		return err
	}
	return nil
}
