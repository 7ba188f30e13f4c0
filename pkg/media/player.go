// Package media 把状态机的输出转换为视频和心跳音频的播放指令
package media

import "errors"

// ErrPlayerClosed 播放器已释放（或从未就绪），调用被忽略
var ErrPlayerClosed = errors.New("player is closed")

// VideoPlayer 视频播放器
// 所有命令都是非阻塞的，调用方每个 tick 按需重发
type VideoPlayer interface {
	Seek(seconds float64) error
	PlayForward() error
	PlayBackward() error
	Pause() error
	IsPlaying() bool
	CurrentTime() float64
	Duration() float64
}

// AudioLoop 循环播放的音频
type AudioLoop interface {
	Start() error
	Stop() error
	IsPlaying() bool
	SetRate(rate float64) error
	SetVolume(volume float64) error
}

// closedVideo 缺失的视频播放器，所有命令返回 ErrPlayerClosed
type closedVideo struct{}

func (closedVideo) Seek(float64) error   { return ErrPlayerClosed }
func (closedVideo) PlayForward() error   { return ErrPlayerClosed }
func (closedVideo) PlayBackward() error  { return ErrPlayerClosed }
func (closedVideo) Pause() error         { return ErrPlayerClosed }
func (closedVideo) IsPlaying() bool      { return false }
func (closedVideo) CurrentTime() float64 { return 0 }
func (closedVideo) Duration() float64    { return 0 }

// closedAudio 缺失的音频循环
type closedAudio struct{}

func (closedAudio) Start() error            { return ErrPlayerClosed }
func (closedAudio) Stop() error             { return ErrPlayerClosed }
func (closedAudio) IsPlaying() bool         { return false }
func (closedAudio) SetRate(float64) error   { return ErrPlayerClosed }
func (closedAudio) SetVolume(float64) error { return ErrPlayerClosed }
