// Package video decodes video files frame by frame with OpenCV.
package video

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// ErrNotOpened is returned when OpenCV cannot open the file.
var ErrNotOpened = errors.New("video file could not be opened")

// File is a seekable video file.
// Frames are read sequentially when possible and seeked otherwise.
type File struct {
	mu      sync.Mutex
	capture *gocv.VideoCapture
	fps     float64
	frames  int
	width   int
	height  int

	bgr  gocv.Mat
	rgba gocv.Mat
	next int // index of the frame the next Read returns
}

// Open opens a video file.
//
// Parameters:
//   - path: File path
//
// Returns:
//   - *File: Opened video positioned at frame 0
//   - error: Error if the file cannot be opened or has no frames
func Open(path string) (*File, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotOpened, path)
	}

	f := &File{
		capture: capture,
		fps:     capture.Get(gocv.VideoCaptureFPS),
		frames:  int(capture.Get(gocv.VideoCaptureFrameCount)),
		width:   int(capture.Get(gocv.VideoCaptureFrameWidth)),
		height:  int(capture.Get(gocv.VideoCaptureFrameHeight)),
		bgr:     gocv.NewMat(),
		rgba:    gocv.NewMat(),
	}
	if f.fps <= 0 || f.frames <= 0 {
		f.Close()
		return nil, fmt.Errorf("%s: invalid stream (fps=%v, frames=%d)", path, f.fps, f.frames)
	}
	return f, nil
}

// FPS returns the native frame rate.
func (f *File) FPS() float64 { return f.fps }

// FrameCount returns the number of frames.
func (f *File) FrameCount() int { return f.frames }

// Size returns the frame dimensions.
func (f *File) Size() (int, int) { return f.width, f.height }

// ReadFrame decodes the frame at index.
//
// Parameters:
//   - index: Frame index in [0, FrameCount)
//
// Returns:
//   - image.Image: RGBA frame (a new image on every call)
//   - error: Error if the frame cannot be decoded
func (f *File) ReadFrame(index int) (image.Image, error) {
	if index < 0 || index >= f.frames {
		return nil, fmt.Errorf("frame %d out of range [0, %d)", index, f.frames)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.capture == nil {
		return nil, ErrNotOpened
	}
	if index != f.next {
		f.capture.Set(gocv.VideoCapturePosFrames, float64(index))
	}
	if ok := f.capture.Read(&f.bgr); !ok || f.bgr.Empty() {
		f.next = -1
		return nil, fmt.Errorf("failed to read frame %d", index)
	}
	f.next = index + 1

	gocv.CvtColor(f.bgr, &f.rgba, gocv.ColorBGRToRGBA)
	img, err := f.rgba.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert frame %d: %w", index, err)
	}
	return img, nil
}

// Close releases the capture and buffers.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.capture == nil {
		return nil
	}
	err := f.capture.Close()
	f.capture = nil
	f.bgr.Close()
	f.rgba.Close()
	return err
}
