package media

import "image"

// fakeVideo records commands and lets tests move the play head.
type fakeVideo struct {
	current  float64
	duration float64
	rate     float64
	closed   bool
	calls    []string
}

func (f *fakeVideo) Seek(seconds float64) error {
	if f.closed {
		return ErrPlayerClosed
	}
	f.calls = append(f.calls, "seek")
	f.current = seconds
	return nil
}

func (f *fakeVideo) PlayForward() error  { return f.set("forward", 1) }
func (f *fakeVideo) PlayBackward() error { return f.set("backward", -1) }
func (f *fakeVideo) Pause() error        { return f.set("pause", 0) }

func (f *fakeVideo) set(name string, rate float64) error {
	if f.closed {
		return ErrPlayerClosed
	}
	f.calls = append(f.calls, name)
	f.rate = rate
	return nil
}

func (f *fakeVideo) IsPlaying() bool      { return f.rate != 0 }
func (f *fakeVideo) CurrentTime() float64 { return f.current }
func (f *fakeVideo) Duration() float64    { return f.duration }

func (f *fakeVideo) count(name string) int {
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

// fakeAudio records heartbeat commands.
type fakeAudio struct {
	playing    bool
	rate       float64
	volume     float64
	rateSets   int
	volumeSets int
	starts     int
	stops      int
}

func (f *fakeAudio) Start() error {
	f.starts++
	f.playing = true
	return nil
}

func (f *fakeAudio) Stop() error {
	f.stops++
	f.playing = false
	return nil
}

func (f *fakeAudio) IsPlaying() bool { return f.playing }

func (f *fakeAudio) SetRate(rate float64) error {
	f.rateSets++
	f.rate = rate
	return nil
}

func (f *fakeAudio) SetVolume(volume float64) error {
	f.volumeSets++
	f.volume = volume
	return nil
}

// fakeSource is a frame source with solid-colour frames.
type fakeSource struct {
	fps    float64
	frames int
	closed bool
	reads  []int
}

func (s *fakeSource) FPS() float64    { return s.fps }
func (s *fakeSource) FrameCount() int { return s.frames }

func (s *fakeSource) ReadFrame(index int) (image.Image, error) {
	s.reads = append(s.reads, index)
	return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
}

func (s *fakeSource) Close() error {
	s.closed = true
	return nil
}
