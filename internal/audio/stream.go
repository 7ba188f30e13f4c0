package audio

import (
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
)

// resampleQuality is the interpolation quality passed to beep's resampler.
const resampleQuality = 4

// bytesPerFrame is one 16-bit little-endian stereo frame, the format
// expected by Ebitengine's audio.NewPlayer.
const bytesPerFrame = 4

// Stream converts a beep streamer into 16-bit stereo PCM for Ebitengine.
// The playback rate can be changed while Ebitengine's audio goroutine reads.
type Stream struct {
	mu        sync.Mutex
	resampler *beep.Resampler
	base      float64 // source rate / output rate
	rate      float64
	buf       [][2]float64
}

// NewStream wraps src so it plays at the output sample rate.
//
// Parameters:
//   - src: Source streamer (usually a looped decoder)
//   - srcRate: Sample rate of src
//   - outRate: Sample rate of the Ebitengine audio context
//
// Returns:
//   - *Stream: PCM reader, playing at rate 1
func NewStream(src beep.Streamer, srcRate, outRate beep.SampleRate) *Stream {
	base := float64(srcRate) / float64(outRate)
	return &Stream{
		resampler: beep.ResampleRatio(resampleQuality, base, src),
		base:      base,
		rate:      1,
	}
}

// SetRate changes the playback speed. 1 is the recorded speed, 2 is twice as fast.
// Non-positive rates are ignored.
func (s *Stream) SetRate(rate float64) {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rate = rate
	s.resampler.SetRatio(s.base * rate)
}

// Rate returns the current playback speed.
func (s *Stream) Rate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rate
}

// Read reads resampled PCM data into p.
// Implements io.Reader interface.
func (s *Stream) Read(p []byte) (int, error) {
	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cap(s.buf) < frames {
		s.buf = make([][2]float64, frames)
	}
	buf := s.buf[:frames]

	n, ok := s.resampler.Stream(buf)
	for i := 0; i < n; i++ {
		putSample(p[i*bytesPerFrame:], buf[i][0])
		putSample(p[i*bytesPerFrame+2:], buf[i][1])
	}
	if !ok || n == 0 {
		if err := s.resampler.Err(); err != nil {
			return n * bytesPerFrame, err
		}
		return n * bytesPerFrame, io.EOF
	}
	return n * bytesPerFrame, nil
}

// putSample writes a [-1, 1] sample as a little-endian int16.
func putSample(b []byte, v float64) {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	pcm := int16(v * math.MaxInt16)
	b[0] = byte(pcm)
	b[1] = byte(pcm >> 8)
}

// DecodeLoop decodes an MP3 file and loops it forever.
//
// Parameters:
//   - rc: MP3 data; closed together with the returned closer
//
// Returns:
//   - beep.Streamer: Endless stream
//   - beep.Format: Format of the decoded file
//   - io.Closer: Releases the decoder
//   - error: Error if decoding fails
func DecodeLoop(rc io.ReadCloser) (beep.Streamer, beep.Format, io.Closer, error) {
	streamer, format, err := mp3.Decode(rc)
	if err != nil {
		return nil, beep.Format{}, nil, fmt.Errorf("failed to decode mp3: %w", err)
	}
	return beep.Loop(-1, streamer), format, streamer, nil
}
