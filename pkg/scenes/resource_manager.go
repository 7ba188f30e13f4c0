package scenes

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// ResourceManager is responsible for locating media assets and caching fonts.
//
// Relative asset paths from the configuration are resolved against a base
// directory (the directory of the configuration file, or the working directory).
// Fonts are created from the embedded Go Regular face, so label rendering never
// depends on files being present on the kiosk.
//
// Usage:
//
//	audioContext := audio.NewContext(48000)
//	rm := NewResourceManager(audioContext, ".")
//	face, err := rm.LoadFont(64)
type ResourceManager struct {
	audioContext *audio.Context
	baseDir      string

	fontOnce   sync.Once
	fontSource *text.GoTextFaceSource
	fontErr    error

	fontMu        sync.Mutex
	fontFaceCache map[float64]*text.GoTextFace // size -> face
}

// NewResourceManager creates a new ResourceManager instance.
//
// Parameters:
//   - audioContext: The global audio context (may be nil in tests).
//   - baseDir: Directory relative asset paths are resolved against; empty means the working directory.
//
// Returns:
//   - A pointer to a newly initialized ResourceManager with an empty font cache.
func NewResourceManager(audioContext *audio.Context, baseDir string) *ResourceManager {
	return &ResourceManager{
		audioContext:  audioContext,
		baseDir:       baseDir,
		fontFaceCache: make(map[float64]*text.GoTextFace),
	}
}

// AudioContext returns the shared audio context.
func (rm *ResourceManager) AudioContext() *audio.Context {
	return rm.audioContext
}

// ResolvePath returns path unchanged when absolute, otherwise joined with the base directory.
func (rm *ResourceManager) ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) || rm.baseDir == "" {
		return path
	}
	return filepath.Join(rm.baseDir, path)
}

// CheckAsset verifies that an asset exists and is a regular file.
//
// Returns:
//   - The resolved path.
//   - An error if the file is missing or is a directory.
func (rm *ResourceManager) CheckAsset(path string) (string, error) {
	resolved := rm.ResolvePath(path)
	info, err := os.Stat(resolved)
	if err != nil {
		return resolved, fmt.Errorf("asset %s: %w", resolved, err)
	}
	if info.IsDir() {
		return resolved, fmt.Errorf("asset %s is a directory", resolved)
	}
	return resolved, nil
}

// LoadFont creates (or returns the cached) text face of the given size.
//
// Parameters:
//   - size: The font size in points.
//
// Returns:
//   - A pointer to the text face.
//   - An error if the embedded font cannot be parsed.
func (rm *ResourceManager) LoadFont(size float64) (*text.GoTextFace, error) {
	rm.fontOnce.Do(func() {
		rm.fontSource, rm.fontErr = text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
		if rm.fontErr != nil {
			rm.fontErr = fmt.Errorf("failed to create font source: %w", rm.fontErr)
		}
	})
	if rm.fontErr != nil {
		return nil, rm.fontErr
	}

	rm.fontMu.Lock()
	defer rm.fontMu.Unlock()

	if face, exists := rm.fontFaceCache[size]; exists {
		return face, nil
	}
	face := &text.GoTextFace{
		Source:    rm.fontSource,
		Size:      size,
		Direction: text.DirectionLeftToRight,
	}
	rm.fontFaceCache[size] = face
	return face, nil
}
