package scenes

import (
	"os"
	"path/filepath"
	"testing"
)

// TestResolvePath tests resolving relative asset paths.
func TestResolvePath(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "video.mp4")

	tests := []struct {
		name    string
		baseDir string
		path    string
		want    string
	}{
		{"relative", "/srv/kiosk", "assets/loop.mp3", filepath.Join("/srv/kiosk", "assets/loop.mp3")},
		{"absolute", "/srv/kiosk", abs, abs},
		{"no base", "", "assets/loop.mp3", "assets/loop.mp3"},
		{"empty", "/srv/kiosk", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rm := NewResourceManager(nil, tt.baseDir)
			if got := rm.ResolvePath(tt.path); got != tt.want {
				t.Errorf("ResolvePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

// TestCheckAsset tests asset existence checks.
func TestCheckAsset(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "loop.mp3"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	rm := NewResourceManager(nil, dir)

	resolved, err := rm.CheckAsset("loop.mp3")
	if err != nil {
		t.Fatalf("CheckAsset: %v", err)
	}
	if resolved != filepath.Join(dir, "loop.mp3") {
		t.Errorf("resolved = %q", resolved)
	}

	if _, err := rm.CheckAsset("missing.mp4"); err == nil {
		t.Error("expected error for missing asset")
	}
	if _, err := rm.CheckAsset("."); err == nil {
		t.Error("expected error for a directory")
	}
}

// TestLoadFontCaching tests that faces are cached per size.
func TestLoadFontCaching(t *testing.T) {
	rm := NewResourceManager(nil, "")

	a, err := rm.LoadFont(64)
	if err != nil {
		t.Fatalf("LoadFont: %v", err)
	}
	b, err := rm.LoadFont(64)
	if err != nil {
		t.Fatalf("LoadFont: %v", err)
	}
	if a != b {
		t.Error("expected the cached face for the same size")
	}

	c, err := rm.LoadFont(32)
	if err != nil {
		t.Fatalf("LoadFont: %v", err)
	}
	if c == a || c.Size != 32 {
		t.Errorf("unexpected face for size 32: %+v", c)
	}
	if a.Source != c.Source {
		t.Error("faces should share the font source")
	}
}
