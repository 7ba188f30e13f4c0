package config

import (
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// validJSON 旧版 configuration.json 格式的配置（没有扩展字段）
const validJSON = `{
  "maxDistance": 400,
  "minDistance": 0,
  "saveZone": 50,
  "deathZone": 50,
  "startingVolume": 0.3,
  "finishingVolume": 1.0,
  "waitingVolume": 0.1,
  "startingHeartBeatSpeed": 1.0,
  "finishingHeartBeatSpeed": 2.0,
  "fullScreen": false,
  "showSimulationSlider": true,
  "debugOverlay": true,
  "frameRate": 30,
  "saveActivateSeconds": 3,
  "autoSaveSeconds": 120,
  "restartIntervalSeconds": 10,
  "portPath": "/dev/ttyUSB0"
}`

// TestParseLegacyJSON 测试解析旧版 JSON 并填充扩展字段默认值
func TestParseLegacyJSON(t *testing.T) {
	cfg, err := Parse([]byte(validJSON))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if cfg.MaxDistance != 400 || cfg.MinDistance != 0 {
		t.Errorf("distance range: got [%v, %v], want [0, 400]", cfg.MinDistance, cfg.MaxDistance)
	}
	if cfg.SaveActivateSeconds != 3 {
		t.Errorf("SaveActivateSeconds: got %v, want 3", cfg.SaveActivateSeconds)
	}
	if cfg.PortPath != "/dev/ttyUSB0" {
		t.Errorf("PortPath: got %q", cfg.PortPath)
	}
	if !cfg.ShowSimulationSlider || !cfg.DebugOverlay {
		t.Error("screen flags not parsed")
	}

	// 原文件没有的字段使用默认值
	if cfg.BaudRate != DefaultBaudRate {
		t.Errorf("BaudRate: got %v, want %v", cfg.BaudRate, DefaultBaudRate)
	}
	if cfg.InputThreshold != DefaultInputThreshold {
		t.Errorf("InputThreshold: got %v, want %v", cfg.InputThreshold, DefaultInputThreshold)
	}
	if cfg.VideoFile != DefaultVideoFile || cfg.KillVideoFile != DefaultKillVideoFile || cfg.HeartbeatFile != DefaultHeartbeatFile {
		t.Errorf("media defaults not applied: %+v", cfg)
	}
}

// TestParseYAML 测试 YAML 格式同样可用
func TestParseYAML(t *testing.T) {
	data := `
maxDistance: 300
minDistance: 20
saveZone: 40
deathZone: 30
startingVolume: 0.2
finishingVolume: 0.9
waitingVolume: 0.0
startingHeartBeatSpeed: 0.8
finishingHeartBeatSpeed: 1.6
frameRate: 60
saveActivateSeconds: 2
autoSaveSeconds: 60
restartIntervalSeconds: 5
fullScreen: true
showSimulationSlider: false
debugOverlay: false
portPath: ""
baudRate: 115200
videoFile: media/forward.mp4
`
	cfg, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cfg.BaudRate != 115200 {
		t.Errorf("BaudRate: got %v, want 115200", cfg.BaudRate)
	}
	if cfg.VideoFile != "media/forward.mp4" {
		t.Errorf("VideoFile: got %q", cfg.VideoFile)
	}
	if cfg.TPS() != 60 {
		t.Errorf("TPS: got %v, want 60", cfg.TPS())
	}
}

// TestParseInvalid 测试解析失败
func TestParseInvalid(t *testing.T) {
	if _, err := Parse([]byte("{not json")); err == nil {
		t.Error("expected parse error for malformed data")
	}
}

// TestParseMissingFields 测试缺少必需字段时解析失败，而不是按零值运行
func TestParseMissingFields(t *testing.T) {
	partial := `{
  "maxDistance": 400, "minDistance": 0, "saveZone": 50, "deathZone": 50,
  "startingHeartBeatSpeed": 1, "finishingHeartBeatSpeed": 2, "frameRate": 30
}`
	_, err := Parse([]byte(partial))
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("Parse() = %v, want ErrMissingField", err)
	}
	for _, key := range []string{"autoSaveSeconds", "saveActivateSeconds", "restartIntervalSeconds", "startingVolume", "portPath"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error should name missing field %q: %v", key, err)
		}
	}

	// 每个必需字段单独缺失都会失败
	for _, key := range requiredFields {
		t.Run(key, func(t *testing.T) {
			var fields map[string]any
			if err := yaml.Unmarshal([]byte(validJSON), &fields); err != nil {
				t.Fatal(err)
			}
			delete(fields, key)
			data, err := yaml.Marshal(fields)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := Parse(data); !errors.Is(err, ErrMissingField) {
				t.Errorf("Parse() without %s = %v, want ErrMissingField", key, err)
			}
		})
	}
}

// TestValidate 测试配置校验
func TestValidate(t *testing.T) {
	base, err := Parse([]byte(validJSON))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(c *Configuration)
		wantErr error
	}{
		{"有效配置", func(c *Configuration) {}, nil},
		{"量程颠倒", func(c *Configuration) { c.MinDistance = 500 }, ErrInvalidRange},
		{"量程相等", func(c *Configuration) { c.MinDistance = c.MaxDistance }, ErrInvalidRange},
		{"负安全区", func(c *Configuration) { c.SaveZone = -1 }, ErrNegativeZone},
		{"负死亡区", func(c *Configuration) { c.DeathZone = -1 }, ErrNegativeZone},
		{"零帧率", func(c *Configuration) { c.FrameRate = 0 }, ErrInvalidRate},
		{"负计时", func(c *Configuration) { c.RestartIntervalSeconds = -1 }, ErrNegativeTimer},
		{"音量越界", func(c *Configuration) { c.WaitingVolume = 1.5 }, ErrInvalidVolume},
		{"零速率", func(c *Configuration) { c.FinishingHeartBeatSpeed = 0 }, ErrInvalidSpeed},
		{"缺少视频", func(c *Configuration) { c.VideoFile = "" }, ErrMissingMedia},
		{"零波特率", func(c *Configuration) { c.BaudRate = 0 }, ErrInvalidBaudRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestOverlaps 测试安全区/死亡区重叠检测
func TestOverlaps(t *testing.T) {
	cfg := Configuration{MinDistance: 0, MaxDistance: 400, SaveZone: 50, DeathZone: 50}
	if cfg.Overlaps() {
		t.Error("50+50 < 400 should not overlap")
	}

	// 边界相接：[350,400) 与 [0,350) 不重叠
	cfg.SaveZone, cfg.DeathZone = 50, 350
	if cfg.Overlaps() {
		t.Error("touching half-open bands should not overlap")
	}

	cfg.SaveZone, cfg.DeathZone = 250, 250
	if !cfg.Overlaps() {
		t.Error("250+250 > 400 should overlap")
	}

	// 安全区宽度为 0 时安全区为空集
	cfg.SaveZone, cfg.DeathZone = 0, 500
	if cfg.Overlaps() {
		t.Error("empty save band cannot overlap")
	}
}
