package scenes

import "testing"

// TestDragTracker 测试拖动只从可抓取区域开始，松开后结束
func TestDragTracker(t *testing.T) {
	grab := func(x, y int) bool { return y >= 100 && y <= 120 }

	tests := []struct {
		name         string
		frames       []pointer
		wantDragging bool
		wantX        int
	}{
		{
			name:   "press outside grab area",
			frames: []pointer{{X: 10, Y: 10, Pressed: true, JustPressed: true}, {X: 50, Y: 10, Pressed: true}},
		},
		{
			name:         "press inside and move",
			frames:       []pointer{{X: 10, Y: 110, Pressed: true, JustPressed: true}, {X: 300, Y: 40, Pressed: true}},
			wantDragging: true,
			wantX:        300,
		},
		{
			name: "release ends drag",
			frames: []pointer{
				{X: 10, Y: 110, Pressed: true, JustPressed: true},
				{X: 20, Y: 110, JustReleased: true},
			},
		},
		{
			name:   "hover without press",
			frames: []pointer{{X: 10, Y: 110}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d dragTracker
			var x int
			var dragging bool
			for _, p := range tt.frames {
				x, dragging = d.Update(p, grab)
			}
			if dragging != tt.wantDragging || x != tt.wantX {
				t.Errorf("Update = (%d, %v), want (%d, %v)", x, dragging, tt.wantX, tt.wantDragging)
			}
			if d.Active() != tt.wantDragging {
				t.Errorf("Active() = %v, want %v", d.Active(), tt.wantDragging)
			}
		})
	}
}
