package scenes

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// pointer 当前帧的指针状态（触摸优先，其次鼠标左键）
type pointer struct {
	X, Y         int
	Pressed      bool
	JustPressed  bool
	JustReleased bool
}

// readPointer 读取当前帧的指针状态
// 同时支持触摸屏和鼠标，有触摸时以第一个触摸点为准
func readPointer() pointer {
	var p pointer

	if touchIDs := ebiten.AppendTouchIDs(nil); len(touchIDs) > 0 {
		p.X, p.Y = ebiten.TouchPosition(touchIDs[0])
		p.Pressed = true
		p.JustPressed = len(inpututil.AppendJustPressedTouchIDs(nil)) > 0
		return p
	}
	if len(inpututil.AppendJustReleasedTouchIDs(nil)) > 0 {
		p.JustReleased = true
		return p
	}

	p.X, p.Y = ebiten.CursorPosition()
	p.Pressed = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	p.JustPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	p.JustReleased = inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)
	return p
}

// dragTracker 跟踪一次从可抓取区域开始的拖动
type dragTracker struct {
	active bool
}

// Update 用本帧的指针状态推进拖动
//
// 参数：
//   - p: 本帧指针状态
//   - grab: 判断按下位置是否在可抓取区域内
//
// 返回：
//   - x: 拖动中的指针 X 坐标
//   - dragging: 本帧是否处于拖动中
func (d *dragTracker) Update(p pointer, grab func(x, y int) bool) (x int, dragging bool) {
	if p.JustPressed {
		d.active = grab(p.X, p.Y)
	}
	if p.JustReleased || !p.Pressed {
		d.active = false
	}
	if !d.active {
		return 0, false
	}
	return p.X, true
}

// Active 是否正在拖动
func (d *dragTracker) Active() bool { return d.active }
