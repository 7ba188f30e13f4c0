package scenes

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// MockScene is a mock implementation of the Scene interface for testing.
type MockScene struct {
	updateCalled bool
	drawCalled   bool
	closeCalled  int
	deltaTime    float64
}

// Update records that Update was called and stores the deltaTime.
func (m *MockScene) Update(deltaTime float64) {
	m.updateCalled = true
	m.deltaTime = deltaTime
}

// Draw records that Draw was called.
func (m *MockScene) Draw(screen *ebiten.Image) {
	m.drawCalled = true
}

// Close records how many times Close was called.
func (m *MockScene) Close() error {
	m.closeCalled++
	return nil
}

// plainScene has no resources to release.
type plainScene struct{}

func (plainScene) Update(deltaTime float64)  {}
func (plainScene) Draw(screen *ebiten.Image) {}

// TestNewSceneManager verifies that NewSceneManager creates a valid instance.
func TestNewSceneManager(t *testing.T) {
	sm := NewSceneManager()
	if sm == nil {
		t.Fatal("NewSceneManager() returned nil")
	}
	if sm.currentScene != nil {
		t.Error("Expected currentScene to be nil initially")
	}
}

// TestSceneManagerSwitchTo verifies that SwitchTo correctly changes the active scene.
func TestSceneManagerSwitchTo(t *testing.T) {
	sm := NewSceneManager()
	mockScene := &MockScene{}

	sm.SwitchTo(mockScene)

	if sm.currentScene != mockScene {
		t.Error("SwitchTo did not set the current scene correctly")
	}
}

// TestSceneManagerUpdate verifies that Update calls the current scene's Update method.
func TestSceneManagerUpdate(t *testing.T) {
	sm := NewSceneManager()
	mockScene := &MockScene{}
	sm.SwitchTo(mockScene)

	deltaTime := 0.016 // ~60 FPS
	sm.Update(deltaTime)

	if !mockScene.updateCalled {
		t.Error("Scene's Update method was not called")
	}
	if mockScene.deltaTime != deltaTime {
		t.Errorf("Expected deltaTime %.3f, got %.3f", deltaTime, mockScene.deltaTime)
	}
}

// TestSceneManagerUpdateNoScene verifies that Update handles nil scene gracefully.
func TestSceneManagerUpdateNoScene(t *testing.T) {
	sm := NewSceneManager()
	// Don't set any scene, currentScene should be nil
	sm.Update(0.016) // Should not panic
}

// TestSceneManagerDraw verifies that Draw calls the current scene's Draw method.
func TestSceneManagerDraw(t *testing.T) {
	sm := NewSceneManager()
	mockScene := &MockScene{}
	sm.SwitchTo(mockScene)

	// Create a dummy screen image
	screen := ebiten.NewImage(800, 600)
	sm.Draw(screen)

	if !mockScene.drawCalled {
		t.Error("Scene's Draw method was not called")
	}
}

// TestSceneManagerDrawNoScene verifies that Draw handles nil scene gracefully.
func TestSceneManagerDrawNoScene(t *testing.T) {
	sm := NewSceneManager()
	screen := ebiten.NewImage(800, 600)
	// Don't set any scene, currentScene should be nil
	sm.Draw(screen) // Should not panic
}

// TestSceneManagerSwitchBetweenScenes verifies switching between multiple scenes.
func TestSceneManagerSwitchBetweenScenes(t *testing.T) {
	sm := NewSceneManager()
	scene1 := &MockScene{}
	scene2 := &MockScene{}

	// Switch to scene1
	sm.SwitchTo(scene1)
	sm.Update(0.016)

	if !scene1.updateCalled {
		t.Error("Scene1's Update was not called")
	}
	if scene2.updateCalled {
		t.Error("Scene2's Update should not have been called yet")
	}

	// Switch to scene2
	sm.SwitchTo(scene2)
	sm.Update(0.016)

	if !scene2.updateCalled {
		t.Error("Scene2's Update was not called after switching")
	}
}

// TestSceneManagerSwitchToClosesPrevious verifies the replaced scene releases its resources.
func TestSceneManagerSwitchToClosesPrevious(t *testing.T) {
	sm := NewSceneManager()
	first := &MockScene{}
	second := &MockScene{}

	sm.SwitchTo(first)
	sm.SwitchTo(first)
	if first.closeCalled != 0 {
		t.Fatal("switching to the same scene must not close it")
	}

	sm.SwitchTo(second)
	if first.closeCalled != 1 {
		t.Errorf("expected previous scene to be closed once, got %d", first.closeCalled)
	}
	if sm.GetCurrentScene() != second {
		t.Error("GetCurrentScene did not return the new scene")
	}
}

// TestSceneManagerClose verifies Close releases the current scene and stops updates.
func TestSceneManagerClose(t *testing.T) {
	sm := NewSceneManager()
	mockScene := &MockScene{}
	sm.SwitchTo(mockScene)

	if err := sm.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if mockScene.closeCalled != 1 {
		t.Errorf("expected Close to be called once, got %d", mockScene.closeCalled)
	}

	sm.Update(0.016)
	if mockScene.updateCalled {
		t.Error("Update must not reach a closed scene")
	}
	if err := sm.Close(); err != nil {
		t.Errorf("second Close returned error: %v", err)
	}
	if mockScene.closeCalled != 1 {
		t.Errorf("scene closed twice")
	}
}

// TestSceneManagerCloseWithoutCloser verifies scenes without resources are simply dropped.
func TestSceneManagerCloseWithoutCloser(t *testing.T) {
	sm := NewSceneManager()
	sm.SwitchTo(plainScene{})
	if err := sm.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if sm.GetCurrentScene() != nil {
		t.Error("expected no current scene after Close")
	}
}
