package camera

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 0.01
}

func TestNew(t *testing.T) {
	cam := New(1000, 600, 2000, 1200)

	// Should be centered on the arena, showing all of it
	if cam.X != 1000 || cam.Y != 600 {
		t.Errorf("expected camera at (1000, 600), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 0.5 {
		t.Errorf("expected zoom 0.5, got %f", cam.Zoom)
	}
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := New(1000, 600, 1000, 600)

	// Camera center should map to screen center
	sx, sy := cam.WorldToScreen(500, 300)
	if !near(sx, 500) || !near(sy, 300) {
		t.Errorf("expected screen center (500, 300), got (%f, %f)", sx, sy)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.SetZoom(2)
	cam.Pan(-300, 120)

	testCases := []struct{ sx, sy float32 }{
		{640, 360},  // center
		{100, 100},  // top-left
		{1200, 600}, // near bottom-right
	}

	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if !near(sx, tc.sx) || !near(sy, tc.sy) {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestPanStaysInsideArena(t *testing.T) {
	cam := New(1000, 600, 1000, 600)
	cam.SetZoom(2) // visible area 500x300

	cam.Pan(-5000, -5000)
	minX, minY, _, _ := cam.VisibleWorldBounds()
	if !near(minX, 0) || !near(minY, 0) {
		t.Errorf("expected view pinned to top-left corner, got min (%f, %f)", minX, minY)
	}

	cam.Pan(5000, 5000)
	_, _, maxX, maxY := cam.VisibleWorldBounds()
	if !near(maxX, 1000) || !near(maxY, 600) {
		t.Errorf("expected view pinned to bottom-right corner, got max (%f, %f)", maxX, maxY)
	}
}

func TestPanCentersWhenArenaFits(t *testing.T) {
	cam := New(1000, 600, 1000, 600)
	cam.Pan(300, -200)
	if cam.X != 500 || cam.Y != 300 {
		t.Errorf("expected centered camera at min zoom, got (%f, %f)", cam.X, cam.Y)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(800, 600, 1600, 800)

	// MinZoom fits the whole arena: min(800/1600, 600/800) = 0.5
	if cam.MinZoom != 0.5 {
		t.Errorf("expected MinZoom 0.5, got %f", cam.MinZoom)
	}

	cam.SetZoom(0.1) // Below min
	if cam.Zoom != 0.5 {
		t.Errorf("expected zoom clamped to 0.5, got %f", cam.Zoom)
	}

	cam.SetZoom(20.0) // Above max
	if cam.Zoom != 8.0 {
		t.Errorf("expected zoom clamped to 8.0, got %f", cam.Zoom)
	}
}

func TestZoomAtKeepsCursorPoint(t *testing.T) {
	cam := New(1000, 600, 1000, 600)
	cam.SetZoom(2)

	sx, sy := float32(500), float32(300)
	wx, wy := cam.ScreenToWorld(sx, sy)
	cam.ZoomAt(1.5, sx, sy)
	ax, ay := cam.ScreenToWorld(sx, sy)
	if !near(ax, wx) || !near(ay, wy) {
		t.Errorf("point under cursor moved from (%f, %f) to (%f, %f)", wx, wy, ax, ay)
	}
	if !near(cam.Zoom, 3) {
		t.Errorf("expected zoom 3, got %f", cam.Zoom)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1000, 600, 1000, 600)
	cam.SetZoom(2) // visible (250,150)-(750,450)

	if !cam.IsVisible(500, 300, 1) {
		t.Error("center should be visible")
	}
	if cam.IsVisible(900, 550, 10) {
		t.Error("far point should not be visible")
	}
	if !cam.IsVisible(200, 300, 60) {
		t.Error("edge point with large radius should be visible")
	}
}

func TestResizeRaisesMinZoom(t *testing.T) {
	cam := New(500, 300, 1000, 600)
	cam.Resize(1000, 600)
	if cam.MinZoom != 1 || cam.Zoom != 1 {
		t.Errorf("expected zoom 1 after resize, got min %f zoom %f", cam.MinZoom, cam.Zoom)
	}
}

func TestReset(t *testing.T) {
	cam := New(1000, 600, 1000, 600)
	cam.SetZoom(2.5)
	cam.Pan(200, 100)

	cam.Reset()

	if cam.X != 500 || cam.Y != 300 {
		t.Errorf("expected position (500, 300), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
}
