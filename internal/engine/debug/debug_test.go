package debug

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Faultbox/robotview/pkg/math"
)

func TestGridLinesVertexCount(t *testing.T) {
	tests := []struct {
		name      string
		size      float32
		divisions int
		want      int
	}{
		{"default", DefaultGridSize, DefaultGridDivisions, 44},
		{"single cell", 1, 1, 8},
		{"zero divisions", 10, 0, 0},
		{"zero size", 0, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := len(GridLines(tt.size, tt.divisions, DefaultCenterColor, DefaultLineColor))
			if got != tt.want {
				t.Errorf("len(GridLines) = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGridLinesExtentAndColors(t *testing.T) {
	verts := GridLines(DefaultGridSize, DefaultGridDivisions, 0xff0000, 0x0000ff)

	centers := 0
	for _, v := range verts {
		if v.Y != 0 {
			t.Fatalf("vertex off the ground plane: %+v", v)
		}
		if v.X < -5.5 || v.X > 5.5 || v.Z < -5.5 || v.Z > 5.5 {
			t.Fatalf("vertex outside grid: %+v", v)
		}
		if v.R == 1 && v.B == 0 {
			centers++
		}
	}
	// Two center lines, two vertices each.
	if centers != 4 {
		t.Errorf("center-colored vertices = %d, want 4", centers)
	}
}

func TestBoxLines(t *testing.T) {
	world := math.Translate(math.Vec3{X: 10})
	verts := BoxLines(math.Vec3{X: -1, Y: -1, Z: -1}, math.Vec3{X: 1, Y: 1, Z: 1}, world, DefaultBoxColor)

	if len(verts) != BoxVertexCount {
		t.Fatalf("len(BoxLines) = %d, want %d", len(verts), BoxVertexCount)
	}
	for _, v := range verts {
		if v.X != 9 && v.X != 11 {
			t.Errorf("vertex X = %v, want 9 or 11", v.X)
		}
	}
}

func TestScreenshotsSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	s := NewScreenshots(dir, "robot")
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	// 2x2 image: bottom row red, top row blue (OpenGL order).
	pixels := []byte{
		255, 0, 0, 255, 255, 0, 0, 255,
		0, 0, 255, 255, 0, 0, 255, 255,
	}
	path, err := s.Save(pixels, 2, 2)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(path), "robot_2024-05-01_12-00-00_1") {
		t.Errorf("unexpected file name %q", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	r, _, b, _ := img.At(0, 0).RGBA()
	if b == 0 || r != 0 {
		t.Errorf("top-left pixel should be blue after flip, got r=%d b=%d", r, b)
	}
}

func TestScreenshotsSizeMismatch(t *testing.T) {
	s := NewScreenshots(t.TempDir(), "robot")
	if _, err := s.Save(make([]byte, 3), 1, 1); err == nil {
		t.Error("expected error for short pixel buffer")
	}
	if _, err := s.Save(nil, 0, 0); err == nil {
		t.Error("expected error for empty size")
	}
}
