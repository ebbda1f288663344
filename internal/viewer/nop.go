package viewer

import (
	"github.com/Faultbox/robotview/internal/engine/camera"
	"github.com/Faultbox/robotview/internal/engine/scene"
)

// NopRenderer counts frames without drawing. It stands in for the GL
// renderer in headless runs.
type NopRenderer struct {
	Frames int
}

// Render records the frame.
func (r *NopRenderer) Render(*scene.Scene, *camera.OrbitCamera) error {
	r.Frames++
	return nil
}
