package camera

// residualEpsilon is the pending motion below which controls come to rest.
const residualEpsilon = 1e-6

// ControlSettings holds the sensitivity and damping of OrbitControls.
type ControlSettings struct {
	RotateSpeed float32 // Radians per pixel of drag
	ZoomSpeed   float32 // Fraction of distance per wheel step
	PanSpeed    float32 // Fraction of distance per pixel of drag
	Damping     float32 // Fraction of pending motion applied per Advance, in (0, 1]
}

// DefaultControlSettings returns the standard pointer sensitivity.
func DefaultControlSettings() ControlSettings {
	return ControlSettings{
		RotateSpeed: 0.005,
		ZoomSpeed:   0.1,
		PanSpeed:    0.002,
		Damping:     0.2,
	}
}

// OrbitControls turns pointer input into smoothed camera motion. Input
// handlers only accumulate motion; Advance applies a damped share of it
// once per frame. With nothing pending Advance leaves the camera untouched.
type OrbitControls struct {
	Camera   *OrbitCamera
	Settings ControlSettings
	Enabled  bool

	yaw, pitch float32
	zoom       float32
	panX, panY float32
}

// NewOrbitControls creates controls driving cam.
func NewOrbitControls(cam *OrbitCamera, settings ControlSettings) *OrbitControls {
	if settings.Damping <= 0 || settings.Damping > 1 {
		settings.Damping = 1
	}
	return &OrbitControls{Camera: cam, Settings: settings, Enabled: true}
}

// Rotate queues an orbit from a drag of dx, dy pixels.
func (o *OrbitControls) Rotate(dx, dy float32) {
	if !o.Enabled {
		return
	}
	o.yaw -= dx * o.Settings.RotateSpeed
	o.pitch += dy * o.Settings.RotateSpeed
}

// Zoom queues a dolly; positive delta moves toward the target.
func (o *OrbitControls) Zoom(delta float32) {
	if !o.Enabled {
		return
	}
	o.zoom += delta * o.Settings.ZoomSpeed
}

// Pan queues a target translation from a drag of dx, dy pixels.
func (o *OrbitControls) Pan(dx, dy float32) {
	if !o.Enabled {
		return
	}
	o.panX += dx * o.Settings.PanSpeed
	o.panY += dy * o.Settings.PanSpeed
}

// Pending reports whether any motion is still queued.
func (o *OrbitControls) Pending() bool {
	return o.yaw != 0 || o.pitch != 0 || o.zoom != 0 || o.panX != 0 || o.panY != 0
}

// Advance applies one frame of queued motion. It is idempotent when nothing
// is pending.
func (o *OrbitControls) Advance() {
	if !o.Pending() {
		return
	}
	c := o.Camera
	d := o.Settings.Damping

	if o.yaw != 0 || o.pitch != 0 {
		c.Yaw += take(&o.yaw, d)
		c.Pitch += take(&o.pitch, d)
	}

	if o.zoom != 0 {
		c.Distance *= 1 - take(&o.zoom, d)
	}

	if o.panX != 0 || o.panY != 0 {
		right, up := c.Basis()
		dx := take(&o.panX, d) * c.Distance
		dy := take(&o.panY, d) * c.Distance
		c.Target = c.Target.Add(right.Scale(-dx)).Add(up.Scale(dy))
	}

	c.clamp()
}

// Reset drops all queued motion.
func (o *OrbitControls) Reset() {
	o.yaw, o.pitch, o.zoom, o.panX, o.panY = 0, 0, 0, 0, 0
}

// take removes the damped share of *pending and returns it. A remainder
// below residualEpsilon is applied in full.
func take(pending *float32, damping float32) float32 {
	step := *pending * damping
	rest := *pending - step
	if rest < residualEpsilon && rest > -residualEpsilon {
		step, rest = *pending, 0
	}
	*pending = rest
	return step
}
