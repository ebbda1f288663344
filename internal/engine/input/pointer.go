package input

// PointerTarget receives camera gestures. camera.OrbitControls implements it.
type PointerTarget interface {
	Rotate(dx, dy float32)
	Zoom(delta float32)
	Pan(dx, dy float32)
}

// Pointer maps mouse gestures to a PointerTarget: left drag rotates, right
// drag pans, middle drag and the wheel zoom.
type Pointer struct {
	target PointerTarget
	held   Button

	// ZoomPerPixel converts vertical middle-drag pixels into wheel steps.
	ZoomPerPixel float32
}

// NewPointer creates a pointer router for target.
func NewPointer(target PointerTarget) *Pointer {
	return &Pointer{target: target, ZoomPerPixel: 0.05}
}

// Handle routes one event. It returns true if the event was consumed.
func (p *Pointer) Handle(e Event) bool {
	switch e.Type {
	case EventMouseDown:
		if p.held == 0 {
			p.held = e.Button
		}
		return true

	case EventMouseUp:
		if e.Button == p.held {
			p.held = 0
		}
		return true

	case EventMouseMove:
		dx, dy := float32(e.RelX), float32(e.RelY)
		switch p.held {
		case ButtonLeft:
			p.target.Rotate(dx, dy)
		case ButtonRight:
			p.target.Pan(dx, dy)
		case ButtonMiddle:
			p.target.Zoom(-dy * p.ZoomPerPixel)
		default:
			return false
		}
		return true

	case EventFocusLost:
		p.Release()
		return false

	case EventMouseWheel:
		if e.WheelY != 0 {
			p.target.Zoom(e.WheelY)
		}
		return true
	}
	return false
}

// HandleAll routes every event in events.
func (p *Pointer) HandleAll(events []Event) {
	for _, e := range events {
		p.Handle(e)
	}
}

// Release forgets any held button.
func (p *Pointer) Release() {
	p.held = 0
}
