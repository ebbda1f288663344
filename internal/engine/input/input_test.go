package input

import (
	"testing"
)

type recorder struct {
	rotate, pan [2]float32
	zoom        float32
	calls       int
}

func (r *recorder) Rotate(dx, dy float32) { r.rotate[0] += dx; r.rotate[1] += dy; r.calls++ }
func (r *recorder) Pan(dx, dy float32)    { r.pan[0] += dx; r.pan[1] += dy; r.calls++ }
func (r *recorder) Zoom(d float32)        { r.zoom += d; r.calls++ }

func TestPointerGestures(t *testing.T) {
	tests := []struct {
		name   string
		button Button
		check  func(*recorder) bool
	}{
		{"left drag rotates", ButtonLeft, func(r *recorder) bool { return r.rotate == [2]float32{3, 4} }},
		{"right drag pans", ButtonRight, func(r *recorder) bool { return r.pan == [2]float32{3, 4} }},
		{"middle drag zooms", ButtonMiddle, func(r *recorder) bool { return r.zoom == -4*0.05 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{}
			p := NewPointer(r)
			p.HandleAll([]Event{
				{Type: EventMouseDown, Button: tt.button},
				{Type: EventMouseMove, RelX: 3, RelY: 4},
				{Type: EventMouseUp, Button: tt.button},
				{Type: EventMouseMove, RelX: 10, RelY: 10},
			})
			if r.calls != 1 || !tt.check(r) {
				t.Errorf("unexpected gesture result: %+v", r)
			}
		})
	}
}

func TestPointerWheelZooms(t *testing.T) {
	r := &recorder{}
	p := NewPointer(r)

	if !p.Handle(Event{Type: EventMouseWheel, WheelY: 2}) {
		t.Error("wheel event not consumed")
	}
	p.Handle(Event{Type: EventMouseWheel})
	if r.zoom != 2 || r.calls != 1 {
		t.Errorf("zoom = %v after %d calls, want 2 after 1", r.zoom, r.calls)
	}
}

func TestPointerIgnoresMoveWithoutButton(t *testing.T) {
	r := &recorder{}
	p := NewPointer(r)

	if p.Handle(Event{Type: EventMouseMove, RelX: 5}) {
		t.Error("hover move should not be consumed")
	}
	if p.Handle(Event{Type: EventKeyDown, Key: KeyB}) {
		t.Error("key event should not be consumed")
	}
	if r.calls != 0 {
		t.Errorf("target called %d times", r.calls)
	}
}

func TestPointerFirstButtonWins(t *testing.T) {
	r := &recorder{}
	p := NewPointer(r)

	p.HandleAll([]Event{
		{Type: EventMouseDown, Button: ButtonLeft},
		{Type: EventMouseDown, Button: ButtonRight},
		{Type: EventMouseUp, Button: ButtonRight},
		{Type: EventMouseMove, RelX: 1, RelY: 1},
	})
	if r.rotate != [2]float32{1, 1} || r.pan != [2]float32{} {
		t.Errorf("rotate = %v, pan = %v", r.rotate, r.pan)
	}

	p.Handle(Event{Type: EventFocusLost})
	p.Handle(Event{Type: EventMouseMove, RelX: 1})
	if r.calls != 1 {
		t.Errorf("move after focus loss reached target")
	}
}

func TestQueue(t *testing.T) {
	q := NewQueue()
	q.Push(Event{Type: EventKeyDown, Key: KeyF12})
	q.Push(Event{Type: EventQuit})

	if !q.Contains(EventQuit) {
		t.Error("Contains(EventQuit) = false")
	}
	events := q.Drain()
	if len(events) != 2 {
		t.Fatalf("Drain returned %d events", len(events))
	}
	if !IsKeyPressed(events, KeyF12) || IsKeyPressed(events, KeyB) {
		t.Error("IsKeyPressed mismatch")
	}
	if q.Contains(EventQuit) {
		t.Error("queue not empty after Drain")
	}
}
