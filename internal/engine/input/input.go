// Package input defines the window events the viewer reacts to and routes
// pointer gestures to a camera controller. It has no SDL dependency; the
// window package translates SDL events into these.
package input

// EventType identifies an Event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
	EventFocusLost
)

// Button is a mouse button.
type Button uint8

// Mouse buttons, numbered as SDL does.
const (
	ButtonLeft   Button = 1
	ButtonMiddle Button = 2
	ButtonRight  Button = 3
)

// Key is a keyboard key the viewer binds.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyF12
	KeyB
	KeyR
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    Key
	Width  int
	Height int
	MouseX int
	MouseY int
	RelX   int
	RelY   int
	WheelY float32
	Button Button
}

// Queue collects events between frames.
type Queue struct {
	events []Event
}

// NewQueue creates an empty event queue.
func NewQueue() *Queue {
	return &Queue{
		events: make([]Event, 0, 16),
	}
}

// Push appends an event.
func (q *Queue) Push(e Event) {
	q.events = append(q.events, e)
}

// Drain returns the queued events and empties the queue. The returned slice
// is valid until the next Push.
func (q *Queue) Drain() []Event {
	events := q.events
	q.events = q.events[:0]
	return events
}

// Contains reports whether an event of type t is queued.
func (q *Queue) Contains(t EventType) bool {
	for _, e := range q.events {
		if e.Type == t {
			return true
		}
	}
	return false
}

// IsKeyPressed checks if a specific key was pressed in events.
func IsKeyPressed(events []Event, key Key) bool {
	for _, e := range events {
		if e.Type == EventKeyDown && e.Key == key {
			return true
		}
	}
	return false
}
