package animation

import (
	"errors"
	"fmt"
	"time"

	"github.com/Faultbox/robotview/internal/engine/scene"
)

// StepMode selects how per-tick increments relate to frame time.
type StepMode string

const (
	// StepFixed adds the configured increments once per tick regardless of
	// frame time. Motion speed follows the display refresh rate.
	StepFixed StepMode = "fixed"

	// StepScaled multiplies the increments by dt * ReferenceRate, so motion
	// speed matches StepFixed at ReferenceRate and is independent of the
	// actual refresh rate.
	StepScaled StepMode = "scaled"
)

// Defaults for wheel animation.
const (
	DefaultPartPrefix    = "Wheel"
	DefaultSpinStep      = 0.5
	DefaultSteerStep     = 0.01
	DefaultReferenceRate = 60
)

// ErrAlreadyPopulated is returned when parts are registered a second time.
var ErrAlreadyPopulated = errors.New("animation: parts already populated")

// Options configures an Animator.
type Options struct {
	Prefix        string
	SpinStep      float64
	SteerStep     float64
	Mode          StepMode
	ReferenceRate float64
}

// DefaultOptions returns fixed-step wheel animation with the standard
// increments.
func DefaultOptions() Options {
	return Options{
		Prefix:        DefaultPartPrefix,
		SpinStep:      DefaultSpinStep,
		SteerStep:     DefaultSteerStep,
		Mode:          StepFixed,
		ReferenceRate: DefaultReferenceRate,
	}
}

// Validate checks the options for usable values.
func (o Options) Validate() error {
	switch o.Mode {
	case StepFixed:
	case StepScaled:
		if o.ReferenceRate <= 0 {
			return fmt.Errorf("reference rate must be positive for scaled steps, got %v", o.ReferenceRate)
		}
	default:
		return fmt.Errorf("unknown step mode %q", o.Mode)
	}
	if !finite(o.SpinStep) || !finite(o.SteerStep) {
		return errors.New("step increments must be finite")
	}
	return nil
}

// Animator owns the animated part list. The list is empty until Populate is
// called and fixed afterwards. An Animator is not safe for concurrent use;
// it is driven from the frame loop.
type Animator struct {
	opts      Options
	parts     []*Part
	populated bool
	ticks     uint64
}

// NewAnimator creates an animator with no parts.
func NewAnimator(opts Options) (*Animator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Animator{opts: opts}, nil
}

// Prefix returns the node name prefix used for discovery.
func (a *Animator) Prefix() string { return a.opts.Prefix }

// Populate registers the parts found under root. Passing a nil root marks the
// animator populated with no parts, which is how a failed load is recorded.
// It returns the number of parts registered.
func (a *Animator) Populate(root scene.Node) (int, error) {
	if a.populated {
		return 0, ErrAlreadyPopulated
	}
	a.populated = true
	if root == nil {
		return 0, nil
	}
	a.parts = Discover(root, a.opts.Prefix)
	for _, p := range a.parts {
		p.Apply()
	}
	return len(a.parts), nil
}

// Populated reports whether Populate has been called.
func (a *Animator) Populated() bool { return a.populated }

// Parts returns the registered parts in discovery order. Callers must not
// modify the slice.
func (a *Animator) Parts() []*Part { return a.parts }

// Ticks returns the number of Step calls so far.
func (a *Animator) Ticks() uint64 { return a.ticks }

// Step advances every part by one tick and applies the new orientation.
// dt is only used in StepScaled mode.
func (a *Animator) Step(dt time.Duration) {
	a.ticks++
	if len(a.parts) == 0 {
		return
	}

	spin, steer := a.opts.SpinStep, a.opts.SteerStep
	if a.opts.Mode == StepScaled {
		k := dt.Seconds() * a.opts.ReferenceRate
		spin *= k
		steer *= k
	}

	for _, p := range a.parts {
		p.State.Advance(spin, steer)
		p.Apply()
	}
}
