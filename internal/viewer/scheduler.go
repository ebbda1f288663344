package viewer

import (
	"context"
	"time"
)

// Scheduler paces the frame loop. NextFrame blocks until the next frame is
// due and returns its timestamp. It returns ErrSurfaceClosed when the
// surface is gone, or ctx's error when ctx is done.
type Scheduler interface {
	NextFrame(ctx context.Context) (time.Time, error)
}

// SchedulerFunc adapts a function to a Scheduler.
type SchedulerFunc func(ctx context.Context) (time.Time, error)

// NextFrame calls f(ctx).
func (f SchedulerFunc) NextFrame(ctx context.Context) (time.Time, error) {
	return f(ctx)
}

// IntervalScheduler schedules frames at a fixed interval. A zero interval
// runs frames back to back.
type IntervalScheduler struct {
	interval time.Duration
	ticker   *time.Ticker
}

// NewIntervalScheduler creates a scheduler for the given frame interval.
func NewIntervalScheduler(interval time.Duration) *IntervalScheduler {
	return &IntervalScheduler{interval: interval}
}

// RateInterval converts a frame rate in Hz to an interval. Non-positive
// rates yield zero.
func RateInterval(hz float64) time.Duration {
	if hz <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / hz)
}

// NextFrame waits for the next tick of the interval.
func (s *IntervalScheduler) NextFrame(ctx context.Context) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	if s.interval <= 0 {
		return time.Now(), nil
	}
	if s.ticker == nil {
		s.ticker = time.NewTicker(s.interval)
	}
	select {
	case t := <-s.ticker.C:
		return t, nil
	case <-ctx.Done():
		return time.Time{}, ctx.Err()
	}
}

// Stop releases the ticker.
func (s *IntervalScheduler) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
}
