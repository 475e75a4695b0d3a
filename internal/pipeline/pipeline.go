// Package pipeline drives the animated agent-stage progression shown while
// a generation request is in flight. The animation is a deliberate UX
// smoothing layer: it is decoupled from real backend latency and only sets
// the minimum time before results may be revealed.
package pipeline

import (
	"context"
	"sync"
	"time"
)

// StageState is the display state of a single pipeline stage.
type StageState string

const (
	StagePending StageState = "pending"
	StageActive  StageState = "active"
	StageDone    StageState = "done"
)

// Stage is one visual phase of the simulated multi-agent process.
type Stage struct {
	Key   string
	Name  string
	State StageState
}

// StageKeys is the fixed stage order.
var StageKeys = []string{"creative", "design", "variation", "platform"}

// stageNames maps stage keys to display names.
var stageNames = map[string]string{
	"creative":  "Creative Agent",
	"design":    "Design Agent",
	"variation": "Variation Agent",
	"platform":  "Platform Agent",
}

// DefaultDwell is how long each stage holds the active state during Play.
const DefaultDwell = 700 * time.Millisecond

// StageUpdate notifies an observer of a single stage transition.
type StageUpdate struct {
	Key   string
	Name  string
	State StageState
}

// StatusCallback observes stage transitions. Called synchronously from the
// goroutine driving the animator; implementations must not block for long.
type StatusCallback func(StageUpdate)

// Animator plays the fixed stage sequence. Safe for concurrent use: the
// orchestrator drives it while the display reads snapshots.
type Animator struct {
	mu       sync.Mutex
	stages   []Stage
	dwell    time.Duration
	statusFn StatusCallback
}

// Option configures an Animator.
type Option func(*Animator)

// WithDwell sets the per-stage hold duration.
func WithDwell(d time.Duration) Option {
	return func(a *Animator) {
		a.dwell = d
	}
}

// WithStatusCallback sets the stage transition observer.
func WithStatusCallback(fn StatusCallback) Option {
	return func(a *Animator) {
		a.statusFn = fn
	}
}

// New creates an Animator with all stages pending.
func New(opts ...Option) *Animator {
	a := &Animator{dwell: DefaultDwell}
	for _, opt := range opts {
		opt(a)
	}
	a.Reset()
	return a
}

// Dwell returns the per-stage hold duration.
func (a *Animator) Dwell() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dwell
}

// MinDuration returns the animation floor: the least time Play takes.
func (a *Animator) MinDuration() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dwell * time.Duration(len(a.stages))
}

// Reset returns every stage to pending. Idempotent.
func (a *Animator) Reset() {
	a.mu.Lock()
	a.stages = a.stages[:0]
	for _, key := range StageKeys {
		a.stages = append(a.stages, Stage{Key: key, Name: stageNames[key], State: StagePending})
	}
	stages := a.snapshotLocked()
	fn := a.statusFn
	a.mu.Unlock()

	if fn != nil {
		for _, s := range stages {
			fn(StageUpdate{Key: s.Key, Name: s.Name, State: StagePending})
		}
	}
}

// Play walks the stages in order, activating each and holding for the dwell
// duration. It never marks a stage done; Complete does that once the real
// result is available. Returns early with ctx.Err() on cancellation.
func (a *Animator) Play(ctx context.Context) error {
	for i := range StageKeys {
		a.setState(i, StageActive)

		a.mu.Lock()
		dwell := a.dwell
		a.mu.Unlock()

		if dwell > 0 {
			timer := time.NewTimer(dwell)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

// Complete marks every stage done in one step, overriding wherever the
// animator's clock reached.
func (a *Animator) Complete() {
	a.mu.Lock()
	for i := range a.stages {
		a.stages[i].State = StageDone
	}
	stages := a.snapshotLocked()
	fn := a.statusFn
	a.mu.Unlock()

	if fn != nil {
		for _, s := range stages {
			fn(StageUpdate{Key: s.Key, Name: s.Name, State: StageDone})
		}
	}
}

// Stages returns a snapshot of the current stage states.
func (a *Animator) Stages() []Stage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *Animator) snapshotLocked() []Stage {
	return append([]Stage(nil), a.stages...)
}

func (a *Animator) setState(idx int, state StageState) {
	a.mu.Lock()
	a.stages[idx].State = state
	s := a.stages[idx]
	fn := a.statusFn
	a.mu.Unlock()

	if fn != nil {
		fn(StageUpdate{Key: s.Key, Name: s.Name, State: state})
	}
}
