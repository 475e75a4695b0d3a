// Package orchestrator owns the generation request lifecycle: validation,
// the animated pipeline floor, the backend round-trip, and the shared
// result state the refinement loop mutates.
package orchestrator

import (
	"context"
	"errors"
	"sync"

	"github.com/smileynet/adforge/internal/brief"
	"github.com/smileynet/adforge/internal/creative"
	"github.com/smileynet/adforge/internal/log"
	"github.com/smileynet/adforge/internal/pipeline"
)

// State is the orchestrator's position in the submission lifecycle.
type State string

const (
	StateIdle             State = "idle"
	StateValidating       State = "validating"
	StateAnimating        State = "animating"
	StateAwaitingResponse State = "awaiting_response"
	StateSucceeded        State = "succeeded"
	StateFailed           State = "failed"
)

// ErrBusy is returned when Submit is called while a submission is in flight.
// Overlapping submissions are rejected, not queued.
var ErrBusy = errors.New("orchestrator: a generation is already in flight")

// Generator issues the generation request against the backend.
// Defined here (the consumer) per Go convention: accept interfaces, return structs.
type Generator interface {
	Generate(ctx context.Context, b brief.Brief) (*creative.Result, error)
}

// StateCallback observes lifecycle transitions.
type StateCallback func(State)

// Orchestrator sequences brief validation, the pipeline animation, and the
// generation request. The animation is a minimum-duration floor: results
// are revealed only after both the animation and the response complete.
type Orchestrator struct {
	gen      Generator
	animator *pipeline.Animator
	log      *log.Logger
	stateFn  StateCallback

	mu         sync.Mutex
	state      State
	generation uint64
	brief      *brief.Brief
	result     *creative.Result
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// WithStateCallback sets the lifecycle transition observer.
func WithStateCallback(fn StateCallback) Option {
	return func(o *Orchestrator) { o.stateFn = fn }
}

// New creates an Orchestrator in the idle state.
func New(gen Generator, animator *pipeline.Animator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gen:      gen,
		animator: animator,
		log:      log.Nop(),
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Generation returns the current generation tag. Refinement requests must
// carry the tag they were issued against; responses with a stale tag are
// discarded by ApplyRefinement.
func (o *Orchestrator) Generation() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.generation
}

// CurrentBrief returns the brief of the active generation, or nil before
// the first successful validation.
func (o *Orchestrator) CurrentBrief() *brief.Brief {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.brief == nil {
		return nil
	}
	b := *o.brief
	return &b
}

// CurrentResult returns the stored generation result, or nil.
func (o *Orchestrator) CurrentResult() *creative.Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.result == nil {
		return nil
	}
	r := *o.result
	return &r
}

// Snapshot returns the active brief, the current primary copy, and the
// generation tag in one consistent read. The brief is nil before the first
// successful validation. Refinement requests must be issued against a
// single snapshot so a concurrent Submit cannot tear brief and tag apart.
func (o *Orchestrator) Snapshot() (*brief.Brief, creative.Copy, uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	var c creative.Copy
	if o.result != nil {
		c = o.result.Copy
	}
	if o.brief == nil {
		return nil, c, o.generation
	}
	b := *o.brief
	return &b, c, o.generation
}

// Animator returns the pipeline animator driving the stage display.
func (o *Orchestrator) Animator() *pipeline.Animator {
	return o.animator
}

type genOutcome struct {
	result *creative.Result
	err    error
}

// Submit validates the form fields and runs one complete generation attempt.
// Validation failures issue no network call. The request runs concurrently
// with the pipeline animation; the result is revealed only once both finish.
// The orchestrator returns to idle on every exit path.
func (o *Orchestrator) Submit(ctx context.Context, fields brief.Fields) (*creative.Result, error) {
	o.mu.Lock()
	if o.state != StateIdle {
		o.mu.Unlock()
		return nil, ErrBusy
	}
	o.state = StateValidating
	o.mu.Unlock()
	o.notify(StateValidating)

	defer func() {
		o.mu.Lock()
		o.state = StateIdle
		o.mu.Unlock()
		o.notify(StateIdle)
	}()

	b, err := brief.Build(fields)
	if err != nil {
		o.log.Debugf("submit rejected: %v", err)
		return nil, err
	}

	o.mu.Lock()
	o.brief = &b
	o.result = nil
	o.generation++
	o.mu.Unlock()

	o.log.Infof("submit: product=%q tone=%s platforms=%v", b.ProductName, b.Tone, b.Platforms)
	o.animator.Reset()

	// Issue the request alongside the animation. The buffered channel lets
	// the goroutine finish even if we bail out on cancellation.
	outcome := make(chan genOutcome, 1)
	go func() {
		res, err := o.gen.Generate(ctx, b)
		outcome <- genOutcome{result: res, err: err}
	}()

	o.setState(StateAnimating)
	if err := o.animator.Play(ctx); err != nil {
		o.animator.Reset()
		o.setState(StateFailed)
		return nil, err
	}

	o.setState(StateAwaitingResponse)
	out := <-outcome
	if out.err != nil {
		o.log.Warnf("generate failed: %v", out.err)
		o.animator.Reset()
		o.setState(StateFailed)
		return nil, out.err
	}

	o.animator.Complete()
	o.mu.Lock()
	o.result = out.result
	o.mu.Unlock()
	o.setState(StateSucceeded)

	return out.result, nil
}

// ApplyRefinement replaces the stored result's copy (and, when provided,
// its variation list) if tag still identifies the active generation.
// Returns false when the response is stale or no result exists; stale
// responses must be discarded, never applied.
func (o *Orchestrator) ApplyRefinement(tag uint64, c creative.Copy, vars []creative.Variation) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if tag != o.generation || o.result == nil {
		return false
	}

	// Whole-object replacement keeps partial updates invisible to readers.
	r := *o.result
	r.Copy = c
	if vars != nil {
		r.Variations = append([]creative.Variation(nil), vars...)
	}
	o.result = &r
	return true
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
	o.notify(s)
}

func (o *Orchestrator) notify(s State) {
	if o.stateFn != nil {
		o.stateFn(s)
	}
}
