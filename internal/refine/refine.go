// Package refine implements the conversational refinement loop layered on
// top of a completed generation. Refinement is advisory: its failures are
// swallowed into the chat transcript and never block generation state.
package refine

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/smileynet/adforge/internal/api"
	"github.com/smileynet/adforge/internal/brief"
	"github.com/smileynet/adforge/internal/creative"
	"github.com/smileynet/adforge/internal/log"
)

// Role identifies who authored a chat turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Turn is one durable chat transcript entry. The transcript is append-only;
// the ephemeral typing indicator never becomes a Turn.
type Turn struct {
	Role Role
	Text string
}

// FallbackReply is the canned agent turn for failed or empty refinements.
const FallbackReply = "Sorry, I had trouble processing that. Please try again."

// ErrNothingToSend is returned when a message is empty after trimming,
// no generation exists to refine, or a send is already in flight.
// Callers treat it as a silent no-op.
var ErrNothingToSend = errors.New("refine: nothing to send")

// Refiner issues refinement requests against the backend.
type Refiner interface {
	Refine(ctx context.Context, req api.RefineRequest) (*creative.Refinement, error)
}

// Session is the orchestrator-side contract the loop refines against.
// Snapshot returns the active brief, the current primary copy, and the
// generation tag in one consistent read, so a concurrent submit can never
// pair an old brief with a new tag. A nil brief means nothing to refine.
// ApplyRefinement discards responses whose tag is stale.
type Session interface {
	Snapshot() (b *brief.Brief, c creative.Copy, tag uint64)
	ApplyRefinement(tag uint64, c creative.Copy, vars []creative.Variation) bool
}

// Outcome reports what one Send did.
type Outcome struct {
	Reply   Turn // The appended agent turn.
	Applied bool // Copy/variations were applied to the session.
	Stale   bool // Response arrived for a superseded generation; discarded.
}

// Loop is the refinement chat orchestrator. Independent of the generation
// orchestrator's submit flow; the two share only the tagged-apply contract.
type Loop struct {
	client  Refiner
	session Session
	log     *log.Logger

	mu       sync.Mutex
	turns    []Turn
	typing   bool
	inFlight bool
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) Option {
	return func(lp *Loop) { lp.log = l }
}

// NewLoop creates a refinement Loop for the given session.
func NewLoop(client Refiner, session Session, opts ...Option) *Loop {
	lp := &Loop{client: client, session: session, log: log.Nop()}
	for _, opt := range opts {
		opt(lp)
	}
	return lp
}

// Turns returns the durable transcript.
func (l *Loop) Turns() []Turn {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Turn(nil), l.turns...)
}

// Typing reports whether the ephemeral typing indicator is up.
func (l *Loop) Typing() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.typing
}

// Send runs one refinement turn: append the user message, show the typing
// indicator, call the backend, and either apply the revised copy or append
// the canned apology. Empty messages and sends without a current brief are
// silent no-ops (ErrNothingToSend). Transport failures are swallowed into
// the transcript; Send only returns an error for the no-op cases.
func (l *Loop) Send(ctx context.Context, message string) (Outcome, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Outcome{}, ErrNothingToSend
	}

	// Snapshot the identity this request is issued against. A submit that
	// lands while we wait bumps the generation and invalidates us.
	b, snapshot, tag := l.session.Snapshot()
	if b == nil {
		return Outcome{}, ErrNothingToSend
	}

	l.mu.Lock()
	if l.inFlight {
		l.mu.Unlock()
		return Outcome{}, ErrNothingToSend
	}
	l.inFlight = true
	l.turns = append(l.turns, Turn{Role: RoleUser, Text: message})
	l.typing = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.typing = false
		l.inFlight = false
		l.mu.Unlock()
	}()

	resp, err := l.client.Refine(ctx, api.RefineRequest{
		Message:     message,
		Brief:       *b,
		CurrentCopy: snapshot,
	})
	if err != nil || resp.Copy == nil {
		if err != nil {
			l.log.Warnf("refine failed: %v", err)
		}
		return l.appendReply(Turn{Role: RoleAgent, Text: FallbackReply}, false, false), nil
	}

	if !l.session.ApplyRefinement(tag, *resp.Copy, resp.Variations) {
		l.log.Infof("refine response discarded: stale tag %d", tag)
		return Outcome{Stale: true}, nil
	}

	reply := Turn{Role: RoleAgent, Text: resp.Message}
	if reply.Text == "" {
		reply.Text = FallbackReply
	}
	return l.appendReply(reply, true, false), nil
}

func (l *Loop) appendReply(reply Turn, applied, stale bool) Outcome {
	l.mu.Lock()
	l.turns = append(l.turns, reply)
	l.mu.Unlock()
	return Outcome{Reply: reply, Applied: applied, Stale: stale}
}
