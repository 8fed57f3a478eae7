// Package lifecycle owns the submit/await/resolve cycle of one analysis at a
// time. Both front ends drive the same Controller.
package lifecycle

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/abelbrown/truthlens/internal/analysis"
	"github.com/abelbrown/truthlens/internal/logging"
)

var (
	// ErrValidation is returned for an all-empty request. No state changes
	// and nothing is sent.
	ErrValidation = errors.New("nothing to analyze: enter some text, a URL or an image URL")

	// ErrConcurrentSubmission is returned while another submission is
	// outstanding.
	ErrConcurrentSubmission = errors.New("an analysis is already in progress")

	// ErrSuperseded is returned by Run when the submission was cancelled or
	// replaced before its response arrived. The response was discarded.
	ErrSuperseded = errors.New("submission superseded")

	errAlreadyRun = errors.New("submission already run")
)

// Analyzer performs the network call.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request, token string) (analysis.Response, error)
}

// Credentials supplies the optional bearer token. *session.Session and
// session.Static satisfy it.
type Credentials interface {
	BearerToken() string
}

// State is the lifecycle state.
type State int

const (
	Idle State = iota
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "idle"
}

// Snapshot is an immutable view of the controller. Response and View are set
// only when Succeeded, Failure only when Failed.
type Snapshot struct {
	State    State
	Seq      uint64
	Request  analysis.Request
	Response *analysis.Response
	View     *analysis.ViewModel
	Failure  *Failure
}

// Option configures a Controller.
type Option func(*Controller)

// WithTimeout bounds every submission. Zero means no bound beyond the
// caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

// WithObserver registers a callback run after every transition, outside the
// controller lock.
func WithObserver(fn func(Snapshot)) Option {
	return func(c *Controller) { c.observer = fn }
}

// Controller serializes submissions. At most one is outstanding; the result
// slot is only replaced by the current submission's response.
type Controller struct {
	analyzer Analyzer
	timeout  time.Duration
	observer func(Snapshot)

	mu     sync.Mutex
	seq    uint64
	snap   Snapshot
	cancel context.CancelFunc
}

// New creates an idle controller.
func New(a Analyzer, opts ...Option) *Controller {
	c := &Controller{analyzer: a}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Submission is an accepted request waiting to be run.
type Submission struct {
	c      *Controller
	seq    uint64
	ctx    context.Context
	cancel context.CancelFunc
	req    analysis.Request
	token  string
	ran    atomic.Bool
}

// Seq identifies the submission.
func (s *Submission) Seq() uint64 { return s.seq }

// Start validates req and moves to Submitting. It does no I/O, so a UI can
// call it synchronously and hand Run to a background command. creds may be
// nil for anonymous use.
func (c *Controller) Start(ctx context.Context, req analysis.Request, creds Credentials) (*Submission, error) {
	if req.Empty() {
		return nil, ErrValidation
	}

	c.mu.Lock()
	if c.snap.State == Submitting {
		c.mu.Unlock()
		return nil, ErrConcurrentSubmission
	}

	var subCtx context.Context
	var cancel context.CancelFunc
	if c.timeout > 0 {
		subCtx, cancel = context.WithTimeout(ctx, c.timeout)
	} else {
		subCtx, cancel = context.WithCancel(ctx)
	}

	c.seq++
	c.cancel = cancel
	c.snap = Snapshot{State: Submitting, Seq: c.seq, Request: req}
	snap := c.snap
	c.mu.Unlock()

	c.notify(snap)

	token := ""
	if creds != nil {
		token = creds.BearerToken()
	}
	return &Submission{c: c, seq: snap.Seq, ctx: subCtx, cancel: cancel, req: req, token: token}, nil
}

// Run performs the single network call and resolves the submission. A Failed
// outcome returns the snapshot together with its *Failure. A response that
// arrives after Cancel, Reset or a newer submission returns ErrSuperseded and
// leaves the current state alone.
func (s *Submission) Run() (Snapshot, error) {
	if !s.ran.CompareAndSwap(false, true) {
		return Snapshot{}, errAlreadyRun
	}
	defer s.cancel()

	resp, err := s.c.analyzer.Analyze(s.ctx, s.req, s.token)
	return s.c.resolve(s, resp, err)
}

// Submit is Start followed by Run.
func (c *Controller) Submit(ctx context.Context, req analysis.Request, creds Credentials) (Snapshot, error) {
	sub, err := c.Start(ctx, req, creds)
	if err != nil {
		return c.Snapshot(), err
	}
	return sub.Run()
}

func (c *Controller) resolve(s *Submission, resp analysis.Response, callErr error) (Snapshot, error) {
	c.mu.Lock()
	if s.seq != c.seq || c.snap.State != Submitting {
		current := c.snap
		c.mu.Unlock()
		logging.Debug("discarding stale analysis response", "seq", s.seq, "current", current.Seq)
		return current, ErrSuperseded
	}

	next := Snapshot{Seq: s.seq, Request: s.req}
	switch {
	case callErr != nil:
		next.State = Failed
		next.Failure = classify(s.ctx, callErr)
	case resp.Complete() != nil:
		next.State = Failed
		next.Failure = &Failure{Reason: Unparseable, Message: msgIncomplete}
	default:
		vm := analysis.BuildViewModel(resp)
		next.State = Succeeded
		next.Response = &resp
		next.View = &vm
	}
	c.snap = next
	c.cancel = nil
	c.mu.Unlock()

	switch next.State {
	case Failed:
		logging.Warn("analysis failed", "seq", next.Seq, "reason", next.Failure.Reason,
			"status", next.Failure.Status, "error", callErr)
	case Succeeded:
		logging.Info("analysis succeeded", "seq", next.Seq, "type", s.req.ContentType(),
			"score", next.View.Score.Score, "grade", next.View.Score.Grade, "sections", len(next.View.Sections))
		for _, w := range next.View.Warnings {
			logging.Warn("data quality", "seq", next.Seq, "clamped", w)
		}
		for _, sk := range next.View.Skipped {
			logging.Warn("section suppressed", "seq", next.Seq, "kind", sk.Kind, "reason", sk.Reason)
		}
	}
	c.notify(next)

	if next.Failure != nil {
		return next, next.Failure
	}
	return next, nil
}

// Cancel aborts the outstanding submission. It reports whether there was one.
// The state becomes Failed with reason Cancelled; any late response is
// discarded.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	if c.snap.State != Submitting {
		c.mu.Unlock()
		return false
	}
	c.abortLocked()
	c.snap = Snapshot{
		State:   Failed,
		Seq:     c.seq,
		Request: c.snap.Request,
		Failure: &Failure{Reason: Cancelled, Message: msgCancelled},
	}
	snap := c.snap
	c.mu.Unlock()

	logging.Info("analysis cancelled", "seq", snap.Seq)
	c.notify(snap)
	return true
}

// Reset returns to Idle, cancelling anything outstanding.
func (c *Controller) Reset() {
	c.mu.Lock()
	if c.snap.State == Submitting {
		c.abortLocked()
	}
	c.snap = Snapshot{State: Idle, Seq: c.seq}
	snap := c.snap
	c.mu.Unlock()

	c.notify(snap)
}

// abortLocked cancels the in-flight context and retires its sequence number.
func (c *Controller) abortLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.seq++
}

func (c *Controller) notify(s Snapshot) {
	logging.Debug("analysis state", "seq", s.Seq, "state", s.State)
	if c.observer != nil {
		c.observer(s)
	}
}
