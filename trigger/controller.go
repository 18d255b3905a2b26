// Package trigger decides when a completion request is actually issued.
// Every edit passes an eligibility gate, qualifying edits are debounced per
// document with last-write-wins semantics, and at most one request per
// document is in flight at a time.
package trigger

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gozephyr/codeassist/assembler"
	"github.com/gozephyr/codeassist/cache"
	"github.com/gozephyr/codeassist/errors"
	"github.com/gozephyr/codeassist/internal"
	"github.com/gozephyr/codeassist/metrics"
	"github.com/gozephyr/codeassist/workspace"
)

// State is the per-document request state
type State int

const (
	StateIdle State = iota
	StateScheduled
	StateInFlight
	StateCancelled
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScheduled:
		return "scheduled"
	case StateInFlight:
		return "in-flight"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Completer is the external completion backend. It is expected to apply its
// own authentication, provider selection and timeout handling.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a function to the Completer interface
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

// Complete calls f
func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Result is a delivered completion suggestion
type Result struct {
	URI        string
	Suggestion string
	FromCache  bool
}

// Handler receives completion results as they resolve
type Handler func(Result)

// Options represents trigger controller configuration options
type Options struct {
	// DebounceDelay is the fixed scheduling delay between a qualifying
	// edit and the request it arms
	DebounceDelay time.Duration

	// MaxSuggestionLines caps post-processed suggestions
	MaxSuggestionLines int

	// CompletionTTL is how long completions stay cached
	CompletionTTL time.Duration

	// Format controls prompt rendering
	Format assembler.FormatOptions

	// Cache short-circuits identical prompts when non-nil
	Cache *cache.Store

	// Metrics receives trigger counts when non-nil
	Metrics *metrics.EngineMetrics

	// Logger receives debug output; nil disables logging
	Logger *slog.Logger
}

// Option is a function that configures controller options
type Option func(*Options)

// WithDebounceDelay sets the debounce delay
func WithDebounceDelay(d time.Duration) Option {
	return func(o *Options) { o.DebounceDelay = d }
}

// WithMaxSuggestionLines sets the suggestion line cap
func WithMaxSuggestionLines(n int) Option {
	return func(o *Options) { o.MaxSuggestionLines = n }
}

// WithCompletionTTL sets the completion cache TTL
func WithCompletionTTL(d time.Duration) Option {
	return func(o *Options) { o.CompletionTTL = d }
}

// WithFormat sets the prompt rendering options
func WithFormat(f assembler.FormatOptions) Option {
	return func(o *Options) { o.Format = f }
}

// WithCache attaches a cache store for prompt short-circuiting
func WithCache(c *cache.Store) Option {
	return func(o *Options) { o.Cache = c }
}

// WithMetrics attaches an engine metrics collector
func WithMetrics(m *metrics.EngineMetrics) Option {
	return func(o *Options) { o.Metrics = m }
}

// WithLogger attaches a logger
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// DefaultOptions returns the default controller options
func DefaultOptions() *Options {
	return &Options{
		DebounceDelay:      500 * time.Millisecond,
		MaxSuggestionLines: 12,
		CompletionTTL:      5 * time.Minute,
		Format:             assembler.DefaultFormatOptions(),
	}
}

// session tracks the state machine for one document
type session struct {
	mu       sync.Mutex
	state    State
	timer    *time.Timer
	seq      uint64
	inFlight bool
	cancel   context.CancelFunc
}

// Controller is the debounce and single-flight state machine over all
// document sessions
type Controller struct {
	asm       *assembler.Assembler
	completer Completer
	handler   Handler
	opts      *Options
	sessions  *internal.SafeMap[string, *session]
}

// New creates a controller. The handler receives every resolved suggestion
// from debounced requests; it may be nil when only Complete is used.
func New(asm *assembler.Assembler, completer Completer, handler Handler, opts ...Option) *Controller {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	return &Controller{
		asm:       asm,
		completer: completer,
		handler:   handler,
		opts:      options,
		sessions:  internal.NewSafeMap[string, *session](),
	}
}

// State reports the current state of a document session
func (c *Controller) State(uri string) State {
	s, ok := c.sessions.Get(uri)
	if !ok {
		return StateIdle
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// HandleEdit runs the eligibility gate and, when the edit qualifies, arms the
// debounce timer. A newer edit for the same document replaces any pending
// one; only the most recent scheduled request survives to fire. The return
// value reports whether the edit was scheduled.
func (c *Controller) HandleEdit(doc *workspace.Document) bool {
	if doc == nil || doc.URI == "" {
		return false
	}
	if !ShouldTrigger(doc) {
		return false
	}

	s := c.sessions.GetOrCreate(doc.URI, func() *session { return &session{} })

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.seq++
	seq := s.seq
	s.state = StateScheduled

	snapshot := *doc
	s.timer = time.AfterFunc(c.opts.DebounceDelay, func() {
		c.fire(s, seq, &snapshot)
	})

	if c.opts.Metrics != nil {
		c.opts.Metrics.TriggersScheduled.Add(1)
	}
	if c.opts.Logger != nil {
		c.opts.Logger.Debug("completion scheduled", "uri", doc.URI, "seq", seq)
	}
	return true
}

// Cancel cancels any pending or in-flight request for the document. Pending
// timers are cleared; in-flight work observes the cancellation at its next
// checkpoint.
func (c *Controller) Cancel(uri string) {
	s, ok := c.sessions.Get(uri)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.seq++
	if s.cancel != nil {
		s.cancel()
		s.state = StateCancelled
	} else if s.state == StateScheduled {
		s.state = StateIdle
	}
	if c.opts.Metrics != nil {
		c.opts.Metrics.TriggersCancelled.Add(1)
	}
}

// CancelAll cancels every session, for editor shutdown. The URI set is
// snapshotted first: Cancel re-reads the session map, and doing that inside
// Range would re-enter its read lock and deadlock against a concurrent
// session insert.
func (c *Controller) CancelAll() {
	var uris []string
	c.sessions.Range(func(uri string, _ *session) bool {
		uris = append(uris, uri)
		return true
	})
	for _, uri := range uris {
		c.Cancel(uri)
	}
}

// fire is the timer callback: it enforces single-flight, then runs the
// request path
func (c *Controller) fire(s *session, seq uint64, doc *workspace.Document) {
	s.mu.Lock()
	if seq != s.seq {
		// A newer edit or a cancellation superseded this timer
		s.mu.Unlock()
		return
	}
	if s.inFlight {
		// The earlier request is still running; the session stays
		// in flight and this fire is simply discarded
		s.state = StateInFlight
		s.mu.Unlock()
		if c.opts.Metrics != nil {
			c.opts.Metrics.TriggersRefused.Add(1)
		}
		return
	}
	s.inFlight = true
	s.state = StateInFlight
	s.timer = nil
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	if c.opts.Metrics != nil {
		c.opts.Metrics.TriggersFired.Add(1)
	}

	result, err := c.complete(ctx, doc)

	s.mu.Lock()
	s.inFlight = false
	s.cancel = nil
	// A newer edit may have re-armed the timer during the flight; its
	// Scheduled state must survive this request's completion
	if s.state != StateScheduled {
		s.state = StateIdle
	}
	s.mu.Unlock()
	cancel()

	if err != nil {
		if c.opts.Logger != nil && !errors.IsCancelled(err) {
			c.opts.Logger.Warn("completion failed", "uri", doc.URI, "error", err)
		}
		return
	}
	if c.handler != nil {
		c.handler(result)
	}
}

// Complete runs the in-flight request path synchronously: cancellation
// checkpoint, context assembly, cache lookup by normalized prompt, backend
// call, post-processing. Backend failures and unusable responses resolve to
// an error and are never cached.
func (c *Controller) Complete(ctx context.Context, doc *workspace.Document) (Result, error) {
	return c.complete(ctx, doc)
}

func (c *Controller) complete(ctx context.Context, doc *workspace.Document) (Result, error) {
	if doc == nil || doc.URI == "" {
		return Result{}, errors.ErrNoActiveDocument
	}
	if err := checkpoint(ctx); err != nil {
		return Result{}, err
	}

	wc, err := c.asm.BuildContext(ctx, doc)
	if err != nil {
		return Result{}, errors.Wrap("complete", doc.URI, errors.ErrCancelled)
	}
	if err := checkpoint(ctx); err != nil {
		return Result{}, err
	}

	prompt := assembler.FormatForPrompt(wc, c.opts.Format) +
		"\n" + doc.LineBeforeCursor()
	key := cache.PromptKey(prompt)

	if c.opts.Cache != nil {
		if v, ok := c.opts.Cache.Get(cache.NamespaceCompletions, key); ok {
			if suggestion, ok := v.(string); ok {
				if c.opts.Metrics != nil {
					c.opts.Metrics.Completions.Add(1)
				}
				return Result{URI: doc.URI, Suggestion: suggestion, FromCache: true}, nil
			}
		}
	}

	raw, err := c.completer.Complete(ctx, prompt)
	if err != nil {
		if c.opts.Metrics != nil {
			c.opts.Metrics.CompletionErrors.Add(1)
		}
		if ctx.Err() != nil {
			return Result{}, errors.Wrap("complete", doc.URI, errors.ErrCancelled)
		}
		return Result{}, errors.Wrap("complete", doc.URI, errors.ErrBackendFailure)
	}
	if err := checkpoint(ctx); err != nil {
		return Result{}, err
	}

	suggestion := PostProcess(raw, doc.Line(doc.Cursor.Line), c.opts.MaxSuggestionLines)
	if suggestion == "" {
		if c.opts.Metrics != nil {
			c.opts.Metrics.CompletionErrors.Add(1)
		}
		return Result{}, errors.Wrap("complete", doc.URI, errors.ErrEmptySuggestion)
	}

	if c.opts.Cache != nil {
		c.opts.Cache.Set(cache.NamespaceCompletions, key, suggestion, c.opts.CompletionTTL)
	}
	if c.opts.Metrics != nil {
		c.opts.Metrics.Completions.Add(1)
	}
	return Result{URI: doc.URI, Suggestion: suggestion}, nil
}

// checkpoint tests the cancellation signal; every step of the in-flight path
// calls it before doing further work
func checkpoint(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap("complete", nil, errors.ErrCancelled)
	}
	return nil
}
