// Package codeassist is the local intelligence layer behind an editor's AI
// completion feature: it decides when to request completions, assembles the
// workspace context that accompanies them, caches results and serves
// workspace search.
package codeassist

import (
	"context"
	"log/slog"

	"github.com/gozephyr/codeassist/assembler"
	"github.com/gozephyr/codeassist/cache"
	"github.com/gozephyr/codeassist/config"
	"github.com/gozephyr/codeassist/lang"
	"github.com/gozephyr/codeassist/metrics"
	"github.com/gozephyr/codeassist/search"
	"github.com/gozephyr/codeassist/trigger"
	"github.com/gozephyr/codeassist/workspace"
)

// Engine wires the completion pipeline and the search engine over one
// workspace
type Engine struct {
	cfg     *config.Config
	ws      workspace.Workspace
	store   *cache.Store
	metrics *metrics.EngineMetrics
	logger  *slog.Logger

	asm        *assembler.Assembler
	searcher   *search.Engine
	controller *trigger.Controller
}

// New creates an engine over the given workspace and completion backend
func New(ws workspace.Workspace, completer trigger.Completer, opts ...Option) *Engine {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	cfg := options.cfg
	weights := cfg.Relevance.Weights()

	e := &Engine{
		cfg:     cfg,
		ws:      ws,
		metrics: options.metrics,
		logger:  options.logger,
	}

	e.store = cache.New(
		cache.WithMaxSize(cfg.Cache.MaxSize),
		cache.WithSweepInterval(cfg.Cache.SweepInterval),
		cache.WithMetrics(e.metrics),
	)

	e.asm = assembler.New(ws,
		assembler.WithMaxRelatedFiles(cfg.Context.MaxRelatedFiles),
		assembler.WithMaxFileBytes(cfg.Context.MaxFileBytes),
		assembler.WithContextTTL(cfg.Cache.ContextTTL),
		assembler.WithWeights(weights),
		assembler.WithCache(e.store),
		assembler.WithMetrics(e.metrics),
		assembler.WithLogger(e.logger),
	)

	e.searcher = search.New(ws,
		search.WithWeights(weights),
		search.WithMetrics(e.metrics),
		search.WithLogger(e.logger),
	)

	e.controller = trigger.New(e.asm, completer, options.handler,
		trigger.WithDebounceDelay(cfg.Trigger.DebounceDelay),
		trigger.WithMaxSuggestionLines(cfg.Trigger.MaxSuggestionLines),
		trigger.WithCompletionTTL(cfg.Cache.CompletionTTL),
		trigger.WithCache(e.store),
		trigger.WithMetrics(e.metrics),
		trigger.WithLogger(e.logger),
	)

	return e
}

// HandleEdit feeds one edit event into the trigger pipeline and reports
// whether a completion was scheduled
func (e *Engine) HandleEdit(doc *workspace.Document) bool {
	return e.controller.HandleEdit(doc)
}

// Complete runs the completion path synchronously, bypassing the debounce
func (e *Engine) Complete(ctx context.Context, doc *workspace.Document) (trigger.Result, error) {
	return e.controller.Complete(ctx, doc)
}

// Cancel cancels pending and in-flight completion work for a document
func (e *Engine) Cancel(uri string) {
	e.controller.Cancel(uri)
}

// BuildContext assembles the workspace context for a document
func (e *Engine) BuildContext(ctx context.Context, doc *workspace.Document) (*assembler.WorkspaceContext, error) {
	return e.asm.BuildContext(ctx, doc)
}

// ContextText renders the assembled context as prompt text
func (e *Engine) ContextText(ctx context.Context, doc *workspace.Document, opts assembler.FormatOptions) (string, error) {
	wc, err := e.asm.BuildContext(ctx, doc)
	if err != nil {
		return "", err
	}
	return assembler.FormatForPrompt(wc, opts), nil
}

// Search finds query across the workspace. Unset bounds fall back to the
// configured search defaults.
func (e *Engine) Search(ctx context.Context, query string, opts search.Options) ([]search.Result, error) {
	return e.searcher.Search(ctx, query, e.applySearchConfig(opts))
}

func (e *Engine) applySearchConfig(opts search.Options) search.Options {
	if opts.MaxResults <= 0 {
		opts.MaxResults = e.cfg.Search.MaxResults
	}
	if opts.ContextLines < 0 {
		opts.ContextLines = e.cfg.Search.ContextLines
	}
	if opts.MaxFiles <= 0 {
		opts.MaxFiles = e.cfg.Search.MaxFiles
	}
	if opts.ExcludePatterns == nil && len(e.cfg.Search.ExcludePatterns) > 0 {
		opts.ExcludePatterns = e.cfg.Search.ExcludePatterns
	}
	return opts
}

// SearchDefinitions finds declaration sites of an identifier
func (e *Engine) SearchDefinitions(ctx context.Context, ident string, language lang.Language) ([]search.Result, error) {
	return e.searcher.SearchDefinitions(ctx, ident, language)
}

// SearchReferences finds uses of an identifier
func (e *Engine) SearchReferences(ctx context.Context, ident string, language lang.Language) ([]search.Result, error) {
	return e.searcher.SearchReferences(ctx, ident, language)
}

// SearchTodos finds follow-up markers across the workspace
func (e *Engine) SearchTodos(ctx context.Context) ([]search.Result, error) {
	return e.searcher.SearchTodos(ctx)
}

// FileChanged drops every cached entry derived from the changed file
func (e *Engine) FileChanged(uri string) int {
	return e.store.InvalidateURI(uri)
}

// WorkspaceChanged drops all assembled contexts, after folder or project
// level changes
func (e *Engine) WorkspaceChanged() {
	e.store.Clear(cache.NamespaceContext)
}

// CacheStats reports per-namespace cache statistics
func (e *Engine) CacheStats() map[string]cache.Stats {
	out := make(map[string]cache.Stats)
	for _, ns := range e.store.Namespaces() {
		out[ns] = e.store.Stats(ns)
	}
	return out
}

// Metrics returns a snapshot of the engine counters
func (e *Engine) Metrics() metrics.Snapshot {
	return e.metrics.GetSnapshot()
}

// Close cancels outstanding work and releases the cache
func (e *Engine) Close() {
	e.controller.CancelAll()
	e.store.Close()
}
