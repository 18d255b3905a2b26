// Package search implements regex-backed workspace text search with
// comment/string filtering, context extraction and relevance ranking.
package search

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/gozephyr/codeassist/errors"
	"github.com/gozephyr/codeassist/internal"
	"github.com/gozephyr/codeassist/lang"
	"github.com/gozephyr/codeassist/metrics"
	"github.com/gozephyr/codeassist/relevance"
	"github.com/gozephyr/codeassist/workspace"
)

// Result is one ranked search match
type Result struct {
	URI            string
	FileName       string
	LineNumber     int
	ColumnNumber   int
	MatchText      string
	LineText       string
	ContextBefore  []string
	ContextAfter   []string
	RelevanceScore float64
}

// Options control a single search. The zero value is not meaningful; start
// from DefaultOptions.
type Options struct {
	CaseSensitive   bool
	WholeWord       bool
	UseRegex        bool
	IncludeComments bool
	IncludeStrings  bool

	// FileTypes restricts the search to the given extensions, without the
	// leading dot; empty means all files
	FileTypes []string

	// ExcludePatterns are glob patterns for skipped paths
	ExcludePatterns []string

	MaxResults   int
	ContextLines int

	// MaxFiles bounds workspace enumeration
	MaxFiles int
}

// DefaultExcludePatterns skip build output, dependency and VCS directories
var DefaultExcludePatterns = []string{
	"**/node_modules/**",
	"**/vendor/**",
	"**/dist/**",
	"**/build/**",
	"**/target/**",
	"**/out/**",
	"**/.git/**",
	"**/.svn/**",
	"**/__pycache__/**",
}

// DefaultOptions returns the documented search defaults
func DefaultOptions() Options {
	return Options{
		IncludeComments: true,
		IncludeStrings:  true,
		ExcludePatterns: DefaultExcludePatterns,
		MaxResults:      50,
		ContextLines:    2,
		MaxFiles:        2000,
	}
}

// normalize fills out-of-range fields with their defaults
func (o Options) normalize() Options {
	if o.MaxResults <= 0 {
		o.MaxResults = 50
	}
	if o.ContextLines < 0 {
		o.ContextLines = 2
	}
	if o.ExcludePatterns == nil {
		o.ExcludePatterns = DefaultExcludePatterns
	}
	if o.MaxFiles <= 0 {
		o.MaxFiles = 2000
	}
	return o
}

// Engine searches workspace files
type Engine struct {
	ws      workspace.Workspace
	weights relevance.Weights
	metrics *metrics.EngineMetrics
	logger  *slog.Logger
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithWeights sets the relevance weights
func WithWeights(w relevance.Weights) EngineOption {
	return func(e *Engine) { e.weights = w }
}

// WithMetrics attaches an engine metrics collector
func WithMetrics(m *metrics.EngineMetrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger attaches a logger
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// New creates a search engine over the given workspace
func New(ws workspace.Workspace, opts ...EngineOption) *Engine {
	e := &Engine{ws: ws, weights: relevance.DefaultWeights()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search finds query across the workspace: results are deduplicated by
// (uri, line) keeping the highest score, ordered relevance-descending and
// truncated to MaxResults. Unreadable files are skipped, never fatal.
func (e *Engine) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	opts = opts.normalize()

	pattern, err := buildPattern(query, opts)
	if err != nil {
		return nil, err
	}

	uris, err := e.ws.FindFiles(ctx, includeGlob(opts.FileTypes), excludeGlob(opts.ExcludePatterns), opts.MaxFiles)
	if err != nil {
		return nil, err
	}

	if e.metrics != nil {
		e.metrics.Searches.Add(1)
	}

	var results []Result
	for _, uri := range uris {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := e.ws.ReadFile(ctx, uri)
		if err != nil {
			continue
		}
		results = append(results, e.searchFile(uri, content, query, pattern, opts)...)
	}

	results = dedupe(results)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})
	if len(results) > opts.MaxResults {
		results = results[:opts.MaxResults]
	}

	if e.metrics != nil {
		e.metrics.SearchResults.Add(int64(len(results)))
	}
	if e.logger != nil {
		e.logger.Debug("search done", "query", query, "files", len(uris), "results", len(results))
	}
	return results, nil
}

// searchFile collects every surviving match in one file
func (e *Engine) searchFile(uri, content, query string, pattern *regexp.Regexp, opts Options) []Result {
	fileName := workspace.BaseName(uri)
	lines := internal.Lines(content)

	var out []Result
	for i, line := range lines {
		if !opts.IncludeComments && lang.IsCommentLine(line) {
			continue
		}
		for _, loc := range findAll(pattern, line) {
			if !opts.IncludeStrings && insideStringLiteral(line, loc[0]) {
				continue
			}
			matchText := line[loc[0]:loc[1]]
			out = append(out, Result{
				URI:            uri,
				FileName:       fileName,
				LineNumber:     i,
				ColumnNumber:   loc[0],
				MatchText:      matchText,
				LineText:       line,
				ContextBefore:  contextSlice(lines, i-opts.ContextLines, i),
				ContextAfter:   contextSlice(lines, i+1, i+1+opts.ContextLines),
				RelevanceScore: relevance.ScoreMatch(e.weights, query, fileName, line, matchText),
			})
		}
	}
	return out
}

// buildPattern compiles the single match expression for a query
func buildPattern(query string, opts Options) (*regexp.Regexp, error) {
	expr := query
	if !opts.UseRegex {
		expr = regexp.QuoteMeta(expr)
	}
	if opts.WholeWord {
		expr = `\b(?:` + expr + `)\b`
	}
	if !opts.CaseSensitive {
		expr = `(?i)` + expr
	}
	pattern, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Wrap("search", query, errors.ErrBadRegex)
	}
	return pattern, nil
}

// findAll returns all non-overlapping match locations on a line, advancing
// past zero-width matches
func findAll(pattern *regexp.Regexp, line string) [][]int {
	var locs [][]int
	offset := 0
	for offset <= len(line) {
		loc := pattern.FindStringIndex(line[offset:])
		if loc == nil {
			break
		}
		start, end := offset+loc[0], offset+loc[1]
		locs = append(locs, []int{start, end})
		if end == start {
			offset = end + 1
			continue
		}
		offset = end
	}
	return locs
}

// insideStringLiteral uses the odd-parity-quote heuristic: an odd count of
// unescaped quotes before the match column means the match sits inside an
// open string literal
func insideStringLiteral(line string, col int) bool {
	for _, quote := range []byte{'"', '\'', '`'} {
		count := 0
		for i := 0; i < col && i < len(line); i++ {
			if line[i] == '\\' {
				i++
				continue
			}
			if line[i] == quote {
				count++
			}
		}
		if count%2 == 1 {
			return true
		}
	}
	return false
}

// contextSlice returns lines[from:to] bounded at the file edges
func contextSlice(lines []string, from, to int) []string {
	if from < 0 {
		from = 0
	}
	if to > len(lines) {
		to = len(lines)
	}
	if from >= to {
		return nil
	}
	out := make([]string, to-from)
	copy(out, lines[from:to])
	return out
}

// dedupe collapses results sharing (uri, line), keeping the highest score
func dedupe(results []Result) []Result {
	type key struct {
		uri  string
		line int
	}
	best := make(map[key]int)
	out := make([]Result, 0, len(results))
	for _, r := range results {
		k := key{r.URI, r.LineNumber}
		if i, ok := best[k]; ok {
			if r.RelevanceScore > out[i].RelevanceScore {
				out[i] = r
			}
			continue
		}
		best[k] = len(out)
		out = append(out, r)
	}
	return out
}

// includeGlob builds the include pattern from a file-type list
func includeGlob(fileTypes []string) string {
	switch len(fileTypes) {
	case 0:
		return "**/*"
	case 1:
		return "**/*." + fileTypes[0]
	default:
		return "**/*.{" + strings.Join(fileTypes, ",") + "}"
	}
}

// excludeGlob folds the exclude patterns into a single alternation
func excludeGlob(patterns []string) string {
	switch len(patterns) {
	case 0:
		return ""
	case 1:
		return patterns[0]
	default:
		return "{" + strings.Join(patterns, ",") + "}"
	}
}
