// Package assembler builds the bounded, ranked bundle of workspace files and
// metadata that accompanies a completion request.
package assembler

import (
	"context"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/gozephyr/codeassist/cache"
	"github.com/gozephyr/codeassist/lang"
	"github.com/gozephyr/codeassist/metrics"
	"github.com/gozephyr/codeassist/relevance"
	"github.com/gozephyr/codeassist/workspace"
)

// FileContext represents one file's contribution to the assembled context
type FileContext struct {
	URI            string
	FileName       string
	RelativePath   string
	Content        string
	Language       lang.Language
	IsOpen         bool
	RelevanceScore float64
}

// WorkspaceContext is the assembled context for the active document.
// RelatedFiles is relevance-descending, deduplicated by URI and bounded.
type WorkspaceContext struct {
	CurrentFile   *FileContext
	RelatedFiles  []FileContext
	Imports       []string
	ProjectType   string
	WorkspaceName string
}

// SizeEstimate reports the approximate bytes held by the context, used by the
// cache memory estimate
func (wc *WorkspaceContext) SizeEstimate() int64 {
	var total int64
	if wc.CurrentFile != nil {
		total += int64(len(wc.CurrentFile.Content))
	}
	for _, f := range wc.RelatedFiles {
		total += int64(len(f.Content))
	}
	return total
}

// projectMarkers map marker files to project types, probed in order;
// first match wins
var projectMarkers = []struct {
	file        string
	projectType string
}{
	{"package.json", "node"},
	{"requirements.txt", "python"},
	{"pom.xml", "java-maven"},
	{"build.gradle", "java-gradle"},
	{"Cargo.toml", "rust"},
	{"go.mod", "go"},
	{"*.csproj", "dotnet"},
}

// Options represents assembler configuration options
type Options struct {
	// MaxRelatedFiles bounds the related-file list
	MaxRelatedFiles int

	// MaxFileBytes drops candidate files larger than this
	MaxFileBytes int

	// NameSearchLimit caps the workspace enumeration for name-similarity
	// candidates
	NameSearchLimit int

	// ContextTTL is how long a memoized context stays valid
	ContextTTL time.Duration

	// Weights are the candidate-pool relevance weights
	Weights relevance.Weights

	// Cache memoizes built contexts when non-nil
	Cache *cache.Store

	// Metrics receives build counts when non-nil
	Metrics *metrics.EngineMetrics

	// Logger receives debug output; nil disables logging
	Logger *slog.Logger
}

// Option is a function that configures assembler options
type Option func(*Options)

// WithMaxRelatedFiles sets the related-file bound
func WithMaxRelatedFiles(n int) Option {
	return func(o *Options) { o.MaxRelatedFiles = n }
}

// WithMaxFileBytes sets the per-file size bound
func WithMaxFileBytes(n int) Option {
	return func(o *Options) { o.MaxFileBytes = n }
}

// WithContextTTL sets the memoization TTL
func WithContextTTL(d time.Duration) Option {
	return func(o *Options) { o.ContextTTL = d }
}

// WithWeights sets the relevance weights
func WithWeights(w relevance.Weights) Option {
	return func(o *Options) { o.Weights = w }
}

// WithCache attaches a cache store for memoization
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

// DefaultOptions returns the default assembler options
func DefaultOptions() *Options {
	return &Options{
		MaxRelatedFiles: 5,
		MaxFileBytes:    64 * 1024,
		NameSearchLimit: 200,
		ContextTTL:      30 * time.Second,
		Weights:         relevance.DefaultWeights(),
	}
}

// Assembler builds workspace contexts for active documents
type Assembler struct {
	ws   workspace.Workspace
	opts *Options
}

// New creates a new assembler over the given workspace
func New(ws workspace.Workspace, opts ...Option) *Assembler {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	return &Assembler{ws: ws, opts: options}
}

// emptyContext is returned when no document is active
func emptyContext() *WorkspaceContext {
	return &WorkspaceContext{
		RelatedFiles:  []FileContext{},
		Imports:       []string{},
		ProjectType:   "unknown",
		WorkspaceName: "unknown",
	}
}

// BuildContext assembles the workspace context for the given document. A nil
// document yields the empty context. Individual file failures are skipped;
// the build itself only fails on context cancellation.
func (a *Assembler) BuildContext(ctx context.Context, doc *workspace.Document) (*WorkspaceContext, error) {
	if doc == nil || doc.URI == "" {
		return emptyContext(), nil
	}

	// Memoized context is valid only while the stored text still matches
	// the live document, guarding against version-counter skew.
	cacheKey := cache.FileKey(doc.URI, doc.Version)
	if a.opts.Cache != nil {
		if v, ok := a.opts.Cache.Get(cache.NamespaceContext, cacheKey); ok {
			if wc, ok := v.(*WorkspaceContext); ok &&
				wc.CurrentFile != nil && wc.CurrentFile.Content == doc.Text {
				if a.opts.Metrics != nil {
					a.opts.Metrics.ContextCacheHits.Add(1)
				}
				return wc, nil
			}
		}
	}
	if a.opts.Metrics != nil {
		a.opts.Metrics.ContextBuilds.Add(1)
	}

	folders := a.ws.Folders()
	language := lang.FromID(doc.LanguageID)
	if language == lang.Unknown {
		language = lang.FromPath(doc.URI)
	}

	wc := &WorkspaceContext{
		CurrentFile: &FileContext{
			URI:            doc.URI,
			FileName:       doc.FileName(),
			RelativePath:   workspace.Rel(doc.URI, folders),
			Content:        doc.Text,
			Language:       language,
			IsOpen:         true,
			RelevanceScore: 1.0,
		},
		Imports:       a.promptImports(language, doc.Text),
		ProjectType:   a.detectProjectType(ctx, folders),
		WorkspaceName: workspaceName(folders),
	}

	var candidates []FileContext
	candidates = append(candidates, a.openTabCandidates(doc, folders)...)
	candidates = append(candidates, a.siblingCandidates(ctx, doc, folders)...)
	candidates = append(candidates, a.importCandidates(ctx, doc, language, folders)...)
	candidates = append(candidates, a.nameSimilarCandidates(ctx, doc, folders)...)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	wc.RelatedFiles = a.selectRelated(candidates)

	if a.opts.Cache != nil {
		a.opts.Cache.Set(cache.NamespaceContext, cacheKey, wc, a.opts.ContextTTL)
	}
	if a.opts.Logger != nil {
		a.opts.Logger.Debug("context built",
			"uri", doc.URI,
			"related", len(wc.RelatedFiles),
			"imports", len(wc.Imports))
	}
	return wc, nil
}

// openTabCandidates collects open editor documents other than the current one
func (a *Assembler) openTabCandidates(doc *workspace.Document, folders []string) []FileContext {
	var out []FileContext
	for _, open := range a.ws.OpenDocuments() {
		if open.URI == doc.URI {
			continue
		}
		out = append(out, FileContext{
			URI:            open.URI,
			FileName:       open.FileName(),
			RelativePath:   workspace.Rel(open.URI, folders),
			Content:        open.Text,
			Language:       lang.FromID(open.LanguageID),
			IsOpen:         true,
			RelevanceScore: a.opts.Weights.OpenTab,
		})
	}
	return out
}

// siblingCandidates collects recognized code files from the current file's
// directory
func (a *Assembler) siblingCandidates(ctx context.Context, doc *workspace.Document, folders []string) []FileContext {
	dir := workspace.Dir(doc.URI)
	entries, err := a.ws.ListDirectory(ctx, dir)
	if err != nil {
		return nil
	}

	var out []FileContext
	for _, entry := range entries {
		if entry.IsDir || !lang.IsCodeFile(entry.Name) {
			continue
		}
		uri := dir + "/" + entry.Name
		if uri == doc.URI {
			continue
		}
		if fc, ok := a.readCandidate(ctx, uri, folders, a.opts.Weights.Sibling); ok {
			out = append(out, fc)
		}
	}
	return out
}

// importCandidates resolves the current file's relative imports to workspace
// files
func (a *Assembler) importCandidates(ctx context.Context, doc *workspace.Document, language lang.Language, folders []string) []FileContext {
	dir := workspace.Dir(doc.URI)

	var out []FileContext
	for _, imp := range lang.ExtractImports(language, doc.Text) {
		if !lang.IsRelativeImport(imp) {
			continue
		}
		for _, ext := range lang.ResolveExtensions(language) {
			uri := path.Clean(dir + "/" + imp + ext)
			if uri == doc.URI {
				continue
			}
			if fc, ok := a.readCandidate(ctx, uri, folders, a.opts.Weights.Import); ok {
				out = append(out, fc)
				break
			}
		}
	}
	return out
}

// nameSimilarCandidates finds workspace files whose stem contains the current
// file's stem or vice versa
func (a *Assembler) nameSimilarCandidates(ctx context.Context, doc *workspace.Document, folders []string) []FileContext {
	stem := strings.ToLower(workspace.Stem(doc.URI))
	if stem == "" {
		return nil
	}

	uris, err := a.ws.FindFiles(ctx, "**/*", DefaultExcludeGlob, a.opts.NameSearchLimit)
	if err != nil {
		return nil
	}

	var out []FileContext
	for _, uri := range uris {
		if uri == doc.URI || !lang.IsCodeFile(uri) {
			continue
		}
		other := strings.ToLower(workspace.Stem(uri))
		if !strings.Contains(other, stem) && !strings.Contains(stem, other) {
			continue
		}
		if fc, ok := a.readCandidate(ctx, uri, folders, a.opts.Weights.NameSimilarity); ok {
			out = append(out, fc)
		}
	}
	return out
}

// readCandidate reads one candidate file, skipping unreadable or oversized
// files
func (a *Assembler) readCandidate(ctx context.Context, uri string, folders []string, score float64) (FileContext, bool) {
	content, err := a.ws.ReadFile(ctx, uri)
	if err != nil || (a.opts.MaxFileBytes > 0 && len(content) > a.opts.MaxFileBytes) {
		return FileContext{}, false
	}
	return FileContext{
		URI:            uri,
		FileName:       workspace.BaseName(uri),
		RelativePath:   workspace.Rel(uri, folders),
		Content:        content,
		Language:       lang.FromPath(uri),
		RelevanceScore: score,
	}, true
}

// selectRelated merges candidate pools: oversized entries dropped, duplicates
// collapsed keeping the highest score, stable relevance-descending order,
// bounded count
func (a *Assembler) selectRelated(candidates []FileContext) []FileContext {
	best := make(map[string]int)
	merged := make([]FileContext, 0, len(candidates))

	for _, c := range candidates {
		if a.opts.MaxFileBytes > 0 && len(c.Content) > a.opts.MaxFileBytes {
			continue
		}
		if i, ok := best[c.URI]; ok {
			if c.RelevanceScore > merged[i].RelevanceScore {
				open := merged[i].IsOpen || c.IsOpen
				merged[i] = c
				merged[i].IsOpen = open
			} else if c.IsOpen {
				merged[i].IsOpen = true
			}
			continue
		}
		best[c.URI] = len(merged)
		merged = append(merged, c)
	}

	// Stable sort keeps first-found order among equal scores
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].RelevanceScore > merged[j].RelevanceScore
	})

	if len(merged) > a.opts.MaxRelatedFiles {
		merged = merged[:a.opts.MaxRelatedFiles]
	}
	return merged
}

// promptImports extracts the import list shown in the prompt: relative and
// noise entries filtered out
func (a *Assembler) promptImports(language lang.Language, content string) []string {
	var out []string
	for _, imp := range lang.ExtractImports(language, content) {
		if lang.IsRelativeImport(imp) || strings.HasPrefix(imp, "@types/") {
			continue
		}
		out = append(out, imp)
	}
	if out == nil {
		out = []string{}
	}
	return out
}

// detectProjectType probes the primary workspace folder for marker files
func (a *Assembler) detectProjectType(ctx context.Context, folders []string) string {
	if len(folders) == 0 {
		return "unknown"
	}

	entries, err := a.ws.ListDirectory(ctx, folders[0])
	if err != nil {
		return "unknown"
	}

	names := make(map[string]bool, len(entries))
	csproj := false
	for _, e := range entries {
		names[e.Name] = true
		if strings.HasSuffix(e.Name, ".csproj") {
			csproj = true
		}
	}

	for _, marker := range projectMarkers {
		if marker.file == "*.csproj" {
			if csproj {
				return marker.projectType
			}
			continue
		}
		if names[marker.file] {
			return marker.projectType
		}
	}
	return "unknown"
}

func workspaceName(folders []string) string {
	if len(folders) == 0 {
		return "unknown"
	}
	return workspace.BaseName(folders[0])
}

// DefaultExcludeGlob matches build output, dependency and VCS directories
const DefaultExcludeGlob = "**/{node_modules,vendor,dist,build,target,out,.git,.svn,__pycache__}/**"
