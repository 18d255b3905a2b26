package search

import (
	"context"
	"sort"
	"strings"

	"github.com/gozephyr/codeassist/lang"
)

// todoMarkers are the follow-up markers SearchTodos looks for, with optional
// trailing text captured
var todoMarkers = []string{"TODO", "FIXME", "HACK", "NOTE", "BUG", "REVIEW"}

// SearchDefinitions finds declaration sites of an identifier: a union of
// language-specific declaration regexes, each compiled and searched
// separately so one pattern's failure never voids the rest.
func (e *Engine) SearchDefinitions(ctx context.Context, ident string, language lang.Language) ([]Result, error) {
	opts := DefaultOptions()
	opts.UseRegex = true
	opts.CaseSensitive = true
	opts.IncludeComments = false
	if exts := languageFileTypes(language); exts != nil {
		opts.FileTypes = exts
	}

	var results []Result
	for _, expr := range lang.DeclarationPatterns(language, ident) {
		found, err := e.Search(ctx, expr, opts)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			continue
		}
		results = append(results, found...)
	}

	results = dedupe(results)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})
	if len(results) > opts.MaxResults {
		results = results[:opts.MaxResults]
	}
	return results, nil
}

// SearchReferences finds uses of an identifier: case-sensitive, whole-word,
// comments excluded
func (e *Engine) SearchReferences(ctx context.Context, ident string, language lang.Language) ([]Result, error) {
	opts := DefaultOptions()
	opts.CaseSensitive = true
	opts.WholeWord = true
	opts.IncludeComments = false
	if exts := languageFileTypes(language); exts != nil {
		opts.FileTypes = exts
	}
	return e.Search(ctx, ident, opts)
}

// SearchTodos finds follow-up markers across the workspace, comments
// included, ordered by file path then line rather than relevance
func (e *Engine) SearchTodos(ctx context.Context) ([]Result, error) {
	opts := DefaultOptions()
	opts.UseRegex = true
	opts.CaseSensitive = true
	opts.MaxResults = 500

	expr := `\b(?:` + strings.Join(todoMarkers, "|") + `)\b:?\s*(.*)`
	results, err := e.Search(ctx, expr, opts)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].URI != results[j].URI {
			return results[i].URI < results[j].URI
		}
		return results[i].LineNumber < results[j].LineNumber
	})
	return results, nil
}

// languageFileTypes restricts wrapper searches to the language's own files;
// nil means no restriction
func languageFileTypes(l lang.Language) []string {
	exts := lang.Extensions(l)
	if len(exts) == 0 {
		return nil
	}
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		out = append(out, strings.TrimPrefix(ext, "."))
	}
	return out
}
