package search

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gozephyr/codeassist/lang"
	"github.com/gozephyr/codeassist/workspace"
)

func defsWorkspace() *workspace.MemWorkspace {
	w := workspace.NewMemWorkspace("proj")
	w.AddFile("proj/service.ts", ""+
		"export function saveUser(user: User) {\n"+
		"  return repo.save(user);\n"+
		"}\n"+
		"const saveUser2 = () => {};\n")
	w.AddFile("proj/caller.ts", ""+
		"import { saveUser } from './service';\n"+
		"saveUser(current);\n"+
		"// saveUser is called on submit\n")
	w.AddFile("proj/model.py", ""+
		"def saveUser(user):\n"+
		"    pass\n")
	return w
}

func TestSearchDefinitionsTypeScript(t *testing.T) {
	e := New(defsWorkspace())

	results, err := e.SearchDefinitions(context.Background(), "saveUser", lang.TypeScript)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "proj/service.ts", results[0].URI)
	require.Equal(t, 0, results[0].LineNumber)
}

func TestSearchDefinitionsPython(t *testing.T) {
	e := New(defsWorkspace())

	results, err := e.SearchDefinitions(context.Background(), "saveUser", lang.Python)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "proj/model.py", results[0].URI)
}

func TestSearchDefinitionsGo(t *testing.T) {
	w := workspace.NewMemWorkspace("proj")
	w.AddFile("proj/store.go", ""+
		"func (s *Store) Flush() error {\n"+
		"\treturn nil\n"+
		"}\n"+
		"func Flush() {}\n")
	e := New(w)

	results, err := e.SearchDefinitions(context.Background(), "Flush", lang.Go)
	require.NoError(t, err)
	require.Len(t, results, 2)
}

func TestSearchReferences(t *testing.T) {
	e := New(defsWorkspace())

	results, err := e.SearchReferences(context.Background(), "saveUser", lang.TypeScript)
	require.NoError(t, err)

	uris := make(map[string]bool)
	for _, r := range results {
		uris[r.URI] = true
		// Comment mentions are excluded
		require.NotContains(t, r.LineText, "called on submit")
		// Whole-word: the saveUser2 declaration does not count
		require.NotContains(t, r.LineText, "saveUser2")
	}
	require.True(t, uris["proj/caller.ts"])
}

func TestSearchReferencesCaseSensitive(t *testing.T) {
	e := New(defsWorkspace())

	results, err := e.SearchReferences(context.Background(), "SAVEUSER", lang.TypeScript)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestSearchTodos(t *testing.T) {
	w := workspace.NewMemWorkspace("proj")
	w.AddFile("proj/b.go", ""+
		"// TODO add retries\n"+
		"func run() {}\n"+
		"// FIXME: leaks on error\n")
	w.AddFile("proj/a.go", ""+
		"// HACK working around upstream bug\n"+
		"// NOTE the order matters here\n")
	w.AddFile("proj/c.go", "func clean() {}\n")
	e := New(w)

	results, err := e.SearchTodos(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 4)

	// Path order, then line order, not relevance order
	uris := make([]string, len(results))
	for i, r := range results {
		uris[i] = r.URI
	}
	require.True(t, sort.StringsAreSorted(uris))
	require.Equal(t, "proj/b.go", results[2].URI)
	require.Equal(t, 0, results[2].LineNumber)
	require.Equal(t, "proj/b.go", results[3].URI)
	require.Equal(t, 2, results[3].LineNumber)
}
