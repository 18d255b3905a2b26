package codeassist

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gozephyr/codeassist/cache"
	"github.com/gozephyr/codeassist/config"
	"github.com/gozephyr/codeassist/lang"
	"github.com/gozephyr/codeassist/search"
	"github.com/gozephyr/codeassist/trigger"
	"github.com/gozephyr/codeassist/workspace"
)

func engineWorkspace() *workspace.MemWorkspace {
	w := workspace.NewMemWorkspace("proj")
	w.AddFile("proj/go.mod", "module proj\n")
	w.AddFile("proj/main.go", ""+
		"package main\n"+
		"\n"+
		"// TODO wire real flags\n"+
		"func main() {\n"+
		"\trun()\n"+
		"}\n")
	w.AddFile("proj/run.go", "func run() {\n\tprintln(\"running\")\n}\n")
	return w
}

func echoCompleter(response string) trigger.Completer {
	return trigger.CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		return response, nil
	})
}

func TestEngineCompleteEndToEnd(t *testing.T) {
	e := New(engineWorkspace(), echoCompleter("return nil"))
	defer e.Close()

	doc := &workspace.Document{
		URI:        "proj/main.go",
		LanguageID: "go",
		Version:    1,
		Text:       "func helper() {",
		Cursor:     workspace.Position{Line: 0, Character: len("func helper() {")},
	}

	res, err := e.Complete(context.Background(), doc)
	require.NoError(t, err)
	require.Equal(t, "return nil", res.Suggestion)
	require.False(t, res.FromCache)

	res, err = e.Complete(context.Background(), doc)
	require.NoError(t, err)
	require.True(t, res.FromCache)

	snap := e.Metrics()
	require.Equal(t, int64(2), snap.Completions)
}

func TestEngineDebouncedHandler(t *testing.T) {
	cfg := config.Default()
	cfg.Trigger.DebounceDelay = 20 * time.Millisecond

	results := make(chan trigger.Result, 1)
	e := New(engineWorkspace(), echoCompleter("doWork()"),
		WithConfig(cfg),
		WithHandler(func(r trigger.Result) { results <- r }))
	defer e.Close()

	doc := &workspace.Document{
		URI:        "proj/main.go",
		LanguageID: "go",
		Text:       "func helper() {",
		Cursor:     workspace.Position{Line: 0, Character: len("func helper() {")},
	}
	require.True(t, e.HandleEdit(doc))

	select {
	case res := <-results:
		require.Equal(t, "doWork()", res.Suggestion)
		require.Equal(t, "proj/main.go", res.URI)
	case <-time.After(time.Second):
		t.Fatal("no completion delivered")
	}
}

func TestEngineSearchSurface(t *testing.T) {
	e := New(engineWorkspace(), echoCompleter(""))
	defer e.Close()

	results, err := e.Search(context.Background(), "run", search.DefaultOptions())
	require.NoError(t, err)
	require.NotEmpty(t, results)

	defs, err := e.SearchDefinitions(context.Background(), "run", lang.Go)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	require.Equal(t, "proj/run.go", defs[0].URI)

	refs, err := e.SearchReferences(context.Background(), "run", lang.Go)
	require.NoError(t, err)
	require.NotEmpty(t, refs)

	todos, err := e.SearchTodos(context.Background())
	require.NoError(t, err)
	require.Len(t, todos, 1)
	require.Contains(t, todos[0].LineText, "wire real flags")
}

func TestEngineInvalidation(t *testing.T) {
	e := New(engineWorkspace(), echoCompleter("return nil"))
	defer e.Close()

	doc := &workspace.Document{
		URI:        "proj/main.go",
		LanguageID: "go",
		Version:    3,
		Text:       "package main\n",
	}
	_, err := e.BuildContext(context.Background(), doc)
	require.NoError(t, err)
	require.Equal(t, 1, e.CacheStats()[cache.NamespaceContext].Size)

	require.Equal(t, 1, e.FileChanged("proj/main.go"))
	require.Equal(t, 0, e.CacheStats()[cache.NamespaceContext].Size)

	_, err = e.BuildContext(context.Background(), doc)
	require.NoError(t, err)
	e.WorkspaceChanged()
	require.Equal(t, 0, e.CacheStats()[cache.NamespaceContext].Size)
}
