package assembler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gozephyr/codeassist/cache"
	"github.com/gozephyr/codeassist/lang"
	"github.com/gozephyr/codeassist/workspace"
)

func testWorkspace() *workspace.MemWorkspace {
	w := workspace.NewMemWorkspace("proj")
	w.AddFile("proj/package.json", `{"name": "proj"}`)
	w.AddFile("proj/src/user.ts", "import { api } from './api';\nexport class User {}\n")
	w.AddFile("proj/src/api.ts", "export const api = {};\n")
	w.AddFile("proj/src/order.ts", "export class Order {}\n")
	w.AddFile("proj/src/user_repo.ts", "export class UserRepo {}\n")
	w.AddFile("proj/test/user.test.ts", "describe('user', () => {});\n")
	w.AddFile("proj/README.md", "# proj\n")
	return w
}

func activeDoc(w *workspace.MemWorkspace) *workspace.Document {
	content, _ := w.ReadFile(context.Background(), "proj/src/user.ts")
	return &workspace.Document{
		URI:        "proj/src/user.ts",
		LanguageID: "typescript",
		Version:    1,
		Text:       content,
	}
}

func TestBuildContextNilDocument(t *testing.T) {
	a := New(testWorkspace())

	wc, err := a.BuildContext(context.Background(), nil)
	require.NoError(t, err)
	require.Nil(t, wc.CurrentFile)
	require.Empty(t, wc.RelatedFiles)
	require.Equal(t, "unknown", wc.ProjectType)
	require.Equal(t, "unknown", wc.WorkspaceName)
}

func TestBuildContextCurrentFile(t *testing.T) {
	w := testWorkspace()
	a := New(w)

	wc, err := a.BuildContext(context.Background(), activeDoc(w))
	require.NoError(t, err)
	require.NotNil(t, wc.CurrentFile)
	require.Equal(t, "user.ts", wc.CurrentFile.FileName)
	require.Equal(t, "src/user.ts", wc.CurrentFile.RelativePath)
	require.Equal(t, lang.TypeScript, wc.CurrentFile.Language)
	require.True(t, wc.CurrentFile.IsOpen)
	require.Equal(t, 1.0, wc.CurrentFile.RelevanceScore)
	require.Equal(t, "node", wc.ProjectType)
	require.Equal(t, "proj", wc.WorkspaceName)
}

func TestBuildContextPoolScores(t *testing.T) {
	w := testWorkspace()
	w.OpenTab(&workspace.Document{
		URI:        "proj/src/order.ts",
		LanguageID: "typescript",
		Text:       "export class Order {}\n",
	})
	a := New(w)

	wc, err := a.BuildContext(context.Background(), activeDoc(w))
	require.NoError(t, err)

	scores := make(map[string]float64)
	for _, f := range wc.RelatedFiles {
		scores[f.URI] = f.RelevanceScore
	}

	// Open tab beats sibling, import beats sibling, sibling beats
	// name-only similarity.
	require.Equal(t, 0.8, scores["proj/src/order.ts"])
	require.Equal(t, 0.7, scores["proj/src/api.ts"])
	require.Equal(t, 0.6, scores["proj/src/user_repo.ts"])
	require.Equal(t, 0.4, scores["proj/test/user.test.ts"])
}

func TestBuildContextDedupKeepsHighestScore(t *testing.T) {
	w := testWorkspace()
	// api.ts is both an import target and a sibling; the import score wins
	a := New(w)

	wc, err := a.BuildContext(context.Background(), activeDoc(w))
	require.NoError(t, err)

	seen := 0
	for _, f := range wc.RelatedFiles {
		if f.URI == "proj/src/api.ts" {
			seen++
			require.Equal(t, 0.7, f.RelevanceScore)
		}
	}
	require.Equal(t, 1, seen)
}

func TestBuildContextOrderAndBound(t *testing.T) {
	w := testWorkspace()
	for i := 0; i < 10; i++ {
		w.AddFile("proj/src/extra"+string(rune('a'+i))+".ts", "export {};\n")
	}
	a := New(w, WithMaxRelatedFiles(5))

	wc, err := a.BuildContext(context.Background(), activeDoc(w))
	require.NoError(t, err)
	require.LessOrEqual(t, len(wc.RelatedFiles), 5)
	for i := 1; i < len(wc.RelatedFiles); i++ {
		require.GreaterOrEqual(t,
			wc.RelatedFiles[i-1].RelevanceScore,
			wc.RelatedFiles[i].RelevanceScore)
	}
}

func TestBuildContextSkipsOversizedFiles(t *testing.T) {
	w := testWorkspace()
	a := New(w, WithMaxFileBytes(10))

	wc, err := a.BuildContext(context.Background(), activeDoc(w))
	require.NoError(t, err)
	for _, f := range wc.RelatedFiles {
		require.LessOrEqual(t, len(f.Content), 10)
	}
}

func TestBuildContextImportsFiltered(t *testing.T) {
	w := workspace.NewMemWorkspace("proj")
	w.AddFile("proj/go.mod", "module proj\n")
	a := New(w)

	doc := &workspace.Document{
		URI:        "proj/main.ts",
		LanguageID: "typescript",
		Text:       "import { a } from './local';\nimport express from 'express';\nimport type { T } from '@types/node';\n",
	}
	wc, err := a.BuildContext(context.Background(), doc)
	require.NoError(t, err)
	require.Equal(t, []string{"express"}, wc.Imports)
}

func TestBuildContextProjectTypes(t *testing.T) {
	cases := []struct {
		marker   string
		expected string
	}{
		{"package.json", "node"},
		{"requirements.txt", "python"},
		{"pom.xml", "java-maven"},
		{"build.gradle", "java-gradle"},
		{"Cargo.toml", "rust"},
		{"go.mod", "go"},
		{"app.csproj", "dotnet"},
	}
	for _, tc := range cases {
		t.Run(tc.expected, func(t *testing.T) {
			w := workspace.NewMemWorkspace("proj")
			w.AddFile("proj/"+tc.marker, "x")
			w.AddFile("proj/main.txt", "x")
			a := New(w)

			wc, err := a.BuildContext(context.Background(), &workspace.Document{
				URI: "proj/main.txt", Text: "x",
			})
			require.NoError(t, err)
			require.Equal(t, tc.expected, wc.ProjectType)
		})
	}
}

func TestBuildContextMemoization(t *testing.T) {
	store := cache.New()
	defer store.Close()

	w := testWorkspace()
	a := New(w, WithCache(store), WithContextTTL(time.Minute))
	doc := activeDoc(w)

	first, err := a.BuildContext(context.Background(), doc)
	require.NoError(t, err)

	// Same version and text hits the memoized context
	second, err := a.BuildContext(context.Background(), doc)
	require.NoError(t, err)
	require.Same(t, first, second)

	// Same version but changed text must rebuild
	edited := *doc
	edited.Text = doc.Text + "\n// edited"
	third, err := a.BuildContext(context.Background(), &edited)
	require.NoError(t, err)
	require.NotSame(t, first, third)
	require.Equal(t, edited.Text, third.CurrentFile.Content)
}

func TestBuildContextDeterministic(t *testing.T) {
	w := testWorkspace()
	a := New(w)
	doc := activeDoc(w)

	first, err := a.BuildContext(context.Background(), doc)
	require.NoError(t, err)
	second, err := a.BuildContext(context.Background(), doc)
	require.NoError(t, err)
	require.Equal(t, first.RelatedFiles, second.RelatedFiles)
	require.Equal(t, first.Imports, second.Imports)
}

func TestBuildContextCancellation(t *testing.T) {
	w := testWorkspace()
	a := New(w)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.BuildContext(ctx, activeDoc(w))
	require.ErrorIs(t, err, context.Canceled)
}
