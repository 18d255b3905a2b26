package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newOSTestWorkspace(t *testing.T) *OSWorkspace {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "vendor", "dep"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "main.go"), []byte("package main\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "util.go"), []byte("package main\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vendor", "dep", "dep.go"), []byte("package dep\n"), 0o644))

	w, err := NewOSWorkspace(dir)
	require.NoError(t, err)
	return w
}

func TestOSReadFile(t *testing.T) {
	w := newOSTestWorkspace(t)
	ctx := context.Background()

	content, err := w.ReadFile(ctx, "src/main.go")
	require.NoError(t, err)
	require.Equal(t, "package main\n", content)

	_, err = w.ReadFile(ctx, "src/missing.go")
	require.Error(t, err)
}

func TestOSReadFileSizeBound(t *testing.T) {
	w := newOSTestWorkspace(t)
	w.MaxFileBytes = 4

	_, err := w.ReadFile(context.Background(), "src/main.go")
	require.Error(t, err)
}

func TestOSListDirectory(t *testing.T) {
	w := newOSTestWorkspace(t)

	entries, err := w.ListDirectory(context.Background(), "src")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	_, err = w.ListDirectory(context.Background(), "nosuchdir")
	require.Error(t, err)
}

func TestOSFindFiles(t *testing.T) {
	w := newOSTestWorkspace(t)
	ctx := context.Background()

	files, err := w.FindFiles(ctx, "**/*.go", "vendor/**", 0)
	require.NoError(t, err)
	require.Len(t, files, 2)
	for _, f := range files {
		require.Contains(t, f, "src/")
	}
}

func TestNewOSWorkspaceErrors(t *testing.T) {
	_, err := NewOSWorkspace("/no/such/dir")
	require.Error(t, err)
}
