package workspace

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gozephyr/codeassist/errors"
)

// OSWorkspace is a Workspace backed by a directory on disk. It has no open
// tabs; the CLI and batch tooling use it.
type OSWorkspace struct {
	root string

	// MaxFileBytes bounds ReadFile; larger files are reported as
	// ErrFileTooLarge so callers skip them. Zero means unbounded.
	MaxFileBytes int64
}

// NewOSWorkspace creates a workspace rooted at dir
func NewOSWorkspace(dir string) (*OSWorkspace, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap("NewOSWorkspace", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.Wrap("NewOSWorkspace", dir, errors.ErrNoWorkspace)
	}
	if !info.IsDir() {
		return nil, errors.Wrap("NewOSWorkspace", dir, errors.ErrNotADirectory)
	}
	return &OSWorkspace{root: filepath.ToSlash(abs)}, nil
}

// errLimitReached stops the glob walk once enough matches accumulated
var errLimitReached = stderrors.New("limit reached")

// abs converts a workspace URI to an OS path
func (w *OSWorkspace) abs(uri string) string {
	if filepath.IsAbs(filepath.FromSlash(uri)) {
		return filepath.FromSlash(uri)
	}
	return filepath.Join(filepath.FromSlash(w.root), filepath.FromSlash(uri))
}

// ReadFile implements FS
func (w *OSWorkspace) ReadFile(ctx context.Context, uri string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p := w.abs(uri)
	if w.MaxFileBytes > 0 {
		info, err := os.Stat(p)
		if err != nil {
			return "", errors.Wrap("ReadFile", uri, errors.ErrFileNotFound)
		}
		if info.Size() > w.MaxFileBytes {
			return "", errors.Wrap("ReadFile", uri, errors.ErrFileTooLarge)
		}
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return "", errors.Wrap("ReadFile", uri, errors.ErrFileNotFound)
	}
	return string(data), nil
}

// ListDirectory implements FS
func (w *OSWorkspace) ListDirectory(ctx context.Context, uri string) ([]DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	osEntries, err := os.ReadDir(w.abs(uri))
	if err != nil {
		return nil, errors.Wrap("ListDirectory", uri, errors.ErrNotADirectory)
	}

	entries := make([]DirEntry, 0, len(osEntries))
	for _, e := range osEntries {
		entries = append(entries, DirEntry{Name: e.Name(), IsDir: e.IsDir()})
	}
	return entries, nil
}

// FindFiles implements FS by walking the root with doublestar glob matching
func (w *OSWorkspace) FindFiles(ctx context.Context, include, exclude string, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !doublestar.ValidatePattern(include) {
		return nil, errors.Wrap("FindFiles", include, errors.ErrInvalidPattern)
	}

	var matches []string
	fsys := os.DirFS(filepath.FromSlash(w.root))
	err := doublestar.GlobWalk(fsys, include, func(p string, d fs.DirEntry) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		if exclude != "" && doublestar.MatchUnvalidated(exclude, p) {
			return nil
		}
		matches = append(matches, w.root+"/"+p)
		if limit > 0 && len(matches) >= limit {
			return errLimitReached
		}
		return nil
	})
	if err != nil && err != errLimitReached {
		if ctx.Err() != nil {
			return nil, err
		}
	}

	sort.Strings(matches)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Folders implements Workspace
func (w *OSWorkspace) Folders() []string {
	return []string{w.root}
}

// OpenDocuments implements Workspace
func (w *OSWorkspace) OpenDocuments() []*Document {
	return nil
}
