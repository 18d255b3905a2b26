package workspace

import (
	"context"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gozephyr/codeassist/errors"
)

// MemWorkspace is an in-memory Workspace implementation. It backs tests and
// any host that already holds file contents in memory.
type MemWorkspace struct {
	mu      sync.RWMutex
	files   map[string]string
	folders []string
	open    []*Document
}

// NewMemWorkspace creates an empty in-memory workspace
func NewMemWorkspace(folders ...string) *MemWorkspace {
	return &MemWorkspace{
		files:   make(map[string]string),
		folders: folders,
	}
}

// AddFile stores a file's content under uri
func (w *MemWorkspace) AddFile(uri, content string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[uri] = content
}

// RemoveFile deletes the file at uri
func (w *MemWorkspace) RemoveFile(uri string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.files, uri)
}

// OpenTab marks a document as open in the editor
func (w *MemWorkspace) OpenTab(doc *Document) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, d := range w.open {
		if d.URI == doc.URI {
			w.open[i] = doc
			return
		}
	}
	w.open = append(w.open, doc)
}

// CloseTab removes a document from the open set
func (w *MemWorkspace) CloseTab(uri string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, d := range w.open {
		if d.URI == uri {
			w.open = append(w.open[:i], w.open[i+1:]...)
			return
		}
	}
}

// SetFolders replaces the workspace folder list
func (w *MemWorkspace) SetFolders(folders ...string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.folders = folders
}

// ReadFile implements FS
func (w *MemWorkspace) ReadFile(ctx context.Context, uri string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	content, ok := w.files[uri]
	if !ok {
		return "", errors.Wrap("ReadFile", uri, errors.ErrFileNotFound)
	}
	return content, nil
}

// ListDirectory implements FS
func (w *MemWorkspace) ListDirectory(ctx context.Context, uri string) ([]DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := strings.TrimSuffix(uri, "/") + "/"

	w.mu.RLock()
	defer w.mu.RUnlock()

	seen := make(map[string]bool)
	var entries []DirEntry
	for file := range w.files {
		if !strings.HasPrefix(file, prefix) {
			continue
		}
		rest := strings.TrimPrefix(file, prefix)
		if idx := strings.Index(rest, "/"); idx >= 0 {
			name := rest[:idx]
			if !seen[name] {
				seen[name] = true
				entries = append(entries, DirEntry{Name: name, IsDir: true})
			}
		} else if !seen[rest] {
			seen[rest] = true
			entries = append(entries, DirEntry{Name: rest, IsDir: false})
		}
	}
	if len(entries) == 0 {
		return nil, errors.Wrap("ListDirectory", uri, errors.ErrNotADirectory)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// FindFiles implements FS. Globs match against paths relative to each
// workspace folder as well as full URIs, so both "**/*.go" and absolute
// patterns work.
func (w *MemWorkspace) FindFiles(ctx context.Context, include, exclude string, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !doublestar.ValidatePattern(include) {
		return nil, errors.Wrap("FindFiles", include, errors.ErrInvalidPattern)
	}

	w.mu.RLock()
	files := make([]string, 0, len(w.files))
	for file := range w.files {
		files = append(files, file)
	}
	folders := append([]string(nil), w.folders...)
	w.mu.RUnlock()

	sort.Strings(files)

	var matches []string
	for _, file := range files {
		if limit > 0 && len(matches) >= limit {
			break
		}
		if matchesGlob(file, folders, include) && !matchesGlob(file, folders, exclude) {
			matches = append(matches, file)
		}
	}
	return matches, nil
}

// Folders implements Workspace
func (w *MemWorkspace) Folders() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string(nil), w.folders...)
}

// OpenDocuments implements Workspace
func (w *MemWorkspace) OpenDocuments() []*Document {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]*Document(nil), w.open...)
}

// matchesGlob reports whether the file matches the pattern against its full
// URI or any folder-relative form
func matchesGlob(file string, folders []string, pattern string) bool {
	if pattern == "" {
		return false
	}
	if doublestar.MatchUnvalidated(pattern, file) {
		return true
	}
	for _, folder := range folders {
		prefix := strings.TrimSuffix(folder, "/") + "/"
		if strings.HasPrefix(file, prefix) {
			if doublestar.MatchUnvalidated(pattern, strings.TrimPrefix(file, prefix)) {
				return true
			}
		}
	}
	return doublestar.MatchUnvalidated(pattern, path.Base(file))
}
