// Package workspace defines the boundary to the surrounding editor: file
// access, workspace folder and open-tab enumeration, and the active document.
// Implementations must treat unreadable files as skippable, never as fatal.
package workspace

import (
	"context"
	"path"
	"strings"
)

// Position is a zero-based cursor position inside a document
type Position struct {
	Line      int
	Character int
}

// Document is a snapshot of one editor document. Version increases
// monotonically on every edit and drives cache invalidation.
type Document struct {
	URI        string
	LanguageID string
	Version    int
	Text       string
	Cursor     Position
}

// FileName returns the document's base name
func (d *Document) FileName() string {
	return path.Base(d.URI)
}

// Line returns the text of the given zero-based line, or "" when out of range
func (d *Document) Line(n int) string {
	lines := strings.Split(d.Text, "\n")
	if n < 0 || n >= len(lines) {
		return ""
	}
	return strings.TrimSuffix(lines[n], "\r")
}

// LineBeforeCursor returns the current line's text up to the cursor
func (d *Document) LineBeforeCursor() string {
	line := d.Line(d.Cursor.Line)
	if d.Cursor.Character >= len(line) {
		return line
	}
	if d.Cursor.Character < 0 {
		return ""
	}
	return line[:d.Cursor.Character]
}

// LineAfterCursor returns the current line's text from the cursor onward
func (d *Document) LineAfterCursor() string {
	line := d.Line(d.Cursor.Line)
	if d.Cursor.Character >= len(line) || d.Cursor.Character < 0 {
		return ""
	}
	return line[d.Cursor.Character:]
}

// DirEntry is one entry of a listed directory
type DirEntry struct {
	Name  string
	IsDir bool
}

// FS provides asynchronous file access. Every call may fail for individual
// files; callers skip the affected file and continue.
type FS interface {
	// ReadFile returns the text content of the file at uri
	ReadFile(ctx context.Context, uri string) (string, error)

	// ListDirectory returns the entries of the directory at uri
	ListDirectory(ctx context.Context, uri string) ([]DirEntry, error)

	// FindFiles returns up to limit file URIs matching the include glob and
	// not the exclude glob
	FindFiles(ctx context.Context, include, exclude string, limit int) ([]string, error)
}

// Workspace extends FS with folder and open-document enumeration
type Workspace interface {
	FS

	// Folders returns the workspace root folders, first folder primary
	Folders() []string

	// OpenDocuments returns the currently open editor documents
	OpenDocuments() []*Document
}

// Dir returns the directory portion of a URI
func Dir(uri string) string {
	return path.Dir(uri)
}

// BaseName returns the last path element of a URI
func BaseName(uri string) string {
	return path.Base(uri)
}

// Stem returns the base name without its extension
func Stem(uri string) string {
	base := path.Base(uri)
	if ext := path.Ext(base); ext != "" {
		return base[:len(base)-len(ext)]
	}
	return base
}

// Rel returns uri relative to the first folder that contains it, falling
// back to the URI itself
func Rel(uri string, folders []string) string {
	for _, folder := range folders {
		prefix := strings.TrimSuffix(folder, "/") + "/"
		if strings.HasPrefix(uri, prefix) {
			return strings.TrimPrefix(uri, prefix)
		}
	}
	return uri
}
