// Package lang defines the Language enumeration and the immutable,
// compiled-once pattern tables the pipeline consults per language: import
// extraction, completion trigger patterns, declaration shapes and comment
// markers.
package lang

import (
	"path/filepath"
	"sort"
	"strings"
)

// Language identifies a programming language recognized by the pipeline
type Language int

const (
	Unknown Language = iota
	Go
	JavaScript
	TypeScript
	Python
	Java
	Rust
	CSharp
	C
	CPP
	Ruby
	PHP
)

// String returns the canonical language identifier
func (l Language) String() string {
	switch l {
	case Go:
		return "go"
	case JavaScript:
		return "javascript"
	case TypeScript:
		return "typescript"
	case Python:
		return "python"
	case Java:
		return "java"
	case Rust:
		return "rust"
	case CSharp:
		return "csharp"
	case C:
		return "c"
	case CPP:
		return "cpp"
	case Ruby:
		return "ruby"
	case PHP:
		return "php"
	default:
		return "unknown"
	}
}

// FromID maps an editor language identifier to a Language. React variants
// fold into their base language.
func FromID(id string) Language {
	switch strings.ToLower(id) {
	case "go":
		return Go
	case "javascript", "javascriptreact":
		return JavaScript
	case "typescript", "typescriptreact":
		return TypeScript
	case "python":
		return Python
	case "java":
		return Java
	case "rust":
		return Rust
	case "csharp":
		return CSharp
	case "c":
		return C
	case "cpp", "c++":
		return CPP
	case "ruby":
		return Ruby
	case "php":
		return PHP
	default:
		return Unknown
	}
}

// extLanguage maps file extensions to languages; doubles as the code-file
// allow-list for sibling scanning
var extLanguage = map[string]Language{
	".go":   Go,
	".js":   JavaScript,
	".jsx":  JavaScript,
	".mjs":  JavaScript,
	".ts":   TypeScript,
	".tsx":  TypeScript,
	".py":   Python,
	".java": Java,
	".rs":   Rust,
	".cs":   CSharp,
	".c":    C,
	".h":    C,
	".cpp":  CPP,
	".cc":   CPP,
	".hpp":  CPP,
	".rb":   Ruby,
	".php":  PHP,
}

// FromPath maps a file path to a Language by extension
func FromPath(path string) Language {
	if l, ok := extLanguage[strings.ToLower(filepath.Ext(path))]; ok {
		return l
	}
	return Unknown
}

// IsCodeFile reports whether the path has a recognized code extension
func IsCodeFile(path string) bool {
	_, ok := extLanguage[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extensions returns the file extensions mapped to a language, sorted
func Extensions(l Language) []string {
	var out []string
	for ext, language := range extLanguage {
		if language == l {
			out = append(out, ext)
		}
	}
	sort.Strings(out)
	return out
}

// ResolveExtensions returns the extensions tried, in order, when resolving a
// relative import path to a file
func ResolveExtensions(l Language) []string {
	switch l {
	case JavaScript, TypeScript:
		return []string{"", ".ts", ".tsx", ".js", ".jsx", "/index.ts", "/index.js"}
	case Python:
		return []string{".py", "/__init__.py"}
	case Java:
		return []string{".java"}
	case Go:
		return []string{".go"}
	default:
		return []string{""}
	}
}
