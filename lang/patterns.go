package lang

import (
	"regexp"
	"strings"
)

// Import extraction patterns; the first capture group is the import path.
var (
	esImportPattern  = regexp.MustCompile(`(?m)^\s*import\s+(?:type\s+)?(?:[\w$]+|\*\s+as\s+[\w$]+|\{[^}]*\})?\s*(?:,\s*\{[^}]*\})?\s*(?:from\s+)?['"]([^'"]+)['"]`)
	esRequirePattern = regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`)
	pyImportPattern  = regexp.MustCompile(`(?m)^\s*import\s+([\w.]+)`)
	pyFromPattern    = regexp.MustCompile(`(?m)^\s*from\s+([\w.]+)\s+import`)
	javaPattern      = regexp.MustCompile(`(?m)^\s*import\s+(?:static\s+)?([\w.]+(?:\.\*)?)\s*;`)
	goSinglePattern  = regexp.MustCompile(`(?m)^\s*import\s+(?:[\w.]+\s+)?"([^"]+)"`)
	goBlockPattern   = regexp.MustCompile(`(?ms)^import\s*\((.*?)\)`)
	goQuotedPattern  = regexp.MustCompile(`"([^"]+)"`)
)

// importPatterns maps each language to its line-oriented import patterns
var importPatterns = map[Language][]*regexp.Regexp{
	JavaScript: {esImportPattern, esRequirePattern},
	TypeScript: {esImportPattern, esRequirePattern},
	Python:     {pyImportPattern, pyFromPattern},
	Java:       {javaPattern},
}

// ExtractImports returns the import paths declared in content, in source
// order, deduplicated
func ExtractImports(l Language, content string) []string {
	var raw []string

	if l == Go {
		for _, m := range goSinglePattern.FindAllStringSubmatch(content, -1) {
			raw = append(raw, m[1])
		}
		for _, block := range goBlockPattern.FindAllStringSubmatch(content, -1) {
			for _, m := range goQuotedPattern.FindAllStringSubmatch(block[1], -1) {
				raw = append(raw, m[1])
			}
		}
	} else {
		for _, p := range importPatterns[l] {
			for _, m := range p.FindAllStringSubmatch(content, -1) {
				raw = append(raw, m[1])
			}
		}
	}

	seen := make(map[string]bool, len(raw))
	imports := make([]string, 0, len(raw))
	for _, imp := range raw {
		if imp == "" || seen[imp] {
			continue
		}
		seen[imp] = true
		imports = append(imports, imp)
	}
	return imports
}

// IsRelativeImport reports whether the import path is file-relative. A
// leading dot covers ECMAScript ./ and ../ forms as well as Python's
// .module form.
func IsRelativeImport(path string) bool {
	return strings.HasPrefix(path, ".")
}

// todoTrigger fires on follow-up markers the author left behind; it applies
// even inside comment lines, which the gate otherwise rejects
var todoTrigger = regexp.MustCompile(`(?:TODO|FIXME)\b.*$`)

// IsTodoLine reports whether the line carries a follow-up marker
func IsTodoLine(line string) bool {
	return todoTrigger.MatchString(line)
}

// commonTriggers apply to every language: markers the author left for a
// follow-up, method chaining, call openers and blank lines.
var commonTriggers = []*regexp.Regexp{
	todoTrigger,
	regexp.MustCompile(`[\w)\]]\.\s*$`),
	regexp.MustCompile(`\(\s*$`),
	regexp.MustCompile(`^\s*$`),
}

// languageTriggers extend the common set with function, class and
// control-block openers per language
var languageTriggers = map[Language][]*regexp.Regexp{
	Go: {
		regexp.MustCompile(`func\s.*\{\s*$`),
		regexp.MustCompile(`(?:if|for|switch|select)\b.*\{\s*$`),
		regexp.MustCompile(`(?:=|:=)\s*$`),
	},
	JavaScript: {
		regexp.MustCompile(`function\b.*[({]\s*$`),
		regexp.MustCompile(`=>\s*\{?\s*$`),
		regexp.MustCompile(`(?:class|if|for|while|switch)\b.*\{\s*$`),
		regexp.MustCompile(`[=:]\s*$`),
	},
	TypeScript: {
		regexp.MustCompile(`function\b.*[({]\s*$`),
		regexp.MustCompile(`=>\s*\{?\s*$`),
		regexp.MustCompile(`(?:class|interface|if|for|while|switch)\b.*\{\s*$`),
		regexp.MustCompile(`[=:]\s*$`),
	},
	Python: {
		regexp.MustCompile(`def\s+\w+\s*\(.*\)\s*:\s*$`),
		regexp.MustCompile(`class\s+\w+.*:\s*$`),
		regexp.MustCompile(`(?:if|elif|else|for|while|with|try|except|finally)\b.*:\s*$`),
		regexp.MustCompile(`=\s*$`),
	},
	Java: {
		regexp.MustCompile(`(?:\w+\s+)+\w+\s*\([^)]*\)\s*\{\s*$`),
		regexp.MustCompile(`(?:class|interface|if|for|while|switch)\b.*\{\s*$`),
		regexp.MustCompile(`=\s*$`),
	},
}

// TriggerPatterns returns the trigger patterns for a language: the common set
// plus any language-specific extensions. Unknown languages get the common set
// only.
func TriggerPatterns(l Language) []*regexp.Regexp {
	specific := languageTriggers[l]
	patterns := make([]*regexp.Regexp, 0, len(commonTriggers)+len(specific))
	patterns = append(patterns, commonTriggers...)
	patterns = append(patterns, specific...)
	return patterns
}

// DeclarationPatterns returns regex sources matching declarations of ident in
// the given language. The identifier is quoted, so any string is safe.
func DeclarationPatterns(l Language, ident string) []string {
	q := regexp.QuoteMeta(ident)
	switch l {
	case JavaScript, TypeScript:
		return []string{
			`function\s+` + q + `\s*\(`,
			`(?:const|let|var)\s+` + q + `\s*[=:(]`,
			`class\s+` + q + `\b`,
			`interface\s+` + q + `\b`,
			`type\s+` + q + `\s*=`,
		}
	case Python:
		return []string{
			`def\s+` + q + `\s*\(`,
			`class\s+` + q + `\b`,
			q + `\s*=\s*lambda\b`,
		}
	case Java:
		return []string{
			`(?:public|protected|private|static|final|\s)+[\w<>\[\],\s]+\s` + q + `\s*\(`,
			`class\s+` + q + `\b`,
			`interface\s+` + q + `\b`,
		}
	case Go:
		return []string{
			`func\s+(?:\([^)]+\)\s+)?` + q + `\s*[\[(]`,
			`type\s+` + q + `\b`,
			`(?:var|const)\s+` + q + `\b`,
		}
	default:
		return []string{`\b` + q + `\b`}
	}
}

// lineCommentMarkers is the language-agnostic set of markers that open a
// comment-only line
var lineCommentMarkers = []string{"//", "#", "--", ";", "*", "/*", "'''", `"""`}

// IsCommentLine reports whether the trimmed line starts with a comment marker
func IsCommentLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	for _, marker := range lineCommentMarkers {
		if strings.HasPrefix(trimmed, marker) {
			return true
		}
	}
	return false
}

// codeLinePatterns recognize lines that plausibly belong in a code
// suggestion; anything else is provider prose.
var codeLinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s`),                          // indented continuation
	regexp.MustCompile(`[{}()\[\];]\s*$`),              // structural terminator
	regexp.MustCompile(`^[\w$.\[\]]+\s*[-+*/|&^%:]?=`), // assignment
	regexp.MustCompile(`^\s*[\w$]+\s*[.(]`),            // call or member access
	regexp.MustCompile(`^\s*(?:func|function|def|class|interface|type|const|var|let|return|if|else|elif|for|while|switch|case|try|except|catch|finally|import|from|package|public|private|protected|static|struct|enum|impl|fn|go|defer|break|continue|yield|async|await|raise|throw|new)\b`),
	regexp.MustCompile(`^\s*[#/]`), // comment carried inside the suggestion
}

// LooksLikeCode reports whether a suggestion line looks like code rather than
// explanatory prose
func LooksLikeCode(line string) bool {
	if strings.TrimSpace(line) == "" {
		return true
	}
	for _, p := range codeLinePatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}
