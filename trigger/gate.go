package trigger

import (
	"strings"

	"github.com/gozephyr/codeassist/lang"
	"github.com/gozephyr/codeassist/workspace"
)

// ShouldTrigger is the eligibility gate run on every edit before any work is
// scheduled. An edit qualifies only when the cursor sits at the end of the
// meaningful part of its line, outside string literals and comments, and the
// text before the cursor matches a trigger pattern for the document language.
func ShouldTrigger(doc *workspace.Document) bool {
	if doc == nil {
		return false
	}

	if strings.TrimSpace(doc.LineAfterCursor()) != "" {
		return false
	}

	before := doc.LineBeforeCursor()
	if insideStringOrComment(before) {
		return false
	}

	language := lang.FromID(doc.LanguageID)
	for _, pattern := range lang.TriggerPatterns(language) {
		if pattern.MatchString(before) {
			return true
		}
	}
	return false
}

// insideStringOrComment is the heuristic for "cursor is inside a literal":
// odd count of unescaped quotes before the cursor, a comment-marker line
// start, or an unclosed block-comment opener on the line.
func insideStringOrComment(before string) bool {
	if oddQuoteParity(before, '"') || oddQuoteParity(before, '\'') || oddQuoteParity(before, '`') {
		return true
	}
	// TODO/FIXME comments are the one comment shape worth completing
	if lang.IsCommentLine(before) && !lang.IsTodoLine(before) {
		return true
	}
	if open := strings.LastIndex(before, "/*"); open >= 0 {
		if !strings.Contains(before[open:], "*/") {
			return true
		}
	}
	return false
}

// oddQuoteParity reports whether the line holds an odd number of unescaped
// occurrences of the quote character
func oddQuoteParity(line string, quote byte) bool {
	count := 0
	for i := 0; i < len(line); i++ {
		if line[i] == '\\' {
			i++
			continue
		}
		if line[i] == quote {
			count++
		}
	}
	return count%2 == 1
}
