package trigger

import (
	"strings"

	"github.com/gozephyr/codeassist/internal"
	"github.com/gozephyr/codeassist/lang"
)

// prosePrefixes mark leading explanation lines backends sometimes produce
// before the code
var prosePrefixes = []string{"Here", "This", "The", "Note", "Explanation"}

// PostProcess turns a raw backend response into insertable code. Fences and
// leading prose are stripped, lines that do not look like code are dropped,
// the result is capped to maxLines, and every line after the first is
// re-indented to the current line's leading whitespace. An empty result means
// no suggestion.
func PostProcess(raw, currentLine string, maxLines int) string {
	lines := internal.Lines(stripFences(raw))

	// Drop leading prose lines and blanks before the first code line
	start := 0
	for start < len(lines) {
		trimmed := strings.TrimSpace(lines[start])
		if trimmed == "" || isProse(trimmed) {
			start++
			continue
		}
		break
	}
	lines = lines[start:]

	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if !lang.LooksLikeCode(line) {
			continue
		}
		kept = append(kept, line)
	}

	// Trim trailing blanks so the cap applies to meaningful lines
	for len(kept) > 0 && strings.TrimSpace(kept[len(kept)-1]) == "" {
		kept = kept[:len(kept)-1]
	}
	if maxLines > 0 && len(kept) > maxLines {
		kept = kept[:maxLines]
	}
	if len(kept) == 0 {
		return ""
	}

	// The first line continues the text at the cursor; later lines adopt
	// the current line's indentation.
	indent := internal.LeadingWhitespace(currentLine)
	out := make([]string, len(kept))
	out[0] = strings.TrimRight(kept[0], " \t")
	for i := 1; i < len(kept); i++ {
		line := strings.TrimRight(kept[i], " \t")
		if strings.TrimSpace(line) == "" {
			out[i] = ""
			continue
		}
		out[i] = indent + strings.TrimLeft(line, " \t")
	}
	return strings.Join(out, "\n")
}

// stripFences removes wrapping markdown code fences, keeping only the fenced
// body when one is present
func stripFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.Contains(trimmed, "```") {
		return trimmed
	}

	var body []string
	inFence := false
	for _, line := range internal.Lines(trimmed) {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inFence {
				break
			}
			inFence = true
			continue
		}
		if inFence {
			body = append(body, line)
		}
	}
	return strings.Join(body, "\n")
}

func isProse(trimmed string) bool {
	for _, prefix := range prosePrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}
