package assembler

import (
	"strings"

	"github.com/gozephyr/codeassist/lang"
)

// FormatOptions controls prompt rendering
type FormatOptions struct {
	// IncludeCurrentContent embeds the current file's text in a fenced block
	IncludeCurrentContent bool

	// MaxRelatedBytes embeds related-file content only when it fits; zero
	// disables related content entirely
	MaxRelatedBytes int
}

// DefaultFormatOptions returns the default rendering options
func DefaultFormatOptions() FormatOptions {
	return FormatOptions{
		IncludeCurrentContent: false,
		MaxRelatedBytes:       4 * 1024,
	}
}

// FormatForPrompt renders the context as stable prompt text. Section order is
// fixed so equal contexts always render to equal strings.
func FormatForPrompt(wc *WorkspaceContext, opts FormatOptions) string {
	if wc == nil {
		return ""
	}

	var b strings.Builder

	b.WriteString("Project: ")
	b.WriteString(wc.WorkspaceName)
	b.WriteString(" (")
	b.WriteString(wc.ProjectType)
	b.WriteString(")\n")

	if wc.CurrentFile != nil {
		b.WriteString("Current file: ")
		b.WriteString(wc.CurrentFile.RelativePath)
		b.WriteString(" (")
		b.WriteString(wc.CurrentFile.Language.String())
		b.WriteString(")\n")

		if opts.IncludeCurrentContent && wc.CurrentFile.Content != "" {
			writeFence(&b, wc.CurrentFile.Language, wc.CurrentFile.Content)
		}
	}

	if len(wc.RelatedFiles) > 0 {
		b.WriteString("Related files:\n")
		for _, f := range wc.RelatedFiles {
			b.WriteString("- ")
			b.WriteString(f.RelativePath)
			b.WriteString(" (")
			b.WriteString(f.Language.String())
			if f.IsOpen {
				b.WriteString(", open")
			}
			b.WriteString(")\n")

			if opts.MaxRelatedBytes > 0 && f.Content != "" && len(f.Content) <= opts.MaxRelatedBytes {
				writeFence(&b, f.Language, f.Content)
			}
		}
	}

	if len(wc.Imports) > 0 {
		b.WriteString("Imports: ")
		b.WriteString(strings.Join(wc.Imports, ", "))
		b.WriteString("\n")
	}

	return b.String()
}

func writeFence(b *strings.Builder, l lang.Language, content string) {
	b.WriteString("```")
	if l != lang.Unknown {
		b.WriteString(l.String())
	}
	b.WriteString("\n")
	b.WriteString(content)
	if !strings.HasSuffix(content, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```\n")
}
