package cache

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Well-known namespace names used by the completion pipeline.
const (
	// NamespaceCompletions holds prompt -> suggestion entries
	NamespaceCompletions = "completions"
	// NamespaceContext holds memoized workspace contexts
	NamespaceContext = "context"
)

// ProviderNamespace returns the namespace for one provider's responses
func ProviderNamespace(provider string) string {
	return "provider:" + provider
}

// NormalizeKey trims the text, collapses internal whitespace runs to single
// spaces and lowercases, so semantically identical prompts produce the same
// key.
func NormalizeKey(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// PromptKey normalizes prompt text and hashes it into a fixed-width key
func PromptKey(prompt string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(NormalizeKey(prompt)))
}

// FileKey builds the composite key for per-file-version entries. The URI is
// embedded verbatim so InvalidateURI can match on it.
func FileKey(uri string, version int) string {
	return fmt.Sprintf("file:%s:%d", uri, version)
}
