package similarity

import (
	"regexp"
	"strings"
)

// tokenSplitPattern matches non-alphanumeric character sequences.
var tokenSplitPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Tokenize lowercases text and splits it on runs of non-alphanumeric
// characters. Text without alphanumerics yields an empty slice.
func Tokenize(text string) []string {
	lowered := strings.ToLower(text)
	spaced := strings.TrimSpace(tokenSplitPattern.ReplaceAllString(lowered, " "))
	if spaced == "" {
		return []string{}
	}
	return strings.Fields(spaced)
}
