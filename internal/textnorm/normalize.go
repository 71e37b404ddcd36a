// Package textnorm strips platform-injected boilerplate and escape artifacts
// from raw transcription annotations.
package textnorm

import "strings"

// dropdownSuffix builds the JSON scaffolding that closes a text task when the
// classifier also answered the "Main Dropdown" question.
func dropdownSuffix(value int, label string) string {
	return `","taskType":"textFromSubject"},{"task":"T1","task_type":"dropdown-simple","value":{"select_label":"Main Dropdown","option":true,"value":` +
		string(rune('0'+value)) + `,"label":"` + label + `"}}]`
}

// Fragments lists the wrapper fragments removed from every annotation, in
// removal order.
var Fragments = []string{
	`[{"task":"T4","value":"`,
	dropdownSuffix(1, "Page is blank"),
	dropdownSuffix(0, "Corrections made"),
	dropdownSuffix(2, "No corrections needed"),
	dropdownSuffix(3, "Text is illegible"),
}

// escapeReplacer decodes escaped sequences and symbol glyphs.
var escapeReplacer = strings.NewReplacer(
	`\u0026`, "&",
	`\u003e`, ">",
	`\u003c`, "<",
	"♂", "[male]",
	"♀", "[female]",
	"⚥", "[intersex]",
	`\"`, `"`,
	`\n`, "[new line]",
)

// Normalizer removes boilerplate fragments and decodes escapes.
type Normalizer struct {
	fragments []string
}

// New creates a Normalizer that removes the built-in Fragments followed by
// any extra fragments. Empty extras are ignored.
func New(extra ...string) *Normalizer {
	frags := make([]string, 0, len(Fragments)+len(extra))
	frags = append(frags, Fragments...)
	for _, f := range extra {
		if f != "" {
			frags = append(frags, f)
		}
	}
	return &Normalizer{fragments: frags}
}

// Normalize cleans text. Boilerplate is removed before escapes are decoded.
//
// A single pass can expose new matches (an escaped backslash in front of a
// quote, or a fragment split by an escape), so passes repeat until the text
// stops changing. Every changing pass either removes a backslash or glyph or
// shortens the text, so the loop terminates, and the result is stable under
// re-application.
//
// As a consequence a run of backslashes in front of a quote is consumed
// entirely: `\\"` and `\\\"` both become a bare `"`.
func (n *Normalizer) Normalize(text string) string {
	for {
		next := n.pass(text)
		if next == text {
			return text
		}
		text = next
	}
}

func (n *Normalizer) pass(text string) string {
	if text == "" {
		return ""
	}
	for _, frag := range n.fragments {
		text = strings.ReplaceAll(text, frag, "")
	}
	return escapeReplacer.Replace(text)
}

var defaultNormalizer = New()

// Normalize cleans text with the built-in fragment set.
func Normalize(text string) string {
	return defaultNormalizer.Normalize(text)
}
