// Package splitter breaks a long transcript into per-item text files and
// packages them as a ZIP archive.
package splitter

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"

	"github.com/sells-group/transcribe-cli/internal/fileio"
)

// ErrEmptyMarker is returned when ByMarker is given an empty marker.
var ErrEmptyMarker = eris.New("splitter: empty split marker")

// ErrNoParts is returned when the text contains nothing to split out.
var ErrNoParts = eris.New("splitter: no split markers found")

// Part is one output file.
type Part struct {
	Name string
	Text string
}

// ByMarker splits text at every occurrence of marker. Each chunk keeps the
// marker as its prefix, with whitespace after the marker removed. A
// whitespace-only lead-in before the first marker is dropped; any other
// lead-in becomes the first chunk. Surrounding whitespace is trimmed from
// marker first.
//
// Text without any occurrence of marker is rejected with ErrNoParts rather
// than packaged as a single file, so a mistyped marker does not produce an
// archive holding the whole transcript.
func ByMarker(text, marker string) ([]string, error) {
	marker = strings.TrimSpace(marker)
	if marker == "" {
		return nil, ErrEmptyMarker
	}
	if !strings.Contains(text, marker) {
		return nil, ErrNoParts
	}

	parts := strings.Split(text, marker)
	if strings.TrimSpace(parts[0]) == "" {
		parts = parts[1:]
	}

	chunks := make([]string, len(parts))
	for i, p := range parts {
		chunks[i] = marker + strings.TrimLeftFunc(p, unicode.IsSpace)
	}
	return chunks, nil
}

// NameChunks names chunks "<base>_<n>.txt", numbering from 1 and zero-padding
// n to width digits.
func NameChunks(base string, chunks []string, width int) []Part {
	if width < 1 {
		width = 1
	}
	parts := make([]Part, len(chunks))
	for i, c := range chunks {
		parts[i] = Part{Name: fmt.Sprintf("%s_%0*d.txt", base, width, i+1), Text: c}
	}
	return parts
}

var (
	imageHeader       = regexp.MustCompile(`(?i)image\s+(\d+)\s*`)
	transcriptionHead = regexp.MustCompile(`(?i)^\s*transcription:\s*`)
)

// ByImage splits a transcript laid out as "Image <n>" headings, each followed
// by that image's text. Parts are named "image_<n>.txt". A leading
// "Transcription:" label and surrounding blank lines are removed from each
// part. A repeated image number gets a "_2", "_3", ... suffix rather than
// replacing the earlier part.
func ByImage(text string) ([]Part, error) {
	matches := imageHeader.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil, ErrNoParts
	}

	seen := make(map[string]int, len(matches))
	parts := make([]Part, 0, len(matches))
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		content := text[m[1]:end]
		content = transcriptionHead.ReplaceAllString(content, "")
		content = strings.Trim(content, "\n")

		num := text[m[2]:m[3]]
		seen[num]++
		name := "image_" + num
		if n := seen[num]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
		}
		parts = append(parts, Part{Name: name + ".txt", Text: content})
	}
	return parts, nil
}

// BaseName strips the directory and final extension from a file path.
func BaseName(path string) string {
	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// WriteArchive writes parts to w as a ZIP archive.
func WriteArchive(w io.Writer, parts []Part) error {
	entries := make([]fileio.ZIPEntry, len(parts))
	for i, p := range parts {
		entries[i] = fileio.ZIPEntry{Name: p.Name, Content: []byte(p.Text)}
	}
	if err := fileio.WriteZIP(w, entries); err != nil {
		return eris.Wrap(err, "splitter: write archive")
	}
	return nil
}
