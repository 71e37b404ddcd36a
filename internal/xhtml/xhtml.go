// Package xhtml pulls page text out of scanned-book XHTML exports, one page
// per leaf div.
package xhtml

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
)

var (
	pageSel    = cascadia.MustCompile(`div[id^="page-"][ia_leaf_number]`)
	headingSel = cascadia.MustCompile("h3")
	contentSel = cascadia.MustCompile(".page-content")
)

// Page is the extracted text of one leaf.
type Page struct {
	Text string `csv:"Text"`
}

// ExtractPages returns the text of every page div in document order. A
// page's text is its first h3 heading and its first .page-content block,
// each trimmed and joined by a newline; a missing part counts as empty.
func ExtractPages(r io.Reader) ([]Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, eris.Wrap(err, "xhtml: parse document")
	}

	divs := pageSel.MatchAll(doc)
	pages := make([]Page, 0, len(divs))
	for _, div := range divs {
		heading := strings.TrimSpace(TextContent(headingSel.MatchFirst(div)))
		content := strings.TrimSpace(TextContent(contentSel.MatchFirst(div)))
		pages = append(pages, Page{Text: strings.TrimSpace(heading + "\n" + content)})
	}
	return pages, nil
}

// TextContent concatenates every text node beneath n. A nil node yields "".
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// WriteCSV writes pages as a single-column CSV with a "Text" header.
func WriteCSV(w io.Writer, pages []Page) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	if err := enc.EncodeHeader(Page{}); err != nil {
		return eris.Wrap(err, "xhtml: write header")
	}
	for _, p := range pages {
		if err := enc.Encode(p); err != nil {
			return eris.Wrap(err, "xhtml: write row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "xhtml: flush csv")
	}
	return nil
}
