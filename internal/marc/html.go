package marc

import (
	"encoding/json"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"golang.org/x/net/html"

	"github.com/sells-group/transcribe-cli/internal/xhtml"
)

// DefaultLeader is the leader used for records harvested from HTML.
const DefaultLeader = "00000nam a2200000 a 4500"

// Options configures FromHTML.
type Options struct {
	Leader              string           // default DefaultLeader
	ControlNumberPrefix string           // prefix for generated control numbers
	Now                 func() time.Time // default time.Now
	NewID               func() string    // default uuid.NewString
}

// Metadata is the descriptive metadata harvested from a page.
type Metadata struct {
	Title       string
	Creator     string
	Date        string
	Identifier  string
	Publisher   string
	Format      string
	Description string
	Subjects    []string
	Link        string
	IsPartOf    string
}

var (
	metaSel      = cascadia.MustCompile("meta")
	jsonLDSel    = cascadia.MustCompile(`script[type="application/ld+json"]`)
	titleSel     = cascadia.MustCompile("title")
	h1Sel        = cascadia.MustCompile("h1")
	canonicalSel = cascadia.MustCompile(`link[rel="canonical"]`)

	trailingPeriod = regexp.MustCompile(`\s*\.$`)
)

// page wraps a parsed document with the lookups used during harvesting.
type page struct {
	doc   *html.Node
	metas []*html.Node
	ld    []map[string]any
}

func parsePage(r io.Reader) (*page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, eris.Wrap(err, "marc: parse html")
	}
	p := &page{doc: doc, metas: metaSel.MatchAll(doc)}
	for _, s := range jsonLDSel.MatchAll(doc) {
		p.ld = append(p.ld, decodeJSONLD(xhtml.TextContent(s))...)
	}
	return p, nil
}

// decodeJSONLD returns the objects in a JSON-LD block. Malformed blocks are
// ignored.
func decodeJSONLD(raw string) []map[string]any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil
	}
	var out []map[string]any
	switch t := v.(type) {
	case map[string]any:
		out = append(out, t)
	case []any:
		for _, item := range t {
			if obj, ok := item.(map[string]any); ok {
				out = append(out, obj)
			}
		}
	}
	return out
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

var metaKeys = []string{"name", "property", "itemprop"}

// meta returns the content of the first meta tag named by any of names,
// matched case-insensitively against name, property and itemprop in turn.
func (p *page) meta(names ...string) string {
	for _, name := range names {
		for _, key := range metaKeys {
			for _, m := range p.metas {
				v, ok := attr(m, key)
				if !ok || !strings.EqualFold(v, name) {
					continue
				}
				if content, _ := attr(m, "content"); strings.TrimSpace(content) != "" {
					return strings.TrimSpace(content)
				}
			}
		}
	}
	return ""
}

// metaAll returns the non-empty content of every meta tag named name.
func (p *page) metaAll(name string) []string {
	var out []string
	for _, m := range p.metas {
		matched := false
		for _, key := range metaKeys {
			if v, ok := attr(m, key); ok && strings.EqualFold(v, name) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		if content, _ := attr(m, "content"); strings.TrimSpace(content) != "" {
			out = append(out, strings.TrimSpace(content))
		}
	}
	return out
}

// jsonLDValue returns the first present value for any of keys across the
// page's JSON-LD objects.
func (p *page) jsonLDValue(keys ...string) any {
	for _, obj := range p.ld {
		for _, k := range keys {
			if v, ok := obj[k]; ok && truthy(v) {
				return v
			}
		}
	}
	return nil
}

// jsonLD is jsonLDValue flattened to a string. Objects contribute their
// "name", arrays their first usable element.
func (p *page) jsonLD(keys ...string) string {
	for _, obj := range p.ld {
		for _, k := range keys {
			if s := jsonString(obj[k]); s != "" {
				return s
			}
		}
	}
	return ""
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	}
	return true
}

func jsonString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		return jsonString(t["name"])
	case []any:
		for _, item := range t {
			if s := jsonString(item); s != "" {
				return s
			}
		}
	}
	return ""
}

// element returns the trimmed text of the first element with the given tag
// name, as used by EAD-style finding aids.
func (p *page) element(tag string) string {
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(p.doc)
	return strings.TrimSpace(xhtml.TextContent(found))
}

func (p *page) first(sel cascadia.Selector) string {
	return strings.TrimSpace(xhtml.TextContent(sel.MatchFirst(p.doc)))
}

func firstNonEmpty(values ...func() string) string {
	for _, v := range values {
		if s := v(); s != "" {
			return s
		}
	}
	return ""
}

// Harvest collects descriptive metadata from an HTML page, preferring Dublin
// Core meta tags, then OpenGraph, JSON-LD, EAD elements and finally plain
// HTML headings.
func Harvest(r io.Reader) (Metadata, error) {
	p, err := parsePage(r)
	if err != nil {
		return Metadata{}, err
	}

	var md Metadata
	md.Title = firstNonEmpty(
		func() string { return p.meta("dc.title", "title") },
		func() string { return p.meta("og:title") },
		func() string { return p.jsonLD("name", "headline", "title") },
		func() string { return p.element("unittitle") },
		func() string { return p.first(titleSel) },
		func() string { return p.first(h1Sel) },
	)
	md.Creator = firstNonEmpty(
		func() string { return p.meta("dc.creator", "author") },
		func() string { return p.jsonLD("author", "creator", "publisher") },
		func() string { return p.element("origination") },
	)
	md.Date = firstNonEmpty(
		func() string { return p.meta("dc.date", "date", "dcterms.date") },
		func() string { return p.jsonLD("datePublished", "dateCreated") },
		func() string { return p.element("unitdate") },
	)
	md.Identifier = firstNonEmpty(
		func() string { return p.meta("dc.identifier", "identifier") },
		func() string { return p.jsonLD("identifier", "sameAs") },
		func() string { return p.element("unitid") },
		func() string { return p.meta("og:url") },
		func() string {
			if link := canonicalSel.MatchFirst(p.doc); link != nil {
				href, _ := attr(link, "href")
				return strings.TrimSpace(href)
			}
			return ""
		},
	)
	md.Publisher = firstNonEmpty(
		func() string { return p.meta("dc.publisher", "publisher") },
		func() string { return p.jsonLD("publisher") },
	)
	md.Format = firstNonEmpty(
		func() string { return p.meta("dc.format", "format") },
		func() string { return p.element("physdesc") },
	)
	md.Description = firstNonEmpty(
		func() string { return p.meta("dc.description", "description") },
		func() string { return p.jsonLD("description", "abstract") },
		func() string { return p.element("abstract") },
		func() string { return p.element("scopecontent") },
		func() string { return p.meta("og:description") },
	)
	md.Link = firstNonEmpty(
		func() string { return p.meta("dc.source", "og:url", "url") },
		func() string { return p.jsonLD("url", "sameAs") },
	)
	md.IsPartOf = firstNonEmpty(
		func() string { return p.jsonLD("isPartOf", "partOf") },
		func() string { return p.element("ispartof") },
	)
	md.Subjects = p.subjects()
	return md, nil
}

func (p *page) subjects() []string {
	raw := append(p.metaAll("dc.subject"), p.metaAll("subject")...)
	switch kw := p.jsonLDValue("keywords", "about").(type) {
	case string:
		raw = append(raw, strings.Split(kw, ",")...)
	case []any:
		for _, item := range kw {
			if s := jsonString(item); s != "" {
				raw = append(raw, s)
			}
		}
	}

	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(trailingPeriod.ReplaceAllString(s, ""))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// FromHTML harvests metadata from an HTML page and builds its record.
func FromHTML(r io.Reader, opts Options) (Record, error) {
	md, err := Harvest(r)
	if err != nil {
		return Record{}, err
	}
	return md.Record(opts), nil
}

// Record builds a MARC record from harvested metadata. When no identifier
// was found a control number is generated from the prefix and a fresh id.
func (md Metadata) Record(opts Options) Record {
	leader := opts.Leader
	if leader == "" {
		leader = DefaultLeader
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	control := md.Identifier
	if control == "" {
		control = opts.ControlNumberPrefix + newID()
	}

	rec := Record{Leader: leader}
	rec.AddControl("001", control)
	if md.Publisher != "" {
		rec.AddControl("003", md.Publisher)
	}
	rec.AddControl("005", now().UTC().Format("20060102150405")+".0")

	if md.Creator != "" {
		ind1 := "0"
		if strings.Contains(md.Creator, ",") {
			ind1 = "1"
		}
		rec.AddData("100", ind1, " ", "a", md.Creator)
	}
	if md.Title != "" {
		head, rest := splitTitle(md.Title)
		rec.AddData("245", "0", "0", "a", head, "b", rest)
	}
	if md.Publisher != "" || md.Date != "" {
		rec.AddData("264", " ", "1", "b", md.Publisher, "c", md.Date)
	}
	if md.Format != "" {
		rec.AddData("300", " ", " ", "a", md.Format)
	}
	if md.Description != "" {
		rec.AddData("520", "3", " ", "a", md.Description)
	}
	for _, s := range md.Subjects {
		rec.AddData("650", " ", "0", "a", s)
	}
	if md.IsPartOf != "" {
		rec.AddData("773", "0", " ", "t", md.IsPartOf, "w", md.Identifier)
	}
	if md.Link != "" {
		rec.AddData("856", "4", "0", "u", md.Link, "z", md.Title)
	}
	rec.AddData("035", " ", " ", "a", control)
	return rec
}

// splitTitle separates a subtitle introduced by ":" or, failing that, " - ".
func splitTitle(title string) (string, string) {
	sep := ""
	switch {
	case strings.Contains(title, ":"):
		sep = ":"
	case strings.Contains(title, " - "):
		sep = " - "
	default:
		return title, ""
	}
	i := strings.Index(title, sep)
	return strings.TrimSpace(title[:i]), strings.TrimSpace(title[i+len(sep):])
}
