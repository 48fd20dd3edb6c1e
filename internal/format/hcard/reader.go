// Package hcard reads and writes hCard, the microformat that marks up
// vCard 3.0 data in HTML. Records are the elements carrying the "vcard"
// class; properties are descendants whose class names a registered scribe.
package hcard

import (
	"io"
	"net/url"
	"strings"

	"card-codec/internal/common/errors"
	"card-codec/internal/common/logging"
	"card-codec/internal/scribe"
	"card-codec/internal/vcard"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MediaType is the media type hCard documents are served as.
const MediaType = "text/html"

const (
	classRoot = "vcard"
	classType = "type"
)

// DefaultMaxDepth bounds how deeply embedded AGENT hCards are read.
const DefaultMaxDepth = 8

// ReaderConfig configures Read.
type ReaderConfig struct {
	Index  *scribe.Index
	Logger logging.Logger
	// BaseURL resolves relative links (photos, URLs). A <base href> in the
	// document is used when it is empty.
	BaseURL  string
	MaxDepth int
}

func (c *ReaderConfig) normalize() {
	if c.Index == nil {
		c.Index = scribe.NewDefaultIndex()
	}
	c.Logger = logging.OrNop(c.Logger)
	if c.MaxDepth <= 0 {
		c.MaxDepth = DefaultMaxDepth
	}
}

type reader struct {
	cfg      ReaderConfig
	base     *url.URL
	log      logging.Logger
	warnings vcard.Warnings
}

// Read parses every top-level hCard in the HTML document r.
func Read(r io.Reader, cfg ReaderConfig) ([]*vcard.Record, vcard.Warnings, error) {
	cfg.normalize()
	doc, err := html.Parse(r)
	if err != nil {
		return nil, nil, errors.SyntaxError("HTML document cannot be parsed: "+err.Error(), 0)
	}

	rd := &reader{cfg: cfg, log: cfg.Logger.WithFields(logging.String("format", "hcard"))}
	base := cfg.BaseURL
	if base == "" {
		base = documentBase(doc)
	}
	if base != "" {
		u, err := url.Parse(base)
		if err != nil {
			return nil, nil, errors.ConfigError("invalid hCard base URL " + base)
		}
		rd.base = u
	}

	var records []*vcard.Record
	for _, root := range roots(doc) {
		records = append(records, rd.readRecord(root, 0))
	}
	return records, rd.warnings, nil
}

// Parse reads the hCards of the HTML held in s.
func Parse(s string, cfg ReaderConfig) ([]*vcard.Record, vcard.Warnings, error) {
	return Read(strings.NewReader(s), cfg)
}

func documentBase(doc *html.Node) string {
	var href string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Base {
			for _, a := range n.Attr {
				if a.Key == "href" {
					href = a.Val
					return true
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(doc)
	return href
}

// roots returns the "vcard" elements not nested in another one.
func roots(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if scribe.HasClass(c, classRoot) {
			out = append(out, c)
			continue
		}
		out = append(out, roots(c)...)
	}
	return out
}

func (rd *reader) readRecord(root *html.Node, depth int) *vcard.Record {
	rec := vcard.NewRecord(vcard.V30)
	rd.walk(rec, root, depth)
	scribe.AttachLabels(rec)
	return rec
}

// walk visits the descendants of n in document order. A nested "vcard"
// element belongs to the property that embeds it and is not descended into.
func (rd *reader) walk(rec *vcard.Record, n *html.Node, depth int) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		embedded := false
		for _, class := range strings.Fields(strings.ToLower(attr(c, "class"))) {
			if class == classRoot || class == classType {
				continue
			}
			s, ok := rd.cfg.Index.ForHTMLClass(class)
			if !ok {
				continue
			}
			if rd.property(rec, s, c, depth) {
				embedded = true
			}
		}
		if embedded || scribe.HasClass(c, classRoot) {
			continue
		}
		rd.walk(rec, c, depth)
	}
}

// property parses one property element and reports whether it embedded a
// record.
func (rd *reader) property(rec *vcard.Record, s scribe.Scribe, n *html.Node, depth int) bool {
	ctx := &scribe.ParseContext{Version: vcard.V30, Warnings: &rd.warnings, Name: s.Name()}
	out := rd.cfg.Index.ParseHTML(s, scribe.NewHTMLElement(n, rd.base), ctx)
	switch out.Kind {
	case scribe.OutcomeValue, scribe.OutcomeCannotParse:
		rec.AddProperty(out.Property)
	case scribe.OutcomeSkip:
		rd.log.Debug("property skipped", logging.String("property", s.Name()), logging.String("reason", out.Reason))
	case scribe.OutcomeEmbedded:
		if depth+1 > rd.cfg.MaxDepth {
			ctx.Warn(vcard.WarnTooDeep, rd.cfg.MaxDepth)
			return true
		}
		out.Embedded.Inject(rd.readRecord(n, depth+1))
		rec.AddProperty(out.Property)
		return true
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
