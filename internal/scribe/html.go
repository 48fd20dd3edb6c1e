package scribe

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLElement is an hCard property element.
type HTMLElement struct {
	Node    *html.Node
	BaseURL *url.URL
}

// NewHTMLElement wraps n. base may be nil.
func NewHTMLElement(n *html.Node, base *url.URL) *HTMLElement {
	return &HTMLElement{Node: n, BaseURL: base}
}

// TagName returns the lower-case element name.
func (e *HTMLElement) TagName() string {
	return strings.ToLower(e.Node.Data)
}

// Attr returns the value of attribute key, or "".
func (e *HTMLElement) Attr(key string) string {
	return attr(e.Node, key)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

// Classes returns the element's class names.
func (e *HTMLElement) Classes() []string {
	return classes(e.Node)
}

func classes(n *html.Node) []string {
	return strings.Fields(attr(n, "class"))
}

// HasClass reports whether n carries class (case-insensitive).
func HasClass(n *html.Node, class string) bool {
	for _, c := range classes(n) {
		if strings.EqualFold(c, class) {
			return true
		}
	}
	return false
}

// AllWithClass returns the descendants carrying class in document order.
func (e *HTMLElement) AllWithClass(class string) []*HTMLElement {
	var out []*HTMLElement
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if HasClass(c, class) {
				out = append(out, &HTMLElement{Node: c, BaseURL: e.BaseURL})
			}
			walk(c)
		}
	}
	walk(e.Node)
	return out
}

// FirstWithClass returns the first descendant carrying class, or nil.
func (e *HTMLElement) FirstWithClass(class string) *HTMLElement {
	if all := e.AllWithClass(class); len(all) > 0 {
		return all[0]
	}
	return nil
}

// Value returns the property value following the microformats value-class
// pattern: "value" descendants win, then tag-specific attributes, then the
// visible text.
func (e *HTMLElement) Value() string {
	if values := e.AllWithClass("value"); len(values) > 0 {
		var b strings.Builder
		for _, v := range values {
			b.WriteString(v.Value())
		}
		return b.String()
	}

	switch e.TagName() {
	case "abbr":
		if title := e.Attr("title"); title != "" {
			return title
		}
	case "data", "input":
		if v := e.Attr("value"); v != "" {
			return v
		}
	case "img", "area":
		if alt := e.Attr("alt"); alt != "" {
			return alt
		}
	case "time":
		if dt := e.Attr("datetime"); dt != "" {
			return dt
		}
	}
	return e.Text()
}

// Text returns the visible text with runs of whitespace collapsed, <br> as
// a newline, and "type" sub-elements left out.
func (e *HTMLElement) Text() string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				b.WriteString(c.Data)
			case html.ElementNode:
				if c.DataAtom == atom.Br {
					b.WriteString("\n")
					continue
				}
				if c.DataAtom == atom.Script || c.DataAtom == atom.Style || HasClass(c, "type") {
					continue
				}
				walk(c)
			}
		}
	}
	walk(e.Node)

	lines := strings.Split(b.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// AbsURL resolves the attribute key against the base URL.
func (e *HTMLElement) AbsURL(key string) string {
	raw := strings.TrimSpace(e.Attr(key))
	if raw == "" || e.BaseURL == nil {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return e.BaseURL.ResolveReference(ref).String()
}

// Types returns the text of "type" sub-elements, lower-cased.
func (e *HTMLElement) Types() []string {
	var types []string
	for _, t := range e.AllWithClass("type") {
		if v := strings.ToLower(strings.TrimSpace(t.Value())); v != "" {
			types = append(types, v)
		}
	}
	return types
}

// NewHTMLNode creates an element node with the given tag and class.
func NewHTMLNode(tag, class string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	if class != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: class})
	}
	return n
}

// AppendText appends a text child, turning newlines into <br> elements.
func AppendText(n *html.Node, text string) {
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			n.AppendChild(NewHTMLNode("br", ""))
		}
		if line != "" {
			n.AppendChild(&html.Node{Type: html.TextNode, Data: line})
		}
	}
}

// AppendChildWithText appends a <tag class=class>text</tag> child.
func AppendChildWithText(n *html.Node, tag, class, text string) *html.Node {
	child := NewHTMLNode(tag, class)
	AppendText(child, text)
	n.AppendChild(child)
	return child
}

// SetAttr sets an attribute on n.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
