// Package xmltree is a small ordered element tree over encoding/xml, keeping
// child order and namespaces so documents can be read and rewritten without
// reshuffling.
package xmltree

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// Element is one XML element. Text holds the concatenated character data
// directly inside the element.
type Element struct {
	Space    string
	Local    string
	Attrs    []xml.Attr
	Children []*Element
	Text     string
}

// New creates an element in namespace space.
func New(space, local string) *Element {
	return &Element{Space: space, Local: local}
}

// Parse reads the first element of r and everything below it.
func Parse(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return parseElement(dec, start)
		}
	}
}

// ParseString parses an XML document held in s.
func ParseString(s string) (*Element, error) {
	return Parse(strings.NewReader(s))
}

func parseElement(dec *xml.Decoder, start xml.StartElement) (*Element, error) {
	el := &Element{Space: start.Name.Space, Local: start.Name.Local}
	for _, a := range start.Attr {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		el.Attrs = append(el.Attrs, a)
	}

	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := parseElement(dec, t)
			if err != nil {
				return nil, err
			}
			el.Children = append(el.Children, child)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			el.Text = text.String()
			if len(el.Children) > 0 && strings.TrimSpace(el.Text) == "" {
				el.Text = ""
			}
			return el, nil
		}
	}
}

// Add appends a new child in the parent's namespace and returns it.
func (e *Element) Add(local string) *Element {
	child := New(e.Space, local)
	e.Children = append(e.Children, child)
	return child
}

// AddText appends a child holding text.
func (e *Element) AddText(local, text string) *Element {
	child := e.Add(local)
	child.Text = text
	return child
}

// Append appends existing elements.
func (e *Element) Append(children ...*Element) {
	e.Children = append(e.Children, children...)
}

// Attr returns the value of the attribute with the given local name.
func (e *Element) Attr(local string) string {
	for _, a := range e.Attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// SetAttr sets an attribute without namespace.
func (e *Element) SetAttr(local, value string) {
	for i, a := range e.Attrs {
		if a.Name.Local == local {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, xml.Attr{Name: xml.Name{Local: local}, Value: value})
}

// Find returns the children with the given local name in namespace space.
func (e *Element) Find(space, local string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Local == local && c.Space == space {
			out = append(out, c)
		}
	}
	return out
}

// First returns the first child with the given local name in namespace
// space, or nil.
func (e *Element) First(space, local string) *Element {
	for _, c := range e.Children {
		if c.Local == local && c.Space == space {
			return c
		}
	}
	return nil
}

// ChildText returns the text of the first matching child, or "".
func (e *Element) ChildText(space, local string) string {
	if c := e.First(space, local); c != nil {
		return c.Text
	}
	return ""
}

// Encode writes the element. The root declares its namespace as the default
// namespace; children in the same namespace inherit it.
func (e *Element) Encode(w io.Writer, indent bool) error {
	enc := xml.NewEncoder(w)
	if indent {
		enc.Indent("", "  ")
	}
	if err := e.encode(enc, ""); err != nil {
		return err
	}
	return enc.Flush()
}

func (e *Element) encode(enc *xml.Encoder, parentSpace string) error {
	start := xml.StartElement{Name: xml.Name{Local: e.Local}}
	if e.Space != parentSpace {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "xmlns"}, Value: e.Space})
	}
	start.Attr = append(start.Attr, e.Attrs...)
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if e.Text != "" {
		if err := enc.EncodeToken(xml.CharData(e.Text)); err != nil {
			return err
		}
	}
	for _, c := range e.Children {
		if err := c.encode(enc, e.Space); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

// String serializes the element without indentation.
func (e *Element) String() string {
	var buf bytes.Buffer
	if err := e.Encode(&buf, false); err != nil {
		return ""
	}
	return buf.String()
}
