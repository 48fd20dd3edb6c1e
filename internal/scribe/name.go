package scribe

import (
	"card-codec/internal/common/xmltree"
	"card-codec/internal/vcard"
	"golang.org/x/net/html"
)

// structuredNameScribe serves N: family;given;additional;prefixes;suffixes.
type structuredNameScribe struct{}

func NewStructuredNameScribe() Scribe { return structuredNameScribe{} }

func (structuredNameScribe) Name() string              { return vcard.PropN }
func (structuredNameScribe) Versions() []vcard.Version { return allVersions }
func (structuredNameScribe) NewValue() vcard.Value     { return &vcard.StructuredName{} }
func (structuredNameScribe) HTMLClass() string         { return "n" }

func (structuredNameScribe) DefaultDataType(vcard.Version) vcard.DataType {
	return vcard.DataTypeText
}

func single(s string) []string {
	if s == "" {
		return []string{}
	}
	return []string{s}
}

func nameComponents(n *vcard.StructuredName) [][]string {
	return [][]string{single(n.Family), single(n.Given), n.Additional, n.Prefixes, n.Suffixes}
}

func nameFromComponents(c [][]string) *vcard.StructuredName {
	return &vcard.StructuredName{
		Family:     vcard.FirstOf(c, 0),
		Given:      vcard.FirstOf(c, 1),
		Additional: nonEmpty(vcard.Component(c, 2)),
		Prefixes:   nonEmpty(vcard.Component(c, 3)),
		Suffixes:   nonEmpty(vcard.Component(c, 4)),
	}
}

func nonEmpty(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	return items
}

var nameXMLElements = []string{"surname", "given", "additional", "prefix", "suffix"}

func (structuredNameScribe) WriteText(value vcard.Value, ctx *WriteContext) (string, error) {
	n, err := cast[*vcard.StructuredName](value)
	if err != nil {
		return "", err
	}
	return vcard.JoinStructured(nameComponents(n), ctx.Version), nil
}

func (structuredNameScribe) ParseText(raw string, dataType vcard.DataType, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	return nameFromComponents(vcard.SplitStructured(raw)), nil
}

func (structuredNameScribe) WriteXML(value vcard.Value, el *xmltree.Element, ctx *WriteContext) error {
	n, err := cast[*vcard.StructuredName](value)
	if err != nil {
		return err
	}
	writeXMLComponents(el, nameXMLElements, nameComponents(n))
	return nil
}

func (structuredNameScribe) ParseXML(el *xmltree.Element, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	return nameFromComponents(readXMLComponents(el, nameXMLElements)), nil
}

func (structuredNameScribe) WriteJSON(value vcard.Value, ctx *WriteContext) (JSONValue, error) {
	n, err := cast[*vcard.StructuredName](value)
	if err != nil {
		return JSONValue{}, err
	}
	return Structured(nameComponents(n)), nil
}

func (structuredNameScribe) ParseJSON(value JSONValue, dataType vcard.DataType, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	return nameFromComponents(value.AsStructured()), nil
}

var nameHTMLClasses = []string{"family-name", "given-name", "additional-name", "honorific-prefix", "honorific-suffix"}

func (structuredNameScribe) ParseHTML(el *HTMLElement, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	return nameFromComponents(readHTMLComponents(el, nameHTMLClasses)), nil
}

func (structuredNameScribe) WriteHTML(value vcard.Value, ctx *WriteContext) (*html.Node, error) {
	n, err := cast[*vcard.StructuredName](value)
	if err != nil {
		return nil, err
	}
	return writeHTMLComponents("n", nameHTMLClasses, nameComponents(n)), nil
}

// writeXMLComponents appends one element per item; empty components get one
// empty element so positions survive.
func writeXMLComponents(el *xmltree.Element, names []string, components [][]string) {
	for i, name := range names {
		items := vcard.Component(components, i)
		if len(items) == 0 {
			el.Add(name)
			continue
		}
		for _, item := range items {
			el.AddText(name, item)
		}
	}
}

func readXMLComponents(el *xmltree.Element, names []string) [][]string {
	components := make([][]string, len(names))
	for i, name := range names {
		items := []string{}
		for _, v := range xmlValues(el, name) {
			if v != "" {
				items = append(items, v)
			}
		}
		components[i] = items
	}
	return components
}

func readHTMLComponents(el *HTMLElement, classes []string) [][]string {
	components := make([][]string, len(classes))
	for i, class := range classes {
		items := []string{}
		for _, sub := range el.AllWithClass(class) {
			if v := sub.Value(); v != "" {
				items = append(items, v)
			}
		}
		components[i] = items
	}
	return components
}

func writeHTMLComponents(class string, classes []string, components [][]string) *html.Node {
	n := NewHTMLNode("span", class)
	first := true
	for i, sub := range classes {
		for _, item := range vcard.Component(components, i) {
			if !first {
				AppendText(n, " ")
			}
			first = false
			AppendChildWithText(n, "span", sub, item)
		}
	}
	return n
}
