package scribe

import (
	"strings"

	"card-codec/internal/common/xmltree"
	"card-codec/internal/vcard"
)

const ns = vcard.XCardNamespace

// xmlValue returns the text of the first child named after one of types, or
// of the first value child when no type is given.
func xmlValue(el *xmltree.Element, types ...vcard.DataType) (string, vcard.DataType, bool) {
	for _, c := range el.Children {
		if c.Space != ns || c.Local == "parameters" {
			continue
		}
		if len(types) == 0 {
			return c.Text, vcard.ParseDataType(c.Local), true
		}
		for _, t := range types {
			if c.Local == string(t) {
				return c.Text, t, true
			}
		}
	}
	return "", vcard.DataTypeNone, false
}

// xmlValues returns the texts of every child named local.
func xmlValues(el *xmltree.Element, local string) []string {
	var out []string
	for _, c := range el.Find(ns, local) {
		out = append(out, c.Text)
	}
	return out
}

// addXMLValue appends <dataType>text</dataType>.
func addXMLValue(el *xmltree.Element, dataType vcard.DataType, text string) {
	local := string(dataType)
	if local == "" {
		local = "unknown"
	}
	el.AddText(local, text)
}

// xmlLocalName is the xCard element name of a property.
func xmlLocalName(name string) string {
	return strings.ToLower(name)
}
