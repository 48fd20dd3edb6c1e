// Package scribe converts property values to and from every wire encoding.
//
// Each property type is served by one Scribe. The core interface covers the
// vCard text format; xCard, jCard and hCard support, parameter derivation and
// validation are optional capabilities discovered by type assertion. An Index
// maps property names, value types, xCard element names and hCard class names
// to scribes and turns scribe results into an explicit Outcome.
package scribe

import (
	"card-codec/internal/common/xmltree"
	"card-codec/internal/vcard"
	"golang.org/x/net/html"
)

// Scribe is the text-format contract every property type implements.
type Scribe interface {
	// Name is the upper-case property name, e.g. "TEL".
	Name() string
	// Versions lists the vCard versions the property exists in.
	Versions() []vcard.Version
	// NewValue allocates an empty value of the scribe's type.
	NewValue() vcard.Value
	// DefaultDataType is the data type assumed when no VALUE is given.
	DefaultDataType(v vcard.Version) vcard.DataType
	// WriteText renders the value part of a vCard text line.
	WriteText(value vcard.Value, ctx *WriteContext) (string, error)
	// ParseText is the inverse of WriteText.
	ParseText(raw string, dataType vcard.DataType, params *vcard.Params, ctx *ParseContext) (vcard.Value, error)
}

// DataTyper is implemented by scribes whose data type depends on the value.
type DataTyper interface {
	DataType(value vcard.Value, v vcard.Version) vcard.DataType
}

// ParamPreparer rewrites the transient parameter copy of one property before
// it is written.
type ParamPreparer interface {
	PrepareParams(prop *vcard.Property, params *vcard.Params, ctx *WriteContext)
}

// XMLScribe adds xCard support. Scribes without it are written as opaque XML
// properties by the xCard writer.
type XMLScribe interface {
	WriteXML(value vcard.Value, el *xmltree.Element, ctx *WriteContext) error
	ParseXML(el *xmltree.Element, params *vcard.Params, ctx *ParseContext) (vcard.Value, error)
}

// JSONScribe adds jCard support. Scribes without it read and write the
// first scalar as vCard text.
type JSONScribe interface {
	WriteJSON(value vcard.Value, ctx *WriteContext) (JSONValue, error)
	ParseJSON(value JSONValue, dataType vcard.DataType, params *vcard.Params, ctx *ParseContext) (vcard.Value, error)
}

// HTMLScribe adds hCard support. Scribes without it read the element's text
// as vCard 3.0 text.
type HTMLScribe interface {
	HTMLClass() string
	ParseHTML(el *HTMLElement, params *vcard.Params, ctx *ParseContext) (vcard.Value, error)
	WriteHTML(value vcard.Value, ctx *WriteContext) (*html.Node, error)
}

// Validating adds value-level checks. Validate never fails; it only reports.
type Validating interface {
	Validate(value vcard.Value, v vcard.Version, params *vcard.Params, record *vcard.Record) []vcard.Warning
}

// WriteContext carries the state of one property write.
type WriteContext struct {
	Version  vcard.Version
	Record   *vcard.Record
	Warnings *vcard.Warnings
	Name     string
}

// Warn records a warning against the property being written.
func (c *WriteContext) Warn(code int, args ...interface{}) {
	if c == nil || c.Warnings == nil {
		return
	}
	w := vcard.NewWarning(code, args...)
	w.Property = c.Name
	c.Warnings.Add(w)
}

// ParseContext carries the state of one property parse.
type ParseContext struct {
	Version  vcard.Version
	Warnings *vcard.Warnings
	Line     int
	Name     string
}

// Warn records a warning against the property being parsed.
func (c *ParseContext) Warn(code int, args ...interface{}) {
	if c == nil || c.Warnings == nil {
		return
	}
	w := vcard.NewWarning(code, args...)
	w.Property = c.Name
	w.Line = c.Line
	c.Warnings.Add(w)
}

// EmbeddedRecord is returned in place of an error when a property value is a
// whole record. It is a control signal, not a failure: the Index converts it
// into an Outcome and format drivers act on it by recursing.
//
// On parse, Text holds the unescaped embedded vCard (3.0 style), or is empty
// when the nested record follows in the stream (2.1 style); Inject attaches
// the parsed child. On write, Record holds the child to serialize.
type EmbeddedRecord struct {
	Text   string
	Inject func(*vcard.Record)
	Record *vcard.Record
}

func (e *EmbeddedRecord) Error() string {
	return "property value is an embedded record"
}
