package scribe

import (
	"strings"

	"card-codec/internal/common/errors"
	"card-codec/internal/vcard"
	"golang.org/x/net/html"
)

// agentScribe serves AGENT, whose value is a URL or a whole record. Embedded
// records never pass through the scribe as text: parsing returns an
// *EmbeddedRecord for the driver to resolve, and so does writing.
type agentScribe struct{}

func NewAgentScribe() Scribe { return agentScribe{} }

func (agentScribe) Name() string                                 { return vcard.PropAgent }
func (agentScribe) Versions() []vcard.Version                    { return v21And30 }
func (agentScribe) NewValue() vcard.Value                        { return &vcard.Agent{} }
func (agentScribe) DefaultDataType(vcard.Version) vcard.DataType { return vcard.DataTypeNone }
func (agentScribe) HTMLClass() string                            { return "agent" }

func (agentScribe) DataType(value vcard.Value, v vcard.Version) vcard.DataType {
	if a, ok := value.(*vcard.Agent); ok && a.URL() != "" {
		return uriOrURL(v)
	}
	return vcard.DataTypeNone
}

func (agentScribe) WriteText(value vcard.Value, ctx *WriteContext) (string, error) {
	a, err := cast[*vcard.Agent](value)
	if err != nil {
		return "", err
	}
	if a.URL() != "" {
		return a.URL(), nil
	}
	if a.Record() != nil {
		return "", &EmbeddedRecord{Record: a.Record()}
	}
	return "", errors.SkipError("AGENT has neither a URL nor an embedded record")
}

// ParseText distinguishes three forms: a URL, an empty value followed by a
// nested record in the stream (2.1), and an escaped record in the value
// itself (3.0).
func (agentScribe) ParseText(raw string, dataType vcard.DataType, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	a := &vcard.Agent{}
	if isURIType(dataType) {
		a.SetURL(strings.TrimSpace(raw))
		return a, nil
	}

	text := strings.TrimSpace(vcard.UnescapeText(raw))
	switch {
	case text == "":
		return a, &EmbeddedRecord{Inject: a.SetRecord}
	case len(text) >= 11 && strings.EqualFold(text[:11], "BEGIN:VCARD"):
		return a, &EmbeddedRecord{Text: text, Inject: a.SetRecord}
	case isURI(text):
		a.SetURL(text)
		return a, nil
	}
	return nil, errors.CannotParseError(vcard.Message(vcard.WarnBadEmbedded, "value is neither a URL nor a vCard"))
}

// ParseHTML reads a link, or signals an embedded hCard that the driver
// parses from the element itself.
func (agentScribe) ParseHTML(el *HTMLElement, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	a := &vcard.Agent{}
	if HasClass(el.Node, "vcard") {
		return a, &EmbeddedRecord{Inject: a.SetRecord}
	}
	if href := el.AbsURL("href"); href != "" {
		a.SetURL(href)
		return a, nil
	}
	if text := strings.TrimSpace(el.Value()); text != "" {
		a.SetURL(text)
		return a, nil
	}
	return nil, errors.SkipError(vcard.Message(vcard.WarnEmptyValue))
}

func (agentScribe) WriteHTML(value vcard.Value, ctx *WriteContext) (*html.Node, error) {
	a, err := cast[*vcard.Agent](value)
	if err != nil {
		return nil, err
	}
	if a.URL() == "" {
		return nil, errors.UnsupportedError("embedded AGENT records in hCard")
	}
	n := NewHTMLNode("a", "agent")
	SetAttr(n, "href", a.URL())
	AppendText(n, a.URL())
	return n, nil
}

func (agentScribe) Validate(value vcard.Value, v vcard.Version, params *vcard.Params, record *vcard.Record) []vcard.Warning {
	a, err := cast[*vcard.Agent](value)
	if err != nil {
		return nil
	}
	if a.URL() == "" && a.Record() == nil {
		return []vcard.Warning{warn(vcard.WarnEmptyValue)}
	}
	return nil
}
