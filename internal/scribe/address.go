package scribe

import (
	"card-codec/internal/common/xmltree"
	"card-codec/internal/vcard"
	"golang.org/x/net/html"
)

// addressScribe serves ADR. The delivery label travels as the LABEL
// parameter in 4.0 and as a separate LABEL property before that.
type addressScribe struct{}

func NewAddressScribe() Scribe { return addressScribe{} }

func (addressScribe) Name() string              { return vcard.PropAddress }
func (addressScribe) Versions() []vcard.Version { return allVersions }
func (addressScribe) NewValue() vcard.Value     { return &vcard.Address{} }
func (addressScribe) HTMLClass() string         { return "adr" }

func (addressScribe) DefaultDataType(vcard.Version) vcard.DataType {
	return vcard.DataTypeText
}

func (addressScribe) PrepareParams(prop *vcard.Property, params *vcard.Params, ctx *WriteContext) {
	applyPref(prop, params, ctx)
	adr, err := cast[*vcard.Address](prop.Value)
	if err != nil {
		return
	}
	if ctx.Version == vcard.V40 && adr.Label != "" {
		params.SetLabel(adr.Label)
		return
	}
	params.RemoveAll(vcard.ParamLabel)
}

func addressFrom(c [][]string, params *vcard.Params) *vcard.Address {
	adr := &vcard.Address{}
	adr.SetComponents(c)
	if label := params.Label(); label != "" {
		adr.Label = label
		params.RemoveAll(vcard.ParamLabel)
	}
	return adr
}

var addressXMLElements = []string{"pobox", "ext", "street", "locality", "region", "code", "country"}

func (addressScribe) WriteText(value vcard.Value, ctx *WriteContext) (string, error) {
	adr, err := cast[*vcard.Address](value)
	if err != nil {
		return "", err
	}
	return vcard.JoinStructured(adr.Components(), ctx.Version), nil
}

func (addressScribe) ParseText(raw string, dataType vcard.DataType, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	return addressFrom(vcard.SplitStructured(raw), params), nil
}

func (addressScribe) WriteXML(value vcard.Value, el *xmltree.Element, ctx *WriteContext) error {
	adr, err := cast[*vcard.Address](value)
	if err != nil {
		return err
	}
	writeXMLComponents(el, addressXMLElements, adr.Components())
	return nil
}

func (addressScribe) ParseXML(el *xmltree.Element, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	return addressFrom(readXMLComponents(el, addressXMLElements), params), nil
}

func (addressScribe) WriteJSON(value vcard.Value, ctx *WriteContext) (JSONValue, error) {
	adr, err := cast[*vcard.Address](value)
	if err != nil {
		return JSONValue{}, err
	}
	return Structured(adr.Components()), nil
}

func (addressScribe) ParseJSON(value JSONValue, dataType vcard.DataType, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	return addressFrom(value.AsStructured(), params), nil
}

var addressHTMLClasses = []string{
	"post-office-box", "extended-address", "street-address", "locality", "region", "postal-code", "country-name",
}

func (addressScribe) ParseHTML(el *HTMLElement, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	return addressFrom(readHTMLComponents(el, addressHTMLClasses), params), nil
}

func (addressScribe) WriteHTML(value vcard.Value, ctx *WriteContext) (*html.Node, error) {
	adr, err := cast[*vcard.Address](value)
	if err != nil {
		return nil, err
	}
	return writeHTMLComponents("adr", addressHTMLClasses, adr.Components()), nil
}
