package scribe

import (
	"card-codec/internal/common/xmltree"
	"card-codec/internal/vcard"
)

// rawScribe keeps the value of an unregistered or unparseable property
// verbatim, with the data type it was read with.
type rawScribe struct {
	name string
}

func (s *rawScribe) Name() string                                 { return s.name }
func (s *rawScribe) Versions() []vcard.Version                    { return allVersions }
func (s *rawScribe) NewValue() vcard.Value                        { return &vcard.Raw{Name: s.name} }
func (s *rawScribe) DefaultDataType(vcard.Version) vcard.DataType { return vcard.DataTypeNone }

func (s *rawScribe) DataType(value vcard.Value, v vcard.Version) vcard.DataType {
	if raw, ok := value.(*vcard.Raw); ok {
		return raw.DataType
	}
	return vcard.DataTypeNone
}

func (s *rawScribe) WriteText(value vcard.Value, ctx *WriteContext) (string, error) {
	raw, err := cast[*vcard.Raw](value)
	if err != nil {
		return "", err
	}
	return raw.Value, nil
}

func (s *rawScribe) ParseText(raw string, dataType vcard.DataType, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	return &vcard.Raw{Name: s.name, Value: raw, DataType: dataType}, nil
}

func (s *rawScribe) WriteXML(value vcard.Value, el *xmltree.Element, ctx *WriteContext) error {
	raw, err := cast[*vcard.Raw](value)
	if err != nil {
		return err
	}
	dataType := raw.DataType
	if !dataType.Known() {
		dataType = vcard.DataTypeUnknown
	}
	addXMLValue(el, dataType, vcard.UnescapeText(raw.Value))
	return nil
}

func (s *rawScribe) ParseXML(el *xmltree.Element, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	text, dataType, ok := xmlValue(el)
	if !ok {
		text = el.Text
	}
	if dataType == vcard.DataTypeUnknown {
		dataType = vcard.DataTypeNone
	}
	return &vcard.Raw{Name: s.name, Value: vcard.EscapeText(text, ctx.Version), DataType: dataType}, nil
}
