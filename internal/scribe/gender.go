package scribe

import (
	"strings"

	"card-codec/internal/common/errors"
	"card-codec/internal/common/xmltree"
	"card-codec/internal/vcard"
	"golang.org/x/net/html"
)

type genderScribe struct{}

func NewGenderScribe() Scribe { return genderScribe{} }

func (genderScribe) Name() string                                 { return vcard.PropGender }
func (genderScribe) Versions() []vcard.Version                    { return only40 }
func (genderScribe) NewValue() vcard.Value                        { return &vcard.Gender{} }
func (genderScribe) DefaultDataType(vcard.Version) vcard.DataType { return vcard.DataTypeText }
func (genderScribe) HTMLClass() string                            { return "gender" }

func genderFrom(sex, identity string) (vcard.Value, error) {
	if sex == "" && identity == "" {
		return nil, errors.SkipError(vcard.Message(vcard.WarnEmptyValue))
	}
	return &vcard.Gender{Sex: strings.ToUpper(sex), Identity: identity}, nil
}

func (genderScribe) WriteText(value vcard.Value, ctx *WriteContext) (string, error) {
	g, err := cast[*vcard.Gender](value)
	if err != nil {
		return "", err
	}
	if g.Identity == "" {
		return vcard.EscapeText(g.Sex, ctx.Version), nil
	}
	return vcard.JoinSemiStructured([]string{g.Sex, g.Identity}, ctx.Version), nil
}

func (genderScribe) ParseText(raw string, dataType vcard.DataType, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	parts := vcard.SplitSemiStructured(raw, 2)
	return genderFrom(vcard.Part(parts, 0), vcard.Part(parts, 1))
}

func (genderScribe) WriteXML(value vcard.Value, el *xmltree.Element, ctx *WriteContext) error {
	g, err := cast[*vcard.Gender](value)
	if err != nil {
		return err
	}
	el.AddText("sex", g.Sex)
	if g.Identity != "" {
		el.AddText("identity", g.Identity)
	}
	return nil
}

func (genderScribe) ParseXML(el *xmltree.Element, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	return genderFrom(el.ChildText(ns, "sex"), el.ChildText(ns, "identity"))
}

func (genderScribe) WriteJSON(value vcard.Value, ctx *WriteContext) (JSONValue, error) {
	g, err := cast[*vcard.Gender](value)
	if err != nil {
		return JSONValue{}, err
	}
	if g.Identity == "" {
		return Single(g.Sex), nil
	}
	return Structured([][]string{{g.Sex}, {g.Identity}}), nil
}

func (genderScribe) ParseJSON(value JSONValue, dataType vcard.DataType, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	c := value.AsStructured()
	return genderFrom(strings.Join(vcard.Component(c, 0), ","), strings.Join(vcard.Component(c, 1), ","))
}

func (genderScribe) ParseHTML(el *HTMLElement, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	sex, identity := el.FirstWithClass("sex"), el.FirstWithClass("identity")
	if sex == nil && identity == nil {
		return genderFrom(el.Value(), "")
	}
	var s, i string
	if sex != nil {
		s = sex.Value()
	}
	if identity != nil {
		i = identity.Value()
	}
	return genderFrom(s, i)
}

func (genderScribe) WriteHTML(value vcard.Value, ctx *WriteContext) (*html.Node, error) {
	g, err := cast[*vcard.Gender](value)
	if err != nil {
		return nil, err
	}
	n := NewHTMLNode("span", "gender")
	AppendChildWithText(n, "span", "sex", g.Sex)
	if g.Identity != "" {
		AppendText(n, " ")
		AppendChildWithText(n, "span", "identity", g.Identity)
	}
	return n, nil
}

func (genderScribe) Validate(value vcard.Value, v vcard.Version, params *vcard.Params, record *vcard.Record) []vcard.Warning {
	g, err := cast[*vcard.Gender](value)
	if err != nil || g.Sex == "" {
		return nil
	}
	for _, s := range vcard.SexValues {
		if g.Sex == s {
			return nil
		}
	}
	return []vcard.Warning{warn(vcard.WarnBadSex, g.Sex)}
}
