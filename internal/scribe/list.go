package scribe

import (
	"strings"

	"card-codec/internal/common/xmltree"
	"card-codec/internal/vcard"
	"golang.org/x/net/html"
)

type listHolder interface {
	vcard.Value
	ListValues() []string
	SetListValues([]string)
}

// listScribe serves CATEGORIES and NICKNAME (comma lists) and ORG (a
// semicolon list of name and units).
type listScribe[T any, PT interface {
	*T
	listHolder
}] struct {
	name     string
	versions []vcard.Version
	sep      byte
	class    string
}

func (s *listScribe[T, PT]) Name() string              { return s.name }
func (s *listScribe[T, PT]) Versions() []vcard.Version { return s.versions }
func (s *listScribe[T, PT]) NewValue() vcard.Value     { return PT(new(T)) }
func (s *listScribe[T, PT]) HTMLClass() string         { return s.class }

func (s *listScribe[T, PT]) DefaultDataType(vcard.Version) vcard.DataType {
	return vcard.DataTypeText
}

func (s *listScribe[T, PT]) WriteText(value vcard.Value, ctx *WriteContext) (string, error) {
	v, err := cast[PT](value)
	if err != nil {
		return "", err
	}
	if s.sep == ';' {
		return vcard.JoinSemiStructured(v.ListValues(), ctx.Version), nil
	}
	return vcard.JoinList(v.ListValues(), s.sep, ctx.Version), nil
}

func (s *listScribe[T, PT]) ParseText(raw string, dataType vcard.DataType, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	v := PT(new(T))
	if s.sep == ';' {
		v.SetListValues(vcard.SplitSemiStructured(raw, 0))
	} else {
		v.SetListValues(vcard.SplitList(raw, s.sep))
	}
	return v, nil
}

func (s *listScribe[T, PT]) WriteXML(value vcard.Value, el *xmltree.Element, ctx *WriteContext) error {
	v, err := cast[PT](value)
	if err != nil {
		return err
	}
	for _, item := range v.ListValues() {
		addXMLValue(el, vcard.DataTypeText, item)
	}
	return nil
}

func (s *listScribe[T, PT]) ParseXML(el *xmltree.Element, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	v := PT(new(T))
	v.SetListValues(xmlValues(el, string(vcard.DataTypeText)))
	return v, nil
}

func (s *listScribe[T, PT]) WriteJSON(value vcard.Value, ctx *WriteContext) (JSONValue, error) {
	v, err := cast[PT](value)
	if err != nil {
		return JSONValue{}, err
	}
	items := v.ListValues()
	if s.sep == ';' && len(items) > 1 {
		components := make([][]string, len(items))
		for i, item := range items {
			components[i] = []string{item}
		}
		return Structured(components), nil
	}
	return Multi(items...), nil
}

func (s *listScribe[T, PT]) ParseJSON(value JSONValue, dataType vcard.DataType, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	v := PT(new(T))
	v.SetListValues(value.AsMulti())
	return v, nil
}

func (s *listScribe[T, PT]) ParseHTML(el *HTMLElement, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	v := PT(new(T))
	if s.sep == ';' {
		if name := el.FirstWithClass("organization-name"); name != nil {
			items := []string{name.Value()}
			for _, unit := range el.AllWithClass("organization-unit") {
				items = append(items, unit.Value())
			}
			v.SetListValues(items)
			return v, nil
		}
		v.SetListValues([]string{el.Value()})
		return v, nil
	}

	var items []string
	for _, item := range strings.Split(el.Value(), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	v.SetListValues(items)
	return v, nil
}

func (s *listScribe[T, PT]) WriteHTML(value vcard.Value, ctx *WriteContext) (*html.Node, error) {
	v, err := cast[PT](value)
	if err != nil {
		return nil, err
	}
	n := NewHTMLNode("span", s.class)
	items := v.ListValues()
	if s.sep != ';' {
		AppendText(n, strings.Join(items, ", "))
		return n, nil
	}
	for i, item := range items {
		class := "organization-unit"
		if i == 0 {
			class = "organization-name"
		}
		if i > 0 {
			AppendText(n, ", ")
		}
		AppendChildWithText(n, "span", class, item)
	}
	return n, nil
}

func NewCategoriesScribe() Scribe {
	return &listScribe[vcard.Categories, *vcard.Categories]{
		name: vcard.PropCategories, versions: v30And40, sep: ',', class: "category",
	}
}

func NewNicknameScribe() Scribe {
	return &listScribe[vcard.Nickname, *vcard.Nickname]{
		name: vcard.PropNickname, versions: v30And40, sep: ',', class: "nickname",
	}
}

func NewOrganizationScribe() Scribe {
	return &listScribe[vcard.Organization, *vcard.Organization]{
		name: vcard.PropOrg, versions: allVersions, sep: ';', class: "org",
	}
}
