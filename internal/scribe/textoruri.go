package scribe

import (
	"strings"

	"card-codec/internal/common/errors"
	"card-codec/internal/common/xmltree"
	"card-codec/internal/vcard"
	"golang.org/x/net/html"
)

type textOrURIHolder interface {
	vcard.Value
	Text() string
	URI() string
	SetText(string)
	SetURI(string)
	IsEmpty() bool
}

// textOrURIScribe serves TEL, RELATED, BIRTHPLACE and DEATHPLACE.
type textOrURIScribe[T any, PT interface {
	*T
	textOrURIHolder
}] struct {
	name       string
	versions   []vcard.Version
	defaultURI bool
	telephone  bool
}

func (s *textOrURIScribe[T, PT]) Name() string              { return s.name }
func (s *textOrURIScribe[T, PT]) Versions() []vcard.Version { return s.versions }
func (s *textOrURIScribe[T, PT]) NewValue() vcard.Value     { return PT(new(T)) }
func (s *textOrURIScribe[T, PT]) HTMLClass() string         { return strings.ToLower(s.name) }

func (s *textOrURIScribe[T, PT]) DefaultDataType(v vcard.Version) vcard.DataType {
	if s.defaultURI {
		return uriOrURL(v)
	}
	return vcard.DataTypeText
}

// telNumber strips the scheme and any URI parameters from a tel: URI.
func telNumber(uri string) (string, bool) {
	if len(uri) < 4 || !strings.EqualFold(uri[:4], "tel:") {
		return "", false
	}
	number := uri[4:]
	if i := strings.IndexByte(number, ';'); i >= 0 {
		number = number[:i]
	}
	return number, true
}

func (s *textOrURIScribe[T, PT]) DataType(value vcard.Value, v vcard.Version) vcard.DataType {
	h, err := cast[PT](value)
	if err != nil {
		return s.DefaultDataType(v)
	}
	if h.URI() == "" {
		return vcard.DataTypeText
	}
	if s.telephone && v != vcard.V40 {
		if _, ok := telNumber(h.URI()); ok {
			return vcard.DataTypeText
		}
	}
	return uriOrURL(v)
}

func (s *textOrURIScribe[T, PT]) WriteText(value vcard.Value, ctx *WriteContext) (string, error) {
	h, err := cast[PT](value)
	if err != nil {
		return "", err
	}
	if h.IsEmpty() {
		return "", errors.SkipError(s.name + " has neither text nor URI")
	}
	if uri := h.URI(); uri != "" {
		if s.telephone && ctx.Version != vcard.V40 {
			if number, ok := telNumber(uri); ok {
				return vcard.EscapeText(number, ctx.Version), nil
			}
		}
		return uri, nil
	}
	return vcard.EscapeText(h.Text(), ctx.Version), nil
}

func (s *textOrURIScribe[T, PT]) ParseText(raw string, dataType vcard.DataType, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	v := PT(new(T))
	switch {
	case isURIType(dataType):
		v.SetURI(strings.TrimSpace(raw))
	case s.telephone && ctx.Version == vcard.V40 && dataType != vcard.DataTypeText && isTelURI(raw):
		v.SetURI(strings.TrimSpace(raw))
	default:
		v.SetText(vcard.UnescapeText(raw))
	}
	return v, nil
}

func isTelURI(s string) bool {
	_, ok := telNumber(strings.TrimSpace(s))
	return ok
}

func (s *textOrURIScribe[T, PT]) WriteXML(value vcard.Value, el *xmltree.Element, ctx *WriteContext) error {
	h, err := cast[PT](value)
	if err != nil {
		return err
	}
	if h.IsEmpty() {
		return errors.SkipError(s.name + " has neither text nor URI")
	}
	if h.URI() != "" {
		addXMLValue(el, vcard.DataTypeURI, h.URI())
	} else {
		addXMLValue(el, vcard.DataTypeText, h.Text())
	}
	return nil
}

func (s *textOrURIScribe[T, PT]) ParseXML(el *xmltree.Element, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	v := PT(new(T))
	if uri, _, ok := xmlValue(el, vcard.DataTypeURI); ok {
		v.SetURI(uri)
		return v, nil
	}
	if text, _, ok := xmlValue(el, vcard.DataTypeText); ok {
		v.SetText(text)
		return v, nil
	}
	return nil, errors.CannotParseError(s.name + " element has no text or uri value")
}

func (s *textOrURIScribe[T, PT]) WriteJSON(value vcard.Value, ctx *WriteContext) (JSONValue, error) {
	h, err := cast[PT](value)
	if err != nil {
		return JSONValue{}, err
	}
	if h.IsEmpty() {
		return JSONValue{}, errors.SkipError(s.name + " has neither text nor URI")
	}
	if h.URI() != "" {
		return Single(h.URI()), nil
	}
	return Single(h.Text()), nil
}

func (s *textOrURIScribe[T, PT]) ParseJSON(value JSONValue, dataType vcard.DataType, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	v := PT(new(T))
	if isURIType(dataType) {
		v.SetURI(value.AsSingle())
	} else {
		v.SetText(value.AsSingle())
	}
	return v, nil
}

func (s *textOrURIScribe[T, PT]) ParseHTML(el *HTMLElement, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	v := PT(new(T))
	if el.TagName() == "a" {
		if href := el.Attr("href"); href != "" && (!s.telephone || isTelURI(href)) {
			v.SetURI(href)
			return v, nil
		}
	}
	v.SetText(el.Value())
	return v, nil
}

func (s *textOrURIScribe[T, PT]) WriteHTML(value vcard.Value, ctx *WriteContext) (*html.Node, error) {
	h, err := cast[PT](value)
	if err != nil {
		return nil, err
	}
	if uri := h.URI(); uri != "" {
		n := NewHTMLNode("a", s.HTMLClass())
		SetAttr(n, "href", uri)
		text := uri
		if number, ok := telNumber(uri); ok {
			text = number
		}
		AppendText(n, text)
		return n, nil
	}
	n := NewHTMLNode("span", s.HTMLClass())
	AppendText(n, h.Text())
	return n, nil
}

// prefTextOrURI is a text-or-URI scribe for preference-ordered properties.
type prefTextOrURI[T any, PT interface {
	*T
	textOrURIHolder
}] struct {
	*textOrURIScribe[T, PT]
	prefOrdered
}

func NewTelephoneScribe() Scribe {
	return &prefTextOrURI[vcard.Telephone, *vcard.Telephone]{
		textOrURIScribe: &textOrURIScribe[vcard.Telephone, *vcard.Telephone]{
			name: vcard.PropTelephone, versions: allVersions, telephone: true,
		},
	}
}

func NewRelatedScribe() Scribe {
	return &prefTextOrURI[vcard.Related, *vcard.Related]{
		textOrURIScribe: &textOrURIScribe[vcard.Related, *vcard.Related]{
			name: vcard.PropRelated, versions: only40, defaultURI: true,
		},
	}
}

func NewBirthplaceScribe() Scribe {
	return &textOrURIScribe[vcard.Birthplace, *vcard.Birthplace]{name: vcard.PropBirthplace, versions: only40}
}

func NewDeathplaceScribe() Scribe {
	return &textOrURIScribe[vcard.Deathplace, *vcard.Deathplace]{name: vcard.PropDeathplace, versions: only40}
}
