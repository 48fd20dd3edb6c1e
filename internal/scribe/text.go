package scribe

import (
	"strings"

	"card-codec/internal/common/errors"
	"card-codec/internal/common/xmltree"
	"card-codec/internal/vcard"
	"golang.org/x/net/html"
)

type htmlKind int

const (
	htmlText htmlKind = iota
	htmlLink
	htmlMailto
)

// textScribe serves every property whose value is one string.
type textScribe[T any, PT interface {
	*T
	vcard.TextHolder
}] struct {
	name     string
	versions []vcard.Version
	types    func(vcard.Version) vcard.DataType
	class    string
	kind     htmlKind
	check    func(value string, v vcard.Version) []vcard.Warning
}

func (s *textScribe[T, PT]) Name() string                   { return s.name }
func (s *textScribe[T, PT]) Versions() []vcard.Version      { return s.versions }
func (s *textScribe[T, PT]) NewValue() vcard.Value          { return PT(new(T)) }
func (s *textScribe[T, PT]) DefaultDataType(v vcard.Version) vcard.DataType { return s.types(v) }
func (s *textScribe[T, PT]) HTMLClass() string {
	if s.class != "" {
		return s.class
	}
	return strings.ToLower(s.name)
}

func (s *textScribe[T, PT]) WriteText(value vcard.Value, ctx *WriteContext) (string, error) {
	v, err := cast[PT](value)
	if err != nil {
		return "", err
	}
	if isURIType(s.types(ctx.Version)) {
		return v.TextValue(), nil
	}
	return vcard.EscapeText(v.TextValue(), ctx.Version), nil
}

func (s *textScribe[T, PT]) ParseText(raw string, dataType vcard.DataType, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	v := PT(new(T))
	if isURIType(dataType) {
		v.SetTextValue(strings.TrimSpace(raw))
	} else {
		v.SetTextValue(vcard.UnescapeText(raw))
	}
	return v, nil
}

func (s *textScribe[T, PT]) WriteXML(value vcard.Value, el *xmltree.Element, ctx *WriteContext) error {
	v, err := cast[PT](value)
	if err != nil {
		return err
	}
	addXMLValue(el, s.types(vcard.V40), v.TextValue())
	return nil
}

func (s *textScribe[T, PT]) ParseXML(el *xmltree.Element, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	text, _, ok := xmlValue(el)
	if !ok {
		return nil, errors.CannotParseError(s.name + " element has no value")
	}
	v := PT(new(T))
	v.SetTextValue(text)
	return v, nil
}

func (s *textScribe[T, PT]) WriteJSON(value vcard.Value, ctx *WriteContext) (JSONValue, error) {
	v, err := cast[PT](value)
	if err != nil {
		return JSONValue{}, err
	}
	return Single(v.TextValue()), nil
}

func (s *textScribe[T, PT]) ParseJSON(value JSONValue, dataType vcard.DataType, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	v := PT(new(T))
	v.SetTextValue(value.AsSingle())
	return v, nil
}

func (s *textScribe[T, PT]) ParseHTML(el *HTMLElement, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	v := PT(new(T))
	text := el.Value()
	switch s.kind {
	case htmlLink:
		if href := el.AbsURL("href"); href != "" && el.TagName() == "a" {
			text = href
		} else if src := el.AbsURL("src"); src != "" {
			text = src
		}
	case htmlMailto:
		if href := el.Attr("href"); el.TagName() == "a" && strings.HasPrefix(strings.ToLower(href), "mailto:") {
			text = href[len("mailto:"):]
			if i := strings.IndexByte(text, '?'); i >= 0 {
				text = text[:i]
			}
		}
	}
	v.SetTextValue(text)
	return v, nil
}

func (s *textScribe[T, PT]) WriteHTML(value vcard.Value, ctx *WriteContext) (*html.Node, error) {
	v, err := cast[PT](value)
	if err != nil {
		return nil, err
	}
	text := v.TextValue()
	switch s.kind {
	case htmlLink:
		n := NewHTMLNode("a", s.HTMLClass())
		SetAttr(n, "href", text)
		AppendText(n, text)
		return n, nil
	case htmlMailto:
		n := NewHTMLNode("a", s.HTMLClass())
		SetAttr(n, "href", "mailto:"+text)
		AppendText(n, text)
		return n, nil
	}
	n := NewHTMLNode("span", s.HTMLClass())
	AppendText(n, text)
	return n, nil
}

func (s *textScribe[T, PT]) Validate(value vcard.Value, v vcard.Version, params *vcard.Params, record *vcard.Record) []vcard.Warning {
	if s.check == nil {
		return nil
	}
	t, err := cast[PT](value)
	if err != nil {
		return nil
	}
	return s.check(t.TextValue(), v)
}

// prefText is a text scribe for preference-ordered properties.
type prefText[T any, PT interface {
	*T
	vcard.TextHolder
}] struct {
	*textScribe[T, PT]
	prefOrdered
}

func newText[T any, PT interface {
	*T
	vcard.TextHolder
}](name string, versions []vcard.Version, types func(vcard.Version) vcard.DataType) *textScribe[T, PT] {
	return &textScribe[T, PT]{name: name, versions: versions, types: types}
}

// Text scribe constructors, one per property.

func NewFormattedNameScribe() Scribe {
	return newText[vcard.FormattedName](vcard.PropFN, allVersions, fixed(vcard.DataTypeText))
}

func NewNoteScribe() Scribe {
	return newText[vcard.Note](vcard.PropNote, allVersions, fixed(vcard.DataTypeText))
}

func NewTitleScribe() Scribe {
	return newText[vcard.Title](vcard.PropTitle, allVersions, fixed(vcard.DataTypeText))
}

func NewRoleScribe() Scribe {
	return newText[vcard.Role](vcard.PropRole, allVersions, fixed(vcard.DataTypeText))
}

func NewMailerScribe() Scribe {
	return newText[vcard.Mailer](vcard.PropMailer, v21And30, fixed(vcard.DataTypeText))
}

func NewProductIDScribe() Scribe {
	return newText[vcard.ProductID](vcard.PropProductID, v30And40, fixed(vcard.DataTypeText))
}

func NewSortStringScribe() Scribe {
	return newText[vcard.SortString](vcard.PropSortString, only30, fixed(vcard.DataTypeText))
}

func NewClassificationScribe() Scribe {
	return newText[vcard.Classification](vcard.PropClass, only30, fixed(vcard.DataTypeText))
}

func NewSourceDisplayNameScribe() Scribe {
	return newText[vcard.SourceDisplayName](vcard.PropName, only30, fixed(vcard.DataTypeText))
}

func NewProfileScribe() Scribe {
	return newText[vcard.Profile](vcard.PropProfile, only30, fixed(vcard.DataTypeText))
}

func NewLabelScribe() Scribe {
	return newText[vcard.Label](vcard.PropLabel, v21And30, fixed(vcard.DataTypeText))
}

func NewEmailScribe() Scribe {
	s := newText[vcard.Email](vcard.PropEmail, allVersions, fixed(vcard.DataTypeText))
	s.kind = htmlMailto
	return &prefText[vcard.Email, *vcard.Email]{textScribe: s}
}

func NewKindScribe() Scribe {
	s := newText[vcard.Kind](vcard.PropKind, only40, fixed(vcard.DataTypeText))
	s.check = func(value string, v vcard.Version) []vcard.Warning {
		lower := strings.ToLower(value)
		for _, k := range vcard.KindValues {
			if lower == k {
				return nil
			}
		}
		if strings.HasPrefix(lower, "x-") {
			return nil
		}
		return []vcard.Warning{warn(vcard.WarnUnknownKind, value)}
	}
	return s
}

func NewLanguageScribe() Scribe {
	s := newText[vcard.Language](vcard.PropLang, only40, fixed(vcard.DataTypeLanguageTag))
	s.check = func(value string, v vcard.Version) []vcard.Warning {
		if !validLanguageTag(value) {
			return []vcard.Warning{warn(vcard.WarnBadLanguageTag, value)}
		}
		return nil
	}
	return s
}

func NewExpertiseScribe() Scribe {
	return newText[vcard.Expertise](vcard.PropExpertise, only40, fixed(vcard.DataTypeText))
}

func NewHobbyScribe() Scribe {
	return newText[vcard.Hobby](vcard.PropHobby, only40, fixed(vcard.DataTypeText))
}

func NewInterestScribe() Scribe {
	return newText[vcard.Interest](vcard.PropInterest, only40, fixed(vcard.DataTypeText))
}

func NewUIDScribe() Scribe {
	return newText[vcard.UID](vcard.PropUID, allVersions, func(v vcard.Version) vcard.DataType {
		if v == vcard.V40 {
			return vcard.DataTypeURI
		}
		return vcard.DataTypeText
	})
}

func newLinkText[T any, PT interface {
	*T
	vcard.TextHolder
}](name string, versions []vcard.Version) *textScribe[T, PT] {
	s := newText[T, PT](name, versions, uriOrURL)
	s.kind = htmlLink
	return s
}

func NewURLScribe() Scribe {
	return newLinkText[vcard.URL](vcard.PropURL, allVersions)
}

func NewSourceScribe() Scribe {
	return newLinkText[vcard.Source](vcard.PropSource, v30And40)
}

func NewOrgDirectoryScribe() Scribe {
	return newLinkText[vcard.OrgDirectory](vcard.PropOrgDirectory, only40)
}

func NewFreeBusyURLScribe() Scribe {
	return newLinkText[vcard.FreeBusyURL](vcard.PropFreeBusyURL, only40)
}

func NewCalendarURIScribe() Scribe {
	return newLinkText[vcard.CalendarURI](vcard.PropCalendarURI, only40)
}

func NewCalendarRequestURIScribe() Scribe {
	return newLinkText[vcard.CalendarRequestURI](vcard.PropCalendarRequestURI, only40)
}

func NewImppScribe() Scribe {
	s := newLinkText[vcard.Impp](vcard.PropImpp, v30And40)
	return &prefText[vcard.Impp, *vcard.Impp]{textScribe: s}
}

func NewMemberScribe() Scribe {
	s := newLinkText[vcard.Member](vcard.PropMember, only40)
	return &prefText[vcard.Member, *vcard.Member]{textScribe: s}
}

// NewXMLScribe serves XML properties: xCard elements kept verbatim. The
// xCard reader and writer exchange them as elements; other formats carry
// the serialized element as text.
func NewXMLScribe() Scribe {
	s := newText[vcard.XML](vcard.PropXML, only40, fixed(vcard.DataTypeText))
	s.check = func(value string, v vcard.Version) []vcard.Warning {
		if _, err := xmltree.ParseString(value); err != nil {
			return []vcard.Warning{warn(vcard.WarnBadXML, err.Error())}
		}
		return nil
	}
	return s
}
