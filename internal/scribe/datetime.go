package scribe

import (
	"strings"
	"time"

	"card-codec/internal/common/errors"
	"card-codec/internal/common/xmltree"
	"card-codec/internal/vcard"
	"golang.org/x/net/html"
)

type dateHolder interface {
	vcard.Value
	Date() (time.Time, bool)
	Partial() *vcard.PartialDate
	Text() string
	HasTime() bool
	SetDate(t time.Time, hasTime bool)
	SetPartial(pd vcard.PartialDate)
	SetText(string)
	IsEmpty() bool
}

// dateScribe serves BDAY, ANNIVERSARY and DEATHDATE. 4.0 text uses the
// basic format, 2.1 and 3.0 the extended one.
type dateScribe[T any, PT interface {
	*T
	dateHolder
}] struct {
	name     string
	versions []vcard.Version
}

func (s *dateScribe[T, PT]) Name() string              { return s.name }
func (s *dateScribe[T, PT]) Versions() []vcard.Version { return s.versions }
func (s *dateScribe[T, PT]) NewValue() vcard.Value     { return PT(new(T)) }
func (s *dateScribe[T, PT]) HTMLClass() string         { return strings.ToLower(s.name) }

func (s *dateScribe[T, PT]) DefaultDataType(v vcard.Version) vcard.DataType {
	if v == vcard.V40 {
		return vcard.DataTypeDateAndOrTime
	}
	return vcard.DataTypeDate
}

func partialDataType(pd *vcard.PartialDate) vcard.DataType {
	switch {
	case pd.HasDate() && pd.HasTime():
		return vcard.DataTypeDateTime
	case pd.HasTime():
		return vcard.DataTypeTime
	default:
		return vcard.DataTypeDate
	}
}

func (s *dateScribe[T, PT]) DataType(value vcard.Value, v vcard.Version) vcard.DataType {
	d, err := cast[PT](value)
	if err != nil {
		return s.DefaultDataType(v)
	}
	switch {
	case d.Text() != "":
		return vcard.DataTypeText
	case d.Partial() != nil:
		return partialDataType(d.Partial())
	case d.HasTime():
		return vcard.DataTypeDateTime
	default:
		return vcard.DataTypeDate
	}
}

// format renders the non-text slots; ok is false when the value is text or
// empty.
func formatDate(d dateHolder, extended bool) (string, bool) {
	if t, ok := d.Date(); ok {
		if d.HasTime() {
			return vcard.FormatDateTime(t, extended), true
		}
		return vcard.FormatDate(t, extended), true
	}
	if pd := d.Partial(); pd != nil {
		return pd.Format(extended), true
	}
	return "", false
}

func (s *dateScribe[T, PT]) WriteText(value vcard.Value, ctx *WriteContext) (string, error) {
	d, err := cast[PT](value)
	if err != nil {
		return "", err
	}
	if d.IsEmpty() {
		return "", errors.SkipError(vcard.Message(vcard.WarnEmptyValue))
	}
	if d.Text() != "" {
		if ctx.Version != vcard.V40 {
			ctx.Warn(vcard.WarnTextDateUnsupported, ctx.Version)
		}
		return vcard.EscapeText(d.Text(), ctx.Version), nil
	}
	if d.Partial() != nil && ctx.Version != vcard.V40 {
		ctx.Warn(vcard.WarnPartialDateUnsupported, ctx.Version)
	}
	text, _ := formatDate(d, ctx.Version != vcard.V40)
	return text, nil
}

func (s *dateScribe[T, PT]) parse(raw string, v PT) error {
	pd, err := vcard.ParsePartialDate(raw)
	if err != nil {
		return err
	}
	if t, ok := pd.Time(); ok {
		v.SetDate(t, pd.HasTime())
		return nil
	}
	v.SetPartial(pd)
	return nil
}

func (s *dateScribe[T, PT]) ParseText(raw string, dataType vcard.DataType, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	v := PT(new(T))
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, errors.SkipError(vcard.Message(vcard.WarnEmptyValue))
	}
	if dataType == vcard.DataTypeText {
		v.SetText(vcard.UnescapeText(raw))
		return v, nil
	}
	if err := s.parse(value, v); err != nil {
		if ctx.Version != vcard.V40 {
			return nil, errors.CannotParseError(vcard.Message(vcard.WarnBadDate, value))
		}
		ctx.Warn(vcard.WarnBadDate, value)
		v.SetText(vcard.UnescapeText(raw))
	}
	return v, nil
}

func (s *dateScribe[T, PT]) WriteXML(value vcard.Value, el *xmltree.Element, ctx *WriteContext) error {
	d, err := cast[PT](value)
	if err != nil {
		return err
	}
	if d.IsEmpty() {
		return errors.SkipError(vcard.Message(vcard.WarnEmptyValue))
	}
	if d.Text() != "" {
		addXMLValue(el, vcard.DataTypeText, d.Text())
		return nil
	}
	dataType := s.DataType(d, vcard.V40)
	text, _ := formatDate(d, false)
	if dataType == vcard.DataTypeTime {
		text = strings.TrimPrefix(text, "T")
	}
	addXMLValue(el, dataType, text)
	return nil
}

func (s *dateScribe[T, PT]) ParseXML(el *xmltree.Element, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	v := PT(new(T))
	if text, _, ok := xmlValue(el, vcard.DataTypeText); ok {
		v.SetText(text)
		return v, nil
	}
	text, dataType, ok := xmlValue(el, vcard.DataTypeDate, vcard.DataTypeDateTime, vcard.DataTypeTime, vcard.DataTypeDateAndOrTime)
	if !ok {
		return nil, errors.CannotParseError(s.name + " element has no date value")
	}
	return v, s.parseTyped(strings.TrimSpace(text), dataType, v)
}

func (s *dateScribe[T, PT]) parseTyped(text string, dataType vcard.DataType, v PT) error {
	if dataType == vcard.DataTypeTime && !strings.HasPrefix(text, "T") {
		text = "T" + text
	}
	if err := s.parse(text, v); err != nil {
		return errors.CannotParseError(vcard.Message(vcard.WarnBadDate, text))
	}
	return nil
}

func (s *dateScribe[T, PT]) WriteJSON(value vcard.Value, ctx *WriteContext) (JSONValue, error) {
	d, err := cast[PT](value)
	if err != nil {
		return JSONValue{}, err
	}
	if d.IsEmpty() {
		return JSONValue{}, errors.SkipError(vcard.Message(vcard.WarnEmptyValue))
	}
	if d.Text() != "" {
		return Single(d.Text()), nil
	}
	text, _ := formatDate(d, true)
	if s.DataType(d, vcard.V40) == vcard.DataTypeTime {
		text = strings.TrimPrefix(text, "T")
	}
	return Single(text), nil
}

func (s *dateScribe[T, PT]) ParseJSON(value JSONValue, dataType vcard.DataType, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	v := PT(new(T))
	text := strings.TrimSpace(value.AsSingle())
	if dataType == vcard.DataTypeText {
		v.SetText(text)
		return v, nil
	}
	if text == "" {
		return nil, errors.SkipError(vcard.Message(vcard.WarnEmptyValue))
	}
	return v, s.parseTyped(text, dataType, v)
}

func (s *dateScribe[T, PT]) ParseHTML(el *HTMLElement, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	v := PT(new(T))
	text := strings.TrimSpace(el.Value())
	if text == "" {
		return nil, errors.SkipError(vcard.Message(vcard.WarnEmptyValue))
	}
	if err := s.parse(text, v); err != nil {
		v.SetText(text)
	}
	return v, nil
}

func (s *dateScribe[T, PT]) WriteHTML(value vcard.Value, ctx *WriteContext) (*html.Node, error) {
	d, err := cast[PT](value)
	if err != nil {
		return nil, err
	}
	if d.IsEmpty() {
		return nil, errors.SkipError(vcard.Message(vcard.WarnEmptyValue))
	}
	if d.Text() != "" {
		n := NewHTMLNode("span", s.HTMLClass())
		AppendText(n, d.Text())
		return n, nil
	}
	text, _ := formatDate(d, true)
	n := NewHTMLNode("time", s.HTMLClass())
	SetAttr(n, "datetime", text)
	AppendText(n, text)
	return n, nil
}

func (s *dateScribe[T, PT]) Validate(value vcard.Value, v vcard.Version, params *vcard.Params, record *vcard.Record) []vcard.Warning {
	d, err := cast[PT](value)
	if err != nil {
		return nil
	}
	switch {
	case d.IsEmpty():
		return []vcard.Warning{warn(vcard.WarnEmptyValue)}
	case d.Text() != "" && v != vcard.V40:
		return []vcard.Warning{warn(vcard.WarnTextDateUnsupported, v)}
	case d.Partial() != nil && v != vcard.V40:
		return []vcard.Warning{warn(vcard.WarnPartialDateUnsupported, v)}
	}
	return nil
}

func NewBirthdayScribe() Scribe {
	return &dateScribe[vcard.Birthday, *vcard.Birthday]{name: vcard.PropBirthday, versions: allVersions}
}

func NewAnniversaryScribe() Scribe {
	return &dateScribe[vcard.Anniversary, *vcard.Anniversary]{name: vcard.PropAnniversary, versions: only40}
}

func NewDeathdateScribe() Scribe {
	return &dateScribe[vcard.Deathdate, *vcard.Deathdate]{name: vcard.PropDeathdate, versions: only40}
}

// revisionScribe serves REV.
type revisionScribe struct{}

func NewRevisionScribe() Scribe { return revisionScribe{} }

func (revisionScribe) Name() string              { return vcard.PropRevision }
func (revisionScribe) Versions() []vcard.Version { return allVersions }
func (revisionScribe) NewValue() vcard.Value     { return &vcard.Revision{} }
func (revisionScribe) HTMLClass() string         { return "rev" }

func (revisionScribe) DefaultDataType(v vcard.Version) vcard.DataType {
	if v == vcard.V40 {
		return vcard.DataTypeTimestamp
	}
	return vcard.DataTypeDateTime
}

func (revisionScribe) WriteText(value vcard.Value, ctx *WriteContext) (string, error) {
	r, err := cast[*vcard.Revision](value)
	if err != nil {
		return "", err
	}
	if r.Time.IsZero() {
		return "", errors.SkipError(vcard.Message(vcard.WarnEmptyValue))
	}
	return vcard.FormatDateTime(r.Time.UTC(), ctx.Version != vcard.V40), nil
}

func (revisionScribe) parse(raw string) (vcard.Value, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.SkipError(vcard.Message(vcard.WarnEmptyValue))
	}
	t, err := vcard.ParseTimestamp(raw)
	if err != nil {
		return nil, errors.CannotParseError(vcard.Message(vcard.WarnBadTimestamp, raw))
	}
	return &vcard.Revision{Time: t}, nil
}

func (s revisionScribe) ParseText(raw string, dataType vcard.DataType, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	return s.parse(raw)
}

func (revisionScribe) WriteXML(value vcard.Value, el *xmltree.Element, ctx *WriteContext) error {
	r, err := cast[*vcard.Revision](value)
	if err != nil {
		return err
	}
	addXMLValue(el, vcard.DataTypeTimestamp, vcard.FormatDateTime(r.Time.UTC(), false))
	return nil
}

func (s revisionScribe) ParseXML(el *xmltree.Element, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	text, _, _ := xmlValue(el)
	return s.parse(text)
}

func (revisionScribe) WriteJSON(value vcard.Value, ctx *WriteContext) (JSONValue, error) {
	r, err := cast[*vcard.Revision](value)
	if err != nil {
		return JSONValue{}, err
	}
	return Single(vcard.FormatDateTime(r.Time.UTC(), true)), nil
}

func (s revisionScribe) ParseJSON(value JSONValue, dataType vcard.DataType, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	return s.parse(value.AsSingle())
}

func (s revisionScribe) ParseHTML(el *HTMLElement, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	return s.parse(el.Value())
}

func (revisionScribe) WriteHTML(value vcard.Value, ctx *WriteContext) (*html.Node, error) {
	r, err := cast[*vcard.Revision](value)
	if err != nil {
		return nil, err
	}
	text := vcard.FormatDateTime(r.Time.UTC(), true)
	n := NewHTMLNode("time", "rev")
	SetAttr(n, "datetime", text)
	AppendText(n, text)
	return n, nil
}
