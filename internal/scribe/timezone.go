package scribe

import (
	"strings"

	"card-codec/internal/common/errors"
	"card-codec/internal/common/xmltree"
	"card-codec/internal/vcard"
	"golang.org/x/net/html"
)

// timezoneScribe serves TZ. Before 4.0 the value is a UTC offset by default;
// 4.0 defaults to text and writes offsets in basic format.
type timezoneScribe struct{}

func NewTimezoneScribe() Scribe { return timezoneScribe{} }

func (timezoneScribe) Name() string              { return vcard.PropTimezone }
func (timezoneScribe) Versions() []vcard.Version { return allVersions }
func (timezoneScribe) NewValue() vcard.Value     { return &vcard.Timezone{} }
func (timezoneScribe) HTMLClass() string         { return "tz" }

func (timezoneScribe) DefaultDataType(v vcard.Version) vcard.DataType {
	if v == vcard.V40 {
		return vcard.DataTypeText
	}
	return vcard.DataTypeUTCOffset
}

// DataType prefers the offset before 4.0 and the text in 4.0.
func (timezoneScribe) DataType(value vcard.Value, v vcard.Version) vcard.DataType {
	tz, ok := value.(*vcard.Timezone)
	if !ok {
		return vcard.DataTypeNone
	}
	if v == vcard.V40 {
		if tz.Text == "" && tz.Offset != nil {
			return vcard.DataTypeUTCOffset
		}
		return vcard.DataTypeText
	}
	if tz.Offset == nil && tz.Text != "" {
		return vcard.DataTypeText
	}
	return vcard.DataTypeUTCOffset
}

func (s timezoneScribe) WriteText(value vcard.Value, ctx *WriteContext) (string, error) {
	tz, err := cast[*vcard.Timezone](value)
	if err != nil {
		return "", err
	}
	if tz.Offset == nil && tz.Text == "" {
		return "", errors.SkipError("TZ has neither an offset nor a text value")
	}
	if s.DataType(tz, ctx.Version) == vcard.DataTypeText {
		return vcard.EscapeText(tz.Text, ctx.Version), nil
	}
	return tz.Offset.Format(ctx.Version != vcard.V40), nil
}

// parseTimezone reads an offset when the data type asks for one, falling
// back to text with a warning.
func parseTimezone(value string, dataType vcard.DataType, ctx *ParseContext) (vcard.Value, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, errors.SkipError(vcard.Message(vcard.WarnEmptyValue))
	}
	if dataType != vcard.DataTypeUTCOffset {
		return &vcard.Timezone{Text: value}, nil
	}
	offset, err := vcard.ParseUTCOffset(value)
	if err != nil {
		ctx.Warn(vcard.WarnBadUTCOffset, value)
		return &vcard.Timezone{Text: value}, nil
	}
	return &vcard.Timezone{Offset: &offset}, nil
}

func (timezoneScribe) ParseText(raw string, dataType vcard.DataType, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	if dataType == vcard.DataTypeText {
		raw = vcard.UnescapeText(raw)
	}
	return parseTimezone(raw, dataType, ctx)
}

func (timezoneScribe) WriteXML(value vcard.Value, el *xmltree.Element, ctx *WriteContext) error {
	tz, err := cast[*vcard.Timezone](value)
	if err != nil {
		return err
	}
	switch {
	case tz.Text != "":
		addXMLValue(el, vcard.DataTypeText, tz.Text)
	case tz.Offset != nil:
		addXMLValue(el, vcard.DataTypeUTCOffset, tz.Offset.Format(false))
	default:
		return errors.SkipError("TZ has neither an offset nor a text value")
	}
	return nil
}

func (timezoneScribe) ParseXML(el *xmltree.Element, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	text, dataType, ok := xmlValue(el, vcard.DataTypeText, vcard.DataTypeURI, vcard.DataTypeUTCOffset)
	if !ok {
		return nil, errors.CannotParseError("TZ has no text, uri or utc-offset element")
	}
	return parseTimezone(text, dataType, ctx)
}

func (s timezoneScribe) WriteJSON(value vcard.Value, ctx *WriteContext) (JSONValue, error) {
	tz, err := cast[*vcard.Timezone](value)
	if err != nil {
		return JSONValue{}, err
	}
	switch {
	case tz.Text != "":
		return Single(tz.Text), nil
	case tz.Offset != nil:
		return Single(tz.Offset.Format(true)), nil
	}
	return JSONValue{}, errors.SkipError("TZ has neither an offset nor a text value")
}

func (timezoneScribe) ParseJSON(value JSONValue, dataType vcard.DataType, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	return parseTimezone(value.AsSingle(), dataType, ctx)
}

func (timezoneScribe) ParseHTML(el *HTMLElement, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	value := el.Value()
	if _, err := vcard.ParseUTCOffset(strings.TrimSpace(value)); err == nil {
		return parseTimezone(value, vcard.DataTypeUTCOffset, ctx)
	}
	return parseTimezone(value, vcard.DataTypeText, ctx)
}

func (timezoneScribe) WriteHTML(value vcard.Value, ctx *WriteContext) (*html.Node, error) {
	tz, err := cast[*vcard.Timezone](value)
	if err != nil {
		return nil, err
	}
	n := NewHTMLNode("span", "tz")
	if tz.Offset != nil {
		AppendText(n, tz.Offset.Format(true))
	} else {
		AppendText(n, tz.Text)
	}
	return n, nil
}

func (timezoneScribe) Validate(value vcard.Value, v vcard.Version, params *vcard.Params, record *vcard.Record) []vcard.Warning {
	tz, err := cast[*vcard.Timezone](value)
	if err != nil {
		return nil
	}
	if tz.Offset == nil && tz.Text == "" {
		return []vcard.Warning{warn(vcard.WarnEmptyValue)}
	}
	if tz.Offset != nil && (tz.Offset.Minutes < 0 || tz.Offset.Minutes > 59) {
		return []vcard.Warning{warn(vcard.WarnMinuteOffsetRange, tz.Offset.Minutes)}
	}
	return nil
}
