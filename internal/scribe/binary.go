package scribe

import (
	"encoding/base64"
	"regexp"
	"strings"

	"card-codec/internal/common/errors"
	"card-codec/internal/common/xmltree"
	"card-codec/internal/vcard"
	"golang.org/x/net/html"
)

type binaryHolder interface {
	vcard.Value
	URL() string
	Data() []byte
	Text() string
	ContentType() string
	SetURL(url, contentType string)
	SetData(data []byte, contentType string)
	SetText(text, contentType string)
	SetContentType(string)
	IsEmpty() bool
}

const defaultMediaType = "application/octet-stream"

var urlPattern = regexp.MustCompile(`(?i)^https?://`)

// binaryScribe serves PHOTO, LOGO, SOUND and KEY.
type binaryScribe[T any, PT interface {
	*T
	binaryHolder
}] struct {
	name     string
	topLevel string
	img      bool
}

func (s *binaryScribe[T, PT]) Name() string              { return s.name }
func (s *binaryScribe[T, PT]) Versions() []vcard.Version { return allVersions }
func (s *binaryScribe[T, PT]) NewValue() vcard.Value     { return PT(new(T)) }
func (s *binaryScribe[T, PT]) HTMLClass() string         { return strings.ToLower(s.name) }

func (s *binaryScribe[T, PT]) DefaultDataType(v vcard.Version) vcard.DataType {
	switch v {
	case vcard.V21:
		return vcard.DataTypeNone
	case vcard.V30:
		return vcard.DataTypeBinary
	default:
		return vcard.DataTypeURI
	}
}

func (s *binaryScribe[T, PT]) DataType(value vcard.Value, v vcard.Version) vcard.DataType {
	b, err := cast[PT](value)
	if err != nil {
		return s.DefaultDataType(v)
	}
	switch {
	case b.URL() != "":
		return uriOrURL(v)
	case b.Text() != "":
		return vcard.DataTypeText
	default:
		return s.DefaultDataType(v)
	}
}

// PrepareParams derives ENCODING and the media type parameter from the
// populated slot.
func (s *binaryScribe[T, PT]) PrepareParams(prop *vcard.Property, params *vcard.Params, ctx *WriteContext) {
	b, err := cast[PT](prop.Value)
	if err != nil {
		return
	}
	params.RemoveAll(vcard.ParamEncoding)
	params.RemoveAll(vcard.ParamMediaType)

	contentType := b.ContentType()
	if ctx.Version == vcard.V40 {
		if contentType != "" && b.Data() == nil {
			params.SetMediaType(contentType)
		}
		return
	}

	if sub := vcard.MediaSubtype(contentType); sub != "" {
		params.Replace(vcard.ParamType, sub)
	}
	if b.Data() != nil {
		if ctx.Version == vcard.V21 {
			params.SetEncoding(vcard.EncodingBase64)
		} else {
			params.SetEncoding(vcard.EncodingB)
		}
	}
}

func dataURI(data []byte, contentType string) string {
	if contentType == "" {
		contentType = defaultMediaType
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// parseDataURI decodes "data:[mediatype][;base64],payload".
func parseDataURI(uri string) ([]byte, string, bool, error) {
	if len(uri) < 5 || !strings.EqualFold(uri[:5], "data:") {
		return nil, "", false, nil
	}
	meta, payload, ok := strings.Cut(uri[5:], ",")
	if !ok {
		return nil, "", true, errors.CannotParseError("data URI has no payload")
	}
	isBase64 := false
	if strings.HasSuffix(strings.ToLower(meta), ";base64") {
		isBase64 = true
		meta = meta[:len(meta)-len(";base64")]
	}
	contentType := strings.ToLower(meta)
	if !isBase64 {
		return []byte(payload), contentType, true, nil
	}
	data, err := decodeBase64(payload)
	if err != nil {
		return nil, "", true, errors.CannotParseError(vcard.Message(vcard.WarnBadBase64, err.Error()))
	}
	return data, contentType, true, nil
}

func decodeBase64(s string) ([]byte, error) {
	clean := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			return -1
		}
		return r
	}, s)
	data, err := base64.StdEncoding.DecodeString(clean)
	if err != nil {
		if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(clean, "=")); rawErr == nil {
			return raw, nil
		}
		return nil, err
	}
	return data, nil
}

// contentTypeFrom consumes the media type parameters: MEDIATYPE, and for
// 2.1/3.0 the TYPE values that name a format ("JPEG").
func (s *binaryScribe[T, PT]) contentTypeFrom(params *vcard.Params, v vcard.Version) string {
	if mt := params.MediaType(); mt != "" {
		params.RemoveAll(vcard.ParamMediaType)
		return strings.ToLower(mt)
	}
	if v == vcard.V40 {
		return ""
	}
	types := params.Types()
	if len(types) == 0 {
		return ""
	}
	params.RemoveAll(vcard.ParamType)
	return vcard.MediaTypeFromSubtype(types[0], s.topLevel)
}

func (s *binaryScribe[T, PT]) ParseText(raw string, dataType vcard.DataType, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	v := PT(new(T))
	value := strings.TrimSpace(raw)
	contentType := s.contentTypeFrom(params, ctx.Version)
	encoding := params.Encoding()
	params.RemoveAll(vcard.ParamEncoding)

	if value == "" {
		return nil, errors.SkipError(vcard.Message(vcard.WarnEmptyValue))
	}

	data, mediaType, isDataURI, err := parseDataURI(value)
	if err != nil {
		return nil, err
	}
	if isDataURI {
		if mediaType == "" {
			mediaType = contentType
		}
		v.SetData(data, mediaType)
		return v, nil
	}

	switch {
	case dataType == vcard.DataTypeText:
		v.SetText(vcard.UnescapeText(raw), contentType)
		return v, nil
	case isURIType(dataType) && (ctx.Version != vcard.V40 || encoding == ""):
		v.SetURL(value, contentType)
		return v, nil
	case encoding != "":
		if !strings.EqualFold(encoding, vcard.EncodingB) && !strings.EqualFold(encoding, vcard.EncodingBase64) {
			ctx.Warn(vcard.WarnUnknownEncoding, encoding)
		}
		return s.decodeInto(v, value, contentType)
	case urlPattern.MatchString(value):
		ctx.Warn(vcard.WarnAssumedURL)
		v.SetURL(value, contentType)
		return v, nil
	default:
		ctx.Warn(vcard.WarnAssumedBase64)
		return s.decodeInto(v, value, contentType)
	}
}

func (s *binaryScribe[T, PT]) decodeInto(v PT, value, contentType string) (vcard.Value, error) {
	data, err := decodeBase64(value)
	if err != nil {
		return nil, errors.CannotParseError(vcard.Message(vcard.WarnBadBase64, err.Error()))
	}
	v.SetData(data, contentType)
	return v, nil
}

func (s *binaryScribe[T, PT]) WriteText(value vcard.Value, ctx *WriteContext) (string, error) {
	b, err := cast[PT](value)
	if err != nil {
		return "", err
	}
	switch {
	case b.URL() != "":
		return b.URL(), nil
	case b.Data() != nil:
		if ctx.Version == vcard.V40 {
			return dataURI(b.Data(), b.ContentType()), nil
		}
		return base64.StdEncoding.EncodeToString(b.Data()), nil
	case b.Text() != "":
		return vcard.EscapeText(b.Text(), ctx.Version), nil
	}
	return "", errors.SkipError(s.name + " has no URL, data or text")
}

func (s *binaryScribe[T, PT]) uri(b PT) (string, error) {
	switch {
	case b.URL() != "":
		return b.URL(), nil
	case b.Data() != nil:
		return dataURI(b.Data(), b.ContentType()), nil
	}
	return "", errors.SkipError(s.name + " has no URL, data or text")
}

func (s *binaryScribe[T, PT]) fromURI(uri, contentType string) (vcard.Value, error) {
	v := PT(new(T))
	data, dataContentType, isDataURI, err := parseDataURI(uri)
	if err != nil {
		return nil, err
	}
	if isDataURI {
		v.SetData(data, dataContentType)
		return v, nil
	}
	v.SetURL(uri, contentType)
	return v, nil
}

func (s *binaryScribe[T, PT]) WriteXML(value vcard.Value, el *xmltree.Element, ctx *WriteContext) error {
	b, err := cast[PT](value)
	if err != nil {
		return err
	}
	if b.Text() != "" {
		addXMLValue(el, vcard.DataTypeText, b.Text())
		return nil
	}
	uri, err := s.uri(b)
	if err != nil {
		return err
	}
	addXMLValue(el, vcard.DataTypeURI, uri)
	return nil
}

func (s *binaryScribe[T, PT]) ParseXML(el *xmltree.Element, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	contentType := s.contentTypeFrom(params, vcard.V40)
	if text, _, ok := xmlValue(el, vcard.DataTypeText); ok {
		v := PT(new(T))
		v.SetText(text, contentType)
		return v, nil
	}
	uri, _, ok := xmlValue(el, vcard.DataTypeURI)
	if !ok {
		return nil, errors.CannotParseError(s.name + " element has no uri value")
	}
	return s.fromURI(strings.TrimSpace(uri), contentType)
}

func (s *binaryScribe[T, PT]) WriteJSON(value vcard.Value, ctx *WriteContext) (JSONValue, error) {
	b, err := cast[PT](value)
	if err != nil {
		return JSONValue{}, err
	}
	if b.Text() != "" {
		return Single(b.Text()), nil
	}
	uri, err := s.uri(b)
	if err != nil {
		return JSONValue{}, err
	}
	return Single(uri), nil
}

func (s *binaryScribe[T, PT]) ParseJSON(value JSONValue, dataType vcard.DataType, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	contentType := s.contentTypeFrom(params, vcard.V40)
	if dataType == vcard.DataTypeText {
		v := PT(new(T))
		v.SetText(value.AsSingle(), contentType)
		return v, nil
	}
	return s.fromURI(strings.TrimSpace(value.AsSingle()), contentType)
}

func (s *binaryScribe[T, PT]) ParseHTML(el *HTMLElement, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	params.RemoveAll(vcard.ParamType)
	contentType := el.Attr("type")
	for _, attrName := range []string{"src", "href", "data"} {
		if ref := el.AbsURL(attrName); ref != "" {
			return s.fromURI(ref, contentType)
		}
	}
	text := el.Value()
	if text == "" {
		return nil, errors.SkipError(vcard.Message(vcard.WarnEmptyValue))
	}
	v := PT(new(T))
	v.SetText(text, contentType)
	return v, nil
}

func (s *binaryScribe[T, PT]) WriteHTML(value vcard.Value, ctx *WriteContext) (*html.Node, error) {
	b, err := cast[PT](value)
	if err != nil {
		return nil, err
	}
	if b.Text() != "" {
		n := NewHTMLNode("span", s.HTMLClass())
		AppendText(n, b.Text())
		return n, nil
	}
	uri, err := s.uri(b)
	if err != nil {
		return nil, err
	}
	if s.img {
		n := NewHTMLNode("img", s.HTMLClass())
		SetAttr(n, "src", uri)
		return n, nil
	}
	n := NewHTMLNode("a", s.HTMLClass())
	SetAttr(n, "href", uri)
	if ct := b.ContentType(); ct != "" {
		SetAttr(n, "type", ct)
	}
	AppendText(n, strings.ToLower(s.name))
	return n, nil
}

func (s *binaryScribe[T, PT]) Validate(value vcard.Value, v vcard.Version, params *vcard.Params, record *vcard.Record) []vcard.Warning {
	b, err := cast[PT](value)
	if err != nil {
		return nil
	}
	if b.IsEmpty() {
		return []vcard.Warning{warn(vcard.WarnEmptyValue)}
	}
	return nil
}

func NewPhotoScribe() Scribe {
	return &binaryScribe[vcard.Photo, *vcard.Photo]{name: vcard.PropPhoto, topLevel: "image", img: true}
}

func NewLogoScribe() Scribe {
	return &binaryScribe[vcard.Logo, *vcard.Logo]{name: vcard.PropLogo, topLevel: "image", img: true}
}

func NewSoundScribe() Scribe {
	return &binaryScribe[vcard.Sound, *vcard.Sound]{name: vcard.PropSound, topLevel: "audio"}
}

func NewKeyScribe() Scribe {
	return &binaryScribe[vcard.Key, *vcard.Key]{name: vcard.PropKey, topLevel: "application"}
}
