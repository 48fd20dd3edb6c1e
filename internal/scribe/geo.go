package scribe

import (
	"strconv"
	"strings"

	"card-codec/internal/common/errors"
	"card-codec/internal/common/xmltree"
	"card-codec/internal/vcard"
	"golang.org/x/net/html"
)

// geoScribe serves GEO: "lat;long" before 4.0, a geo: URI in 4.0.
type geoScribe struct{}

func NewGeoScribe() Scribe { return geoScribe{} }

func (geoScribe) Name() string              { return vcard.PropGeo }
func (geoScribe) Versions() []vcard.Version { return allVersions }
func (geoScribe) NewValue() vcard.Value     { return &vcard.Geo{} }
func (geoScribe) HTMLClass() string         { return "geo" }

func (geoScribe) DefaultDataType(v vcard.Version) vcard.DataType {
	if v == vcard.V40 {
		return vcard.DataTypeURI
	}
	return vcard.DataTypeFloat
}

func formatCoord(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func geoURI(g *vcard.Geo) string {
	return "geo:" + formatCoord(g.Latitude) + "," + formatCoord(g.Longitude)
}

func (geoScribe) WriteText(value vcard.Value, ctx *WriteContext) (string, error) {
	g, err := cast[*vcard.Geo](value)
	if err != nil {
		return "", err
	}
	if g.Latitude == nil && g.Longitude == nil {
		return "", errors.SkipError("GEO has no coordinates")
	}
	if ctx.Version == vcard.V40 {
		return geoURI(g), nil
	}
	return formatCoord(g.Latitude) + ";" + formatCoord(g.Longitude), nil
}

// parseGeo reads "geo:lat,long", "lat;long" or "lat,long". A missing
// longitude is tolerated with a warning.
func parseGeo(raw string, ctx *ParseContext) (vcard.Value, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, errors.SkipError(vcard.Message(vcard.WarnEmptyValue))
	}
	sep := ";"
	if len(value) >= 4 && strings.EqualFold(value[:4], "geo:") {
		value = value[4:]
		if i := strings.IndexByte(value, ';'); i >= 0 {
			value = value[:i]
		}
		sep = ","
	} else if !strings.Contains(value, ";") {
		sep = ","
	}

	latPart, longPart, _ := strings.Cut(value, sep)
	latPart, longPart = strings.TrimSpace(latPart), strings.TrimSpace(longPart)

	g := &vcard.Geo{}
	if latPart == "" {
		return nil, errors.CannotParseError(vcard.Message(vcard.WarnMissingLatitude))
	}
	lat, err := strconv.ParseFloat(latPart, 64)
	if err != nil {
		return nil, errors.CannotParseError(vcard.Message(vcard.WarnBadCoordinate, latPart))
	}
	g.Latitude = &lat

	if longPart == "" {
		ctx.Warn(vcard.WarnMissingLongitude)
		return g, nil
	}
	long, err := strconv.ParseFloat(longPart, 64)
	if err != nil {
		return nil, errors.CannotParseError(vcard.Message(vcard.WarnBadCoordinate, longPart))
	}
	g.Longitude = &long
	return g, nil
}

func (geoScribe) ParseText(raw string, dataType vcard.DataType, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	return parseGeo(raw, ctx)
}

func (geoScribe) WriteXML(value vcard.Value, el *xmltree.Element, ctx *WriteContext) error {
	g, err := cast[*vcard.Geo](value)
	if err != nil {
		return err
	}
	addXMLValue(el, vcard.DataTypeURI, geoURI(g))
	return nil
}

func (geoScribe) ParseXML(el *xmltree.Element, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	text, _, _ := xmlValue(el, vcard.DataTypeURI)
	return parseGeo(text, ctx)
}

func (geoScribe) WriteJSON(value vcard.Value, ctx *WriteContext) (JSONValue, error) {
	g, err := cast[*vcard.Geo](value)
	if err != nil {
		return JSONValue{}, err
	}
	return Single(geoURI(g)), nil
}

func (geoScribe) ParseJSON(value JSONValue, dataType vcard.DataType, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	if len(value.Values) == 2 {
		return parseGeo(value.AsMulti()[0]+";"+value.AsMulti()[1], ctx)
	}
	return parseGeo(value.AsSingle(), ctx)
}

func (geoScribe) ParseHTML(el *HTMLElement, params *vcard.Params, ctx *ParseContext) (vcard.Value, error) {
	lat, long := el.FirstWithClass("latitude"), el.FirstWithClass("longitude")
	if lat != nil && long != nil {
		return parseGeo(lat.Value()+";"+long.Value(), ctx)
	}
	return parseGeo(el.Value(), ctx)
}

func (geoScribe) WriteHTML(value vcard.Value, ctx *WriteContext) (*html.Node, error) {
	g, err := cast[*vcard.Geo](value)
	if err != nil {
		return nil, err
	}
	n := NewHTMLNode("span", "geo")
	AppendChildWithText(n, "abbr", "latitude", formatCoord(g.Latitude))
	AppendText(n, ", ")
	AppendChildWithText(n, "abbr", "longitude", formatCoord(g.Longitude))
	return n, nil
}

func (geoScribe) Validate(value vcard.Value, v vcard.Version, params *vcard.Params, record *vcard.Record) []vcard.Warning {
	g, err := cast[*vcard.Geo](value)
	if err != nil {
		return nil
	}
	var warnings []vcard.Warning
	if g.Latitude == nil {
		warnings = append(warnings, warn(vcard.WarnMissingLatitude))
	}
	if g.Longitude == nil {
		warnings = append(warnings, warn(vcard.WarnMissingLongitude))
	}
	return warnings
}
