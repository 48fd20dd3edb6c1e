package scribe

import (
	"fmt"
	"regexp"

	"card-codec/internal/common/errors"
	"card-codec/internal/vcard"
)

var (
	allVersions = []vcard.Version{vcard.V21, vcard.V30, vcard.V40}
	v30And40    = []vcard.Version{vcard.V30, vcard.V40}
	v21And30    = []vcard.Version{vcard.V21, vcard.V30}
	only30      = []vcard.Version{vcard.V30}
	only40      = []vcard.Version{vcard.V40}
)

func fixed(dt vcard.DataType) func(vcard.Version) vcard.DataType {
	return func(vcard.Version) vcard.DataType { return dt }
}

// uriOrURL is "url" in 2.1 and "uri" afterwards.
func uriOrURL(v vcard.Version) vcard.DataType {
	if v == vcard.V21 {
		return vcard.DataTypeURL
	}
	return vcard.DataTypeURI
}

func isURIType(dt vcard.DataType) bool {
	switch dt {
	case vcard.DataTypeURI, vcard.DataTypeURL, vcard.DataTypeContentID:
		return true
	}
	return false
}

func cast[PT vcard.Value](value vcard.Value) (PT, error) {
	v, ok := value.(PT)
	if !ok {
		var zero PT
		return zero, errors.InternalError(fmt.Sprintf("unexpected value type %T", value), nil)
	}
	return v, nil
}

// warn builds a warning without position; Validate callers fill in the
// property name.
func warn(code int, args ...interface{}) vcard.Warning {
	return vcard.NewWarning(code, args...)
}

var uriPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*:\S+$`)

// isURI reports whether s has the shape scheme:rest.
func isURI(s string) bool {
	return uriPattern.MatchString(s)
}
