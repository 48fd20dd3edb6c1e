package vcard

import "strings"

// Binary is the value of PHOTO, LOGO, SOUND and KEY. Exactly one of the URL,
// inline data or text slots is populated; each setter clears the others.
type Binary struct {
	valueMarker
	url         string
	data        []byte
	text        string
	contentType string
}

// URL returns the remote location, or "".
func (b *Binary) URL() string { return b.url }

// Data returns the inline bytes, or nil.
func (b *Binary) Data() []byte { return b.data }

// Text returns the plain text value (KEY only), or "".
func (b *Binary) Text() string { return b.text }

// ContentType returns the media type, e.g. "image/jpeg", or "".
func (b *Binary) ContentType() string { return b.contentType }

// SetContentType replaces the media type without touching the content.
func (b *Binary) SetContentType(contentType string) { b.contentType = contentType }

// SetURL stores a remote location and clears data and text.
func (b *Binary) SetURL(url, contentType string) {
	b.url, b.data, b.text = url, nil, ""
	b.contentType = contentType
}

// SetData stores inline bytes and clears URL and text.
func (b *Binary) SetData(data []byte, contentType string) {
	b.url, b.data, b.text = "", data, ""
	b.contentType = contentType
}

// SetText stores plain text and clears URL and data.
func (b *Binary) SetText(text, contentType string) {
	b.url, b.data, b.text = "", nil, text
	b.contentType = contentType
}

// IsEmpty reports whether no slot is populated.
func (b *Binary) IsEmpty() bool {
	return b.url == "" && b.data == nil && b.text == ""
}

// Binary properties.
type (
	Photo struct{ Binary }
	Logo  struct{ Binary }
	Sound struct{ Binary }
	Key   struct{ Binary }
)

// MediaSubtype returns the upper-cased subtype of a media type, the form
// 2.1 and 3.0 use in TYPE ("image/jpeg" -> "JPEG").
func MediaSubtype(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, sub, ok := strings.Cut(contentType, "/")
	if !ok {
		sub = contentType
	}
	if i := strings.IndexByte(sub, ';'); i >= 0 {
		sub = sub[:i]
	}
	return strings.ToUpper(strings.TrimSpace(sub))
}

// MediaTypeFromSubtype expands a 2.1/3.0 TYPE value to a media type using
// the top-level type appropriate for the property ("JPEG", "image" ->
// "image/jpeg"). Values that already contain a slash are lower-cased only.
func MediaTypeFromSubtype(subtype, topLevel string) string {
	s := strings.ToLower(strings.TrimSpace(subtype))
	if s == "" || strings.Contains(s, "/") {
		return s
	}
	switch s {
	case "pgp":
		return "application/pgp-keys"
	case "x509":
		return "application/x-x509-ca-cert"
	}
	return topLevel + "/" + s
}
