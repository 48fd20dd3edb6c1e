// Package xcard reads and writes xCard documents (RFC 6351). xCard always
// carries vCard 4.0 semantics; property values go through the scribes of a
// scribe.Index and this package owns the document, group and parameters
// elements.
package xcard

import (
	"strings"

	"card-codec/internal/common/logging"
	"card-codec/internal/scribe"
	"card-codec/internal/vcard"
)

// MediaType is the xCard media type.
const MediaType = "application/vcard+xml"

const (
	elemVCards     = "vcards"
	elemVCard      = "vcard"
	elemGroup      = "group"
	elemParameters = "parameters"
)

// paramTypes holds the value element used for a parameter; anything else
// is <text>.
var paramTypes = map[string]vcard.DataType{
	vcard.ParamLanguage: vcard.DataTypeLanguageTag,
	vcard.ParamPref:     vcard.DataTypeInteger,
	vcard.ParamIndex:    vcard.DataTypeInteger,
	vcard.ParamGeo:      vcard.DataTypeURI,
}

func paramType(name string) vcard.DataType {
	if dt, ok := paramTypes[strings.ToUpper(name)]; ok {
		return dt
	}
	return vcard.DataTypeText
}

// ReaderConfig configures Read.
type ReaderConfig struct {
	Index  *scribe.Index
	Logger logging.Logger
}

func (c *ReaderConfig) normalize() {
	if c.Index == nil {
		c.Index = scribe.NewDefaultIndex()
	}
	c.Logger = logging.OrNop(c.Logger)
}

// WriterConfig configures Write.
type WriterConfig struct {
	Index  *scribe.Index
	Logger logging.Logger
	// Indent pretty-prints the document.
	Indent bool
	// ProductID is added as PRODID to records without one when
	// IncludeProductID is set.
	ProductID        string
	IncludeProductID bool
}

func (c *WriterConfig) normalize() {
	if c.Index == nil {
		c.Index = scribe.NewDefaultIndex()
	}
	c.Logger = logging.OrNop(c.Logger)
}
