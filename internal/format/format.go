// Package format dispatches reading and writing to the vCard text, xCard,
// jCard and hCard drivers.
package format

import (
	"bytes"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"card-codec/internal/common/errors"
	"card-codec/internal/common/logging"
	"card-codec/internal/format/hcard"
	"card-codec/internal/format/jcard"
	"card-codec/internal/format/vcf"
	"card-codec/internal/format/xcard"
	"card-codec/internal/scribe"
	"card-codec/internal/vcard"
)

// Format names one serialization.
type Format string

const (
	VCF   Format = "vcf"
	XCard Format = "xcard"
	JCard Format = "jcard"
	HCard Format = "hcard"
)

// VCFMediaType is the media type of vCard text.
const VCFMediaType = "text/vcard"

// All lists every format in negotiation preference order.
var All = []Format{VCF, XCard, JCard, HCard}

var aliases = map[string]Format{
	"vcf":   VCF,
	"vcard": VCF,
	"text":  VCF,
	"xcard": XCard,
	"xml":   XCard,
	"jcard": JCard,
	"json":  JCard,
	"hcard": HCard,
	"html":  HCard,
	"htm":   HCard,
}

var mediaTypes = map[Format]string{
	VCF:   VCFMediaType,
	XCard: xcard.MediaType,
	JCard: jcard.MediaType,
	HCard: hcard.MediaType,
}

// Parse resolves a format name or alias such as "json" or "html".
func Parse(name string) (Format, error) {
	if f, ok := aliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return f, nil
	}
	return "", errors.ValidationError("unknown format \"" + name + "\"")
}

// ForPath guesses the format from a file extension.
func ForPath(path string) (Format, bool) {
	f, ok := aliases[strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))]
	return f, ok
}

// ForMediaType resolves a Content-Type or Accept entry. text/x-vcard and
// text/directory are read as vCard text; application/xhtml+xml as hCard.
func ForMediaType(value string) (Format, bool) {
	mt, _, err := mime.ParseMediaType(value)
	if err != nil {
		return "", false
	}
	switch mt {
	case "text/x-vcard", "text/directory":
		return VCF, true
	case "application/xhtml+xml":
		return HCard, true
	}
	for f, t := range mediaTypes {
		if t == mt {
			return f, true
		}
	}
	return "", false
}

// Sniff guesses the format of data from its first bytes: a JSON array is
// jCard, XML in the vCard 4.0 namespace is xCard, other markup is hCard and
// anything else is vCard text.
func Sniff(data []byte) Format {
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")), " \t\r\n")
	switch {
	case bytes.HasPrefix(trimmed, []byte("[")):
		return JCard
	case bytes.HasPrefix(trimmed, []byte("<")):
		head := trimmed
		if len(head) > 1024 {
			head = head[:1024]
		}
		if bytes.Contains(head, []byte(vcard.XCardNamespace)) {
			return XCard
		}
		return HCard
	}
	return VCF
}

// MediaType returns the media type the format is served as.
func (f Format) MediaType() string {
	return mediaTypes[f]
}

// Options carries the settings of every driver. Drivers ignore the fields
// that do not apply to them.
type Options struct {
	Index  *scribe.Index
	Logger logging.Logger

	// Version is the vCard text version written. xCard and jCard always
	// write 4.0, hCard 3.0.
	Version          vcard.Version
	FoldLength       int
	CaretEncoding    bool
	ProductID        string
	IncludeProductID bool
	MaxDepth         int

	// BaseURL resolves relative hCard links.
	BaseURL string
	// Document writes hCards as a complete HTML page, Indent pretty-prints
	// xCard and jCard.
	Document bool
	Title    string
	Indent   bool
}

// Decode reads every record of r.
func Decode(f Format, r io.Reader, opts Options) ([]*vcard.Record, vcard.Warnings, error) {
	switch f {
	case VCF:
		return vcf.ReadAll(r, vcf.ReaderConfig{
			Index:          opts.Index,
			Logger:         opts.Logger,
			MaxDepth:       opts.MaxDepth,
			DefaultVersion: vcard.V21,
			CaretDecoding:  true,
		})
	case XCard:
		return xcard.Read(r, xcard.ReaderConfig{Index: opts.Index, Logger: opts.Logger})
	case JCard:
		return jcard.Read(r, jcard.ReaderConfig{Index: opts.Index, Logger: opts.Logger})
	case HCard:
		return hcard.Read(r, hcard.ReaderConfig{
			Index:    opts.Index,
			Logger:   opts.Logger,
			BaseURL:  opts.BaseURL,
			MaxDepth: opts.MaxDepth,
		})
	}
	return nil, nil, errors.UnsupportedError("format \"" + string(f) + "\"")
}

// Encode writes records to w.
func Encode(f Format, w io.Writer, records []*vcard.Record, opts Options) (vcard.Warnings, error) {
	switch f {
	case VCF:
		writer := vcf.NewWriter(w, vcf.WriterConfig{
			Index:            opts.Index,
			Logger:           opts.Logger,
			Version:          opts.Version,
			FoldLength:       opts.FoldLength,
			CaretEncoding:    opts.CaretEncoding,
			ProductID:        opts.ProductID,
			IncludeProductID: opts.IncludeProductID,
			MaxDepth:         opts.MaxDepth,
		})
		var warnings vcard.Warnings
		for _, rec := range records {
			err := writer.Write(rec)
			warnings = append(warnings, writer.Warnings()...)
			if err != nil {
				return warnings, err
			}
		}
		return warnings, nil
	case XCard:
		return xcard.Write(w, records, xcard.WriterConfig{
			Index:            opts.Index,
			Logger:           opts.Logger,
			Indent:           opts.Indent,
			ProductID:        opts.ProductID,
			IncludeProductID: opts.IncludeProductID,
		})
	case JCard:
		return jcard.Write(w, records, jcard.WriterConfig{
			Index:            opts.Index,
			Logger:           opts.Logger,
			Indent:           opts.Indent,
			ProductID:        opts.ProductID,
			IncludeProductID: opts.IncludeProductID,
		})
	case HCard:
		return hcard.Write(w, records, hcard.WriterConfig{
			Index:    opts.Index,
			Logger:   opts.Logger,
			Document: opts.Document,
			Title:    opts.Title,
		})
	}
	return nil, errors.UnsupportedError("format \"" + string(f) + "\"")
}
