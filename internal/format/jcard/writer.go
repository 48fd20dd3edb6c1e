package jcard

import (
	"encoding/json"
	"io"
	"strings"

	"card-codec/internal/common/errors"
	"card-codec/internal/common/logging"
	"card-codec/internal/scribe"
	"card-codec/internal/vcard"
)

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

// Write renders records as jCard. A single record is written as one card;
// several as an array of cards.
func Write(w io.Writer, records []*vcard.Record, cfg WriterConfig) (vcard.Warnings, error) {
	cfg.normalize()
	log := cfg.Logger.WithFields(logging.String("format", "jcard"))

	var warnings vcard.Warnings
	cards := make([]interface{}, 0, len(records))
	for _, r := range records {
		cards = append(cards, writeRecord(r, cfg, log, &warnings))
	}

	var doc interface{} = cards
	if len(cards) == 1 {
		doc = cards[0]
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if cfg.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return warnings, errors.IOError("writing jCard document", err)
	}
	return warnings, nil
}

// Marshal renders records as a string.
func Marshal(records []*vcard.Record, cfg WriterConfig) (string, vcard.Warnings, error) {
	var b strings.Builder
	warnings, err := Write(&b, records, cfg)
	if err != nil {
		return "", warnings, err
	}
	return b.String(), warnings, nil
}

func writeRecord(r *vcard.Record, cfg WriterConfig, log logging.Logger, warnings *vcard.Warnings) []interface{} {
	props := []interface{}{
		[]interface{}{"version", map[string]interface{}{}, string(vcard.DataTypeText), vcard.V40.String()},
	}

	source := r.Properties
	if cfg.IncludeProductID && cfg.ProductID != "" && len(vcard.Find[*vcard.ProductID](r)) == 0 {
		source = append([]*vcard.Property{vcard.NewProperty(vcard.NewText[vcard.ProductID](cfg.ProductID))}, source...)
	}

	for _, prop := range source {
		ctx := &scribe.WriteContext{Version: vcard.V40, Record: r, Warnings: warnings}
		written, value, err := cfg.Index.WriteJSON(prop, ctx)
		if err != nil {
			log.Debug("property skipped", logging.String("property", ctx.Name), logging.Err(err))
			continue
		}

		dataType := string(written.DataType)
		if dataType == "" {
			dataType = string(vcard.DataTypeUnknown)
		}
		entry := []interface{}{strings.ToLower(written.Name), writeParams(written), dataType}
		entry = append(entry, value.Values...)
		props = append(props, entry)
	}
	return []interface{}{"vcard", props}
}

// writeParams builds the parameters object. Multi-valued parameters become
// arrays, TYPE values joined by commas are split.
func writeParams(written *scribe.Written) map[string]interface{} {
	obj := map[string]interface{}{}
	if written.Group != "" {
		obj[paramGroup] = written.Group
	}
	for _, name := range written.Params.Names() {
		var values []string
		for _, v := range written.Params.GetAll(name) {
			if name == vcard.ParamType {
				values = append(values, strings.Split(v, ",")...)
				continue
			}
			values = append(values, v)
		}
		key := strings.ToLower(name)
		if len(values) == 1 {
			obj[key] = values[0]
			continue
		}
		obj[key] = values
	}
	return obj
}
