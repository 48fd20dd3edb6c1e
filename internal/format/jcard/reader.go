// Package jcard reads and writes jCard documents (RFC 7095). A jCard is the
// array ["vcard", [property...]] where each property is
// [name, parameters, data type, value...]; a document may also be an array
// of such cards.
package jcard

import (
	"io"
	"strings"

	"card-codec/internal/common/errors"
	"card-codec/internal/common/logging"
	"card-codec/internal/scribe"
	"card-codec/internal/vcard"
	"github.com/tidwall/gjson"
)

// MediaType is the jCard media type.
const MediaType = "application/vcard+json"

const paramGroup = "group"

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

// Read parses a jCard document from r.
func Read(r io.Reader, cfg ReaderConfig) ([]*vcard.Record, vcard.Warnings, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, errors.IOError("reading jCard document", err)
	}
	return Parse(string(data), cfg)
}

// Parse reads a jCard document held in s.
func Parse(s string, cfg ReaderConfig) ([]*vcard.Record, vcard.Warnings, error) {
	cfg.normalize()
	log := cfg.Logger.WithFields(logging.String("format", "jcard"))

	if !gjson.Valid(s) {
		log.Warn("jCard document is not valid JSON")
		return nil, nil, errors.SyntaxError("jCard document is not valid JSON", 0)
	}
	root := gjson.Parse(s)
	if !root.IsArray() {
		return nil, nil, errors.SyntaxError("jCard document is not an array", 0)
	}

	var cards []gjson.Result
	if isCard(root) {
		cards = []gjson.Result{root}
	} else {
		for _, c := range root.Array() {
			if !isCard(c) {
				return nil, nil, errors.SyntaxError(`jCard document holds an element that is not a ["vcard", [...]] array`, 0)
			}
			cards = append(cards, c)
		}
	}

	var (
		records  []*vcard.Record
		warnings vcard.Warnings
	)
	for _, card := range cards {
		records = append(records, readRecord(card, cfg.Index, log, &warnings))
	}
	return records, warnings, nil
}

func isCard(r gjson.Result) bool {
	return r.IsArray() && r.Get("0").String() == "vcard" && r.Get("1").IsArray()
}

func readRecord(card gjson.Result, idx *scribe.Index, log logging.Logger, warnings *vcard.Warnings) *vcard.Record {
	rec := vcard.NewRecord(vcard.V40)
	for i, prop := range card.Get("1").Array() {
		line := i + 1
		parts := prop.Array()
		if !prop.IsArray() || len(parts) < 4 {
			w := vcard.NewWarning(vcard.WarnMalformedLine, prop.Raw)
			w.Line = line
			warnings.Add(w)
			continue
		}

		name := strings.ToUpper(parts[0].String())
		if name == vcard.PropVersion {
			continue
		}
		group, params := readParams(parts[1])

		value := scribe.JSONValue{Values: make([]interface{}, 0, len(parts)-3)}
		for _, v := range parts[3:] {
			value.Values = append(value.Values, v.Value())
		}

		ctx := &scribe.ParseContext{Version: vcard.V40, Warnings: warnings, Line: line, Name: name}
		out := idx.ParseJSON(group, name, params, parts[2].String(), value, ctx)
		switch out.Kind {
		case scribe.OutcomeValue, scribe.OutcomeCannotParse:
			rec.AddProperty(out.Property)
		case scribe.OutcomeSkip:
			log.Debug("property skipped", logging.String("property", name), logging.String("reason", out.Reason))
		case scribe.OutcomeEmbedded:
			ctx.Warn(vcard.WarnBadEmbedded, "embedded records are not supported in jCard")
		}
	}
	return rec
}

// readParams converts the parameters object. The "group" member is the
// property group, not a parameter.
func readParams(obj gjson.Result) (string, *vcard.Params) {
	params := vcard.NewParams()
	var group string
	obj.ForEach(func(key, value gjson.Result) bool {
		name := strings.ToUpper(key.String())
		if strings.EqualFold(name, paramGroup) {
			group = value.String()
			return true
		}
		if value.IsArray() {
			for _, item := range value.Array() {
				params.Put(name, item.String())
			}
			return true
		}
		params.Put(name, value.String())
		return true
	})
	return group, params
}
