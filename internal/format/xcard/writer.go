package xcard

import (
	"bytes"
	"io"
	"strings"

	"card-codec/internal/common/errors"
	"card-codec/internal/common/logging"
	"card-codec/internal/common/xmltree"
	"card-codec/internal/scribe"
	"card-codec/internal/vcard"
)

// Write renders records as one <vcards> document. Properties without an
// xCard form are left out with a warning.
func Write(w io.Writer, records []*vcard.Record, cfg WriterConfig) (vcard.Warnings, error) {
	cfg.normalize()
	log := cfg.Logger.WithFields(logging.String("format", "xcard"))

	var warnings vcard.Warnings
	root := xmltree.New(ns, elemVCards)
	for _, r := range records {
		root.Append(writeRecord(r, cfg, log, &warnings))
	}

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	if cfg.Indent {
		buf.WriteByte('\n')
	}
	if err := root.Encode(&buf, cfg.Indent); err != nil {
		return warnings, errors.InternalError("encoding xCard document", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return warnings, errors.IOError("writing xCard document", err)
	}
	return warnings, nil
}

// Marshal renders records as a string.
func Marshal(records []*vcard.Record, cfg WriterConfig) (string, vcard.Warnings, error) {
	var buf bytes.Buffer
	warnings, err := Write(&buf, records, cfg)
	if err != nil {
		return "", warnings, err
	}
	return buf.String(), warnings, nil
}

func writeRecord(r *vcard.Record, cfg WriterConfig, log logging.Logger, warnings *vcard.Warnings) *xmltree.Element {
	card := xmltree.New(ns, elemVCard)
	groups := map[string]*xmltree.Element{}

	props := r.Properties
	if cfg.IncludeProductID && cfg.ProductID != "" && len(vcard.Find[*vcard.ProductID](r)) == 0 {
		prodID := vcard.NewProperty(vcard.NewText[vcard.ProductID](cfg.ProductID))
		props = append([]*vcard.Property{prodID}, props...)
	}

	for _, prop := range props {
		ctx := &scribe.WriteContext{Version: vcard.V40, Record: r, Warnings: warnings}
		written, el, err := cfg.Index.WriteXML(prop, ctx)
		if err != nil {
			log.Debug("property skipped", logging.String("property", ctx.Name), logging.Err(err))
			continue
		}
		if !written.Params.IsEmpty() && el.Space == ns && el.First(ns, elemParameters) == nil {
			el.Children = append([]*xmltree.Element{writeParams(written.Params)}, el.Children...)
		}

		if written.Group == "" {
			card.Append(el)
			continue
		}
		g, ok := groups[strings.ToLower(written.Group)]
		if !ok {
			g = card.Add(elemGroup)
			g.SetAttr("name", written.Group)
			groups[strings.ToLower(written.Group)] = g
		}
		g.Append(el)
	}
	return card
}

func writeParams(params *vcard.Params) *xmltree.Element {
	el := xmltree.New(ns, elemParameters)
	for _, name := range params.Names() {
		param := el.Add(strings.ToLower(name))
		dt := paramType(name)
		for _, value := range params.GetAll(name) {
			if name == vcard.ParamType || name == vcard.ParamSortAs || name == vcard.ParamPid {
				for _, item := range strings.Split(value, ",") {
					param.AddText(string(dt), item)
				}
				continue
			}
			param.AddText(string(dt), value)
		}
	}
	return el
}
