package xcard

import (
	"io"
	"strings"

	"card-codec/internal/common/errors"
	"card-codec/internal/common/logging"
	"card-codec/internal/common/xmltree"
	"card-codec/internal/scribe"
	"card-codec/internal/vcard"
)

const ns = vcard.XCardNamespace

// Read parses an xCard document. The root may be <vcards> or a single
// <vcard>. Elements outside the xCard namespace are ignored at the record
// level and kept as XML properties inside a record.
func Read(r io.Reader, cfg ReaderConfig) ([]*vcard.Record, vcard.Warnings, error) {
	cfg.normalize()
	log := cfg.Logger.WithFields(logging.String("format", "xcard"))

	root, err := xmltree.Parse(r)
	if err != nil {
		log.Warn("xCard document is not well-formed", logging.Err(err))
		return nil, nil, errors.SyntaxError("xCard document is not well-formed: "+err.Error(), 0)
	}

	var cards []*xmltree.Element
	switch {
	case root.Space == ns && root.Local == elemVCards:
		cards = root.Find(ns, elemVCard)
	case root.Space == ns && root.Local == elemVCard:
		cards = []*xmltree.Element{root}
	default:
		return nil, nil, errors.SyntaxError("root element <"+root.Local+"> is not an xCard <vcards> element", 0)
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

// Parse reads an xCard document held in s.
func Parse(s string, cfg ReaderConfig) ([]*vcard.Record, vcard.Warnings, error) {
	return Read(strings.NewReader(s), cfg)
}

func readRecord(card *xmltree.Element, idx *scribe.Index, log logging.Logger, warnings *vcard.Warnings) *vcard.Record {
	rec := vcard.NewRecord(vcard.V40)
	for _, child := range card.Children {
		if child.Space == ns && child.Local == elemGroup {
			group := child.Attr("name")
			for _, prop := range child.Children {
				readProperty(rec, group, prop, idx, log, warnings)
			}
			continue
		}
		readProperty(rec, "", child, idx, log, warnings)
	}
	return rec
}

func readProperty(rec *vcard.Record, group string, el *xmltree.Element, idx *scribe.Index,
	log logging.Logger, warnings *vcard.Warnings) {
	params := readParams(el)
	ctx := &scribe.ParseContext{Version: vcard.V40, Warnings: warnings, Name: strings.ToUpper(el.Local)}

	out := idx.ParseXML(group, el, params, ctx)
	switch out.Kind {
	case scribe.OutcomeValue, scribe.OutcomeCannotParse:
		rec.AddProperty(out.Property)
	case scribe.OutcomeSkip:
		log.Debug("property skipped", logging.String("property", ctx.Name), logging.String("reason", out.Reason))
	case scribe.OutcomeEmbedded:
		ctx.Warn(vcard.WarnBadEmbedded, "embedded records are not supported in xCard")
	}
}

// readParams collects <parameters>: every child is one parameter whose
// value elements each carry one value.
func readParams(el *xmltree.Element) *vcard.Params {
	params := vcard.NewParams()
	p := el.First(ns, elemParameters)
	if p == nil {
		return params
	}
	for _, param := range p.Children {
		name := strings.ToUpper(param.Local)
		if len(param.Children) == 0 {
			params.Put(name, strings.TrimSpace(param.Text))
			continue
		}
		for _, value := range param.Children {
			params.Put(name, value.Text)
		}
	}
	return params
}
