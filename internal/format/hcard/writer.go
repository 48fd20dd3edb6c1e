package hcard

import (
	"io"

	"card-codec/internal/common/errors"
	"card-codec/internal/common/logging"
	"card-codec/internal/scribe"
	"card-codec/internal/vcard"
	"golang.org/x/net/html"
)

// WriterConfig configures Write.
type WriterConfig struct {
	Index  *scribe.Index
	Logger logging.Logger
	// Document wraps the hCards in a complete HTML page titled Title.
	Document bool
	Title    string
}

func (c *WriterConfig) normalize() {
	if c.Index == nil {
		c.Index = scribe.NewDefaultIndex()
	}
	c.Logger = logging.OrNop(c.Logger)
}

// Write renders each record as a <div class="vcard">. Properties are written
// with vCard 3.0 semantics; those without an hCard form become spans holding
// their text value.
func Write(w io.Writer, records []*vcard.Record, cfg WriterConfig) (vcard.Warnings, error) {
	cfg.normalize()
	log := cfg.Logger.WithFields(logging.String("format", "hcard"))

	var warnings vcard.Warnings
	cards := make([]*html.Node, 0, len(records))
	for _, r := range records {
		cards = append(cards, writeRecord(r, cfg.Index, log, &warnings))
	}

	if cfg.Document {
		if _, err := io.WriteString(w, "<!DOCTYPE html>\n"); err != nil {
			return warnings, errors.IOError("writing hCard document", err)
		}
		if err := html.Render(w, page(cfg.Title, cards)); err != nil {
			return warnings, errors.IOError("writing hCard document", err)
		}
		return warnings, nil
	}

	for _, card := range cards {
		if err := html.Render(w, card); err != nil {
			return warnings, errors.IOError("writing hCard document", err)
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return warnings, errors.IOError("writing hCard document", err)
		}
	}
	return warnings, nil
}

func writeRecord(r *vcard.Record, idx *scribe.Index, log logging.Logger, warnings *vcard.Warnings) *html.Node {
	card := scribe.NewHTMLNode("div", classRoot)
	for _, prop := range scribe.ExpandLabels(r, vcard.V30) {
		ctx := &scribe.WriteContext{Version: vcard.V30, Record: r, Warnings: warnings}
		node, err := idx.WriteHTML(prop, ctx)
		if err != nil {
			log.Debug("property skipped", logging.String("property", ctx.Name), logging.Err(err))
			continue
		}
		card.AppendChild(node)
	}
	return card
}

func page(title string, cards []*html.Node) *html.Node {
	doc := scribe.NewHTMLNode("html", "")
	head := scribe.NewHTMLNode("head", "")
	meta := scribe.NewHTMLNode("meta", "")
	scribe.SetAttr(meta, "charset", "utf-8")
	head.AppendChild(meta)
	t := scribe.NewHTMLNode("title", "")
	scribe.AppendText(t, title)
	head.AppendChild(t)
	doc.AppendChild(head)

	body := scribe.NewHTMLNode("body", "")
	for _, card := range cards {
		body.AppendChild(card)
	}
	doc.AppendChild(body)
	return doc
}
