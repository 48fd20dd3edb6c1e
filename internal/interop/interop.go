// Package interop converts records to and from github.com/emersion/go-vcard
// cards, the type used by CardDAV servers and clients such as go-webdav.
//
// Conversion goes through vCard 4.0 text: the record is written with the vcf
// writer and decoded by go-vcard, or encoded by go-vcard and read by the vcf
// reader. Properties that vCard 4.0 cannot carry are reported as warnings.
package interop

import (
	"bytes"
	"io"
	"strings"

	"card-codec/internal/common/errors"
	"card-codec/internal/common/logging"
	"card-codec/internal/format/vcf"
	"card-codec/internal/scribe"
	"card-codec/internal/vcard"
	govcard "github.com/emersion/go-vcard"
)

// Config configures a conversion.
type Config struct {
	Index  *scribe.Index
	Logger logging.Logger
}

func (c Config) normalize() Config {
	if c.Index == nil {
		c.Index = scribe.NewDefaultIndex()
	}
	c.Logger = logging.OrNop(c.Logger)
	return c
}

// ToCard converts rec into a go-vcard card holding vCard 4.0 fields.
func ToCard(rec *vcard.Record, cfg Config) (govcard.Card, vcard.Warnings, error) {
	cfg = cfg.normalize()
	wc := vcf.DefaultWriterConfig(vcard.V40)
	wc.Index = cfg.Index
	wc.Logger = cfg.Logger
	wc.FoldLength = 0
	wc.IncludeProductID = false

	text, warnings, err := vcf.Marshal([]*vcard.Record{rec}, wc)
	if err != nil {
		return nil, warnings, err
	}

	card, err := govcard.NewDecoder(strings.NewReader(text)).Decode()
	if err != nil {
		return nil, warnings, errors.InternalError("decoding converted card", err)
	}
	return card, warnings, nil
}

// FromCard converts a go-vcard card into a record. A card without VERSION is
// read as vCard 4.0.
func FromCard(card govcard.Card, cfg Config) (*vcard.Record, vcard.Warnings, error) {
	cfg = cfg.normalize()
	if len(card) == 0 {
		return nil, nil, errors.ValidationError("card has no fields")
	}

	if card.Value(govcard.FieldVersion) == "" {
		clone := make(govcard.Card, len(card)+1)
		for k, fields := range card {
			clone[k] = fields
		}
		clone.SetValue(govcard.FieldVersion, vcard.V40.String())
		card = clone
	}

	var buf bytes.Buffer
	if err := govcard.NewEncoder(&buf).Encode(card); err != nil {
		return nil, nil, errors.ValidationError("encoding card").WithContext("cause", err.Error())
	}

	records, warnings, err := vcf.ReadAll(&buf, vcf.ReaderConfig{
		Index:          cfg.Index,
		Logger:         cfg.Logger,
		DefaultVersion: vcard.V40,
		CaretDecoding:  true,
	})
	if err != nil {
		return nil, warnings, err
	}
	if len(records) != 1 {
		return nil, warnings, errors.InternalError("encoded card did not yield one record", nil)
	}
	return records[0], warnings, nil
}

// DecodeCards reads every card of r with the go-vcard decoder and converts
// each one.
func DecodeCards(r io.Reader, cfg Config) ([]*vcard.Record, vcard.Warnings, error) {
	dec := govcard.NewDecoder(r)
	var (
		records  []*vcard.Record
		warnings vcard.Warnings
	)
	for {
		card, err := dec.Decode()
		if err == io.EOF {
			return records, warnings, nil
		}
		if err != nil {
			return records, warnings, errors.SyntaxError("decoding card: "+err.Error(), 0)
		}
		rec, w, err := FromCard(card, cfg)
		warnings = append(warnings, w...)
		if err != nil {
			return records, warnings, err
		}
		records = append(records, rec)
	}
}

// Summary is a flat view of a card used for listings.
type Summary struct {
	UID           string   `json:"uid"`
	FormattedName string   `json:"formatted_name"`
	Kind          string   `json:"kind,omitempty"`
	Emails        []string `json:"emails,omitempty"`
	Telephones    []string `json:"telephones,omitempty"`
	Categories    []string `json:"categories,omitempty"`
}

// Summarize reads the listing fields of card. The preferred FN is used when
// there are several.
func Summarize(card govcard.Card) Summary {
	return Summary{
		UID:           card.Value(govcard.FieldUID),
		FormattedName: card.PreferredValue(govcard.FieldFormattedName),
		Kind:          string(card.Kind()),
		Emails:        card.Values(govcard.FieldEmail),
		Telephones:    card.Values(govcard.FieldTelephone),
		Categories:    card.Categories(),
	}
}
