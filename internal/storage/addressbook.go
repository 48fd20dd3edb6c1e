package storage

import (
	"time"

	"card-codec/internal/common/cache"
	"card-codec/internal/common/errors"
	"card-codec/internal/common/logging"
	"card-codec/internal/format/vcf"
	"card-codec/internal/scribe"
	"card-codec/internal/vcard"
	"github.com/google/uuid"
)

// StoredVersion is the version cards are persisted in.
const StoredVersion = vcard.V40

// AddressBookConfig configures an AddressBook.
type AddressBookConfig struct {
	Index    *scribe.Index
	Logger   logging.Logger
	MaxDepth int
	// Cache holds decoded records by UID. Nil disables caching.
	Cache cache.Cache
}

// AddressBook converts between records and stored cards.
type AddressBook struct {
	store Storage
	cfg   AddressBookConfig
	log   logging.Logger
	now   func() time.Time
}

// NewAddressBook wraps store.
func NewAddressBook(store Storage, cfg AddressBookConfig) *AddressBook {
	if cfg.Index == nil {
		cfg.Index = scribe.NewDefaultIndex()
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = vcf.DefaultMaxDepth
	}
	return &AddressBook{
		store: store,
		cfg:   cfg,
		log:   logging.OrNop(cfg.Logger),
		now:   time.Now,
	}
}

// Import stores every record. A record without UID is given a urn:uuid: UID,
// which is added to the record itself. A record whose UID is already stored
// replaces the stored card.
func (b *AddressBook) Import(records []*vcard.Record) ([]*Card, vcard.Warnings, error) {
	var (
		cards    []*Card
		warnings vcard.Warnings
	)
	for _, rec := range records {
		uid := rec.UID()
		if uid == "" {
			uid = NewUID()
			rec.Add(vcard.NewText[vcard.UID](uid))
		}

		text, w, err := vcf.Marshal([]*vcard.Record{rec}, b.writerConfig())
		warnings = append(warnings, w...)
		if err != nil {
			return cards, warnings, err
		}

		now := b.now().UTC()
		card := &Card{
			UID:           uid,
			FormattedName: rec.FormattedName(),
			Text:          text,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := b.store.PutCard(card); err != nil {
			return cards, warnings, err
		}
		b.forget(uid)
		b.log.Debug("card stored", logging.String("uid", uid), logging.Int("warnings", len(w)))
		cards = append(cards, card)
	}
	return cards, warnings, nil
}

// Health reports whether the store is reachable.
func (b *AddressBook) Health() error {
	return b.store.Health()
}

// Get returns the record stored under uid. Records may come from the cache
// and are shared; callers must not modify them.
func (b *AddressBook) Get(uid string) (*vcard.Record, error) {
	if b.cfg.Cache != nil {
		if v, ok := b.cfg.Cache.Get(uid); ok {
			return v.(*vcard.Record), nil
		}
	}
	card, err := b.store.GetCard(uid)
	if err != nil {
		return nil, err
	}
	rec, err := b.decode(card)
	if err != nil {
		return nil, err
	}
	if b.cfg.Cache != nil {
		b.cfg.Cache.Set(uid, rec, 0)
	}
	return rec, nil
}

// List returns one page of stored cards and the total count.
func (b *AddressBook) List(limit, offset int) ([]*Card, int, error) {
	return b.store.ListCards(limit, offset)
}

// Delete removes the card stored under uid.
func (b *AddressBook) Delete(uid string) error {
	b.forget(uid)
	return b.store.DeleteCard(uid)
}

func (b *AddressBook) forget(uid string) {
	if b.cfg.Cache != nil {
		b.cfg.Cache.Delete(uid)
	}
}

// exportPageSize is the number of cards Records fetches per query.
const exportPageSize = 100

// Records returns every stored record in list order.
func (b *AddressBook) Records() ([]*vcard.Record, error) {
	var records []*vcard.Record
	for offset := 0; ; offset += exportPageSize {
		cards, total, err := b.store.ListCards(exportPageSize, offset)
		if err != nil {
			return records, err
		}
		for _, card := range cards {
			rec, err := b.decode(card)
			if err != nil {
				return records, err
			}
			records = append(records, rec)
		}
		if len(cards) == 0 || offset+len(cards) >= total {
			return records, nil
		}
	}
}

func (b *AddressBook) decode(card *Card) (*vcard.Record, error) {
	records, _, err := vcf.Parse(card.Text, vcf.ReaderConfig{
		Index:          b.cfg.Index,
		Logger:         b.log,
		MaxDepth:       b.cfg.MaxDepth,
		DefaultVersion: StoredVersion,
		CaretDecoding:  true,
	})
	if err != nil {
		return nil, err
	}
	if len(records) != 1 {
		return nil, errors.InternalError("stored card does not hold exactly one record", nil).
			WithContext("uid", card.UID)
	}
	return records[0], nil
}

func (b *AddressBook) writerConfig() vcf.WriterConfig {
	cfg := vcf.DefaultWriterConfig(StoredVersion)
	cfg.Index = b.cfg.Index
	cfg.Logger = b.log
	cfg.MaxDepth = b.cfg.MaxDepth
	cfg.CaretEncoding = true
	return cfg
}

// NewUID returns a fresh urn:uuid: UID.
func NewUID() string {
	return "urn:uuid:" + uuid.NewString()
}
