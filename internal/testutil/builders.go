package testutil

import (
	"card-codec/internal/vcard"
)

// RecordBuilder helps build test records
type RecordBuilder struct {
	record *vcard.Record
}

// NewRecordBuilder creates a builder for an empty record of version v
func NewRecordBuilder(v vcard.Version) *RecordBuilder {
	return &RecordBuilder{record: vcard.NewRecord(v)}
}

func (b *RecordBuilder) WithUID(uid string) *RecordBuilder {
	b.record.Add(vcard.NewText[vcard.UID](uid))
	return b
}

func (b *RecordBuilder) WithFormattedName(fn string) *RecordBuilder {
	b.record.Add(vcard.NewText[vcard.FormattedName](fn))
	return b
}

func (b *RecordBuilder) WithName(family, given string) *RecordBuilder {
	b.record.Add(&vcard.StructuredName{Family: family, Given: given})
	return b
}

func (b *RecordBuilder) WithEmail(address string, types ...string) *RecordBuilder {
	p := b.record.Add(vcard.NewText[vcard.Email](address))
	for _, t := range types {
		p.Parameters().AddType(t)
	}
	return b
}

func (b *RecordBuilder) WithTelephone(number string, types ...string) *RecordBuilder {
	tel := &vcard.Telephone{}
	tel.SetText(number)
	p := b.record.Add(tel)
	for _, t := range types {
		p.Parameters().AddType(t)
	}
	return b
}

func (b *RecordBuilder) WithNote(note string) *RecordBuilder {
	b.record.Add(vcard.NewText[vcard.Note](note))
	return b
}

// With adds any property value
func (b *RecordBuilder) With(value vcard.Value) *RecordBuilder {
	b.record.Add(value)
	return b
}

func (b *RecordBuilder) Build() *vcard.Record {
	return b.record
}

// JaneDoe returns the record described by JaneDoeVCF30, in version v
func JaneDoe(v vcard.Version) *vcard.Record {
	return NewRecordBuilder(v).
		WithUID(JaneDoeUID).
		WithFormattedName("Jane Doe").
		WithName("Doe", "Jane").
		WithEmail("jane@example.com", "work").
		Build()
}
