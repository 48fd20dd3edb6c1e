package format

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"card-codec/internal/common/errors"
	"card-codec/internal/vcard"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		want Format
	}{
		{"vcf", VCF},
		{"VCARD", VCF},
		{"xml", XCard},
		{"json", JCard},
		{" html ", HCard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Parse("csv")
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
}

func TestForPath(t *testing.T) {
	f, ok := ForPath("/tmp/contacts.VCF")
	assert.True(t, ok)
	assert.Equal(t, VCF, f)

	f, ok = ForPath("page.htm")
	assert.True(t, ok)
	assert.Equal(t, HCard, f)

	_, ok = ForPath("contacts")
	assert.False(t, ok)
}

func TestForMediaType(t *testing.T) {
	tests := []struct {
		value string
		want  Format
		ok    bool
	}{
		{"text/vcard; charset=utf-8", VCF, true},
		{"text/x-vcard", VCF, true},
		{"application/vcard+xml", XCard, true},
		{"application/vcard+json", JCard, true},
		{"text/html", HCard, true},
		{"application/xhtml+xml", HCard, true},
		{"application/pdf", "", false},
		{";;", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, ok := ForMediaType(tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "application/vcard+json", JCard.MediaType())
}

func TestEncodeDecode_AllFormats(t *testing.T) {
	rec := vcard.NewRecord(vcard.V40)
	rec.Add(vcard.NewText[vcard.FormattedName]("Jane Doe"))
	rec.Add(&vcard.StructuredName{Family: "Doe", Given: "Jane"})
	rec.Add(vcard.NewText[vcard.Email]("jane@example.com"))

	for _, f := range All {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			_, err := Encode(f, &buf, []*vcard.Record{rec, rec}, Options{Version: vcard.V40, FoldLength: 75})
			require.NoError(t, err)

			records, _, err := Decode(f, &buf, Options{})
			require.NoError(t, err)
			require.Len(t, records, 2)
			for _, got := range records {
				assert.Equal(t, "Jane Doe", got.FormattedName())
				email := vcard.First[*vcard.Email](got)
				require.NotNil(t, email)
				assert.Equal(t, "jane@example.com", email.Value)
			}
		})
	}
}

func TestEncode_VCFWarningsAccumulate(t *testing.T) {
	first := vcard.NewRecord(vcard.V40)
	first.Add(vcard.NewText[vcard.FormattedName]("A"))
	first.Add(vcard.NewText[vcard.Kind]("individual"))
	second := vcard.NewRecord(vcard.V40)
	second.Add(vcard.NewText[vcard.FormattedName]("B"))
	second.Add(vcard.NewText[vcard.Kind]("group"))

	var buf bytes.Buffer
	warnings, err := Encode(VCF, &buf, []*vcard.Record{first, second}, Options{Version: vcard.V30})
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(buf.String(), "BEGIN:VCARD"))
	assert.GreaterOrEqual(t, len(warnings), 2)
}

func TestUnknownFormat(t *testing.T) {
	_, _, err := Decode("csv", strings.NewReader(""), Options{})
	assert.True(t, errors.IsType(err, errors.ErrTypeUnsupported))

	_, err = Encode("csv", &bytes.Buffer{}, nil, Options{})
	assert.True(t, errors.IsType(err, errors.ErrTypeUnsupported))
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Format
	}{
		{"vcard text", "BEGIN:VCARD\r\nVERSION:3.0\r\n", VCF},
		{"jcard", "  [\"vcard\",[]]", JCard},
		{"xcard", `<?xml version="1.0"?><vcards xmlns="urn:ietf:params:xml:ns:vcard-4.0">`, XCard},
		{"hcard", "<!DOCTYPE html><html>", HCard},
		{"bom", "\xef\xbb\xbfBEGIN:VCARD", VCF},
		{"empty", "", VCF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sniff([]byte(tt.input)))
		})
	}
}
