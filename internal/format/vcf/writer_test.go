package vcf

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"card-codec/internal/scribe"
	"card-codec/internal/vcard"
)

func marshal(t *testing.T, cfg WriterConfig, records ...*vcard.Record) (string, vcard.Warnings) {
	t.Helper()
	out, warnings, err := Marshal(records, cfg)
	require.NoError(t, err)
	return out, warnings
}

func janeDoe(v vcard.Version) *vcard.Record {
	rec := vcard.NewRecord(v)
	rec.Add(vcard.NewText[vcard.FormattedName]("Jane Doe"))
	rec.Add(&vcard.StructuredName{Family: "Doe", Given: "Jane"})
	tel := &vcard.Telephone{}
	tel.SetText("+1 555 0100")
	rec.Add(tel).Params.AddType("home")
	rec.Add(&vcard.Address{
		Street:   []string{"123 Main St"},
		Locality: []string{"Austin"},
		Region:   []string{"TX"},
		Country:  []string{"USA"},
	}).Params.AddType("home")
	rec.Add(vcard.NewText[vcard.Note]("first line\nsecond; line"))
	return rec
}

func physicalLines(s string) []string {
	return strings.Split(strings.TrimSuffix(s, "\r\n"), "\r\n")
}

func TestWriter_Version30(t *testing.T) {
	out, warnings := marshal(t, DefaultWriterConfig(vcard.V30), janeDoe(vcard.V30))
	assert.Empty(t, warnings)

	lines := physicalLines(out)
	assert.Equal(t, "BEGIN:VCARD", lines[0])
	assert.Equal(t, "VERSION:3.0", lines[1])
	assert.Equal(t, "PRODID:"+DefaultProductID, lines[2])
	assert.Equal(t, "END:VCARD", lines[len(lines)-1])

	assert.Contains(t, out, "FN:Jane Doe\r\n")
	assert.Contains(t, out, "N:Doe;Jane;;;\r\n")
	assert.Contains(t, out, "TEL;TYPE=home:+1 555 0100\r\n")
	assert.Contains(t, out, ":;;123 Main St;Austin;TX;;USA\r\n")
	assert.Contains(t, out, `NOTE:first line\nsecond\; line`+"\r\n")
}

func TestWriter_RoundTrip(t *testing.T) {
	for _, v := range []vcard.Version{vcard.V21, vcard.V30, vcard.V40} {
		t.Run(v.String(), func(t *testing.T) {
			out, _ := marshal(t, DefaultWriterConfig(v), janeDoe(v))

			rec, _ := parseOne(t, out)
			assert.Equal(t, v, rec.Version)
			assert.Equal(t, "Jane Doe", rec.FormattedName())
			assert.Equal(t, "Doe", vcard.First[*vcard.StructuredName](rec).Family)
			assert.Equal(t, "+1 555 0100", vcard.First[*vcard.Telephone](rec).Text())
			assert.Equal(t, "first line\nsecond; line", vcard.First[*vcard.Note](rec).Value)

			adr := vcard.First[*vcard.Address](rec)
			require.NotNil(t, adr)
			assert.Equal(t, []string{"123 Main St"}, adr.Street)
			assert.Equal(t, []string{"USA"}, adr.Country)
		})
	}
}

func TestWriter_ProductID(t *testing.T) {
	out, _ := marshal(t, DefaultWriterConfig(vcard.V21), janeDoe(vcard.V21))
	assert.NotContains(t, out, "PRODID")

	rec := janeDoe(vcard.V40)
	rec.Add(vcard.NewText[vcard.ProductID]("-//Other//EN"))
	out, _ = marshal(t, DefaultWriterConfig(vcard.V40), rec)
	assert.Equal(t, 1, strings.Count(out, "PRODID"))
	assert.Contains(t, out, "PRODID:-//Other//EN")

	cfg := DefaultWriterConfig(vcard.V40)
	cfg.IncludeProductID = false
	out, _ = marshal(t, cfg, janeDoe(vcard.V40))
	assert.NotContains(t, out, "PRODID")
}

func TestWriter_Folding(t *testing.T) {
	long := strings.Repeat("Zürich café ", 20)
	rec := vcard.NewRecord(vcard.V40)
	rec.Add(vcard.NewText[vcard.FormattedName]("Jane"))
	rec.Add(vcard.NewText[vcard.Note](long))

	out, _ := marshal(t, DefaultWriterConfig(vcard.V40), rec)
	lines := physicalLines(out)
	assert.Greater(t, len(lines), 6)
	for _, line := range lines {
		assert.LessOrEqual(t, len(line), 75)
		assert.True(t, utf8.ValidString(line), "line %q splits a character", line)
	}

	parsed, _ := parseOne(t, out)
	assert.Equal(t, long, vcard.First[*vcard.Note](parsed).Value)

	cfg := DefaultWriterConfig(vcard.V40)
	cfg.FoldLength = 0
	out, _ = marshal(t, cfg, rec)
	assert.Contains(t, out, "NOTE:"+long+"\r\n")
}

func TestWriter_QuotedPrintable21(t *testing.T) {
	rec := vcard.NewRecord(vcard.V21)
	rec.Add(&vcard.StructuredName{Family: "Doe", Given: "Jane"})
	rec.Add(vcard.NewText[vcard.Note]("line one\nline two"))

	out, _ := marshal(t, DefaultWriterConfig(vcard.V21), rec)
	assert.Contains(t, out, "ENCODING=QUOTED-PRINTABLE")
	assert.Contains(t, out, "CHARSET=UTF-8")
	assert.Contains(t, out, ":line one=0D=0Aline two\r\n")

	parsed, _ := parseOne(t, out)
	note := vcard.Find[*vcard.Note](parsed)
	require.Len(t, note, 1)
	assert.Equal(t, "line one\nline two", note[0].Value.(*vcard.Note).Value)
	assert.False(t, note[0].Params.Has(vcard.ParamEncoding))
}

func TestWriter_QuotedPrintableFolding(t *testing.T) {
	value := strings.Repeat("über  ", 30) + "\nend"
	rec := vcard.NewRecord(vcard.V21)
	rec.Add(&vcard.StructuredName{Family: "Doe"})
	rec.Add(vcard.NewText[vcard.Note](value))

	out, _ := marshal(t, DefaultWriterConfig(vcard.V21), rec)
	for _, line := range physicalLines(out) {
		assert.LessOrEqual(t, len(line), 75)
		assert.False(t, strings.HasPrefix(line, " "), "continuation %q would unfold", line)
	}

	parsed, _ := parseOne(t, out)
	assert.Equal(t, value, vcard.First[*vcard.Note](parsed).Value)
}

func TestWriter_TypeParameters21(t *testing.T) {
	rec := vcard.NewRecord(vcard.V21)
	rec.Add(&vcard.StructuredName{Family: "Doe"})
	tel := &vcard.Telephone{}
	tel.SetText("555-0100")
	p := rec.Add(tel)
	p.Params.AddType("home")
	p.Params.AddType("voice")

	out, _ := marshal(t, DefaultWriterConfig(vcard.V21), rec)
	assert.Contains(t, out, "TEL;HOME;VOICE:555-0100\r\n")
}

func TestWriter_ParameterQuotingAndCarets(t *testing.T) {
	rec := vcard.NewRecord(vcard.V40)
	rec.Add(vcard.NewText[vcard.FormattedName]("Jane"))
	rec.Add(&vcard.Address{Street: []string{"1 Main St"}, Label: "1 Main St\nAustin, TX"})

	out, _ := marshal(t, DefaultWriterConfig(vcard.V40), rec)
	assert.Contains(t, out, `ADR;LABEL="1 Main St Austin, TX":`)

	cfg := DefaultWriterConfig(vcard.V40)
	cfg.CaretEncoding = true
	out, _ = marshal(t, cfg, rec)
	assert.Contains(t, out, `ADR;LABEL="1 Main St^nAustin, TX":`)

	parsed, _ := parseOne(t, out)
	assert.Equal(t, "1 Main St\nAustin, TX", vcard.First[*vcard.Address](parsed).Label)
}

func TestWriter_LabelsExpandedBefore40(t *testing.T) {
	rec := vcard.NewRecord(vcard.V30)
	rec.Add(vcard.NewText[vcard.FormattedName]("Jane"))
	rec.Add(&vcard.StructuredName{Family: "Doe"})
	rec.Add(&vcard.Address{Street: []string{"1 Main St"}, Label: "1 Main St\nAustin"}).Params.AddType("work")

	out, _ := marshal(t, DefaultWriterConfig(vcard.V30), rec)
	assert.Contains(t, out, `LABEL;TYPE=work:1 Main St\nAustin`)
	assert.NotContains(t, out, "ADR;LABEL")

	parsed, _ := parseOne(t, out)
	assert.Equal(t, "1 Main St\nAustin", vcard.First[*vcard.Address](parsed).Label)
	assert.Empty(t, parsed.OrphanedLabels())
}

func TestWriter_SkippedPropertyWarns(t *testing.T) {
	rec := vcard.NewRecord(vcard.V40)
	rec.Add(vcard.NewText[vcard.FormattedName]("Jane"))
	rec.Add(&vcard.ClientPidMap{URI: "urn:uuid:1234"})
	rec.Add(vcard.NewText[vcard.Email]("jane@example.com"))

	out, warnings := marshal(t, DefaultWriterConfig(vcard.V40), rec)
	assert.NotContains(t, out, "CLIENTPIDMAP")
	assert.Contains(t, out, "EMAIL:jane@example.com")
	assert.Contains(t, warnings.Codes(), vcard.WarnSkipped)
}

func agentChain(v vcard.Version, names ...string) *vcard.Record {
	var child *vcard.Record
	for i := len(names) - 1; i >= 0; i-- {
		rec := vcard.NewRecord(v)
		rec.Add(vcard.NewText[vcard.FormattedName](names[i]))
		rec.Add(&vcard.StructuredName{Family: names[i]})
		if child != nil {
			agent := &vcard.Agent{}
			agent.SetRecord(child)
			rec.Add(agent)
		}
		child = rec
	}
	return child
}

func TestWriter_NestedAgent21(t *testing.T) {
	out, _ := marshal(t, DefaultWriterConfig(vcard.V21), agentChain(vcard.V21, "Doe", "Smith"))
	assert.Contains(t, out, "AGENT:\r\nBEGIN:VCARD\r\nVERSION:2.1\r\n")

	parsed, warnings := parseOne(t, out)
	assert.Empty(t, warnings)
	agent := vcard.First[*vcard.Agent](parsed)
	require.NotNil(t, agent)
	assert.Equal(t, "Smith", agent.Record().FormattedName())
}

func TestWriter_EscapedAgent30(t *testing.T) {
	out, _ := marshal(t, DefaultWriterConfig(vcard.V30), agentChain(vcard.V30, "Doe", "Smith", "Jones"))
	assert.Contains(t, out, `AGENT:BEGIN:VCARD\nVERSION:3.0\n`)
	assert.Equal(t, 1, strings.Count(out, "PRODID"))

	parsed, _ := parseOne(t, out)
	smith := vcard.First[*vcard.Agent](parsed).Record()
	require.NotNil(t, smith)
	assert.Equal(t, "Smith", smith.FormattedName())
	jones := vcard.First[*vcard.Agent](smith).Record()
	require.NotNil(t, jones)
	assert.Equal(t, "Jones", jones.FormattedName())
}

func TestWriter_DepthLimit(t *testing.T) {
	cfg := DefaultWriterConfig(vcard.V30)
	cfg.MaxDepth = 1
	out, warnings := marshal(t, cfg, agentChain(vcard.V30, "Doe", "Smith", "Jones"))
	assert.Contains(t, warnings.Codes(), vcard.WarnTooDeep)
	assert.Contains(t, out, "Smith")
	assert.NotContains(t, out, "Jones")
}

func TestWriter_MultipleRecords(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, DefaultWriterConfig(vcard.V40))
	require.NoError(t, w.Write(janeDoe(vcard.V40)))
	require.NoError(t, w.Write(agentChain(vcard.V40, "Smith")))

	records, _, err := Parse(buf.String(), DefaultReaderConfig())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Smith", records[1].FormattedName())
}

func TestEncodeQuotedPrintable(t *testing.T) {
	assert.Equal(t, "a=3Db=0D=0Ac=C3=A9", encodeQuotedPrintable("a=b\r\ncé"))
	assert.Equal(t, "plain text", encodeQuotedPrintable("plain text"))
}

type roundTripCase struct {
	name     string
	value    func() vcard.Value
	versions []vcard.Version
	// want is the value expected back in version v; nil means the value itself.
	want  func(v vcard.Version) vcard.Value
	check func(t *testing.T, got vcard.Value)
}

func textValue[T any, PT interface {
	*T
	vcard.TextHolder
}](s string) func() vcard.Value {
	return func() vcard.Value { return vcard.NewText[T, PT](s) }
}

func roundTripCases() []roundTripCase {
	date := time.Date(1980, 3, 15, 0, 0, 0, 0, time.UTC)
	partial, _ := vcard.ParsePartialDate("--0315")
	offset, _ := vcard.ParseUTCOffset("-05:00")
	pid := 1
	only40 := []vcard.Version{vcard.V40}

	telURI := func() vcard.Value {
		tel := &vcard.Telephone{}
		tel.SetURI("tel:+1-555-0100")
		return tel
	}
	binary := func(set func(b *vcard.Photo)) func() vcard.Value {
		return func() vcard.Value {
			p := &vcard.Photo{}
			set(p)
			return p
		}
	}
	birthday := func(set func(d *vcard.Birthday)) func() vcard.Value {
		return func() vcard.Value {
			d := &vcard.Birthday{}
			set(d)
			return d
		}
	}

	return []roundTripCase{
		{name: "FN", value: textValue[vcard.FormattedName]("Dr. Jane \"JJ\" Doe, Jr.")},
		{name: "N", value: func() vcard.Value {
			return &vcard.StructuredName{Family: "Doe", Given: "Jane", Prefixes: []string{"Dr."}, Suffixes: []string{"Jr.", "M.D."}}
		}},
		{name: "ADR", value: func() vcard.Value {
			return &vcard.Address{Street: []string{"1 Main St"}, Locality: []string{"Austin"}, Country: []string{"USA"}}
		}},
		{name: "LABEL", value: textValue[vcard.Label]("PO Box 7")},
		{name: "NOTE", value: textValue[vcard.Note]("first line\nsecond; line, with comma")},
		{name: "TITLE", value: textValue[vcard.Title]("Engineer")},
		{name: "ROLE", value: textValue[vcard.Role]("Lead")},
		{name: "MAILER", value: textValue[vcard.Mailer]("Outlook")},
		{name: "PRODID", value: textValue[vcard.ProductID]("-//Other//EN")},
		{name: "SORT-STRING", value: textValue[vcard.SortString]("Doe")},
		{name: "CLASS", value: textValue[vcard.Classification]("PUBLIC")},
		{name: "NAME", value: textValue[vcard.SourceDisplayName]("Jane's card")},
		{name: "PROFILE", value: textValue[vcard.Profile]("VCARD")},
		{name: "EMAIL", value: textValue[vcard.Email]("jane@example.com")},
		{name: "KIND", value: textValue[vcard.Kind]("group")},
		{name: "LANG", value: textValue[vcard.Language]("en-US")},
		{name: "EXPERTISE", value: textValue[vcard.Expertise]("chemistry")},
		{name: "HOBBY", value: textValue[vcard.Hobby]("reading")},
		{name: "INTEREST", value: textValue[vcard.Interest]("r&b music")},
		{name: "UID", value: textValue[vcard.UID]("urn:uuid:f81d4fae-7dec-11d0-a765-00a0c91e6bf6")},
		{name: "URL", value: textValue[vcard.URL]("http://example.com/jane")},
		{name: "SOURCE", value: textValue[vcard.Source]("http://example.com/jane.vcf")},
		{name: "ORG-DIRECTORY", value: textValue[vcard.OrgDirectory]("ldap://ldap.example.com/o=Example")},
		{name: "FBURL", value: textValue[vcard.FreeBusyURL]("http://example.com/busy/jane")},
		{name: "CALURI", value: textValue[vcard.CalendarURI]("http://example.com/calendar/jane")},
		{name: "CALADRURI", value: textValue[vcard.CalendarRequestURI]("mailto:jane@example.com")},
		{name: "IMPP", value: textValue[vcard.Impp]("xmpp:jane@example.com")},
		{name: "MEMBER", value: textValue[vcard.Member]("urn:uuid:03a0e51f-d1aa-4385-8a53-e29025acd8af")},
		{name: "XML", value: textValue[vcard.XML](`<note xmlns="urn:example">hi</note>`)},
		{name: "CATEGORIES", value: func() vcard.Value { return &vcard.Categories{List: vcard.List{Values: []string{"friends", "work"}}} }},
		{name: "NICKNAME", value: func() vcard.Value { return &vcard.Nickname{List: vcard.List{Values: []string{"Jim", "Jimmie"}}} }},
		{name: "ORG", value: func() vcard.Value { return &vcard.Organization{List: vcard.List{Values: []string{"Acme Inc.", "Research"}}} }},
		{name: "TEL text", value: func() vcard.Value {
			tel := &vcard.Telephone{}
			tel.SetText("+1 555 0100")
			return tel
		}},
		{name: "TEL uri", value: telURI, want: func(v vcard.Version) vcard.Value {
			if v == vcard.V40 {
				return telURI()
			}
			tel := &vcard.Telephone{}
			tel.SetText("+1-555-0100")
			return tel
		}},
		{name: "RELATED uri", value: func() vcard.Value {
			r := &vcard.Related{}
			r.SetURI("urn:uuid:03a0e51f-d1aa-4385-8a53-e29025acd8af")
			return r
		}},
		{name: "RELATED text", value: func() vcard.Value {
			r := &vcard.Related{}
			r.SetText("Jane's sister")
			return r
		}},
		{name: "BIRTHPLACE", value: func() vcard.Value {
			b := &vcard.Birthplace{}
			b.SetText("Maida Vale, London")
			return b
		}},
		{name: "DEATHPLACE", value: func() vcard.Value {
			d := &vcard.Deathplace{}
			d.SetURI("geo:51.5166,-0.1926")
			return d
		}},
		{name: "GEO", value: func() vcard.Value { return vcard.NewGeo(37.386013, -122.082932) }},
		{name: "TZ offset", value: func() vcard.Value { return &vcard.Timezone{Offset: &offset} }},
		{name: "TZ text", value: func() vcard.Value { return &vcard.Timezone{Text: "America/New_York"} }},
		{name: "TZ both", value: func() vcard.Value {
			return &vcard.Timezone{Offset: &offset, Text: "America/New_York"}
		}, want: func(v vcard.Version) vcard.Value {
			if v == vcard.V40 {
				return &vcard.Timezone{Text: "America/New_York"}
			}
			return &vcard.Timezone{Offset: &offset}
		}},
		{name: "GENDER", value: func() vcard.Value { return &vcard.Gender{Sex: "F", Identity: "woman"} }},
		{name: "GENDER sex only", value: func() vcard.Value { return &vcard.Gender{Sex: "M"} }},
		{name: "CLIENTPIDMAP", value: func() vcard.Value {
			return &vcard.ClientPidMap{PID: &pid, URI: "urn:uuid:3df403f4-5924-4bb7-b077-3c711d9eb34b"}
		}},
		{name: "BDAY full", value: birthday(func(d *vcard.Birthday) { d.SetDate(date, false) })},
		{name: "BDAY partial", value: birthday(func(d *vcard.Birthday) { d.SetPartial(partial) }), versions: only40},
		{name: "BDAY text", value: birthday(func(d *vcard.Birthday) { d.SetText("circa 1800") }), versions: only40},
		{name: "ANNIVERSARY", value: func() vcard.Value {
			a := &vcard.Anniversary{}
			a.SetDate(date, false)
			return a
		}},
		{name: "DEATHDATE", value: func() vcard.Value {
			d := &vcard.Deathdate{}
			d.SetPartial(partial)
			return d
		}},
		{name: "REV", value: func() vcard.Value {
			return &vcard.Revision{Time: time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)}
		}, check: func(t *testing.T, got vcard.Value) {
			rev := got.(*vcard.Revision)
			assert.True(t, rev.Time.Equal(time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)), "REV was %s", rev.Time)
		}},
		{name: "PHOTO url", value: binary(func(p *vcard.Photo) { p.SetURL("http://example.com/jane.jpg", "image/jpeg") })},
		{name: "PHOTO data", value: binary(func(p *vcard.Photo) { p.SetData([]byte{0x89, 'P', 'N', 'G', 0, 1, 2}, "image/png") })},
		{name: "PHOTO text", value: binary(func(p *vcard.Photo) { p.SetText("a smiling face", "") })},
		{name: "LOGO", value: func() vcard.Value {
			l := &vcard.Logo{}
			l.SetURL("http://example.com/logo.gif", "image/gif")
			return l
		}},
		{name: "SOUND", value: func() vcard.Value {
			s := &vcard.Sound{}
			s.SetData([]byte("RIFF"), "audio/wav")
			return s
		}},
		{name: "KEY", value: func() vcard.Value {
			k := &vcard.Key{}
			k.SetText("ABCD 1234", "")
			return k
		}},
		{name: "AGENT url", value: func() vcard.Value {
			a := &vcard.Agent{}
			a.SetURL("http://example.com/bob.vcf")
			return a
		}},
		{name: "AGENT embedded", value: func() vcard.Value {
			a := &vcard.Agent{}
			a.SetRecord(agentChain(vcard.V30, "Bob Smith"))
			return a
		}, check: func(t *testing.T, got vcard.Value) {
			child := got.(*vcard.Agent).Record()
			require.NotNil(t, child)
			assert.Equal(t, "Bob Smith", child.FormattedName())
		}},
		{name: "extended", value: func() vcard.Value { return vcard.NewRaw("X-FOO", "qux") }, check: func(t *testing.T, got vcard.Value) {
			raw := got.(*vcard.Raw)
			assert.Equal(t, "X-FOO", raw.Name)
			assert.Equal(t, "qux", raw.Value)
		}},
	}
}

// lastOfType returns the value of the last property whose value has the
// dynamic type of like.
func lastOfType(rec *vcard.Record, like vcard.Value) vcard.Value {
	var found vcard.Value
	for _, p := range rec.Properties {
		if reflect.TypeOf(p.Value) == reflect.TypeOf(like) {
			found = p.Value
		}
	}
	return found
}

func TestWriter_RoundTripEveryProperty(t *testing.T) {
	idx := scribe.NewDefaultIndex()
	covered := map[string]bool{}

	for _, tc := range roundTripCases() {
		s, ok := idx.ForValue(tc.value())
		require.True(t, ok, tc.name)
		covered[s.Name()] = true

		versions := tc.versions
		if versions == nil {
			versions = s.Versions()
		}
		for _, v := range versions {
			t.Run(tc.name+"/"+v.String(), func(t *testing.T) {
				rec := vcard.NewRecord(v)
				rec.Add(vcard.NewText[vcard.FormattedName]("Round Trip"))
				value := tc.value()
				if agent, ok := value.(*vcard.Agent); ok && agent.Record() != nil {
					agent.Record().Version = v
				}
				rec.Add(value)

				cfg := DefaultWriterConfig(v)
				cfg.IncludeProductID = false
				out, warnings := marshal(t, cfg, rec)
				assert.Empty(t, warnings, out)

				parsed, warnings := parseOne(t, out)
				assert.Empty(t, warnings, out)
				got := lastOfType(parsed, value)
				require.NotNil(t, got, out)

				switch {
				case tc.check != nil:
					tc.check(t, got)
				case tc.want != nil:
					assert.Equal(t, tc.want(v), got, out)
				default:
					assert.Equal(t, tc.value(), got, out)
				}
			})
		}
	}

	for _, name := range idx.Names() {
		assert.True(t, covered[name], "no round-trip case for %s", name)
	}
}
