package hcard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"card-codec/internal/vcard"
)

const testPage = `<!DOCTYPE html>
<html>
<head><base href="http://example.com/people/"></head>
<body>
  <p>Contacts</p>
  <div class="vcard">
    <a class="url fn" href="jane.html">Jane Doe</a>
    <div class="n">
      <span class="given-name">Jane</span>
      <span class="family-name">Doe</span>
    </div>
    <div class="tel"><span class="type">work</span> <span class="value">+1 555 0100</span></div>
    <a class="email" href="mailto:jane@example.com?subject=hi">Email me</a>
    <div class="adr">
      <span class="type">home</span>
      <span class="street-address">123 Main St</span>
      <span class="locality">Austin</span>, <abbr class="region" title="TX">Texas</abbr>
    </div>
    <div class="note">First line<br>second line</div>
    <div class="agent vcard">
      <span class="fn">Bob Smith</span>
      <span class="tel">555 0199</span>
    </div>
    <span class="unknown-class">ignored</span>
  </div>
  <div class="vcard"><span class="fn">Second</span></div>
</body>
</html>`

func TestRead_Page(t *testing.T) {
	records, warnings, err := Parse(testPage, ReaderConfig{})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, records, 2)

	rec := records[0]
	assert.Equal(t, vcard.V30, rec.Version)
	assert.Equal(t, "Jane Doe", rec.FormattedName())

	url := vcard.First[*vcard.URL](rec)
	require.NotNil(t, url)
	assert.Equal(t, "http://example.com/people/jane.html", url.Value)

	n := vcard.First[*vcard.StructuredName](rec)
	require.NotNil(t, n)
	assert.Equal(t, "Doe", n.Family)
	assert.Equal(t, "Jane", n.Given)

	tels := vcard.Find[*vcard.Telephone](rec)
	require.Len(t, tels, 1)
	assert.Equal(t, "+1 555 0100", tels[0].Value.(*vcard.Telephone).Text())
	assert.True(t, tels[0].Params.HasType("work"))

	assert.Equal(t, "jane@example.com", vcard.First[*vcard.Email](rec).Value)

	adr := vcard.Find[*vcard.Address](rec)
	require.Len(t, adr, 1)
	assert.Equal(t, []string{"123 Main St"}, adr[0].Value.(*vcard.Address).Street)
	assert.Equal(t, []string{"TX"}, adr[0].Value.(*vcard.Address).Region)
	assert.True(t, adr[0].Params.HasType("home"))

	assert.Equal(t, "First line\nsecond line", vcard.First[*vcard.Note](rec).Value)

	agent := vcard.First[*vcard.Agent](rec)
	require.NotNil(t, agent)
	require.NotNil(t, agent.Record())
	assert.Equal(t, "Bob Smith", agent.Record().FormattedName())
	assert.Len(t, vcard.Find[*vcard.Telephone](agent.Record()), 1, "the agent's TEL stays with the agent")

	assert.Equal(t, "Second", records[1].FormattedName())
}

func TestRead_ConfiguredBaseURLWins(t *testing.T) {
	records, _, err := Parse(testPage, ReaderConfig{BaseURL: "https://other.example/"})
	require.NoError(t, err)
	assert.Equal(t, "https://other.example/jane.html", vcard.First[*vcard.URL](records[0]).Value)
}

func TestRead_AgentDepthLimit(t *testing.T) {
	records, warnings, err := Parse(`<div class="vcard"><span class="fn">A</span>
<div class="agent vcard"><span class="fn">B</span>
<div class="agent vcard"><span class="fn">C</span></div></div></div>`, ReaderConfig{MaxDepth: 1})
	require.NoError(t, err)
	require.Len(t, records, 1)
	b := vcard.First[*vcard.Agent](records[0]).Record()
	require.NotNil(t, b)
	assert.Equal(t, "B", b.FormattedName())
	assert.Nil(t, vcard.First[*vcard.Agent](b))
	assert.Equal(t, []int{vcard.WarnTooDeep}, warnings.Codes())
}

func TestRead_NoHCards(t *testing.T) {
	records, warnings, err := Parse("<p>nothing here</p>", ReaderConfig{})
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Empty(t, warnings)
}

func TestWrite_RoundTrip(t *testing.T) {
	rec := vcard.NewRecord(vcard.V40)
	rec.Add(vcard.NewText[vcard.FormattedName]("Jane Doe"))
	rec.Add(&vcard.StructuredName{Family: "Doe", Given: "Jane"})
	tel := &vcard.Telephone{}
	tel.SetText("+1 555 0100")
	rec.Add(tel).Params.AddType("work")
	rec.Add(vcard.NewText[vcard.Email]("jane@example.com"))
	rec.Add(vcard.NewText[vcard.Note]("line one\nline two"))

	var b strings.Builder
	warnings, err := Write(&b, []*vcard.Record{rec}, WriterConfig{})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	out := b.String()
	assert.True(t, strings.HasPrefix(out, `<div class="vcard">`))
	assert.Contains(t, out, `<span class="fn">Jane Doe</span>`)
	assert.Contains(t, out, `<a class="email" href="mailto:jane@example.com">jane@example.com</a>`)
	assert.Contains(t, out, `<span class="type">work</span>`)
	assert.Contains(t, out, "line one<br/>line two")

	records, _, err := Parse(out, ReaderConfig{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	parsed := records[0]
	assert.Equal(t, "Jane Doe", parsed.FormattedName())
	assert.Equal(t, "Doe", vcard.First[*vcard.StructuredName](parsed).Family)
	assert.Equal(t, "jane@example.com", vcard.First[*vcard.Email](parsed).Value)
	assert.Equal(t, "line one\nline two", vcard.First[*vcard.Note](parsed).Value)
	parsedTel := vcard.Find[*vcard.Telephone](parsed)
	require.Len(t, parsedTel, 1)
	assert.True(t, parsedTel[0].Params.HasType("work"))
}

func TestWrite_Document(t *testing.T) {
	rec := vcard.NewRecord(vcard.V30)
	rec.Add(vcard.NewText[vcard.FormattedName]("Jane"))

	var b strings.Builder
	_, err := Write(&b, []*vcard.Record{rec}, WriterConfig{Document: true, Title: "Contacts"})
	require.NoError(t, err)

	out := b.String()
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>\n<html><head>"))
	assert.Contains(t, out, "<title>Contacts</title>")
	assert.Contains(t, out, `<body><div class="vcard"><span class="fn">Jane</span></div></body>`)
}

func TestWrite_EmbeddedAgentSkipped(t *testing.T) {
	child := vcard.NewRecord(vcard.V30)
	child.Add(vcard.NewText[vcard.FormattedName]("Bob"))
	agent := &vcard.Agent{}
	agent.SetRecord(child)
	rec := vcard.NewRecord(vcard.V30)
	rec.Add(vcard.NewText[vcard.FormattedName]("Jane"))
	rec.Add(agent)

	var b strings.Builder
	warnings, err := Write(&b, []*vcard.Record{rec}, WriterConfig{})
	require.NoError(t, err)
	assert.NotContains(t, b.String(), "Bob")
	assert.Equal(t, []int{vcard.WarnSkipped}, warnings.Codes())
}
