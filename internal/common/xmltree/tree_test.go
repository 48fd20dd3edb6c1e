package xmltree

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ns = "urn:ietf:params:xml:ns:vcard-4.0"

func TestParse_KeepsOrderAndNamespaces(t *testing.T) {
	doc := `<vcards xmlns="` + ns + `"><vcard><fn><text>Jane</text></fn><x-a xmlns="urn:x">1</x-a><tel/></vcard></vcards>`

	root, err := ParseString(doc)
	require.NoError(t, err)
	assert.Equal(t, "vcards", root.Local)
	assert.Equal(t, ns, root.Space)

	card := root.First(ns, "vcard")
	require.NotNil(t, card)
	require.Len(t, card.Children, 3)
	assert.Equal(t, "fn", card.Children[0].Local)
	assert.Equal(t, "urn:x", card.Children[1].Space)
	assert.Equal(t, "1", card.Children[1].Text)
	assert.Equal(t, "Jane", card.First(ns, "fn").ChildText(ns, "text"))
	assert.Nil(t, card.First(ns, "email"))
}

func TestParse_Malformed(t *testing.T) {
	_, err := ParseString(`<vcards><vcard></vcards>`)
	assert.Error(t, err)
}

func TestEncode(t *testing.T) {
	root := New(ns, "vcards")
	card := root.Add("vcard")
	card.Add("fn").AddText("text", "Jane & John")
	other := New("urn:x", "x-a")
	other.SetAttr("kind", "y")
	card.Append(other)

	out := root.String()
	assert.Equal(t, `<vcards xmlns="`+ns+`"><vcard><fn><text>Jane &amp; John</text></fn><x-a xmlns="urn:x" kind="y"></x-a></vcard></vcards>`, out)

	parsed, err := ParseString(out)
	require.NoError(t, err)
	assert.Equal(t, "y", parsed.First(ns, "vcard").First("urn:x", "x-a").Attr("kind"))

	var buf bytes.Buffer
	require.NoError(t, root.Encode(&buf, true))
	assert.Contains(t, buf.String(), "\n  <vcard>")
}
