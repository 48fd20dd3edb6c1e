package scribe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"card-codec/internal/vcard"
)

func addAddress(r *vcard.Record, street string, types ...string) *vcard.Property {
	prop := r.Add(&vcard.Address{Street: []string{street}})
	for _, t := range types {
		prop.Params.AddType(t)
	}
	return prop
}

func addLabel(r *vcard.Record, text string, types ...string) *vcard.Property {
	prop := r.Add(vcard.NewText[vcard.Label](text))
	for _, t := range types {
		prop.Params.AddType(t)
	}
	return prop
}

func TestAttachLabels(t *testing.T) {
	r := vcard.NewRecord(vcard.V30)
	home := addAddress(r, "1 Home St", "home")
	work := addAddress(r, "2 Work St", "work", "pref")
	addLabel(r, "2 Work St\nAustin", "WORK")
	orphan := addLabel(r, "PO Box 9", "postal")

	AttachLabels(r)

	assert.Empty(t, home.Value.(*vcard.Address).Label)
	assert.Equal(t, "2 Work St\nAustin", work.Value.(*vcard.Address).Label)
	require.Len(t, r.Properties, 3)
	assert.Equal(t, []*vcard.Property{orphan}, r.OrphanedLabels())
}

func TestAttachLabels_PrefersPrecedingAddress(t *testing.T) {
	r := vcard.NewRecord(vcard.V21)
	first := addAddress(r, "1 First St")
	addLabel(r, "label")
	second := addAddress(r, "2 Second St")

	AttachLabels(r)

	assert.Equal(t, "label", first.Value.(*vcard.Address).Label)
	assert.Empty(t, second.Value.(*vcard.Address).Label)
	assert.Empty(t, r.OrphanedLabels())
}

func TestAttachLabels_FollowingAddress(t *testing.T) {
	r := vcard.NewRecord(vcard.V21)
	addLabel(r, "label", "home")
	adr := addAddress(r, "1 First St", "home")

	AttachLabels(r)

	assert.Equal(t, "label", adr.Value.(*vcard.Address).Label)
	assert.Len(t, r.Properties, 1)
}

func TestExpandLabels(t *testing.T) {
	r := vcard.NewRecord(vcard.V40)
	adr := addAddress(r, "1 Home St", "home", "pref")
	adr.Group = "item1"
	adr.Value.(*vcard.Address).Label = "1 Home St\nAustin"
	r.Add(vcard.NewText[vcard.Note]("hi"))

	props := ExpandLabels(r, vcard.V30)
	require.Len(t, props, 3)
	label, ok := props[1].Value.(*vcard.Label)
	require.True(t, ok)
	assert.Equal(t, "1 Home St\nAustin", label.Value)
	assert.Equal(t, "item1", props[1].Group)
	assert.Equal(t, []string{"home"}, props[1].Params.Types())

	assert.Len(t, ExpandLabels(r, vcard.V40), 2)
}

func TestAddressLabelParam(t *testing.T) {
	idx := NewDefaultIndex()
	r := vcard.NewRecord(vcard.V40)
	prop := addAddress(r, "1 Home St")
	prop.Value.(*vcard.Address).Label = "1 Home St"

	ctx, _ := writeCtx(r, vcard.V40)
	w, err := idx.WriteText(prop, ctx)
	require.NoError(t, err)
	assert.Equal(t, "1 Home St", w.Params.Label())
	assert.Equal(t, ";;1 Home St;;;;", w.Text)

	ctx, _ = writeCtx(r, vcard.V30)
	w, err = idx.WriteText(prop, ctx)
	require.NoError(t, err)
	assert.False(t, w.Params.Has(vcard.ParamLabel))

	pctx, _ := parseCtx(vcard.V40)
	out := idx.ParseText("", "ADR", params("LABEL", "1 Home St"), ";;1 Home St;;;;", pctx)
	require.Equal(t, OutcomeValue, out.Kind)
	assert.Equal(t, "1 Home St", out.Property.Value.(*vcard.Address).Label)
	assert.False(t, out.Property.Params.Has(vcard.ParamLabel))
}
