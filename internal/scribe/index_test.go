package scribe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"card-codec/internal/vcard"
)

func parseCtx(v vcard.Version) (*ParseContext, *vcard.Warnings) {
	warnings := &vcard.Warnings{}
	return &ParseContext{Version: v, Warnings: warnings, Line: 1}, warnings
}

func writeCtx(r *vcard.Record, v vcard.Version) (*WriteContext, *vcard.Warnings) {
	warnings := &vcard.Warnings{}
	return &WriteContext{Version: v, Record: r, Warnings: warnings}, warnings
}

func params(pairs ...string) *vcard.Params {
	p := vcard.NewParams()
	for i := 0; i+1 < len(pairs); i += 2 {
		p.Put(pairs[i], pairs[i+1])
	}
	return p
}

func TestDefaultIndex_Lookups(t *testing.T) {
	idx := NewDefaultIndex()

	s, ok := idx.Lookup("tel")
	require.True(t, ok)
	assert.Equal(t, vcard.PropTelephone, s.Name())

	byValue, ok := idx.ForValue(&vcard.Telephone{})
	require.True(t, ok)
	assert.Equal(t, vcard.PropTelephone, byValue.Name())

	byClass, ok := idx.ForHTMLClass("adr")
	require.True(t, ok)
	assert.Equal(t, vcard.PropAddress, byClass.Name())

	unknown := idx.ForName("x-custom")
	assert.Equal(t, "X-CUSTOM", unknown.Name())
	assert.Contains(t, idx.Names(), vcard.PropAgent)
}

func TestIndex_RegisterReplacesAndUnregister(t *testing.T) {
	idx := NewDefaultIndex()
	replacement := newText[vcard.Note](vcard.PropNote, only40, fixed(vcard.DataTypeText))
	idx.Register(replacement)

	s, ok := idx.Lookup(vcard.PropNote)
	require.True(t, ok)
	assert.Equal(t, only40, s.Versions())

	idx.Unregister(vcard.PropNote)
	_, ok = idx.Lookup(vcard.PropNote)
	assert.False(t, ok)
	_, ok = idx.ForValue(&vcard.Note{})
	assert.False(t, ok)
}

func TestIndex_ParseText_ConsumesValueParam(t *testing.T) {
	idx := NewDefaultIndex()
	ctx, warnings := parseCtx(vcard.V40)

	out := idx.ParseText("", "TEL", params("VALUE", "uri", "TYPE", "home"), "tel:+1-555-0100", ctx)

	require.Equal(t, OutcomeValue, out.Kind)
	tel := out.Property.Value.(*vcard.Telephone)
	assert.Equal(t, "tel:+1-555-0100", tel.URI())
	assert.False(t, out.Property.Params.Has(vcard.ParamValue))
	assert.Equal(t, []string{"home"}, out.Property.Params.Types())
	assert.Empty(t, *warnings)
}

func TestIndex_ParseText_TelephoneText(t *testing.T) {
	idx := NewDefaultIndex()
	ctx, _ := parseCtx(vcard.V30)

	out := idx.ParseText("item1", "tel", params("TYPE", "work"), `+1 555 0100`, ctx)

	require.Equal(t, OutcomeValue, out.Kind)
	assert.Equal(t, "item1", out.Property.Group)
	assert.Equal(t, "+1 555 0100", out.Property.Value.(*vcard.Telephone).Text())
}

func TestIndex_WriteText_TelURIBefore40(t *testing.T) {
	idx := NewDefaultIndex()
	r := vcard.NewRecord(vcard.V30)
	tel := &vcard.Telephone{}
	tel.SetURI("tel:+1-555-0100;ext=12")
	prop := r.Add(tel)

	ctx, _ := writeCtx(r, vcard.V30)
	w, err := idx.WriteText(prop, ctx)
	require.NoError(t, err)
	assert.Equal(t, "+1-555-0100", w.Text)
	assert.False(t, w.Params.Has(vcard.ParamValue))

	ctx, _ = writeCtx(r, vcard.V40)
	w, err = idx.WriteText(prop, ctx)
	require.NoError(t, err)
	assert.Equal(t, "tel:+1-555-0100;ext=12", w.Text)
	assert.Equal(t, "uri", w.Params.Get(vcard.ParamValue))
}

func TestIndex_WriteText_UnsupportedVersionStillWritten(t *testing.T) {
	idx := NewDefaultIndex()
	r := vcard.NewRecord(vcard.V30)
	prop := r.Add(vcard.NewText[vcard.Kind]("individual"))

	ctx, warnings := writeCtx(r, vcard.V30)
	w, err := idx.WriteText(prop, ctx)
	require.NoError(t, err)
	assert.Equal(t, "individual", w.Text)
	assert.Equal(t, []int{vcard.WarnUnsupportedProperty}, warnings.Codes())
}

func TestIndex_UnknownPropertyKeptVerbatim(t *testing.T) {
	idx := NewDefaultIndex()
	ctx, warnings := parseCtx(vcard.V30)

	out := idx.ParseText("", "X-SKYPE", params(), `alice\,bob`, ctx)
	require.Equal(t, OutcomeValue, out.Kind)
	raw := out.Property.Value.(*vcard.Raw)
	assert.Equal(t, "X-SKYPE", raw.Name)
	assert.Equal(t, `alice\,bob`, raw.Value)
	assert.Empty(t, *warnings)

	r := vcard.NewRecord(vcard.V30)
	r.AddProperty(out.Property)
	wctx, _ := writeCtx(r, vcard.V30)
	w, err := idx.WriteText(out.Property, wctx)
	require.NoError(t, err)
	assert.Equal(t, "X-SKYPE", w.Name)
	assert.Equal(t, `alice\,bob`, w.Text)
	assert.False(t, w.Params.Has(vcard.ParamValue))
}

func TestIndex_SkipDoesNotAbort(t *testing.T) {
	idx := NewDefaultIndex()

	t.Run("missing parts are skipped", func(t *testing.T) {
		ctx, warnings := parseCtx(vcard.V40)
		out := idx.ParseText("", "CLIENTPIDMAP", params(), ";", ctx)
		assert.Equal(t, OutcomeSkip, out.Kind)
		assert.Nil(t, out.Property)
		assert.Equal(t, []int{vcard.WarnSkipped}, warnings.Codes())
	})

	t.Run("bad pid is kept raw", func(t *testing.T) {
		ctx, warnings := parseCtx(vcard.V40)
		out := idx.ParseText("", "CLIENTPIDMAP", params(), "one;urn:uuid:1234", ctx)
		require.Equal(t, OutcomeCannotParse, out.Kind)
		raw := out.Property.Value.(*vcard.Raw)
		assert.Equal(t, vcard.PropClientPidMap, raw.Name)
		assert.Equal(t, "one;urn:uuid:1234", raw.Value)
		assert.Equal(t, []int{vcard.WarnStoredAsRaw}, warnings.Codes())
	})

	t.Run("valid map", func(t *testing.T) {
		ctx, _ := parseCtx(vcard.V40)
		out := idx.ParseText("", "CLIENTPIDMAP", params(), "1;urn:uuid:1234", ctx)
		require.Equal(t, OutcomeValue, out.Kind)
		m := out.Property.Value.(*vcard.ClientPidMap)
		require.NotNil(t, m.PID)
		assert.Equal(t, 1, *m.PID)
		assert.Equal(t, "urn:uuid:1234", m.URI)
	})

	t.Run("write skip", func(t *testing.T) {
		r := vcard.NewRecord(vcard.V40)
		prop := r.Add(&vcard.ClientPidMap{URI: "urn:uuid:1234"})
		ctx, warnings := writeCtx(r, vcard.V40)
		_, err := idx.WriteText(prop, ctx)
		require.Error(t, err)
		assert.Equal(t, []int{vcard.WarnSkipped}, warnings.Codes())
	})
}

func TestIndex_BinaryNegotiation(t *testing.T) {
	idx := NewDefaultIndex()

	t.Run("2.1 url heuristic", func(t *testing.T) {
		ctx, warnings := parseCtx(vcard.V21)
		out := idx.ParseText("", "PHOTO", params(), "http://example.com/me.jpg", ctx)
		require.Equal(t, OutcomeValue, out.Kind)
		assert.Equal(t, "http://example.com/me.jpg", out.Property.Value.(*vcard.Photo).URL())
		assert.Equal(t, []int{vcard.WarnAssumedURL}, warnings.Codes())
	})

	t.Run("2.1 base64 heuristic", func(t *testing.T) {
		ctx, warnings := parseCtx(vcard.V21)
		out := idx.ParseText("", "PHOTO", params(), "aGVsbG8=", ctx)
		require.Equal(t, OutcomeValue, out.Kind)
		assert.Equal(t, []byte("hello"), out.Property.Value.(*vcard.Photo).Data())
		assert.Equal(t, []int{vcard.WarnAssumedBase64}, warnings.Codes())
	})

	t.Run("3.0 inline with type", func(t *testing.T) {
		ctx, warnings := parseCtx(vcard.V30)
		out := idx.ParseText("", "PHOTO", params("ENCODING", "b", "TYPE", "JPEG"), "aGVsbG8=", ctx)
		require.Equal(t, OutcomeValue, out.Kind)
		photo := out.Property.Value.(*vcard.Photo)
		assert.Equal(t, []byte("hello"), photo.Data())
		assert.Equal(t, "image/jpeg", photo.ContentType())
		assert.True(t, out.Property.Params.IsEmpty())
		assert.Empty(t, *warnings)
	})

	t.Run("4.0 bare value is a uri", func(t *testing.T) {
		ctx, warnings := parseCtx(vcard.V40)
		out := idx.ParseText("", "PHOTO", params(), "aGVsbG8=", ctx)
		require.Equal(t, OutcomeValue, out.Kind)
		photo := out.Property.Value.(*vcard.Photo)
		assert.Equal(t, "aGVsbG8=", photo.URL())
		assert.Nil(t, photo.Data())
		assert.Empty(t, *warnings)
	})

	t.Run("4.0 data uri", func(t *testing.T) {
		ctx, warnings := parseCtx(vcard.V40)
		out := idx.ParseText("", "PHOTO", params(), "data:image/png;base64,aGVsbG8=", ctx)
		require.Equal(t, OutcomeValue, out.Kind)
		photo := out.Property.Value.(*vcard.Photo)
		assert.Equal(t, []byte("hello"), photo.Data())
		assert.Equal(t, "image/png", photo.ContentType())
		assert.Empty(t, *warnings)
	})

	t.Run("bad base64 kept raw", func(t *testing.T) {
		ctx, _ := parseCtx(vcard.V30)
		out := idx.ParseText("", "LOGO", params("ENCODING", "b"), "!!!not base64!!!", ctx)
		assert.Equal(t, OutcomeCannotParse, out.Kind)
	})
}

func TestIndex_BinaryWrite(t *testing.T) {
	idx := NewDefaultIndex()
	r := vcard.NewRecord(vcard.V30)
	photo := &vcard.Photo{}
	photo.SetData([]byte("hello"), "image/jpeg")
	prop := r.Add(photo)

	ctx, _ := writeCtx(r, vcard.V30)
	w, err := idx.WriteText(prop, ctx)
	require.NoError(t, err)
	assert.Equal(t, "aGVsbG8=", w.Text)
	assert.Equal(t, "b", w.Params.Get(vcard.ParamEncoding))
	assert.Equal(t, "JPEG", w.Params.Get(vcard.ParamType))

	ctx, _ = writeCtx(r, vcard.V21)
	w, err = idx.WriteText(prop, ctx)
	require.NoError(t, err)
	assert.Equal(t, "BASE64", w.Params.Get(vcard.ParamEncoding))

	ctx, _ = writeCtx(r, vcard.V40)
	w, err = idx.WriteText(prop, ctx)
	require.NoError(t, err)
	assert.Equal(t, "data:image/jpeg;base64,aGVsbG8=", w.Text)
	assert.False(t, w.Params.Has(vcard.ParamEncoding))
	assert.False(t, w.Params.Has(vcard.ParamValue))

	linked := &vcard.Sound{}
	linked.SetURL("http://example.com/hi.ogg", "audio/ogg")
	prop = r.Add(linked)
	ctx, _ = writeCtx(r, vcard.V21)
	w, err = idx.WriteText(prop, ctx)
	require.NoError(t, err)
	assert.Equal(t, "URL", w.Params.Get(vcard.ParamValue))
	assert.Equal(t, "OGG", w.Params.Get(vcard.ParamType))
	assert.True(t, prop.Params.IsEmpty())
}

func TestIndex_PrefOrdering(t *testing.T) {
	idx := NewDefaultIndex()
	r := vcard.NewRecord(vcard.V40)
	var props []*vcard.Property
	for i, pref := range []int{3, 1, 2, 0} {
		prop := r.Add(vcard.NewText[vcard.Email]("user" + string(rune('a'+i)) + "@example.com"))
		if pref > 0 {
			p := pref
			prop.Params.SetPref(&p)
		}
		props = append(props, prop)
	}

	for _, v := range []vcard.Version{vcard.V21, vcard.V30} {
		var marked []int
		for n, prop := range props {
			ctx, _ := writeCtx(r, v)
			w, err := idx.WriteText(prop, ctx)
			require.NoError(t, err)
			assert.False(t, w.Params.Has(vcard.ParamPref))
			if w.Params.HasType(vcard.TypePref) {
				marked = append(marked, n)
			}
		}
		assert.Equal(t, []int{1}, marked, "version %s", v)
	}

	require.NotNil(t, props[0].Params.Pref())
	assert.Equal(t, 3, *props[0].Params.Pref())
	assert.False(t, props[1].Params.HasType(vcard.TypePref))
}

func TestIndex_PrefMarkerOnlyOnWinner(t *testing.T) {
	idx := NewDefaultIndex()
	r := vcard.NewRecord(vcard.V40)
	tel := func(number string) *vcard.Telephone {
		v := &vcard.Telephone{}
		v.SetText(number)
		return v
	}
	winner := r.Add(tel("2"))
	one := 1
	winner.Params.SetPref(&one)
	stale := r.Add(tel("5"))
	stale.Params.AddType(vcard.TypePref)
	stale.Params.AddType("work")

	for _, v := range []vcard.Version{vcard.V21, vcard.V30} {
		ctx, _ := writeCtx(r, v)
		w, err := idx.WriteText(winner, ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{vcard.TypePref}, w.Params.Types(), "version %s", v)

		ctx, _ = writeCtx(r, v)
		w, err = idx.WriteText(stale, ctx)
		require.NoError(t, err)
		assert.False(t, w.Params.HasType(vcard.TypePref), "version %s", v)
		assert.True(t, w.Params.HasType("work"))
	}
	assert.True(t, stale.Params.HasType(vcard.TypePref))

	// Without a PREF anywhere the stored marker is the only preference.
	r = vcard.NewRecord(vcard.V30)
	only := r.Add(vcard.NewText[vcard.Email]("a@example.com"))
	only.Params.AddType(vcard.TypePref)
	r.Add(vcard.NewText[vcard.Email]("b@example.com"))
	ctx, _ := writeCtx(r, vcard.V30)
	w, err := idx.WriteText(only, ctx)
	require.NoError(t, err)
	assert.True(t, w.Params.HasType(vcard.TypePref))
}

func TestIndex_PrefFrom3To4(t *testing.T) {
	idx := NewDefaultIndex()
	ctx, _ := parseCtx(vcard.V30)
	out := idx.ParseText("", "EMAIL", params("TYPE", "internet,pref"), "a@example.com", ctx)
	require.Equal(t, OutcomeValue, out.Kind)

	r := vcard.NewRecord(vcard.V30)
	r.AddProperty(out.Property)
	wctx, _ := writeCtx(r, vcard.V40)
	w, err := idx.WriteText(out.Property, wctx)
	require.NoError(t, err)
	assert.Equal(t, "1", w.Params.Get(vcard.ParamPref))
	assert.False(t, w.Params.HasType(vcard.TypePref))
	assert.True(t, w.Params.HasType("internet"))
}

func TestIndex_Dates(t *testing.T) {
	idx := NewDefaultIndex()
	r := vcard.NewRecord(vcard.V40)
	bday := &vcard.Birthday{}
	bday.SetDate(time.Date(1980, 3, 22, 0, 0, 0, 0, time.UTC), false)
	prop := r.Add(bday)

	tests := []struct {
		version vcard.Version
		want    string
	}{
		{vcard.V21, "1980-03-22"},
		{vcard.V30, "1980-03-22"},
		{vcard.V40, "19800322"},
	}
	for _, tt := range tests {
		t.Run(tt.version.String(), func(t *testing.T) {
			ctx, _ := writeCtx(r, tt.version)
			w, err := idx.WriteText(prop, ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, w.Text)
			assert.False(t, w.Params.Has(vcard.ParamValue))
		})
	}

	t.Run("4.0 text", func(t *testing.T) {
		anniversary := &vcard.Anniversary{}
		anniversary.SetText("circa 1800")
		p := r.Add(anniversary)
		ctx, _ := writeCtx(r, vcard.V40)
		w, err := idx.WriteText(p, ctx)
		require.NoError(t, err)
		assert.Equal(t, "text", w.Params.Get(vcard.ParamValue))
		assert.Equal(t, "circa 1800", w.Text)
	})

	t.Run("4.0 partial", func(t *testing.T) {
		ctx, warnings := parseCtx(vcard.V40)
		out := idx.ParseText("", "BDAY", params(), "--0322", ctx)
		require.Equal(t, OutcomeValue, out.Kind)
		pd := out.Property.Value.(*vcard.Birthday).Partial()
		require.NotNil(t, pd)
		assert.Nil(t, pd.Year)
		assert.Equal(t, 3, *pd.Month)
		assert.Equal(t, 22, *pd.Day)
		assert.Empty(t, *warnings)
	})

	t.Run("bad date before 4.0 is kept raw", func(t *testing.T) {
		ctx, _ := parseCtx(vcard.V30)
		out := idx.ParseText("", "BDAY", params(), "sometime", ctx)
		assert.Equal(t, OutcomeCannotParse, out.Kind)
	})

	t.Run("bad date in 4.0 becomes text", func(t *testing.T) {
		ctx, warnings := parseCtx(vcard.V40)
		out := idx.ParseText("", "BDAY", params(), "sometime", ctx)
		require.Equal(t, OutcomeValue, out.Kind)
		assert.Equal(t, "sometime", out.Property.Value.(*vcard.Birthday).Text())
		assert.Equal(t, []int{vcard.WarnBadDate}, warnings.Codes())
	})
}

func TestIndex_Geo(t *testing.T) {
	idx := NewDefaultIndex()

	ctx, _ := parseCtx(vcard.V30)
	out := idx.ParseText("", "GEO", params(), "37.386013;-122.082932", ctx)
	require.Equal(t, OutcomeValue, out.Kind)
	geo := out.Property.Value.(*vcard.Geo)
	assert.InDelta(t, 37.386013, *geo.Latitude, 1e-9)
	assert.InDelta(t, -122.082932, *geo.Longitude, 1e-9)

	r := vcard.NewRecord(vcard.V40)
	r.AddProperty(out.Property)
	wctx, _ := writeCtx(r, vcard.V40)
	w, err := idx.WriteText(out.Property, wctx)
	require.NoError(t, err)
	assert.Equal(t, "geo:37.386013,-122.082932", w.Text)

	wctx, _ = writeCtx(r, vcard.V30)
	w, err = idx.WriteText(out.Property, wctx)
	require.NoError(t, err)
	assert.Equal(t, "37.386013;-122.082932", w.Text)

	ctx, warnings := parseCtx(vcard.V21)
	out = idx.ParseText("", "GEO", params(), "37.386013", ctx)
	require.Equal(t, OutcomeValue, out.Kind)
	assert.Nil(t, out.Property.Value.(*vcard.Geo).Longitude)
	assert.Equal(t, []int{vcard.WarnMissingLongitude}, warnings.Codes())
}

func TestIndex_Timezone(t *testing.T) {
	idx := NewDefaultIndex()

	ctx, _ := parseCtx(vcard.V30)
	out := idx.ParseText("", "TZ", params(), "-05:00", ctx)
	require.Equal(t, OutcomeValue, out.Kind)
	tz := out.Property.Value.(*vcard.Timezone)
	require.NotNil(t, tz.Offset)
	assert.True(t, tz.Offset.Negative)
	assert.Equal(t, 5, tz.Offset.Hours)

	r := vcard.NewRecord(vcard.V40)
	r.AddProperty(out.Property)
	wctx, _ := writeCtx(r, vcard.V40)
	w, err := idx.WriteText(out.Property, wctx)
	require.NoError(t, err)
	assert.Equal(t, "-0500", w.Text)
	assert.Equal(t, "utc-offset", w.Params.Get(vcard.ParamValue))

	ctx, _ = parseCtx(vcard.V40)
	out = idx.ParseText("", "TZ", params(), "America/New_York", ctx)
	require.Equal(t, OutcomeValue, out.Kind)
	assert.Equal(t, "America/New_York", out.Property.Value.(*vcard.Timezone).Text)
}

func TestIndex_Agent(t *testing.T) {
	idx := NewDefaultIndex()

	t.Run("nested 2.1 record", func(t *testing.T) {
		ctx, _ := parseCtx(vcard.V21)
		out := idx.ParseText("", "AGENT", params(), "", ctx)
		require.Equal(t, OutcomeEmbedded, out.Kind)
		require.NotNil(t, out.Embedded)
		assert.Empty(t, out.Embedded.Text)

		child := vcard.NewRecord(vcard.V21)
		child.Add(vcard.NewText[vcard.FormattedName]("Jane"))
		out.Embedded.Inject(child)
		assert.Same(t, child, out.Property.Value.(*vcard.Agent).Record())
	})

	t.Run("escaped 3.0 record", func(t *testing.T) {
		ctx, _ := parseCtx(vcard.V30)
		out := idx.ParseText("", "AGENT", params(), `BEGIN:VCARD\nVERSION:3.0\nFN:Jane\nEND:VCARD`, ctx)
		require.Equal(t, OutcomeEmbedded, out.Kind)
		assert.Equal(t, "BEGIN:VCARD\nVERSION:3.0\nFN:Jane\nEND:VCARD", out.Embedded.Text)
	})

	t.Run("url", func(t *testing.T) {
		ctx, _ := parseCtx(vcard.V30)
		out := idx.ParseText("", "AGENT", params("VALUE", "uri"), "http://example.com/agent.vcf", ctx)
		require.Equal(t, OutcomeValue, out.Kind)
		assert.Equal(t, "http://example.com/agent.vcf", out.Property.Value.(*vcard.Agent).URL())
	})

	t.Run("write embedded", func(t *testing.T) {
		r := vcard.NewRecord(vcard.V30)
		agent := &vcard.Agent{}
		child := vcard.NewRecord(vcard.V30)
		agent.SetRecord(child)
		prop := r.Add(agent)

		ctx, _ := writeCtx(r, vcard.V30)
		w, err := idx.WriteText(prop, ctx)
		require.NoError(t, err)
		assert.Same(t, child, w.Embedded)
		assert.Empty(t, w.Text)
	})
}

func TestIndex_Validate(t *testing.T) {
	idx := NewDefaultIndex()
	r := vcard.NewRecord(vcard.V30)
	r.Add(vcard.NewText[vcard.FormattedName]("Jane Doe"))
	r.Add(vcard.NewText[vcard.Kind]("robot"))
	r.Add(&vcard.Gender{Sex: "Q"})

	agent := &vcard.Agent{}
	agent.SetRecord(vcard.NewRecord(vcard.V30))
	r.Add(agent)

	warnings := idx.Validate(r, vcard.V30)
	codes := warnings.Codes()
	assert.Contains(t, codes, vcard.WarnMissingRequired)
	assert.Contains(t, codes, vcard.WarnUnsupportedProperty)
	assert.Contains(t, codes, vcard.WarnUnknownKind)
	assert.Contains(t, codes, vcard.WarnBadSex)

	var agentWarnings int
	for _, w := range warnings {
		if len(w.Message) > 7 && w.Message[:7] == "AGENT: " {
			agentWarnings++
		}
	}
	assert.Equal(t, 2, agentWarnings)

	complete := vcard.NewRecord(vcard.V40)
	complete.Add(vcard.NewText[vcard.FormattedName]("Jane Doe"))
	complete.Add(vcard.NewText[vcard.Language]("en-US"))
	assert.Empty(t, idx.Validate(complete, vcard.V40))
}
