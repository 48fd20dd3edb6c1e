package vcard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParams_MultiMap(t *testing.T) {
	p := NewParams()
	p.Put("type", "home")
	p.Put("LANGUAGE", "en")
	p.Put("Type", "voice")

	assert.Equal(t, "home", p.Get("TYPE"))
	assert.Equal(t, []string{"home", "voice"}, p.GetAll("type"))
	assert.Equal(t, []string{"TYPE", "LANGUAGE"}, p.Names())
	assert.Equal(t, 3, p.Len())
	assert.Equal(t, "", p.Get("PREF"))
	assert.False(t, p.Has("PREF"))

	p.Replace("TYPE", "work")
	assert.Equal(t, []string{"work"}, p.GetAll("TYPE"))
	assert.Equal(t, []string{"TYPE", "LANGUAGE"}, p.Names(), "replace keeps the position")

	removed := p.RemoveAll("type")
	assert.Equal(t, []string{"work"}, removed)
	assert.False(t, p.Has("TYPE"))
}

func TestParams_CopyIsIndependent(t *testing.T) {
	p := NewParams()
	p.Put("TYPE", "home")

	c := p.Copy()
	c.Put("TYPE", "pref")
	c.Replace("LANGUAGE", "fr")

	assert.Equal(t, []string{"home"}, p.GetAll("TYPE"))
	assert.False(t, p.Has("LANGUAGE"))
	assert.True(t, p.Equal(p.Copy()))
	assert.False(t, p.Equal(c))

	var nilParams *Params
	assert.Equal(t, 0, nilParams.Copy().Len())
}

func TestParams_Types(t *testing.T) {
	p := NewParams()
	p.Put("TYPE", "home,pref")
	p.AddType("HOME")
	p.AddType("voice")

	assert.Equal(t, []string{"home", "pref", "voice"}, p.Types())
	assert.True(t, p.HasType("PREF"))

	p.RemoveType("pref")
	assert.Equal(t, []string{"home", "voice"}, p.Types())
	assert.False(t, p.HasType("pref"))
}

func TestParams_Pref(t *testing.T) {
	p := NewParams()
	assert.Nil(t, p.Pref())

	one := 1
	p.SetPref(&one)
	require.NotNil(t, p.Pref())
	assert.Equal(t, 1, *p.Pref())

	p.Replace("PREF", "abc")
	assert.Nil(t, p.Pref())

	p.SetPref(nil)
	assert.False(t, p.Has("PREF"))
}

func TestParams_Pids(t *testing.T) {
	p := NewParams()
	ref := 2
	p.AddPid(1, &ref)
	p.AddPid(3, nil)
	p.Put("PID", "4.5,bad")

	pids := p.Pids()
	require.Len(t, pids, 3)
	assert.Equal(t, "1.2", pids[0].String())
	assert.Equal(t, "3", pids[1].String())
	assert.Equal(t, 4, pids[2].Local)
	assert.Equal(t, 5, *pids[2].ClientPidMapRef)

	p.RemovePids()
	assert.Empty(t, p.Pids())
}

func TestParams_Geo(t *testing.T) {
	tests := []struct {
		value string
		want  *GeoCoord
	}{
		{"geo:37.386013,-122.082932", &GeoCoord{37.386013, -122.082932}},
		{"37.5,-122", &GeoCoord{37.5, -122}},
		{"GEO:1,2;u=10", &GeoCoord{1, 2}},
		{"nonsense", nil},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			p := NewParams()
			p.Put("GEO", tt.value)
			assert.Equal(t, tt.want, p.Geo())
		})
	}

	p := NewParams()
	p.SetGeo(&GeoCoord{Latitude: 1.5, Longitude: -2})
	assert.Equal(t, "geo:1.5,-2", p.Get("GEO"))
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		version Version
		params  map[string]string
		codes   []int
	}{
		{"clean 4.0", V40, map[string]string{"PREF": "1", "TYPE": "home"}, nil},
		{"pref in 3.0", V30, map[string]string{"PREF": "1"}, []int{WarnUnsupportedParameter}},
		{"pref out of range", V40, map[string]string{"PREF": "101"}, []int{WarnInvalidPref}},
		{"bad pid", V40, map[string]string{"PID": "x"}, []int{WarnInvalidPid}},
		{"bad index", V40, map[string]string{"INDEX": "0"}, []int{WarnInvalidIndex}},
		{"bad geo", V40, map[string]string{"GEO": "north"}, []int{WarnInvalidGeoParam}},
		{"base64 in 3.0", V30, map[string]string{"ENCODING": "BASE64"}, []int{WarnUnsupportedEncoding}},
		{"b in 3.0", V30, map[string]string{"ENCODING": "b"}, nil},
		{"encoding in 4.0", V40, map[string]string{"ENCODING": "b"}, []int{WarnUnsupportedEncoding}},
		{"uri in 2.1", V21, map[string]string{"VALUE": "uri"}, []int{WarnUnsupportedDataType}},
		{"bad name", V30, map[string]string{"X_FOO": "1"}, []int{WarnBadParameterName}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParams()
			for k, v := range tt.params {
				p.Put(k, v)
			}
			warnings := Warnings(p.Validate(tt.version))
			if len(tt.codes) == 0 {
				assert.Empty(t, warnings)
				return
			}
			assert.Equal(t, tt.codes, warnings.Codes())
		})
	}
}
