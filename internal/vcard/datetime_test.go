package vcard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(n int) *int { return &n }

func TestParsePartialDate(t *testing.T) {
	tests := []struct {
		in       string
		want     PartialDate
		basic    string
		extended string
	}{
		{"1996", PartialDate{Year: intp(1996)}, "1996", "1996"},
		{"1996-04", PartialDate{Year: intp(1996), Month: intp(4)}, "1996-04", "1996-04"},
		{"--0415", PartialDate{Month: intp(4), Day: intp(15)}, "--0415", "--04-15"},
		{"--04", PartialDate{Month: intp(4)}, "--04", "--04"},
		{"---15", PartialDate{Day: intp(15)}, "---15", "---15"},
		{"T1022", PartialDate{Hour: intp(10), Minute: intp(22)}, "T1022", "T10:22"},
		{"T-2200", PartialDate{Minute: intp(22), Second: intp(0)}, "T-2200", "T-22:00"},
		{"T--30", PartialDate{Second: intp(30)}, "T--30", "T--30"},
		{
			"--04-15T10:22:00-05:00",
			PartialDate{Month: intp(4), Day: intp(15), Hour: intp(10), Minute: intp(22), Second: intp(0),
				Offset: &UTCOffset{Negative: true, Hours: 5}},
			"--0415T102200-0500", "--04-15T10:22:00-05:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePartialDate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.basic, got.Format(false))
			assert.Equal(t, tt.extended, got.Format(true))
		})
	}
}

func TestParsePartialDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "yesterday", "1996-13-01", "T25", "19960415T10:99"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParsePartialDate(in)
			assert.Error(t, err)
		})
	}
}

func TestPartialDate_Time(t *testing.T) {
	pd, err := ParsePartialDate("19960415T102200")
	require.NoError(t, err)
	require.True(t, pd.IsComplete())

	got, ok := pd.Time()
	require.True(t, ok)
	assert.Equal(t, time.Date(1996, 4, 15, 10, 22, 0, 0, time.UTC), got)

	pd, err = ParsePartialDate("1996-04-15T10:22:00+05:30")
	require.NoError(t, err)
	got, _ = pd.Time()
	_, offset := got.Zone()
	assert.Equal(t, 5*3600+30*60, offset)

	pd, _ = ParsePartialDate("--0415")
	_, ok = pd.Time()
	assert.False(t, ok)
}

func TestUTCOffset(t *testing.T) {
	tests := []struct {
		in       string
		want     UTCOffset
		basic    string
		extended string
	}{
		{"+05:00", UTCOffset{Hours: 5}, "+0500", "+05:00"},
		{"-0530", UTCOffset{Negative: true, Hours: 5, Minutes: 30}, "-0530", "-05:30"},
		{"-00:30", UTCOffset{Negative: true, Minutes: 30}, "-0030", "-00:30"},
		{"+5", UTCOffset{Hours: 5}, "+0500", "+05:00"},
		{"Z", UTCOffset{}, "+0000", "+00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseUTCOffset(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.basic, got.Format(false))
			assert.Equal(t, tt.extended, got.Format(true))
		})
	}

	_, err := ParseUTCOffset("+05:75")
	assert.Error(t, err)
	_, err = ParseUTCOffset("EST")
	assert.Error(t, err)

	assert.Equal(t, -19800, UTCOffset{Negative: true, Hours: 5, Minutes: 30}.Seconds())
	assert.Equal(t, UTCOffset{Negative: true, Hours: 5, Minutes: 30}, OffsetFromSeconds(-19800))
}

func TestFormatDateTime(t *testing.T) {
	utc := time.Date(1995, 10, 31, 22, 27, 10, 0, time.UTC)
	assert.Equal(t, "19951031T222710Z", FormatDateTime(utc, false))
	assert.Equal(t, "1995-10-31T22:27:10Z", FormatDateTime(utc, true))

	est := time.Date(1995, 10, 31, 22, 27, 10, 0, time.FixedZone("", -5*3600))
	assert.Equal(t, "19951031T222710-0500", FormatDateTime(est, false))
	assert.Equal(t, "1995-10-31", FormatDate(est, true))

	parsed, err := ParseTimestamp("1995-10-31T22:27:10Z")
	require.NoError(t, err)
	assert.True(t, parsed.Equal(utc))
}

func TestDateOrTime_Exclusive(t *testing.T) {
	var d DateOrTime
	assert.True(t, d.IsEmpty())

	d.SetDate(time.Date(1980, 3, 22, 0, 0, 0, 0, time.UTC), false)
	_, ok := d.Date()
	assert.True(t, ok)
	assert.False(t, d.HasTime())

	d.SetPartial(PartialDate{Month: intp(3), Day: intp(22), Hour: intp(8)})
	_, ok = d.Date()
	assert.False(t, ok)
	assert.True(t, d.HasTime())

	d.SetText("circa 1800")
	assert.Nil(t, d.Partial())
	assert.False(t, d.HasTime())
	assert.Equal(t, "circa 1800", d.Text())
}
