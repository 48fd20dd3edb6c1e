package vcard

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// UTCOffset is a signed hour/minute offset from UTC. Negative is kept apart
// from Hours so that "-00:30" survives.
type UTCOffset struct {
	Negative bool
	Hours    int
	Minutes  int
}

var utcOffsetPattern = regexp.MustCompile(`^([+-])?(\d{1,2}):?(\d{2})?$`)

// ParseUTCOffset parses "+05:00", "-0500", "+05" or "Z".
func ParseUTCOffset(s string) (UTCOffset, error) {
	s = strings.TrimSpace(s)
	if s == "Z" || s == "z" {
		return UTCOffset{}, nil
	}
	m := utcOffsetPattern.FindStringSubmatch(s)
	if m == nil {
		return UTCOffset{}, fmt.Errorf("invalid UTC offset %q", s)
	}
	hours, _ := strconv.Atoi(m[2])
	minutes := 0
	if m[3] != "" {
		minutes, _ = strconv.Atoi(m[3])
	}
	if minutes > 59 {
		return UTCOffset{}, fmt.Errorf("invalid UTC offset %q: minutes out of range", s)
	}
	return UTCOffset{Negative: m[1] == "-", Hours: hours, Minutes: minutes}, nil
}

// OffsetFromSeconds converts a zone offset in seconds east of UTC.
func OffsetFromSeconds(seconds int) UTCOffset {
	o := UTCOffset{Negative: seconds < 0}
	if seconds < 0 {
		seconds = -seconds
	}
	o.Hours = seconds / 3600
	o.Minutes = (seconds % 3600) / 60
	return o
}

// Seconds returns the offset in seconds east of UTC.
func (o UTCOffset) Seconds() int {
	s := o.Hours*3600 + o.Minutes*60
	if o.Negative {
		return -s
	}
	return s
}

// Format renders "+0500" (basic) or "+05:00" (extended).
func (o UTCOffset) Format(extended bool) string {
	sign := "+"
	if o.Negative {
		sign = "-"
	}
	if extended {
		return fmt.Sprintf("%s%02d:%02d", sign, o.Hours, o.Minutes)
	}
	return fmt.Sprintf("%s%02d%02d", sign, o.Hours, o.Minutes)
}

func (o UTCOffset) String() string { return o.Format(true) }

// Location returns a fixed time zone for the offset.
func (o UTCOffset) Location() *time.Location {
	if o.Seconds() == 0 {
		return time.UTC
	}
	return time.FixedZone("", o.Seconds())
}

// PartialDate is a reduced-accuracy or truncated date, time or date-time
// (RFC 6350 section 4.3). Absent components are nil.
type PartialDate struct {
	Year   *int
	Month  *int
	Day    *int
	Hour   *int
	Minute *int
	Second *int
	Offset *UTCOffset
}

const zonePattern = `(Z|[+-]\d{2}(?::?\d{2})?)?`

var (
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(\d{4})$`),
		regexp.MustCompile(`^(\d{4})-(\d{2})$`),
		regexp.MustCompile(`^(\d{4})-?(\d{2})-?(\d{2})$`),
		regexp.MustCompile(`^--()(\d{2})-?(\d{2})$`),
		regexp.MustCompile(`^--()(\d{2})$`),
		regexp.MustCompile(`^---()()(\d{2})$`),
	}
	timePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(\d{2})(?::?(\d{2})(?::?(\d{2}))?)?` + zonePattern + `$`),
		regexp.MustCompile(`^-()(\d{2}):?(\d{2})` + zonePattern + `$`),
		regexp.MustCompile(`^--()()(\d{2})` + zonePattern + `$`),
	}
)

func optInt(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// ParsePartialDate parses any RFC 6350 date, time or date-time form, basic
// or extended. A standalone time must be prefixed with "T".
func ParsePartialDate(s string) (PartialDate, error) {
	s = strings.TrimSpace(s)
	datePart, timePart, hasTime := strings.Cut(s, "T")
	if !hasTime {
		if lower, upper, ok := strings.Cut(s, "t"); ok {
			datePart, timePart, hasTime = lower, upper, true
		}
	}

	var pd PartialDate
	if datePart != "" {
		matched := false
		for _, re := range datePatterns {
			if m := re.FindStringSubmatch(datePart); m != nil {
				pd.Year = optInt(m[1])
				if len(m) > 2 {
					pd.Month = optInt(m[2])
				}
				if len(m) > 3 {
					pd.Day = optInt(m[3])
				}
				matched = true
				break
			}
		}
		if !matched {
			return PartialDate{}, fmt.Errorf("invalid date %q", s)
		}
	}

	if hasTime {
		matched := false
		for _, re := range timePatterns {
			m := re.FindStringSubmatch(timePart)
			if m == nil {
				continue
			}
			pd.Hour, pd.Minute, pd.Second = optInt(m[1]), optInt(m[2]), optInt(m[3])
			if m[4] != "" {
				offset, err := ParseUTCOffset(m[4])
				if err != nil {
					return PartialDate{}, err
				}
				pd.Offset = &offset
			}
			matched = true
			break
		}
		if !matched {
			return PartialDate{}, fmt.Errorf("invalid time %q", s)
		}
	} else if datePart == "" {
		return PartialDate{}, fmt.Errorf("empty date")
	}

	if err := pd.checkRanges(); err != nil {
		return PartialDate{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return pd, nil
}

func (pd PartialDate) checkRanges() error {
	check := func(v *int, lo, hi int, name string) error {
		if v != nil && (*v < lo || *v > hi) {
			return fmt.Errorf("%s %d out of range", name, *v)
		}
		return nil
	}
	for _, err := range []error{
		check(pd.Month, 1, 12, "month"),
		check(pd.Day, 1, 31, "day"),
		check(pd.Hour, 0, 24, "hour"),
		check(pd.Minute, 0, 59, "minute"),
		check(pd.Second, 0, 60, "second"),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// HasDate reports whether any date component is present.
func (pd PartialDate) HasDate() bool {
	return pd.Year != nil || pd.Month != nil || pd.Day != nil
}

// HasTime reports whether any time component is present.
func (pd PartialDate) HasTime() bool {
	return pd.Hour != nil || pd.Minute != nil || pd.Second != nil
}

// IsComplete reports whether the value is a full date with, when a time is
// present, at least hours and minutes.
func (pd PartialDate) IsComplete() bool {
	if pd.Year == nil || pd.Month == nil || pd.Day == nil {
		return false
	}
	if !pd.HasTime() {
		return true
	}
	return pd.Hour != nil && pd.Minute != nil
}

// Time converts a complete value to a time.Time. Values without a zone are
// taken as UTC.
func (pd PartialDate) Time() (time.Time, bool) {
	if !pd.IsComplete() {
		return time.Time{}, false
	}
	loc := time.UTC
	if pd.Offset != nil {
		loc = pd.Offset.Location()
	}
	get := func(v *int) int {
		if v == nil {
			return 0
		}
		return *v
	}
	return time.Date(*pd.Year, time.Month(*pd.Month), *pd.Day,
		get(pd.Hour), get(pd.Minute), get(pd.Second), 0, loc), true
}

// Format renders the value in basic ("--0415", "T1022") or extended
// ("--04-15", "T10:22") format.
func (pd PartialDate) Format(extended bool) string {
	var b strings.Builder
	dash, colon := "", ""
	if extended {
		dash, colon = "-", ":"
	}

	switch {
	case pd.Year != nil && pd.Month != nil && pd.Day != nil:
		fmt.Fprintf(&b, "%04d%s%02d%s%02d", *pd.Year, dash, *pd.Month, dash, *pd.Day)
	case pd.Year != nil && pd.Month != nil:
		fmt.Fprintf(&b, "%04d-%02d", *pd.Year, *pd.Month)
	case pd.Year != nil:
		fmt.Fprintf(&b, "%04d", *pd.Year)
	case pd.Month != nil && pd.Day != nil:
		fmt.Fprintf(&b, "--%02d%s%02d", *pd.Month, dash, *pd.Day)
	case pd.Month != nil:
		fmt.Fprintf(&b, "--%02d", *pd.Month)
	case pd.Day != nil:
		fmt.Fprintf(&b, "---%02d", *pd.Day)
	}

	if pd.HasTime() {
		b.WriteString("T")
		switch {
		case pd.Hour != nil:
			fmt.Fprintf(&b, "%02d", *pd.Hour)
			if pd.Minute != nil {
				fmt.Fprintf(&b, "%s%02d", colon, *pd.Minute)
				if pd.Second != nil {
					fmt.Fprintf(&b, "%s%02d", colon, *pd.Second)
				}
			}
		case pd.Minute != nil:
			fmt.Fprintf(&b, "-%02d", *pd.Minute)
			if pd.Second != nil {
				fmt.Fprintf(&b, "%s%02d", colon, *pd.Second)
			}
		default:
			fmt.Fprintf(&b, "--%02d", *pd.Second)
		}
		if pd.Offset != nil {
			b.WriteString(formatZone(*pd.Offset, extended))
		}
	}
	return b.String()
}

func formatZone(o UTCOffset, extended bool) string {
	if o.Seconds() == 0 && !o.Negative {
		return "Z"
	}
	return o.Format(extended)
}

// FormatDate renders a calendar date.
func FormatDate(t time.Time, extended bool) string {
	if extended {
		return t.Format("2006-01-02")
	}
	return t.Format("20060102")
}

// FormatDateTime renders a date-time with its zone ("Z" for UTC).
func FormatDateTime(t time.Time, extended bool) string {
	_, seconds := t.Zone()
	zone := formatZone(OffsetFromSeconds(seconds), extended)
	if extended {
		return t.Format("2006-01-02T15:04:05") + zone
	}
	return t.Format("20060102T150405") + zone
}

// ParseTimestamp parses a complete date or date-time in basic or extended
// format.
func ParseTimestamp(s string) (time.Time, error) {
	pd, err := ParsePartialDate(s)
	if err != nil {
		return time.Time{}, err
	}
	t, ok := pd.Time()
	if !ok {
		return time.Time{}, fmt.Errorf("incomplete timestamp %q", s)
	}
	return t, nil
}

// DateOrTime is the value of BDAY, ANNIVERSARY and DEATHDATE. Exactly one of
// the complete time, partial date or text slots is populated; each setter
// clears the others.
type DateOrTime struct {
	valueMarker
	date    *time.Time
	partial *PartialDate
	text    string
	hasTime bool
}

// Date returns the complete date or date-time, if set.
func (d *DateOrTime) Date() (time.Time, bool) {
	if d.date == nil {
		return time.Time{}, false
	}
	return *d.date, true
}

// Partial returns the reduced-accuracy value, or nil.
func (d *DateOrTime) Partial() *PartialDate { return d.partial }

// Text returns the free-text value, or "".
func (d *DateOrTime) Text() string { return d.text }

// HasTime reports whether a time-of-day component is present. It is always
// false for text values.
func (d *DateOrTime) HasTime() bool { return d.hasTime }

// SetDate stores a complete date (hasTime false) or date-time.
func (d *DateOrTime) SetDate(t time.Time, hasTime bool) {
	d.date, d.partial, d.text = &t, nil, ""
	d.hasTime = hasTime
}

// SetPartial stores a reduced-accuracy value.
func (d *DateOrTime) SetPartial(pd PartialDate) {
	d.date, d.partial, d.text = nil, &pd, ""
	d.hasTime = pd.HasTime()
}

// SetText stores free text.
func (d *DateOrTime) SetText(s string) {
	d.date, d.partial, d.text = nil, nil, s
	d.hasTime = false
}

// IsEmpty reports whether no slot is populated.
func (d *DateOrTime) IsEmpty() bool {
	return d.date == nil && d.partial == nil && d.text == ""
}

// Date properties.
type (
	Birthday    struct{ DateOrTime } // BDAY
	Anniversary struct{ DateOrTime } // ANNIVERSARY
	Deathdate   struct{ DateOrTime } // DEATHDATE
)

// Revision is the value of REV.
type Revision struct {
	valueMarker
	Time time.Time
}
