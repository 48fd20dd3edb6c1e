package vcard

import (
	"fmt"
	"strconv"
	"strings"
)

// Well-known parameter names.
const (
	ParamAltID     = "ALTID"
	ParamCalscale  = "CALSCALE"
	ParamCharset   = "CHARSET"
	ParamEncoding  = "ENCODING"
	ParamGeo       = "GEO"
	ParamIndex     = "INDEX"
	ParamLabel     = "LABEL"
	ParamLanguage  = "LANGUAGE"
	ParamLevel     = "LEVEL"
	ParamMediaType = "MEDIATYPE"
	ParamPid       = "PID"
	ParamPref      = "PREF"
	ParamSortAs    = "SORT-AS"
	ParamType      = "TYPE"
	ParamTZ        = "TZ"
	ParamValue     = "VALUE"
)

// TypePref is the TYPE value used by 2.1 and 3.0 to mark the preferred
// instance of a property.
const TypePref = "pref"

// Encoding values.
const (
	EncodingB               = "b"
	EncodingBase64          = "BASE64"
	EncodingQuotedPrintable = "QUOTED-PRINTABLE"
	Encoding7Bit            = "7BIT"
	Encoding8Bit            = "8BIT"
)

type param struct {
	name  string
	value string
}

// Params is an ordered multi-map of parameter names to values. Names are
// compared case-insensitively and stored upper-cased; insertion order is
// kept so that records round-trip faithfully.
type Params struct {
	entries []param
}

// NewParams creates an empty parameter set.
func NewParams() *Params {
	return &Params{}
}

func normalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Get returns the first value of name, or "" when absent.
func (p *Params) Get(name string) string {
	if p == nil {
		return ""
	}
	n := normalizeName(name)
	for _, e := range p.entries {
		if e.name == n {
			return e.value
		}
	}
	return ""
}

// Has reports whether at least one value exists for name.
func (p *Params) Has(name string) bool {
	if p == nil {
		return false
	}
	n := normalizeName(name)
	for _, e := range p.entries {
		if e.name == n {
			return true
		}
	}
	return false
}

// GetAll returns every value of name in insertion order.
func (p *Params) GetAll(name string) []string {
	if p == nil {
		return nil
	}
	n := normalizeName(name)
	var values []string
	for _, e := range p.entries {
		if e.name == n {
			values = append(values, e.value)
		}
	}
	return values
}

// Put appends a value.
func (p *Params) Put(name, value string) {
	p.entries = append(p.entries, param{name: normalizeName(name), value: value})
}

// Replace removes every value of name and inserts value at the position of
// the first removed entry (or at the end).
func (p *Params) Replace(name, value string) {
	n := normalizeName(name)
	pos := -1
	kept := p.entries[:0]
	for _, e := range p.entries {
		if e.name == n {
			if pos < 0 {
				pos = len(kept)
			}
			continue
		}
		kept = append(kept, e)
	}
	p.entries = kept
	entry := param{name: n, value: value}
	if pos < 0 || pos >= len(p.entries) {
		p.entries = append(p.entries, entry)
		return
	}
	p.entries = append(p.entries[:pos+1], p.entries[pos:]...)
	p.entries[pos] = entry
}

// RemoveAll removes every value of name and returns the removed values.
func (p *Params) RemoveAll(name string) []string {
	n := normalizeName(name)
	var removed []string
	kept := p.entries[:0]
	for _, e := range p.entries {
		if e.name == n {
			removed = append(removed, e.value)
			continue
		}
		kept = append(kept, e)
	}
	p.entries = kept
	return removed
}

// Remove removes the values of name equal (case-insensitively) to value.
func (p *Params) Remove(name, value string) {
	n := normalizeName(name)
	kept := p.entries[:0]
	for _, e := range p.entries {
		if e.name == n && strings.EqualFold(e.value, value) {
			continue
		}
		kept = append(kept, e)
	}
	p.entries = kept
}

// Names returns the distinct parameter names in order of first appearance.
func (p *Params) Names() []string {
	if p == nil {
		return nil
	}
	var names []string
	seen := make(map[string]bool)
	for _, e := range p.entries {
		if !seen[e.name] {
			seen[e.name] = true
			names = append(names, e.name)
		}
	}
	return names
}

// Len returns the number of (name, value) pairs.
func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return len(p.entries)
}

// IsEmpty reports whether the set holds no values.
func (p *Params) IsEmpty() bool {
	return p.Len() == 0
}

// Each calls fn for every (name, value) pair in order.
func (p *Params) Each(fn func(name, value string)) {
	if p == nil {
		return
	}
	for _, e := range p.entries {
		fn(e.name, e.value)
	}
}

// Copy returns an independent copy.
func (p *Params) Copy() *Params {
	if p == nil {
		return NewParams()
	}
	c := &Params{entries: make([]param, len(p.entries))}
	copy(c.entries, p.entries)
	return c
}

// Equal reports whether both sets hold the same pairs in the same order.
func (p *Params) Equal(other *Params) bool {
	if p.Len() != other.Len() {
		return false
	}
	for i := 0; i < p.Len(); i++ {
		if p.entries[i] != other.entries[i] {
			return false
		}
	}
	return true
}

// Pref returns the PREF parameter, or nil when absent or not an integer.
func (p *Params) Pref() *int {
	v := p.Get(ParamPref)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

// SetPref sets PREF, or removes it when pref is nil.
func (p *Params) SetPref(pref *int) {
	if pref == nil {
		p.RemoveAll(ParamPref)
		return
	}
	p.Replace(ParamPref, strconv.Itoa(*pref))
}

// AltID returns the ALTID parameter.
func (p *Params) AltID() string {
	return p.Get(ParamAltID)
}

// SetAltID sets ALTID, or removes it when id is empty.
func (p *Params) SetAltID(id string) {
	p.setOrRemove(ParamAltID, id)
}

func (p *Params) setOrRemove(name, value string) {
	if value == "" {
		p.RemoveAll(name)
		return
	}
	p.Replace(name, value)
}

// Types returns the TYPE values. Comma-separated values are split so that
// "TYPE=home,pref" and "TYPE=home;TYPE=pref" read the same.
func (p *Params) Types() []string {
	var types []string
	for _, v := range p.GetAll(ParamType) {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, t)
			}
		}
	}
	return types
}

// HasType reports whether TYPE contains t, ignoring case.
func (p *Params) HasType(t string) bool {
	for _, existing := range p.Types() {
		if strings.EqualFold(existing, t) {
			return true
		}
	}
	return false
}

// AddType appends t to TYPE unless it is already present.
func (p *Params) AddType(t string) {
	if p.HasType(t) {
		return
	}
	p.Put(ParamType, t)
}

// RemoveType removes t from TYPE, splitting comma-joined values as needed.
func (p *Params) RemoveType(t string) {
	if !p.HasType(t) {
		return
	}
	n := normalizeName(ParamType)
	var out []param
	for _, e := range p.entries {
		if e.name != n {
			out = append(out, e)
			continue
		}
		for _, v := range strings.Split(e.value, ",") {
			v = strings.TrimSpace(v)
			if v == "" || strings.EqualFold(v, t) {
				continue
			}
			out = append(out, param{name: n, value: v})
		}
	}
	p.entries = out
}

// Pid is one PID parameter value: a local identifier optionally bound to a
// CLIENTPIDMAP entry.
type Pid struct {
	Local           int
	ClientPidMapRef *int
}

func (pid Pid) String() string {
	if pid.ClientPidMapRef == nil {
		return strconv.Itoa(pid.Local)
	}
	return fmt.Sprintf("%d.%d", pid.Local, *pid.ClientPidMapRef)
}

// ParsePid parses "local" or "local.ref".
func ParsePid(s string) (Pid, error) {
	s = strings.TrimSpace(s)
	localPart, refPart, hasRef := strings.Cut(s, ".")
	local, err := strconv.Atoi(localPart)
	if err != nil {
		return Pid{}, fmt.Errorf("invalid pid %q", s)
	}
	pid := Pid{Local: local}
	if hasRef {
		ref, err := strconv.Atoi(refPart)
		if err != nil {
			return Pid{}, fmt.Errorf("invalid pid %q", s)
		}
		pid.ClientPidMapRef = &ref
	}
	return pid, nil
}

// Pids returns the parsable PID values. Invalid values are ignored here and
// reported by Validate.
func (p *Params) Pids() []Pid {
	var pids []Pid
	for _, v := range p.GetAll(ParamPid) {
		for _, part := range strings.Split(v, ",") {
			if pid, err := ParsePid(part); err == nil {
				pids = append(pids, pid)
			}
		}
	}
	return pids
}

// AddPid appends a PID value.
func (p *Params) AddPid(local int, ref *int) {
	p.Put(ParamPid, Pid{Local: local, ClientPidMapRef: ref}.String())
}

// RemovePids removes every PID value.
func (p *Params) RemovePids() {
	p.RemoveAll(ParamPid)
}

// GeoCoord is a latitude/longitude pair.
type GeoCoord struct {
	Latitude  float64
	Longitude float64
}

// URI renders the coordinate as a geo: URI.
func (g GeoCoord) URI() string {
	return "geo:" + formatFloat(g.Latitude) + "," + formatFloat(g.Longitude)
}

// ParseGeoCoord parses "geo:lat,long" or "lat,long". Any ";params" suffix of
// a geo URI is ignored.
func ParseGeoCoord(s string) (GeoCoord, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 4 && strings.EqualFold(s[:4], "geo:") {
		s = s[4:]
	}
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = s[:i]
	}
	latPart, longPart, ok := strings.Cut(s, ",")
	if !ok {
		return GeoCoord{}, fmt.Errorf("invalid geo value %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latPart), 64)
	if err != nil {
		return GeoCoord{}, fmt.Errorf("invalid latitude %q", latPart)
	}
	long, err := strconv.ParseFloat(strings.TrimSpace(longPart), 64)
	if err != nil {
		return GeoCoord{}, fmt.Errorf("invalid longitude %q", longPart)
	}
	return GeoCoord{Latitude: lat, Longitude: long}, nil
}

// Geo returns the GEO parameter, or nil when absent or malformed.
func (p *Params) Geo() *GeoCoord {
	v := p.Get(ParamGeo)
	if v == "" {
		return nil
	}
	g, err := ParseGeoCoord(v)
	if err != nil {
		return nil
	}
	return &g
}

// SetGeo sets GEO as a geo: URI, or removes it when g is nil.
func (p *Params) SetGeo(g *GeoCoord) {
	if g == nil {
		p.RemoveAll(ParamGeo)
		return
	}
	p.Replace(ParamGeo, g.URI())
}

// Calscale returns the CALSCALE parameter.
func (p *Params) Calscale() string { return p.Get(ParamCalscale) }

// SetCalscale sets or removes CALSCALE.
func (p *Params) SetCalscale(s string) { p.setOrRemove(ParamCalscale, s) }

// Label returns the LABEL parameter.
func (p *Params) Label() string { return p.Get(ParamLabel) }

// SetLabel sets or removes LABEL.
func (p *Params) SetLabel(s string) { p.setOrRemove(ParamLabel, s) }

// Index returns the INDEX parameter, or nil.
func (p *Params) Index() *int {
	n, err := strconv.Atoi(p.Get(ParamIndex))
	if err != nil {
		return nil
	}
	return &n
}

// SetIndex sets INDEX, or removes it when index is nil.
func (p *Params) SetIndex(index *int) {
	if index == nil {
		p.RemoveAll(ParamIndex)
		return
	}
	p.Replace(ParamIndex, strconv.Itoa(*index))
}

// Level returns the LEVEL parameter.
func (p *Params) Level() string { return p.Get(ParamLevel) }

// SetLevel sets or removes LEVEL.
func (p *Params) SetLevel(s string) { p.setOrRemove(ParamLevel, s) }

// MediaType returns the MEDIATYPE parameter.
func (p *Params) MediaType() string { return p.Get(ParamMediaType) }

// SetMediaType sets or removes MEDIATYPE.
func (p *Params) SetMediaType(s string) { p.setOrRemove(ParamMediaType, s) }

// Encoding returns the ENCODING parameter.
func (p *Params) Encoding() string { return p.Get(ParamEncoding) }

// SetEncoding sets or removes ENCODING.
func (p *Params) SetEncoding(s string) { p.setOrRemove(ParamEncoding, s) }

// Charset returns the CHARSET parameter.
func (p *Params) Charset() string { return p.Get(ParamCharset) }

// SetCharset sets or removes CHARSET.
func (p *Params) SetCharset(s string) { p.setOrRemove(ParamCharset, s) }

// Language returns the LANGUAGE parameter.
func (p *Params) Language() string { return p.Get(ParamLanguage) }

// SetLanguage sets or removes LANGUAGE.
func (p *Params) SetLanguage(s string) { p.setOrRemove(ParamLanguage, s) }

// SortAs returns the SORT-AS components.
func (p *Params) SortAs() []string {
	v := p.Get(ParamSortAs)
	if v == "" {
		return nil
	}
	return strings.Split(v, ",")
}

// SetSortAs sets or removes SORT-AS.
func (p *Params) SetSortAs(components ...string) {
	p.setOrRemove(ParamSortAs, strings.Join(components, ","))
}

// TZ returns the TZ parameter.
func (p *Params) TZ() string { return p.Get(ParamTZ) }

// SetTZ sets or removes TZ.
func (p *Params) SetTZ(s string) { p.setOrRemove(ParamTZ, s) }

// ValueType returns the VALUE parameter as a DataType.
func (p *Params) ValueType() DataType {
	return ParseDataType(p.Get(ParamValue))
}

// SetValueType sets VALUE, or removes it when d is DataTypeNone.
func (p *Params) SetValueType(d DataType) {
	p.setOrRemove(ParamValue, string(d))
}

var paramsFor40Only = []string{
	ParamAltID, ParamCalscale, ParamGeo, ParamIndex, ParamLabel, ParamLevel,
	ParamMediaType, ParamPid, ParamPref, ParamSortAs, ParamTZ,
}

var encodingsFor = map[Version][]string{
	V21: {Encoding7Bit, Encoding8Bit, EncodingQuotedPrintable, EncodingBase64},
	V30: {EncodingB},
}

// Validate checks parameter legality for version v.
func (p *Params) Validate(v Version) []Warning {
	var warnings []Warning

	for _, name := range p.Names() {
		if !validParamName(name) {
			warnings = append(warnings, NewWarning(WarnBadParameterName, name))
		}
	}

	if v != V40 {
		for _, name := range paramsFor40Only {
			if p.Has(name) {
				warnings = append(warnings, NewWarning(WarnUnsupportedParameter, name, v))
			}
		}
	}

	if raw := p.Get(ParamPref); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			warnings = append(warnings, NewWarning(WarnInvalidPref, raw))
		}
	}

	for _, raw := range p.GetAll(ParamPid) {
		for _, part := range strings.Split(raw, ",") {
			if _, err := ParsePid(part); err != nil {
				warnings = append(warnings, NewWarning(WarnInvalidPid, part))
			}
		}
	}

	if raw := p.Get(ParamIndex); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			warnings = append(warnings, NewWarning(WarnInvalidIndex, raw))
		}
	}

	if raw := p.Get(ParamGeo); raw != "" {
		if _, err := ParseGeoCoord(raw); err != nil {
			warnings = append(warnings, NewWarning(WarnInvalidGeoParam, raw))
		}
	}

	if enc := p.Get(ParamEncoding); enc != "" {
		supported := false
		for _, e := range encodingsFor[v] {
			if strings.EqualFold(e, enc) {
				supported = true
				break
			}
		}
		if !supported {
			warnings = append(warnings, NewWarning(WarnUnsupportedEncoding, enc, v))
		}
	}

	if dt := p.ValueType(); dt != DataTypeNone && !dt.SupportedIn(v) {
		warnings = append(warnings, NewWarning(WarnUnsupportedDataType, dt, v))
	}

	return warnings
}

func validParamName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !(r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-') {
			return false
		}
	}
	return true
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
