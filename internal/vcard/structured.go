package vcard

// StructuredName is the value of N.
type StructuredName struct {
	valueMarker
	Family     string
	Given      string
	Additional []string
	Prefixes   []string
	Suffixes   []string
}

// Address is the value of ADR. Every component is an ordered list; most
// producers put a single item in each. The address kinds (home, work...)
// travel in the TYPE parameter. Label holds the delivery label, which 4.0
// writes as the LABEL parameter and earlier versions as a LABEL property.
type Address struct {
	valueMarker
	POBox      []string
	Extended   []string
	Street     []string
	Locality   []string
	Region     []string
	PostalCode []string
	Country    []string
	Label      string
}

// Components returns the seven components in wire order.
func (a *Address) Components() [][]string {
	return [][]string{a.POBox, a.Extended, a.Street, a.Locality, a.Region, a.PostalCode, a.Country}
}

// SetComponents assigns components in wire order; missing ones are cleared.
func (a *Address) SetComponents(c [][]string) {
	a.POBox = nonNil(Component(c, 0))
	a.Extended = nonNil(Component(c, 1))
	a.Street = nonNil(Component(c, 2))
	a.Locality = nonNil(Component(c, 3))
	a.Region = nonNil(Component(c, 4))
	a.PostalCode = nonNil(Component(c, 5))
	a.Country = nonNil(Component(c, 6))
}

func nonNil(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

// Geo is the value of GEO. A nil coordinate is missing.
type Geo struct {
	valueMarker
	Latitude  *float64
	Longitude *float64
}

// NewGeo creates a complete Geo value.
func NewGeo(lat, long float64) *Geo {
	return &Geo{Latitude: &lat, Longitude: &long}
}

// Gender is the value of GENDER: a sex code (M, F, O, N, U) and an optional
// free-form identity.
type Gender struct {
	valueMarker
	Sex      string
	Identity string
}

// SexValues are the sex codes defined by RFC 6350.
var SexValues = []string{"M", "F", "O", "N", "U"}

// ClientPidMap is the value of CLIENTPIDMAP. Both fields are required.
type ClientPidMap struct {
	valueMarker
	PID *int
	URI string
}

// Timezone is the value of TZ: a UTC offset, free text (an IANA name or a
// URI), or both.
type Timezone struct {
	valueMarker
	Offset *UTCOffset
	Text   string
}

// Agent is the value of AGENT: either a URL or a complete embedded record.
type Agent struct {
	valueMarker
	url    string
	record *Record
}

// URL returns the agent URL, or "".
func (a *Agent) URL() string { return a.url }

// Record returns the embedded record, or nil.
func (a *Agent) Record() *Record { return a.record }

// SetURL stores a URL and clears the embedded record.
func (a *Agent) SetURL(url string) {
	a.url, a.record = url, nil
}

// SetRecord stores an embedded record and clears the URL.
func (a *Agent) SetRecord(r *Record) {
	a.url, a.record = "", r
}
