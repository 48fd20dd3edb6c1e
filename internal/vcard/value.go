package vcard

// Value is the semantic value of one property occurrence. The set of
// implementations is closed: every property type in this package embeds
// valueMarker, and unknown properties are held by Raw.
type Value interface {
	isPropertyValue()
}

type valueMarker struct{}

func (valueMarker) isPropertyValue() {}

// Property is one property occurrence: its value plus the parameters and
// group label that travel alongside it.
type Property struct {
	Group  string
	Params *Params
	Value  Value
}

// NewProperty wraps value with an empty parameter set.
func NewProperty(value Value) *Property {
	return &Property{Params: NewParams(), Value: value}
}

// Parameters returns the property's parameters, allocating them on first use.
func (p *Property) Parameters() *Params {
	if p.Params == nil {
		p.Params = NewParams()
	}
	return p.Params
}

// TextHolder is implemented by every single-text property value.
type TextHolder interface {
	Value
	TextValue() string
	SetTextValue(string)
}

// Text is the value of properties holding one free-form string.
type Text struct {
	valueMarker
	Value string
}

// TextValue returns the text.
func (t *Text) TextValue() string { return t.Value }

// SetTextValue replaces the text.
func (t *Text) SetTextValue(s string) { t.Value = s }

// NewText allocates a text property value of type T holding s:
//
//	fn := vcard.NewText[vcard.FormattedName]("Jane Doe")
func NewText[T any, PT interface {
	*T
	TextHolder
}](s string) PT {
	v := PT(new(T))
	v.SetTextValue(s)
	return v
}

// Single-text properties.
type (
	FormattedName      struct{ Text } // FN
	Note               struct{ Text } // NOTE
	Title              struct{ Text } // TITLE
	Role               struct{ Text } // ROLE
	Mailer             struct{ Text } // MAILER
	ProductID          struct{ Text } // PRODID
	SortString         struct{ Text } // SORT-STRING
	Classification     struct{ Text } // CLASS
	SourceDisplayName  struct{ Text } // NAME
	Profile            struct{ Text } // PROFILE
	Label              struct{ Text } // LABEL
	Email              struct{ Text } // EMAIL
	Kind               struct{ Text } // KIND
	Language           struct{ Text } // LANG
	Expertise          struct{ Text } // EXPERTISE
	Hobby              struct{ Text } // HOBBY
	Interest           struct{ Text } // INTEREST
	UID                struct{ Text } // UID
	URL                struct{ Text } // URL
	Source             struct{ Text } // SOURCE
	OrgDirectory       struct{ Text } // ORG-DIRECTORY
	FreeBusyURL        struct{ Text } // FBURL
	CalendarURI        struct{ Text } // CALURI
	CalendarRequestURI struct{ Text } // CALADRURI
	Impp               struct{ Text } // IMPP
	Member             struct{ Text } // MEMBER
	XML                struct{ Text } // XML
)

// Kind values defined by RFC 6350.
var KindValues = []string{"individual", "group", "org", "location", "application", "device"}

// List is the value of properties holding a sequence of text items.
type List struct {
	valueMarker
	Values []string
}

// Add appends items.
func (l *List) Add(items ...string) { l.Values = append(l.Values, items...) }

// ListValues returns the items.
func (l *List) ListValues() []string { return l.Values }

// SetListValues replaces the items.
func (l *List) SetListValues(items []string) { l.Values = items }

// List properties. Categories and Nickname are ','-separated, Organization
// is ';'-separated (name followed by units).
type (
	Categories   struct{ List }
	Nickname     struct{ List }
	Organization struct{ List }
)

// TextOrURI holds either free text or a URI, never both.
type TextOrURI struct {
	valueMarker
	text string
	uri  string
}

// Text returns the text, or "".
func (t *TextOrURI) Text() string { return t.text }

// URI returns the URI, or "".
func (t *TextOrURI) URI() string { return t.uri }

// SetText stores text and clears the URI.
func (t *TextOrURI) SetText(s string) {
	t.text = s
	t.uri = ""
}

// SetURI stores a URI and clears the text.
func (t *TextOrURI) SetURI(s string) {
	t.uri = s
	t.text = ""
}

// IsEmpty reports whether neither slot is populated.
func (t *TextOrURI) IsEmpty() bool { return t.text == "" && t.uri == "" }

// Properties whose value is text or a URI.
type (
	Telephone  struct{ TextOrURI } // TEL
	Related    struct{ TextOrURI } // RELATED
	Birthplace struct{ TextOrURI } // BIRTHPLACE
	Deathplace struct{ TextOrURI } // DEATHPLACE
)

// Raw holds an extended or unrecognized property verbatim.
type Raw struct {
	valueMarker
	Name     string
	Value    string
	DataType DataType
}

// NewRaw creates a raw property value.
func NewRaw(name, value string) *Raw {
	return &Raw{Name: normalizeName(name), Value: value}
}
