package scribe

import (
	stderrors "errors"
	"reflect"
	"strings"

	"card-codec/internal/common/errors"
	"card-codec/internal/common/registry"
	"card-codec/internal/common/xmltree"
	"card-codec/internal/vcard"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Index maps property names, value types and hCard class names to scribes.
// It is built once (see NewDefaultIndex) and passed to readers and writers;
// lookups are safe for concurrent use.
type Index struct {
	byName  *registry.Registry[Scribe]
	byType  *registry.Registry[Scribe]
	byClass *registry.Registry[Scribe]
}

// NewIndex creates an empty index. Every name resolves to the raw scribe
// until scribes are registered.
func NewIndex() *Index {
	return &Index{
		byName:  registry.New[Scribe](),
		byType:  registry.New[Scribe](),
		byClass: registry.New[Scribe](),
	}
}

func typeKey(v vcard.Value) string {
	return reflect.TypeOf(v).String()
}

// Register adds s, replacing any scribe registered under the same name or
// value type.
func (i *Index) Register(s Scribe) {
	i.byName.Register(s.Name(), s)
	i.byType.Register(typeKey(s.NewValue()), s)
	i.byClass.Register(htmlClass(s), s)
}

// Unregister removes the scribe registered under name.
func (i *Index) Unregister(name string) {
	s, ok := i.byName.Lookup(name)
	if !ok {
		return
	}
	i.byName.Unregister(name)
	i.byType.Unregister(typeKey(s.NewValue()))
	i.byClass.Unregister(htmlClass(s))
}

// Lookup returns the scribe registered under name.
func (i *Index) Lookup(name string) (Scribe, bool) {
	return i.byName.Lookup(name)
}

// ForName returns the scribe for name, falling back to a raw scribe that
// keeps the value verbatim.
func (i *Index) ForName(name string) Scribe {
	if s, ok := i.byName.Lookup(name); ok {
		return s
	}
	return &rawScribe{name: strings.ToUpper(name)}
}

// ForValue returns the scribe that writes v.
func (i *Index) ForValue(v vcard.Value) (Scribe, bool) {
	if raw, ok := v.(*vcard.Raw); ok {
		return &rawScribe{name: raw.Name}, true
	}
	return i.byType.Lookup(typeKey(v))
}

// ForHTMLClass returns the scribe reading hCard elements of class.
func (i *Index) ForHTMLClass(class string) (Scribe, bool) {
	return i.byClass.Lookup(class)
}

// HTMLClasses lists the registered hCard class names, lower-cased.
func (i *Index) HTMLClasses() []string {
	keys := i.byClass.Keys()
	for n, k := range keys {
		keys[n] = strings.ToLower(k)
	}
	return keys
}

// Names lists the registered property names in registration order.
func (i *Index) Names() []string {
	return i.byName.Keys()
}

// PropertyName returns the name p is written under, or "" when no scribe
// handles its value.
func (i *Index) PropertyName(p *vcard.Property) string {
	s, ok := i.ForValue(p.Value)
	if !ok {
		return ""
	}
	return s.Name()
}

func htmlClass(s Scribe) string {
	if h, ok := s.(HTMLScribe); ok {
		return h.HTMLClass()
	}
	return strings.ToLower(s.Name())
}

// OutcomeKind discriminates the result of parsing one property.
type OutcomeKind int

const (
	// OutcomeValue is a successfully parsed property.
	OutcomeValue OutcomeKind = iota
	// OutcomeSkip means the property was dropped.
	OutcomeSkip
	// OutcomeEmbedded means the value is a whole record the driver must
	// parse recursively before the property is complete.
	OutcomeEmbedded
	// OutcomeCannotParse means the value was kept as a raw (or, for
	// xCard, XML) property.
	OutcomeCannotParse
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeValue:
		return "value"
	case OutcomeSkip:
		return "skip"
	case OutcomeEmbedded:
		return "embedded"
	case OutcomeCannotParse:
		return "cannot-parse"
	default:
		return "unknown"
	}
}

// Outcome is the result of parsing one property occurrence. Property is set
// for every kind but OutcomeSkip; for OutcomeEmbedded the driver must call
// Embedded.Inject with the child record before keeping Property.
type Outcome struct {
	Kind     OutcomeKind
	Property *vcard.Property
	Embedded *EmbeddedRecord
	Reason   string
}

func reason(err error) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func (i *Index) resolve(group string, params *vcard.Params, value vcard.Value, err error,
	fallback func() vcard.Value, ctx *ParseContext) Outcome {
	if err == nil {
		return Outcome{Kind: OutcomeValue, Property: &vcard.Property{Group: group, Params: params, Value: value}}
	}

	var embedded *EmbeddedRecord
	if stderrors.As(err, &embedded) {
		return Outcome{
			Kind:     OutcomeEmbedded,
			Property: &vcard.Property{Group: group, Params: params, Value: value},
			Embedded: embedded,
		}
	}

	msg := reason(err)
	if errors.IsType(err, errors.ErrTypeSkip) {
		ctx.Warn(vcard.WarnSkipped, msg)
		return Outcome{Kind: OutcomeSkip, Reason: msg}
	}

	ctx.Warn(vcard.WarnStoredAsRaw, msg)
	return Outcome{
		Kind:     OutcomeCannotParse,
		Property: &vcard.Property{Group: group, Params: params, Value: fallback()},
		Reason:   msg,
	}
}

// ParseText parses one vCard text property. The VALUE parameter is consumed:
// it selects the data type handed to the scribe and is not stored.
func (i *Index) ParseText(group, name string, params *vcard.Params, raw string, ctx *ParseContext) Outcome {
	s := i.ForName(name)
	ctx.Name = s.Name()

	explicit := params.ValueType()
	params.RemoveAll(vcard.ParamValue)
	dataType := explicit
	if dataType == vcard.DataTypeNone {
		dataType = s.DefaultDataType(ctx.Version)
	}

	value, err := s.ParseText(raw, dataType, params, ctx)
	return i.resolve(group, params, value, err, func() vcard.Value {
		return &vcard.Raw{Name: s.Name(), Value: raw, DataType: explicit}
	}, ctx)
}

// ParseJSON parses one jCard property.
func (i *Index) ParseJSON(group, name string, params *vcard.Params, dataType string, value JSONValue, ctx *ParseContext) Outcome {
	s := i.ForName(name)
	ctx.Name = s.Name()

	dt := vcard.ParseDataType(dataType)
	if dt == vcard.DataTypeUnknown || dt == vcard.DataTypeNone {
		dt = s.DefaultDataType(ctx.Version)
	}
	params.RemoveAll(vcard.ParamValue)

	var (
		v   vcard.Value
		err error
	)
	if js, ok := s.(JSONScribe); ok {
		v, err = js.ParseJSON(value, dt, params, ctx)
	} else {
		v, err = s.ParseText(textFromJSON(value), dt, params, ctx)
	}
	return i.resolve(group, params, v, err, func() vcard.Value {
		return &vcard.Raw{Name: s.Name(), Value: textFromJSON(value), DataType: dt}
	}, ctx)
}

// ParseXML parses one xCard property element. Elements of the xCard
// namespace without a registered scribe are read by a raw scribe. Elements of
// other namespaces, and values a scribe cannot read, become XML properties
// whose stored element leaves out <parameters>.
func (i *Index) ParseXML(group string, el *xmltree.Element, params *vcard.Params, ctx *ParseContext) Outcome {
	asXML := func() vcard.Value {
		return vcard.NewText[vcard.XML](withoutParameters(el).String())
	}

	if el.Space != ns {
		ctx.Name = "XML"
		return Outcome{Kind: OutcomeValue, Property: &vcard.Property{Group: group, Params: params, Value: asXML()}}
	}

	s := i.ForName(el.Local)
	ctx.Name = s.Name()

	xs, ok := s.(XMLScribe)
	if !ok {
		ctx.Warn(vcard.WarnStoredAsXML, "xCard is not supported by "+s.Name())
		return Outcome{
			Kind:     OutcomeCannotParse,
			Property: &vcard.Property{Group: group, Params: params, Value: asXML()},
			Reason:   "no xCard support",
		}
	}

	value, err := xs.ParseXML(el, params, ctx)
	return i.resolve(group, params, value, err, asXML, ctx)
}

// withoutParameters returns a shallow copy of el without its xCard
// <parameters> child.
func withoutParameters(el *xmltree.Element) *xmltree.Element {
	if el.First(ns, "parameters") == nil {
		return el
	}
	cp := *el
	cp.Children = make([]*xmltree.Element, 0, len(el.Children))
	for _, c := range el.Children {
		if c.Space == ns && c.Local == "parameters" {
			continue
		}
		cp.Children = append(cp.Children, c)
	}
	return &cp
}

// ParseHTML parses one hCard property element with the scribe registered for
// its class. TYPE parameters come from "type" sub-elements.
func (i *Index) ParseHTML(s Scribe, el *HTMLElement, ctx *ParseContext) Outcome {
	ctx.Name = s.Name()
	params := vcard.NewParams()
	for _, t := range el.Types() {
		params.AddType(t)
	}

	var (
		value vcard.Value
		err   error
		text  string
	)
	if hs, ok := s.(HTMLScribe); ok {
		value, err = hs.ParseHTML(el, params, ctx)
	} else {
		text = vcard.EscapeText(el.Value(), vcard.V30)
		value, err = s.ParseText(text, s.DefaultDataType(ctx.Version), params, ctx)
	}
	return i.resolve("", params, value, err, func() vcard.Value {
		return &vcard.Raw{Name: s.Name(), Value: vcard.EscapeText(el.Value(), vcard.V30)}
	}, ctx)
}

// Written is one property ready for a format writer.
type Written struct {
	Name     string
	Group    string
	Params   *vcard.Params
	DataType vcard.DataType
	// Text is the vCard text value (WriteText only).
	Text string
	// Embedded is set instead of Text when the value is a whole record.
	Embedded *vcard.Record
}

func dataTypeOf(s Scribe, value vcard.Value, v vcard.Version) vcard.DataType {
	if dt, ok := s.(DataTyper); ok {
		return dt.DataType(value, v)
	}
	return s.DefaultDataType(v)
}

// valueParamNeeded reports whether VALUE must be written. In 4.0 a
// date-and-or-time property holding a date, time or date-time leaves it out.
func valueParamNeeded(defaultType, dataType vcard.DataType, v vcard.Version) bool {
	if dataType == vcard.DataTypeNone || dataType == defaultType {
		return false
	}
	if v == vcard.V40 && defaultType == vcard.DataTypeDateAndOrTime {
		switch dataType {
		case vcard.DataTypeDate, vcard.DataTypeDateTime, vcard.DataTypeTime:
			return false
		}
	}
	return true
}

func (i *Index) begin(prop *vcard.Property, ctx *WriteContext) (Scribe, error) {
	s, ok := i.ForValue(prop.Value)
	if !ok {
		return nil, errors.SkipError("no scribe for value type " + typeKey(prop.Value))
	}
	ctx.Name = s.Name()
	if !ctx.Version.In(s.Versions()) {
		ctx.Warn(vcard.WarnUnsupportedProperty, ctx.Version)
	}
	return s, nil
}

// PrepareParams derives the parameters written for prop: a copy of the
// stored parameters rewritten by the scribe. The stored parameters are never
// modified.
func (i *Index) PrepareParams(s Scribe, prop *vcard.Property, ctx *WriteContext) *vcard.Params {
	params := prop.Params.Copy()
	params.RemoveAll(vcard.ParamValue)
	if pp, ok := s.(ParamPreparer); ok {
		pp.PrepareParams(prop, params, ctx)
	}
	return params
}

func (i *Index) skip(err error, ctx *WriteContext) error {
	ctx.Warn(vcard.WarnSkipped, reason(err))
	return err
}

// WriteText marshals prop for the vCard text format. A skip error means the
// property must be left out; the warning has already been recorded.
func (i *Index) WriteText(prop *vcard.Property, ctx *WriteContext) (*Written, error) {
	s, err := i.begin(prop, ctx)
	if err != nil {
		return nil, i.skip(err, ctx)
	}

	params := i.PrepareParams(s, prop, ctx)
	dataType := dataTypeOf(s, prop.Value, ctx.Version)
	if valueParamNeeded(s.DefaultDataType(ctx.Version), dataType, ctx.Version) {
		params.Replace(vcard.ParamValue, dataType.ParamValue(ctx.Version))
	}

	w := &Written{Name: s.Name(), Group: prop.Group, Params: params, DataType: dataType}
	text, err := s.WriteText(prop.Value, ctx)
	if err != nil {
		var embedded *EmbeddedRecord
		if stderrors.As(err, &embedded) {
			w.Embedded = embedded.Record
			return w, nil
		}
		return nil, i.skip(err, ctx)
	}
	w.Text = text
	return w, nil
}

// WriteJSON marshals prop for jCard.
func (i *Index) WriteJSON(prop *vcard.Property, ctx *WriteContext) (*Written, JSONValue, error) {
	s, err := i.begin(prop, ctx)
	if err != nil {
		return nil, JSONValue{}, i.skip(err, ctx)
	}

	params := i.PrepareParams(s, prop, ctx)
	dataType := dataTypeOf(s, prop.Value, ctx.Version)
	w := &Written{Name: s.Name(), Group: prop.Group, Params: params, DataType: dataType}

	if js, ok := s.(JSONScribe); ok {
		value, err := js.WriteJSON(prop.Value, ctx)
		if err != nil {
			return nil, JSONValue{}, i.skip(err, ctx)
		}
		return w, value, nil
	}

	text, err := s.WriteText(prop.Value, ctx)
	if err != nil {
		var embedded *EmbeddedRecord
		if stderrors.As(err, &embedded) {
			err = errors.UnsupportedError("embedded records in jCard")
		}
		return nil, JSONValue{}, i.skip(err, ctx)
	}
	return w, Single(vcard.UnescapeText(text)), nil
}

// WriteXML marshals prop as an xCard property element, without its
// <parameters> child. XML properties are returned as their stored element.
func (i *Index) WriteXML(prop *vcard.Property, ctx *WriteContext) (*Written, *xmltree.Element, error) {
	s, err := i.begin(prop, ctx)
	if err != nil {
		return nil, nil, i.skip(err, ctx)
	}
	params := i.PrepareParams(s, prop, ctx)
	w := &Written{Name: s.Name(), Group: prop.Group, Params: params, DataType: dataTypeOf(s, prop.Value, ctx.Version)}

	if x, ok := prop.Value.(*vcard.XML); ok {
		el, err := xmltree.ParseString(x.Value)
		if err != nil {
			return nil, nil, i.skip(errors.SkipError("stored XML is not well-formed: "+err.Error()), ctx)
		}
		return w, el, nil
	}

	xs, ok := s.(XMLScribe)
	if !ok {
		return nil, nil, i.skip(errors.SkipError(s.Name()+" has no xCard representation"), ctx)
	}
	el := xmltree.New(ns, xmlLocalName(s.Name()))
	if err := xs.WriteXML(prop.Value, el, ctx); err != nil {
		return nil, nil, i.skip(err, ctx)
	}
	return w, el, nil
}

// WriteHTML marshals prop as an hCard element. Scribes without hCard support
// are rendered as a span holding their text value.
func (i *Index) WriteHTML(prop *vcard.Property, ctx *WriteContext) (*html.Node, error) {
	s, err := i.begin(prop, ctx)
	if err != nil {
		return nil, i.skip(err, ctx)
	}
	params := i.PrepareParams(s, prop, ctx)

	var node *html.Node
	if hs, ok := s.(HTMLScribe); ok {
		node, err = hs.WriteHTML(prop.Value, ctx)
	} else {
		var text string
		text, err = s.WriteText(prop.Value, ctx)
		if err == nil {
			node = NewHTMLNode("span", htmlClass(s))
			AppendText(node, vcard.UnescapeText(text))
		}
	}
	if err != nil {
		var embedded *EmbeddedRecord
		if stderrors.As(err, &embedded) {
			err = errors.SkipError("embedded record")
		}
		return nil, i.skip(err, ctx)
	}

	if _, ok := prop.Value.(binaryHolder); ok || node.DataAtom == atom.Img {
		return node, nil
	}
	types := params.Types()
	for n := len(types) - 1; n >= 0; n-- {
		if strings.EqualFold(types[n], vcard.TypePref) {
			continue
		}
		typeNode := NewHTMLNode("span", "type")
		AppendText(typeNode, types[n])
		node.InsertBefore(typeNode, node.FirstChild)
	}
	return node, nil
}
