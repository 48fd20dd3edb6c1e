package vcard

import (
	"reflect"
	"strings"
)

// Record is one contact: a version and an ordered list of properties.
type Record struct {
	Version    Version
	Properties []*Property
}

// NewRecord creates an empty record of version v.
func NewRecord(v Version) *Record {
	return &Record{Version: v}
}

// Add appends value with empty parameters and returns its property.
func (r *Record) Add(value Value) *Property {
	p := NewProperty(value)
	r.Properties = append(r.Properties, p)
	return p
}

// AddProperty appends p.
func (r *Record) AddProperty(p *Property) {
	r.Properties = append(r.Properties, p)
}

// Remove deletes p (compared by identity) and reports whether it was found.
func (r *Record) Remove(p *Property) bool {
	for i, existing := range r.Properties {
		if existing == p {
			r.Properties = append(r.Properties[:i], r.Properties[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveAll deletes every property whose value has type T.
func RemoveAll[T Value](r *Record) {
	kept := r.Properties[:0]
	for _, p := range r.Properties {
		if _, ok := p.Value.(T); ok {
			continue
		}
		kept = append(kept, p)
	}
	r.Properties = kept
}

// Find returns the properties whose value has type T, in record order.
//
//	for _, p := range vcard.Find[*vcard.Telephone](rec) { ... }
func Find[T Value](r *Record) []*Property {
	var out []*Property
	for _, p := range r.Properties {
		if _, ok := p.Value.(T); ok {
			out = append(out, p)
		}
	}
	return out
}

// All returns the values of type T, in record order.
func All[T Value](r *Record) []T {
	var out []T
	for _, p := range r.Properties {
		if v, ok := p.Value.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// First returns the first value of type T, or the zero value.
func First[T Value](r *Record) T {
	for _, p := range r.Properties {
		if v, ok := p.Value.(T); ok {
			return v
		}
	}
	var zero T
	return zero
}

// Siblings returns the properties that hold the same value type as p.
func (r *Record) Siblings(p *Property) []*Property {
	var out []*Property
	for _, other := range r.Properties {
		if sameKind(other.Value, p.Value) {
			out = append(out, other)
		}
	}
	return out
}

func sameKind(a, b Value) bool {
	if ra, ok := a.(*Raw); ok {
		rb, ok := b.(*Raw)
		return ok && strings.EqualFold(ra.Name, rb.Name)
	}
	return reflect.TypeOf(a) == reflect.TypeOf(b)
}

// OrphanedLabels returns the LABEL properties that were not attached to an
// address.
func (r *Record) OrphanedLabels() []*Property {
	return Find[*Label](r)
}

// FormattedName returns the first FN, or "".
func (r *Record) FormattedName() string {
	if fn := First[*FormattedName](r); fn != nil {
		return fn.Value
	}
	return ""
}

// UID returns the first UID, or "".
func (r *Record) UID() string {
	if uid := First[*UID](r); uid != nil {
		return uid.Value
	}
	return ""
}
