package scribe

import (
	"fmt"
	"strconv"
	"strings"

	"card-codec/internal/vcard"
)

// JSONValue is the value part of a jCard property: one or more values, each
// a scalar (string, float64, bool or nil) or, for structured properties, an
// array whose items are strings or arrays of strings.
type JSONValue struct {
	Values []interface{}
}

// Single wraps one scalar.
func Single(v interface{}) JSONValue {
	return JSONValue{Values: []interface{}{v}}
}

// Multi wraps several string values (e.g. CATEGORIES).
func Multi(values ...string) JSONValue {
	jv := JSONValue{Values: make([]interface{}, len(values))}
	for i, v := range values {
		jv.Values[i] = v
	}
	return jv
}

// Structured wraps one structured value (e.g. N, ADR). Components with a
// single item are written as strings, empty components as "".
func Structured(components [][]string) JSONValue {
	arr := make([]interface{}, len(components))
	for i, items := range components {
		switch len(items) {
		case 0:
			arr[i] = ""
		case 1:
			arr[i] = items[0]
		default:
			sub := make([]interface{}, len(items))
			for j, item := range items {
				sub[j] = item
			}
			arr[i] = sub
		}
	}
	return JSONValue{Values: []interface{}{arr}}
}

// IsEmpty reports whether no value is present.
func (jv JSONValue) IsEmpty() bool {
	return len(jv.Values) == 0
}

// AsSingle returns the first value rendered as a string.
func (jv JSONValue) AsSingle() string {
	if len(jv.Values) == 0 {
		return ""
	}
	return scalarString(jv.Values[0])
}

// AsMulti returns every value rendered as a string. A single structured
// value is flattened.
func (jv JSONValue) AsMulti() []string {
	var out []string
	for _, v := range jv.Values {
		if arr, ok := v.([]interface{}); ok {
			for _, item := range arr {
				out = append(out, scalarString(item))
			}
			continue
		}
		out = append(out, scalarString(v))
	}
	return out
}

// AsStructured returns the components of a structured value. Several plain
// values are read as one component each.
func (jv JSONValue) AsStructured() [][]string {
	if len(jv.Values) == 1 {
		if arr, ok := jv.Values[0].([]interface{}); ok {
			components := make([][]string, len(arr))
			for i, item := range arr {
				components[i] = componentItems(item)
			}
			return components
		}
	}
	components := make([][]string, len(jv.Values))
	for i, v := range jv.Values {
		components[i] = componentItems(v)
	}
	return components
}

func componentItems(v interface{}) []string {
	if sub, ok := v.([]interface{}); ok {
		items := make([]string, 0, len(sub))
		for _, s := range sub {
			items = append(items, scalarString(s))
		}
		return items
	}
	s := scalarString(v)
	if s == "" {
		return []string{}
	}
	return []string{s}
}

func scalarString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case []interface{}:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = scalarString(item)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(t)
	}
}

// textFromJSON converts a jCard value into the vCard text form scribes
// without jCard support parse.
func textFromJSON(jv JSONValue) string {
	if len(jv.Values) == 1 {
		if _, ok := jv.Values[0].([]interface{}); ok {
			return vcard.JoinStructured(jv.AsStructured(), vcard.V40)
		}
		return vcard.EscapeText(jv.AsSingle(), vcard.V40)
	}
	return vcard.JoinList(jv.AsMulti(), ',', vcard.V40)
}
