package scribe

import (
	"golang.org/x/text/language"

	"card-codec/internal/vcard"
)

func validLanguageTag(tag string) bool {
	if tag == "" {
		return false
	}
	_, err := language.Parse(tag)
	return err == nil
}

// requiredProperties lists, per version, the properties a record must have.
var requiredProperties = map[vcard.Version][]string{
	vcard.V21: {vcard.PropN},
	vcard.V30: {vcard.PropN, vcard.PropFN},
	vcard.V40: {vcard.PropFN},
}

// Validate checks r against version v and returns every problem found. It
// never fails and never changes r. Problems inside an embedded AGENT record
// are reported with an "AGENT: " prefix.
func (i *Index) Validate(r *vcard.Record, v vcard.Version) vcard.Warnings {
	return i.validate(r, v, map[*vcard.Record]bool{})
}

func (i *Index) validate(r *vcard.Record, v vcard.Version, seen map[*vcard.Record]bool) vcard.Warnings {
	var out vcard.Warnings
	seen[r] = true

	present := make(map[string]bool)
	for _, p := range r.Properties {
		present[i.PropertyName(p)] = true
	}
	for _, name := range requiredProperties[v] {
		if !present[name] {
			out.Add(vcard.NewWarning(vcard.WarnMissingRequired, name))
		}
	}

	for _, p := range r.Properties {
		s, ok := i.ForValue(p.Value)
		if !ok {
			continue
		}
		add := func(w vcard.Warning) {
			w.Property = s.Name()
			out.Add(w)
		}

		if !v.In(s.Versions()) {
			add(vcard.NewWarning(vcard.WarnUnsupportedProperty, v))
		}
		if dt := dataTypeOf(s, p.Value, v); dt != vcard.DataTypeNone && !dt.SupportedIn(v) {
			add(vcard.NewWarning(vcard.WarnUnsupportedDataType, dt, v))
		}
		for _, w := range p.Params.Validate(v) {
			add(w)
		}
		if lang := p.Params.Language(); lang != "" && !validLanguageTag(lang) {
			add(vcard.NewWarning(vcard.WarnBadLanguageTag, lang))
		}
		if val, ok := s.(Validating); ok {
			for _, w := range val.Validate(p.Value, v, p.Params, r) {
				add(w)
			}
		}

		agent, ok := p.Value.(*vcard.Agent)
		if !ok || agent.Record() == nil || seen[agent.Record()] {
			continue
		}
		for _, w := range i.validate(agent.Record(), v, seen) {
			w.Message = "AGENT: " + w.Message
			out.Add(w)
		}
	}
	return out
}
