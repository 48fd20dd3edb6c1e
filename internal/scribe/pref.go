package scribe

import (
	"sort"
	"strings"

	"card-codec/internal/vcard"
)

// prefOrdered is embedded by scribes of multi-instance, preference-ordered
// properties (ADR, TEL, EMAIL, IMPP, RELATED, MEMBER).
type prefOrdered struct{}

// PrepareParams applies the PREF translation for the target version.
func (prefOrdered) PrepareParams(prop *vcard.Property, params *vcard.Params, ctx *WriteContext) {
	applyPref(prop, params, ctx)
}

// applyPref rewrites PREF for version. 4.0 turns TYPE=pref into PREF=1.
// Older versions drop PREF and mark the sibling with the lowest PREF (the
// first one on ties) with TYPE=pref; a stored TYPE=pref on any other sibling
// is dropped. When no sibling has a PREF, stored markers are written as they
// are.
func applyPref(prop *vcard.Property, params *vcard.Params, ctx *WriteContext) {
	if ctx.Version == vcard.V40 {
		if params.HasType(vcard.TypePref) {
			params.RemoveType(vcard.TypePref)
			one := 1
			params.SetPref(&one)
		}
		return
	}

	params.RemoveAll(vcard.ParamPref)
	if ctx.Record == nil {
		return
	}
	switch best := mostPreferred(ctx.Record, prop); {
	case best == prop:
		params.AddType(vcard.TypePref)
	case best != nil:
		params.RemoveType(vcard.TypePref)
	}
}

// mostPreferred returns the sibling of prop with the lowest PREF value,
// keeping the first minimum, or nil when no sibling has a PREF.
func mostPreferred(r *vcard.Record, prop *vcard.Property) *vcard.Property {
	var (
		best     *vcard.Property
		bestPref int
	)
	for _, sibling := range r.Siblings(prop) {
		pref := sibling.Params.Pref()
		if pref == nil {
			continue
		}
		if best == nil || *pref < bestPref {
			best, bestPref = sibling, *pref
		}
	}
	return best
}

func typeSet(params *vcard.Params) string {
	var types []string
	for _, t := range params.Types() {
		t = strings.ToLower(t)
		if t == vcard.TypePref {
			continue
		}
		types = append(types, t)
	}
	sort.Strings(types)
	return strings.Join(types, ",")
}

// AttachLabels moves free-standing LABEL properties onto matching addresses.
// A label matches an unlabeled ADR with the same set of TYPE values; the
// closest preceding ADR wins, then the earliest following one. Labels
// without a match stay in the record as orphaned labels.
func AttachLabels(r *vcard.Record) {
	var (
		kept      []*vcard.Property
		addresses []int
		labels    []int
	)
	for n, p := range r.Properties {
		switch p.Value.(type) {
		case *vcard.Address:
			addresses = append(addresses, n)
		case *vcard.Label:
			labels = append(labels, n)
		}
	}
	if len(labels) == 0 {
		return
	}

	attached := make(map[int]bool)
	for _, ln := range labels {
		label := r.Properties[ln]
		want := typeSet(label.Params)

		candidates := make([]int, 0, len(addresses))
		for k := len(addresses) - 1; k >= 0; k-- {
			if addresses[k] < ln {
				candidates = append(candidates, addresses[k])
			}
		}
		for _, an := range addresses {
			if an > ln {
				candidates = append(candidates, an)
			}
		}

		for _, an := range candidates {
			adrProp := r.Properties[an]
			adr := adrProp.Value.(*vcard.Address)
			if adr.Label != "" || typeSet(adrProp.Params) != want {
				continue
			}
			adr.Label = label.Value.(*vcard.Label).Value
			attached[ln] = true
			break
		}
	}

	for n, p := range r.Properties {
		if !attached[n] {
			kept = append(kept, p)
		}
	}
	r.Properties = kept
}

// ExpandLabels returns the properties to write for version v. Before 4.0 an
// address label is written as a LABEL property right after its ADR, carrying
// the address TYPE values.
func ExpandLabels(r *vcard.Record, v vcard.Version) []*vcard.Property {
	if v == vcard.V40 {
		return r.Properties
	}
	out := make([]*vcard.Property, 0, len(r.Properties))
	for _, p := range r.Properties {
		out = append(out, p)
		adr, ok := p.Value.(*vcard.Address)
		if !ok || adr.Label == "" {
			continue
		}
		label := vcard.NewProperty(vcard.NewText[vcard.Label](adr.Label))
		label.Group = p.Group
		for _, t := range p.Params.Types() {
			if !strings.EqualFold(t, vcard.TypePref) {
				label.Params.AddType(t)
			}
		}
		out = append(out, label)
	}
	return out
}
