// Package vcard holds the encoding-independent vCard model: versions, value
// data types, parameter sets, the closed set of property values, and the
// record that aggregates them.
package vcard

import "strings"

// Version is a vCard text format version.
type Version int

const (
	// VersionUnknown is the zero Version.
	VersionUnknown Version = iota
	V21
	V30
	V40
)

// Versions lists every known version, oldest first.
var Versions = []Version{V21, V30, V40}

// XCardNamespace is the XML namespace of xCard documents.
const XCardNamespace = "urn:ietf:params:xml:ns:vcard-4.0"

// ParseVersion converts "2.1", "3.0" or "4.0" to a Version.
func ParseVersion(s string) (Version, bool) {
	switch strings.TrimSpace(s) {
	case "2.1":
		return V21, true
	case "3.0":
		return V30, true
	case "4.0":
		return V40, true
	}
	return VersionUnknown, false
}

func (v Version) String() string {
	switch v {
	case V21:
		return "2.1"
	case V30:
		return "3.0"
	case V40:
		return "4.0"
	default:
		return "unknown"
	}
}

// Before reports whether v is older than other.
func (v Version) Before(other Version) bool {
	return v < other
}

// In reports whether v is one of versions.
func (v Version) In(versions []Version) bool {
	for _, o := range versions {
		if o == v {
			return true
		}
	}
	return false
}
