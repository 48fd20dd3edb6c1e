package vcard

import (
	"fmt"
	"strings"
)

// Warning codes. A code identifies the condition independently of the
// message wording.
const (
	WarnUnsupportedProperty = iota + 1
	WarnUnsupportedParameter
	WarnUnsupportedDataType
	WarnUnsupportedEncoding
	WarnInvalidPref
	WarnInvalidPid
	WarnInvalidIndex
	WarnInvalidGeoParam
	WarnEmptyValue
	WarnUnknownEncoding
	WarnAssumedURL
	WarnAssumedBase64
	WarnBadBase64
	WarnBadDate
	WarnTextDateUnsupported
	WarnPartialDateUnsupported
	WarnBadUTCOffset
	WarnMinuteOffsetRange
	WarnMissingLatitude
	WarnMissingLongitude
	WarnBadCoordinate
	WarnMissingComponent
	WarnStoredAsRaw
	WarnSkipped
	WarnMalformedLine
	WarnUnknownVersion
	WarnBadQuotedPrintable
	WarnUnknownCharset
	WarnMissingRequired
	WarnBadLanguageTag
	WarnStoredAsXML
	WarnTooDeep
	WarnBadEmbedded
	WarnBadParameterName
	WarnBadXML
	WarnBadSex
	WarnBadTimestamp
	WarnUnknownKind
	WarnBadParameterValue
	WarnBadPid
	WarnBadURI
	WarnHTMLUnsupported
)

var messages = map[int]string{
	WarnUnsupportedProperty:    "Property is not supported in vCard version %s.",
	WarnUnsupportedParameter:   "Parameter %s is not supported in vCard version %s.",
	WarnUnsupportedDataType:    "Data type \"%s\" is not supported in vCard version %s.",
	WarnUnsupportedEncoding:    "Encoding \"%s\" is not supported in vCard version %s.",
	WarnInvalidPref:            "Invalid PREF value \"%s\", must be an integer between 1 and 100.",
	WarnInvalidPid:             "Invalid PID value \"%s\".",
	WarnInvalidIndex:           "Invalid INDEX value \"%s\", must be a positive integer.",
	WarnInvalidGeoParam:        "Invalid GEO parameter value \"%s\".",
	WarnEmptyValue:             "Property has no value.",
	WarnUnknownEncoding:        "Unrecognized encoding \"%s\", attempting to decode the value as base64.",
	WarnAssumedURL:             "No data type or encoding given, treating the value as a URL.",
	WarnAssumedBase64:          "No data type or encoding given, treating the value as base64 data.",
	WarnBadBase64:              "Could not decode base64 data: %s.",
	WarnBadDate:                "Could not parse date \"%s\", keeping it as text.",
	WarnTextDateUnsupported:    "Text date values are not supported in vCard version %s.",
	WarnPartialDateUnsupported: "Reduced accuracy or truncated dates are not supported in vCard version %s.",
	WarnBadUTCOffset:           "Could not parse UTC offset \"%s\".",
	WarnMinuteOffsetRange:      "Minute offset %d must be between 0 and 59.",
	WarnMissingLatitude:        "Latitude is missing.",
	WarnMissingLongitude:       "Longitude is missing.",
	WarnBadCoordinate:          "Could not parse coordinate \"%s\".",
	WarnMissingComponent:       "Required component %s is missing.",
	WarnStoredAsRaw:            "Could not parse value (%s), keeping it as an extended property.",
	WarnSkipped:                "Property skipped: %s.",
	WarnMalformedLine:          "Skipping malformed line \"%s\".",
	WarnUnknownVersion:         "Unknown vCard version \"%s\", assuming %s.",
	WarnBadQuotedPrintable:     "Could not decode quoted-printable value: %s.",
	WarnUnknownCharset:         "Unknown character set \"%s\", assuming UTF-8.",
	WarnMissingRequired:        "Record is missing required property %s.",
	WarnBadLanguageTag:         "Invalid language tag \"%s\".",
	WarnStoredAsXML:            "Property could not be read from xCard (%s), keeping it as an XML property.",
	WarnTooDeep:                "Embedded records nested deeper than %d, embedded record skipped.",
	WarnBadEmbedded:            "Could not parse embedded record: %s.",
	WarnBadParameterName:       "Invalid parameter name \"%s\".",
	WarnBadXML:                 "Value is not well-formed XML: %s.",
	WarnBadSex:                 "Sex \"%s\" must be one of M, F, O, N, U.",
	WarnBadTimestamp:           "Could not parse timestamp \"%s\".",
	WarnUnknownKind:            "KIND \"%s\" is not one of individual, group, org, location, application, device.",
	WarnBadParameterValue:      "Parameter %s value \"%s\" contains characters not allowed in vCard version %s.",
	WarnBadPid:                 "CLIENTPIDMAP identifier \"%s\" is not an integer.",
	WarnBadURI:                 "Value \"%s\" is not a URI.",
	WarnHTMLUnsupported:        "Property has no hCard representation.",
}

// Message formats the message registered for code.
func Message(code int, args ...interface{}) string {
	format, ok := messages[code]
	if !ok {
		return fmt.Sprint(args...)
	}
	return fmt.Sprintf(format, args...)
}

// Warning is a non-fatal problem found while parsing, writing or validating.
type Warning struct {
	Code     int
	Message  string
	Property string
	Line     int
}

// NewWarning builds a warning from a registered message code.
func NewWarning(code int, args ...interface{}) Warning {
	return Warning{Code: code, Message: Message(code, args...)}
}

func (w Warning) String() string {
	var b strings.Builder
	if w.Line > 0 {
		fmt.Fprintf(&b, "Line %d", w.Line)
	}
	if w.Property != "" {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "(%s property)", w.Property)
	}
	if b.Len() > 0 {
		b.WriteString(": ")
	}
	b.WriteString(w.Message)
	return b.String()
}

// Warnings is an append-only warning sink.
type Warnings []Warning

// Add appends a warning.
func (ws *Warnings) Add(w Warning) {
	*ws = append(*ws, w)
}

// Codes lists the codes of all warnings, in order.
func (ws Warnings) Codes() []int {
	codes := make([]int, len(ws))
	for i, w := range ws {
		codes[i] = w.Code
	}
	return codes
}

// Strings renders every warning.
func (ws Warnings) Strings() []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.String()
	}
	return out
}
