package vcard

import "strings"

// DataType is the value type of a property (the VALUE parameter). The set is
// open: unrecognized names are carried through as-is.
type DataType string

const (
	DataTypeNone           DataType = ""
	DataTypeText           DataType = "text"
	DataTypeURI            DataType = "uri"
	DataTypeURL            DataType = "url"
	DataTypeContentID      DataType = "content-id"
	DataTypeBinary         DataType = "binary"
	DataTypeDate           DataType = "date"
	DataTypeTime           DataType = "time"
	DataTypeDateTime       DataType = "date-time"
	DataTypeDateAndOrTime  DataType = "date-and-or-time"
	DataTypeTimestamp      DataType = "timestamp"
	DataTypeBoolean        DataType = "boolean"
	DataTypeInteger        DataType = "integer"
	DataTypeFloat          DataType = "float"
	DataTypeUTCOffset      DataType = "utc-offset"
	DataTypeLanguageTag    DataType = "language-tag"
	DataTypeUnknown        DataType = "unknown"
	dataTypeContentIDShort DataType = "cid"
)

var dataTypeVersions = map[DataType][]Version{
	DataTypeText:          {V21, V30, V40},
	DataTypeURI:           {V30, V40},
	DataTypeURL:           {V21},
	DataTypeContentID:     {V21},
	DataTypeBinary:        {V30},
	DataTypeDate:          {V21, V30, V40},
	DataTypeTime:          {V21, V30, V40},
	DataTypeDateTime:      {V21, V30, V40},
	DataTypeDateAndOrTime: {V40},
	DataTypeTimestamp:     {V40},
	DataTypeBoolean:       {V30, V40},
	DataTypeInteger:       {V30, V40},
	DataTypeFloat:         {V30, V40},
	DataTypeUTCOffset:     {V21, V30, V40},
	DataTypeLanguageTag:   {V40},
}

// ParseDataType normalizes a VALUE parameter value.
func ParseDataType(s string) DataType {
	d := DataType(strings.ToLower(strings.TrimSpace(s)))
	if d == dataTypeContentIDShort {
		return DataTypeContentID
	}
	return d
}

// Known reports whether d is one of the predefined data types.
func (d DataType) Known() bool {
	_, ok := dataTypeVersions[d]
	return ok
}

// SupportedIn reports whether d may appear as a VALUE parameter in version v.
// Unknown data types are considered supported.
func (d DataType) SupportedIn(v Version) bool {
	versions, ok := dataTypeVersions[d]
	if !ok {
		return true
	}
	return v.In(versions)
}

// ParamValue is the spelling used in a VALUE parameter for version v.
func (d DataType) ParamValue(v Version) string {
	if v == V21 {
		return strings.ToUpper(string(d))
	}
	return string(d)
}

// IsDateLike reports whether d is one of the date/time data types.
func (d DataType) IsDateLike() bool {
	switch d {
	case DataTypeDate, DataTypeTime, DataTypeDateTime, DataTypeDateAndOrTime, DataTypeTimestamp:
		return true
	}
	return false
}
