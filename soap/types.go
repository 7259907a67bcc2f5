// Package soap implements the SOAP action dispatcher: building SOAP
// 1.1 request envelopes from parsed Action metadata, parsing the response
// (or Fault), and coercing each out-argument to the native scalar type its
// related state variable's dataType declares.
package soap

import "strings"

// DataType enumerates every UPnP state-variable dataType value a real SCPD
// can declare, not just the collapsed "target scalar" classes in the
// coercion table — so ParseDataType is exhaustive and round-trips any value
// found on the wire, even though several types (e.g. date/time variants)
// coerce to the same Go scalar.
type DataType int

const (
	TypeUnknown DataType = iota
	TypeUI1
	TypeUI2
	TypeUI4
	TypeI1
	TypeI2
	TypeI4
	TypeInt
	TypeR4
	TypeR8
	TypeNumber
	TypeFixed14_4
	TypeFloat
	TypeChar
	TypeString
	TypeUUID
	TypeBoolean
	TypeBinBase64
	TypeBinHex
	TypeDate
	TypeDateTime
	TypeDateTimeTZ
	TypeTime
	TypeTimeTZ
	TypeURI
)

var typeNames = map[string]DataType{
	"ui1":         TypeUI1,
	"ui2":         TypeUI2,
	"ui4":         TypeUI4,
	"i1":          TypeI1,
	"i2":          TypeI2,
	"i4":          TypeI4,
	"int":         TypeInt,
	"r4":          TypeR4,
	"r8":          TypeR8,
	"number":      TypeNumber,
	"fixed.14.4":  TypeFixed14_4,
	"float":       TypeFloat,
	"char":        TypeChar,
	"string":      TypeString,
	"uuid":        TypeUUID,
	"boolean":     TypeBoolean,
	"bin.base64":  TypeBinBase64,
	"bin.hex":     TypeBinHex,
	"date":        TypeDate,
	"dateTime":    TypeDateTime,
	"dateTime.tz": TypeDateTimeTZ,
	"time":        TypeTime,
	"time.tz":     TypeTimeTZ,
	"uri":         TypeURI,
}

// ParseDataType maps a SCPD dataType string (case/space tolerant) to its
// DataType. Unknown values yield TypeUnknown, which Coerce rejects — an
// unknown or unparseable value surfaces as an ActionCoerce error from the
// dispatcher.
func ParseDataType(s string) DataType {
	s = strings.TrimSpace(s)
	if t, ok := typeNames[s]; ok {
		return t
	}
	for name, t := range typeNames {
		if strings.EqualFold(name, s) {
			return t
		}
	}
	return TypeUnknown
}

// Class buckets a DataType into the coercion target the dispatcher actually
// specifies: integer, float, string, boolean, binary, or datetime-as-string.
type Class int

const (
	ClassInteger Class = iota
	ClassFloat
	ClassString
	ClassBoolean
	ClassBinary
	ClassDateTime
	ClassUnsupported
)

// ClassOf returns the coercion class for t.
func ClassOf(t DataType) Class {
	switch t {
	case TypeUI1, TypeUI2, TypeUI4, TypeI1, TypeI2, TypeI4, TypeInt:
		return ClassInteger
	case TypeR4, TypeR8, TypeNumber, TypeFixed14_4, TypeFloat:
		return ClassFloat
	case TypeChar, TypeString, TypeUUID, TypeURI:
		return ClassString
	case TypeBoolean:
		return ClassBoolean
	case TypeBinBase64, TypeBinHex:
		return ClassBinary
	case TypeDate, TypeDateTime, TypeDateTimeTZ, TypeTime, TypeTimeTZ:
		return ClassDateTime
	default:
		return ClassUnsupported
	}
}
