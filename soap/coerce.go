package soap

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Value is the coerced, natively-typed result of one out argument.
type Value struct {
	Class   Class
	Int     int64
	Float   float64
	Str     string
	Bool    bool
	Bytes   []byte
}

// Coerce implements the response-handling coercion table, and the
// testable property "for every out argument whose state-variable type is
// in the integer set, the coerced value equals parse_int(text); similarly
// for float, string, boolean."
func Coerce(dataType string, text string) (Value, error) {
	t := ParseDataType(dataType)
	class := ClassOf(t)
	switch class {
	case ClassInteger:
		n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("parse int %q: %w", text, err)
		}
		return Value{Class: class, Int: n}, nil
	case ClassFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return Value{}, fmt.Errorf("parse float %q: %w", text, err)
		}
		return Value{Class: class, Float: f}, nil
	case ClassString, ClassDateTime:
		return Value{Class: class, Str: text}, nil
	case ClassBoolean:
		b, err := coerceBool(text)
		if err != nil {
			return Value{}, err
		}
		return Value{Class: class, Bool: b}, nil
	case ClassBinary:
		raw, err := coerceBinary(t, text)
		if err != nil {
			return Value{}, err
		}
		return Value{Class: class, Bytes: raw}, nil
	default:
		return Value{}, fmt.Errorf("unsupported data type %q", dataType)
	}
}

func coerceBool(text string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "1", "true", "yes":
		return true, nil
	case "0", "false", "no":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean: %q", text)
	}
}

func coerceBinary(t DataType, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if t == TypeBinHex {
		return hex.DecodeString(text)
	}
	return base64.StdEncoding.DecodeString(text)
}
