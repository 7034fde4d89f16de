package chain

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Contract query output is loosely typed: the same logical field can arrive
// in several JSON shapes depending on the node and client library that
// produced it. Each shape set is modelled as a closed variant so decoding
// dispatches exhaustively instead of branching on interface{}.

type textKind int

const (
	textAbsent textKind = iota
	textByteVector
	textHexString
	textPlainString
)

// TextValue is a text field in raw contract output. It can arrive as a
// byte-vector array, a 0x-prefixed hex string, or a plain string.
type TextValue struct {
	kind  textKind
	bytes []byte
	str   string
}

// UnmarshalJSON detects which of the three shapes the field uses.
func (v *TextValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		v.kind = textAbsent
		return nil
	}
	if data[0] == '[' {
		var raw []byte
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("byte vector: %w", err)
		}
		v.kind = textByteVector
		v.bytes = raw
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v.kind = textHexString
		v.str = s
		return nil
	}
	v.kind = textPlainString
	v.str = s
	return nil
}

// Decode returns the UTF-8 text the field carries. All three encodings of
// the same text decode to an identical string.
func (v TextValue) Decode() (string, error) {
	switch v.kind {
	case textByteVector:
		return strings.ToValidUTF8(string(v.bytes), "�"), nil
	case textHexString:
		raw, err := hex.DecodeString(v.str[2:])
		if err != nil {
			return "", fmt.Errorf("hex text: %w", err)
		}
		return strings.ToValidUTF8(string(raw), "�"), nil
	case textPlainString:
		return v.str, nil
	default:
		return "", fmt.Errorf("text field absent")
	}
}

// NumberValue is a numeric field in raw contract output. It can arrive as a
// native JSON number or as a string with thousands-separator commas.
type NumberValue struct {
	present bool
	str     string
}

// UnmarshalJSON captures either shape without losing precision.
func (v *NumberValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		v.present = false
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v.present = true
		v.str = s
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	v.present = true
	v.str = num.String()
	return nil
}

// Int64 strips grouping commas and parses the value. A parse failure means
// the value is unknown to the caller, not zero.
func (v NumberValue) Int64() (int64, error) {
	if !v.present {
		return 0, fmt.Errorf("number field absent")
	}
	cleaned := strings.ReplaceAll(strings.TrimSpace(v.str), ",", "")
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse number %q: %w", v.str, err)
	}
	return n, nil
}

// EnumValue is an enum field in raw contract output. It can arrive as a bare
// variant string or wrapped as {"_enum": "Variant"}.
type EnumValue struct {
	present bool
	variant string
}

type enumWrapper struct {
	Enum string `json:"_enum"`
}

// UnmarshalJSON accepts both the bare and the wrapped shape.
func (v *EnumValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		v.present = false
		return nil
	}
	if data[0] == '{' {
		var w enumWrapper
		if err := json.Unmarshal(data, &w); err != nil {
			return fmt.Errorf("enum wrapper: %w", err)
		}
		v.present = w.Enum != ""
		v.variant = w.Enum
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v.present = true
	v.variant = s
	return nil
}

// Variant returns the active variant name.
func (v EnumValue) Variant() (string, error) {
	if !v.present {
		return "", fmt.Errorf("enum field absent")
	}
	return v.variant, nil
}
