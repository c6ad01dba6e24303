package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ValueKind discriminates the contents of a Value.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
)

// Value is a numeric field as the model asserted it: absent, a number, or
// free text such as "$1,200.00" or "4 hrs". The zero Value is null.
type Value struct {
	kind ValueKind
	str  string
	num  float64
}

func Null() Value               { return Value{} }
func String(s string) Value     { return Value{kind: KindString, str: s} }
func Number(f float64) Value    { return Value{kind: KindNumber, num: f} }
func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsNull() bool    { return v.kind == KindNull }

// Text returns the value as the operator would read it; "" for null.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

// Any returns nil, a string or a float64.
func (v Value) Any() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	default:
		return nil
	}
}

var (
	currencyRunes = strings.NewReplacer("$", "", "£", "", "€", "", "₹", "", "¥", "", ",", "", " ", "")
	trailingUnit  = regexp.MustCompile(`(?i)^\s*([-+]?[0-9.,\s$£€₹¥]+?)\s*(?:[a-z]+\.?)?\s*$`)
)

// Float coerces the value to a number. Numbers pass through; strings are parsed
// after dropping currency symbols, thousands separators and a trailing unit word.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		m := trailingUnit.FindStringSubmatch(v.str)
		if m == nil {
			return 0, false
		}
		cleaned := currencyRunes.Replace(m[1])
		if cleaned == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// FromAny builds a Value from nil, a string or any Go number type.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case string:
		return String(t), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Null(), fmt.Errorf("number %q: %w", t, err)
		}
		return Number(f), nil
	default:
		return Null(), fmt.Errorf("unsupported value type %T", x)
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return []byte(strconv.FormatFloat(v.num, 'f', -1, 64)), nil
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*v = Null()
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("value must be null, a string or a number, got %s", data)
		}
		*v = Number(f)
	}
	return nil
}
