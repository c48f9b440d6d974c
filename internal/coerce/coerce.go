// =============================================================================
// xeroizer - Type Coercion
// =============================================================================
//
// This package converts between XML element text and typed field values. One
// parse/format pair exists per scalar field type:
//
//   | type     | Go value        | parse                         | format                  |
//   |----------|-----------------|-------------------------------|-------------------------|
//   | guid     | string          | text as-is                    | value as-is             |
//   | string   | string          | text as-is                    | value as-is             |
//   | boolean  | bool            | text == "true"                | "true" / "false"        |
//   | integer  | int64           | leading base-10 digits        | base-10                 |
//   | decimal  | decimal.Decimal | arbitrary precision           | decimal string          |
//   | date     | Date            | YYYY-MM-DD or timestamp       | YYYY-MM-DD              |
//   | datetime | time.Time       | RFC 3339 or zone-less (UTC)   | YYYY-MM-DDTHH:MM:SS UTC |
//
// LENIENT COERCION:
//   Boolean and integer parsing never fail on malformed text. Any boolean text
//   other than the literal "true" reads as false, and integer text without a
//   leading number reads as 0 ("42abc" reads as 42). Server data is not
//   guaranteed to conform, and these two types have always been read this way.
//   An integer that does not fit in 64 bits is still an error.
//
//   Every other malformed value fails with *MalformedFieldValueError.
//
// =============================================================================

package coerce

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/malclocke/xeroizer/internal/schema"
)

// Wire layouts.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02T15:04:05"
)

// ErrNotScalar is returned when a nested field is passed to Parse or Format.
var ErrNotScalar = errors.New("field type is not a scalar")

// MalformedFieldValueError reports a value that cannot be coerced to its
// field's declared type.
type MalformedFieldValueError struct {
	// Model is the model type the field belongs to.
	Model string

	// Field is the field key.
	Field string

	// Type is the field's declared type.
	Type schema.FieldType

	// Value is the offending wire text or Go value.
	Value interface{}

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *MalformedFieldValueError) Error() string {
	return fmt.Sprintf("malformed %s value %#v for %s.%s: %v", e.Type, e.Value, e.Model, e.Field, e.Err)
}

func (e *MalformedFieldValueError) Unwrap() error { return e.Err }

func malformed(model string, f schema.Field, value interface{}, err error) error {
	return &MalformedFieldValueError{Model: model, Field: f.Key, Type: f.Type, Value: value, Err: err}
}

// =============================================================================
// PARSING (wire text -> value)
// =============================================================================

// Parse coerces the text content of an element to the field's type.
//
// PARAMETERS:
//   - model: The model the field belongs to, used in error reports.
//   - f: The field descriptor.
//   - text: The element text.
//
// RETURNS:
//   - The typed value (see the table at the top of this file).
//   - *MalformedFieldValueError for malformed decimal, date and datetime text.
func Parse(model string, f schema.Field, text string) (interface{}, error) {
	switch f.Type {
	case schema.GUID, schema.String:
		return text, nil

	case schema.Boolean:
		return ParseBoolean(text), nil

	case schema.Integer:
		n, err := ParseInteger(text)
		if err != nil {
			return nil, malformed(model, f, text, err)
		}
		return n, nil

	case schema.Decimal:
		d, err := decimal.NewFromString(strings.TrimSpace(text))
		if err != nil {
			return nil, malformed(model, f, text, err)
		}
		return d, nil

	case schema.Date:
		d, err := ParseDate(text)
		if err != nil {
			return nil, malformed(model, f, text, err)
		}
		return d, nil

	case schema.DateTime:
		t, err := ParseDateTime(text)
		if err != nil {
			return nil, malformed(model, f, text, err)
		}
		return t, nil

	case schema.BelongsTo, schema.HasMany:
		return nil, malformed(model, f, text, ErrNotScalar)
	}

	return nil, malformed(model, f, text, fmt.Errorf("unsupported field type %s", f.Type))
}

// ParseBoolean reads "true" as true and anything else as false.
func ParseBoolean(text string) bool {
	return text == "true"
}

// ParseInteger reads the leading base-10 integer of text. Leading whitespace
// and a sign are allowed; text without leading digits reads as 0. Only a
// value overflowing int64 is an error.
func ParseInteger(text string) (int64, error) {
	s := strings.TrimLeft(text, " \t\r\n")

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, nil
	}

	return strconv.ParseInt(s[:end], 10, 64)
}

var dateTimeLayouts = []string{
	time.RFC3339,
	DateTimeLayout,
	"2006-01-02 15:04:05",
	DateLayout,
}

// ParseDateTime reads a timestamp. Text carrying a zone offset keeps it;
// zone-less text is read as UTC.
func ParseDateTime(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	var lastErr error
	for _, layout := range dateTimeLayouts {
		t, err := time.Parse(layout, text)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// ParseDate reads a calendar date. Timestamp text is accepted and yields
// the date as written, without zone conversion.
func ParseDate(text string) (Date, error) {
	text = strings.TrimSpace(text)
	if t, err := time.Parse(DateLayout, text); err == nil {
		return DateOf(t), nil
	}
	t, err := ParseDateTime(text)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// =============================================================================
// FORMATTING (value -> wire text)
// =============================================================================

// Format converts a typed value to element text.
//
// Besides the canonical Go type of each field type, Format accepts:
//   - guid/string: any fmt.Stringer (e.g. uuid.UUID)
//   - boolean:     the strings "true" and "false"
//   - integer:     every Go integer kind and numeric strings
//   - decimal:     strings (parsed, then reformatted), integers and floats
//   - date:        time.Time (normalized to UTC first) and date strings
//   - datetime:    Date (midnight UTC) and timestamp strings
func Format(model string, f schema.Field, value interface{}) (string, error) {
	switch f.Type {
	case schema.GUID, schema.String:
		switch v := value.(type) {
		case string:
			return v, nil
		case fmt.Stringer:
			return v.String(), nil
		}

	case schema.Boolean:
		switch v := value.(type) {
		case bool:
			if v {
				return "true", nil
			}
			return "false", nil
		case string:
			if v == "true" || v == "false" {
				return v, nil
			}
		}

	case schema.Integer:
		if n, ok := ToInt64(value); ok {
			return strconv.FormatInt(n, 10), nil
		}
		if s, ok := value.(string); ok {
			n, err := ParseInteger(s)
			if err != nil {
				return "", malformed(model, f, value, err)
			}
			return strconv.FormatInt(n, 10), nil
		}

	case schema.Decimal:
		d, err := ToDecimal(value)
		if err != nil {
			return "", malformed(model, f, value, err)
		}
		return d.String(), nil

	case schema.Date:
		switch v := value.(type) {
		case Date:
			return v.String(), nil
		case time.Time:
			return v.UTC().Format(DateLayout), nil
		case string:
			d, err := ParseDate(v)
			if err != nil {
				return "", malformed(model, f, value, err)
			}
			return d.String(), nil
		}

	case schema.DateTime:
		switch v := value.(type) {
		case time.Time:
			return v.UTC().Format(DateTimeLayout), nil
		case Date:
			return v.Time().Format(DateTimeLayout), nil
		case string:
			t, err := ParseDateTime(v)
			if err != nil {
				return "", malformed(model, f, value, err)
			}
			return t.UTC().Format(DateTimeLayout), nil
		}

	case schema.BelongsTo, schema.HasMany:
		return "", malformed(model, f, value, ErrNotScalar)
	}

	return "", malformed(model, f, value, fmt.Errorf("cannot format %T as %s", value, f.Type))
}

// ToInt64 converts any Go integer kind to int64.
func ToInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v > 1<<63-1 {
			return 0, false
		}
		return int64(v), true
	}
	return 0, false
}

// ToDecimal converts decimals, decimal strings, integers and floats to a
// decimal.Decimal.
func ToDecimal(value interface{}) (decimal.Decimal, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, nil
	case *decimal.Decimal:
		if v == nil {
			return decimal.Decimal{}, errors.New("nil decimal")
		}
		return *v, nil
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	case float32:
		return decimal.NewFromFloat32(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	}
	if n, ok := ToInt64(value); ok {
		return decimal.NewFromInt(n), nil
	}
	return decimal.Decimal{}, fmt.Errorf("cannot convert %T to decimal", value)
}
