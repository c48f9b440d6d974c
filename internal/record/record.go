// =============================================================================
// xeroizer - Records
// =============================================================================
//
// A Record is an instance of a model type: an ordered attribute map keyed by
// field key, the model's schema and the construction Context it was built
// in. Concrete models (see package models) embed *Base and add typed
// accessors; models declared only in schema files use *Base directly.
//
// SETTERS:
//   Set is the public setter. It resolves the field by internal name or key,
//   rejects calculated fields and values of the wrong Go type, and
//   normalizes integers to int64 and decimal strings to decimal.Decimal.
//
//   SetRaw writes straight into the attribute map. The deserializer uses it
//   for calculated fields, which have no public setter.
//
// =============================================================================

package record

import (
	"fmt"
	"reflect"
	"time"

	"github.com/shopspring/decimal"

	"github.com/malclocke/xeroizer/internal/coerce"
	"github.com/malclocke/xeroizer/internal/schema"
)

// Context is the construction context of a record. It names the model the
// record serializes as and creates the contexts of nested records.
type Context interface {
	// ModelName is the model name, used as the record's XML tag.
	ModelName() string

	// Nested returns the context for records of another model nested under
	// this one.
	Nested(model string) Context
}

// Record is an instance of a model type.
type Record interface {
	// Schema returns the model's field schema.
	Schema() *schema.Schema

	// Context returns the construction context.
	Context() Context

	// Attributes returns the attribute map.
	Attributes() *Attributes

	// Get returns the value of a field by key or internal name.
	Get(name string) (interface{}, bool)

	// Set assigns a field through the public setter.
	Set(name string, value interface{}) error

	// SetRaw assigns an attribute directly, bypassing the setter.
	SetRaw(key string, value interface{})
}

// =============================================================================
// ERRORS
// =============================================================================

// FieldError reports a rejected assignment.
type FieldError struct {
	Model  string
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.Model, e.Field, e.Reason)
}

// =============================================================================
// BASE RECORD
// =============================================================================

// Base is the attribute storage shared by all records.
type Base struct {
	schema *schema.Schema
	ctx    Context
	attrs  Attributes
}

// NewBase creates an empty record of the schema's model bound to ctx.
func NewBase(s *schema.Schema, ctx Context) *Base {
	return &Base{schema: s, ctx: ctx}
}

func (b *Base) Schema() *schema.Schema           { return b.schema }
func (b *Base) Context() Context                 { return b.ctx }
func (b *Base) Attributes() *Attributes          { return &b.attrs }
func (b *Base) SetRaw(key string, v interface{}) { b.attrs.Set(key, v) }

// Get returns the value of a field by key or internal name.
func (b *Base) Get(name string) (interface{}, bool) {
	f, ok := b.schema.FieldByInternalName(name)
	if !ok {
		return nil, false
	}
	return b.attrs.Get(f.Key)
}

// Set assigns a field through the public setter. A nil value clears the
// field.
func (b *Base) Set(name string, value interface{}) error {
	f, ok := b.schema.FieldByInternalName(name)
	if !ok {
		return &FieldError{Model: b.schema.Name(), Field: name, Reason: "no such field"}
	}
	if f.Calculated {
		return &FieldError{Model: b.schema.Name(), Field: f.Key, Reason: "calculated field is read-only"}
	}

	if value == nil {
		b.attrs.Set(f.Key, nil)
		return nil
	}

	normalized, err := normalize(f, value)
	if err != nil {
		return &FieldError{Model: b.schema.Name(), Field: f.Key, Reason: err.Error()}
	}

	b.attrs.Set(f.Key, normalized)
	return nil
}

// normalize checks a value against the field type and converts it to the
// canonical Go type of that field type.
func normalize(f schema.Field, value interface{}) (interface{}, error) {
	switch f.Type {
	case schema.GUID, schema.String:
		switch v := value.(type) {
		case string:
			return v, nil
		case fmt.Stringer:
			return v.String(), nil
		}

	case schema.Boolean:
		if v, ok := value.(bool); ok {
			return v, nil
		}

	case schema.Integer:
		if n, ok := coerce.ToInt64(value); ok {
			return n, nil
		}

	case schema.Decimal:
		switch value.(type) {
		case decimal.Decimal, *decimal.Decimal, string:
			d, err := coerce.ToDecimal(value)
			if err != nil {
				return nil, err
			}
			return d, nil
		}

	case schema.Date:
		switch v := value.(type) {
		case coerce.Date, time.Time:
			return v, nil
		}

	case schema.DateTime:
		if v, ok := value.(time.Time); ok {
			return v, nil
		}

	case schema.BelongsTo:
		if v, ok := value.(Record); ok {
			if IsNil(v) {
				return nil, fmt.Errorf("cannot assign nil %T to belongs_to field", value)
			}
			return v, nil
		}

	case schema.HasMany:
		if v, ok := value.([]Record); ok {
			for i, item := range v {
				if IsNil(item) {
					return nil, fmt.Errorf("cannot assign nil %T at index %d to has_many field", item, i)
				}
			}
			return v, nil
		}
	}

	return nil, fmt.Errorf("cannot assign %T to %s field", value, f.Type)
}

// IsNil reports whether r is nil or an interface holding a nil pointer, such
// as a (*models.Contact)(nil).
func IsNil(r Record) bool {
	if r == nil {
		return true
	}
	v := reflect.ValueOf(r)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// =============================================================================
// TYPED ACCESSORS
// =============================================================================
// The accessors return the zero value when the field is unset or holds a
// value of another type.

func (b *Base) String(name string) string {
	v, _ := b.Get(name)
	s, _ := v.(string)
	return s
}

func (b *Base) Bool(name string) bool {
	v, _ := b.Get(name)
	x, _ := v.(bool)
	return x
}

func (b *Base) Int(name string) int64 {
	v, _ := b.Get(name)
	n, _ := v.(int64)
	return n
}

func (b *Base) Decimal(name string) decimal.Decimal {
	v, _ := b.Get(name)
	d, _ := v.(decimal.Decimal)
	return d
}

// Date returns a date field. Timestamps stored through the raw path are
// reduced to their UTC date.
func (b *Base) Date(name string) coerce.Date {
	v, _ := b.Get(name)
	switch d := v.(type) {
	case coerce.Date:
		return d
	case time.Time:
		return coerce.DateOf(d.UTC())
	}
	return coerce.Date{}
}

func (b *Base) Time(name string) time.Time {
	v, _ := b.Get(name)
	t, _ := v.(time.Time)
	return t
}

func (b *Base) One(name string) Record {
	v, _ := b.Get(name)
	r, _ := v.(Record)
	return r
}

func (b *Base) Many(name string) []Record {
	v, _ := b.Get(name)
	rs, _ := v.([]Record)
	return rs
}

// Append adds records to a has_many field.
func (b *Base) Append(name string, records ...Record) error {
	return b.Set(name, append(b.Many(name), records...))
}
