// =============================================================================
// xeroizer - Field Descriptors
// =============================================================================
//
// A field descriptor declares how one attribute of a model travels over the
// wire: the XML element name, the accessor name on the in-memory record, the
// declared type and, for nested fields, the model it nests.
//
// FIELD TYPES:
//   guid, string, boolean, integer, decimal, date, datetime  (scalars)
//   belongs_to                                               (one nested record)
//   has_many                                                 (ordered nested records)
//
// =============================================================================

package schema

import (
	"fmt"
	"strings"
)

// FieldType is the declared type of a field.
type FieldType int

const (
	GUID FieldType = iota + 1
	String
	Boolean
	Integer
	Decimal
	Date
	DateTime
	BelongsTo
	HasMany
)

var fieldTypeNames = map[FieldType]string{
	GUID:      "guid",
	String:    "string",
	Boolean:   "boolean",
	Integer:   "integer",
	Decimal:   "decimal",
	Date:      "date",
	DateTime:  "datetime",
	BelongsTo: "belongs_to",
	HasMany:   "has_many",
}

// String returns the canonical lowercase name of the type.
func (t FieldType) String() string {
	if name, ok := fieldTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("FieldType(%d)", int(t))
}

// IsScalar reports whether values of this type are carried as element text.
func (t FieldType) IsScalar() bool {
	switch t {
	case GUID, String, Boolean, Integer, Decimal, Date, DateTime:
		return true
	}
	return false
}

// IsNested reports whether values of this type are nested records.
func (t FieldType) IsNested() bool {
	return t == BelongsTo || t == HasMany
}

// ParseFieldType converts a type name from a schema definition file into a
// FieldType. Common aliases are accepted.
//
// CUSTOMIZATION: Add aliases here if your schema sheets use other terminology.
func ParseFieldType(value string) (FieldType, error) {
	value = strings.ToLower(strings.TrimSpace(value))

	switch value {
	case "guid", "uuid", "id":
		return GUID, nil
	case "string", "str", "text":
		return String, nil
	case "boolean", "bool":
		return Boolean, nil
	case "integer", "int", "numeric":
		return Integer, nil
	case "decimal", "dec", "money", "currency":
		return Decimal, nil
	case "date":
		return Date, nil
	case "datetime", "timestamp", "time":
		return DateTime, nil
	case "belongs_to", "belongsto", "one":
		return BelongsTo, nil
	case "has_many", "hasmany", "many":
		return HasMany, nil
	}

	return 0, fmt.Errorf("unknown field type %q", value)
}

// Field describes a single declared field of a model.
type Field struct {
	// Key is the normalized field key (lowercase with underscores).
	Key string

	// WireName is the XML element name used on the wire.
	WireName string

	// InternalName is the accessor name used on the in-memory record.
	InternalName string

	// Type is the declared field type.
	Type FieldType

	// ModelName names the nested model for belongs_to and has_many fields.
	// When empty the model is inferred from the XML element names.
	ModelName string

	// Calculated marks read-only, server derived fields. They are restored
	// through the raw attribute path rather than the record setter.
	Calculated bool
}

// Option customizes a field at declaration time.
type Option func(*Field)

// APIName overrides the wire element name.
func APIName(name string) Option {
	return func(f *Field) { f.WireName = name }
}

// InternalName overrides the accessor name.
func InternalName(name string) Option {
	return func(f *Field) { f.InternalName = name }
}

// Model sets the nested model name of a belongs_to or has_many field.
func Model(name string) Option {
	return func(f *Field) { f.ModelName = name }
}

// Calculated marks the field as calculated.
func Calculated() Option {
	return func(f *Field) { f.Calculated = true }
}
