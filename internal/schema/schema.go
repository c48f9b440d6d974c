// =============================================================================
// xeroizer - Model Schemas
// =============================================================================
//
// A Schema is the field table of one model type. Schemas are declared once,
// usually at package init, with a small builder:
//
//   schema.New("Contact").
//       GUID("contact_id", schema.APIName("ContactID")).
//       String("name").
//       Boolean("is_active").
//       HasMany("addresses", schema.Model("Address"))
//
// Once a schema has been registered it is frozen; further declarations
// panic. A frozen schema is safe for concurrent reads.
//
// =============================================================================

package schema

import (
	"fmt"
)

// Schema is the immutable field table of a model type.
type Schema struct {
	name   string
	fields map[string]*Field
	order  []string

	// byWire indexes fields by their exact wire name.
	byWire map[string]string

	// byInternal indexes fields by their accessor name.
	byInternal map[string]string

	// collections indexes has_many fields by the pluralized model name the
	// serializer wraps their records in, when it differs from the wire name.
	collections map[string]string

	frozen bool
}

// New starts a schema declaration for the named model.
func New(model string) *Schema {
	return &Schema{
		name:        model,
		fields:      make(map[string]*Field),
		byWire:      make(map[string]string),
		byInternal:  make(map[string]string),
		collections: make(map[string]string),
	}
}

// =============================================================================
// DECLARATION
// =============================================================================

// Add declares a field. The wire name defaults to the camelized key and the
// internal name defaults to the key itself.
//
// Add panics on a frozen schema, a duplicate key, wire name or internal
// name, or an internal name that collides with another field's key. These
// are programming errors in a schema declaration.
func (s *Schema) Add(key string, t FieldType, opts ...Option) *Schema {
	if err := s.add(key, t, opts...); err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) add(key string, t FieldType, opts ...Option) error {
	if s.frozen {
		return fmt.Errorf("schema %s: cannot declare %q after registration", s.name, key)
	}
	if key == "" {
		return fmt.Errorf("schema %s: empty field key", s.name)
	}

	f := &Field{
		Key:          key,
		WireName:     WireName(key),
		InternalName: key,
		Type:         t,
	}
	for _, opt := range opts {
		opt(f)
	}

	if !t.IsNested() && f.ModelName != "" {
		return fmt.Errorf("schema %s: field %q of type %s cannot name a model", s.name, key, t)
	}
	if _, exists := s.fields[key]; exists {
		return fmt.Errorf("schema %s: duplicate field %q", s.name, key)
	}
	if other, exists := s.byWire[f.WireName]; exists {
		return fmt.Errorf("schema %s: fields %q and %q share wire name %q", s.name, other, key, f.WireName)
	}
	if other, exists := s.byInternal[f.InternalName]; exists && other != key {
		return fmt.Errorf("schema %s: fields %q and %q share internal name %q", s.name, other, key, f.InternalName)
	}
	// Set resolves internal names before keys, so an internal name may not
	// shadow the key of another field, nor a key another internal name.
	if _, exists := s.fields[f.InternalName]; exists && f.InternalName != key {
		return fmt.Errorf("schema %s: internal name %q of field %q is the key of another field", s.name, f.InternalName, key)
	}
	if other, exists := s.byInternal[key]; exists && other != key {
		return fmt.Errorf("schema %s: key %q is the internal name of field %q", s.name, key, other)
	}

	s.fields[key] = f
	s.order = append(s.order, key)
	s.byWire[f.WireName] = key
	s.byInternal[f.InternalName] = key
	if t == HasMany && f.ModelName != "" {
		if plural := Plural(f.ModelName); plural != f.WireName {
			s.collections[plural] = key
		}
	}
	return nil
}

// GUID declares a field holding a UUID.
func (s *Schema) GUID(key string, opts ...Option) *Schema { return s.Add(key, GUID, opts...) }

// String declares a text field.
func (s *Schema) String(key string, opts ...Option) *Schema { return s.Add(key, String, opts...) }

// Boolean declares a field serialized as "true" or "false".
func (s *Schema) Boolean(key string, opts ...Option) *Schema {
	return s.Add(key, Boolean, opts...)
}

// Integer declares a whole-number field.
func (s *Schema) Integer(key string, opts ...Option) *Schema {
	return s.Add(key, Integer, opts...)
}

// Decimal declares an exact decimal field.
func (s *Schema) Decimal(key string, opts ...Option) *Schema {
	return s.Add(key, Decimal, opts...)
}

// Date declares a calendar date field without a time of day.
func (s *Schema) Date(key string, opts ...Option) *Schema { return s.Add(key, Date, opts...) }

// DateTime declares a timestamp field.
func (s *Schema) DateTime(key string, opts ...Option) *Schema {
	return s.Add(key, DateTime, opts...)
}

// BelongsTo declares a single nested record. Without a Model option the
// nested model is taken from the element's tag.
func (s *Schema) BelongsTo(key string, opts ...Option) *Schema {
	return s.Add(key, BelongsTo, opts...)
}

// HasMany declares a collection of nested records. Without a Model option
// the nested model is taken from the tag of the first item.
func (s *Schema) HasMany(key string, opts ...Option) *Schema {
	return s.Add(key, HasMany, opts...)
}

// Freeze marks the schema immutable. It is called by the record registry.
func (s *Schema) Freeze() { s.frozen = true }

// Frozen reports whether the schema has been frozen.
func (s *Schema) Frozen() bool { return s.frozen }

// =============================================================================
// LOOKUP
// =============================================================================

// Name returns the model name.
func (s *Schema) Name() string { return s.name }

// Len returns the number of declared fields.
func (s *Schema) Len() int { return len(s.order) }

// Field resolves a field by key, exact wire name or normalized wire name.
// A has_many field also resolves by the pluralized name of its model, which
// is the wrapper tag the serializer emits for it.
//
// PARAMETERS:
//   - name: A field key ("first_name") or wire name ("FirstName").
//
// RETURNS:
//   - The field descriptor and true, or a zero Field and false when the
//     model declares no such field.
func (s *Schema) Field(name string) (Field, bool) {
	if f, ok := s.fields[name]; ok {
		return *f, true
	}
	if key, ok := s.byWire[name]; ok {
		return *s.fields[key], true
	}
	if f, ok := s.fields[Normalize(name)]; ok {
		return *f, true
	}
	if key, ok := s.collections[name]; ok {
		return *s.fields[key], true
	}
	return Field{}, false
}

// FieldByInternalName resolves a field by its accessor name, falling back
// to the field key.
func (s *Schema) FieldByInternalName(name string) (Field, bool) {
	if key, ok := s.byInternal[name]; ok {
		return *s.fields[key], true
	}
	if f, ok := s.fields[name]; ok {
		return *f, true
	}
	return Field{}, false
}

// Fields returns the declared fields in declaration order.
func (s *Schema) Fields() []Field {
	fields := make([]Field, 0, len(s.order))
	for _, key := range s.order {
		fields = append(fields, *s.fields[key])
	}
	return fields
}
