// =============================================================================
// xeroizer - Record Marshaling
// =============================================================================
//
// This package converts between parsed XML elements and record graphs, driven
// entirely by the field schemas of the models in a registry.
//
// DESERIALIZATION (BuildFromNode):
//   1. Construct an empty record of the model through its registered factory
//   2. For each child element, resolve the field by normalized tag name
//   3. Skip elements the model does not declare
//   4. Coerce scalars, recurse into belongs_to and has_many elements
//   5. Write calculated fields into the raw attribute map, the rest through
//      the record's setter
//
// SERIALIZATION (ToXML):
//   1. Open a tag named after the record's model
//   2. Emit each set attribute in insertion order under its wire name
//   3. Wrap has_many collections in a tag named after the pluralized model
//
// NESTED CONTEXTS:
//   Nested records are bound to a context derived from the parent record's
//   context for their own model, so they serialize under their own tag.
//
// =============================================================================

package marshal

import (
	"fmt"

	"github.com/malclocke/xeroizer/internal/coerce"
	"github.com/malclocke/xeroizer/internal/log"
	"github.com/malclocke/xeroizer/internal/record"
	"github.com/malclocke/xeroizer/internal/schema"
	"github.com/malclocke/xeroizer/internal/xmltree"
)

// InconsistentCollectionError reports a has_many collection holding records
// of more than one model.
type InconsistentCollectionError struct {
	Model    string
	Field    string
	Expected string
	Found    string
}

// Error implements the error interface.
func (e *InconsistentCollectionError) Error() string {
	return fmt.Sprintf("%s.%s: collection of %s contains a %s record", e.Model, e.Field, e.Expected, e.Found)
}

// Mapper marshals records of the models registered in a registry.
type Mapper struct {
	registry *record.Registry
	logger   log.Logger
	options  xmltree.Options
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithLogger sets the logger reporting skipped elements.
func WithLogger(logger log.Logger) Option {
	return func(m *Mapper) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithXMLOptions sets the builder options used by Marshal.
func WithXMLOptions(options xmltree.Options) Option {
	return func(m *Mapper) { m.options = options }
}

// New creates a Mapper over a registry.
func New(registry *record.Registry, opts ...Option) *Mapper {
	m := &Mapper{
		registry: registry,
		logger:   log.Discard,
		options:  xmltree.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Registry returns the registry the mapper resolves models in.
func (m *Mapper) Registry() *record.Registry {
	return m.registry
}

// =============================================================================
// DESERIALIZATION
// =============================================================================

// BuildFromNode deserializes an element into a record of the given model.
//
// PARAMETERS:
//   - el: The element holding the record's fields as children.
//   - ctx: The construction context the record is bound to. A nil ctx binds
//     the record to a fresh context for model.
//   - model: The registered model name.
//
// RETURNS:
//   - The populated record.
//   - *record.UnknownModelTypeError for an unregistered model or nested model.
//   - *coerce.MalformedFieldValueError for malformed scalar text.
func (m *Mapper) BuildFromNode(el *xmltree.Element, ctx record.Context, model string) (record.Record, error) {
	if ctx == nil {
		ctx = record.NewModel(model)
	}
	rec, err := m.registry.New(model, ctx)
	if err != nil {
		return nil, err
	}
	s := rec.Schema()

	for _, child := range el.Children {
		f, ok := s.Field(child.Name)
		if !ok {
			m.logger.Debug("skipping unknown element %s in %s", child.Name, model)
			continue
		}

		value, set, err := m.buildValue(rec, f, child)
		if err != nil {
			return nil, err
		}
		if !set {
			continue
		}

		if f.Calculated {
			rec.SetRaw(f.Key, value)
			continue
		}
		if err := rec.Set(f.Key, value); err != nil {
			return nil, err
		}
	}

	return rec, nil
}

// buildValue deserializes the value of one field element. The boolean result
// is false when the element leaves the field unset.
func (m *Mapper) buildValue(rec record.Record, f schema.Field, child *xmltree.Element) (interface{}, bool, error) {
	switch f.Type {
	case schema.BelongsTo:
		model := f.ModelName
		if model == "" {
			model = child.Name
		}
		nested, err := m.BuildFromNode(child, rec.Context().Nested(model), model)
		if err != nil {
			return nil, false, err
		}
		return nested, true, nil

	case schema.HasMany:
		if !child.HasChildren() {
			return nil, false, nil
		}
		model := f.ModelName
		if model == "" {
			model = child.Children[0].Name
		}
		ctx := rec.Context().Nested(model)

		records := make([]record.Record, 0, len(child.Children))
		for _, item := range child.Children {
			nested, err := m.BuildFromNode(item, ctx, model)
			if err != nil {
				return nil, false, err
			}
			records = append(records, nested)
		}
		return records, true, nil
	}

	value, err := coerce.Parse(rec.Schema().Name(), f, child.Text)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Unmarshal parses a document whose root element is a single record of the
// given model.
func (m *Mapper) Unmarshal(data []byte, model string) (record.Record, error) {
	root, err := xmltree.ParseBytes(data)
	if err != nil {
		return nil, err
	}
	return m.BuildFromNode(root, record.NewModel(model), model)
}

// UnmarshalCollection deserializes every record of a model found in a
// document. The document may be an API response envelope
// (<Response><Contacts><Contact>...), a bare collection (<Contacts>...) or a
// single record (<Contact>...).
//
// RETURNS:
//   - The records in document order; an empty slice when the document holds
//     none.
func (m *Mapper) UnmarshalCollection(root *xmltree.Element, model string) ([]record.Record, error) {
	if !m.registry.Has(model) {
		return nil, &record.UnknownModelTypeError{Model: model}
	}

	elements := RecordElements(root, model)
	ctx := record.NewModel(model)
	records := make([]record.Record, 0, len(elements))
	for i, el := range elements {
		rec, err := m.BuildFromNode(el, ctx, model)
		if err != nil {
			return nil, fmt.Errorf("%s #%d: %w", model, i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// RecordElements returns the elements of a document holding records of a
// model, using the same envelope rules as UnmarshalCollection. Children of
// the collection wrapper named after another model are left out.
func RecordElements(root *xmltree.Element, model string) []*xmltree.Element {
	if root.Name == model {
		return []*xmltree.Element{root}
	}

	wrapper := root
	plural := schema.Plural(model)
	if root.Name != plural {
		if wrapper = root.Child(plural); wrapper == nil {
			return nil
		}
	}

	elements := make([]*xmltree.Element, 0, len(wrapper.Children))
	for _, el := range wrapper.Children {
		if el.Name == model {
			elements = append(elements, el)
		}
	}
	return elements
}

// =============================================================================
// SERIALIZATION
// =============================================================================

// ToXML writes a record as an element named after its context's model.
func (m *Mapper) ToXML(rec record.Record, b *xmltree.Builder) error {
	if record.IsNil(rec) {
		return fmt.Errorf("cannot serialize nil %T record", rec)
	}
	return b.Block(tagName(rec), func() error {
		s := rec.Schema()
		return rec.Attributes().Each(func(key string, value interface{}) error {
			if value == nil {
				return nil
			}
			f, ok := s.Field(key)
			if !ok {
				return &record.FieldError{Model: s.Name(), Field: key, Reason: "no such field"}
			}
			return m.writeField(rec, f, value, b)
		})
	})
}

func (m *Mapper) writeField(rec record.Record, f schema.Field, value interface{}, b *xmltree.Builder) error {
	switch f.Type {
	case schema.BelongsTo:
		nested, ok := value.(record.Record)
		if !ok {
			return &record.FieldError{Model: rec.Schema().Name(), Field: f.Key, Reason: fmt.Sprintf("cannot serialize %T as belongs_to", value)}
		}
		if record.IsNil(nested) {
			return &record.FieldError{Model: rec.Schema().Name(), Field: f.Key, Reason: fmt.Sprintf("cannot serialize nil %T", value)}
		}
		return m.ToXML(nested, b)

	case schema.HasMany:
		items, ok := value.([]record.Record)
		if !ok {
			return &record.FieldError{Model: rec.Schema().Name(), Field: f.Key, Reason: fmt.Sprintf("cannot serialize %T as has_many", value)}
		}
		if len(items) == 0 {
			return nil
		}
		for i, item := range items {
			if record.IsNil(item) {
				return &record.FieldError{Model: rec.Schema().Name(), Field: f.Key, Reason: fmt.Sprintf("cannot serialize nil %T at index %d", item, i)}
			}
		}
		model := tagName(items[0])
		for _, item := range items[1:] {
			if found := tagName(item); found != model {
				return &InconsistentCollectionError{Model: rec.Schema().Name(), Field: f.Key, Expected: model, Found: found}
			}
		}
		return b.Block(schema.Plural(model), func() error {
			for _, item := range items {
				if err := m.ToXML(item, b); err != nil {
					return err
				}
			}
			return nil
		})
	}

	text, err := coerce.Format(rec.Schema().Name(), f, value)
	if err != nil {
		return err
	}
	b.Tag(f.WireName, text)
	return nil
}

// Marshal serializes a record into a new document.
func (m *Mapper) Marshal(rec record.Record) ([]byte, error) {
	b := xmltree.NewBuilder(m.options)
	if err := m.ToXML(rec, b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// MarshalCollection serializes records of a model inside the pluralized
// wrapper element used for request bodies, e.g. <Invoices><Invoice>...
func (m *Mapper) MarshalCollection(model string, records []record.Record) ([]byte, error) {
	b := xmltree.NewBuilder(m.options)
	plural := schema.Plural(model)

	if len(records) == 0 {
		b.Tag(plural, "")
		return b.Bytes(), nil
	}

	err := b.Block(plural, func() error {
		for _, rec := range records {
			if record.IsNil(rec) {
				return fmt.Errorf("cannot serialize nil %T record in %s", rec, plural)
			}
			if found := tagName(rec); found != model {
				return &InconsistentCollectionError{Model: model, Field: plural, Expected: model, Found: found}
			}
			if err := m.ToXML(rec, b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// tagName returns the model name a record serializes as.
func tagName(rec record.Record) string {
	if ctx := rec.Context(); ctx != nil {
		return ctx.ModelName()
	}
	return rec.Schema().Name()
}

// =============================================================================
// PACKAGE-LEVEL HELPERS
// =============================================================================

// BuildFromNode deserializes an element into a record of a model registered
// in reg. See Mapper.BuildFromNode.
func BuildFromNode(reg *record.Registry, el *xmltree.Element, ctx record.Context, model string) (record.Record, error) {
	return New(reg).BuildFromNode(el, ctx, model)
}

// ToXML writes a record to b. See Mapper.ToXML.
func ToXML(rec record.Record, b *xmltree.Builder) error {
	return New(nil).ToXML(rec, b)
}

// Marshal serializes a record with the default builder options.
func Marshal(rec record.Record) ([]byte, error) {
	return New(nil).Marshal(rec)
}
