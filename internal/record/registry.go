// =============================================================================
// xeroizer - Model Registry
// =============================================================================
//
// The Registry maps model names to their schema and a factory constructing
// records of that model. It is filled at start-up and frozen before any
// marshaling happens; a frozen registry is read-only and safe for concurrent
// use.
//
// =============================================================================

package record

import (
	"fmt"
	"sort"

	"github.com/malclocke/xeroizer/internal/schema"
)

// Factory constructs an empty record of a model bound to ctx.
type Factory func(s *schema.Schema, ctx Context) Record

// Generic is the factory for models without a dedicated Go type.
func Generic(s *schema.Schema, ctx Context) Record {
	return NewBase(s, ctx)
}

// UnknownModelTypeError reports a model name absent from the registry.
type UnknownModelTypeError struct {
	Model string
}

// Error implements the error interface.
func (e *UnknownModelTypeError) Error() string {
	return fmt.Sprintf("unknown model type %q", e.Model)
}

type entry struct {
	schema  *schema.Schema
	factory Factory
}

// Registry holds the registered model types.
type Registry struct {
	models map[string]entry
	frozen bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]entry)}
}

// Register adds a model type. The schema is frozen. A nil factory
// registers the model with the Generic factory.
func (r *Registry) Register(s *schema.Schema, factory Factory) error {
	if r.frozen {
		return fmt.Errorf("registry is frozen: cannot register %s", s.Name())
	}
	if _, exists := r.models[s.Name()]; exists {
		return fmt.Errorf("model %s is already registered", s.Name())
	}
	if factory == nil {
		factory = Generic
	}

	s.Freeze()
	r.models[s.Name()] = entry{schema: s, factory: factory}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(s *schema.Schema, factory Factory) {
	if err := r.Register(s, factory); err != nil {
		panic(err)
	}
}

// Freeze rejects further registrations.
func (r *Registry) Freeze() { r.frozen = true }

// Lookup returns the schema of a model.
func (r *Registry) Lookup(model string) (*schema.Schema, error) {
	e, ok := r.models[model]
	if !ok {
		return nil, &UnknownModelTypeError{Model: model}
	}
	return e.schema, nil
}

// Has reports whether a model is registered.
func (r *Registry) Has(model string) bool {
	_, ok := r.models[model]
	return ok
}

// New constructs an empty record of a model bound to ctx.
func (r *Registry) New(model string, ctx Context) (Record, error) {
	e, ok := r.models[model]
	if !ok {
		return nil, &UnknownModelTypeError{Model: model}
	}
	return e.factory(e.schema, ctx), nil
}

// Field resolves a field of a model by key or wire name.
func (r *Registry) Field(model, name string) (schema.Field, bool) {
	e, ok := r.models[model]
	if !ok {
		return schema.Field{}, false
	}
	return e.schema.Field(name)
}

// Models returns the registered model names in sorted order.
func (r *Registry) Models() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Schemas returns the registered schemas sorted by model name.
func (r *Registry) Schemas() []*schema.Schema {
	names := r.Models()
	schemas := make([]*schema.Schema, 0, len(names))
	for _, name := range names {
		schemas = append(schemas, r.models[name].schema)
	}
	return schemas
}
