package record

import "strings"

// Model is the standard construction context: a named model, optionally
// nested under the model it was entered from.
type Model struct {
	name   string
	parent *Model
}

// NewModel returns a top-level context for the named model.
func NewModel(name string) *Model {
	return &Model{name: name}
}

// ModelName returns the model name.
func (m *Model) ModelName() string { return m.name }

// Nested returns a child context for the named model.
func (m *Model) Nested(model string) Context {
	return &Model{name: model, parent: m}
}

// Parent returns the context this one was nested from, or nil.
func (m *Model) Parent() *Model { return m.parent }

// Path returns the model names from the top-level context down to m,
// joined by "/", e.g. "Invoice/LineItem".
func (m *Model) Path() string {
	var names []string
	for c := m; c != nil; c = c.parent {
		names = append(names, c.name)
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, "/")
}
