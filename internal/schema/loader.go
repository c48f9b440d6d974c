// =============================================================================
// xeroizer - Schema Definition Files
// =============================================================================
//
// Besides the models compiled into the binary, extra model schemas can be
// declared in YAML files or XLSX templates placed in the schemas directory.
//
// YAML FORMAT:
//
//   models:
//     - name: Widget
//       fields:
//         - key: widget_id
//           type: guid
//           api_name: WidgetID
//         - key: parts
//           type: has_many
//           model: Part
//
// XLSX FORMAT: see xlsx.go.
//
// =============================================================================

package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Definition is the file representation of a model schema.
type Definition struct {
	// Name is the model name, which is also its XML element name.
	Name string `yaml:"name"`

	// Fields lists the model's fields.
	Fields []FieldDefinition `yaml:"fields"`
}

// FieldDefinition is the file representation of a field.
type FieldDefinition struct {
	Key          string `yaml:"key"`
	Type         string `yaml:"type"`
	APIName      string `yaml:"api_name,omitempty"`
	InternalName string `yaml:"internal_name,omitempty"`
	Model        string `yaml:"model,omitempty"`
	Calculated   bool   `yaml:"calculated,omitempty"`
}

// definitionFile is the top level of a YAML schema file.
type definitionFile struct {
	Models []Definition `yaml:"models"`
}

// =============================================================================
// BUILDING
// =============================================================================

// Build converts a definition into a schema.
func (d Definition) Build() (*Schema, error) {
	if strings.TrimSpace(d.Name) == "" {
		return nil, fmt.Errorf("model definition without a name")
	}

	s := New(d.Name)
	for i, fd := range d.Fields {
		t, err := ParseFieldType(fd.Type)
		if err != nil {
			return nil, fmt.Errorf("model %s field %d (%s): %w", d.Name, i+1, fd.Key, err)
		}

		var opts []Option
		if fd.APIName != "" {
			opts = append(opts, APIName(fd.APIName))
		}
		if fd.InternalName != "" {
			opts = append(opts, InternalName(fd.InternalName))
		}
		if fd.Model != "" {
			opts = append(opts, Model(fd.Model))
		}
		if fd.Calculated {
			opts = append(opts, Calculated())
		}

		if err := s.add(fd.Key, t, opts...); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Describe converts a schema back into its file representation.
func Describe(s *Schema) Definition {
	d := Definition{Name: s.Name()}
	for _, f := range s.Fields() {
		fd := FieldDefinition{
			Key:        f.Key,
			Type:       f.Type.String(),
			Model:      f.ModelName,
			Calculated: f.Calculated,
		}
		if f.WireName != WireName(f.Key) {
			fd.APIName = f.WireName
		}
		if f.InternalName != f.Key {
			fd.InternalName = f.InternalName
		}
		d.Fields = append(d.Fields, fd)
	}
	return d
}

// =============================================================================
// YAML LOADING
// =============================================================================

// ParseYAML parses model definitions from YAML.
func ParseYAML(data []byte) ([]*Schema, error) {
	var file definitionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse schema definitions: %w", err)
	}

	schemas := make([]*Schema, 0, len(file.Models))
	for _, d := range file.Models {
		s, err := d.Build()
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, s)
	}

	return schemas, nil
}

// LoadYAML reads model definitions from a YAML file.
func LoadYAML(path string) ([]*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	schemas, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return schemas, nil
}

// MarshalYAML renders schemas in the YAML definition format.
func MarshalYAML(schemas []*Schema) ([]byte, error) {
	file := definitionFile{}
	for _, s := range schemas {
		file.Models = append(file.Models, Describe(s))
	}
	return yaml.Marshal(file)
}

// LoadDir loads every schema definition file in a directory. YAML files
// (.yaml, .yml) and XLSX templates (.xlsx) are recognized; other files are
// ignored. Files are read in name order.
//
// PARAMETERS:
//   - dir: The schemas directory. A missing directory yields no schemas.
//
// RETURNS:
//   - The schemas in file order.
//   - An error if any file cannot be read or parsed.
func LoadDir(dir string) ([]*Schema, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list schema directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var schemas []*Schema
	for _, name := range names {
		path := filepath.Join(dir, name)

		var loaded []*Schema
		switch strings.ToLower(filepath.Ext(name)) {
		case ".yaml", ".yml":
			loaded, err = LoadYAML(path)
		case ".xlsx":
			loaded, err = LoadXLSX(path)
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, loaded...)
	}

	return schemas, nil
}
