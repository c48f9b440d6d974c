// =============================================================================
// xeroizer - Validation Engine
// =============================================================================
//
// The marshaling engine is deliberately not a schema validator: it skips
// elements it does not know and trusts the attribute map it serializes. This
// module provides the checks a caller can opt into:
//
//   1. Registry-level: every nested field names a registered model
//   2. Document-level: elements of a document no model declares
//   3. Record-level: attribute values of the wrong Go type, malformed GUIDs
//      and mixed-model collections, recursively through nested records
//
// ERROR HANDLING:
//   - Errors are collected, not returned one at a time
//   - Each error carries the model, field path and offending value
//   - Errors are either warnings (the record still marshals) or fatal
//
// =============================================================================

package validation

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/malclocke/xeroizer/internal/coerce"
	"github.com/malclocke/xeroizer/internal/record"
	"github.com/malclocke/xeroizer/internal/schema"
	"github.com/malclocke/xeroizer/internal/xmltree"
)

// Severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation finding.
type ValidationError struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Model is the model the finding belongs to.
	Model string

	// Path locates the field from the top-level record or document root,
	// e.g. "Invoice/LineItems[2]/UnitAmount".
	Path string

	// Field is the field key, or the element name for unknown elements.
	Field string

	// Value is the offending value rendered as text.
	Value string

	// Rule names the violated check.
	Rule string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("[%s] %s: %s", strings.ToUpper(e.Severity), e.Path, e.Message)
	if e.Value != "" {
		msg += fmt.Sprintf(" (value: '%s')", e.Value)
	}
	return msg
}

// Fatal reports whether the finding is an error rather than a warning.
func (e *ValidationError) Fatal() bool {
	return e.Severity == SeverityError
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool

	// Errors contains all findings, warnings included.
	Errors []*ValidationError

	// ErrorCount is the number of fatal errors.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int

	// RecordsValidated counts records, nested records included.
	RecordsValidated int

	// FieldsValidated counts attribute values checked.
	FieldsValidated int
}

func newResult() *ValidationResult {
	return &ValidationResult{IsValid: true, Errors: make([]*ValidationError, 0)}
}

// add records findings, returning false when validation should stop.
func (r *ValidationResult) add(options ValidationOptions, errs ...*ValidationError) bool {
	for _, err := range errs {
		r.Errors = append(r.Errors, err)
		if err.Fatal() {
			r.ErrorCount++
			r.IsValid = false
			if options.StopOnFirstError {
				return false
			}
		} else {
			r.WarningCount++
			if options.TreatWarningsAsErrors {
				r.IsValid = false
			}
		}
	}
	return true
}

// =============================================================================
// VALIDATOR
// =============================================================================

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// StopOnFirstError stops validation after the first fatal error.
	StopOnFirstError bool

	// TreatWarningsAsErrors makes any warning invalidate the result.
	TreatWarningsAsErrors bool

	// SkipGUIDCheck disables the GUID shape warning.
	SkipGUIDCheck bool

	// CustomValidators run on set attribute values. The key is
	// "Model.field_key".
	CustomValidators map[string]CustomValidatorFunc
}

// CustomValidatorFunc returns a message when a value is invalid.
type CustomValidatorFunc func(value interface{}, ctx ValidationContext) string

// ValidationContext provides context for custom validators.
type ValidationContext struct {
	Field  schema.Field
	Record record.Record
	Path   string
}

// DefaultValidationOptions returns the default validation options.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{
		CustomValidators: make(map[string]CustomValidatorFunc),
	}
}

// Validator validates records and documents of the models in a registry.
type Validator struct {
	registry *record.Registry
	options  ValidationOptions
}

// NewValidator creates a Validator with the default options.
func NewValidator(registry *record.Registry) *Validator {
	return NewValidatorWithOptions(registry, DefaultValidationOptions())
}

// NewValidatorWithOptions creates a Validator with custom options.
func NewValidatorWithOptions(registry *record.Registry, options ValidationOptions) *Validator {
	return &Validator{registry: registry, options: options}
}

// =============================================================================
// REGISTRY VALIDATION
// =============================================================================

// ValidateRegistry checks that every nested field resolves to a registered
// model. A has_many field without a model name is a warning: its model is
// inferred from the first element of each collection.
func ValidateRegistry(reg *record.Registry) []*ValidationError {
	var errs []*ValidationError

	for _, s := range reg.Schemas() {
		for _, f := range s.Fields() {
			if !f.Type.IsNested() {
				continue
			}
			path := s.Name() + "/" + f.WireName

			switch {
			case f.ModelName != "" && !reg.Has(f.ModelName):
				errs = append(errs, &ValidationError{
					Severity: SeverityError,
					Model:    s.Name(),
					Path:     path,
					Field:    f.Key,
					Value:    f.ModelName,
					Rule:     "unknown_model",
					Message:  fmt.Sprintf("%s field refers to unregistered model", f.Type),
				})

			case f.ModelName == "" && f.Type == schema.HasMany:
				errs = append(errs, &ValidationError{
					Severity: SeverityWarning,
					Model:    s.Name(),
					Path:     path,
					Field:    f.Key,
					Rule:     "inferred_model",
					Message:  "has_many field has no model; it is inferred from the first child element",
				})

			case f.ModelName == "" && !reg.Has(f.WireName):
				errs = append(errs, &ValidationError{
					Severity: SeverityError,
					Model:    s.Name(),
					Path:     path,
					Field:    f.Key,
					Value:    f.WireName,
					Rule:     "unknown_model",
					Message:  "belongs_to field has no model and its tag is not a registered model",
				})
			}
		}
	}

	return errs
}

// =============================================================================
// DOCUMENT VALIDATION
// =============================================================================

// ValidateDocument reports the elements of a record element that no model
// declares. The deserializer skips them silently.
func (v *Validator) ValidateDocument(el *xmltree.Element, model string) *ValidationResult {
	result := newResult()
	v.validateElement(el, model, model, result)
	return result
}

func (v *Validator) validateElement(el *xmltree.Element, model, path string, result *ValidationResult) bool {
	s, err := v.registry.Lookup(model)
	if err != nil {
		return result.add(v.options, &ValidationError{
			Severity: SeverityError,
			Model:    model,
			Path:     path,
			Rule:     "unknown_model",
			Message:  err.Error(),
		})
	}
	result.RecordsValidated++

	for _, child := range el.Children {
		childPath := path + "/" + child.Name
		f, ok := s.Field(child.Name)
		if !ok {
			if !result.add(v.options, &ValidationError{
				Severity: SeverityWarning,
				Model:    model,
				Path:     childPath,
				Field:    child.Name,
				Rule:     "unknown_element",
				Message:  "element is not declared by the model and will be ignored",
			}) {
				return false
			}
			continue
		}
		result.FieldsValidated++

		switch f.Type {
		case schema.BelongsTo:
			nested := f.ModelName
			if nested == "" {
				nested = child.Name
			}
			if !v.validateElement(child, nested, childPath, result) {
				return false
			}

		case schema.HasMany:
			if !child.HasChildren() {
				continue
			}
			nested := f.ModelName
			if nested == "" {
				nested = child.Children[0].Name
			}
			for i, item := range child.Children {
				if !v.validateElement(item, nested, fmt.Sprintf("%s[%d]", childPath, i+1), result) {
					return false
				}
			}

		default:
			if _, err := coerce.Parse(model, f, child.Text); err != nil {
				if !result.add(v.options, &ValidationError{
					Severity: SeverityError,
					Model:    model,
					Path:     childPath,
					Field:    f.Key,
					Value:    child.Text,
					Rule:     "malformed_value",
					Message:  fmt.Sprintf("not a valid %s", f.Type),
				}) {
					return false
				}
			}
		}
	}
	return true
}

// =============================================================================
// RECORD VALIDATION
// =============================================================================

// ValidateAll validates records and everything nested in them.
func (v *Validator) ValidateAll(records []record.Record) *ValidationResult {
	result := newResult()
	for _, rec := range records {
		if !v.validateRecord(rec, modelOf(rec), result) {
			break
		}
	}
	return result
}

// ValidateRecord validates one record graph.
func (v *Validator) ValidateRecord(rec record.Record) *ValidationResult {
	return v.ValidateAll([]record.Record{rec})
}

func (v *Validator) validateRecord(rec record.Record, path string, result *ValidationResult) bool {
	result.RecordsValidated++
	s := rec.Schema()

	for _, key := range rec.Attributes().Keys() {
		value, _ := rec.Attributes().Get(key)
		if value == nil {
			continue
		}
		f, ok := s.Field(key)
		if !ok {
			if !result.add(v.options, &ValidationError{
				Severity: SeverityError,
				Model:    s.Name(),
				Path:     path + "/" + key,
				Field:    key,
				Rule:     "unknown_field",
				Message:  "attribute is not declared by the model",
			}) {
				return false
			}
			continue
		}
		result.FieldsValidated++

		fieldPath := path + "/" + f.WireName
		if !result.add(v.options, v.validateValue(rec, f, value, fieldPath)...) {
			return false
		}

		switch nested := value.(type) {
		case record.Record:
			if !v.validateRecord(nested, fieldPath, result) {
				return false
			}
		case []record.Record:
			for i, item := range nested {
				if !v.validateRecord(item, fmt.Sprintf("%s[%d]", fieldPath, i+1), result) {
					return false
				}
			}
		}
	}
	return true
}

// validateValue checks a single attribute value against its field.
func (v *Validator) validateValue(rec record.Record, f schema.Field, value interface{}, path string) []*ValidationError {
	var errs []*ValidationError
	model := rec.Schema().Name()

	newError := func(severity, rule, message string) *ValidationError {
		return &ValidationError{
			Severity: severity,
			Model:    model,
			Path:     path,
			Field:    f.Key,
			Value:    render(value),
			Rule:     rule,
			Message:  message,
		}
	}

	switch f.Type {
	case schema.BelongsTo:
		if _, ok := value.(record.Record); !ok {
			errs = append(errs, newError(SeverityError, "data_type", fmt.Sprintf("%T is not a record", value)))
		}

	case schema.HasMany:
		items, ok := value.([]record.Record)
		if !ok {
			errs = append(errs, newError(SeverityError, "data_type", fmt.Sprintf("%T is not a record collection", value)))
			break
		}
		for i := 1; i < len(items); i++ {
			if modelOf(items[i]) != modelOf(items[0]) {
				errs = append(errs, newError(SeverityError, "mixed_collection",
					fmt.Sprintf("collection of %s contains a %s record", modelOf(items[0]), modelOf(items[i]))))
				break
			}
		}

	default:
		if _, err := coerce.Format(model, f, value); err != nil {
			errs = append(errs, newError(SeverityError, "data_type", fmt.Sprintf("cannot be written as %s", f.Type)))
			break
		}
		if f.Type == schema.GUID && !v.options.SkipGUIDCheck {
			if s, _ := value.(string); s != "" {
				if _, err := uuid.Parse(s); err != nil {
					errs = append(errs, newError(SeverityWarning, "guid_format", "value is not a well-formed GUID"))
				}
			}
		}
	}

	if custom, ok := v.options.CustomValidators[model+"."+f.Key]; ok {
		if msg := custom(value, ValidationContext{Field: f, Record: rec, Path: path}); msg != "" {
			errs = append(errs, newError(SeverityError, "custom", msg))
		}
	}

	return errs
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func modelOf(rec record.Record) string {
	if ctx := rec.Context(); ctx != nil {
		return ctx.ModelName()
	}
	return rec.Schema().Name()
}

// render formats a value for error reports.
func render(value interface{}) string {
	switch v := value.(type) {
	case record.Record:
		return modelOf(v)
	case []record.Record:
		return fmt.Sprintf("%d records", len(v))
	case time.Time:
		return v.Format(time.RFC3339)
	}
	return fmt.Sprint(value)
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation errors for display or logging.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Validation completed with %d finding(s):\n\n", len(errors)))
	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}
	return builder.String()
}

// WriteErrorLog writes validation errors to a file.
func WriteErrorLog(errors []*ValidationError, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	fmt.Fprintf(writer, "Validation report generated %s\n\n", time.Now().Format(time.RFC3339))
	writer.WriteString(FormatErrors(errors))
	return writer.Flush()
}
