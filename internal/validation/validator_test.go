package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malclocke/xeroizer/internal/models"
	"github.com/malclocke/xeroizer/internal/record"
	"github.com/malclocke/xeroizer/internal/schema"
	"github.com/malclocke/xeroizer/internal/xmltree"
)

func testRegistry(t *testing.T) *record.Registry {
	t.Helper()
	reg, err := models.NewRegistry()
	require.NoError(t, err)
	reg.Freeze()
	return reg
}

func rules(errs []*ValidationError) []string {
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Rule)
	}
	return out
}

func TestValidateRegistry(t *testing.T) {
	assert.Empty(t, ValidateRegistry(testRegistry(t)))

	reg := record.NewRegistry()
	reg.MustRegister(schema.New("Invoice").
		BelongsTo("contact", schema.Model("Contact")).
		BelongsTo("branding_theme").
		HasMany("line_items"), nil)

	errs := ValidateRegistry(reg)
	require.Len(t, errs, 3)
	assert.Equal(t, []string{"unknown_model", "unknown_model", "inferred_model"}, rules(errs))
	assert.Equal(t, "Invoice/Contact", errs[0].Path)
	assert.Equal(t, "Contact", errs[0].Value)
	assert.True(t, errs[0].Fatal())
	assert.False(t, errs[2].Fatal())
}

func TestValidateDocument(t *testing.T) {
	v := NewValidator(testRegistry(t))
	el, err := xmltree.ParseString(`<Invoice>
  <InvoiceNumber>INV-1</InvoiceNumber>
  <Colour>red</Colour>
  <Date>soon</Date>
  <LineItems>
    <LineItem><Description>A</Description></LineItem>
    <LineItem><Flavour>B</Flavour></LineItem>
  </LineItems>
</Invoice>`)
	require.NoError(t, err)

	result := v.ValidateDocument(el, models.InvoiceModel)
	assert.False(t, result.IsValid)
	assert.Equal(t, 1, result.ErrorCount)
	assert.Equal(t, 2, result.WarningCount)
	assert.Equal(t, 3, result.RecordsValidated)
	assert.Equal(t, []string{"unknown_element", "malformed_value", "unknown_element"}, rules(result.Errors))
	assert.Equal(t, "Invoice/LineItems[2]/Flavour", result.Errors[2].Path)

	result = v.ValidateDocument(el, "Bill")
	assert.Equal(t, []string{"unknown_model"}, rules(result.Errors))
}

func TestValidateRecord(t *testing.T) {
	reg := testRegistry(t)
	rec, err := models.New(reg, models.InvoiceModel)
	require.NoError(t, err)
	inv := rec.(*models.Invoice)

	require.NoError(t, inv.Set("invoice_id", "not-a-guid"))
	inv.SetRaw("total", "lots")
	item, err := inv.AddLineItem(reg)
	require.NoError(t, err)
	require.NoError(t, item.Set("line_item_id", models.NewGUID()))
	item.SetRaw("quantity", true)

	result := NewValidator(reg).ValidateRecord(inv)
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{"guid_format", "data_type", "data_type"}, rules(result.Errors))
	assert.Equal(t, "Invoice/InvoiceID", result.Errors[0].Path)
	assert.Equal(t, "Invoice/Total", result.Errors[1].Path)
	assert.Equal(t, "Invoice/LineItems[1]/Quantity", result.Errors[2].Path)
	assert.Equal(t, 2, result.RecordsValidated)
	assert.Equal(t, 1, result.WarningCount)
}

func TestValidateOptions(t *testing.T) {
	reg := testRegistry(t)
	rec, err := models.New(reg, models.ContactModel)
	require.NoError(t, err)
	require.NoError(t, rec.Set("contact_id", "x"))
	require.NoError(t, rec.Set("name", ""))
	rec.SetRaw("is_supplier", "maybe")
	rec.SetRaw("is_customer", 3)

	options := DefaultValidationOptions()
	options.SkipGUIDCheck = true
	options.StopOnFirstError = true
	options.CustomValidators["Contact.name"] = func(value interface{}, ctx ValidationContext) string {
		if value == "" {
			return "name is required"
		}
		return ""
	}

	result := NewValidatorWithOptions(reg, options).ValidateRecord(rec)
	assert.Equal(t, []string{"custom"}, rules(result.Errors))
	assert.Equal(t, "Contact/Name", result.Errors[0].Path)

	options = DefaultValidationOptions()
	options.TreatWarningsAsErrors = true
	clean, err := models.New(reg, models.ContactModel)
	require.NoError(t, err)
	require.NoError(t, clean.Set("contact_id", "x"))
	result = NewValidatorWithOptions(reg, options).ValidateRecord(clean)
	assert.False(t, result.IsValid)
	assert.Equal(t, 0, result.ErrorCount)
}

func TestMixedCollection(t *testing.T) {
	reg := testRegistry(t)
	rec, err := models.New(reg, models.ContactModel)
	require.NoError(t, err)

	phone, err := reg.New(models.PhoneModel, rec.Context().Nested(models.PhoneModel))
	require.NoError(t, err)
	addr, err := reg.New(models.AddressModel, rec.Context().Nested(models.AddressModel))
	require.NoError(t, err)
	require.NoError(t, rec.Set("phones", []record.Record{phone, addr}))

	result := NewValidator(reg).ValidateRecord(rec)
	assert.Contains(t, rules(result.Errors), "mixed_collection")
}

func TestFormatAndWriteErrors(t *testing.T) {
	assert.Equal(t, "No validation errors.", FormatErrors(nil))

	errs := []*ValidationError{{
		Severity: SeverityWarning,
		Path:     "Contact/Website",
		Message:  "element is not declared by the model and will be ignored",
	}, {
		Severity: SeverityError,
		Path:     "Contact/IsSupplier",
		Value:    "maybe",
		Message:  "cannot be written as boolean",
	}}

	formatted := FormatErrors(errs)
	assert.Contains(t, formatted, "2 finding(s)")
	assert.Contains(t, formatted, "1. [WARNING] Contact/Website: element is not declared")
	assert.Contains(t, formatted, "2. [ERROR] Contact/IsSupplier: cannot be written as boolean (value: 'maybe')")

	path := filepath.Join(t.TempDir(), "errors.log")
	require.NoError(t, WriteErrorLog(errs, path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), formatted)
}
