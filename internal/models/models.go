// =============================================================================
// xeroizer - Accounting Models
// =============================================================================
//
// This package declares the accounting API's record types. Each model has:
//   - a schema function declaring its fields (ContactSchema, InvoiceSchema...)
//   - a Go type embedding *record.Base with typed accessors
//   - a factory registered by Register
//
// USAGE:
//   reg, err := models.NewRegistry()
//   mapper := marshal.New(reg)
//   contacts, err := mapper.UnmarshalCollection(root, models.ContactModel)
//   c := contacts[0].(*models.Contact)
//
// =============================================================================

package models

import (
	"github.com/google/uuid"

	"github.com/malclocke/xeroizer/internal/record"
	"github.com/malclocke/xeroizer/internal/schema"
)

// Model names.
const (
	AccountModel          = "Account"
	AddressModel          = "Address"
	ContactModel          = "Contact"
	InvoiceModel          = "Invoice"
	LineItemModel         = "LineItem"
	OptionModel           = "Option"
	OrganisationModel     = "Organisation"
	PaymentModel          = "Payment"
	PhoneModel            = "Phone"
	TrackingCategoryModel = "TrackingCategory"
)

type definition struct {
	schema  func() *schema.Schema
	factory record.Factory
}

var definitions = []definition{
	{AccountSchema, func(s *schema.Schema, ctx record.Context) record.Record {
		return &Account{Base: record.NewBase(s, ctx)}
	}},
	{AddressSchema, func(s *schema.Schema, ctx record.Context) record.Record {
		return &Address{Base: record.NewBase(s, ctx)}
	}},
	{ContactSchema, func(s *schema.Schema, ctx record.Context) record.Record {
		return &Contact{Base: record.NewBase(s, ctx)}
	}},
	{InvoiceSchema, func(s *schema.Schema, ctx record.Context) record.Record {
		return &Invoice{Base: record.NewBase(s, ctx)}
	}},
	{LineItemSchema, func(s *schema.Schema, ctx record.Context) record.Record {
		return &LineItem{Base: record.NewBase(s, ctx)}
	}},
	{OptionSchema, func(s *schema.Schema, ctx record.Context) record.Record {
		return &Option{Base: record.NewBase(s, ctx)}
	}},
	{OrganisationSchema, func(s *schema.Schema, ctx record.Context) record.Record {
		return &Organisation{Base: record.NewBase(s, ctx)}
	}},
	{PaymentSchema, func(s *schema.Schema, ctx record.Context) record.Record {
		return &Payment{Base: record.NewBase(s, ctx)}
	}},
	{PhoneSchema, func(s *schema.Schema, ctx record.Context) record.Record {
		return &Phone{Base: record.NewBase(s, ctx)}
	}},
	{TrackingCategorySchema, func(s *schema.Schema, ctx record.Context) record.Record {
		return &TrackingCategory{Base: record.NewBase(s, ctx)}
	}},
}

// Register adds every model of this package to reg.
func Register(reg *record.Registry) error {
	for _, d := range definitions {
		if err := reg.Register(d.schema(), d.factory); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding only the models of this package.
// The registry is not frozen so callers can add schema-file models.
func NewRegistry() (*record.Registry, error) {
	reg := record.NewRegistry()
	if err := Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// NewGUID returns a fresh identifier for a GUID field.
func NewGUID() string {
	return uuid.New().String()
}

// New constructs an empty top-level record of a model registered in reg.
func New(reg *record.Registry, model string) (record.Record, error) {
	return reg.New(model, record.NewModel(model))
}

// manyOf returns the typed records of a has_many field, skipping records of
// other types.
func manyOf[T record.Record](b *record.Base, name string) []T {
	items := b.Many(name)
	if items == nil {
		return nil
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if v, ok := item.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// oneOf returns the typed record of a belongs_to field, or the zero value.
func oneOf[T record.Record](b *record.Base, name string) T {
	v, _ := b.One(name).(T)
	return v
}
