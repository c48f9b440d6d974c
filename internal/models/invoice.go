package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/malclocke/xeroizer/internal/coerce"
	"github.com/malclocke/xeroizer/internal/record"
	"github.com/malclocke/xeroizer/internal/schema"
)

// Invoice types.
const (
	InvoiceTypeReceivable = "ACCREC"
	InvoiceTypePayable    = "ACCPAY"
)

// Invoice statuses.
const (
	InvoiceStatusDraft      = "DRAFT"
	InvoiceStatusSubmitted  = "SUBMITTED"
	InvoiceStatusAuthorised = "AUTHORISED"
	InvoiceStatusPaid       = "PAID"
	InvoiceStatusVoided     = "VOIDED"
	InvoiceStatusDeleted    = "DELETED"
)

// Line amount types.
const (
	LineAmountsExclusive = "Exclusive"
	LineAmountsInclusive = "Inclusive"
	LineAmountsNoTax     = "NoTax"
)

// InvoiceSchema declares the Invoice model. Totals are calculated by the
// server and only ever read.
func InvoiceSchema() *schema.Schema {
	return schema.New(InvoiceModel).
		GUID("invoice_id", schema.APIName("InvoiceID")).
		String("invoice_number").
		String("reference").
		String("type").
		String("status").
		String("line_amount_types").
		String("currency_code").
		Decimal("currency_rate").
		Date("date").
		Date("due_date").
		Date("fully_paid_on_date").
		DateTime("updated_date_utc", schema.APIName("UpdatedDateUTC")).
		Boolean("sent_to_contact").
		BelongsTo("contact", schema.Model(ContactModel)).
		HasMany("line_items", schema.Model(LineItemModel)).
		HasMany("payments", schema.Model(PaymentModel)).
		Decimal("sub_total", schema.Calculated()).
		Decimal("total_tax", schema.Calculated()).
		Decimal("total", schema.Calculated()).
		Decimal("amount_due", schema.Calculated()).
		Decimal("amount_paid", schema.Calculated()).
		Decimal("amount_credited", schema.Calculated())
}

// Invoice is a sales invoice or a bill.
type Invoice struct {
	*record.Base
}

func (i *Invoice) InvoiceID() string          { return i.String("invoice_id") }
func (i *Invoice) InvoiceNumber() string      { return i.String("invoice_number") }
func (i *Invoice) Reference() string          { return i.String("reference") }
func (i *Invoice) Type() string               { return i.String("type") }
func (i *Invoice) Status() string             { return i.String("status") }
func (i *Invoice) LineAmountTypes() string    { return i.String("line_amount_types") }
func (i *Invoice) CurrencyCode() string       { return i.String("currency_code") }
func (i *Invoice) IssueDate() coerce.Date     { return i.Date("date") }
func (i *Invoice) DueDate() coerce.Date       { return i.Date("due_date") }
func (i *Invoice) UpdatedDateUTC() time.Time  { return i.Time("updated_date_utc") }
func (i *Invoice) Contact() *Contact          { return oneOf[*Contact](i.Base, "contact") }
func (i *Invoice) LineItems() []*LineItem     { return manyOf[*LineItem](i.Base, "line_items") }
func (i *Invoice) Payments() []*Payment       { return manyOf[*Payment](i.Base, "payments") }
func (i *Invoice) SubTotal() decimal.Decimal  { return i.Decimal("sub_total") }
func (i *Invoice) TotalTax() decimal.Decimal  { return i.Decimal("total_tax") }
func (i *Invoice) Total() decimal.Decimal     { return i.Decimal("total") }
func (i *Invoice) AmountDue() decimal.Decimal { return i.Decimal("amount_due") }

// IsReceivable reports whether the invoice is a sales invoice.
func (i *Invoice) IsReceivable() bool { return i.Type() == InvoiceTypeReceivable }

// AddLineItem appends a line item bound to the invoice's context.
func (i *Invoice) AddLineItem(reg *record.Registry) (*LineItem, error) {
	rec, err := reg.New(LineItemModel, i.Context().Nested(LineItemModel))
	if err != nil {
		return nil, err
	}
	return rec.(*LineItem), i.Append("line_items", rec)
}

// Recalculate derives the calculated totals from the line items the way the
// server does for a draft invoice. Inclusive line amounts already contain
// their tax.
func (i *Invoice) Recalculate() {
	subTotal, totalTax := decimal.Zero, decimal.Zero
	for _, item := range i.LineItems() {
		item.Recalculate()
		subTotal = subTotal.Add(item.LineAmount())
		totalTax = totalTax.Add(item.TaxAmount())
	}
	if i.LineAmountTypes() == LineAmountsInclusive {
		subTotal = subTotal.Sub(totalTax)
	}

	total := subTotal.Add(totalTax)
	paid := i.Decimal("amount_paid")
	i.SetRaw("sub_total", subTotal)
	i.SetRaw("total_tax", totalTax)
	i.SetRaw("total", total)
	i.SetRaw("amount_due", total.Sub(paid))
}

// LineItemSchema declares the LineItem model.
func LineItemSchema() *schema.Schema {
	return schema.New(LineItemModel).
		GUID("line_item_id", schema.APIName("LineItemID")).
		String("description").
		String("item_code").
		String("account_code").
		String("tax_type").
		Decimal("quantity").
		Decimal("unit_amount").
		Decimal("discount_rate").
		Decimal("tax_amount").
		Decimal("line_amount", schema.Calculated()).
		HasMany("tracking", schema.Model(TrackingCategoryModel))
}

// LineItem is one line of an invoice.
type LineItem struct {
	*record.Base
}

func (l *LineItem) Description() string           { return l.String("description") }
func (l *LineItem) AccountCode() string           { return l.String("account_code") }
func (l *LineItem) TaxType() string               { return l.String("tax_type") }
func (l *LineItem) Quantity() decimal.Decimal     { return l.Decimal("quantity") }
func (l *LineItem) UnitAmount() decimal.Decimal   { return l.Decimal("unit_amount") }
func (l *LineItem) DiscountRate() decimal.Decimal { return l.Decimal("discount_rate") }
func (l *LineItem) TaxAmount() decimal.Decimal    { return l.Decimal("tax_amount") }
func (l *LineItem) LineAmount() decimal.Decimal   { return l.Decimal("line_amount") }
func (l *LineItem) Tracking() []*TrackingCategory { return manyOf[*TrackingCategory](l.Base, "tracking") }

// Recalculate sets the line amount to quantity * unit amount less the
// discount percentage, rounded to cents.
func (l *LineItem) Recalculate() {
	amount := l.Quantity().Mul(l.UnitAmount())
	if rate := l.DiscountRate(); !rate.IsZero() {
		amount = amount.Mul(decimal.NewFromInt(100).Sub(rate)).Div(decimal.NewFromInt(100))
	}
	l.SetRaw("line_amount", amount.Round(2))
}
