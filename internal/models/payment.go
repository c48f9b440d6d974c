package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/malclocke/xeroizer/internal/coerce"
	"github.com/malclocke/xeroizer/internal/record"
	"github.com/malclocke/xeroizer/internal/schema"
)

// PaymentSchema declares the Payment model. A payment applies an amount from
// an account to an invoice.
func PaymentSchema() *schema.Schema {
	return schema.New(PaymentModel).
		GUID("payment_id", schema.APIName("PaymentID")).
		Date("date").
		Decimal("amount").
		Decimal("currency_rate").
		String("payment_type").
		String("status").
		String("reference").
		Boolean("is_reconciled").
		DateTime("updated_date_utc", schema.APIName("UpdatedDateUTC")).
		BelongsTo("invoice", schema.Model(InvoiceModel)).
		BelongsTo("account", schema.Model(AccountModel))
}

// Payment is a payment against an invoice.
type Payment struct {
	*record.Base
}

func (p *Payment) PaymentID() string             { return p.String("payment_id") }
func (p *Payment) PaidOn() coerce.Date           { return p.Date("date") }
func (p *Payment) Amount() decimal.Decimal       { return p.Decimal("amount") }
func (p *Payment) CurrencyRate() decimal.Decimal { return p.Decimal("currency_rate") }
func (p *Payment) Reference() string             { return p.String("reference") }
func (p *Payment) IsReconciled() bool            { return p.Bool("is_reconciled") }
func (p *Payment) UpdatedDateUTC() time.Time     { return p.Time("updated_date_utc") }
func (p *Payment) Invoice() *Invoice             { return oneOf[*Invoice](p.Base, "invoice") }
func (p *Payment) Account() *Account             { return oneOf[*Account](p.Base, "account") }
