package models

import (
	"github.com/malclocke/xeroizer/internal/record"
	"github.com/malclocke/xeroizer/internal/schema"
)

// Account types used by the chart of accounts.
const (
	AccountTypeBank       = "BANK"
	AccountTypeCurrent    = "CURRENT"
	AccountTypeExpense    = "EXPENSE"
	AccountTypeRevenue    = "REVENUE"
	AccountTypeLiability  = "LIABILITY"
	AccountTypeEquity     = "EQUITY"
	AccountTypeFixedAsset = "FIXED"
)

// AccountSchema declares the Account model.
func AccountSchema() *schema.Schema {
	return schema.New(AccountModel).
		GUID("account_id", schema.APIName("AccountID")).
		String("code").
		String("name").
		String("type").
		String("class").
		String("status").
		String("tax_type").
		String("description").
		String("currency_code").
		String("bank_account_number").
		String("reporting_code").
		String("reporting_code_name").
		Boolean("enable_payments_to_account").
		Boolean("show_in_expense_claims").
		DateTime("updated_date_utc", schema.APIName("UpdatedDateUTC"))
}

// Account is an entry of the chart of accounts.
type Account struct {
	*record.Base
}

func (a *Account) AccountID() string { return a.String("account_id") }
func (a *Account) Code() string      { return a.String("code") }
func (a *Account) Name() string      { return a.String("name") }
func (a *Account) Type() string      { return a.String("type") }
func (a *Account) Class() string     { return a.String("class") }
func (a *Account) TaxType() string   { return a.String("tax_type") }

// IsBank reports whether payments can be made from the account.
func (a *Account) IsBank() bool {
	return a.Type() == AccountTypeBank || a.Bool("enable_payments_to_account")
}
