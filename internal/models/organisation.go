package models

import (
	"time"

	"github.com/malclocke/xeroizer/internal/record"
	"github.com/malclocke/xeroizer/internal/schema"
)

// OrganisationSchema declares the Organisation model.
func OrganisationSchema() *schema.Schema {
	return schema.New(OrganisationModel).
		String("api_key", schema.APIName("APIKey")).
		String("name").
		String("legal_name").
		Boolean("pays_tax").
		String("version").
		String("organisation_type").
		String("base_currency").
		String("country_code").
		Boolean("is_demo_company").
		String("organisation_status").
		String("registration_number").
		String("tax_number").
		Integer("financial_year_end_day").
		Integer("financial_year_end_month").
		DateTime("created_date_utc", schema.APIName("CreatedDateUTC")).
		HasMany("addresses", schema.Model(AddressModel)).
		HasMany("phones", schema.Model(PhoneModel))
}

// Organisation is the accounting organisation the API is connected to.
type Organisation struct {
	*record.Base
}

func (o *Organisation) Name() string              { return o.String("name") }
func (o *Organisation) LegalName() string         { return o.String("legal_name") }
func (o *Organisation) PaysTax() bool             { return o.Bool("pays_tax") }
func (o *Organisation) BaseCurrency() string      { return o.String("base_currency") }
func (o *Organisation) CountryCode() string       { return o.String("country_code") }
func (o *Organisation) IsDemoCompany() bool       { return o.Bool("is_demo_company") }
func (o *Organisation) CreatedDateUTC() time.Time { return o.Time("created_date_utc") }
func (o *Organisation) Addresses() []*Address     { return manyOf[*Address](o.Base, "addresses") }
func (o *Organisation) Phones() []*Phone          { return manyOf[*Phone](o.Base, "phones") }

// FinancialYearEnd returns the month and day the financial year ends on.
func (o *Organisation) FinancialYearEnd() (time.Month, int) {
	return time.Month(o.Int("financial_year_end_month")), int(o.Int("financial_year_end_day"))
}
