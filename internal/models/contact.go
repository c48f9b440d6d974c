package models

import (
	"time"

	"github.com/malclocke/xeroizer/internal/record"
	"github.com/malclocke/xeroizer/internal/schema"
)

// Contact statuses.
const (
	ContactStatusActive   = "ACTIVE"
	ContactStatusArchived = "ARCHIVED"
)

// ContactSchema declares the Contact model.
func ContactSchema() *schema.Schema {
	return schema.New(ContactModel).
		GUID("contact_id", schema.APIName("ContactID")).
		String("contact_number").
		String("contact_status").
		String("name").
		String("first_name").
		String("last_name").
		String("email_address").
		String("skype_user_name").
		String("bank_account_details").
		String("tax_number").
		String("accounts_receivable_tax_type").
		String("accounts_payable_tax_type").
		String("default_currency").
		Boolean("is_supplier").
		Boolean("is_customer").
		DateTime("updated_date_utc", schema.APIName("UpdatedDateUTC")).
		HasMany("addresses", schema.Model(AddressModel)).
		HasMany("phones", schema.Model(PhoneModel))
}

// Contact is a customer or supplier.
type Contact struct {
	*record.Base
}

func (c *Contact) ContactID() string         { return c.String("contact_id") }
func (c *Contact) ContactNumber() string     { return c.String("contact_number") }
func (c *Contact) Status() string            { return c.String("contact_status") }
func (c *Contact) Name() string              { return c.String("name") }
func (c *Contact) FirstName() string         { return c.String("first_name") }
func (c *Contact) LastName() string          { return c.String("last_name") }
func (c *Contact) EmailAddress() string      { return c.String("email_address") }
func (c *Contact) TaxNumber() string         { return c.String("tax_number") }
func (c *Contact) DefaultCurrency() string   { return c.String("default_currency") }
func (c *Contact) IsSupplier() bool          { return c.Bool("is_supplier") }
func (c *Contact) IsCustomer() bool          { return c.Bool("is_customer") }
func (c *Contact) UpdatedDateUTC() time.Time { return c.Time("updated_date_utc") }
func (c *Contact) Addresses() []*Address     { return manyOf[*Address](c.Base, "addresses") }
func (c *Contact) Phones() []*Phone          { return manyOf[*Phone](c.Base, "phones") }

// AddAddress appends an address bound to the contact's context.
func (c *Contact) AddAddress(reg *record.Registry) (*Address, error) {
	rec, err := reg.New(AddressModel, c.Context().Nested(AddressModel))
	if err != nil {
		return nil, err
	}
	return rec.(*Address), c.Append("addresses", rec)
}

// AddPhone appends a phone bound to the contact's context.
func (c *Contact) AddPhone(reg *record.Registry) (*Phone, error) {
	rec, err := reg.New(PhoneModel, c.Context().Nested(PhoneModel))
	if err != nil {
		return nil, err
	}
	return rec.(*Phone), c.Append("phones", rec)
}

// Address types.
const (
	AddressTypePOBox    = "POBOX"
	AddressTypeStreet   = "STREET"
	AddressTypeDelivery = "DELIVERY"
)

// AddressSchema declares the Address model.
func AddressSchema() *schema.Schema {
	return schema.New(AddressModel).
		String("address_type", schema.InternalName("type")).
		String("attention_to").
		String("address_line1").
		String("address_line2").
		String("address_line3").
		String("address_line4").
		String("city").
		String("region").
		String("postal_code").
		String("country")
}

// Address is a postal or street address of a contact or organisation.
type Address struct {
	*record.Base
}

func (a *Address) Type() string        { return a.String("type") }
func (a *Address) AttentionTo() string { return a.String("attention_to") }
func (a *Address) City() string        { return a.String("city") }
func (a *Address) Region() string      { return a.String("region") }
func (a *Address) PostalCode() string  { return a.String("postal_code") }
func (a *Address) Country() string     { return a.String("country") }

// Lines returns the non-empty address lines in order.
func (a *Address) Lines() []string {
	var lines []string
	for _, key := range []string{"address_line1", "address_line2", "address_line3", "address_line4"} {
		if line := a.String(key); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Phone types.
const (
	PhoneTypeDefault = "DEFAULT"
	PhoneTypeDDI     = "DDI"
	PhoneTypeMobile  = "MOBILE"
	PhoneTypeFax     = "FAX"
)

// PhoneSchema declares the Phone model.
func PhoneSchema() *schema.Schema {
	return schema.New(PhoneModel).
		String("phone_type", schema.InternalName("type")).
		String("phone_number", schema.InternalName("number")).
		String("phone_area_code", schema.InternalName("area_code")).
		String("phone_country_code", schema.InternalName("country_code"))
}

// Phone is a phone number of a contact or organisation.
type Phone struct {
	*record.Base
}

func (p *Phone) Type() string        { return p.String("type") }
func (p *Phone) Number() string      { return p.String("number") }
func (p *Phone) AreaCode() string    { return p.String("area_code") }
func (p *Phone) CountryCode() string { return p.String("country_code") }
