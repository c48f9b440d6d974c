package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malclocke/xeroizer/internal/coerce"
	"github.com/malclocke/xeroizer/internal/marshal"
	"github.com/malclocke/xeroizer/internal/record"
	"github.com/malclocke/xeroizer/internal/xmltree"
)

const invoicesResponse = `<Response>
  <Id>5d8b6d3e-0a0b-4c3d-9e6f-000000000000</Id>
  <Status>OK</Status>
  <ProviderName>xeroizer</ProviderName>
  <DateTimeUTC>2026-10-17T00:00:00</DateTimeUTC>
  <Invoices>
    <Invoice>
      <Type>ACCREC</Type>
      <InvoiceID>243216c5-369e-4056-ac67-05388f86dc81</InvoiceID>
      <InvoiceNumber>INV-0001</InvoiceNumber>
      <Contact>
        <ContactID>025867f1-d741-4d6b-b1af-9ac774b59ba7</ContactID>
        <Name>City Agency</Name>
        <IsCustomer>true</IsCustomer>
        <Addresses>
          <Address>
            <AddressType>POBOX</AddressType>
            <AddressLine1>P O Box 123</AddressLine1>
            <City>Wellington</City>
            <PostalCode>6011</PostalCode>
          </Address>
        </Addresses>
        <Phones>
          <Phone><PhoneType>DEFAULT</PhoneType><PhoneNumber>1234567</PhoneNumber></Phone>
          <Phone><PhoneType>MOBILE</PhoneType><PhoneNumber>7654321</PhoneNumber></Phone>
        </Phones>
        <ContactGroups/>
      </Contact>
      <Date>2026-10-01T00:00:00</Date>
      <DueDate>2026-10-20T00:00:00</DueDate>
      <Status>AUTHORISED</Status>
      <LineAmountTypes>Exclusive</LineAmountTypes>
      <LineItems>
        <LineItem>
          <Description>Consulting</Description>
          <Quantity>2.0000</Quantity>
          <UnitAmount>150.00</UnitAmount>
          <TaxAmount>45.00</TaxAmount>
          <LineAmount>300.00</LineAmount>
          <Tracking>
            <TrackingCategory><Name>Region</Name><Option>North</Option></TrackingCategory>
          </Tracking>
        </LineItem>
      </LineItems>
      <SubTotal>300.00</SubTotal>
      <TotalTax>45.00</TotalTax>
      <Total>345.00</Total>
      <AmountDue>345.00</AmountDue>
      <AmountPaid>0.00</AmountPaid>
      <UpdatedDateUTC>2026-10-02T03:04:05.123</UpdatedDateUTC>
      <CurrencyCode>NZD</CurrencyCode>
    </Invoice>
  </Invoices>
</Response>`

func testRegistry(t *testing.T) *record.Registry {
	t.Helper()
	reg, err := NewRegistry()
	require.NoError(t, err)
	reg.Freeze()
	return reg
}

func TestRegisterAllModels(t *testing.T) {
	reg := testRegistry(t)

	assert.Equal(t, []string{
		AccountModel, AddressModel, ContactModel, InvoiceModel, LineItemModel,
		OptionModel, OrganisationModel, PaymentModel, PhoneModel, TrackingCategoryModel,
	}, reg.Models())

	for _, s := range reg.Schemas() {
		for _, f := range s.Fields() {
			if f.ModelName != "" {
				assert.True(t, reg.Has(f.ModelName), "%s.%s refers to %s", s.Name(), f.Key, f.ModelName)
			}
		}
	}

	assert.Error(t, Register(reg))
}

func TestNilRecordsAreRejected(t *testing.T) {
	reg := testRegistry(t)
	rec, err := New(reg, InvoiceModel)
	require.NoError(t, err)

	assert.Error(t, rec.Set("contact", (*Contact)(nil)))
	assert.Error(t, rec.Set("line_items", []record.Record{(*LineItem)(nil)}))
	assert.Equal(t, 0, rec.Attributes().Len())

	_, err = marshal.Marshal(rec)
	assert.NoError(t, err)
}

func TestFactoriesReturnTypedRecords(t *testing.T) {
	reg := testRegistry(t)

	tests := map[string]interface{}{
		AccountModel:          &Account{},
		AddressModel:          &Address{},
		ContactModel:          &Contact{},
		InvoiceModel:          &Invoice{},
		LineItemModel:         &LineItem{},
		OptionModel:           &Option{},
		OrganisationModel:     &Organisation{},
		PaymentModel:          &Payment{},
		PhoneModel:            &Phone{},
		TrackingCategoryModel: &TrackingCategory{},
	}
	for model, expected := range tests {
		rec, err := New(reg, model)
		require.NoError(t, err)
		assert.IsType(t, expected, rec, model)
		assert.Equal(t, model, rec.Context().ModelName())
	}
}

func TestDecodeInvoicesResponse(t *testing.T) {
	reg := testRegistry(t)
	root, err := xmltree.ParseString(invoicesResponse)
	require.NoError(t, err)

	records, err := marshal.New(reg).UnmarshalCollection(root, InvoiceModel)
	require.NoError(t, err)
	require.Len(t, records, 1)

	inv := records[0].(*Invoice)
	assert.Equal(t, "243216c5-369e-4056-ac67-05388f86dc81", inv.InvoiceID())
	assert.Equal(t, "INV-0001", inv.InvoiceNumber())
	assert.True(t, inv.IsReceivable())
	assert.Equal(t, InvoiceStatusAuthorised, inv.Status())
	assert.Equal(t, coerce.NewDate(2026, time.October, 1), inv.IssueDate())
	assert.Equal(t, coerce.NewDate(2026, time.October, 20), inv.DueDate())
	assert.Equal(t, time.Date(2026, 10, 2, 3, 4, 5, 123000000, time.UTC), inv.UpdatedDateUTC())
	assert.True(t, decimal.RequireFromString("345").Equal(inv.Total()))
	assert.True(t, decimal.RequireFromString("345").Equal(inv.AmountDue()))

	contact := inv.Contact()
	require.NotNil(t, contact)
	assert.Equal(t, "City Agency", contact.Name())
	assert.True(t, contact.IsCustomer())
	assert.False(t, contact.IsSupplier())
	require.Len(t, contact.Addresses(), 1)
	assert.Equal(t, AddressTypePOBox, contact.Addresses()[0].Type())
	assert.Equal(t, []string{"P O Box 123"}, contact.Addresses()[0].Lines())
	require.Len(t, contact.Phones(), 2)
	assert.Equal(t, "7654321", contact.Phones()[1].Number())

	items := inv.LineItems()
	require.Len(t, items, 1)
	assert.Equal(t, "Consulting", items[0].Description())
	assert.True(t, decimal.RequireFromString("300").Equal(items[0].LineAmount()))
	require.Len(t, items[0].Tracking(), 1)
	assert.Equal(t, "Region", items[0].Tracking()[0].Name())
	assert.Equal(t, "North", items[0].Tracking()[0].Option())
	assert.Nil(t, inv.Payments())
}

func TestInvoiceRoundTrip(t *testing.T) {
	reg := testRegistry(t)
	mapper := marshal.New(reg)
	root, err := xmltree.ParseString(invoicesResponse)
	require.NoError(t, err)

	records, err := mapper.UnmarshalCollection(root, InvoiceModel)
	require.NoError(t, err)

	first, err := mapper.MarshalCollection(InvoiceModel, records)
	require.NoError(t, err)
	assert.Contains(t, string(first), "<TrackingCategories>")

	root, err = xmltree.ParseBytes(first)
	require.NoError(t, err)
	again, err := mapper.UnmarshalCollection(root, InvoiceModel)
	require.NoError(t, err)

	second, err := mapper.MarshalCollection(InvoiceModel, again)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	assert.Equal(t, "North", again[0].(*Invoice).LineItems()[0].Tracking()[0].Option())
}

func TestBuildInvoice(t *testing.T) {
	reg := testRegistry(t)

	rec, err := New(reg, InvoiceModel)
	require.NoError(t, err)
	inv := rec.(*Invoice)
	require.NoError(t, inv.Set("invoice_id", NewGUID()))
	require.NoError(t, inv.Set("type", InvoiceTypePayable))
	require.NoError(t, inv.Set("line_amount_types", LineAmountsExclusive))

	_, err = uuid.Parse(inv.InvoiceID())
	assert.NoError(t, err)

	item, err := inv.AddLineItem(reg)
	require.NoError(t, err)
	require.NoError(t, item.Set("quantity", "3"))
	require.NoError(t, item.Set("unit_amount", "19.99"))
	require.NoError(t, item.Set("tax_amount", "9.00"))

	discounted, err := inv.AddLineItem(reg)
	require.NoError(t, err)
	require.NoError(t, discounted.Set("quantity", "1"))
	require.NoError(t, discounted.Set("unit_amount", "100"))
	require.NoError(t, discounted.Set("discount_rate", "10"))

	inv.Recalculate()

	assert.Equal(t, "59.97", items(inv)[0].LineAmount().StringFixed(2))
	assert.Equal(t, "90.00", items(inv)[1].LineAmount().StringFixed(2))
	assert.Equal(t, "149.97", inv.SubTotal().StringFixed(2))
	assert.Equal(t, "9.00", inv.TotalTax().StringFixed(2))
	assert.Equal(t, "158.97", inv.Total().StringFixed(2))
	assert.Equal(t, "158.97", inv.AmountDue().StringFixed(2))
	assert.False(t, inv.IsReceivable())

	assert.Error(t, inv.Set("total", "1"))
	assert.Equal(t, "Invoice/LineItem", item.Context().(*record.Model).Path())
}

func items(inv *Invoice) []*LineItem { return inv.LineItems() }

func TestContactBuilders(t *testing.T) {
	reg := testRegistry(t)
	rec, err := New(reg, ContactModel)
	require.NoError(t, err)
	c := rec.(*Contact)

	phone, err := c.AddPhone(reg)
	require.NoError(t, err)
	require.NoError(t, phone.Set("type", PhoneTypeMobile))
	require.NoError(t, phone.Set("number", "021 555 0101"))

	addr, err := c.AddAddress(reg)
	require.NoError(t, err)
	require.NoError(t, addr.Set("type", AddressTypeStreet))
	require.NoError(t, addr.Set("city", "Auckland"))

	out, err := marshal.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, "<Contact>\n"+
		"  <Phones>\n"+
		"    <Phone>\n"+
		"      <PhoneType>MOBILE</PhoneType>\n"+
		"      <PhoneNumber>021 555 0101</PhoneNumber>\n"+
		"    </Phone>\n"+
		"  </Phones>\n"+
		"  <Addresses>\n"+
		"    <Address>\n"+
		"      <AddressType>STREET</AddressType>\n"+
		"      <City>Auckland</City>\n"+
		"    </Address>\n"+
		"  </Addresses>\n"+
		"</Contact>\n", string(out))
}

func TestOrganisationAndPayment(t *testing.T) {
	reg := testRegistry(t)
	mapper := marshal.New(reg)

	org, err := mapper.Unmarshal([]byte(`<Organisation>
  <APIKey>KEY</APIKey>
  <Name>Demo Company (NZ)</Name>
  <PaysTax>true</PaysTax>
  <BaseCurrency>NZD</BaseCurrency>
  <IsDemoCompany>true</IsDemoCompany>
  <FinancialYearEndDay>31</FinancialYearEndDay>
  <FinancialYearEndMonth>3</FinancialYearEndMonth>
</Organisation>`), OrganisationModel)
	require.NoError(t, err)

	o := org.(*Organisation)
	assert.Equal(t, "Demo Company (NZ)", o.Name())
	assert.True(t, o.PaysTax())
	assert.True(t, o.IsDemoCompany())
	month, day := o.FinancialYearEnd()
	assert.Equal(t, time.March, month)
	assert.Equal(t, 31, day)
	v, _ := o.Get("api_key")
	assert.Equal(t, "KEY", v)

	pay, err := mapper.Unmarshal([]byte(`<Payment>
  <Date>2026-10-05</Date>
  <Amount>345.00</Amount>
  <Invoice><InvoiceNumber>INV-0001</InvoiceNumber></Invoice>
  <Account><Code>090</Code><Type>BANK</Type></Account>
</Payment>`), PaymentModel)
	require.NoError(t, err)

	p := pay.(*Payment)
	assert.Equal(t, coerce.NewDate(2026, time.October, 5), p.PaidOn())
	assert.True(t, decimal.RequireFromString("345").Equal(p.Amount()))
	assert.Equal(t, "INV-0001", p.Invoice().InvoiceNumber())
	assert.Equal(t, "090", p.Account().Code())
	assert.True(t, p.Account().IsBank())
}
