package coerce

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malclocke/xeroizer/internal/schema"
)

func field(t schema.FieldType) schema.Field {
	return schema.Field{Key: "value", WireName: "Value", InternalName: "value", Type: t}
}

func TestParseScalars(t *testing.T) {
	tests := []struct {
		name     string
		typ      schema.FieldType
		text     string
		expected interface{}
	}{
		{"guid", schema.GUID, "not-a-guid", "not-a-guid"},
		{"string", schema.String, " Acme & Co ", " Acme & Co "},
		{"boolean true", schema.Boolean, "true", true},
		{"boolean false", schema.Boolean, "false", false},
		{"boolean capitalized", schema.Boolean, "True", false},
		{"boolean garbage", schema.Boolean, "yes", false},
		{"integer", schema.Integer, "42", int64(42)},
		{"integer negative", schema.Integer, "-7", int64(-7)},
		{"integer leading digits", schema.Integer, "12abc", int64(12)},
		{"integer garbage", schema.Integer, "abc", int64(0)},
		{"integer empty", schema.Integer, "", int64(0)},
		{"date", schema.Date, "2010-03-01", NewDate(2010, time.March, 1)},
		{"date from timestamp", schema.Date, "2010-03-01T23:30:00+13:00", NewDate(2010, time.March, 1)},
		{"datetime zone-less", schema.DateTime, "2010-03-01T12:34:56", time.Date(2010, 3, 1, 12, 34, 56, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse("Contact", field(tt.typ), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestParseDateTimeKeepsOffset(t *testing.T) {
	v, err := Parse("Invoice", field(schema.DateTime), "2010-03-01T12:00:00+13:00")
	require.NoError(t, err)

	ts := v.(time.Time)
	assert.True(t, ts.Equal(time.Date(2010, 2, 28, 23, 0, 0, 0, time.UTC)))
}

func TestParseDecimalKeepsPrecision(t *testing.T) {
	v, err := Parse("Invoice", field(schema.Decimal), "123.456000000000001")
	require.NoError(t, err)

	d := v.(decimal.Decimal)
	assert.Equal(t, "123.456000000000001", d.String())
}

func TestParseMalformed(t *testing.T) {
	for _, typ := range []schema.FieldType{schema.Decimal, schema.Date, schema.DateTime} {
		t.Run(typ.String(), func(t *testing.T) {
			_, err := Parse("Invoice", field(typ), "garbage")
			require.Error(t, err)

			var mfv *MalformedFieldValueError
			require.True(t, errors.As(err, &mfv))
			assert.Equal(t, "Invoice", mfv.Model)
			assert.Equal(t, "value", mfv.Field)
			assert.Equal(t, typ, mfv.Type)
			assert.Contains(t, err.Error(), "Invoice.value")
		})
	}

	_, err := Parse("Invoice", field(schema.Integer), "99999999999999999999")
	assert.Error(t, err)

	_, err = Parse("Invoice", field(schema.HasMany), "")
	assert.ErrorIs(t, err, ErrNotScalar)
}

func TestFormatScalars(t *testing.T) {
	auckland := time.FixedZone("NZDT", 13*60*60)
	id := uuid.MustParse("1f0e7a4a-6b2c-4d4e-9a43-0c0f2b8e5a11")

	tests := []struct {
		name     string
		typ      schema.FieldType
		value    interface{}
		expected string
	}{
		{"guid", schema.GUID, "abc", "abc"},
		{"guid uuid", schema.GUID, id, "1f0e7a4a-6b2c-4d4e-9a43-0c0f2b8e5a11"},
		{"string", schema.String, "Acme", "Acme"},
		{"boolean true", schema.Boolean, true, "true"},
		{"boolean false", schema.Boolean, false, "false"},
		{"integer", schema.Integer, int64(42), "42"},
		{"integer int", schema.Integer, 7, "7"},
		{"integer string", schema.Integer, "12", "12"},
		{"decimal", schema.Decimal, decimal.RequireFromString("10.50"), "10.5"},
		{"decimal string", schema.Decimal, "0123.4500", "123.45"},
		{"decimal int", schema.Decimal, 3, "3"},
		{"date", schema.Date, NewDate(2010, time.March, 1), "2010-03-01"},
		{"date from time normalizes to UTC", schema.Date, time.Date(2010, 3, 1, 10, 0, 0, 0, auckland), "2010-02-28"},
		{"datetime UTC", schema.DateTime, time.Date(2010, 3, 1, 12, 34, 56, 0, time.UTC), "2010-03-01T12:34:56"},
		{"datetime offset", schema.DateTime, time.Date(2010, 3, 1, 12, 0, 0, 0, auckland), "2010-02-28T23:00:00"},
		{"datetime from date", schema.DateTime, NewDate(2010, time.March, 1), "2010-03-01T00:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Format("Contact", field(tt.typ), tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, s)
		})
	}
}

func TestFormatRejectsWrongTypes(t *testing.T) {
	tests := []struct {
		typ   schema.FieldType
		value interface{}
	}{
		{schema.String, 12},
		{schema.Boolean, "yes"},
		{schema.Integer, 1.5},
		{schema.Decimal, "12,00"},
		{schema.Date, "yesterday"},
		{schema.DateTime, true},
		{schema.BelongsTo, "x"},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			_, err := Format("Contact", field(tt.typ), tt.value)
			var mfv *MalformedFieldValueError
			assert.True(t, errors.As(err, &mfv))
		})
	}
}

func TestRoundTripScalars(t *testing.T) {
	values := map[schema.FieldType]interface{}{
		schema.GUID:     "8a1f1b7e-0000-4000-8000-000000000001",
		schema.String:   "Line <one> & \"two\"",
		schema.Boolean:  true,
		schema.Integer:  int64(-1234567890123),
		schema.Date:     NewDate(1999, time.December, 31),
		schema.DateTime: time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC),
	}

	for typ, value := range values {
		t.Run(typ.String(), func(t *testing.T) {
			text, err := Format("M", field(typ), value)
			require.NoError(t, err)
			back, err := Parse("M", field(typ), text)
			require.NoError(t, err)
			assert.Equal(t, value, back)
		})
	}

	d := decimal.RequireFromString("123.456000000000001")
	text, err := Format("M", field(schema.Decimal), d)
	require.NoError(t, err)
	back, err := Parse("M", field(schema.Decimal), text)
	require.NoError(t, err)
	assert.True(t, d.Equal(back.(decimal.Decimal)))
}
