package recon

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferBank(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		source   string
		desc     string
		wantBank Bank
	}{
		{
			name:     "filename keyword",
			source:   "wise_statement_2026.csv",
			desc:     "Grocery store",
			wantBank: "wise",
		},
		{
			name:     "description keyword",
			source:   "statement.csv",
			desc:     "NayaPay incoming fund transfer from Ali",
			wantBank: "nayapay",
		},
		{
			name:     "case insensitive",
			source:   "TRANSFERWISE-export.csv",
			desc:     "",
			wantBank: "wise",
		},
		{
			name:     "no keyword",
			source:   "bank.csv",
			desc:     "Coffee shop",
			wantBank: BankUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testRecord(t, tt.source, "2026-03-01", "-10", "USD", tt.desc)
			assert.Equal(t, tt.wantBank, inferBank(cfg, rec))
		})
	}
}

func TestAnnotateConversion_MetadataField(t *testing.T) {
	cfg := DefaultConfig()
	rec := testRecord(t, "wise.csv", "2026-03-01", "-108.99", "USD", "Sent money to Ammar Qazi")
	rec.Metadata = map[string]string{
		"Exchange To Amount":   "30,000",
		"Exchange To Currency": "PKR",
	}

	AnnotateRecords(cfg, []*TransactionRecord{rec})

	require.NotNil(t, rec.ConversionAmount)
	assert.True(t, rec.ConversionAmount.Equal(decimal.NewFromInt(30000)))
	assert.Equal(t, "PKR", rec.ConversionCurrency)
}

func TestAnnotateConversion_NamedVariant(t *testing.T) {
	cfg := DefaultConfig()
	rec := testRecord(t, "bank.csv", "2026-03-01", "-50", "USD", "some payment")
	rec.Metadata = map[string]string{"converted_amount": "47.50"}

	AnnotateRecords(cfg, []*TransactionRecord{rec})

	require.NotNil(t, rec.ConversionAmount)
	assert.True(t, rec.ConversionAmount.Equal(decimal.RequireFromString("47.5")))
}

func TestAnnotateConversion_DescriptionFallback(t *testing.T) {
	cfg := DefaultConfig()
	rec := testRecord(t, "wise.csv", "2026-03-01", "-22.83", "USD",
		"Converted 22.83 USD to 20.00 EUR")

	AnnotateRecords(cfg, []*TransactionRecord{rec})

	require.NotNil(t, rec.ParsedConversion)
	assert.Equal(t, "USD", rec.ParsedConversion.FromCurrency)
	assert.Equal(t, "EUR", rec.ParsedConversion.ToCurrency)
	assert.True(t, rec.ParsedConversion.FromAmount.Equal(decimal.RequireFromString("22.83")))
	assert.True(t, rec.ParsedConversion.ToAmount.Equal(decimal.RequireFromString("20.00")))

	require.NotNil(t, rec.ConversionAmount)
	assert.True(t, rec.ConversionAmount.Equal(decimal.RequireFromString("20.00")))
	assert.Equal(t, "EUR", rec.ConversionCurrency)
}

func TestParseConversionText(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want *ConversionDetails
	}{
		{
			name: "plain form",
			desc: "Converted 22.83 USD to 20.00 EUR",
			want: &ConversionDetails{
				FromCurrency: "USD", ToCurrency: "EUR",
				FromAmount: decimal.RequireFromString("22.83"),
				ToAmount:   decimal.RequireFromString("20.00"),
			},
		},
		{
			name: "with balance insert",
			desc: "Converted 22.83 USD from USD balance to 20.00 EUR",
			want: &ConversionDetails{
				FromCurrency: "USD", ToCurrency: "EUR",
				FromAmount: decimal.RequireFromString("22.83"),
				ToAmount:   decimal.RequireFromString("20.00"),
			},
		},
		{
			name: "thousands separators",
			desc: "converted 1,250.00 usd to 345,000 pkr",
			want: &ConversionDetails{
				FromCurrency: "USD", ToCurrency: "PKR",
				FromAmount: decimal.RequireFromString("1250.00"),
				ToAmount:   decimal.RequireFromString("345000"),
			},
		},
		{
			name: "not a conversion",
			desc: "Grocery store purchase",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseConversionText(tt.desc)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(got), "got %+v", got)
		})
	}
}
