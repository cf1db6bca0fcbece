package money_test

import (
	"testing"

	"github.com/mesafacil/backoffice-api/internal/domain/money"
	"github.com/mesafacil/backoffice-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		qty       string
		unitPrice string
		discount  money.Discount
		taxRate   string
		wantBase  string
		wantTax   string
		wantTotal string
	}{
		{
			name: "percent discount with tax",
			qty:  "2", unitPrice: "18.50",
			discount: money.PercentDiscount(d("10")),
			taxRate:  "19",
			wantBase: "33.30", wantTax: "6.33", wantTotal: "39.63",
		},
		{
			name: "no discount no tax",
			qty:  "3", unitPrice: "10",
			discount: money.NoDiscount(),
			taxRate:  "0",
			wantBase: "30", wantTax: "0", wantTotal: "30",
		},
		{
			name: "amount discount",
			qty:  "1", unitPrice: "100",
			discount: money.AmountDiscount(d("15.50")),
			taxRate:  "19",
			wantBase: "84.50", wantTax: "16.06", wantTotal: "100.56",
		},
		{
			name: "discount larger than gross clamps base to zero",
			qty:  "1", unitPrice: "10",
			discount: money.AmountDiscount(d("25")),
			taxRate:  "19",
			wantBase: "0", wantTax: "0", wantTotal: "0",
		},
		{
			name: "fractional quantity",
			qty:  "0.5", unitPrice: "7.99",
			discount: money.NoDiscount(),
			taxRate:  "19",
			wantBase: "4.00", wantTax: "0.76", wantTotal: "4.76",
		},
		{
			name: "half cent rounds up",
			qty:  "1", unitPrice: "0.05",
			discount: money.PercentDiscount(d("50")),
			taxRate:  "0",
			wantBase: "0.03", wantTax: "0", wantTotal: "0.03",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := money.ComputeLine(d(tt.qty), d(tt.unitPrice), tt.discount, d(tt.taxRate))
			require.NoError(t, err)
			require.True(t, got.LineBase.Equal(d(tt.wantBase)), "base = %s, want %s", got.LineBase, tt.wantBase)
			require.True(t, got.LineTax.Equal(d(tt.wantTax)), "tax = %s, want %s", got.LineTax, tt.wantTax)
			require.True(t, got.LineTotal.Equal(d(tt.wantTotal)), "total = %s, want %s", got.LineTotal, tt.wantTotal)

			// total must equal base + tax exactly
			require.True(t, got.LineTotal.Equal(got.LineBase.Add(got.LineTax)))

			// recomputing with identical inputs yields identical outputs
			again, err := money.ComputeLine(d(tt.qty), d(tt.unitPrice), tt.discount, d(tt.taxRate))
			require.NoError(t, err)
			require.True(t, got.LineBase.Equal(again.LineBase))
			require.True(t, got.LineTax.Equal(again.LineTax))
			require.True(t, got.LineTotal.Equal(again.LineTotal))
		})
	}
}

func TestComputeLineValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		qty       string
		unitPrice string
		discount  money.Discount
		taxRate   string
	}{
		{"zero quantity", "0", "10", money.NoDiscount(), "19"},
		{"negative quantity", "-1", "10", money.NoDiscount(), "19"},
		{"negative unit price", "1", "-0.01", money.NoDiscount(), "19"},
		{"tax rate above 100", "1", "10", money.NoDiscount(), "101"},
		{"negative tax rate", "1", "10", money.NoDiscount(), "-1"},
		{"negative discount amount", "1", "10", money.AmountDiscount(d("-5")), "19"},
		{"discount percent above 100", "1", "10", money.PercentDiscount(d("110")), "19"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := money.ComputeLine(d(tt.qty), d(tt.unitPrice), tt.discount, d(tt.taxRate))
			require.Error(t, err)
			require.True(t, apperror.IsKind(err, apperror.KindValidation))
		})
	}
}

func TestComputeInvoiceTotals(t *testing.T) {
	t.Parallel()

	l1, err := money.ComputeLine(d("2"), d("18.50"), money.PercentDiscount(d("10")), d("19"))
	require.NoError(t, err)
	l2, err := money.ComputeLine(d("1"), d("5.00"), money.NoDiscount(), d("5"))
	require.NoError(t, err)

	totals := money.ComputeInvoiceTotals([]money.LineAmounts{l1, l2}, decimal.Zero)
	require.True(t, totals.Subtotal.Equal(d("38.30")))
	require.True(t, totals.TaxTotal.Equal(d("6.58")))
	require.True(t, totals.Total.Equal(d("44.88")))

	// rounding adjustment is applied to the final total only
	adjusted := money.ComputeInvoiceTotals([]money.LineAmounts{l1, l2}, d("-0.88"))
	require.True(t, adjusted.Subtotal.Equal(totals.Subtotal))
	require.True(t, adjusted.Total.Equal(d("44.00")))

	empty := money.ComputeInvoiceTotals(nil, decimal.Zero)
	require.True(t, empty.Total.IsZero())
}
