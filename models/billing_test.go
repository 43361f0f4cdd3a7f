package models

import (
	"errors"
	"math"
	"testing"

	"github.com/itehadironstore/steelbooks_backend/utils"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRound2(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"10.555", "10.56"},
		{"10.554", "10.55"},
		{"-10.555", "-10.56"}, // half away from zero, not banker's
		{"0.005", "0.01"},
		{"100", "100"},
	}
	for _, tc := range cases {
		got := Round2(dec(tc.in))
		if !got.Equal(dec(tc.want)) {
			t.Errorf("Round2(%s) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestSafeDecimal(t *testing.T) {
	if !SafeDecimal(math.NaN()).IsZero() {
		t.Error("NaN must coerce to zero")
	}
	if !SafeDecimal(math.Inf(1)).IsZero() {
		t.Error("+Inf must coerce to zero")
	}
	if !SafeDecimal(math.Inf(-1)).IsZero() {
		t.Error("-Inf must coerce to zero")
	}
	if got := SafeDecimal(12.5); !got.Equal(dec("12.5")) {
		t.Errorf("SafeDecimal(12.5) = %s", got)
	}
}

func TestItemTotal(t *testing.T) {
	cases := []struct {
		name string
		item InvoiceItem
		want string
	}{
		{
			name: "plain piece line",
			item: InvoiceItem{Unit: ProductUnitPiece, Quantity: dec("3"), UnitPrice: dec("250")},
			want: "750",
		},
		{
			name: "kg line with fractional quantity",
			item: InvoiceItem{Unit: ProductUnitKg, Quantity: dec("12.99"), UnitPrice: dec("1200")},
			want: "15588",
		},
		{
			name: "gram line divides rate by thousand",
			item: InvoiceItem{Unit: ProductUnitGram, Quantity: dec("2500"), UnitPrice: dec("1200")},
			want: "3000",
		},
		{
			name: "t-iron pieces x length x rate per foot",
			item: InvoiceItem{
				Unit:                ProductUnitFoot,
				TIronPieces:         12,
				TIronLengthPerPiece: dec("10"),
				UnitPrice:           dec("150"),
			},
			want: "18000",
		},
		{
			name: "line total rounds",
			item: InvoiceItem{Unit: ProductUnitPiece, Quantity: dec("0.333"), UnitPrice: dec("10")},
			want: "3.33",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ItemTotal(&tc.item)
			if !got.Equal(dec(tc.want)) {
				t.Fatalf("ItemTotal = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestComputeInvoiceTotals(t *testing.T) {
	items := []InvoiceItem{
		{Unit: ProductUnitPiece, Quantity: dec("2"), UnitPrice: dec("500")},
		{Unit: ProductUnitKg, Quantity: dec("3.5"), UnitPrice: dec("400")},
	}

	totals := ComputeInvoiceTotals(items, dec("10"))
	if !totals.Subtotal.Equal(dec("2400")) {
		t.Fatalf("subtotal = %s, want 2400", totals.Subtotal)
	}
	if !totals.DiscountAmount.Equal(dec("240")) {
		t.Fatalf("discount = %s, want 240", totals.DiscountAmount)
	}
	if !totals.GrandTotal.Equal(dec("2160")) {
		t.Fatalf("grand total = %s, want 2160", totals.GrandTotal)
	}
}

func TestComputeInvoiceTotalsClampsDiscount(t *testing.T) {
	items := []InvoiceItem{{Unit: ProductUnitPiece, Quantity: dec("1"), UnitPrice: dec("100")}}

	if got := ComputeInvoiceTotals(items, dec("-5")); !got.GrandTotal.Equal(dec("100")) {
		t.Errorf("negative discount: grand total = %s, want 100", got.GrandTotal)
	}
	if got := ComputeInvoiceTotals(items, dec("150")); !got.GrandTotal.IsZero() {
		t.Errorf("discount above 100: grand total = %s, want 0", got.GrandTotal)
	}
}

func TestComputeInvoiceTotalsEmpty(t *testing.T) {
	totals := ComputeInvoiceTotals(nil, decimal.Zero)
	if !totals.Subtotal.IsZero() || !totals.GrandTotal.IsZero() {
		t.Fatalf("empty invoice totals = %+v, want all zero", totals)
	}
}

func TestRemainingBalanceAmount(t *testing.T) {
	cases := []struct {
		total, paid, returns, want string
	}{
		{"100", "0", "0", "100"},
		{"100", "40", "0", "60"},
		{"100", "40", "30", "30"},
		{"100", "100.01", "0", "0"}, // overpay within epsilon clamps to zero
		{"100", "0", "120", "0"},    // returns exceeding total clamp to zero
	}
	for _, tc := range cases {
		got := RemainingBalanceAmount(dec(tc.total), dec(tc.paid), dec(tc.returns))
		if !got.Equal(dec(tc.want)) {
			t.Errorf("RemainingBalanceAmount(%s, %s, %s) = %s, want %s",
				tc.total, tc.paid, tc.returns, got, tc.want)
		}
	}
}

func TestValidatePaymentAmount(t *testing.T) {
	remaining := dec("100")

	cases := []struct {
		name    string
		amount  string
		wantErr error
	}{
		{"zero rejected", "0", utils.ErrorInvalidAmount},
		{"negative rejected", "-5", utils.ErrorInvalidAmount},
		{"partial accepted", "40", nil},
		{"exact accepted", "100", nil},
		{"epsilon overshoot accepted", "100.01", nil},
		{"above epsilon rejected", "100.02", utils.ErrorExceedsBalance},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePaymentAmount(dec(tc.amount), remaining)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("ValidatePaymentAmount(%s) = %v, want %v", tc.amount, err, tc.wantErr)
			}
		})
	}
}

// Payment amounts enter as raw floats; a NaN or Inf must coerce to zero
// and then fail amount validation rather than reach the stored decimals.
func TestPaymentAmountFloatCoercion(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		amount := Round2(SafeDecimal(f))
		if !amount.IsZero() {
			t.Fatalf("SafeDecimal(%v) = %s, want 0", f, amount)
		}
		if err := ValidatePaymentAmount(amount, dec("100")); !errors.Is(err, utils.ErrorInvalidAmount) {
			t.Fatalf("coerced amount from %v: err = %v, want ErrorInvalidAmount", f, err)
		}
	}
}

func TestIsReturnEligible(t *testing.T) {
	cases := []struct {
		name      string
		total     string
		remaining string
		want      bool
	}{
		{"fully unpaid", "100", "100", true},
		{"fully paid", "100", "0", true},
		{"paid within epsilon", "100", "0.01", true},
		{"unpaid within epsilon", "100", "99.99", true},
		{"partially paid", "100", "50", false},
		{"just over paid epsilon", "100", "0.02", false},
		{"zero total", "0", "0", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := IsReturnEligible(dec(tc.total), dec(tc.remaining))
			if got != tc.want {
				t.Fatalf("IsReturnEligible(%s, %s) = %v, want %v", tc.total, tc.remaining, got, tc.want)
			}
		})
	}
}

// An unpaid invoice must stay return-eligible after an earlier return, since
// eligibility compares the return-adjusted figures.
func TestReturnEligibilityAfterPriorReturn(t *testing.T) {
	adj := ComputeReturnAdjustment(dec("100"), dec("0"), dec("30"))
	if !adj.AdjustedGrandTotal.Equal(dec("70")) {
		t.Fatalf("adjusted total = %s, want 70", adj.AdjustedGrandTotal)
	}
	if !adj.AdjustedRemainingBalance.Equal(dec("70")) {
		t.Fatalf("adjusted remaining = %s, want 70", adj.AdjustedRemainingBalance)
	}
	if !IsReturnEligible(adj.AdjustedGrandTotal, adj.AdjustedRemainingBalance) {
		t.Fatal("unpaid invoice with one prior return must stay eligible")
	}
}

func TestComputeReturnAdjustmentClampsRemaining(t *testing.T) {
	// Fully paid, then everything returned: remaining clamps at zero.
	adj := ComputeReturnAdjustment(dec("100"), dec("100"), dec("100"))
	if !adj.AdjustedRemainingBalance.IsZero() {
		t.Fatalf("adjusted remaining = %s, want 0", adj.AdjustedRemainingBalance)
	}
}

func TestReturnableQuantity(t *testing.T) {
	if got := ReturnableQuantity(dec("10"), dec("4")); !got.Equal(dec("6")) {
		t.Errorf("ReturnableQuantity(10, 4) = %s, want 6", got)
	}
	if got := ReturnableQuantity(dec("10"), dec("12")); !got.IsZero() {
		t.Errorf("over-returned line must report zero, got %s", got)
	}
}

func TestInvoiceStatusFor(t *testing.T) {
	cases := []struct {
		total, remaining string
		want             InvoiceStatus
	}{
		{"100", "100", InvoiceStatusUnpaid},
		{"100", "99.99", InvoiceStatusUnpaid},
		{"100", "50", InvoiceStatusPartialPaid},
		{"100", "0.01", InvoiceStatusPaid},
		{"100", "0", InvoiceStatusPaid},
		{"0", "0", InvoiceStatusPaid},
	}
	for _, tc := range cases {
		got := InvoiceStatusFor(dec(tc.total), dec(tc.remaining))
		if got != tc.want {
			t.Errorf("InvoiceStatusFor(%s, %s) = %s, want %s", tc.total, tc.remaining, got, tc.want)
		}
	}
}
