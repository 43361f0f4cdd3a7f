package models

import (
	"math"

	"github.com/itehadironstore/steelbooks_backend/utils"
	"github.com/shopspring/decimal"
)

// balanceEpsilon absorbs floating-point rounding carried over from the
// desktop clients: a payment may overshoot the remaining balance by up to
// one cent and an invoice counts as fully paid within one cent.
var balanceEpsilon = decimal.New(1, -2) // 0.01

// Round2 rounds half away from zero at 2 decimal places. Rounding is applied
// after each accumulation step, not only once at the end, so repeated
// partial recomputations of the same invoice converge on the stored values.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// SafeDecimal converts a float taken at the API edge into a decimal,
// coercing NaN and Infinity to zero. Malformed persisted data must never
// propagate NaN into a total; it renders and stores as 0 instead.
func SafeDecimal(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

type InvoiceTotals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
}

// ComputeInvoiceTotals derives subtotal, discount amount and grand total
// from the invoice lines. discountPercent outside [0,100] is clamped.
func ComputeInvoiceTotals(items []InvoiceItem, discountPercent decimal.Decimal) InvoiceTotals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = Round2(subtotal.Add(ItemTotal(&item)))
	}

	if discountPercent.IsNegative() {
		discountPercent = decimal.Zero
	}
	if discountPercent.GreaterThan(decimal.NewFromInt(100)) {
		discountPercent = decimal.NewFromInt(100)
	}
	discountAmount := Round2(subtotal.Mul(discountPercent).Div(decimal.NewFromInt(100)))
	grandTotal := Round2(subtotal.Sub(discountAmount))

	return InvoiceTotals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		GrandTotal:     grandTotal,
	}
}

// ItemTotal computes a single line total.
//
//   - T-Iron lines: pieces x length-per-piece x price-per-foot.
//   - Gram-priced lines: quantity is in grams, unit rate per kg.
//   - Everything else: quantity x unit rate.
func ItemTotal(item *InvoiceItem) decimal.Decimal {
	if item.TIronPieces > 0 && item.TIronLengthPerPiece.IsPositive() {
		return Round2(decimal.NewFromInt(int64(item.TIronPieces)).
			Mul(item.TIronLengthPerPiece).
			Mul(item.UnitPrice))
	}
	if item.Unit == ProductUnitGram {
		return Round2(item.Quantity.Mul(item.UnitPrice).Div(decimal.NewFromInt(1000)))
	}
	return Round2(item.Quantity.Mul(item.UnitPrice))
}

// RemainingBalanceAmount derives the outstanding balance. Never negative.
func RemainingBalanceAmount(grandTotal, paymentsTotal, returnsTotal decimal.Decimal) decimal.Decimal {
	remaining := Round2(grandTotal.Sub(paymentsTotal).Sub(returnsTotal))
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

type ReturnAdjustment struct {
	ReturnsTotal             decimal.Decimal `json:"returns_total"`
	AdjustedGrandTotal       decimal.Decimal `json:"adjusted_grand_total"`
	AdjustedRemainingBalance decimal.Decimal `json:"adjusted_remaining_balance"`
}

// ComputeReturnAdjustment derives the return-adjusted figures on read. The
// stored grand total is immutable history; returns only reduce what is
// owed.
func ComputeReturnAdjustment(grandTotal, paymentsTotal, returnsTotal decimal.Decimal) ReturnAdjustment {
	adjustedTotal := Round2(grandTotal.Sub(returnsTotal))
	adjustedRemaining := Round2(adjustedTotal.Sub(paymentsTotal))
	if adjustedRemaining.IsNegative() {
		adjustedRemaining = decimal.Zero
	}
	return ReturnAdjustment{
		ReturnsTotal:             returnsTotal,
		AdjustedGrandTotal:       adjustedTotal,
		AdjustedRemainingBalance: adjustedRemaining,
	}
}

// IsReturnEligible implements the business rule that only fully paid or
// fully unpaid invoices accept returns; partially paid invoices reject all
// returns. Comparison uses the return-adjusted figures so an unpaid invoice
// stays eligible after earlier returns.
func IsReturnEligible(adjustedGrandTotal, adjustedRemaining decimal.Decimal) bool {
	fullyPaid := adjustedRemaining.LessThanOrEqual(balanceEpsilon)
	fullyUnpaid := adjustedRemaining.Sub(adjustedGrandTotal).Abs().LessThanOrEqual(balanceEpsilon)
	return fullyPaid || fullyUnpaid
}

// ValidatePaymentAmount rejects non-positive amounts and amounts above the
// remaining balance plus epsilon. An amount exactly at remaining + 0.01 is
// accepted.
func ValidatePaymentAmount(amount, remainingBalance decimal.Decimal) error {
	if !amount.IsPositive() {
		return utils.ErrorInvalidAmount
	}
	if amount.GreaterThan(remainingBalance.Add(balanceEpsilon)) {
		return utils.ErrorExceedsBalance
	}
	return nil
}

// ReturnableQuantity is the original line quantity minus everything already
// returned against that line. Zero for misc items; they never accept
// returns.
func ReturnableQuantity(quantity, previouslyReturned decimal.Decimal) decimal.Decimal {
	returnable := quantity.Sub(previouslyReturned)
	if returnable.IsNegative() {
		return decimal.Zero
	}
	return returnable
}

// InvoiceStatusFor maps balances onto the stored invoice status.
func InvoiceStatusFor(grandTotal, remainingBalance decimal.Decimal) InvoiceStatus {
	if remainingBalance.LessThanOrEqual(balanceEpsilon) {
		return InvoiceStatusPaid
	}
	if remainingBalance.Sub(grandTotal).Abs().LessThanOrEqual(balanceEpsilon) {
		return InvoiceStatusUnpaid
	}
	return InvoiceStatusPartialPaid
}
