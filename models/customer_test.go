package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewInvoiceAdjustmentEntry(t *testing.T) {
	// Shrinking an invoice credits the customer with the signed delta.
	entry := newInvoiceAdjustmentEntry(7, dec("-150.50"), 42, "INV-000042: removed Angle Iron 2in")
	if entry == nil {
		t.Fatal("expected an entry for a non-zero delta")
	}
	if entry.EntryType != LedgerEntryTypeInvoiceAdjust {
		t.Fatalf("entry type = %q, want Invoice Adjustment", entry.EntryType)
	}
	if !entry.Amount.Equal(dec("-150.50")) {
		t.Fatalf("amount = %s, want -150.50", entry.Amount)
	}
	if entry.CustomerId != 7 || entry.ReferenceId != 42 {
		t.Fatalf("customer/reference = %d/%d, want 7/42", entry.CustomerId, entry.ReferenceId)
	}

	// Growing an invoice charges the delta.
	entry = newInvoiceAdjustmentEntry(7, dec("25"), 42, "INV-000042: Flat Bar edited")
	if entry == nil || !entry.Amount.Equal(dec("25")) {
		t.Fatalf("positive delta entry = %+v, want amount 25", entry)
	}

	// An edit that leaves the total unchanged writes nothing.
	if entry := newInvoiceAdjustmentEntry(7, decimal.Zero, 42, "no-op"); entry != nil {
		t.Fatalf("zero delta must produce no entry, got %+v", entry)
	}
}
