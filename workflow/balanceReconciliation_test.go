package workflow

import (
	"testing"

	"github.com/itehadironstore/steelbooks_backend/models"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPlanBalanceCorrectionClampsBalanceAboveTotal(t *testing.T) {
	// Never-paid invoice with a small overshoot: clamp straight to the total.
	plan := PlanBalanceCorrection(dec("100"), dec("100.50"), dec("0"), dec("0"))
	if plan == nil {
		t.Fatal("expected a correction")
	}
	if !plan.NewBalance.Equal(dec("100")) {
		t.Fatalf("new balance = %s, want 100", plan.NewBalance)
	}
	if plan.IssueTag != models.BalanceIssueBalanceExceedsTotal {
		t.Fatalf("issue tag = %q, want BALANCE_EXCEEDS_TOTAL", plan.IssueTag)
	}
}

func TestPlanBalanceCorrectionClampRequiresNoPayments(t *testing.T) {
	// With payments the overshoot falls through to the derived-value repair,
	// still tagged for the balance-above-total anomaly.
	plan := PlanBalanceCorrection(dec("100"), dec("100.50"), dec("10"), dec("0"))
	if plan == nil {
		t.Fatal("expected a correction")
	}
	if !plan.NewBalance.Equal(dec("90")) {
		t.Fatalf("new balance = %s, want 90", plan.NewBalance)
	}
	if plan.IssueTag != models.BalanceIssueBalanceExceedsTotal {
		t.Fatalf("issue tag = %q, want BALANCE_EXCEEDS_TOTAL", plan.IssueTag)
	}
}

func TestPlanBalanceCorrectionLargeOvershoot(t *testing.T) {
	// Overshoot of a whole unit or more takes the derived-value repair
	// instead of the clamp, but the anomaly classification stays the same.
	cases := []struct {
		total, balance string
	}{
		{"100", "101"},
		{"500", "520"},
	}
	for _, tc := range cases {
		plan := PlanBalanceCorrection(dec(tc.total), dec(tc.balance), dec("0"), dec("0"))
		if plan == nil {
			t.Fatalf("total=%s balance=%s: expected a correction", tc.total, tc.balance)
		}
		if !plan.NewBalance.Equal(dec(tc.total)) {
			t.Fatalf("total=%s balance=%s: new balance = %s, want %s", tc.total, tc.balance, plan.NewBalance, tc.total)
		}
		if plan.IssueTag != models.BalanceIssueBalanceExceedsTotal {
			t.Fatalf("total=%s balance=%s: issue tag = %q, want BALANCE_EXCEEDS_TOTAL", tc.total, tc.balance, plan.IssueTag)
		}
	}
}

func TestPlanBalanceCorrectionDrift(t *testing.T) {
	plan := PlanBalanceCorrection(dec("100"), dec("90"), dec("0"), dec("0"))
	if plan == nil {
		t.Fatal("expected a correction")
	}
	if !plan.NewBalance.Equal(dec("100")) {
		t.Fatalf("new balance = %s, want 100", plan.NewBalance)
	}
}

func TestPlanBalanceCorrectionWithinThresholdIsNoop(t *testing.T) {
	if plan := PlanBalanceCorrection(dec("100"), dec("100"), dec("0"), dec("0")); plan != nil {
		t.Fatalf("consistent row must not be corrected, got %+v", plan)
	}
	// Drift of exactly the threshold stays untouched.
	if plan := PlanBalanceCorrection(dec("100"), dec("99.98"), dec("0"), dec("0")); plan != nil {
		t.Fatalf("drift at threshold must not be corrected, got %+v", plan)
	}
}

func TestPlanBalanceCorrectionNegativeBalanceUnpaid(t *testing.T) {
	plan := PlanBalanceCorrection(dec("100"), dec("-5"), dec("0"), dec("0"))
	if plan == nil {
		t.Fatal("expected a correction")
	}
	if !plan.NewBalance.Equal(dec("100")) {
		t.Fatalf("new balance = %s, want 100", plan.NewBalance)
	}
	if plan.IssueTag != models.BalanceIssueNegativeBalanceUnpaid {
		t.Fatalf("issue tag = %q, want NEGATIVE_BALANCE_UNPAID", plan.IssueTag)
	}
}

func TestPlanBalanceCorrectionAccountsForReturns(t *testing.T) {
	// total 100, paid 40, returned 30: derived remaining is 30.
	plan := PlanBalanceCorrection(dec("100"), dec("60"), dec("40"), dec("30"))
	if plan == nil {
		t.Fatal("expected a correction")
	}
	if !plan.NewBalance.Equal(dec("30")) {
		t.Fatalf("new balance = %s, want 30", plan.NewBalance)
	}
}

// A second pass over an already-corrected row must plan nothing.
func TestPlanBalanceCorrectionIdempotent(t *testing.T) {
	rows := []struct {
		total, balance, paid, returns string
	}{
		{"100", "100.50", "0", "0"},
		{"100", "-5", "0", "0"},
		{"100", "60", "40", "30"},
		{"250.75", "250.75", "0", "0"},
	}
	for _, row := range rows {
		plan := PlanBalanceCorrection(dec(row.total), dec(row.balance), dec(row.paid), dec(row.returns))
		if plan == nil {
			continue
		}
		again := PlanBalanceCorrection(dec(row.total), plan.NewBalance, dec(row.paid), dec(row.returns))
		if again != nil {
			t.Errorf("row %+v: second pass planned %+v, want nil", row, again)
		}
	}
}
