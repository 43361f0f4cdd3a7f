package models

type InvoiceStatus string

const (
	InvoiceStatusUnpaid      InvoiceStatus = "Unpaid"
	InvoiceStatusPartialPaid InvoiceStatus = "Partial Paid"
	InvoiceStatusPaid        InvoiceStatus = "Paid"
)

type ProductUnit string

const (
	ProductUnitPiece ProductUnit = "piece"
	ProductUnitKg    ProductUnit = "kg"
	ProductUnitGram  ProductUnit = "gram"
	ProductUnitFoot  ProductUnit = "foot"
	ProductUnitBag   ProductUnit = "bag"
)

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodBank   PaymentMethod = "bank"
	PaymentMethodCheque PaymentMethod = "cheque"
	PaymentMethodCard   PaymentMethod = "card"
)

type SettlementType string

const (
	SettlementTypeLedger SettlementType = "ledger"
	SettlementTypeCash   SettlementType = "cash"
)

// BalanceIssueTag classifies the anomaly that a reconciliation correction
// repaired. Empty tag means plain drift between stored and derived balance.
type BalanceIssueTag string

const (
	BalanceIssueNone                  BalanceIssueTag = ""
	BalanceIssueBalanceExceedsTotal   BalanceIssueTag = "BALANCE_EXCEEDS_TOTAL"
	BalanceIssueNegativeBalanceUnpaid BalanceIssueTag = "NEGATIVE_BALANCE_UNPAID"
)

type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleWorker UserRole = "worker"
)

type LedgerEntryType string

const (
	LedgerEntryTypeInvoice        LedgerEntryType = "Invoice"
	LedgerEntryTypePayment        LedgerEntryType = "Payment"
	LedgerEntryTypeReturnCredit   LedgerEntryType = "Return Credit"
	LedgerEntryTypeCashRefund     LedgerEntryType = "Cash Refund"
	LedgerEntryTypeMiscRetraction LedgerEntryType = "Misc Retraction"
	LedgerEntryTypeInvoiceAdjust  LedgerEntryType = "Invoice Adjustment"
)
