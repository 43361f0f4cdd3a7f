package models

import (
	"context"
	"errors"
	"time"

	"github.com/itehadironstore/steelbooks_backend/config"
	"github.com/itehadironstore/steelbooks_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Customer struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name" binding:"required"`
	Phone     string    `gorm:"size:100;default:null" json:"phone"`
	Address   string    `gorm:"size:255;default:null" json:"address"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCustomer struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// CustomerLedgerEntry is the append-only customer ledger. Charges are
// positive amounts, credits negative. Entries are never edited or deleted;
// corrections append a new entry.
type CustomerLedgerEntry struct {
	ID          int             `gorm:"primary_key" json:"id"`
	CustomerId  int             `gorm:"index;not null" json:"customer_id"`
	EntryType   LedgerEntryType `gorm:"size:50;not null" json:"entry_type"`
	ReferenceId int             `gorm:"index;default:0" json:"reference_id"`
	Description string          `gorm:"size:255;default:null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	EntryDate   time.Time       `gorm:"not null" json:"entry_date"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {
	db := config.GetDB()
	customer := Customer{
		Name:    input.Name,
		Phone:   input.Phone,
		Address: input.Address,
	}
	if err := db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func GetCustomer(ctx context.Context, id int) (*Customer, error) {
	db := config.GetDB()
	var customer Customer
	if err := db.WithContext(ctx).First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &customer, nil
}

func GetCustomerLedger(ctx context.Context, customerId int, fromDate, toDate *time.Time) ([]CustomerLedgerEntry, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Where("customer_id = ?", customerId)
	if fromDate != nil {
		query = query.Where("entry_date >= ?", fromDate)
	}
	if toDate != nil {
		query = query.Where("entry_date <= ?", toDate)
	}
	var entries []CustomerLedgerEntry
	if err := query.Order("entry_date, id").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// appendLedgerEntry writes one ledger row inside the caller's transaction so
// the ledger moves atomically with the document that caused it.
func appendLedgerEntry(tx *gorm.DB, entry *CustomerLedgerEntry) error {
	if entry.CustomerId <= 0 {
		return nil // walk-in sale, no ledger to keep
	}
	if entry.EntryDate.IsZero() {
		entry.EntryDate = time.Now().UTC()
	}
	return tx.Create(entry).Error
}

// ApplyCustomerCredit credits the customer ledger, e.g. for a return
// settled against the ledger.
func ApplyCustomerCredit(tx *gorm.DB, customerId int, amount decimal.Decimal, referenceId int, description string) error {
	return appendLedgerEntry(tx, &CustomerLedgerEntry{
		CustomerId:  customerId,
		EntryType:   LedgerEntryTypeReturnCredit,
		ReferenceId: referenceId,
		Description: description,
		Amount:      amount.Neg(),
	})
}

// RecordCashRefund records a cash refund paid out to the customer. Cash
// refund entries are informational; balance computations skip them because
// the money left the drawer, not the ledger.
func RecordCashRefund(tx *gorm.DB, customerId int, amount decimal.Decimal, referenceId int, description string) error {
	return appendLedgerEntry(tx, &CustomerLedgerEntry{
		CustomerId:  customerId,
		EntryType:   LedgerEntryTypeCashRefund,
		ReferenceId: referenceId,
		Description: description,
		Amount:      amount,
	})
}

// newInvoiceAdjustmentEntry builds the compensating ledger entry for an
// invoice whose grand total moved after an item edit or delete. The delta
// is signed: negative when the total went down. Nil when the total did not
// move.
func newInvoiceAdjustmentEntry(customerId int, delta decimal.Decimal, invoiceId int, description string) *CustomerLedgerEntry {
	if delta.IsZero() {
		return nil
	}
	return &CustomerLedgerEntry{
		CustomerId:  customerId,
		EntryType:   LedgerEntryTypeInvoiceAdjust,
		ReferenceId: invoiceId,
		Description: description,
		Amount:      delta,
	}
}

// RecordInvoiceAdjustment keeps the customer ledger aligned with an invoice
// whose grand total changed, so the original Invoice charge plus its
// adjustments always sum to the stored total.
func RecordInvoiceAdjustment(tx *gorm.DB, customerId int, delta decimal.Decimal, invoiceId int, description string) error {
	entry := newInvoiceAdjustmentEntry(customerId, delta, invoiceId, description)
	if entry == nil {
		return nil
	}
	return appendLedgerEntry(tx, entry)
}

// RetractMiscCharge reverses the ledger effect of a deleted misc line item.
func RetractMiscCharge(tx *gorm.DB, customerId int, amount decimal.Decimal, referenceId int, description string) error {
	return appendLedgerEntry(tx, &CustomerLedgerEntry{
		CustomerId:  customerId,
		EntryType:   LedgerEntryTypeMiscRetraction,
		ReferenceId: referenceId,
		Description: description,
		Amount:      amount.Neg(),
	})
}
