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

// InvoicePayment rows are append-only; their sum defines the invoice's
// paid total.
type InvoicePayment struct {
	ID              int             `gorm:"primary_key" json:"id"`
	InvoiceId       int             `gorm:"index;not null" json:"invoice_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	Method          PaymentMethod   `gorm:"type:enum('cash','bank','cheque','card');not null;default:cash" json:"method"`
	Channel         string          `gorm:"size:100;default:null" json:"channel"`
	PaymentDate     time.Time       `gorm:"not null" json:"payment_date"`
	ReferenceNumber string          `gorm:"size:255;default:null" json:"reference_number"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewInvoicePayment struct {
	// Amount arrives as a raw JSON number from the desktop UI; it is
	// coerced through SafeDecimal so a bad float can never reach the
	// stored decimals.
	Amount          float64       `json:"amount"`
	Method          PaymentMethod `json:"method"`
	Channel         string        `json:"channel"`
	PaymentDate     time.Time     `json:"payment_date"`
	ReferenceNumber string        `json:"reference_number"`
}

// RecordPayment validates and applies one payment. Paid total, remaining
// balance and status are written in the same transaction as the payment
// row; there is no partial update.
func RecordPayment(ctx context.Context, invoiceId int, input *NewInvoicePayment) (*Invoice, error) {
	db := config.GetDB()

	if input.Method == "" {
		input.Method = PaymentMethodCash
	}
	if input.PaymentDate.IsZero() {
		input.PaymentDate = time.Now().UTC()
	}
	amount := Round2(SafeDecimal(input.Amount))

	var invoice Invoice
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&invoice, invoiceId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrorRecordNotFound
			}
			return err
		}

		if err := ValidatePaymentAmount(amount, invoice.RemainingBalance); err != nil {
			return err
		}

		payment := InvoicePayment{
			InvoiceId:       invoice.ID,
			Amount:          amount,
			Method:          input.Method,
			Channel:         input.Channel,
			PaymentDate:     input.PaymentDate,
			ReferenceNumber: input.ReferenceNumber,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		returnsTotal, err := returnsTotalForInvoice(tx, invoice.ID)
		if err != nil {
			return err
		}
		paidTotal := Round2(invoice.InvoiceTotalPaidAmount.Add(amount))
		remaining := RemainingBalanceAmount(invoice.InvoiceTotalAmount, paidTotal, returnsTotal)
		status := InvoiceStatusFor(invoice.InvoiceTotalAmount, remaining)

		invoice.InvoiceTotalPaidAmount = paidTotal
		invoice.RemainingBalance = remaining
		invoice.CurrentStatus = status

		if err := tx.Model(&Invoice{}).Where("id = ?", invoice.ID).
			Updates(map[string]interface{}{
				"invoice_total_paid_amount": paidTotal,
				"remaining_balance":         remaining,
				"current_status":            status,
			}).Error; err != nil {
			return err
		}

		return appendLedgerEntry(tx, &CustomerLedgerEntry{
			CustomerId:  invoice.CustomerId,
			EntryType:   LedgerEntryTypePayment,
			ReferenceId: payment.ID,
			Description: invoice.InvoiceNumber,
			Amount:      amount.Neg(),
			EntryDate:   input.PaymentDate,
		})
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// GetInvoicePayments lists the payments applied to an invoice, oldest
// first.
func GetInvoicePayments(ctx context.Context, invoiceId int) ([]InvoicePayment, error) {
	db := config.GetDB()
	var payments []InvoicePayment
	if err := db.WithContext(ctx).
		Where("invoice_id = ?", invoiceId).
		Order("payment_date, id").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}
