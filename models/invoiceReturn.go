package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/itehadironstore/steelbooks_backend/config"
	"github.com/itehadironstore/steelbooks_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceReturn and its items are immutable after creation; there is no
// edit or undo. Financial effect on the invoice is computed on read, the
// stored grand total never changes.
type InvoiceReturn struct {
	ID             int                 `gorm:"primary_key" json:"id"`
	InvoiceId      int                 `gorm:"index;not null" json:"invoice_id"`
	SettlementType SettlementType      `gorm:"type:enum('ledger','cash');not null" json:"settlement_type"`
	Reason         string              `gorm:"size:255;not null" json:"reason"`
	ReturnDate     time.Time           `gorm:"not null" json:"return_date"`
	TotalAmount    decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	Items          []InvoiceReturnItem `gorm:"foreignKey:InvoiceReturnId" json:"items"`
	CreatedAt      time.Time           `gorm:"autoCreateTime" json:"created_at"`
}

type InvoiceReturnItem struct {
	ID              int             `gorm:"primary_key" json:"id"`
	InvoiceReturnId int             `gorm:"index;not null" json:"invoice_return_id"`
	InvoiceItemId   int             `gorm:"index;not null" json:"invoice_item_id"`
	Quantity        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	// UnitPrice is copied from the original line at return time so later
	// price edits cannot change settled returns.
	UnitPrice  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_price"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewInvoiceReturn struct {
	Reason         string                 `json:"reason"`
	SettlementType SettlementType         `json:"settlement_type" binding:"required,settlementtype"`
	ReturnDate     time.Time              `json:"return_date"`
	Items          []NewInvoiceReturnItem `json:"items" binding:"required,min=1,dive"`
}

type NewInvoiceReturnItem struct {
	InvoiceItemId int `json:"invoice_item_id" binding:"required"`
	// Quantity accepts plain decimals and the compound kg-grams form.
	Quantity string `json:"quantity" binding:"required"`
}

// CreateReturn validates and persists one return with its items, settles it
// against the customer ledger or as a cash refund, and restocks returned
// product quantities. The original invoice lines and grand total are not
// mutated.
func CreateReturn(ctx context.Context, invoiceId int, input *NewInvoiceReturn) (*InvoiceReturn, error) {
	db := config.GetDB()

	if strings.TrimSpace(input.Reason) == "" {
		return nil, utils.ErrorMissingReason
	}
	if input.SettlementType != SettlementTypeLedger && input.SettlementType != SettlementTypeCash {
		return nil, errors.New("settlement type must be ledger or cash")
	}
	if input.ReturnDate.IsZero() {
		input.ReturnDate = time.Now().UTC()
	}

	var ret InvoiceReturn
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice Invoice
		if err := tx.Preload("Items").First(&invoice, invoiceId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrorRecordNotFound
			}
			return err
		}

		priorReturnsTotal, err := returnsTotalForInvoice(tx, invoice.ID)
		if err != nil {
			return err
		}
		adj := ComputeReturnAdjustment(invoice.InvoiceTotalAmount, invoice.InvoiceTotalPaidAmount, priorReturnsTotal)
		if !IsReturnEligible(adj.AdjustedGrandTotal, adj.AdjustedRemainingBalance) {
			return utils.ErrorIneligible
		}

		returnedByItem, err := returnedQuantityByItem(tx, invoice.ID)
		if err != nil {
			return err
		}

		lineById := make(map[int]*InvoiceItem, len(invoice.Items))
		for i := range invoice.Items {
			lineById[invoice.Items[i].ID] = &invoice.Items[i]
		}

		returnTotal := decimal.Zero
		var returnItems []InvoiceReturnItem
		type restock struct {
			productId int
			qty       decimal.Decimal
		}
		var restocks []restock
		for _, line := range input.Items {
			original, ok := lineById[line.InvoiceItemId]
			if !ok {
				return fmt.Errorf("invoice item %d not found on invoice %s", line.InvoiceItemId, invoice.InvoiceNumber)
			}
			if original.IsMiscItem {
				return utils.ErrorNotReturnable
			}
			qty, err := utils.ParseQuantity(line.Quantity)
			if err != nil {
				return err
			}
			returnable := ReturnableQuantity(original.Quantity, returnedByItem[original.ID])
			if qty.GreaterThan(returnable) {
				return utils.ErrorExceedsReturnable
			}

			lineTotal := returnLineTotal(original, qty)
			returnItems = append(returnItems, InvoiceReturnItem{
				InvoiceItemId: original.ID,
				Quantity:      qty,
				UnitPrice:     original.UnitPrice,
				TotalPrice:    lineTotal,
			})
			returnTotal = Round2(returnTotal.Add(lineTotal))
			if original.ProductId > 0 {
				restocks = append(restocks, restock{productId: original.ProductId, qty: qty})
			}
		}

		ret = InvoiceReturn{
			InvoiceId:      invoice.ID,
			SettlementType: input.SettlementType,
			Reason:         strings.TrimSpace(input.Reason),
			ReturnDate:     input.ReturnDate,
			TotalAmount:    returnTotal,
			Items:          returnItems,
		}
		if err := tx.Create(&ret).Error; err != nil {
			return err
		}

		for _, r := range restocks {
			if err := adjustProductStock(tx, r.productId, r.qty); err != nil {
				return err
			}
		}

		description := fmt.Sprintf("return against %s: %s", invoice.InvoiceNumber, ret.Reason)
		switch input.SettlementType {
		case SettlementTypeLedger:
			if err := ApplyCustomerCredit(tx, invoice.CustomerId, returnTotal, ret.ID, description); err != nil {
				return err
			}
		case SettlementTypeCash:
			if err := RecordCashRefund(tx, invoice.CustomerId, returnTotal, ret.ID, description); err != nil {
				return err
			}
		}

		// Keep the stored remaining balance consistent with its derived
		// definition (grand total - payments - returns); grand total stays
		// untouched.
		remaining := RemainingBalanceAmount(invoice.InvoiceTotalAmount, invoice.InvoiceTotalPaidAmount,
			Round2(priorReturnsTotal.Add(returnTotal)))
		adjustedTotal := Round2(invoice.InvoiceTotalAmount.Sub(priorReturnsTotal).Sub(returnTotal))
		status := InvoiceStatusFor(adjustedTotal, remaining)
		return tx.Model(&Invoice{}).Where("id = ?", invoice.ID).
			Updates(map[string]interface{}{
				"remaining_balance": remaining,
				"current_status":    status,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &ret, nil
}

// returnLineTotal prices a returned quantity at the original line's unit
// rate, with the same gram-to-kg conversion the sale used.
func returnLineTotal(line *InvoiceItem, qty decimal.Decimal) decimal.Decimal {
	if line.Unit == ProductUnitGram {
		return Round2(qty.Mul(line.UnitPrice).Div(decimal.NewFromInt(1000)))
	}
	return Round2(qty.Mul(line.UnitPrice))
}

func ListReturnsForInvoice(ctx context.Context, invoiceId int) ([]InvoiceReturn, error) {
	db := config.GetDB()
	var returns []InvoiceReturn
	if err := db.WithContext(ctx).Preload("Items").
		Where("invoice_id = ?", invoiceId).
		Order("return_date, id").
		Find(&returns).Error; err != nil {
		return nil, err
	}
	return returns, nil
}

func returnsTotalOf(returns []InvoiceReturn) decimal.Decimal {
	total := decimal.Zero
	for _, r := range returns {
		total = Round2(total.Add(r.TotalAmount))
	}
	return total
}

// ReturnsTotalForInvoice sums all settled return items for the invoice.
// Maintenance passes use this against their own *gorm.DB.
func ReturnsTotalForInvoice(tx *gorm.DB, invoiceId int) (decimal.Decimal, error) {
	return returnsTotalForInvoice(tx, invoiceId)
}

// returnsTotalForInvoice sums all settled return items for the invoice
// inside the caller's transaction.
func returnsTotalForInvoice(tx *gorm.DB, invoiceId int) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := tx.Model(&InvoiceReturnItem{}).
		Joins("JOIN invoice_returns ON invoice_returns.id = invoice_return_items.invoice_return_id").
		Where("invoice_returns.invoice_id = ?", invoiceId).
		Select("SUM(invoice_return_items.total_price)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return Round2(total.Decimal), nil
}

// returnedQuantityByItem maps original line id to the quantity already
// returned across all prior returns.
func returnedQuantityByItem(tx *gorm.DB, invoiceId int) (map[int]decimal.Decimal, error) {
	var rows []struct {
		InvoiceItemId int
		Qty           decimal.Decimal
	}
	err := tx.Model(&InvoiceReturnItem{}).
		Joins("JOIN invoice_returns ON invoice_returns.id = invoice_return_items.invoice_return_id").
		Where("invoice_returns.invoice_id = ?", invoiceId).
		Select("invoice_return_items.invoice_item_id AS invoice_item_id, SUM(invoice_return_items.quantity) AS qty").
		Group("invoice_return_items.invoice_item_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	returned := make(map[int]decimal.Decimal, len(rows))
	for _, row := range rows {
		returned[row.InvoiceItemId] = row.Qty
	}
	return returned, nil
}
