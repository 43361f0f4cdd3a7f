package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/itehadironstore/steelbooks_backend/config"
	"github.com/itehadironstore/steelbooks_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Invoice struct {
	ID                    int              `gorm:"primary_key" json:"id"`
	InvoiceNumber         string           `gorm:"size:255;not null;uniqueIndex" json:"invoice_number"`
	CustomerId            int              `gorm:"index;default:0" json:"customer_id"`
	InvoiceDate           time.Time        `gorm:"not null" json:"invoice_date"`
	DiscountPercent       decimal.Decimal  `gorm:"type:decimal(5,2);default:0" json:"discount_percent"`
	InvoiceSubtotal       decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"invoice_subtotal"`
	InvoiceDiscountAmount decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"invoice_discount_amount"`
	InvoiceTotalAmount    decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"invoice_total_amount"`
	InvoiceTotalPaidAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"invoice_total_paid_amount"`
	RemainingBalance      decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"remaining_balance"`
	CurrentStatus         InvoiceStatus    `gorm:"type:enum('Unpaid','Partial Paid','Paid');not null;default:Unpaid" json:"current_status"`
	Notes                 string           `gorm:"type:text;default:null" json:"notes"`
	Items                 []InvoiceItem    `gorm:"foreignKey:InvoiceId" json:"items"`
	Payments              []InvoicePayment `gorm:"foreignKey:InvoiceId" json:"payments"`
	CreatedAt             time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type InvoiceItem struct {
	ID                  int             `gorm:"primary_key" json:"id"`
	InvoiceId           int             `gorm:"index;not null" json:"invoice_id"`
	ProductId           int             `gorm:"index;default:0" json:"product_id"`
	Name                string          `gorm:"size:255;not null" json:"name"`
	Unit                ProductUnit     `gorm:"type:enum('piece','kg','gram','foot','bag');not null;default:piece" json:"unit"`
	Quantity            decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	UnitPrice           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	TotalPrice          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_price"`
	IsMiscItem          bool            `gorm:"default:false" json:"is_misc_item"`
	TIronPieces         int             `gorm:"default:0" json:"t_iron_pieces"`
	TIronLengthPerPiece decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"t_iron_length_per_piece"`
	TIronTotalLength    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"t_iron_total_length"`
	CreatedAt           time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewInvoice struct {
	CustomerId      int              `json:"customer_id"`
	InvoiceNumber   string           `json:"invoice_number"`
	InvoiceDate     time.Time        `json:"invoice_date" binding:"required"`
	DiscountPercent decimal.Decimal  `json:"discount_percent"`
	Notes           string           `json:"notes"`
	Items           []NewInvoiceItem `json:"items" binding:"required,min=1,dive"`
}

type NewInvoiceItem struct {
	ProductId int    `json:"product_id"`
	Name      string `json:"name"`
	// Quantity accepts plain decimals and the compound kg-grams form
	// ("12-990"). Ignored for T-Iron lines.
	Quantity            string          `json:"quantity"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	IsMiscItem          bool            `json:"is_misc_item"`
	TIronPieces         int             `json:"t_iron_pieces"`
	TIronLengthPerPiece decimal.Decimal `json:"t_iron_length_per_piece"`
}

func (input *NewInvoice) validate(ctx context.Context) error {
	if input.CustomerId > 0 {
		if _, err := GetCustomer(ctx, input.CustomerId); err != nil {
			return errors.New("customer not found")
		}
	}
	if input.DiscountPercent.IsNegative() || input.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
		return errors.New("discount percent must be between 0 and 100")
	}
	return nil
}

// buildInvoiceItem resolves one input line into a persisted line: quantity
// parsing, product lookup for non-misc lines, and the line total.
func buildInvoiceItem(ctx context.Context, input NewInvoiceItem) (*InvoiceItem, *Product, error) {
	item := InvoiceItem{
		ProductId:  input.ProductId,
		Name:       input.Name,
		UnitPrice:  input.UnitPrice,
		IsMiscItem: input.IsMiscItem,
	}

	var product *Product
	if !input.IsMiscItem && input.ProductId > 0 {
		var err error
		product, err = GetProduct(ctx, input.ProductId)
		if err != nil {
			return nil, nil, fmt.Errorf("product %d not found", input.ProductId)
		}
		item.Unit = product.Unit
		if item.Name == "" {
			item.Name = product.Name
		}
		if item.UnitPrice.IsZero() {
			item.UnitPrice = product.SalePrice
		}
	} else if item.Unit == "" {
		item.Unit = ProductUnitPiece
	}

	if input.TIronPieces > 0 {
		if !input.TIronLengthPerPiece.IsPositive() {
			return nil, nil, errors.New("t-iron length per piece must be positive")
		}
		item.TIronPieces = input.TIronPieces
		item.TIronLengthPerPiece = input.TIronLengthPerPiece
		item.TIronTotalLength = decimal.NewFromInt(int64(input.TIronPieces)).Mul(input.TIronLengthPerPiece)
		item.Quantity = item.TIronTotalLength
		item.Unit = ProductUnitFoot
	} else {
		qty, err := utils.ParseQuantity(input.Quantity)
		if err != nil {
			return nil, nil, err
		}
		item.Quantity = qty
	}

	item.TotalPrice = ItemTotal(&item)
	return &item, product, nil
}

func CreateInvoice(ctx context.Context, input *NewInvoice) (*Invoice, error) {
	db := config.GetDB()

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	var items []InvoiceItem
	type stockMove struct {
		productId int
		delta     decimal.Decimal
	}
	var stockMoves []stockMove
	for _, line := range input.Items {
		item, product, err := buildInvoiceItem(ctx, line)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
		if product != nil {
			stockMoves = append(stockMoves, stockMove{productId: product.ID, delta: item.Quantity.Neg()})
		}
	}

	totals := ComputeInvoiceTotals(items, input.DiscountPercent)

	invoiceNumber := input.InvoiceNumber
	if invoiceNumber == "" {
		invoiceNumber = nextInvoiceNumber(db)
	}

	invoice := Invoice{
		InvoiceNumber:         invoiceNumber,
		CustomerId:            input.CustomerId,
		InvoiceDate:           input.InvoiceDate,
		DiscountPercent:       input.DiscountPercent,
		InvoiceSubtotal:       totals.Subtotal,
		InvoiceDiscountAmount: totals.DiscountAmount,
		InvoiceTotalAmount:    totals.GrandTotal,
		RemainingBalance:      totals.GrandTotal,
		CurrentStatus:         InvoiceStatusUnpaid,
		Notes:                 input.Notes,
		Items:                 items,
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}
		for _, move := range stockMoves {
			if err := adjustProductStock(tx, move.productId, move.delta); err != nil {
				return err
			}
		}
		return appendLedgerEntry(tx, &CustomerLedgerEntry{
			CustomerId:  invoice.CustomerId,
			EntryType:   LedgerEntryTypeInvoice,
			ReferenceId: invoice.ID,
			Description: invoice.InvoiceNumber,
			Amount:      invoice.InvoiceTotalAmount,
			EntryDate:   invoice.InvoiceDate,
		})
	})
	if err != nil {
		var mysqlErr *mysqlDriver.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return nil, fmt.Errorf("invoice number %s already exists", invoiceNumber)
		}
		return nil, err
	}
	return &invoice, nil
}

func nextInvoiceNumber(db *gorm.DB) string {
	var maxId int
	db.Model(&Invoice{}).Select("COALESCE(MAX(id), 0)").Scan(&maxId)
	return fmt.Sprintf("INV-%06d", maxId+1)
}

func GetInvoice(ctx context.Context, id int) (*Invoice, error) {
	db := config.GetDB()
	var invoice Invoice
	if err := db.WithContext(ctx).Preload("Items").Preload("Payments").First(&invoice, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// InvoiceView is the read model handed to the UI: stored invoice state plus
// the return-adjusted figures, computed on read so the original invoice
// stays immutable history.
type InvoiceView struct {
	Invoice    `json:"invoice"`
	Returns    []InvoiceReturn   `json:"returns"`
	Adjustment *ReturnAdjustment `json:"adjustment,omitempty"`
}

func GetInvoiceView(ctx context.Context, id int) (*InvoiceView, error) {
	invoice, err := GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	returns, err := ListReturnsForInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	view := InvoiceView{Invoice: *invoice, Returns: returns}
	if len(returns) > 0 {
		returnsTotal := returnsTotalOf(returns)
		adj := ComputeReturnAdjustment(invoice.InvoiceTotalAmount, invoice.InvoiceTotalPaidAmount, returnsTotal)
		view.Adjustment = &adj
	}
	return &view, nil
}

type UpdateInvoiceItemInput struct {
	Quantity  string          `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// UpdateInvoiceItem edits quantity and price on one line. Allowed only
// until the invoice is fully paid. Stock, totals, remaining balance and
// status move together in one transaction.
func UpdateInvoiceItem(ctx context.Context, invoiceId, itemId int, input *UpdateInvoiceItemInput) (*Invoice, error) {
	db := config.GetDB()

	invoice, err := GetInvoice(ctx, invoiceId)
	if err != nil {
		return nil, err
	}
	if invoice.CurrentStatus == InvoiceStatusPaid {
		return nil, errors.New("fully paid invoices cannot be edited")
	}

	var target *InvoiceItem
	for i := range invoice.Items {
		if invoice.Items[i].ID == itemId {
			target = &invoice.Items[i]
			break
		}
	}
	if target == nil {
		return nil, utils.ErrorRecordNotFound
	}

	oldQty := target.Quantity
	oldTotal := invoice.InvoiceTotalAmount
	if input.Quantity != "" {
		qty, err := utils.ParseQuantity(input.Quantity)
		if err != nil {
			return nil, err
		}
		target.Quantity = qty
	}
	if input.UnitPrice.IsPositive() {
		target.UnitPrice = input.UnitPrice
	}
	target.TotalPrice = ItemTotal(target)

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&InvoiceItem{}).Where("id = ?", target.ID).
			Updates(map[string]interface{}{
				"quantity":    target.Quantity,
				"unit_price":  target.UnitPrice,
				"total_price": target.TotalPrice,
			}).Error; err != nil {
			return err
		}
		if !target.IsMiscItem && target.ProductId > 0 {
			// Sold delta: selling more lowers stock further.
			if err := adjustProductStock(tx, target.ProductId, oldQty.Sub(target.Quantity)); err != nil {
				return err
			}
		}
		if err := recomputeInvoiceFinancials(tx, invoice); err != nil {
			return err
		}
		return RecordInvoiceAdjustment(tx, invoice.CustomerId,
			invoice.InvoiceTotalAmount.Sub(oldTotal), invoice.ID,
			fmt.Sprintf("%s: %s edited", invoice.InvoiceNumber, target.Name))
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// DeleteInvoiceItem removes one line. Misc items retract their ledger
// charge; product items restock. Allowed only until the invoice is fully
// paid.
func DeleteInvoiceItem(ctx context.Context, invoiceId, itemId int) (*Invoice, error) {
	db := config.GetDB()

	invoice, err := GetInvoice(ctx, invoiceId)
	if err != nil {
		return nil, err
	}
	if invoice.CurrentStatus == InvoiceStatusPaid {
		return nil, errors.New("fully paid invoices cannot be edited")
	}

	var target *InvoiceItem
	remaining := invoice.Items[:0:0]
	for i := range invoice.Items {
		if invoice.Items[i].ID == itemId {
			target = &invoice.Items[i]
		} else {
			remaining = append(remaining, invoice.Items[i])
		}
	}
	if target == nil {
		return nil, utils.ErrorRecordNotFound
	}

	deleted := *target
	oldTotal := invoice.InvoiceTotalAmount
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&InvoiceItem{}, deleted.ID).Error; err != nil {
			return err
		}
		if deleted.IsMiscItem {
			if err := RetractMiscCharge(tx, invoice.CustomerId, deleted.TotalPrice, invoice.ID,
				fmt.Sprintf("%s: removed %s", invoice.InvoiceNumber, deleted.Name)); err != nil {
				return err
			}
		} else if deleted.ProductId > 0 {
			if err := adjustProductStock(tx, deleted.ProductId, deleted.Quantity); err != nil {
				return err
			}
		}
		invoice.Items = remaining
		if err := recomputeInvoiceFinancials(tx, invoice); err != nil {
			return err
		}
		if deleted.IsMiscItem {
			// The misc retraction above already compensated the ledger.
			return nil
		}
		return RecordInvoiceAdjustment(tx, invoice.CustomerId,
			invoice.InvoiceTotalAmount.Sub(oldTotal), invoice.ID,
			fmt.Sprintf("%s: removed %s", invoice.InvoiceNumber, deleted.Name))
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// recomputeInvoiceFinancials rewrites the derived money fields from current
// lines, payments and returns. Both totals and remaining balance are
// written in the same statement; one is never persisted without the other.
func recomputeInvoiceFinancials(tx *gorm.DB, invoice *Invoice) error {
	totals := ComputeInvoiceTotals(invoice.Items, invoice.DiscountPercent)

	returnsTotal, err := returnsTotalForInvoice(tx, invoice.ID)
	if err != nil {
		return err
	}
	remaining := RemainingBalanceAmount(totals.GrandTotal, invoice.InvoiceTotalPaidAmount, returnsTotal)
	status := InvoiceStatusFor(totals.GrandTotal, remaining)

	invoice.InvoiceSubtotal = totals.Subtotal
	invoice.InvoiceDiscountAmount = totals.DiscountAmount
	invoice.InvoiceTotalAmount = totals.GrandTotal
	invoice.RemainingBalance = remaining
	invoice.CurrentStatus = status

	return tx.Model(&Invoice{}).Where("id = ?", invoice.ID).
		Updates(map[string]interface{}{
			"invoice_subtotal":        totals.Subtotal,
			"invoice_discount_amount": totals.DiscountAmount,
			"invoice_total_amount":    totals.GrandTotal,
			"remaining_balance":       remaining,
			"current_status":          status,
		}).Error
}
