package models

import (
	"context"
	"time"

	"github.com/itehadironstore/steelbooks_backend/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BalanceAudit is the append-only trail written by the balance
// reconciliation pass. Rows are never updated or pruned by this service.
type BalanceAudit struct {
	ID            int             `gorm:"primary_key" json:"id"`
	InvoiceId     int             `gorm:"index;not null" json:"invoice_id"`
	OldBalance    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"old_balance"`
	NewBalance    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"new_balance"`
	GrandTotal    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"grand_total"`
	PaymentAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"payment_amount"`
	IssueTag      BalanceIssueTag `gorm:"size:100;default:''" json:"issue_tag"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func AppendBalanceAudit(tx *gorm.DB, audit *BalanceAudit) error {
	return tx.Create(audit).Error
}

func ListBalanceAudits(ctx context.Context, invoiceId int) ([]BalanceAudit, error) {
	db := config.GetDB()
	var audits []BalanceAudit
	query := db.WithContext(ctx).Order("id")
	if invoiceId > 0 {
		query = query.Where("invoice_id = ?", invoiceId)
	}
	if err := query.Find(&audits).Error; err != nil {
		return nil, err
	}
	return audits, nil
}
