package models

import (
	"log"

	"github.com/itehadironstore/steelbooks_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Customer{}, &CustomerLedgerEntry{},
		&Product{},
		&Invoice{}, &InvoiceItem{}, &InvoicePayment{},
		&InvoiceReturn{}, &InvoiceReturnItem{},
		&BalanceAudit{},
		&User{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
