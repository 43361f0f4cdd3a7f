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

type Product struct {
	ID        int             `gorm:"primary_key" json:"id"`
	Name      string          `gorm:"size:255;not null;uniqueIndex" json:"name" binding:"required"`
	Unit      ProductUnit     `gorm:"type:enum('piece','kg','gram','foot','bag');not null;default:piece" json:"unit"`
	SalePrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sale_price"`
	StockQty  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"stock_qty"`
	IsTIron   bool            `gorm:"default:false" json:"is_t_iron"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Name      string          `json:"name" binding:"required"`
	Unit      ProductUnit     `json:"unit"`
	SalePrice decimal.Decimal `json:"sale_price"`
	StockQty  decimal.Decimal `json:"stock_qty"`
	IsTIron   bool            `json:"is_t_iron"`
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	db := config.GetDB()

	if input.Unit == "" {
		input.Unit = ProductUnitPiece
	}
	product := Product{
		Name:      input.Name,
		Unit:      input.Unit,
		SalePrice: input.SalePrice,
		StockQty:  input.StockQty,
		IsTIron:   input.IsTIron,
	}
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	_ = config.RemoveRedisKey(productListCacheKey)
	return &product, nil
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	db := config.GetDB()
	var product Product
	if err := db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &product, nil
}

const productListCacheKey = "products:all"

// ListProducts serves the catalog from redis when available; the cache is
// best-effort and falls through to the database.
func ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if hit, err := config.GetRedisObject(productListCacheKey, &products); err == nil && hit {
		return products, nil
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Order("name").Find(&products).Error; err != nil {
		return nil, err
	}
	_ = config.SetRedisObject(productListCacheKey, products, 5*time.Minute)
	return products, nil
}

// adjustProductStock applies a signed stock delta inside the caller's
// transaction. Sales pass a negative delta, returns a positive one.
// Misc items never reach here; they have no product row.
func adjustProductStock(tx *gorm.DB, productId int, delta decimal.Decimal) error {
	if productId <= 0 || delta.IsZero() {
		return nil
	}
	if err := tx.Model(&Product{}).
		Where("id = ?", productId).
		Update("stock_qty", gorm.Expr("stock_qty + ?", delta)).Error; err != nil {
		return err
	}
	// Cached catalog carries stock figures; drop it eagerly rather than
	// waiting out the TTL.
	_ = config.RemoveRedisKey(productListCacheKey)
	return nil
}
