package shop

import (
	"context"
	"errors"
	"time"

	"github.com/gravitlabs/storefront/internal/domain"
	"github.com/gravitlabs/storefront/internal/store"
	"github.com/gravitlabs/storefront/pkg/common"
	"github.com/gravitlabs/storefront/pkg/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrInvalidQuantity rejects non-positive sale quantities.
	ErrInvalidQuantity = errors.New("sale quantity must be positive")

	// ErrInsufficientStock rejects a sale larger than current stock.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrProductNotFound marks a sale against an unknown product.
	ErrProductNotFound = errors.New("product not found")
)

// SaleService owns the sale transaction: the stock decrement, the
// sold-count increment and the sale-log append succeed or fail as one
// database transaction, so stock can never be drawn below zero even
// under concurrent sales.
type SaleService struct {
	db       *gorm.DB
	notifier store.Notifier
}

func NewSaleService(db *gorm.DB, notifier store.Notifier) *SaleService {
	return &SaleService{db: db, notifier: notifier}
}

// Sell records a sale of qty units of a product at the given unit
// price. The quantity is validated before any write; the decrement is
// conditional on remaining stock inside the transaction, so two
// concurrent sales cannot jointly overdraw the product.
func (s *SaleService) Sell(ctx context.Context, productID int64, qty int, price float64) (*domain.Sale, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	var p domain.Product
	if err := s.db.WithContext(ctx).First(&p, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if qty > p.Quantity {
		// synchronous rejection before any write; the conditional
		// update below re-checks against live stock
		return nil, ErrInsufficientStock
	}

	now := time.Now()
	sale := &domain.Sale{
		ID:          common.UUIDint64(),
		ProductId:   p.ID,
		ProductName: p.Name,
		Category:    p.Category,
		Quantity:    qty,
		Price:       price,
		CreatedAt:   now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Product{}).
			Where("id = ? AND quantity >= ?", p.ID, qty).
			Updates(map[string]interface{}{
				"quantity":   gorm.Expr("quantity - ?", qty),
				"sold_count": gorm.Expr("sold_count + ?", qty),
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// stock moved under us since the precheck
			return ErrInsufficientStock
		}
		return tx.Create(sale).Error
	})
	if err != nil {
		zap.L().Error("sale transaction failed",
			zap.Int64("product_id", p.ID),
			zap.Int("quantity", qty),
			zap.Error(err))
		return nil, err
	}

	zap.L().Info("sale recorded",
		zap.Int64("product_id", p.ID),
		zap.String("product_name", p.Name),
		zap.Int("quantity", qty))

	metrics.Record(metrics.MetricSalesCount, 1)
	metrics.Record(metrics.MetricSalesUnits, float64(qty))

	if s.notifier != nil {
		s.notifier.Notify(store.CollectionProducts)
		s.notifier.Notify(store.CollectionSales)
	}
	return sale, nil
}
