package shop

import (
	"context"
	"strings"
	"time"

	"github.com/gravitlabs/storefront/internal/domain"
	"github.com/gravitlabs/storefront/pkg/common"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ProductQuery narrows and pages product listings.
type ProductQuery struct {
	Search   string
	Category string
	Page     int
	PageSize int
	Sort     string
	Order    string
}

// ProductRepository handles catalog persistence.
type ProductRepository interface {
	List(ctx context.Context, q ProductQuery) ([]domain.Product, int64, error)
	All(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id int64) error
}

// SaleRepository reads the append-only sales log. Writes happen only
// through SaleService.Sell.
type SaleRepository interface {
	All(ctx context.Context) ([]domain.Sale, error)
	List(ctx context.Context, page, pageSize int) ([]domain.Sale, int64, error)
}

// ReviewRepository handles customer reviews.
type ReviewRepository interface {
	List(ctx context.Context, page, pageSize int) ([]domain.Review, int64, error)
	Create(ctx context.Context, r *domain.Review) error
	Delete(ctx context.Context, id int64) error
}

// sort columns the product listing accepts, keyed by request name.
var productSortColumns = map[string]string{
	"id":         "id",
	"name":       "name",
	"quantity":   "quantity",
	"sold_count": "sold_count",
	"created_at": "created_at",
}

// GormProductRepository is the GORM implementation of ProductRepository.
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) List(ctx context.Context, q ProductQuery) ([]domain.Product, int64, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 || q.PageSize > 500 {
		q.PageSize = 20
	}
	sortCol, ok := productSortColumns[q.Sort]
	if !ok {
		sortCol = "created_at"
	}
	order := strings.ToUpper(q.Order)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	db := r.db.WithContext(ctx).Model(&domain.Product{})
	if s := strings.TrimSpace(q.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(category) LIKE ? OR LOWER(color) LIKE ?", like, like, like)
	}
	if q.Category != "" {
		db = db.Where("category = ?", q.Category)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count products")
	}
	var rows []domain.Product
	err := db.Order(sortCol + " " + order).
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list products")
	}
	return rows, total, nil
}

func (r *GormProductRepository) All(ctx context.Context) ([]domain.Product, error) {
	var rows []domain.Product
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "load products")
	}
	return rows, nil
}

func (r *GormProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormProductRepository) Create(ctx context.Context, p *domain.Product) error {
	if p.ID == 0 {
		p.ID = common.UUIDint64()
	}
	if len(p.Images) > domain.MaxProductImages {
		p.Images = p.Images[:domain.MaxProductImages]
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	return errors.Wrap(r.db.WithContext(ctx).Create(p).Error, "create product")
}

func (r *GormProductRepository) Update(ctx context.Context, p *domain.Product) error {
	if len(p.Images) > domain.MaxProductImages {
		p.Images = p.Images[:domain.MaxProductImages]
	}
	p.UpdatedAt = time.Now()
	return errors.Wrap(r.db.WithContext(ctx).Save(p).Error, "update product")
}

func (r *GormProductRepository) Delete(ctx context.Context, id int64) error {
	// hard delete, sales keep their denormalized copy
	return errors.Wrap(r.db.WithContext(ctx).Delete(&domain.Product{}, id).Error, "delete product")
}

// GormSaleRepository is the GORM implementation of SaleRepository.
type GormSaleRepository struct {
	db *gorm.DB
}

func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

func (r *GormSaleRepository) All(ctx context.Context) ([]domain.Sale, error) {
	var rows []domain.Sale
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "load sales")
	}
	return rows, nil
}

func (r *GormSaleRepository) List(ctx context.Context, page, pageSize int) ([]domain.Sale, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 500 {
		pageSize = 20
	}
	db := r.db.WithContext(ctx).Model(&domain.Sale{})
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count sales")
	}
	var rows []domain.Sale
	err := db.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list sales")
	}
	return rows, total, nil
}

// GormReviewRepository is the GORM implementation of ReviewRepository.
type GormReviewRepository struct {
	db *gorm.DB
}

func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

func (r *GormReviewRepository) List(ctx context.Context, page, pageSize int) ([]domain.Review, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 500 {
		pageSize = 20
	}
	db := r.db.WithContext(ctx).Model(&domain.Review{})
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count reviews")
	}
	var rows []domain.Review
	err := db.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list reviews")
	}
	return rows, total, nil
}

func (r *GormReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	if review.ID == 0 {
		review.ID = common.UUIDint64()
	}
	review.CreatedAt = time.Now()
	return errors.Wrap(r.db.WithContext(ctx).Create(review).Error, "create review")
}

func (r *GormReviewRepository) Delete(ctx context.Context, id int64) error {
	return errors.Wrap(r.db.WithContext(ctx).Delete(&domain.Review{}, id).Error, "delete review")
}
