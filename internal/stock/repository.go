package stock

import (
	"context"

	"github.com/talkincode/orderstock/internal/domain"
	"gorm.io/gorm"
)

// ProductRepository handles database operations for catalog products
type ProductRepository interface {
	// GetByID retrieves a product by primary key
	GetByID(ctx context.Context, id int64) (*domain.Product, error)

	// List retrieves products ordered by id with offset/limit pagination
	List(ctx context.Context, offset, limit int) ([]domain.Product, int64, error)

	// ListLowStock retrieves all products with stock at or below threshold
	ListLowStock(ctx context.Context, threshold int64) ([]domain.Product, error)
}

// OrderRepository handles database operations for orders and their items
type OrderRepository interface {
	// GetByID retrieves an order header by primary key
	GetByID(ctx context.Context, id int64) (*domain.Order, error)

	// GetItems retrieves the items of an order in insertion order
	GetItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error)

	// List retrieves orders ordered by id with offset/limit pagination
	List(ctx context.Context, offset, limit int) ([]domain.Order, int64, error)
}

// GormProductRepository is the GORM implementation of ProductRepository
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GORM-based product repository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormProductRepository) List(ctx context.Context, offset, limit int) ([]domain.Product, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []domain.Product
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	return rows, total, err
}

func (r *GormProductRepository) ListLowStock(ctx context.Context, threshold int64) ([]domain.Product, error) {
	var rows []domain.Product
	err := r.db.WithContext(ctx).
		Where("stock_qty <= ?", threshold).
		Order("stock_qty ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

// GormOrderRepository is the GORM implementation of OrderRepository
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GORM-based order repository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).First(&o, id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormOrderRepository) GetItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	var items []domain.OrderItem
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *GormOrderRepository) List(ctx context.Context, offset, limit int) ([]domain.Order, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []domain.Order
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	return rows, total, err
}
