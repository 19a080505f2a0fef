package stock

import (
	"context"
	"errors"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/talkincode/orderstock/internal/domain"
	"github.com/talkincode/orderstock/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Event topics published after a successfully committed order mutation
const (
	TopicOrderCreated = "order.created"
	TopicOrderUpdated = "order.updated"
	TopicOrderDeleted = "order.deleted"
)

// OrderLine is one requested line of an order mutation
type OrderLine struct {
	ProductID int64 `json:"product_id,string" validate:"required,gt=0"`
	Quantity  int64 `json:"quantity" validate:"required,gt=0"`
}

// ProductInput carries the writable fields of a product
type ProductInput struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description string  `json:"description" validate:"omitempty,max=500"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	StockQty    int64   `json:"stock_qty" validate:"gte=0"`
}

// OrderDetail is an order header together with its items
type OrderDetail struct {
	domain.Order
	Items []domain.OrderItem `json:"items"`
}

// Service is the stock reconciliation engine. Every mutation runs inside
// a single database transaction: stock deltas, the order header and the
// item snapshots commit together or not at all. The store's isolation is
// the only concurrency control, the service holds no locks of its own.
type Service struct {
	db       *gorm.DB
	bus      EventBus.Bus
	products ProductRepository
	orders   OrderRepository
}

// NewService creates the reconciliation engine over db. bus may be nil
// when no subscriber cares about order events.
func NewService(db *gorm.DB, bus EventBus.Bus) *Service {
	return &Service{
		db:       db,
		bus:      bus,
		products: NewGormProductRepository(db),
		orders:   NewGormOrderRepository(db),
	}
}

// Products exposes the read repository for handlers and reports
func (s *Service) Products() ProductRepository { return s.products }

// Orders exposes the read repository for handlers and reports
func (s *Service) Orders() OrderRepository { return s.orders }

func (s *Service) publish(topic string, orderID int64) {
	if s.bus != nil {
		s.bus.Publish(topic, orderID)
	}
}

// runTx is the single scoped-transaction wrapper: commit on success,
// roll back and surface a typed error on any failure.
func (s *Service) runTx(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	err := s.db.WithContext(ctx).Transaction(fn)
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	zap.L().Error("stock transaction failed",
		zap.String("op", op),
		zap.Error(err))
	return ErrInternal(op, err)
}

// validateLines rejects empty line lists, non-positive quantities and
// duplicate product references before any state is touched.
func validateLines(lines []OrderLine) error {
	if len(lines) == 0 {
		return ErrValidation("EMPTY_ORDER", "order must contain at least one item")
	}
	seen := make(map[int64]struct{}, len(lines))
	for _, line := range lines {
		if line.ProductID <= 0 {
			return ErrValidation("INVALID_PRODUCT_ID", "invalid product id %d", line.ProductID)
		}
		if line.Quantity <= 0 {
			return ErrValidation("INVALID_QUANTITY", "quantity must be positive for product %d", line.ProductID)
		}
		if _, dup := seen[line.ProductID]; dup {
			return ErrValidation("DUPLICATE_PRODUCT", "product %d appears more than once", line.ProductID)
		}
		seen[line.ProductID] = struct{}{}
	}
	return nil
}

// checkout validates every line against current stock and, only after all
// lines pass, decrements stock and writes one snapshot item per line.
// Lines are processed in caller order. Returns the created items and the
// order total.
func checkout(tx *gorm.DB, orderID int64, lines []OrderLine) ([]domain.OrderItem, float64, error) {
	// Validation pass: no mutation happens until every line is known good.
	products := make([]domain.Product, 0, len(lines))
	for _, line := range lines {
		var p domain.Product
		if err := tx.First(&p, line.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, 0, ErrNotFound("PRODUCT_NOT_FOUND", "product %d not found", line.ProductID)
			}
			return nil, 0, err
		}
		if p.StockQty < line.Quantity {
			return nil, 0, ErrConflict("INSUFFICIENT_STOCK",
				"insufficient stock for product %q: have %d, want %d",
				p.Name, p.StockQty, line.Quantity)
		}
		products = append(products, p)
	}

	// Apply pass: decrement stock and snapshot the catalog state per line.
	now := time.Now()
	var total float64
	items := make([]domain.OrderItem, 0, len(lines))
	for i, line := range lines {
		p := products[i]
		err := tx.Model(&domain.Product{}).
			Where("id = ?", p.ID).
			Updates(map[string]interface{}{
				"stock_qty":  gorm.Expr("stock_qty - ?", line.Quantity),
				"updated_at": now,
			}).Error
		if err != nil {
			return nil, 0, err
		}

		lineTotal := float64(line.Quantity) * p.Price
		item := domain.OrderItem{
			ID:          common.UUIDint64(),
			OrderID:     orderID,
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    line.Quantity,
			UnitPrice:   p.Price,
			TotalValue:  lineTotal,
			CreatedAt:   now,
		}
		if err := tx.Create(&item).Error; err != nil {
			return nil, 0, err
		}
		items = append(items, item)
		total += lineTotal
	}
	return items, total, nil
}

// release adds the quantities held by items back to their products. Used
// when an order is deleted or before its item list is replaced, so a new
// list re-requesting the same product sees the replenished stock.
func release(tx *gorm.DB, items []domain.OrderItem) error {
	now := time.Now()
	for _, item := range items {
		err := tx.Model(&domain.Product{}).
			Where("id = ?", item.ProductID).
			Updates(map[string]interface{}{
				"stock_qty":  gorm.Expr("stock_qty + ?", item.Quantity),
				"updated_at": now,
			}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// CreateOrder creates an order, decrementing stock for every line. All
// lines are validated before any stock changes; any failure rolls the
// whole order back.
func (s *Service) CreateOrder(ctx context.Context, customer string, lines []OrderLine) (*OrderDetail, error) {
	customer = common.NormalizeName(customer)
	if customer == "" {
		return nil, ErrValidation("MISSING_CUSTOMER", "customer name is required")
	}
	if err := validateLines(lines); err != nil {
		return nil, err
	}

	detail := &OrderDetail{}
	err := s.runTx(ctx, "create order", func(tx *gorm.DB) error {
		now := time.Now()
		order := domain.Order{
			ID:        common.UUIDint64(),
			Customer:  customer,
			OrderDate: now,
			CreatedAt: now,
			UpdatedAt: now,
		}
		// The header row is written first so the items can reference its
		// id inside the same transaction.
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		items, total, err := checkout(tx, order.ID, lines)
		if err != nil {
			return err
		}
		order.TotalValue = total
		if err := tx.Model(&domain.Order{}).Where("id = ?", order.ID).
			Update("total_value", total).Error; err != nil {
			return err
		}
		detail.Order = order
		detail.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(TopicOrderCreated, detail.ID)
	return detail, nil
}

// UpdateOrder replaces an order's customer and item list. Existing items
// are released back to stock and deleted before the new list is checked
// out, so the new list may re-request the same products. Reversal and
// re-application are one transaction: a failing new list leaves the
// pre-update state untouched.
func (s *Service) UpdateOrder(ctx context.Context, id int64, customer string, lines []OrderLine) (*OrderDetail, error) {
	customer = common.NormalizeName(customer)
	if customer == "" {
		return nil, ErrValidation("MISSING_CUSTOMER", "customer name is required")
	}
	if err := validateLines(lines); err != nil {
		return nil, err
	}

	detail := &OrderDetail{}
	err := s.runTx(ctx, "update order", func(tx *gorm.DB) error {
		var order domain.Order
		if err := tx.First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound("ORDER_NOT_FOUND", "order %d not found", id)
			}
			return err
		}

		var oldItems []domain.OrderItem
		if err := tx.Where("order_id = ?", id).Order("id ASC").Find(&oldItems).Error; err != nil {
			return err
		}
		if err := release(tx, oldItems); err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&domain.OrderItem{}).Error; err != nil {
			return err
		}

		items, total, err := checkout(tx, order.ID, lines)
		if err != nil {
			return err
		}

		now := time.Now()
		updates := map[string]interface{}{
			"customer":    customer,
			"total_value": total,
			"updated_at":  now,
		}
		if err := tx.Model(&domain.Order{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		order.Customer = customer
		order.TotalValue = total
		order.UpdatedAt = now
		detail.Order = order
		detail.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(TopicOrderUpdated, id)
	return detail, nil
}

// DeleteOrder removes an order and its items, returning every held
// quantity to the catalog in the same transaction.
func (s *Service) DeleteOrder(ctx context.Context, id int64) error {
	err := s.runTx(ctx, "delete order", func(tx *gorm.DB) error {
		var order domain.Order
		if err := tx.First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound("ORDER_NOT_FOUND", "order %d not found", id)
			}
			return err
		}

		var items []domain.OrderItem
		if err := tx.Where("order_id = ?", id).Find(&items).Error; err != nil {
			return err
		}
		if err := release(tx, items); err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&domain.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Order{}, id).Error
	})
	if err != nil {
		return err
	}

	s.publish(TopicOrderDeleted, id)
	return nil
}

// GetOrder returns an order with its items
func (s *Service) GetOrder(ctx context.Context, id int64) (*OrderDetail, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("ORDER_NOT_FOUND", "order %d not found", id)
		}
		return nil, ErrInternal("get order", err)
	}
	items, err := s.orders.GetItems(ctx, id)
	if err != nil {
		return nil, ErrInternal("get order items", err)
	}
	return &OrderDetail{Order: *order, Items: items}, nil
}

func validateProductInput(in *ProductInput) error {
	in.Name = common.NormalizeName(in.Name)
	if in.Name == "" {
		return ErrValidation("MISSING_NAME", "product name is required")
	}
	if in.Price <= 0 {
		return ErrValidation("INVALID_PRICE", "price must be positive")
	}
	if in.StockQty < 0 {
		return ErrValidation("INVALID_STOCK", "stock quantity cannot be negative")
	}
	return nil
}

// CreateProduct adds a catalog entry with a normalized unique name
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if err := validateProductInput(&in); err != nil {
		return nil, err
	}

	var created domain.Product
	err := s.runTx(ctx, "create product", func(tx *gorm.DB) error {
		var dup domain.Product
		err := tx.Where("name = ?", in.Name).First(&dup).Error
		if err == nil {
			return ErrConflict("DUPLICATE_NAME", "product %q already exists", in.Name)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now()
		created = domain.Product{
			ID:          common.UUIDint64(),
			Name:        in.Name,
			Description: in.Description,
			Price:       in.Price,
			StockQty:    in.StockQty,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateProduct applies field changes to a catalog entry. Existing order
// item snapshots are historical and are never touched by a rename or
// reprice.
func (s *Service) UpdateProduct(ctx context.Context, id int64, in ProductInput) (*domain.Product, error) {
	if err := validateProductInput(&in); err != nil {
		return nil, err
	}

	var updated domain.Product
	err := s.runTx(ctx, "update product", func(tx *gorm.DB) error {
		var p domain.Product
		if err := tx.First(&p, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound("PRODUCT_NOT_FOUND", "product %d not found", id)
			}
			return err
		}

		if in.Name != p.Name {
			var dup domain.Product
			err := tx.Where("name = ? AND id <> ?", in.Name, id).First(&dup).Error
			if err == nil {
				return ErrConflict("DUPLICATE_NAME", "product %q already exists", in.Name)
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		p.Name = in.Name
		p.Description = in.Description
		p.Price = in.Price
		p.StockQty = in.StockQty
		p.UpdatedAt = time.Now()
		if err := tx.Save(&p).Error; err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteProduct removes a catalog entry unless any surviving order item
// still references it.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	return s.runTx(ctx, "delete product", func(tx *gorm.DB) error {
		var p domain.Product
		if err := tx.First(&p, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound("PRODUCT_NOT_FOUND", "product %d not found", id)
			}
			return err
		}

		var refs int64
		if err := tx.Model(&domain.OrderItem{}).
			Where("product_id = ?", id).
			Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return ErrConflict("PRODUCT_IN_USE",
				"product %q is referenced by %d order item(s)", p.Name, refs)
		}
		return tx.Delete(&domain.Product{}, id).Error
	})
}

// GetProduct returns a catalog entry by id
func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound("PRODUCT_NOT_FOUND", "product %d not found", id)
		}
		return nil, ErrInternal("get product", err)
	}
	return p, nil
}
