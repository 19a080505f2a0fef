package stock

import (
	"context"

	"github.com/montanaflynn/stats"
	"github.com/talkincode/orderstock/internal/domain"
)

// BestSeller is the product with the highest cumulative ordered quantity.
// Ties are broken by lowest product id so the report is deterministic.
type BestSeller struct {
	ProductID   int64  `json:"product_id,string"`
	ProductName string `json:"product_name"`
	TotalQty    int64  `json:"total_qty"`
}

// Statistics aggregates catalog and order totals
type Statistics struct {
	TotalProducts int64       `json:"total_products"`
	TotalOrders   int64       `json:"total_orders"`
	TotalRevenue  float64     `json:"total_revenue"`
	AvgOrderValue float64     `json:"avg_order_value"`
	BestSeller    *BestSeller `json:"best_seller,omitempty"`
}

// LowStock returns every product whose stock is at or below threshold
func (s *Service) LowStock(ctx context.Context, threshold int64) ([]domain.Product, error) {
	rows, err := s.products.ListLowStock(ctx, threshold)
	if err != nil {
		return nil, ErrInternal("low stock report", err)
	}
	return rows, nil
}

// Stats computes the reporting aggregates in a single pass over the
// order totals plus one grouped query for the best seller.
func (s *Service) Stats(ctx context.Context) (*Statistics, error) {
	out := &Statistics{}
	db := s.db.WithContext(ctx)

	if err := db.Model(&domain.Product{}).Count(&out.TotalProducts).Error; err != nil {
		return nil, ErrInternal("stats", err)
	}
	if err := db.Model(&domain.Order{}).Count(&out.TotalOrders).Error; err != nil {
		return nil, ErrInternal("stats", err)
	}

	var totals []float64
	if err := db.Model(&domain.Order{}).Pluck("total_value", &totals).Error; err != nil {
		return nil, ErrInternal("stats", err)
	}
	if len(totals) > 0 {
		sum, err := stats.Sum(totals)
		if err != nil {
			return nil, ErrInternal("stats", err)
		}
		mean, err := stats.Mean(totals)
		if err != nil {
			return nil, ErrInternal("stats", err)
		}
		out.TotalRevenue = sum
		out.AvgOrderValue = mean
	}

	type aggRow struct {
		ProductID int64
		TotalQty  int64
	}
	var agg aggRow
	err := db.Model(&domain.OrderItem{}).
		Select("product_id, SUM(quantity) AS total_qty").
		Group("product_id").
		Order("total_qty DESC, product_id ASC").
		Limit(1).
		Scan(&agg).Error
	if err != nil {
		return nil, ErrInternal("stats", err)
	}
	if agg.ProductID != 0 {
		bs := &BestSeller{ProductID: agg.ProductID, TotalQty: agg.TotalQty}
		// Render the live catalog name; the per-item snapshots may
		// predate a rename.
		if p, err := s.products.GetByID(ctx, agg.ProductID); err == nil {
			bs.ProductName = p.Name
		}
		out.BestSeller = bs
	}
	return out, nil
}
