package domain

import "time"

// Product is a catalog item. StockQty is the authoritative on-hand
// quantity and is only ever changed inside the same transaction as the
// order mutation that consumes or releases it.
type Product struct {
	ID          int64     `json:"id,string" form:"id"`
	Name        string    `gorm:"uniqueIndex;size:100" json:"name" form:"name"`
	Description string    `gorm:"size:500" json:"description" form:"description"`
	Price       float64   `json:"price" form:"price"`
	StockQty    int64     `json:"stock_qty" form:"stock_qty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "stk_product"
}
