package domain

import "time"

// Order is the header row for a sale. TotalValue is written once per
// committed mutation and always equals the sum of its item totals.
// Items are looked up by order_id, there is no maintained back-link.
type Order struct {
	ID         int64     `json:"id,string" form:"id"`
	Customer   string    `gorm:"index;size:100" json:"customer" form:"customer"`
	TotalValue float64   `json:"total_value" form:"total_value"`
	OrderDate  time.Time `gorm:"index" json:"order_date"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Order) TableName() string {
	return "stk_order"
}

// OrderItem is one line of an order. ProductName and UnitPrice snapshot
// the product at sale time and are never rewritten afterwards, even when
// the catalog entry is later renamed or repriced.
type OrderItem struct {
	ID          int64     `json:"id,string" form:"id"`
	OrderID     int64     `gorm:"index" json:"order_id,string" form:"order_id"`
	ProductID   int64     `gorm:"index" json:"product_id,string" form:"product_id"`
	ProductName string    `gorm:"size:100" json:"product_name"`
	Quantity    int64     `json:"quantity" form:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	TotalValue  float64   `json:"total_value"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName Specify table name
func (OrderItem) TableName() string {
	return "stk_order_item"
}
