package domain

import "time"

// Sale is one entry of the append-only sales log. ProductName and
// Category are denormalized at sale time and are not kept in sync with
// later product edits; ProductId is a weak reference, the product may
// be deleted while the sale record persists.
type Sale struct {
	ID          int64     `json:"id,string" form:"id"`
	ProductId   int64     `gorm:"index" json:"product_id,string" form:"product_id"`
	ProductName string    `json:"product_name" form:"product_name"`
	Category    string    `gorm:"index;size:64" json:"category" form:"category"`
	Quantity    int       `json:"quantity" form:"quantity"`
	Price       float64   `json:"price" form:"price"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// TableName Specify table name
func (Sale) TableName() string {
	return "shop_sale"
}
