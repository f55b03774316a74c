package domain

import "time"

// Review is a customer review. Append-only except for admin delete.
type Review struct {
	ID        int64     `json:"id,string" form:"id"`
	Author    string    `json:"author" form:"author"`
	Body      string    `gorm:"size:2048" json:"body" form:"body"`
	Rating    int       `json:"rating" form:"rating"` // 1..5
	CreatedAt time.Time `json:"created_at"`
}

// TableName Specify table name
func (Review) TableName() string {
	return "shop_review"
}
