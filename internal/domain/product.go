package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// StringList stores a list of strings as a JSON column. Used for
// product size labels and image payloads.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *StringList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("unsupported type for StringList")
	}
}

// MaxProductImages limits how many image payloads a product carries.
const MaxProductImages = 3

// Product is a catalog item. Quantity never goes below zero and
// SoldCount only grows; both are maintained by the sale transaction.
type Product struct {
	ID        int64      `json:"id,string" form:"id"`
	Name      string     `gorm:"index" json:"name" form:"name"`
	Category  string     `gorm:"index;size:64" json:"category" form:"category"`
	Sizes     StringList `gorm:"type:text" json:"sizes" form:"sizes"`
	Color     string     `gorm:"size:64" json:"color" form:"color"`
	Quantity  int        `json:"quantity" form:"quantity"`
	SoldCount int        `json:"sold_count" form:"sold_count"`
	Images    StringList `gorm:"type:text" json:"images" form:"images"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "shop_product"
}
