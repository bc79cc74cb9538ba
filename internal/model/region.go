package model

// Region is the geographic interest share for a product.
type Region struct {
	Base

	ProductID int64 `gorm:"not null;index" json:"product_id"`

	Country    string `gorm:"not null;index" json:"country"`
	Percentage int    `gorm:"not null" json:"percentage"` // 0-100
}

func (Region) TableName() string { return "regions" }
