package model

import "time"

// Trend is one historical trend measurement for a product.
type Trend struct {
	Base

	ProductID int64     `gorm:"not null;index" json:"product_id"`
	Date      time.Time `gorm:"not null;index" json:"date"`

	EngagementValue int `gorm:"not null" json:"engagement_value"`
	SalesValue      int `gorm:"not null" json:"sales_value"`
	SearchValue     int `gorm:"not null" json:"search_value"`
}

func (Trend) TableName() string { return "trends" }
