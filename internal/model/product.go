package model

// Product is a trending product tracked by the dashboard.
type Product struct {
	Base

	Name        string  `gorm:"index;not null" json:"name"`
	Category    string  `gorm:"index;not null" json:"category"`
	Subcategory string  `json:"subcategory,omitempty"`
	PriceLow    float64 `gorm:"column:price_range_low;not null" json:"price_range_low"`
	PriceHigh   float64 `gorm:"column:price_range_high;not null" json:"price_range_high"`

	// Trend metrics (0-100 composite scores).
	TrendScore       int `gorm:"not null" json:"trend_score"`
	EngagementRate   int `gorm:"not null" json:"engagement_rate"`
	SalesVelocity    int `gorm:"not null" json:"sales_velocity"`
	SearchVolume     int `gorm:"not null" json:"search_volume"`
	GeographicSpread int `gorm:"not null" json:"geographic_spread"`

	ImageURL    string `json:"image_url,omitempty"`
	Description string `json:"description,omitempty"`

	SourcePlatform    string `json:"source_platform,omitempty"`
	AliexpressURL     string `json:"aliexpress_url,omitempty"`
	CJDropshippingURL string `gorm:"column:cjdropshipping_url" json:"cjdropshipping_url,omitempty"`

	Trends  []Trend  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Regions []Region `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Videos  []Video  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (Product) TableName() string { return "products" }
