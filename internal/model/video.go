package model

import "time"

// Video is a marketing video associated with a product.
type Video struct {
	Base

	ProductID int64 `gorm:"not null;index" json:"product_id"`

	Title      string    `gorm:"not null" json:"title"`
	Platform   string    `gorm:"not null;index" json:"platform"`
	Views      int64     `gorm:"not null" json:"views"`
	UploadDate time.Time `gorm:"not null" json:"upload_date"`

	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	VideoURL     string `gorm:"not null" json:"video_url"`
}

func (Video) TableName() string { return "videos" }
