package model

type ProductImage struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"-"`
	Caption     string `gorm:"type:varchar(32);not null" json:"caption"`
	ContentType string `gorm:"type:varchar(16);not null" json:"content_type"`
	ProductID   int64  `gorm:"not null;index" json:"-"`
}
