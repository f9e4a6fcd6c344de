package model

// ProductModel は靴1件につき1つのモデル名（商品名）
type ProductModel struct {
	ID        int64   `gorm:"primaryKey;autoIncrement" json:"-"`
	Label     string  `gorm:"type:varchar(40);not null" json:"label"`
	Color     *string `gorm:"type:varchar(40)" json:"color,omitempty"`
	ProductID int64   `gorm:"not null;uniqueIndex" json:"-"`
}
