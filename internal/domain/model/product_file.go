package model

import "time"

// ProductFile は靴1件につき最大1つのバイナリ添付。
type ProductFile struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Data      []byte    `gorm:"not null" json:"-"`
	Filename  string    `gorm:"type:varchar(255);not null" json:"filename"`
	Mimetype  *string   `gorm:"type:varchar(64)" json:"mimetype,omitempty"`
	ProductID int64     `gorm:"not null;uniqueIndex" json:"product_id"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
