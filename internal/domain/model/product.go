package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 靴のカテゴリ
type Category string

const (
	CategorySneaker Category = "SNEAKER"
	CategoryBoot    Category = "BOOT"
	CategorySandal  Category = "SANDAL"
)

// Categories は定義済みカテゴリの一覧（順序固定）
var Categories = []Category{CategorySneaker, CategoryBoot, CategorySandal}

// ParseCategory は大文字小文字を区別せずにカテゴリへ変換する。
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, true
		}
	}
	return "", false
}

// タグの語彙
const (
	TagSport      = "SPORT"
	TagVintage    = "VINTAGE"
	TagStreetware = "STREETWARE"
)

// Product は靴1件。versionは楽観ロックのトークン。
type Product struct {
	ID          int64                       `gorm:"primaryKey;autoIncrement" json:"id"`
	Version     int                         `gorm:"not null;default:0" json:"version"`
	ArticleCode string                      `gorm:"type:varchar(32);not null;uniqueIndex" json:"article_code"`
	Rating      int                         `gorm:"not null;check:chk_products_rating,rating >= 0 AND rating <= 5" json:"rating"`
	Category    *Category                   `gorm:"type:varchar(16)" json:"category,omitempty"`
	Price       decimal.Decimal             `gorm:"type:decimal(8,2);not null" json:"price"`
	Discount    decimal.Decimal             `gorm:"type:decimal(4,3);not null" json:"discount"`
	Available   bool                        `gorm:"not null;default:false" json:"available"`
	ReleaseDate *datatypes.Date             `json:"release_date,omitempty"`
	Homepage    *string                     `gorm:"type:varchar(64)" json:"homepage,omitempty"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	CreatedAt   time.Time                   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time                   `gorm:"not null;autoUpdateTime" json:"updated_at"`

	Model  *ProductModel  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"model,omitempty"`
	Images []ProductImage `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
	// 添付は GET /rest/file/:id で別に返す
	File *ProductFile `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
}

// AfterFind はDBから読んだ直後に呼ばれる。tagsがnullなら空配列にそろえる。
func (p *Product) AfterFind(tx *gorm.DB) error {
	p.NormalizeTags()
	return nil
}

// NormalizeTags はnilのtagsを空配列にする
func (p *Product) NormalizeTags() {
	if p.Tags == nil {
		p.Tags = datatypes.JSONSlice[string]{}
	}
}

// HasTag は大文字小文字を無視してタグを含むか調べる
func (p *Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
