package repository

import (
	"context"
	"errors"

	"shoecatalog/internal/domain/model"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

var ErrNotFound = errors.New("not found")

// 更新で書き換える項目。article_codeは変更不可なので含めない。
type ProductPatch struct {
	Rating      int
	Category    *model.Category
	Price       decimal.Decimal
	Discount    decimal.Decimal
	Available   bool
	ReleaseDate *datatypes.Date
	Homepage    *string
	Tags        []string
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	FindByID(ctx context.Context, id int64, withImages bool) (model.Product, error)
	// whereがnilなら全件。offset/limitでページングする。
	Find(ctx context.Context, where sq.Sqlizer, offset, limit int) ([]model.Product, error)
	Count(ctx context.Context) (int64, error)
	CountByArticleCode(ctx context.Context, articleCode string) (int64, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	// versionは更新後の値をそのまま書き込む
	Update(ctx context.Context, id int64, patch ProductPatch, version int) error
	Delete(ctx context.Context, id int64) error
}

// 添付ファイル（1商品につき最大1件）
type ProductFileRepository interface {
	FindByProductID(ctx context.Context, productID int64) (model.ProductFile, error)
	DeleteByProductID(ctx context.Context, productID int64) error
	Create(ctx context.Context, f model.ProductFile) (model.ProductFile, error)
}
