package repository

import (
	"context"
	"errors"

	"shoecatalog/internal/domain/model"
	repo "shoecatalog/internal/repository"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// IDで商品を取得（modelは常に、imagesは指定時のみ）
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64, withImages bool) (model.Product, error) {
	q := r.db.WithContext(ctx).Preload("Model")
	if withImages {
		q = q.Preload("Images")
	}

	var p model.Product
	err := q.First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 条件に合う商品をid順でoffset/limit分だけ返す。
func (r *ProductGormRepository) Find(ctx context.Context, where sq.Sqlizer, offset, limit int) ([]model.Product, error) {
	tx, err := applyWhere(r.db.WithContext(ctx).Model(&model.Product{}).Preload("Model"), where)
	if err != nil {
		return []model.Product{}, err
	}

	var products []model.Product
	if err := tx.Order("products.id asc").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

// 全件数（絞り込みなし）
func (r *ProductGormRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *ProductGormRepository) CountByArticleCode(ctx context.Context, articleCode string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("article_code = ?", articleCode).
		Count(&n).Error
	if err != nil {
		return 0, err
	}
	return n, nil
}

// 商品の作成。model/imagesも同じINSERTでまとめて作られる。
func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	p.NormalizeTags()
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 商品の更新。versionは呼び出し側で+1した値。
func (r *ProductGormRepository) Update(ctx context.Context, id int64, patch repo.ProductPatch, version int) error {
	tags := patch.Tags
	if tags == nil {
		tags = []string{}
	}

	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
		"version":      version,
		"rating":       patch.Rating,
		"category":     patch.Category,
		"price":        patch.Price,
		"discount":     patch.Discount,
		"available":    patch.Available,
		"release_date": patch.ReleaseDate,
		"homepage":     patch.Homepage,
		"tags":         datatypes.JSONSlice[string](tags),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 商品削除。子テーブルも先に消す（sqliteはFKのcascadeが既定で無効のため）。
// 存在しないidでもエラーにしない。
func (r *ProductGormRepository) Delete(ctx context.Context, id int64) error {
	db := r.db.WithContext(ctx)

	children := []interface{}{&model.ProductImage{}, &model.ProductModel{}, &model.ProductFile{}}
	for _, c := range children {
		if err := db.Where("product_id = ?", id).Delete(c).Error; err != nil {
			return err
		}
	}
	return db.Delete(&model.Product{}, id).Error
}

// squirrelの条件をgormのWHEREに渡す
func applyWhere(tx *gorm.DB, where sq.Sqlizer) (*gorm.DB, error) {
	if where == nil {
		return tx, nil
	}
	sql, args, err := where.ToSql()
	if err != nil {
		return nil, err
	}
	return tx.Where(sql, args...), nil
}
