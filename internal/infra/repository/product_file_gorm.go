package repository

import (
	"context"
	"errors"

	"shoecatalog/internal/domain/model"
	repo "shoecatalog/internal/repository"

	"gorm.io/gorm"
)

type ProductFileGormRepository struct {
	db *gorm.DB
}

func NewProductFileGormRepository(db *gorm.DB) *ProductFileGormRepository {
	return &ProductFileGormRepository{db: db}
}

func (r *ProductFileGormRepository) FindByProductID(ctx context.Context, productID int64) (model.ProductFile, error) {
	var f model.ProductFile
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ProductFile{}, repo.ErrNotFound
	}
	if err != nil {
		return model.ProductFile{}, err
	}
	return f, nil
}

// 既存の添付を消す（無ければ何もしない）
func (r *ProductFileGormRepository) DeleteByProductID(ctx context.Context, productID int64) error {
	return r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&model.ProductFile{}).Error
}

func (r *ProductFileGormRepository) Create(ctx context.Context, f model.ProductFile) (model.ProductFile, error) {
	if err := r.db.WithContext(ctx).Create(&f).Error; err != nil {
		return model.ProductFile{}, err
	}
	return f, nil
}
