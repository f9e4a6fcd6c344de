package usecase

import (
	"context"
	"errors"
	"fmt"

	"shoecatalog/internal/domain/model"
	"shoecatalog/internal/query"
	repo "shoecatalog/internal/repository"
)

// Slice は1ページ分の商品と件数。
// TotalElementsは絞り込みに関係なく全商品の件数。
type Slice struct {
	Content       []model.Product
	TotalElements int64
}

type ProductReadUsecase struct {
	products repo.ProductRepository
	files    repo.ProductFileRepository
}

// DI
func NewProductReadUsecase(products repo.ProductRepository, files repo.ProductFileRepository) *ProductReadUsecase {
	return &ProductReadUsecase{
		products: products,
		files:    files,
	}
}

// IDで1件取得。無ければErrNotFound。
func (u *ProductReadUsecase) FindByID(ctx context.Context, id int64, withImages bool) (model.Product, error) {
	p, err := u.products.FindByID(ctx, id, withImages)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// Find は検索条件とページングで商品を探す。
//   - 条件なし: 全件をページングして返す（0件でもエラーにしない）
//   - 未知のパラメータ名 / 未知のカテゴリ: ErrNotFound
//   - 0件: ErrNotFound
func (u *ProductReadUsecase) Find(ctx context.Context, params query.SearchParams, pageable query.Pageable) (Slice, error) {
	if len(params) == 0 {
		return u.findAll(ctx, pageable)
	}

	if err := checkParams(params); err != nil {
		return Slice{}, err
	}

	items, err := u.products.Find(ctx, query.BuildPredicate(params), pageable.Offset(), pageable.Size)
	if err != nil {
		return Slice{}, err
	}
	if len(items) == 0 {
		return Slice{}, fmt.Errorf("no products match %v: %w", map[string]string(params), ErrNotFound)
	}

	total, err := u.products.Count(ctx)
	if err != nil {
		return Slice{}, err
	}
	return Slice{Content: items, TotalElements: total}, nil
}

func (u *ProductReadUsecase) findAll(ctx context.Context, pageable query.Pageable) (Slice, error) {
	items, err := u.products.Find(ctx, nil, pageable.Offset(), pageable.Size)
	if err != nil {
		return Slice{}, err
	}
	total, err := u.products.Count(ctx)
	if err != nil {
		return Slice{}, err
	}
	return Slice{Content: items, TotalElements: total}, nil
}

// 検索パラメータ名とカテゴリの値を検証する。
// 不正な検索は「見つからない」と同じ扱い。
func checkParams(params query.SearchParams) error {
	for name := range params {
		if !query.ValidParam(name) {
			return fmt.Errorf("unknown search parameter %q: %w", name, ErrNotFound)
		}
	}
	if c, ok := params["category"]; ok {
		if _, ok := model.ParseCategory(c); !ok {
			return fmt.Errorf("unknown category %q: %w", c, ErrNotFound)
		}
	}
	return nil
}

// 全件数
func (u *ProductReadUsecase) Count(ctx context.Context) (int64, error) {
	return u.products.Count(ctx)
}

// 添付ファイルを取得。無ければ (nil, nil)。
func (u *ProductReadUsecase) FindFileByProductID(ctx context.Context, id int64) (*model.ProductFile, error) {
	f, err := u.files.FindByProductID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}
