package usecase

import "errors"

// usecaseが返すエラー。HTTPのステータスへの変換はhandler側で行う。
var (
	// 商品が無い / 検索条件が不正 / 検索結果が0件
	ErrNotFound = errors.New("not found")
	// article_codeが既に使われている
	ErrCodeExists = errors.New("article code already exists")
	// バージョン（If-Match）の書式が不正
	ErrVersionInvalid = errors.New("version tag invalid")
	// バージョンが古い
	ErrVersionOutdated = errors.New("version tag outdated")
)
