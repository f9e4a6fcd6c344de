package query

import "strconv"

const (
	DefaultPageNumber = 0
	DefaultPageSize   = 5
	MaxPageSize       = 100
)

// Pageable はページ番号（0始まり）とページサイズ
type Pageable struct {
	Number int
	Size   int
}

// Offset はskipする件数
func (p Pageable) Offset() int {
	return p.Number * p.Size
}

// NewPageable はクエリ文字列のpage/sizeを正規化する。
// pageは1始まりで受け取り、0始まりに直す。
// sizeが1〜100の範囲外なら0になる（既定値5ではない）。
func NewPageable(number, size string) Pageable {
	return Pageable{
		Number: pageNumber(number),
		Size:   pageSize(size),
	}
}

func pageNumber(s string) int {
	if s == "" {
		return DefaultPageNumber
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return DefaultPageNumber
	}
	n--
	if n < 0 {
		return DefaultPageNumber
	}
	return n
}

func pageSize(s string) int {
	if s == "" {
		return DefaultPageSize
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return DefaultPageSize
	}
	if n < 1 || n > MaxPageSize {
		return DefaultPageNumber
	}
	return n
}
