// Package query は検索パラメータ（文字列のkey/value）から
// DBの絞り込み条件とページングを組み立てる。DBには触らない。
package query

import (
	"strconv"
	"strings"
	"time"

	"shoecatalog/internal/domain/model"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// SearchParams はクエリ文字列 / GraphQL入力から来る生の検索条件。
type SearchParams map[string]string

const dateLayout = "2006-01-02"

// field は1つの検索パラメータの「パース + 演算子」
type field struct {
	name  string
	build func(v string) (sq.Sqlizer, bool)
}

// tagFlag はtrueならタグ1つを要求するパラメータ
type tagFlag struct {
	name string
	tag  string
}

var fields = []field{
	{name: "model", build: modelLabelLike},
	{name: "articleCode", build: func(v string) (sq.Sqlizer, bool) {
		return sq.Eq{"products.article_code": v}, true
	}},
	{name: "rating", build: func(v string) (sq.Sqlizer, bool) {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, false
		}
		return sq.GtOrEq{"products.rating": n}, true
	}},
	{name: "price", build: func(v string) (sq.Sqlizer, bool) {
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return nil, false
		}
		return sq.LtOrEq{"products.price": d}, true
	}},
	{name: "category", build: func(v string) (sq.Sqlizer, bool) {
		c, ok := model.ParseCategory(v)
		if !ok {
			return nil, false
		}
		return sq.Eq{"products.category": string(c)}, true
	}},
	{name: "available", build: func(v string) (sq.Sqlizer, bool) {
		return sq.Eq{"products.available": isTrue(v)}, true
	}},
	{name: "releaseDate", build: func(v string) (sq.Sqlizer, bool) {
		t, err := time.Parse(dateLayout, strings.TrimSpace(v))
		if err != nil {
			return nil, false
		}
		return sq.GtOrEq{"products.release_date": datatypes.Date(t)}, true
	}},
	{name: "homepage", build: func(v string) (sq.Sqlizer, bool) {
		return sq.Eq{"products.homepage": v}, true
	}},
}

var tagFlags = []tagFlag{
	{name: "sport", tag: model.TagSport},
	{name: "vintage", tag: model.TagVintage},
	{name: "streetware", tag: model.TagStreetware},
}

// ValidParam は検索パラメータ名が既知かどうか
func ValidParam(name string) bool {
	for _, f := range fields {
		if f.name == name {
			return true
		}
	}
	for _, f := range tagFlags {
		if f.name == name {
			return true
		}
	}
	return false
}

// BuildPredicate は検索条件をAND結合した絞り込み条件を返す。
// パースできない値はエラーにせず、その項目だけ無視する。
// タグ指定は「どれか1つを含む」(OR)。
func BuildPredicate(params SearchParams) sq.Sqlizer {
	where := sq.And{}

	for _, f := range fields {
		v, ok := params[f.name]
		if !ok {
			continue
		}
		if cond, ok := f.build(v); ok {
			where = append(where, cond)
		}
	}

	if tags := requestedTags(params); len(tags) > 0 {
		where = append(where, anyTag(tags))
	}

	return where
}

func requestedTags(params SearchParams) []string {
	var tags []string
	for _, f := range tagFlags {
		if v, ok := params[f.name]; ok && isTrue(v) {
			tags = append(tags, f.tag)
		}
	}
	return tags
}

// tagsはJSON配列の文字列として保存されているので、要素を "..." 込みでLIKEする。
// 保存時の表記ゆれ（小文字/大文字/そのまま）をすべて許す。
func anyTag(tags []string) sq.Sqlizer {
	or := sq.Or{}
	for _, tag := range tags {
		for _, form := range tagForms(tag) {
			or = append(or, sq.Like{"CAST(products.tags AS TEXT)": `%"` + form + `"%`})
		}
	}
	return or
}

func tagForms(tag string) []string {
	forms := []string{strings.ToLower(tag)}
	if up := strings.ToUpper(tag); up != forms[0] {
		forms = append(forms, up)
	}
	if tag != strings.ToLower(tag) && tag != strings.ToUpper(tag) {
		forms = append(forms, tag)
	}
	return forms
}

// 入力の % と _ は文字として扱う
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func modelLabelLike(v string) (sq.Sqlizer, bool) {
	return sq.Expr(
		`EXISTS (SELECT 1 FROM product_models m WHERE m.product_id = products.id AND LOWER(m.label) LIKE ? ESCAPE '\')`,
		"%"+likeEscaper.Replace(strings.ToLower(v))+"%",
	), true
}

func isTrue(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "true")
}
