package usecase

import (
	"fmt"
	"regexp"
	"strconv"
)

// VersionTag は `"<数字1〜3桁>"` という引用符付きのバージョン（ETag / If-Match の値）。
// 整数にするのはParseVersionTagだけ。
type VersionTag string

var versionTagPattern = regexp.MustCompile(`^"\d{1,3}"$`)

// ParseVersionTag は書式を検証して整数にする
func ParseVersionTag(tag VersionTag) (int, error) {
	s := string(tag)
	if !versionTagPattern.MatchString(s) {
		return 0, fmt.Errorf("%q: %w", s, ErrVersionInvalid)
	}
	v, err := strconv.Atoi(s[1 : len(s)-1])
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, ErrVersionInvalid)
	}
	return v, nil
}

// FormatVersionTag はETagに載せる形にする
func FormatVersionTag(version int) VersionTag {
	return VersionTag(`"` + strconv.Itoa(version) + `"`)
}
