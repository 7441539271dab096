package person

import (
	"strings"

	"github.com/hitoshi/contactsman/internal/model"
	"github.com/hitoshi/contactsman/internal/repository"
)

// searchDateLayout は生年月日を部分一致検索する際の書式（例: "23 June 1995"）。
const searchDateLayout = "02 January 2006"

// searchableFields は検索可能なフィールドと、その検索対象文字列の取り出し方の対応表。
var searchableFields = map[Field]func(p *model.Person) string{
	FieldPersonName: func(p *model.Person) string { return p.PersonName },
	FieldEmail:      func(p *model.Person) string { return p.Email },
	FieldDateOfBirth: func(p *model.Person) string {
		if p.DateOfBirth == nil {
			return ""
		}
		return p.DateOfBirth.Format(searchDateLayout)
	},
	FieldAddress: func(p *model.Person) string { return p.Address },
	FieldGender:  func(p *model.Person) string { return string(p.Gender) },
	FieldCountry: func(p *model.Person) string { return p.CountryName() },
}

// normalizeSearchString は検索文字列を正規化する。nilや空白のみの場合は空文字になる。
func normalizeSearchString(searchString *string) string {
	if searchString == nil {
		return ""
	}
	return strings.TrimSpace(*searchString)
}

// predicateFor はフィールドと検索文字列から絞り込み条件を組み立てる。
// 未知のフィールドの場合はfalseを返す。
// 照合は大文字小文字を区別する部分一致。
func predicateFor(field Field, search string) (repository.PersonPredicate, bool) {
	extract, ok := searchableFields[field]
	if !ok {
		return nil, false
	}
	return func(p *model.Person) bool {
		return strings.Contains(extract(p), search)
	}, true
}
