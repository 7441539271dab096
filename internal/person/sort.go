package person

import (
	"cmp"
	"slices"
	"time"
	"unicode"
	"unicode/utf8"
)

// comparators は並び替え可能なフィールドと昇順比較関数の対応表。
var comparators = map[Field]func(a, b View) int{
	FieldPersonName: func(a, b View) int { return compareOrdinalIgnoreCase(a.PersonName, b.PersonName) },
	FieldEmail:      func(a, b View) int { return compareOrdinalIgnoreCase(a.Email, b.Email) },
	FieldDateOfBirth: func(a, b View) int {
		return compareOptional(a.DateOfBirth, b.DateOfBirth, func(x, y time.Time) int { return x.Compare(y) })
	},
	FieldAge:     func(a, b View) int { return compareOptional(a.Age, b.Age, cmp.Compare[int]) },
	FieldGender:  func(a, b View) int { return compareOrdinalIgnoreCase(a.Gender, b.Gender) },
	FieldCountry: func(a, b View) int { return compareOrdinalIgnoreCase(a.Country, b.Country) },
	FieldAddress: func(a, b View) int { return compareOrdinalIgnoreCase(a.Address, b.Address) },
	FieldReceiveNewsLetters: func(a, b View) int {
		return compareBool(a.ReceiveNewsLetters, b.ReceiveNewsLetters)
	},
}

// Sort はViewの一覧を指定フィールド・順序で安定ソートした新しいスライスを返す。
// sortByが空、または未知のフィールド・順序の組み合わせの場合は入力をそのまま返す。
// 降順は比較関数を反転して適用するため、同値の要素はどちらの順序でも入力順を保つ。
func Sort(views []View, sortBy string, order SortOrder) []View {
	if sortBy == "" {
		return views
	}

	compare, ok := comparators[Field(sortBy)]
	if !ok {
		return views
	}

	switch order {
	case SortOrderAsc:
	case SortOrderDesc:
		asc := compare
		compare = func(a, b View) int { return asc(b, a) }
	default:
		return views
	}

	sorted := slices.Clone(views)
	slices.SortStableFunc(sorted, compare)
	return sorted
}

// compareOrdinalIgnoreCase は大文字化したコードポイント単位で文字列を比較する。
// ロケールに依存した照合は行わない。
func compareOrdinalIgnoreCase(a, b string) int {
	for a != "" && b != "" {
		ra, na := utf8.DecodeRuneInString(a)
		rb, nb := utf8.DecodeRuneInString(b)
		if c := cmp.Compare(unicode.ToUpper(ra), unicode.ToUpper(rb)); c != 0 {
			return c
		}
		a, b = a[na:], b[nb:]
	}
	return cmp.Compare(len(a), len(b))
}

// compareOptional はnilを最小値として扱って比較する。
func compareOptional[T any](a, b *T, compare func(x, y T) int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return compare(*a, *b)
	}
}

// compareBool はfalse < true として比較する。
func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
