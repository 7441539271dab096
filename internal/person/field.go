package person

// Field は絞り込み・並び替えの対象フィールドを表す。
// 値はレスポンスのフィールド名と完全一致（大文字小文字を区別）で照合する。
type Field string

const (
	FieldPersonName         Field = "PersonName"
	FieldEmail              Field = "Email"
	FieldDateOfBirth        Field = "DateOfBirth"
	FieldAge                Field = "Age"
	FieldGender             Field = "Gender"
	FieldCountry            Field = "Country"
	FieldAddress            Field = "Address"
	FieldReceiveNewsLetters Field = "ReceiveNewsLetters"
)

// SortOrder は並び順を表す。
type SortOrder string

const (
	// SortOrderAsc は昇順。
	SortOrderAsc SortOrder = "ASC"
	// SortOrderDesc は降順。
	SortOrderDesc SortOrder = "DESC"
)
