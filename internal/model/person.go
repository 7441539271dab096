// Package model はドメインモデルを定義する。
package model

import (
	"time"

	"github.com/google/uuid"
)

// Person は連絡先として登録された人物を表す。
// ストレージが所有するレコードであり、サービス層からは読み取り専用として扱う。
type Person struct {
	ID                 uuid.UUID
	PersonName         string
	Email              string
	DateOfBirth        *time.Time
	Gender             Gender
	CountryID          *uuid.UUID
	Country            *Country // countriesテーブルとLEFT JOINした結果。未設定の場合はnil
	Address            string
	ReceiveNewsLetters bool
}

// CountryName は紐付く国名を返す。国が未設定の場合は空文字を返す。
func (p *Person) CountryName() string {
	if p.Country == nil {
		return ""
	}
	return p.Country.CountryName
}

// Gender は人物の性別を表す。
type Gender string

const (
	// GenderMale は男性。
	GenderMale Gender = "Male"
	// GenderFemale は女性。
	GenderFemale Gender = "Female"
	// GenderOther はその他。
	GenderOther Gender = "Other"
)

// Country は国マスタを表す。
type Country struct {
	ID          uuid.UUID
	CountryName string
}
