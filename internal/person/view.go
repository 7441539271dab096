// Package person は人物の取得・絞り込み・並び替え・エクスポートを提供する。
package person

import (
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/contactsman/internal/model"
)

// View はレスポンス用の人物表現。
// リクエストごとにPersonから射影して生成し、永続化はしない。
type View struct {
	ID                 uuid.UUID
	PersonName         string
	Email              string
	DateOfBirth        *time.Time
	Age                *int // 生年月日から射影時に算出する。生年月日が未設定の場合はnil
	Gender             string
	Country            string
	Address            string
	ReceiveNewsLetters bool
}

// ToView はPersonをViewに射影する。
// 年齢はnow時点の満年齢として算出し、国は参照先の国名に解決する。
func ToView(p *model.Person, now time.Time) View {
	v := View{
		ID:                 p.ID,
		PersonName:         p.PersonName,
		Email:              p.Email,
		Gender:             string(p.Gender),
		Country:            p.CountryName(),
		Address:            p.Address,
		ReceiveNewsLetters: p.ReceiveNewsLetters,
	}

	if p.DateOfBirth != nil {
		dob := *p.DateOfBirth
		age := ageAt(dob, now)
		v.DateOfBirth = &dob
		v.Age = &age
	}

	return v
}

// toViews は人物一覧を同一時刻基準でViewに射影する。
func toViews(persons []*model.Person, now time.Time) []View {
	views := make([]View, len(persons))
	for i, p := range persons {
		views[i] = ToView(p, now)
	}
	return views
}

// ageAt はdobからnowまでの満年齢を返す。
// 誕生日当日に加算される。
func ageAt(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}
