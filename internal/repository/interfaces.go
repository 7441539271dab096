// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/hitoshi/contactsman/internal/model"
)

// PersonPredicate は保存済みの人物レコードに対する絞り込み条件。
// 条件の評価（イテレーション）はリポジトリ側で行う。
type PersonPredicate func(p *model.Person) bool

// PersonRepository は人物データの永続化インターフェース。
// 返される人物にはCountryがJOIN済みで設定される（国未設定の場合はnil）。
type PersonRepository interface {
	// ListAll は全人物を取得する。
	ListAll(ctx context.Context) ([]*model.Person, error)

	// FindByID は指定IDの人物を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id uuid.UUID) (*model.Person, error)

	// FindMatching はpredicateを満たす人物のみを取得する。
	FindMatching(ctx context.Context, predicate PersonPredicate) ([]*model.Person, error)
}

// CountryRepository は国マスタの永続化インターフェース。
type CountryRepository interface {
	// ListAll は全ての国を取得する。
	ListAll(ctx context.Context) ([]*model.Country, error)

	// FindByID は指定IDの国を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id uuid.UUID) (*model.Country, error)
}

// HealthChecker はDB接続のヘルスチェック用インターフェース。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}
