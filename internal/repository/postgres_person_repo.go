package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/hitoshi/contactsman/internal/model"
)

// selectPersonColumns は人物と国名をLEFT JOINで取得する共通SELECT句。
const selectPersonColumns = `SELECT p.id, p.person_name, p.email, p.date_of_birth, p.gender,
	p.country_id, c.country_name, p.address, p.receive_news_letters
	FROM persons p
	LEFT JOIN countries c ON c.id = p.country_id`

// PostgresPersonRepo はPostgreSQLを使用した人物リポジトリ。
type PostgresPersonRepo struct {
	db *sql.DB
}

// NewPostgresPersonRepo はPostgresPersonRepoを生成する。
func NewPostgresPersonRepo(db *sql.DB) *PostgresPersonRepo {
	return &PostgresPersonRepo{db: db}
}

// ListAll は全人物を取得する。
func (r *PostgresPersonRepo) ListAll(ctx context.Context) ([]*model.Person, error) {
	rows, err := r.db.QueryContext(ctx, selectPersonColumns)
	if err != nil {
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}
	defer rows.Close()

	var persons []*model.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		persons = append(persons, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate persons: %w", err)
	}

	return persons, nil
}

// FindByID は指定IDの人物を取得する。見つからない場合はnilを返す。
func (r *PostgresPersonRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Person, error) {
	row := r.db.QueryRowContext(ctx, selectPersonColumns+` WHERE p.id = $1`, id)

	p, err := scanPerson(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find person by ID: %w", err)
	}

	return p, nil
}

// FindMatching はpredicateを満たす人物のみを取得する。
// 全件を読み込んだ上でアプリケーション側で評価する。
func (r *PostgresPersonRepo) FindMatching(ctx context.Context, predicate PersonPredicate) ([]*model.Person, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return filterPersons(all, predicate), nil
}

// filterPersons はpredicateを満たす人物を元の順序のまま返す。
func filterPersons(persons []*model.Person, predicate PersonPredicate) []*model.Person {
	matched := make([]*model.Person, 0, len(persons))
	for _, p := range persons {
		if predicate(p) {
			matched = append(matched, p)
		}
	}
	return matched
}

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanPerson は1行分の人物データを読み取る。
func scanPerson(s rowScanner) (*model.Person, error) {
	var (
		p           model.Person
		dateOfBirth sql.NullTime
		gender      sql.NullString
		countryID   uuid.NullUUID
		countryName sql.NullString
	)

	if err := s.Scan(
		&p.ID, &p.PersonName, &p.Email, &dateOfBirth, &gender,
		&countryID, &countryName, &p.Address, &p.ReceiveNewsLetters,
	); err != nil {
		return nil, err
	}

	if dateOfBirth.Valid {
		dob := dateOfBirth.Time
		p.DateOfBirth = &dob
	}
	p.Gender = model.Gender(gender.String)
	if countryID.Valid {
		id := countryID.UUID
		p.CountryID = &id
		// LEFT JOIN先が存在する場合のみ参照を設定する
		if countryName.Valid {
			p.Country = &model.Country{ID: id, CountryName: countryName.String}
		}
	}

	return &p, nil
}

// compile-time interface check
var _ PersonRepository = (*PostgresPersonRepo)(nil)
