package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/hitoshi/contactsman/internal/model"
)

// PostgresCountryRepo はPostgreSQLを使用した国マスタリポジトリ。
type PostgresCountryRepo struct {
	db *sql.DB
}

// NewPostgresCountryRepo はPostgresCountryRepoを生成する。
func NewPostgresCountryRepo(db *sql.DB) *PostgresCountryRepo {
	return &PostgresCountryRepo{db: db}
}

// ListAll は全ての国を取得する。
func (r *PostgresCountryRepo) ListAll(ctx context.Context) ([]*model.Country, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, country_name FROM countries`)
	if err != nil {
		return nil, fmt.Errorf("failed to list countries: %w", err)
	}
	defer rows.Close()

	var countries []*model.Country
	for rows.Next() {
		c := &model.Country{}
		if err := rows.Scan(&c.ID, &c.CountryName); err != nil {
			return nil, fmt.Errorf("failed to scan country: %w", err)
		}
		countries = append(countries, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate countries: %w", err)
	}

	return countries, nil
}

// FindByID は指定IDの国を取得する。見つからない場合はnilを返す。
func (r *PostgresCountryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Country, error) {
	c := &model.Country{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, country_name FROM countries WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.CountryName)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find country by ID: %w", err)
	}

	return c, nil
}

// compile-time interface check
var _ CountryRepository = (*PostgresCountryRepo)(nil)
