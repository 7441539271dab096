package handler

import (
	"bytes"
	"context"

	"github.com/google/uuid"

	"github.com/hitoshi/contactsman/internal/country"
	"github.com/hitoshi/contactsman/internal/person"
)

// PersonServiceAdapter は person.Service を PersonServiceInterface に適合させるアダプタ。
type PersonServiceAdapter struct {
	svc *person.Service
}

// NewPersonServiceAdapter はPersonServiceAdapterを生成する。
func NewPersonServiceAdapter(svc *person.Service) *PersonServiceAdapter {
	return &PersonServiceAdapter{svc: svc}
}

// ListPersons は絞り込み後に並び替えた人物一覧をhandlerレスポンス型で返す。
func (a *PersonServiceAdapter) ListPersons(ctx context.Context, q personQuery) ([]personResponse, error) {
	views, err := a.svc.GetFiltered(ctx, q.SearchString, q.SearchBy)
	if err != nil {
		return nil, err
	}
	views = a.svc.GetSorted(views, q.SortBy, person.SortOrder(q.SortOrder))

	results := make([]personResponse, len(views))
	for i, v := range views {
		results[i] = toPersonResponse(v)
	}
	return results, nil
}

// GetPerson は人物をhandlerレスポンス型で返す。存在しない場合はnilを返す。
func (a *PersonServiceAdapter) GetPerson(ctx context.Context, id uuid.UUID) (*personResponse, error) {
	v, err := a.svc.GetPersonByID(ctx, &id)
	if err != nil || v == nil {
		return nil, err
	}
	resp := toPersonResponse(*v)
	return &resp, nil
}

// ExportPersons は全人物のスプレッドシートを返す。
func (a *PersonServiceAdapter) ExportPersons(ctx context.Context) (*bytes.Reader, error) {
	return a.svc.ExportSpreadsheet(ctx)
}

// CountryServiceAdapter は country.Service を CountryServiceInterface に適合させるアダプタ。
type CountryServiceAdapter struct {
	svc *country.Service
}

// NewCountryServiceAdapter はCountryServiceAdapterを生成する。
func NewCountryServiceAdapter(svc *country.Service) *CountryServiceAdapter {
	return &CountryServiceAdapter{svc: svc}
}

// ListCountries は国一覧をhandlerレスポンス型で返す。
func (a *CountryServiceAdapter) ListCountries(ctx context.Context) ([]countryResponse, error) {
	countries, err := a.svc.ListCountries(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]countryResponse, len(countries))
	for i, c := range countries {
		results[i] = countryResponse{ID: c.ID.String(), CountryName: c.CountryName}
	}
	return results, nil
}

// GetCountry は国をhandlerレスポンス型で返す。存在しない場合はnilを返す。
func (a *CountryServiceAdapter) GetCountry(ctx context.Context, id uuid.UUID) (*countryResponse, error) {
	c, err := a.svc.GetCountryByID(ctx, &id)
	if err != nil || c == nil {
		return nil, err
	}
	return &countryResponse{ID: c.ID.String(), CountryName: c.CountryName}, nil
}
