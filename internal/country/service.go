// Package country は国マスタの参照機能を提供する。
package country

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/hitoshi/contactsman/internal/model"
	"github.com/hitoshi/contactsman/internal/repository"
)

// Service は国マスタの参照サービス。
type Service struct {
	countryRepo repository.CountryRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(countryRepo repository.CountryRepository) *Service {
	return &Service{countryRepo: countryRepo}
}

// ListCountries は全ての国を国名の昇順（大文字小文字を区別しない）で返す。
func (s *Service) ListCountries(ctx context.Context) ([]model.Country, error) {
	countries, err := s.countryRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]model.Country, len(countries))
	for i, c := range countries {
		result[i] = *c
	}
	slices.SortStableFunc(result, func(a, b model.Country) int {
		return strings.Compare(strings.ToUpper(a.CountryName), strings.ToUpper(b.CountryName))
	})

	return result, nil
}

// GetCountryByID はIDで国を取得する。
// idがnilまたはuuid.Nilの場合はINVALID_ARGUMENTを返し、存在しない場合は(nil, nil)を返す。
func (s *Service) GetCountryByID(ctx context.Context, id *uuid.UUID) (*model.Country, error) {
	if id == nil || *id == uuid.Nil {
		return nil, model.NewInvalidArgumentError("国ID")
	}
	return s.countryRepo.FindByID(ctx, *id)
}
