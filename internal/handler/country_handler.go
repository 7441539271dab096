package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hitoshi/contactsman/internal/middleware"
	"github.com/hitoshi/contactsman/internal/model"
)

// CountryServiceInterface は国ハンドラーが必要とするサービスインターフェース。
type CountryServiceInterface interface {
	ListCountries(ctx context.Context) ([]countryResponse, error)
	GetCountry(ctx context.Context, id uuid.UUID) (*countryResponse, error)
}

// CountryHandler は国マスタのHTTPハンドラー。
type CountryHandler struct {
	service CountryServiceInterface
}

// NewCountryHandler はCountryHandlerを生成する。
func NewCountryHandler(service CountryServiceInterface) *CountryHandler {
	return &CountryHandler{service: service}
}

// countryResponse は国のレスポンス。
type countryResponse struct {
	ID          string `json:"id"`
	CountryName string `json:"country_name"`
}

// ListCountries は国一覧を取得する。
// GET /api/countries
func (h *CountryHandler) ListCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := h.service.ListCountries(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, countries)
}

// GetCountry は国を1件取得する。
// GET /api/countries/{id}
func (h *CountryHandler) GetCountry(w http.ResponseWriter, r *http.Request) {
	rawID := chi.URLParam(r, "id")
	id, err := uuid.Parse(rawID)
	if err != nil {
		middleware.WriteErrorResponse(w, r, http.StatusBadRequest, model.NewInvalidCountryIDError(rawID))
		return
	}

	c, err := h.service.GetCountry(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if c == nil {
		middleware.WriteErrorResponse(w, r, http.StatusNotFound, model.NewCountryNotFoundError(rawID))
		return
	}

	writeJSON(w, http.StatusOK, c)
}
