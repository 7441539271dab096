package handler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hitoshi/contactsman/internal/middleware"
	"github.com/hitoshi/contactsman/internal/model"
	"github.com/hitoshi/contactsman/internal/person"
)

// 一覧のデフォルト並び順
const (
	defaultSortBy    = string(person.FieldPersonName)
	defaultSortOrder = string(person.SortOrderAsc)
)

// exportFileName はエクスポートのダウンロードファイル名。
const exportFileName = "persons.xlsx"

// PersonServiceInterface は人物ハンドラーが必要とするサービスインターフェース。
type PersonServiceInterface interface {
	// ListPersons は絞り込み・並び替え後の人物一覧を返す。
	ListPersons(ctx context.Context, q personQuery) ([]personResponse, error)
	// GetPerson は人物を返す。存在しない場合は(nil, nil)を返す。
	GetPerson(ctx context.Context, id uuid.UUID) (*personResponse, error)
	// ExportPersons は全人物のスプレッドシートを返す。
	ExportPersons(ctx context.Context) (*bytes.Reader, error)
}

// PersonHandler は人物のHTTPハンドラー。
type PersonHandler struct {
	service PersonServiceInterface
}

// NewPersonHandler はPersonHandlerを生成する。
func NewPersonHandler(service PersonServiceInterface) *PersonHandler {
	return &PersonHandler{service: service}
}

// --- リクエスト/レスポンス型 ---

// personQuery は一覧取得のクエリパラメータ。
// SearchStringはパラメータ自体が省略された場合にnilとなる。
type personQuery struct {
	SearchBy     string
	SearchString *string
	SortBy       string
	SortOrder    string
}

// personResponse は人物のレスポンス。
type personResponse struct {
	ID                 string  `json:"id"`
	PersonName         string  `json:"person_name"`
	Email              string  `json:"email"`
	DateOfBirth        *string `json:"date_of_birth"` // YYYY-MM-DD
	Age                *int    `json:"age"`
	Gender             string  `json:"gender"`
	Country            string  `json:"country"`
	Address            string  `json:"address"`
	ReceiveNewsLetters bool    `json:"receive_news_letters"`
}

// toPersonResponse はperson.ViewからAPIレスポンスに変換する。
func toPersonResponse(v person.View) personResponse {
	resp := personResponse{
		ID:                 v.ID.String(),
		PersonName:         v.PersonName,
		Email:              v.Email,
		Age:                v.Age,
		Gender:             v.Gender,
		Country:            v.Country,
		Address:            v.Address,
		ReceiveNewsLetters: v.ReceiveNewsLetters,
	}
	if v.DateOfBirth != nil {
		dob := v.DateOfBirth.Format("2006-01-02")
		resp.DateOfBirth = &dob
	}
	return resp
}

// parsePersonQuery はクエリパラメータを解析する。並び順の省略時は名前の昇順とする。
func parsePersonQuery(r *http.Request) personQuery {
	values := r.URL.Query()

	q := personQuery{
		SearchBy:  values.Get("searchBy"),
		SortBy:    values.Get("sortBy"),
		SortOrder: values.Get("sortOrder"),
	}
	if _, ok := values["searchString"]; ok {
		s := values.Get("searchString")
		q.SearchString = &s
	}
	if q.SortBy == "" {
		q.SortBy = defaultSortBy
	}
	if q.SortOrder == "" {
		q.SortOrder = defaultSortOrder
	}
	return q
}

// ListPersons は人物一覧を取得する。
// GET /api/persons?searchBy=&searchString=&sortBy=&sortOrder=
func (h *PersonHandler) ListPersons(w http.ResponseWriter, r *http.Request) {
	persons, err := h.service.ListPersons(r.Context(), parsePersonQuery(r))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, persons)
}

// GetPerson は人物を1件取得する。
// GET /api/persons/{id}
func (h *PersonHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	rawID := chi.URLParam(r, "id")
	id, err := uuid.Parse(rawID)
	if err != nil {
		middleware.WriteErrorResponse(w, r, http.StatusBadRequest, model.NewInvalidPersonIDError(rawID))
		return
	}

	p, err := h.service.GetPerson(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if p == nil {
		middleware.WriteErrorResponse(w, r, http.StatusNotFound, model.NewPersonNotFoundError(rawID))
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// ExportPersons は全人物をxlsxファイルとしてダウンロードさせる。
// GET /api/persons/export
func (h *PersonHandler) ExportPersons(w http.ResponseWriter, r *http.Request) {
	file, err := h.service.ExportPersons(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", person.ExportContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFileName+`"`)
	w.Header().Set("Content-Length", strconv.FormatInt(file.Size(), 10))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, file); err != nil {
		slog.WarnContext(r.Context(), "failed to write export", slog.String("error", err.Error()))
	}
}
