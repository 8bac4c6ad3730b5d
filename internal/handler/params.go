package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"

	"github.com/fleetcarbon/compliance-backend/internal/domain"
)

// pathID binds the {id} path parameter. A malformed UUID writes a 422 and
// returns false.
func pathID(w http.ResponseWriter, r *http.Request) (openapi_types.UUID, bool) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		requestError(w, "invalid id: must be a UUID")
		return id, false
	}
	return id, true
}

// queryParam binds an optional form-style query parameter into dst, which
// must be a pointer to a pointer.
func queryParam(w http.ResponseWriter, r *http.Request, name string, dst any) bool {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dst); err != nil {
		requestError(w, "invalid query parameter "+name)
		return false
	}
	return true
}

// pagination reads ?page= and ?limit=.
func pagination(w http.ResponseWriter, r *http.Request) (domain.PaginationParams, bool) {
	var page, limit *int
	if !queryParam(w, r, "page", &page) || !queryParam(w, r, "limit", &limit) {
		return domain.PaginationParams{}, false
	}
	return domain.NewPaginationParams(page, limit), true
}

// queryDecimal parses an optional decimal query parameter.
func queryDecimal(w http.ResponseWriter, r *http.Request, name string) (*decimal.Decimal, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		requestError(w, "invalid query parameter "+name+": must be a number")
		return nil, false
	}
	return &d, true
}

// Pagination is the paging envelope of list responses.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

type listResponse[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type dataResponse[T any] struct {
	Data []T `json:"data"`
}

func mapSlice[S, T any](in []S, f func(S) T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}
