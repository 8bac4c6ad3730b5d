package handler

import (
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"

	"github.com/fleetcarbon/compliance-backend/internal/domain"
	"github.com/fleetcarbon/compliance-backend/internal/numeric"
)

const companyNotFound = "company not found"

type createCompanyRequest struct {
	Name              string           `json:"name"`
	Country           string           `json:"country"`
	AnnualTurnover    decimal.Decimal  `json:"annual_turnover"`
	BaselineEmissions *decimal.Decimal `json:"baseline_emissions,omitempty"`
}

type companyResponse struct {
	ID                openapi_types.UUID `json:"id"`
	Name              string             `json:"name"`
	Country           string             `json:"country"`
	AnnualTurnover    decimal.Decimal    `json:"annual_turnover"`
	ESGScore          decimal.Decimal    `json:"esg_score"`
	BaselineEmissions *decimal.Decimal   `json:"baseline_emissions"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// CreateCompany handles POST /companies.
func (s *Server) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var body createCompanyRequest
	if !decodeBody(w, r, &body, false) {
		return
	}
	created, err := s.svc.Companies.Create(r.Context(), domain.Company{
		Name:              body.Name,
		Country:           body.Country,
		AnnualTurnover:    body.AnnualTurnover,
		BaselineEmissions: body.BaselineEmissions,
	})
	if err != nil {
		s.fail(w, r, err, companyNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, companyToResponse(created))
}

// ListCompanies handles GET /companies.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListCompanies(w http.ResponseWriter, r *http.Request) {
	params, ok := pagination(w, r)
	if !ok {
		return
	}
	companies, total, err := s.svc.Companies.List(r.Context(), params)
	if err != nil {
		s.fail(w, r, err, companyNotFound)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[companyResponse]{
		Data:       mapSlice(companies, companyToResponse),
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: total},
	})
}

// GetCompany handles GET /companies/{id}.
func (s *Server) GetCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	company, err := s.svc.Companies.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, companyNotFound)
		return
	}
	writeJSON(w, http.StatusOK, companyToResponse(company))
}

// RecomputeESG handles POST /companies/{id}/esg-score.
func (s *Server) RecomputeESG(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	company, err := s.svc.Companies.RecomputeESG(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, companyNotFound)
		return
	}
	writeJSON(w, http.StatusOK, companyToResponse(company))
}

// GetAnalytics handles GET /companies/{id}/analytics?threshold_kg=.
func (s *Server) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	threshold, ok := queryDecimal(w, r, "threshold_kg")
	if !ok {
		return
	}
	report, err := s.svc.Analytics.Analyze(r.Context(), id, threshold)
	if err != nil {
		s.fail(w, r, err, companyNotFound)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type detectAnomaliesRequest struct {
	Contamination       *float64 `json:"contamination,omitempty"`
	ThresholdPercentage *float64 `json:"threshold_percentage,omitempty"`
}

// DetectAnomalies handles POST /companies/{id}/anomalies/detect.
// The body is optional; omitted fields take the detector defaults.
// Too few trips is a 200 with success=false, not an error.
func (s *Server) DetectAnomalies(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body detectAnomaliesRequest
	if !decodeBody(w, r, &body, true) {
		return
	}
	opts := s.svc.Detection.DefaultOptions()
	if body.Contamination != nil {
		opts.Contamination = *body.Contamination
	}
	if body.ThresholdPercentage != nil {
		opts.ThresholdPercentage = *body.ThresholdPercentage
	}

	report, err := s.svc.Detection.Detect(r.Context(), id, opts)
	if err != nil {
		s.fail(w, r, err, companyNotFound)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func companyToResponse(c domain.Company) companyResponse {
	return companyResponse{
		ID:                c.ID,
		Name:              c.Name,
		Country:           c.Country,
		AnnualTurnover:    c.AnnualTurnover,
		ESGScore:          numeric.FromFloat(c.ESGScore, numeric.ScorePlaces),
		BaselineEmissions: c.BaselineEmissions,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}
