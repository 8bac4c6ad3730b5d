package handler

import (
	"errors"
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"

	"github.com/fleetcarbon/compliance-backend/internal/domain"
	"github.com/fleetcarbon/compliance-backend/internal/numeric"
)

type createTripRequest struct {
	CompanyID     openapi_types.UUID  `json:"company_id"`
	VehicleID     openapi_types.UUID  `json:"vehicle_id"`
	TripDate      *openapi_types.Date `json:"trip_date"`
	DistanceKm    decimal.Decimal     `json:"distance_km"`
	WeightTonnes  decimal.Decimal     `json:"weight_tonnes"`
	InvoiceSource *string             `json:"invoice_source,omitempty"`
}

type tripResponse struct {
	ID            openapi_types.UUID  `json:"id"`
	CompanyID     openapi_types.UUID  `json:"company_id"`
	VehicleID     openapi_types.UUID  `json:"vehicle_id"`
	VehicleClass  domain.VehicleClass `json:"vehicle_class"`
	TripDate      openapi_types.Date  `json:"trip_date"`
	DistanceKm    decimal.Decimal     `json:"distance_km"`
	WeightTonnes  decimal.Decimal     `json:"weight_tonnes"`
	EmissionsKg   decimal.Decimal     `json:"emissions_kg"`
	IsAnomaly     bool                `json:"is_anomaly"`
	AnomalyScore  decimal.NullDecimal `json:"anomaly_score"`
	InvoiceSource *string             `json:"invoice_source,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// CreateTrip handles POST /trips. Emissions are computed server-side; any
// emissions value in the body is rejected as an unknown field.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body createTripRequest
	if !decodeBody(w, r, &body, false) {
		return
	}
	trip, err := requestToTrip(body)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	created, err := s.svc.Trips.Create(r.Context(), trip)
	if err != nil {
		s.fail(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// GetTrip handles GET /trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	trip, err := s.svc.Trips.GetByID(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// ListCompanyTrips handles GET /companies/{id}/trips?anomalous=.
func (s *Server) ListCompanyTrips(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var f domain.TripFilter
	if !queryParam(w, r, "anomalous", &f.Anomalous) {
		return
	}
	trips, err := s.svc.Trips.ListByCompany(r.Context(), id, f)
	if err != nil {
		s.fail(w, r, err, companyNotFound)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse[tripResponse]{Data: mapSlice(trips, tripToResponse)})
}

// --- mapping helpers --------------------------------------------------------

// requestToTrip converts a createTripRequest into a domain.Trip.
// Returns an error if required fields are missing.
func requestToTrip(body createTripRequest) (domain.Trip, error) {
	if body.TripDate == nil {
		return domain.Trip{}, errors.New("trip_date is required")
	}
	t := domain.Trip{
		CompanyID:    body.CompanyID,
		VehicleID:    body.VehicleID,
		TripDate:     body.TripDate.Time,
		DistanceKm:   body.DistanceKm,
		WeightTonnes: body.WeightTonnes,
	}
	if body.InvoiceSource != nil {
		t.InvoiceSource = *body.InvoiceSource
	}
	return t, nil
}

func tripToResponse(t domain.Trip) tripResponse {
	resp := tripResponse{
		ID:           t.ID,
		CompanyID:    t.CompanyID,
		VehicleID:    t.VehicleID,
		VehicleClass: t.VehicleClass,
		TripDate:     openapi_types.Date{Time: t.TripDate},
		DistanceKm:   t.DistanceKm,
		WeightTonnes: t.WeightTonnes,
		EmissionsKg:  t.EmissionsKg,
		IsAnomaly:    t.IsAnomaly,
		AnomalyScore: numeric.NullFromFloat(t.AnomalyScore, numeric.ScorePlaces),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
	if t.InvoiceSource != "" {
		resp.InvoiceSource = &t.InvoiceSource
	}
	return resp
}
