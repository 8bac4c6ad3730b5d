package handler

import (
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"

	"github.com/fleetcarbon/compliance-backend/internal/domain"
)

type createVehicleRequest struct {
	CompanyID        openapi_types.UUID  `json:"company_id"`
	Registration     string              `json:"registration"`
	VehicleClass     domain.VehicleClass `json:"vehicle_class"`
	CapacityTonnes   decimal.Decimal     `json:"capacity_tonnes"`
	RegistrationYear *int                `json:"registration_year,omitempty"`
}

type vehicleResponse struct {
	ID               openapi_types.UUID  `json:"id"`
	CompanyID        openapi_types.UUID  `json:"company_id"`
	Registration     string              `json:"registration"`
	VehicleClass     domain.VehicleClass `json:"vehicle_class"`
	CapacityTonnes   decimal.Decimal     `json:"capacity_tonnes"`
	RegistrationYear int                 `json:"registration_year"`
	CreatedAt        time.Time           `json:"created_at"`
}

// CreateVehicle handles POST /vehicles.
func (s *Server) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var body createVehicleRequest
	if !decodeBody(w, r, &body, false) {
		return
	}
	v := domain.Vehicle{
		CompanyID:      body.CompanyID,
		Registration:   body.Registration,
		Class:          body.VehicleClass,
		CapacityTonnes: body.CapacityTonnes,
	}
	if body.RegistrationYear != nil {
		v.RegistrationYear = *body.RegistrationYear
	}
	created, err := s.svc.Vehicles.Create(r.Context(), v)
	if err != nil {
		s.fail(w, r, err, companyNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, vehicleToResponse(created))
}

// ListVehicles handles GET /companies/{id}/vehicles.
func (s *Server) ListVehicles(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	vehicles, err := s.svc.Vehicles.ListByCompany(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, companyNotFound)
		return
	}
	writeJSON(w, http.StatusOK, dataResponse[vehicleResponse]{Data: mapSlice(vehicles, vehicleToResponse)})
}

func vehicleToResponse(v domain.Vehicle) vehicleResponse {
	return vehicleResponse{
		ID:               v.ID,
		CompanyID:        v.CompanyID,
		Registration:     v.Registration,
		VehicleClass:     v.Class,
		CapacityTonnes:   v.CapacityTonnes,
		RegistrationYear: v.RegistrationYear,
		CreatedAt:        v.CreatedAt,
	}
}
