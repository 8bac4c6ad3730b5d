package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/fleetcarbon/compliance-backend/internal/domain"
	"github.com/fleetcarbon/compliance-backend/internal/emissions"
)

type calculateEmissionsRequest struct {
	VehicleClass domain.VehicleClass `json:"vehicle_class"`
	DistanceKm   decimal.Decimal     `json:"distance_km"`
	WeightTonnes decimal.Decimal     `json:"weight_tonnes"`
}

type calculateEmissionsResponse struct {
	VehicleClass domain.VehicleClass `json:"vehicle_class"`
	DistanceKm   decimal.Decimal     `json:"distance_km"`
	WeightTonnes decimal.Decimal     `json:"weight_tonnes"`
	FactorPerKm  decimal.Decimal     `json:"factor_per_km"`
	EmissionsKg  decimal.Decimal     `json:"emissions_kg"`
}

// CalculateEmissions handles POST /emissions/calculate.
// Unknown or missing classes are priced with the diesel factor.
func (s *Server) CalculateEmissions(w http.ResponseWriter, r *http.Request) {
	var body calculateEmissionsRequest
	if !decodeBody(w, r, &body, false) {
		return
	}
	if body.DistanceKm.IsNegative() || body.WeightTonnes.IsNegative() {
		requestError(w, "distance_km and weight_tonnes must not be negative")
		return
	}
	if !body.VehicleClass.Valid() {
		body.VehicleClass = domain.VehicleDiesel
	}
	writeJSON(w, http.StatusOK, calculateEmissionsResponse{
		VehicleClass: body.VehicleClass,
		DistanceKm:   body.DistanceKm,
		WeightTonnes: body.WeightTonnes,
		FactorPerKm:  emissions.Factor(body.VehicleClass),
		EmissionsKg:  emissions.Calculate(body.VehicleClass, body.DistanceKm, body.WeightTonnes),
	})
}
