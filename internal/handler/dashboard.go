package handler

import (
	"net/http"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/fleetcarbon/compliance-backend/internal/service"
)

type dashboardResponse struct {
	service.Dashboard
	RecentAlerts []alertResponse `json:"recent_alerts"`
}

// GetDashboardMetrics handles GET /dashboard/metrics?company_id=.
func (s *Server) GetDashboardMetrics(w http.ResponseWriter, r *http.Request) {
	var companyID *openapi_types.UUID
	if !queryParam(w, r, "company_id", &companyID) {
		return
	}
	if companyID == nil {
		requestError(w, "company_id is required")
		return
	}
	d, err := s.svc.Dashboard.Metrics(r.Context(), *companyID)
	if err != nil {
		s.fail(w, r, err, companyNotFound)
		return
	}
	writeJSON(w, http.StatusOK, dashboardResponse{
		Dashboard:    d,
		RecentAlerts: mapSlice(d.Alerts, alertToResponse),
	})
}
