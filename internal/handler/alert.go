package handler

import (
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/fleetcarbon/compliance-backend/internal/domain"
)

type alertResponse struct {
	ID          openapi_types.UUID `json:"id"`
	CompanyID   openapi_types.UUID `json:"company_id"`
	AlertType   domain.AlertKind   `json:"alert_type"`
	Severity    domain.Severity    `json:"severity"`
	Message     string             `json:"message"`
	Details     map[string]any     `json:"details"`
	TriggeredAt time.Time          `json:"triggered_at"`
	Resolved    bool               `json:"resolved"`
	ResolvedAt  *time.Time         `json:"resolved_at"`
}

// ListAlerts handles GET /alerts?company_id=&kind=&severity=&resolved=.
func (s *Server) ListAlerts(w http.ResponseWriter, r *http.Request) {
	params, ok := pagination(w, r)
	if !ok {
		return
	}
	var f domain.AlertFilter
	var kind, severity *string
	if !queryParam(w, r, "company_id", &f.CompanyID) ||
		!queryParam(w, r, "kind", &kind) ||
		!queryParam(w, r, "severity", &severity) ||
		!queryParam(w, r, "resolved", &f.Resolved) {
		return
	}
	if kind != nil {
		f.Kind = domain.AlertKind(*kind)
	}
	if severity != nil {
		f.Severity = domain.Severity(*severity)
	}

	alerts, total, err := s.svc.Alerts.List(r.Context(), f, params)
	if err != nil {
		s.fail(w, r, err, "alert not found")
		return
	}
	writeJSON(w, http.StatusOK, listResponse[alertResponse]{
		Data:       mapSlice(alerts, alertToResponse),
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: total},
	})
}

// ResolveAlert handles POST /alerts/{id}/resolve.
func (s *Server) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	alert, err := s.svc.Alerts.Resolve(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "alert not found")
		return
	}
	writeJSON(w, http.StatusOK, alertToResponse(alert))
}

func alertToResponse(a domain.Alert) alertResponse {
	details := a.Details
	if details == nil {
		details = map[string]any{}
	}
	return alertResponse{
		ID:          a.ID,
		CompanyID:   a.CompanyID,
		AlertType:   a.Kind,
		Severity:    a.Severity,
		Message:     a.Message,
		Details:     details,
		TriggeredAt: a.TriggeredAt,
		Resolved:    a.Resolved,
		ResolvedAt:  a.ResolvedAt,
	}
}
