package handler

import (
	"errors"
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/fleetcarbon/compliance-backend/internal/domain"
)

type createDeadlineRequest struct {
	Name         string              `json:"name"`
	DeadlineDate *openapi_types.Date `json:"deadline_date"`
	Regulation   string              `json:"regulation,omitempty"`
	Description  string              `json:"description,omitempty"`
	ApplicableTo string              `json:"applicable_to,omitempty"`
}

type deadlineResponse struct {
	ID           openapi_types.UUID `json:"id"`
	Name         string             `json:"name"`
	DeadlineDate openapi_types.Date `json:"deadline_date"`
	DaysUntil    int                `json:"days_until"`
	Regulation   string             `json:"regulation"`
	Description  string             `json:"description"`
	ApplicableTo string             `json:"applicable_to"`
	CreatedAt    time.Time          `json:"created_at"`
}

type evaluateDeadlinesRequest struct {
	CompanyID *openapi_types.UUID `json:"company_id,omitempty"`
}

// ListDeadlines handles GET /deadlines.
func (s *Server) ListDeadlines(w http.ResponseWriter, r *http.Request) {
	deadlines, err := s.svc.Deadlines.List(r.Context())
	if err != nil {
		s.fail(w, r, err, "deadline not found")
		return
	}
	s.writeDeadlines(w, deadlines)
}

// ListUpcomingDeadlines handles GET /deadlines/upcoming.
func (s *Server) ListUpcomingDeadlines(w http.ResponseWriter, r *http.Request) {
	deadlines, err := s.svc.Deadlines.Upcoming(r.Context())
	if err != nil {
		s.fail(w, r, err, "deadline not found")
		return
	}
	s.writeDeadlines(w, deadlines)
}

// CreateDeadline handles POST /deadlines.
func (s *Server) CreateDeadline(w http.ResponseWriter, r *http.Request) {
	var body createDeadlineRequest
	if !decodeBody(w, r, &body, false) {
		return
	}
	d, err := requestToDeadline(body)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	created, err := s.svc.Deadlines.Create(r.Context(), d)
	if err != nil {
		s.fail(w, r, err, "deadline not found")
		return
	}
	writeJSON(w, http.StatusCreated, deadlineToResponse(created, s.svc.Deadlines.Today()))
}

// EvaluateDeadlines handles POST /deadlines/evaluate. Without a company_id
// every company is evaluated.
func (s *Server) EvaluateDeadlines(w http.ResponseWriter, r *http.Request) {
	var body evaluateDeadlinesRequest
	if !decodeBody(w, r, &body, true) {
		return
	}
	res, err := s.svc.Deadlines.Evaluate(r.Context(), body.CompanyID)
	if err != nil {
		s.fail(w, r, err, companyNotFound)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) writeDeadlines(w http.ResponseWriter, deadlines []domain.Deadline) {
	today := s.svc.Deadlines.Today()
	data := make([]deadlineResponse, len(deadlines))
	for i, d := range deadlines {
		data[i] = deadlineToResponse(d, today)
	}
	writeJSON(w, http.StatusOK, dataResponse[deadlineResponse]{Data: data})
}

func requestToDeadline(body createDeadlineRequest) (domain.Deadline, error) {
	if body.DeadlineDate == nil {
		return domain.Deadline{}, errors.New("deadline_date is required")
	}
	return domain.Deadline{
		Name:         body.Name,
		Date:         body.DeadlineDate.Time,
		Regulation:   body.Regulation,
		Description:  body.Description,
		ApplicableTo: body.ApplicableTo,
	}, nil
}

func deadlineToResponse(d domain.Deadline, today time.Time) deadlineResponse {
	return deadlineResponse{
		ID:           d.ID,
		Name:         d.Name,
		DeadlineDate: openapi_types.Date{Time: d.Date},
		DaysUntil:    d.DaysUntil(today),
		Regulation:   d.Regulation,
		Description:  d.Description,
		ApplicableTo: d.ApplicableTo,
		CreatedAt:    d.CreatedAt,
	}
}
