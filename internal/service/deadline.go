package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/fleetcarbon/compliance-backend/internal/deadline"
	"github.com/fleetcarbon/compliance-backend/internal/domain"
	"github.com/fleetcarbon/compliance-backend/internal/metrics"
	"github.com/fleetcarbon/compliance-backend/internal/repo"
)

// UpcomingListDays is the horizon of the deadline listing endpoint. It is
// wider than the alerting horizon.
const UpcomingListDays = 90

const (
	defaultRegulation   = "CSRD"
	defaultApplicableTo = "All Nordic Companies"
)

// EvaluationResult summarizes one deadline evaluation.
type EvaluationResult struct {
	AlertsCreated     int `json:"alerts_created"`
	UpcomingDeadlines int `json:"upcoming_deadlines"`
}

// DeadlineService manages compliance deadlines and raises alerts as they
// approach.
type DeadlineService struct {
	deadlines repo.DeadlineRepo
	companies repo.CompanyRepo
	alerts    repo.AlertRepo
	clock     clockwork.Clock
	metrics   *metrics.Metrics
	log       *slog.Logger
}

// NewDeadlineService constructs a DeadlineService. A nil clock means the real clock.
func NewDeadlineService(
	deadlines repo.DeadlineRepo,
	companies repo.CompanyRepo,
	alerts repo.AlertRepo,
	clock clockwork.Clock,
	m *metrics.Metrics,
	log *slog.Logger,
) *DeadlineService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = slog.Default()
	}
	return &DeadlineService{deadlines: deadlines, companies: companies, alerts: alerts, clock: clock, metrics: m, log: log}
}

// Create validates and stores a deadline.
func (s *DeadlineService) Create(ctx context.Context, d domain.Deadline) (domain.Deadline, error) {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return domain.Deadline{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if d.Date.IsZero() {
		return domain.Deadline{}, fmt.Errorf("%w: deadline_date is required", domain.ErrValidation)
	}
	if strings.TrimSpace(d.Regulation) == "" {
		d.Regulation = defaultRegulation
	}
	if strings.TrimSpace(d.ApplicableTo) == "" {
		d.ApplicableTo = defaultApplicableTo
	}
	return s.deadlines.Create(ctx, d)
}

// List returns every deadline ordered by date.
func (s *DeadlineService) List(ctx context.Context) ([]domain.Deadline, error) {
	return s.deadlines.List(ctx)
}

// Upcoming returns deadlines in the next UpcomingListDays days.
func (s *DeadlineService) Upcoming(ctx context.Context) ([]domain.Deadline, error) {
	return s.deadlines.Upcoming(ctx, s.clock.Now(), UpcomingListDays)
}

// Today is the reference date used for days-until in responses.
func (s *DeadlineService) Today() time.Time {
	return domain.TruncateDay(s.clock.Now())
}

// Evaluate raises DEADLINE alerts for one company, or for all companies when
// companyID is nil. An alert is skipped when an unresolved one for the same
// deadline was raised for that company within deadline.DedupWindow.
func (s *DeadlineService) Evaluate(ctx context.Context, companyID *uuid.UUID) (EvaluationResult, error) {
	var companies []uuid.UUID
	if companyID != nil {
		if _, err := s.companies.GetByID(ctx, *companyID); err != nil {
			return EvaluationResult{}, err
		}
		companies = []uuid.UUID{*companyID}
	} else {
		ids, err := s.companies.ListIDs(ctx)
		if err != nil {
			return EvaluationResult{}, fmt.Errorf("service.DeadlineService.Evaluate: %w", err)
		}
		companies = ids
	}

	now := s.clock.Now()
	upcoming, err := s.deadlines.Upcoming(ctx, now, deadline.HorizonDays)
	if err != nil {
		return EvaluationResult{}, fmt.Errorf("service.DeadlineService.Evaluate: %w", err)
	}

	plan := deadline.Evaluate(now, upcoming, companies)
	res := EvaluationResult{UpcomingDeadlines: len(plan.Upcoming)}

	for _, c := range plan.Candidates {
		alert := c.Alert()
		alert.TriggeredAt = now
		created, ok, err := s.alerts.CreateIfAbsent(ctx, alert, c.Match(now))
		if err != nil {
			return res, fmt.Errorf("service.DeadlineService.Evaluate: %w", err)
		}
		if !ok {
			continue
		}
		res.AlertsCreated++
		s.metrics.AlertCreated(string(created.Kind), string(created.Severity))
		s.log.Info("deadline alert created",
			"company_id", c.CompanyID,
			"deadline", c.Deadline.Name,
			"days_until", c.DaysUntil,
			"severity", string(c.Severity),
		)
	}
	return res, nil
}
