package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/fleetcarbon/compliance-backend/internal/domain"
	"github.com/fleetcarbon/compliance-backend/internal/repo"
)

// AlertService lists and resolves compliance alerts.
type AlertService struct {
	alerts repo.AlertRepo
	clock  clockwork.Clock
}

// NewAlertService constructs an AlertService. A nil clock means the real clock.
func NewAlertService(alerts repo.AlertRepo, clock clockwork.Clock) *AlertService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &AlertService{alerts: alerts, clock: clock}
}

// List returns one page of alerts matching f.
func (s *AlertService) List(ctx context.Context, f domain.AlertFilter, p domain.PaginationParams) ([]domain.Alert, int64, error) {
	if f.Kind != "" && !validKind(f.Kind) {
		return nil, 0, fmt.Errorf("%w: unknown alert kind %q", domain.ErrValidation, f.Kind)
	}
	if f.Severity != "" && !validSeverity(f.Severity) {
		return nil, 0, fmt.Errorf("%w: unknown severity %q", domain.ErrValidation, f.Severity)
	}
	alerts, total, err := s.alerts.List(ctx, f, p)
	if err != nil {
		return nil, 0, err
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	return alerts, total, nil
}

// Resolve marks an alert resolved. Resolving twice returns the alert unchanged.
func (s *AlertService) Resolve(ctx context.Context, id uuid.UUID) (domain.Alert, error) {
	return s.alerts.Resolve(ctx, id, s.clock.Now())
}

func validKind(k domain.AlertKind) bool {
	switch k {
	case domain.AlertAnomaly, domain.AlertDeadline, domain.AlertThreshold, domain.AlertESGScore:
		return true
	}
	return false
}

func validSeverity(s domain.Severity) bool {
	switch s {
	case domain.SeverityLow, domain.SeverityMedium, domain.SeverityHigh, domain.SeverityCritical:
		return true
	}
	return false
}
