package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/fleetcarbon/compliance-backend/internal/anomaly"
	"github.com/fleetcarbon/compliance-backend/internal/domain"
	"github.com/fleetcarbon/compliance-backend/internal/lock"
	"github.com/fleetcarbon/compliance-backend/internal/metrics"
	"github.com/fleetcarbon/compliance-backend/internal/repo"
)

// DetectionLockTTL bounds how long a crashed run can block the next one.
const DetectionLockTTL = 2 * time.Minute

// DetectionService runs anomaly detection for one company at a time and
// persists the outcome: trip flags plus one summary alert.
type DetectionService struct {
	companies repo.CompanyRepo
	trips     repo.TripRepo
	alerts    repo.AlertRepo
	locker    lock.Locker
	clock     clockwork.Clock
	metrics   *metrics.Metrics
	log       *slog.Logger
	seed      uint64
}

// DetectionDeps groups the collaborators of a DetectionService.
type DetectionDeps struct {
	Companies repo.CompanyRepo
	Trips     repo.TripRepo
	Alerts    repo.AlertRepo
	// Locker defaults to lock.NopLocker.
	Locker lock.Locker
	// Clock defaults to the real clock.
	Clock   clockwork.Clock
	Metrics *metrics.Metrics
	Log     *slog.Logger
	Seed    uint64
}

// NewDetectionService constructs a DetectionService.
func NewDetectionService(d DetectionDeps) *DetectionService {
	if d.Locker == nil {
		d.Locker = lock.NopLocker{}
	}
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	return &DetectionService{
		companies: d.Companies,
		trips:     d.Trips,
		alerts:    d.Alerts,
		locker:    d.Locker,
		clock:     d.Clock,
		metrics:   d.Metrics,
		log:       d.Log,
		seed:      d.Seed,
	}
}

// DefaultOptions returns the detector defaults with the configured seed.
func (s *DetectionService) DefaultOptions() anomaly.Options {
	opts := anomaly.DefaultOptions()
	opts.Seed = s.seed
	return opts
}

// Detect trains a fresh model on the company's current trips, flags the
// anomalous ones and raises one summary alert when any were found.
//
// Fewer than anomaly.MinTrips trips is not an error: the returned report has
// Success false and nothing is written. A run already in progress for the
// same company yields domain.ErrConflict.
func (s *DetectionService) Detect(ctx context.Context, companyID uuid.UUID, opts anomaly.Options) (anomaly.Report, error) {
	if err := opts.Validate(); err != nil {
		return anomaly.Report{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if _, err := s.companies.GetByID(ctx, companyID); err != nil {
		return anomaly.Report{}, err
	}

	release, err := s.locker.Acquire(ctx, "detect:"+companyID.String(), DetectionLockTTL)
	if errors.Is(err, lock.ErrLocked) {
		s.metrics.DetectionRun(metrics.OutcomeLocked, 0, 0)
		return anomaly.Report{}, fmt.Errorf("%w: detection already running for company %s", domain.ErrConflict, companyID)
	}
	if err != nil {
		s.metrics.DetectionRun(metrics.OutcomeFailed, 0, 0)
		return anomaly.Report{}, fmt.Errorf("service.DetectionService.Detect: %w", err)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn("release detection lock", "company_id", companyID, "error", err)
		}
	}()

	report, err := s.run(ctx, companyID, opts)
	if err != nil {
		s.metrics.DetectionRun(metrics.OutcomeFailed, 0, 0)
		return anomaly.Report{}, err
	}
	return report, nil
}

func (s *DetectionService) run(ctx context.Context, companyID uuid.UUID, opts anomaly.Options) (anomaly.Report, error) {
	trips, err := s.trips.ListByCompany(ctx, companyID, domain.TripFilter{})
	if err != nil {
		return anomaly.Report{}, fmt.Errorf("service.DetectionService.Detect: %w", err)
	}

	start := s.clock.Now()
	report := anomaly.Detect(anomaly.SamplesFromTrips(trips), opts)
	elapsed := s.clock.Since(start)

	if !report.Success {
		s.metrics.DetectionRun(metrics.OutcomeInsufficient, 0, 0)
		s.log.Info("anomaly detection declined",
			"company_id", companyID, "trips", report.TotalTrips, "min_trips", anomaly.MinTrips)
		return report, nil
	}

	if err := s.trips.MarkAnomalous(ctx, report.Flags); err != nil {
		return anomaly.Report{}, fmt.Errorf("service.DetectionService.Detect: %w", err)
	}

	if report.AnomalyCount > 0 {
		alert, err := s.alerts.Create(ctx, summaryAlert(companyID, report, s.clock.Now()))
		if err != nil {
			return anomaly.Report{}, fmt.Errorf("service.DetectionService.Detect: %w", err)
		}
		s.metrics.AlertCreated(string(alert.Kind), string(alert.Severity))
	}

	s.metrics.DetectionRun(metrics.OutcomeCompleted, report.AnomalyCount, elapsed)
	s.log.Info("anomaly detection finished",
		"company_id", companyID,
		"trips", report.TotalTrips,
		"anomalies", report.AnomalyCount,
		"duration_ms", elapsed.Milliseconds(),
	)
	return report, nil
}

func summaryAlert(companyID uuid.UUID, r anomaly.Report, now time.Time) domain.Alert {
	ids := r.AlertTripIDs()
	tripIDs := make([]string, len(ids))
	for i, id := range ids {
		tripIDs[i] = id.String()
	}
	return domain.Alert{
		CompanyID: companyID,
		Kind:      domain.AlertAnomaly,
		Severity:  r.Severity(),
		Message: fmt.Sprintf("Detected %d anomalous delivery trips with emissions >%s%% above average",
			r.AnomalyCount, r.ThresholdPercentage.String()),
		Details: map[string]any{
			"anomaly_count":     r.AnomalyCount,
			"average_emissions": r.AverageEmissions.String(),
			"threshold":         r.ThresholdKg.String(),
			"trip_ids":          tripIDs,
		},
		TriggeredAt: now,
	}
}
