package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/fleetcarbon/compliance-backend/internal/domain"
	"github.com/fleetcarbon/compliance-backend/internal/repo"
)

// SweepResult summarizes one scheduled pass over all companies.
type SweepResult struct {
	Companies         int
	Detected          int
	Skipped           int
	Failed            int
	AnomaliesFound    int
	DeadlineAlerts    int
	UpcomingDeadlines int
}

// Sweeper runs anomaly detection for every company and then evaluates
// deadlines. It is what the scheduled job calls.
type Sweeper struct {
	companies repo.CompanyRepo
	detection *DetectionService
	deadlines *DeadlineService
	workers   int
	log       *slog.Logger
}

// NewSweeper constructs a Sweeper. workers below 1 means 1.
func NewSweeper(companies repo.CompanyRepo, detection *DetectionService, deadlines *DeadlineService, workers int, log *slog.Logger) *Sweeper {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Sweeper{companies: companies, detection: detection, deadlines: deadlines, workers: workers, log: log}
}

// Run performs one sweep. A failure for one company is logged and counted;
// only listing companies or evaluating deadlines aborts the sweep.
func (s *Sweeper) Run(ctx context.Context) (SweepResult, error) {
	ids, err := s.companies.ListIDs(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("service.Sweeper.Run: %w", err)
	}

	var detected, skipped, failed, anomalies atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, id := range ids {
		g.Go(func() error {
			report, err := s.detection.Detect(gctx, id, s.detection.DefaultOptions())
			switch {
			case errors.Is(err, domain.ErrConflict):
				skipped.Add(1)
				s.log.Info("sweep skipped company", "company_id", id, "reason", "locked")
			case err != nil:
				failed.Add(1)
				s.log.Error("sweep detection failed", "company_id", id, "error", err)
			case !report.Success:
				skipped.Add(1)
			default:
				detected.Add(1)
				anomalies.Add(int64(report.AnomalyCount))
			}
			return nil
		})
	}
	_ = g.Wait()

	res := SweepResult{
		Companies:      len(ids),
		Detected:       int(detected.Load()),
		Skipped:        int(skipped.Load()),
		Failed:         int(failed.Load()),
		AnomaliesFound: int(anomalies.Load()),
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	eval, err := s.deadlines.Evaluate(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("service.Sweeper.Run: %w", err)
	}
	res.DeadlineAlerts = eval.AlertsCreated
	res.UpcomingDeadlines = eval.UpcomingDeadlines

	s.log.Info("sweep finished",
		"companies", res.Companies,
		"detected", res.Detected,
		"skipped", res.Skipped,
		"failed", res.Failed,
		"anomalies", res.AnomaliesFound,
		"deadline_alerts", res.DeadlineAlerts,
	)
	return res, nil
}
