package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetcarbon/compliance-backend/internal/domain"
	"github.com/fleetcarbon/compliance-backend/internal/lock"
	"github.com/fleetcarbon/compliance-backend/internal/service"
)

func TestSweeper_Run(t *testing.T) {
	now := time.Date(2025, 2, 19, 3, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)

	busy := domain.Company{ID: uuid.New(), Name: "Busy"}
	small := domain.Company{ID: uuid.New(), Name: "Small"}
	locked := domain.Company{ID: uuid.New(), Name: "Locked"}
	broken := domain.Company{ID: uuid.New(), Name: "Broken"}
	companies := companiesOf(busy, small, locked, broken)

	busyTrips := append(dieselTrips(busy.ID, 9, "100"), dieselTrip(busy.ID, "130"))
	trips := tripsOf(map[uuid.UUID][]domain.Trip{
		busy.ID:   busyTrips,
		small.ID:  dieselTrips(small.ID, 3, "100"),
		locked.ID: dieselTrips(locked.ID, 12, "100"),
		broken.ID: dieselTrips(broken.ID, 12, "100"),
	})
	alerts := &memAlertRepo{}

	locker := lockerFunc(func(_ context.Context, key string, _ time.Duration) (lock.ReleaseFunc, error) {
		switch key {
		case "detect:" + locked.ID.String():
			return nil, lock.ErrLocked
		case "detect:" + broken.ID.String():
			return nil, errors.New("redis unreachable")
		}
		return func(context.Context) error { return nil }, nil
	})
	detection := service.NewDetectionService(service.DetectionDeps{
		Companies: companies, Trips: trips, Alerts: alerts, Locker: locker, Clock: clock, Seed: 42,
	})
	deadlines := service.NewDeadlineService(
		deadlinesOf(domain.Deadline{ID: uuid.New(), Name: "CSRD Annual Report", Date: now.AddDate(0, 0, 40), Regulation: "CSRD"}),
		companies, alerts, clock, nil, nil)

	sweeper := service.NewSweeper(companies, detection, deadlines, 2, nil)
	res, err := sweeper.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, service.SweepResult{
		Companies:         4,
		Detected:          1,
		Skipped:           2,
		Failed:            1,
		AnomaliesFound:    1,
		DeadlineAlerts:    4,
		UpcomingDeadlines: 1,
	}, res)
	assert.Len(t, alerts.byKind(domain.AlertAnomaly), 1)
	assert.Len(t, alerts.byKind(domain.AlertDeadline), 4)
}

func TestSweeper_Run_ListFailure(t *testing.T) {
	dbErr := errors.New("db down")
	companies := &mockCompanyRepo{listIDs: func(context.Context) ([]uuid.UUID, error) { return nil, dbErr }}
	sweeper := service.NewSweeper(companies, nil, nil, 4, nil)

	_, err := sweeper.Run(context.Background())

	assert.ErrorIs(t, err, dbErr)
}

func TestSweeper_Run_Cancelled(t *testing.T) {
	companies := companiesOf()
	sweeper := service.NewSweeper(companies, nil, nil, 1, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sweeper.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}
