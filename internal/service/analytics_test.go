package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetcarbon/compliance-backend/internal/domain"
	"github.com/fleetcarbon/compliance-backend/internal/service"
)

func yearTrip(year int, class domain.VehicleClass, emissions string) domain.Trip {
	return domain.Trip{
		ID:           uuid.New(),
		VehicleClass: class,
		TripDate:     time.Date(year, 5, 1, 0, 0, 0, 0, time.UTC),
		DistanceKm:   decimal.NewFromInt(100),
		EmissionsKg:  decimal.RequireFromString(emissions),
	}
}

func TestAnalyticsService_Analyze(t *testing.T) {
	company := domain.Company{ID: uuid.New()}
	trips := tripsOf(map[uuid.UUID][]domain.Trip{company.ID: {
		yearTrip(2024, domain.VehicleDiesel, "1000"),
		yearTrip(2025, domain.VehicleDiesel, "900"),
		yearTrip(2025, domain.VehicleEVSolar, "300"),
	}})
	svc := service.NewAnalyticsService(companiesOf(company), trips, decimal.NewFromInt(1100))

	got, err := svc.Analyze(context.Background(), company.ID, nil)

	require.NoError(t, err)
	assert.Equal(t, "1100", got.ThresholdKg.String())
	require.Len(t, got.Trends, 2)
	assert.Equal(t, 2025, got.Trends[0].Year)
	assert.Equal(t, "20", got.Trends[0].YoYGrowthPercentage.Decimal.String())
	require.Len(t, got.ThresholdStatus, 2)
	assert.True(t, got.ThresholdStatus[0].ExceedsThreshold)
	assert.False(t, got.ThresholdStatus[1].ExceedsThreshold)
	require.Len(t, got.VehicleEfficiency, 2)
	assert.Equal(t, domain.VehicleDiesel, got.VehicleEfficiency[0].VehicleClass)
}

func TestAnalyticsService_Analyze_CallerThreshold(t *testing.T) {
	company := domain.Company{ID: uuid.New()}
	trips := tripsOf(map[uuid.UUID][]domain.Trip{company.ID: {yearTrip(2025, domain.VehicleDiesel, "500")}})
	svc := service.NewAnalyticsService(companiesOf(company), trips, decimal.NewFromInt(10_000))

	limit := decimal.NewFromInt(400)
	got, err := svc.Analyze(context.Background(), company.ID, &limit)

	require.NoError(t, err)
	require.Len(t, got.ThresholdStatus, 1)
	assert.True(t, got.ThresholdStatus[0].ExceedsThreshold)
	assert.Equal(t, "100", got.ThresholdStatus[0].ExcessEmissions.String())
}

func TestAnalyticsService_Analyze_Errors(t *testing.T) {
	company := domain.Company{ID: uuid.New()}
	svc := service.NewAnalyticsService(companiesOf(company), tripsOf(nil), decimal.NewFromInt(1))

	neg := decimal.NewFromInt(-1)
	_, err := svc.Analyze(context.Background(), company.ID, &neg)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Analyze(context.Background(), uuid.New(), nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAnalyticsService_Analyze_NoTrips(t *testing.T) {
	company := domain.Company{ID: uuid.New()}
	svc := service.NewAnalyticsService(companiesOf(company), tripsOf(nil), decimal.NewFromInt(1))

	got, err := svc.Analyze(context.Background(), company.ID, nil)

	require.NoError(t, err)
	assert.NotNil(t, got.Trends)
	assert.Empty(t, got.Trends)
	assert.NotNil(t, got.VehicleEfficiency)
}
