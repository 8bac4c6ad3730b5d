package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fleetcarbon/compliance-backend/internal/analytics"
	"github.com/fleetcarbon/compliance-backend/internal/domain"
	"github.com/fleetcarbon/compliance-backend/internal/repo"
)

// CompanyAnalytics is the combined trend report for one company.
type CompanyAnalytics struct {
	CompanyID         uuid.UUID                     `json:"company_id"`
	ThresholdKg       decimal.Decimal               `json:"threshold_kg"`
	Trends            []analytics.YearTrend         `json:"trends"`
	ThresholdStatus   []analytics.YearThreshold     `json:"threshold_status"`
	VehicleEfficiency []analytics.VehicleEfficiency `json:"vehicle_efficiency"`
}

// AnalyticsService aggregates a company's trip history.
type AnalyticsService struct {
	companies        repo.CompanyRepo
	trips            repo.TripRepo
	defaultThreshold decimal.Decimal
}

// NewAnalyticsService constructs an AnalyticsService. defaultThreshold is the
// yearly kg limit used when a caller does not supply one.
func NewAnalyticsService(companies repo.CompanyRepo, trips repo.TripRepo, defaultThreshold decimal.Decimal) *AnalyticsService {
	return &AnalyticsService{companies: companies, trips: trips, defaultThreshold: defaultThreshold}
}

// Analyze builds yearly trends, threshold status and per-class efficiency.
// A nil threshold falls back to the configured default.
func (s *AnalyticsService) Analyze(ctx context.Context, companyID uuid.UUID, threshold *decimal.Decimal) (CompanyAnalytics, error) {
	limit := s.defaultThreshold
	if threshold != nil {
		limit = *threshold
	}
	if limit.IsNegative() {
		return CompanyAnalytics{}, fmt.Errorf("%w: threshold_kg must not be negative", domain.ErrValidation)
	}

	if _, err := s.companies.GetByID(ctx, companyID); err != nil {
		return CompanyAnalytics{}, err
	}
	trips, err := s.trips.ListByCompany(ctx, companyID, domain.TripFilter{})
	if err != nil {
		return CompanyAnalytics{}, fmt.Errorf("service.AnalyticsService.Analyze: %w", err)
	}

	records := analytics.FromTrips(trips)
	return CompanyAnalytics{
		CompanyID:         companyID,
		ThresholdKg:       limit,
		Trends:            analytics.Trends(records),
		ThresholdStatus:   analytics.ThresholdStatus(records, limit),
		VehicleEfficiency: analytics.VehicleEfficiencies(records),
	}, nil
}
