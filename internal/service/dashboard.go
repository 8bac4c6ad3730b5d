package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fleetcarbon/compliance-backend/internal/analytics"
	"github.com/fleetcarbon/compliance-backend/internal/compliance"
	"github.com/fleetcarbon/compliance-backend/internal/domain"
	"github.com/fleetcarbon/compliance-backend/internal/numeric"
	"github.com/fleetcarbon/compliance-backend/internal/repo"
)

// RecentAlertLimit is how many unresolved alerts the dashboard shows.
const RecentAlertLimit = 5

var (
	baselineMultiplier = decimal.RequireFromString("1.5")
	fallbackBaselineKg = decimal.NewFromInt(1_000_000)
	kgPerTonne         = decimal.NewFromInt(1000)
)

// Dashboard is the single-screen compliance summary for one company.
type Dashboard struct {
	Company struct {
		ID             uuid.UUID       `json:"id"`
		Name           string          `json:"name"`
		AnnualTurnover decimal.Decimal `json:"annual_turnover_eur"`
		ESGScore       decimal.Decimal `json:"esg_score"`
	} `json:"company"`
	Emissions struct {
		TotalKg     decimal.Decimal `json:"total_kg"`
		TotalTonnes decimal.Decimal `json:"total_tonnes"`
		BaselineKg  decimal.Decimal `json:"baseline_kg"`
		compliance.SavingsResult
	} `json:"emissions"`
	PenaltyRisk struct {
		compliance.PenaltyResult
		PenaltyAvoided bool `json:"penalty_avoided"`
	} `json:"penalty_risk"`
	Financing        compliance.FinancingResult    `json:"financing"`
	VehicleBreakdown []analytics.VehicleEfficiency `json:"vehicle_breakdown"`
	Trips            struct {
		TotalCount        int             `json:"total_count"`
		AnomalyCount      int             `json:"anomaly_count"`
		AnomalyPercentage decimal.Decimal `json:"anomaly_percentage"`
	} `json:"trips"`
	// Alerts are the newest unresolved alerts; the HTTP layer renders them.
	Alerts []domain.Alert `json:"-"`
}

// DashboardService assembles Dashboard views.
type DashboardService struct {
	companies        repo.CompanyRepo
	trips            repo.TripRepo
	alerts           repo.AlertRepo
	penaltyThreshold decimal.Decimal
}

// NewDashboardService constructs a DashboardService. penaltyThreshold is the
// kg CO2e above which the turnover penalty applies.
func NewDashboardService(companies repo.CompanyRepo, trips repo.TripRepo, alerts repo.AlertRepo, penaltyThreshold decimal.Decimal) *DashboardService {
	return &DashboardService{companies: companies, trips: trips, alerts: alerts, penaltyThreshold: penaltyThreshold}
}

// Metrics computes the dashboard for one company from its full trip history.
// The ESG score is recomputed, not read from the stored cache.
func (s *DashboardService) Metrics(ctx context.Context, companyID uuid.UUID) (Dashboard, error) {
	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return Dashboard{}, err
	}
	trips, err := s.trips.ListByCompany(ctx, companyID, domain.TripFilter{})
	if err != nil {
		return Dashboard{}, fmt.Errorf("service.DashboardService.Metrics: %w", err)
	}
	recent, err := s.alerts.Recent(ctx, companyID, RecentAlertLimit)
	if err != nil {
		return Dashboard{}, fmt.Errorf("service.DashboardService.Metrics: %w", err)
	}

	records := analytics.FromTrips(trips)
	total, distance := analytics.Totals(records)
	esg := compliance.ESGScore(total, distance, len(trips))

	var d Dashboard
	d.Company.ID = company.ID
	d.Company.Name = company.Name
	d.Company.AnnualTurnover = company.AnnualTurnover
	d.Company.ESGScore = numeric.FromFloat(esg, numeric.ScorePlaces)

	baseline := Baseline(company, total)
	d.Emissions.TotalKg = total
	d.Emissions.TotalTonnes = total.Div(kgPerTonne).RoundBank(3)
	d.Emissions.BaselineKg = baseline
	d.Emissions.SavingsResult = compliance.Savings(total, baseline)

	d.PenaltyRisk.PenaltyResult = compliance.PenaltyRisk(total, s.penaltyThreshold, company.AnnualTurnover)
	d.PenaltyRisk.PenaltyAvoided = !d.PenaltyRisk.ExceedsThreshold

	d.Financing = compliance.FinancingImpact(esg, company.AnnualTurnover)
	d.VehicleBreakdown = analytics.VehicleEfficiencies(records)

	anomalies := 0
	for _, t := range trips {
		if t.IsAnomaly {
			anomalies++
		}
	}
	d.Trips.TotalCount = len(trips)
	d.Trips.AnomalyCount = anomalies
	d.Trips.AnomalyPercentage = numeric.OrZero(numeric.SafeDiv(
		decimal.NewFromInt(int64(anomalies)), decimal.NewFromInt(int64(len(trips))),
	)).Mul(numeric.Hundred).RoundBank(2)

	d.Alerts = recent
	if d.Alerts == nil {
		d.Alerts = []domain.Alert{}
	}
	return d, nil
}

// Baseline is the company's configured baseline, or 1.5x the current total
// when none is set, or a flat 1 000 000 kg when there are no emissions yet.
func Baseline(c domain.Company, totalKg decimal.Decimal) decimal.Decimal {
	switch {
	case c.BaselineEmissions != nil && c.BaselineEmissions.IsPositive():
		return *c.BaselineEmissions
	case totalKg.IsPositive():
		return totalKg.Mul(baselineMultiplier)
	default:
		return fallbackBaselineKg
	}
}
