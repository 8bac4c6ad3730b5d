// Package service contains the business logic for the compliance backend.
// Services validate inputs, enforce business rules, and orchestrate repo calls
// and the pure calculators (emissions, compliance, analytics, anomaly, deadline).
// No SQL lives here. Services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fleetcarbon/compliance-backend/internal/analytics"
	"github.com/fleetcarbon/compliance-backend/internal/compliance"
	"github.com/fleetcarbon/compliance-backend/internal/domain"
	"github.com/fleetcarbon/compliance-backend/internal/repo"
)

// CompanyService implements business logic for Company operations.
type CompanyService struct {
	companies repo.CompanyRepo
	trips     repo.TripRepo
}

// NewCompanyService constructs a CompanyService.
func NewCompanyService(companies repo.CompanyRepo, trips repo.TripRepo) *CompanyService {
	return &CompanyService{companies: companies, trips: trips}
}

// Create validates and persists a new company. New companies start at the
// default ESG score.
func (s *CompanyService) Create(ctx context.Context, c domain.Company) (domain.Company, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Country = strings.TrimSpace(c.Country)
	if c.Name == "" {
		return domain.Company{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if !c.AnnualTurnover.IsPositive() {
		return domain.Company{}, fmt.Errorf("%w: annual_turnover must be positive", domain.ErrValidation)
	}
	if c.BaselineEmissions != nil && c.BaselineEmissions.IsNegative() {
		return domain.Company{}, fmt.Errorf("%w: baseline_emissions must not be negative", domain.ErrValidation)
	}
	c.ESGScore = domain.DefaultESGScore

	return s.companies.Create(ctx, c)
}

// Get returns a single company by ID.
func (s *CompanyService) Get(ctx context.Context, id uuid.UUID) (domain.Company, error) {
	return s.companies.GetByID(ctx, id)
}

// List returns one page of companies and the total count.
func (s *CompanyService) List(ctx context.Context, p domain.PaginationParams) ([]domain.Company, int64, error) {
	companies, total, err := s.companies.List(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	if companies == nil {
		companies = []domain.Company{}
	}
	return companies, total, nil
}

// RecomputeESG derives the score from the company's whole trip history and
// stores it.
func (s *CompanyService) RecomputeESG(ctx context.Context, id uuid.UUID) (domain.Company, error) {
	if _, err := s.companies.GetByID(ctx, id); err != nil {
		return domain.Company{}, err
	}
	trips, err := s.trips.ListByCompany(ctx, id, domain.TripFilter{})
	if err != nil {
		return domain.Company{}, fmt.Errorf("service.CompanyService.RecomputeESG: %w", err)
	}

	emissionsKg, distanceKm := analytics.Totals(analytics.FromTrips(trips))
	score := compliance.ESGScore(emissionsKg, distanceKm, len(trips))

	return s.companies.UpdateESGScore(ctx, id, score)
}
