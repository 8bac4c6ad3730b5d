package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fleetcarbon/compliance-backend/internal/domain"
	"github.com/fleetcarbon/compliance-backend/internal/emissions"
	"github.com/fleetcarbon/compliance-backend/internal/repo"
)

// TripService implements business logic for delivery Trip operations.
type TripService struct {
	trips     repo.TripRepo
	vehicles  repo.VehicleRepo
	companies repo.CompanyRepo
}

// NewTripService constructs a TripService.
func NewTripService(trips repo.TripRepo, vehicles repo.VehicleRepo, companies repo.CompanyRepo) *TripService {
	return &TripService{trips: trips, vehicles: vehicles, companies: companies}
}

// Create validates a trip, computes its emissions from the vehicle's class
// and persists it. The emissions figure is frozen at this point.
func (s *TripService) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	if trip.TripDate.IsZero() {
		return domain.Trip{}, fmt.Errorf("%w: trip_date is required", domain.ErrValidation)
	}
	if err := validateMeasure("distance_km", trip.DistanceKm); err != nil {
		return domain.Trip{}, err
	}
	if err := validateMeasure("weight_tonnes", trip.WeightTonnes); err != nil {
		return domain.Trip{}, err
	}

	vehicle, err := s.vehicles.GetByID(ctx, trip.VehicleID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Trip{}, fmt.Errorf("%w: unknown vehicle %s", domain.ErrValidation, trip.VehicleID)
	}
	if err != nil {
		return domain.Trip{}, err
	}
	if vehicle.CompanyID != trip.CompanyID {
		return domain.Trip{}, fmt.Errorf("%w: vehicle %s does not belong to company %s",
			domain.ErrValidation, vehicle.ID, trip.CompanyID)
	}

	trip.InvoiceSource = strings.TrimSpace(trip.InvoiceSource)
	trip.VehicleClass = vehicle.Class
	trip.EmissionsKg = emissions.Calculate(vehicle.Class, trip.DistanceKm, trip.WeightTonnes)
	if trip.EmissionsKg.GreaterThanOrEqual(maxEmissionsKg) {
		return domain.Trip{}, fmt.Errorf("%w: emissions of %s kg exceed the storable maximum", domain.ErrValidation, trip.EmissionsKg)
	}
	trip.IsAnomaly = false
	trip.AnomalyScore = nil

	return s.trips.Create(ctx, trip)
}

// Trip measures are stored as NUMERIC(12,2) and emissions as NUMERIC(14,3).
const measurePlaces = 2

var (
	maxMeasure     = decimal.New(1, 10)
	maxEmissionsKg = decimal.New(1, 11)
)

// validateMeasure rejects values the trips table would round or refuse, so
// the stored row always reproduces its frozen emissions.
func validateMeasure(name string, v decimal.Decimal) error {
	switch {
	case v.IsNegative():
		return fmt.Errorf("%w: %s must not be negative", domain.ErrValidation, name)
	case !v.Equal(v.Truncate(measurePlaces)):
		return fmt.Errorf("%w: %s must have at most %d decimal places", domain.ErrValidation, name, measurePlaces)
	case v.GreaterThanOrEqual(maxMeasure):
		return fmt.Errorf("%w: %s must be below %s", domain.ErrValidation, name, maxMeasure)
	}
	return nil
}

// GetByID returns a single trip by ID.
func (s *TripService) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return s.trips.GetByID(ctx, id)
}

// ListByCompany returns a company's trips in insertion order.
func (s *TripService) ListByCompany(ctx context.Context, companyID uuid.UUID, f domain.TripFilter) ([]domain.Trip, error) {
	if _, err := s.companies.GetByID(ctx, companyID); err != nil {
		return nil, err
	}
	trips, err := s.trips.ListByCompany(ctx, companyID, f)
	if err != nil {
		return nil, err
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, nil
}
