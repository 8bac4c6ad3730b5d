package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fleetcarbon/compliance-backend/internal/domain"
	"github.com/fleetcarbon/compliance-backend/internal/repo"
)

// DefaultRegistrationYear is used when a vehicle is registered without one.
const DefaultRegistrationYear = 2020

// VehicleService implements business logic for Vehicle operations.
type VehicleService struct {
	vehicles  repo.VehicleRepo
	companies repo.CompanyRepo
}

// NewVehicleService constructs a VehicleService.
func NewVehicleService(vehicles repo.VehicleRepo, companies repo.CompanyRepo) *VehicleService {
	return &VehicleService{vehicles: vehicles, companies: companies}
}

// Create validates and persists a vehicle for an existing company.
func (s *VehicleService) Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	v.Registration = strings.TrimSpace(v.Registration)
	if v.Registration == "" {
		return domain.Vehicle{}, fmt.Errorf("%w: registration is required", domain.ErrValidation)
	}
	if !v.Class.Valid() {
		return domain.Vehicle{}, fmt.Errorf("%w: unknown vehicle_class %q", domain.ErrValidation, v.Class)
	}
	if v.CapacityTonnes.IsNegative() {
		return domain.Vehicle{}, fmt.Errorf("%w: capacity_tonnes must not be negative", domain.ErrValidation)
	}
	if v.RegistrationYear == 0 {
		v.RegistrationYear = DefaultRegistrationYear
	}
	if _, err := s.companies.GetByID(ctx, v.CompanyID); err != nil {
		return domain.Vehicle{}, err
	}

	return s.vehicles.Create(ctx, v)
}

// ListByCompany returns a company's vehicles. Unknown companies are
// reported as domain.ErrNotFound rather than an empty list.
func (s *VehicleService) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]domain.Vehicle, error) {
	if _, err := s.companies.GetByID(ctx, companyID); err != nil {
		return nil, err
	}
	vehicles, err := s.vehicles.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if vehicles == nil {
		vehicles = []domain.Vehicle{}
	}
	return vehicles, nil
}
