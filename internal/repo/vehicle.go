package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fleetcarbon/compliance-backend/internal/domain"
)

// VehicleRepo defines the persistence operations for Vehicles.
type VehicleRepo interface {
	// Create inserts a vehicle. A duplicate registration returns
	// domain.ErrConflict; an unknown company returns domain.ErrNotFound.
	Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)

	// GetByID returns domain.ErrNotFound if no vehicle with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error)

	// ListByCompany returns a company's vehicles ordered by registration.
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]domain.Vehicle, error)
}

type pgVehicleRepo struct {
	db db
}

// NewVehicleRepo constructs a VehicleRepo backed by the provided db connection.
func NewVehicleRepo(db db) VehicleRepo {
	return &pgVehicleRepo{db: db}
}

const vehicleColumns = `id, company_id, registration, vehicle_class, capacity_tonnes, registration_year, created_at`

func (r *pgVehicleRepo) Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	const q = `
		INSERT INTO vehicles (company_id, registration, vehicle_class, capacity_tonnes, registration_year)
		VALUES (@company_id, @registration, @vehicle_class, @capacity_tonnes, @registration_year)
		RETURNING ` + vehicleColumns

	args := pgx.NamedArgs{
		"company_id":        v.CompanyID,
		"registration":      v.Registration,
		"vehicle_class":     string(v.Class),
		"capacity_tonnes":   v.CapacityTonnes,
		"registration_year": v.RegistrationYear,
	}

	got, err := scanVehicle(r.db.QueryRow(ctx, q, args))
	switch {
	case err == nil:
		return got, nil
	case isUniqueViolation(err):
		return domain.Vehicle{}, fmt.Errorf("repo.VehicleRepo.Create: %w: registration %s already exists", domain.ErrConflict, v.Registration)
	case isForeignKeyViolation(err):
		return domain.Vehicle{}, fmt.Errorf("repo.VehicleRepo.Create: company: %w", domain.ErrNotFound)
	default:
		return domain.Vehicle{}, fmt.Errorf("repo.VehicleRepo.Create: %w", err)
	}
}

func (r *pgVehicleRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error) {
	const q = `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = @id`

	got, err := scanVehicle(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("repo.VehicleRepo.GetByID: %w", mapNoRows(err))
	}
	return got, nil
}

func (r *pgVehicleRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]domain.Vehicle, error) {
	const q = `SELECT ` + vehicleColumns + ` FROM vehicles WHERE company_id = @company_id ORDER BY registration`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"company_id": companyID})
	if err != nil {
		return nil, fmt.Errorf("repo.VehicleRepo.ListByCompany: %w", err)
	}
	defer rows.Close()

	vehicles := []domain.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.VehicleRepo.ListByCompany: scan: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.VehicleRepo.ListByCompany: rows: %w", err)
	}
	return vehicles, nil
}

func scanVehicle(s scanner) (domain.Vehicle, error) {
	var (
		v     domain.Vehicle
		class string
	)
	err := s.Scan(&v.ID, &v.CompanyID, &v.Registration, &class, &v.CapacityTonnes, &v.RegistrationYear, &v.CreatedAt)
	if err != nil {
		return domain.Vehicle{}, err
	}
	v.Class = domain.VehicleClass(class)
	return v, nil
}
