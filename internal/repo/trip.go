package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/fleetcarbon/compliance-backend/internal/domain"
)

// TripRepo defines the persistence operations for delivery Trips.
// Every read joins the vehicle class onto the trip.
type TripRepo interface {
	// Create inserts a trip with its precomputed emissions and returns the
	// persisted record.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// ListByCompany returns a company's trips in insertion order.
	ListByCompany(ctx context.Context, companyID uuid.UUID, f domain.TripFilter) ([]domain.Trip, error)

	// MarkAnomalous sets the anomaly flag and score on each trip. Re-marking a
	// trip overwrites its previous score.
	MarkAnomalous(ctx context.Context, flags []domain.AnomalyFlag) error
}

type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripSelect = `
	SELECT t.id, t.company_id, t.vehicle_id, v.vehicle_class, t.trip_date,
	       t.distance_km, t.weight_tonnes, t.emissions_kg, t.is_anomaly,
	       t.anomaly_score, t.invoice_source, t.created_at, t.updated_at
	FROM trips t
	JOIN vehicles v ON v.id = t.vehicle_id`

func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (company_id, vehicle_id, trip_date, distance_km, weight_tonnes, emissions_kg, invoice_source)
		VALUES (@company_id, @vehicle_id, @trip_date, @distance_km, @weight_tonnes, @emissions_kg, @invoice_source)
		RETURNING id`

	args := pgx.NamedArgs{
		"company_id":     trip.CompanyID,
		"vehicle_id":     trip.VehicleID,
		"trip_date":      pgDate(trip.TripDate),
		"distance_km":    trip.DistanceKm,
		"weight_tonnes":  trip.WeightTonnes,
		"emissions_kg":   trip.EmissionsKg,
		"invoice_source": trip.InvoiceSource,
	}

	var id uuid.UUID
	if err := r.db.QueryRow(ctx, q, args).Scan(&id); err != nil {
		if isForeignKeyViolation(err) {
			return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: company or vehicle: %w", domain.ErrNotFound)
		}
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}

	got, err := r.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return got, nil
}

func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = tripSelect + ` WHERE t.id = @id`

	got, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", mapNoRows(err))
	}
	return got, nil
}

func (r *pgTripRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, f domain.TripFilter) ([]domain.Trip, error) {
	const q = tripSelect + `
		WHERE t.company_id = @company_id
		  AND (@anomalous::boolean IS NULL OR t.is_anomaly = @anomalous::boolean)
		ORDER BY t.seq`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"company_id": companyID, "anomalous": f.Anomalous})
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListByCompany: %w", err)
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TripRepo.ListByCompany: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListByCompany: rows: %w", err)
	}
	return trips, nil
}

func (r *pgTripRepo) MarkAnomalous(ctx context.Context, flags []domain.AnomalyFlag) error {
	if len(flags) == 0 {
		return nil
	}
	const q = `
		UPDATE trips
		SET is_anomaly = true, anomaly_score = @score, updated_at = now()
		WHERE id = @id`

	batch := &pgx.Batch{}
	for _, f := range flags {
		batch.Queue(q, pgx.NamedArgs{"id": f.TripID, "score": f.Score})
	}

	br := r.db.SendBatch(ctx, batch)
	for range flags {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("repo.TripRepo.MarkAnomalous: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("repo.TripRepo.MarkAnomalous: %w", err)
	}
	return nil
}

// scanTrip maps a single joined row into a domain.Trip.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t        domain.Trip
		class    string
		tripDate pgtype.Date
		score    pgtype.Float8
	)

	err := s.Scan(
		&t.ID, &t.CompanyID, &t.VehicleID, &class, &tripDate,
		&t.DistanceKm, &t.WeightTonnes, &t.EmissionsKg, &t.IsAnomaly,
		&score, &t.InvoiceSource, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return domain.Trip{}, err
	}

	t.VehicleClass = domain.VehicleClass(class)
	t.TripDate = tripDate.Time
	if score.Valid {
		v := score.Float64
		t.AnomalyScore = &v
	}
	return t, nil
}
