package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/fleetcarbon/compliance-backend/internal/domain"
)

// CompanyRepo defines the persistence operations for Companies.
type CompanyRepo interface {
	// Create inserts a company and returns the persisted record.
	Create(ctx context.Context, c domain.Company) (domain.Company, error)

	// GetByID returns domain.ErrNotFound if no company with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Company, error)

	// List returns one page of companies ordered by name, plus the total count.
	List(ctx context.Context, p domain.PaginationParams) ([]domain.Company, int64, error)

	// ListIDs returns every company id. Used by fleet-wide evaluations.
	ListIDs(ctx context.Context) ([]uuid.UUID, error)

	// UpdateESGScore stores a recomputed score.
	// Returns domain.ErrNotFound if no company with that ID exists.
	UpdateESGScore(ctx context.Context, id uuid.UUID, score float64) (domain.Company, error)
}

type pgCompanyRepo struct {
	db db
}

// NewCompanyRepo constructs a CompanyRepo backed by the provided db connection.
func NewCompanyRepo(db db) CompanyRepo {
	return &pgCompanyRepo{db: db}
}

const companyColumns = `id, name, country, annual_turnover, esg_score, baseline_emissions, created_at, updated_at`

func (r *pgCompanyRepo) Create(ctx context.Context, c domain.Company) (domain.Company, error) {
	const q = `
		INSERT INTO companies (name, country, annual_turnover, esg_score, baseline_emissions)
		VALUES (@name, @country, @annual_turnover, @esg_score, @baseline_emissions)
		RETURNING ` + companyColumns

	args := pgx.NamedArgs{
		"name":               c.Name,
		"country":            c.Country,
		"annual_turnover":    c.AnnualTurnover,
		"esg_score":          c.ESGScore,
		"baseline_emissions": nullableDecimal(c.BaselineEmissions),
	}

	got, err := scanCompany(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Company{}, fmt.Errorf("repo.CompanyRepo.Create: %w", err)
	}
	return got, nil
}

func (r *pgCompanyRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Company, error) {
	const q = `SELECT ` + companyColumns + ` FROM companies WHERE id = @id`

	got, err := scanCompany(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Company{}, fmt.Errorf("repo.CompanyRepo.GetByID: %w", mapNoRows(err))
	}
	return got, nil
}

func (r *pgCompanyRepo) List(ctx context.Context, p domain.PaginationParams) ([]domain.Company, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM companies`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.CompanyRepo.List: count: %w", err)
	}

	const q = `SELECT ` + companyColumns + ` FROM companies ORDER BY name, id LIMIT @limit OFFSET @offset`
	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.CompanyRepo.List: %w", err)
	}
	defer rows.Close()

	companies := []domain.Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.CompanyRepo.List: scan: %w", err)
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.CompanyRepo.List: rows: %w", err)
	}
	return companies, total, nil
}

func (r *pgCompanyRepo) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM companies ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("repo.CompanyRepo.ListIDs: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("repo.CompanyRepo.ListIDs: %w", err)
	}
	return ids, nil
}

func (r *pgCompanyRepo) UpdateESGScore(ctx context.Context, id uuid.UUID, score float64) (domain.Company, error) {
	const q = `
		UPDATE companies
		SET esg_score = @score, updated_at = now()
		WHERE id = @id
		RETURNING ` + companyColumns

	got, err := scanCompany(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "score": score}))
	if err != nil {
		return domain.Company{}, fmt.Errorf("repo.CompanyRepo.UpdateESGScore: %w", mapNoRows(err))
	}
	return got, nil
}

func scanCompany(s scanner) (domain.Company, error) {
	var (
		c        domain.Company
		baseline decimal.NullDecimal
	)
	err := s.Scan(&c.ID, &c.Name, &c.Country, &c.AnnualTurnover, &c.ESGScore, &baseline, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Company{}, err
	}
	if baseline.Valid {
		b := baseline.Decimal
		c.BaselineEmissions = &b
	}
	return c, nil
}

// nullableDecimal maps a nil pointer to SQL NULL.
func nullableDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}
