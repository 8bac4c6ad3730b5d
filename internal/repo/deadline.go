package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/fleetcarbon/compliance-backend/internal/domain"
)

// DeadlineRepo defines the persistence operations for compliance Deadlines.
type DeadlineRepo interface {
	Create(ctx context.Context, d domain.Deadline) (domain.Deadline, error)

	// List returns every deadline ordered by date.
	List(ctx context.Context) ([]domain.Deadline, error)

	// Upcoming returns deadlines dated from today through today+horizonDays
	// inclusive, ordered by date.
	Upcoming(ctx context.Context, today time.Time, horizonDays int) ([]domain.Deadline, error)
}

type pgDeadlineRepo struct {
	db db
}

// NewDeadlineRepo constructs a DeadlineRepo backed by the provided db connection.
func NewDeadlineRepo(db db) DeadlineRepo {
	return &pgDeadlineRepo{db: db}
}

const deadlineColumns = `id, name, deadline_date, regulation, description, applicable_to, created_at`

func (r *pgDeadlineRepo) Create(ctx context.Context, d domain.Deadline) (domain.Deadline, error) {
	const q = `
		INSERT INTO compliance_deadlines (name, deadline_date, regulation, description, applicable_to)
		VALUES (@name, @deadline_date, @regulation, @description, @applicable_to)
		RETURNING ` + deadlineColumns

	args := pgx.NamedArgs{
		"name":          d.Name,
		"deadline_date": pgDate(d.Date),
		"regulation":    d.Regulation,
		"description":   d.Description,
		"applicable_to": d.ApplicableTo,
	}

	got, err := scanDeadline(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Deadline{}, fmt.Errorf("repo.DeadlineRepo.Create: %w", err)
	}
	return got, nil
}

func (r *pgDeadlineRepo) List(ctx context.Context) ([]domain.Deadline, error) {
	const q = `SELECT ` + deadlineColumns + ` FROM compliance_deadlines ORDER BY deadline_date, name`

	deadlines, err := r.query(ctx, q, nil)
	if err != nil {
		return nil, fmt.Errorf("repo.DeadlineRepo.List: %w", err)
	}
	return deadlines, nil
}

func (r *pgDeadlineRepo) Upcoming(ctx context.Context, today time.Time, horizonDays int) ([]domain.Deadline, error) {
	const q = `
		SELECT ` + deadlineColumns + `
		FROM compliance_deadlines
		WHERE deadline_date BETWEEN @from AND @to
		ORDER BY deadline_date, name`

	from := domain.TruncateDay(today)
	args := pgx.NamedArgs{"from": pgDate(from), "to": pgDate(from.AddDate(0, 0, horizonDays))}

	deadlines, err := r.query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.DeadlineRepo.Upcoming: %w", err)
	}
	return deadlines, nil
}

func (r *pgDeadlineRepo) query(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Deadline, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if args == nil {
		rows, err = r.db.Query(ctx, q)
	} else {
		rows, err = r.db.Query(ctx, q, args)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deadlines := []domain.Deadline{}
	for rows.Next() {
		d, err := scanDeadline(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		deadlines = append(deadlines, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return deadlines, nil
}

func scanDeadline(s scanner) (domain.Deadline, error) {
	var (
		d    domain.Deadline
		date pgtype.Date
	)
	if err := s.Scan(&d.ID, &d.Name, &date, &d.Regulation, &d.Description, &d.ApplicableTo, &d.CreatedAt); err != nil {
		return domain.Deadline{}, err
	}
	d.Date = date.Time
	return d, nil
}

func pgDate(t time.Time) pgtype.Date {
	return pgtype.Date{Time: domain.TruncateDay(t), Valid: true}
}
