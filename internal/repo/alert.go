package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fleetcarbon/compliance-backend/internal/domain"
)

// AlertRepo defines the persistence operations for compliance Alerts.
// Alerts are append-only apart from Resolve.
type AlertRepo interface {
	// Create inserts an alert unconditionally.
	Create(ctx context.Context, a domain.Alert) (domain.Alert, error)

	// Exists reports whether an alert matching m is already stored.
	Exists(ctx context.Context, m domain.AlertMatch) (bool, error)

	// CreateIfAbsent inserts a unless an alert matching m exists. The check and
	// the insert run in one transaction holding an advisory lock on the
	// (company, kind) pair, so concurrent callers cannot both insert.
	// The bool result reports whether a row was inserted.
	CreateIfAbsent(ctx context.Context, a domain.Alert, m domain.AlertMatch) (domain.Alert, bool, error)

	// GetByID returns domain.ErrNotFound if no alert with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Alert, error)

	// List returns one page of alerts, newest first, plus the total count.
	List(ctx context.Context, f domain.AlertFilter, p domain.PaginationParams) ([]domain.Alert, int64, error)

	// Recent returns a company's newest unresolved alerts.
	Recent(ctx context.Context, companyID uuid.UUID, limit int) ([]domain.Alert, error)

	// Resolve marks an alert resolved at the given time. Resolving an already
	// resolved alert keeps its original resolved_at.
	Resolve(ctx context.Context, id uuid.UUID, at time.Time) (domain.Alert, error)
}

type pgAlertRepo struct {
	db db
}

// NewAlertRepo constructs an AlertRepo backed by the provided db connection.
func NewAlertRepo(db db) AlertRepo {
	return &pgAlertRepo{db: db}
}

const alertColumns = `id, company_id, alert_type, severity, message, details, triggered_at, resolved, resolved_at`

func (r *pgAlertRepo) Create(ctx context.Context, a domain.Alert) (domain.Alert, error) {
	got, err := insertAlert(ctx, r.db, a)
	if err != nil {
		return domain.Alert{}, fmt.Errorf("repo.AlertRepo.Create: %w", err)
	}
	return got, nil
}

func (r *pgAlertRepo) Exists(ctx context.Context, m domain.AlertMatch) (bool, error) {
	ok, err := alertExists(ctx, r.db, m)
	if err != nil {
		return false, fmt.Errorf("repo.AlertRepo.Exists: %w", err)
	}
	return ok, nil
}

func (r *pgAlertRepo) CreateIfAbsent(ctx context.Context, a domain.Alert, m domain.AlertMatch) (domain.Alert, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Alert{}, false, fmt.Errorf("repo.AlertRepo.CreateIfAbsent: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// released at commit or rollback
	lockKey := "alert:" + m.CompanyID.String() + ":" + string(m.Kind)
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended(@key, 0))`, pgx.NamedArgs{"key": lockKey}); err != nil {
		return domain.Alert{}, false, fmt.Errorf("repo.AlertRepo.CreateIfAbsent: lock: %w", err)
	}

	exists, err := alertExists(ctx, tx, m)
	if err != nil {
		return domain.Alert{}, false, fmt.Errorf("repo.AlertRepo.CreateIfAbsent: %w", err)
	}
	if exists {
		return domain.Alert{}, false, nil
	}

	got, err := insertAlert(ctx, tx, a)
	if err != nil {
		return domain.Alert{}, false, fmt.Errorf("repo.AlertRepo.CreateIfAbsent: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Alert{}, false, fmt.Errorf("repo.AlertRepo.CreateIfAbsent: commit: %w", err)
	}
	return got, true, nil
}

func (r *pgAlertRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Alert, error) {
	const q = `SELECT ` + alertColumns + ` FROM compliance_alerts WHERE id = @id`

	got, err := scanAlert(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Alert{}, fmt.Errorf("repo.AlertRepo.GetByID: %w", mapNoRows(err))
	}
	return got, nil
}

const alertFilterWhere = `
	WHERE (@company_id::uuid IS NULL OR company_id = @company_id::uuid)
	  AND (@kind::text = '' OR alert_type = @kind::text)
	  AND (@severity::text = '' OR severity = @severity::text)
	  AND (@resolved::boolean IS NULL OR resolved = @resolved::boolean)`

func (r *pgAlertRepo) List(ctx context.Context, f domain.AlertFilter, p domain.PaginationParams) ([]domain.Alert, int64, error) {
	args := pgx.NamedArgs{
		"company_id": f.CompanyID,
		"kind":       string(f.Kind),
		"severity":   string(f.Severity),
		"resolved":   f.Resolved,
		"limit":      p.Limit,
		"offset":     p.Offset(),
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM compliance_alerts`+alertFilterWhere, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.AlertRepo.List: count: %w", err)
	}

	const q = `SELECT ` + alertColumns + ` FROM compliance_alerts` + alertFilterWhere + `
		ORDER BY triggered_at DESC, id
		LIMIT @limit OFFSET @offset`

	alerts, err := queryAlerts(ctx, r.db, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.AlertRepo.List: %w", err)
	}
	return alerts, total, nil
}

func (r *pgAlertRepo) Recent(ctx context.Context, companyID uuid.UUID, limit int) ([]domain.Alert, error) {
	const q = `
		SELECT ` + alertColumns + `
		FROM compliance_alerts
		WHERE company_id = @company_id AND NOT resolved
		ORDER BY triggered_at DESC, id
		LIMIT @limit`

	alerts, err := queryAlerts(ctx, r.db, q, pgx.NamedArgs{"company_id": companyID, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("repo.AlertRepo.Recent: %w", err)
	}
	return alerts, nil
}

func (r *pgAlertRepo) Resolve(ctx context.Context, id uuid.UUID, at time.Time) (domain.Alert, error) {
	const q = `
		UPDATE compliance_alerts
		SET resolved = true, resolved_at = COALESCE(resolved_at, @at)
		WHERE id = @id
		RETURNING ` + alertColumns

	got, err := scanAlert(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "at": at}))
	if err != nil {
		return domain.Alert{}, fmt.Errorf("repo.AlertRepo.Resolve: %w", mapNoRows(err))
	}
	return got, nil
}

// alertQuerier is the subset of db used by the helpers below, so they run
// against either the repo's connection or an open transaction.
type alertQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertAlert(ctx context.Context, q alertQuerier, a domain.Alert) (domain.Alert, error) {
	const stmt = `
		INSERT INTO compliance_alerts (company_id, alert_type, severity, message, details, triggered_at)
		VALUES (@company_id, @alert_type, @severity, @message, @details, COALESCE(@triggered_at, now()))
		RETURNING ` + alertColumns

	details := a.Details
	if details == nil {
		details = map[string]any{}
	}
	var triggeredAt *time.Time
	if !a.TriggeredAt.IsZero() {
		triggeredAt = &a.TriggeredAt
	}

	args := pgx.NamedArgs{
		"company_id":   a.CompanyID,
		"alert_type":   string(a.Kind),
		"severity":     string(a.Severity),
		"message":      a.Message,
		"details":      details,
		"triggered_at": triggeredAt,
	}
	got, err := scanAlert(q.QueryRow(ctx, stmt, args))
	if err != nil && isForeignKeyViolation(err) {
		return domain.Alert{}, fmt.Errorf("company: %w", domain.ErrNotFound)
	}
	return got, err
}

func alertExists(ctx context.Context, q alertQuerier, m domain.AlertMatch) (bool, error) {
	// strpos rather than LIKE so names containing % or _ match literally
	const stmt = `
		SELECT EXISTS (
			SELECT 1 FROM compliance_alerts
			WHERE company_id = @company_id
			  AND alert_type = @alert_type
			  AND strpos(message, @contains) > 0
			  AND triggered_at >= @after
			  AND (NOT @unresolved_only OR NOT resolved)
		)`

	args := pgx.NamedArgs{
		"company_id":      m.CompanyID,
		"alert_type":      string(m.Kind),
		"contains":        m.MessageContains,
		"after":           m.TriggeredAfter,
		"unresolved_only": m.UnresolvedOnly,
	}
	var exists bool
	if err := q.QueryRow(ctx, stmt, args).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func queryAlerts(ctx context.Context, q alertQuerier, stmt string, args pgx.NamedArgs) ([]domain.Alert, error) {
	rows, err := q.Query(ctx, stmt, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alerts := []domain.Alert{}
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return alerts, nil
}

func scanAlert(s scanner) (domain.Alert, error) {
	var (
		a        domain.Alert
		kind     string
		severity string
	)
	err := s.Scan(&a.ID, &a.CompanyID, &kind, &severity, &a.Message, &a.Details, &a.TriggeredAt, &a.Resolved, &a.ResolvedAt)
	if err != nil {
		return domain.Alert{}, err
	}
	a.Kind = domain.AlertKind(kind)
	a.Severity = domain.Severity(severity)
	return a, nil
}
