package service_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fleetcarbon/compliance-backend/internal/domain"
	"github.com/fleetcarbon/compliance-backend/internal/repo"
)

// Hand-written test doubles for the repo interfaces.
// Each method is a function field: set only the ones your test needs.

type mockCompanyRepo struct {
	create         func(ctx context.Context, c domain.Company) (domain.Company, error)
	getByID        func(ctx context.Context, id uuid.UUID) (domain.Company, error)
	list           func(ctx context.Context, p domain.PaginationParams) ([]domain.Company, int64, error)
	listIDs        func(ctx context.Context) ([]uuid.UUID, error)
	updateESGScore func(ctx context.Context, id uuid.UUID, score float64) (domain.Company, error)
}

func (m *mockCompanyRepo) Create(ctx context.Context, c domain.Company) (domain.Company, error) {
	return m.create(ctx, c)
}
func (m *mockCompanyRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Company, error) {
	return m.getByID(ctx, id)
}
func (m *mockCompanyRepo) List(ctx context.Context, p domain.PaginationParams) ([]domain.Company, int64, error) {
	return m.list(ctx, p)
}
func (m *mockCompanyRepo) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	return m.listIDs(ctx)
}
func (m *mockCompanyRepo) UpdateESGScore(ctx context.Context, id uuid.UUID, score float64) (domain.Company, error) {
	return m.updateESGScore(ctx, id, score)
}

var _ repo.CompanyRepo = (*mockCompanyRepo)(nil)

type mockVehicleRepo struct {
	create        func(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.Vehicle, error)
	listByCompany func(ctx context.Context, companyID uuid.UUID) ([]domain.Vehicle, error)
}

func (m *mockVehicleRepo) Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	return m.create(ctx, v)
}
func (m *mockVehicleRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error) {
	return m.getByID(ctx, id)
}
func (m *mockVehicleRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]domain.Vehicle, error) {
	return m.listByCompany(ctx, companyID)
}

var _ repo.VehicleRepo = (*mockVehicleRepo)(nil)

type mockTripRepo struct {
	create        func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	listByCompany func(ctx context.Context, companyID uuid.UUID, f domain.TripFilter) ([]domain.Trip, error)
	markAnomalous func(ctx context.Context, flags []domain.AnomalyFlag) error
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, f domain.TripFilter) ([]domain.Trip, error) {
	return m.listByCompany(ctx, companyID, f)
}
func (m *mockTripRepo) MarkAnomalous(ctx context.Context, flags []domain.AnomalyFlag) error {
	return m.markAnomalous(ctx, flags)
}

var _ repo.TripRepo = (*mockTripRepo)(nil)

type mockDeadlineRepo struct {
	create   func(ctx context.Context, d domain.Deadline) (domain.Deadline, error)
	list     func(ctx context.Context) ([]domain.Deadline, error)
	upcoming func(ctx context.Context, today time.Time, horizonDays int) ([]domain.Deadline, error)
}

func (m *mockDeadlineRepo) Create(ctx context.Context, d domain.Deadline) (domain.Deadline, error) {
	return m.create(ctx, d)
}
func (m *mockDeadlineRepo) List(ctx context.Context) ([]domain.Deadline, error) {
	return m.list(ctx)
}
func (m *mockDeadlineRepo) Upcoming(ctx context.Context, today time.Time, horizonDays int) ([]domain.Deadline, error) {
	return m.upcoming(ctx, today, horizonDays)
}

var _ repo.DeadlineRepo = (*mockDeadlineRepo)(nil)

// memAlertRepo is an in-memory AlertRepo. Unlike the other doubles it keeps
// state, so dedup behaviour across several service calls can be asserted.
type memAlertRepo struct {
	mu     sync.Mutex
	alerts []domain.Alert
	// createErr, when set, fails every insert.
	createErr error
}

func (m *memAlertRepo) Create(_ context.Context, a domain.Alert) (domain.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insert(a)
}

func (m *memAlertRepo) insert(a domain.Alert) (domain.Alert, error) {
	if m.createErr != nil {
		return domain.Alert{}, m.createErr
	}
	a.ID = uuid.New()
	m.alerts = append(m.alerts, a)
	return a, nil
}

func (m *memAlertRepo) matches(a domain.Alert, match domain.AlertMatch) bool {
	return a.CompanyID == match.CompanyID &&
		a.Kind == match.Kind &&
		strings.Contains(a.Message, match.MessageContains) &&
		!a.TriggeredAt.Before(match.TriggeredAfter) &&
		(!match.UnresolvedOnly || !a.Resolved)
}

func (m *memAlertRepo) Exists(_ context.Context, match domain.AlertMatch) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.alerts {
		if m.matches(a, match) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memAlertRepo) CreateIfAbsent(_ context.Context, a domain.Alert, match domain.AlertMatch) (domain.Alert, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.alerts {
		if m.matches(existing, match) {
			return existing, false, nil
		}
	}
	got, err := m.insert(a)
	return got, err == nil, err
}

func (m *memAlertRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.alerts {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.Alert{}, domain.ErrNotFound
}

func (m *memAlertRepo) List(_ context.Context, f domain.AlertFilter, _ domain.PaginationParams) ([]domain.Alert, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Alert
	for _, a := range m.alerts {
		if f.CompanyID != nil && a.CompanyID != *f.CompanyID {
			continue
		}
		if f.Kind != "" && a.Kind != f.Kind {
			continue
		}
		out = append(out, a)
	}
	return out, int64(len(out)), nil
}

func (m *memAlertRepo) Recent(_ context.Context, companyID uuid.UUID, limit int) ([]domain.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Alert
	for i := len(m.alerts) - 1; i >= 0 && len(out) < limit; i-- {
		if a := m.alerts[i]; a.CompanyID == companyID && !a.Resolved {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAlertRepo) Resolve(_ context.Context, id uuid.UUID, at time.Time) (domain.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.alerts {
		if m.alerts[i].ID != id {
			continue
		}
		if !m.alerts[i].Resolved {
			m.alerts[i].Resolved = true
			m.alerts[i].ResolvedAt = &at
		}
		return m.alerts[i], nil
	}
	return domain.Alert{}, domain.ErrNotFound
}

func (m *memAlertRepo) byKind(k domain.AlertKind) []domain.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Alert
	for _, a := range m.alerts {
		if a.Kind == k {
			out = append(out, a)
		}
	}
	return out
}

var _ repo.AlertRepo = (*memAlertRepo)(nil)

// ---- shared fixtures --------------------------------------------------------

// companiesOf returns a company repo that knows exactly the given companies.
func companiesOf(cs ...domain.Company) *mockCompanyRepo {
	return &mockCompanyRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Company, error) {
			for _, c := range cs {
				if c.ID == id {
					return c, nil
				}
			}
			return domain.Company{}, domain.ErrNotFound
		},
		listIDs: func(context.Context) ([]uuid.UUID, error) {
			ids := make([]uuid.UUID, len(cs))
			for i, c := range cs {
				ids[i] = c.ID
			}
			return ids, nil
		},
	}
}

// tripsOf returns a trip repo serving a fixed history per company.
func tripsOf(history map[uuid.UUID][]domain.Trip) *mockTripRepo {
	return &mockTripRepo{
		listByCompany: func(_ context.Context, id uuid.UUID, _ domain.TripFilter) ([]domain.Trip, error) {
			return history[id], nil
		},
		markAnomalous: func(context.Context, []domain.AnomalyFlag) error { return nil },
	}
}
