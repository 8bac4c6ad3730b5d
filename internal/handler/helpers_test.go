package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fleetcarbon/compliance-backend/internal/anomaly"
	"github.com/fleetcarbon/compliance-backend/internal/domain"
	"github.com/fleetcarbon/compliance-backend/internal/handler"
	"github.com/fleetcarbon/compliance-backend/internal/service"
)

// Test doubles for the handler's servicer interfaces.
// Set only the method fields your test needs.

type mockCompanyServicer struct {
	create       func(ctx context.Context, c domain.Company) (domain.Company, error)
	get          func(ctx context.Context, id uuid.UUID) (domain.Company, error)
	list         func(ctx context.Context, p domain.PaginationParams) ([]domain.Company, int64, error)
	recomputeESG func(ctx context.Context, id uuid.UUID) (domain.Company, error)
}

func (m *mockCompanyServicer) Create(ctx context.Context, c domain.Company) (domain.Company, error) {
	return m.create(ctx, c)
}
func (m *mockCompanyServicer) Get(ctx context.Context, id uuid.UUID) (domain.Company, error) {
	return m.get(ctx, id)
}
func (m *mockCompanyServicer) List(ctx context.Context, p domain.PaginationParams) ([]domain.Company, int64, error) {
	return m.list(ctx, p)
}
func (m *mockCompanyServicer) RecomputeESG(ctx context.Context, id uuid.UUID) (domain.Company, error) {
	return m.recomputeESG(ctx, id)
}

var _ handler.CompanyServicer = (*mockCompanyServicer)(nil)

type mockVehicleServicer struct {
	create        func(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)
	listByCompany func(ctx context.Context, companyID uuid.UUID) ([]domain.Vehicle, error)
}

func (m *mockVehicleServicer) Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	return m.create(ctx, v)
}
func (m *mockVehicleServicer) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]domain.Vehicle, error) {
	return m.listByCompany(ctx, companyID)
}

var _ handler.VehicleServicer = (*mockVehicleServicer)(nil)

type mockTripServicer struct {
	create        func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	listByCompany func(ctx context.Context, companyID uuid.UUID, f domain.TripFilter) ([]domain.Trip, error)
}

func (m *mockTripServicer) Create(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	return m.create(ctx, t)
}
func (m *mockTripServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripServicer) ListByCompany(ctx context.Context, companyID uuid.UUID, f domain.TripFilter) ([]domain.Trip, error) {
	return m.listByCompany(ctx, companyID, f)
}

var _ handler.TripServicer = (*mockTripServicer)(nil)

type mockAnalyticsServicer struct {
	analyze func(ctx context.Context, companyID uuid.UUID, threshold *decimal.Decimal) (service.CompanyAnalytics, error)
}

func (m *mockAnalyticsServicer) Analyze(ctx context.Context, companyID uuid.UUID, threshold *decimal.Decimal) (service.CompanyAnalytics, error) {
	return m.analyze(ctx, companyID, threshold)
}

var _ handler.AnalyticsServicer = (*mockAnalyticsServicer)(nil)

type mockDetectionServicer struct {
	detect func(ctx context.Context, companyID uuid.UUID, opts anomaly.Options) (anomaly.Report, error)
}

func (m *mockDetectionServicer) DefaultOptions() anomaly.Options { return anomaly.DefaultOptions() }
func (m *mockDetectionServicer) Detect(ctx context.Context, companyID uuid.UUID, opts anomaly.Options) (anomaly.Report, error) {
	return m.detect(ctx, companyID, opts)
}

var _ handler.DetectionServicer = (*mockDetectionServicer)(nil)

type mockDeadlineServicer struct {
	create   func(ctx context.Context, d domain.Deadline) (domain.Deadline, error)
	list     func(ctx context.Context) ([]domain.Deadline, error)
	upcoming func(ctx context.Context) ([]domain.Deadline, error)
	today    time.Time
	evaluate func(ctx context.Context, companyID *uuid.UUID) (service.EvaluationResult, error)
}

func (m *mockDeadlineServicer) Create(ctx context.Context, d domain.Deadline) (domain.Deadline, error) {
	return m.create(ctx, d)
}
func (m *mockDeadlineServicer) List(ctx context.Context) ([]domain.Deadline, error) {
	return m.list(ctx)
}
func (m *mockDeadlineServicer) Upcoming(ctx context.Context) ([]domain.Deadline, error) {
	return m.upcoming(ctx)
}
func (m *mockDeadlineServicer) Today() time.Time { return m.today }
func (m *mockDeadlineServicer) Evaluate(ctx context.Context, companyID *uuid.UUID) (service.EvaluationResult, error) {
	return m.evaluate(ctx, companyID)
}

var _ handler.DeadlineServicer = (*mockDeadlineServicer)(nil)

type mockAlertServicer struct {
	list    func(ctx context.Context, f domain.AlertFilter, p domain.PaginationParams) ([]domain.Alert, int64, error)
	resolve func(ctx context.Context, id uuid.UUID) (domain.Alert, error)
}

func (m *mockAlertServicer) List(ctx context.Context, f domain.AlertFilter, p domain.PaginationParams) ([]domain.Alert, int64, error) {
	return m.list(ctx, f, p)
}
func (m *mockAlertServicer) Resolve(ctx context.Context, id uuid.UUID) (domain.Alert, error) {
	return m.resolve(ctx, id)
}

var _ handler.AlertServicer = (*mockAlertServicer)(nil)

type mockDashboardServicer struct {
	metrics func(ctx context.Context, companyID uuid.UUID) (service.Dashboard, error)
}

func (m *mockDashboardServicer) Metrics(ctx context.Context, companyID uuid.UUID) (service.Dashboard, error) {
	return m.metrics(ctx, companyID)
}

var _ handler.DashboardServicer = (*mockDashboardServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given services into a chi router,
// the same way cmd/api does minus the middleware.
func newHTTPHandler(svc handler.Services) http.Handler {
	return handler.NewServer(svc, nil).Handler()
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

// do sends one request and returns the recorder.
func do(t *testing.T, h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals the response body into a generic map.
func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

// errorCode returns error.code from a uniform error body.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, rec)
	e, ok := body["error"].(map[string]any)
	require.True(t, ok, "missing error object in %v", body)
	return e["code"].(string)
}
