// Package handler implements the HTTP API of the compliance backend.
// All handlers are methods on Server. Methods are split into resource files
// (company.go, trip.go, ...) but share the same Server struct so they can
// reach its dependencies. Register mounts them on a chi router.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/fleetcarbon/compliance-backend/internal/anomaly"
	"github.com/fleetcarbon/compliance-backend/internal/domain"
	"github.com/fleetcarbon/compliance-backend/internal/service"
)

// The interfaces below are defined here, in the consumer package, so handler
// tests can inject function-field mocks without a database.

// CompanyServicer is the company surface the handlers depend on.
type CompanyServicer interface {
	Create(ctx context.Context, c domain.Company) (domain.Company, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Company, error)
	List(ctx context.Context, p domain.PaginationParams) ([]domain.Company, int64, error)
	RecomputeESG(ctx context.Context, id uuid.UUID) (domain.Company, error)
}

// VehicleServicer is the vehicle surface the handlers depend on.
type VehicleServicer interface {
	Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]domain.Vehicle, error)
}

// TripServicer is the trip surface the handlers depend on.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, f domain.TripFilter) ([]domain.Trip, error)
}

// AnalyticsServicer builds trend reports.
type AnalyticsServicer interface {
	Analyze(ctx context.Context, companyID uuid.UUID, threshold *decimal.Decimal) (service.CompanyAnalytics, error)
}

// DetectionServicer runs anomaly detection.
type DetectionServicer interface {
	DefaultOptions() anomaly.Options
	Detect(ctx context.Context, companyID uuid.UUID, opts anomaly.Options) (anomaly.Report, error)
}

// DeadlineServicer manages deadlines and deadline alerts.
type DeadlineServicer interface {
	Create(ctx context.Context, d domain.Deadline) (domain.Deadline, error)
	List(ctx context.Context) ([]domain.Deadline, error)
	Upcoming(ctx context.Context) ([]domain.Deadline, error)
	Today() time.Time
	Evaluate(ctx context.Context, companyID *uuid.UUID) (service.EvaluationResult, error)
}

// AlertServicer lists and resolves alerts.
type AlertServicer interface {
	List(ctx context.Context, f domain.AlertFilter, p domain.PaginationParams) ([]domain.Alert, int64, error)
	Resolve(ctx context.Context, id uuid.UUID) (domain.Alert, error)
}

// DashboardServicer assembles the dashboard.
type DashboardServicer interface {
	Metrics(ctx context.Context, companyID uuid.UUID) (service.Dashboard, error)
}

// Services groups every dependency of Server. Nil members leave their routes
// unregistered, which keeps narrow handler tests small.
type Services struct {
	Companies  CompanyServicer
	Vehicles   VehicleServicer
	Trips      TripServicer
	Analytics  AnalyticsServicer
	Detection  DetectionServicer
	Deadlines  DeadlineServicer
	Alerts     AlertServicer
	Dashboard  DashboardServicer
	Gatherer   prometheus.Gatherer
	OpenAPIDoc []byte
}

// Server serves every API endpoint.
type Server struct {
	svc Services
	log *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(svc Services, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{svc: svc, log: log}
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", s.GetHealth)
	r.Post("/emissions/calculate", s.CalculateEmissions)

	if s.svc.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.svc.Gatherer, promhttp.HandlerOpts{}))
	}
	if s.svc.OpenAPIDoc != nil {
		r.Get("/openapi.yaml", s.GetOpenAPI)
	}

	if s.svc.Companies != nil {
		r.Post("/companies", s.CreateCompany)
		r.Get("/companies", s.ListCompanies)
		r.Get("/companies/{id}", s.GetCompany)
		r.Post("/companies/{id}/esg-score", s.RecomputeESG)
	}
	if s.svc.Analytics != nil {
		r.Get("/companies/{id}/analytics", s.GetAnalytics)
	}
	if s.svc.Detection != nil {
		r.Post("/companies/{id}/anomalies/detect", s.DetectAnomalies)
	}
	if s.svc.Vehicles != nil {
		r.Post("/vehicles", s.CreateVehicle)
		r.Get("/companies/{id}/vehicles", s.ListVehicles)
	}
	if s.svc.Trips != nil {
		r.Post("/trips", s.CreateTrip)
		r.Get("/trips/{id}", s.GetTrip)
		r.Get("/companies/{id}/trips", s.ListCompanyTrips)
	}
	if s.svc.Deadlines != nil {
		r.Get("/deadlines", s.ListDeadlines)
		r.Post("/deadlines", s.CreateDeadline)
		r.Get("/deadlines/upcoming", s.ListUpcomingDeadlines)
		r.Post("/deadlines/evaluate", s.EvaluateDeadlines)
	}
	if s.svc.Alerts != nil {
		r.Get("/alerts", s.ListAlerts)
		r.Post("/alerts/{id}/resolve", s.ResolveAlert)
	}
	if s.svc.Dashboard != nil {
		r.Get("/dashboard/metrics", s.GetDashboardMetrics)
	}
}

// Handler returns a router with only the API routes mounted. Production
// wiring in cmd/api adds middleware in front of the same routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}
