package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fleetcarbon/compliance-backend/internal/domain"
	"github.com/fleetcarbon/compliance-backend/internal/emissions"
	"github.com/fleetcarbon/compliance-backend/internal/repo"
)

type demoVehicle struct {
	registration string
	class        domain.VehicleClass
	capacity     string
	year         int
}

// tripBatch is a run of identical trips spread over the months of one year.
type tripBatch struct {
	vehicle  int // index into demoVehicles
	year     int
	months   int
	count    int
	distance string
	weight   string
}

var demoVehicles = []demoVehicle{
	{"NO-DIESEL-001", domain.VehicleDiesel, "10.0", 2020},
	{"NO-DIESEL-002", domain.VehicleDiesel, "12.0", 2019},
	{"NO-EV-001", domain.VehicleEVGrid, "8.0", 2023},
}

// Emissions rise year on year so the dataset shows an increasing trend.
var demoBatches = []tripBatch{
	{vehicle: 0, year: 2023, months: 12, count: 80, distance: "250", weight: "8.0"},
	{vehicle: 1, year: 2024, months: 12, count: 120, distance: "300", weight: "9.0"},
	{vehicle: 0, year: 2025, months: 11, count: 100, distance: "320", weight: "10.0"},
	{vehicle: 2, year: 2025, months: 11, count: 50, distance: "200", weight: "7.0"},
}

type demoDeadline struct {
	name        string
	daysFromNow int
	description string
}

var demoDeadlines = []demoDeadline{
	{"CSRD Annual Sustainability Report", 45, "Submit annual sustainability report under CSRD regulations"},
	{"CSRD Q2 Carbon Disclosure", 120, "Quarterly carbon emissions disclosure"},
	{"EU Taxonomy Compliance Verification", 180, "Annual EU Taxonomy alignment verification"},
}

// tripDate spreads the i-th trip of a batch across months and days.
func tripDate(b tripBatch, i int) time.Time {
	return time.Date(b.year, time.Month(i%b.months+1), i%28+1, 0, 0, 0, 0, time.UTC)
}

type seeder struct {
	companies repo.CompanyRepo
	vehicles  repo.VehicleRepo
	trips     repo.TripRepo
	deadlines repo.DeadlineRepo
}

type seedSummary struct {
	companyID uuid.UUID
	vehicles  int
	trips     int
	deadlines int
	totalKg   decimal.Decimal
}

func (s seeder) load(ctx context.Context, today time.Time) (seedSummary, error) {
	baseline := decimal.NewFromInt(15_000_000)
	company, err := s.companies.Create(ctx, domain.Company{
		Name:              "Nordic Transport AS",
		Country:           "Norway",
		AnnualTurnover:    decimal.NewFromInt(5_000_000),
		ESGScore:          domain.DefaultESGScore,
		BaselineEmissions: &baseline,
	})
	if err != nil {
		return seedSummary{}, fmt.Errorf("seed: company: %w", err)
	}
	sum := seedSummary{companyID: company.ID}

	vehicles := make([]domain.Vehicle, len(demoVehicles))
	for i, dv := range demoVehicles {
		v, err := s.vehicles.Create(ctx, domain.Vehicle{
			CompanyID:        company.ID,
			Registration:     dv.registration,
			Class:            dv.class,
			CapacityTonnes:   decimal.RequireFromString(dv.capacity),
			RegistrationYear: dv.year,
		})
		if err != nil {
			return seedSummary{}, fmt.Errorf("seed: vehicle %s: %w", dv.registration, err)
		}
		vehicles[i] = v
	}
	sum.vehicles = len(vehicles)

	for _, b := range demoBatches {
		v := vehicles[b.vehicle]
		distance := decimal.RequireFromString(b.distance)
		weight := decimal.RequireFromString(b.weight)
		kg := emissions.Calculate(v.Class, distance, weight)
		for i := range b.count {
			_, err := s.trips.Create(ctx, domain.Trip{
				CompanyID:     company.ID,
				VehicleID:     v.ID,
				TripDate:      tripDate(b, i),
				DistanceKm:    distance,
				WeightTonnes:  weight,
				EmissionsKg:   kg,
				InvoiceSource: fmt.Sprintf("DEMO-%d-%s-%03d", b.year, v.Registration, i+1),
			})
			if err != nil {
				return seedSummary{}, fmt.Errorf("seed: trip: %w", err)
			}
			sum.totalKg = sum.totalKg.Add(kg)
		}
		sum.trips += b.count
	}

	for _, dd := range demoDeadlines {
		_, err := s.deadlines.Create(ctx, domain.Deadline{
			Name:         dd.name,
			Date:         domain.TruncateDay(today).AddDate(0, 0, dd.daysFromNow),
			Regulation:   "CSRD",
			Description:  dd.description,
			ApplicableTo: "All Nordic Companies",
		})
		if err != nil {
			return seedSummary{}, fmt.Errorf("seed: deadline: %w", err)
		}
	}
	sum.deadlines = len(demoDeadlines)
	return sum, nil
}
