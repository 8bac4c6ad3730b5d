package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fleetcarbon/compliance-backend/internal/domain"
	"github.com/fleetcarbon/compliance-backend/internal/repo"
	"github.com/fleetcarbon/compliance-backend/testutil"
)

// repos bundles every repo over one transaction, so tests can build a
// company → vehicle → trip hierarchy that is rolled back when the test ends.
type repos struct {
	companies repo.CompanyRepo
	vehicles  repo.VehicleRepo
	trips     repo.TripRepo
	deadlines repo.DeadlineRepo
	alerts    repo.AlertRepo
}

// newTestRepos requires TEST_DATABASE_URL; TestMain applies migrations.
func newTestRepos(t *testing.T) repos {
	t.Helper()
	tx := testutil.NewTx(t)
	return repos{
		companies: repo.NewCompanyRepo(tx),
		vehicles:  repo.NewVehicleRepo(tx),
		trips:     repo.NewTripRepo(tx),
		deadlines: repo.NewDeadlineRepo(tx),
		alerts:    repo.NewAlertRepo(tx),
	}
}

func mustCompany(t *testing.T, r repos, name string) domain.Company {
	t.Helper()
	c, err := r.companies.Create(context.Background(), domain.Company{
		Name:           name,
		Country:        "NO",
		AnnualTurnover: decimal.RequireFromString("5000000.00"),
		ESGScore:       domain.DefaultESGScore,
	})
	require.NoError(t, err)
	return c
}

func mustVehicle(t *testing.T, r repos, c domain.Company, reg string, class domain.VehicleClass) domain.Vehicle {
	t.Helper()
	v, err := r.vehicles.Create(context.Background(), domain.Vehicle{
		CompanyID:        c.ID,
		Registration:     reg,
		Class:            class,
		CapacityTonnes:   decimal.RequireFromString("12.5"),
		RegistrationYear: 2021,
	})
	require.NoError(t, err)
	return v
}

func mustTrip(t *testing.T, r repos, v domain.Vehicle, emissions string) domain.Trip {
	t.Helper()
	tr, err := r.trips.Create(context.Background(), domain.Trip{
		CompanyID:    v.CompanyID,
		VehicleID:    v.ID,
		TripDate:     time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		DistanceKm:   decimal.RequireFromString("100"),
		WeightTonnes: decimal.RequireFromString("5"),
		EmissionsKg:  decimal.RequireFromString(emissions),
	})
	require.NoError(t, err)
	return tr
}
