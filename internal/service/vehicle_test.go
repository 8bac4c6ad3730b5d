package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetcarbon/compliance-backend/internal/domain"
	"github.com/fleetcarbon/compliance-backend/internal/service"
)

func TestVehicleService_Create(t *testing.T) {
	company := domain.Company{ID: uuid.New()}
	repo := &mockVehicleRepo{create: func(_ context.Context, v domain.Vehicle) (domain.Vehicle, error) { return v, nil }}
	svc := service.NewVehicleService(repo, companiesOf(company))

	got, err := svc.Create(context.Background(), domain.Vehicle{
		CompanyID:      company.ID,
		Registration:   " EV-0001 ",
		Class:          domain.VehicleEVGrid,
		CapacityTonnes: decimal.NewFromInt(12),
	})

	require.NoError(t, err)
	assert.Equal(t, "EV-0001", got.Registration)
	assert.Equal(t, service.DefaultRegistrationYear, got.RegistrationYear)
}

func TestVehicleService_Create_Validation(t *testing.T) {
	company := domain.Company{ID: uuid.New()}
	svc := service.NewVehicleService(&mockVehicleRepo{}, companiesOf(company))
	cases := map[string]domain.Vehicle{
		"missing registration": {CompanyID: company.ID, Class: domain.VehicleDiesel},
		"unknown class":        {CompanyID: company.ID, Registration: "X", Class: "HYDROGEN"},
		"negative capacity":    {CompanyID: company.ID, Registration: "X", Class: domain.VehicleDiesel, CapacityTonnes: decimal.NewFromInt(-2)},
	}
	for name, v := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), v)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestVehicleService_Create_UnknownCompany(t *testing.T) {
	svc := service.NewVehicleService(&mockVehicleRepo{}, companiesOf())

	_, err := svc.Create(context.Background(), domain.Vehicle{
		CompanyID: uuid.New(), Registration: "X", Class: domain.VehicleDiesel,
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVehicleService_ListByCompany_NeverNil(t *testing.T) {
	company := domain.Company{ID: uuid.New()}
	repo := &mockVehicleRepo{listByCompany: func(context.Context, uuid.UUID) ([]domain.Vehicle, error) { return nil, nil }}
	svc := service.NewVehicleService(repo, companiesOf(company))

	got, err := svc.ListByCompany(context.Background(), company.ID)

	require.NoError(t, err)
	assert.NotNil(t, got)
}
