package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetcarbon/compliance-backend/internal/domain"
)

func TestCompanyRepo_CreateAndGet(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	baseline := decimal.RequireFromString("250000.5")

	created, err := r.companies.Create(ctx, domain.Company{
		Name:              "Fjord Freight",
		Country:           "NO",
		AnnualTurnover:    decimal.RequireFromString("12000000"),
		ESGScore:          50,
		BaselineEmissions: &baseline,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := r.companies.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fjord Freight", got.Name)
	assert.True(t, got.AnnualTurnover.Equal(decimal.RequireFromString("12000000")))
	require.NotNil(t, got.BaselineEmissions)
	assert.True(t, got.BaselineEmissions.Equal(baseline))
}

func TestCompanyRepo_GetByID_NotFound(t *testing.T) {
	r := newTestRepos(t)

	_, err := r.companies.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCompanyRepo_NoBaseline(t *testing.T) {
	r := newTestRepos(t)

	c := mustCompany(t, r, "No Baseline AS")

	assert.Nil(t, c.BaselineEmissions)
}

func TestCompanyRepo_ListPaged(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	mustCompany(t, r, "Charlie")
	mustCompany(t, r, "Alpha")
	mustCompany(t, r, "Bravo")

	page, total, err := r.companies.List(ctx, domain.PaginationParams{Page: 1, Limit: 2})

	require.NoError(t, err)
	assert.GreaterOrEqual(t, total, int64(3))
	assert.Len(t, page, 2)

	ids, err := r.companies.ListIDs(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(ids), 3)
}

func TestCompanyRepo_UpdateESGScore(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	c := mustCompany(t, r, "Green Haul")

	got, err := r.companies.UpdateESGScore(ctx, c.ID, 82.5)
	require.NoError(t, err)
	assert.Equal(t, 82.5, got.ESGScore)

	_, err = r.companies.UpdateESGScore(ctx, uuid.New(), 10)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
