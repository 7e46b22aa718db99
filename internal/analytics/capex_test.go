package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockEngine(t *testing.T) (*Engine, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewEngine(mock), mock
}

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

func TestBestCostBenchmark(t *testing.T) {
	e, mock := newMockEngine(t)
	asOf := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .+ FROM construction_cost_benchmarks`).
		WithArgs("UK", "residential", "standard", "London").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "country", "region", "building_type", "spec_level",
			"cost_per_sqm_min", "cost_per_sqm_max", "currency", "source", "as_of_date",
		}).AddRow(int64(2), "UK", "London", "residential", "standard",
			1700.0, 2300.0, "GBP", strPtr("Internal estimate"), &asOf))

	bm, err := e.BestCostBenchmark(context.Background(), "UK", "London", "residential", "standard")
	require.NoError(t, err)
	require.NotNil(t, bm)
	assert.InDelta(t, 1700, bm.CostPerSqmMin, 0.001)
	assert.InDelta(t, 2300, bm.CostPerSqmMax, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEstimateCapex(t *testing.T) {
	e, mock := newMockEngine(t)
	asOf := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT floor_area_sqm, current_rent_pcm, opex_estimate_per_year FROM properties`).
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"floor_area_sqm", "current_rent_pcm", "opex_estimate_per_year"}).
			AddRow(floatPtr(100), floatPtr(2000), nil))

	mock.ExpectQuery(`SELECT .+ FROM construction_cost_benchmarks`).
		WithArgs("UK", "residential", "standard", "London").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "country", "region", "building_type", "spec_level",
			"cost_per_sqm_min", "cost_per_sqm_max", "currency", "source", "as_of_date",
		}).AddRow(int64(2), "UK", "London", "residential", "standard",
			1700.0, 2300.0, "GBP", nil, &asOf))

	mock.ExpectQuery(`SELECT name, typical_cost_min, typical_cost_max, impact_on_rent_pct`).
		WithArgs([]int64{1}).
		WillReturnRows(pgxmock.NewRows([]string{"name", "typical_cost_min", "typical_cost_max", "impact_on_rent_pct"}).
			AddRow("Kitchen refurbishment", 8000.0, 15000.0, floatPtr(5)))

	mock.ExpectExec(`UPDATE properties SET capex_estimate_per_sqm`).
		WithArgs(2115.0, int64(42)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	purchase := 500000.0
	est, err := e.EstimateCapex(context.Background(), CapexRequest{
		PropertyID:          42,
		RenovationModuleIDs: []int64{1},
		PurchasePrice:       &purchase,
	})
	require.NoError(t, err)

	// Benchmark midpoint 2000/sqm over 100 sqm, plus one 11500 module.
	assert.InDelta(t, 200000, est.BaseCapex, 0.001)
	assert.InDelta(t, 11500, est.ModulesCapex, 0.001)
	assert.InDelta(t, 211500, est.TotalCapex, 0.001)
	assert.InDelta(t, 2115, est.CapexPerSqm, 0.001)
	assert.Equal(t, []string{"Kitchen refurbishment"}, est.Modules)
	assert.InDelta(t, 5, est.ImpactRentPct, 0.001)

	require.NotNil(t, est.NewRentPCM)
	assert.InDelta(t, 2100, *est.NewRentPCM, 0.001)
	require.NotNil(t, est.YearlyRent)
	assert.InDelta(t, 25200, *est.YearlyRent, 0.001)
	require.NotNil(t, est.NewYield)
	assert.InDelta(t, 25200.0/711500.0, *est.NewYield, 0.0001)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEstimateCapexRequiresFloorArea(t *testing.T) {
	e, mock := newMockEngine(t)

	mock.ExpectQuery(`SELECT floor_area_sqm, current_rent_pcm, opex_estimate_per_year FROM properties`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"floor_area_sqm", "current_rent_pcm", "opex_estimate_per_year"}).
			AddRow(nil, nil, nil))

	_, err := e.EstimateCapex(context.Background(), CapexRequest{PropertyID: 7})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no floor area")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshRiskScores(t *testing.T) {
	e, mock := newMockEngine(t)

	mock.ExpectQuery(`SELECT id, year_built, energy_rating FROM properties`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "year_built", "energy_rating"}).
			AddRow(int64(1), intPtr(1940), nil).
			AddRow(int64(2), nil, strPtr("B")))

	mock.ExpectExec(`UPDATE properties SET`).
		WithArgs("full", 50.0, int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE properties SET`).
		WithArgs("none", 20.0, int64(2)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	n, err := e.RefreshRiskScores(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
