package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/model"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresFromPool(mock), mock
}

var runRowColumns = []string{
	"id", "portal", "location_query", "started_at", "finished_at",
	"total_listings", "success_count", "error_count", "status",
}

func TestPostgresGetRun(t *testing.T) {
	s, mock := newMockStore(t)
	started := time.Now().UTC()
	finished := started.Add(2 * time.Minute)

	mock.ExpectQuery(`SELECT .+ FROM scrape_runs WHERE id = \$1`).
		WithArgs("run-123").
		WillReturnRows(pgxmock.NewRows(runRowColumns).
			AddRow("run-123", "rightmove", strPtr("London"), started, &finished, 5, 4, 1, "completed_with_errors"))

	run, err := s.GetRun(context.Background(), "run-123")
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "rightmove", run.Portal)
	assert.Equal(t, 4, run.SuccessCount)
	assert.Equal(t, model.RunStatusCompletedWithErrors, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetRunNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM scrape_runs WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	run, err := s.GetRun(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, run)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListRunsFilterSQL(t *testing.T) {
	s, mock := newMockStore(t)
	started := time.Now().UTC()

	mock.ExpectQuery(`SELECT .+ FROM scrape_runs WHERE true AND status = \$1 AND portal = \$2 ORDER BY started_at DESC LIMIT \$3`).
		WithArgs("success", "rightmove", 10).
		WillReturnRows(pgxmock.NewRows(runRowColumns).
			AddRow("run-1", "rightmove", nil, started, nil, 3, 3, 0, "success"))

	runs, err := s.ListRuns(context.Background(), RunFilter{
		Status: model.RunStatusSuccess,
		Portal: "rightmove",
		Limit:  10,
	})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.Nil(t, runs[0].FinishedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresReplaceRentBenchmarks(t *testing.T) {
	s, mock := newMockStore(t)

	cols := []string{
		"country", "city", "submarket_id", "bedrooms", "property_type",
		"rent_psqm_min", "rent_psqm_max", "sample_size", "currency", "source", "as_of_date",
	}

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM rent_benchmarks`).WillReturnResult(pgxmock.NewResult("DELETE", 4))
	mock.ExpectCopyFrom(pgx.Identifier{"rent_benchmarks"}, cols).WillReturnResult(2)
	mock.ExpectCommit()
	mock.ExpectRollback()

	asOf := time.Now().UTC()
	n, err := s.ReplaceRentBenchmarks(context.Background(), []model.RentBenchmark{
		{Country: "UK", City: "London", RentPSQMMin: 20, RentPSQMMax: 35, SampleSize: 8,
			Currency: "GBP", Source: "rightmove_scrape", AsOfDate: asOf},
		{Country: "UK", City: "Leeds", RentPSQMMin: 10, RentPSQMMax: 16, SampleSize: 5,
			Currency: "GBP", Source: "rightmove_scrape", AsOfDate: asOf},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresReplaceRentBenchmarksEmptySkipsCopy(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM rent_benchmarks`).WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectCommit()
	mock.ExpectRollback()

	n, err := s.ReplaceRentBenchmarks(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSavepointRollsBackFailedRecord(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`SAVEPOINT sp_1`).WillReturnResult(pgxmock.NewResult("SAVEPOINT", 0))
	mock.ExpectExec(`ROLLBACK TO SAVEPOINT sp_1`).WillReturnResult(pgxmock.NewResult("ROLLBACK", 0))
	mock.ExpectExec(`RELEASE SAVEPOINT sp_1`).WillReturnResult(pgxmock.NewResult("RELEASE", 0))
	mock.ExpectExec(`SAVEPOINT sp_1`).WillReturnResult(pgxmock.NewResult("SAVEPOINT", 0))
	mock.ExpectExec(`RELEASE SAVEPOINT sp_1`).WillReturnResult(pgxmock.NewResult("RELEASE", 0))
	mock.ExpectCommit()

	ctx := context.Background()
	sess, err := s.Begin(ctx)
	require.NoError(t, err)

	boom := eris.New("bad record")
	err = sess.Savepoint(ctx, func() error { return boom })
	require.Error(t, err)
	assert.True(t, eris.Is(err, boom))

	// Savepoint names restart after the depth counter unwinds.
	require.NoError(t, sess.Savepoint(ctx, func() error { return nil }))
	require.NoError(t, sess.Commit(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetOrCreateMarketInserts(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, name, country, code, created_at FROM markets`).
		WithArgs("London", "UK").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO markets`).
		WithArgs("London", "UK", strPtr("LON"), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	ctx := context.Background()
	sess, err := s.Begin(ctx)
	require.NoError(t, err)

	m, err := sess.GetOrCreateMarket(ctx, "London", "UK", strPtr("LON"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), m.ID)
	assert.Equal(t, "LON", *m.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindPropertyNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM properties WHERE full_address = \$1 AND postcode = \$2`).
		WithArgs("1 Nowhere Lane", "XX1 1XX").
		WillReturnError(pgx.ErrNoRows)

	ctx := context.Background()
	sess, err := s.Begin(ctx)
	require.NoError(t, err)

	p, err := sess.FindProperty(ctx, "1 Nowhere Lane", strPtr("XX1 1XX"))
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateRun(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO scrape_runs`).
		WithArgs(pgxmock.AnyArg(), "rightmove", strPtr("London"), pgxmock.AnyArg(), "running").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	ctx := context.Background()
	sess, err := s.Begin(ctx)
	require.NoError(t, err)

	run, err := sess.CreateRun(ctx, "rightmove", strPtr("London"))
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
