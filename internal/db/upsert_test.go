package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkUpsert_EmptyRows(t *testing.T) {
	n, err := BulkUpsert(context.Background(), nil, UpsertConfig{
		Table:        "construction_cost_benchmarks",
		Columns:      []string{"country"},
		ConflictKeys: []string{"country"},
	}, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBulkUpsert_Validation(t *testing.T) {
	_, err := BulkUpsert(context.Background(), nil, UpsertConfig{Table: "t", ConflictKeys: []string{"k"}}, [][]any{{1}})
	assert.ErrorContains(t, err, "no columns")

	_, err = BulkUpsert(context.Background(), nil, UpsertConfig{Table: "t", Columns: []string{"c"}}, [][]any{{1}})
	assert.ErrorContains(t, err, "no conflict keys")
}

func TestBulkUpsert_HappyPath(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := []string{"country", "region", "building_type", "spec_level", "cost_per_sqm_min", "cost_per_sqm_max"}

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TEMP TABLE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_construction_cost_benchmarks"}, cols).WillReturnResult(2)
	mock.ExpectExec("INSERT INTO").WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()
	mock.ExpectRollback() // deferred rollback after commit is a no-op

	rows := [][]any{
		{"UK", "London", "residential", "basic", 1200.0, 1600.0},
		{"UK", "London", "residential", "standard", 1700.0, 2300.0},
	}

	n, err := BulkUpsert(context.Background(), mock, UpsertConfig{
		Table:        "construction_cost_benchmarks",
		Columns:      cols,
		ConflictKeys: []string{"country", "region", "building_type", "spec_level"},
	}, rows)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.Background(), nil, "rent_benchmarks", []string{"city"}, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCopyFrom(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := []string{"city", "rent_psqm_min", "rent_psqm_max"}
	mock.ExpectCopyFrom(pgx.Identifier{"rent_benchmarks"}, cols).WillReturnResult(1)

	n, err := CopyFrom(context.Background(), mock, "rent_benchmarks", cols, [][]any{{"London", 30.0, 45.0}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
