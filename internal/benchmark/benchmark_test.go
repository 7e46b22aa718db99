package benchmark

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/model"
	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/store"
)

func strPtr(s string) *string     { return &s }
func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }
func i64Ptr(i int64) *int64       { return &i }

func TestGroupObservations(t *testing.T) {
	obs := []model.RentObservation{
		{City: strPtr("London"), Bedrooms: intPtr(2), PropertyType: strPtr("Flat"), Price: 2000, FloorAreaSqm: 50},
		{City: strPtr("London"), Bedrooms: intPtr(2), PropertyType: strPtr("Flat"), Price: 1500, FloorAreaSqm: 60},
		{City: strPtr("London"), Bedrooms: intPtr(3), PropertyType: strPtr("Flat"), Price: 3000, FloorAreaSqm: 80},
		{City: nil, Bedrooms: intPtr(2), PropertyType: strPtr("Flat"), Price: 1000, FloorAreaSqm: 40},
	}

	buckets := groupObservations(obs)
	require.Len(t, buckets, 3)

	london2 := buckets[bucketKey{city: "London", bedrooms: 2, hasBedrooms: true, propertyType: "Flat", hasType: true}]
	require.NotNil(t, london2)
	assert.Equal(t, 2, london2.count)
	assert.InDelta(t, 25, london2.min, 0.001)
	assert.InDelta(t, 40, london2.max, 0.001)

	unknown := buckets[bucketKey{city: "Unknown", bedrooms: 2, hasBedrooms: true, propertyType: "Flat", hasType: true}]
	require.NotNil(t, unknown, "null city groups under Unknown")
	assert.Equal(t, 1, unknown.count)
}

func TestGroupObservationsSubmarketSplitsBuckets(t *testing.T) {
	obs := []model.RentObservation{
		{City: strPtr("London"), SubmarketID: i64Ptr(1), Price: 2000, FloorAreaSqm: 50},
		{City: strPtr("London"), SubmarketID: i64Ptr(2), Price: 2000, FloorAreaSqm: 50},
		{City: strPtr("London"), Price: 2000, FloorAreaSqm: 50},
	}
	buckets := groupObservations(obs)
	assert.Len(t, buckets, 3)
}

// seedRentData writes n rent listings into one (city, bedrooms, type) bucket,
// with prices spread so min/max are predictable.
func seedRentData(t *testing.T, st *store.SQLiteStore, n int) {
	t.Helper()
	ctx := context.Background()
	sess, err := st.Begin(ctx)
	require.NoError(t, err)

	now := time.Now().UTC()
	for i := 0; i < n; i++ {
		p := &model.Property{
			FullAddress:  fmt.Sprintf("%d Bucket Street, London", i),
			City:         strPtr("London"),
			FloorAreaSqm: floatPtr(50),
			FirstSeenAt:  now,
			LastSeenAt:   now,
		}
		require.NoError(t, sess.CreateProperty(ctx, p))

		l := &model.Listing{
			PropertyID:   p.ID,
			Portal:       "rightmove",
			URL:          fmt.Sprintf("https://example.com/rent/%d", i),
			ListingType:  model.ListingTypeRent,
			Status:       model.ListingStatusActive,
			Price:        floatPtr(1000 + float64(i)*100),
			Currency:     model.DefaultCurrency,
			Bedrooms:     intPtr(2),
			PropertyType: strPtr("Flat"),
			FirstSeenAt:  now,
			LastSeenAt:   now,
		}
		require.NoError(t, sess.CreateListing(ctx, l))
	}
	require.NoError(t, sess.Commit(ctx))
}

func newBenchStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestBuildThresholdBoundary(t *testing.T) {
	ctx := context.Background()

	under := newBenchStore(t)
	seedRentData(t, under, 4)
	created, err := New(under).Build(ctx, 5)
	require.NoError(t, err)
	assert.Zero(t, created, "4 observations stay below the threshold of 5")

	at := newBenchStore(t)
	seedRentData(t, at, 5)
	created, err = New(at).Build(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	rows, err := at.ListRentBenchmarks(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	b := rows[0]
	assert.Equal(t, "London", b.City)
	assert.Equal(t, 2, *b.Bedrooms)
	assert.Equal(t, "Flat", *b.PropertyType)
	assert.Equal(t, 5, b.SampleSize)
	// Prices 1000..1400 over 50 sqm.
	assert.InDelta(t, 20, b.RentPSQMMin, 0.001)
	assert.InDelta(t, 28, b.RentPSQMMax, 0.001)
	assert.Equal(t, "UK", b.Country)
	assert.Equal(t, sourceTag, b.Source)
}

func TestBuildIsFullRebuild(t *testing.T) {
	ctx := context.Background()
	st := newBenchStore(t)
	seedRentData(t, st, 6)

	agg := New(st)
	created, err := agg.Build(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	// A second rebuild with a stricter threshold leaves nothing behind.
	created, err = agg.Build(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, created)

	rows, err := st.ListRentBenchmarks(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestBuildDefaultThreshold(t *testing.T) {
	ctx := context.Background()
	st := newBenchStore(t)
	seedRentData(t, st, 5)

	created, err := New(st).Build(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, created, "non-positive threshold falls back to the default of 5")
}
