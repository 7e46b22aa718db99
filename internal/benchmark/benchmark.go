// Package benchmark rebuilds the derived rent-per-sqm table from the
// accumulated listing data. A rebuild is wholesale: compute every bucket,
// drop the old table contents, insert the fresh rows in one transaction.
package benchmark

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/model"
	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/normalize"
	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/store"
)

// DefaultMinListings is the minimum bucket sample size; smaller buckets are
// dropped to avoid noisy estimates.
const DefaultMinListings = 5

const sourceTag = "rightmove_rent_scraper_v1"

// Aggregator recomputes rent benchmarks from the store.
type Aggregator struct {
	store store.Store
}

func New(st store.Store) *Aggregator {
	return &Aggregator{store: st}
}

type bucketKey struct {
	city         string
	submarketID  int64
	hasSubmarket bool
	bedrooms     int
	hasBedrooms  bool
	propertyType string
	hasType      bool
}

type bucket struct {
	min   float64
	max   float64
	count int
}

// Build recomputes every (city, submarket, bedrooms, property_type) bucket
// from qualifying rent listings and replaces the rent_benchmarks table.
// Returns the number of buckets written.
func (a *Aggregator) Build(ctx context.Context, minListingsPerBucket int) (int, error) {
	if minListingsPerBucket <= 0 {
		minListingsPerBucket = DefaultMinListings
	}

	obs, err := a.store.RentObservations(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "benchmark: load observations")
	}

	buckets := groupObservations(obs)

	now := time.Now().UTC()
	var rows []model.RentBenchmark
	for key, b := range buckets {
		if b.count < minListingsPerBucket {
			continue
		}
		row := model.RentBenchmark{
			Country:     "UK",
			City:        key.city,
			RentPSQMMin: b.min,
			RentPSQMMax: b.max,
			SampleSize:  b.count,
			Currency:    model.DefaultCurrency,
			Source:      sourceTag,
			AsOfDate:    now,
		}
		if key.hasSubmarket {
			id := key.submarketID
			row.SubmarketID = &id
		}
		if key.hasBedrooms {
			n := key.bedrooms
			row.Bedrooms = &n
		}
		if key.hasType {
			pt := key.propertyType
			row.PropertyType = &pt
		}
		rows = append(rows, row)
	}

	created, err := a.store.ReplaceRentBenchmarks(ctx, rows)
	if err != nil {
		return 0, eris.Wrap(err, "benchmark: replace table")
	}

	zap.L().Info("rent benchmarks rebuilt",
		zap.Int("observations", len(obs)),
		zap.Int("buckets", len(buckets)),
		zap.Int("created", created),
		zap.Int("min_listings_per_bucket", minListingsPerBucket))
	return created, nil
}

func groupObservations(obs []model.RentObservation) map[bucketKey]*bucket {
	buckets := make(map[bucketKey]*bucket)
	for _, o := range obs {
		price := o.Price
		area := o.FloorAreaSqm
		psqm := normalize.PricePerSqm(&price, &area)
		if psqm == nil {
			continue
		}

		key := bucketKey{city: "Unknown"}
		if o.City != nil && *o.City != "" {
			key.city = *o.City
		}
		if o.SubmarketID != nil {
			key.submarketID = *o.SubmarketID
			key.hasSubmarket = true
		}
		if o.Bedrooms != nil {
			key.bedrooms = *o.Bedrooms
			key.hasBedrooms = true
		}
		if o.PropertyType != nil && *o.PropertyType != "" {
			key.propertyType = *o.PropertyType
			key.hasType = true
		}

		b, ok := buckets[key]
		if !ok {
			buckets[key] = &bucket{min: *psqm, max: *psqm, count: 1}
			continue
		}
		if *psqm < b.min {
			b.min = *psqm
		}
		if *psqm > b.max {
			b.max = *psqm
		}
		b.count++
	}
	return buckets
}
