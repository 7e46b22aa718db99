package store

import (
	"context"

	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/model"
)

// RunFilter specifies criteria for listing scrape runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Portal string          `json:"portal,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the ingestion pipeline.
// Begin opens one batch transaction scope; everything an ingest run writes
// goes through the returned Session and commits atomically with the run's
// counters.
type Store interface {
	// Batch ingestion
	Begin(ctx context.Context) (Session, error)

	// Runs
	GetRun(ctx context.Context, runID string) (*model.ScrapeRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.ScrapeRun, error)

	// Rent benchmarks (full rebuild: read observations, replace table)
	RentObservations(ctx context.Context) ([]model.RentObservation, error)
	ReplaceRentBenchmarks(ctx context.Context, benchmarks []model.RentBenchmark) (int, error)
	ListRentBenchmarks(ctx context.Context) ([]model.RentBenchmark, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Session is one open transaction scope for a single ingest batch. Find
// methods return (nil, nil) when no row matches. Savepoint runs fn inside a
// database savepoint: if fn fails, only fn's writes are rolled back and the
// surrounding batch continues.
type Session interface {
	GetOrCreateMarket(ctx context.Context, name, country string, code *string) (*model.Market, error)
	GetOrCreateSubmarket(ctx context.Context, marketID int64, name string, postcodePrefix *string) (*model.Submarket, error)

	FindProperty(ctx context.Context, fullAddress string, postcode *string) (*model.Property, error)
	CreateProperty(ctx context.Context, p *model.Property) error
	UpdateProperty(ctx context.Context, p *model.Property) error

	FindListing(ctx context.Context, propertyID int64, url, portal string) (*model.Listing, error)
	CreateListing(ctx context.Context, l *model.Listing) error
	UpdateListing(ctx context.Context, l *model.Listing) error

	AppendRawScrape(ctx context.Context, rs *model.RawScrape) error

	CreateRun(ctx context.Context, portal string, locationQuery *string) (*model.ScrapeRun, error)
	FinishRun(ctx context.Context, run *model.ScrapeRun) error

	Savepoint(ctx context.Context, fn func() error) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
