package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/db"
	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool, used by tests and by subsystems
// that manage their own pool lifecycle.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Pool returns the underlying database pool for subsystems that need direct
// query access (e.g., capex analytics).
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS markets (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL,
	country    TEXT NOT NULL DEFAULT 'UK',
	code       TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_markets_identity ON markets(name, country);

CREATE TABLE IF NOT EXISTS submarkets (
	id              BIGSERIAL PRIMARY KEY,
	market_id       BIGINT NOT NULL REFERENCES markets(id),
	name            TEXT NOT NULL,
	postcode_prefix TEXT,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_submarkets_market ON submarkets(market_id);

CREATE TABLE IF NOT EXISTS properties (
	id                     BIGSERIAL PRIMARY KEY,
	submarket_id           BIGINT REFERENCES submarkets(id),
	full_address           TEXT NOT NULL,
	postcode               TEXT,
	city                   TEXT,
	latitude               DOUBLE PRECISION,
	longitude              DOUBLE PRECISION,
	property_type          TEXT,
	bedrooms               INTEGER,
	bathrooms              INTEGER,
	floor_area_sqm         DOUBLE PRECISION,
	year_built             INTEGER,
	energy_rating          TEXT,
	refurb_intensity       TEXT,
	capex_estimate_per_sqm DOUBLE PRECISION,
	energy_risk_score      DOUBLE PRECISION,
	opex_estimate_per_year DOUBLE PRECISION,
	current_rent_pcm       DOUBLE PRECISION,
	first_seen_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_seen_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_properties_address ON properties(full_address);
CREATE INDEX IF NOT EXISTS idx_properties_submarket ON properties(submarket_id);

CREATE TABLE IF NOT EXISTS scrape_runs (
	id             TEXT PRIMARY KEY,
	portal         TEXT NOT NULL,
	location_query TEXT,
	started_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	finished_at    TIMESTAMPTZ,
	total_listings INTEGER NOT NULL DEFAULT 0,
	success_count  INTEGER NOT NULL DEFAULT 0,
	error_count    INTEGER NOT NULL DEFAULT 0,
	status         TEXT NOT NULL DEFAULT 'running'
);

CREATE INDEX IF NOT EXISTS idx_scrape_runs_status ON scrape_runs(status);

CREATE TABLE IF NOT EXISTS listings (
	id            BIGSERIAL PRIMARY KEY,
	property_id   BIGINT NOT NULL REFERENCES properties(id),
	scrape_run_id TEXT REFERENCES scrape_runs(id),
	portal        TEXT NOT NULL,
	external_id   TEXT,
	url           TEXT NOT NULL,
	listing_type  TEXT,
	status        TEXT,
	tenure        TEXT,
	price         DOUBLE PRECISION,
	currency      TEXT NOT NULL DEFAULT 'GBP',
	bedrooms      INTEGER,
	bathrooms     INTEGER,
	property_type TEXT,
	description   TEXT,
	first_seen_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_seen_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (property_id, url, portal)
);

CREATE INDEX IF NOT EXISTS idx_listings_property ON listings(property_id);
CREATE INDEX IF NOT EXISTS idx_listings_run ON listings(scrape_run_id);
CREATE INDEX IF NOT EXISTS idx_listings_type ON listings(listing_type);

CREATE TABLE IF NOT EXISTS raw_scrapes (
	id         BIGSERIAL PRIMARY KEY,
	listing_id BIGINT NOT NULL REFERENCES listings(id),
	scraped_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	raw_text   TEXT,
	raw_html   TEXT,
	raw_meta   TEXT
);

CREATE INDEX IF NOT EXISTS idx_raw_scrapes_listing ON raw_scrapes(listing_id);

CREATE TABLE IF NOT EXISTS rent_benchmarks (
	id            BIGSERIAL PRIMARY KEY,
	country       TEXT NOT NULL,
	city          TEXT NOT NULL,
	submarket_id  BIGINT,
	bedrooms      INTEGER,
	property_type TEXT,
	rent_psqm_min DOUBLE PRECISION NOT NULL,
	rent_psqm_max DOUBLE PRECISION NOT NULL,
	sample_size   INTEGER NOT NULL,
	currency      TEXT NOT NULL DEFAULT 'GBP',
	source        TEXT NOT NULL,
	as_of_date    TIMESTAMPTZ NOT NULL
);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// Begin opens the batch transaction scope for one ingest run.
func (s *PostgresStore) Begin(ctx context.Context) (Session, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin")
	}
	return &pgSession{tx: tx}, nil
}

const runColumns = `id, portal, location_query, started_at, finished_at, total_listings, success_count, error_count, status`

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.ScrapeRun, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+runColumns+` FROM scrape_runs WHERE id = $1`, runID)

	r, err := scanPgRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.ScrapeRun, error) {
	query := `SELECT ` + runColumns + ` FROM scrape_runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.Portal != "" {
		query += fmt.Sprintf(` AND portal = $%d`, argIdx)
		args = append(args, filter.Portal)
		argIdx++
	}
	query += ` ORDER BY started_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.ScrapeRun
	for rows.Next() {
		r, err := scanPgRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) RentObservations(ctx context.Context) ([]model.RentObservation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT p.city, p.submarket_id, l.bedrooms, l.property_type, l.price, p.floor_area_sqm
		 FROM listings l
		 JOIN properties p ON l.property_id = p.id
		 WHERE l.listing_type = $1
		   AND l.price IS NOT NULL
		   AND p.floor_area_sqm IS NOT NULL
		   AND p.floor_area_sqm > 0`,
		string(model.ListingTypeRent),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: rent observations")
	}
	defer rows.Close()

	var obs []model.RentObservation
	for rows.Next() {
		var o model.RentObservation
		if err := rows.Scan(&o.City, &o.SubmarketID, &o.Bedrooms, &o.PropertyType, &o.Price, &o.FloorAreaSqm); err != nil {
			return nil, eris.Wrap(err, "postgres: scan rent observation")
		}
		obs = append(obs, o)
	}
	return obs, eris.Wrap(rows.Err(), "postgres: rent observations iterate")
}

// ReplaceRentBenchmarks swaps the derived table wholesale: delete everything,
// COPY the fresh buckets in, one transaction.
func (s *PostgresStore) ReplaceRentBenchmarks(ctx context.Context, benchmarks []model.RentBenchmark) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: begin benchmark rebuild")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM rent_benchmarks`); err != nil {
		return 0, eris.Wrap(err, "postgres: clear rent benchmarks")
	}

	if len(benchmarks) > 0 {
		rows := make([][]any, 0, len(benchmarks))
		for _, b := range benchmarks {
			rows = append(rows, []any{
				b.Country, b.City, b.SubmarketID, b.Bedrooms, b.PropertyType,
				b.RentPSQMMin, b.RentPSQMMax, b.SampleSize, b.Currency, b.Source, b.AsOfDate,
			})
		}
		cols := []string{
			"country", "city", "submarket_id", "bedrooms", "property_type",
			"rent_psqm_min", "rent_psqm_max", "sample_size", "currency", "source", "as_of_date",
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"rent_benchmarks"}, cols, pgx.CopyFromRows(rows)); err != nil {
			return 0, eris.Wrap(err, "postgres: COPY rent benchmarks")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "postgres: commit benchmark rebuild")
	}
	return len(benchmarks), nil
}

func (s *PostgresStore) ListRentBenchmarks(ctx context.Context) ([]model.RentBenchmark, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, country, city, submarket_id, bedrooms, property_type,
		        rent_psqm_min, rent_psqm_max, sample_size, currency, source, as_of_date
		 FROM rent_benchmarks
		 ORDER BY city, bedrooms, property_type`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list rent benchmarks")
	}
	defer rows.Close()

	var out []model.RentBenchmark
	for rows.Next() {
		var b model.RentBenchmark
		if err := rows.Scan(&b.ID, &b.Country, &b.City, &b.SubmarketID, &b.Bedrooms, &b.PropertyType,
			&b.RentPSQMMin, &b.RentPSQMMax, &b.SampleSize, &b.Currency, &b.Source, &b.AsOfDate); err != nil {
			return nil, eris.Wrap(err, "postgres: scan rent benchmark")
		}
		out = append(out, b)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list rent benchmarks iterate")
}

func scanPgRun(row pgx.Row) (*model.ScrapeRun, error) {
	var r model.ScrapeRun
	var status string
	err := row.Scan(&r.ID, &r.Portal, &r.LocationQuery, &r.StartedAt, &r.FinishedAt,
		&r.TotalListings, &r.SuccessCount, &r.ErrorCount, &status)
	if err != nil {
		return nil, err
	}
	r.Status = model.RunStatus(status)
	return &r, nil
}

// pgSession is one open pgx transaction implementing Session.
type pgSession struct {
	tx      pgx.Tx
	spDepth int
}

func (s *pgSession) Commit(ctx context.Context) error {
	return eris.Wrap(s.tx.Commit(ctx), "postgres: commit")
}

func (s *pgSession) Rollback(ctx context.Context) error {
	err := s.tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return eris.Wrap(err, "postgres: rollback")
	}
	return nil
}

// Savepoint isolates fn's writes: a failure rolls back to the savepoint and
// leaves the surrounding batch transaction usable.
func (s *pgSession) Savepoint(ctx context.Context, fn func() error) error {
	s.spDepth++
	name := fmt.Sprintf("sp_%d", s.spDepth)
	defer func() { s.spDepth-- }()

	if _, err := s.tx.Exec(ctx, "SAVEPOINT "+name); err != nil {
		return eris.Wrapf(err, "postgres: savepoint %s", name)
	}
	if err := fn(); err != nil {
		if _, rbErr := s.tx.Exec(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return eris.Wrapf(rbErr, "postgres: rollback to savepoint %s", name)
		}
		if _, relErr := s.tx.Exec(ctx, "RELEASE SAVEPOINT "+name); relErr != nil {
			return eris.Wrapf(relErr, "postgres: release savepoint %s", name)
		}
		return err
	}
	if _, err := s.tx.Exec(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return eris.Wrapf(err, "postgres: release savepoint %s", name)
	}
	return nil
}

func (s *pgSession) GetOrCreateMarket(ctx context.Context, name, country string, code *string) (*model.Market, error) {
	var m model.Market
	err := s.tx.QueryRow(ctx,
		`SELECT id, name, country, code, created_at FROM markets WHERE name = $1 AND country = $2`,
		name, country,
	).Scan(&m.ID, &m.Name, &m.Country, &m.Code, &m.CreatedAt)
	if err == nil {
		return &m, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(err, "postgres: find market %s", name)
	}

	m = model.Market{Name: name, Country: country, Code: code, CreatedAt: time.Now().UTC()}
	err = s.tx.QueryRow(ctx,
		`INSERT INTO markets (name, country, code, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		m.Name, m.Country, m.Code, m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert market %s", name)
	}
	return &m, nil
}

func (s *pgSession) GetOrCreateSubmarket(ctx context.Context, marketID int64, name string, postcodePrefix *string) (*model.Submarket, error) {
	var sm model.Submarket
	err := s.tx.QueryRow(ctx,
		`SELECT id, market_id, name, postcode_prefix, created_at FROM submarkets
		 WHERE market_id = $1 AND name = $2`,
		marketID, name,
	).Scan(&sm.ID, &sm.MarketID, &sm.Name, &sm.PostcodePrefix, &sm.CreatedAt)
	if err == nil {
		return &sm, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(err, "postgres: find submarket %s", name)
	}

	sm = model.Submarket{MarketID: marketID, Name: name, PostcodePrefix: postcodePrefix, CreatedAt: time.Now().UTC()}
	err = s.tx.QueryRow(ctx,
		`INSERT INTO submarkets (market_id, name, postcode_prefix, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		sm.MarketID, sm.Name, sm.PostcodePrefix, sm.CreatedAt,
	).Scan(&sm.ID)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert submarket %s", name)
	}
	return &sm, nil
}

const propertyColumns = `id, submarket_id, full_address, postcode, city, latitude, longitude,
	property_type, bedrooms, bathrooms, floor_area_sqm, year_built,
	energy_rating, refurb_intensity, capex_estimate_per_sqm, energy_risk_score,
	opex_estimate_per_year, current_rent_pcm, first_seen_at, last_seen_at`

func (s *pgSession) FindProperty(ctx context.Context, fullAddress string, postcode *string) (*model.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE full_address = $1`
	args := []any{fullAddress}
	if postcode != nil {
		query += ` AND postcode = $2`
		args = append(args, *postcode)
	}

	p, err := scanPgProperty(s.tx.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: find property %s", fullAddress)
	}
	return p, nil
}

func scanPgProperty(row pgx.Row) (*model.Property, error) {
	var p model.Property
	var refurb *string
	err := row.Scan(&p.ID, &p.SubmarketID, &p.FullAddress, &p.Postcode, &p.City,
		&p.Latitude, &p.Longitude, &p.PropertyType, &p.Bedrooms, &p.Bathrooms,
		&p.FloorAreaSqm, &p.YearBuilt, &p.EnergyRating, &refurb,
		&p.CapexEstimatePSQM, &p.EnergyRiskScore, &p.OpexEstimatePerYr, &p.CurrentRentPCM,
		&p.FirstSeenAt, &p.LastSeenAt)
	if err != nil {
		return nil, err
	}
	if refurb != nil {
		ri := model.RefurbIntensity(*refurb)
		p.RefurbIntensity = &ri
	}
	return &p, nil
}

func (s *pgSession) CreateProperty(ctx context.Context, p *model.Property) error {
	err := s.tx.QueryRow(ctx,
		`INSERT INTO properties (submarket_id, full_address, postcode, city, latitude, longitude,
			property_type, bedrooms, bathrooms, floor_area_sqm, year_built,
			energy_rating, refurb_intensity, capex_estimate_per_sqm, energy_risk_score,
			opex_estimate_per_year, current_rent_pcm, first_seen_at, last_seen_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		 RETURNING id`,
		p.SubmarketID, p.FullAddress, p.Postcode, p.City, p.Latitude, p.Longitude,
		p.PropertyType, p.Bedrooms, p.Bathrooms, p.FloorAreaSqm, p.YearBuilt,
		p.EnergyRating, refurbText(p.RefurbIntensity), p.CapexEstimatePSQM, p.EnergyRiskScore,
		p.OpexEstimatePerYr, p.CurrentRentPCM, p.FirstSeenAt, p.LastSeenAt,
	).Scan(&p.ID)
	return eris.Wrapf(err, "postgres: insert property %s", p.FullAddress)
}

func (s *pgSession) UpdateProperty(ctx context.Context, p *model.Property) error {
	tag, err := s.tx.Exec(ctx,
		`UPDATE properties SET submarket_id = $1, postcode = $2, city = $3,
			property_type = $4, bedrooms = $5, bathrooms = $6, floor_area_sqm = $7,
			year_built = $8, energy_rating = $9, refurb_intensity = $10,
			capex_estimate_per_sqm = $11, energy_risk_score = $12,
			opex_estimate_per_year = $13, current_rent_pcm = $14, last_seen_at = $15
		 WHERE id = $16`,
		p.SubmarketID, p.Postcode, p.City, p.PropertyType, p.Bedrooms, p.Bathrooms,
		p.FloorAreaSqm, p.YearBuilt, p.EnergyRating, refurbText(p.RefurbIntensity),
		p.CapexEstimatePSQM, p.EnergyRiskScore, p.OpexEstimatePerYr, p.CurrentRentPCM,
		p.LastSeenAt, p.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update property %d", p.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("property not found: %d", p.ID)
	}
	return nil
}

const listingColumns = `id, property_id, scrape_run_id, portal, external_id, url, listing_type,
	status, tenure, price, currency, bedrooms, bathrooms, property_type, description,
	first_seen_at, last_seen_at`

func (s *pgSession) FindListing(ctx context.Context, propertyID int64, url, portal string) (*model.Listing, error) {
	l, err := scanPgListing(s.tx.QueryRow(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE property_id = $1 AND url = $2 AND portal = $3`,
		propertyID, url, portal))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: find listing %s", url)
	}
	return l, nil
}

func scanPgListing(row pgx.Row) (*model.Listing, error) {
	var l model.Listing
	var listingType *string
	err := row.Scan(&l.ID, &l.PropertyID, &l.ScrapeRunID, &l.Portal, &l.ExternalID, &l.URL,
		&listingType, &l.Status, &l.Tenure, &l.Price, &l.Currency,
		&l.Bedrooms, &l.Bathrooms, &l.PropertyType, &l.Description,
		&l.FirstSeenAt, &l.LastSeenAt)
	if err != nil {
		return nil, err
	}
	if listingType != nil {
		l.ListingType = model.ListingType(*listingType)
	}
	return &l, nil
}

func (s *pgSession) CreateListing(ctx context.Context, l *model.Listing) error {
	err := s.tx.QueryRow(ctx,
		`INSERT INTO listings (property_id, scrape_run_id, portal, external_id, url, listing_type,
			status, tenure, price, currency, bedrooms, bathrooms, property_type, description,
			first_seen_at, last_seen_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING id`,
		l.PropertyID, l.ScrapeRunID, l.Portal, l.ExternalID, l.URL, string(l.ListingType),
		l.Status, l.Tenure, l.Price, l.Currency, l.Bedrooms, l.Bathrooms,
		l.PropertyType, l.Description, l.FirstSeenAt, l.LastSeenAt,
	).Scan(&l.ID)
	return eris.Wrapf(err, "postgres: insert listing %s", l.URL)
}

func (s *pgSession) UpdateListing(ctx context.Context, l *model.Listing) error {
	tag, err := s.tx.Exec(ctx,
		`UPDATE listings SET scrape_run_id = $1, price = $2, currency = $3, bedrooms = $4,
			bathrooms = $5, property_type = $6, description = $7, status = $8, last_seen_at = $9
		 WHERE id = $10`,
		l.ScrapeRunID, l.Price, l.Currency, l.Bedrooms, l.Bathrooms,
		l.PropertyType, l.Description, l.Status, l.LastSeenAt, l.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update listing %d", l.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("listing not found: %d", l.ID)
	}
	return nil
}

func (s *pgSession) AppendRawScrape(ctx context.Context, rs *model.RawScrape) error {
	err := s.tx.QueryRow(ctx,
		`INSERT INTO raw_scrapes (listing_id, scraped_at, raw_text, raw_html, raw_meta)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		rs.ListingID, rs.ScrapedAt, rs.RawText, rs.RawHTML, rs.RawMeta,
	).Scan(&rs.ID)
	return eris.Wrapf(err, "postgres: insert raw scrape for listing %d", rs.ListingID)
}

func (s *pgSession) CreateRun(ctx context.Context, portal string, locationQuery *string) (*model.ScrapeRun, error) {
	run := &model.ScrapeRun{
		ID:            uuid.New().String(),
		Portal:        portal,
		LocationQuery: locationQuery,
		StartedAt:     time.Now().UTC(),
		Status:        model.RunStatusRunning,
	}
	_, err := s.tx.Exec(ctx,
		`INSERT INTO scrape_runs (id, portal, location_query, started_at, status)
		 VALUES ($1, $2, $3, $4, $5)`,
		run.ID, run.Portal, run.LocationQuery, run.StartedAt, string(run.Status),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert scrape run")
	}
	return run, nil
}

func (s *pgSession) FinishRun(ctx context.Context, run *model.ScrapeRun) error {
	tag, err := s.tx.Exec(ctx,
		`UPDATE scrape_runs SET finished_at = $1, total_listings = $2, success_count = $3,
			error_count = $4, status = $5
		 WHERE id = $6`,
		run.FinishedAt, run.TotalListings, run.SuccessCount, run.ErrorCount,
		string(run.Status), run.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: finish run %s", run.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("scrape_run not found: %s", run.ID)
	}
	return nil
}

func refurbText(r *model.RefurbIntensity) *string {
	if r == nil {
		return nil
	}
	s := string(*r)
	return &s
}
