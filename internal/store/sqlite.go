package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/model"
)

// SQLiteStore implements Store on an embedded database, used for local runs
// and tests. Semantics mirror PostgresStore.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) a SQLite database at path. Pass
// ":memory:" for an ephemeral database.
func NewSQLite(path string) (*SQLiteStore, error) {
	dsn := path
	if path == ":memory:" {
		dsn = "file::memory:"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: open %s", path)
	}
	// modernc.org/sqlite serializes access per connection; a single
	// connection avoids table-lock errors and keeps :memory: databases
	// visible across calls.
	sqlDB.SetMaxOpenConns(1)

	for _, pragma := range []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA busy_timeout = 5000`,
		`PRAGMA foreign_keys = ON`,
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, eris.Wrapf(err, "sqlite: %s", pragma)
		}
	}
	return &SQLiteStore{db: sqlDB}, nil
}

// DB exposes the underlying handle for ad-hoc queries.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS markets (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	country    TEXT NOT NULL DEFAULT 'UK',
	code       TEXT,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_markets_identity ON markets(name, country);

CREATE TABLE IF NOT EXISTS submarkets (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	market_id       INTEGER NOT NULL REFERENCES markets(id),
	name            TEXT NOT NULL,
	postcode_prefix TEXT,
	created_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_submarkets_market ON submarkets(market_id);

CREATE TABLE IF NOT EXISTS properties (
	id                     INTEGER PRIMARY KEY AUTOINCREMENT,
	submarket_id           INTEGER REFERENCES submarkets(id),
	full_address           TEXT NOT NULL,
	postcode               TEXT,
	city                   TEXT,
	latitude               REAL,
	longitude              REAL,
	property_type          TEXT,
	bedrooms               INTEGER,
	bathrooms              INTEGER,
	floor_area_sqm         REAL,
	year_built             INTEGER,
	energy_rating          TEXT,
	refurb_intensity       TEXT,
	capex_estimate_per_sqm REAL,
	energy_risk_score      REAL,
	opex_estimate_per_year REAL,
	current_rent_pcm       REAL,
	first_seen_at          TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_seen_at           TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_properties_address ON properties(full_address);
CREATE INDEX IF NOT EXISTS idx_properties_submarket ON properties(submarket_id);

CREATE TABLE IF NOT EXISTS scrape_runs (
	id             TEXT PRIMARY KEY,
	portal         TEXT NOT NULL,
	location_query TEXT,
	started_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	finished_at    TIMESTAMP,
	total_listings INTEGER NOT NULL DEFAULT 0,
	success_count  INTEGER NOT NULL DEFAULT 0,
	error_count    INTEGER NOT NULL DEFAULT 0,
	status         TEXT NOT NULL DEFAULT 'running'
);

CREATE INDEX IF NOT EXISTS idx_scrape_runs_status ON scrape_runs(status);

CREATE TABLE IF NOT EXISTS listings (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	property_id   INTEGER NOT NULL REFERENCES properties(id),
	scrape_run_id TEXT REFERENCES scrape_runs(id),
	portal        TEXT NOT NULL,
	external_id   TEXT,
	url           TEXT NOT NULL,
	listing_type  TEXT,
	status        TEXT,
	tenure        TEXT,
	price         REAL,
	currency      TEXT NOT NULL DEFAULT 'GBP',
	bedrooms      INTEGER,
	bathrooms     INTEGER,
	property_type TEXT,
	description   TEXT,
	first_seen_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_seen_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (property_id, url, portal)
);

CREATE INDEX IF NOT EXISTS idx_listings_property ON listings(property_id);
CREATE INDEX IF NOT EXISTS idx_listings_run ON listings(scrape_run_id);
CREATE INDEX IF NOT EXISTS idx_listings_type ON listings(listing_type);

CREATE TABLE IF NOT EXISTS raw_scrapes (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	listing_id INTEGER NOT NULL REFERENCES listings(id),
	scraped_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	raw_text   TEXT,
	raw_html   TEXT,
	raw_meta   TEXT
);

CREATE INDEX IF NOT EXISTS idx_raw_scrapes_listing ON raw_scrapes(listing_id);

CREATE TABLE IF NOT EXISTS rent_benchmarks (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	country       TEXT NOT NULL,
	city          TEXT NOT NULL,
	submarket_id  INTEGER,
	bedrooms      INTEGER,
	property_type TEXT,
	rent_psqm_min REAL NOT NULL,
	rent_psqm_max REAL NOT NULL,
	sample_size   INTEGER NOT NULL,
	currency      TEXT NOT NULL DEFAULT 'GBP',
	source        TEXT NOT NULL,
	as_of_date    TIMESTAMP NOT NULL
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return eris.Wrap(s.db.Close(), "sqlite: close")
}

func (s *SQLiteStore) Begin(ctx context.Context) (Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin")
	}
	return &sqliteSession{tx: tx}, nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.ScrapeRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM scrape_runs WHERE id = ?`, runID)

	r, err := scanLiteRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	return r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.ScrapeRun, error) {
	query := `SELECT ` + runColumns + ` FROM scrape_runs WHERE true`
	args := []any{}

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Portal != "" {
		query += ` AND portal = ?`
		args = append(args, filter.Portal)
	}
	query += ` ORDER BY started_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.ScrapeRun
	for rows.Next() {
		r, err := scanLiteRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) RentObservations(ctx context.Context) ([]model.RentObservation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.city, p.submarket_id, l.bedrooms, l.property_type, l.price, p.floor_area_sqm
		 FROM listings l
		 JOIN properties p ON l.property_id = p.id
		 WHERE l.listing_type = ?
		   AND l.price IS NOT NULL
		   AND p.floor_area_sqm IS NOT NULL
		   AND p.floor_area_sqm > 0`,
		string(model.ListingTypeRent),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: rent observations")
	}
	defer rows.Close()

	var obs []model.RentObservation
	for rows.Next() {
		var o model.RentObservation
		if err := rows.Scan(&o.City, &o.SubmarketID, &o.Bedrooms, &o.PropertyType, &o.Price, &o.FloorAreaSqm); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan rent observation")
		}
		obs = append(obs, o)
	}
	return obs, eris.Wrap(rows.Err(), "sqlite: rent observations iterate")
}

func (s *SQLiteStore) ReplaceRentBenchmarks(ctx context.Context, benchmarks []model.RentBenchmark) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin benchmark rebuild")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rent_benchmarks`); err != nil {
		return 0, eris.Wrap(err, "sqlite: clear rent benchmarks")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO rent_benchmarks (country, city, submarket_id, bedrooms, property_type,
			rent_psqm_min, rent_psqm_max, sample_size, currency, source, as_of_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare benchmark insert")
	}
	defer stmt.Close()

	for _, b := range benchmarks {
		if _, err := stmt.ExecContext(ctx,
			b.Country, b.City, b.SubmarketID, b.Bedrooms, b.PropertyType,
			b.RentPSQMMin, b.RentPSQMMax, b.SampleSize, b.Currency, b.Source, b.AsOfDate,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert benchmark %s", b.City)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit benchmark rebuild")
	}
	return len(benchmarks), nil
}

func (s *SQLiteStore) ListRentBenchmarks(ctx context.Context) ([]model.RentBenchmark, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, country, city, submarket_id, bedrooms, property_type,
		        rent_psqm_min, rent_psqm_max, sample_size, currency, source, as_of_date
		 FROM rent_benchmarks
		 ORDER BY city, bedrooms, property_type`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list rent benchmarks")
	}
	defer rows.Close()

	var out []model.RentBenchmark
	for rows.Next() {
		var b model.RentBenchmark
		if err := rows.Scan(&b.ID, &b.Country, &b.City, &b.SubmarketID, &b.Bedrooms, &b.PropertyType,
			&b.RentPSQMMin, &b.RentPSQMMax, &b.SampleSize, &b.Currency, &b.Source, &b.AsOfDate); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan rent benchmark")
		}
		out = append(out, b)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list rent benchmarks iterate")
}

type sqlRow interface {
	Scan(dest ...any) error
}

func scanLiteRun(row sqlRow) (*model.ScrapeRun, error) {
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

// sqliteSession is one open database/sql transaction implementing Session.
type sqliteSession struct {
	tx      *sql.Tx
	spDepth int
}

func (s *sqliteSession) Commit(_ context.Context) error {
	return eris.Wrap(s.tx.Commit(), "sqlite: commit")
}

func (s *sqliteSession) Rollback(_ context.Context) error {
	err := s.tx.Rollback()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return eris.Wrap(err, "sqlite: rollback")
	}
	return nil
}

func (s *sqliteSession) Savepoint(ctx context.Context, fn func() error) error {
	s.spDepth++
	name := fmt.Sprintf("sp_%d", s.spDepth)
	defer func() { s.spDepth-- }()

	if _, err := s.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return eris.Wrapf(err, "sqlite: savepoint %s", name)
	}
	if err := fn(); err != nil {
		if _, rbErr := s.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return eris.Wrapf(rbErr, "sqlite: rollback to savepoint %s", name)
		}
		if _, relErr := s.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); relErr != nil {
			return eris.Wrapf(relErr, "sqlite: release savepoint %s", name)
		}
		return err
	}
	if _, err := s.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return eris.Wrapf(err, "sqlite: release savepoint %s", name)
	}
	return nil
}

func (s *sqliteSession) GetOrCreateMarket(ctx context.Context, name, country string, code *string) (*model.Market, error) {
	var m model.Market
	err := s.tx.QueryRowContext(ctx,
		`SELECT id, name, country, code, created_at FROM markets WHERE name = ? AND country = ?`,
		name, country,
	).Scan(&m.ID, &m.Name, &m.Country, &m.Code, &m.CreatedAt)
	if err == nil {
		return &m, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(err, "sqlite: find market %s", name)
	}

	m = model.Market{Name: name, Country: country, Code: code, CreatedAt: time.Now().UTC()}
	err = s.tx.QueryRowContext(ctx,
		`INSERT INTO markets (name, country, code, created_at) VALUES (?, ?, ?, ?) RETURNING id`,
		m.Name, m.Country, m.Code, m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert market %s", name)
	}
	return &m, nil
}

func (s *sqliteSession) GetOrCreateSubmarket(ctx context.Context, marketID int64, name string, postcodePrefix *string) (*model.Submarket, error) {
	var sm model.Submarket
	err := s.tx.QueryRowContext(ctx,
		`SELECT id, market_id, name, postcode_prefix, created_at FROM submarkets
		 WHERE market_id = ? AND name = ?`,
		marketID, name,
	).Scan(&sm.ID, &sm.MarketID, &sm.Name, &sm.PostcodePrefix, &sm.CreatedAt)
	if err == nil {
		return &sm, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(err, "sqlite: find submarket %s", name)
	}

	sm = model.Submarket{MarketID: marketID, Name: name, PostcodePrefix: postcodePrefix, CreatedAt: time.Now().UTC()}
	err = s.tx.QueryRowContext(ctx,
		`INSERT INTO submarkets (market_id, name, postcode_prefix, created_at) VALUES (?, ?, ?, ?) RETURNING id`,
		sm.MarketID, sm.Name, sm.PostcodePrefix, sm.CreatedAt,
	).Scan(&sm.ID)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert submarket %s", name)
	}
	return &sm, nil
}

func (s *sqliteSession) FindProperty(ctx context.Context, fullAddress string, postcode *string) (*model.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE full_address = ?`
	args := []any{fullAddress}
	if postcode != nil {
		query += ` AND postcode = ?`
		args = append(args, *postcode)
	}

	p, err := scanLiteProperty(s.tx.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: find property %s", fullAddress)
	}
	return p, nil
}

func scanLiteProperty(row sqlRow) (*model.Property, error) {
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

func (s *sqliteSession) CreateProperty(ctx context.Context, p *model.Property) error {
	err := s.tx.QueryRowContext(ctx,
		`INSERT INTO properties (submarket_id, full_address, postcode, city, latitude, longitude,
			property_type, bedrooms, bathrooms, floor_area_sqm, year_built,
			energy_rating, refurb_intensity, capex_estimate_per_sqm, energy_risk_score,
			opex_estimate_per_year, current_rent_pcm, first_seen_at, last_seen_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`,
		p.SubmarketID, p.FullAddress, p.Postcode, p.City, p.Latitude, p.Longitude,
		p.PropertyType, p.Bedrooms, p.Bathrooms, p.FloorAreaSqm, p.YearBuilt,
		p.EnergyRating, refurbText(p.RefurbIntensity), p.CapexEstimatePSQM, p.EnergyRiskScore,
		p.OpexEstimatePerYr, p.CurrentRentPCM, p.FirstSeenAt, p.LastSeenAt,
	).Scan(&p.ID)
	return eris.Wrapf(err, "sqlite: insert property %s", p.FullAddress)
}

func (s *sqliteSession) UpdateProperty(ctx context.Context, p *model.Property) error {
	res, err := s.tx.ExecContext(ctx,
		`UPDATE properties SET submarket_id = ?, postcode = ?, city = ?,
			property_type = ?, bedrooms = ?, bathrooms = ?, floor_area_sqm = ?,
			year_built = ?, energy_rating = ?, refurb_intensity = ?,
			capex_estimate_per_sqm = ?, energy_risk_score = ?,
			opex_estimate_per_year = ?, current_rent_pcm = ?, last_seen_at = ?
		 WHERE id = ?`,
		p.SubmarketID, p.Postcode, p.City, p.PropertyType, p.Bedrooms, p.Bathrooms,
		p.FloorAreaSqm, p.YearBuilt, p.EnergyRating, refurbText(p.RefurbIntensity),
		p.CapexEstimatePSQM, p.EnergyRiskScore, p.OpexEstimatePerYr, p.CurrentRentPCM,
		p.LastSeenAt, p.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update property %d", p.ID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Errorf("property not found: %d", p.ID)
	}
	return nil
}

func (s *sqliteSession) FindListing(ctx context.Context, propertyID int64, url, portal string) (*model.Listing, error) {
	l, err := scanLiteListing(s.tx.QueryRowContext(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE property_id = ? AND url = ? AND portal = ?`,
		propertyID, url, portal))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: find listing %s", url)
	}
	return l, nil
}

func scanLiteListing(row sqlRow) (*model.Listing, error) {
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

func (s *sqliteSession) CreateListing(ctx context.Context, l *model.Listing) error {
	err := s.tx.QueryRowContext(ctx,
		`INSERT INTO listings (property_id, scrape_run_id, portal, external_id, url, listing_type,
			status, tenure, price, currency, bedrooms, bathrooms, property_type, description,
			first_seen_at, last_seen_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`,
		l.PropertyID, l.ScrapeRunID, l.Portal, l.ExternalID, l.URL, string(l.ListingType),
		l.Status, l.Tenure, l.Price, l.Currency, l.Bedrooms, l.Bathrooms,
		l.PropertyType, l.Description, l.FirstSeenAt, l.LastSeenAt,
	).Scan(&l.ID)
	return eris.Wrapf(err, "sqlite: insert listing %s", l.URL)
}

func (s *sqliteSession) UpdateListing(ctx context.Context, l *model.Listing) error {
	res, err := s.tx.ExecContext(ctx,
		`UPDATE listings SET scrape_run_id = ?, price = ?, currency = ?, bedrooms = ?,
			bathrooms = ?, property_type = ?, description = ?, status = ?, last_seen_at = ?
		 WHERE id = ?`,
		l.ScrapeRunID, l.Price, l.Currency, l.Bedrooms, l.Bathrooms,
		l.PropertyType, l.Description, l.Status, l.LastSeenAt, l.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update listing %d", l.ID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Errorf("listing not found: %d", l.ID)
	}
	return nil
}

func (s *sqliteSession) AppendRawScrape(ctx context.Context, rs *model.RawScrape) error {
	err := s.tx.QueryRowContext(ctx,
		`INSERT INTO raw_scrapes (listing_id, scraped_at, raw_text, raw_html, raw_meta)
		 VALUES (?, ?, ?, ?, ?) RETURNING id`,
		rs.ListingID, rs.ScrapedAt, rs.RawText, rs.RawHTML, rs.RawMeta,
	).Scan(&rs.ID)
	return eris.Wrapf(err, "sqlite: insert raw scrape for listing %d", rs.ListingID)
}

func (s *sqliteSession) CreateRun(ctx context.Context, portal string, locationQuery *string) (*model.ScrapeRun, error) {
	run := &model.ScrapeRun{
		ID:            uuid.New().String(),
		Portal:        portal,
		LocationQuery: locationQuery,
		StartedAt:     time.Now().UTC(),
		Status:        model.RunStatusRunning,
	}
	_, err := s.tx.ExecContext(ctx,
		`INSERT INTO scrape_runs (id, portal, location_query, started_at, status)
		 VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Portal, run.LocationQuery, run.StartedAt, string(run.Status),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert scrape run")
	}
	return run, nil
}

func (s *sqliteSession) FinishRun(ctx context.Context, run *model.ScrapeRun) error {
	res, err := s.tx.ExecContext(ctx,
		`UPDATE scrape_runs SET finished_at = ?, total_listings = ?, success_count = ?,
			error_count = ?, status = ?
		 WHERE id = ?`,
		run.FinishedAt, run.TotalListings, run.SuccessCount, run.ErrorCount,
		string(run.Status), run.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: finish run %s", run.ID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Errorf("scrape_run not found: %s", run.ID)
	}
	return nil
}
