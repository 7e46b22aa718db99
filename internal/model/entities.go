package model

import "time"

// The entity graph is layered: Market > Submarket > Property > Listing >
// RawScrape, with ScrapeRun tying one ingest batch together.

// Market is a top-level metro area, e.g. London. Created lazily on first
// reference; identity is (name, country) with an optional short code.
type Market struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country"`
	Code      *string   `json:"code,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Submarket is a locality within a Market, typically a postcode-prefix area.
type Submarket struct {
	ID             int64     `json:"id"`
	MarketID       int64     `json:"market_id"`
	Name           string    `json:"name"`
	PostcodePrefix *string   `json:"postcode_prefix,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Property is a physical unit identified by its full address (refined by
// postcode when known). Repeated scrapes of the same address update one row,
// filling only previously-null attributes.
type Property struct {
	ID          int64   `json:"id"`
	SubmarketID *int64  `json:"submarket_id,omitempty"`
	FullAddress string  `json:"full_address"`
	Postcode    *string `json:"postcode,omitempty"`
	City        *string `json:"city,omitempty"`

	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	PropertyType *string  `json:"property_type,omitempty"`
	Bedrooms     *int     `json:"bedrooms,omitempty"`
	Bathrooms    *int     `json:"bathrooms,omitempty"`
	FloorAreaSqm *float64 `json:"floor_area_sqm,omitempty"`
	YearBuilt    *int     `json:"year_built,omitempty"`

	EnergyRating       *string          `json:"energy_rating,omitempty"`
	RefurbIntensity    *RefurbIntensity `json:"refurb_intensity,omitempty"`
	CapexEstimatePSQM  *float64         `json:"capex_estimate_per_sqm,omitempty"`
	EnergyRiskScore    *float64         `json:"energy_risk_score,omitempty"`
	OpexEstimatePerYr  *float64         `json:"opex_estimate_per_year,omitempty"`
	CurrentRentPCM     *float64         `json:"current_rent_pcm,omitempty"`

	FirstSeenAt time.Time `json:"first_seen_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
}

// Listing is one portal advertisement for a Property. Identity is
// (property_id, url, portal); re-scrapes update the same row because listings
// are mutable, time-varying ads.
type Listing struct {
	ID          int64   `json:"id"`
	PropertyID  int64   `json:"property_id"`
	ScrapeRunID *string `json:"scrape_run_id,omitempty"`

	Portal     string  `json:"portal"`
	ExternalID *string `json:"external_id,omitempty"`
	URL        string  `json:"url"`

	ListingType ListingType `json:"listing_type"`
	Status      string      `json:"status"`
	Tenure      *string     `json:"tenure,omitempty"`

	Price    *float64 `json:"price,omitempty"`
	Currency string   `json:"currency"`

	Bedrooms     *int    `json:"bedrooms,omitempty"`
	Bathrooms    *int    `json:"bathrooms,omitempty"`
	PropertyType *string `json:"property_type,omitempty"`
	Description  *string `json:"description,omitempty"`

	FirstSeenAt time.Time `json:"first_seen_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
}

// RawScrape is the immutable snapshot of one scrape event for a Listing.
// Append-only; one row per event regardless of content.
type RawScrape struct {
	ID        int64     `json:"id"`
	ListingID int64     `json:"listing_id"`
	ScrapedAt time.Time `json:"scraped_at"`
	RawText   *string   `json:"raw_text,omitempty"`
	RawHTML   *string   `json:"raw_html,omitempty"`
	RawMeta   *string   `json:"raw_meta,omitempty"`
}

// ScrapeRun records one ingest batch: counters plus lifecycle status.
// Created at batch start, finalized exactly once at batch end.
type ScrapeRun struct {
	ID            string     `json:"id"`
	Portal        string     `json:"portal"`
	LocationQuery *string    `json:"location_query,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	TotalListings int        `json:"total_listings"`
	SuccessCount  int        `json:"success_count"`
	ErrorCount    int        `json:"error_count"`
	Status        RunStatus  `json:"status"`
}

// RentBenchmark is a derived rent-per-sqm bucket, rebuilt wholesale by the
// aggregator rather than updated incrementally.
type RentBenchmark struct {
	ID           int64     `json:"id"`
	Country      string    `json:"country"`
	City         string    `json:"city"`
	SubmarketID  *int64    `json:"submarket_id,omitempty"`
	Bedrooms     *int      `json:"bedrooms,omitempty"`
	PropertyType *string   `json:"property_type,omitempty"`
	RentPSQMMin  float64   `json:"rent_psqm_min"`
	RentPSQMMax  float64   `json:"rent_psqm_max"`
	SampleSize   int       `json:"sample_size"`
	Currency     string    `json:"currency"`
	Source       string    `json:"source"`
	AsOfDate     time.Time `json:"as_of_date"`
}

// RentObservation is one qualifying rent listing joined against its property,
// the raw input to the benchmark aggregator.
type RentObservation struct {
	City         *string  `json:"city,omitempty"`
	SubmarketID  *int64   `json:"submarket_id,omitempty"`
	Bedrooms     *int     `json:"bedrooms,omitempty"`
	PropertyType *string  `json:"property_type,omitempty"`
	Price        float64  `json:"price"`
	FloorAreaSqm float64  `json:"floor_area_sqm"`
}

// ConstructionCostBenchmark is reference data for capex estimation: typical
// build cost per sqm for a region, building type and spec level.
type ConstructionCostBenchmark struct {
	ID            int64      `json:"id"`
	Country       string     `json:"country"`
	Region        string     `json:"region"`
	BuildingType  string     `json:"building_type"`
	SpecLevel     string     `json:"spec_level"`
	CostPerSqmMin float64    `json:"cost_per_sqm_min"`
	CostPerSqmMax float64    `json:"cost_per_sqm_max"`
	Currency      string     `json:"currency"`
	Source        *string    `json:"source,omitempty"`
	AsOfDate      *time.Time `json:"as_of_date,omitempty"`
}

// RenovationModule is one refurbishment work package with typical cost range
// and expected rent impact.
type RenovationModule struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Description     *string  `json:"description,omitempty"`
	TypicalCostMin  float64  `json:"typical_cost_min"`
	TypicalCostMax  float64  `json:"typical_cost_max"`
	ImpactOnRentPct *float64 `json:"impact_on_rent_pct,omitempty"`
	LifetimeYears   *int     `json:"lifetime_years,omitempty"`
}
