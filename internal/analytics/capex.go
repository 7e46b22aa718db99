package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/db"
	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/model"
)

// Engine is the Postgres-backed analytics subsystem: construction cost
// reference data plus capex estimation over the property graph.
type Engine struct {
	pool db.Pool
	log  *zap.Logger
}

func NewEngine(pool db.Pool) *Engine {
	return &Engine{pool: pool, log: zap.L().With(zap.String("component", "analytics"))}
}

const analyticsMigration = `
CREATE TABLE IF NOT EXISTS construction_cost_benchmarks (
	id               BIGSERIAL PRIMARY KEY,
	country          TEXT NOT NULL,
	region           TEXT NOT NULL,
	building_type    TEXT NOT NULL,
	spec_level       TEXT NOT NULL,
	cost_per_sqm_min DOUBLE PRECISION NOT NULL,
	cost_per_sqm_max DOUBLE PRECISION NOT NULL,
	currency         TEXT NOT NULL DEFAULT 'GBP',
	source           TEXT,
	as_of_date       TIMESTAMPTZ,
	UNIQUE (country, region, building_type, spec_level)
);

CREATE TABLE IF NOT EXISTS renovation_modules (
	id                 BIGSERIAL PRIMARY KEY,
	name               TEXT NOT NULL UNIQUE,
	description        TEXT,
	typical_cost_min   DOUBLE PRECISION NOT NULL,
	typical_cost_max   DOUBLE PRECISION NOT NULL,
	impact_on_rent_pct DOUBLE PRECISION,
	lifetime_years     INTEGER
);
`

// Migrate creates the analytics reference tables.
func (e *Engine) Migrate(ctx context.Context) error {
	_, err := e.pool.Exec(ctx, analyticsMigration)
	return eris.Wrap(err, "analytics: migrate")
}

// Seed upserts the built-in cost benchmarks and renovation modules. Safe to
// run repeatedly.
func (e *Engine) Seed(ctx context.Context) (int64, error) {
	asOf := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	costs, err := db.BulkUpsert(ctx, e.pool, db.UpsertConfig{
		Table: "construction_cost_benchmarks",
		Columns: []string{
			"country", "region", "building_type", "spec_level",
			"cost_per_sqm_min", "cost_per_sqm_max", "currency", "source", "as_of_date",
		},
		ConflictKeys: []string{"country", "region", "building_type", "spec_level"},
	}, [][]any{
		{"UK", "London", "residential", "basic", 1200.0, 1600.0, "GBP", "Internal estimate", asOf},
		{"UK", "London", "residential", "standard", 1700.0, 2300.0, "GBP", "Internal estimate", asOf},
		{"UK", "London", "residential", "premium", 2400.0, 3200.0, "GBP", "Internal estimate", asOf},
	})
	if err != nil {
		return 0, eris.Wrap(err, "analytics: seed cost benchmarks")
	}

	modules, err := db.BulkUpsert(ctx, e.pool, db.UpsertConfig{
		Table: "renovation_modules",
		Columns: []string{
			"name", "description", "typical_cost_min", "typical_cost_max",
			"impact_on_rent_pct", "lifetime_years",
		},
		ConflictKeys: []string{"name"},
	}, [][]any{
		{"Kitchen refurbishment", "Full kitchen refit incl. cabinets, appliances, plumbing, electrics.", 8000.0, 15000.0, 5.0, 15},
		{"Bathroom refurbishment", "Full bathroom refit incl. tiling, sanitary, plumbing.", 6000.0, 12000.0, 4.0, 15},
		{"Windows & insulation", "New windows and basic external insulation.", 10000.0, 25000.0, 3.0, 25},
	})
	if err != nil {
		return 0, eris.Wrap(err, "analytics: seed renovation modules")
	}

	e.log.Info("reference data seeded", zap.Int64("cost_benchmarks", costs), zap.Int64("renovation_modules", modules))
	return costs + modules, nil
}

// BestCostBenchmark picks the closest benchmark for the given dimensions:
// exact region first, then the freshest as_of_date. Returns nil when nothing
// matches the (country, building_type, spec_level) triple.
func (e *Engine) BestCostBenchmark(ctx context.Context, country, region, buildingType, specLevel string) (*model.ConstructionCostBenchmark, error) {
	var b model.ConstructionCostBenchmark
	err := e.pool.QueryRow(ctx,
		`SELECT id, country, region, building_type, spec_level,
		        cost_per_sqm_min, cost_per_sqm_max, currency, source, as_of_date
		 FROM construction_cost_benchmarks
		 WHERE country = $1 AND building_type = $2 AND spec_level = $3
		 ORDER BY (region = $4) DESC, as_of_date DESC NULLS LAST
		 LIMIT 1`,
		country, buildingType, specLevel, region,
	).Scan(&b.ID, &b.Country, &b.Region, &b.BuildingType, &b.SpecLevel,
		&b.CostPerSqmMin, &b.CostPerSqmMax, &b.Currency, &b.Source, &b.AsOfDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "analytics: find cost benchmark")
	}
	return &b, nil
}

// CapexRequest parameterizes one estimation. Zero-value dimension fields fall
// back to the London residential standard benchmark.
type CapexRequest struct {
	PropertyID          int64
	Country             string
	Region              string
	BuildingType        string
	SpecLevel           string
	RenovationModuleIDs []int64
	TargetRentPCM       *float64
	CurrentRentPCM      *float64
	OpexPerYear         *float64
	PurchasePrice       *float64
}

// CapexEstimate is the result of one estimation run.
type CapexEstimate struct {
	PropertyID     int64    `json:"property_id"`
	BaseCapex      float64  `json:"base_capex"`
	ModulesCapex   float64  `json:"modules_capex"`
	TotalCapex     float64  `json:"total_capex"`
	CapexPerSqm    float64  `json:"capex_per_sqm"`
	Modules        []string `json:"modules,omitempty"`
	ImpactRentPct  float64  `json:"impact_rent_pct"`
	CurrentRentPCM *float64 `json:"current_rent_pcm,omitempty"`
	NewRentPCM     *float64 `json:"new_rent_pcm,omitempty"`
	YearlyRent     *float64 `json:"yearly_rent,omitempty"`
	NewYield       *float64 `json:"new_yield,omitempty"`
}

// EstimateCapex computes refurbishment capex for one property from the
// cost-per-sqm benchmark midpoint plus selected renovation modules, and
// derives the post-refurb yield when rent and purchase price are known.
// The resulting capex/sqm is written back to the property row.
func (e *Engine) EstimateCapex(ctx context.Context, req CapexRequest) (*CapexEstimate, error) {
	if req.Country == "" {
		req.Country = "UK"
	}
	if req.Region == "" {
		req.Region = "London"
	}
	if req.BuildingType == "" {
		req.BuildingType = "residential"
	}
	if req.SpecLevel == "" {
		req.SpecLevel = "standard"
	}

	var floorArea, currentRent, opexPerYear *float64
	err := e.pool.QueryRow(ctx,
		`SELECT floor_area_sqm, current_rent_pcm, opex_estimate_per_year FROM properties WHERE id = $1`,
		req.PropertyID,
	).Scan(&floorArea, &currentRent, &opexPerYear)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Errorf("analytics: property %d not found", req.PropertyID)
		}
		return nil, eris.Wrapf(err, "analytics: load property %d", req.PropertyID)
	}
	if floorArea == nil || *floorArea <= 0 {
		return nil, eris.Errorf("analytics: property %d has no floor area", req.PropertyID)
	}

	bm, err := e.BestCostBenchmark(ctx, req.Country, req.Region, req.BuildingType, req.SpecLevel)
	if err != nil {
		return nil, err
	}
	if bm == nil {
		return nil, eris.Errorf("analytics: no cost benchmark for %s/%s/%s", req.Country, req.BuildingType, req.SpecLevel)
	}

	est := &CapexEstimate{PropertyID: req.PropertyID}
	baseCostPerSqm := (bm.CostPerSqmMin + bm.CostPerSqmMax) / 2.0
	est.BaseCapex = baseCostPerSqm * *floorArea

	if len(req.RenovationModuleIDs) > 0 {
		rows, err := e.pool.Query(ctx,
			`SELECT name, typical_cost_min, typical_cost_max, impact_on_rent_pct
			 FROM renovation_modules WHERE id = ANY($1)`,
			req.RenovationModuleIDs,
		)
		if err != nil {
			return nil, eris.Wrap(err, "analytics: load renovation modules")
		}
		defer rows.Close()
		for rows.Next() {
			var name string
			var costMin, costMax float64
			var impact *float64
			if err := rows.Scan(&name, &costMin, &costMax, &impact); err != nil {
				return nil, eris.Wrap(err, "analytics: scan renovation module")
			}
			est.Modules = append(est.Modules, name)
			est.ModulesCapex += (costMin + costMax) / 2.0
			if impact != nil {
				est.ImpactRentPct += *impact
			}
		}
		if err := rows.Err(); err != nil {
			return nil, eris.Wrap(err, "analytics: iterate renovation modules")
		}
	}

	est.TotalCapex = est.BaseCapex + est.ModulesCapex
	est.CapexPerSqm = est.TotalCapex / *floorArea

	if req.CurrentRentPCM != nil {
		currentRent = req.CurrentRentPCM
	}
	est.CurrentRentPCM = currentRent
	switch {
	case currentRent != nil:
		newRent := *currentRent * (1 + est.ImpactRentPct/100.0)
		est.NewRentPCM = &newRent
	case req.TargetRentPCM != nil:
		est.NewRentPCM = req.TargetRentPCM
	}

	opex := 0.0
	if req.OpexPerYear != nil {
		opex = *req.OpexPerYear
	} else if opexPerYear != nil {
		opex = *opexPerYear
	}

	if est.NewRentPCM != nil {
		yearly := *est.NewRentPCM * 12.0
		est.YearlyRent = &yearly
		if req.PurchasePrice != nil && *req.PurchasePrice > 0 {
			y := (yearly - opex) / (*req.PurchasePrice + est.TotalCapex)
			est.NewYield = &y
		}
	}

	if _, err := e.pool.Exec(ctx,
		`UPDATE properties SET capex_estimate_per_sqm = $1 WHERE id = $2`,
		est.CapexPerSqm, req.PropertyID,
	); err != nil {
		return nil, eris.Wrapf(err, "analytics: store capex for property %d", req.PropertyID)
	}

	e.log.Info("capex estimated",
		zap.Int64("property_id", req.PropertyID),
		zap.Float64("total_capex", est.TotalCapex),
		zap.Float64("capex_per_sqm", est.CapexPerSqm))
	return est, nil
}

// RefreshRiskScores backfills refurb intensity (from build year) and energy
// risk score (from EPC rating, defaulting to 50) for properties that lack
// them. Keyword-derived values already on the row are left alone.
func (e *Engine) RefreshRiskScores(ctx context.Context) (int64, error) {
	rows, err := e.pool.Query(ctx,
		`SELECT id, year_built, energy_rating FROM properties
		 WHERE refurb_intensity IS NULL OR energy_risk_score IS NULL`)
	if err != nil {
		return 0, eris.Wrap(err, "analytics: load properties for refresh")
	}

	type target struct {
		id     int64
		year   *int
		rating *string
	}
	var targets []target
	for rows.Next() {
		var tg target
		if err := rows.Scan(&tg.id, &tg.year, &tg.rating); err != nil {
			rows.Close()
			return 0, eris.Wrap(err, "analytics: scan property for refresh")
		}
		targets = append(targets, tg)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, eris.Wrap(err, "analytics: iterate properties for refresh")
	}

	var updated int64
	for _, tg := range targets {
		refurb := model.RefurbNone
		if tg.year != nil {
			refurb = RefurbFromYear(*tg.year)
		}

		score := DefaultEnergyRisk
		if tg.rating != nil {
			if s := EnergyRiskScore(*tg.rating); s != nil {
				score = *s
			}
		}

		tag, err := e.pool.Exec(ctx,
			`UPDATE properties SET
				refurb_intensity = COALESCE(refurb_intensity, $1),
				energy_risk_score = COALESCE(energy_risk_score, $2)
			 WHERE id = $3`,
			string(refurb), score, tg.id,
		)
		if err != nil {
			return updated, eris.Wrapf(err, "analytics: refresh property %d", tg.id)
		}
		updated += tag.RowsAffected()
	}

	e.log.Info("risk scores refreshed", zap.Int64("updated", updated))
	return updated, nil
}
