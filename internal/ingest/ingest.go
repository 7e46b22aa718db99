// Package ingest reconciles scraped records into the entity graph: one batch
// runs inside one store session, each record isolated by a savepoint so a bad
// record never takes the batch down with it.
package ingest

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/analytics"
	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/extract"
	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/model"
	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/normalize"
	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/store"
)

// Options carry the batch-level metadata for one ingest run.
type Options struct {
	Portal        string
	LocationQuery string
	ListingType   model.ListingType
}

// RecordFailure describes one rejected record with enough context for
// post-hoc debugging.
type RecordFailure struct {
	Index  int    `json:"index"`
	URL    string `json:"url,omitempty"`
	Reason string `json:"reason"`
}

// Summary is the batch result. Counts are always populated, even when every
// record failed.
type Summary struct {
	RunID    string          `json:"run_id"`
	Total    int             `json:"total"`
	Success  int             `json:"success"`
	Errors   int             `json:"errors"`
	Status   model.RunStatus `json:"status"`
	Failures []RecordFailure `json:"failures,omitempty"`
}

// Ingestor drives batch ingestion against a Store.
type Ingestor struct {
	store   store.Store
	markets MarketResolver
}

// New creates an Ingestor. A nil resolver falls back to the default
// gazetteer.
func New(st store.Store, resolver MarketResolver) *Ingestor {
	if resolver == nil {
		resolver = DefaultGazetteer()
	}
	return &Ingestor{store: st, markets: resolver}
}

// IngestBatch persists records sequentially inside one session. Per-record
// failures are counted and logged, batch-level failures (no session, no run)
// propagate. The run row commits atomically with the data it describes.
func (in *Ingestor) IngestBatch(ctx context.Context, records []model.RawRecord, opts Options) (*Summary, error) {
	if opts.Portal == "" {
		return nil, eris.New("ingest: portal is required")
	}
	if opts.ListingType == "" {
		opts.ListingType = model.ListingTypeSale
	}

	sess, err := in.store.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open session")
	}
	defer sess.Rollback(ctx)

	var locationQuery *string
	if opts.LocationQuery != "" {
		locationQuery = &opts.LocationQuery
	}
	run, err := sess.CreateRun(ctx, opts.Portal, locationQuery)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: create run")
	}

	summary := &Summary{RunID: run.ID, Total: len(records)}
	for i, rec := range records {
		if strings.TrimSpace(rec.URL) == "" {
			summary.Errors++
			summary.Failures = append(summary.Failures, RecordFailure{Index: i, Reason: "missing url"})
			zap.L().Warn("record rejected",
				zap.String("run_id", run.ID),
				zap.Int("index", i),
				zap.String("reason", "missing url"))
			continue
		}

		err := sess.Savepoint(ctx, func() error {
			return in.ingestRecord(ctx, sess, run, &rec, opts)
		})
		if err != nil {
			summary.Errors++
			summary.Failures = append(summary.Failures, RecordFailure{Index: i, URL: rec.URL, Reason: err.Error()})
			zap.L().Warn("record rejected",
				zap.String("run_id", run.ID),
				zap.Int("index", i),
				zap.String("url", rec.URL),
				zap.Error(err))
			continue
		}
		summary.Success++
	}

	now := time.Now().UTC()
	run.FinishedAt = &now
	run.TotalListings = summary.Total
	run.SuccessCount = summary.Success
	run.ErrorCount = summary.Errors
	run.Status = model.FinalRunStatus(summary.Errors)
	if err := sess.FinishRun(ctx, run); err != nil {
		return nil, eris.Wrap(err, "ingest: finalize run")
	}
	if err := sess.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "ingest: commit batch")
	}

	summary.Status = run.Status
	zap.L().Info("batch ingested",
		zap.String("run_id", run.ID),
		zap.String("portal", opts.Portal),
		zap.Int("total", summary.Total),
		zap.Int("success", summary.Success),
		zap.Int("errors", summary.Errors),
		zap.String("status", string(run.Status)))
	return summary, nil
}

// recordFields is the merged, normalized view of one record: explicit record
// fields win, gaps are filled from the raw page text when present.
type recordFields struct {
	price        *float64
	bedrooms     *int
	bathrooms    *int
	propertyType *string
	description  *string
	floorArea    *float64
	yearBuilt    *int
	energyRating *string
	refurb       *model.RefurbIntensity
}

func mergeFields(rec *model.RawRecord) recordFields {
	f := recordFields{
		price:        normalize.Price(rec.Price),
		bedrooms:     normalize.IntField(rec.Bedrooms),
		bathrooms:    normalize.IntField(rec.Bathrooms),
		propertyType: normalize.String(rec.PropertyType),
		description:  normalize.Text(rec.Description),
		floorArea:    rec.FloorAreaSqm,
		energyRating: validRating(rec.EnergyRating),
	}
	if rec.YearBuilt != nil {
		f.yearBuilt = extract.ValidYear(*rec.YearBuilt)
	}
	if r := model.RefurbIntensity(strings.ToLower(strings.TrimSpace(rec.Refurb))); isRefurb(r) {
		f.refurb = &r
	}

	if rec.RawText != "" {
		page := extract.ParsePage(rec.RawText)
		if f.price == nil {
			f.price = normalize.Price(page.Price)
		}
		if f.bedrooms == nil {
			f.bedrooms = normalize.IntField(page.Bedrooms)
		}
		if f.bathrooms == nil {
			f.bathrooms = normalize.IntField(page.Bathrooms)
		}
		if f.propertyType == nil {
			f.propertyType = normalize.String(page.PropertyType)
		}
		if f.description == nil {
			f.description = normalize.Text(page.Description)
		}
		if f.floorArea == nil {
			f.floorArea = page.FloorAreaSqm
		}
		if f.yearBuilt == nil {
			f.yearBuilt = page.YearBuilt
		}
		if f.energyRating == nil {
			f.energyRating = validRating(page.EnergyRating)
		}
		if f.refurb == nil && page.Refurb != model.RefurbNone {
			r := page.Refurb
			f.refurb = &r
		}
	}

	if f.refurb == nil && f.description != nil {
		if r := extract.InferRefurbIntensity(*f.description); r != model.RefurbNone {
			f.refurb = &r
		}
	}
	return f
}

func (in *Ingestor) ingestRecord(ctx context.Context, sess store.Session, run *model.ScrapeRun, rec *model.RawRecord, opts Options) error {
	fields := mergeFields(rec)
	address := recordAddress(rec)
	postcode := postcodeFromAddress(address)
	now := time.Now().UTC()

	var city *string
	var submarketID *int64
	if resolved, ok := in.markets.Resolve(address); ok {
		var code *string
		if resolved.Code != "" {
			code = &resolved.Code
		}
		market, err := sess.GetOrCreateMarket(ctx, resolved.Name, resolved.Country, code)
		if err != nil {
			return err
		}
		city = &market.Name

		if postcode != nil {
			sub, err := sess.GetOrCreateSubmarket(ctx, market.ID, *postcode+" area", postcode)
			if err != nil {
				return err
			}
			submarketID = &sub.ID
		}
	}

	prop, err := sess.FindProperty(ctx, address, postcode)
	if err != nil {
		return err
	}
	if prop == nil {
		prop = &model.Property{
			SubmarketID:     submarketID,
			FullAddress:     address,
			Postcode:        postcode,
			City:            city,
			PropertyType:    fields.propertyType,
			Bedrooms:        fields.bedrooms,
			Bathrooms:       fields.bathrooms,
			FloorAreaSqm:    fields.floorArea,
			YearBuilt:       fields.yearBuilt,
			EnergyRating:    fields.energyRating,
			RefurbIntensity: fields.refurb,
			FirstSeenAt:     now,
			LastSeenAt:      now,
		}
		if fields.energyRating != nil {
			prop.EnergyRiskScore = analytics.EnergyRiskScore(*fields.energyRating)
		}
		if err := sess.CreateProperty(ctx, prop); err != nil {
			return err
		}
	} else {
		fillNullProperty(prop, fields, submarketID, city)
		prop.LastSeenAt = now
		if err := sess.UpdateProperty(ctx, prop); err != nil {
			return err
		}
	}

	listing, err := sess.FindListing(ctx, prop.ID, rec.URL, opts.Portal)
	if err != nil {
		return err
	}
	if listing == nil {
		listing = &model.Listing{
			PropertyID:   prop.ID,
			ScrapeRunID:  &run.ID,
			Portal:       opts.Portal,
			URL:          rec.URL,
			ListingType:  opts.ListingType,
			Status:       model.ListingStatusActive,
			Price:        fields.price,
			Currency:     model.DefaultCurrency,
			Bedrooms:     fields.bedrooms,
			Bathrooms:    fields.bathrooms,
			PropertyType: fields.propertyType,
			Description:  fields.description,
			FirstSeenAt:  now,
			LastSeenAt:   now,
		}
		if err := sess.CreateListing(ctx, listing); err != nil {
			return err
		}
	} else {
		// Listings are mutable ads: price and counts track the latest
		// scrape even when the new value is empty.
		listing.Price = fields.price
		listing.Bedrooms = fields.bedrooms
		listing.Bathrooms = fields.bathrooms
		if fields.propertyType != nil {
			listing.PropertyType = fields.propertyType
		}
		if fields.description != nil {
			listing.Description = fields.description
		}
		listing.ScrapeRunID = &run.ID
		listing.Status = model.ListingStatusActive
		listing.LastSeenAt = now
		if err := sess.UpdateListing(ctx, listing); err != nil {
			return err
		}
	}

	raw := &model.RawScrape{
		ListingID: listing.ID,
		ScrapedAt: now,
		RawText:   normalize.String(rec.RawText),
		RawHTML:   normalize.String(rec.RawHTML),
		RawMeta:   normalize.String(rec.RawMeta),
	}
	return sess.AppendRawScrape(ctx, raw)
}

// fillNullProperty applies the fill-null-only update policy: scraped data
// never overwrites a previously-known attribute.
func fillNullProperty(p *model.Property, f recordFields, submarketID *int64, city *string) {
	if p.SubmarketID == nil {
		p.SubmarketID = submarketID
	}
	if p.City == nil {
		p.City = city
	}
	if p.PropertyType == nil {
		p.PropertyType = f.propertyType
	}
	if p.Bedrooms == nil {
		p.Bedrooms = f.bedrooms
	}
	if p.Bathrooms == nil {
		p.Bathrooms = f.bathrooms
	}
	if p.FloorAreaSqm == nil {
		p.FloorAreaSqm = f.floorArea
	}
	if p.YearBuilt == nil {
		p.YearBuilt = f.yearBuilt
	}
	if p.EnergyRating == nil {
		p.EnergyRating = f.energyRating
	}
	if p.RefurbIntensity == nil {
		p.RefurbIntensity = f.refurb
	}
	if p.EnergyRiskScore == nil && p.EnergyRating != nil {
		p.EnergyRiskScore = analytics.EnergyRiskScore(*p.EnergyRating)
	}
}

// recordAddress picks the property identity key: address, falling back to
// title, falling back to the URL itself so every record has one.
func recordAddress(rec *model.RawRecord) string {
	if a := normalize.Text(rec.Address); a != nil {
		return *a
	}
	if t := normalize.Text(rec.Title); t != nil {
		return *t
	}
	return rec.URL
}

// postcodeFromAddress applies the last-comma-token heuristic: UK postcodes
// (or their outcodes) trail the address and never exceed 8 characters.
func postcodeFromAddress(address string) *string {
	parts := strings.Split(address, ",")
	if len(parts) < 2 {
		return nil
	}
	last := strings.TrimSpace(parts[len(parts)-1])
	if last == "" || len(last) > 8 {
		return nil
	}
	return &last
}

func validRating(s string) *string {
	r := strings.ToUpper(strings.TrimSpace(s))
	if len(r) != 1 || r[0] < 'A' || r[0] > 'G' {
		return nil
	}
	return &r
}

func isRefurb(r model.RefurbIntensity) bool {
	switch r {
	case model.RefurbNone, model.RefurbLight, model.RefurbMedium, model.RefurbFull:
		return true
	}
	return false
}
