// Package model defines the entity types shared across the ingestion pipeline.
package model

// RawRecord is one scraped listing as delivered by the fetch layer. URL is the
// only required field; everything else is best-effort output of the extractor.
type RawRecord struct {
	URL          string   `json:"url"`
	Title        string   `json:"title,omitempty"`
	Price        string   `json:"price,omitempty"`
	Address      string   `json:"address,omitempty"`
	Description  string   `json:"description,omitempty"`
	Bedrooms     string   `json:"bedrooms,omitempty"`
	Bathrooms    string   `json:"bathrooms,omitempty"`
	PropertyType string   `json:"property_type,omitempty"`
	FloorAreaSqm *float64 `json:"floor_area_sqm,omitempty"`
	YearBuilt    *int     `json:"year_built,omitempty"`
	EnergyRating string   `json:"energy_rating,omitempty"`
	Refurb       string   `json:"refurb_intensity,omitempty"`
	Source       string   `json:"source,omitempty"`

	RawText string `json:"raw_text,omitempty"`
	RawHTML string `json:"raw_html,omitempty"`
	RawMeta string `json:"raw_meta,omitempty"`
}
