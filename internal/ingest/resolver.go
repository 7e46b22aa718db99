package ingest

import "strings"

// MarketResolver maps a listing address to its metro market. Pluggable so the
// naive substring gazetteer can be swapped for a real geocoder later.
type MarketResolver interface {
	Resolve(address string) (Market, bool)
}

// Market is a resolved metro area.
type Market struct {
	Name    string
	Country string
	Code    string
}

// GazetteerEntry matches addresses containing Substring (case-insensitive).
type GazetteerEntry struct {
	Substring string `yaml:"substring" mapstructure:"substring"`
	Market    string `yaml:"market" mapstructure:"market"`
	Country   string `yaml:"country" mapstructure:"country"`
	Code      string `yaml:"code" mapstructure:"code"`
}

// Gazetteer resolves markets by substring lookup over the address text.
// Entries are checked in order, first match wins.
type Gazetteer struct {
	entries []GazetteerEntry
}

func NewGazetteer(entries []GazetteerEntry) *Gazetteer {
	return &Gazetteer{entries: entries}
}

// DefaultGazetteer covers the portals currently scraped.
func DefaultGazetteer() *Gazetteer {
	return NewGazetteer([]GazetteerEntry{
		{Substring: "london", Market: "London", Country: "UK", Code: "LON"},
	})
}

func (g *Gazetteer) Resolve(address string) (Market, bool) {
	lower := strings.ToLower(address)
	for _, e := range g.entries {
		if e.Substring != "" && strings.Contains(lower, strings.ToLower(e.Substring)) {
			country := e.Country
			if country == "" {
				country = "UK"
			}
			return Market{Name: e.Market, Country: country, Code: e.Code}, true
		}
	}
	return Market{}, false
}
