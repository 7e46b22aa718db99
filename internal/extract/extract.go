// Package extract turns the raw visible text of a listing page into
// best-effort structured fields. Everything here is pure pattern matching:
// a field that cannot be found stays empty, nothing ever errors.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/model"
)

// SqftToSqm converts square feet to square metres.
const SqftToSqm = 0.092903

// PageFields is the extractor output. Scalar fields are kept as text where the
// page showed text; numeric parsing belongs to the normalizer.
type PageFields struct {
	Price        string
	PropertyType string
	Bedrooms     string
	Bathrooms    string
	Description  string

	FloorAreaSqm *float64
	YearBuilt    *int
	EnergyRating string
	Refurb       model.RefurbIntensity
}

var (
	priceRe    = regexp.MustCompile(`£\s*[\d,]+`)
	bedroomsRe = regexp.MustCompile(`(?i)(\d+)\s*bedrooms?`)
	bathroomsRe = regexp.MustCompile(`(?i)(\d+)\s*bathrooms?`)
	digitsRe   = regexp.MustCompile(`\d+`)

	sqmRe  = regexp.MustCompile(`(?i)([\d,\.]+)\s*(?:sq\.?\s*m\b|sqm\b|square\s+met(?:re|er)s?)`)
	sqftRe = regexp.MustCompile(`(?i)([\d,\.]+)\s*(?:sq\.?\s*ft\b|sqft\b|square\s+feet)`)

	yearBuiltRe = regexp.MustCompile(`(?i)(?:built|constructed|erected|completed)\s+(?:in\s+)?(19\d{2}|20\d{2})`)
	yearCircaRe = regexp.MustCompile(`(?i)circa\s+(19\d{2}|20\d{2})`)

	epcMarkerRe = regexp.MustCompile(`(?i)\b(?:EPC|Energy\s+(?:Performance\s+)?Rating)\b`)
	epcLetterRe = regexp.MustCompile(`\b([A-Ga-g])\b`)
)

// descriptionStopMarkers end the free-text description block. Matched by
// case-insensitive containment against each line.
var descriptionStopMarkers = []string{
	"COUNCIL TAX",
	"ENERGY PERFORMANCE CERTIFICATE",
	"UTILITIES, RIGHTS & RESTRICTIONS",
	"CHECK HOW MUCH YOU CAN BORROW",
	"ABOUT ",
}

// Keyword buckets for refurbishment intensity, checked full > medium > light.
// Order matters: a description mentioning both "complete refurbishment" and
// "newly refurbished" (e.g. comparing before/after) classifies as full.
var (
	refurbFullTerms = []string{
		"in need of modernisation",
		"in need of modernization",
		"requires modernisation",
		"requires modernization",
		"complete refurbishment",
		"full refurbishment",
		"total refurbishment",
		"unmodernised",
		"unmodernized",
		"shell condition",
	}
	refurbMediumTerms = []string{
		"requires some updating",
		"scope to improve",
		"scope for improvement",
		"dated condition",
		"requires updating",
		"needs updating",
	}
	refurbLightTerms = []string{
		"newly refurbished",
		"recently refurbished",
		"newly renovated",
		"recently renovated",
		"immaculate condition",
		"turn-key",
		"turnkey",
		"ready to move in",
	}
)

// ParsePage extracts all structured fields from the visible text of a listing
// page. The input is plain text with one visual line per text line, no DOM.
func ParsePage(bodyText string) PageFields {
	lines := nonEmptyLines(bodyText)

	f := PageFields{
		Price:        extractPrice(lines),
		PropertyType: valueAfterLabel(lines, "PROPERTY TYPE"),
		Bedrooms:     extractCount(lines, "BEDROOMS", bedroomsRe),
		Bathrooms:    extractCount(lines, "BATHROOMS", bathroomsRe),
		Description:  extractDescription(lines),
		FloorAreaSqm: ExtractFloorAreaSqm(bodyText),
		YearBuilt:    ExtractYearBuilt(bodyText),
		EnergyRating: ExtractEnergyRating(bodyText),
	}

	refurbSource := f.Description
	if refurbSource == "" {
		refurbSource = bodyText
	}
	f.Refurb = InferRefurbIntensity(refurbSource)

	return f
}

func nonEmptyLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if t := strings.TrimSpace(l); t != "" {
			lines = append(lines, t)
		}
	}
	return lines
}

// extractPrice returns the first line starting with the currency symbol that
// contains a formatted amount, kept as text including symbol and separators.
func extractPrice(lines []string) string {
	for _, l := range lines {
		if !strings.HasPrefix(l, "£") {
			continue
		}
		if m := priceRe.FindString(l); m != "" {
			return m
		}
	}
	return ""
}

// valueAfterLabel finds a line that is exactly the given label
// (case-insensitive) and returns the following non-empty line.
func valueAfterLabel(lines []string, label string) string {
	for i, l := range lines {
		if strings.EqualFold(l, label) && i+1 < len(lines) {
			return lines[i+1]
		}
	}
	return ""
}

// extractCount runs the two-pass bedroom/bathroom heuristic: the label-line
// form first, then the inline "<n> bedrooms" regex anywhere in the text.
func extractCount(lines []string, label string, inlineRe *regexp.Regexp) string {
	if v := valueAfterLabel(lines, label); v != "" {
		if m := digitsRe.FindString(v); m != "" {
			return m
		}
	}
	for _, l := range lines {
		if m := inlineRe.FindStringSubmatch(l); m != nil {
			return m[1]
		}
	}
	return ""
}

// extractDescription accumulates lines after the first "description" heading
// until a section stop marker or a bare separator line.
func extractDescription(lines []string) string {
	inDesc := false
	var desc []string

	for _, l := range lines {
		if !inDesc {
			if strings.HasPrefix(strings.ToLower(l), "description") {
				inDesc = true
			}
			continue
		}
		if isStopMarker(l) {
			break
		}
		desc = append(desc, l)
	}

	return strings.TrimSpace(strings.Join(desc, "\n"))
}

func isStopMarker(line string) bool {
	upper := strings.ToUpper(line)
	for _, sm := range descriptionStopMarkers {
		if strings.Contains(upper, sm) {
			return true
		}
	}
	return isSeparatorLine(line)
}

// isSeparatorLine reports whether the line is purely separator punctuation.
func isSeparatorLine(line string) bool {
	if len(line) < 3 {
		return false
	}
	for _, r := range line {
		switch r {
		case '-', '_', '=', '*':
		default:
			return false
		}
	}
	return true
}

// ExtractFloorAreaSqm finds a floor area in the text and returns it in m².
// The metric pattern takes priority; imperial areas are converted.
func ExtractFloorAreaSqm(text string) *float64 {
	if text == "" {
		return nil
	}
	if m := sqmRe.FindStringSubmatch(text); m != nil {
		if v := parseAreaNumber(m[1]); v != nil {
			return v
		}
	}
	if m := sqftRe.FindStringSubmatch(text); m != nil {
		if v := parseAreaNumber(m[1]); v != nil {
			sqm := *v * SqftToSqm
			return &sqm
		}
	}
	return nil
}

// parseAreaNumber strips thousands separators and parses a positive float.
func parseAreaNumber(s string) *float64 {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.Trim(s, ".")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}

// ExtractYearBuilt finds a construction year. Years outside [1800, now] are
// treated as not found; with the 19xx/20xx patterns that bound only trips on
// corrupted input, but it stays as a second safety net.
func ExtractYearBuilt(text string) *int {
	if text == "" {
		return nil
	}
	m := yearBuiltRe.FindStringSubmatch(text)
	if m == nil {
		m = yearCircaRe.FindStringSubmatch(text)
	}
	if m == nil {
		return nil
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return ValidYear(year)
}

// ValidYear bounds-checks a candidate construction year.
func ValidYear(year int) *int {
	if year < 1800 || year > time.Now().Year() {
		return nil
	}
	return &year
}

// ExtractEnergyRating finds an EPC marker and returns the first standalone A–G
// letter that follows it, uppercased. Letters embedded in words (the "a" in
// "rating") do not count; anything outside A–G is discarded silently.
func ExtractEnergyRating(text string) string {
	loc := epcMarkerRe.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	window := text[loc[1]:]
	if len(window) > 40 {
		window = window[:40]
	}
	m := epcLetterRe.FindStringSubmatch(window)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}

// InferRefurbIntensity classifies renovation need from keywords, checking the
// full bucket before medium before light.
func InferRefurbIntensity(text string) model.RefurbIntensity {
	t := strings.ToLower(text)
	if containsAny(t, refurbFullTerms) {
		return model.RefurbFull
	}
	if containsAny(t, refurbMediumTerms) {
		return model.RefurbMedium
	}
	if containsAny(t, refurbLightTerms) {
		return model.RefurbLight
	}
	return model.RefurbNone
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// Record builds a RawRecord for one scraped page, combining the page fields
// with the metadata the fetch layer knows (url, title, address).
func Record(url, title, address, bodyText string) model.RawRecord {
	f := ParsePage(bodyText)
	if address == "" {
		address = title
	}
	return model.RawRecord{
		URL:          url,
		Title:        title,
		Address:      address,
		Price:        f.Price,
		Description:  f.Description,
		Bedrooms:     f.Bedrooms,
		Bathrooms:    f.Bathrooms,
		PropertyType: f.PropertyType,
		FloorAreaSqm: f.FloorAreaSqm,
		YearBuilt:    f.YearBuilt,
		EnergyRating: f.EnergyRating,
		Refurb:       string(f.Refurb),
		RawText:      bodyText,
	}
}
