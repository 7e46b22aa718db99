package model

// RunStatus is the lifecycle state of a ScrapeRun.
type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusSuccess RunStatus = "success"
	// RunStatusCompletedWithErrors is the canonical "finished, but some
	// records were rejected" state.
	RunStatusCompletedWithErrors RunStatus = "completed_with_errors"
	RunStatusFailed              RunStatus = "failed"
)

// FinalRunStatus maps batch counters to the terminal status.
func FinalRunStatus(errorCount int) RunStatus {
	if errorCount == 0 {
		return RunStatusSuccess
	}
	return RunStatusCompletedWithErrors
}

// ListingType distinguishes sale from rental advertisements.
type ListingType string

const (
	ListingTypeSale ListingType = "sale"
	ListingTypeRent ListingType = "rent"
)

// RefurbIntensity classifies how much renovation a property needs, inferred
// from description keywords or build year.
type RefurbIntensity string

const (
	RefurbNone   RefurbIntensity = "none"
	RefurbLight  RefurbIntensity = "light"
	RefurbMedium RefurbIntensity = "medium"
	RefurbFull   RefurbIntensity = "full"
)

// ListingStatusActive is the status assigned to newly ingested listings.
const ListingStatusActive = "active"

// DefaultCurrency is used for all UK portal listings.
const DefaultCurrency = "GBP"
