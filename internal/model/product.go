package model

import "strings"

// FetchStatus records how much of a product page survived extraction.
type FetchStatus string

const (
	FetchOK      FetchStatus = "ok"
	FetchPartial FetchStatus = "partial" // page fetched, one or more blocks missing
	FetchFailed  FetchStatus = "failed"  // page could not be fetched or parsed
)

// RawProduct is one product page as scraped, before any normalization.
// Attributes keeps the page-literal spec-table labels; interpreting and
// merging them is the cleaning engine's job, not the extractor's.
type RawProduct struct {
	SourceID    string
	SourceURL   string
	Name        string
	PriceRaw    string
	Rating      *float64
	RatingCount *int
	Attributes  map[string]string
	Status      FetchStatus
}

// CleanedProduct is one row of the cleaned dataset. Numeric fields are nil
// when the value was absent or rejected during range validation.
type CleanedProduct struct {
	Name            string
	Manufacturer    string
	RobotType       string
	BatteryType     string
	Color           string
	CountryOfOrigin string

	Price       *float64 // CHF
	Rating      *float64
	RatingCount *int

	BatteryCapacityMAh *float64
	BatteryLifeMin     *float64
	ChargingTimeMin    *float64
	SuctionPowerPa     *float64
	RoomAreaM2         *float64
	NoiseLevelDB       *float64
	HeightCM           *float64
	MaxThresholdMM     *float64
	DustCapacityL      *float64
	WaterCapacityL     *float64
	WeightKG           *float64

	Features   []string
	Surfaces   []string
	Ecosystems []string
}

// Identity is the deduplication key: case-normalized name plus manufacturer.
func (p *CleanedProduct) Identity() string {
	return strings.ToLower(strings.TrimSpace(p.Name)) + "|" + strings.ToLower(strings.TrimSpace(p.Manufacturer))
}
