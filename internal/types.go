package internal

import "time"

// OrderUnset is the sort key used when an order cell is blank or not numeric.
const OrderUnset = 999999

type PromoRule string

const (
	PromoAffirmativeWord PromoRule = "affirmative-word"
	PromoNonEmptyNonZero PromoRule = "non-empty-non-zero"
)

// Item is one normalized spreadsheet row. Items are built fresh on every
// fetch cycle and never mutated afterwards.
type Item struct {
	Row             int     `json:"row"`
	Category        string  `json:"category"`
	Subcategory     string  `json:"subcategory,omitempty"`
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	BasePrice       string  `json:"basePrice,omitempty"`
	Active          bool    `json:"active"`
	SortOrder       float64 `json:"sortOrder"`
	IsPromotion     bool    `json:"isPromotion"`
	PromoPrice      string  `json:"promoPrice,omitempty"`
	Image           string  `json:"image,omitempty"`
	ImageURL        string  `json:"imageUrl"`
	BackgroundColor string  `json:"backgroundColor,omitempty"`

	SignageEligible    bool          `json:"signageEligible"`
	SignageGroup       string        `json:"signageGroup,omitempty"`
	SignageOrder       float64       `json:"signageOrder"`
	SignageTitle       string        `json:"signageTitle,omitempty"`
	SignageDescription string        `json:"signageDescription,omitempty"`
	SignagePriceText   string        `json:"signagePriceText,omitempty"`
	SignageDuration    time.Duration `json:"signageDuration,omitempty"`
}

// Listed reports whether the item may appear in any view.
func (it Item) Listed() bool {
	return it.Active && it.Name != ""
}

type CategoryGroup struct {
	Category string `json:"category"`
	Items    []Item `json:"items"`
}

type SheetExport struct {
	Provider  string
	Format    string
	Source    string
	Body      []byte
	FetchedAt time.Time
}

type SnapshotRow struct {
	ID        int
	Provider  string
	Format    string
	Hash      string
	RawRef    string
	Size      int
	FetchedAt string
}

type RunRecord struct {
	TraceID    string
	Generation uint64
	Provider   string
	Outcome    string
	Message    string
	Timings    map[string]float64
	Counts     map[string]int
}
