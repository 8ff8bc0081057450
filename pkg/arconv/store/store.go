package store

import (
	"context"
	"time"
)

// Event kinds
const (
	KindInvalidProduct     = "invalid_product"
	KindFractionParseError = "fraction_parse_error"
)

// Store persists conversion diagnostics and history.
type Store interface {
	Close() error

	// Diagnostics
	RecordEvent(ctx context.Context, e Event) error
	Events(ctx context.Context, kind string, limit int) ([]Event, error)
	TopInvalidProducts(ctx context.Context, k int) ([]ProductCount, error)

	// History
	SaveConversion(ctx context.Context, c Conversion) error
	GetConversion(ctx context.Context, id string) (Conversion, bool, error)
}

// Event is one diagnostic emitted while converting a line.
type Event struct {
	ID     string
	Kind   string
	Detail string // words of the line, or the fraction surface
	At     time.Time
}

// ProductCount is how often a line failed to resolve an ingredient.
type ProductCount struct {
	Words string
	Count int64
}

// Conversion is one converted document.
type Conversion struct {
	ID        string
	Source    string // caller-defined label, e.g. a file name or recipe id
	Input     string
	Output    string
	Lines     int
	Converted int // lines that changed
	CreatedAt time.Time
}
