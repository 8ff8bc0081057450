// Package diag receives the problems found while converting lines: amounts
// whose ingredient has no known density and fractions that failed to parse.
package diag

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/cognicore/arconv/pkg/arconv/idgen"
	"github.com/cognicore/arconv/pkg/arconv/store"
)

// Sink receives diagnostics. Implementations must be safe for concurrent
// use; the engine may call them from several workers.
type Sink interface {
	// InvalidProduct reports a line whose volume amount has no density.
	// words are the words of the line joined by spaces.
	InvalidProduct(words string)
	// FractionParseError reports a fraction that could not be parsed.
	FractionParseError(surface string)
}

// Nop discards every diagnostic.
type Nop struct{}

func (Nop) InvalidProduct(string)     {}
func (Nop) FractionParseError(string) {}

// LogSink writes one line per diagnostic.
type LogSink struct {
	Logger *log.Logger
}

// NewLogSink creates a sink writing to logger.
func NewLogSink(logger *log.Logger) *LogSink {
	return &LogSink{Logger: logger}
}

func (s *LogSink) InvalidProduct(words string) {
	s.Logger.Printf("INVALID PRODUCT: %s", words)
}

func (s *LogSink) FractionParseError(surface string) {
	s.Logger.Printf("Error in fraction %s", surface)
}

// StoreSink records diagnostics as store events. Write failures go to
// Logger when it is set.
type StoreSink struct {
	Store   store.Store
	Logger  *log.Logger
	Timeout time.Duration
	ids     *idgen.Generator
}

// NewStoreSink creates a sink writing to st.
func NewStoreSink(st store.Store, logger *log.Logger) *StoreSink {
	return &StoreSink{Store: st, Logger: logger, Timeout: 5 * time.Second, ids: idgen.New()}
}

func (s *StoreSink) InvalidProduct(words string) {
	s.record(store.KindInvalidProduct, words)
}

func (s *StoreSink) FractionParseError(surface string) {
	s.record(store.KindFractionParseError, surface)
}

func (s *StoreSink) record(kind, detail string) {
	ctx := context.Background()
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	id := idgen.NewID()
	if s.ids != nil {
		id = s.ids.NewID()
	}
	e := store.Event{ID: id, Kind: kind, Detail: detail, At: time.Now()}
	if err := s.Store.RecordEvent(ctx, e); err != nil && s.Logger != nil {
		s.Logger.Printf("record %s event: %v", kind, err)
	}
}

// Multi fans diagnostics out to several sinks.
type Multi []Sink

func (m Multi) InvalidProduct(words string) {
	for _, s := range m {
		s.InvalidProduct(words)
	}
}

func (m Multi) FractionParseError(surface string) {
	for _, s := range m {
		s.FractionParseError(surface)
	}
}

// Recorder keeps diagnostics in memory.
type Recorder struct {
	mu        sync.Mutex
	products  []string
	fractions []string
}

func (r *Recorder) InvalidProduct(words string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = append(r.products, words)
}

func (r *Recorder) FractionParseError(surface string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fractions = append(r.fractions, surface)
}

// InvalidProducts returns the reported product lines in order.
func (r *Recorder) InvalidProducts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.products...)
}

// FractionErrors returns the reported fraction surfaces in order.
func (r *Recorder) FractionErrors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.fractions...)
}
