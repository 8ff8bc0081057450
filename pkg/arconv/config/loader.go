package config

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cognicore/arconv/pkg/arconv"
	"github.com/cognicore/arconv/pkg/arconv/coeff"
	"github.com/cognicore/arconv/pkg/arconv/diag"
	"github.com/cognicore/arconv/pkg/arconv/numscan"
	"github.com/cognicore/arconv/pkg/arconv/store"
	"github.com/cognicore/arconv/pkg/arconv/store/sqlite"
	"github.com/cognicore/arconv/pkg/arconv/units"
)

// Loader loads all configuration files and constructs components
type Loader struct {
	CoefficientsPath string
	UnitsPath        string
	DatabasePath     string
	LogPath          string
	Joiners          []string
	Patterns         []string
}

// Components holds all loaded configuration components
type Components struct {
	Coefficients *coeff.Table
	Units        *units.Registry
	Scanner      *numscan.Scanner
	Store        store.Store // nil without a database
	Sink         diag.Sink
	Joiners      []string

	closers []io.Closer
}

// Load reads all configuration files and returns initialized components
func (l *Loader) Load(ctx context.Context) (*Components, error) {
	comp := &Components{Joiners: l.Joiners}

	// Load coefficients
	if l.CoefficientsPath != "" {
		table, err := coeff.Load(l.CoefficientsPath)
		if err != nil {
			return nil, fmt.Errorf("load coefficients: %w", err)
		}
		comp.Coefficients = table
	} else {
		table, _ := coeff.NewTable(nil)
		comp.Coefficients = table
	}

	// Load units
	if l.UnitsPath != "" {
		reg, err := units.LoadFromYAML(l.UnitsPath)
		if err != nil {
			return nil, fmt.Errorf("load units: %w", err)
		}
		comp.Units = reg
	} else {
		comp.Units = units.Default()
	}

	// Scanner patterns
	if len(l.Patterns) > 0 {
		sc, err := numscan.NewScannerWithPatterns(l.Patterns)
		if err != nil {
			return nil, fmt.Errorf("load patterns: %w", err)
		}
		comp.Scanner = sc
	} else {
		comp.Scanner = numscan.NewScanner()
	}

	var sinks diag.Multi

	// Diagnostics log
	if l.LogPath != "" {
		f, err := os.OpenFile(l.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		comp.closers = append(comp.closers, f)
		sinks = append(sinks, diag.NewLogSink(log.New(f, "", log.LstdFlags)))
	}

	// Database
	if l.DatabasePath != "" {
		st, err := sqlite.OpenSQLite(ctx, l.DatabasePath)
		if err != nil {
			comp.Close()
			return nil, fmt.Errorf("open database: %w", err)
		}
		comp.Store = st
		comp.closers = append(comp.closers, st)
		sinks = append(sinks, diag.NewStoreSink(st, log.Default()))
	}

	switch len(sinks) {
	case 0:
		comp.Sink = diag.Nop{}
	case 1:
		comp.Sink = sinks[0]
	default:
		comp.Sink = sinks
	}

	return comp, nil
}

// Engine builds an engine from the loaded components.
func (c *Components) Engine() *arconv.Engine {
	return arconv.New(arconv.Options{
		Coefficients: c.Coefficients,
		Units:        c.Units,
		Scanner:      c.Scanner,
		Joiners:      c.Joiners,
		Sink:         c.Sink,
		Store:        c.Store,
	})
}

// Close releases the log file and database.
func (c *Components) Close() error {
	var first error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}
