package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime"

	"github.com/cognicore/arconv/internal/recipes"
	"github.com/cognicore/arconv/pkg/arconv"
	"github.com/cognicore/arconv/pkg/arconv/config"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file (optional)")
		dataPath   = flag.String("data", "", "Input JSONL file (required)")
		outPath    = flag.String("out", "", "Output JSONL file (default stdout)")
		coeffPath  = flag.String("coefficients", "", "Coefficient table, JSON or YAML")
		unitsPath  = flag.String("units", "", "Unit vocabulary override (optional)")
		dbPath     = flag.String("db", "", "Database for diagnostics and history (optional)")
		logPath    = flag.String("log", "", "Diagnostics log file (optional)")
		workers    = flag.Int("workers", 0, "Parallel workers (default: config or NumCPU)")
	)
	flag.Parse()

	if *dataPath == "" {
		log.Fatal("--data required")
	}

	loader := config.Loader{}
	nworkers := runtime.NumCPU()
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatal("Failed to load config:", err)
		}
		loader = cfg.Loader()
		if cfg.Workers > 0 {
			nworkers = cfg.Workers
		}
	}
	if *coeffPath != "" {
		loader.CoefficientsPath = *coeffPath
	}
	if *unitsPath != "" {
		loader.UnitsPath = *unitsPath
	}
	if *dbPath != "" {
		loader.DatabasePath = *dbPath
	}
	if *logPath != "" {
		loader.LogPath = *logPath
	}
	if *workers > 0 {
		nworkers = *workers
	}
	if loader.CoefficientsPath == "" {
		log.Fatal("--coefficients required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	comp, err := loader.Load(ctx)
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	defer comp.Close()
	engine := comp.Engine()

	items, err := recipes.LoadFromJSONL(*dataPath)
	if err != nil {
		log.Fatal("Failed to load recipes:", err)
	}
	log.Printf("Loaded %d recipes from %s", len(items), *dataPath)

	out := make([]recipes.Converted, 0, len(items))
	for i, item := range items {
		conv, err := engine.Convert(ctx, arconv.Document{Source: item.ID, Text: item.Text, HTML: item.HTML}, nworkers)
		if err != nil {
			if ctx.Err() != nil {
				log.Printf("Interrupted after %d/%d recipes", i, len(items))
				break
			}
			log.Printf("Failed to convert recipe %s: %v", item.ID, err)
			continue
		}

		c := recipes.Converted{
			ID:      item.ID,
			Title:   item.Title,
			URL:     item.URL,
			Text:    conv.Output,
			Lines:   conv.Lines,
			Changed: conv.Converted,
		}
		if comp.Store != nil {
			c.ConversionID = conv.ID
		}
		out = append(out, c)

		if (i+1)%100 == 0 {
			log.Printf("Converted %d/%d recipes", i+1, len(items))
		}
	}

	w := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatal("Failed to create output:", err)
		}
		defer f.Close()
		w = f
	}
	if err := recipes.WriteJSONL(w, out); err != nil {
		log.Fatal("Failed to write output:", err)
	}

	log.Printf("Batch complete: %d recipes converted", len(out))
}
