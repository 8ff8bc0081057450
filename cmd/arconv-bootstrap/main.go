package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/arconv/pkg/arconv/config"
	"github.com/cognicore/arconv/pkg/arconv/store/sqlite"
	"github.com/cognicore/arconv/pkg/arconv/units"
)

func main() {
	var (
		outDir    = flag.String("out", "", "Directory to write the config into (required)")
		coeffPath = flag.String("coefficients", "coefficients.json", "Coefficient table the config points at")
		dbPath    = flag.String("db", "", "Existing database; its unresolved products seed a todo list (optional)")
		top       = flag.Int("top", 50, "Unresolved products to list")
		workers   = flag.Int("workers", 4, "Workers for the batch command")
		force     = flag.Bool("force", false, "Overwrite existing files")
	)
	flag.Parse()

	if *outDir == "" {
		log.Fatal("--out required")
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal("Failed to create output directory:", err)
	}

	unitsData, err := yaml.Marshal(units.DefaultSpec())
	if err != nil {
		log.Fatal("Failed to encode units:", err)
	}
	write(filepath.Join(*outDir, "units.yaml"), unitsData, *force)

	cfg := config.Config{
		Coefficients: *coeffPath,
		Units:        "units.yaml",
		Database:     "arconv.db",
		LogFile:      "diagnostics.log",
		Workers:      *workers,
		Joiners:      []string{"to", "-", "x", "+"},
	}
	cfgData, err := yaml.Marshal(cfg)
	if err != nil {
		log.Fatal("Failed to encode config:", err)
	}
	write(filepath.Join(*outDir, "arconv.yaml"), cfgData, *force)

	if *dbPath != "" {
		ctx := context.Background()
		st, err := sqlite.OpenSQLite(ctx, *dbPath)
		if err != nil {
			log.Fatal("Failed to open database:", err)
		}
		defer st.Close()

		products, err := st.TopInvalidProducts(ctx, *top)
		if err != nil {
			log.Fatal("Failed to query products:", err)
		}

		var b strings.Builder
		b.WriteString("# Lines whose ingredient has no density yet. Add the ingredient\n")
		b.WriteString("# with its grams per cup to the coefficient table.\n")
		for _, p := range products {
			fmt.Fprintf(&b, "# %5d  %s\n", p.Count, p.Words)
		}
		write(filepath.Join(*outDir, "missing.txt"), []byte(b.String()), *force)
		log.Printf("Listed %d unresolved products", len(products))
	}

	log.Printf("Config written to %s", *outDir)
}

func write(path string, data []byte, force bool) {
	if !force {
		if _, err := os.Stat(path); err == nil {
			log.Printf("Skipping %s (exists, use --force)", path)
			return
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", path, err)
	}
	log.Printf("Wrote %s", path)
}
