package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cognicore/arconv/pkg/arconv/store"
	"github.com/cognicore/arconv/pkg/arconv/store/sqlite"
)

type report struct {
	InvalidProducts []productEntry `json:"invalid_products"`
	RecentEvents    []eventEntry   `json:"recent_events,omitempty"`
}

type productEntry struct {
	Words string `json:"words"`
	Count int64  `json:"count"`
}

type eventEntry struct {
	ID     string    `json:"id"`
	Kind   string    `json:"kind"`
	Detail string    `json:"detail"`
	At     time.Time `json:"at"`
}

func main() {
	var (
		dbPath     = flag.String("db", "", "Database path (required)")
		top        = flag.Int("top", 20, "Number of unresolved products to list")
		kind       = flag.String("kind", "", "Also list recent events of this kind (invalid_product, fraction_parse_error, all)")
		limit      = flag.Int("limit", 50, "Maximum recent events")
		asJSON     = flag.Bool("json", false, "Print the report as JSON")
		conversion = flag.String("conversion", "", "Print one stored conversion by id and exit")
	)
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("--db required")
	}

	ctx := context.Background()
	st, err := sqlite.OpenSQLite(ctx, *dbPath)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer st.Close()

	if *conversion != "" {
		c, found, err := st.GetConversion(ctx, *conversion)
		if err != nil {
			log.Fatal("Failed to load conversion:", err)
		}
		if !found {
			log.Fatalf("Conversion %s not found", *conversion)
		}
		fmt.Println(c.Output)
		return
	}

	products, err := st.TopInvalidProducts(ctx, *top)
	if err != nil {
		log.Fatal("Failed to query products:", err)
	}

	var rep report
	for _, p := range products {
		rep.InvalidProducts = append(rep.InvalidProducts, productEntry{Words: p.Words, Count: p.Count})
	}

	if *kind != "" {
		k := *kind
		if k == "all" {
			k = ""
		}
		events, err := st.Events(ctx, k, *limit)
		if err != nil {
			log.Fatal("Failed to query events:", err)
		}
		rep.RecentEvents = toEntries(events)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			log.Fatal("Failed to encode report:", err)
		}
		return
	}

	fmt.Printf("Unresolved products (top %d):\n", *top)
	for _, p := range rep.InvalidProducts {
		fmt.Printf("  %5d  %s\n", p.Count, p.Words)
	}
	if len(rep.RecentEvents) > 0 {
		fmt.Printf("\nRecent events:\n")
		for _, e := range rep.RecentEvents {
			fmt.Printf("  %s  %-20s  %s\n", e.At.Format(time.RFC3339), e.Kind, e.Detail)
		}
	}
}

func toEntries(events []store.Event) []eventEntry {
	out := make([]eventEntry, len(events))
	for i, e := range events {
		out[i] = eventEntry{ID: e.ID, Kind: e.Kind, Detail: e.Detail, At: e.At}
	}
	return out
}
