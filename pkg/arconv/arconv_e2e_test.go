package arconv_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/arconv/internal/recipes"
	"github.com/cognicore/arconv/pkg/arconv"
	"github.com/cognicore/arconv/pkg/arconv/config"
	"github.com/cognicore/arconv/pkg/arconv/store"
)

// TestEndToEndBatch runs the sample recipes through a fully configured
// engine backed by sqlite.
func TestEndToEndBatch(t *testing.T) {
	ctx := context.Background()
	testdata := filepath.Join("..", "..", "testdata")

	loader := config.Loader{
		CoefficientsPath: filepath.Join(testdata, "coefficients.json"),
		UnitsPath:        filepath.Join(testdata, "units.yaml"),
		DatabasePath:     filepath.Join(t.TempDir(), "e2e.db"),
	}
	comp, err := loader.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer comp.Close()
	engine := comp.Engine()

	items, err := recipes.LoadFromJSONL(filepath.Join(testdata, "recipes.jsonl"))
	if err != nil {
		t.Fatalf("LoadFromJSONL: %v", err)
	}

	want := map[string]string{
		"pound-cake": strings.Join([]string{
			"240 grams flour",
			"200 grams sugar",
			"227 grams butter",
			"Bake at 177 °C. for 60 min in a 9x5 pan(measures might be in inches: 9x5 in. = 22.86x12.7 cm)",
		}, "\n"),
		"cookies": strings.Join([]string{
			"270 grams flour",
			"165 grams brown sugar",
			"170 grams chocolate chips",
			"1 tsp salt",
		}, "\n"),
		"brownies": strings.Join([]string{
			"42 grams cocoa",
			"227 grams butter",
			"Bake in a 9x13 pan at 177 °C. degrees.(measures might be in inches: 9x13 in. = 22.86x33.02 cm)",
		}, "\n"),
	}

	for _, item := range items {
		conv, err := engine.Convert(ctx, arconv.Document{Source: item.ID, Text: item.Text, HTML: item.HTML}, 3)
		if err != nil {
			t.Fatalf("Convert %s: %v", item.ID, err)
		}
		if conv.Output != want[item.ID] {
			t.Errorf("%s:\ngot  %q\nwant %q", item.ID, conv.Output, want[item.ID])
		}

		stored, err := engine.Conversion(ctx, conv.ID)
		if err != nil {
			t.Fatalf("Conversion %s: %v", conv.ID, err)
		}
		if stored.Source != item.ID || stored.Output != conv.Output {
			t.Errorf("stored conversion mismatch: %+v", stored)
		}
	}
}

// TestEndToEndDiagnostics checks that unresolved lines reach the database.
func TestEndToEndDiagnostics(t *testing.T) {
	ctx := context.Background()
	loader := config.Loader{
		CoefficientsPath: filepath.Join("..", "..", "testdata", "coefficients.json"),
		DatabasePath:     filepath.Join(t.TempDir(), "diag.db"),
	}
	comp, err := loader.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer comp.Close()
	engine := comp.Engine()

	engine.ProcessText("2 cups xyzzy\n1 cup quux\n2 cups xyzzy\n1 1/0 cup flour")

	top, err := comp.Store.TopInvalidProducts(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 2 || top[0].Words != "cups xyzzy" || top[0].Count != 2 {
		t.Errorf("unexpected products %+v", top)
	}

	fractions, err := comp.Store.Events(ctx, store.KindFractionParseError, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(fractions) != 1 || fractions[0].Detail != "1/0" {
		t.Errorf("unexpected fraction events %+v", fractions)
	}
}
