package coeff

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/arconv/pkg/arconv/internalerr"
)

const sampleJSON = `{
  "flour": 120,
  "sugar": {"": 200, "brown": 220, "powdered": 120},
  "butter": 227
}`

func TestParseJSON(t *testing.T) {
	table, err := Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if table.Len() != 3 {
		t.Errorf("expected 3 ingredients, got %d", table.Len())
	}

	g, ok := table.Grams("flour", 2, nil)
	if !ok || g != 240 {
		t.Errorf("2 cups flour = %v, %v; want 240", g, ok)
	}

	e, _ := table.Entry("sugar")
	if !e.IsQualified() {
		t.Error("sugar should be qualified")
	}
}

func TestQualifierSelection(t *testing.T) {
	table, err := Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		words []string
		want  float64
	}{
		{nil, 200},
		{[]string{"cup", "sugar"}, 200},
		{[]string{"cup", "Brown", "sugar"}, 220},
		{[]string{"powdered", "brown"}, 120},
	}
	for _, tt := range tests {
		got, ok := table.Grams("sugar", 1, tt.words)
		if !ok || got != tt.want {
			t.Errorf("Grams(sugar, %v) = %v, %v; want %v", tt.words, got, ok, tt.want)
		}
	}
}

func TestQualifiedWithoutDefault(t *testing.T) {
	table, err := Parse([]byte(`{"cheese": {"grated": 100}}`))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := table.Grams("cheese", 1, []string{"sliced"}); ok {
		t.Error("no default and no qualifier match should not resolve")
	}
	if g, ok := table.Grams("cheese", 1, []string{"grated"}); !ok || g != 100 {
		t.Errorf("grated cheese = %v, %v", g, ok)
	}
}

func TestUnknownIngredient(t *testing.T) {
	table, _ := Parse([]byte(sampleJSON))
	if table.Has("xyzzy") {
		t.Error("xyzzy should be unknown")
	}
	if _, ok := table.Grams("xyzzy", 1, nil); ok {
		t.Error("unknown ingredient should not convert")
	}
}

func TestCaseInsensitiveNames(t *testing.T) {
	table, _ := Parse([]byte(`{"Flour": 120}`))
	if !table.Has("flour") || !table.Has("FLOUR") {
		t.Error("lookups should be case-insensitive")
	}
}

func TestRejectNonPositive(t *testing.T) {
	docs := []string{
		`{"flour": 0}`,
		`{"flour": -3}`,
		`{"sugar": {"": 200, "brown": 0}}`,
		`{"sugar": {}}`,
	}
	for _, doc := range docs {
		_, err := Parse([]byte(doc))
		if !errors.Is(err, internalerr.ErrInvalidConfig) {
			t.Errorf("Parse(%s) error = %v, want ErrInvalidConfig", doc, err)
		}
	}
}

func TestRejectWrongShape(t *testing.T) {
	if _, err := Parse([]byte(`{"flour": [1, 2]}`)); err == nil {
		t.Error("a list is not a valid coefficient")
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coefficients.yaml")
	content := `
flour: 120
sugar:
  "": 200
  brown: 220
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	names := table.Names()
	if len(names) != 2 || names[0] != "flour" || names[1] != "sugar" {
		t.Errorf("Names = %v", names)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/coefficients.json"); err == nil {
		t.Error("expected error for missing file")
	}
}
