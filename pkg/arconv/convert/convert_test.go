package convert

import (
	"errors"
	"testing"

	"github.com/cognicore/arconv/pkg/arconv/amount"
	"github.com/cognicore/arconv/pkg/arconv/classify"
	"github.com/cognicore/arconv/pkg/arconv/coeff"
	"github.com/cognicore/arconv/pkg/arconv/internalerr"
	"github.com/cognicore/arconv/pkg/arconv/numscan"
	"github.com/cognicore/arconv/pkg/arconv/ranges"
	"github.com/cognicore/arconv/pkg/arconv/units"
)

func testTable(t *testing.T) *coeff.Table {
	t.Helper()
	table, err := coeff.NewTable(map[string]coeff.Entry{
		"flour": coeff.Scalar(120),
		"sugar": coeff.Qualified(200, map[string]float64{"brown": 220, "packed": 213}),
		"milk":  coeff.Scalar(245),
	})
	if err != nil {
		t.Fatal(err)
	}
	return table
}

// outcomes converts every amount in line and returns outcomes in line order.
func outcomes(t *testing.T, line string) ([]Outcome, []error) {
	t.Helper()
	reg := units.Default()
	table := testTable(t)
	tokens := numscan.NewScanner().Scan(line)
	groups := ranges.Detect(line, tokens, ranges.DefaultJoiners)
	set := amount.NewBuilder(classify.New(reg, table)).Build(line, tokens, groups)

	c := New(reg, table)
	var outs []Outcome
	var errs []error
	for _, v := range set.Occurrences() {
		out, err := c.Convert(v)
		outs = append(outs, out)
		errs = append(errs, err)
	}
	return outs, errs
}

func single(t *testing.T, line string) (Outcome, error) {
	t.Helper()
	outs, errs := outcomes(t, line)
	if len(outs) != 1 {
		t.Fatalf("%q: expected one amount, got %d", line, len(outs))
	}
	return outs[0], errs[0]
}

func TestConvertRewrites(t *testing.T) {
	tests := []struct {
		line   string
		amount string
		unit   string
	}{
		{"2 cups flour", "240", "grams"},
		{"1/2 cup sugar", "100", "grams"},
		{"1 cup brown sugar", "220", "grams"},
		{"1 cup packed brown sugar", "213", "grams"},
		{"2 tbsp milk", "31", "grams"},
		{"8 oz butter", "227", "grams"},
		{"1 lb potatoes", "454", "grams"},
		{"1 inch cube", "2.54", "cm"},
		{"10 inches long", "25", "cm"},
		{"1/2 tsp salt", "0.5", "tsp"},
		{"200 g butter", "200", "grams"},
	}

	for _, tt := range tests {
		out, err := single(t, tt.line)
		if err != nil {
			t.Errorf("%q: %v", tt.line, err)
			continue
		}
		if out.Action != Rewrite || out.Amount != tt.amount || out.Unit != tt.unit {
			t.Errorf("%q: got %+v, want %s %s", tt.line, out, tt.amount, tt.unit)
		}
		if !out.RewriteUnit {
			t.Errorf("%q: unit word should be rewritten", tt.line)
		}
	}
}

func TestConvertNoUnit(t *testing.T) {
	out, err := single(t, "3 eggs")
	if err != nil || out.Action != NoOp {
		t.Errorf("got %+v, %v; want no-op", out, err)
	}
}

func TestConvertUnknownIngredient(t *testing.T) {
	_, err := single(t, "2 cups xyzzy")
	if !errors.Is(err, internalerr.ErrUnresolvedIngredient) {
		t.Fatalf("expected unresolved ingredient, got %v", err)
	}
	var ie *IngredientError
	if !errors.As(err, &ie) || len(ie.Words) == 0 {
		t.Errorf("expected words in error, got %+v", err)
	}
}

func TestConvertTemperature(t *testing.T) {
	out, err := single(t, "Bake at 350F")
	if err != nil {
		t.Fatal(err)
	}
	if out.Action != Rewrite || out.Amount != "177 °C." || !out.DropFahrenheit {
		t.Errorf("350F: got %+v", out)
	}

	out, _ = single(t, "oven to 400")
	if out.Amount != "204 °C." || out.DropFahrenheit {
		t.Errorf("400: got %+v", out)
	}

	out, _ = single(t, "oven at 350 C")
	want := " (Possible mistake! 350 - too much to be in Celsius. 350F = 177C)"
	if out.Action != Advise || out.Advisory != want {
		t.Errorf("350 C: got %+v", out)
	}

	out, _ = single(t, "heat 350 degrees celsius")
	if out.Action != Advise {
		t.Errorf("350 celsius: got %+v", out)
	}

	out, _ = single(t, "add 300 g sugar")
	if out.Action != NoOp {
		t.Errorf("300 g should be left alone, got %+v", out)
	}
}

func TestConvertRangeInheritsUnit(t *testing.T) {
	outs, errs := outcomes(t, "4 to 5 cups flour")
	if len(outs) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outs))
	}
	for _, err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}
	if outs[0].Amount != "480" || outs[0].RewriteUnit {
		t.Errorf("4: got %+v", outs[0])
	}
	if outs[1].Amount != "600" || !outs[1].RewriteUnit {
		t.Errorf("5: got %+v", outs[1])
	}
}

func TestInchAdvisory(t *testing.T) {
	got := InchAdvisory([][]float64{{9, 13}})
	want := "(measures might be in inches: 9x13 in. = 22.86x33.02 cm)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	got = InchAdvisory([][]float64{{9, 13}, {2, 3, 4}})
	want = "(measures might be in inches: 9x13 in. = 22.86x33.02 cm, 2x3x4 in. = 5.08x7.62x10.16 cm)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if InchAdvisory(nil) != "" {
		t.Error("no groups should give no advisory")
	}
}

func TestRounding(t *testing.T) {
	if got := FahrenheitToCelsius(350); got != 177 {
		t.Errorf("350F = %d", got)
	}
	if got := OuncesToGrams(8); got != 227 {
		t.Errorf("8 oz = %d", got)
	}
	if got := PoundsToGrams(0.5); got != 227 {
		t.Errorf("0.5 lb = %d", got)
	}
	// 0.5 rounds to even.
	if got := roundHalfEven(0.5); got != 0 {
		t.Errorf("roundHalfEven(0.5) = %d", got)
	}
	if got := InchesToCm(2); got != 5 {
		t.Errorf("2 in = %v", got)
	}
	if got := InchesToCm(1.5); got != 3.81 {
		t.Errorf("1.5 in = %v", got)
	}
}
