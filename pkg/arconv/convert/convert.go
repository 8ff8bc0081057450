package convert

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cognicore/arconv/pkg/arconv/amount"
	"github.com/cognicore/arconv/pkg/arconv/coeff"
	"github.com/cognicore/arconv/pkg/arconv/internalerr"
	"github.com/cognicore/arconv/pkg/arconv/numscan"
	"github.com/cognicore/arconv/pkg/arconv/units"
)

// Conversion factors
const (
	GramsPerOunce = 28.35
	GramsPerPound = 453.6
	CmPerInch     = 2.54
)

// Action says what the orchestrator should do with an outcome.
type Action int

const (
	// NoOp leaves the amount as written.
	NoOp Action = iota
	// Rewrite replaces the amount (and possibly its unit word) in the line.
	Rewrite
	// Advise leaves the line alone and appends Advisory to it.
	Advise
)

// Outcome is the result of converting one amount occurrence.
type Outcome struct {
	Action         Action
	Amount         string // replacement for the amount text
	Unit           string // replacement for the unit word
	RewriteUnit    bool   // the occurrence owns a unit word that should become Unit
	DropFahrenheit bool   // delete the Fahrenheit word next to the amount
	Advisory       string
}

// IngredientError is returned when a volume amount has no usable density.
type IngredientError struct {
	Ingredient string
	Words      []string
}

func (e *IngredientError) Error() string {
	if e.Ingredient == "" {
		return fmt.Sprintf("no ingredient in %q", strings.Join(e.Words, " "))
	}
	return fmt.Sprintf("no density for %q", e.Ingredient)
}

func (e *IngredientError) Unwrap() error { return internalerr.ErrUnresolvedIngredient }

// Converter turns classified amounts into metric replacement text.
type Converter struct {
	units  *units.Registry
	coeffs *coeff.Table
	grams  string
	cm     string
}

// New creates a converter. coeffs may be nil; cup amounts then never resolve.
func New(reg *units.Registry, coeffs *coeff.Table) *Converter {
	c := &Converter{units: reg, coeffs: coeffs, grams: units.Gram, cm: units.Cm}
	if u, ok := reg.Unit(units.Gram); ok {
		c.grams = u.Display
	}
	if u, ok := reg.Unit(units.Cm); ok {
		c.cm = u.Display
	}
	return c
}

// Convert dispatches on the occurrence's unit. Amounts without a unit and
// temperatures that should not be touched yield NoOp.
func (c *Converter) Convert(v amount.View) (Outcome, error) {
	ctx := v.Context
	if ctx.FahrenheitSuspect {
		return c.temperature(v), nil
	}
	if !ctx.HasUnit {
		return Outcome{}, nil
	}

	switch tag := ctx.Unit.Tag; tag {
	case units.Ounce:
		return c.weight(v, OuncesToGrams(v.Value)), nil
	case units.Pound:
		return c.weight(v, PoundsToGrams(v.Value)), nil
	case units.Inch:
		return Outcome{
			Action:      Rewrite,
			Amount:      numscan.FormatValue(InchesToCm(v.Value)),
			Unit:        c.cm,
			RewriteUnit: v.OwnsUnit,
		}, nil
	default:
		if ratio, ok := c.units.CupRatio(tag); ok {
			return c.cups(v, v.Value*ratio)
		}
		return Outcome{
			Action:      Rewrite,
			Amount:      numscan.FormatValue(v.Value),
			Unit:        ctx.Unit.Display,
			RewriteUnit: v.OwnsUnit,
		}, nil
	}
}

func (c *Converter) weight(v amount.View, grams int) Outcome {
	return Outcome{
		Action:      Rewrite,
		Amount:      strconv.Itoa(grams),
		Unit:        c.grams,
		RewriteUnit: v.OwnsUnit,
	}
}

func (c *Converter) cups(v amount.View, cups float64) (Outcome, error) {
	ctx := v.Context
	if c.coeffs == nil || ctx.Ingredient == "" {
		return Outcome{}, &IngredientError{Ingredient: ctx.Ingredient, Words: ctx.Words}
	}
	grams, ok := c.coeffs.Grams(ctx.Ingredient, cups, ctx.Words)
	if !ok {
		return Outcome{}, &IngredientError{Ingredient: ctx.Ingredient, Words: ctx.Words}
	}
	return Outcome{
		Action:      Rewrite,
		Amount:      strconv.Itoa(roundHalfEven(grams)),
		Unit:        c.grams,
		RewriteUnit: v.OwnsUnit,
	}, nil
}

// temperature handles amounts suspected to be Fahrenheit degrees.
func (c *Converter) temperature(v amount.View) Outcome {
	ctx := v.Context
	celsius := FahrenheitToCelsius(v.Value)

	if ctx.HasUnit {
		if c.units.IsCelsius(ctx.UnitWord.Text) {
			return Outcome{Action: Advise, Advisory: celsiusMistake(v.Value, celsius)}
		}
		return Outcome{}
	}

	replacement := strconv.Itoa(celsius) + " °C."
	if ctx.HasFahrenheitWord {
		return Outcome{Action: Rewrite, Amount: replacement, DropFahrenheit: true}
	}
	if ctx.CelsiusNearby {
		return Outcome{Action: Advise, Advisory: celsiusMistake(v.Value, celsius)}
	}
	return Outcome{Action: Rewrite, Amount: replacement}
}

func celsiusMistake(value float64, celsius int) string {
	f := numscan.FormatValue(value)
	return fmt.Sprintf(" (Possible mistake! %s - too much to be in Celsius. %sF = %dC)", f, f, celsius)
}

// InchAdvisory renders the warning for dimension groups without a unit,
// e.g. "(measures might be in inches: 9x13 in. = 22.86x33.02 cm)".
func InchAdvisory(dims [][]float64) string {
	if len(dims) == 0 {
		return ""
	}
	parts := make([]string, len(dims))
	for i, d := range dims {
		in := make([]string, len(d))
		cm := make([]string, len(d))
		for j, v := range d {
			in[j] = numscan.FormatValue(v)
			cm[j] = numscan.FormatValue(round2(v * CmPerInch))
		}
		parts[i] = strings.Join(in, "x") + " in. = " + strings.Join(cm, "x") + " cm"
	}
	return "(measures might be in inches: " + strings.Join(parts, ", ") + ")"
}

// FahrenheitToCelsius converts and rounds to whole degrees.
func FahrenheitToCelsius(f float64) int {
	return roundHalfEven((f - 32) * 5 / 9)
}

// OuncesToGrams converts and rounds to whole grams.
func OuncesToGrams(oz float64) int {
	return roundHalfEven(oz * GramsPerOunce)
}

// PoundsToGrams converts and rounds to whole grams.
func PoundsToGrams(lb float64) int {
	return roundHalfEven(lb * GramsPerPound)
}

// InchesToCm keeps two decimals for small lengths and whole centimeters
// above 5 cm.
func InchesToCm(in float64) float64 {
	cm := in * CmPerInch
	if cm <= 5 {
		return round2(cm)
	}
	return float64(roundHalfEven(cm))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func roundHalfEven(v float64) int {
	return int(math.RoundToEven(v))
}
