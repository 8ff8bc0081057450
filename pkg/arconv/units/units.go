package units

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/arconv/pkg/arconv/internalerr"
)

// Canonical unit tags
const (
	Cup    = "cup"
	Ounce  = "oz"
	Pound  = "lb"
	Gram   = "gram"
	Tsp    = "tsp"
	Tbsp   = "tbsp"
	Gallon = "gallon"
	Pint   = "pint"
	Quart  = "quart"
	Stick  = "stick"
	Ml     = "ml"
	FlOz   = "floz"
	Inch   = "inch"
	Cm     = "cm"
)

// Unit describes a canonical unit and how it is spelled.
type Unit struct {
	Tag     string   `yaml:"tag"`
	Display string   `yaml:"display,omitempty"` // surface written back; defaults to Tag
	Aliases []string `yaml:"aliases"`
	Ml      float64  `yaml:"ml,omitempty"` // milliliters per unit, 0 for non-volume units
}

// Registry resolves surface unit words to canonical units and carries the
// volume table and temperature vocabulary. Immutable once built.
type Registry struct {
	units      map[string]Unit
	aliases    map[string]string // lowercase alias -> tag
	fahrenheit map[string]struct{}
	celsius    map[string]struct{}
}

// Spec is the serialized form of a registry.
type Spec struct {
	Units      []Unit   `yaml:"units"`
	Fahrenheit []string `yaml:"fahrenheit"`
	Celsius    []string `yaml:"celsius"`
}

// DefaultSpec returns the built-in unit vocabulary.
func DefaultSpec() Spec {
	return Spec{
		Units: []Unit{
			{Tag: Cup, Aliases: []string{"cup", "cups", "c"}, Ml: 240},
			{Tag: Ounce, Aliases: []string{"oz", "ounce", "ounces"}},
			{Tag: Pound, Aliases: []string{"lb", "lbs", "pound", "pounds"}},
			{Tag: Gram, Display: "grams", Aliases: []string{"grams", "gr", "gram", "g"}},
			{Tag: Tsp, Aliases: []string{"tsp", "teaspoon", "teaspoons", "ts"}},
			{Tag: Tbsp, Aliases: []string{"tbsp", "tablespoon", "tablespoons", "tbs"}, Ml: 15},
			{Tag: Gallon, Aliases: []string{"gallon", "gallons"}, Ml: 3875.4},
			{Tag: Pint, Aliases: []string{"pint", "pints"}, Ml: 473},
			{Tag: Quart, Aliases: []string{"quart", "quarts"}, Ml: 946.4},
			{Tag: Stick, Aliases: []string{"stick", "sticks"}, Ml: 120},
			{Tag: Ml, Aliases: []string{"ml", "milliliters", "milliliter"}, Ml: 1},
			{Tag: FlOz, Aliases: []string{"floz"}, Ml: 29.5},
			{Tag: Inch, Aliases: []string{"inch", "inches", "in"}},
			{Tag: Cm, Aliases: []string{"cm", "cantimeters", "centimeters"}},
		},
		Fahrenheit: []string{"f", "fahrenheit", "fahrenheits"},
		Celsius:    []string{"c", "celsius"},
	}
}

// Default builds the registry from DefaultSpec.
func Default() *Registry {
	r, err := New(DefaultSpec())
	if err != nil {
		panic(err)
	}
	return r
}

// New validates spec and builds a registry. Alias sets must be disjoint and
// a cup unit with a positive volume must be present.
func New(spec Spec) (*Registry, error) {
	r := &Registry{
		units:      make(map[string]Unit, len(spec.Units)),
		aliases:    make(map[string]string),
		fahrenheit: toSet(spec.Fahrenheit),
		celsius:    toSet(spec.Celsius),
	}

	for _, u := range spec.Units {
		u.Tag = strings.ToLower(strings.TrimSpace(u.Tag))
		if u.Tag == "" {
			return nil, fmt.Errorf("unit without tag: %w", internalerr.ErrInvalidConfig)
		}
		if u.Ml < 0 {
			return nil, fmt.Errorf("unit %s: negative volume: %w", u.Tag, internalerr.ErrInvalidConfig)
		}
		if _, dup := r.units[u.Tag]; dup {
			return nil, fmt.Errorf("unit %s defined twice: %w", u.Tag, internalerr.ErrInvalidConfig)
		}
		if u.Display == "" {
			u.Display = u.Tag
		}
		for _, a := range u.Aliases {
			a = strings.ToLower(a)
			if owner, taken := r.aliases[a]; taken && owner != u.Tag {
				return nil, fmt.Errorf("alias %q shared by %s and %s: %w", a, owner, u.Tag, internalerr.ErrInvalidConfig)
			}
			r.aliases[a] = u.Tag
		}
		r.units[u.Tag] = u
	}

	if cup, ok := r.units[Cup]; !ok || cup.Ml <= 0 {
		return nil, fmt.Errorf("cup volume missing: %w", internalerr.ErrInvalidConfig)
	}

	return r, nil
}

// LoadFromYAML loads a registry from a YAML file.
//
// Expected format:
//
//	units:
//	  - tag: cup
//	    aliases: [cup, cups, c]
//	    ml: 240
//	  - tag: gram
//	    display: grams
//	    aliases: [grams, g]
//	fahrenheit: [f, fahrenheit]
//	celsius: [c, celsius]
//
// Sections left out of the file keep their built-in defaults.
func LoadFromYAML(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	def := DefaultSpec()
	if len(spec.Units) == 0 {
		spec.Units = def.Units
	}
	if len(spec.Fahrenheit) == 0 {
		spec.Fahrenheit = def.Fahrenheit
	}
	if len(spec.Celsius) == 0 {
		spec.Celsius = def.Celsius
	}

	return New(spec)
}

// Lookup resolves a surface word to its unit, case-insensitively.
func (r *Registry) Lookup(word string) (Unit, bool) {
	tag, ok := r.aliases[strings.ToLower(word)]
	if !ok {
		return Unit{}, false
	}
	return r.units[tag], true
}

// Unit returns the unit for a canonical tag.
func (r *Registry) Unit(tag string) (Unit, bool) {
	u, ok := r.units[tag]
	return u, ok
}

// CupRatio returns how many cups one unit of tag holds, false for
// non-volume units.
func (r *Registry) CupRatio(tag string) (float64, bool) {
	u, ok := r.units[tag]
	if !ok || u.Ml == 0 {
		return 0, false
	}
	return u.Ml / r.units[Cup].Ml, true
}

// IsFahrenheit reports whether word names Fahrenheit degrees.
func (r *Registry) IsFahrenheit(word string) bool {
	_, ok := r.fahrenheit[strings.ToLower(word)]
	return ok
}

// IsCelsius reports whether word names Celsius degrees.
func (r *Registry) IsCelsius(word string) bool {
	_, ok := r.celsius[strings.ToLower(word)]
	return ok
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}
