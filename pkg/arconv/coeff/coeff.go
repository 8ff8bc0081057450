package coeff

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/arconv/pkg/arconv/internalerr"
)

// Entry is the grams-per-cup density of one ingredient. It is either a
// single scalar or a set of qualifier-specific values ("brown", "packed")
// with an optional default.
type Entry struct {
	scalar     float64
	qualifiers map[string]float64
	def        float64
	qualified  bool
}

// Scalar creates an entry with one density.
func Scalar(gramsPerCup float64) Entry {
	return Entry{scalar: gramsPerCup}
}

// Qualified creates an entry whose density depends on a qualifier word.
// def is used when no qualifier matches; zero means no default.
func Qualified(def float64, qualifiers map[string]float64) Entry {
	q := make(map[string]float64, len(qualifiers))
	for k, v := range qualifiers {
		q[strings.ToLower(k)] = v
	}
	return Entry{qualifiers: q, def: def, qualified: true}
}

// IsQualified reports whether the entry depends on qualifier words.
func (e Entry) IsQualified() bool { return e.qualified }

// Density returns grams per cup, picking the first word that is a known
// qualifier and falling back to the default.
func (e Entry) Density(words []string) (float64, bool) {
	if !e.qualified {
		return e.scalar, true
	}
	for _, w := range words {
		if v, ok := e.qualifiers[strings.ToLower(w)]; ok {
			return v, true
		}
	}
	if e.def > 0 {
		return e.def, true
	}
	return 0, false
}

func (e Entry) validate() error {
	if !e.qualified {
		if e.scalar <= 0 {
			return fmt.Errorf("non-positive density %v", e.scalar)
		}
		return nil
	}
	if e.def < 0 {
		return fmt.Errorf("non-positive default density %v", e.def)
	}
	if e.def == 0 && len(e.qualifiers) == 0 {
		return fmt.Errorf("empty qualifier map")
	}
	for q, v := range e.qualifiers {
		if v <= 0 {
			return fmt.Errorf("qualifier %q: non-positive density %v", q, v)
		}
	}
	return nil
}

// UnmarshalYAML decodes either a number or a qualifier mapping whose ""
// key is the default.
func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var v float64
		if err := node.Decode(&v); err != nil {
			return err
		}
		*e = Scalar(v)
		return nil
	case yaml.MappingNode:
		var m map[string]float64
		if err := node.Decode(&m); err != nil {
			return err
		}
		def := m[""]
		delete(m, "")
		*e = Qualified(def, m)
		return nil
	default:
		return fmt.Errorf("line %d: coefficient must be a number or a mapping", node.Line)
	}
}

// MarshalYAML writes the entry back in the same shape it is read.
func (e Entry) MarshalYAML() (interface{}, error) {
	if !e.qualified {
		return e.scalar, nil
	}
	m := make(map[string]float64, len(e.qualifiers)+1)
	for k, v := range e.qualifiers {
		m[k] = v
	}
	if e.def > 0 {
		m[""] = e.def
	}
	return m, nil
}

// Table maps lowercase ingredient names to densities. It is read-only after
// construction and safe for concurrent use.
type Table struct {
	entries map[string]Entry
}

// NewTable validates entries and builds a table.
func NewTable(entries map[string]Entry) (*Table, error) {
	t := &Table{entries: make(map[string]Entry, len(entries))}
	for name, e := range entries {
		if err := e.validate(); err != nil {
			return nil, fmt.Errorf("ingredient %q: %v: %w", name, err, internalerr.ErrInvalidConfig)
		}
		t.entries[strings.ToLower(strings.TrimSpace(name))] = e
	}
	return t, nil
}

// Parse decodes a JSON or YAML document mapping ingredient to density.
func Parse(data []byte) (*Table, error) {
	var raw map[string]Entry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode coefficients: %w", err)
	}
	return NewTable(raw)
}

// Load reads a coefficient table from a JSON or YAML file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Has reports whether name is a known ingredient.
func (t *Table) Has(name string) bool {
	_, ok := t.entries[strings.ToLower(name)]
	return ok
}

// Entry returns the entry for an ingredient.
func (t *Table) Entry(name string) (Entry, bool) {
	e, ok := t.entries[strings.ToLower(name)]
	return e, ok
}

// Grams converts cups of an ingredient to grams, using words to pick a
// qualifier. It reports false when the ingredient is unknown.
func (t *Table) Grams(name string, cups float64, words []string) (float64, bool) {
	e, ok := t.Entry(name)
	if !ok {
		return 0, false
	}
	density, ok := e.Density(words)
	if !ok {
		return 0, false
	}
	return cups * density, true
}

// Len returns the number of ingredients.
func (t *Table) Len() int { return len(t.entries) }

// Names returns ingredient names in sorted order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.entries))
	for n := range t.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
