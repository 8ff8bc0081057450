package amount

import (
	"fmt"
	"sort"

	"github.com/cognicore/arconv/pkg/arconv/classify"
	"github.com/cognicore/arconv/pkg/arconv/numscan"
	"github.com/cognicore/arconv/pkg/arconv/ranges"
	"github.com/cognicore/arconv/pkg/arconv/rewrite"
)

// NoGroup marks an occurrence outside any range group.
const NoGroup = -1

// Occurrence is one appearance of an amount in the line.
type Occurrence struct {
	Token    int // index into the scanned tokens
	Span     rewrite.Span
	Group    int // index into Set.Groups or NoGroup
	Context  classify.Context
	OwnsUnit bool // the unit word sits next to this occurrence (not inherited)
}

// Record gathers every occurrence of one distinct numeric surface text.
type Record struct {
	Surface     string
	Value       float64
	Err         error // parse failure, the value is partial
	Occurrences []Occurrence
}

// View is the sub-record for the n-th occurrence of an amount.
type View struct {
	Surface string
	Value   float64
	N       int
	Occurrence
}

// View returns the n-th occurrence's view of the record.
func (r *Record) View(n int) View {
	return View{
		Surface:    r.Surface,
		Value:      r.Value,
		N:          n,
		Occurrence: r.Occurrences[n],
	}
}

// Set is everything known about the amounts in one line.
type Set struct {
	Records []*Record // first-appearance order
	Groups  []ranges.Group
	Spans   *rewrite.Table
}

// AmountKey is the span table key for all occurrences of surface.
func AmountKey(surface string) string { return "amount:" + surface }

// UnitKey is the span table key for the unit word of token i.
func UnitKey(token int) string { return fmt.Sprintf("unit#%d", token) }

// FahrenheitKey is the span table key for the Fahrenheit word of token i.
func FahrenheitKey(token int) string { return fmt.Sprintf("fahrenheit#%d", token) }

// Builder assembles records from scanner, classifier and range output.
type Builder struct {
	classifier *classify.Classifier
}

// NewBuilder creates a builder around a classifier.
func NewBuilder(c *classify.Classifier) *Builder {
	return &Builder{classifier: c}
}

// Build creates one record per distinct surface text, propagates unit and
// ingredient data inside range groups and registers every span the
// rewriter will need.
func (b *Builder) Build(line string, tokens []numscan.Token, groups []ranges.Group) *Set {
	values := make([]float64, len(tokens))
	errs := make([]error, len(tokens))
	for i, tok := range tokens {
		values[i], errs[i] = numscan.ParseValue(tok.Text)
	}

	contexts := b.classifier.Classify(line, tokens, values)

	groupOf := make([]int, len(tokens))
	for i := range groupOf {
		groupOf[i] = NoGroup
	}
	for gi, g := range groups {
		for _, m := range g.Members {
			groupOf[m] = gi
		}
	}

	owns := make([]bool, len(tokens))
	for i := range contexts {
		owns[i] = contexts[i].HasUnit
	}
	for _, g := range groups {
		propagate(contexts, g)
	}

	set := &Set{Groups: groups, Spans: rewrite.NewTable()}
	bySurface := make(map[string]*Record)
	for i, tok := range tokens {
		rec, ok := bySurface[tok.Text]
		if !ok {
			rec = &Record{Surface: tok.Text, Value: values[i], Err: errs[i]}
			bySurface[tok.Text] = rec
			set.Records = append(set.Records, rec)
		}
		rec.Occurrences = append(rec.Occurrences, Occurrence{
			Token:    i,
			Span:     tok.Span,
			Group:    groupOf[i],
			Context:  contexts[i],
			OwnsUnit: owns[i],
		})

		set.Spans.Track(AmountKey(tok.Text), tok.Span)
		if owns[i] {
			set.Spans.Track(UnitKey(i), contexts[i].UnitWord.Span)
		}
		if contexts[i].HasFahrenheitWord {
			set.Spans.Track(FahrenheitKey(i), contexts[i].FahrenheitWord.Span)
		}
	}

	return set
}

// propagate copies unit and ingredient data from the first classified
// member of a group to members lacking their own.
func propagate(contexts []classify.Context, g ranges.Group) {
	donor := -1
	for _, m := range g.Members {
		if contexts[m].HasUnit {
			donor = m
			break
		}
	}
	if donor < 0 {
		return
	}

	src := contexts[donor]
	for _, m := range g.Members {
		dst := &contexts[m]
		if !dst.HasUnit {
			dst.Unit = src.Unit
			dst.HasUnit = true
			dst.UnitWord = classify.Word{Text: src.UnitWord.Text}
		}
		if dst.Ingredient == "" && src.Ingredient != "" {
			dst.Ingredient = src.Ingredient
			dst.Words = append(append([]string(nil), src.Words...), dst.Words...)
		}
	}
}

// Occurrences returns every occurrence across records in line order.
func (s *Set) Occurrences() []View {
	var views []View
	for _, r := range s.Records {
		for n := range r.Occurrences {
			views = append(views, r.View(n))
		}
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Token < views[j].Token })
	return views
}
