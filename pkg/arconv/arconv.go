package arconv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/cognicore/arconv/pkg/arconv/amount"
	"github.com/cognicore/arconv/pkg/arconv/classify"
	"github.com/cognicore/arconv/pkg/arconv/coeff"
	"github.com/cognicore/arconv/pkg/arconv/convert"
	"github.com/cognicore/arconv/pkg/arconv/diag"
	"github.com/cognicore/arconv/pkg/arconv/idgen"
	"github.com/cognicore/arconv/pkg/arconv/ingest"
	"github.com/cognicore/arconv/pkg/arconv/internalerr"
	"github.com/cognicore/arconv/pkg/arconv/numscan"
	"github.com/cognicore/arconv/pkg/arconv/ranges"
	"github.com/cognicore/arconv/pkg/arconv/rewrite"
	"github.com/cognicore/arconv/pkg/arconv/sanitize"
	"github.com/cognicore/arconv/pkg/arconv/store"
	"github.com/cognicore/arconv/pkg/arconv/units"
)

// Engine rewrites imperial recipe lines in metric units. It is immutable
// after New and safe for concurrent use.
type Engine struct {
	scanner *numscan.Scanner
	builder *amount.Builder
	conv    *convert.Converter
	joiners []string
	sink    diag.Sink
	store   store.Store
	ids     *idgen.Generator
}

// Options configures an Engine. Zero fields fall back to built-in defaults.
type Options struct {
	Coefficients *coeff.Table
	Units        *units.Registry
	Scanner      *numscan.Scanner
	Joiners      []string
	Sink         diag.Sink
	Store        store.Store // optional, receives conversion history
}

// New creates an Engine with the given dependencies
func New(opts Options) *Engine {
	reg := opts.Units
	if reg == nil {
		reg = units.Default()
	}
	sc := opts.Scanner
	if sc == nil {
		sc = numscan.NewScanner()
	}
	joiners := opts.Joiners
	if len(joiners) == 0 {
		joiners = ranges.DefaultJoiners
	}
	sink := opts.Sink
	if sink == nil {
		sink = diag.Nop{}
	}

	return &Engine{
		scanner: sc,
		builder: amount.NewBuilder(classify.New(reg, opts.Coefficients)),
		conv:    convert.New(reg, opts.Coefficients),
		joiners: joiners,
		sink:    sink,
		store:   opts.Store,
		ids:     idgen.New(),
	}
}

// Close releases the history store, if any.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Result describes what happened to one line.
type Result struct {
	Text       string
	Link       bool     // passed through untouched
	Changed    bool     // Text differs from the sanitized input
	Rewritten  int      // amounts replaced in the line
	Advisories []string // annotations appended, in order
}

// ProcessLine converts every amount in one line.
func (e *Engine) ProcessLine(line string) string {
	return e.Process(line).Text
}

// Process converts one line and reports what was done.
func (e *Engine) Process(line string) Result {
	res, _ := e.process(line)
	return res
}

func (e *Engine) process(raw string) (Result, *rewrite.Buffer) {
	clean := sanitize.Sanitize(raw)
	if sanitize.IsLink(clean) {
		return Result{Text: clean, Link: true}, nil
	}

	tokens := e.scanner.Scan(clean)
	if len(tokens) == 0 {
		return Result{Text: clean}, nil
	}
	groups := ranges.Detect(clean, tokens, e.joiners)
	set := e.builder.Build(clean, tokens, groups)

	buf := rewrite.NewBuffer(clean, set.Spans)
	var res Result
	reported := false

	for _, rec := range set.Records {
		key := amount.AmountKey(rec.Surface)
		if rec.Err != nil {
			var ferr *numscan.FractionError
			if !errors.As(rec.Err, &ferr) || rec.Value == 0 {
				if ferr != nil {
					e.sink.FractionParseError(ferr.Surface)
				}
				for range rec.Occurrences {
					set.Spans.Pop(key)
				}
				continue
			}
			e.sink.FractionParseError(ferr.Surface)
		}

		for n := range rec.Occurrences {
			v := rec.View(n)
			out, err := e.conv.Convert(v)
			if err != nil {
				set.Spans.Pop(key)
				if errors.Is(err, internalerr.ErrUnresolvedIngredient) && !reported {
					e.sink.InvalidProduct(lineWords(clean))
					reported = true
				}
				continue
			}

			switch out.Action {
			case convert.Rewrite:
				if _, ok := buf.ReplaceNext(key, rec.Surface, out.Amount); !ok {
					continue
				}
				res.Rewritten++
				if out.RewriteUnit {
					buf.ReplaceNext(amount.UnitKey(v.Token), v.Context.UnitWord.Text, out.Unit)
				}
				if out.DropFahrenheit && v.Context.HasFahrenheitWord {
					buf.ReplaceNext(amount.FahrenheitKey(v.Token), v.Context.FahrenheitWord.Text, "")
				}
			case convert.Advise:
				set.Spans.Pop(key)
				res.Advisories = append(res.Advisories, out.Advisory)
			default:
				set.Spans.Pop(key)
			}
		}
	}

	if note := convert.InchAdvisory(inchGroups(set)); note != "" {
		res.Advisories = append(res.Advisories, note)
	}

	res.Text = buf.String() + strings.Join(res.Advisories, "")
	res.Changed = res.Text != clean
	return res, buf
}

// inchGroups returns the values of every dimension group none of whose
// members carries a unit. Groups made only of temperatures are left out.
func inchGroups(set *amount.Set) [][]float64 {
	byToken := make(map[int]amount.View)
	for _, v := range set.Occurrences() {
		byToken[v.Token] = v
	}

	var dims [][]float64
	for _, g := range set.Groups {
		if !g.Dimension {
			continue
		}
		values := make([]float64, 0, len(g.Members))
		unitless, temperature := true, true
		for _, m := range g.Members {
			v := byToken[m]
			if v.Context.HasUnit {
				unitless = false
			}
			if !v.Context.FahrenheitSuspect {
				temperature = false
			}
			values = append(values, v.Value)
		}
		if unitless && !temperature {
			dims = append(dims, values)
		}
	}
	return dims
}

func lineWords(line string) string {
	words := classify.Words(line, 0)
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

// ProcessText converts a multi-line text line by line.
func (e *Engine) ProcessText(text string) string {
	lines := ingest.SplitLines(text)
	for i, l := range lines {
		lines[i] = e.ProcessLine(l)
	}
	return strings.Join(lines, "\n")
}

// ProcessHTML extracts the text of an HTML page and converts it.
func (e *Engine) ProcessHTML(r io.Reader) (string, error) {
	lines, err := ingest.FromHTML(r)
	if err != nil {
		return "", err
	}
	for i, l := range lines {
		lines[i] = e.ProcessLine(l)
	}
	return strings.Join(lines, "\n"), nil
}

// ProcessLines converts lines on up to workers goroutines. Output order
// matches input order. It stops early when ctx is cancelled.
func (e *Engine) ProcessLines(ctx context.Context, lines []string, workers int) ([]Result, error) {
	if workers < 1 {
		workers = 1
	}
	out := make([]Result, len(lines))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i] = e.Process(lines[i])
			}
		}()
	}

	var err error
feed:
	for i := range lines {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case jobs <- i:
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err != nil {
		return nil, err
	}
	return out, nil
}

// Document is a recipe to convert as a whole.
type Document struct {
	Source string // label stored with the history entry
	Text   string
	HTML   bool
}

// Convert converts a whole document and records it in the history store
// when one is configured.
func (e *Engine) Convert(ctx context.Context, doc Document, workers int) (store.Conversion, error) {
	var lines []string
	if doc.HTML {
		var err error
		lines, err = ingest.FromHTML(strings.NewReader(doc.Text))
		if err != nil {
			return store.Conversion{}, err
		}
	} else {
		lines = ingest.SplitLines(doc.Text)
	}

	results, err := e.ProcessLines(ctx, lines, workers)
	if err != nil {
		return store.Conversion{}, err
	}

	conv := store.Conversion{
		ID:        e.ids.NewID(),
		Source:    doc.Source,
		Input:     doc.Text,
		Lines:     len(results),
		CreatedAt: time.Now(),
	}
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
		if r.Changed {
			conv.Converted++
		}
	}
	conv.Output = strings.Join(texts, "\n")

	if e.store != nil {
		if err := e.store.SaveConversion(ctx, conv); err != nil {
			return conv, fmt.Errorf("save conversion: %w", err)
		}
	}
	return conv, nil
}

// Conversion looks up a stored conversion.
func (e *Engine) Conversion(ctx context.Context, id string) (store.Conversion, error) {
	if e.store == nil {
		return store.Conversion{}, fmt.Errorf("conversion %s: %w", id, internalerr.ErrStoreUnavailable)
	}
	c, ok, err := e.store.GetConversion(ctx, id)
	if err != nil {
		return store.Conversion{}, err
	}
	if !ok {
		return store.Conversion{}, fmt.Errorf("conversion %s: %w", id, internalerr.ErrNotFound)
	}
	return c, nil
}
