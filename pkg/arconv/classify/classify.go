package classify

import (
	"regexp"
	"strings"

	"github.com/cognicore/arconv/pkg/arconv/coeff"
	"github.com/cognicore/arconv/pkg/arconv/numscan"
	"github.com/cognicore/arconv/pkg/arconv/rewrite"
	"github.com/cognicore/arconv/pkg/arconv/units"
)

// FahrenheitThreshold is the value above which an amount is suspected to be
// an oven temperature in Fahrenheit even without a unit word.
const FahrenheitThreshold = 270

var wordPattern = regexp.MustCompile(`[A-Za-z]+`)

// Word is a run of ASCII letters and its position in the line.
type Word struct {
	Text string
	Span rewrite.Span
}

// Context is what the words around one numeric token say about it.
type Context struct {
	Unit     units.Unit
	HasUnit  bool
	UnitWord Word // original spelling and position of the unit word

	FahrenheitSuspect bool
	FahrenheitWord    Word
	HasFahrenheitWord bool
	CelsiusNearby     bool

	Ingredient string   // lowercase key into the coefficient table, "" if none
	Words      []string // scanned words, right side first
}

// Classifier assigns units, temperature flags and ingredients to numeric
// tokens by looking at neighbouring words.
type Classifier struct {
	units  *units.Registry
	coeffs *coeff.Table
}

// New creates a classifier. coeffs may be nil, in which case no ingredient
// is ever found.
func New(reg *units.Registry, coeffs *coeff.Table) *Classifier {
	return &Classifier{units: reg, coeffs: coeffs}
}

// Classify returns one Context per token. values holds the parsed value of
// each token. Tokens are processed left to right; a unit word claimed by an
// earlier token is not claimed again.
func (c *Classifier) Classify(line string, tokens []numscan.Token, values []float64) []Context {
	claimed := make(map[rewrite.Span]struct{})
	out := make([]Context, len(tokens))
	for i := range tokens {
		out[i] = c.classifyOne(line, tokens, i, values[i], claimed)
	}
	return out
}

func (c *Classifier) classifyOne(line string, tokens []numscan.Token, i int, value float64, claimed map[rewrite.Span]struct{}) Context {
	tok := tokens[i]
	var ctx Context

	right, hasRight := rightWord(line, tok.Span.End)
	left, hasLeft := leftWord(line, tok.Span.Start)

	adjacent := make([]Word, 0, 2)
	if hasRight {
		adjacent = append(adjacent, right)
	}
	if hasLeft {
		adjacent = append(adjacent, left)
	}

	for _, w := range adjacent {
		if _, taken := claimed[w.Span]; taken {
			continue
		}
		if u, ok := c.units.Lookup(w.Text); ok {
			ctx.Unit = u
			ctx.HasUnit = true
			ctx.UnitWord = w
			claimed[w.Span] = struct{}{}
			break
		}
	}

	for _, w := range adjacent {
		if _, taken := claimed[w.Span]; taken {
			continue
		}
		if c.units.IsFahrenheit(w.Text) {
			ctx.FahrenheitSuspect = true
			ctx.FahrenheitWord = w
			ctx.HasFahrenheitWord = true
			claimed[w.Span] = struct{}{}
			break
		}
	}
	if value > FahrenheitThreshold {
		ctx.FahrenheitSuspect = true
	}

	segStart := 0
	if i > 0 {
		segStart = tokens[i-1].Span.End
	}
	segEnd := len(line)
	if i+1 < len(tokens) {
		segEnd = tokens[i+1].Span.Start
	}
	rightWords := Words(line[tok.Span.End:segEnd], tok.Span.End)
	leftWords := Words(line[segStart:tok.Span.Start], segStart)

	ctx.Words = make([]string, 0, len(rightWords)+len(leftWords))
	for _, w := range rightWords {
		ctx.Words = append(ctx.Words, w.Text)
	}
	for _, w := range leftWords {
		ctx.Words = append(ctx.Words, w.Text)
	}

	if ctx.FahrenheitSuspect && !ctx.HasFahrenheitWord {
		if w, ok := c.findFahrenheit(rightWords, leftWords, claimed); ok {
			ctx.FahrenheitWord = w
			ctx.HasFahrenheitWord = true
			claimed[w.Span] = struct{}{}
		}
	}
	for _, w := range ctx.Words {
		if c.units.IsCelsius(w) {
			ctx.CelsiusNearby = true
			break
		}
	}

	ctx.Ingredient = c.findIngredient(rightWords, leftWords)
	return ctx
}

// findFahrenheit looks for a Fahrenheit name nearest to the amount, right
// side first.
func (c *Classifier) findFahrenheit(right, left []Word, claimed map[rewrite.Span]struct{}) (Word, bool) {
	free := func(w Word) bool {
		_, taken := claimed[w.Span]
		return !taken && c.units.IsFahrenheit(w.Text)
	}
	for _, w := range right {
		if free(w) {
			return w, true
		}
	}
	for j := len(left) - 1; j >= 0; j-- {
		if free(left[j]) {
			return left[j], true
		}
	}
	return Word{}, false
}

// findIngredient returns the first right-side word (or two-word phrase)
// present in the coefficient table, else the nearest left-side one.
func (c *Classifier) findIngredient(right, left []Word) string {
	if c.coeffs == nil {
		return ""
	}
	for j := range right {
		if j+1 < len(right) {
			if name := phrase(right[j], right[j+1]); c.coeffs.Has(name) {
				return name
			}
		}
		if name := strings.ToLower(right[j].Text); c.coeffs.Has(name) {
			return name
		}
	}
	for j := len(left) - 1; j >= 0; j-- {
		if j > 0 {
			if name := phrase(left[j-1], left[j]); c.coeffs.Has(name) {
				return name
			}
		}
		if name := strings.ToLower(left[j].Text); c.coeffs.Has(name) {
			return name
		}
	}
	return ""
}

func phrase(a, b Word) string {
	return strings.ToLower(a.Text + " " + b.Text)
}

// Words returns the letter runs of s; spans are shifted by offset.
func Words(s string, offset int) []Word {
	idx := wordPattern.FindAllStringIndex(s, -1)
	words := make([]Word, len(idx))
	for i, m := range idx {
		words[i] = Word{
			Text: s[m[0]:m[1]],
			Span: rewrite.Span{Start: m[0] + offset, End: m[1] + offset},
		}
	}
	return words
}

// rightWord returns the word directly after pos, allowing spaces and a
// single hyphen in between.
func rightWord(line string, pos int) (Word, bool) {
	j := skipGap(line, pos, 1)
	start := j
	for j < len(line) && isLetter(line[j]) {
		j++
	}
	if j == start {
		return Word{}, false
	}
	return Word{Text: line[start:j], Span: rewrite.Span{Start: start, End: j}}, true
}

// leftWord returns the word directly before pos, allowing spaces and a
// single hyphen in between.
func leftWord(line string, pos int) (Word, bool) {
	j := skipGap(line, pos-1, -1)
	end := j + 1
	for j >= 0 && isLetter(line[j]) {
		j--
	}
	start := j + 1
	if start == end {
		return Word{}, false
	}
	return Word{Text: line[start:end], Span: rewrite.Span{Start: start, End: end}}, true
}

// skipGap walks from pos in direction dir over blanks with at most one
// hyphen and returns the first position that is not part of the gap.
func skipGap(line string, pos, dir int) int {
	hyphen := false
	for pos >= 0 && pos < len(line) {
		switch ch := line[pos]; {
		case ch == ' ' || ch == '\t':
		case ch == '-' && !hyphen:
			hyphen = true
		default:
			return pos
		}
		pos += dir
	}
	return pos
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
