package numscan

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/cognicore/arconv/pkg/arconv/internalerr"
	"github.com/cognicore/arconv/pkg/arconv/rewrite"
)

// DefaultPattern matches decimals ("1.5", "1,5"), optionally mixed fractions
// ("1 3/4", "3/4") and plain integers, tried in that order at each position.
const DefaultPattern = `\d+[.,]\d+|\d*[ ]*\d+/\d+|\d+`

// Token is one numeric surface token and where it sits in the line.
type Token struct {
	Text string
	Span rewrite.Span
}

// Scanner finds numeric tokens. Patterns are tried in priority order and
// the first one producing any match is used for the whole line.
type Scanner struct {
	patterns []*regexp.Regexp
}

// NewScanner creates a scanner with the default pattern.
func NewScanner() *Scanner {
	return &Scanner{patterns: []*regexp.Regexp{regexp.MustCompile(DefaultPattern)}}
}

// NewScannerWithPatterns creates a scanner from custom pattern classes.
func NewScannerWithPatterns(patterns []string) (*Scanner, error) {
	s := &Scanner{}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", p, err)
		}
		s.patterns = append(s.patterns, re)
	}
	if len(s.patterns) == 0 {
		return nil, fmt.Errorf("no scanner patterns: %w", internalerr.ErrInvalidConfig)
	}
	return s, nil
}

// Scan returns numeric tokens in left-to-right order. Leading and trailing
// spaces captured by the mixed-fraction alternative are trimmed from both
// the text and the span.
func (s *Scanner) Scan(line string) []Token {
	for _, re := range s.patterns {
		matches := re.FindAllStringIndex(line, -1)
		if len(matches) == 0 {
			continue
		}

		tokens := make([]Token, 0, len(matches))
		for _, m := range matches {
			start, end := m[0], m[1]
			for start < end && line[start] == ' ' {
				start++
			}
			for end > start && line[end-1] == ' ' {
				end--
			}
			if start == end {
				continue
			}
			tokens = append(tokens, Token{
				Text: line[start:end],
				Span: rewrite.Span{Start: start, End: end},
			})
		}
		return tokens
	}
	return nil
}

// FractionError reports a fraction that could not be parsed.
type FractionError struct {
	Surface string
	Err     error
}

func (e *FractionError) Error() string {
	return fmt.Sprintf("fraction %q: %v", e.Surface, e.Err)
}

func (e *FractionError) Unwrap() error { return internalerr.ErrMalformedFraction }

// ParseValue converts a numeric surface token to its value.
//
//   - "1 3/4" -> 1.75 (fractions are rounded to two decimals)
//   - "1,5"   -> 1.5
//   - "1 16"  -> 16 (a later integer replaces the earlier one)
//
// A malformed fraction is skipped and contributes zero; the partial value is
// returned together with a *FractionError.
func ParseValue(surface string) (float64, error) {
	parts := strings.Fields(surface)
	var result float64
	var ferr error

	for i, part := range parts {
		switch {
		case strings.Contains(part, "/"):
			v, err := parseFraction(part)
			if err != nil {
				ferr = &FractionError{Surface: part, Err: err}
				continue
			}
			return result + v, nil
		case i > 0:
			n, err := strconv.Atoi(part)
			if err != nil {
				return result, fmt.Errorf("parse %q: %w", part, internalerr.ErrInvalidInput)
			}
			result = float64(n)
		case strings.ContainsAny(part, ".,"):
			f, err := strconv.ParseFloat(strings.Replace(part, ",", ".", 1), 64)
			if err != nil {
				return result, fmt.Errorf("parse %q: %w", part, internalerr.ErrInvalidInput)
			}
			result += f
		default:
			n, err := strconv.Atoi(part)
			if err != nil {
				return result, fmt.Errorf("parse %q: %w", part, internalerr.ErrInvalidInput)
			}
			result += float64(n)
		}
	}

	return result, ferr
}

func parseFraction(part string) (float64, error) {
	num, den, _ := strings.Cut(part, "/")
	n, err := strconv.Atoi(num)
	if err != nil {
		return 0, err
	}
	d, err := strconv.Atoi(den)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return 0, fmt.Errorf("zero denominator")
	}
	return math.Round(float64(n)/float64(d)*100) / 100, nil
}

// FormatValue renders a value the shortest way that round-trips: 2, 0.5, 1.75.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
