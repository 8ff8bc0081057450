package sanitize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// glyphs are replaced in this order, each substitution preceded by a space
// so that "1½" becomes "1 1/2" rather than "11/2".
var glyphs = []struct {
	from, to string
}{
	{"⅛", "1/8"},
	{"½", "1/2"},
	{"⅓", "1/3"},
	{"¼", "1/4"},
	{"⅔", "2/3"},
	{"¾", "3/4"},
	{"°", ""},
	{"″", "inch"},
	{"''", "inch"},
	{"×", "x"},
	{"–", "-"},
}

const fractionSlash = "⁄"

var linkPattern = regexp.MustCompile(`http|www|\.com`)

var stripSymbols = runes.Remove(runes.Predicate(isPictograph))

// Sanitize normalizes special glyphs into ASCII equivalents, removes emoji
// and other pictographic symbols, and trims surrounding whitespace.
// Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(raw string) string {
	line, _, err := transform.String(stripSymbols, raw)
	if err != nil {
		line = raw
	}

	for _, g := range glyphs {
		line = strings.ReplaceAll(line, g.from, " "+g.to)
	}
	line = expandFractions(line)

	return strings.TrimSpace(line)
}

// IsLink reports whether the line looks like a URL. Links are never rewritten.
func IsLink(line string) bool {
	return linkPattern.MatchString(line)
}

// expandFractions rewrites vulgar fractions missing from the glyph table
// (⅜, ⅝, ⅕ ...) using their compatibility decomposition.
func expandFractions(line string) string {
	if isASCII(line) {
		return line
	}

	var b strings.Builder
	b.Grow(len(line))
	for _, r := range line {
		if unicode.Is(unicode.No, r) {
			if expanded, ok := vulgarFraction(r); ok {
				b.WriteByte(' ')
				b.WriteString(expanded)
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

func vulgarFraction(r rune) (string, bool) {
	decomposed := norm.NFKC.String(string(r))
	num, den, found := strings.Cut(decomposed, fractionSlash)
	if !found || num == "" || den == "" {
		return "", false
	}
	return num + "/" + den, true
}

func isPictograph(r rune) bool {
	switch {
	case r == '°':
		return false
	case unicode.Is(unicode.So, r):
		return true
	case r == 0x200D, r == 0x20E3, r == 0xFE0E, r == 0xFE0F:
		return true
	case r >= 0x1F3FB && r <= 0x1F3FF:
		return true
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
