package rewrite

import (
	"errors"
	"testing"

	"github.com/cognicore/arconv/pkg/arconv/internalerr"
)

func TestReplaceSpanShiftsFollowingSpans(t *testing.T) {
	table := NewTable()
	table.Track("amount", Span{0, 1})
	table.Track("unit", Span{2, 6})
	table.Track("ingredient", Span{7, 12})

	buf := NewBuffer("2 cups flour", table)

	sp, _ := table.Pop("amount")
	delta, err := buf.ReplaceSpan(sp, "240")
	if err != nil {
		t.Fatalf("ReplaceSpan: %v", err)
	}
	if delta != 2 {
		t.Errorf("delta = %d, want 2", delta)
	}

	unit, _ := table.First("unit")
	if unit != (Span{4, 8}) {
		t.Errorf("unit span = %v, want {4 8}", unit)
	}

	if _, ok := buf.ReplaceNext("unit", "cups", "grams"); !ok {
		t.Fatal("ReplaceNext should replace unit")
	}
	if got := buf.String(); got != "240 grams flour" {
		t.Errorf("buffer = %q", got)
	}

	ing, _ := table.First("ingredient")
	if word, _ := buf.Slice(ing); word != "flour" {
		t.Errorf("ingredient span now covers %q, want flour", word)
	}
	if err := table.Validate(buf.Len()); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestSpansLeftOfEditUntouched(t *testing.T) {
	table := NewTable()
	table.Track("left", Span{0, 3})
	buf := NewBuffer("abc def", table)

	if _, err := buf.ReplaceSpan(Span{4, 7}, "x"); err != nil {
		t.Fatal(err)
	}
	left, _ := table.First("left")
	if left != (Span{0, 3}) {
		t.Errorf("left span moved to %v", left)
	}
}

func TestReplaceNextConsumesInOrder(t *testing.T) {
	table := NewTable()
	table.Track("1", Span{0, 1}, Span{16, 17})
	buf := NewBuffer("1 cup sugar and 1 cup flour", table)

	buf.ReplaceNext("1", "1", "200")
	buf.ReplaceNext("1", "1", "120")

	if got := buf.String(); got != "200 cup sugar and 120 cup flour" {
		t.Errorf("buffer = %q", got)
	}
	if table.Len() != 0 {
		t.Errorf("all spans should be consumed, %d left", table.Len())
	}
}

func TestReplaceNextFallsBackToTextMatch(t *testing.T) {
	buf := NewBuffer("Bake at 177 °C.F for 20 min", nil)

	if _, ok := buf.ReplaceNext("missing", "F", ""); !ok {
		t.Fatal("expected fallback replacement")
	}
	if got := buf.String(); got != "Bake at 177 °C. for 20 min" {
		t.Errorf("buffer = %q", got)
	}

	if _, ok := buf.ReplaceNext("missing", "zzz", "y"); ok {
		t.Error("replacement of absent text should report false")
	}
}

func TestReplaceNextStaleSpanFallsBack(t *testing.T) {
	table := NewTable()
	table.Track("w", Span{0, 3})
	buf := NewBuffer("abc cups", table)

	if _, ok := buf.ReplaceNext("w", "cups", "grams"); !ok {
		t.Fatal("expected fallback replacement")
	}
	if got := buf.String(); got != "abc grams" {
		t.Errorf("buffer = %q", got)
	}
}

func TestReplaceSpanOutOfRange(t *testing.T) {
	buf := NewBuffer("abc", nil)
	_, err := buf.ReplaceSpan(Span{2, 9}, "x")
	if !errors.Is(err, internalerr.ErrSpanOutOfRange) {
		t.Errorf("expected ErrSpanOutOfRange, got %v", err)
	}
}

func TestValidateDetectsOverlap(t *testing.T) {
	table := NewTable()
	table.Track("a", Span{0, 4})
	table.Track("b", Span{2, 6})
	if err := table.Validate(10); err == nil {
		t.Error("overlapping spans should fail validation")
	}

	table = NewTable()
	table.Track("a", Span{0, 11})
	if err := table.Validate(10); err == nil {
		t.Error("span past buffer end should fail validation")
	}
}

func TestManyEditsKeepSpansValid(t *testing.T) {
	line := "1 a 22 bb 333 ccc 4444 dddd"
	table := NewTable()
	keys := []string{"n1", "w1", "n2", "w2", "n3", "w3", "n4", "w4"}
	spans := []Span{{0, 1}, {2, 3}, {4, 6}, {7, 9}, {10, 13}, {14, 17}, {18, 22}, {23, 27}}
	for i, k := range keys {
		table.Track(k, spans[i])
	}
	buf := NewBuffer(line, table)

	replacements := []string{"one hundred", "", "2", "b", "", "cccccc", "4", "D"}
	for i, k := range keys {
		sp, ok := table.Pop(k)
		if !ok {
			t.Fatalf("missing span for %s", k)
		}
		if _, err := buf.ReplaceSpan(sp, replacements[i]); err != nil {
			t.Fatalf("edit %s: %v", k, err)
		}
		if err := table.Validate(buf.Len()); err != nil {
			t.Fatalf("after edit %s: %v", k, err)
		}
	}

	if got := buf.String(); got != "one hundred  2 b  cccccc 4 D" {
		t.Errorf("buffer = %q", got)
	}
}
