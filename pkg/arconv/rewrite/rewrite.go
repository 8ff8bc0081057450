package rewrite

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cognicore/arconv/pkg/arconv/internalerr"
)

// Span is a half-open byte range [Start, End) into the current line.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Overlaps reports whether two non-empty spans share at least one byte.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Table tracks live spans by key. Spans under one key are kept in the
// order they were tracked, which is the order they are consumed in.
type Table struct {
	spans map[string][]Span
	keys  []string // insertion order, for deterministic iteration
}

// NewTable creates an empty span table.
func NewTable() *Table {
	return &Table{spans: make(map[string][]Span)}
}

// Track appends spans under key.
func (t *Table) Track(key string, spans ...Span) {
	if _, ok := t.spans[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.spans[key] = append(t.spans[key], spans...)
}

// Spans returns a copy of the spans tracked under key.
func (t *Table) Spans(key string) []Span {
	out := make([]Span, len(t.spans[key]))
	copy(out, t.spans[key])
	return out
}

// First returns the first span tracked under key without consuming it.
func (t *Table) First(key string) (Span, bool) {
	list := t.spans[key]
	if len(list) == 0 {
		return Span{}, false
	}
	return list[0], true
}

// Pop removes and returns the first span tracked under key.
func (t *Table) Pop(key string) (Span, bool) {
	list := t.spans[key]
	if len(list) == 0 {
		return Span{}, false
	}
	t.spans[key] = list[1:]
	return list[0], true
}

// Len returns the number of spans still tracked across all keys.
func (t *Table) Len() int {
	n := 0
	for _, list := range t.spans {
		n += len(list)
	}
	return n
}

// shift moves every span that starts at or after the edit and ends past it.
// Spans fully to the left of the edit are untouched.
func (t *Table) shift(edit Span, delta int) {
	if delta == 0 {
		return
	}
	for _, key := range t.keys {
		list := t.spans[key]
		for i, sp := range list {
			if sp.Start >= edit.Start && sp.End > edit.End {
				list[i] = Span{Start: sp.Start + delta, End: sp.End + delta}
			}
		}
	}
}

// Validate checks that every tracked span lies inside a buffer of length n
// and that no two spans overlap.
func (t *Table) Validate(n int) error {
	type keyed struct {
		key string
		sp  Span
	}
	var all []keyed
	for _, key := range t.keys {
		for _, sp := range t.spans[key] {
			if sp.Start < 0 || sp.Start > sp.End || sp.End > n {
				return fmt.Errorf("%s %v (len %d): %w", key, sp, n, internalerr.ErrSpanOutOfRange)
			}
			all = append(all, keyed{key, sp})
		}
	}

	sort.Slice(all, func(i, j int) bool { return all[i].sp.Start < all[j].sp.Start })
	for i := 1; i < len(all); i++ {
		if all[i-1].sp.Overlaps(all[i].sp) {
			return fmt.Errorf("%s %v overlaps %s %v: %w",
				all[i-1].key, all[i-1].sp, all[i].key, all[i].sp, internalerr.ErrSpanOutOfRange)
		}
	}
	return nil
}

// Buffer is a mutable line whose edits keep a span table consistent.
type Buffer struct {
	text  string
	table *Table
}

// NewBuffer wraps text and the table of spans pointing into it.
func NewBuffer(text string, table *Table) *Buffer {
	if table == nil {
		table = NewTable()
	}
	return &Buffer{text: text, table: table}
}

// String returns the current text.
func (b *Buffer) String() string { return b.text }

// Len returns the current length in bytes.
func (b *Buffer) Len() int { return len(b.text) }

// Table returns the span table owned by the buffer.
func (b *Buffer) Table() *Table { return b.table }

// Slice returns the text currently covered by sp.
func (b *Buffer) Slice(sp Span) (string, error) {
	if sp.Start < 0 || sp.Start > sp.End || sp.End > len(b.text) {
		return "", fmt.Errorf("slice %v (len %d): %w", sp, len(b.text), internalerr.ErrSpanOutOfRange)
	}
	return b.text[sp.Start:sp.End], nil
}

// ReplaceSpan replaces exactly the bytes in sp with repl and returns the
// length delta.
func (b *Buffer) ReplaceSpan(sp Span, repl string) (int, error) {
	if _, err := b.Slice(sp); err != nil {
		return 0, err
	}
	b.text = b.text[:sp.Start] + repl + b.text[sp.End:]
	delta := len(repl) - sp.Len()
	b.table.shift(sp, delta)
	return delta, nil
}

// ReplaceNext consumes the first span tracked under key and replaces old
// there with repl. When key has no span left, or its span no longer holds
// old, the first textual match of old is replaced instead. It reports
// whether anything was replaced.
func (b *Buffer) ReplaceNext(key, old, repl string) (int, bool) {
	if sp, ok := b.table.Pop(key); ok {
		if cur, err := b.Slice(sp); err == nil && cur == old {
			delta, _ := b.ReplaceSpan(sp, repl)
			return delta, true
		}
	}

	idx := strings.Index(b.text, old)
	if idx < 0 || old == "" {
		return 0, false
	}
	delta, _ := b.ReplaceSpan(Span{Start: idx, End: idx + len(old)}, repl)
	return delta, true
}
