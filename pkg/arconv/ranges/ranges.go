package ranges

import (
	"strings"

	"github.com/cognicore/arconv/pkg/arconv/numscan"
)

// DefaultJoiners are tried in this order.
var DefaultJoiners = []string{"to", "-", "x", "+"}

// DimensionJoiner marks groups that may be pan or cut dimensions ("9x13")
// rather than quantity ranges.
const DimensionJoiner = "x"

// Group is two or three numeric tokens joined by the same word.
type Group struct {
	Members   []int // token indices, left to right
	Joiner    string
	Dimension bool
}

// Detect groups tokens joined by a joiner word. For each joiner, triples
// are matched before pairs; matched tokens leave the pool and the scan
// restarts from the head of the remaining pool.
func Detect(line string, tokens []numscan.Token, joiners []string) []Group {
	if len(tokens) < 2 {
		return nil
	}

	pool := make([]int, len(tokens))
	for i := range pool {
		pool[i] = i
	}

	var groups []Group
	for _, j := range joiners {
		for _, size := range []int{3, 2} {
			var found []Group
			pool, found = match(line, tokens, pool, j, size)
			groups = append(groups, found...)
		}
	}
	return groups
}

// match walks the pool with a cursor. On a hit it records the group, builds
// a new pool without the matched tokens and restarts the cursor.
func match(line string, tokens []numscan.Token, pool []int, joiner string, size int) ([]int, []Group) {
	var groups []Group
	i := 0
	for i+size <= len(pool) {
		window := pool[i : i+size]
		if !joined(line, tokens, window, joiner) {
			i++
			continue
		}

		members := make([]int, size)
		copy(members, window)
		groups = append(groups, Group{
			Members:   members,
			Joiner:    joiner,
			Dimension: joiner == DimensionJoiner,
		})

		rest := make([]int, 0, len(pool)-size)
		rest = append(rest, pool[:i]...)
		rest = append(rest, pool[i+size:]...)
		pool = rest
		i = 0
	}
	return pool, groups
}

func joined(line string, tokens []numscan.Token, window []int, joiner string) bool {
	for k := 0; k+1 < len(window); k++ {
		a, b := tokens[window[k]].Span, tokens[window[k+1]].Span
		if a.End > b.Start {
			return false
		}
		if strings.TrimSpace(line[a.End:b.Start]) != joiner {
			return false
		}
	}
	return true
}

// Contains reports whether token index i belongs to the group.
func (g Group) Contains(i int) bool {
	for _, m := range g.Members {
		if m == i {
			return true
		}
	}
	return false
}
