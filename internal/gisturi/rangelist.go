package gisturi

import (
	"slices"
	"strconv"
	"strings"
)

// MaxRangeSpan caps the number of lines a single a-b token may expand to.
// Wider tokens are dropped.
const MaxRangeSpan = 10000

// MaxLineSetSize caps the number of distinct lines in one set. Tokens past
// the cap are ignored.
const MaxLineSetSize = 4 * MaxRangeSpan

// LineSet is a sorted set of non-negative line numbers.
type LineSet []int

// Has reports whether n is in the set.
func (s LineSet) Has(n int) bool {
	_, found := slices.BinarySearch(s, n)
	return found
}

// String renders the set as a compact range-list ("2-4,6").
func (s LineSet) String() string {
	var parts []string
	for i := 0; i < len(s); {
		j := i
		for j+1 < len(s) && s[j+1] == s[j]+1 {
			j++
		}
		if j == i {
			parts = append(parts, strconv.Itoa(s[i]))
		} else {
			parts = append(parts, strconv.Itoa(s[i])+"-"+strconv.Itoa(s[j]))
		}
		i = j + 1
	}
	return strings.Join(parts, ",")
}

// ParseRangeList expands a comma-separated list of integers and inclusive
// a-b ranges into a LineSet. "2-4,6" yields {2,3,4,6}.
//
// Tokens that are empty, non-numeric, negative, reversed (a > b) or wider
// than MaxRangeSpan are skipped. An empty input yields an empty, non-nil set.
// The set never holds more than MaxLineSetSize lines.
func ParseRangeList(s string) LineSet {
	set := LineSet{}
	for _, token := range strings.Split(s, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		lo, hi, ok := parseRangeToken(token)
		if !ok {
			continue
		}
		if len(set)+(hi-lo+1) > MaxLineSetSize {
			set = normalize(set)
			if len(set)+(hi-lo+1) > MaxLineSetSize {
				continue
			}
		}
		// hi may be math.MaxInt, so count the span instead of comparing to hi.
		for i := 0; i <= hi-lo; i++ {
			set = append(set, lo+i)
		}
	}
	return normalize(set)
}

// normalize sorts set and drops duplicates.
func normalize(set LineSet) LineSet {
	slices.Sort(set)
	return slices.Compact(set)
}

// parseRangeToken parses "n" or "a-b".
func parseRangeToken(token string) (lo, hi int, ok bool) {
	first, second, isRange := strings.Cut(token, "-")
	lo, ok = parseLineNumber(first)
	if !ok {
		return 0, 0, false
	}
	if !isRange {
		return lo, lo, true
	}
	hi, ok = parseLineNumber(second)
	if !ok || lo > hi || hi-lo >= MaxRangeSpan {
		return 0, 0, false
	}
	return lo, hi, true
}

// parseLineNumber accepts decimal digits only (no sign).
func parseLineNumber(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "+-") {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
