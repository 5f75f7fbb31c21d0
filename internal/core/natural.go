package core

// natural.go orders persisted records so numeric identifiers sort by value.
// Plain lexicographic ordering puts "10" before "2"; natural order does not.

import (
	"sort"
	"strconv"
)

// SortNatural sorts records in place: identifiers that parse entirely as
// non-negative integers first, ascending numerically; all other identifiers
// after, ascending lexicographically. Deterministic for a fixed set,
// independent of insertion order.
func SortNatural(recs []Loaner) {
	sort.SliceStable(recs, func(i, j int) bool {
		ni, iNum := naturalKey(recs[i].Identifier)
		nj, jNum := naturalKey(recs[j].Identifier)

		switch {
		case iNum && jNum:
			if ni != nj {
				return ni < nj
			}
			// Equal values with different spellings ("007" vs "7"):
			// fall back to the string form for a stable total order.
			return recs[i].Identifier < recs[j].Identifier
		case iNum:
			return true
		case jNum:
			return false
		default:
			return recs[i].Identifier < recs[j].Identifier
		}
	})
}

// naturalKey parses an identifier as a non-negative integer. The second
// return reports whether the whole identifier was numeric.
func naturalKey(id string) (uint64, bool) {
	if id == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
