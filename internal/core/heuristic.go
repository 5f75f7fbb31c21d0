package core

// heuristic.go infers column identity from cell values. It is the fallback
// for files whose headers are missing, renamed beyond the alias table, or
// plain wrong: each column is sampled and scored against field-specific
// predicates, then columns are assigned to fields greedily by score.

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"loanimport/internal/schema"
)

// minDescriptionLen is the minimum length for free text to count as a
// description candidate.
const minDescriptionLen = 12

var (
	idCodeRegex   = regexp.MustCompile(`^[A-Za-z]{1,5}[-_ ]?[0-9]{1,9}$`)
	landUnitRegex = regexp.MustCompile(`(?i)\b(acres?|hectares?|ha)\b`)
	nameRegex     = regexp.MustCompile(`^[A-Za-z][A-Za-z .'-]*$`)
)

// HeuristicConfig bounds the sampling and assignment behavior of the
// content heuristic.
type HeuristicConfig struct {
	SampleRows int     // max data rows sampled per column
	MinScore   float64 // minimum matching fraction to assign a column
}

// fieldPredicate reports whether a single cleaned cell value looks like it
// belongs to the field.
type fieldPredicate func(value string) bool

// predicates in canonical declaration order; ties in score resolve to the
// earlier field.
var predicates = []struct {
	field schema.Field
	match fieldPredicate
}{
	{schema.FieldIdentifier, isIdentifierValue},
	{schema.FieldFullName, isNameValue},
	{schema.FieldMobileNumber, isMobileValue},
	{schema.FieldNationalID, isNationalIDValue},
	{schema.FieldTotalAmount, isAmountValue},
	{schema.FieldLandDescription, isLandValue},
	{schema.FieldDescription, isDescriptionValue},
}

// InferColumns samples cell values column by column and assigns each
// canonical field to the column scoring highest on that field's predicate.
// One column serves at most one field; conflicts resolve greedily in
// descending score order. Columns matching no predicate well stay unmapped.
func InferColumns(rows [][]string, cfg HeuristicConfig) ColumnMapping {
	if cfg.SampleRows <= 0 {
		cfg.SampleRows = 50
	}
	if cfg.MinScore <= 0 {
		cfg.MinScore = 0.6
	}

	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}

	type candidate struct {
		field schema.Field
		rank  int // declaration order, for deterministic ties
		col   int
		score float64
	}
	var candidates []candidate

	for col := 0; col < cols; col++ {
		sampled := sampleColumn(rows, col, cfg.SampleRows)
		if len(sampled) == 0 {
			continue
		}

		for rank, p := range predicates {
			matches := 0
			for _, v := range sampled {
				if p.match(v) {
					matches++
				}
			}
			score := float64(matches) / float64(len(sampled))
			if score >= cfg.MinScore {
				candidates = append(candidates, candidate{p.field, rank, col, score})
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].rank != candidates[j].rank {
			return candidates[i].rank < candidates[j].rank
		}
		return candidates[i].col < candidates[j].col
	})

	mapping := make(ColumnMapping)
	usedCols := make(map[int]bool)
	for _, c := range candidates {
		if _, taken := mapping[c.field]; taken {
			continue
		}
		if usedCols[c.col] {
			continue
		}
		mapping[c.field] = c.col
		usedCols[c.col] = true
	}

	return mapping
}

// sampleColumn collects up to limit non-empty cleaned cell values from one
// column.
func sampleColumn(rows [][]string, col, limit int) []string {
	var out []string
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		v := CleanCell(row[col])
		if v == "" {
			continue
		}
		out = append(out, v)
		if len(out) >= limit {
			break
		}
	}
	return out
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isIdentifierValue matches short record codes: an optional 1-5 letter
// prefix followed by digits (APP-101, LN 042), or a bare small integer.
// Digit strings shaped like phone or national-id numbers are excluded.
func isIdentifierValue(v string) bool {
	digits := digitsOnly(v)
	if len(digits) == 10 || len(digits) == 12 {
		return false
	}
	if idCodeRegex.MatchString(v) {
		return true
	}
	n, err := strconv.Atoi(v)
	return err == nil && n > 0 && n < 10000
}

func isNameValue(v string) bool {
	if len(v) > 60 || !nameRegex.MatchString(v) {
		return false
	}
	return len(strings.Fields(v)) <= 4
}

func isMobileValue(v string) bool {
	digits := digitsOnly(v)
	return len(digits) == 10 && digits[0] >= '6' && digits[0] <= '9'
}

func isNationalIDValue(v string) bool {
	return len(digitsOnly(v)) == 12
}

func isAmountValue(v string) bool {
	_, err := parseAmount(v)
	return err == nil
}

func isLandValue(v string) bool {
	return landUnitRegex.MatchString(v)
}

// isDescriptionValue matches free text long enough to be a remark and not
// claimed by a more specific predicate.
func isDescriptionValue(v string) bool {
	if len(v) < minDescriptionLen {
		return false
	}
	return !isMobileValue(v) && !isNationalIDValue(v) && !isAmountValue(v) && !isLandValue(v)
}
