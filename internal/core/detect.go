package core

// detect.go locates the physical row most likely to contain column headers.
// Real exports often lead with title banners or blank padding rows, so the
// header is not always row 0.

import "loanimport/internal/schema"

// MinHeaderMatches is the minimal confidence for accepting a candidate
// header row: at least this many distinct canonical fields must be matched.
const MinHeaderMatches = 2

// DetectHeaderRow scans the first maxRows physical rows and returns the
// index of the row whose cells match the most distinct canonical fields in
// the alias table. Ties go to the earliest row. When no row reaches
// MinHeaderMatches the default of row 0 is returned. Pure function.
func DetectHeaderRow(rows [][]string, aliases schema.AliasTable, maxRows int) int {
	limit := maxRows
	if limit <= 0 || limit > len(rows) {
		limit = len(rows)
	}

	bestIdx := 0
	bestScore := 0

	for i := 0; i < limit; i++ {
		row := rows[i]
		if mostlyEmpty(row) {
			continue
		}

		matched := make(map[schema.Field]bool)
		for _, cell := range row {
			if field, ok := aliases.FieldFor(CleanCell(cell)); ok {
				matched[field] = true
			}
		}

		if len(matched) > bestScore {
			bestScore = len(matched)
			bestIdx = i
		}
	}

	if bestScore < MinHeaderMatches {
		return 0
	}
	return bestIdx
}

// mostlyEmpty reports whether more than half of a row's cells are blank.
func mostlyEmpty(row []string) bool {
	if len(row) == 0 {
		return true
	}
	empty := 0
	for _, v := range row {
		if CleanCell(v) == "" {
			empty++
		}
	}
	return empty*2 > len(row)
}
