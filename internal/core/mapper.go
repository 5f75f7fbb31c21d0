package core

// mapper.go performs direct header mapping: assigning canonical fields to
// source columns by alias lookup on the detected header row.

import "loanimport/internal/schema"

// MapColumns matches each header cell against the alias table and returns
// the resulting field-to-column mapping plus the fields left unmapped.
// A field keeps its first matching column; later columns with the same
// header are ignored.
func MapColumns(header []string, aliases schema.AliasTable) (ColumnMapping, []schema.Field) {
	mapping := make(ColumnMapping)

	for col, cell := range header {
		field, ok := aliases.FieldFor(CleanCell(cell))
		if !ok {
			continue
		}
		if _, taken := mapping[field]; taken {
			continue
		}
		mapping[field] = col
	}

	var unmapped []schema.Field
	for _, field := range schema.Fields {
		if _, ok := mapping[field]; !ok {
			unmapped = append(unmapped, field)
		}
	}

	return mapping, unmapped
}

// Usable reports whether a mapping satisfies the minimum-required-fields
// threshold for constructing rows.
func (m ColumnMapping) Usable(minRequired int) bool {
	return len(m) >= minRequired
}

// Unresolved returns the canonical fields the mapping does not cover, in
// declaration order.
func (m ColumnMapping) Unresolved() []schema.Field {
	var out []schema.Field
	for _, field := range schema.Fields {
		if _, ok := m[field]; !ok {
			out = append(out, field)
		}
	}
	return out
}
