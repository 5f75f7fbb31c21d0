// Package schema defines the canonical loaner record layout and the alias
// table used to recognize spreadsheet column headers.
//
// The alias table is process-wide immutable configuration: build it once with
// DefaultAliases at startup and inject it into the pipeline. Nothing in this
// package mutates it after construction.
package schema

import (
	"regexp"
	"strings"
)

// Field names a canonical loaner column.
type Field string

const (
	FieldIdentifier      Field = "identifier"
	FieldFullName        Field = "full_name"
	FieldMobileNumber    Field = "mobile_number"
	FieldNationalID      Field = "national_id"
	FieldTotalAmount     Field = "total_amount"
	FieldLandDescription Field = "land_description"
	FieldDescription     Field = "description"
)

// Fields lists the canonical fields in declaration order. The order matters:
// when a header matches the alias sets of more than one field, the earliest
// field wins.
var Fields = []Field{
	FieldIdentifier,
	FieldFullName,
	FieldMobileNumber,
	FieldNationalID,
	FieldTotalAmount,
	FieldLandDescription,
	FieldDescription,
}

// ContentFields are the fields that carry row content; a row where all of
// these are empty after cleaning is unusable.
var ContentFields = []Field{
	FieldFullName,
	FieldMobileNumber,
	FieldNationalID,
	FieldTotalAmount,
	FieldLandDescription,
	FieldDescription,
}

// AliasTable maps each canonical field to the set of normalized header
// spellings accepted for it.
type AliasTable map[Field]map[string]bool

// DefaultAliases returns the built-in alias table. Spellings cover the
// header variants seen in real exports, including common misspellings.
func DefaultAliases() AliasTable {
	return AliasTable{
		FieldIdentifier: aliasSet(
			"identifier", "loaner_id", "loanerid", "id", "app_id", "application_id",
		),
		FieldFullName: aliasSet(
			"full_name", "fullname", "name", "customer_name", "applicant_name",
		),
		FieldMobileNumber: aliasSet(
			"mobile_number", "mobile_no", "mobile", "phone", "phone_no", "contact_no",
		),
		FieldNationalID: aliasSet(
			"national_id", "aadhar", "aadhaar", "adhar_no", "loaner_adhar", "loaner_aadhar",
		),
		FieldTotalAmount: aliasSet(
			"total_amount", "amount", "loan_amount", "total_loan_amount",
		),
		FieldLandDescription: aliasSet(
			"land_description", "total_land", "land", "land_size", "land_area",
		),
		FieldDescription: aliasSet(
			"description", "descrition", "purpose", "remarks", "notes",
		),
	}
}

func aliasSet(spellings ...string) map[string]bool {
	set := make(map[string]bool, len(spellings))
	for _, s := range spellings {
		set[NormalizeHeader(s)] = true
	}
	return set
}

// FieldFor returns the canonical field whose alias set contains the
// normalized header. When alias sets overlap, the earliest field in
// declaration order wins.
func (t AliasTable) FieldFor(header string) (Field, bool) {
	normalized := NormalizeHeader(header)
	if normalized == "" {
		return "", false
	}
	for _, field := range Fields {
		if t[field][normalized] {
			return field, true
		}
	}
	return "", false
}

// Known reports whether any field accepts the given header spelling.
func (t AliasTable) Known(header string) bool {
	_, ok := t.FieldFor(header)
	return ok
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeHeader canonicalizes a header cell for alias lookup: lowercase,
// runs of non-alphanumeric characters collapsed to single underscores,
// leading/trailing underscores stripped.
func NormalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonAlnum.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
