package core

// validate.go normalizes and enforces per-field constraints on mapped rows.
// A failing rule nulls that field rather than discarding the row; a row is
// only rejected when nothing usable remains.

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"loanimport/internal/schema"
)

// MobileNumberPattern is the constraint for Indian mobile numbers.
var MobileNumberPattern = regexp.MustCompile(`^[6-9][0-9]{9}$`)

// numericRegex validates a numeric literal after currency cleanup: integers,
// decimals, scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

var errNotNumeric = errors.New("not a numeric literal")

// ExtractRow reduces a physical row to exactly the canonical field set,
// taking each field's cell from its mapped column. Unmapped fields and
// out-of-range columns yield empty strings.
func ExtractRow(row []string, mapping ColumnMapping) map[schema.Field]string {
	raw := make(map[schema.Field]string, len(schema.Fields))
	for _, field := range schema.Fields {
		col, ok := mapping[field]
		if !ok || col >= len(row) {
			raw[field] = ""
			continue
		}
		raw[field] = CleanCell(row[col])
	}
	return raw
}

// CleanRow produces a cleaned record from raw field values. Invalid
// mobile/national-id/amount values become null; text fields are trimmed.
// The returned reason is non-empty when the row is unusable: every content
// field empty after cleaning. A missing identifier is not a rejection
// reason, since identifiers can be auto-generated.
func CleanRow(raw map[schema.Field]string) (Loaner, string) {
	rec := Loaner{
		Identifier:      strings.TrimSpace(raw[schema.FieldIdentifier]),
		FullName:        strings.TrimSpace(raw[schema.FieldFullName]),
		LandDescription: strings.TrimSpace(raw[schema.FieldLandDescription]),
		Description:     strings.TrimSpace(raw[schema.FieldDescription]),
	}

	if mobile := cleanMobile(raw[schema.FieldMobileNumber]); mobile != "" {
		rec.MobileNumber = &mobile
	}
	if nid := cleanNationalID(raw[schema.FieldNationalID]); nid != "" {
		rec.NationalID = &nid
	}
	if amount, err := parseAmount(raw[schema.FieldTotalAmount]); err == nil {
		rec.TotalAmount = &amount
	}

	if rec.FullName == "" && rec.MobileNumber == nil && rec.NationalID == nil &&
		rec.TotalAmount == nil && rec.LandDescription == "" && rec.Description == "" {
		return Loaner{}, "no usable content fields"
	}

	return rec, ""
}

// cleanMobile strips non-digit characters and keeps the value only if it
// fully matches the mobile number constraint.
func cleanMobile(s string) string {
	digits := digitsOnly(s)
	if !MobileNumberPattern.MatchString(digits) {
		return ""
	}
	return digits
}

// cleanNationalID strips non-digit separators and requires exactly 12 digits.
func cleanNationalID(s string) string {
	digits := digitsOnly(s)
	if len(digits) != 12 {
		return ""
	}
	return digits
}

// parseAmount converts a cell to a float after removing currency symbols,
// thousands separators, and accounting-style negative parentheses.
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errNotNumeric
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	for _, sym := range []string{"₹", "$", "€", "£", "Rs.", "Rs", ","} {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.TrimSpace(s)

	if negative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return 0, errNotNumeric
	}
	return strconv.ParseFloat(s, 64)
}
