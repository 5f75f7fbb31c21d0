package core

import (
	"testing"

	"loanimport/internal/schema"
)

func TestExtractRow(t *testing.T) {
	mapping := ColumnMapping{
		schema.FieldIdentifier: 0,
		schema.FieldFullName:   2,
		schema.FieldTotalAmount: 5, // beyond row width
	}
	row := []string{" 42 ", "ignored", `"Asha Devi"`}

	raw := ExtractRow(row, mapping)

	if raw[schema.FieldIdentifier] != "42" {
		t.Errorf("identifier = %q, want %q", raw[schema.FieldIdentifier], "42")
	}
	if raw[schema.FieldFullName] != "Asha Devi" {
		t.Errorf("full_name = %q, want %q", raw[schema.FieldFullName], "Asha Devi")
	}
	if raw[schema.FieldTotalAmount] != "" {
		t.Errorf("total_amount = %q, want empty (column out of range)", raw[schema.FieldTotalAmount])
	}
	if raw[schema.FieldMobileNumber] != "" {
		t.Errorf("mobile_number = %q, want empty (unmapped)", raw[schema.FieldMobileNumber])
	}
}

func TestCleanRow_MobileNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string // empty means null
	}{
		{"valid", "9876543210", "9876543210"},
		{"valid with separators", "98765-43210", "9876543210"},
		{"valid with country code noise", "987 654 3210", "9876543210"},
		{"too short", "987654321", ""},
		{"too long", "98765432101", ""},
		{"bad leading digit", "5876543210", ""},
		{"letters", "98765abcde", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, reason := CleanRow(map[schema.Field]string{
				schema.FieldFullName:     "Asha Devi",
				schema.FieldMobileNumber: tt.input,
			})
			if reason != "" {
				t.Fatalf("CleanRow() rejected row: %s", reason)
			}

			if tt.want == "" {
				if rec.MobileNumber != nil {
					t.Errorf("MobileNumber = %q, want null", *rec.MobileNumber)
				}
			} else {
				if rec.MobileNumber == nil {
					t.Fatal("MobileNumber = null, want value")
				}
				if *rec.MobileNumber != tt.want {
					t.Errorf("MobileNumber = %q, want %q", *rec.MobileNumber, tt.want)
				}
			}
		})
	}
}

func TestCleanRow_NationalID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"valid", "123456789012", "123456789012"},
		{"valid with spaces", "1234 5678 9012", "123456789012"},
		{"valid with dashes", "1234-5678-9012", "123456789012"},
		{"eleven digits", "12345678901", ""},
		{"thirteen digits", "1234567890123", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, reason := CleanRow(map[schema.Field]string{
				schema.FieldFullName:   "Asha Devi",
				schema.FieldNationalID: tt.input,
			})
			if reason != "" {
				t.Fatalf("CleanRow() rejected row: %s", reason)
			}

			if tt.want == "" {
				if rec.NationalID != nil {
					t.Errorf("NationalID = %q, want null", *rec.NationalID)
				}
			} else {
				if rec.NationalID == nil {
					t.Fatal("NationalID = null, want value")
				}
				if *rec.NationalID != tt.want {
					t.Errorf("NationalID = %q, want %q", *rec.NationalID, tt.want)
				}
			}
		})
	}
}

func TestCleanRow_TotalAmount(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		name  string
		input string
		want  *float64
	}{
		{"plain integer", "1500", f(1500)},
		{"decimal", "1500.50", f(1500.50)},
		{"rupee symbol", "₹2,500.00", f(2500)},
		{"rs prefix", "Rs. 3000", f(3000)},
		{"dollar with thousands", "$1,234,567.89", f(1234567.89)},
		{"accounting negative", "(500)", f(-500)},
		{"scientific", "1.5e3", f(1500)},
		{"not numeric", "five hundred", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, reason := CleanRow(map[schema.Field]string{
				schema.FieldFullName:    "Asha Devi",
				schema.FieldTotalAmount: tt.input,
			})
			if reason != "" {
				t.Fatalf("CleanRow() rejected row: %s", reason)
			}

			if tt.want == nil {
				if rec.TotalAmount != nil {
					t.Errorf("TotalAmount = %v, want null", *rec.TotalAmount)
				}
			} else {
				if rec.TotalAmount == nil {
					t.Fatal("TotalAmount = null, want value")
				}
				if *rec.TotalAmount != *tt.want {
					t.Errorf("TotalAmount = %v, want %v", *rec.TotalAmount, *tt.want)
				}
			}
		})
	}
}

func TestCleanRow_UnusableRow(t *testing.T) {
	// Invalid values in every content field leave nothing usable; the
	// identifier alone does not save the row.
	rec, reason := CleanRow(map[schema.Field]string{
		schema.FieldIdentifier:   "42",
		schema.FieldMobileNumber: "12345",
		schema.FieldNationalID:   "999",
		schema.FieldTotalAmount:  "n/a",
	})

	if reason == "" {
		t.Fatalf("CleanRow() = %+v, want rejection", rec)
	}
}

func TestCleanRow_MissingIdentifierIsNotRejection(t *testing.T) {
	rec, reason := CleanRow(map[schema.Field]string{
		schema.FieldFullName: "Asha Devi",
	})

	if reason != "" {
		t.Fatalf("CleanRow() rejected row: %s", reason)
	}
	if rec.Identifier != "" {
		t.Errorf("Identifier = %q, want empty (left for auto-generation)", rec.Identifier)
	}
	if rec.FullName != "Asha Devi" {
		t.Errorf("FullName = %q, want %q", rec.FullName, "Asha Devi")
	}
}
