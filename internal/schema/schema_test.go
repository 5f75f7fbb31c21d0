package schema

import "testing"

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Loaner ID", "loaner_id"},
		{"  Mobile No.  ", "mobile_no"},
		{"TOTAL-AMOUNT", "total_amount"},
		{"full__name", "full_name"},
		{"__id__", "id"},
		{"Aadhaar #", "aadhaar"},
		{"", ""},
		{"   ", ""},
		{"land (acres)", "land_acres"},
	}

	for _, tt := range tests {
		if got := NormalizeHeader(tt.in); got != tt.want {
			t.Errorf("NormalizeHeader(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFieldFor(t *testing.T) {
	aliases := DefaultAliases()

	tests := []struct {
		header string
		want   Field
		ok     bool
	}{
		{"loaner_id", FieldIdentifier, true},
		{"Application ID", FieldIdentifier, true},
		{"Customer Name", FieldFullName, true},
		{"PHONE NO", FieldMobileNumber, true},
		{"aadhar", FieldNationalID, true},
		{"Loan Amount", FieldTotalAmount, true},
		{"Land Area", FieldLandDescription, true},
		{"Remarks", FieldDescription, true},
		{"descrition", FieldDescription, true}, // legacy misspelling
		{"unrelated_column", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := aliases.FieldFor(tt.header)
		if ok != tt.ok || got != tt.want {
			t.Errorf("FieldFor(%q) = (%q, %v), want (%q, %v)", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFieldForDeclarationOrder(t *testing.T) {
	// If a spelling ever appears in two alias sets, the earliest field in
	// declaration order must win deterministically.
	aliases := DefaultAliases()
	aliases[FieldDescription][NormalizeHeader("loaner_id")] = true

	got, ok := aliases.FieldFor("loaner_id")
	if !ok || got != FieldIdentifier {
		t.Errorf("ambiguous header resolved to %q, want %q", got, FieldIdentifier)
	}
}

func TestDefaultAliasSetsDisjoint(t *testing.T) {
	aliases := DefaultAliases()
	seen := map[string]Field{}
	for _, field := range Fields {
		for spelling := range aliases[field] {
			if prev, dup := seen[spelling]; dup {
				t.Errorf("alias %q appears in both %q and %q", spelling, prev, field)
			}
			seen[spelling] = field
		}
	}
}
