package core

import "testing"

func recsWithIDs(ids ...string) []Loaner {
	recs := make([]Loaner, len(ids))
	for i, id := range ids {
		recs[i] = Loaner{Identifier: id}
	}
	return recs
}

func idsOf(recs []Loaner) []string {
	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.Identifier
	}
	return ids
}

func TestSortNatural(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "numeric before lexical",
			in:   []string{"10", "2", "abc", "1"},
			want: []string{"1", "2", "10", "abc"},
		},
		{
			name: "numeric by value not by string",
			in:   []string{"100", "20", "3"},
			want: []string{"3", "20", "100"},
		},
		{
			name: "mixed auto identifiers sort after numerics",
			in:   []string{"AUTOAB12CD340002", "5", "AUTOAB12CD340001", "12"},
			want: []string{"5", "12", "AUTOAB12CD340001", "AUTOAB12CD340002"},
		},
		{
			name: "leading zeros compare by value then spelling",
			in:   []string{"7", "007", "07"},
			want: []string{"007", "07", "7"},
		},
		{
			name: "empty input",
			in:   nil,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := recsWithIDs(tt.in...)
			SortNatural(recs)

			got := idsOf(recs)
			if len(got) != len(tt.want) {
				t.Fatalf("SortNatural() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("position %d = %q, want %q (full: %v)", i, got[i], tt.want[i], got)
				}
			}
		})
	}
}

func TestSortNatural_InsertionOrderIndependent(t *testing.T) {
	a := recsWithIDs("abc", "1", "10", "2")
	b := recsWithIDs("2", "10", "1", "abc")

	SortNatural(a)
	SortNatural(b)

	for i := range a {
		if a[i].Identifier != b[i].Identifier {
			t.Fatalf("order depends on insertion: %v vs %v", idsOf(a), idsOf(b))
		}
	}
}
