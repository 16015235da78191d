package attendance

import (
	"reflect"
	"testing"
)

func filterRows() []ResolvedRow {
	return []ResolvedRow{
		{StudentID: 1, FirstName: "Amina", LastName: "Bensalem", FullName: "Amina Bensalem", Email: "amina@uni.dz", GroupID: 3, GroupName: "G1", Status: "present"},
		{StudentID: 2, FirstName: "Karim", LastName: "Haddad", FullName: "Karim Haddad", Email: "karim@uni.dz", GroupID: 3, GroupName: "G1", Status: "late"},
		{StudentID: 3, FirstName: "Lina", LastName: "Cherif", FullName: "Lina Cherif", Email: "lina@uni.dz", GroupID: 4, GroupName: "G2", Status: "absent"},
	}
}

func ids(rows []ResolvedRow) []int {
	out := make([]int, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.StudentID)
	}
	return out
}

func TestFilterRows(t *testing.T) {
	tests := []struct {
		name       string
		term       string
		filterBy   string
		dateScoped bool
		want       []int
	}{
		{name: "no term no filter", want: []int{1, 2, 3}},
		{name: "filter all", filterBy: FilterAll, want: []int{1, 2, 3}},
		{name: "search first name", term: "karim", want: []int{2}},
		{name: "search case insensitive", term: "BENSALEM", want: []int{1}},
		{name: "search partial email", term: "@uni.dz", want: []int{1, 2, 3}},
		{name: "search substring of full name", term: "ina", want: []int{1, 3}},
		{name: "search no match", term: "zzz", want: []int{}},
		{name: "group filter", filterBy: GroupFilter(3), want: []int{1, 2}},
		{name: "group filter no match", filterBy: GroupFilter(99), want: []int{}},
		{name: "malformed group filter", filterBy: "group-x", want: []int{}},
		{name: "status exact when date scoped", filterBy: "late", dateScoped: true, want: []int{2}},
		{name: "status case insensitive", filterBy: "Present", dateScoped: true, want: []int{1}},
		{name: "search and filter compose", term: "a", filterBy: GroupFilter(3), want: []int{1, 2}},
		{name: "compose to empty", term: "lina", filterBy: GroupFilter(3), want: []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(FilterRows(filterRows(), tt.term, tt.filterBy, tt.dateScoped))
			if len(got) != len(tt.want) {
				t.Fatalf("FilterRows() ids = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("FilterRows() ids = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestFilterRows_summaryStatusSubstring(t *testing.T) {
	rows := []ResolvedRow{
		{StudentID: 1, Status: "80% Present (4/5)"},
		{StudentID: 2, Status: "0% Present (0/5)"},
		{StudentID: 3, Status: NoSessions},
	}
	got := ids(FilterRows(rows, "", "present", false))
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("FilterRows() ids = %v, want [1 2]", got)
	}
}

func TestSuggestRows(t *testing.T) {
	rows := filterRows()

	// misspelled first name still finds its owner
	got := SuggestRows(rows, "karin", 3)
	if len(got) == 0 || got[0].StudentID != 2 {
		t.Errorf("SuggestRows(karin) ids = %v, want [2 ...]", ids(got))
	}

	// nothing remotely similar
	if got := SuggestRows(rows, "xqzw", 3); len(got) != 0 {
		t.Errorf("SuggestRows(xqzw) ids = %v, want none", ids(got))
	}

	// limit caps the result
	if got := SuggestRows(rows, "lina", 1); len(got) > 1 {
		t.Errorf("len = %d, want at most 1", len(got))
	}
	if got := SuggestRows(rows, "lina", 0); got != nil {
		t.Errorf("SuggestRows(limit 0) = %v, want nil", ids(got))
	}
}

func TestFilterRows_pure(t *testing.T) {
	rows := filterRows()
	before := filterRows()

	first := FilterRows(rows, "ina", GroupFilter(3), true)
	second := FilterRows(rows, "ina", GroupFilter(3), true)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated calls differ: %v vs %v", ids(first), ids(second))
	}
	if !reflect.DeepEqual(rows, before) {
		t.Errorf("input rows mutated: %+v", rows)
	}
}

func TestFilterRows_orderIndependence(t *testing.T) {
	// search-then-filter must equal filter-then-search
	rows := filterRows()
	composed := ids(FilterRows(rows, "a", GroupFilter(3), true))
	searchFirst := ids(FilterRows(FilterRows(rows, "a", "", true), "", GroupFilter(3), true))
	filterFirst := ids(FilterRows(FilterRows(rows, "", GroupFilter(3), true), "a", "", true))

	for _, got := range [][]int{searchFirst, filterFirst} {
		if len(got) != len(composed) {
			t.Fatalf("ids = %v, want %v", got, composed)
		}
		for i := range composed {
			if got[i] != composed[i] {
				t.Errorf("ids = %v, want %v", got, composed)
				break
			}
		}
	}
}
