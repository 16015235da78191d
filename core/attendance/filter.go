package attendance

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/mahudhurio/core"
)

// FilterAll passes every row already matching the search term.
const FilterAll = "all"

const groupFilterPrefix = "group-"

// GroupFilter builds the categorical filter value for a group id.
func GroupFilter(groupID int) string {
	return groupFilterPrefix + strconv.Itoa(groupID)
}

// FilterRows applies a free-text search and a categorical filter over merged
// rows. Search matches case-insensitively against first name, last name,
// full name and email; a row matches when any field contains the term.
//
// filterBy is "all", "group-{id}", or a status value. Status filtering is an
// exact (case-insensitive) match when dateScoped, and a substring match
// otherwise, since aggregate rows carry formatted summaries like
// "80% Present (4/5)". Search and filter compose as an AND; their order of
// application does not affect the result. The input slice is not mutated.
func FilterRows(rows []ResolvedRow, term, filterBy string, dateScoped bool) []ResolvedRow {
	term = core.CleanString(term, true)
	filterBy = core.CleanString(filterBy)

	out := make([]ResolvedRow, 0, len(rows))
	for _, row := range rows {
		if term != "" && !matchesSearch(row, term) {
			continue
		}
		if !matchesFilter(row, filterBy, dateScoped) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// suggestMinRatio is the similarity floor under which a near-miss is noise.
const suggestMinRatio = 0.6

// SuggestRows ranks rows by name similarity to a search term that matched
// nothing exactly, best first, capped at limit. Meant as a typo fallback
// after FilterRows came back empty.
func SuggestRows(rows []ResolvedRow, term string, limit int) []ResolvedRow {
	term = core.CleanString(term, true)
	if term == "" || limit <= 0 {
		return nil
	}

	type scored struct {
		row   ResolvedRow
		ratio float64
	}
	candidates := make([]scored, 0, len(rows))
	for _, row := range rows {
		var best float64
		for _, field := range []string{row.FirstName, row.LastName, row.FullName} {
			if field == "" {
				continue
			}
			m := difflib.NewMatcher(strings.Split(term, ""), strings.Split(strings.ToLower(field), ""))
			if r := m.QuickRatio(); r > best {
				best = r
			}
		}
		if best >= suggestMinRatio {
			candidates = append(candidates, scored{row: row, ratio: best})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].ratio > candidates[j].ratio })
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]ResolvedRow, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.row)
	}
	return out
}

func matchesSearch(row ResolvedRow, term string) bool {
	for _, field := range []string{row.FirstName, row.LastName, row.FullName, row.Email} {
		if field != "" && strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func matchesFilter(row ResolvedRow, filterBy string, dateScoped bool) bool {
	switch {
	case filterBy == "" || strings.EqualFold(filterBy, FilterAll):
		return true
	case strings.HasPrefix(strings.ToLower(filterBy), groupFilterPrefix):
		id, err := strconv.Atoi(filterBy[len(groupFilterPrefix):])
		if err != nil {
			return false
		}
		return row.GroupID == id
	case dateScoped:
		return strings.EqualFold(row.Status, filterBy)
	default:
		return strings.Contains(strings.ToLower(row.Status), strings.ToLower(filterBy))
	}
}
