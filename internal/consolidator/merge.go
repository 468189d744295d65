package consolidator

import (
	"sort"

	"dealscope/internal/models"
)

// Merge folds src into dst and returns the merged directory. Entries are
// grouped by exact name match. For a colliding name:
//   - variables are unioned per variable and year, with src winning on a
//     variable+year collision (callers merge chunks in index order, making
//     "last chunk wins" deterministic);
//   - dates are unioned as a set, kept sorted;
//   - the first non-empty description and type seen are kept.
//
// Neither input is mutated; dst order is preserved with new names appended.
func Merge(dst, src []models.ConsolidatedCompany) []models.ConsolidatedCompany {
	out := make([]models.ConsolidatedCompany, 0, len(dst)+len(src))
	index := make(map[string]int, len(dst))
	for _, c := range dst {
		index[c.Name] = len(out)
		out = append(out, c.Clone())
	}

	for _, c := range src {
		i, exists := index[c.Name]
		if !exists {
			index[c.Name] = len(out)
			out = append(out, c.Clone())
			continue
		}
		merged := &out[i]

		if merged.Variables == nil && len(c.Variables) > 0 {
			merged.Variables = models.VariableMap{}
		}
		for variable, byYear := range c.Variables {
			cells := merged.Variables[variable]
			if cells == nil {
				cells = make(map[int]models.ValueCell, len(byYear))
				merged.Variables[variable] = cells
			}
			for year, cell := range byYear {
				cells[year] = cell
			}
		}

		merged.Dates = unionDates(merged.Dates, c.Dates)

		if merged.Description == "" {
			merged.Description = c.Description
		}
		if merged.Type == "" {
			merged.Type = c.Type
		}
	}

	return out
}

// unionDates merges two date lists into a sorted set.
func unionDates(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, d := range a {
		seen[d] = struct{}{}
	}
	for _, d := range b {
		seen[d] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
