package core

import (
	"sort"
	"strings"
)

// SelectLatest groups resource type nodes by case-insensitive name
// before the `@` and keeps, per group, the node with the greatest API
// version under plain string comparison. ARM API versions are
// fixed-width ISO date strings, so string order is version order; a
// semantic comparator would change which version wins for `-preview`
// suffixes. Ties keep the first-seen node.
func SelectLatest(nodes []IndexedNode) []IndexedNode {
	winners := map[string]IndexedNode{}
	order := []string{}

	for _, candidate := range nodes {
		key := strings.ToLower(candidate.Node.ResourceTypeName())
		current, seen := winners[key]
		if !seen {
			winners[key] = candidate
			order = append(order, key)
			continue
		}
		if candidate.Node.APIVersion() > current.Node.APIVersion() {
			winners[key] = candidate
		}
	}

	sort.Strings(order)
	out := make([]IndexedNode, 0, len(winners))
	for _, key := range order {
		out = append(out, winners[key])
	}
	return out
}
