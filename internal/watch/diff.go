package watch

import "sort"

// Diff returns the names present only in next (added) and only in prev
// (removed), both sorted.
func Diff(prev, next []string) (added, removed []string) {
	before := make(map[string]struct{}, len(prev))
	for _, name := range prev {
		before[name] = struct{}{}
	}
	after := make(map[string]struct{}, len(next))
	for _, name := range next {
		after[name] = struct{}{}
		if _, ok := before[name]; !ok {
			added = append(added, name)
		}
	}
	for _, name := range prev {
		if _, ok := after[name]; !ok {
			removed = append(removed, name)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}
