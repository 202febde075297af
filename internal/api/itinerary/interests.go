package itinerary

import (
	"sort"
	"strings"
)

// interestSet is a deduplicated set of normalized interest strings. It only
// lives for the duration of one request.
type interestSet map[string]struct{}

// normalizeInterest lowercases and trims a user-supplied interest so it can be
// compared against catalog tags, which are normalized the same way at load.
func normalizeInterest(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// parseInterests builds an interest set from raw user input, dropping empty
// entries and duplicates.
func parseInterests(raw []string) interestSet {
	set := make(interestSet, len(raw))
	for _, item := range raw {
		normalized := normalizeInterest(item)
		if normalized == "" {
			continue
		}
		set[normalized] = struct{}{}
	}
	return set
}

// sorted returns the interests in deterministic order.
func (s interestSet) sorted() []string {
	out := make([]string, 0, len(s))
	for interest := range s {
		out = append(out, interest)
	}
	sort.Strings(out)
	return out
}

// intersect returns the sorted subset of tags present in the set.
func (s interestSet) intersect(tags []string) []string {
	var matched []string
	for _, tag := range tags {
		if _, ok := s[tag]; ok {
			matched = append(matched, tag)
		}
	}
	sort.Strings(matched)
	return matched
}
