package catalog

import "strings"

// StaticLeadCounter counts leads per tag from a fixed table, keyed by tag
// name without regard to case.
type StaticLeadCounter struct {
	counts map[string]int
}

func NewStaticLeadCounter(counts map[string]int) *StaticLeadCounter {
	c := &StaticLeadCounter{counts: make(map[string]int, len(counts))}
	for name, n := range counts {
		c.counts[strings.ToLower(name)] += n
	}
	return c
}

// CountByTags sums the leads of every distinct tag in names. Unknown tags
// count as zero.
func (c *StaticLeadCounter) CountByTags(names []string) int {
	seen := make(map[string]struct{}, len(names))
	total := 0
	for _, name := range names {
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		total += c.counts[key]
	}
	return total
}
