package media

import (
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Placeholders returns the distinct {{name}} variables in text, in order of
// first appearance.
func Placeholders(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, m := range placeholderRe.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
