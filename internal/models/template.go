package models

import (
	"fmt"
	"regexp"
)

var templatePattern = regexp.MustCompile(`\{ *([\w_-]+) *\}`)

// ExpandTemplate replaces every {key} in tmpl with values[key]. A key with no
// value is an error.
func ExpandTemplate(tmpl string, values map[string]string) (string, error) {
	var missing string
	out := templatePattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		key := templatePattern.FindStringSubmatch(match)[1]
		v, ok := values[key]
		if !ok {
			if missing == "" {
				missing = key
			}
			return match
		}
		return v
	})
	if missing != "" {
		return "", fmt.Errorf("no value provided for variable {%s}", missing)
	}
	return out, nil
}

// TemplateKeys lists the placeholders used in tmpl, in order of appearance.
func TemplateKeys(tmpl string) []string {
	matches := templatePattern.FindAllStringSubmatch(tmpl, -1)
	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		keys = append(keys, m[1])
	}
	return keys
}
