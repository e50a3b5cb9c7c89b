package api

import "strings"

// SplitTags turns the comma separated tags of a post form into a list.
// Whitespace inside an item is removed and empty items are dropped; order and
// duplicates are kept.
func SplitTags(raw string) []string {
	tags := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		tag := strings.Join(strings.Fields(part), "")
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}
