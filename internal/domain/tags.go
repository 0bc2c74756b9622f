package domain

import (
	"regexp"
	"strings"
)

// Tag input may be separated by commas, whitespace, or the fullwidth comma
// used in Japanese text.
var tagSeparator = regexp.MustCompile(`[,\s、]+`)

// ParseTags splits raw tag input into a deduplicated, order-preserving list.
// Tokens are trimmed; empty tokens are dropped. Deduplication is
// case-insensitive and the first occurrence's casing wins.
func ParseTags(raw string) []string {
	if raw == "" {
		return nil
	}

	var tags []string
	seen := make(map[string]struct{})
	for _, chunk := range tagSeparator.Split(raw, -1) {
		tag := strings.TrimSpace(chunk)
		if tag == "" {
			continue
		}
		lowered := strings.ToLower(tag)
		if _, ok := seen[lowered]; ok {
			continue
		}
		seen[lowered] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// TagsToText joins tags into the comma-separated form stored on the dish row.
func TagsToText(tags []string) string {
	var parts []string
	for _, tag := range tags {
		if t := strings.TrimSpace(tag); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, ",")
}

// SplitTagField splits a stored comma-joined tag field into individual tags.
func SplitTagField(field string) []string {
	if field == "" {
		return nil
	}
	var tags []string
	for _, part := range strings.Split(field, ",") {
		if t := strings.TrimSpace(part); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
