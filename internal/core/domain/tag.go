package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxTagLength is the longest tag accepted
const MaxTagLength = 64

// FileTag represents a FileTag entity
type FileTag struct {
	ID        uuid.UUID
	FileID    uuid.UUID
	Tag       string
	AddedBy   string
	CreatedAt time.Time
}

// NormalizeTag trims and lowercases a tag
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// NormalizeTags normalizes, drops empty and duplicate tags keeping order
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		n := NormalizeTag(t)
		if n == "" || len(n) > MaxTagLength || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// TagSummary is a catalogue entry: a tag and how many files carry it
type TagSummary struct {
	Name      string
	FileCount int
}
