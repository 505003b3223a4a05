package domain

import (
	"fmt"
	"strings"
	"time"
)

// Search paging bounds
const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)

// SortField is a column search results can be ordered by
type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByName      SortField = "name"
	SortBySize      SortField = "size"
	SortByUpdatedAt SortField = "updatedAt"
)

// ParseSortField validates a sort field, defaulting to createdAt
func ParseSortField(raw string) (SortField, error) {
	switch SortField(strings.TrimSpace(raw)) {
	case "", SortByCreatedAt:
		return SortByCreatedAt, nil
	case SortByName:
		return SortByName, nil
	case SortBySize:
		return SortBySize, nil
	case SortByUpdatedAt:
		return SortByUpdatedAt, nil
	}
	return "", fmt.Errorf("%w: unknown sort field %q", ErrValidation, raw)
}

// SearchOptions filters a file search. Zero values mean "no filter".
type SearchOptions struct {
	// OwnerOrSharedWith restricts results to files owned by or shared with this identity
	OwnerOrSharedWith *Identity
	OwnerID           string
	OrganizationID    string
	TeamID            string
	Category          FileCategory
	MimeTypePrefix    string
	Query             string
	Tags              []string
	CreatedFrom       *time.Time
	CreatedTo         *time.Time
	MinSize           int64
	MaxSize           int64
	Status            FileStatus
	SortBy            SortField
	SortDesc          bool
	Limit             int
	Offset            int
}

// Normalize applies defaults and bounds
func (o *SearchOptions) Normalize() {
	if o.Limit <= 0 {
		o.Limit = DefaultSearchLimit
	}
	if o.Limit > MaxSearchLimit {
		o.Limit = MaxSearchLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	if o.SortBy == "" {
		o.SortBy = SortByCreatedAt
		o.SortDesc = true
	}
	o.Tags = NormalizeTags(o.Tags)
}

// SearchResult is a page of files
type SearchResult struct {
	Files  []FileRecord
	Total  int
	Limit  int
	Offset int
}
