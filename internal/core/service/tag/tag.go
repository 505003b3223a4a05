package tag

import "file-service/internal/core/port"

// Catalogue page bounds
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

type tagService struct {
	repo port.TagRepository
}

// NewTagService creates a new tag service
func NewTagService(repo port.TagRepository) port.TagService {
	return &tagService{repo: repo}
}
