package usecase

import (
	"context"
	"fmt"
	"io"

	"BlogScraper/internal/domain"
	"BlogScraper/internal/export"
	"BlogScraper/internal/ports"
)

// Catalog answers read queries over stored posts.
type Catalog struct {
	repository ports.PostRepository
}

// NewCatalog wraps a repository.
func NewCatalog(repo ports.PostRepository) *Catalog {
	return &Catalog{repository: repo}
}

// List returns the posts matching filter.
func (c *Catalog) List(ctx context.Context, filter domain.PostFilter) ([]domain.BlogPost, error) {
	if c.repository == nil {
		return nil, fmt.Errorf("post repository is not configured")
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	posts, err := c.repository.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// Count returns how many posts match filter, ignoring its limit.
func (c *Catalog) Count(ctx context.Context, filter domain.PostFilter) (int, error) {
	if c.repository == nil {
		return 0, fmt.Errorf("post repository is not configured")
	}
	if err := filter.Validate(); err != nil {
		return 0, err
	}
	n, err := c.repository.Count(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

// Export writes the posts matching filter to w and returns how many were written.
func (c *Catalog) Export(ctx context.Context, w io.Writer, format export.Format, filter domain.PostFilter) (int, error) {
	posts, err := c.List(ctx, filter)
	if err != nil {
		return 0, err
	}
	if err := export.Write(w, format, posts); err != nil {
		return 0, err
	}
	return len(posts), nil
}
