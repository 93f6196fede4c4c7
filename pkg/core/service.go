package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// Service handles the business logic for posts.
type Service struct {
	mu     sync.RWMutex
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Repository returns the underlying storage adapter.
func (s *Service) Repository() Repository {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repo
}

// GetPost retrieves a post.
func (s *Service) GetPost(ctx context.Context, id string) (Post, error) {
	if strings.TrimSpace(id) == "" {
		return Post{}, ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

// ListPosts returns posts matching f, newest first.
// Posts sharing a date are ordered by ID so output is stable.
func (s *Service) ListPosts(ctx context.Context, f Filter) ([]Post, error) {
	posts, err := s.repo.List(ctx, f.Pattern)
	if err != nil {
		return nil, err
	}

	filtered := posts[:0]
	for _, p := range posts {
		if p.FrontMatter.Draft && !f.IncludeDrafts {
			continue
		}
		if f.Tag != "" && !p.FrontMatter.HasTag(f.Tag) {
			continue
		}
		filtered = append(filtered, p)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		di, dj := filtered[i].FrontMatter.Date, filtered[j].FrontMatter.Date
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return filtered[i].ID < filtered[j].ID
	})
	return filtered, nil
}

// SavePost persists a post.
func (s *Service) SavePost(ctx context.Context, p Post) error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrInvalidID
	}
	return s.repo.Save(ctx, p)
}

// DeletePost removes a post.
func (s *Service) DeletePost(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

// CreatePost scaffolds a new draft. It refuses to overwrite an existing post.
func (s *Service) CreatePost(ctx context.Context, id, title string, now time.Time) (Post, error) {
	if strings.TrimSpace(id) == "" {
		return Post{}, ErrInvalidID
	}

	_, err := s.repo.Get(ctx, id)
	switch {
	case err == nil:
		return Post{}, fmt.Errorf("%w: %s", ErrAlreadyExists, id)
	case !errors.Is(err, ErrNotFound):
		return Post{}, err
	}

	p := Post{
		ID: id,
		FrontMatter: FrontMatter{
			Title:    title,
			Date:     now,
			TOC:      true,
			ReadTime: 1,
			Draft:    true,
		},
		Body: "\n",
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return Post{}, err
	}

	s.logger.Debug("post created", "id", id)
	return p, nil
}

// Publish clears the draft flag. A post without a date is stamped with now.
func (s *Service) Publish(ctx context.Context, id string, now time.Time) (Post, error) {
	p, err := s.GetPost(ctx, id)
	if err != nil {
		return Post{}, err
	}
	if p.Published() {
		return p, fmt.Errorf("%w: %s", ErrAlreadyPublished, id)
	}

	p.FrontMatter.Draft = false
	if p.FrontMatter.Date.IsZero() {
		p.FrontMatter.Date = now
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return Post{}, fmt.Errorf("failed to publish %s: %w", id, err)
	}

	s.logger.Info("post published", "id", id, "date", p.FrontMatter.Date.Format(time.DateOnly))
	return p, nil
}

// Watch observes changes in the repository if supported.
func (s *Service) Watch(ctx context.Context, pattern string) (<-chan Event, error) {
	w, ok := s.repo.(Watchable)
	if !ok {
		return nil, ErrNotWatchable
	}
	return w.Watch(ctx, pattern)
}
