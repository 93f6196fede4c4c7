package core

import "context"

// Repository defines the contract for storing and retrieving posts.
// The core stays independent of where posts live (filesystem, memory).
type Repository interface {
	// Initialize ensures the underlying storage is ready (e.g. the posts directory exists).
	Initialize(ctx context.Context) error

	// Get retrieves a post by its ID.
	Get(ctx context.Context, id string) (Post, error)

	// List returns every post whose ID matches pattern. An empty pattern matches all.
	List(ctx context.Context, pattern string) ([]Post, error)

	// Save persists a post, creating or replacing it.
	Save(ctx context.Context, p Post) error

	// Delete removes a post by its ID.
	Delete(ctx context.Context, id string) error
}

// Watchable is implemented by repositories that can report changes.
type Watchable interface {
	// Watch emits events for posts matching pattern until ctx is done.
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}
