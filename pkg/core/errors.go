package core

import "errors"

// Common errors.
var (
	ErrNotFound         = errors.New("post not found")
	ErrAlreadyExists    = errors.New("post already exists")
	ErrReadOnly         = errors.New("repository is in read-only mode")
	ErrInvalidID        = errors.New("post ID cannot be empty")
	ErrNotWatchable     = errors.New("repository does not support watching")
	ErrAlreadyPublished = errors.New("post is already published")
)
