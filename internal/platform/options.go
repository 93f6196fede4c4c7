package platform

import (
	"log/slog"

	"github.com/aretw0/quill/pkg/core"
)

// options holds the internal configuration for a quill project.
type options struct {
	repository core.Repository
	logger     *slog.Logger

	postsDir          string
	assetsDir         string
	systemDir         string
	readOnly          bool
	mustExist         bool
	wordsPerMinute    int
	readTimeTolerance *int
	disabledRules     []string
	errorHandler      func(error)
}

// Option defines a functional option for configuring quill.
type Option func(*options)

func defaultOptions() *options {
	return &options{}
}

func apply(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger for the service, repository and linter.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRepository injects a custom storage adapter (e.g. a mock).
// If provided, the filesystem adapter is skipped.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithPostsDir overrides the posts directory from quill.yaml.
// Relative paths are resolved against the project root.
func WithPostsDir(dir string) Option {
	return func(o *options) {
		o.postsDir = dir
	}
}

// WithAssetsDir overrides the asset root used for absolute image paths.
func WithAssetsDir(dir string) Option {
	return func(o *options) {
		o.assetsDir = dir
	}
}

// WithSystemDir sets the hidden directory holding the index cache.
// Defaults to ".quill".
func WithSystemDir(name string) Option {
	return func(o *options) {
		o.systemDir = name
	}
}

// WithReadOnly enables read-only mode.
// In this mode:
// 1. Save and Delete return core.ErrReadOnly.
// 2. The posts directory is never created.
// 3. Index cache updates are not persisted to disk.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithMustExist ensures the posts directory must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithWordsPerMinute overrides the reading speed used for read-time estimates.
func WithWordsPerMinute(wpm int) Option {
	return func(o *options) {
		o.wordsPerMinute = wpm
	}
}

// WithReadTimeTolerance overrides how many minutes a declared readtime may
// drift from the estimate before the linter warns.
func WithReadTimeTolerance(minutes int) Option {
	return func(o *options) {
		o.readTimeTolerance = &minutes
	}
}

// WithDisabledRules turns off lint rules by name.
func WithDisabledRules(rules ...string) Option {
	return func(o *options) {
		o.disabledRules = append(o.disabledRules, rules...)
	}
}

// WithWatcherErrorHandler registers a callback for errors raised inside the
// Watch loop, which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}
