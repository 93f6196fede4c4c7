package quill

import (
	"log/slog"

	"github.com/aretw0/quill/internal/platform"
	"github.com/aretw0/quill/pkg/core"
	"github.com/aretw0/quill/pkg/lint"
)

// --- Configuration ---

// Option defines a functional option for configuring quill.
type Option = platform.Option

// Config is the content of quill.yaml.
type Config = platform.Config

// Settings is the effective configuration after options are applied.
type Settings = platform.Settings

// ConfigFile is the name of the optional project file.
const ConfigFile = platform.ConfigFile

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository allows injecting a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithPostsDir overrides the posts directory.
func WithPostsDir(dir string) Option {
	return platform.WithPostsDir(dir)
}

// WithAssetsDir overrides the asset root used for absolute image paths.
func WithAssetsDir(dir string) Option {
	return platform.WithAssetsDir(dir)
}

// WithSystemDir sets the hidden directory name holding the index cache.
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithReadOnly enables read-only mode.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithMustExist ensures the posts directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithWordsPerMinute sets the reading speed for read-time estimates.
func WithWordsPerMinute(wpm int) Option {
	return platform.WithWordsPerMinute(wpm)
}

// WithReadTimeTolerance sets the tolerated readtime drift in minutes.
func WithReadTimeTolerance(minutes int) Option {
	return platform.WithReadTimeTolerance(minutes)
}

// WithDisabledRules turns off lint rules by name.
func WithDisabledRules(rules ...string) Option {
	return platform.WithDisabledRules(rules...)
}

// WithWatcherErrorHandler registers a callback for watcher failures.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New creates a post service for the project at root.
func New(root string, opts ...Option) (*core.Service, error) {
	return platform.New(root, opts...)
}

// Init opens the posts repository explicitly.
func Init(root string, opts ...Option) (core.Repository, error) {
	return platform.Init(root, opts...)
}

// NewLinter creates a linter configured for the project at root.
func NewLinter(root string, opts ...Option) (*lint.Linter, error) {
	return platform.NewLinter(root, opts...)
}

// --- Utils ---

// FindRoot looks upwards for a quill.yaml, .quill or .git marker.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// LoadConfig reads quill.yaml from root, falling back to defaults.
func LoadConfig(root string) (Config, error) {
	return platform.LoadConfig(root)
}

// DefaultConfig returns the configuration used when quill.yaml is absent.
func DefaultConfig() Config {
	return platform.DefaultConfig()
}

// WriteConfig writes cfg as root/quill.yaml. An existing file is left untouched
// and reported as an error.
func WriteConfig(root string, cfg Config) error {
	return platform.WriteConfig(root, cfg)
}

// Resolve returns the effective settings for the project at root.
func Resolve(root string, opts ...Option) (Settings, error) {
	return platform.Resolve(root, opts...)
}
