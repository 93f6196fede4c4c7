// Package fs stores posts as Markdown files in a directory tree.
package fs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/quill/pkg/codec"
	"github.com/aretw0/quill/pkg/core"
)

// Ext is the file extension of post sources.
const Ext = ".md"

// DefaultSystemDir holds the index cache, relative to the posts root.
const DefaultSystemDir = ".quill"

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path      string
	MustExist bool
	ReadOnly  bool
	SystemDir string // e.g. ".quill"
	Logger    *slog.Logger
	// ErrorHandler receives watcher failures that would otherwise only be logged.
	ErrorHandler func(error)
}

// Repository implements core.Repository on top of the filesystem.
type Repository struct {
	Path   string
	config Config
	cache  *cache

	mu            sync.RWMutex
	watcherActive bool
	lastEvent     *time.Time
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.SystemDir == "" {
		config.SystemDir = DefaultSystemDir
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Repository{
		Path:   config.Path,
		config: config,
		cache:  newCache(config.Path, config.SystemDir),
	}
}

// Initialize checks or creates the posts directory and loads the index cache.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist || r.config.ReadOnly {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("posts path does not exist: %s", r.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("posts path is not a directory: %s", r.Path)
		}
	} else if err := os.MkdirAll(r.Path, 0755); err != nil {
		return fmt.Errorf("failed to create posts directory: %w", err)
	}

	return r.cache.Load()
}

// Get reads and parses a post.
func (r *Repository) Get(ctx context.Context, id string) (core.Post, error) {
	id, err := normalizeID(id)
	if err != nil {
		return core.Post{}, err
	}
	filename := r.filename(id)

	data, err := os.ReadFile(filename)
	if errors.Is(err, iofs.ErrNotExist) {
		return core.Post{}, fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	if err != nil {
		return core.Post{}, fmt.Errorf("failed to read post %s: %w", id, err)
	}
	info, err := os.Stat(filename)
	if err != nil {
		return core.Post{}, err
	}

	fm, body, err := codec.Parse(bytes.NewReader(data))
	if err != nil {
		return core.Post{}, fmt.Errorf("failed to parse post %s: %w", id, err)
	}

	return core.Post{
		ID:          id,
		FrontMatter: fm,
		Body:        body,
		Path:        filename,
		ModTime:     info.ModTime(),
	}, nil
}

// List walks the posts tree and returns post summaries: front matter and
// location, without bodies. Hidden directories are skipped. Posts whose front
// matter cannot be split are logged and left out, and posts with mistyped
// fields are listed with what could be decoded. The linter reports both.
func (r *Repository) List(ctx context.Context, pattern string) ([]core.Post, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}

	var posts []core.Post
	seen := make(map[string]bool)

	err := filepath.WalkDir(r.Path, func(p string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if p != r.Path && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(p) != Ext || isTempFile(p) {
			return nil
		}

		rel, err := filepath.Rel(r.Path, p)
		if err != nil {
			return err
		}
		relSlash := filepath.ToSlash(rel)
		id := strings.TrimSuffix(relSlash, Ext)
		seen[relSlash] = true

		if pattern != "" {
			if ok, _ := doublestar.Match(pattern, id); !ok {
				return nil
			}
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		entry, ok := r.cache.Get(relSlash, info.ModTime())
		if !ok {
			f, err := os.Open(p)
			if err != nil {
				return err
			}
			fm, _, perr := codec.Parse(f)
			f.Close()
			var fieldErrs codec.FieldErrors
			switch {
			case errors.As(perr, &fieldErrs):
				r.config.Logger.Warn("post has invalid front matter fields", "id", id, "error", perr)
			case perr != nil:
				r.config.Logger.Warn("skipping unparseable post", "id", id, "error", perr)
				return nil
			}
			entry = &indexEntry{ID: id, FrontMatter: fm, LastModified: info.ModTime()}
			r.cache.Set(relSlash, entry)
		}

		posts = append(posts, core.Post{
			ID:          id,
			FrontMatter: entry.FrontMatter,
			Path:        p,
			ModTime:     info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	if pattern == "" {
		r.cache.Prune(seen)
	}
	if !r.config.ReadOnly {
		if err := r.cache.Save(); err != nil {
			r.config.Logger.Warn("failed to save index cache", "error", err)
		}
	}
	return posts, nil
}

// Save serializes a post and writes it atomically.
func (r *Repository) Save(ctx context.Context, p core.Post) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	id, err := normalizeID(p.ID)
	if err != nil {
		return err
	}

	data, err := codec.Serialize(p)
	if err != nil {
		return fmt.Errorf("failed to serialize post %s: %w", id, err)
	}
	if err := atomicWrite(r.filename(id), data, 0644); err != nil {
		return err
	}

	r.cache.Delete(id + Ext)
	r.config.Logger.Debug("post saved", "id", id)
	return nil
}

// Delete removes a post file.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	id, err := normalizeID(id)
	if err != nil {
		return err
	}

	if err := os.Remove(r.filename(id)); err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return fmt.Errorf("%w: %s", core.ErrNotFound, id)
		}
		return fmt.Errorf("failed to delete post %s: %w", id, err)
	}

	r.cache.Delete(id + Ext)
	r.config.Logger.Debug("post deleted", "id", id)
	return nil
}

// FilePath returns the source file of the post with the given ID.
func (r *Repository) FilePath(id string) (string, error) {
	id, err := normalizeID(id)
	if err != nil {
		return "", err
	}
	return r.filename(id), nil
}

func (r *Repository) filename(id string) string {
	return filepath.Join(r.Path, filepath.FromSlash(id)+Ext)
}

// resolveID maps an absolute file path back to a post ID.
func (r *Repository) resolveID(p string) (string, error) {
	rel, err := filepath.Rel(r.Path, p)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%s is outside the posts root", p)
	}
	return strings.TrimSuffix(rel, Ext), nil
}

// normalizeID cleans an ID and rejects ones that escape the posts root.
// A trailing ".md" is accepted and stripped.
func normalizeID(id string) (string, error) {
	id = strings.TrimSpace(filepath.ToSlash(id))
	id = strings.TrimSuffix(id, Ext)
	if id == "" {
		return "", core.ErrInvalidID
	}
	clean := path.Clean(id)
	if path.IsAbs(clean) || clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q escapes the posts root", core.ErrInvalidID, id)
	}
	return clean, nil
}

var _ core.Repository = (*Repository)(nil)
var _ core.Watchable = (*Repository)(nil)
