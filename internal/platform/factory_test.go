package platform_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quill/internal/platform"
	"github.com/aretw0/quill/pkg/adapters/fs"
	"github.com/aretw0/quill/pkg/core"
)

func TestInit(t *testing.T) {
	t.Run("Creates Posts Directory From Config", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, platform.ConfigFile), []byte("posts: content/posts\n"), 0644))

		repo, err := platform.Init(root)
		require.NoError(t, err)

		fsRepo, ok := repo.(*fs.Repository)
		require.True(t, ok, "expected fs repository")
		assert.Equal(t, filepath.Join(root, "content", "posts"), fsRepo.Path)

		info, err := os.Stat(fsRepo.Path)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("MustExist Fails if Missing", func(t *testing.T) {
		_, err := platform.Init(t.TempDir(), platform.WithPostsDir("missing"), platform.WithMustExist(true))
		assert.Error(t, err)
	})

	t.Run("Injected Repository Wins", func(t *testing.T) {
		injected := fs.NewRepository(fs.Config{Path: "unused"})
		repo, err := platform.Init(t.TempDir(), platform.WithRepository(injected))
		require.NoError(t, err)
		assert.Same(t, injected, repo)
	})

	t.Run("Bad Config Fails", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, platform.ConfigFile), []byte("posts: [\n"), 0644))
		_, err := platform.Init(root)
		assert.Error(t, err)
	})
}

func TestNew_Roundtrip(t *testing.T) {
	root := t.TempDir()
	svc, err := platform.New(root, platform.WithPostsDir("posts"))
	require.NoError(t, err)

	ctx := context.Background()
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	created, err := svc.CreatePost(ctx, "first", "First Post", now)
	require.NoError(t, err)
	assert.True(t, created.Draft)
	assert.FileExists(t, filepath.Join(root, "posts", "first.md"))

	published, err := svc.Publish(ctx, "first", now)
	require.NoError(t, err)
	assert.False(t, published.Draft)

	posts, err := svc.ListPosts(ctx, core.Filter{})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "First Post", posts[0].Title)
}

func TestNew_ReadOnly(t *testing.T) {
	root := t.TempDir()
	svc, err := platform.New(root, platform.WithReadOnly(true))
	require.NoError(t, err)

	_, err = svc.CreatePost(context.Background(), "x", "X", time.Now())
	assert.ErrorIs(t, err, core.ErrReadOnly)
}

func TestNewLinter(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, platform.ConfigFile), []byte("assets: static\n"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "static", "img"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "static", "img", "a.png"), []byte("png"), 0644))

	linter, err := platform.NewLinter(root)
	require.NoError(t, err)

	src := []byte("---\ntitle: T\ndate: 2024-01-01\ntoc: false\nreadtime: 1\nautonumbering: false\ndraft: false\n---\n\n![alt](/img/a.png)\n")
	report := linter.Lint(context.Background(), filepath.Join(root, "post.md"), src)
	assert.False(t, report.HasErrors(), "%v", report.Findings)
}
