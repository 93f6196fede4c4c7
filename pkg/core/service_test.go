package core_test

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quill/pkg/core"
)

// MockRepository implements core.Repository in memory.
// It deliberately does NOT implement core.Watchable to test the fallback.
type MockRepository struct {
	posts map[string]core.Post
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		posts: make(map[string]core.Post),
	}
}

func (m *MockRepository) Initialize(ctx context.Context) error { return nil }

func (m *MockRepository) Save(ctx context.Context, p core.Post) error {
	m.posts[p.ID] = p
	return nil
}

func (m *MockRepository) Get(ctx context.Context, id string) (core.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return core.Post{}, core.ErrNotFound
	}
	return p, nil
}

func (m *MockRepository) List(ctx context.Context, pattern string) ([]core.Post, error) {
	var posts []core.Post
	for _, p := range m.posts {
		posts = append(posts, p)
	}
	// Sort for deterministic tests
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].ID < posts[j].ID
	})
	return posts, nil
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.posts[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func day(d int) time.Time {
	return time.Date(2023, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestService_CRUD(t *testing.T) {
	repo := NewMockRepository()
	service := core.NewService(repo, nil)
	ctx := context.TODO()

	// 1. Save
	err := service.SavePost(ctx, core.Post{ID: "mandelbrot", Body: "escape time"})
	require.NoError(t, err)

	// 2. Get
	p, err := service.GetPost(ctx, "mandelbrot")
	require.NoError(t, err)
	assert.Equal(t, "escape time", p.Body)

	// 3. Delete
	require.NoError(t, service.DeletePost(ctx, "mandelbrot"))
	_, err = service.GetPost(ctx, "mandelbrot")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestService_EmptyID(t *testing.T) {
	service := core.NewService(NewMockRepository(), nil)
	ctx := context.TODO()

	_, err := service.GetPost(ctx, "")
	assert.ErrorIs(t, err, core.ErrInvalidID)
	assert.ErrorIs(t, service.SavePost(ctx, core.Post{ID: "  "}), core.ErrInvalidID)
	assert.ErrorIs(t, service.DeletePost(ctx, ""), core.ErrInvalidID)
	_, err = service.CreatePost(ctx, "", "x", day(1))
	assert.ErrorIs(t, err, core.ErrInvalidID)
}

func TestService_ListPosts(t *testing.T) {
	repo := NewMockRepository()
	service := core.NewService(repo, nil)
	ctx := context.TODO()

	_ = repo.Save(ctx, core.Post{ID: "a", FrontMatter: core.FrontMatter{Date: day(1), Tags: []string{"math"}}})
	_ = repo.Save(ctx, core.Post{ID: "b", FrontMatter: core.FrontMatter{Date: day(3)}})
	_ = repo.Save(ctx, core.Post{ID: "c", FrontMatter: core.FrontMatter{Date: day(3), Tags: []string{"math"}}})
	_ = repo.Save(ctx, core.Post{ID: "d", FrontMatter: core.FrontMatter{Date: day(5), Draft: true, Tags: []string{"math"}}})

	t.Run("Published Only", func(t *testing.T) {
		posts, err := service.ListPosts(ctx, core.Filter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "c", "a"}, ids(posts))
	})

	t.Run("Include Drafts", func(t *testing.T) {
		posts, err := service.ListPosts(ctx, core.Filter{IncludeDrafts: true})
		require.NoError(t, err)
		assert.Equal(t, []string{"d", "b", "c", "a"}, ids(posts))
	})

	t.Run("Tag", func(t *testing.T) {
		posts, err := service.ListPosts(ctx, core.Filter{Tag: "math"})
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "a"}, ids(posts))
	})
}

func TestService_CreatePost(t *testing.T) {
	repo := NewMockRepository()
	service := core.NewService(repo, nil)
	ctx := context.TODO()

	p, err := service.CreatePost(ctx, "notes/mandelbrot", "Visualizing the Mandelbrot set", day(2))
	require.NoError(t, err)
	assert.True(t, p.FrontMatter.Draft)
	assert.True(t, p.FrontMatter.TOC)
	assert.False(t, p.FrontMatter.Autonumbering)
	assert.Equal(t, 1, p.FrontMatter.ReadTime)
	assert.Equal(t, day(2), p.FrontMatter.Date)

	_, err = service.CreatePost(ctx, "notes/mandelbrot", "again", day(3))
	assert.ErrorIs(t, err, core.ErrAlreadyExists)
}

func TestService_Publish(t *testing.T) {
	repo := NewMockRepository()
	service := core.NewService(repo, nil)
	ctx := context.TODO()

	_ = repo.Save(ctx, core.Post{ID: "undated", FrontMatter: core.FrontMatter{Draft: true}})
	_ = repo.Save(ctx, core.Post{ID: "dated", FrontMatter: core.FrontMatter{Draft: true, Date: day(1)}})

	t.Run("Stamps Missing Date", func(t *testing.T) {
		p, err := service.Publish(ctx, "undated", day(9))
		require.NoError(t, err)
		assert.False(t, p.FrontMatter.Draft)
		assert.Equal(t, day(9), p.FrontMatter.Date)

		stored, _ := repo.Get(ctx, "undated")
		assert.True(t, stored.Published())
	})

	t.Run("Keeps Existing Date", func(t *testing.T) {
		p, err := service.Publish(ctx, "dated", day(9))
		require.NoError(t, err)
		assert.Equal(t, day(1), p.FrontMatter.Date)
	})

	t.Run("Twice", func(t *testing.T) {
		_, err := service.Publish(ctx, "dated", day(10))
		assert.ErrorIs(t, err, core.ErrAlreadyPublished)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := service.Publish(ctx, "nope", day(10))
		assert.True(t, errors.Is(err, core.ErrNotFound))
	})
}

func TestService_Watch_Unsupported(t *testing.T) {
	service := core.NewService(NewMockRepository(), nil)

	_, err := service.Watch(context.TODO(), "")
	assert.ErrorIs(t, err, core.ErrNotWatchable)
}

func TestService_State(t *testing.T) {
	service := core.NewService(NewMockRepository(), nil)

	state, ok := service.State().(core.ServiceState)
	require.True(t, ok)
	assert.Equal(t, "repository", state.RepositoryType)
	assert.False(t, state.Watchable)
	assert.Equal(t, "service", service.ComponentType())
}

func ids(posts []core.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}
