package platform

import (
	"context"

	"github.com/aretw0/quill/pkg/adapters/fs"
	"github.com/aretw0/quill/pkg/core"
	"github.com/aretw0/quill/pkg/lint"
)

// Init resolves the project at root and opens its posts repository.
// An injected repository (WithRepository) is returned as is.
func Init(root string, opts ...Option) (core.Repository, error) {
	o := apply(opts)
	if o.repository != nil {
		return o.repository, nil
	}

	s, err := resolve(root, o)
	if err != nil {
		return nil, err
	}

	repo := fs.NewRepository(fs.Config{
		Path:         s.PostsDir,
		MustExist:    s.MustExist,
		ReadOnly:     s.ReadOnly,
		SystemDir:    s.SystemDir,
		Logger:       o.logger,
		ErrorHandler: o.errorHandler,
	})
	if err := repo.Initialize(context.Background()); err != nil {
		return nil, err
	}

	if o.logger != nil {
		o.logger.Debug("repository opened", "posts", s.PostsDir, "read_only", s.ReadOnly)
	}
	return repo, nil
}

// New opens the project at root and returns a post service.
//
//	svc, err := quill.New(".", quill.WithReadOnly(true))
func New(root string, opts ...Option) (*core.Service, error) {
	repo, err := Init(root, opts...)
	if err != nil {
		return nil, err
	}
	o := apply(opts)
	return core.NewService(repo, o.logger), nil
}

// NewLinter builds a linter configured from quill.yaml and opts.
func NewLinter(root string, opts ...Option) (*lint.Linter, error) {
	o := apply(opts)
	s, err := resolve(root, o)
	if err != nil {
		return nil, err
	}
	return lint.New(lint.Config{
		AssetRoot:         s.AssetsDir,
		WordsPerMinute:    s.WordsPerMinute,
		ReadTimeTolerance: s.ReadTimeTolerance,
		Disable:           o.disabledRules,
		Logger:            o.logger,
	}), nil
}
