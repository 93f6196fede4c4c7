// Package quill is the composition root for a Markdown blog-post workspace.
//
// A project is a directory of posts, each a Markdown file opening with a
// YAML front-matter block:
//
//	---
//	title: Mandelbrot in MetaPost
//	date: 2020-05-01
//	toc: true
//	readtime: 4
//	autonumbering: false
//	draft: false
//	---
//
// The package wires the post service (pkg/core) to the filesystem adapter
// (pkg/adapters/fs) and the linter (pkg/lint), using settings from an
// optional quill.yaml at the project root.
//
// Usage:
//
//	svc, err := quill.New(".", quill.WithLogger(logger))
//	posts, err := svc.ListPosts(ctx, core.Filter{Tag: "go"})
//
//	linter, err := quill.NewLinter(".")
//	reports, err := linter.LintFiles(ctx, paths, 4)
package quill
