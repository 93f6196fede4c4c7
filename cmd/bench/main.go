package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/aretw0/quill"
	"github.com/aretw0/quill/pkg/core"
)

const postTemplate = `---
title: Post %d
date: %s
toc: true
readtime: 1
autonumbering: true
draft: false
tags: [benchmark]
---

# Introduction

This is benchmark post %d with a footnote.[^1]

## Details

![figure](figure.png)

[^1]: A note.
`

func main() {
	count := flag.Int("count", 1000, "Number of posts to generate")
	keep := flag.Bool("keep", false, "Keep the benchmark directory after running")
	workers := flag.Int("workers", runtime.NumCPU(), "Lint workers")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "quill_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	fmt.Printf("Generating %d posts in %s...\n", *count, benchDir)
	startGen := time.Now()
	if err := os.WriteFile(filepath.Join(benchDir, "figure.png"), []byte("png"), 0644); err != nil {
		panic(err)
	}
	paths := make([]string, 0, *count)
	for i := 0; i < *count; i++ {
		content := fmt.Sprintf(postTemplate, i, time.Now().Format(time.DateOnly), i)
		filename := filepath.Join(benchDir, fmt.Sprintf("post_%d.md", i))
		if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
			panic(err)
		}
		paths = append(paths, filename)
	}
	fmt.Printf("Generation took: %v\n", time.Since(startGen))

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx := context.Background()

	// Each run gets a fresh service so the warm run reads the persisted index.
	list := func(label string) time.Duration {
		svc, err := quill.New(benchDir, quill.WithLogger(logger))
		if err != nil {
			panic(err)
		}
		start := time.Now()
		posts, err := svc.ListPosts(ctx, core.Filter{IncludeDrafts: true})
		if err != nil {
			panic(err)
		}
		d := time.Since(start)
		fmt.Printf("List (%s): %v (Items: %d)\n", label, d, len(posts))
		return d
	}

	cold := list("cold")
	warm := list("warm")

	linter, err := quill.NewLinter(benchDir, quill.WithLogger(logger))
	if err != nil {
		panic(err)
	}
	startLint := time.Now()
	reports, err := linter.LintFiles(ctx, paths, *workers)
	if err != nil {
		panic(err)
	}
	lintDur := time.Since(startLint)

	failed := 0
	for _, r := range reports {
		if r.HasErrors() {
			failed++
		}
	}

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d posts):\n", *count)
	fmt.Printf("  List cold: %v\n", cold)
	fmt.Printf("  List warm: %v\n", warm)
	fmt.Printf("  Lint (%d workers): %v, %d with errors\n", *workers, lintDur, failed)
	fmt.Printf("--------------------------------------------------\n")
}
