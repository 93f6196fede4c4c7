package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/aretw0/quill"
	"github.com/aretw0/quill/pkg/adapters/fs"
	"github.com/aretw0/quill/pkg/adapters/lifecycle"
	"github.com/aretw0/quill/pkg/core"
	"github.com/aretw0/quill/pkg/lint"
)

var watchPattern string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-lint posts as they change",
	Long: `Watch the posts directory and lint each post when it is created or
modified. Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		root := projectRoot()
		svc := openService(quill.WithWatcherErrorHandler(func(err error) {
			slog.Error("watcher error", "error", err)
		}))
		repo, ok := svc.Repository().(*fs.Repository)
		if !ok {
			fatal("watching", core.ErrNotWatchable)
		}

		linter, err := quill.NewLinter(root, projectOptions()...)
		if err != nil {
			fatal("configuring linter", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		events, err := svc.Watch(ctx, watchPattern)
		if err != nil {
			fatal("starting watcher", err)
		}

		source := lifecycle.NewSource(events)
		if err := source.Start(ctx); err != nil {
			fatal("starting watcher", err)
		}

		fmt.Printf("Watching %s (Ctrl+C to stop)\n", repo.Path)
		for e := range source.Events() {
			ev, ok := e.(core.Event)
			if !ok {
				continue
			}
			handleChange(ctx, repo, linter, ev)
		}
	},
}

func handleChange(ctx context.Context, repo *fs.Repository, linter *lint.Linter, ev core.Event) {
	if ev.Type == core.EventDelete {
		fmt.Printf("%s removed\n", ev.ID)
		return
	}

	path, err := repo.FilePath(ev.ID)
	if err != nil {
		slog.Warn("cannot resolve post", "id", ev.ID, "error", err)
		return
	}
	report, err := linter.LintFile(ctx, path)
	if err != nil {
		slog.Warn("cannot lint post", "id", ev.ID, "error", err)
		return
	}

	if len(report.Findings) == 0 {
		fmt.Printf("%s ok\n", ev.ID)
		return
	}
	for _, f := range report.Findings {
		fmt.Printf("%s:%s\n", report.Path, f)
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchPattern, "pattern", "", "Only watch post IDs matching this glob")
}
