package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/quill"
	"github.com/aretw0/quill/pkg/core"
)

var (
	verbose  bool
	rootDir  string
	postsDir string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Manage and lint a directory of Markdown blog posts",
	Long: `Quill treats a directory of Markdown posts with YAML front matter as a
small blog workspace. It scaffolds and publishes posts, checks them for
broken front matter, footnotes, images and stale read times, and renders
the Mandelbrot figures some posts embed.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "Project root (default: nearest directory with quill.yaml, .quill or .git)")
	rootCmd.PersistentFlags().StringVar(&postsDir, "posts", "", "Posts directory, overriding quill.yaml")
}

// projectRoot returns --root, the discovered project root, or the working directory.
func projectRoot() string {
	if rootDir != "" {
		return rootDir
	}
	wd, err := os.Getwd()
	if err != nil {
		fatal("getting working directory", err)
	}
	if root, err := quill.FindRoot(wd); err == nil {
		return root
	}
	return wd
}

func projectOptions(extra ...quill.Option) []quill.Option {
	opts := []quill.Option{quill.WithLogger(slog.Default())}
	if postsDir != "" {
		opts = append(opts, quill.WithPostsDir(postsDir))
	}
	return append(opts, extra...)
}

func openService(extra ...quill.Option) *core.Service {
	svc, err := quill.New(projectRoot(), projectOptions(append([]quill.Option{quill.WithMustExist(true)}, extra...)...)...)
	if err != nil {
		fatal("opening posts", err)
	}
	return svc
}
