package main

import (
	"context"
	"encoding/json"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/aretw0/quill"
	"github.com/aretw0/quill/pkg/lint"
)

var (
	lintJSON    bool
	lintStrict  bool
	lintDisable []string
	lintWorkers int
)

var lintCmd = &cobra.Command{
	Use:   "lint [paths...]",
	Short: "Check posts for front-matter, footnote, image and read-time problems",
	Long: `Lint the given files, directories or glob patterns (e.g. 'posts/**/*.md').
Without arguments the whole posts directory is checked.

The command exits with status 1 when any error is found, or any warning
under --strict.`,
	Run: func(cmd *cobra.Command, args []string) {
		root := projectRoot()
		opts := projectOptions(quill.WithDisabledRules(lintDisable...))

		if len(args) == 0 {
			settings, err := quill.Resolve(root, opts...)
			if err != nil {
				fatal("loading configuration", err)
			}
			args = []string{settings.PostsDir}
		}

		paths, err := collectPosts(args)
		if err != nil {
			fatal("collecting posts", err)
		}

		linter, err := quill.NewLinter(root, opts...)
		if err != nil {
			fatal("configuring linter", err)
		}

		reports, err := linter.LintFiles(context.Background(), paths, lintWorkers)
		if err != nil {
			fatal("linting", err)
		}

		if lintJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(reports); err != nil {
				fatal("encoding JSON", err)
			}
		} else {
			printReports(reports)
		}

		for _, r := range reports {
			if r.Failed(lintStrict) {
				os.Exit(1)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(lintCmd)
	lintCmd.Flags().BoolVar(&lintJSON, "json", false, "Output in JSON format")
	lintCmd.Flags().BoolVar(&lintStrict, "strict", false, "Treat warnings as failures")
	lintCmd.Flags().StringSliceVar(&lintDisable, "disable", nil, "Rules to skip ("+strings.Join(lint.Rules[1:], ", ")+")")
	lintCmd.Flags().IntVar(&lintWorkers, "workers", runtime.NumCPU(), "Number of files linted concurrently")
}

func printReports(reports []lint.Report) {
	var errs, warns int
	for _, r := range reports {
		for _, f := range r.Findings {
			fmt.Printf("%s:%s\n", r.Path, f)
		}
		errs += r.Count(lint.SeverityError)
		warns += r.Count(lint.SeverityWarning)
	}
	fmt.Printf("%d files, %d errors, %d warnings\n", len(reports), errs, warns)
}

// collectPosts expands directories and glob patterns into Markdown files.
// Hidden directories are skipped. Duplicates are dropped, first occurrence wins.
func collectPosts(args []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, arg := range args {
		var matches []string
		if strings.ContainsAny(arg, "*?[{") {
			m, err := doublestar.FilepathGlob(arg)
			if err != nil {
				return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
			}
			matches = m
		} else {
			matches = []string{arg}
		}

		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				return nil, err
			}
			if !info.IsDir() {
				add(m)
				continue
			}
			err = filepath.WalkDir(m, func(p string, d iofs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					if p != m && strings.HasPrefix(d.Name(), ".") {
						return filepath.SkipDir
					}
					return nil
				}
				if filepath.Ext(p) == ".md" {
					add(p)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
	}
	return paths, nil
}
