// Package lint checks post sources for structural problems: malformed or
// incomplete front matter, dangling footnotes, missing images and linked
// artifacts, and stale read-time estimates.
package lint

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/quill/pkg/codec"
	"github.com/aretw0/quill/pkg/core"
	"github.com/aretw0/quill/pkg/outline"
)

// Rule names.
const (
	RuleParse       = "parse"
	RuleFrontMatter = "frontmatter"
	RuleFootnotes   = "footnotes"
	RuleImages      = "images"
	RuleLinks       = "links"
	RuleReadTime    = "readtime"
	RuleHeadings    = "headings"
)

// Rules lists every rule in the order they run.
var Rules = []string{RuleParse, RuleFrontMatter, RuleFootnotes, RuleImages, RuleLinks, RuleReadTime, RuleHeadings}

// Config tunes a Linter.
type Config struct {
	// AssetRoot resolves absolute image paths such as "/images/set.png".
	AssetRoot string
	// WordsPerMinute drives the read-time estimate.
	WordsPerMinute int
	// ReadTimeTolerance is how many minutes the declared readtime may drift.
	ReadTimeTolerance int
	// Disable turns off rules by name. The parse rule cannot be disabled.
	Disable []string
	Logger  *slog.Logger
}

// Linter runs the rule set over post sources. It is safe for concurrent use.
type Linter struct {
	cfg      Config
	disabled map[string]bool
	logger   *slog.Logger
}

// New creates a Linter.
func New(cfg Config) *Linter {
	if cfg.WordsPerMinute <= 0 {
		cfg.WordsPerMinute = outline.DefaultWordsPerMinute
	}
	if cfg.ReadTimeTolerance < 0 {
		cfg.ReadTimeTolerance = 0
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	disabled := make(map[string]bool, len(cfg.Disable))
	for _, name := range cfg.Disable {
		if name != RuleParse {
			disabled[name] = true
		}
	}

	return &Linter{cfg: cfg, disabled: disabled, logger: logger}
}

// target is the parsed state shared by the rules for one file.
type target struct {
	path    string
	dir     string
	src     []byte
	doc     *codec.Document
	fm      core.FrontMatter
	fmErr   error
	outline outline.Outline
}

// line converts a body-relative line into a file line.
func (t *target) line(bodyLine int) int {
	return t.doc.BodyLine + bodyLine - 1
}

type rule struct {
	name  string
	check func(l *Linter, t *target) []Finding
}

var ruleSet = []rule{
	{RuleFrontMatter, checkFrontMatter},
	{RuleFootnotes, checkFootnotes},
	{RuleImages, checkImages},
	{RuleLinks, checkLinks},
	{RuleReadTime, checkReadTime},
	{RuleHeadings, checkHeadings},
}

// Lint checks src, which was read from path.
func (l *Linter) Lint(ctx context.Context, path string, src []byte) Report {
	report := Report{Path: path}

	doc, err := codec.Split(src)
	if err != nil {
		report.Findings = append(report.Findings, Finding{
			Rule:     RuleParse,
			Severity: SeverityError,
			Line:     1,
			Message:  err.Error(),
		})
		return report
	}

	t := &target{
		path: path,
		dir:  filepath.Dir(path),
		src:  src,
		doc:  doc,
	}
	t.fm, t.fmErr = codec.Decode(doc.Raw)
	t.outline = outline.Analyze([]byte(doc.Body), t.fm.Autonumbering)
	report.ReadTime = t.outline.ReadTime(l.cfg.WordsPerMinute)

	for _, r := range ruleSet {
		if ctx.Err() != nil {
			break
		}
		if l.disabled[r.name] {
			continue
		}
		report.Findings = append(report.Findings, r.check(l, t)...)
	}

	report.sort()
	l.logger.Debug("linted", "path", path, "findings", len(report.Findings))
	return report
}

// LintFile reads and lints a single file.
func (l *Linter) LintFile(ctx context.Context, path string) (Report, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return l.Lint(ctx, path, src), nil
}

// LintFiles lints paths concurrently with at most workers files in flight.
// Reports come back in the order of paths.
func (l *Linter) LintFiles(ctx context.Context, paths []string, workers int) ([]Report, error) {
	if workers <= 0 {
		workers = 4
	}
	reports := make([]Report, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range paths {
		g.Go(func() error {
			r, err := l.LintFile(ctx, p)
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
