package lint_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quill/pkg/lint"
)

const validPost = `---
title: Visualizing the Mandelbrot set
date: 2023-03-02
toc: true
readtime: 1
autonumbering: true
draft: false
---
# Iteration

Start at $z_0 = 0$ and repeat $z_{n+1} = z_n^2 + c$.[^1]

![The whole set](set.png)

![Zoomed](/images/zoom.png)

The full [Metapost listing](mandelbrot.pdf) is attached.

[^1]: The sequence escapes once its magnitude exceeds two.
`

func setup(t *testing.T, post string) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "static", "images"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "posts"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "posts", "set.png"), []byte("png"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "posts", "mandelbrot.pdf"), []byte("pdf"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "static", "images", "zoom.png"), []byte("png"), 0644))

	path = filepath.Join(dir, "posts", "mandelbrot.md")
	require.NoError(t, os.WriteFile(path, []byte(post), 0644))
	return dir, path
}

func newLinter(dir string) *lint.Linter {
	return lint.New(lint.Config{
		AssetRoot:         filepath.Join(dir, "static"),
		WordsPerMinute:    200,
		ReadTimeTolerance: 2,
	})
}

func rules(r lint.Report) []string {
	var out []string
	for _, f := range r.Findings {
		out = append(out, string(f.Severity)+":"+f.Rule)
	}
	return out
}

func TestLint_ValidPost(t *testing.T) {
	dir, path := setup(t, validPost)

	report, err := newLinter(dir).LintFile(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, report.Findings, "unexpected findings: %v", report.Findings)
	assert.Equal(t, 1, report.ReadTime)
	assert.False(t, report.Failed(true))
}

func TestLint_Parse(t *testing.T) {
	dir, _ := setup(t, validPost)

	report := newLinter(dir).Lint(context.Background(), "broken.md", []byte("---\ntitle: x\n"))
	require.Len(t, report.Findings, 1)
	assert.Equal(t, lint.RuleParse, report.Findings[0].Rule)
	assert.True(t, report.HasErrors())
}

func TestLint_FrontMatter(t *testing.T) {
	dir, _ := setup(t, validPost)
	l := newLinter(dir)
	ctx := context.Background()

	t.Run("Missing Block", func(t *testing.T) {
		report := l.Lint(ctx, filepath.Join(dir, "posts", "bare.md"), []byte("# Heading\n"))
		assert.Contains(t, rules(report), "error:frontmatter")
	})

	t.Run("Required And Types", func(t *testing.T) {
		src := "---\ntitle: \"  \"\ntoc: maybe\nreadtime: 900\nautonumbering: false\ndraft: true\n---\n# Body\n"
		report := l.Lint(ctx, filepath.Join(dir, "posts", "bad.md"), []byte(src))

		byMessage := map[string]lint.Finding{}
		for _, f := range report.Findings {
			if f.Rule == lint.RuleFrontMatter {
				byMessage[strings.SplitN(f.Message, ":", 2)[0]] = f
			}
		}
		require.Contains(t, byMessage, "title")
		assert.Equal(t, 2, byMessage["title"].Line)
		require.Contains(t, byMessage, "date")
		require.Contains(t, byMessage, "toc")
		assert.Equal(t, 3, byMessage["toc"].Line)
		require.Contains(t, byMessage, "readtime")
		assert.Equal(t, 4, byMessage["readtime"].Line)
		assert.Equal(t, lint.SeverityError, byMessage["readtime"].Severity)
	})

	t.Run("Missing Optional Keys Warn", func(t *testing.T) {
		src := "---\ntitle: Short\ndate: 2023-03-02\n---\nBody.\n"
		report := l.Lint(ctx, filepath.Join(dir, "posts", "short.md"), []byte(src))
		assert.Equal(t, 4, report.Count(lint.SeverityWarning))
		assert.False(t, report.HasErrors())
		assert.True(t, report.Failed(true))
	})
}

func TestLint_Footnotes(t *testing.T) {
	src := `---
title: Notes
date: 2023-03-02
toc: false
readtime: 1
autonumbering: false
draft: false
---
First[^a] and second[^missing].

[^a]: Defined.
[^a]: Defined twice.
[^unused]: Never cited.
`
	dir, path := setup(t, src)
	report, err := newLinter(dir).LintFile(context.Background(), path)
	require.NoError(t, err)

	var got []string
	for _, f := range report.Findings {
		if f.Rule == lint.RuleFootnotes {
			got = append(got, f.String())
		}
	}
	require.Len(t, got, 3, "%v", report.Findings)
	assert.Contains(t, got[0], "9: error [footnotes] footnote [^missing] has no definition")
	assert.Contains(t, got[1], "12: error [footnotes] footnote [^a] defined again")
	assert.Contains(t, got[2], "13: warning [footnotes] footnote [^unused] is never referenced")
}

func TestLint_ImagesAndLinks(t *testing.T) {
	src := `---
title: Assets
date: 2023-03-02
toc: false
readtime: 1
autonumbering: false
draft: false
---
![](set.png)

![Gone](missing.png)

![Remote](https://example.com/set.png)

![Abs missing](/images/none.png)

[paper](lost.pdf) and [page](/about/) and [anchor](#iteration)
`
	dir, path := setup(t, src)
	report, err := newLinter(dir).LintFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"warning:images",
		"error:images",
		"error:images",
		"error:links",
	}, rules(report))
	assert.Equal(t, 9, report.Findings[0].Line)
	assert.Equal(t, 11, report.Findings[1].Line)
	assert.Equal(t, 15, report.Findings[2].Line)
	assert.Equal(t, 17, report.Findings[3].Line)
}

func TestLint_ReadTimeAndHeadings(t *testing.T) {
	src := `---
title: Long claim
date: 2023-03-02
toc: true
readtime: 30
autonumbering: true
draft: false
---
Only a few words here.
`
	dir, path := setup(t, src)
	report, err := newLinter(dir).LintFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"warning:headings",
		"warning:readtime",
		"warning:headings",
	}, rules(report))
	assert.Equal(t, 4, report.Findings[0].Line)
	assert.Equal(t, 5, report.Findings[1].Line)
	assert.False(t, report.Failed(false))
}

func TestLint_Disable(t *testing.T) {
	src := "---\ntitle: x\ndate: 2023-03-02\ntoc: false\nreadtime: 1\nautonumbering: false\ndraft: false\n---\nRef[^nope].\n"
	dir, path := setup(t, src)

	l := lint.New(lint.Config{AssetRoot: dir, Disable: []string{lint.RuleFootnotes}})
	report, err := l.LintFile(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, report.Findings)
}

func TestLintFiles_Order(t *testing.T) {
	dir, path := setup(t, validPost)
	broken := filepath.Join(dir, "posts", "broken.md")
	require.NoError(t, os.WriteFile(broken, []byte("---\n"), 0644))

	reports, err := newLinter(dir).LintFiles(context.Background(), []string{broken, path, broken}, 2)
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, broken, reports[0].Path)
	assert.True(t, reports[0].HasErrors())
	assert.Equal(t, path, reports[1].Path)
	assert.False(t, reports[1].HasErrors())

	_, err = newLinter(dir).LintFiles(context.Background(), []string{filepath.Join(dir, "nope.md")}, 1)
	assert.Error(t, err)
}

func TestLint_LeadingBlankLines(t *testing.T) {
	dir, path := setup(t, "\n\n"+validPost)

	report, err := newLinter(dir).LintFile(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, report.Findings, "unexpected findings: %v", report.Findings)
}

func TestLint_CodeOnlyBody(t *testing.T) {
	src := "---\ntitle: Listing\ndate: 2023-03-02\ntoc: false\nreadtime: 1\nautonumbering: false\ndraft: false\n---\n" +
		"```\nfor i := 0 to 10: draw p;\n```\n"
	dir, path := setup(t, src)

	report, err := lint.New(lint.Config{AssetRoot: dir}).LintFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, report.ReadTime)
	assert.NotContains(t, rules(report), "warning:readtime")
	assert.Empty(t, report.Findings, "unexpected findings: %v", report.Findings)
}
