package outline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quill/pkg/outline"
)

const body = `# The set

A point $c$ belongs to the set when $z_{n+1} = z_n^2 + c$ stays bounded.[^bounded]

![Escape-time rendering](mandelbrot.png "Full view")

## Coloring

The [listing](listing.pdf) colors each pixel by iteration count.

` + "```metapost\nfor i=0 upto 100: [^notaref] endfor\n```" + `

Use ` + "`[^inline]`" + ` to cite.

# Results

$$
|z_n| > 2
$$

[^bounded]: Escape radius two suffices.
`

func TestAnalyze(t *testing.T) {
	o := outline.Analyze([]byte(body), true)

	t.Run("Headings", func(t *testing.T) {
		require.Len(t, o.Headings, 3)
		assert.Equal(t, "The set", o.Headings[0].Text)
		assert.Equal(t, 1, o.Headings[0].Line)
		assert.Equal(t, "1", o.Headings[0].Number)
		assert.Equal(t, "Coloring", o.Headings[1].Text)
		assert.Equal(t, "1.1", o.Headings[1].Number)
		assert.Equal(t, "coloring", o.Headings[1].ID)
		assert.Equal(t, "2", o.Headings[2].Number)
	})

	t.Run("Images", func(t *testing.T) {
		require.Len(t, o.Images, 1)
		img := o.Images[0]
		assert.Equal(t, "mandelbrot.png", img.Destination)
		assert.Equal(t, "Escape-time rendering", img.Text)
		assert.Equal(t, "Full view", img.Title)
		assert.Equal(t, 5, img.Line)
	})

	t.Run("Links", func(t *testing.T) {
		require.Len(t, o.Links, 1)
		assert.Equal(t, "listing.pdf", o.Links[0].Destination)
		assert.Equal(t, 9, o.Links[0].Line)
	})

	t.Run("Footnotes Ignore Code", func(t *testing.T) {
		require.Len(t, o.FootnoteDefs, 1)
		assert.Equal(t, "bounded", o.FootnoteDefs[0].Destination)
		require.Len(t, o.FootnoteRefs, 1)
		assert.Equal(t, "bounded", o.FootnoteRefs[0].Destination)
		assert.Equal(t, 3, o.FootnoteRefs[0].Line)
	})

	t.Run("Words Skip Math And Code", func(t *testing.T) {
		// Math spans and the code listing must not be counted.
		assert.Positive(t, o.Words)
		assert.Less(t, o.Words, 40)
	})
}

func TestAnalyze_NoNumbering(t *testing.T) {
	o := outline.Analyze([]byte("## Only\n\n### Child\n"), false)
	require.Len(t, o.Headings, 2)
	assert.Empty(t, o.Headings[0].Number)
}

func TestNumber_RelativeToShallowest(t *testing.T) {
	hs := []outline.Heading{{Level: 2}, {Level: 3}, {Level: 3}, {Level: 2}, {Level: 4}}
	outline.Number(hs)

	var got []string
	for _, h := range hs {
		got = append(got, h.Number)
	}
	assert.Equal(t, []string{"1", "1.1", "1.2", "2", "2.0.1"}, got)
}

func TestNumber_DeeperFirst(t *testing.T) {
	hs := []outline.Heading{{Level: 2}, {Level: 3}, {Level: 1}, {Level: 2}}
	outline.Number(hs)

	var got []string
	for _, h := range hs {
		got = append(got, h.Number)
	}
	assert.Equal(t, []string{"1", "1.1", "2", "2.1"}, got)
}

func TestAnalyze_FootnotesIgnoreMath(t *testing.T) {
	src := "Inline $a[^b]$ and display\n\n$$\nx[^c]\n$$\n\nReal ref.[^d]\n\n[^d]: Defined.\n"
	o := outline.Analyze([]byte(src), false)

	require.Len(t, o.FootnoteRefs, 1)
	assert.Equal(t, "d", o.FootnoteRefs[0].Destination)
	assert.Equal(t, 7, o.FootnoteRefs[0].Line)
}

func TestReadTime(t *testing.T) {
	tests := []struct {
		name  string
		words int
		wpm   int
		want  int
	}{
		{"empty", 0, 200, 0},
		{"short", 10, 200, 1},
		{"exact", 400, 200, 2},
		{"round up", 401, 200, 3},
		{"default speed", 450, 0, 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, outline.Outline{Words: tc.words}.ReadTime(tc.wpm))
		})
	}
}

func TestReadTime_WordlessBody(t *testing.T) {
	for name, body := range map[string]string{
		"code listing": "```\nfor i := 0 to 10: draw p;\n```\n",
		"display math": "$$z_{n+1} = z_n^2 + c$$\n",
	} {
		t.Run(name, func(t *testing.T) {
			o := outline.Analyze([]byte(body), false)
			assert.Equal(t, 0, o.Words)
			assert.Equal(t, 1, o.ReadTime(200))
		})
	}

	assert.Equal(t, 0, outline.Analyze([]byte("\n  \n"), false).ReadTime(200))
}

func TestWords(t *testing.T) {
	o := outline.Analyze([]byte("One *two* three.\n\nFour $x^2$ five.\n"), false)
	assert.Equal(t, 5, o.Words)
}

func TestTOC(t *testing.T) {
	o := outline.Analyze([]byte("# Intro\n\n## Escape time\n"), true)
	assert.Equal(t, "- [1 Intro](#intro)\n  - [1.1 Escape time](#escape-time)\n", o.TOC())
	assert.Empty(t, outline.Outline{}.TOC())
}
