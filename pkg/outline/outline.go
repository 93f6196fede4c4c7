// Package outline extracts the structure of a post body: headings, word
// count, images, links, and footnotes.
package outline

import (
	"bytes"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// DefaultWordsPerMinute is the reading speed used when none is configured.
const DefaultWordsPerMinute = 200

// Heading is a section title found in the body.
type Heading struct {
	Level  int    `json:"level"`
	Text   string `json:"text"`
	ID     string `json:"id"`
	Number string `json:"number,omitempty"`
	Line   int    `json:"line"`
}

// Ref is a reference found in the body: an image, a link, or a footnote label.
// Line is 1-based and relative to the body.
type Ref struct {
	Destination string `json:"destination"`
	Text        string `json:"text,omitempty"`
	Title       string `json:"title,omitempty"`
	Line        int    `json:"line"`
}

// Outline is the structural summary of a body.
type Outline struct {
	Headings     []Heading `json:"headings"`
	Words        int       `json:"words"`
	Images       []Ref     `json:"images"`
	Links        []Ref     `json:"links"`
	FootnoteRefs []Ref     `json:"footnote_refs"`
	FootnoteDefs []Ref     `json:"footnote_defs"`

	// NonBlank is set when the body holds anything besides whitespace, even
	// if none of it counts as words (a code listing, display math).
	NonBlank bool `json:"-"`
}

var engine = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Footnote),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

var (
	reDisplayMath = regexp.MustCompile(`(?s)\$\$.+?\$\$`)
	reInlineMath  = regexp.MustCompile(`\$[^$\n]+?\$`)
	reFootnoteDef = regexp.MustCompile(`^ {0,3}\[\^([^\]\s]+)\]:`)
	reFootnoteRef = regexp.MustCompile(`\[\^([^\]\s]+)\]`)
)

// Analyze parses body and collects its outline.
// When autonumber is set, headings receive hierarchical section numbers.
func Analyze(body []byte, autonumber bool) Outline {
	doc := engine.Parser().Parse(text.NewReader(body))
	lines := newLineIndex(body)

	var (
		out    Outline
		words  bytes.Buffer
		masked = append([]byte(nil), body...)
	)

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				words.WriteByte('\n')
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			blank(masked, n.Lines())
			return ast.WalkSkipChildren, nil

		case *ast.CodeSpan:
			for c := node.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					blankSegment(masked, t.Segment)
				}
			}
			return ast.WalkSkipChildren, nil

		case *ast.Heading:
			h := Heading{
				Level: node.Level,
				Text:  plainText(node, body),
				Line:  lines.at(blockStart(node)),
			}
			if id, ok := node.AttributeString("id"); ok {
				if b, ok := id.([]byte); ok {
					h.ID = string(b)
				}
			}
			out.Headings = append(out.Headings, h)

		case *ast.Image:
			out.Images = append(out.Images, Ref{
				Destination: string(node.Destination),
				Text:        plainText(node, body),
				Title:       string(node.Title),
				Line:        lines.at(locate(body, node, node.Destination)),
			})
			return ast.WalkSkipChildren, nil

		case *ast.Link:
			out.Links = append(out.Links, Ref{
				Destination: string(node.Destination),
				Text:        plainText(node, body),
				Title:       string(node.Title),
				Line:        lines.at(locate(body, node, node.Destination)),
			})

		case *ast.Text:
			words.Write(node.Segment.Value(body))
			if node.SoftLineBreak() || node.HardLineBreak() {
				words.WriteByte('\n')
			}

		case *ast.String:
			words.Write(node.Value)
		}
		return ast.WalkContinue, nil
	})

	out.Words = countWords(words.String())
	out.NonBlank = len(bytes.TrimSpace(body)) > 0
	blankMath(masked)
	out.FootnoteDefs, out.FootnoteRefs = scanFootnotes(masked)
	if autonumber {
		Number(out.Headings)
	}
	return out
}

// ReadTime estimates minutes of reading at wpm words per minute.
// Blank bodies take zero minutes; anything else takes at least one.
func (o Outline) ReadTime(wpm int) int {
	if o.Words == 0 && !o.NonBlank {
		return 0
	}
	if wpm <= 0 {
		wpm = DefaultWordsPerMinute
	}
	return int(math.Max(1, math.Ceil(float64(o.Words)/float64(wpm))))
}

// Number assigns hierarchical section numbers ("1", "1.1", "2") to headings.
// Depth is measured from the shallowest level present; skipped levels count as 0.
// Headings before the first shallowest one are measured from the first heading,
// so "## A" followed by "# B" numbers as "1" and "2".
func Number(headings []Heading) {
	if len(headings) == 0 {
		return
	}
	lead := headings[0].Level
	top := lead
	for _, h := range headings {
		if h.Level < top {
			top = h.Level
		}
	}

	var counters [6]int
	reached := lead == top
	for i := range headings {
		level := headings[i].Level
		if level == top {
			reached = true
		}
		depth := level - top
		if !reached {
			depth = max(0, level-lead)
		}
		counters[depth]++
		for j := depth + 1; j < len(counters); j++ {
			counters[j] = 0
		}

		parts := make([]string, depth+1)
		for j := 0; j <= depth; j++ {
			parts[j] = strconv.Itoa(counters[j])
		}
		headings[i].Number = strings.Join(parts, ".")
	}
}

// TOC renders the headings as a nested Markdown list of anchor links.
func (o Outline) TOC() string {
	if len(o.Headings) == 0 {
		return ""
	}
	top := o.Headings[0].Level
	for _, h := range o.Headings {
		if h.Level < top {
			top = h.Level
		}
	}

	var b strings.Builder
	for _, h := range o.Headings {
		b.WriteString(strings.Repeat("  ", h.Level-top))
		b.WriteString("- [")
		if h.Number != "" {
			b.WriteString(h.Number)
			b.WriteByte(' ')
		}
		b.WriteString(h.Text)
		b.WriteString("](#")
		b.WriteString(h.ID)
		b.WriteString(")\n")
	}
	return b.String()
}

func scanFootnotes(src []byte) (defs, refs []Ref) {
	for i, line := range strings.Split(string(src), "\n") {
		lineNo := i + 1
		rest := line
		offset := 0
		if m := reFootnoteDef.FindStringSubmatchIndex(line); m != nil {
			defs = append(defs, Ref{Destination: line[m[2]:m[3]], Line: lineNo})
			offset = m[1]
			rest = line[offset:]
		}
		for _, m := range reFootnoteRef.FindAllStringSubmatch(rest, -1) {
			refs = append(refs, Ref{Destination: m[1], Line: lineNo})
		}
	}
	return defs, refs
}

func countWords(s string) int {
	s = reDisplayMath.ReplaceAllString(s, " ")
	s = reInlineMath.ReplaceAllString(s, " ")

	n := 0
	for _, f := range strings.Fields(s) {
		if strings.IndexFunc(f, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) >= 0 {
			n++
		}
	}
	return n
}

func plainText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// blockStart returns the source offset of the closest block with lines.
func blockStart(n ast.Node) int {
	for p := n; p != nil; p = p.Parent() {
		if p.Type() == ast.TypeBlock && p.Lines().Len() > 0 {
			return p.Lines().At(0).Start
		}
	}
	return 0
}

// locate finds needle at or after the start of n's enclosing block.
func locate(src []byte, n ast.Node, needle []byte) int {
	start := blockStart(n)
	if len(needle) == 0 || start >= len(src) {
		return start
	}
	if i := bytes.Index(src[start:], needle); i >= 0 {
		return start + i
	}
	return start
}

func blank(src []byte, segs *text.Segments) {
	for i := 0; i < segs.Len(); i++ {
		blankSegment(src, segs.At(i))
	}
}

func blankSegment(src []byte, seg text.Segment) {
	for i := seg.Start; i < seg.Stop && i < len(src); i++ {
		if src[i] != '\n' {
			src[i] = ' '
		}
	}
}

// blankMath hides display and inline math so "$a[^b]$" is not read as a
// footnote reference. Offsets and line breaks are preserved.
func blankMath(src []byte) {
	for _, re := range []*regexp.Regexp{reDisplayMath, reInlineMath} {
		for _, loc := range re.FindAllIndex(src, -1) {
			blankSegment(src, text.NewSegment(loc[0], loc[1]))
		}
	}
}

type lineIndex []int

func newLineIndex(src []byte) lineIndex {
	idx := lineIndex{0}
	for i, c := range src {
		if c == '\n' {
			idx = append(idx, i+1)
		}
	}
	return idx
}

// at converts a byte offset into a 1-based line number.
func (l lineIndex) at(offset int) int {
	return sort.Search(len(l), func(i int) bool { return l[i] > offset })
}
