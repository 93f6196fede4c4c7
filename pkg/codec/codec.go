// Package codec reads and writes posts: a front-matter block followed by a
// Markdown body.
//
// Parsing accepts the formats github.com/adrg/frontmatter understands (YAML
// between "---", TOML between "+++", JSON between ";;;"). Serialization always
// writes YAML with a stable key order so rewrites produce small diffs.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/quill/pkg/core"
)

// ErrUnterminated is returned when a front-matter block is opened but never closed.
var ErrUnterminated = errors.New("front matter started but no closing delimiter found")

// Known front-matter keys, in serialization order.
const (
	KeyTitle         = "title"
	KeyDate          = "date"
	KeyTOC           = "toc"
	KeyReadTime      = "readtime"
	KeyAutonumbering = "autonumbering"
	KeyDraft         = "draft"
	KeyTags          = "tags"
)

var knownKeys = []string{KeyTitle, KeyDate, KeyTOC, KeyReadTime, KeyAutonumbering, KeyDraft, KeyTags}

// FieldErrors maps a front-matter key to the type problem found in it.
type FieldErrors map[string]error

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, fe[k]))
	}
	return strings.Join(parts, "; ")
}

// Document is the raw result of splitting a source file.
type Document struct {
	Raw  map[string]any
	Body string
	// BodyLine is the 1-based line of the source on which Body starts.
	BodyLine int
	// HasFrontMatter is false when the source carries no delimited block.
	HasFrontMatter bool
}

// Split separates the front-matter block from the body without interpreting keys.
func Split(src []byte) (*Document, error) {
	opened, end, err := frontMatterBounds(src)
	if err != nil {
		return nil, err
	}

	raw := make(map[string]any)
	if _, err := frontmatter.Parse(bytes.NewReader(src), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse front matter: %w", err)
	}

	// The body keeps any blank separator after the closing delimiter so a
	// Serialize round trip leaves the file layout alone.
	return &Document{
		Raw:            normalize(raw).(map[string]any),
		Body:           string(src[end:]),
		BodyLine:       bytes.Count(src[:end], []byte("\n")) + 1,
		HasFrontMatter: opened,
	}, nil
}

// Parse reads a post source and decodes its front matter.
// A FieldErrors value is returned alongside a best-effort FrontMatter when
// some keys carry the wrong type.
func Parse(r io.Reader) (core.FrontMatter, string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return core.FrontMatter{}, "", err
	}

	doc, err := Split(src)
	if err != nil {
		return core.FrontMatter{}, "", err
	}

	fm, err := Decode(doc.Raw)
	return fm, doc.Body, err
}

// Decode converts raw front matter into the typed schema.
func Decode(raw map[string]any) (core.FrontMatter, error) {
	var fm core.FrontMatter
	errs := FieldErrors{}

	for key, val := range raw {
		if val == nil {
			continue
		}
		var err error
		switch key {
		case KeyTitle:
			fm.Title, err = asString(val)
		case KeyDate:
			fm.Date, err = asTime(val)
		case KeyTOC:
			fm.TOC, err = asBool(val)
		case KeyReadTime:
			fm.ReadTime, err = asInt(val)
			if err == nil && fm.ReadTime < 0 {
				err = errors.New("must not be negative")
			}
		case KeyAutonumbering:
			fm.Autonumbering, err = asBool(val)
		case KeyDraft:
			fm.Draft, err = asBool(val)
		case KeyTags:
			fm.Tags, err = asStrings(val)
		default:
			if fm.Extra == nil {
				fm.Extra = make(map[string]any)
			}
			fm.Extra[key] = val
		}
		if err != nil {
			errs[key] = err
		}
	}

	if len(errs) > 0 {
		return fm, errs
	}
	return fm, nil
}

// Serialize renders a post as YAML front matter followed by its body.
func Serialize(p core.Post) ([]byte, error) {
	fm := p.FrontMatter
	mapping := &yaml.Node{Kind: yaml.MappingNode}

	add := func(key string, val any) error {
		var vn yaml.Node
		if err := vn.Encode(val); err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		mapping.Content = append(mapping.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key},
			&vn,
		)
		return nil
	}

	if err := add(KeyTitle, fm.Title); err != nil {
		return nil, err
	}
	if !fm.Date.IsZero() {
		mapping.Content = append(mapping.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: KeyDate},
			&yaml.Node{Kind: yaml.ScalarNode, Value: FormatDate(fm.Date)},
		)
	}
	fields := []struct {
		key string
		val any
	}{
		{KeyTOC, fm.TOC},
		{KeyReadTime, fm.ReadTime},
		{KeyAutonumbering, fm.Autonumbering},
		{KeyDraft, fm.Draft},
	}
	for _, f := range fields {
		if err := add(f.key, f.val); err != nil {
			return nil, err
		}
	}
	if len(fm.Tags) > 0 {
		if err := add(KeyTags, fm.Tags); err != nil {
			return nil, err
		}
	}

	extras := make([]string, 0, len(fm.Extra))
	for k := range fm.Extra {
		if !isKnown(k) {
			extras = append(extras, k)
		}
	}
	sort.Strings(extras)
	for _, k := range extras {
		if err := add(k, fm.Extra[k]); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(mapping); err != nil {
		return nil, err
	}
	encoder.Close()
	buf.WriteString("---\n")
	buf.WriteString(p.Body)
	return buf.Bytes(), nil
}

// FormatDate writes midnight UTC dates as a bare day and everything else as RFC3339.
func FormatDate(t time.Time) string {
	if t.Location() == time.UTC && t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 -07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

// ParseDate accepts the timestamp spellings commonly found in blog front matter.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// frontMatterBounds reports whether src opens a front-matter block, after any
// leading blank lines, and returns the offset just past its closing delimiter
// line. It fails when the block is never closed.
func frontMatterBounds(src []byte) (opened bool, end int, err error) {
	var closing string
	for pos := 0; pos < len(src); {
		line, next := nextLine(src, pos)
		pos = next
		trimmed := strings.TrimSpace(line)

		if closing == "" {
			switch trimmed {
			case "":
				continue
			case "---", "---yaml":
				closing = "---"
			case "+++":
				closing = "+++"
			case ";;;":
				closing = ";;;"
			default:
				return false, 0, nil
			}
			continue
		}
		if trimmed == closing {
			return true, pos, nil
		}
	}
	if closing == "" {
		return false, 0, nil
	}
	return true, 0, ErrUnterminated
}

func nextLine(src []byte, pos int) (string, int) {
	if i := bytes.IndexByte(src[pos:], '\n'); i >= 0 {
		return string(src[pos : pos+i]), pos + i + 1
	}
	return string(src[pos:]), len(src)
}

func isKnown(key string) bool {
	for _, k := range knownKeys {
		if k == key {
			return true
		}
	}
	return false
}

func asString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case int, int64, float64, bool:
		return fmt.Sprint(s), nil
	default:
		return "", fmt.Errorf("expected text, got %T", v)
	}
}

func asTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		return ParseDate(t)
	default:
		return time.Time{}, fmt.Errorf("expected timestamp, got %T", v)
	}
}

func asBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "yes", "on":
			return true, nil
		case "false", "no", "off":
			return false, nil
		}
	}
	return false, fmt.Errorf("expected true or false, got %v", v)
}

func asInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n == math.Trunc(n) {
			return int(n), nil
		}
	}
	return 0, fmt.Errorf("expected whole number of minutes, got %v", v)
}

func asStrings(v any) ([]string, error) {
	switch l := v.(type) {
	case []string:
		return l, nil
	case string:
		return []string{l}, nil
	case []any:
		out := make([]string, 0, len(l))
		for _, item := range l {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected list of text, found %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected list of text, got %T", v)
}

// normalize turns the map[interface{}]interface{} values produced by the YAML
// v2 decoder into map[string]any so they re-encode cleanly.
func normalize(val any) any {
	switch v := val.(type) {
	case map[string]any:
		m := make(map[string]any, len(v))
		for k, item := range v {
			m[k] = normalize(item)
		}
		return m
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, item := range v {
			m[fmt.Sprint(k)] = normalize(item)
		}
		return m
	case []any:
		l := make([]any, len(v))
		for i, item := range v {
			l[i] = normalize(item)
		}
		return l
	default:
		return v
	}
}
