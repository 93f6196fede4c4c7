package lint

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/aretw0/quill/pkg/codec"
	"github.com/aretw0/quill/pkg/core"
	"github.com/aretw0/quill/pkg/outline"
)

// MaxReadTime bounds the declared readtime, in minutes.
const MaxReadTime = 600

// Keys that default to false or zero when absent. Missing ones are warned about.
var optionalKeys = []string{codec.KeyTOC, codec.KeyReadTime, codec.KeyAutonumbering, codec.KeyDraft}

var reScheme = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)

func notBlank(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("must not be blank")
	}
	return nil
}

func validateFrontMatter(fm core.FrontMatter) error {
	return validation.ValidateStruct(&fm,
		validation.Field(&fm.Title, validation.Required, validation.By(notBlank)),
		validation.Field(&fm.Date, validation.Required),
		validation.Field(&fm.ReadTime, validation.Min(0), validation.Max(MaxReadTime)),
	)
}

func checkFrontMatter(l *Linter, t *target) []Finding {
	if !t.doc.HasFrontMatter {
		return []Finding{{
			Rule:     RuleFrontMatter,
			Severity: SeverityError,
			Line:     1,
			Message:  "missing front matter",
		}}
	}

	var findings []Finding
	seen := map[string]bool{}

	var typeErrs codec.FieldErrors
	if errors.As(t.fmErr, &typeErrs) {
		for key, err := range typeErrs {
			seen[key] = true
			findings = append(findings, Finding{
				Rule:     RuleFrontMatter,
				Severity: SeverityError,
				Line:     keyLine(t, key),
				Message:  fmt.Sprintf("%s: %v", key, err),
			})
		}
	}

	var verrs validation.Errors
	if err := validateFrontMatter(t.fm); errors.As(err, &verrs) {
		for key, err := range verrs {
			if seen[key] {
				continue
			}
			seen[key] = true
			findings = append(findings, Finding{
				Rule:     RuleFrontMatter,
				Severity: SeverityError,
				Line:     keyLine(t, key),
				Message:  fmt.Sprintf("%s: %v", key, err),
			})
		}
	}

	for _, key := range optionalKeys {
		if _, ok := t.doc.Raw[key]; ok || seen[key] {
			continue
		}
		findings = append(findings, Finding{
			Rule:     RuleFrontMatter,
			Severity: SeverityWarning,
			Line:     1,
			Message:  fmt.Sprintf("%s: not set, defaults apply", key),
		})
	}
	return findings
}

// keyLine finds the front-matter line that declares key.
func keyLine(t *target, key string) int {
	lines := strings.Split(string(t.src), "\n")
	limit := min(t.doc.BodyLine-1, len(lines))
	for i := 0; i < limit; i++ {
		line := strings.TrimLeft(strings.TrimSpace(lines[i]), `"'`)
		rest, ok := strings.CutPrefix(line, key)
		if !ok {
			continue
		}
		rest = strings.TrimLeft(rest, `"' `)
		if strings.HasPrefix(rest, ":") || strings.HasPrefix(rest, "=") {
			return i + 1
		}
	}
	return 1
}

func checkFootnotes(l *Linter, t *target) []Finding {
	var findings []Finding

	defined := map[string]outline.Ref{}
	for _, def := range t.outline.FootnoteDefs {
		if first, dup := defined[def.Destination]; dup {
			findings = append(findings, Finding{
				Rule:     RuleFootnotes,
				Severity: SeverityError,
				Line:     t.line(def.Line),
				Message:  fmt.Sprintf("footnote [^%s] defined again (first on line %d)", def.Destination, t.line(first.Line)),
			})
			continue
		}
		defined[def.Destination] = def
	}

	used := map[string]bool{}
	for _, ref := range t.outline.FootnoteRefs {
		used[ref.Destination] = true
		if _, ok := defined[ref.Destination]; !ok {
			findings = append(findings, Finding{
				Rule:     RuleFootnotes,
				Severity: SeverityError,
				Line:     t.line(ref.Line),
				Message:  fmt.Sprintf("footnote [^%s] has no definition", ref.Destination),
			})
		}
	}

	labels := make([]string, 0, len(defined))
	for label := range defined {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		if !used[label] {
			findings = append(findings, Finding{
				Rule:     RuleFootnotes,
				Severity: SeverityWarning,
				Line:     t.line(defined[label].Line),
				Message:  fmt.Sprintf("footnote [^%s] is never referenced", label),
			})
		}
	}
	return findings
}

func checkImages(l *Linter, t *target) []Finding {
	var findings []Finding
	for _, img := range t.outline.Images {
		line := t.line(img.Line)
		if strings.TrimSpace(img.Destination) == "" {
			findings = append(findings, Finding{
				Rule:     RuleImages,
				Severity: SeverityError,
				Line:     line,
				Message:  "image has no source",
			})
			continue
		}
		if img.Text == "" {
			findings = append(findings, Finding{
				Rule:     RuleImages,
				Severity: SeverityWarning,
				Line:     line,
				Message:  fmt.Sprintf("image %s has no alt text", img.Destination),
			})
		}

		local, ok := l.resolveLocal(t, img.Destination)
		if !ok {
			continue
		}
		if _, err := os.Stat(local); err != nil {
			findings = append(findings, Finding{
				Rule:     RuleImages,
				Severity: SeverityError,
				Line:     line,
				Message:  fmt.Sprintf("image %s not found (looked for %s)", img.Destination, local),
			})
		}
	}
	return findings
}

func checkLinks(l *Linter, t *target) []Finding {
	var findings []Finding
	for _, link := range t.outline.Links {
		local, ok := l.resolveLocal(t, link.Destination)
		if !ok {
			continue
		}
		// Only links to artifacts with an extension are checked; bare paths
		// usually point at rendered pages that do not exist in the source tree.
		ext := strings.ToLower(filepath.Ext(local))
		if ext == "" || ext == ".html" || ext == ".htm" {
			continue
		}
		if _, err := os.Stat(local); err != nil {
			findings = append(findings, Finding{
				Rule:     RuleLinks,
				Severity: SeverityError,
				Line:     t.line(link.Line),
				Message:  fmt.Sprintf("linked file %s not found", link.Destination),
			})
		}
	}
	return findings
}

// resolveLocal maps a destination to a filesystem path.
// Remote URLs, data URIs, and pure fragments are not local.
func (l *Linter) resolveLocal(t *target, dest string) (string, bool) {
	dest = strings.TrimSpace(dest)
	if dest == "" || strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "//") || reScheme.MatchString(dest) {
		return "", false
	}

	u, err := url.Parse(dest)
	if err != nil {
		return "", false
	}
	p := u.Path
	if p == "" {
		return "", false
	}

	if strings.HasPrefix(p, "/") {
		root := l.cfg.AssetRoot
		if root == "" {
			root = "."
		}
		return filepath.Join(root, filepath.FromSlash(path.Clean(p))), true
	}
	return filepath.Join(t.dir, filepath.FromSlash(p)), true
}

func checkReadTime(l *Linter, t *target) []Finding {
	declared := t.fm.ReadTime
	if declared <= 0 {
		return nil
	}
	estimate := t.outline.ReadTime(l.cfg.WordsPerMinute)
	diff := declared - estimate
	if diff < 0 {
		diff = -diff
	}
	if diff <= l.cfg.ReadTimeTolerance {
		return nil
	}
	return []Finding{{
		Rule:     RuleReadTime,
		Severity: SeverityWarning,
		Line:     keyLine(t, codec.KeyReadTime),
		Message:  fmt.Sprintf("readtime is %d min but the body reads in about %d min (%d words)", declared, estimate, t.outline.Words),
	}}
}

func checkHeadings(l *Linter, t *target) []Finding {
	if len(t.outline.Headings) > 0 {
		return nil
	}
	var findings []Finding
	if t.fm.TOC {
		findings = append(findings, Finding{
			Rule:     RuleHeadings,
			Severity: SeverityWarning,
			Line:     keyLine(t, codec.KeyTOC),
			Message:  "toc is enabled but the post has no headings",
		})
	}
	if t.fm.Autonumbering {
		findings = append(findings, Finding{
			Rule:     RuleHeadings,
			Severity: SeverityWarning,
			Line:     keyLine(t, codec.KeyAutonumbering),
			Message:  "autonumbering is enabled but the post has no headings",
		})
	}
	return findings
}
