package lint

import (
	"fmt"
	"sort"
)

// Severity classifies a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is a single problem reported by a rule.
type Finding struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Line     int      `json:"line"`
	Message  string   `json:"message"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%d: %s [%s] %s", f.Line, f.Severity, f.Rule, f.Message)
}

// Report collects the findings for one file.
type Report struct {
	Path     string    `json:"path"`
	ReadTime int       `json:"estimated_readtime"`
	Findings []Finding `json:"findings"`
}

// Count returns the number of findings with the given severity.
func (r Report) Count(sev Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == sev {
			n++
		}
	}
	return n
}

// HasErrors reports whether any finding is an error.
func (r Report) HasErrors() bool {
	return r.Count(SeverityError) > 0
}

// Failed reports whether the report should fail a run.
// In strict mode warnings fail too.
func (r Report) Failed(strict bool) bool {
	if strict {
		return len(r.Findings) > 0
	}
	return r.HasErrors()
}

func (r *Report) sort() {
	sort.SliceStable(r.Findings, func(i, j int) bool {
		a, b := r.Findings[i], r.Findings[j]
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Rule < b.Rule
	})
}
