// Package report renders rule listings and mutation outcomes as table, CSV
// or JSON. CSV and JSON listings are persisted under a reports directory with
// a UTC timestamp in the filename; tables are returned only, never persisted.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bvignesz/Network-automation/domain"
	"github.com/bvignesz/Network-automation/mutate"
)

// Report formats selectable by the caller.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
)

// ValidFormat reports whether the caller picked a known format.
func ValidFormat(f string) bool {
	return f == FormatTable || f == FormatCSV || f == FormatJSON
}

// ReportWriteError means the artifact could not be persisted. The rendered
// result is still handed back to the caller - the file is a side effect
// staged after the render succeeds.
type ReportWriteError struct {
	Path string
	Err  error
}

func (e *ReportWriteError) Error() string {
	return fmt.Sprintf("could not write report %s: %v", e.Path, e.Err)
}

func (e *ReportWriteError) Unwrap() error { return e.Err }

// Renderer writes listing artifacts into Dir, naming them with a UTC
// timestamp at second resolution so runs within one invocation never collide.
// Collisions across concurrent invocations are not handled.
type Renderer struct {
	Dir string
	now func() time.Time
}

// New renderer persisting into dir.
func New(dir string) *Renderer {
	return &Renderer{Dir: dir, now: time.Now}
}

// csvHeader matches the rule fields one to one.
var csvHeader = []string{"id", "name", "state", "action", "order", "rank", "description", "url_categories", "protocols", "locations", "groups", "users"}

// Table renders the listing as fixed-width text, rows in ascending evaluation
// order, with a count summary at the end.
func (r *Renderer) Table(rules []*domain.Rule) string {
	sorted := append([]*domain.Rule(nil), rules...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	var b strings.Builder
	fmt.Fprintf(&b, "%-10s %-40s %-10s %-10s %-6s\n", "ID", "Name", "State", "Action", "Order")
	fmt.Fprintln(&b, strings.Repeat("-", 80))
	enabled := 0
	for _, rule := range sorted {
		if rule.State == domain.StateEnabled {
			enabled++
		}
		fmt.Fprintf(&b, "%-10d %-40s %-10s %-10s %-6d\n", rule.ID, rule.Name, rule.State, rule.Action, rule.Order)
	}
	fmt.Fprintf(&b, "\nTotal Rules: %d, Enabled: %d, Disabled: %d\n", len(rules), enabled, len(rules)-enabled)
	return b.String()
}

// WriteCSV renders the listing as CSV and persists it. The rendered content
// comes back even when the write fails so the caller still has the result.
func (r *Renderer) WriteCSV(rules []*domain.Rule) (content, path string, err error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write(csvHeader)
	for _, rule := range rules {
		w.Write([]string{
			strconv.Itoa(rule.ID),
			rule.Name,
			string(rule.State),
			string(rule.Action),
			strconv.Itoa(rule.Order),
			strconv.Itoa(rule.Rank),
			rule.Description,
			strings.Join(rule.URLCategories, ";"),
			strings.Join(rule.Protocols, ";"),
			joinNamed(rule.Locations),
			joinNamed(rule.Groups),
			joinNamed(rule.Users),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", "", err
	}
	content = buf.String()
	path = r.artifactPath("csv")
	if err := r.persist(path, buf.Bytes()); err != nil {
		return content, "", &ReportWriteError{Path: path, Err: err}
	}
	return content, path, nil
}

// WriteJSON renders the listing as a JSON array and persists it, same
// contract as WriteCSV.
func (r *Renderer) WriteJSON(rules []*domain.Rule) (content []byte, path string, err error) {
	content, err = json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return nil, "", err
	}
	path = r.artifactPath("json")
	if err := r.persist(path, content); err != nil {
		return content, "", &ReportWriteError{Path: path, Err: err}
	}
	return content, path, nil
}

// OutcomeText renders a mutation outcome for humans.
func OutcomeText(out *mutate.Outcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Operation: %s\n", out.Operation)
	fmt.Fprintf(&b, "Rule:      %s (id %d)\n", out.RuleName, out.RuleID)
	fmt.Fprintf(&b, "Field:     %s\n", out.Field)
	fmt.Fprintf(&b, "Previous:  %s\n", out.Previous)
	fmt.Fprintf(&b, "Updated:   %s\n", out.Updated)
	if out.DryRun {
		fmt.Fprintln(&b, "Dry run:   no changes were made")
	}
	if out.Notice != "" {
		fmt.Fprintf(&b, "Notice:    %s\n", out.Notice)
	}
	return b.String()
}

// OutcomeJSON renders a mutation outcome for the orchestration layer.
// Outcomes are printed only, never written to report files.
func OutcomeJSON(out *mutate.Outcome) ([]byte, error) {
	return json.MarshalIndent(out, "", "  ")
}

func (r *Renderer) artifactPath(ext string) string {
	name := fmt.Sprintf("zscaler_rules_%s.%s", r.now().UTC().Format("20060102-150405"), ext)
	return filepath.Join(r.Dir, name)
}

func (r *Renderer) persist(path string, data []byte) error {
	if err := os.MkdirAll(r.Dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func joinNamed(items []domain.NamedItem) string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		if item.Name != "" {
			names = append(names, item.Name)
		} else {
			names = append(names, strconv.Itoa(item.ID))
		}
	}
	return strings.Join(names, ";")
}
