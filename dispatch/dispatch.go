// Package dispatch turns the raw operation inputs into one typed operation
// and drives it through the engine: authenticate once, resolve, mutate,
// render. Execution is strictly sequential - one operation, at most one rule,
// per invocation.
package dispatch

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/bvignesz/Network-automation/audit"
	"github.com/bvignesz/Network-automation/domain"
	"github.com/bvignesz/Network-automation/mutate"
	"github.com/bvignesz/Network-automation/repo"
	"github.com/bvignesz/Network-automation/report"
)

// Params are the raw operation inputs as the orchestration layer supplies
// them. They are validated exactly once, here at the boundary.
type Params struct {
	Op       string
	RuleName string
	Category string
	URL      string
	Action   string
	Format   string
}

// Operation is the tagged union over the four supported operations. Each
// variant carries only the fields it needs.
type Operation interface {
	opName() string
}

// List enumerates every rule on the gateway.
type List struct{}

// AddCategory merges a category code into one rule's category set.
type AddCategory struct {
	Rule     string
	Category string
}

// UpdateAction changes one rule's action.
type UpdateAction struct {
	Rule   string
	Action domain.Action
}

// BlockURL sets one rule's action to BLOCK and advises on the manual
// category step for the domain itself.
type BlockURL struct {
	Rule string
	URL  string
}

func (List) opName() string         { return "list" }
func (AddCategory) opName() string  { return "add-category" }
func (UpdateAction) opName() string { return "update-action" }
func (BlockURL) opName() string     { return "block-url" }

// Mutates reports whether the operation changes gateway state.
func Mutates(op Operation) bool {
	_, list := op.(List)
	return !list
}

// Parse validates the inputs and produces the operation variant. Validation
// failures never reach the network.
func Parse(p *Params) (Operation, error) {
	if p.Format != "" && !report.ValidFormat(p.Format) {
		return nil, fmt.Errorf("unknown report format %q - use table, csv or json", p.Format)
	}
	switch p.Op {
	case "list":
		return List{}, nil
	case "add-category":
		if p.RuleName == "" || p.Category == "" {
			return nil, fmt.Errorf("add-category needs both -rule and -category")
		}
		return AddCategory{Rule: p.RuleName, Category: p.Category}, nil
	case "update-action":
		if p.RuleName == "" || p.Action == "" {
			return nil, fmt.Errorf("update-action needs both -rule and -action")
		}
		action, ok := domain.ParseAction(p.Action)
		if !ok {
			return nil, &mutate.InvalidActionError{Action: p.Action}
		}
		return UpdateAction{Rule: p.RuleName, Action: action}, nil
	case "block-url":
		if p.RuleName == "" || p.URL == "" {
			return nil, fmt.Errorf("block-url needs both -rule and -url")
		}
		return BlockURL{Rule: p.RuleName, URL: p.URL}, nil
	case "":
		return nil, fmt.Errorf("no operation given - use -op list/add-category/block-url/update-action")
	default:
		return nil, fmt.Errorf("unknown operation %q", p.Op)
	}
}

// Service is what the engine needs from the gateway client.
type Service interface {
	repo.RuleService
	mutate.Updater
	Authenticate() error
	Logout()
}

// Engine wires the collaborators for one invocation. Trail may be nil when
// auditing is disabled. With DryRun set, mutations are staged and reported
// but never sent to the gateway.
type Engine struct {
	Svc      Service
	Renderer *report.Renderer
	Format   string
	Trail    *audit.Trail
	DryRun   bool
	Out      io.Writer
}

func (e *Engine) mutator() *mutate.Mutator {
	m := mutate.New(e.Svc)
	m.DryRun = e.DryRun
	return m
}

// Run executes one operation end to end and reports its outcome. Every error
// is terminal for the invocation - there is no in-process retry.
func (e *Engine) Run(op Operation) error {
	logrus.WithField("operation", op.opName()).Info("Starting operation")
	if err := e.Svc.Authenticate(); err != nil {
		return err
	}
	defer e.Svc.Logout()
	rules := repo.New(e.Svc)
	switch op := op.(type) {
	case List:
		return e.list(rules)
	case AddCategory:
		rule, err := rules.FindByName(op.Rule)
		if err != nil {
			return err
		}
		out, err := e.mutator().AddCategory(rule, op.Category)
		if err != nil {
			return err
		}
		return e.finish(out)
	case UpdateAction:
		rule, err := rules.FindByName(op.Rule)
		if err != nil {
			return err
		}
		out, err := e.mutator().UpdateAction(rule, op.Action)
		if err != nil {
			return err
		}
		return e.finish(out)
	case BlockURL:
		rule, err := rules.FindByName(op.Rule)
		if err != nil {
			return err
		}
		out, err := e.mutator().BlockURL(rule, op.URL)
		if err != nil {
			return err
		}
		return e.finish(out)
	}
	return fmt.Errorf("unhandled operation %q", op.opName())
}

func (e *Engine) list(rules *repo.Repo) error {
	all, err := rules.ListAll()
	if err != nil {
		return err
	}
	switch e.Format {
	case report.FormatCSV:
		content, path, err := e.Renderer.WriteCSV(all)
		if err != nil {
			// The render succeeded, so hand the result back before failing.
			fmt.Fprint(e.Out, content)
			return err
		}
		fmt.Fprintf(e.Out, "Report written to %s\n", path)
	case report.FormatJSON:
		content, path, err := e.Renderer.WriteJSON(all)
		if err != nil {
			e.Out.Write(content)
			fmt.Fprintln(e.Out)
			return err
		}
		fmt.Fprintf(e.Out, "Report written to %s\n", path)
	default:
		fmt.Fprint(e.Out, e.Renderer.Table(all))
	}
	return nil
}

func (e *Engine) finish(out *mutate.Outcome) error {
	if e.Trail != nil && !out.DryRun {
		if err := e.Trail.Record(out); err != nil {
			logrus.WithError(err).Warn("Could not record audit entry")
		}
	}
	if e.Format == report.FormatJSON {
		data, err := report.OutcomeJSON(out)
		if err != nil {
			return err
		}
		fmt.Fprintln(e.Out, string(data))
		return nil
	}
	fmt.Fprint(e.Out, report.OutcomeText(out))
	return nil
}
