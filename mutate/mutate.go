// Package mutate applies single-rule mutations against the gateway with
// read-modify-write semantics: fetch current state, stage the full desired
// state locally, issue one replace-on-write update. There is no optimistic
// locking - concurrent invocations on the same rule are last-write-wins and
// must be serialized by the caller if that matters.
package mutate

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/bvignesz/Network-automation/domain"
	"github.com/bvignesz/Network-automation/zia"
)

// Updater is the slice of the gateway client the mutator needs.
type Updater interface {
	UpdateURLFilteringRule(rule *domain.Rule) (*domain.Rule, error)
}

// InvalidActionError is returned before any network call when the requested
// action is outside the closed ALLOW/BLOCK/CAUTION set.
type InvalidActionError struct {
	Action string
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("invalid action %q - must be one of ALLOW, BLOCK, CAUTION", e.Action)
}

// Outcome describes one mutation for reporting: what the field held before
// and what it holds now. Notice is set when a manual follow-up is required.
// DryRun marks an outcome whose update was staged but never issued.
type Outcome struct {
	Operation string `json:"operation"`
	RuleID    int    `json:"ruleId"`
	RuleName  string `json:"ruleName"`
	Field     string `json:"field"`
	Previous  string `json:"previous"`
	Updated   string `json:"updated"`
	Notice    string `json:"notice,omitempty"`
	DryRun    bool   `json:"dryRun,omitempty"`
}

// Mutator applies at most one mutation per invocation. With DryRun set it
// stages the desired state and reports what would change without issuing
// any update call.
type Mutator struct {
	svc    Updater
	DryRun bool
}

// New mutator over the given service.
func New(svc Updater) *Mutator {
	return &Mutator{svc: svc}
}

// AddCategory merges a category code into the rule's category set. A code
// that is already present is a successful no-op and no update is issued.
// Existing order is preserved and new codes land at the end. The code itself
// is never validated locally - the category namespace belongs to the gateway.
func (m *Mutator) AddCategory(rule *domain.Rule, category string) (*Outcome, error) {
	previous := domain.JoinCategories(rule.URLCategories)
	out := &Outcome{Operation: "add-category", RuleID: rule.ID, RuleName: rule.Name, Field: "urlCategories", Previous: previous}
	if rule.HasCategory(category) {
		logrus.WithFields(logrus.Fields{"rule": rule.Name, "category": category}).Info("Category already present, nothing to do")
		out.Updated = previous
		out.DryRun = m.DryRun
		return out, nil
	}
	desired := rule.Clone()
	desired.URLCategories = append(desired.URLCategories, category)
	if m.DryRun {
		logrus.WithFields(logrus.Fields{"rule": rule.Name, "category": category}).Info("Dry run - update not issued")
		out.Updated = domain.JoinCategories(desired.URLCategories)
		out.DryRun = true
		return out, nil
	}
	updated, err := m.svc.UpdateURLFilteringRule(desired)
	if err != nil {
		return nil, categoryErr(category, err)
	}
	out.Updated = domain.JoinCategories(updated.URLCategories)
	return out, nil
}

// UpdateAction sets the rule's action to one of the closed set. Parsing and
// normalization happen once at the dispatch boundary - this takes the typed
// value and only guards set membership, failing fast before any network call.
// Setting the current value again is allowed and still reports success with
// identical previous and updated values - the update is issued either way.
func (m *Mutator) UpdateAction(rule *domain.Rule, target domain.Action) (*Outcome, error) {
	switch target {
	case domain.ActionAllow, domain.ActionBlock, domain.ActionCaution:
	default:
		return nil, &InvalidActionError{Action: string(target)}
	}
	out := &Outcome{Operation: "update-action", RuleID: rule.ID, RuleName: rule.Name, Field: "action", Previous: string(rule.Action)}
	desired := rule.Clone()
	desired.Action = target
	if m.DryRun {
		logrus.WithFields(logrus.Fields{"rule": rule.Name, "action": target}).Info("Dry run - update not issued")
		out.Updated = string(target)
		out.DryRun = true
		return out, nil
	}
	updated, err := m.svc.UpdateURLFilteringRule(desired)
	if err != nil {
		return nil, err
	}
	out.Updated = string(updated.Action)
	return out, nil
}

// BlockURL forces the rule's action to BLOCK and tells the operator what this
// engine deliberately does not do: the domain itself must be added to a
// custom URL category in the admin console, because category provisioning is
// out of the engine's hands. The domain never goes over the wire.
func (m *Mutator) BlockURL(rule *domain.Rule, url string) (*Outcome, error) {
	out, err := m.UpdateAction(rule, domain.ActionBlock)
	if err != nil {
		return nil, err
	}
	out.Operation = "block-url"
	out.Notice = fmt.Sprintf("To fully block %s, add it to a custom URL category assigned to rule %q in the ZIA admin console", url, rule.Name)
	logrus.Warn(out.Notice)
	return out, nil
}

// categoryErr maps a gateway rejection of the category value onto the typed
// error so the caller sees which code was refused.
func categoryErr(category string, err error) error {
	var terr *zia.TransportError
	if errors.As(err, &terr) && terr.Status == http.StatusBadRequest && terr.Code == "INVALID_INPUT_ARGUMENT" {
		return &zia.InvalidCategoryError{Category: category, Detail: terr.Detail}
	}
	return err
}
