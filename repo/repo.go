// Package repo resolves URL filtering rules fetched from the gateway by
// their display name. It owns no storage - the rules live on the gateway and
// this holds only an ephemeral per-invocation copy.
package repo

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/bvignesz/Network-automation/domain"
)

// RuleService is the slice of the gateway client the repository needs.
type RuleService interface {
	URLFilteringRules() ([]*domain.Rule, error)
}

// RuleNotFoundError carries the queried name for display. No mutation is
// attempted once resolution fails.
type RuleNotFoundError struct {
	Name string
}

func (e *RuleNotFoundError) Error() string {
	return fmt.Sprintf("no rule named %q exists on the gateway", e.Name)
}

// Repo is the per-invocation view of the rule set.
type Repo struct {
	svc   RuleService
	rules []*domain.Rule
}

// New repo over the given service.
func New(svc RuleService) *Repo {
	return &Repo{svc: svc}
}

// ListAll fetches the full rule set once and reuses it for the rest of the
// invocation, in the order the gateway served it.
func (r *Repo) ListAll() ([]*domain.Rule, error) {
	if r.rules == nil {
		rules, err := r.svc.URLFilteringRules()
		if err != nil {
			return nil, err
		}
		r.rules = rules
	}
	return r.rules, nil
}

// FindByName resolves a rule by exact, case-sensitive name match - no fuzzy
// matching, no trimming. The gateway does not guarantee unique names; when
// several rules share one, the first in service order wins and the silent
// tie-break is logged as a warning.
func (r *Repo) FindByName(name string) (*domain.Rule, error) {
	rules, err := r.ListAll()
	if err != nil {
		return nil, err
	}
	var found *domain.Rule
	matches := 0
	for _, rule := range rules {
		if rule.Name == name {
			if found == nil {
				found = rule
			}
			matches++
		}
	}
	if found == nil {
		return nil, &RuleNotFoundError{Name: name}
	}
	if matches > 1 {
		logrus.WithFields(logrus.Fields{"name": name, "matches": matches}).Warn("Multiple rules share this name, using the first match")
	}
	logrus.WithFields(logrus.Fields{"name": name, "id": found.ID}).Info("Resolved rule")
	return found, nil
}
