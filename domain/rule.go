package domain

import "strings"

// State of a rule on the gateway
type State string

// Action is the enforcement verb a rule applies to matched traffic
type Action string

const (
	// StateEnabled - the rule participates in policy evaluation
	StateEnabled State = "ENABLED"
	// StateDisabled - the rule is kept but not evaluated
	StateDisabled State = "DISABLED"

	// ActionAllow permits matched traffic
	ActionAllow Action = "ALLOW"
	// ActionBlock denies matched traffic
	ActionBlock Action = "BLOCK"
	// ActionCaution warns the user but lets the traffic through
	ActionCaution Action = "CAUTION"
)

// ParseAction validates a value against the closed ALLOW/BLOCK/CAUTION set.
// Leading/trailing space and case are forgiven, anything else is rejected.
func ParseAction(s string) (Action, bool) {
	switch a := Action(strings.ToUpper(strings.TrimSpace(s))); a {
	case ActionAllow, ActionBlock, ActionCaution:
		return a, true
	}
	return "", false
}

// NamedItem is an id/name reference to an associated object on the gateway
// (location, group, user). Carried through for display only.
type NamedItem struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

// Rule is a URL filtering policy rule as the gateway holds it.
// The gateway has replace-on-write semantics, so updates always carry the
// full rule object, never a partial diff.
type Rule struct {
	// ID assigned by the gateway - never constructed locally
	ID int `json:"id"`
	// Name of the rule - the lookup key users supply, matched exactly
	Name string `json:"name"`
	// Order of evaluation, read-only here
	Order int `json:"order"`
	// Rank ...
	Rank int `json:"rank"`
	// State - ENABLED or DISABLED
	State State `json:"state"`
	// Action applied to matching traffic
	Action Action `json:"action"`
	// Description free text, read-only
	Description string `json:"description,omitempty"`
	// URLCategories the rule matches on - ordered, no duplicates
	URLCategories []string `json:"urlCategories"`
	// Protocols the rule applies to
	Protocols []string `json:"protocols,omitempty"`
	// Locations scoped to the rule
	Locations []NamedItem `json:"locations,omitempty"`
	// Groups scoped to the rule
	Groups []NamedItem `json:"groups,omitempty"`
	// Users scoped to the rule
	Users []NamedItem `json:"users,omitempty"`
}

// HasCategory reports whether the rule already carries the category code.
func (r *Rule) HasCategory(code string) bool {
	for _, c := range r.URLCategories {
		if c == code {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so a mutation can be staged without touching the
// resolved rule until the gateway accepts it.
func (r *Rule) Clone() *Rule {
	c := *r
	c.URLCategories = append([]string(nil), r.URLCategories...)
	c.Protocols = append([]string(nil), r.Protocols...)
	c.Locations = append([]NamedItem(nil), r.Locations...)
	c.Groups = append([]NamedItem(nil), r.Groups...)
	c.Users = append([]NamedItem(nil), r.Users...)
	return &c
}

// JoinCategories renders a category list the way reports display it.
func JoinCategories(cats []string) string {
	return strings.Join(cats, ", ")
}
