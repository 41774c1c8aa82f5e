package zia

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/bvignesz/Network-automation/domain"
)

// URLFilteringRules fetches every URL filtering rule the gateway knows, in
// the order the gateway returns them. One logical fetch per invocation.
func (c *Client) URLFilteringRules() ([]*domain.Rule, error) {
	var rules []*domain.Rule
	if err := c.req("GET", "/urlFilteringRules", nil, &rules); err != nil {
		return nil, err
	}
	logrus.WithField("count", len(rules)).Info("Fetched URL filtering rules")
	return rules, nil
}

// UpdateURLFilteringRule replaces the rule on the gateway with the full
// desired state and returns the state the gateway accepted. The API is
// replace-on-write, so the whole rule object goes on every update.
func (c *Client) UpdateURLFilteringRule(rule *domain.Rule) (*domain.Rule, error) {
	data, err := json.Marshal(rule)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"id": rule.ID, "name": rule.Name}).Info("Updating URL filtering rule")
	res := &domain.Rule{}
	if err := c.req("PUT", "/urlFilteringRules/"+strconv.Itoa(rule.ID), bytes.NewBuffer(data), res); err != nil {
		return nil, err
	}
	return res, nil
}
