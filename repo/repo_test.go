package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bvignesz/Network-automation/domain"
)

type fakeService struct {
	rules []*domain.Rule
	calls int
}

func (f *fakeService) URLFilteringRules() ([]*domain.Rule, error) {
	f.calls++
	return f.rules, nil
}

func threeRules() []*domain.Rule {
	return []*domain.Rule{
		{ID: 123456, Name: "Block Social Media", Order: 1, State: domain.StateEnabled, Action: domain.ActionBlock},
		{ID: 123457, Name: "Allow Finance Apps", Order: 2, State: domain.StateEnabled, Action: domain.ActionAllow},
		{ID: 123458, Name: "Caution on Streaming", Order: 3, State: domain.StateEnabled, Action: domain.ActionCaution},
	}
}

func TestListAllFetchesOnce(t *testing.T) {
	svc := &fakeService{rules: threeRules()}
	r := New(svc)
	first, err := r.ListAll()
	require.NoError(t, err)
	second, err := r.ListAll()
	require.NoError(t, err)
	assert.Len(t, first, 3)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, svc.calls, "one logical fetch per invocation")
}

func TestFindByName(t *testing.T) {
	r := New(&fakeService{rules: threeRules()})
	rule, err := r.FindByName("Allow Finance Apps")
	require.NoError(t, err)
	assert.Equal(t, 123457, rule.ID)
}

func TestFindByNameIsExact(t *testing.T) {
	r := New(&fakeService{rules: threeRules()})
	for _, name := range []string{"allow finance apps", "Allow Finance Apps ", " Allow Finance Apps", "ALLOW FINANCE APPS"} {
		_, err := r.FindByName(name)
		var nf *RuleNotFoundError
		require.ErrorAs(t, err, &nf, "query %q must not match", name)
		assert.Equal(t, name, nf.Name)
	}
}

func TestFindByNameNotFound(t *testing.T) {
	r := New(&fakeService{rules: threeRules()})
	_, err := r.FindByName("THIS_RULE_DOES_NOT_EXIST")
	var nf *RuleNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "THIS_RULE_DOES_NOT_EXIST", nf.Name)
	assert.Contains(t, err.Error(), "THIS_RULE_DOES_NOT_EXIST")
}

func TestFindByNameFirstMatchWins(t *testing.T) {
	svc := &fakeService{rules: []*domain.Rule{
		{ID: 1, Name: "Dup", Action: domain.ActionAllow},
		{ID: 2, Name: "Dup", Action: domain.ActionBlock},
	}}
	rule, err := New(svc).FindByName("Dup")
	require.NoError(t, err)
	assert.Equal(t, 1, rule.ID)
}
