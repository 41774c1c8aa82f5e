package mutate

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bvignesz/Network-automation/domain"
	"github.com/bvignesz/Network-automation/zia"
)

// fakeUpdater accepts updates, echoing back the desired state like the
// gateway does, or rejects everything with a canned error.
type fakeUpdater struct {
	updates []*domain.Rule
	err     error
}

func (f *fakeUpdater) UpdateURLFilteringRule(rule *domain.Rule) (*domain.Rule, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.updates = append(f.updates, rule)
	return rule.Clone(), nil
}

func socialRule() *domain.Rule {
	return &domain.Rule{
		ID:            123456,
		Name:          "Block Social Media",
		State:         domain.StateEnabled,
		Action:        domain.ActionBlock,
		Order:         1,
		URLCategories: []string{"SOCIAL_NETWORKING"},
	}
}

func TestAddCategory(t *testing.T) {
	svc := &fakeUpdater{}
	out, err := New(svc).AddCategory(socialRule(), "STREAMING_MEDIA")
	require.NoError(t, err)
	assert.Equal(t, "add-category", out.Operation)
	assert.Equal(t, "SOCIAL_NETWORKING", out.Previous)
	assert.Equal(t, "SOCIAL_NETWORKING, STREAMING_MEDIA", out.Updated)
	require.Len(t, svc.updates, 1)
	// The update carries the full resulting list, not a diff.
	assert.Equal(t, []string{"SOCIAL_NETWORKING", "STREAMING_MEDIA"}, svc.updates[0].URLCategories)
}

func TestAddCategoryIsIdempotent(t *testing.T) {
	svc := &fakeUpdater{}
	m := New(svc)
	rule := socialRule()

	first, err := m.AddCategory(rule, "STREAMING_MEDIA")
	require.NoError(t, err)
	rule.URLCategories = svc.updates[0].URLCategories

	second, err := m.AddCategory(rule, "STREAMING_MEDIA")
	require.NoError(t, err)
	assert.Equal(t, first.Updated, second.Updated)
	assert.Equal(t, second.Previous, second.Updated)
	assert.Len(t, svc.updates, 1, "a present category must not trigger an update")
}

func TestAddCategoryPreservesOrder(t *testing.T) {
	svc := &fakeUpdater{}
	rule := socialRule()
	rule.URLCategories = []string{"SOCIAL_NETWORKING", "GAMES", "GAMBLING"}
	_, err := New(svc).AddCategory(rule, "STREAMING_MEDIA")
	require.NoError(t, err)
	assert.Equal(t, []string{"SOCIAL_NETWORKING", "GAMES", "GAMBLING", "STREAMING_MEDIA"}, svc.updates[0].URLCategories)
}

func TestAddCategoryRejectionLeavesRuleUntouched(t *testing.T) {
	svc := &fakeUpdater{err: &zia.TransportError{
		Op:     "PUT /urlFilteringRules/123456",
		Status: http.StatusBadRequest,
		Code:   "INVALID_INPUT_ARGUMENT",
		Detail: "Invalid url category NO_SUCH_CATEGORY",
	}}
	rule := socialRule()
	_, err := New(svc).AddCategory(rule, "NO_SUCH_CATEGORY")
	var catErr *zia.InvalidCategoryError
	require.ErrorAs(t, err, &catErr)
	assert.Equal(t, "NO_SUCH_CATEGORY", catErr.Category)
	// No partial application - the local view stays as fetched.
	assert.Equal(t, []string{"SOCIAL_NETWORKING"}, rule.URLCategories)
}

func TestAddCategoryOtherTransportErrorsPassThrough(t *testing.T) {
	svc := &fakeUpdater{err: &zia.TransportError{Op: "PUT /urlFilteringRules/123456", Status: http.StatusBadGateway}}
	_, err := New(svc).AddCategory(socialRule(), "STREAMING_MEDIA")
	var catErr *zia.InvalidCategoryError
	assert.False(t, errors.As(err, &catErr))
	var terr *zia.TransportError
	require.ErrorAs(t, err, &terr)
}

func TestUpdateAction(t *testing.T) {
	svc := &fakeUpdater{}
	rule := &domain.Rule{ID: 123457, Name: "Allow Finance Apps", Action: domain.ActionAllow}
	out, err := New(svc).UpdateAction(rule, domain.ActionCaution)
	require.NoError(t, err)
	assert.Equal(t, "ALLOW", out.Previous)
	assert.Equal(t, "CAUTION", out.Updated)
	require.Len(t, svc.updates, 1)
	assert.Equal(t, domain.ActionCaution, svc.updates[0].Action)
}

func TestUpdateActionNoOp(t *testing.T) {
	svc := &fakeUpdater{}
	rule := &domain.Rule{ID: 123457, Name: "Allow Finance Apps", Action: domain.ActionAllow}
	out, err := New(svc).UpdateAction(rule, domain.ActionAllow)
	require.NoError(t, err)
	assert.Equal(t, out.Previous, out.Updated)
	assert.Equal(t, "ALLOW", out.Updated)
}

func TestUpdateActionInvalidFailsFast(t *testing.T) {
	svc := &fakeUpdater{}
	rule := &domain.Rule{ID: 123457, Name: "Allow Finance Apps", Action: domain.ActionAllow}
	_, err := New(svc).UpdateAction(rule, domain.Action("DENY"))
	var actErr *InvalidActionError
	require.ErrorAs(t, err, &actErr)
	assert.Equal(t, "DENY", actErr.Action)
	assert.Empty(t, svc.updates, "invalid action must never reach the network")
	assert.Equal(t, domain.ActionAllow, rule.Action)
}

func TestUpdateActionFailureLeavesRuleUntouched(t *testing.T) {
	svc := &fakeUpdater{err: &zia.TransportError{Op: "PUT /urlFilteringRules/123457", Status: http.StatusInternalServerError}}
	rule := &domain.Rule{ID: 123457, Name: "Allow Finance Apps", Action: domain.ActionAllow}
	_, err := New(svc).UpdateAction(rule, domain.ActionBlock)
	require.Error(t, err)
	assert.Equal(t, domain.ActionAllow, rule.Action)
}

func TestDryRunAddCategoryIssuesNoUpdate(t *testing.T) {
	svc := &fakeUpdater{}
	m := New(svc)
	m.DryRun = true
	rule := socialRule()
	out, err := m.AddCategory(rule, "STREAMING_MEDIA")
	require.NoError(t, err)
	assert.True(t, out.DryRun)
	assert.Equal(t, "SOCIAL_NETWORKING", out.Previous)
	assert.Equal(t, "SOCIAL_NETWORKING, STREAMING_MEDIA", out.Updated)
	assert.Empty(t, svc.updates, "a dry run must never reach the gateway")
	assert.Equal(t, []string{"SOCIAL_NETWORKING"}, rule.URLCategories)
}

func TestDryRunUpdateActionIssuesNoUpdate(t *testing.T) {
	svc := &fakeUpdater{}
	m := New(svc)
	m.DryRun = true
	rule := &domain.Rule{ID: 123457, Name: "Allow Finance Apps", Action: domain.ActionAllow}
	out, err := m.UpdateAction(rule, domain.ActionCaution)
	require.NoError(t, err)
	assert.True(t, out.DryRun)
	assert.Equal(t, "ALLOW", out.Previous)
	assert.Equal(t, "CAUTION", out.Updated)
	assert.Empty(t, svc.updates)
	assert.Equal(t, domain.ActionAllow, rule.Action)
}

func TestDryRunBlockURLKeepsNotice(t *testing.T) {
	svc := &fakeUpdater{}
	m := New(svc)
	m.DryRun = true
	out, err := m.BlockURL(&domain.Rule{ID: 123458, Name: "Caution on Streaming", Action: domain.ActionCaution}, "badsite.example.com")
	require.NoError(t, err)
	assert.True(t, out.DryRun)
	assert.Equal(t, "BLOCK", out.Updated)
	assert.Contains(t, out.Notice, "badsite.example.com")
	assert.Empty(t, svc.updates)
}

func TestBlockURL(t *testing.T) {
	svc := &fakeUpdater{}
	rule := &domain.Rule{ID: 123458, Name: "Caution on Streaming", Action: domain.ActionCaution}
	out, err := New(svc).BlockURL(rule, "badsite.example.com")
	require.NoError(t, err)
	assert.Equal(t, "block-url", out.Operation)
	assert.Equal(t, "CAUTION", out.Previous)
	assert.Equal(t, "BLOCK", out.Updated)
	assert.Contains(t, out.Notice, "badsite.example.com")
	assert.Contains(t, out.Notice, "admin console")
	// One real mutation: the action flip. The domain is advisory only and
	// never part of the update payload.
	require.Len(t, svc.updates, 1)
	assert.Equal(t, domain.ActionBlock, svc.updates[0].Action)
	assert.NotContains(t, svc.updates[0].URLCategories, "badsite.example.com")
}
