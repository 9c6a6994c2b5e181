package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/budget_approval_app/internal/apperrors"
	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type WorkflowServiceTestSuite struct {
	suite.Suite
	ctx context.Context
	f   *hierarchyFixture
}

func (s *WorkflowServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.f = newHierarchyFixture()
}

func TestWorkflowServiceTestSuite(t *testing.T) {
	suite.Run(t, new(WorkflowServiceTestSuite))
}

func (s *WorkflowServiceTestSuite) createItem(actor *domain.User, year int, amount string) domain.BudgetItem {
	item, err := s.f.services.BudgetItem.CreateItem(s.ctx, actor, itemFields(year, amount))
	s.Require().NoError(err)
	return *item
}

func (s *WorkflowServiceTestSuite) submit(actor *domain.User) *domain.BudgetSubmission {
	sub, err := s.f.services.Workflow.SubmitUnitBudget(s.ctx, actor, actor.UnitID)
	s.Require().NoError(err)
	return sub
}

func (s *WorkflowServiceTestSuite) TestSubmitUnitBudget() {
	a := s.createItem(s.f.schUser, 2026, "100")
	b := s.createItem(s.f.schUser, 2027, "250")

	sub := s.submit(s.f.schUser)
	s.Require().NotNil(sub)
	s.Equal("sch", sub.FromUnitID)
	s.Equal("mun", sub.ToUnitID)
	s.Equal(domain.SubmissionPending, sub.Status)
	s.ElementsMatch([]string{a.ItemID, b.ItemID}, sub.BudgetItemIDs)

	for _, id := range []string{a.ItemID, b.ItemID} {
		item := s.f.store.item(id)
		s.Equal(domain.ItemStatusPending, item.Status)
		s.True(item.IsHeldBy("mun"))
	}

	versions, err := s.f.services.Version.ListVersions(s.ctx, s.f.schUser, "sch", 0, "")
	s.Require().NoError(err)
	s.Require().Len(versions.Versions, 1)
	s.Equal(domain.VersionSubmitted, versions.Versions[0].Action)

	s.Run("nothing left to submit", func() {
		again, err := s.f.services.Workflow.SubmitUnitBudget(s.ctx, s.f.schUser, "sch")
		s.NoError(err)
		s.Nil(again)
	})
}

func (s *WorkflowServiceTestSuite) TestSubmitUnitBudget_Errors() {
	_, err := s.f.services.Workflow.SubmitUnitBudget(s.ctx, s.f.admin, "voi")
	s.ErrorIs(err, apperrors.ErrNoParentUnit)

	_, err = s.f.services.Workflow.SubmitUnitBudget(s.ctx, s.f.schUser, "lib")
	s.ErrorIs(err, apperrors.ErrForbidden)

	_, err = s.f.services.Workflow.SubmitUnitBudget(s.ctx, s.f.schUser, "nowhere")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *WorkflowServiceTestSuite) TestCreateItem_AggregatorUnitRejected() {
	_, err := s.f.services.BudgetItem.CreateItem(s.ctx, s.f.munUser, itemFields(2026, "10"))
	s.ErrorIs(err, apperrors.ErrAggregatorUnit)
}

func (s *WorkflowServiceTestSuite) TestApproveGroup() {
	a := s.createItem(s.f.schUser, 2026, "100")
	b := s.createItem(s.f.schUser, 2026, "50.50")
	other := s.createItem(s.f.schUser, 2027, "75")
	s.submit(s.f.schUser)

	approved, err := s.f.services.Workflow.ApproveGroup(s.ctx, s.f.munUser, "sch", 2026, nil, nil)
	s.Require().NoError(err)
	s.Len(approved, 2)

	for _, id := range []string{a.ItemID, b.ItemID} {
		item := s.f.store.item(id)
		s.Equal(domain.ItemStatusApproved, item.Status)
		s.True(item.IsHeldBy("mun"), "approved items stay with the approving unit")
	}
	s.Equal(domain.ItemStatusPending, s.f.store.item(other.ItemID).Status)

	limits := s.f.store.allLimits()
	s.Require().Len(limits, 1)
	s.Equal("sch", limits[0].UnitID)
	s.Equal("mun", limits[0].AssignedByUnitID)
	s.Equal(domain.LimitPending, limits[0].Status)
	s.True(decimal.RequireFromString("150.50").Equal(limits[0].TotalRequested))
	s.Nil(limits[0].LimitAssigned)

	s.Run("no pending items left", func() {
		again, err := s.f.services.Workflow.ApproveGroup(s.ctx, s.f.munUser, "sch", 2026, nil, nil)
		s.NoError(err)
		s.Empty(again)
	})
}

func (s *WorkflowServiceTestSuite) TestApproveGroup_WithLimit() {
	s.createItem(s.f.schUser, 2026, "100")
	s.submit(s.f.schUser)

	limit := decimal.NewFromInt(80)
	_, err := s.f.services.Workflow.ApproveGroup(s.ctx, s.f.munUser, "sch", 2026, nil, &limit)
	s.Require().NoError(err)

	limits := s.f.store.allLimits()
	s.Require().Len(limits, 1)
	s.Equal(domain.LimitAssigned, limits[0].Status)
	s.Require().NotNil(limits[0].LimitAssigned)
	s.True(limit.Equal(*limits[0].LimitAssigned))

	negative := decimal.NewFromInt(-1)
	_, err = s.f.services.Workflow.ApproveGroup(s.ctx, s.f.munUser, "sch", 2026, nil, &negative)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *WorkflowServiceTestSuite) TestApproveGroup_BlockedByOpenClarification() {
	a := s.createItem(s.f.schUser, 2026, "100")
	s.createItem(s.f.schUser, 2026, "200")
	s.submit(s.f.schUser)

	_, err := s.f.services.Discussion.RequestClarification(s.ctx, s.f.munUser, a.ItemID, "Proszę o uzasadnienie")
	s.Require().NoError(err)

	queue, err := s.f.services.BudgetItem.ListReviewQueue(s.ctx, s.f.munUser)
	s.Require().NoError(err)
	s.Require().Len(queue, 1)
	s.Equal(1, queue[0].UnresolvedDiscussions)
	s.False(queue[0].CanApprove())

	_, err = s.f.services.Workflow.ApproveGroup(s.ctx, s.f.munUser, "sch", 2026, nil, nil)
	s.ErrorIs(err, apperrors.ErrUnresolvedClarifications)
	s.Equal(domain.ItemStatusPending, s.f.store.item(a.ItemID).Status)

	s.Require().NoError(s.f.services.Discussion.ResolveClarification(s.ctx, s.f.munUser, a.ItemID))
	approved, err := s.f.services.Workflow.ApproveGroup(s.ctx, s.f.munUser, "sch", 2026, nil, nil)
	s.NoError(err)
	s.Len(approved, 2)
}

func (s *WorkflowServiceTestSuite) TestGroupDecisions_OnlyFromSuperiorHoldingUnit() {
	s.createItem(s.f.schUser, 2026, "100")
	s.submit(s.f.schUser)

	_, err := s.f.services.Workflow.ApproveGroup(s.ctx, s.f.schUser, "sch", 2026, nil, nil)
	s.ErrorIs(err, apperrors.ErrForbidden)

	_, err = s.f.services.Workflow.RejectGroup(s.ctx, s.f.libUser, "sch", 2026, "nie")
	s.ErrorIs(err, apperrors.ErrForbidden)

	// The county is above the school but the items are still held by the municipality.
	items, err := s.f.services.Workflow.ApproveGroup(s.ctx, s.f.ctyUser, "sch", 2026, nil, nil)
	s.NoError(err)
	s.Empty(items)
}

func (s *WorkflowServiceTestSuite) TestReturnAndRejectGroup() {
	a := s.createItem(s.f.schUser, 2026, "100")
	b := s.createItem(s.f.libUser, 2026, "40")
	s.submit(s.f.schUser)
	s.submit(s.f.libUser)

	returned, err := s.f.services.Workflow.ReturnGroup(s.ctx, s.f.munUser, "sch", 2026, "Popraw klasyfikację")
	s.Require().NoError(err)
	s.Require().Len(returned, 1)

	item := s.f.store.item(a.ItemID)
	s.Equal(domain.ItemStatusDraft, item.Status)
	s.Nil(item.SubmittedTo)
	s.Require().NotNil(item.Comment)
	s.Equal("Popraw klasyfikację", *item.Comment)

	rejected, err := s.f.services.Workflow.RejectGroup(s.ctx, s.f.munUser, "lib", 2026, "Brak środków")
	s.Require().NoError(err)
	s.Require().Len(rejected, 1)
	s.Equal(domain.ItemStatusRejected, s.f.store.item(b.ItemID).Status)
}

func (s *WorkflowServiceTestSuite) TestForwardToParent() {
	approvedItem := s.createItem(s.f.schUser, 2026, "100")
	rejectedItem := s.createItem(s.f.libUser, 2026, "40")
	s.submit(s.f.schUser)
	s.submit(s.f.libUser)
	draftItem := s.createItem(s.f.libUser, 2026, "60")

	_, err := s.f.services.Workflow.ApproveItem(s.ctx, s.f.munUser, approvedItem.ItemID, nil)
	s.Require().NoError(err)
	_, err = s.f.services.Workflow.RejectItem(s.ctx, s.f.munUser, rejectedItem.ItemID, "Nie")
	s.Require().NoError(err)

	sub, err := s.f.services.Workflow.ForwardToParent(s.ctx, s.f.munUser, "mun")
	s.Require().NoError(err)
	s.Require().NotNil(sub)
	s.Equal("mun", sub.FromUnitID)
	s.Equal("cty", sub.ToUnitID)
	s.Equal([]string{approvedItem.ItemID}, sub.BudgetItemIDs)

	forwarded := s.f.store.item(approvedItem.ItemID)
	s.Equal(domain.ItemStatusPending, forwarded.Status)
	s.True(forwarded.IsHeldBy("cty"))
	s.Equal(domain.ItemStatusRejected, s.f.store.item(rejectedItem.ItemID).Status)
	s.Equal(domain.ItemStatusDraft, s.f.store.item(draftItem.ItemID).Status)

	again, err := s.f.services.Workflow.ForwardToParent(s.ctx, s.f.munUser, "mun")
	s.NoError(err)
	s.Nil(again)

	submissions, err := s.f.services.Workflow.ListSubmissions(s.ctx, s.f.munUser, "mun")
	s.Require().NoError(err)
	s.Len(submissions, 3)
	s.Equal("cty", submissions[0].ToUnitID, "newest first")
}

func (s *WorkflowServiceTestSuite) TestSingleItemDecisions() {
	item := s.createItem(s.f.schUser, 2026, "100")

	_, err := s.f.services.Workflow.ApproveItem(s.ctx, s.f.munUser, item.ItemID, nil)
	s.ErrorIs(err, apperrors.ErrForbidden, "a draft is not held by anyone")

	s.submit(s.f.schUser)

	_, err = s.f.services.Workflow.ApproveItem(s.ctx, s.f.ctyUser, item.ItemID, nil)
	s.ErrorIs(err, apperrors.ErrForbidden)

	comment := "OK"
	approved, err := s.f.services.Workflow.ApproveItem(s.ctx, s.f.munUser, item.ItemID, &comment)
	s.Require().NoError(err)
	s.Equal(domain.ItemStatusApproved, approved.Status)

	_, err = s.f.services.Workflow.ReturnItem(s.ctx, s.f.munUser, item.ItemID, "x")
	s.ErrorIs(err, apperrors.ErrInvalidTransition)

	_, err = s.f.services.Workflow.ApproveItem(s.ctx, s.f.munUser, "missing", nil)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *WorkflowServiceTestSuite) TestApproval_DropsEarlierReturnReason() {
	grouped := s.createItem(s.f.schUser, 2026, "100")
	single := s.createItem(s.f.schUser, 2027, "40")
	s.submit(s.f.schUser)
	_, err := s.f.services.Workflow.ReturnGroup(s.ctx, s.f.munUser, "sch", 2026, "Popraw opis")
	s.Require().NoError(err)
	_, err = s.f.services.Workflow.ReturnItem(s.ctx, s.f.munUser, single.ItemID, "Za wysoka kwota")
	s.Require().NoError(err)
	s.Require().NotNil(s.f.store.item(grouped.ItemID).Comment)
	s.submit(s.f.schUser)

	_, err = s.f.services.Workflow.ApproveGroup(s.ctx, s.f.munUser, "sch", 2026, nil, nil)
	s.Require().NoError(err)
	blank := "  "
	_, err = s.f.services.Workflow.ApproveItem(s.ctx, s.f.munUser, single.ItemID, &blank)
	s.Require().NoError(err)

	s.Nil(s.f.store.item(grouped.ItemID).Comment)
	s.Nil(s.f.store.item(single.ItemID).Comment)
}

func TestUpdateItem_OnlyOwningDrafts(t *testing.T) {
	ctx := context.Background()
	f := newHierarchyFixture()

	item, err := f.services.BudgetItem.CreateItem(ctx, f.schUser, itemFields(2026, "100"))
	require.NoError(t, err)

	_, err = f.services.BudgetItem.UpdateItem(ctx, f.libUser, item.ItemID, itemFields(2026, "120"))
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	updated, err := f.services.BudgetItem.UpdateItem(ctx, f.schUser, item.ItemID, itemFields(2026, "120"))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(120).Equal(updated.Amount))

	_, err = f.services.Workflow.SubmitUnitBudget(ctx, f.schUser, "sch")
	require.NoError(t, err)
	_, err = f.services.BudgetItem.UpdateItem(ctx, f.schUser, item.ItemID, itemFields(2026, "130"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestListItems_Scope(t *testing.T) {
	ctx := context.Background()
	f := newHierarchyFixture()

	_, err := f.services.BudgetItem.CreateItem(ctx, f.schUser, itemFields(2026, "100"))
	require.NoError(t, err)
	_, err = f.services.BudgetItem.CreateItem(ctx, f.libUser, itemFields(2026, "50"))
	require.NoError(t, err)

	own, err := f.services.BudgetItem.ListItems(ctx, f.schUser, domain.BudgetItemFilter{})
	require.NoError(t, err)
	assert.Len(t, own, 1)

	subtree, err := f.services.BudgetItem.ListItems(ctx, f.munUser, domain.BudgetItemFilter{})
	require.NoError(t, err)
	assert.Len(t, subtree, 2)

	_, err = f.services.BudgetItem.ListItems(ctx, f.schUser, domain.BudgetItemFilter{UnitIDs: []string{"lib"}})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	none, err := f.services.BudgetItem.ListItems(ctx, &domain.User{UserID: "x", Role: domain.RoleBasic, UnitID: "cty2"}, domain.BudgetItemFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)
}
