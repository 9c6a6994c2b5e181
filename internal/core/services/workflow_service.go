package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SscSPs/budget_approval_app/internal/apperrors"
	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_approval_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/budget_approval_app/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// workflowService moves items through the approval hierarchy. Each operation is
// a sequence of independent repository calls; a failure part way through leaves
// the items already written in their new state.
type workflowService struct {
	BaseService
	itemRepo       portsrepo.BudgetItemRepositoryFacade
	submissionRepo portsrepo.SubmissionRepositoryFacade
	limitRepo      portsrepo.LimitRepositoryFacade
	versions       portssvc.VersionRecorderSvc
}

// WorkflowServiceOption is a functional option for configuring the workflow service
type WorkflowServiceOption func(*workflowService)

// WithWorkflowVersionRecorder snapshots items after each workflow step.
func WithWorkflowVersionRecorder(recorder portssvc.VersionRecorderSvc) WorkflowServiceOption {
	return func(s *workflowService) {
		s.versions = recorder
	}
}

// NewWorkflowService creates a new workflow service
func NewWorkflowService(
	itemRepo portsrepo.BudgetItemRepositoryFacade,
	submissionRepo portsrepo.SubmissionRepositoryFacade,
	limitRepo portsrepo.LimitRepositoryFacade,
	hierarchy portssvc.OrganizationReaderSvc,
	options ...WorkflowServiceOption,
) portssvc.WorkflowSvcFacade {
	s := &workflowService{
		BaseService:    BaseService{Hierarchy: hierarchy},
		itemRepo:       itemRepo,
		submissionRepo: submissionRepo,
		limitRepo:      limitRepo,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

var _ portssvc.WorkflowSvcFacade = (*workflowService)(nil)

// --- Submission ---

func (s *workflowService) SubmitUnitBudget(ctx context.Context, actor *domain.User, unitID string) (*domain.BudgetSubmission, error) {
	tree, err := s.LoadTree(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.AuthorizeUnit(ctx, tree, actor, unitID); err != nil {
		return nil, err
	}
	parent, ok := tree.Parent(unitID)
	if !ok {
		return nil, apperrors.ErrNoParentUnit
	}

	drafts, err := s.itemRepo.ListItems(ctx, domain.BudgetItemFilter{
		UnitIDs:  []string{unitID},
		Statuses: []domain.ItemStatus{domain.ItemStatusDraft},
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to list draft items", slog.String("unit_id", unitID))
		return nil, err
	}
	if len(drafts) == 0 {
		s.LogDebug(ctx, "Nothing to submit", slog.String("unit_id", unitID))
		return nil, nil
	}

	moved, err := s.applyAll(ctx, actor, drafts, func(item *domain.BudgetItem) error {
		return item.Submit(parent.UnitID)
	})
	if err != nil {
		return nil, err
	}

	submission, err := s.saveSubmission(ctx, actor, unitID, parent.UnitID, moved)
	if err != nil {
		return nil, err
	}
	s.RecordSnapshot(ctx, s.versions, actor, unitID, domain.VersionSubmitted)

	s.LogInfo(ctx, "Unit budget submitted",
		slog.String("unit_id", unitID),
		slog.String("to_unit_id", parent.UnitID),
		slog.Int("items", len(moved)))
	return submission, nil
}

func (s *workflowService) ForwardToParent(ctx context.Context, actor *domain.User, unitID string) (*domain.BudgetSubmission, error) {
	tree, err := s.LoadTree(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.AuthorizeUnit(ctx, tree, actor, unitID); err != nil {
		return nil, err
	}
	parent, ok := tree.Parent(unitID)
	if !ok {
		return nil, apperrors.ErrNoParentUnit
	}

	held := unitID
	approved, err := s.itemRepo.ListItems(ctx, domain.BudgetItemFilter{
		UnitIDs:     tree.SubtreeIDs(unitID),
		Statuses:    []domain.ItemStatus{domain.ItemStatusApproved},
		SubmittedTo: &held,
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to list approved items", slog.String("unit_id", unitID))
		return nil, err
	}
	if len(approved) == 0 {
		s.LogDebug(ctx, "Nothing to forward", slog.String("unit_id", unitID))
		return nil, nil
	}

	moved, err := s.applyAll(ctx, actor, approved, func(item *domain.BudgetItem) error {
		return item.Forward(parent.UnitID)
	})
	if err != nil {
		return nil, err
	}

	submission, err := s.saveSubmission(ctx, actor, unitID, parent.UnitID, moved)
	if err != nil {
		return nil, err
	}
	s.RecordSnapshot(ctx, s.versions, actor, unitID, domain.VersionSubmitted)

	s.LogInfo(ctx, "Approved items forwarded",
		slog.String("unit_id", unitID),
		slog.String("to_unit_id", parent.UnitID),
		slog.Int("items", len(moved)))
	return submission, nil
}

func (s *workflowService) ListSubmissions(ctx context.Context, actor *domain.User, unitID string) ([]domain.BudgetSubmission, error) {
	tree, err := s.LoadTree(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.AuthorizeUnit(ctx, tree, actor, unitID); err != nil {
		return nil, err
	}
	submissions, err := s.submissionRepo.ListSubmissionsForUnit(ctx, unitID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list submissions", slog.String("unit_id", unitID))
		return nil, err
	}
	if submissions == nil {
		return []domain.BudgetSubmission{}, nil
	}
	return submissions, nil
}

func (s *workflowService) saveSubmission(ctx context.Context, actor *domain.User, fromUnitID, toUnitID string, items []domain.BudgetItem) (*domain.BudgetSubmission, error) {
	submission := domain.BudgetSubmission{
		SubmissionID:  uuid.NewString(),
		FromUnitID:    fromUnitID,
		ToUnitID:      toUnitID,
		Status:        domain.SubmissionPending,
		BudgetItemIDs: domain.ItemIDs(items),
		SubmittedAt:   time.Now(),
		SubmittedBy:   actor.UserID,
	}
	if err := s.submissionRepo.SaveSubmission(ctx, submission); err != nil {
		s.LogError(ctx, err, "Failed to save submission",
			slog.String("from_unit_id", fromUnitID),
			slog.String("to_unit_id", toUnitID))
		return nil, err
	}
	return &submission, nil
}

// --- Single item decisions ---

func (s *workflowService) ApproveItem(ctx context.Context, actor *domain.User, itemID string, comment *string) (*domain.BudgetItem, error) {
	return s.decideItem(ctx, actor, itemID, domain.VersionApproved, func(item *domain.BudgetItem) error {
		return item.Approve(comment)
	})
}

func (s *workflowService) RejectItem(ctx context.Context, actor *domain.User, itemID string, comment string) (*domain.BudgetItem, error) {
	return s.decideItem(ctx, actor, itemID, domain.VersionRejected, func(item *domain.BudgetItem) error {
		return item.Reject(comment)
	})
}

func (s *workflowService) ReturnItem(ctx context.Context, actor *domain.User, itemID string, comment string) (*domain.BudgetItem, error) {
	return s.decideItem(ctx, actor, itemID, domain.VersionReturned, func(item *domain.BudgetItem) error {
		return item.Return(comment)
	})
}

// decideItem applies a decision to one item. Only the unit holding the item may decide.
func (s *workflowService) decideItem(ctx context.Context, actor *domain.User, itemID string, action domain.VersionAction, decide func(*domain.BudgetItem) error) (*domain.BudgetItem, error) {
	item, err := s.itemRepo.FindItemByID(ctx, itemID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find item", slog.String("item_id", itemID))
		}
		return nil, err
	}
	if !actor.IsAdmin() && !item.IsHeldBy(actor.UnitID) {
		return nil, apperrors.NewForbiddenError("item is not held by your unit")
	}
	if err := decide(item); err != nil {
		return nil, err
	}
	item.Touch(actor.UserID, time.Now())
	if err := s.itemRepo.UpdateItem(ctx, *item); err != nil {
		s.LogError(ctx, err, "Failed to update item", slog.String("item_id", itemID))
		return nil, err
	}
	s.RecordSnapshot(ctx, s.versions, actor, item.UnitID, action)

	s.LogInfo(ctx, "Item decision recorded",
		slog.String("item_id", itemID),
		slog.String("action", string(action)))
	return item, nil
}

// --- Group decisions ---

// ApproveGroup approves every pending item of unitID and year held by the
// actor's unit. A limit, when given, is recorded for the unit and year.
func (s *workflowService) ApproveGroup(ctx context.Context, actor *domain.User, unitID string, year int, comment *string, limit *decimal.Decimal) ([]domain.BudgetItem, error) {
	if limit != nil && limit.IsNegative() {
		return nil, apperrors.NewValidationFailedError("limit must not be negative")
	}
	pending, err := s.pendingGroup(ctx, actor, unitID, year)
	if err != nil || len(pending) == 0 {
		return pending, err
	}
	for _, item := range pending {
		if item.ClarificationStatus.Open() {
			return nil, apperrors.ErrUnresolvedClarifications
		}
	}

	approved, err := s.applyAll(ctx, actor, pending, func(item *domain.BudgetItem) error {
		return item.Approve(comment)
	})
	if err != nil {
		return nil, err
	}

	assignedBy := actor.UnitID
	if approved[0].SubmittedTo != nil {
		assignedBy = *approved[0].SubmittedTo
	}
	if err := s.recordGroupLimit(ctx, actor, unitID, assignedBy, year, domain.SumAmounts(approved), limit); err != nil {
		return nil, err
	}
	s.RecordSnapshot(ctx, s.versions, actor, unitID, domain.VersionApproved)

	s.LogInfo(ctx, "Group approved",
		slog.String("unit_id", unitID),
		slog.Int("year", year),
		slog.Int("items", len(approved)))
	return approved, nil
}

func (s *workflowService) RejectGroup(ctx context.Context, actor *domain.User, unitID string, year int, comment string) ([]domain.BudgetItem, error) {
	return s.decideGroup(ctx, actor, unitID, year, domain.VersionRejected, func(item *domain.BudgetItem) error {
		return item.Reject(comment)
	})
}

func (s *workflowService) ReturnGroup(ctx context.Context, actor *domain.User, unitID string, year int, comment string) ([]domain.BudgetItem, error) {
	return s.decideGroup(ctx, actor, unitID, year, domain.VersionReturned, func(item *domain.BudgetItem) error {
		return item.Return(comment)
	})
}

func (s *workflowService) decideGroup(ctx context.Context, actor *domain.User, unitID string, year int, action domain.VersionAction, decide func(*domain.BudgetItem) error) ([]domain.BudgetItem, error) {
	pending, err := s.pendingGroup(ctx, actor, unitID, year)
	if err != nil || len(pending) == 0 {
		return pending, err
	}
	changed, err := s.applyAll(ctx, actor, pending, decide)
	if err != nil {
		return nil, err
	}
	s.RecordSnapshot(ctx, s.versions, actor, unitID, action)

	s.LogInfo(ctx, "Group decision recorded",
		slog.String("unit_id", unitID),
		slog.Int("year", year),
		slog.String("action", string(action)),
		slog.Int("items", len(changed)))
	return changed, nil
}

// pendingGroup lists the pending items of unitID and year that the actor may decide on.
// Admins see items wherever they are held.
func (s *workflowService) pendingGroup(ctx context.Context, actor *domain.User, unitID string, year int) ([]domain.BudgetItem, error) {
	tree, err := s.LoadTree(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.AuthorizeSuperior(ctx, tree, actor, unitID); err != nil {
		return nil, err
	}

	filter := domain.BudgetItemFilter{
		UnitIDs:  []string{unitID},
		Year:     &year,
		Statuses: []domain.ItemStatus{domain.ItemStatusPending},
	}
	if !actor.IsAdmin() {
		held := actor.UnitID
		filter.SubmittedTo = &held
	}
	items, err := s.itemRepo.ListItems(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list pending group",
			slog.String("unit_id", unitID),
			slog.Int("year", year))
		return nil, err
	}
	if len(items) == 0 {
		s.LogDebug(ctx, "No pending items in group", slog.String("unit_id", unitID), slog.Int("year", year))
		return []domain.BudgetItem{}, nil
	}
	return items, nil
}

func (s *workflowService) recordGroupLimit(ctx context.Context, actor *domain.User, unitID, assignedBy string, year int, requested decimal.Decimal, limit *decimal.Decimal) error {
	now := time.Now()
	if limit == nil {
		_, err := s.limitRepo.FindLimit(ctx, unitID, assignedBy, year)
		if err == nil {
			return nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to look up unit limit", slog.String("unit_id", unitID))
			return err
		}
	}

	row := domain.UnitLimit{
		LimitID:          uuid.NewString(),
		UnitID:           unitID,
		AssignedByUnitID: assignedBy,
		FiscalYear:       year,
		TotalRequested:   requested,
		Status:           domain.LimitPending,
		AuditFields:      domain.NewAuditFields(actor.UserID, now),
	}
	if limit != nil {
		assigned := *limit
		row.LimitAssigned = &assigned
		row.Status = domain.LimitAssigned
	}
	if _, err := s.limitRepo.UpsertLimit(ctx, row); err != nil {
		s.LogError(ctx, err, "Failed to record unit limit",
			slog.String("unit_id", unitID),
			slog.Int("year", year))
		return err
	}
	return nil
}

// applyAll runs step on each item and persists it. It stops at the first failure.
func (s *workflowService) applyAll(ctx context.Context, actor *domain.User, items []domain.BudgetItem, step func(*domain.BudgetItem) error) ([]domain.BudgetItem, error) {
	now := time.Now()
	out := make([]domain.BudgetItem, 0, len(items))
	for _, item := range items {
		if err := step(&item); err != nil {
			return nil, err
		}
		item.Touch(actor.UserID, now)
		if err := s.itemRepo.UpdateItem(ctx, item); err != nil {
			s.LogError(ctx, err, "Failed to update item", slog.String("item_id", item.ItemID))
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}
