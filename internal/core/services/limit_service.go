package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/budget_approval_app/internal/apperrors"
	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_approval_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/budget_approval_app/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type limitService struct {
	BaseService
	limitRepo portsrepo.LimitRepositoryFacade
	itemRepo  portsrepo.BudgetItemRepositoryFacade
	versions  portssvc.VersionRecorderSvc
}

// LimitServiceOption is a functional option for configuring the limit service
type LimitServiceOption func(*limitService)

// WithLimitVersionRecorder snapshots items when limits reach them.
func WithLimitVersionRecorder(recorder portssvc.VersionRecorderSvc) LimitServiceOption {
	return func(s *limitService) {
		s.versions = recorder
	}
}

// NewLimitService creates a new limit service
func NewLimitService(
	limitRepo portsrepo.LimitRepositoryFacade,
	itemRepo portsrepo.BudgetItemRepositoryFacade,
	hierarchy portssvc.OrganizationReaderSvc,
	options ...LimitServiceOption,
) portssvc.LimitSvcFacade {
	s := &limitService{
		BaseService: BaseService{Hierarchy: hierarchy},
		limitRepo:   limitRepo,
		itemRepo:    itemRepo,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

var _ portssvc.LimitSvcFacade = (*limitService)(nil)

func (s *limitService) ListChildRequests(ctx context.Context, actor *domain.User, unitID string, year int) ([]domain.ChildRequest, error) {
	tree, err := s.LoadTree(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.AuthorizeUnit(ctx, tree, actor, unitID); err != nil {
		return nil, err
	}
	requested, err := s.requestedByChild(ctx, tree, unitID, year)
	if err != nil {
		return nil, err
	}

	children := tree.Children(unitID)
	out := make([]domain.ChildRequest, 0, len(children))
	for _, child := range children {
		req := domain.ChildRequest{Unit: child, TotalRequested: requested[child.UnitID]}
		limit, err := s.limitRepo.FindLimit(ctx, child.UnitID, unitID, year)
		switch {
		case err == nil:
			req.Limit = limit
		case !errors.Is(err, apperrors.ErrNotFound):
			s.LogError(ctx, err, "Failed to look up child limit", slog.String("unit_id", child.UnitID))
			return nil, err
		}
		out = append(out, req)
	}
	return out, nil
}

func (s *limitService) ListReceivedLimits(ctx context.Context, actor *domain.User, unitID string) ([]domain.UnitLimit, error) {
	tree, err := s.LoadTree(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.AuthorizeUnit(ctx, tree, actor, unitID); err != nil {
		return nil, err
	}
	limits, err := s.limitRepo.ListLimitsForUnit(ctx, unitID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list received limits", slog.String("unit_id", unitID))
		return nil, err
	}
	if limits == nil {
		return []domain.UnitLimit{}, nil
	}
	return limits, nil
}

func (s *limitService) ListAssignedLimits(ctx context.Context, actor *domain.User, unitID string, year *int) ([]domain.UnitLimit, error) {
	tree, err := s.LoadTree(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.AuthorizeUnit(ctx, tree, actor, unitID); err != nil {
		return nil, err
	}
	limits, err := s.limitRepo.ListLimitsAssignedBy(ctx, unitID, year)
	if err != nil {
		s.LogError(ctx, err, "Failed to list assigned limits", slog.String("unit_id", unitID))
		return nil, err
	}
	if limits == nil {
		return []domain.UnitLimit{}, nil
	}
	return limits, nil
}

// AssignChildLimits sets the limits of the direct children of a top level unit.
func (s *limitService) AssignChildLimits(ctx context.Context, actor *domain.User, year int, allocations []domain.LimitAllocation) ([]domain.UnitLimit, error) {
	tree, err := s.LoadTree(ctx)
	if err != nil {
		return nil, err
	}
	unit, ok := tree.Unit(actor.UnitID)
	if !ok {
		return nil, apperrors.NewNotFoundError("unit not found")
	}
	if !unit.IsRoot() {
		return nil, apperrors.NewForbiddenError("only top level units assign limits directly")
	}
	if year < domain.MinBudgetYear || year > domain.MaxBudgetYear {
		return nil, apperrors.NewValidationFailedError("fiscal year out of range")
	}
	if err := s.checkChildAllocations(tree, unit.UnitID, allocations); err != nil {
		return nil, err
	}
	for _, a := range allocations {
		if a.Amount.IsNegative() {
			return nil, apperrors.NewValidationFailedError("limit amounts must not be negative")
		}
	}

	requested, err := s.requestedByChild(ctx, tree, unit.UnitID, year)
	if err != nil {
		return nil, err
	}
	out, err := s.upsertChildLimits(ctx, actor, unit.UnitID, year, requested, allocations)
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Child limits assigned",
		slog.String("unit_id", unit.UnitID),
		slog.Int("year", year),
		slog.Int("children", len(out)))
	return out, nil
}

// DistributeLimit passes a received limit on to direct children. Limits given
// to children earlier and not named in allocations still count against the
// received limit. A zero amount only replaces an earlier child limit.
func (s *limitService) DistributeLimit(ctx context.Context, actor *domain.User, limitID string, allocations []domain.LimitAllocation) ([]domain.UnitLimit, error) {
	tree, err := s.LoadTree(ctx)
	if err != nil {
		return nil, err
	}
	received, err := s.receivedLimit(ctx, actor, limitID)
	if err != nil {
		return nil, err
	}
	if err := s.checkChildAllocations(tree, received.UnitID, allocations); err != nil {
		return nil, err
	}
	current, err := s.childLimitAmounts(ctx, received)
	if err != nil {
		return nil, err
	}
	writes, err := allocationsWithin(current, allocations, *received.LimitAssigned)
	if err != nil {
		return nil, err
	}

	requested, err := s.requestedByChild(ctx, tree, received.UnitID, received.FiscalYear)
	if err != nil {
		return nil, err
	}
	out, err := s.upsertChildLimits(ctx, actor, received.UnitID, received.FiscalYear, requested, writes)
	if err != nil {
		return nil, err
	}
	if err := s.markDistributed(ctx, actor, received); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Limit distributed to child units",
		slog.String("limit_id", limitID),
		slog.Int("children", len(out)))
	return out, nil
}

// DistributeLimitToItems spreads a received limit across the unit's own items.
func (s *limitService) DistributeLimitToItems(ctx context.Context, actor *domain.User, limitID string, allocations []domain.LimitAllocation) ([]domain.BudgetItem, error) {
	tree, err := s.LoadTree(ctx)
	if err != nil {
		return nil, err
	}
	received, err := s.receivedLimit(ctx, actor, limitID)
	if err != nil {
		return nil, err
	}
	if tree.HasChildren(received.UnitID) {
		return nil, apperrors.ErrAggregatorUnit
	}
	items, err := s.itemsFor(ctx, allocations)
	if err != nil {
		return nil, err
	}
	for _, a := range allocations {
		item := items[a.TargetID]
		if item.UnitID != received.UnitID || item.Year != received.FiscalYear {
			return nil, apperrors.NewValidationFailedError(fmt.Sprintf("item %s does not belong to the unit and fiscal year of the limit", a.TargetID))
		}
	}
	current, err := s.itemLimitAmounts(ctx, received)
	if err != nil {
		return nil, err
	}
	writes, err := allocationsWithin(current, allocations, *received.LimitAssigned)
	if err != nil {
		return nil, err
	}

	out, err := s.setItemLimits(ctx, actor, items, writes, domain.ItemLimitDistributed)
	if err != nil {
		return nil, err
	}
	if err := s.markDistributed(ctx, actor, received); err != nil {
		return nil, err
	}
	s.RecordSnapshot(ctx, s.versions, actor, received.UnitID, domain.VersionLimitsAssigned)

	s.LogInfo(ctx, "Limit distributed to items",
		slog.String("limit_id", limitID),
		slog.Int("items", len(out)))
	return out, nil
}

// AssignItemLimits sets per-item limits on approved items held by a top level
// unit. With approve set every amount must be positive and the limits are
// released to the items as distributed.
func (s *limitService) AssignItemLimits(ctx context.Context, actor *domain.User, allocations []domain.LimitAllocation, approve bool) ([]domain.BudgetItem, error) {
	tree, err := s.LoadTree(ctx)
	if err != nil {
		return nil, err
	}
	unit, ok := tree.Unit(actor.UnitID)
	if !ok {
		return nil, apperrors.NewNotFoundError("unit not found")
	}
	if !unit.IsRoot() {
		return nil, apperrors.NewForbiddenError("only top level units assign item limits")
	}
	if len(allocations) == 0 {
		return nil, apperrors.ErrNothingDistributed
	}
	for _, a := range allocations {
		if a.Amount.IsNegative() {
			return nil, apperrors.NewValidationFailedError("limit amounts must not be negative")
		}
		if approve && !a.Amount.IsPositive() {
			return nil, apperrors.NewValidationFailedError("every item needs a limit greater than zero before approval")
		}
	}

	items, err := s.itemsFor(ctx, allocations)
	if err != nil {
		return nil, err
	}
	for _, a := range allocations {
		item := items[a.TargetID]
		if item.Status != domain.ItemStatusApproved || !item.IsHeldBy(unit.UnitID) {
			return nil, apperrors.NewValidationFailedError(fmt.Sprintf("item %s is not an approved item held by your unit", a.TargetID))
		}
	}

	status := domain.ItemLimitAssigned
	if approve {
		status = domain.ItemLimitDistributed
	}
	out, err := s.setItemLimits(ctx, actor, items, allocations, status)
	if err != nil {
		return nil, err
	}

	snapshotted := map[string]bool{}
	for _, item := range out {
		if snapshotted[item.UnitID] {
			continue
		}
		snapshotted[item.UnitID] = true
		s.RecordSnapshot(ctx, s.versions, actor, item.UnitID, domain.VersionLimitsAssigned)
	}

	s.LogInfo(ctx, "Item limits assigned",
		slog.String("unit_id", unit.UnitID),
		slog.Bool("approved", approve),
		slog.Int("items", len(out)))
	return out, nil
}

// receivedLimit loads a limit the actor's unit received and can pass on.
func (s *limitService) receivedLimit(ctx context.Context, actor *domain.User, limitID string) (*domain.UnitLimit, error) {
	limit, err := s.limitRepo.FindLimitByID(ctx, limitID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find limit", slog.String("limit_id", limitID))
		}
		return nil, err
	}
	if limit.UnitID != actor.UnitID && !actor.IsAdmin() {
		return nil, apperrors.NewForbiddenError("limit was not assigned to your unit")
	}
	if !limit.Distributable() {
		return nil, fmt.Errorf("%w: limit %s has status %s", apperrors.ErrConflict, limit.LimitID, limit.Status)
	}
	return limit, nil
}

func (s *limitService) checkChildAllocations(tree *domain.OrgTree, parentID string, allocations []domain.LimitAllocation) error {
	if len(allocations) == 0 {
		return apperrors.ErrNothingDistributed
	}
	seen := map[string]bool{}
	for _, a := range allocations {
		parent, ok := tree.Parent(a.TargetID)
		if !ok || parent.UnitID != parentID {
			return apperrors.NewValidationFailedError(fmt.Sprintf("unit %s is not a direct child of %s", a.TargetID, parentID))
		}
		if seen[a.TargetID] {
			return apperrors.NewValidationFailedError(fmt.Sprintf("unit %s listed more than once", a.TargetID))
		}
		seen[a.TargetID] = true
	}
	return nil
}

// allocationsWithin applies allocations over the limits already handed out and
// checks the resulting total against ceiling. It returns the allocations to
// write: positive amounts and zeros that clear an earlier limit.
func allocationsWithin(current map[string]decimal.Decimal, allocations []domain.LimitAllocation, ceiling decimal.Decimal) ([]domain.LimitAllocation, error) {
	merged := make(map[string]decimal.Decimal, len(current)+len(allocations))
	for id, amount := range current {
		merged[id] = amount
	}
	writes := make([]domain.LimitAllocation, 0, len(allocations))
	anyPositive := false
	for _, a := range allocations {
		if a.Amount.IsNegative() {
			return nil, apperrors.NewValidationFailedError("limit amounts must not be negative")
		}
		if a.Amount.IsZero() {
			if _, had := current[a.TargetID]; !had {
				continue
			}
		} else {
			anyPositive = true
		}
		merged[a.TargetID] = a.Amount
		writes = append(writes, a)
	}
	if !anyPositive {
		return nil, apperrors.ErrNothingDistributed
	}
	total := decimal.Zero
	for _, amount := range merged {
		total = total.Add(amount)
	}
	if total.GreaterThan(ceiling) {
		return nil, fmt.Errorf("%w: %s > %s", apperrors.ErrLimitExceeded, total.StringFixed(2), ceiling.StringFixed(2))
	}
	return writes, nil
}

// childLimitAmounts returns the limits the receiving unit already assigned to
// its children in the fiscal year of received.
func (s *limitService) childLimitAmounts(ctx context.Context, received *domain.UnitLimit) (map[string]decimal.Decimal, error) {
	year := received.FiscalYear
	given, err := s.limitRepo.ListLimitsAssignedBy(ctx, received.UnitID, &year)
	if err != nil {
		s.LogError(ctx, err, "Failed to list child limits", slog.String("unit_id", received.UnitID))
		return nil, err
	}
	out := make(map[string]decimal.Decimal, len(given))
	for _, l := range given {
		if l.LimitAssigned != nil {
			out[l.UnitID] = *l.LimitAssigned
		}
	}
	return out, nil
}

// itemLimitAmounts returns the limits already set on the receiving unit's items
// in the fiscal year of received.
func (s *limitService) itemLimitAmounts(ctx context.Context, received *domain.UnitLimit) (map[string]decimal.Decimal, error) {
	year := received.FiscalYear
	items, err := s.itemRepo.ListItems(ctx, domain.BudgetItemFilter{
		UnitIDs: []string{received.UnitID},
		Year:    &year,
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to list unit items", slog.String("unit_id", received.UnitID))
		return nil, err
	}
	out := make(map[string]decimal.Decimal, len(items))
	for _, item := range items {
		if item.LimitAmount != nil {
			out[item.ItemID] = *item.LimitAmount
		}
	}
	return out, nil
}

// requestedByChild sums approved amounts per direct child of parentID.
func (s *limitService) requestedByChild(ctx context.Context, tree *domain.OrgTree, parentID string, year int) (map[string]decimal.Decimal, error) {
	items, err := s.itemRepo.ListItems(ctx, domain.BudgetItemFilter{
		UnitIDs:  tree.SubtreeIDs(parentID),
		Year:     &year,
		Statuses: []domain.ItemStatus{domain.ItemStatusApproved},
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to list approved items", slog.String("unit_id", parentID))
		return nil, err
	}
	sums := map[string]decimal.Decimal{}
	for _, child := range tree.Children(parentID) {
		sums[child.UnitID] = decimal.Zero
	}
	for _, item := range items {
		child, ok := tree.DirectChildToward(item.UnitID, parentID)
		if !ok {
			continue
		}
		sums[child.UnitID] = sums[child.UnitID].Add(item.Amount)
	}
	return sums, nil
}

func (s *limitService) upsertChildLimits(ctx context.Context, actor *domain.User, parentID string, year int, requested map[string]decimal.Decimal, allocations []domain.LimitAllocation) ([]domain.UnitLimit, error) {
	now := time.Now()
	out := make([]domain.UnitLimit, 0, len(allocations))
	for _, a := range allocations {
		amount := a.Amount
		stored, err := s.limitRepo.UpsertLimit(ctx, domain.UnitLimit{
			LimitID:          uuid.NewString(),
			UnitID:           a.TargetID,
			AssignedByUnitID: parentID,
			FiscalYear:       year,
			TotalRequested:   requested[a.TargetID],
			LimitAssigned:    &amount,
			Status:           domain.LimitAssigned,
			AuditFields:      domain.NewAuditFields(actor.UserID, now),
		})
		if err != nil {
			s.LogError(ctx, err, "Failed to upsert child limit",
				slog.String("unit_id", a.TargetID),
				slog.Int("year", year))
			return nil, err
		}
		out = append(out, *stored)
	}
	return out, nil
}

func (s *limitService) markDistributed(ctx context.Context, actor *domain.User, limit *domain.UnitLimit) error {
	if err := s.limitRepo.UpdateLimitStatus(ctx, limit.LimitID, domain.LimitDistributed, actor.UserID); err != nil {
		s.LogError(ctx, err, "Failed to mark limit distributed", slog.String("limit_id", limit.LimitID))
		return err
	}
	limit.Status = domain.LimitDistributed
	return nil
}

// itemsFor loads the target items of allocations, failing when any is missing or repeated.
func (s *limitService) itemsFor(ctx context.Context, allocations []domain.LimitAllocation) (map[string]domain.BudgetItem, error) {
	ids := make([]string, 0, len(allocations))
	seen := map[string]bool{}
	for _, a := range allocations {
		if seen[a.TargetID] {
			return nil, apperrors.NewValidationFailedError(fmt.Sprintf("item %s listed more than once", a.TargetID))
		}
		seen[a.TargetID] = true
		ids = append(ids, a.TargetID)
	}
	items, err := s.itemRepo.FindItemsByIDs(ctx, ids)
	if err != nil {
		s.LogError(ctx, err, "Failed to load items for limits")
		return nil, err
	}
	byID := make(map[string]domain.BudgetItem, len(items))
	for _, item := range items {
		byID[item.ItemID] = item
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("item %s not found", id))
		}
	}
	return byID, nil
}

func (s *limitService) setItemLimits(ctx context.Context, actor *domain.User, items map[string]domain.BudgetItem, allocations []domain.LimitAllocation, status domain.ItemLimitStatus) ([]domain.BudgetItem, error) {
	now := time.Now()
	out := make([]domain.BudgetItem, 0, len(allocations))
	for _, a := range allocations {
		item := items[a.TargetID]
		amount := a.Amount
		item.LimitAmount = &amount
		item.LimitStatus = status
		item.Touch(actor.UserID, now)
		if err := s.itemRepo.UpdateItem(ctx, item); err != nil {
			s.LogError(ctx, err, "Failed to set item limit", slog.String("item_id", item.ItemID))
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}
