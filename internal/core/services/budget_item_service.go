package services

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/budget_approval_app/internal/apperrors"
	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_approval_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/budget_approval_app/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type budgetItemService struct {
	BaseService
	itemRepo portsrepo.BudgetItemRepositoryFacade
	versions portssvc.VersionRecorderSvc
}

// BudgetItemServiceOption is a functional option for configuring the item service
type BudgetItemServiceOption func(*budgetItemService)

// WithItemVersionRecorder snapshots items after edits.
func WithItemVersionRecorder(recorder portssvc.VersionRecorderSvc) BudgetItemServiceOption {
	return func(s *budgetItemService) {
		s.versions = recorder
	}
}

// NewBudgetItemService creates a new budget item service
func NewBudgetItemService(
	itemRepo portsrepo.BudgetItemRepositoryFacade,
	hierarchy portssvc.OrganizationReaderSvc,
	options ...BudgetItemServiceOption,
) portssvc.BudgetItemSvcFacade {
	s := &budgetItemService{
		BaseService: BaseService{Hierarchy: hierarchy},
		itemRepo:    itemRepo,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

var _ portssvc.BudgetItemSvcFacade = (*budgetItemService)(nil)

func (s *budgetItemService) GetItem(ctx context.Context, actor *domain.User, itemID string) (*domain.BudgetItem, error) {
	tree, err := s.LoadTree(ctx)
	if err != nil {
		return nil, err
	}
	item, err := s.findItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.AuthorizeUnit(ctx, tree, actor, item.UnitID); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *budgetItemService) ListItems(ctx context.Context, actor *domain.User, filter domain.BudgetItemFilter) ([]domain.BudgetItem, error) {
	tree, err := s.LoadTree(ctx)
	if err != nil {
		return nil, err
	}

	if len(filter.UnitIDs) == 0 {
		if !actor.IsAdmin() {
			filter.UnitIDs = tree.SubtreeIDs(actor.UnitID)
		}
	} else {
		for _, unitID := range filter.UnitIDs {
			if err := s.AuthorizeUnit(ctx, tree, actor, unitID); err != nil {
				return nil, err
			}
		}
	}

	items, err := s.itemRepo.ListItems(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list items")
		return nil, err
	}
	if items == nil {
		return []domain.BudgetItem{}, nil
	}
	return items, nil
}

// ListReviewQueue groups the items the actor's unit holds, pending or already
// approved, by owning unit and year. Groups are ordered by unit name, newest year first.
func (s *budgetItemService) ListReviewQueue(ctx context.Context, actor *domain.User) ([]domain.ReviewGroup, error) {
	tree, err := s.LoadTree(ctx)
	if err != nil {
		return nil, err
	}
	holder := actor.UnitID
	items, err := s.itemRepo.ListItems(ctx, domain.BudgetItemFilter{
		UnitIDs:     tree.SubtreeIDs(holder),
		Statuses:    []domain.ItemStatus{domain.ItemStatusPending, domain.ItemStatusApproved},
		SubmittedTo: &holder,
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to list review queue", slog.String("unit_id", holder))
		return nil, err
	}

	type groupKey struct {
		unitID string
		year   int
	}
	index := map[groupKey]int{}
	groups := []domain.ReviewGroup{}
	for _, item := range items {
		key := groupKey{item.UnitID, item.Year}
		i, ok := index[key]
		if !ok {
			unit, _ := tree.Unit(item.UnitID)
			groups = append(groups, domain.ReviewGroup{Unit: unit, Year: item.Year, Total: decimal.Zero})
			i = len(groups) - 1
			index[key] = i
		}
		g := &groups[i]
		g.Items = append(g.Items, item)
		g.Total = g.Total.Add(item.Amount)
		if item.Status == domain.ItemStatusPending {
			g.PendingCount++
		}
		if item.ClarificationStatus.Open() {
			g.UnresolvedDiscussions++
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Unit.Name != groups[j].Unit.Name {
			return groups[i].Unit.Name < groups[j].Unit.Name
		}
		return groups[i].Year > groups[j].Year
	})
	return groups, nil
}

// CreateItem drafts a new item in the actor's unit. Units with children only aggregate.
func (s *budgetItemService) CreateItem(ctx context.Context, actor *domain.User, fields domain.BudgetItemFields) (*domain.BudgetItem, error) {
	tree, err := s.LoadTree(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := tree.Unit(actor.UnitID); !ok {
		return nil, apperrors.NewNotFoundError("unit not found")
	}
	if tree.HasChildren(actor.UnitID) {
		return nil, apperrors.ErrAggregatorUnit
	}
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	item := domain.NewBudgetItem(uuid.NewString(), actor.UnitID, fields, actor.UserID, time.Now())
	if err := s.itemRepo.SaveItem(ctx, item); err != nil {
		s.LogError(ctx, err, "Failed to save item", slog.String("item_id", item.ItemID))
		return nil, err
	}

	s.LogInfo(ctx, "Budget item created",
		slog.String("item_id", item.ItemID),
		slog.String("unit_id", item.UnitID))
	return &item, nil
}

// UpdateItem edits a draft of the actor's own unit.
func (s *budgetItemService) UpdateItem(ctx context.Context, actor *domain.User, itemID string, fields domain.BudgetItemFields) (*domain.BudgetItem, error) {
	item, err := s.findItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.UnitID != actor.UnitID && !actor.IsAdmin() {
		return nil, apperrors.NewForbiddenError("only the owning unit can edit an item")
	}
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	if err := item.Edit(fields); err != nil {
		return nil, err
	}
	item.Touch(actor.UserID, time.Now())

	if err := s.itemRepo.UpdateItem(ctx, *item); err != nil {
		s.LogError(ctx, err, "Failed to update item", slog.String("item_id", itemID))
		return nil, err
	}
	s.RecordSnapshot(ctx, s.versions, actor, item.UnitID, domain.VersionEdited)
	return item, nil
}

func (s *budgetItemService) findItem(ctx context.Context, itemID string) (*domain.BudgetItem, error) {
	item, err := s.itemRepo.FindItemByID(ctx, itemID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find item", slog.String("item_id", itemID))
		}
		return nil, err
	}
	return item, nil
}
