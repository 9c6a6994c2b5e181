package services

import (
	"context"
	"log/slog"
	"sort"

	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_approval_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/budget_approval_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

type reportingService struct {
	BaseService
	itemRepo portsrepo.BudgetItemReader
}

// NewReportingService creates a new reporting service
func NewReportingService(itemRepo portsrepo.BudgetItemReader, hierarchy portssvc.OrganizationReaderSvc) portssvc.ReportingService {
	return &reportingService{
		BaseService: BaseService{Hierarchy: hierarchy},
		itemRepo:    itemRepo,
	}
}

var _ portssvc.ReportingService = (*reportingService)(nil)

// Overview totals items by status, overall and per unit. Non-admins only see
// their own subtree. Units without items are left out.
func (s *reportingService) Overview(ctx context.Context, actor *domain.User, year *int) (*domain.BudgetOverview, error) {
	tree, err := s.LoadTree(ctx)
	if err != nil {
		return nil, err
	}
	filter := domain.BudgetItemFilter{Year: year}
	if !actor.IsAdmin() {
		filter.UnitIDs = tree.SubtreeIDs(actor.UnitID)
	}
	items, err := s.itemRepo.ListItems(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list items for overview")
		return nil, err
	}

	overview := &domain.BudgetOverview{
		ByStatus: map[domain.ItemStatus]domain.StatusTotals{},
		Units:    []domain.UnitOverview{},
		Total:    decimal.Zero,
	}
	perUnit := map[string]*domain.UnitOverview{}
	for _, item := range items {
		addTo(overview.ByStatus, item)
		overview.Total = overview.Total.Add(item.Amount)

		u, ok := perUnit[item.UnitID]
		if !ok {
			unit, _ := tree.Unit(item.UnitID)
			u = &domain.UnitOverview{Unit: unit, ByStatus: map[domain.ItemStatus]domain.StatusTotals{}, Total: decimal.Zero}
			perUnit[item.UnitID] = u
		}
		addTo(u.ByStatus, item)
		u.Total = u.Total.Add(item.Amount)
	}
	for _, u := range perUnit {
		overview.Units = append(overview.Units, *u)
	}
	sort.Slice(overview.Units, func(i, j int) bool {
		return overview.Units[i].Unit.Name < overview.Units[j].Unit.Name
	})

	s.LogDebug(ctx, "Overview computed", slog.Int("items", len(items)), slog.Int("units", len(overview.Units)))
	return overview, nil
}

func addTo(totals map[domain.ItemStatus]domain.StatusTotals, item domain.BudgetItem) {
	t := totals[item.Status]
	t.Count++
	t.Amount = t.Amount.Add(item.Amount)
	totals[item.Status] = t
}
