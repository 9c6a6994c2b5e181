package services_test

import (
	"context"
	"slices"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/SscSPs/budget_approval_app/internal/apperrors"
	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_approval_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/budget_approval_app/internal/core/ports/services"
	"github.com/SscSPs/budget_approval_app/internal/core/services"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory implementation of every repository port, used to
// drive the services through whole workflows.
type memStore struct {
	mu          sync.Mutex
	units       map[string]domain.OrganizationalUnit
	users       map[string]domain.User
	items       map[string]domain.BudgetItem
	submissions []domain.BudgetSubmission
	comments    []domain.BudgetComment
	versions    []domain.BudgetVersion
	limits      map[string]domain.UnitLimit
	nextLimitID int
}

func newMemStore() *memStore {
	return &memStore{
		units:  map[string]domain.OrganizationalUnit{},
		users:  map[string]domain.User{},
		items:  map[string]domain.BudgetItem{},
		limits: map[string]domain.UnitLimit{},
	}
}

func (m *memStore) provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		UnitRepo:       (*memUnits)(m),
		UserRepo:       (*memUsers)(m),
		ItemRepo:       (*memItems)(m),
		SubmissionRepo: (*memSubmissions)(m),
		CommentRepo:    (*memComments)(m),
		VersionRepo:    (*memVersions)(m),
		LimitRepo:      (*memLimits)(m),
	}
}

func (m *memStore) item(id string) domain.BudgetItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[id]
}

func (m *memStore) putItem(item domain.BudgetItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ItemID] = item
}

func (m *memStore) allLimits() []domain.UnitLimit {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.UnitLimit, 0, len(m.limits))
	for _, l := range m.limits {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UnitID < out[j].UnitID })
	return out
}

// --- units ---

type memUnits memStore

func (r *memUnits) FindUnitByID(_ context.Context, unitID string) (*domain.OrganizationalUnit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.units[unitID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &u, nil
}

func (r *memUnits) ListUnits(_ context.Context) ([]domain.OrganizationalUnit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.OrganizationalUnit, 0, len(r.units))
	for _, u := range r.units {
		out = append(out, u)
	}
	return out, nil
}

func (r *memUnits) SaveUnit(_ context.Context, unit domain.OrganizationalUnit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.units[unit.UnitID] = unit
	return nil
}

// --- users ---

type memUsers memStore

func (r *memUsers) FindUserByID(_ context.Context, userID string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &u, nil
}

func (r *memUsers) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *memUsers) FindUsers(_ context.Context, unitID *string) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, u := range r.users {
		if unitID == nil || u.UnitID == *unitID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memUsers) SaveUser(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return apperrors.ErrDuplicate
		}
	}
	r.users[user.UserID] = user
	return nil
}

// --- items ---

type memItems memStore

func (r *memItems) FindItemByID(_ context.Context, itemID string) (*domain.BudgetItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[itemID]
	if !ok {
		return nil, apperrors.NewNotFoundError("item not found")
	}
	return &item, nil
}

func (r *memItems) FindItemsByIDs(_ context.Context, itemIDs []string) ([]domain.BudgetItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.BudgetItem
	for _, id := range itemIDs {
		if item, ok := r.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *memItems) ListItems(_ context.Context, filter domain.BudgetItemFilter) ([]domain.BudgetItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.BudgetItem
	for _, item := range r.items {
		if len(filter.UnitIDs) > 0 && !slices.Contains(filter.UnitIDs, item.UnitID) {
			continue
		}
		if filter.Year != nil && item.Year != *filter.Year {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, item.Status) {
			continue
		}
		if filter.SubmittedTo != nil && !item.IsHeldBy(*filter.SubmittedTo) {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].ItemID < out[j].ItemID
	})
	return out, nil
}

func (r *memItems) SaveItem(_ context.Context, item domain.BudgetItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ItemID] = item
	return nil
}

func (r *memItems) UpdateItem(_ context.Context, item domain.BudgetItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ItemID]; !ok {
		return apperrors.ErrNotFound
	}
	r.items[item.ItemID] = item
	return nil
}

// --- submissions ---

type memSubmissions memStore

func (r *memSubmissions) SaveSubmission(_ context.Context, submission domain.BudgetSubmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submissions = append(r.submissions, submission)
	return nil
}

func (r *memSubmissions) ListSubmissionsForUnit(_ context.Context, unitID string) ([]domain.BudgetSubmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.BudgetSubmission
	for i := len(r.submissions) - 1; i >= 0; i-- {
		s := r.submissions[i]
		if s.FromUnitID == unitID || s.ToUnitID == unitID {
			out = append(out, s)
		}
	}
	return out, nil
}

// --- comments ---

type memComments memStore

func (r *memComments) SaveComment(_ context.Context, comment domain.BudgetComment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comments = append(r.comments, comment)
	return nil
}

func (r *memComments) FindCommentByID(_ context.Context, commentID string) (*domain.BudgetComment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.comments {
		if c.CommentID == commentID {
			return &c, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *memComments) ListCommentsByItem(_ context.Context, itemID string) ([]domain.BudgetComment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.BudgetComment
	for _, c := range r.comments {
		if c.BudgetItemID == itemID {
			out = append(out, c)
		}
	}
	return out, nil
}

// --- versions ---

type memVersions memStore

func (r *memVersions) SaveVersion(_ context.Context, version domain.BudgetVersion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.versions = append(r.versions, version)
	return nil
}

func (r *memVersions) FindVersionByID(_ context.Context, versionID string) (*domain.BudgetVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.versions {
		if v.VersionID == versionID {
			return &v, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *memVersions) ListVersionsByUnit(_ context.Context, unitID string, limit int, before *portsrepo.VersionCursor) ([]domain.BudgetVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	newer := func(a, b domain.BudgetVersion) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.VersionID > b.VersionID
	}
	var out []domain.BudgetVersion
	for _, v := range r.versions {
		if v.UnitID != unitID {
			continue
		}
		if before != nil && !newer(domain.BudgetVersion{CreatedAt: before.CreatedAt, VersionID: before.VersionID}, v) {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return newer(out[i], out[j]) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- limits ---

type memLimits memStore

func (r *memLimits) FindLimitByID(_ context.Context, limitID string) (*domain.UnitLimit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.limits {
		if l.LimitID == limitID {
			return &l, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *memLimits) FindLimit(_ context.Context, unitID, assignedByUnitID string, fiscalYear int) (*domain.UnitLimit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.limits[limitKey(unitID, assignedByUnitID, fiscalYear)]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &l, nil
}

func (r *memLimits) ListLimitsForUnit(_ context.Context, unitID string) ([]domain.UnitLimit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.UnitLimit
	for _, l := range r.limits {
		if l.UnitID == unitID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memLimits) ListLimitsAssignedBy(_ context.Context, unitID string, fiscalYear *int) ([]domain.UnitLimit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.UnitLimit
	for _, l := range r.limits {
		if l.AssignedByUnitID == unitID && (fiscalYear == nil || l.FiscalYear == *fiscalYear) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memLimits) UpsertLimit(_ context.Context, limit domain.UnitLimit) (*domain.UnitLimit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := limitKey(limit.UnitID, limit.AssignedByUnitID, limit.FiscalYear)
	if existing, ok := r.limits[key]; ok {
		limit.LimitID = existing.LimitID
		limit.CreatedAt = existing.CreatedAt
		limit.CreatedBy = existing.CreatedBy
	}
	r.limits[key] = limit
	return &limit, nil
}

func (r *memLimits) UpdateLimitStatus(_ context.Context, limitID string, status domain.UnitLimitStatus, updatedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, l := range r.limits {
		if l.LimitID == limitID {
			l.Status = status
			l.Touch(updatedBy, time.Now())
			r.limits[key] = l
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func limitKey(unitID, assignedBy string, year int) string {
	return unitID + "|" + assignedBy + "|" + strconv.Itoa(year)
}

// --- fixture ---

// hierarchyFixture is voivodeship "voi" with counties "cty" and "cty2",
// municipality "mun" under "cty" and institutions "sch" and "lib" under "mun".
type hierarchyFixture struct {
	store    *memStore
	services *portssvc.ServiceContainer

	schUser *domain.User
	libUser *domain.User
	munUser *domain.User
	ctyUser *domain.User
	voiUser *domain.User
	admin   *domain.User
}

func newHierarchyFixture() *hierarchyFixture {
	store := newMemStore()
	add := func(id, name string, typ domain.UnitType, parent string) {
		u := domain.OrganizationalUnit{UnitID: id, Name: name, Type: typ, CreatedAt: time.Now()}
		if parent != "" {
			p := parent
			u.ParentID = &p
		}
		store.units[id] = u
	}
	add("voi", "Mazowieckie", domain.UnitTypeVoivodeship, "")
	add("cty", "Powiat A", domain.UnitTypeCounty, "voi")
	add("cty2", "Powiat B", domain.UnitTypeCounty, "voi")
	add("mun", "Gmina A", domain.UnitTypeMunicipality, "cty")
	add("sch", "Szkoła 1", domain.UnitTypeInstitution, "mun")
	add("lib", "Biblioteka", domain.UnitTypeInstitution, "mun")

	repos := store.provider()
	container := &portssvc.ServiceContainer{}
	container.Organization = services.NewOrganizationService(repos.UnitRepo)
	container.Version = services.NewVersionService(repos.VersionRepo, repos.ItemRepo, container.Organization)
	container.BudgetItem = services.NewBudgetItemService(repos.ItemRepo, container.Organization,
		services.WithItemVersionRecorder(container.Version))
	container.Workflow = services.NewWorkflowService(repos.ItemRepo, repos.SubmissionRepo, repos.LimitRepo, container.Organization,
		services.WithWorkflowVersionRecorder(container.Version))
	container.Limit = services.NewLimitService(repos.LimitRepo, repos.ItemRepo, container.Organization,
		services.WithLimitVersionRecorder(container.Version))
	container.Discussion = services.NewDiscussionService(repos.CommentRepo, repos.ItemRepo, container.Organization)
	container.Export = services.NewExportService(repos.ItemRepo, container.Organization,
		services.WithExportClock(func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }))
	container.Reporting = services.NewReportingService(repos.ItemRepo, container.Organization)

	user := func(id string, role domain.UserRole, unitID string) *domain.User {
		return &domain.User{UserID: id, Name: "User " + id, Email: id + "@example.pl", Role: role, UnitID: unitID}
	}
	return &hierarchyFixture{
		store:    store,
		services: container,
		schUser:  user("u-sch", domain.RoleBasic, "sch"),
		libUser:  user("u-lib", domain.RoleBasic, "lib"),
		munUser:  user("u-mun", domain.RoleApprover, "mun"),
		ctyUser:  user("u-cty", domain.RoleApprover, "cty"),
		voiUser:  user("u-voi", domain.RoleApprover, "voi"),
		admin:    user("u-admin", domain.RoleAdmin, "voi"),
	}
}

func itemFields(year int, amount string) domain.BudgetItemFields {
	return domain.BudgetItemFields{
		BudgetSection:  "30 – Oświata i wychowanie",
		BudgetDivision: "801 – Oświata i wychowanie",
		BudgetChapter:  "80101 – Szkoły podstawowe",
		Category:       "Wydatki bieżące",
		Description:    "Pozycja " + amount,
		Year:           year,
		Amount:         decimal.RequireFromString(amount),
	}
}
