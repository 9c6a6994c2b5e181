package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/budget_approval_app/internal/apperrors"
	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_approval_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/budget_approval_app/internal/core/ports/services"
	"github.com/SscSPs/budget_approval_app/internal/export"
)

type exportService struct {
	BaseService
	itemRepo     portsrepo.BudgetItemReader
	archive      portssvc.ExportArchive
	letter       export.LetterOptions
	trezorHeader export.TrezorHeader
	now          func() time.Time
}

// ExportServiceOption is a functional option for configuring the export service
type ExportServiceOption func(*exportService)

// WithExportArchive stores a copy of every generated file.
func WithExportArchive(archive portssvc.ExportArchive) ExportServiceOption {
	return func(s *exportService) {
		s.archive = archive
	}
}

// WithLetterRecipient sets the addressee of the DOCX letter.
func WithLetterRecipient(name, title string) ExportServiceOption {
	return func(s *exportService) {
		s.letter.RecipientName = name
		s.letter.RecipientTitle = title
	}
}

// WithTrezorHeader sets the reporting entity of TREZOR payloads.
func WithTrezorHeader(header export.TrezorHeader) ExportServiceOption {
	return func(s *exportService) {
		s.trezorHeader = header
	}
}

// WithExportClock overrides the time stamped into generated files.
func WithExportClock(now func() time.Time) ExportServiceOption {
	return func(s *exportService) {
		s.now = now
	}
}

// NewExportService creates a new export service
func NewExportService(
	itemRepo portsrepo.BudgetItemReader,
	hierarchy portssvc.OrganizationReaderSvc,
	options ...ExportServiceOption,
) portssvc.ExportSvcFacade {
	s := &exportService{
		BaseService:  BaseService{Hierarchy: hierarchy},
		itemRepo:     itemRepo,
		trezorHeader: export.DefaultTrezorHeader,
		now:          time.Now,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

var _ portssvc.ExportSvcFacade = (*exportService)(nil)

func (s *exportService) BuildSummary(ctx context.Context, actor *domain.User, unitID string, year *int) (*domain.BudgetSummary, error) {
	_, items, err := s.approvedItems(ctx, actor, unitID, year)
	if err != nil {
		return nil, err
	}
	summary := domain.SummarizeByClassification(items)
	return &summary, nil
}

// Export renders the approved items of the unit subtree in format.
func (s *exportService) Export(ctx context.Context, actor *domain.User, unitID string, year *int, format portssvc.ExportFormat) (*portssvc.ExportFile, error) {
	unit, items, err := s.approvedItems(ctx, actor, unitID, year)
	if err != nil {
		return nil, err
	}
	generatedAt := s.now()
	stamp := generatedAt.Format("20060102-150405")

	file := &portssvc.ExportFile{}
	switch format {
	case portssvc.ExportFormatDocx:
		letter := s.letter
		letter.Beneficiary = unit.Name
		file.Content, err = export.BuildDocx(domain.SummarizeByClassification(items), letter)
		file.FileName = fmt.Sprintf("pismo-budzetowe-%s.docx", stamp)
		file.ContentType = export.DocxContentType
	case portssvc.ExportFormatXlsx:
		file.Content, err = export.BuildXlsx(domain.SummarizeByClassification(items))
		file.FileName = fmt.Sprintf("zestawienie-%s.xlsx", stamp)
		file.ContentType = export.XlsxContentType
	case portssvc.ExportFormatTrezor:
		reportYear := reportingYear(items, year, generatedAt)
		file.Content, err = export.BuildTrezor(items, s.trezorHeader, reportYear, generatedAt)
		file.FileName = fmt.Sprintf("trezor-%d-%s.xml", reportYear, stamp)
		file.ContentType = export.TrezorContentType
	default:
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to render export",
			slog.String("unit_id", unitID),
			slog.String("format", string(format)))
		return nil, err
	}

	if s.archive != nil {
		key := fmt.Sprintf("exports/%s/%s", unitID, file.FileName)
		if err := s.archive.Store(ctx, key, file.ContentType, file.Content); err != nil {
			s.LogError(ctx, err, "Failed to archive export", slog.String("key", key))
		} else {
			file.ArchiveKey = key
		}
	}

	s.LogInfo(ctx, "Export generated",
		slog.String("unit_id", unitID),
		slog.String("format", string(format)),
		slog.Int("items", len(items)))
	return file, nil
}

func (s *exportService) approvedItems(ctx context.Context, actor *domain.User, unitID string, year *int) (domain.OrganizationalUnit, []domain.BudgetItem, error) {
	tree, err := s.LoadTree(ctx)
	if err != nil {
		return domain.OrganizationalUnit{}, nil, err
	}
	if err := s.AuthorizeUnit(ctx, tree, actor, unitID); err != nil {
		return domain.OrganizationalUnit{}, nil, err
	}
	unit, _ := tree.Unit(unitID)

	items, err := s.itemRepo.ListItems(ctx, domain.BudgetItemFilter{
		UnitIDs:  tree.SubtreeIDs(unitID),
		Year:     year,
		Statuses: []domain.ItemStatus{domain.ItemStatusApproved},
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to list approved items", slog.String("unit_id", unitID))
		return domain.OrganizationalUnit{}, nil, err
	}
	return unit, items, nil
}

// reportingYear is the requested year, else the latest year among items.
func reportingYear(items []domain.BudgetItem, year *int, now time.Time) int {
	if year != nil {
		return *year
	}
	latest := 0
	for _, item := range items {
		latest = max(latest, item.Year)
	}
	if latest == 0 {
		return now.Year()
	}
	return latest
}
