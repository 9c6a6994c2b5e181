package services

import (
	"context"

	"github.com/SscSPs/budget_approval_app/internal/core/domain"
)

// ExportFormat selects an export generator.
type ExportFormat string

const (
	ExportFormatDocx   ExportFormat = "docx"
	ExportFormatXlsx   ExportFormat = "xlsx"
	ExportFormatTrezor ExportFormat = "trezor"
)

// ExportFile is a generated document.
type ExportFile struct {
	FileName    string
	ContentType string
	Content     []byte
	// ArchiveKey is set when the file was also stored in the export archive.
	ArchiveKey string
}

// ExportSvcFacade renders approved data of a unit subtree.
type ExportSvcFacade interface {
	BuildSummary(ctx context.Context, actor *domain.User, unitID string, year *int) (*domain.BudgetSummary, error)
	Export(ctx context.Context, actor *domain.User, unitID string, year *int, format ExportFormat) (*ExportFile, error)
}

// ExportArchive stores generated files outside the process.
type ExportArchive interface {
	Store(ctx context.Context, key, contentType string, content []byte) error
}
