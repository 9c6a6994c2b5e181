package services

import (
	portsrepo "github.com/SscSPs/budget_approval_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/budget_approval_app/internal/core/ports/services"
	"github.com/SscSPs/budget_approval_app/internal/export"
	"github.com/SscSPs/budget_approval_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// archive may be nil, in which case exports are not stored.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, archive portssvc.ExportArchive) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The hierarchy is needed by every workflow service for scoping.
	container.Organization = NewOrganizationService(repos.UnitRepo)
	hierarchy := container.Organization

	container.User = NewUserService(repos.UserRepo, repos.UnitRepo)
	container.Version = NewVersionService(repos.VersionRepo, repos.ItemRepo, hierarchy)
	recorder := container.Version

	container.BudgetItem = NewBudgetItemService(repos.ItemRepo, hierarchy, WithItemVersionRecorder(recorder))
	container.Workflow = NewWorkflowService(
		repos.ItemRepo,
		repos.SubmissionRepo,
		repos.LimitRepo,
		hierarchy,
		WithWorkflowVersionRecorder(recorder),
	)
	container.Limit = NewLimitService(repos.LimitRepo, repos.ItemRepo, hierarchy, WithLimitVersionRecorder(recorder))
	container.Discussion = NewDiscussionService(repos.CommentRepo, repos.ItemRepo, hierarchy)

	exportOptions := []ExportServiceOption{
		WithLetterRecipient(cfg.LetterRecipientName, cfg.LetterRecipientTitle),
		WithTrezorHeader(export.TrezorHeader{
			EntityID:   cfg.TrezorEntityID,
			EntityName: cfg.TrezorEntityName,
			Part:       cfg.TrezorPart,
		}),
	}
	if archive != nil {
		exportOptions = append(exportOptions, WithExportArchive(archive))
	}
	container.Export = NewExportService(repos.ItemRepo, hierarchy, exportOptions...)
	container.Reporting = NewReportingService(repos.ItemRepo, hierarchy)

	container.TokenService = NewTokenService(cfg)
	container.GoogleOAuthHandler = NewGoogleOAuthHandlerService(cfg)

	return container
}
