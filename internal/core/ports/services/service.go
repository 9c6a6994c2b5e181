package services

// ServiceContainer holds instances of all the application services.
// It is built once at startup and handed to the handlers.
type ServiceContainer struct {
	Organization       OrganizationSvcFacade
	User               UserSvcFacade
	BudgetItem         BudgetItemSvcFacade
	Workflow           WorkflowSvcFacade
	Limit              LimitSvcFacade
	Discussion         DiscussionSvcFacade
	Version            VersionSvcFacade
	Export             ExportSvcFacade
	Reporting          ReportingService
	TokenService       TokenSvcFacade
	GoogleOAuthHandler GoogleOAuthHandlerSvcFacade
}
