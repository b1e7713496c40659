package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Auth      AuthSvcFacade
	Tenant    TenantSvcFacade
	Vendor    VendorSvcFacade
	Chart     ChartSvcFacade
	Customer  CustomerSvcFacade
	Ledger    LedgerSvcFacade
	Session   SessionSvcFacade
	Loan      LoanSvcFacade
	FD        FDSvcFacade
	Merchant  MerchantSvcFacade
	Pending   PendingSvcFacade
	Reporting ReportingSvcFacade
}
