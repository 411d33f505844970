package services

// ServiceContainer bundles every service facade for route registration.
type ServiceContainer struct {
	Account     AccountSvcFacade
	Category    CategorySvcFacade
	Ledger      LedgerSvcFacade
	Budget      BudgetSvcFacade
	User        UserSvcFacade
	Sync        SyncSvcFacade
	Token       TokenSvcFacade
	GoogleOAuth GoogleOAuthSvcFacade
}
