package handlers

// AppHandlers holds every HTTP handler of the application.
type AppHandlers struct {
	HealthHandler      *HealthHandler
	AuthHandler        *AuthHandler
	UserHandler        *UserHandler
	ProfileHandler     *ProfileHandler
	MembershipHandler  *MembershipHandler
	OpportunityHandler *OpportunityHandler
	ApplicationHandler *ApplicationHandler
	DashboardHandler   *DashboardHandler
	ContentHandler     *ContentHandler
	AdminHandler       *AdminHandler
}
