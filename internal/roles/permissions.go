package roles

import "strings"

type Permission string

const (
	PostJob           Permission = "opportunity:post_job"
	PostInvestment    Permission = "opportunity:post_investment"
	PostPartnership   Permission = "opportunity:post_partnership"
	PostCollaboration Permission = "opportunity:post_collaboration"
	ApplyJob          Permission = "application:apply_job"
	ViewInvestments   Permission = "opportunity:view_investments"
	AdminReview       Permission = "admin:review"

	dashboardPermPrefix = "dashboard:"
)

// Permissions maps a permission to the roles that grant it. Holding any one
// of them is enough.
var Permissions = map[Permission][]Role{
	PostJob:           {Employer, BusinessOwner},
	PostInvestment:    {BusinessOwner, Investor},
	PostPartnership:   {Professional, Employer, BusinessOwner, Investor},
	PostCollaboration: {Professional, BusinessOwner, JobSeeker},
	ApplyJob:          {JobSeeker, Professional},
	ViewInvestments:   {Investor, BusinessOwner},
	AdminReview:       {Admin},
}

// Dashboard is the permission for a role's dashboard.
func Dashboard(r Role) Permission {
	return Permission(dashboardPermPrefix + string(r))
}

// RequiredRoles returns the roles that grant p, or nil for an unknown
// permission.
func RequiredRoles(p Permission) []Role {
	if rs, ok := Permissions[p]; ok {
		return rs
	}
	if strings.HasPrefix(string(p), dashboardPermPrefix) {
		r := Role(strings.TrimPrefix(string(p), dashboardPermPrefix))
		if r.Valid() {
			return []Role{r}
		}
	}
	return nil
}

// Can reports whether a holder of set may use p. Admins pass every known
// permission; unknown permissions are denied to everyone.
func Can(set Set, isAdmin bool, p Permission) bool {
	required := RequiredRoles(p)
	if required == nil {
		return false
	}
	if isAdmin {
		return true
	}
	return set.HasAny(required...)
}

// PostPermissionFor maps an opportunity type to the permission needed to
// post it.
func PostPermissionFor(opportunityType string) (Permission, bool) {
	switch opportunityType {
	case "job":
		return PostJob, true
	case "investment":
		return PostInvestment, true
	case "partnership":
		return PostPartnership, true
	case "collaboration":
		return PostCollaboration, true
	}
	return "", false
}
