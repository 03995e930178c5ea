package models

import (
	"github.com/lib/pq"

	"memberhub_backend/internal/roles"
)

// RoleProfile is implemented by every role-specific sub-profile.
type RoleProfile interface {
	Role() roles.Role
	// Complete reports whether the required fields are filled.
	Complete() bool
}

type ProfessionalProfile struct {
	BaseModel
	UserID          string         `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Title           string         `json:"title"`
	Industry        string         `json:"industry"`
	YearsExperience int            `json:"years_experience"`
	Skills          pq.StringArray `gorm:"type:text[]" json:"skills" swaggerignore:"true"`
	LinkedInURL     string         `json:"linkedin_url"`
	Bio             string         `json:"bio"`
}

func (p *ProfessionalProfile) Role() roles.Role { return roles.Professional }
func (p *ProfessionalProfile) Complete() bool   { return p.Title != "" && p.Industry != "" }

type JobSeekerProfile struct {
	BaseModel
	UserID          string         `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	DesiredRole     string         `json:"desired_role"`
	ExperienceLevel string         `json:"experience_level"`
	Skills          pq.StringArray `gorm:"type:text[]" json:"skills" swaggerignore:"true"`
	ResumeURL       string         `json:"resume_url"`
	OpenToRemote    bool           `json:"open_to_remote"`
}

func (p *JobSeekerProfile) Role() roles.Role { return roles.JobSeeker }
func (p *JobSeekerProfile) Complete() bool {
	return p.DesiredRole != "" && p.ExperienceLevel != ""
}

type EmployerProfile struct {
	BaseModel
	UserID      string `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	CompanyName string `json:"company_name"`
	CompanySize string `json:"company_size"`
	Industry    string `json:"industry"`
	Website     string `json:"website"`
	Description string `json:"description"`
}

func (p *EmployerProfile) Role() roles.Role { return roles.Employer }
func (p *EmployerProfile) Complete() bool   { return p.CompanyName != "" && p.Industry != "" }

type BusinessOwnerProfile struct {
	BaseModel
	UserID            string `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	BusinessName      string `json:"business_name"`
	Industry          string `json:"industry"`
	Stage             string `json:"stage"`
	Website           string `json:"website"`
	Description       string `json:"description"`
	SeekingInvestment bool   `json:"seeking_investment"`
}

func (p *BusinessOwnerProfile) Role() roles.Role { return roles.BusinessOwner }
func (p *BusinessOwnerProfile) Complete() bool {
	return p.BusinessName != "" && p.Industry != "" && p.Stage != ""
}

type InvestorProfile struct {
	BaseModel
	UserID       string         `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	InvestorType string         `json:"investor_type"`
	FocusAreas   pq.StringArray `gorm:"type:text[]" json:"focus_areas" swaggerignore:"true"`
	TicketMin    int64          `json:"ticket_min"`
	TicketMax    int64          `json:"ticket_max"`
	PortfolioURL string         `json:"portfolio_url"`
}

func (p *InvestorProfile) Role() roles.Role { return roles.Investor }
func (p *InvestorProfile) Complete() bool {
	return p.InvestorType != "" && len(p.FocusAreas) > 0
}

// ProfileFor returns the loaded sub-profile for r, or nil.
func (u *User) ProfileFor(r roles.Role) RoleProfile {
	switch r {
	case roles.Professional:
		if u.ProfessionalProfile != nil {
			return u.ProfessionalProfile
		}
	case roles.JobSeeker:
		if u.JobSeekerProfile != nil {
			return u.JobSeekerProfile
		}
	case roles.Employer:
		if u.EmployerProfile != nil {
			return u.EmployerProfile
		}
	case roles.BusinessOwner:
		if u.BusinessOwnerProfile != nil {
			return u.BusinessOwnerProfile
		}
	case roles.Investor:
		if u.InvestorProfile != nil {
			return u.InvestorProfile
		}
	}
	return nil
}

// MissingProfiles lists roles in want whose sub-profile is absent or
// incomplete. The user must be loaded with its profile relations.
func (u *User) MissingProfiles(want roles.Set) []roles.Role {
	var missing []roles.Role
	for _, r := range want {
		p := u.ProfileFor(r)
		if p == nil || !p.Complete() {
			missing = append(missing, r)
		}
	}
	return missing
}

// ProfileComplete requires a name, at least one role and a complete
// sub-profile for every role held.
func (u *User) ProfileComplete() bool {
	set := u.RoleSet()
	if u.FullName == "" || set.IsEmpty() {
		return false
	}
	return len(u.MissingProfiles(set)) == 0
}

// NewProfile returns an empty sub-profile for r, or nil for roles
// without one.
func NewProfile(r roles.Role) RoleProfile {
	switch r {
	case roles.Professional:
		return &ProfessionalProfile{}
	case roles.JobSeeker:
		return &JobSeekerProfile{}
	case roles.Employer:
		return &EmployerProfile{}
	case roles.BusinessOwner:
		return &BusinessOwnerProfile{}
	case roles.Investor:
		return &InvestorProfile{}
	}
	return nil
}
