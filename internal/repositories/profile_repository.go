package repositories

import (
	"errors"
	"fmt"

	"memberhub_backend/internal/models"
	"memberhub_backend/internal/roles"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
)

// ProfileRepository stores the role-specific sub-profiles. Each role has its
// own table keyed by a unique user_id.
type ProfileRepository interface {
	FindByUserID(db *gorm.DB, userID string, role roles.Role) (models.RoleProfile, error)
	// Upsert inserts the profile or overwrites the existing row for its user.
	Upsert(db *gorm.DB, userID string, profile models.RoleProfile) error
	DeleteByUserID(db *gorm.DB, userID string, role roles.Role) error
}

type profileRepository struct{}

func NewProfileRepository() ProfileRepository {
	return &profileRepository{}
}

func (r *profileRepository) FindByUserID(db *gorm.DB, userID string, role roles.Role) (models.RoleProfile, error) {
	profile := models.NewProfile(role)
	if profile == nil {
		return nil, fmt.Errorf("no profile for role %q", role)
	}
	if err := db.Where("user_id = ?", userID).First(profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (r *profileRepository) Upsert(db *gorm.DB, userID string, profile models.RoleProfile) error {
	if err := setProfileOwner(profile, userID); err != nil {
		return err
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(profileColumns(profile)),
	}).Create(profile).Error
}

func (r *profileRepository) DeleteByUserID(db *gorm.DB, userID string, role roles.Role) error {
	profile := models.NewProfile(role)
	if profile == nil {
		return fmt.Errorf("no profile for role %q", role)
	}
	return db.Where("user_id = ?", userID).Delete(profile).Error
}

// setProfileOwner pins the row to userID and clears any client-sent id.
func setProfileOwner(profile models.RoleProfile, userID string) error {
	switch p := profile.(type) {
	case *models.ProfessionalProfile:
		p.ID, p.UserID = "", userID
	case *models.JobSeekerProfile:
		p.ID, p.UserID = "", userID
	case *models.EmployerProfile:
		p.ID, p.UserID = "", userID
	case *models.BusinessOwnerProfile:
		p.ID, p.UserID = "", userID
	case *models.InvestorProfile:
		p.ID, p.UserID = "", userID
	default:
		return fmt.Errorf("unsupported profile type %T", profile)
	}
	return nil
}

// profileColumns lists the editable columns overwritten on conflict.
func profileColumns(profile models.RoleProfile) []string {
	cols := []string{"updated_at"}
	switch profile.(type) {
	case *models.ProfessionalProfile:
		cols = append(cols, "title", "industry", "years_experience", "skills", "linked_in_url", "bio")
	case *models.JobSeekerProfile:
		cols = append(cols, "desired_role", "experience_level", "skills", "resume_url", "open_to_remote")
	case *models.EmployerProfile:
		cols = append(cols, "company_name", "company_size", "industry", "website", "description")
	case *models.BusinessOwnerProfile:
		cols = append(cols, "business_name", "industry", "stage", "website", "description", "seeking_investment")
	case *models.InvestorProfile:
		cols = append(cols, "investor_type", "focus_areas", "ticket_min", "ticket_max", "portfolio_url")
	}
	return cols
}
