package models

import (
	"time"

	"github.com/lib/pq"

	"memberhub_backend/internal/roles"
)

type User struct {
	BaseModel
	Email             string `gorm:"uniqueIndex;not null"`
	PasswordHash      string `gorm:"not null"`
	FullName          string
	Phone             string
	Location          string
	Headline          string
	AvatarURL         string
	Roles             pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	IsAdmin           bool           `gorm:"default:false"`
	IsVerified        bool           `gorm:"default:false"`
	VerificationToken string         `gorm:"index"`
	ResetToken        string         `gorm:"index"`
	ResetTokenExp     *time.Time
	LastLoginAt       *time.Time
	Review

	// Relations
	ProfessionalProfile  *ProfessionalProfile  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	JobSeekerProfile     *JobSeekerProfile     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	EmployerProfile      *EmployerProfile      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	BusinessOwnerProfile *BusinessOwnerProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	InvestorProfile      *InvestorProfile      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	RefreshTokens        []RefreshToken        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// RoleSet returns the stored roles as a roles.Set.
func (u *User) RoleSet() roles.Set {
	return roles.FromStrings(u.Roles)
}

func (u *User) SetRoles(s roles.Set) {
	u.Roles = pq.StringArray(s.Strings())
}

func (u *User) IsApproved() bool {
	return u.ApprovalStatus == ApprovalApproved
}

type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"type:uuid;not null;index"`
	Token     string    `gorm:"not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null;index"`
}
