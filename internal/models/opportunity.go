package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type Opportunity struct {
	BaseModel
	OwnerID     string            `gorm:"type:uuid;not null;index" json:"owner_id"`
	Type        OpportunityType   `gorm:"type:varchar(20);not null;index" json:"type"`
	Title       string            `gorm:"not null" json:"title"`
	Description string            `gorm:"type:text" json:"description"`
	Location    string            `gorm:"index" json:"location"`
	Industry    string            `gorm:"index" json:"industry"`
	IsRemote    bool              `gorm:"default:false" json:"is_remote"`
	Status      OpportunityStatus `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	Details     datatypes.JSON    `gorm:"type:jsonb" json:"details" swaggertype:"object"`
	ExpiresAt   *time.Time        `gorm:"index" json:"expires_at,omitempty"`
	Views       int               `gorm:"default:0" json:"views"`
	Review

	Owner        *User         `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	Applications []Application `gorm:"foreignKey:OpportunityID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsPublic reports whether the row belongs in public listings.
func (o *Opportunity) IsPublic() bool {
	return o.ApprovalStatus == ApprovalApproved && o.Status == OpportunityOpen
}

type Application struct {
	BaseModel
	OpportunityID string            `gorm:"type:uuid;not null;uniqueIndex:idx_application_opportunity_applicant" json:"opportunity_id"`
	ApplicantID   string            `gorm:"type:uuid;not null;uniqueIndex:idx_application_opportunity_applicant;index" json:"applicant_id"`
	CoverLetter   string            `gorm:"type:text" json:"cover_letter"`
	ResumeURL     string            `json:"resume_url,omitempty"`
	Status        ApplicationStatus `gorm:"type:varchar(20);not null;default:'applied'" json:"status"`
	OwnerNote     string            `json:"owner_note,omitempty"`

	Opportunity *Opportunity `gorm:"foreignKey:OpportunityID" json:"opportunity,omitempty"`
	Applicant   *User        `gorm:"foreignKey:ApplicantID;constraint:OnDelete:CASCADE" json:"-"`
}

type MembershipApplication struct {
	BaseModel
	UserID         string         `gorm:"type:uuid;not null;index" json:"user_id"`
	RequestedRoles pq.StringArray `gorm:"type:text[]" json:"requested_roles" swaggertype:"array,string"`
	Motivation     string         `gorm:"type:text" json:"motivation"`
	Status         ApprovalStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ReviewNote     string         `json:"review_note,omitempty"`
	ReviewedBy     *string        `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time     `json:"reviewed_at,omitempty"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
