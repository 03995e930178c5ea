package models

type ApprovalStatus string
type OpportunityType string
type OpportunityStatus string
type ApplicationStatus string
type ContentKind string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"

	OpportunityJob           OpportunityType = "job"
	OpportunityInvestment    OpportunityType = "investment"
	OpportunityPartnership   OpportunityType = "partnership"
	OpportunityCollaboration OpportunityType = "collaboration"

	OpportunityOpen   OpportunityStatus = "open"
	OpportunityClosed OpportunityStatus = "closed"

	ApplicationApplied     ApplicationStatus = "applied"
	ApplicationUnderReview ApplicationStatus = "under_review"
	ApplicationInterview   ApplicationStatus = "interview"
	ApplicationOffer       ApplicationStatus = "offer"
	ApplicationRejected    ApplicationStatus = "rejected"
	ApplicationWithdrawn   ApplicationStatus = "withdrawn"

	ContentLeaders ContentKind = "leaders"
	ContentGallery ContentKind = "gallery"
	ContentVideos  ContentKind = "videos"
)

var OpportunityTypes = []OpportunityType{
	OpportunityJob, OpportunityInvestment, OpportunityPartnership, OpportunityCollaboration,
}

func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

func (t OpportunityType) Valid() bool {
	for _, known := range OpportunityTypes {
		if t == known {
			return true
		}
	}
	return false
}

func (s OpportunityStatus) Valid() bool {
	return s == OpportunityOpen || s == OpportunityClosed
}

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationApplied, ApplicationUnderReview, ApplicationInterview,
		ApplicationOffer, ApplicationRejected, ApplicationWithdrawn:
		return true
	}
	return false
}

// Terminal statuses accept no further transitions.
func (s ApplicationStatus) Terminal() bool {
	return s == ApplicationOffer || s == ApplicationRejected || s == ApplicationWithdrawn
}

func (k ContentKind) Valid() bool {
	return k == ContentLeaders || k == ContentGallery || k == ContentVideos
}
