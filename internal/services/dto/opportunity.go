package dto

import (
	"encoding/json"
	"time"
)

type CreateOpportunityRequest struct {
	Type        string          `json:"type" validate:"required,opportunity_type"`
	Title       string          `json:"title" validate:"required,min=3,max=200"`
	Description string          `json:"description" validate:"required,max=10000"`
	Location    string          `json:"location" validate:"max=120"`
	Industry    string          `json:"industry" validate:"max=120"`
	IsRemote    bool            `json:"is_remote"`
	Details     json.RawMessage `json:"details" swaggertype:"object"`
	ExpiresAt   *time.Time      `json:"expires_at"`
}

// UpdateOpportunityRequest - nil fields are left unchanged. Title and
// description may not be blanked. The type of an opportunity cannot change.
type UpdateOpportunityRequest struct {
	Title       *string         `json:"title" validate:"omitnil,min=3,max=200"`
	Description *string         `json:"description" validate:"omitnil,min=1,max=10000"`
	Location    *string         `json:"location" validate:"omitempty,max=120"`
	Industry    *string         `json:"industry" validate:"omitempty,max=120"`
	IsRemote    *bool           `json:"is_remote"`
	Details     json.RawMessage `json:"details" swaggertype:"object"`
	ExpiresAt   *time.Time      `json:"expires_at"`
}

type UpdateOpportunityStatusRequest struct {
	Status string `json:"status" validate:"required,opportunity_status"`
}

type OpportunityListQuery struct {
	Type     string `form:"type" validate:"omitempty,opportunity_type"`
	Location string `form:"location" validate:"omitempty,max=120"`
	Industry string `form:"industry" validate:"omitempty,max=120"`
	Query    string `form:"q" validate:"omitempty,max=100"`
	IsRemote *bool  `form:"is_remote"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

type AdminOpportunityQuery struct {
	ApprovalStatus string `form:"approval_status" validate:"omitempty,approval_status"`
}
