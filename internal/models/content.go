package models

// Marketing content shown on the public site.

type Leader struct {
	BaseModel
	Name         string `gorm:"not null" json:"name"`
	Title        string `json:"title"`
	Bio          string `gorm:"type:text" json:"bio"`
	PhotoURL     string `json:"photo_url"`
	LinkedInURL  string `json:"linkedin_url,omitempty"`
	DisplayOrder int    `gorm:"default:0;index" json:"display_order"`
	IsVisible    bool   `gorm:"not null" json:"is_visible"`
}

type GalleryImage struct {
	BaseModel
	Title        string `json:"title"`
	Caption      string `json:"caption"`
	ImageURL     string `gorm:"not null" json:"image_url"`
	StorageKey   string `json:"-"` // set for uploaded files
	DisplayOrder int    `gorm:"default:0;index" json:"display_order"`
	IsVisible    bool   `gorm:"not null" json:"is_visible"`
}

type Video struct {
	BaseModel
	Title        string `gorm:"not null" json:"title"`
	Description  string `gorm:"type:text" json:"description"`
	VideoURL     string `gorm:"not null" json:"video_url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	DisplayOrder int    `gorm:"default:0;index" json:"display_order"`
	IsVisible    bool   `gorm:"not null" json:"is_visible"`
}

// AllModels lists every table for AutoMigrate, parents first.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&RefreshToken{},
		&ProfessionalProfile{},
		&JobSeekerProfile{},
		&EmployerProfile{},
		&BusinessOwnerProfile{},
		&InvestorProfile{},
		&MembershipApplication{},
		&Opportunity{},
		&Application{},
		&Leader{},
		&GalleryImage{},
		&Video{},
	}
}
