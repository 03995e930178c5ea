package dto

type LeaderRequest struct {
	Name         string `json:"name" validate:"required,max=120"`
	Title        string `json:"title" validate:"max=120"`
	Bio          string `json:"bio" validate:"max=5000"`
	PhotoURL     string `json:"photo_url" validate:"omitempty,url"`
	LinkedInURL  string `json:"linkedin_url" validate:"omitempty,url"`
	DisplayOrder *int   `json:"display_order" validate:"omitempty,min=0"`
	IsVisible    *bool  `json:"is_visible"`
}

type GalleryImageRequest struct {
	Title        string `json:"title" validate:"max=200"`
	Caption      string `json:"caption" validate:"max=1000"`
	ImageURL     string `json:"image_url" validate:"required,url"`
	DisplayOrder *int   `json:"display_order" validate:"omitempty,min=0"`
	IsVisible    *bool  `json:"is_visible"`
}

type VideoRequest struct {
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description" validate:"max=5000"`
	VideoURL     string `json:"video_url" validate:"required,url"`
	ThumbnailURL string `json:"thumbnail_url" validate:"omitempty,url"`
	DisplayOrder *int   `json:"display_order" validate:"omitempty,min=0"`
	IsVisible    *bool  `json:"is_visible"`
}

type ReorderRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

// UploadGalleryForm is the non-file part of the multipart upload.
type UploadGalleryForm struct {
	Title   string `form:"title" validate:"max=200"`
	Caption string `form:"caption" validate:"max=1000"`
}
