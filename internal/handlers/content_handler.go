package handlers

import (
	"net/http"

	"memberhub_backend/internal/models"
	"memberhub_backend/internal/repositories"
	"memberhub_backend/internal/services"
	"memberhub_backend/internal/services/dto"
	"memberhub_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// contentResource serves one kind of marketing content. R is the request
// body used for both create and update.
type contentResource[T repositories.ContentItem, R any] struct {
	*BaseHandler
	service services.ContentService[T]
	// build turns a create request into a row and its requested position.
	build func(req *R) (*T, *int)
	// apply copies an update request onto a stored row.
	apply func(item *T, req *R)
}

func (r *contentResource[T, R]) register(public, admin *gin.RouterGroup, kind string) {
	public.GET("/"+kind, r.listPublic)

	group := admin.Group("/" + kind)
	{
		group.GET("", r.listAll)
		group.POST("", r.create)
		group.PUT("/reorder", r.reorder)
		group.GET("/:id", r.get)
		group.PUT("/:id", r.update)
		group.DELETE("/:id", r.delete)
	}
}

func (r *contentResource[T, R]) listPublic(c *gin.Context) {
	items, err := r.service.ListPublic(c.Request.Context(), r.GetDB(c))
	if err != nil {
		r.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (r *contentResource[T, R]) listAll(c *gin.Context) {
	items, err := r.service.ListAll(r.GetDB(c))
	if err != nil {
		r.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (r *contentResource[T, R]) get(c *gin.Context) {
	item, err := r.service.Get(r.GetDB(c), c.Param("id"))
	if err != nil {
		r.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (r *contentResource[T, R]) create(c *gin.Context) {
	var req R
	if !r.BindAndValidate_JSON(c, &req) {
		return
	}

	item, order := r.build(&req)
	if err := r.service.Create(c.Request.Context(), r.GetDB(c), item, order); err != nil {
		r.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (r *contentResource[T, R]) update(c *gin.Context) {
	var req R
	if !r.BindAndValidate_JSON(c, &req) {
		return
	}

	item, err := r.service.Update(c.Request.Context(), r.GetDB(c), c.Param("id"), func(item *T) {
		r.apply(item, &req)
	})
	if err != nil {
		r.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (r *contentResource[T, R]) delete(c *gin.Context) {
	if err := r.service.Delete(c.Request.Context(), r.GetDB(c), c.Param("id")); err != nil {
		r.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *contentResource[T, R]) reorder(c *gin.Context) {
	var req dto.ReorderRequest
	if !r.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := r.service.Reorder(c.Request.Context(), r.GetDB(c), req.IDs); err != nil {
		r.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ContentHandler serves leaders, gallery images and videos: public lists of
// visible rows plus admin CRUD, reordering and gallery uploads.
type ContentHandler struct {
	*BaseHandler
	leaders *contentResource[models.Leader, dto.LeaderRequest]
	gallery *contentResource[models.GalleryImage, dto.GalleryImageRequest]
	videos  *contentResource[models.Video, dto.VideoRequest]
	uploads services.UploadService
}

func NewContentHandler(
	base *BaseHandler,
	leaders services.ContentService[models.Leader],
	gallery services.ContentService[models.GalleryImage],
	videos services.ContentService[models.Video],
	uploads services.UploadService,
) *ContentHandler {
	return &ContentHandler{
		BaseHandler: base,
		leaders: &contentResource[models.Leader, dto.LeaderRequest]{
			BaseHandler: base,
			service:     leaders,
			build: func(req *dto.LeaderRequest) (*models.Leader, *int) {
				item := &models.Leader{IsVisible: true}
				applyLeader(item, req)
				return item, req.DisplayOrder
			},
			apply: applyLeader,
		},
		gallery: &contentResource[models.GalleryImage, dto.GalleryImageRequest]{
			BaseHandler: base,
			service:     gallery,
			build: func(req *dto.GalleryImageRequest) (*models.GalleryImage, *int) {
				item := &models.GalleryImage{IsVisible: true}
				applyGalleryImage(item, req)
				return item, req.DisplayOrder
			},
			apply: applyGalleryImage,
		},
		videos: &contentResource[models.Video, dto.VideoRequest]{
			BaseHandler: base,
			service:     videos,
			build: func(req *dto.VideoRequest) (*models.Video, *int) {
				item := &models.Video{IsVisible: true}
				applyVideo(item, req)
				return item, req.DisplayOrder
			},
			apply: applyVideo,
		},
		uploads: uploads,
	}
}

func (h *ContentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(h.Guards.Auth, h.Guards.Admin)

	// Registered before the generic gallery routes so that /upload is not
	// taken for an id.
	admin.POST("/gallery/upload", h.UploadGalleryImage)

	h.leaders.register(rg, admin, string(models.ContentLeaders))
	h.gallery.register(rg, admin, string(models.ContentGallery))
	h.videos.register(rg, admin, string(models.ContentVideos))
}

// UploadGalleryImage godoc
// @Summary      Upload a gallery image
// @Description  Stores a jpeg, png, gif or webp file and adds it to the gallery.
// @Tags         content
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file     formData  file    true   "Image"
// @Param        title    formData  string  false  "Title, defaults to the file name"
// @Param        caption  formData  string  false  "Caption"
// @Success      201      {object}  models.GalleryImage
// @Failure      413      {object}  apperrors.ErrorResponse
// @Failure      415      {object}  apperrors.ErrorResponse
// @Router       /admin/gallery/upload [post]
func (h *ContentHandler) UploadGalleryImage(c *gin.Context) {
	if h.uploads == nil {
		h.HandleServiceError(c, apperrors.New(apperrors.CodeInvalidOperation, "upload", "File uploads are not configured", http.StatusServiceUnavailable))
		return
	}

	var form dto.UploadGalleryForm
	if !h.BindAndValidate_Form(c, &form) {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		h.HandleServiceError(c, apperrors.ValidationError(map[string]string{"file": "This field is required"}))
		return
	}

	image, err := h.uploads.UploadGalleryImage(c.Request.Context(), h.GetDB(c), file, &form)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, image)
}

func applyLeader(item *models.Leader, req *dto.LeaderRequest) {
	item.Name = req.Name
	item.Title = req.Title
	item.Bio = req.Bio
	item.PhotoURL = req.PhotoURL
	item.LinkedInURL = req.LinkedInURL
	if req.DisplayOrder != nil {
		item.DisplayOrder = *req.DisplayOrder
	}
	if req.IsVisible != nil {
		item.IsVisible = *req.IsVisible
	}
}

func applyGalleryImage(item *models.GalleryImage, req *dto.GalleryImageRequest) {
	item.Title = req.Title
	item.Caption = req.Caption
	// StorageKey is kept so that an uploaded file is still removed with the row.
	item.ImageURL = req.ImageURL
	if req.DisplayOrder != nil {
		item.DisplayOrder = *req.DisplayOrder
	}
	if req.IsVisible != nil {
		item.IsVisible = *req.IsVisible
	}
}

func applyVideo(item *models.Video, req *dto.VideoRequest) {
	item.Title = req.Title
	item.Description = req.Description
	item.VideoURL = req.VideoURL
	item.ThumbnailURL = req.ThumbnailURL
	if req.DisplayOrder != nil {
		item.DisplayOrder = *req.DisplayOrder
	}
	if req.IsVisible != nil {
		item.IsVisible = *req.IsVisible
	}
}
