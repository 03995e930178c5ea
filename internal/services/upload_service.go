package services

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"memberhub_backend/internal/config"
	"memberhub_backend/internal/logger"
	"memberhub_backend/internal/models"
	"memberhub_backend/internal/services/dto"
	"memberhub_backend/internal/storage"
	"memberhub_backend/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ============================================
// GALLERY UPLOADS
// ============================================

type UploadService interface {
	// UploadGalleryImage stores the file and creates a gallery row pointing
	// at it. The file is removed again when the row cannot be written.
	UploadGalleryImage(ctx context.Context, db *gorm.DB, file *multipart.FileHeader, form *dto.UploadGalleryForm) (*models.GalleryImage, error)
	// RemoveFile drops a stored object; failures are logged only.
	RemoveFile(ctx context.Context, key string)
}

type uploadService struct {
	storage storage.Storage
	policy  config.UploadPolicy
	gallery ContentService[models.GalleryImage]
	now     func() time.Time
}

func NewUploadService(store storage.Storage, policy config.UploadPolicy, gallery ContentService[models.GalleryImage]) UploadService {
	return &uploadService{
		storage: store,
		policy:  policy,
		gallery: gallery,
		now:     time.Now,
	}
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

func (s *uploadService) UploadGalleryImage(ctx context.Context, db *gorm.DB, file *multipart.FileHeader, form *dto.UploadGalleryForm) (*models.GalleryImage, error) {
	if file == nil {
		return nil, apperrors.ValidationError(map[string]string{"file": "File is required"})
	}
	if s.policy.MaxSize > 0 && file.Size > s.policy.MaxSize {
		return nil, apperrors.ErrFileTooLarge.WithDetails(map[string]int64{"max_size": s.policy.MaxSize})
	}

	src, err := file.Open()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeValidationFailed, "upload", "Failed to read uploaded file", http.StatusBadRequest)
	}
	defer src.Close()

	contentType, body, err := sniff(src)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	ext, isImage := imageExtensions[contentType]
	if !isImage || !s.policy.Allows(contentType) {
		return nil, apperrors.ErrInvalidFileType.WithDetails(map[string]interface{}{
			"content_type":  contentType,
			"allowed_types": s.policy.AllowedTypes,
		})
	}

	key := s.objectKey(ext)
	if err := s.storage.Save(ctx, key, body, contentType); err != nil {
		return nil, apperrors.InternalError(err)
	}

	url, err := s.storage.GetURL(ctx, key)
	if err != nil {
		s.RemoveFile(ctx, key)
		return nil, apperrors.InternalError(err)
	}

	title := form.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(file.Filename), filepath.Ext(file.Filename))
	}
	img := &models.GalleryImage{
		Title:      title,
		Caption:    form.Caption,
		ImageURL:   url,
		StorageKey: key,
		IsVisible:  true,
	}
	if err := s.gallery.Create(ctx, db, img, nil); err != nil {
		s.RemoveFile(ctx, key)
		return nil, err
	}

	logger.CtxInfo(ctx, "Gallery image uploaded", "id", img.ID, "key", key, "size", file.Size)
	return img, nil
}

func (s *uploadService) RemoveFile(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		logger.CtxWithError(ctx, "Failed to delete stored file", err, "key", key)
	}
}

// objectKey lays uploads out as gallery/yyyy/mm/<uuid><ext>.
func (s *uploadService) objectKey(ext string) string {
	now := s.now().UTC()
	return path.Join("gallery", now.Format("2006"), now.Format("01"), uuid.NewString()+ext)
}

// sniff detects the content type from the first 512 bytes and returns a
// reader that still yields the whole file.
func sniff(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", nil, err
	}
	head = head[:n]
	contentType := strings.TrimSpace(strings.SplitN(http.DetectContentType(head), ";", 2)[0])
	return contentType, io.MultiReader(bytes.NewReader(head), r), nil
}
