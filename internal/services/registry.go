package services

import (
	"context"
	"time"

	"memberhub_backend/internal/auth"
	"memberhub_backend/internal/cache"
	"memberhub_backend/internal/config"
	"memberhub_backend/internal/email"
	"memberhub_backend/internal/models"
	"memberhub_backend/internal/repositories"
	"memberhub_backend/internal/storage"
)

// ServiceContainer holds every application service.
type ServiceContainer struct {
	AuthService        AuthService
	UserService        UserService
	ProfileService     ProfileService
	MembershipService  MembershipService
	OpportunityService OpportunityService
	ApplicationService ApplicationService
	DashboardService   DashboardService
	LeaderService      ContentService[models.Leader]
	GalleryService     ContentService[models.GalleryImage]
	VideoService       ContentService[models.Video]
	UploadService      UploadService
}

// Dependencies are the infrastructure pieces services are built from.
type Dependencies struct {
	Tokens       *auth.TokenService
	Mailer       *email.Mailer
	Cache        cache.Cache
	CacheTTL     time.Duration
	RefreshTTL   time.Duration
	Storage      storage.Storage
	UploadPolicy config.UploadPolicy
	Details      DetailsValidator
	Notifier     Notifier
}

func NewServiceContainer(deps Dependencies) *ServiceContainer {
	userRepo := repositories.NewUserRepository()
	refreshTokenRepo := repositories.NewRefreshTokenRepository()
	profileRepo := repositories.NewProfileRepository()
	membershipRepo := repositories.NewMembershipRepository()
	opportunityRepo := repositories.NewOpportunityRepository()
	applicationRepo := repositories.NewApplicationRepository()

	leaders := newContentService(string(models.ContentLeaders), repositories.NewContentRepository[models.Leader](), deps.Cache, deps.CacheTTL,
		func(l *models.Leader, order int) { l.DisplayOrder = order })
	videos := newContentService(string(models.ContentVideos), repositories.NewContentRepository[models.Video](), deps.Cache, deps.CacheTTL,
		func(v *models.Video, order int) { v.DisplayOrder = order })
	gallery := newContentService(string(models.ContentGallery), repositories.NewContentRepository[models.GalleryImage](), deps.Cache, deps.CacheTTL,
		func(g *models.GalleryImage, order int) { g.DisplayOrder = order })

	var uploads UploadService
	if deps.Storage != nil {
		uploads = NewUploadService(deps.Storage, deps.UploadPolicy, gallery)
		gallery.onDelete = func(ctx context.Context, img *models.GalleryImage) {
			uploads.RemoveFile(ctx, img.StorageKey)
		}
	}

	return &ServiceContainer{
		AuthService:        NewAuthService(userRepo, refreshTokenRepo, deps.Tokens, deps.Mailer, deps.RefreshTTL),
		UserService:        NewUserService(userRepo, refreshTokenRepo),
		ProfileService:     NewProfileService(userRepo, profileRepo),
		MembershipService:  NewMembershipService(userRepo, membershipRepo, deps.Mailer, deps.Notifier),
		OpportunityService: NewOpportunityService(opportunityRepo, userRepo, deps.Details, deps.Cache, deps.CacheTTL, deps.Mailer, deps.Notifier),
		ApplicationService: NewApplicationService(applicationRepo, opportunityRepo, userRepo, deps.Mailer, deps.Notifier),
		DashboardService:   NewDashboardService(userRepo, opportunityRepo, applicationRepo),
		LeaderService:      leaders,
		GalleryService:     gallery,
		VideoService:       videos,
		UploadService:      uploads,
	}
}
