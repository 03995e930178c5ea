package handlers

import (
	"context"
	"mime/multipart"

	"memberhub_backend/internal/auth"
	"memberhub_backend/internal/models"
	"memberhub_backend/internal/services/dto"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type mockOpportunityService struct{ mock.Mock }

func (m *mockOpportunityService) opportunity(args mock.Arguments) (*models.Opportunity, error) {
	if v := args.Get(0); v != nil {
		return v.(*models.Opportunity), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOpportunityService) list(args mock.Arguments) (*dto.ListResponse[models.Opportunity], error) {
	if v := args.Get(0); v != nil {
		return v.(*dto.ListResponse[models.Opportunity]), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOpportunityService) Create(ctx context.Context, db *gorm.DB, viewer *auth.Identity, req *dto.CreateOpportunityRequest) (*models.Opportunity, error) {
	return m.opportunity(m.Called(viewer, req))
}

func (m *mockOpportunityService) ListPublic(ctx context.Context, db *gorm.DB, viewer *auth.Identity, query *dto.OpportunityListQuery) (*dto.ListResponse[models.Opportunity], error) {
	return m.list(m.Called(viewer, query))
}

func (m *mockOpportunityService) Get(ctx context.Context, db *gorm.DB, viewer *auth.Identity, id string) (*models.Opportunity, error) {
	return m.opportunity(m.Called(viewer, id))
}

func (m *mockOpportunityService) ListMine(db *gorm.DB, ownerID string, page, pageSize int) (*dto.ListResponse[models.Opportunity], error) {
	return m.list(m.Called(ownerID, page, pageSize))
}

func (m *mockOpportunityService) Update(ctx context.Context, db *gorm.DB, viewer *auth.Identity, id string, req *dto.UpdateOpportunityRequest) (*models.Opportunity, error) {
	return m.opportunity(m.Called(viewer, id, req))
}

func (m *mockOpportunityService) UpdateStatus(ctx context.Context, db *gorm.DB, viewer *auth.Identity, id string, status models.OpportunityStatus) (*models.Opportunity, error) {
	return m.opportunity(m.Called(viewer, id, status))
}

func (m *mockOpportunityService) Delete(ctx context.Context, db *gorm.DB, viewer *auth.Identity, id string) error {
	return m.Called(viewer, id).Error(0)
}

func (m *mockOpportunityService) ListForReview(db *gorm.DB, status models.ApprovalStatus, page, pageSize int) (*dto.ListResponse[models.Opportunity], error) {
	return m.list(m.Called(status, page, pageSize))
}

func (m *mockOpportunityService) Review(ctx context.Context, db *gorm.DB, adminID, id string, approve bool, reason string) (*models.Opportunity, error) {
	return m.opportunity(m.Called(adminID, id, approve, reason))
}

func (m *mockOpportunityService) CloseExpired(ctx context.Context, db *gorm.DB) (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

type mockDashboardService struct{ mock.Mock }

func (m *mockDashboardService) Summary(db *gorm.DB, viewer *auth.Identity, role string) (*dto.DashboardResponse, error) {
	args := m.Called(viewer, role)
	if v := args.Get(0); v != nil {
		return v.(*dto.DashboardResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockUploadService struct{ mock.Mock }

func (m *mockUploadService) UploadGalleryImage(ctx context.Context, db *gorm.DB, file *multipart.FileHeader, form *dto.UploadGalleryForm) (*models.GalleryImage, error) {
	args := m.Called(file.Filename, form)
	if v := args.Get(0); v != nil {
		return v.(*models.GalleryImage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUploadService) RemoveFile(ctx context.Context, key string) {
	m.Called(key)
}

type stubProfiles struct {
	resp *dto.ProfilesResponse
}

func (s stubProfiles) GetProfiles(*gorm.DB, string) (*dto.ProfilesResponse, error) {
	return s.resp, nil
}
