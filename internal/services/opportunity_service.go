package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"memberhub_backend/internal/auth"
	"memberhub_backend/internal/cache"
	"memberhub_backend/internal/email"
	"memberhub_backend/internal/logger"
	"memberhub_backend/internal/metrics"
	"memberhub_backend/internal/models"
	"memberhub_backend/internal/repositories"
	"memberhub_backend/internal/roles"
	"memberhub_backend/internal/services/dto"
	"memberhub_backend/internal/validator"
	"memberhub_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OpportunitiesCacheNamespace versions every cached public listing.
const OpportunitiesCacheNamespace = "opportunities"

// DetailsValidator checks the type-specific details bag.
type DetailsValidator interface {
	Validate(t models.OpportunityType, raw []byte) error
}

type OpportunityService interface {
	Create(ctx context.Context, db *gorm.DB, viewer *auth.Identity, req *dto.CreateOpportunityRequest) (*models.Opportunity, error)
	ListPublic(ctx context.Context, db *gorm.DB, viewer *auth.Identity, query *dto.OpportunityListQuery) (*dto.ListResponse[models.Opportunity], error)
	Get(ctx context.Context, db *gorm.DB, viewer *auth.Identity, id string) (*models.Opportunity, error)
	ListMine(db *gorm.DB, ownerID string, page, pageSize int) (*dto.ListResponse[models.Opportunity], error)
	Update(ctx context.Context, db *gorm.DB, viewer *auth.Identity, id string, req *dto.UpdateOpportunityRequest) (*models.Opportunity, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, viewer *auth.Identity, id string, status models.OpportunityStatus) (*models.Opportunity, error)
	Delete(ctx context.Context, db *gorm.DB, viewer *auth.Identity, id string) error

	// Admin operations
	ListForReview(db *gorm.DB, status models.ApprovalStatus, page, pageSize int) (*dto.ListResponse[models.Opportunity], error)
	Review(ctx context.Context, db *gorm.DB, adminID, id string, approve bool, reason string) (*models.Opportunity, error)

	// CloseExpired is run by the scheduler.
	CloseExpired(ctx context.Context, db *gorm.DB) (int64, error)
}

type OpportunityServiceImpl struct {
	opportunityRepo repositories.OpportunityRepository
	userRepo        repositories.UserRepository
	details         DetailsValidator
	cache           cache.Cache
	cacheTTL        time.Duration
	mailer          *email.Mailer
	notifier        Notifier
	now             func() time.Time
}

func NewOpportunityService(
	opportunityRepo repositories.OpportunityRepository,
	userRepo repositories.UserRepository,
	details DetailsValidator,
	c cache.Cache,
	cacheTTL time.Duration,
	mailer *email.Mailer,
	notifier Notifier,
) OpportunityService {
	if c == nil {
		c = cache.Noop{}
	}
	return &OpportunityServiceImpl{
		opportunityRepo: opportunityRepo,
		userRepo:        userRepo,
		details:         details,
		cache:           c,
		cacheTTL:        cacheTTL,
		mailer:          mailer,
		notifier:        orNoop(notifier),
		now:             time.Now,
	}
}

// ============================================================================
// Helpers
// ============================================================================

func errOpportunityNotFound() error {
	return apperrors.New(apperrors.CodeNotFound, "opportunity", "Opportunity not found", http.StatusNotFound)
}

func canManage(viewer *auth.Identity, opp *models.Opportunity) bool {
	return viewer != nil && (viewer.IsAdmin || viewer.UserID == opp.OwnerID)
}

// canView decides visibility of a single opportunity. Owners and admins see
// everything; others see approved rows, and investments only with the
// matching permission.
func canView(viewer *auth.Identity, opp *models.Opportunity) bool {
	if canManage(viewer, opp) {
		return true
	}
	if opp.ApprovalStatus != models.ApprovalApproved {
		return false
	}
	if opp.Type == models.OpportunityInvestment {
		return viewer.Can(roles.ViewInvestments)
	}
	return true
}

func (s *OpportunityServiceImpl) normalizeDetails(t models.OpportunityType, raw []byte) (datatypes.JSON, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		trimmed = []byte("{}")
	}
	if err := s.details.Validate(t, trimmed); err != nil {
		var vErr *validator.ValidationError
		if errors.As(err, &vErr) {
			return nil, apperrors.ErrInvalidOpportunityDetails.WithDetails(vErr.Errors)
		}
		return nil, apperrors.ErrInvalidOpportunityDetails.WithError(err)
	}
	return datatypes.JSON(trimmed), nil
}

func (s *OpportunityServiceImpl) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, OpportunitiesCacheNamespace); err != nil {
		logger.CtxWithError(ctx, "Failed to invalidate opportunity cache", err)
	}
}

// ============================================================================
// Member operations
// ============================================================================

func (s *OpportunityServiceImpl) Create(ctx context.Context, db *gorm.DB, viewer *auth.Identity, req *dto.CreateOpportunityRequest) (*models.Opportunity, error) {
	oppType := models.OpportunityType(req.Type)
	perm, ok := roles.PostPermissionFor(req.Type)
	if !ok {
		return nil, apperrors.ValidationError(map[string]string{"type": "Unknown opportunity type"})
	}

	if viewer.Roles.IsEmpty() && !viewer.IsAdmin {
		return nil, apperrors.ErrRoleRequired
	}
	if !viewer.Can(perm) {
		return nil, apperrors.ErrInsufficientPermissions.WithDetails(map[string]interface{}{
			"permission":     perm,
			"required_roles": roles.RequiredRoles(perm),
		})
	}

	owner, err := s.userRepo.FindByID(db, viewer.UserID)
	if err != nil {
		return nil, notFoundOr(err, repositories.ErrUserNotFound, "user", "User not found")
	}
	if !owner.IsApproved() && !owner.IsAdmin {
		return nil, apperrors.ErrNotApprovedMember
	}

	details, err := s.normalizeDetails(oppType, req.Details)
	if err != nil {
		return nil, err
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(s.now()) {
		return nil, apperrors.ValidationError(map[string]string{"expires_at": "Must be in the future"})
	}

	opp := &models.Opportunity{
		OwnerID:     owner.ID,
		Type:        oppType,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Location:    req.Location,
		Industry:    req.Industry,
		IsRemote:    req.IsRemote,
		Status:      models.OpportunityOpen,
		Details:     details,
		ExpiresAt:   req.ExpiresAt,
		Review:      models.Review{ApprovalStatus: models.ApprovalPending},
	}

	if err := s.opportunityRepo.Create(db, opp); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "Opportunity created", "opportunity_id", opp.ID, "type", opp.Type)
	s.invalidate(ctx)
	return opp, nil
}

func (s *OpportunityServiceImpl) ListPublic(ctx context.Context, db *gorm.DB, viewer *auth.Identity, query *dto.OpportunityListQuery) (*dto.ListResponse[models.Opportunity], error) {
	page, pageSize := query.Page, query.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	seesInvestments := viewer.Can(roles.ViewInvestments)
	if models.OpportunityType(query.Type) == models.OpportunityInvestment && !seesInvestments {
		empty := dto.NewListResponse[models.Opportunity](nil, 0, page, pageSize)
		return &empty, nil
	}

	remote := ""
	if query.IsRemote != nil {
		remote = fmt.Sprint(*query.IsRemote)
	}
	key := s.cache.Key(ctx, OpportunitiesCacheNamespace, fmt.Sprintf(
		"list:inv=%t:type=%s:loc=%s:ind=%s:q=%s:remote=%s:p=%d:s=%d",
		seesInvestments, query.Type, strings.ToLower(query.Location), strings.ToLower(query.Industry),
		strings.ToLower(query.Query), remote, page, pageSize,
	))

	var cached dto.ListResponse[models.Opportunity]
	if hit, _ := s.cache.GetJSON(ctx, key, &cached); hit {
		return &cached, nil
	}

	filter := repositories.OpportunityFilter{
		Type:     models.OpportunityType(query.Type),
		Location: query.Location,
		Industry: query.Industry,
		Query:    query.Query,
		IsRemote: query.IsRemote,
		Now:      s.now(),
		Page:     page,
		PageSize: pageSize,
	}
	if !seesInvestments {
		filter.ExcludeTypes = []models.OpportunityType{models.OpportunityInvestment}
	}

	opps, total, err := s.opportunityRepo.FindPublic(db, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := dto.NewListResponse(opps, total, page, pageSize)
	if err := s.cache.SetJSON(ctx, key, resp, s.cacheTTL); err != nil {
		logger.CtxWithError(ctx, "Failed to cache opportunity listing", err)
	}
	return &resp, nil
}

// Get returns one opportunity. Rows the viewer may not see answer 404.
func (s *OpportunityServiceImpl) Get(ctx context.Context, db *gorm.DB, viewer *auth.Identity, id string) (*models.Opportunity, error) {
	opp, err := s.opportunityRepo.FindByID(db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrOpportunityNotFound) {
			return nil, errOpportunityNotFound()
		}
		return nil, apperrors.InternalError(err)
	}

	if !canView(viewer, opp) {
		return nil, errOpportunityNotFound()
	}

	if viewer == nil || viewer.UserID != opp.OwnerID {
		if err := s.opportunityRepo.IncrementViews(db, opp.ID); err != nil {
			logger.CtxWithError(ctx, "Failed to increment views", err, "opportunity_id", opp.ID)
		} else {
			opp.Views++
		}
	}
	return opp, nil
}

func (s *OpportunityServiceImpl) ListMine(db *gorm.DB, ownerID string, page, pageSize int) (*dto.ListResponse[models.Opportunity], error) {
	opps, total, err := s.opportunityRepo.FindByOwner(db, ownerID, page, pageSize)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	resp := dto.NewListResponse(opps, total, page, pageSize)
	return &resp, nil
}

func (s *OpportunityServiceImpl) loadManaged(db *gorm.DB, viewer *auth.Identity, id string) (*models.Opportunity, error) {
	opp, err := s.opportunityRepo.FindByID(db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrOpportunityNotFound) {
			return nil, errOpportunityNotFound()
		}
		return nil, apperrors.InternalError(err)
	}
	if !canManage(viewer, opp) {
		if canView(viewer, opp) {
			return nil, apperrors.ErrInsufficientPermissions
		}
		return nil, errOpportunityNotFound()
	}
	return opp, nil
}

// Update applies a partial edit. A non-admin edit that changes a public
// field of a reviewed opportunity sends it back to review.
func (s *OpportunityServiceImpl) Update(ctx context.Context, db *gorm.DB, viewer *auth.Identity, id string, req *dto.UpdateOpportunityRequest) (*models.Opportunity, error) {
	opp, err := s.loadManaged(db, viewer, id)
	if err != nil {
		return nil, err
	}

	changed := false
	setString := func(dst *string, v *string) {
		if v != nil && *v != *dst {
			*dst = *v
			changed = true
		}
	}
	setString(&opp.Title, req.Title)
	setString(&opp.Description, req.Description)
	setString(&opp.Location, req.Location)
	setString(&opp.Industry, req.Industry)
	if req.IsRemote != nil && *req.IsRemote != opp.IsRemote {
		opp.IsRemote = *req.IsRemote
		changed = true
	}
	if req.Details != nil {
		details, err := s.normalizeDetails(opp.Type, req.Details)
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(details, opp.Details) {
			opp.Details = details
			changed = true
		}
	}
	if req.ExpiresAt != nil {
		if !req.ExpiresAt.After(s.now()) {
			return nil, apperrors.ValidationError(map[string]string{"expires_at": "Must be in the future"})
		}
		opp.ExpiresAt = req.ExpiresAt
	}

	if changed && !viewer.IsAdmin && opp.ApprovalStatus != models.ApprovalPending {
		logger.CtxInfo(ctx, "Opportunity edited, returning to review", "opportunity_id", opp.ID)
		opp.ResetReview()
	}

	if err := s.opportunityRepo.Update(db, opp); err != nil {
		return nil, notFoundOr(err, repositories.ErrOpportunityNotFound, "opportunity", "Opportunity not found")
	}

	s.invalidate(ctx)
	return opp, nil
}

// UpdateStatus closes or reopens an opportunity.
func (s *OpportunityServiceImpl) UpdateStatus(ctx context.Context, db *gorm.DB, viewer *auth.Identity, id string, status models.OpportunityStatus) (*models.Opportunity, error) {
	if !status.Valid() {
		return nil, apperrors.ValidationError(map[string]string{"status": "Must be open or closed"})
	}

	opp, err := s.loadManaged(db, viewer, id)
	if err != nil {
		return nil, err
	}
	if opp.Status == status {
		return opp, nil
	}
	if status == models.OpportunityOpen && opp.ExpiresAt != nil && !opp.ExpiresAt.After(s.now()) {
		return nil, apperrors.ErrInvalidStatus("opportunity", "Opportunity has expired; set a new expiry date first")
	}

	opp.Status = status
	if err := s.opportunityRepo.Update(db, opp); err != nil {
		return nil, notFoundOr(err, repositories.ErrOpportunityNotFound, "opportunity", "Opportunity not found")
	}

	logger.CtxInfo(ctx, "Opportunity status changed", "opportunity_id", opp.ID, "status", status)
	s.invalidate(ctx)
	return opp, nil
}

// Delete removes the opportunity; its applications go with it.
func (s *OpportunityServiceImpl) Delete(ctx context.Context, db *gorm.DB, viewer *auth.Identity, id string) error {
	opp, err := s.loadManaged(db, viewer, id)
	if err != nil {
		return err
	}
	if err := s.opportunityRepo.Delete(db, opp.ID); err != nil {
		return notFoundOr(err, repositories.ErrOpportunityNotFound, "opportunity", "Opportunity not found")
	}

	logger.CtxInfo(ctx, "Opportunity deleted", "opportunity_id", opp.ID, "by", viewer.UserID)
	s.invalidate(ctx)
	return nil
}

// ============================================================================
// Admin operations
// ============================================================================

func (s *OpportunityServiceImpl) ListForReview(db *gorm.DB, status models.ApprovalStatus, page, pageSize int) (*dto.ListResponse[models.Opportunity], error) {
	opps, total, err := s.opportunityRepo.FindByApprovalStatus(db, status, page, pageSize)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	resp := dto.NewListResponse(opps, total, page, pageSize)
	return &resp, nil
}

func (s *OpportunityServiceImpl) Review(ctx context.Context, db *gorm.DB, adminID, id string, approve bool, reason string) (*models.Opportunity, error) {
	opp, err := s.opportunityRepo.FindByIDWithOwner(db, id)
	if err != nil {
		return nil, notFoundOr(err, repositories.ErrOpportunityNotFound, "opportunity", "Opportunity not found")
	}

	decision := decisionOf(approve)
	if opp.ApprovalStatus == decision {
		return nil, apperrors.ErrAlreadyReviewed
	}

	owner := opp.Owner
	opp.Owner = nil
	opp.MarkReviewed(decision, adminID, reason, s.now())
	if err := s.opportunityRepo.Update(db, opp); err != nil {
		return nil, notFoundOr(err, repositories.ErrOpportunityNotFound, "opportunity", "Opportunity not found")
	}

	metrics.RecordReview("opportunity", string(decision))
	logger.CtxInfo(ctx, "Opportunity reviewed", "opportunity_id", opp.ID, "decision", decision)
	s.invalidate(ctx)

	if owner != nil {
		if err := s.mailer.SendOpportunityDecision(ctx, owner.Email, owner.FullName, opp.Title, approve, reason); err != nil {
			logger.CtxWithError(ctx, "Failed to send opportunity decision email", err, "opportunity_id", opp.ID)
		}
	}
	s.notifier.Notify(opp.OwnerID, EventOpportunityReviewed, map[string]interface{}{
		"opportunity_id":  opp.ID,
		"title":           opp.Title,
		"approval_status": opp.ApprovalStatus,
		"reason":          opp.RejectionReason,
	})
	return opp, nil
}

func (s *OpportunityServiceImpl) CloseExpired(ctx context.Context, db *gorm.DB) (int64, error) {
	n, err := s.opportunityRepo.CloseExpired(db, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.CtxInfo(ctx, "Closed expired opportunities", "count", n)
		s.invalidate(ctx)
	}
	return n, nil
}
