package repositories

import (
	"errors"
	"time"

	"memberhub_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrOpportunityNotFound = errors.New("opportunity not found")
)

type OpportunityRepository interface {
	Create(db *gorm.DB, opp *models.Opportunity) error
	FindByID(db *gorm.DB, id string) (*models.Opportunity, error)
	// FindByIDWithOwner preloads the owning user.
	FindByIDWithOwner(db *gorm.DB, id string) (*models.Opportunity, error)
	Update(db *gorm.DB, opp *models.Opportunity) error
	Delete(db *gorm.DB, id string) error
	IncrementViews(db *gorm.DB, id string) error

	// FindPublic lists approved, open, unexpired rows only.
	FindPublic(db *gorm.DB, filter OpportunityFilter) ([]models.Opportunity, int64, error)
	FindByOwner(db *gorm.DB, ownerID string, page, pageSize int) ([]models.Opportunity, int64, error)
	FindByApprovalStatus(db *gorm.DB, status models.ApprovalStatus, page, pageSize int) ([]models.Opportunity, int64, error)

	// CloseExpired closes open rows whose expires_at is before now.
	CloseExpired(db *gorm.DB, now time.Time) (int64, error)

	// Dashboard counters
	CountByOwnerGrouped(db *gorm.DB, ownerID string) (map[models.ApprovalStatus]int64, error)
	CountPublicByType(db *gorm.DB, t models.OpportunityType) (int64, error)
}

type OpportunityFilter struct {
	Type         models.OpportunityType
	ExcludeTypes []models.OpportunityType
	Location     string
	Industry     string
	Query        string
	IsRemote     *bool
	// Now hides rows whose expires_at has passed. Zero means time.Now().
	Now      time.Time
	Page     int
	PageSize int
}

type opportunityRepository struct{}

func NewOpportunityRepository() OpportunityRepository {
	return &opportunityRepository{}
}

func (r *opportunityRepository) Create(db *gorm.DB, opp *models.Opportunity) error {
	return db.Omit(clause.Associations).Create(opp).Error
}

func (r *opportunityRepository) FindByID(db *gorm.DB, id string) (*models.Opportunity, error) {
	var opp models.Opportunity
	if err := db.First(&opp, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOpportunityNotFound
		}
		return nil, err
	}
	return &opp, nil
}

func (r *opportunityRepository) FindByIDWithOwner(db *gorm.DB, id string) (*models.Opportunity, error) {
	return r.FindByID(db.Preload("Owner"), id)
}

// Update writes every column of opp, including zero values.
func (r *opportunityRepository) Update(db *gorm.DB, opp *models.Opportunity) error {
	result := db.Model(opp).Select("*").Omit("id", "created_at", "owner_id", "views", clause.Associations).Updates(opp)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOpportunityNotFound
	}
	return nil
}

func (r *opportunityRepository) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.Opportunity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOpportunityNotFound
	}
	return nil
}

func (r *opportunityRepository) IncrementViews(db *gorm.DB, id string) error {
	return db.Model(&models.Opportunity{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

func (r *opportunityRepository) FindPublic(db *gorm.DB, filter OpportunityFilter) ([]models.Opportunity, int64, error) {
	query := db.Model(&models.Opportunity{}).
		Where("approval_status = ? AND status = ?", models.ApprovalApproved, models.OpportunityOpen)

	now := filter.Now
	if now.IsZero() {
		now = time.Now()
	}
	query = query.Where("expires_at IS NULL OR expires_at > ?", now)

	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if len(filter.ExcludeTypes) > 0 {
		query = query.Where("type NOT IN ?", filter.ExcludeTypes)
	}
	if filter.Location != "" {
		query = query.Where("location ILIKE ?", likePattern(filter.Location))
	}
	if filter.Industry != "" {
		query = query.Where("industry ILIKE ?", likePattern(filter.Industry))
	}
	if filter.Query != "" {
		pattern := likePattern(filter.Query)
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if filter.IsRemote != nil {
		query = query.Where("is_remote = ?", *filter.IsRemote)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var opps []models.Opportunity
	err := query.Order("created_at DESC").
		Scopes(Paginate(filter.Page, filter.PageSize)).
		Find(&opps).Error
	return opps, total, err
}

func (r *opportunityRepository) FindByOwner(db *gorm.DB, ownerID string, page, pageSize int) ([]models.Opportunity, int64, error) {
	query := db.Model(&models.Opportunity{}).Where("owner_id = ?", ownerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var opps []models.Opportunity
	err := query.Order("created_at DESC").Scopes(Paginate(page, pageSize)).Find(&opps).Error
	return opps, total, err
}

func (r *opportunityRepository) FindByApprovalStatus(db *gorm.DB, status models.ApprovalStatus, page, pageSize int) ([]models.Opportunity, int64, error) {
	query := db.Model(&models.Opportunity{})
	if status != "" {
		query = query.Where("approval_status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var opps []models.Opportunity
	err := query.Order("created_at ASC").Scopes(Paginate(page, pageSize)).Find(&opps).Error
	return opps, total, err
}

func (r *opportunityRepository) CloseExpired(db *gorm.DB, now time.Time) (int64, error) {
	result := db.Model(&models.Opportunity{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", models.OpportunityOpen, now).
		Update("status", models.OpportunityClosed)
	return result.RowsAffected, result.Error
}

func (r *opportunityRepository) CountByOwnerGrouped(db *gorm.DB, ownerID string) (map[models.ApprovalStatus]int64, error) {
	var rows []struct {
		ApprovalStatus models.ApprovalStatus
		Count          int64
	}
	err := db.Model(&models.Opportunity{}).
		Select("approval_status, COUNT(*) AS count").
		Where("owner_id = ?", ownerID).
		Group("approval_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := map[models.ApprovalStatus]int64{
		models.ApprovalPending:  0,
		models.ApprovalApproved: 0,
		models.ApprovalRejected: 0,
	}
	for _, row := range rows {
		counts[row.ApprovalStatus] = row.Count
	}
	return counts, nil
}

func (r *opportunityRepository) CountPublicByType(db *gorm.DB, t models.OpportunityType) (int64, error) {
	var count int64
	err := db.Model(&models.Opportunity{}).
		Where("type = ? AND approval_status = ? AND status = ?", t, models.ApprovalApproved, models.OpportunityOpen).
		Count(&count).Error
	return count, err
}
