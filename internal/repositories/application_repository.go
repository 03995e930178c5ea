package repositories

import (
	"errors"

	"memberhub_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrApplicationNotFound  = errors.New("application not found")
	ErrApplicationDuplicate = errors.New("application already exists")
)

type ApplicationRepository interface {
	Create(db *gorm.DB, app *models.Application) error
	// FindByID preloads the opportunity the application belongs to.
	FindByID(db *gorm.DB, id string) (*models.Application, error)
	Exists(db *gorm.DB, opportunityID, applicantID string) (bool, error)
	FindByApplicant(db *gorm.DB, applicantID string, page, pageSize int) ([]models.Application, int64, error)
	FindByOpportunity(db *gorm.DB, opportunityID string, page, pageSize int) ([]models.Application, int64, error)
	UpdateStatus(db *gorm.DB, app *models.Application) error

	CountByApplicantGrouped(db *gorm.DB, applicantID string) (map[models.ApplicationStatus]int64, error)
	// CountReceivedByOwner counts applications to every opportunity ownerID owns.
	CountReceivedByOwner(db *gorm.DB, ownerID string) (int64, error)
}

type applicationRepository struct{}

func NewApplicationRepository() ApplicationRepository {
	return &applicationRepository{}
}

func (r *applicationRepository) Create(db *gorm.DB, app *models.Application) error {
	exists, err := r.Exists(db, app.OpportunityID, app.ApplicantID)
	if err != nil {
		return err
	}
	if exists {
		return ErrApplicationDuplicate
	}

	if err := db.Omit(clause.Associations).Create(app).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrApplicationDuplicate
		}
		return err
	}
	return nil
}

func (r *applicationRepository) FindByID(db *gorm.DB, id string) (*models.Application, error) {
	var app models.Application
	if err := db.Preload("Opportunity").First(&app, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) Exists(db *gorm.DB, opportunityID, applicantID string) (bool, error) {
	var count int64
	err := db.Model(&models.Application{}).
		Where("opportunity_id = ? AND applicant_id = ?", opportunityID, applicantID).
		Count(&count).Error
	return count > 0, err
}

func (r *applicationRepository) FindByApplicant(db *gorm.DB, applicantID string, page, pageSize int) ([]models.Application, int64, error) {
	query := db.Model(&models.Application{}).Where("applicant_id = ?", applicantID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var apps []models.Application
	err := query.Preload("Opportunity").
		Order("created_at DESC").
		Scopes(Paginate(page, pageSize)).
		Find(&apps).Error
	return apps, total, err
}

func (r *applicationRepository) FindByOpportunity(db *gorm.DB, opportunityID string, page, pageSize int) ([]models.Application, int64, error) {
	query := db.Model(&models.Application{}).Where("opportunity_id = ?", opportunityID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var apps []models.Application
	err := query.Preload("Applicant").
		Order("created_at ASC").
		Scopes(Paginate(page, pageSize)).
		Find(&apps).Error
	return apps, total, err
}

func (r *applicationRepository) UpdateStatus(db *gorm.DB, app *models.Application) error {
	result := db.Model(&models.Application{}).
		Where("id = ?", app.ID).
		Updates(map[string]interface{}{
			"status":     app.Status,
			"owner_note": app.OwnerNote,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func (r *applicationRepository) CountByApplicantGrouped(db *gorm.DB, applicantID string) (map[models.ApplicationStatus]int64, error) {
	var rows []struct {
		Status models.ApplicationStatus
		Count  int64
	}
	err := db.Model(&models.Application{}).
		Select("status, COUNT(*) AS count").
		Where("applicant_id = ?", applicantID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.ApplicationStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *applicationRepository) CountReceivedByOwner(db *gorm.DB, ownerID string) (int64, error) {
	var count int64
	err := db.Model(&models.Application{}).
		Joins("JOIN opportunities ON opportunities.id = applications.opportunity_id").
		Where("opportunities.owner_id = ?", ownerID).
		Count(&count).Error
	return count, err
}
