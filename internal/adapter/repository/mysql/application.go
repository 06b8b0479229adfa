package mysql

import (
	"context"
	"errors"

	appDomain "pawn-lending-backend/internal/domain/application"
	"pawn-lending-backend/internal/domain/contract"

	"gorm.io/gorm"
)

type ApplicationRepository struct{ db *gorm.DB }

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, a *appDomain.Application) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ApplicationRepository) Save(ctx context.Context, a *appDomain.Application) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *ApplicationRepository) GetByApplicationID(ctx context.Context, applicationID string) (*appDomain.Application, error) {
	var out appDomain.Application
	if err := r.db.WithContext(ctx).Where("application_id = ?", applicationID).First(&out).Error; err != nil {
		return nil, translate(err, appDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *ApplicationRepository) GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*appDomain.Application, error) {
	var out appDomain.Application
	err := r.db.WithContext(ctx).
		Clauses(forUpdate).
		Where("application_id = ?", applicationID).
		First(&out).Error
	if err != nil {
		return nil, translate(err, appDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id uint64) (*appDomain.Application, error) {
	var out appDomain.Application
	if err := r.db.WithContext(ctx).First(&out, id).Error; err != nil {
		return nil, translate(err, appDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *ApplicationRepository) CountOpenByApplicant(ctx context.Context, applicantID string) (int64, error) {
	var n int64
	withContract := r.db.Model(&contract.Contract{}).Select("application_ref")
	err := r.db.WithContext(ctx).
		Model(&appDomain.Application{}).
		Where("applicant_id = ?", applicantID).
		Where(r.db.
			Where("state IN ?", []appDomain.State{appDomain.StatePending, appDomain.StateEvaluating}).
			Or("state = ? AND id NOT IN (?)", appDomain.StateApproved, withContract)).
		Count(&n).Error
	return n, err
}

func (r *ApplicationRepository) CreateItem(ctx context.Context, it *appDomain.PledgeItem) error {
	return r.db.WithContext(ctx).Create(it).Error
}

func (r *ApplicationRepository) GetItem(ctx context.Context, applicationRef uint64) (*appDomain.PledgeItem, error) {
	var out appDomain.PledgeItem
	if err := r.db.WithContext(ctx).Where("application_ref = ?", applicationRef).First(&out).Error; err != nil {
		return nil, translate(err, appDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *ApplicationRepository) AddDocuments(ctx context.Context, docs []appDomain.Document) error {
	if len(docs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&docs).Error
}

func (r *ApplicationRepository) ListDocuments(ctx context.Context, applicationRef uint64) ([]appDomain.Document, error) {
	var out []appDomain.Document
	err := r.db.WithContext(ctx).Where("application_ref = ?", applicationRef).Order("id").Find(&out).Error
	return out, err
}

func (r *ApplicationRepository) CountDocuments(ctx context.Context, applicationRef uint64, kind appDomain.DocumentKind) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&appDomain.Document{}).
		Where("application_ref = ? AND kind = ?", applicationRef, kind).
		Count(&n).Error
	return n, err
}

// CreateAppraisal relies on ux_appraisals_application for the one-per-application rule.
func (r *ApplicationRepository) CreateAppraisal(ctx context.Context, ap *appDomain.Appraisal) error {
	err := r.db.WithContext(ctx).Create(ap).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return appDomain.ErrAlreadyAppraised
	}
	return err
}

func (r *ApplicationRepository) GetAppraisal(ctx context.Context, applicationRef uint64) (*appDomain.Appraisal, error) {
	var out appDomain.Appraisal
	err := r.db.WithContext(ctx).Where("application_ref = ?", applicationRef).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ApplicationRepository) GetCategoryLimit(ctx context.Context, category string) (*appDomain.CategoryLimit, error) {
	var out appDomain.CategoryLimit
	if err := r.db.WithContext(ctx).Where("category = ?", category).First(&out).Error; err != nil {
		return nil, translate(err, appDomain.ErrUnknownCategory)
	}
	return &out, nil
}
