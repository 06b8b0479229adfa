package mysql

import (
	"context"

	contractDomain "pawn-lending-backend/internal/domain/contract"

	"gorm.io/gorm"
)

type ContractRepository struct{ db *gorm.DB }

func NewContractRepository(db *gorm.DB) *ContractRepository { return &ContractRepository{db: db} }

func (r *ContractRepository) Create(ctx context.Context, c *contractDomain.Contract) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ContractRepository) Save(ctx context.Context, c *contractDomain.Contract) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *ContractRepository) GetByContractID(ctx context.Context, contractID string) (*contractDomain.Contract, error) {
	var out contractDomain.Contract
	if err := r.db.WithContext(ctx).Where("contract_id = ?", contractID).First(&out).Error; err != nil {
		return nil, translate(err, contractDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *ContractRepository) GetByContractIDForUpdate(ctx context.Context, contractID string) (*contractDomain.Contract, error) {
	var out contractDomain.Contract
	err := r.db.WithContext(ctx).Clauses(forUpdate).Where("contract_id = ?", contractID).First(&out).Error
	if err != nil {
		return nil, translate(err, contractDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *ContractRepository) GetByApplicationRef(ctx context.Context, applicationRef uint64) (*contractDomain.Contract, error) {
	var out contractDomain.Contract
	if err := r.db.WithContext(ctx).Where("application_ref = ?", applicationRef).First(&out).Error; err != nil {
		return nil, translate(err, contractDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *ContractRepository) SetScheduleRef(ctx context.Context, contractID, ref string) error {
	return r.db.WithContext(ctx).
		Model(&contractDomain.Contract{}).
		Where("contract_id = ?", contractID).
		Update("schedule_ref", ref).Error
}
