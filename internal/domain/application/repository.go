package application

import "context"

type Repository interface {
	Create(ctx context.Context, a *Application) error
	Save(ctx context.Context, a *Application) error
	GetByApplicationID(ctx context.Context, applicationID string) (*Application, error)
	GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*Application, error)
	GetByID(ctx context.Context, id uint64) (*Application, error)
	// CountOpenByApplicant counts pending, evaluating, and approved-without-contract applications.
	CountOpenByApplicant(ctx context.Context, applicantID string) (int64, error)

	CreateItem(ctx context.Context, it *PledgeItem) error
	GetItem(ctx context.Context, applicationRef uint64) (*PledgeItem, error)

	AddDocuments(ctx context.Context, docs []Document) error
	ListDocuments(ctx context.Context, applicationRef uint64) ([]Document, error)
	CountDocuments(ctx context.Context, applicationRef uint64, kind DocumentKind) (int64, error)

	CreateAppraisal(ctx context.Context, ap *Appraisal) error
	// GetAppraisal returns nil, nil when the application has not been appraised.
	GetAppraisal(ctx context.Context, applicationRef uint64) (*Appraisal, error)

	GetCategoryLimit(ctx context.Context, category string) (*CategoryLimit, error)
}
