package repos

import (
	"errors"

	"gorm.io/gorm"

	"github.com/draftmint/clausebind-backend/internal/domain"
	"github.com/draftmint/clausebind-backend/internal/platform/dbctx"
	"github.com/draftmint/clausebind-backend/internal/platform/logger"
)

type BindReceiptRepo interface {
	Create(dbc dbctx.Context, record *domain.BindReceiptRecord) (*domain.BindReceiptRecord, error)
	// GetByKey returns nil without error when no ledger row exists for the
	// idempotency key.
	GetByKey(dbc dbctx.Context, key string) (*domain.BindReceiptRecord, error)
}

type bindReceiptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBindReceiptRepo(db *gorm.DB, baseLog *logger.Logger) BindReceiptRepo {
	repoLog := baseLog.With("repo", "BindReceiptRepo")
	return &bindReceiptRepo{db: db, log: repoLog}
}

func (r *bindReceiptRepo) Create(dbc dbctx.Context, record *domain.BindReceiptRecord) (*domain.BindReceiptRecord, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(dbc.Ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (r *bindReceiptRepo) GetByKey(dbc dbctx.Context, key string) (*domain.BindReceiptRecord, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var result domain.BindReceiptRecord
	err := transaction.WithContext(dbc.Ctx).
		Where("key = ?", key).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}
