package identities

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/memalerts/rewards-backend/pkg/db/models"
	"github.com/memalerts/rewards-backend/pkg/enums"
)

// Repository persists viewer platform identity links.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByAccount(ctx context.Context, provider enums.Provider, providerAccountID string) (*models.PlatformIdentity, error)

	// InsertIfAbsent links the identity unless (provider, provider_account_id)
	// is already linked. Returns true when the row was created by this call.
	InsertIfAbsent(ctx context.Context, identity *models.PlatformIdentity) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.PlatformIdentity, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByAccount(ctx context.Context, provider enums.Provider, providerAccountID string) (*models.PlatformIdentity, error) {
	var identity models.PlatformIdentity
	err := r.db.WithContext(ctx).
		Where("provider = ? AND provider_account_id = ?", provider, providerAccountID).
		First(&identity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

func (r *repository) InsertIfAbsent(ctx context.Context, identity *models.PlatformIdentity) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider"}, {Name: "provider_account_id"}},
			DoNothing: true,
		}).
		Create(identity)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.PlatformIdentity, error) {
	var rows []models.PlatformIdentity
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
