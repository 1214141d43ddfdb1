package channels

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/memalerts/rewards-backend/pkg/db/models"
	"github.com/memalerts/rewards-backend/pkg/enums"
)

// Repository exposes channel lookups used by webhook ingestion and the claim
// engine. Channels are written by an admin flow outside this service, so the
// repository is read-only apart from test seeding.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Channel, error)
	FindByProviderAccount(ctx context.Context, provider enums.Provider, providerChannelID string) (*models.Channel, error)
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

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Channel, error) {
	var channel models.Channel
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&channel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &channel, nil
}

func (r *repository) FindByProviderAccount(ctx context.Context, provider enums.Provider, providerChannelID string) (*models.Channel, error) {
	var channel models.Channel
	err := r.db.WithContext(ctx).
		Where("provider = ? AND provider_channel_id = ?", provider, providerChannelID).
		First(&channel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &channel, nil
}
