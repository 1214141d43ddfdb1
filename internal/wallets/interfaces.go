package wallets

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/memalerts/rewards-backend/pkg/db/models"
)

// Repository persists wallet rows. Increment is the only write path; balances
// never change outside of it.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Increment(ctx context.Context, userID, channelID uuid.UUID, delta int64) (int64, error)
	Find(ctx context.Context, userID, channelID uuid.UUID) (*models.Wallet, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Wallet, error)
}
