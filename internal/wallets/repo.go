package wallets

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/memalerts/rewards-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a wallets repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Increment adds delta to the wallet balance, creating the wallet on first
// touch. The upsert arithmetic runs inside the database so concurrent
// increments never lose updates. Returns the balance after the increment.
func (r *repository) Increment(ctx context.Context, userID, channelID uuid.UUID, delta int64) (int64, error) {
	wallet := models.Wallet{
		ID:        uuid.New(),
		UserID:    userID,
		ChannelID: channelID,
		Balance:   delta,
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "channel_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"balance":    gorm.Expr("wallets.balance + excluded.balance"),
				"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
			}),
		}).
		Create(&wallet).Error
	if err != nil {
		return 0, err
	}

	stored, err := r.Find(ctx, userID, channelID)
	if err != nil {
		return 0, err
	}
	if stored == nil {
		return 0, gorm.ErrRecordNotFound
	}
	return stored.Balance, nil
}

func (r *repository) Find(ctx context.Context, userID, channelID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND channel_id = ?", userID, channelID).
		First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Wallet, error) {
	var rows []models.Wallet
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
