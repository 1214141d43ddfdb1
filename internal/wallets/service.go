package wallets

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/memalerts/rewards-backend/pkg/errors"
)

// Service exposes wallet balance operations to the claim engine and the read
// API.
type Service interface {
	Increment(ctx context.Context, tx *gorm.DB, userID, channelID uuid.UUID, delta int64) (int64, error)
	Balance(ctx context.Context, userID, channelID uuid.UUID) (int64, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Increment applies delta within the caller's transaction and returns the
// resulting balance. Delta must be positive; coins are only ever granted
// through this subsystem, spend flows live elsewhere.
func (s *service) Increment(ctx context.Context, tx *gorm.DB, userID, channelID uuid.UUID, delta int64) (int64, error) {
	if userID == uuid.Nil || channelID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id and channel id are required")
	}
	if delta <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "delta must be positive")
	}
	return s.repo.WithTx(tx).Increment(ctx, userID, channelID, delta)
}

// Balance reads the current balance; a wallet that has never been credited
// reads as zero.
func (s *service) Balance(ctx context.Context, userID, channelID uuid.UUID) (int64, error) {
	if userID == uuid.Nil || channelID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id and channel id are required")
	}
	wallet, err := s.repo.Find(ctx, userID, channelID)
	if err != nil {
		return 0, err
	}
	if wallet == nil {
		return 0, nil
	}
	return wallet.Balance, nil
}
