package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/memalerts/rewards-backend/pkg/enums"
)

// PendingCoinGrant is an earned-but-unclaimed credit. The unique index on
// reward_event_id guarantees a ledger event produces at most one grant; the
// claimed_at column is the claim-exactly-once gate.
type PendingCoinGrant struct {
	ID                uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	RewardEventID     uuid.UUID      `gorm:"column:reward_event_id;type:uuid;not null;uniqueIndex:ux_pending_coin_grants_event"`
	Provider          enums.Provider `gorm:"column:provider;type:provider_enum;not null;index:ix_pending_coin_grants_identity"`
	ProviderAccountID string         `gorm:"column:provider_account_id;not null;index:ix_pending_coin_grants_identity"`
	ChannelID         uuid.UUID      `gorm:"column:channel_id;type:uuid;not null"`
	Coins             int64          `gorm:"column:coins;not null"`
	ClaimedAt         *time.Time     `gorm:"column:claimed_at"`
	CreatedAt         time.Time      `gorm:"column:created_at;autoCreateTime"`
}

func (PendingCoinGrant) TableName() string {
	return "pending_coin_grants"
}
