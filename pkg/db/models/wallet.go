package models

import (
	"time"

	"github.com/google/uuid"
)

// Wallet holds the coin balance a viewer has in one channel. Balances change
// only through the atomic increment in internal/wallets.
type Wallet struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_wallets_user_channel"`
	ChannelID uuid.UUID `gorm:"column:channel_id;type:uuid;not null;uniqueIndex:ux_wallets_user_channel"`
	Balance   int64     `gorm:"column:balance;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Wallet) TableName() string {
	return "wallets"
}
