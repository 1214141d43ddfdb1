package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/memalerts/rewards-backend/pkg/enums"
)

// Channel is a streamer's page; wallets are scoped per channel. The provider
// binding lets webhook handlers resolve a platform broadcaster id to the
// channel it belongs to.
type Channel struct {
	ID                uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Slug              string         `gorm:"column:slug;not null;uniqueIndex:ux_channels_slug"`
	Title             string         `gorm:"column:title"`
	Provider          enums.Provider `gorm:"column:provider;type:provider_enum;not null;uniqueIndex:ux_channels_provider_account"`
	ProviderChannelID string         `gorm:"column:provider_channel_id;not null;uniqueIndex:ux_channels_provider_account"`
	CreatedAt         time.Time      `gorm:"column:created_at;autoCreateTime"`
}

func (Channel) TableName() string {
	return "channels"
}
