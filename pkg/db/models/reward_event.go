package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/memalerts/rewards-backend/pkg/enums"
)

// RewardEvent records one external platform occurrence considered for a coin
// reward. Rows are append-only: duplicates of (provider, provider_event_id)
// must never overwrite the first-seen payload or status.
type RewardEvent struct {
	ID                uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	Provider          enums.Provider          `gorm:"column:provider;type:provider_enum;not null;uniqueIndex:ux_reward_events_provider_event"`
	ProviderEventID   string                  `gorm:"column:provider_event_id;not null;uniqueIndex:ux_reward_events_provider_event"`
	ChannelID         uuid.UUID               `gorm:"column:channel_id;type:uuid;not null"`
	ProviderAccountID string                  `gorm:"column:provider_account_id;not null"`
	EventType         enums.RewardEventType   `gorm:"column:event_type;type:reward_event_type_enum;not null"`
	Currency          string                  `gorm:"column:currency"`
	Amount            int64                   `gorm:"column:amount;not null;default:0"`
	CoinsToGrant      int64                   `gorm:"column:coins_to_grant;not null;default:0"`
	Status            enums.RewardEventStatus `gorm:"column:status;type:reward_event_status_enum;not null"`
	Reason            string                  `gorm:"column:reason"`
	EventAt           time.Time               `gorm:"column:event_at;not null"`
	RawPayload        json.RawMessage         `gorm:"column:raw_payload;type:jsonb"`
	CreatedAt         time.Time               `gorm:"column:created_at;autoCreateTime"`
}

func (RewardEvent) TableName() string {
	return "reward_events"
}
