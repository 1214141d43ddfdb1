package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/memalerts/rewards-backend/pkg/enums"
)

// PlatformIdentity links a viewer's account on an external platform to their
// user here. Events that arrive before the link exists park their coins as
// pending grants until the link is created.
type PlatformIdentity struct {
	ID                uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	UserID            uuid.UUID      `gorm:"column:user_id;type:uuid;not null"`
	Provider          enums.Provider `gorm:"column:provider;type:provider_enum;not null;uniqueIndex:ux_platform_identities_account"`
	ProviderAccountID string         `gorm:"column:provider_account_id;not null;uniqueIndex:ux_platform_identities_account"`
	CreatedAt         time.Time      `gorm:"column:created_at;autoCreateTime"`
}

func (PlatformIdentity) TableName() string {
	return "platform_identities"
}
