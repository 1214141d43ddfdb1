package rewards

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/memalerts/rewards-backend/pkg/db/models"
	"github.com/memalerts/rewards-backend/pkg/enums"
)

// RecordEventInput is the normalized form of a platform occurrence. Webhook
// collaborators build it after applying their own coin policy; this package
// never interprets provider payloads.
type RecordEventInput struct {
	Provider          enums.Provider
	ProviderEventID   string
	ChannelID         uuid.UUID
	ProviderAccountID string
	EventType         enums.RewardEventType
	Currency          string
	Amount            int64
	CoinsToGrant      int64
	Status            enums.RewardEventStatus
	Reason            string
	EventAt           time.Time
	RawPayload        json.RawMessage
}

// RecordEventResult reports what recording did. OK is false only for inputs
// missing required identifiers; such calls touch no storage.
type RecordEventResult struct {
	OK             bool
	Event          *models.RewardEvent
	CreatedEvent   bool
	CreatedPending bool
}

// ClaimGrantsInput identifies whose parked grants to sweep into a wallet.
type ClaimGrantsInput struct {
	UserID            uuid.UUID
	Provider          enums.Provider
	ProviderAccountID string
}
