package rewards

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/memalerts/rewards-backend/pkg/db/models"
	"github.com/memalerts/rewards-backend/pkg/enums"
)

// Repository persists the reward ledger and its pending grants. All writes go
// through conflict-aware inserts or conditional updates; callers decide from
// the returned flags whether a row was freshly created or already existed.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	// InsertEventIfAbsent appends the event unless (provider,
	// provider_event_id) is already recorded. Returns true when the row was
	// created by this call.
	InsertEventIfAbsent(ctx context.Context, event *models.RewardEvent) (bool, error)
	FindEvent(ctx context.Context, provider enums.Provider, providerEventID string) (*models.RewardEvent, error)

	// InsertGrantIfAbsent creates the pending grant unless the reward event
	// already has one. Returns true when the row was created by this call.
	InsertGrantIfAbsent(ctx context.Context, grant *models.PendingCoinGrant) (bool, error)
	ListUnclaimedGrants(ctx context.Context, provider enums.Provider, providerAccountID string) ([]models.PendingCoinGrant, error)

	// MarkGrantClaimed stamps claimed_at only if the grant is still
	// unclaimed. Returns true when this call won the claim.
	MarkGrantClaimed(ctx context.Context, grantID uuid.UUID, at time.Time) (bool, error)
}
