package rewards

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/memalerts/rewards-backend/internal/wallets"
	pkgerrors "github.com/memalerts/rewards-backend/pkg/errors"
	"github.com/memalerts/rewards-backend/pkg/txbuffer"
)

// ClaimGrants sweeps every unclaimed grant for the identity into the user's
// per-channel wallets. Each grant is claimed with a conditional update, so a
// concurrent sweep for the same identity credits each grant exactly once.
// Returns one UpdatedEvent per grant claimed by this call; the caller decides
// when and how to publish them (after commit, via the post-transaction
// buffer).
func (s *service) ClaimGrants(ctx context.Context, tx *gorm.DB, buffer *txbuffer.Buffer, input ClaimGrantsInput) ([]wallets.UpdatedEvent, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if !input.Provider.IsValid() || input.ProviderAccountID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider identity is required")
	}

	repo := s.repo.WithTx(tx)

	grants, err := repo.ListUnclaimedGrants(ctx, input.Provider, input.ProviderAccountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing unclaimed grants")
	}
	if len(grants) == 0 {
		return nil, nil
	}

	slugs := map[uuid.UUID]string{}

	var events []wallets.UpdatedEvent
	for _, grant := range grants {
		claimed, err := repo.MarkGrantClaimed(ctx, grant.ID, s.now())
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "claiming grant")
		}
		if !claimed {
			// Another sweep got here first; its transaction owns the credit.
			continue
		}

		balance, err := s.wallets.Increment(ctx, tx, input.UserID, grant.ChannelID, grant.Coins)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "crediting wallet")
		}

		slug, ok := slugs[grant.ChannelID]
		if !ok {
			slug = s.channelSlug(ctx, grant.ChannelID)
			slugs[grant.ChannelID] = slug
		}

		events = append(events, wallets.UpdatedEvent{
			UserID:      input.UserID.String(),
			ChannelID:   grant.ChannelID.String(),
			ChannelSlug: slug,
			Balance:     balance,
			Delta:       grant.Coins,
			Reason:      "coin_grant",
			Source:      "claim",
		})

		coins := grant.Coins
		s.countAfterCommit(buffer, func() { s.metrics.IncGrantClaimed(string(input.Provider), coins) })
	}

	return events, nil
}

// channelSlug is cosmetic enrichment for the realtime payload; lookup
// failures degrade to an empty slug instead of aborting the claim.
func (s *service) channelSlug(ctx context.Context, channelID uuid.UUID) string {
	if s.channels == nil {
		return ""
	}
	channel, err := s.channels.FindByID(ctx, channelID)
	if err != nil || channel == nil {
		s.logg.Warn(ctx, "channel slug lookup failed")
		return ""
	}
	return channel.Slug
}
