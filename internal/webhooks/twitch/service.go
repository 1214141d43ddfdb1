package twitchwebhook

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/memalerts/rewards-backend/internal/rewards"
	"github.com/memalerts/rewards-backend/internal/wallets"
	"github.com/memalerts/rewards-backend/pkg/db/models"
	"github.com/memalerts/rewards-backend/pkg/enums"
	pkgerrors "github.com/memalerts/rewards-backend/pkg/errors"
	"github.com/memalerts/rewards-backend/pkg/logger"
	"github.com/memalerts/rewards-backend/pkg/txbuffer"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type channelResolver interface {
	FindByProviderAccount(ctx context.Context, provider enums.Provider, providerChannelID string) (*models.Channel, error)
}

type identityResolver interface {
	Resolve(ctx context.Context, tx *gorm.DB, provider enums.Provider, providerAccountID string) (uuid.UUID, bool, error)
}

type ledger interface {
	RecordEvent(ctx context.Context, tx *gorm.DB, buffer *txbuffer.Buffer, input rewards.RecordEventInput) (*rewards.RecordEventResult, error)
	ClaimGrants(ctx context.Context, tx *gorm.DB, buffer *txbuffer.Buffer, input rewards.ClaimGrantsInput) ([]wallets.UpdatedEvent, error)
}

type walletPublisher interface {
	Publish(ctx context.Context, event wallets.UpdatedEvent)
}

// Service turns EventSub notifications into ledger entries and, when the
// viewer is already linked, wallet credits. Record, claim and credit run in
// one transaction; realtime notifications flush only after it commits.
type Service struct {
	tx         txRunner
	channels   channelResolver
	identities identityResolver
	ledger     ledger
	publisher  walletPublisher
	policy     CoinPolicy
	logg       *logger.Logger
}

// ServiceParams wires the webhook pipeline's collaborators.
type ServiceParams struct {
	Tx         txRunner
	Channels   channelResolver
	Identities identityResolver
	Ledger     ledger
	Publisher  walletPublisher
	Policy     *CoinPolicy
	Logger     *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "tx runner is required")
	}
	if params.Channels == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "channel resolver is required")
	}
	if params.Identities == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "identity resolver is required")
	}
	if params.Ledger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "reward ledger is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	policy := DefaultCoinPolicy()
	if params.Policy != nil {
		policy = *params.Policy
	}
	return &Service{
		tx:         params.Tx,
		channels:   params.Channels,
		identities: params.Identities,
		ledger:     params.Ledger,
		publisher:  params.Publisher,
		policy:     policy,
		logg:       params.Logger,
	}, nil
}

// HandleNotification runs the full pipeline for one EventSub notification.
// Notifications for unknown channels or unrecognized event types are
// acknowledged without recording anything; Twitch retries only on failure.
func (s *Service) HandleNotification(ctx context.Context, note *Notification) (*Outcome, error) {
	if note == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notification is required")
	}

	var payload eventPayload
	if len(note.Event) > 0 {
		if err := json.Unmarshal(note.Event, &payload); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decoding event payload")
		}
	}

	normalized, ok := s.normalize(note, payload)
	if !ok {
		return &Outcome{}, nil
	}

	channel, err := s.channels.FindByProviderAccount(ctx, enums.ProviderTwitch, normalized.broadcasterID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving channel")
	}
	if channel == nil {
		ctx = s.logg.WithProvider(ctx, string(enums.ProviderTwitch))
		s.logg.Warn(ctx, "notification for unknown broadcaster, skipping")
		return &Outcome{}, nil
	}

	buffer := txbuffer.New(s.logg)
	defer buffer.Flush()

	outcome := &Outcome{}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		res, err := s.ledger.RecordEvent(ctx, tx, buffer, rewards.RecordEventInput{
			Provider:          enums.ProviderTwitch,
			ProviderEventID:   normalized.providerEventID,
			ChannelID:         channel.ID,
			ProviderAccountID: normalized.viewerID,
			EventType:         normalized.eventType,
			Currency:          normalized.currency,
			Amount:            normalized.amount,
			CoinsToGrant:      normalized.coins,
			Status:            normalized.status,
			Reason:            normalized.reason,
			EventAt:           normalized.eventAt,
			RawPayload:        note.Event,
		})
		if err != nil {
			return err
		}
		if !res.OK {
			return nil
		}
		outcome.Recorded = res.CreatedEvent
		outcome.CreatedPending = res.CreatedPending

		if !res.CreatedPending {
			buffer.Commit()
			return nil
		}

		userID, linked, err := s.identities.Resolve(ctx, tx, enums.ProviderTwitch, normalized.viewerID)
		if err != nil {
			return err
		}
		if !linked {
			// Grant stays parked until the viewer links this identity.
			buffer.Commit()
			return nil
		}

		events, err := s.ledger.ClaimGrants(ctx, tx, buffer, rewards.ClaimGrantsInput{
			UserID:            userID,
			Provider:          enums.ProviderTwitch,
			ProviderAccountID: normalized.viewerID,
		})
		if err != nil {
			return err
		}
		outcome.ClaimedGrants = len(events)

		if s.publisher != nil {
			for _, event := range events {
				ev := event
				if err := buffer.Add(func() {
					s.publisher.Publish(context.WithoutCancel(ctx), ev)
				}); err != nil {
					return err
				}
			}
		}

		buffer.Commit()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}
