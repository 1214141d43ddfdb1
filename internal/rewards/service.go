package rewards

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/memalerts/rewards-backend/internal/wallets"
	"github.com/memalerts/rewards-backend/pkg/db/models"
	"github.com/memalerts/rewards-backend/pkg/enums"
	pkgerrors "github.com/memalerts/rewards-backend/pkg/errors"
	"github.com/memalerts/rewards-backend/pkg/logger"
	"github.com/memalerts/rewards-backend/pkg/metrics"
	"github.com/memalerts/rewards-backend/pkg/txbuffer"
)

// Service is the reward ledger and claim engine. Both operations run inside a
// caller-supplied transaction so webhook handlers can compose record, claim
// and wallet credit atomically. The buffer receives the counter increments so
// a rollback never inflates them; a nil buffer counts immediately.
type Service interface {
	RecordEvent(ctx context.Context, tx *gorm.DB, buffer *txbuffer.Buffer, input RecordEventInput) (*RecordEventResult, error)
	ClaimGrants(ctx context.Context, tx *gorm.DB, buffer *txbuffer.Buffer, input ClaimGrantsInput) ([]wallets.UpdatedEvent, error)
}

type channelResolver interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Channel, error)
}

type service struct {
	repo     Repository
	wallets  wallets.Service
	channels channelResolver
	metrics  *metrics.RewardMetrics
	logg     *logger.Logger
	now      func() time.Time
}

// ServiceParams wires the claim engine's collaborators.
type ServiceParams struct {
	Repo     Repository
	Wallets  wallets.Service
	Channels channelResolver
	Metrics  *metrics.RewardMetrics
	Logger   *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "rewards repository is required")
	}
	if params.Wallets == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "wallets service is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	return &service{
		repo:     params.Repo,
		wallets:  params.Wallets,
		channels: params.Channels,
		metrics:  params.Metrics,
		logg:     params.Logger,
		now:      time.Now,
	}, nil
}

// RecordEvent appends the occurrence to the ledger and, for eligible events
// with coins attached, parks a pending grant. Replays of an already-recorded
// (provider, provider_event_id) change nothing: the first-seen row stays
// authoritative even when the replay carries different amounts.
func (s *service) RecordEvent(ctx context.Context, tx *gorm.DB, buffer *txbuffer.Buffer, input RecordEventInput) (*RecordEventResult, error) {
	if input.ChannelID == uuid.Nil || input.ProviderAccountID == "" || input.ProviderEventID == "" {
		return &RecordEventResult{OK: false}, nil
	}
	if !input.Provider.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown provider")
	}
	if !input.EventType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown reward event type")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown reward event status")
	}

	repo := s.repo.WithTx(tx)

	eventAt := input.EventAt
	if eventAt.IsZero() {
		eventAt = s.now()
	}

	event := &models.RewardEvent{
		ID:                uuid.New(),
		Provider:          input.Provider,
		ProviderEventID:   input.ProviderEventID,
		ChannelID:         input.ChannelID,
		ProviderAccountID: input.ProviderAccountID,
		EventType:         input.EventType,
		Currency:          input.Currency,
		Amount:            input.Amount,
		CoinsToGrant:      input.CoinsToGrant,
		Status:            input.Status,
		Reason:            input.Reason,
		EventAt:           eventAt,
		RawPayload:        input.RawPayload,
	}

	created, err := repo.InsertEventIfAbsent(ctx, event)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording reward event")
	}
	if !created {
		stored, err := repo.FindEvent(ctx, input.Provider, input.ProviderEventID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading recorded reward event")
		}
		if stored == nil {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "reward event vanished after conflict")
		}
		event = stored
	}

	if created {
		provider, status := string(event.Provider), string(event.Status)
		s.countAfterCommit(buffer, func() { s.metrics.IncEventRecorded(provider, status) })
	}

	result := &RecordEventResult{OK: true, Event: event, CreatedEvent: created}

	// The stored row decides grant eligibility, not the replayed input.
	if event.Status != enums.RewardEventStatusEligible || event.CoinsToGrant <= 0 {
		return result, nil
	}

	grant := &models.PendingCoinGrant{
		ID:                uuid.New(),
		RewardEventID:     event.ID,
		Provider:          event.Provider,
		ProviderAccountID: event.ProviderAccountID,
		ChannelID:         event.ChannelID,
		Coins:             event.CoinsToGrant,
	}
	createdGrant, err := repo.InsertGrantIfAbsent(ctx, grant)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating pending coin grant")
	}
	result.CreatedPending = createdGrant

	return result, nil
}

// countAfterCommit parks a counter increment behind the caller's buffer so a
// rolled-back transaction leaves the counters untouched.
func (s *service) countAfterCommit(buffer *txbuffer.Buffer, fn func()) {
	if s.metrics == nil {
		return
	}
	if buffer == nil {
		fn()
		return
	}
	if err := buffer.Add(fn); err != nil {
		fn()
	}
}
