package identities

import (
	"context"

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

type claimEngine interface {
	ClaimGrants(ctx context.Context, tx *gorm.DB, buffer *txbuffer.Buffer, input rewards.ClaimGrantsInput) ([]wallets.UpdatedEvent, error)
}

type walletPublisher interface {
	Publish(ctx context.Context, event wallets.UpdatedEvent)
}

// Service manages viewer identity links. Linking an identity also sweeps any
// coins that were parked for it before the link existed.
type Service interface {
	// Resolve maps a platform identity to a user inside the caller's
	// transaction. The second return is false when no link exists.
	Resolve(ctx context.Context, tx *gorm.DB, provider enums.Provider, providerAccountID string) (uuid.UUID, bool, error)

	Link(ctx context.Context, input LinkInput) (*LinkResult, error)
}

// LinkInput identifies the platform account to attach to a user.
type LinkInput struct {
	UserID            uuid.UUID
	Provider          enums.Provider
	ProviderAccountID string
}

// LinkResult reports whether the link was new and how many parked grants the
// sweep credited.
type LinkResult struct {
	Created        bool
	ClaimedGrants  int
	ClaimedBalance map[string]int64
}

type service struct {
	repo      Repository
	tx        txRunner
	claims    claimEngine
	publisher walletPublisher
	logg      *logger.Logger
}

// ServiceParams wires the identity service's collaborators.
type ServiceParams struct {
	Repo      Repository
	Tx        txRunner
	Claims    claimEngine
	Publisher walletPublisher
	Logger    *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "identities repository is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "tx runner is required")
	}
	if params.Claims == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "claim engine is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	return &service{
		repo:      params.Repo,
		tx:        params.Tx,
		claims:    params.Claims,
		publisher: params.Publisher,
		logg:      params.Logger,
	}, nil
}

func (s *service) Resolve(ctx context.Context, tx *gorm.DB, provider enums.Provider, providerAccountID string) (uuid.UUID, bool, error) {
	identity, err := s.repo.WithTx(tx).FindByAccount(ctx, provider, providerAccountID)
	if err != nil {
		return uuid.Nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving platform identity")
	}
	if identity == nil {
		return uuid.Nil, false, nil
	}
	return identity.UserID, true, nil
}

// Link attaches the platform account to the user and sweeps parked grants in
// the same transaction. Wallet update notifications go out only after the
// transaction commits.
func (s *service) Link(ctx context.Context, input LinkInput) (*LinkResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if !input.Provider.IsValid() || input.ProviderAccountID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider identity is required")
	}

	buffer := txbuffer.New(s.logg)
	defer buffer.Flush()

	result := &LinkResult{ClaimedBalance: map[string]int64{}}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		identity := &models.PlatformIdentity{
			ID:                uuid.New(),
			UserID:            input.UserID,
			Provider:          input.Provider,
			ProviderAccountID: input.ProviderAccountID,
		}
		created, err := repo.InsertIfAbsent(ctx, identity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "linking platform identity")
		}
		if !created {
			existing, err := repo.FindByAccount(ctx, input.Provider, input.ProviderAccountID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading existing identity link")
			}
			if existing == nil {
				return pkgerrors.New(pkgerrors.CodeInternal, "identity link vanished after conflict")
			}
			if existing.UserID != input.UserID {
				return pkgerrors.New(pkgerrors.CodeConflict, "platform account is linked to another user")
			}
		}
		result.Created = created

		events, err := s.claims.ClaimGrants(ctx, tx, buffer, rewards.ClaimGrantsInput{
			UserID:            input.UserID,
			Provider:          input.Provider,
			ProviderAccountID: input.ProviderAccountID,
		})
		if err != nil {
			return err
		}

		result.ClaimedGrants = len(events)
		for _, event := range events {
			ev := event
			result.ClaimedBalance[ev.ChannelID] = ev.Balance
			if s.publisher != nil {
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
	return result, nil
}
