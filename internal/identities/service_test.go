package identities

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/memalerts/rewards-backend/internal/channels"
	"github.com/memalerts/rewards-backend/internal/rewards"
	"github.com/memalerts/rewards-backend/internal/wallets"
	"github.com/memalerts/rewards-backend/pkg/db/models"
	"github.com/memalerts/rewards-backend/pkg/enums"
	"github.com/memalerts/rewards-backend/pkg/logger"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []wallets.UpdatedEvent
}

func (p *fakePublisher) Publish(ctx context.Context, event wallets.UpdatedEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *fakePublisher) all() []wallets.UpdatedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]wallets.UpdatedEvent(nil), p.events...)
}

func setupIdentitiesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{`
CREATE TABLE IF NOT EXISTS channels (
  id TEXT PRIMARY KEY,
  slug TEXT NOT NULL UNIQUE,
  title TEXT,
  provider TEXT NOT NULL,
  provider_channel_id TEXT NOT NULL,
  created_at DATETIME,
  UNIQUE (provider, provider_channel_id)
);`, `
CREATE TABLE IF NOT EXISTS platform_identities (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  provider TEXT NOT NULL,
  provider_account_id TEXT NOT NULL,
  created_at DATETIME,
  UNIQUE (provider, provider_account_id)
);`, `
CREATE TABLE IF NOT EXISTS reward_events (
  id TEXT PRIMARY KEY,
  provider TEXT NOT NULL,
  provider_event_id TEXT NOT NULL,
  channel_id TEXT NOT NULL,
  provider_account_id TEXT NOT NULL,
  event_type TEXT NOT NULL,
  currency TEXT,
  amount INTEGER NOT NULL DEFAULT 0,
  coins_to_grant INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL,
  reason TEXT,
  event_at DATETIME NOT NULL,
  raw_payload TEXT,
  created_at DATETIME,
  UNIQUE (provider, provider_event_id)
);`, `
CREATE TABLE IF NOT EXISTS pending_coin_grants (
  id TEXT PRIMARY KEY,
  reward_event_id TEXT NOT NULL UNIQUE,
  provider TEXT NOT NULL,
  provider_account_id TEXT NOT NULL,
  channel_id TEXT NOT NULL,
  coins INTEGER NOT NULL,
  claimed_at DATETIME,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS wallets (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  channel_id TEXT NOT NULL,
  balance INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (user_id, channel_id)
);`}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type identityFixture struct {
	db        *gorm.DB
	svc       Service
	rewards   rewards.Service
	publisher *fakePublisher
}

func newIdentityFixture(t *testing.T) *identityFixture {
	t.Helper()

	db := setupIdentitiesTestDB(t)
	logg := logger.New(logger.Options{ServiceName: "identities-test", Output: io.Discard})

	rewardsSvc, err := rewards.NewService(rewards.ServiceParams{
		Repo:     rewards.NewRepository(db),
		Wallets:  wallets.NewService(wallets.NewRepository(db)),
		Channels: channels.NewRepository(db),
		Logger:   logg,
	})
	require.NoError(t, err)

	publisher := &fakePublisher{}
	svc, err := NewService(ServiceParams{
		Repo:      NewRepository(db),
		Tx:        gormTxRunner{db: db},
		Claims:    rewardsSvc,
		Publisher: publisher,
		Logger:    logg,
	})
	require.NoError(t, err)

	return &identityFixture{db: db, svc: svc, rewards: rewardsSvc, publisher: publisher}
}

func seedTestChannel(t *testing.T, db *gorm.DB, slug string) uuid.UUID {
	t.Helper()

	channel := models.Channel{
		ID:                uuid.New(),
		Slug:              slug,
		Provider:          enums.ProviderTwitch,
		ProviderChannelID: "broadcaster-" + slug,
	}
	require.NoError(t, db.Create(&channel).Error)
	return channel.ID
}

func recordEligibleFollow(t *testing.T, fx *identityFixture, channelID uuid.UUID, eventID, accountID string, coins int64) {
	t.Helper()

	res, err := fx.rewards.RecordEvent(context.Background(), fx.db, nil, rewards.RecordEventInput{
		Provider:          enums.ProviderTwitch,
		ProviderEventID:   eventID,
		ChannelID:         channelID,
		ProviderAccountID: accountID,
		EventType:         enums.RewardEventTypeFollow,
		CoinsToGrant:      coins,
		Status:            enums.RewardEventStatusEligible,
		EventAt:           time.Now().UTC(),
	})
	require.NoError(t, err)
	require.True(t, res.OK)
	require.True(t, res.CreatedPending)
}

func TestLinkWithoutParkedGrants(t *testing.T) {
	fx := newIdentityFixture(t)

	res, err := fx.svc.Link(context.Background(), LinkInput{
		UserID:            uuid.New(),
		Provider:          enums.ProviderTwitch,
		ProviderAccountID: "viewer-1",
	})
	require.NoError(t, err)
	require.True(t, res.Created)
	require.Zero(t, res.ClaimedGrants)
	require.Empty(t, fx.publisher.all())
}

func TestLinkSweepsParkedGrants(t *testing.T) {
	fx := newIdentityFixture(t)
	channelID := seedTestChannel(t, fx.db, "streamer")
	userID := uuid.New()

	recordEligibleFollow(t, fx, channelID, "evt-1", "viewer-1", 50)
	recordEligibleFollow(t, fx, channelID, "evt-2", "viewer-1", 25)

	res, err := fx.svc.Link(context.Background(), LinkInput{
		UserID:            userID,
		Provider:          enums.ProviderTwitch,
		ProviderAccountID: "viewer-1",
	})
	require.NoError(t, err)
	require.True(t, res.Created)
	require.Equal(t, 2, res.ClaimedGrants)
	require.Equal(t, int64(75), res.ClaimedBalance[channelID.String()])

	var wallet models.Wallet
	require.NoError(t, fx.db.Where("user_id = ?", userID).First(&wallet).Error)
	require.Equal(t, int64(75), wallet.Balance)

	published := fx.publisher.all()
	require.Len(t, published, 2)
	for _, event := range published {
		require.Equal(t, userID.String(), event.UserID)
		require.Equal(t, channelID.String(), event.ChannelID)
		require.Equal(t, "streamer", event.ChannelSlug)
	}
}

func TestLinkIsIdempotentForSameUser(t *testing.T) {
	fx := newIdentityFixture(t)
	userID := uuid.New()

	input := LinkInput{
		UserID:            userID,
		Provider:          enums.ProviderTwitch,
		ProviderAccountID: "viewer-1",
	}

	first, err := fx.svc.Link(context.Background(), input)
	require.NoError(t, err)
	require.True(t, first.Created)

	second, err := fx.svc.Link(context.Background(), input)
	require.NoError(t, err)
	require.False(t, second.Created)
}

func TestLinkRejectsAccountOwnedByAnotherUser(t *testing.T) {
	fx := newIdentityFixture(t)

	_, err := fx.svc.Link(context.Background(), LinkInput{
		UserID:            uuid.New(),
		Provider:          enums.ProviderTwitch,
		ProviderAccountID: "viewer-1",
	})
	require.NoError(t, err)

	_, err = fx.svc.Link(context.Background(), LinkInput{
		UserID:            uuid.New(),
		Provider:          enums.ProviderTwitch,
		ProviderAccountID: "viewer-1",
	})
	require.Error(t, err)
}

func TestResolveUnknownIdentity(t *testing.T) {
	fx := newIdentityFixture(t)

	_, found, err := fx.svc.Resolve(context.Background(), fx.db, enums.ProviderTwitch, "nobody")
	require.NoError(t, err)
	require.False(t, found)
}
