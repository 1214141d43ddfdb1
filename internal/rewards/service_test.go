package rewards

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/memalerts/rewards-backend/internal/channels"
	"github.com/memalerts/rewards-backend/internal/wallets"
	"github.com/memalerts/rewards-backend/pkg/db/models"
	"github.com/memalerts/rewards-backend/pkg/enums"
	"github.com/memalerts/rewards-backend/pkg/logger"
	"github.com/memalerts/rewards-backend/pkg/metrics"
	"github.com/memalerts/rewards-backend/pkg/txbuffer"
)

func setupRewardsTestDB(t *testing.T) *gorm.DB {
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

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "rewards-test", Output: io.Discard})
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(db),
		Wallets:  wallets.NewService(wallets.NewRepository(db)),
		Channels: channels.NewRepository(db),
		Logger:   testLogger(),
	})
	require.NoError(t, err)
	return svc
}

func seedChannel(t *testing.T, db *gorm.DB, slug string) uuid.UUID {
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

func eligibleFollow(channelID uuid.UUID, eventID string, coins int64) RecordEventInput {
	return RecordEventInput{
		Provider:          enums.ProviderTwitch,
		ProviderEventID:   eventID,
		ChannelID:         channelID,
		ProviderAccountID: "viewer-42",
		EventType:         enums.RewardEventTypeFollow,
		CoinsToGrant:      coins,
		Status:            enums.RewardEventStatusEligible,
		EventAt:           time.Now().UTC(),
	}
}

func TestRecordEventMissingIdentifiersIsNoop(t *testing.T) {
	db := setupRewardsTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	inputs := []RecordEventInput{
		eligibleFollow(uuid.Nil, "evt-1", 50),
		func() RecordEventInput {
			in := eligibleFollow(uuid.New(), "", 50)
			return in
		}(),
		func() RecordEventInput {
			in := eligibleFollow(uuid.New(), "evt-1", 50)
			in.ProviderAccountID = ""
			return in
		}(),
	}

	for _, input := range inputs {
		res, err := svc.RecordEvent(ctx, db, nil, input)
		require.NoError(t, err)
		require.False(t, res.OK)
	}

	var count int64
	require.NoError(t, db.Model(&models.RewardEvent{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestRecordEventIsExactlyOnce(t *testing.T) {
	db := setupRewardsTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	channelID := seedChannel(t, db, "streamer")

	first, err := svc.RecordEvent(ctx, db, nil, eligibleFollow(channelID, "evt-dup", 50))
	require.NoError(t, err)
	require.True(t, first.OK)
	require.True(t, first.CreatedEvent)
	require.True(t, first.CreatedPending)

	// A replay with a different amount must not disturb the first-seen row.
	replay := eligibleFollow(channelID, "evt-dup", 9000)
	second, err := svc.RecordEvent(ctx, db, nil, replay)
	require.NoError(t, err)
	require.True(t, second.OK)
	require.False(t, second.CreatedEvent)
	require.False(t, second.CreatedPending)
	require.Equal(t, first.Event.ID, second.Event.ID)
	require.Equal(t, int64(50), second.Event.CoinsToGrant)

	var events int64
	require.NoError(t, db.Model(&models.RewardEvent{}).Count(&events).Error)
	require.Equal(t, int64(1), events)

	var grants int64
	require.NoError(t, db.Model(&models.PendingCoinGrant{}).Count(&grants).Error)
	require.Equal(t, int64(1), grants)
}

func TestRecordEventObservedCreatesNoGrant(t *testing.T) {
	db := setupRewardsTestDB(t)
	svc := newTestService(t, db)
	channelID := seedChannel(t, db, "streamer")

	input := eligibleFollow(channelID, "evt-observed", 0)
	input.Status = enums.RewardEventStatusObserved

	res, err := svc.RecordEvent(context.Background(), db, nil, input)
	require.NoError(t, err)
	require.True(t, res.OK)
	require.True(t, res.CreatedEvent)
	require.False(t, res.CreatedPending)

	var grants int64
	require.NoError(t, db.Model(&models.PendingCoinGrant{}).Count(&grants).Error)
	require.Zero(t, grants)
}

func TestClaimGrantsCreditsWalletExactlyOnce(t *testing.T) {
	db := setupRewardsTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()
	channelID := seedChannel(t, db, "streamer")
	userID := uuid.New()

	_, err := svc.RecordEvent(ctx, db, nil, eligibleFollow(channelID, "evt-a", 50))
	require.NoError(t, err)
	_, err = svc.RecordEvent(ctx, db, nil, eligibleFollow(channelID, "evt-b", 25))
	require.NoError(t, err)

	input := ClaimGrantsInput{
		UserID:            userID,
		Provider:          enums.ProviderTwitch,
		ProviderAccountID: "viewer-42",
	}

	events, err := svc.ClaimGrants(ctx, db, nil, input)
	require.NoError(t, err)
	require.Len(t, events, 2)
	for _, ev := range events {
		require.Equal(t, userID.String(), ev.UserID)
		require.Equal(t, channelID.String(), ev.ChannelID)
		require.Equal(t, "streamer", ev.ChannelSlug)
		require.Equal(t, "claim", ev.Source)
	}
	require.Equal(t, int64(75), events[len(events)-1].Balance)

	var wallet models.Wallet
	require.NoError(t, db.Where("user_id = ?", userID).First(&wallet).Error)
	require.Equal(t, int64(75), wallet.Balance)

	// Second sweep finds nothing to claim and credits nothing.
	again, err := svc.ClaimGrants(ctx, db, nil, input)
	require.NoError(t, err)
	require.Empty(t, again)

	require.NoError(t, db.Where("user_id = ?", userID).First(&wallet).Error)
	require.Equal(t, int64(75), wallet.Balance)
}

func TestRolledBackTransactionCountsNothing(t *testing.T) {
	db := setupRewardsTestDB(t)
	reg := prometheus.NewRegistry()
	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(db),
		Wallets:  wallets.NewService(wallets.NewRepository(db)),
		Channels: channels.NewRepository(db),
		Metrics:  metrics.NewRewardMetrics(reg),
		Logger:   testLogger(),
	})
	require.NoError(t, err)
	ctx := context.Background()
	channelID := seedChannel(t, db, "streamer")

	buffer := txbuffer.New(nil)
	err = db.Transaction(func(tx *gorm.DB) error {
		res, err := svc.RecordEvent(ctx, tx, buffer, eligibleFollow(channelID, "evt-doomed", 50))
		require.NoError(t, err)
		require.True(t, res.CreatedEvent)
		return fmt.Errorf("downstream failure")
	})
	require.Error(t, err)
	buffer.Flush()

	require.Zero(t, recordedEventsTotal(t, reg))

	var count int64
	require.NoError(t, db.Model(&models.RewardEvent{}).Count(&count).Error)
	require.Zero(t, count)

	buffer = txbuffer.New(nil)
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		if _, err := svc.RecordEvent(ctx, tx, buffer, eligibleFollow(channelID, "evt-kept", 50)); err != nil {
			return err
		}
		buffer.Commit()
		return nil
	}))
	require.Zero(t, recordedEventsTotal(t, reg))
	buffer.Flush()
	require.Equal(t, float64(1), recordedEventsTotal(t, reg))
}

func recordedEventsTotal(t *testing.T, reg *prometheus.Registry) float64 {
	t.Helper()

	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != "reward_events_recorded" {
			continue
		}
		var total float64
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
		return total
	}
	return 0
}

func TestClaimGrantsForUnknownIdentityIsEmpty(t *testing.T) {
	db := setupRewardsTestDB(t)
	svc := newTestService(t, db)

	events, err := svc.ClaimGrants(context.Background(), db, nil, ClaimGrantsInput{
		UserID:            uuid.New(),
		Provider:          enums.ProviderTwitch,
		ProviderAccountID: "nobody",
	})
	require.NoError(t, err)
	require.Empty(t, events)
}
