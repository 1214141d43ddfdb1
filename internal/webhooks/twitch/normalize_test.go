package twitchwebhook

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/memalerts/rewards-backend/pkg/enums"
)

func normalizeWith(t *testing.T, subType string, payload eventPayload) (normalizedEvent, bool) {
	t.Helper()

	svc := &Service{policy: DefaultCoinPolicy()}
	note := &Notification{
		MessageID:    "msg-1",
		Subscription: Subscription{ID: "sub-1", Type: subType},
	}
	return svc.normalize(note, payload)
}

func TestNormalizeCheerPaysPerBit(t *testing.T) {
	out, ok := normalizeWith(t, TypeCheer, eventPayload{
		UserID:            "viewer-1",
		BroadcasterUserID: "broadcaster-1",
		Bits:              250,
	})
	require.True(t, ok)
	require.Equal(t, enums.RewardEventTypeCheer, out.eventType)
	require.Equal(t, int64(250), out.amount)
	require.Equal(t, int64(250), out.coins)
	require.Equal(t, enums.RewardEventStatusEligible, out.status)
	require.Equal(t, "bits", out.currency)
	require.Equal(t, "eventsub:msg-1", out.providerEventID)
}

func TestNormalizeAnonymousCheerIsIgnored(t *testing.T) {
	out, ok := normalizeWith(t, TypeCheer, eventPayload{
		BroadcasterUserID: "broadcaster-1",
		Bits:              250,
		IsAnonymous:       true,
	})
	require.True(t, ok)
	require.Equal(t, enums.RewardEventStatusIgnored, out.status)
	require.Zero(t, out.coins)
	require.Equal(t, "anonymous", out.viewerID)
}

func TestNormalizeRaidUsesRaidingBroadcaster(t *testing.T) {
	out, ok := normalizeWith(t, TypeRaid, eventPayload{
		FromBroadcasterID: "raider-1",
		ToBroadcasterID:   "broadcaster-1",
	})
	require.True(t, ok)
	require.Equal(t, "broadcaster-1", out.broadcasterID)
	require.Equal(t, "raider-1", out.viewerID)
	require.Equal(t, int64(100), out.coins)
}

func TestNormalizeGiftSubScalesWithTotal(t *testing.T) {
	out, ok := normalizeWith(t, TypeGiftSub, eventPayload{
		UserID:            "gifter-1",
		BroadcasterUserID: "broadcaster-1",
		Total:             5,
	})
	require.True(t, ok)
	require.Equal(t, int64(1500), out.coins)
	require.Equal(t, int64(5), out.amount)
}

func TestNormalizeRedemptionDividesCost(t *testing.T) {
	out, ok := normalizeWith(t, TypeRedemption, eventPayload{
		UserID:            "viewer-1",
		BroadcasterUserID: "broadcaster-1",
		Reward:            reward{Title: "hydrate", Cost: 500},
	})
	require.True(t, ok)
	require.Equal(t, int64(50), out.coins)
	require.Equal(t, "hydrate", out.reason)
	require.Equal(t, "channel_points", out.currency)
}

func TestNormalizeZeroCoinEventIsObserved(t *testing.T) {
	out, ok := normalizeWith(t, TypeRedemption, eventPayload{
		UserID:            "viewer-1",
		BroadcasterUserID: "broadcaster-1",
		Reward:            reward{Title: "cheap", Cost: 5},
	})
	require.True(t, ok)
	require.Zero(t, out.coins)
	require.Equal(t, enums.RewardEventStatusObserved, out.status)
}

func TestNormalizeUnknownTypeIsSkipped(t *testing.T) {
	_, ok := normalizeWith(t, "stream.online", eventPayload{})
	require.False(t, ok)
}
