package twitchwebhook

import (
	"time"

	"github.com/memalerts/rewards-backend/pkg/enums"
)

type normalizedEvent struct {
	providerEventID string
	broadcasterID   string
	viewerID        string
	eventType       enums.RewardEventType
	currency        string
	amount          int64
	coins           int64
	status          enums.RewardEventStatus
	reason          string
	eventAt         time.Time
}

// normalize maps an EventSub notification onto the reward ledger's input.
// The second return is false for subscription types this service does not
// reward; those notifications are acknowledged without recording.
func (s *Service) normalize(note *Notification, payload eventPayload) (normalizedEvent, bool) {
	sub := note.Subscription
	out := normalizedEvent{
		broadcasterID: payload.BroadcasterUserID,
		viewerID:      payload.UserID,
		eventAt:       note.SentAt,
	}

	switch sub.Type {
	case TypeFollow:
		out.eventType = enums.RewardEventTypeFollow
		out.coins = s.policy.Follow
	case TypeSubscribe:
		out.eventType = enums.RewardEventTypeSubscribe
		out.coins = s.policy.Subscribe
	case TypeResub:
		out.eventType = enums.RewardEventTypeResubscribe
		out.coins = s.policy.Resubscribe
		out.amount = payload.CumulativeMonths
	case TypeGiftSub:
		out.eventType = enums.RewardEventTypeGiftSub
		total := payload.Total
		if total < 1 {
			total = 1
		}
		out.amount = total
		if payload.IsAnonymous {
			out.viewerID = "anonymous"
			out.status = enums.RewardEventStatusIgnored
			out.reason = "anonymous gifter"
		} else {
			out.coins = s.policy.GiftSubPerSub * total
		}
	case TypeCheer:
		out.eventType = enums.RewardEventTypeCheer
		out.currency = "bits"
		out.amount = payload.Bits
		if payload.IsAnonymous {
			out.viewerID = "anonymous"
			out.status = enums.RewardEventStatusIgnored
			out.reason = "anonymous cheer"
		} else {
			out.coins = payload.Bits * s.policy.CheerPerBit
		}
	case TypeRaid:
		out.eventType = enums.RewardEventTypeRaid
		out.broadcasterID = payload.ToBroadcasterID
		out.viewerID = payload.FromBroadcasterID
		out.coins = s.policy.Raid
	case TypeRedemption:
		out.eventType = enums.RewardEventTypeRedemption
		out.currency = "channel_points"
		out.amount = payload.Reward.Cost
		if s.policy.RedemptionDivisor > 0 {
			out.coins = payload.Reward.Cost / s.policy.RedemptionDivisor
		}
		out.reason = payload.Reward.Title
	default:
		return normalizedEvent{}, false
	}

	if out.status == "" {
		if out.coins > 0 {
			out.status = enums.RewardEventStatusEligible
		} else {
			out.status = enums.RewardEventStatusObserved
		}
	}

	// EventSub retries reuse the transport message id, which makes it the
	// natural dedupe key. The subscription id is not unique per occurrence.
	if note.MessageID != "" {
		out.providerEventID = "eventsub:" + note.MessageID
	}
	return out, true
}
