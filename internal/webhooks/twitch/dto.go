package twitchwebhook

import (
	"encoding/json"
	"time"
)

// EventSub transport headers.
const (
	HeaderMessageID   = "Twitch-Eventsub-Message-Id"
	HeaderTimestamp   = "Twitch-Eventsub-Message-Timestamp"
	HeaderSignature   = "Twitch-Eventsub-Message-Signature"
	HeaderMessageType = "Twitch-Eventsub-Message-Type"

	MessageTypeNotification = "notification"
	MessageTypeVerification = "webhook_callback_verification"
	MessageTypeRevocation   = "revocation"
)

// EventSub subscription types this service understands.
const (
	TypeFollow     = "channel.follow"
	TypeSubscribe  = "channel.subscribe"
	TypeResub      = "channel.subscription.message"
	TypeGiftSub    = "channel.subscription.gift"
	TypeCheer      = "channel.cheer"
	TypeRaid       = "channel.raid"
	TypeRedemption = "channel.channel_points_custom_reward_redemption.add"
)

// Notification is the EventSub envelope delivered on each webhook call.
// MessageID and SentAt come from the transport headers; the message id is
// what makes retried deliveries deduplicate in the ledger.
type Notification struct {
	MessageID    string          `json:"-"`
	SentAt       time.Time       `json:"-"`
	Subscription Subscription    `json:"subscription"`
	Challenge    string          `json:"challenge,omitempty"`
	Event        json.RawMessage `json:"event,omitempty"`
}

type Subscription struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Condition map[string]string `json:"condition"`
}

// eventPayload is the superset of the EventSub event fields this service
// reads. Twitch sends only the fields relevant to each subscription type.
type eventPayload struct {
	UserID               string `json:"user_id"`
	BroadcasterUserID    string `json:"broadcaster_user_id"`
	FromBroadcasterID    string `json:"from_broadcaster_user_id"`
	ToBroadcasterID      string `json:"to_broadcaster_user_id"`
	Bits                 int64  `json:"bits"`
	Total                int64  `json:"total"`
	IsAnonymous          bool   `json:"is_anonymous"`
	CumulativeMonths     int64  `json:"cumulative_months"`
	Reward               reward `json:"reward"`
	RedemptionStatusText string `json:"status"`
}

type reward struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Cost  int64  `json:"cost"`
}

// Outcome summarizes what one notification did, for logging and tests.
type Outcome struct {
	Recorded       bool
	CreatedPending bool
	ClaimedGrants  int
}
