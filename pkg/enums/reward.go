package enums

// RewardEventType enumerates the platform occurrences considered for a coin
// reward.
type RewardEventType string

const (
	RewardEventTypeFollow       RewardEventType = "follow"
	RewardEventTypeSubscribe    RewardEventType = "subscribe"
	RewardEventTypeResubscribe  RewardEventType = "resubscribe"
	RewardEventTypeGiftSub      RewardEventType = "gift_sub"
	RewardEventTypeCheer        RewardEventType = "cheer"
	RewardEventTypeRaid         RewardEventType = "raid"
	RewardEventTypeRedemption   RewardEventType = "redemption"
	RewardEventTypeChatActivity RewardEventType = "chat_activity"
)

func (t RewardEventType) IsValid() bool {
	switch t {
	case RewardEventTypeFollow,
		RewardEventTypeSubscribe,
		RewardEventTypeResubscribe,
		RewardEventTypeGiftSub,
		RewardEventTypeCheer,
		RewardEventTypeRaid,
		RewardEventTypeRedemption,
		RewardEventTypeChatActivity:
		return true
	}
	return false
}

// RewardEventStatus is the terminal disposition assigned when an event is
// first recorded. Rows are append-only, so the status never changes afterward.
type RewardEventStatus string

const (
	RewardEventStatusObserved RewardEventStatus = "observed"
	RewardEventStatusEligible RewardEventStatus = "eligible"
	RewardEventStatusIgnored  RewardEventStatus = "ignored"
	RewardEventStatusFailed   RewardEventStatus = "failed"
)

func (s RewardEventStatus) IsValid() bool {
	switch s {
	case RewardEventStatusObserved, RewardEventStatusEligible, RewardEventStatusIgnored, RewardEventStatusFailed:
		return true
	}
	return false
}
