package wallets

// EventName is the realtime event emitted whenever a wallet balance changes.
const EventName = "wallet:updated"

// UpdatedEvent is the payload delivered to the owning user's realtime room.
// It is addressed to exactly one user; balances are never broadcast to
// channel-wide rooms.
type UpdatedEvent struct {
	UserID      string `json:"userId"`
	ChannelID   string `json:"channelId"`
	ChannelSlug string `json:"channelSlug,omitempty"`
	Balance     int64  `json:"balance"`
	Delta       int64  `json:"delta"`
	Reason      string `json:"reason,omitempty"`
	Source      string `json:"source"`
}

// UserRoom names the per-user realtime room wallet updates are published to.
func UserRoom(userID string) string {
	return "user:" + userID
}
