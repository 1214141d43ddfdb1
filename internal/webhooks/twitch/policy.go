package twitchwebhook

// CoinPolicy decides how many coins each event type is worth. Values are
// fixed per deployment; events worth zero coins are still recorded in the
// ledger as observed.
type CoinPolicy struct {
	Follow            int64
	Subscribe         int64
	Resubscribe       int64
	GiftSubPerSub     int64
	CheerPerBit       int64
	Raid              int64
	RedemptionDivisor int64
}

// DefaultCoinPolicy mirrors the product's standard reward table.
func DefaultCoinPolicy() CoinPolicy {
	return CoinPolicy{
		Follow:            50,
		Subscribe:         300,
		Resubscribe:       300,
		GiftSubPerSub:     300,
		CheerPerBit:       1,
		Raid:              100,
		RedemptionDivisor: 10,
	}
}
