package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// RewardMetrics records counters for the ledger / crediting pipeline.
type RewardMetrics struct {
	eventsRecorded *prometheus.CounterVec
	grantsClaimed  *prometheus.CounterVec
	coinsGranted   *prometheus.CounterVec
	relayFailures  *prometheus.CounterVec
}

// NewRewardMetrics registers the reward pipeline metrics on the provided registerer.
func NewRewardMetrics(reg prometheus.Registerer) *RewardMetrics {
	if reg == nil {
		return &RewardMetrics{}
	}
	eventsRecorded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reward_events_recorded",
		Help: "Reward events recorded, labeled by provider and status.",
	}, []string{"provider", "status"})
	grantsClaimed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coin_grants_claimed",
		Help: "Pending coin grants claimed into wallets.",
	}, []string{"provider"})
	coinsGranted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coins_granted_total",
		Help: "Coins credited to wallets.",
	}, []string{"provider"})
	relayFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_failures",
		Help: "Failed wallet-update relays to peer instances.",
	}, []string{"peer"})
	reg.MustRegister(eventsRecorded, grantsClaimed, coinsGranted, relayFailures)
	return &RewardMetrics{
		eventsRecorded: eventsRecorded,
		grantsClaimed:  grantsClaimed,
		coinsGranted:   coinsGranted,
		relayFailures:  relayFailures,
	}
}

// IncEventRecorded counts one recorded ledger event.
func (m *RewardMetrics) IncEventRecorded(provider, status string) {
	if m == nil || m.eventsRecorded == nil {
		return
	}
	m.eventsRecorded.WithLabelValues(normalizeLabel(provider), normalizeLabel(status)).Inc()
}

// IncGrantClaimed counts one claimed grant and the coins it carried.
func (m *RewardMetrics) IncGrantClaimed(provider string, coins int64) {
	if m == nil || m.grantsClaimed == nil {
		return
	}
	label := normalizeLabel(provider)
	m.grantsClaimed.WithLabelValues(label).Inc()
	m.coinsGranted.WithLabelValues(label).Add(float64(coins))
}

// IncRelayFailure counts one failed relay attempt against a peer.
func (m *RewardMetrics) IncRelayFailure(peer string) {
	if m == nil || m.relayFailures == nil {
		return
	}
	m.relayFailures.WithLabelValues(normalizeLabel(peer)).Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return value
}
