package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/memalerts/rewards-backend/internal/wallets"
	"github.com/memalerts/rewards-backend/pkg/logger"
	"github.com/memalerts/rewards-backend/pkg/metrics"
)

const (
	// Header marks inter-instance relay requests; the value must match the
	// configured shared secret.
	Header = "x-memalerts-internal"

	// Path is the internal endpoint peers accept relayed updates on.
	Path = "/internal/wallet-updated"
)

type localHub interface {
	Publish(room, event string, data any)
}

// Service fans a wallet update out to the owning user's realtime connections.
// Instances behind the load balancer share the database but not websocket
// state, so after broadcasting locally the update is relayed to every
// configured peer, which re-broadcasts to its own connections.
type Service struct {
	hub     localHub
	peers   []string
	secret  string
	timeout time.Duration
	client  *http.Client
	logg    *logger.Logger
	metrics *metrics.RewardMetrics
}

// Params wires the relay service.
type Params struct {
	Hub        localHub
	Peers      []string
	Secret     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logger.Logger
	Metrics    *metrics.RewardMetrics
}

func New(params Params) *Service {
	client := params.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Service{
		hub:     params.Hub,
		peers:   params.Peers,
		secret:  params.Secret,
		timeout: timeout,
		client:  client,
		logg:    params.Logger,
		metrics: params.Metrics,
	}
}

// Publish delivers the update to local connections and relays it to peers.
// Peer relaying is fire-and-forget; delivery is best effort once the credit
// is committed.
func (s *Service) Publish(ctx context.Context, event wallets.UpdatedEvent) {
	s.BroadcastLocal(event)
	for _, peer := range s.peers {
		go s.relayToPeer(context.WithoutCancel(ctx), peer, event)
	}
}

// BroadcastLocal emits to the owning user's room only. Wallet balances are
// private; they never go to channel-wide rooms.
func (s *Service) BroadcastLocal(event wallets.UpdatedEvent) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(wallets.UserRoom(event.UserID), wallets.EventName, event)
}

func (s *Service) relayToPeer(ctx context.Context, peer string, event wallets.UpdatedEvent) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	body, err := json.Marshal(event)
	if err != nil {
		s.fail(ctx, peer, err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, peer+Path, bytes.NewReader(body))
	if err != nil {
		s.fail(ctx, peer, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(Header, s.secret)

	resp, err := s.client.Do(req)
	if err != nil {
		s.fail(ctx, peer, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.fail(ctx, peer, fmt.Errorf("peer responded %d", resp.StatusCode))
	}
}

// fail logs and counts a relay failure. Failures never propagate: the local
// broadcast already happened and the credit is durable.
func (s *Service) fail(ctx context.Context, peer string, err error) {
	if s.metrics != nil {
		s.metrics.IncRelayFailure(peer)
	}
	if s.logg != nil {
		ctx = s.logg.WithField(ctx, "peer", peer)
		s.logg.Error(ctx, "relaying wallet update to peer failed", err)
	}
}
