package controllers

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/memalerts/rewards-backend/api/responses"
	"github.com/memalerts/rewards-backend/internal/relay"
	"github.com/memalerts/rewards-backend/internal/wallets"
	pkgerrors "github.com/memalerts/rewards-backend/pkg/errors"
	"github.com/memalerts/rewards-backend/pkg/logger"
)

type localBroadcaster interface {
	BroadcastLocal(event wallets.UpdatedEvent)
}

// InternalWalletUpdated accepts a wallet update relayed by a peer instance
// and re-runs only the local broadcast. Both the loopback check and the
// shared-secret header must pass; otherwise the endpoint answers exactly like
// an unmapped path so probes learn nothing.
func InternalWalletUpdated(broadcaster localBroadcaster, secret string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if !isLoopback(r.RemoteAddr) || r.Header.Get(relay.Header) != secret || secret == "" {
			http.NotFound(w, r)
			return
		}

		var event wallets.UpdatedEvent
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid relay body"))
			return
		}
		if event.UserID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "userId is required"))
			return
		}

		// Never re-persist or re-credit here; the peer already committed.
		event.Source = "relay"
		broadcaster.BroadcastLocal(event)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}
}

func isLoopback(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
