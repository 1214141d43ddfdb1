package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/memalerts/rewards-backend/api/responses"
	"github.com/memalerts/rewards-backend/internal/wallets"
	"github.com/memalerts/rewards-backend/pkg/config"
	pkgerrors "github.com/memalerts/rewards-backend/pkg/errors"
	"github.com/memalerts/rewards-backend/pkg/logger"
	"github.com/memalerts/rewards-backend/pkg/realtime"
)

// Websocket upgrades the connection and joins the viewer's private room.
// Wallet updates are only ever delivered there, never to channel-wide rooms.
func Websocket(hub *realtime.Hub, cfg config.RealtimeConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := uuid.Parse(r.URL.Query().Get("userId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "userId must be a uuid"))
			return
		}

		if err := realtime.ServeWS(hub, cfg, w, r, wallets.UserRoom(userID.String())); err != nil {
			// The upgrader already wrote its own response on failure.
			if logg != nil {
				logg.Error(ctx, "websocket upgrade failed", err)
			}
		}
	}
}
