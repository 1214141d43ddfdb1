package webhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/memalerts/rewards-backend/api/responses"
	twitchwebhook "github.com/memalerts/rewards-backend/internal/webhooks/twitch"
	pkgerrors "github.com/memalerts/rewards-backend/pkg/errors"
	"github.com/memalerts/rewards-backend/pkg/logger"
)

type TwitchWebhookService interface {
	HandleNotification(ctx context.Context, note *twitchwebhook.Notification) (*twitchwebhook.Outcome, error)
}

// TwitchWebhook terminates Twitch EventSub deliveries: signature check,
// challenge handshake, then the record/claim/notify pipeline. Twitch expects
// a fast 2xx; anything else triggers redelivery, which the ledger's
// idempotency makes safe.
func TwitchWebhook(svc TwitchWebhookService, secret string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		messageID := r.Header.Get(twitchwebhook.HeaderMessageID)
		timestamp := r.Header.Get(twitchwebhook.HeaderTimestamp)
		signature := r.Header.Get(twitchwebhook.HeaderSignature)

		if !twitchwebhook.VerifySignature(secret, messageID, timestamp, payload, signature) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid eventsub signature"))
			return
		}

		var note twitchwebhook.Notification
		if err := json.Unmarshal(payload, &note); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode notification"))
			return
		}
		note.MessageID = messageID
		if ts, err := time.Parse(time.RFC3339Nano, timestamp); err == nil {
			note.SentAt = ts
		}

		switch r.Header.Get(twitchwebhook.HeaderMessageType) {
		case twitchwebhook.MessageTypeVerification:
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(note.Challenge))
			return
		case twitchwebhook.MessageTypeRevocation:
			if logg != nil {
				logCtx := logg.WithFields(ctx, map[string]any{"subscription_type": note.Subscription.Type})
				logg.Warn(logCtx, "eventsub subscription revoked")
			}
			w.WriteHeader(http.StatusNoContent)
			return
		case twitchwebhook.MessageTypeNotification, "":
			// Handled below.
		default:
			// Unknown delivery type; ack it so Twitch stops redelivering.
			if logg != nil {
				logCtx := logg.WithFields(ctx, map[string]any{"message_type": r.Header.Get(twitchwebhook.HeaderMessageType)})
				logg.Warn(logCtx, "unrecognized eventsub message type")
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		outcome, err := svc.HandleNotification(ctx, &note)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"recorded":       outcome.Recorded,
			"createdPending": outcome.CreatedPending,
			"claimedGrants":  outcome.ClaimedGrants,
		})
	}
}
