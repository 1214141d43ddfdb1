package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/memalerts/rewards-backend/api/responses"
	"github.com/memalerts/rewards-backend/internal/wallets"
	pkgerrors "github.com/memalerts/rewards-backend/pkg/errors"
	"github.com/memalerts/rewards-backend/pkg/logger"
)

type walletBalance struct {
	UserID    string `json:"userId"`
	ChannelID string `json:"channelId"`
	Balance   int64  `json:"balance"`
}

// WalletBalance returns the caller's balance for one channel. A wallet that
// was never credited reads as zero rather than 404: every viewer implicitly
// has an empty wallet everywhere.
func WalletBalance(svc wallets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		channelID, err := uuid.Parse(chi.URLParam(r, "channelId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "channelId must be a uuid"))
			return
		}
		userID, err := uuid.Parse(r.URL.Query().Get("userId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "userId must be a uuid"))
			return
		}

		balance, err := svc.Balance(ctx, userID, channelID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, walletBalance{
			UserID:    userID.String(),
			ChannelID: channelID.String(),
			Balance:   balance,
		})
	}
}

// WalletList returns every wallet a user holds across channels.
func WalletList(repo wallets.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := uuid.Parse(r.URL.Query().Get("userId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "userId must be a uuid"))
			return
		}

		rows, err := repo.ListByUser(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing wallets"))
			return
		}

		out := make([]walletBalance, 0, len(rows))
		for _, row := range rows {
			out = append(out, walletBalance{
				UserID:    row.UserID.String(),
				ChannelID: row.ChannelID.String(),
				Balance:   row.Balance,
			})
		}
		responses.WriteSuccess(w, out)
	}
}
