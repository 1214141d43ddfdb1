package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/memalerts/rewards-backend/api/responses"
	"github.com/memalerts/rewards-backend/api/validators"
	"github.com/memalerts/rewards-backend/internal/identities"
	"github.com/memalerts/rewards-backend/pkg/enums"
	pkgerrors "github.com/memalerts/rewards-backend/pkg/errors"
	"github.com/memalerts/rewards-backend/pkg/logger"
)

type linkIdentityRequest struct {
	UserID            string `json:"userId" validate:"required,uuid"`
	Provider          string `json:"provider" validate:"required"`
	ProviderAccountID string `json:"providerAccountId" validate:"required"`
}

type linkIdentityResponse struct {
	Created       bool             `json:"created"`
	ClaimedGrants int              `json:"claimedGrants"`
	Balances      map[string]int64 `json:"balances,omitempty"`
}

// LinkIdentity attaches a platform account to a user and sweeps any coins
// that were parked for it.
func LinkIdentity(svc identities.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req linkIdentityRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		provider := enums.Provider(req.Provider)
		if !provider.IsValid() {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown provider"))
			return
		}
		userID, err := uuid.Parse(req.UserID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "userId must be a uuid"))
			return
		}

		res, err := svc.Link(ctx, identities.LinkInput{
			UserID:            userID,
			Provider:          provider,
			ProviderAccountID: req.ProviderAccountID,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, linkIdentityResponse{
			Created:       res.Created,
			ClaimedGrants: res.ClaimedGrants,
			Balances:      res.ClaimedBalance,
		})
	}
}
