package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gloova-ai/gloova-backend/api/responses"
	"github.com/gloova-ai/gloova-backend/api/validators"
	"github.com/gloova-ai/gloova-backend/internal/ledger"
	"github.com/gloova-ai/gloova-backend/internal/marketing"
	"github.com/gloova-ai/gloova-backend/internal/profiles"
	"github.com/gloova-ai/gloova-backend/internal/settings"
	"github.com/gloova-ai/gloova-backend/pkg/enums"
	pkgerrors "github.com/gloova-ai/gloova-backend/pkg/errors"
	"github.com/gloova-ai/gloova-backend/pkg/logger"
)

type settingUpdateRequest struct {
	Key   string `json:"key" validate:"required,max=100"`
	Value string `json:"value" validate:"required"`
}

type grantCreditsRequest struct {
	CreditType string `json:"credit_type" validate:"required"`
	Amount     int    `json:"amount" validate:"required,gt=0"`
}

// AdminSendCampaign dispatches a marketing campaign to a segment.
func AdminSendCampaign(svc marketing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, err := profileIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body marketing.CampaignInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SendCampaign(r.Context(), adminID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminListUsers pages through registered profiles, newest first. The
// optional q parameter filters by email fragment.
func AdminListUsers(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "profiles unavailable in demo mode"))
			return
		}

		params := profiles.ListParams{
			Search: strings.TrimSpace(r.URL.Query().Get("q")),
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}
		if limitStr := strings.TrimSpace(r.URL.Query().Get("limit")); limitStr != "" {
			value, err := strconv.Atoi(limitStr)
			if err != nil || value <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer"))
				return
			}
			params.Limit = value
		}

		resp, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// AdminGrantCredits adds credits to one user's balance.
func AdminGrantCredits(profilesSvc profiles.Service, ledgerSvc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if profilesSvc == nil || ledgerSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "credit grants unavailable in demo mode"))
			return
		}

		profileID, err := uuid.Parse(chi.URLParam(r, "profileId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid profile id"))
			return
		}

		var body grantCreditsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		creditType := enums.CreditType(body.CreditType)
		if !creditType.IsValid() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown credit type"))
			return
		}

		profile, err := profilesSvc.GetByID(r.Context(), profileID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if profile == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found"))
			return
		}

		balance, err := ledgerSvc.Grant(r.Context(), profileID, creditType, body.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"profile_id":  profileID,
			"credit_type": creditType,
			"balance":     balance,
		})
	}
}

// AdminListSettings returns every runtime setting.
func AdminListSettings(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// AdminUpsertSetting writes a runtime setting and invalidates its cache.
func AdminUpsertSetting(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body settingUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		key := strings.TrimSpace(body.Key)
		if key == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "key is required"))
			return
		}

		if err := svc.Set(r.Context(), key, body.Value); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"key": key, "value": body.Value})
	}
}
