package controllers

import (
	"net/http"

	"github.com/gloova-ai/gloova-backend/api/responses"
	"github.com/gloova-ai/gloova-backend/api/validators"
	"github.com/gloova-ai/gloova-backend/internal/plans"
	"github.com/gloova-ai/gloova-backend/internal/profiles"
	"github.com/gloova-ai/gloova-backend/internal/rewards"
	"github.com/gloova-ai/gloova-backend/internal/sync"
	pkgerrors "github.com/gloova-ai/gloova-backend/pkg/errors"
	"github.com/gloova-ai/gloova-backend/pkg/logger"
)

type contactUpdateRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	WhatsApp *string `json:"whatsapp,omitempty" validate:"omitempty,min=8,max=20"`
}

// ProfileMe serves the local profile snapshot, pulling from the remote
// store on a cache miss.
func ProfileMe(syncer *sync.Synchronizer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID, err := profileIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if profile, ok := syncer.Cached(r.Context(), profileID); ok {
			responses.WriteSuccess(w, profile)
			return
		}

		profile, err := syncer.Refresh(r.Context(), profileID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile"))
			return
		}
		if profile == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found"))
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// ProfileSync forces a refresh from the remote store, last fetch wins.
func ProfileSync(syncer *sync.Synchronizer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID, err := profileIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := syncer.Refresh(r.Context(), profileID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sync profile"))
			return
		}
		if profile == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found"))
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// ProfileUpdateContact patches the mutable contact fields.
func ProfileUpdateContact(svc profiles.Service, syncer *sync.Synchronizer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "profile updates unavailable in demo mode"))
			return
		}

		profileID, err := profileIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body contactUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.Name == nil && body.WhatsApp == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update"))
			return
		}

		if err := svc.UpdateContact(r.Context(), profileID, body.Name, body.WhatsApp); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := syncer.Refresh(r.Context(), profileID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload profile"))
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

type entitlementsResponse struct {
	Tier             string        `json:"tier"`
	Plan             plans.Plan    `json:"plan"`
	ChatCredits      int           `json:"chat_credits"`
	DiagnosisCredits int           `json:"diagnosis_credits"`
	ScanCredits      int           `json:"scan_credits"`
	Points           int           `json:"points"`
	Level            rewards.Level `json:"level"`
}

// ProfileEntitlements summarizes the credit balances, plan and rank.
func ProfileEntitlements(syncer *sync.Synchronizer, plansSvc plans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID, err := profileIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, ok := syncer.Cached(r.Context(), profileID)
		if !ok {
			profile, err = syncer.Refresh(r.Context(), profileID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile"))
				return
			}
		}
		if profile == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found"))
			return
		}

		responses.WriteSuccess(w, entitlementsResponse{
			Tier:             string(profile.SubscriptionTier),
			Plan:             plansSvc.Resolve(profile.SubscriptionTier),
			ChatCredits:      profile.ChatCredits,
			DiagnosisCredits: profile.DiagnosisCredits,
			ScanCredits:      profile.ScanCredits,
			Points:           profile.Points,
			Level:            rewards.LevelFor(profile.Points),
		})
	}
}
