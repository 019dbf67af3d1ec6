package controllers

import (
	"net/http"

	"github.com/gloova-ai/gloova-backend/api/responses"
	"github.com/gloova-ai/gloova-backend/api/validators"
	"github.com/gloova-ai/gloova-backend/internal/checkout"
	"github.com/gloova-ai/gloova-backend/pkg/enums"
	"github.com/gloova-ai/gloova-backend/pkg/logger"
)

type checkoutCreateRequest struct {
	Item   checkout.Item `json:"item" validate:"required"`
	Method string        `json:"method" validate:"required,oneof=pix credit"`
}

type checkoutConfirmRequest struct {
	PaymentID string        `json:"payment_id" validate:"required"`
	Item      checkout.Item `json:"item" validate:"required"`
}

// CheckoutCreate opens a payment with the gateway for a catalog item.
func CheckoutCreate(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID, err := profileIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body checkoutCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), profileID, body.Item, enums.PaymentMethod(body.Method))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// CheckoutConfirm applies a paid order: grants credits or switches plans.
func CheckoutConfirm(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID, err := profileIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body checkoutConfirmRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Confirm(r.Context(), profileID, body.PaymentID, body.Item)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}
