package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gloova-ai/gloova-backend/api/responses"
	"github.com/gloova-ai/gloova-backend/api/validators"
	"github.com/gloova-ai/gloova-backend/internal/chat"
	pkgerrors "github.com/gloova-ai/gloova-backend/pkg/errors"
	"github.com/gloova-ai/gloova-backend/pkg/logger"
)

type chatSendRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}

// ChatSend forwards a message to the assistant and charges token credits.
func ChatSend(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID, err := profileIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body chatSendRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Send(r.Context(), profileID, body.Message)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ChatHistory returns the recent conversation in chronological order.
func ChatHistory(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID, err := profileIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit := 0
		if limitStr := strings.TrimSpace(r.URL.Query().Get("limit")); limitStr != "" {
			value, err := strconv.Atoi(limitStr)
			if err != nil || value <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer"))
				return
			}
			limit = value
		}

		history, err := svc.History(r.Context(), profileID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}
