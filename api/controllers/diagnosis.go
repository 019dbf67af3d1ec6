package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gloova-ai/gloova-backend/api/responses"
	"github.com/gloova-ai/gloova-backend/api/validators"
	"github.com/gloova-ai/gloova-backend/internal/assistant"
	"github.com/gloova-ai/gloova-backend/internal/diagnosis"
	pkgerrors "github.com/gloova-ai/gloova-backend/pkg/errors"
	"github.com/gloova-ai/gloova-backend/pkg/logger"
)

type diagnosisSubmitRequest struct {
	ImageBase64      string              `json:"image_base64" validate:"required"`
	AdditionalImages map[string]string   `json:"additional_images,omitempty"`
	Quiz             *assistant.QuizData `json:"quiz,omitempty"`
}

// DiagnosisSubmit runs a full hair diagnosis. Costs one diagnosis credit.
func DiagnosisSubmit(svc diagnosis.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID, err := profileIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body diagnosisSubmitRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Submit(r.Context(), profileID, diagnosis.SubmitInput{
			ImageBase64:      body.ImageBase64,
			AdditionalImages: body.AdditionalImages,
			Quiz:             body.Quiz,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// DiagnosisLatest returns the most recent diagnosis.
func DiagnosisLatest(svc diagnosis.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID, err := profileIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		latest, err := svc.Latest(r.Context(), profileID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if latest == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no diagnosis yet"))
			return
		}
		responses.WriteSuccess(w, latest)
	}
}

// DiagnosisHistory lists past diagnoses, newest first.
func DiagnosisHistory(svc diagnosis.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID, err := profileIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		history, err := svc.History(r.Context(), profileID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}

// DiagnosisProtocol serves the access-gated 30-day protocol.
func DiagnosisProtocol(svc diagnosis.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID, err := profileIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Protocol(r.Context(), profileID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// DiagnosisCompleteDay marks a protocol day as done.
func DiagnosisCompleteDay(svc diagnosis.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID, err := profileIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		day, err := strconv.Atoi(chi.URLParam(r, "day"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid day"))
			return
		}

		updated, err := svc.CompleteDay(r.Context(), profileID, day)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// DiagnosisCalendar exports the protocol as an iCalendar file.
func DiagnosisCalendar(svc diagnosis.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID, err := profileIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ics, err := svc.CalendarICS(r.Context(), profileID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="gloova-protocolo.ics"`)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(ics); err != nil && logg != nil {
			logg.Error(r.Context(), "write calendar response", err)
		}
	}
}
