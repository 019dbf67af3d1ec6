package controllers

import (
	"net/http"

	"github.com/gloova-ai/gloova-backend/api/responses"
	"github.com/gloova-ai/gloova-backend/api/validators"
	"github.com/gloova-ai/gloova-backend/internal/scans"
	"github.com/gloova-ai/gloova-backend/pkg/logger"
)

type scanRequest struct {
	ImageBase64 string `json:"image_base64" validate:"required"`
}

// ScanProduct analyzes a product photo against the hair profile. Costs one
// scan credit; the verdict is not persisted.
func ScanProduct(svc scans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID, err := profileIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body scanRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		verdict, err := svc.Scan(r.Context(), profileID, body.ImageBase64)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, verdict)
	}
}
