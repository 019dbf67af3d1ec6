package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/gloova-ai/gloova-backend/api/middleware"
	pkgerrors "github.com/gloova-ai/gloova-backend/pkg/errors"
)

// profileIDFromRequest reads the authenticated profile id seeded by the
// auth middleware.
func profileIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.ProfileIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing profile context")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid profile context")
	}
	return id, nil
}
