package controllers

import (
	"net/http"

	"github.com/gloova-ai/gloova-backend/api/responses"
	"github.com/gloova-ai/gloova-backend/internal/plans"
	"github.com/gloova-ai/gloova-backend/internal/settings"
	"github.com/gloova-ai/gloova-backend/pkg/enums"
	"github.com/gloova-ai/gloova-backend/pkg/logger"
)

type planView struct {
	plans.Plan
	PaymentLink string `json:"payment_link,omitempty"`
}

// PlansCatalog lists every subscription tier with its limits and, when
// configured, the external payment link.
func PlansCatalog(settingsSvc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		catalog := plans.All()
		views := make([]planView, 0, len(catalog))
		for _, plan := range catalog {
			view := planView{Plan: plan}
			if settingsSvc != nil && plan.ID != enums.TierFree {
				view.PaymentLink = settingsSvc.PaymentLink(r.Context(), plan.ID)
			}
			views = append(views, view)
		}
		responses.WriteSuccess(w, views)
	}
}

// PlansPackages lists the one-off credit packages.
func PlansPackages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, plans.Packages())
	}
}
