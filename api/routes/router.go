package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gloova-ai/gloova-backend/api/controllers"
	"github.com/gloova-ai/gloova-backend/api/middleware"
	"github.com/gloova-ai/gloova-backend/internal/auth"
	"github.com/gloova-ai/gloova-backend/internal/chat"
	checkoutsvc "github.com/gloova-ai/gloova-backend/internal/checkout"
	"github.com/gloova-ai/gloova-backend/internal/diagnosis"
	"github.com/gloova-ai/gloova-backend/internal/ledger"
	"github.com/gloova-ai/gloova-backend/internal/marketing"
	"github.com/gloova-ai/gloova-backend/internal/notifications"
	"github.com/gloova-ai/gloova-backend/internal/plans"
	"github.com/gloova-ai/gloova-backend/internal/profiles"
	"github.com/gloova-ai/gloova-backend/internal/rewards"
	"github.com/gloova-ai/gloova-backend/internal/scans"
	"github.com/gloova-ai/gloova-backend/internal/settings"
	profilesync "github.com/gloova-ai/gloova-backend/internal/sync"
	"github.com/gloova-ai/gloova-backend/pkg/auth/session"
	"github.com/gloova-ai/gloova-backend/pkg/config"
	"github.com/gloova-ai/gloova-backend/pkg/db"
	"github.com/gloova-ai/gloova-backend/pkg/enums"
	"github.com/gloova-ai/gloova-backend/pkg/logger"
	"github.com/gloova-ai/gloova-backend/pkg/redis"
)

// Services bundles everything the router mounts. Nil entries are allowed
// for surfaces that degrade in demo mode; their controllers answer with a
// dependency error instead.
type Services struct {
	Auth          auth.Service
	Profiles      profiles.Service
	Ledger        ledger.Service
	Synchronizer  *profilesync.Synchronizer
	Plans         plans.Service
	Rewards       rewards.Service
	Diagnosis     diagnosis.Service
	Chat          chat.Service
	Scans         scans.Service
	Checkout      checkoutsvc.Service
	Notifications notifications.Service
	Marketing     marketing.Service
	Settings      settings.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	sessionChecker session.AccessSessionChecker,
	metricsRegistry *prometheus.Registry,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.CORS(),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if metricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(svcs.Auth, logg))
		r.Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.Post("/demo", controllers.AuthDemo(svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(svcs.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))

		r.Route("/profile", func(r chi.Router) {
			r.Get("/me", controllers.ProfileMe(svcs.Synchronizer, logg))
			r.Patch("/me", controllers.ProfileUpdateContact(svcs.Profiles, svcs.Synchronizer, logg))
			r.Post("/sync", controllers.ProfileSync(svcs.Synchronizer, logg))
			r.Get("/entitlements", controllers.ProfileEntitlements(svcs.Synchronizer, svcs.Plans, logg))
		})

		r.Route("/diagnosis", func(r chi.Router) {
			r.Post("/", controllers.DiagnosisSubmit(svcs.Diagnosis, logg))
			r.Get("/latest", controllers.DiagnosisLatest(svcs.Diagnosis, logg))
			r.Get("/history", controllers.DiagnosisHistory(svcs.Diagnosis, logg))
			r.Route("/protocol", func(r chi.Router) {
				r.Get("/", controllers.DiagnosisProtocol(svcs.Diagnosis, logg))
				r.Post("/days/{day}/complete", controllers.DiagnosisCompleteDay(svcs.Diagnosis, logg))
				r.Get("/calendar.ics", controllers.DiagnosisCalendar(svcs.Diagnosis, logg))
			})
		})

		r.Route("/chat", func(r chi.Router) {
			r.Post("/", controllers.ChatSend(svcs.Chat, logg))
			r.Get("/history", controllers.ChatHistory(svcs.Chat, logg))
		})

		r.Post("/scans", controllers.ScanProduct(svcs.Scans, logg))

		r.Route("/rewards", func(r chi.Router) {
			r.Get("/points", controllers.RewardsPoints(svcs.Rewards, logg))
			r.Get("/catalog", controllers.RewardsCatalog())
			r.Post("/redeem", controllers.RewardsRedeem(svcs.Rewards, logg))
		})

		r.Route("/plans", func(r chi.Router) {
			r.Get("/", controllers.PlansCatalog(svcs.Settings, logg))
			r.Get("/packages", controllers.PlansPackages())
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", controllers.CheckoutCreate(svcs.Checkout, logg))
			r.Post("/confirm", controllers.CheckoutConfirm(svcs.Checkout, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svcs.Notifications, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
		r.Use(middleware.RequireRole(string(enums.RoleAdmin), logg))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminListUsers(svcs.Profiles, logg))
			r.Post("/{profileId}/credits", controllers.AdminGrantCredits(svcs.Profiles, svcs.Ledger, logg))
		})
		r.Post("/marketing/campaigns", controllers.AdminSendCampaign(svcs.Marketing, logg))
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", controllers.AdminListSettings(svcs.Settings, logg))
			r.Put("/", controllers.AdminUpsertSetting(svcs.Settings, logg))
		})
	})

	return r
}
