package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gloova-ai/gloova-backend/api/routes"
	"github.com/gloova-ai/gloova-backend/internal/assistant"
	"github.com/gloova-ai/gloova-backend/internal/auth"
	"github.com/gloova-ai/gloova-backend/internal/chat"
	"github.com/gloova-ai/gloova-backend/internal/checkout"
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
	"github.com/gloova-ai/gloova-backend/pkg/db/models"
	"github.com/gloova-ai/gloova-backend/pkg/events"
	"github.com/gloova-ai/gloova-backend/pkg/logger"
	"github.com/gloova-ai/gloova-backend/pkg/metrics"
	"github.com/gloova-ai/gloova-backend/pkg/migrate"
	"github.com/gloova-ai/gloova-backend/pkg/pubsub"
	"github.com/gloova-ai/gloova-backend/pkg/redis"
)

const demoDSN = "file::memory:?cache=shared"

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, demoMode := bootstrapDatabase(cfg, logg)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if !demoMode {
		if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
			logg.Error(context.Background(), "failed to run dev migrations", err)
			os.Exit(1)
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Configured() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, sessions and feeds run in-process")
	}

	sessionManager, err := newSessionManager(redisClient, cfg)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	creditsBus := events.NewBus[events.CreditsChanged]()
	pointsBus := events.NewBus[events.PointsChanged]()
	tiersBus := events.NewBus[events.TierChanged]()

	registry := prometheus.NewRegistry()
	entMetrics := metrics.NewEntitlementMetrics(registry)

	gormDB := dbClient.DB()

	var settingsCache settings.Cache
	if redisClient != nil {
		settingsCache = redisClient
	}
	settingsSvc, err := settings.NewService(settings.NewRepository(gormDB), settingsCache, cfg.Gateway.URL, logg)
	if err != nil {
		fatal(logg, "create settings service", err)
	}

	assistantSvc, err := assistant.NewClient(cfg.Gateway, settingsSvc, logg)
	if err != nil {
		fatal(logg, "create assistant client", err)
	}

	ledgerSvc, err := ledger.NewService(ledger.NewRepository(gormDB), creditsBus, entMetrics)
	if err != nil {
		fatal(logg, "create ledger service", err)
	}

	rewardsSvc, err := rewards.NewService(rewards.NewRepository(gormDB), ledgerSvc, pointsBus, entMetrics)
	if err != nil {
		fatal(logg, "create rewards service", err)
	}

	plansSvc, err := plans.NewService(plans.NewRepository(gormDB), tiersBus, creditsBus)
	if err != nil {
		fatal(logg, "create plans service", err)
	}

	profilesSvc, err := profiles.NewService(profiles.NewRepository(gormDB))
	if err != nil {
		fatal(logg, "create profiles service", err)
	}

	diagnosisSvc, err := diagnosis.NewService(diagnosis.NewRepository(gormDB), ledgerSvc, rewardsSvc, plansSvc, profilesSvc, assistantSvc)
	if err != nil {
		fatal(logg, "create diagnosis service", err)
	}

	chatSvc, err := chat.NewService(chat.NewRepository(gormDB), ledgerSvc, rewardsSvc, profilesSvc, diagnosisSvc, assistantSvc)
	if err != nil {
		fatal(logg, "create chat service", err)
	}

	scansSvc, err := scans.NewService(ledgerSvc, rewardsSvc, profilesSvc, diagnosisSvc, assistantSvc)
	if err != nil {
		fatal(logg, "create scans service", err)
	}

	checkoutSvc, err := checkout.NewService(ledgerSvc, rewardsSvc, plansSvc, profilesSvc, assistantSvc, logg)
	if err != nil {
		fatal(logg, "create checkout service", err)
	}

	notificationsSvc, err := notifications.NewService(notifications.NewRepository(gormDB))
	if err != nil {
		fatal(logg, "create notifications service", err)
	}

	marketingSvc, err := marketing.NewService(assistantSvc, logg)
	if err != nil {
		fatal(logg, "create marketing service", err)
	}

	authSvc, err := auth.NewService(auth.ServiceParams{
		Profiles:       profilesSvc,
		Rewards:        rewardsSvc,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		AdminConfig:    cfg.Admin,
		DemoMode:       demoMode,
	})
	if err != nil {
		fatal(logg, "create auth service", err)
	}

	var feed profilesync.Feed
	if redisClient != nil {
		feed = profilesync.NewRedisFeed(redisClient, logg)
	} else {
		feed = profilesync.NewMemoryFeed()
	}
	syncer, err := profilesync.NewSynchronizer(profileRemote{profilesSvc}, profilesync.NewMemoryCache(), feed, logg)
	if err != nil {
		fatal(logg, "create profile synchronizer", err)
	}
	defer syncer.Close()
	attachEntitlementSync(syncer, creditsBus, pointsBus, tiersBus, logg)

	var bridge *pubsub.Bridge
	if cfg.PubSub.Configured() && cfg.GCP.ProjectID != "" {
		psClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			fatal(logg, "create pubsub client", err)
		}
		defer func() {
			if err := psClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()

		bridge, err = pubsub.NewBridge(pubsub.NewGCPPublisher(psClient.EntitlementPublisher()), logg)
		if err != nil {
			fatal(logg, "create event bridge", err)
		}
		bridge.Attach(creditsBus, pointsBus, tiersBus)
		defer bridge.Close()
	}

	var dbPinger db.Pinger = dbClient
	var redisPinger redis.Pinger
	if redisClient != nil {
		redisPinger = redisClient
	}

	router := routes.NewRouter(cfg, logg, dbPinger, redisPinger, sessionManager, registry, routes.Services{
		Auth:          authSvc,
		Profiles:      profilesSvc,
		Ledger:        ledgerSvc,
		Synchronizer:  syncer,
		Plans:         plansSvc,
		Rewards:       rewardsSvc,
		Diagnosis:     diagnosisSvc,
		Chat:          chatSvc,
		Scans:         scansSvc,
		Checkout:      checkoutSvc,
		Notifications: notificationsSvc,
		Marketing:     marketingSvc,
		Settings:      settingsSvc,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
		"demo": demoMode,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

// bootstrapDatabase connects to the configured postgres database, or falls
// back to a seeded in-memory sqlite store when no DSN is set, the probe
// fails, or the demo flag forces it.
func bootstrapDatabase(cfg *config.Config, logg *logger.Logger) (*db.Client, bool) {
	ctx := context.Background()

	if cfg.DB.Configured() && !cfg.FeatureFlags.ForceDemo {
		client, err := db.New(ctx, cfg.DB, cfg.FeatureFlags, logg)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			pingErr := client.Ping(pingCtx)
			if pingErr == nil {
				return client, false
			}
			logg.Warn(ctx, "database unreachable, entering demo mode: "+pingErr.Error())
			_ = client.Close()
		} else {
			logg.Warn(ctx, "database bootstrap failed, entering demo mode: "+err.Error())
		}
	}

	demoCfg := cfg.DB
	demoCfg.DSN = demoDSN
	demoFlags := cfg.FeatureFlags
	demoFlags.UseSQLite = true

	client, err := db.New(ctx, demoCfg, demoFlags, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap demo database", err)
		os.Exit(1)
	}

	if err := seedDemoStore(client); err != nil {
		logg.Error(ctx, "failed to seed demo database", err)
		os.Exit(1)
	}

	logg.Warn(ctx, "running in demo mode on an in-memory store")
	return client, true
}

// demoSchema is sqlite DDL for the in-memory demo store. The postgres
// schema lives in pkg/migrate/migrations; sqlite cannot evaluate the
// uuid defaults there, so ids are assigned by the application.
var demoSchema = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL DEFAULT '',
  name TEXT,
  whatsapp TEXT,
  role TEXT NOT NULL DEFAULT 'member',
  subscription_tier TEXT NOT NULL DEFAULT 'free',
  chat_credits INTEGER NOT NULL DEFAULT 0,
  diagnosis_credits INTEGER NOT NULL DEFAULT 0,
  scan_credits INTEGER NOT NULL DEFAULT 0,
  points INTEGER NOT NULL DEFAULT 0,
  badges TEXT,
  referral_code TEXT NOT NULL UNIQUE,
  referred_by TEXT,
  memory_key TEXT NOT NULL DEFAULT '',
  conversation_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
)`,
	`CREATE TABLE IF NOT EXISTS diagnoses (
  id TEXT PRIMARY KEY,
  profile_id TEXT NOT NULL,
  analysis_text TEXT NOT NULL,
  curvature TEXT NOT NULL,
  porosity TEXT NOT NULL,
  oiliness TEXT NOT NULL,
  frizz TEXT NOT NULL,
  damage_level TEXT NOT NULL,
  overall_health TEXT NOT NULL,
  protocol TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
)`,
	`CREATE TABLE IF NOT EXISTS chat_messages (
  id TEXT PRIMARY KEY,
  profile_id TEXT NOT NULL,
  sender TEXT NOT NULL,
  text TEXT NOT NULL,
  created_at DATETIME
)`,
	`CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  profile_id TEXT NOT NULL,
  type TEXT NOT NULL,
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  read_at DATETIME,
  created_at DATETIME
)`,
	`CREATE TABLE IF NOT EXISTS redemptions (
  id TEXT PRIMARY KEY,
  profile_id TEXT NOT NULL,
  reward_id TEXT NOT NULL,
  cost INTEGER NOT NULL,
  created_at DATETIME
)`,
	`CREATE TABLE IF NOT EXISTS referral_bonuses (
  id TEXT PRIMARY KEY,
  referred_profile_id TEXT NOT NULL UNIQUE,
  referrer_profile_id TEXT NOT NULL,
  points INTEGER NOT NULL,
  created_at DATETIME
)`,
	`CREATE TABLE IF NOT EXISTS settings (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at DATETIME
)`,
}

func seedDemoStore(client *db.Client) error {
	gormDB := client.DB()
	for _, ddl := range demoSchema {
		if err := gormDB.Exec(ddl).Error; err != nil {
			return err
		}
	}
	return gormDB.FirstOrCreate(profiles.DemoProfile(), "id = ?", profiles.DemoProfileID).Error
}

func newSessionManager(redisClient *redis.Client, cfg *config.Config) (*session.Manager, error) {
	if redisClient != nil {
		return session.NewManager(redisClient, cfg.JWT)
	}
	return session.NewMemoryManager(cfg.JWT)
}

// profileRemote adapts the profiles service to the synchronizer's remote
// store surface.
type profileRemote struct {
	svc profiles.Service
}

func (r profileRemote) GetProfile(ctx context.Context, profileID uuid.UUID) (*models.Profile, error) {
	return r.svc.GetByID(ctx, profileID)
}

// attachEntitlementSync re-pulls and broadcasts the profile snapshot after
// every entitlement mutation so watching sessions converge.
func attachEntitlementSync(
	syncer *profilesync.Synchronizer,
	credits *events.Bus[events.CreditsChanged],
	points *events.Bus[events.PointsChanged],
	tiers *events.Bus[events.TierChanged],
	logg *logger.Logger,
) {
	resync := func(profileID uuid.UUID) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		profile, err := syncer.Refresh(ctx, profileID)
		if err != nil {
			logg.Warn(logg.WithProfileID(ctx, profileID.String()), "profile resync failed: "+err.Error())
			return
		}
		if profile == nil {
			return
		}
		if err := syncer.Broadcast(ctx, profile); err != nil {
			logg.Warn(logg.WithProfileID(ctx, profileID.String()), "profile broadcast failed: "+err.Error())
		}
	}

	credits.Subscribe(func(e events.CreditsChanged) { resync(e.ProfileID) })
	points.Subscribe(func(e events.PointsChanged) { resync(e.ProfileID) })
	tiers.Subscribe(func(e events.TierChanged) { resync(e.ProfileID) })
}

func fatal(logg *logger.Logger, what string, err error) {
	logg.Error(context.Background(), "failed to "+what, err)
	os.Exit(1)
}
