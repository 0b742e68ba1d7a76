package main // Entry point package

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/fieldreg/member-registration/internal/config"
	"github.com/fieldreg/member-registration/internal/database"
	"github.com/fieldreg/member-registration/internal/handler"
	"github.com/fieldreg/member-registration/internal/middleware"
	"github.com/fieldreg/member-registration/internal/queue"
	"github.com/fieldreg/member-registration/internal/repository"
	"github.com/fieldreg/member-registration/internal/rollnumber"
	"github.com/fieldreg/member-registration/internal/router"
	queue_publisher "github.com/fieldreg/member-registration/internal/service"
	"github.com/fieldreg/member-registration/internal/session"
	"github.com/fieldreg/member-registration/internal/upload"
	"github.com/fieldreg/member-registration/internal/view"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	// Registration persistence: relational table or CSV ledger.  The
	// referral gate only exists on the relational backend, where the
	// referral_codes table lives.
	var store repository.RegistrationStore
	var referrals repository.ReferralStore
	switch cfg.StoreBackend {
	case config.StoreMySQL:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("database connect failed: %v", err)
		}
		store = repository.NewRegistrationRepo(db)
		referrals = repository.NewReferralRepo(db)
	case config.StoreCSV:
		store = repository.NewLedgerRepo(cfg.LedgerDir, cfg.AgentID)
	}

	// Session store: Redis in production, in-memory otherwise.  A Redis
	// client that cannot connect degrades to memory so the flow stays up.
	ttl := time.Duration(cfg.SessionTTLMin) * time.Minute
	var sessions session.Store = session.NewMemoryStore(ttl)
	rdb := config.NewRedisClient()
	if cfg.SessionBackend == config.SessionRedis {
		if rdb == nil {
			log.Printf("redis unavailable, falling back to in-memory sessions")
		} else {
			sessions = session.NewRedisStore(rdb, ttl)
		}
	}

	uploads, err := upload.NewManager(cfg.UploadDir)
	if err != nil {
		log.Fatalf("upload dir setup failed: %v", err)
	}

	h := handler.NewRegistrationHandler(cfg, store, referrals, sessions,
		rollnumber.New(cfg.AgentID, store), uploads)
	h.Publish = queue_publisher.PublishRegistrationSubmitted

	e := echo.New()
	renderer, err := view.New()
	if err != nil {
		log.Fatalf("template parse failed: %v", err)
	}
	e.Renderer = renderer
	e.Use(middleware.LoadSession(cfg.SessionSecret, sessions))

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	router.RegisterRoutes(e, h, limiter)

	// Background consumer mirroring submitted registrations into an
	// operator log.  Runs its own reconnect loop.
	go func() {
		if err := queue.StartRegistrationConsumer(); err != nil {
			log.Printf("registration consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s agent=%s store=%s)", addr, cfg.Env, cfg.AgentID, cfg.StoreBackend)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
