package router

import (
	devsvc "estate-backend/internal/application/developer"
	healthsvc "estate-backend/internal/application/health"
	mktsvc "estate-backend/internal/application/marketplace"
	"estate-backend/internal/config"
	"estate-backend/internal/infrastructure/chain"
	"estate-backend/internal/infrastructure/database"
	"estate-backend/internal/infrastructure/storage"
	devhandler "estate-backend/internal/interfaces/handlers/developer"
	healthhandler "estate-backend/internal/interfaces/handlers/health"
	mkthandler "estate-backend/internal/interfaces/handlers/marketplace"
	sessionhandler "estate-backend/internal/interfaces/handlers/session"
	"estate-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateApp wires config, clients, middleware and routes. The DB and Redis
// client are returned so the caller can verify them at startup; either is nil
// when its URL is not configured.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		rdb = redis.NewClient(opt)
	} else {
		log.Warn().Msg("REDIS_URL not set: sessions and health counters are disabled")
	}

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler(rdb),
		EnableTrustedProxyCheck: true,
	})

	sessionCfg := middleware.SessionConfig{
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.IsProduction(),
	}
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix:  cfg.FrontendURLEndsWith,
		DevPassword:    cfg.DevPassword,
		AllowLocalhost: !cfg.IsProduction(),
	}))
	app.Use(middleware.Session(rdb))
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	indexer := chain.NewHTTPClient(cfg.IndexerURL, cfg.IndexerRPS)
	var presigner mktsvc.Presigner
	storageClient := &storage.HTTPPresigner{
		BaseURL:   cfg.StorageURL,
		SecretKey: cfg.StorageSecretKey,
		Bucket:    cfg.StorageBucket,
		ExpiresIn: cfg.PresignExpiresIn,
	}
	if cfg.StorageURL != "" {
		presigner = storageClient
	}

	deps := healthsvc.Dependencies{}
	if db != nil {
		deps.DB = &gormDBPinger{db: db}
	}
	if cfg.IndexerURL != "" {
		deps.Indexer = indexer
	}
	if cfg.StorageURL != "" {
		deps.Storage = storageClient
	}
	hh := &healthhandler.Handlers{Rdb: rdb, Deps: deps, HealthAdminKey: cfg.HealthAdminKey}
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	sh := &sessionhandler.Handlers{Rdb: rdb, Config: sessionCfg}
	sg := app.Group("/api/v1/session")
	sg.Post("/connect", sh.Connect)
	sg.Get("/me", sh.Me)
	sg.Delete("/disconnect", sh.Disconnect)

	ms := &mktsvc.Service{Chain: indexer, Presigner: presigner, Concurrency: cfg.FetchConcurrency}
	mh := &mkthandler.Handlers{Service: ms}
	mg := app.Group("/api/v1/marketplace")
	mg.Get("/listings", mh.GetListings)
	mg.Get("/listings/:listing_id", mh.GetListing)

	ds := &devsvc.Service{DB: db, Marketplace: ms}
	if cfg.StorageURL != "" {
		ds.Uploader = storageClient
	}
	dh := &devhandler.Handlers{Service: ds}
	dg := app.Group("/api/v1/developer", middleware.RequireAccount())
	dg.Get("/properties", dh.GetProperties)
	dg.Post("/properties", dh.CreateProperty)
	dg.Post("/uploads", dh.SignUpload)

	return app, db, rdb, nil
}
