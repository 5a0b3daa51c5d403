package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mkurov/storefront/internal/checkout"
	"github.com/mkurov/storefront/internal/config"
	"github.com/mkurov/storefront/internal/database"
	"github.com/mkurov/storefront/internal/handler"
	"github.com/mkurov/storefront/internal/queue"
	"github.com/mkurov/storefront/internal/router"
	"github.com/mkurov/storefront/internal/seed"
	"github.com/mkurov/storefront/internal/store"
	"github.com/mkurov/storefront/internal/token"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	// Connect to the configured durable backend.  A nil handle makes
	// store.Open fall back to the in-memory adapter.
	var db *sql.DB
	var mdb *mongo.Database
	switch cfg.StoreBackend {
	case store.BackendMySQL:
		var err error
		db, err = database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Printf("mysql connect failed: %v", err)
		}
	case store.BackendMongo:
		var err error
		mdb, err = database.OpenMongo(cfg.MongoURI, cfg.MongoName)
		if err != nil {
			log.Printf("mongodb connect failed: %v", err)
		}
	}
	st := store.Open(cfg.StoreBackend, db, mdb)
	log.Printf("using %s storage backend", st.Name())

	if cfg.SeedCatalog {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := seed.Run(ctx, st); err != nil {
			log.Printf("seed failed: %v", err)
		}
		cancel()
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable: caching and rate limiting disabled, refresh tokens in-process")
	}

	tokens := token.NewStore(rdb)
	svc := checkout.NewService(st)

	go queue.StartOrderConsumer()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Deps{
		Cfg:     cfg,
		Store:   st,
		Redis:   rdb,
		Auth:    handler.NewAuthHandler(cfg, st, tokens),
		Catalog: handler.NewCatalogHandler(st),
		Cart:    handler.NewCartHandler(st),
		Orders:  handler.NewOrderHandler(st, svc, true),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
