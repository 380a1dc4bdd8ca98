package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/questlog/tablehall/internal/config"
	"github.com/questlog/tablehall/internal/events"
	"github.com/questlog/tablehall/internal/hash"
	"github.com/questlog/tablehall/internal/httpserver"
	"github.com/questlog/tablehall/internal/logging"
	"github.com/questlog/tablehall/internal/middleware"
	"github.com/questlog/tablehall/internal/repo"
	"github.com/questlog/tablehall/internal/search"
	"github.com/questlog/tablehall/internal/service"
	"github.com/questlog/tablehall/internal/tokens"
	"github.com/questlog/tablehall/pkg/db"
)

func main() {
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	logger := logging.New(cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := repo.Migrate(gdb); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	repository := repo.New(gdb)
	hasher := hash.New(nil)
	tokenSvc := tokens.NewService(cfg.JWTSecret, cfg.AccessTTL)
	producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)

	var searchSvc *search.Service
	if cfg.ESURL != "" {
		esClient, err := search.NewClient(cfg)
		if err != nil {
			logger.Warn("elasticsearch unavailable, table search disabled", "error", err)
		} else {
			searchSvc = search.New(esClient, cfg.ESIndex)
		}
	}

	authSvc := &service.Auth{
		Repo:       repository,
		Hasher:     hasher,
		Tokens:     tokenSvc,
		Events:     producer,
		RefreshTTL: cfg.RefreshTTL,
	}
	tablesSvc := &service.Tables{
		Repo:   repository,
		Events: producer,
		Search: searchSvc,
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(middleware.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:   &httpserver.AuthHTTP{Svc: authSvc},
		TablesHandler: &httpserver.TablesHTTP{Svc: tablesSvc},
		AuthMW:        middleware.NewAuth(tokenSvc),
	})

	go func() {
		if err := e.Start(cfg.ServerAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
	if err := producer.Close(); err != nil {
		log.Printf("kafka close: %v", err)
	}
}
