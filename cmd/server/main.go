package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Engarr/Windmill-backend/internal/config"
	"github.com/Engarr/Windmill-backend/internal/db"
	"github.com/Engarr/Windmill-backend/internal/httpserver"
	"github.com/Engarr/Windmill-backend/internal/logging"
	"github.com/Engarr/Windmill-backend/internal/mail"
	"github.com/Engarr/Windmill-backend/internal/mykafka"
	"github.com/Engarr/Windmill-backend/internal/repo"
	"github.com/Engarr/Windmill-backend/internal/search"
	"github.com/Engarr/Windmill-backend/internal/service"
	"github.com/Engarr/Windmill-backend/internal/storage"
	"github.com/Engarr/Windmill-backend/internal/tokens"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")
	config.MustNonEmpty(cfg.SenderEmail, "SENDER_EMAIL")

	logger := logging.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	producer := mykafka.NewProducer(cfg.KafkaBrokers)

	esClient, err := search.NewClient(search.ClientConfig{
		URL:      cfg.ESURL,
		User:     cfg.ESUser,
		Password: cfg.ESPassword,
	})
	if err != nil {
		log.Fatalf("elasticsearch init failed: %v", err)
	}
	productIndex := search.NewIndex(esClient, "products")

	objectStorage, err := storage.NewS3Storage(ctx, storage.S3Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Endpoint:  cfg.S3Endpoint,
		BaseURL:   cfg.S3BaseURL,
	})
	if err != nil {
		log.Fatalf("object storage init failed: %v", err)
	}

	mailer, err := mail.NewPostmarkSender(cfg.PostmarkServerToken, cfg.PostmarkAccountToken, cfg.SenderEmail)
	if err != nil {
		log.Fatalf("mailer init failed: %v", err)
	}

	sessions := tokens.NewSessionService(cfg.JWTSecret, cfg.SessionTTL)

	users := &repo.UserRepo{DB: gdb}
	resets := &repo.ResetRepo{DB: gdb}
	products := &repo.ProductRepo{DB: gdb}
	cartRepo := &repo.CartRepo{DB: gdb}
	wishlist := &repo.WishlistRepo{DB: gdb}
	orders := &repo.OrderRepo{DB: gdb}

	authSvc := &service.AuthService{Users: users, Resets: resets, Sessions: sessions, Mailer: mailer}
	contactSvc := &service.ContactService{Mailer: mailer, Inbox: cfg.ContactInbox}
	catalogSvc := &service.CatalogService{Products: products, Storage: objectStorage, Index: productIndex}
	cartSvc := &service.CartService{Cart: cartRepo, Wishlist: wishlist, Products: products}
	orderSvc := &service.OrderService{DB: gdb, Orders: orders}

	go authSvc.SweepResetTokens(logging.IntoContext(ctx, logger), 15*time.Minute)

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), middleware.CORS())
	e.Use(logging.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		Sessions: sessions,
		AuthHandler: &httpserver.AuthHandler{
			Svc:      authSvc,
			Contact:  contactSvc,
			Orders:   orderSvc,
			Producer: producer,
		},
		FeedHandler: &httpserver.FeedHandler{
			Catalog:  catalogSvc,
			Products: products,
			Search:   productIndex,
			Producer: producer,
		},
		CartHandler: &httpserver.CartHandler{
			Cart:     cartSvc,
			Orders:   orderSvc,
			Producer: producer,
		},
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := gdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
