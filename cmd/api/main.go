package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/warblerhq/warbler-api/internal/auth"
	"github.com/warblerhq/warbler-api/internal/config"
	"github.com/warblerhq/warbler-api/internal/notification"
	"github.com/warblerhq/warbler-api/internal/router"
	"github.com/warblerhq/warbler-api/internal/user"
	userrepo "github.com/warblerhq/warbler-api/internal/user/repo"
	"github.com/warblerhq/warbler-api/pkg/database"
	"github.com/warblerhq/warbler-api/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	_ = godotenv.Load()
	cfg := config.Load()

	lg, err := utilities.InitLogger(utilities.LogConfig{Level: cfg.LogLevel, Dev: cfg.LogDev, File: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting warbler-api")

	if cfg.TokenSecret == "" {
		sugar.Fatal("TOKEN_SECRET must be set")
	}

	sqlDB, err := database.Connect(database.Config{DSN: cfg.DatabaseURL, MaxConns: 5, Timeout: 5 * time.Second})
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer sqlDB.Close()
	db := sqlx.NewDb(sqlDB, "postgres")

	users := userrepo.NewPostgresRepository(db)
	notifications := notification.NewPostgresRepository(db)
	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 10*time.Second)
	if err := users.EnsureSchema(bootCtx); err != nil {
		sugar.Fatalf("ensure user schema: %v", err)
	}
	if err := notifications.EnsureSchema(bootCtx); err != nil {
		sugar.Fatalf("ensure notification schema: %v", err)
	}
	cancelBoot()

	codec := auth.NewTokenCodec(cfg.TokenSecret, cfg.TokenTTL)
	authSvc := auth.NewService(users, nil, codec, sugar)
	userSvc := user.NewService(users, notifications, nil, sugar)

	handler := router.New(sugar,
		authSvc,
		auth.NewHandler(authSvc, sugar),
		user.NewHandler(userSvc, sugar),
		notification.NewHandler(notifications, sugar),
	)
	srv := &http.Server{Addr: cfg.Addr, Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		sugar.Infow("http server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
