package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"user-registry/internal/bootstrap"
	"user-registry/internal/config"
	apphttp "user-registry/internal/http"
	"user-registry/internal/password"
	"user-registry/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	logger, err := bootstrap.NewLogger(cfg.Log.Level)
	if err != nil {
		logrus.Fatalf("setup logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users, closeUsers, err := bootstrap.OpenUsers(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("open user store: %v", err)
	}
	defer closeUsers()

	hasher, err := password.NewHasher(password.Config{
		Cost:    cfg.Security.BcryptCost,
		Workers: cfg.Security.HashWorkers,
	})
	if err != nil {
		logger.Fatalf("setup password hasher: %v", err)
	}

	if cfg.Users.ListPasswords {
		logger.Warn("user listing includes password hashes; set USERS_USERS_LISTPASSWORDS=false to strip them")
	}
	userService := service.NewUserService(users, hasher, service.Options{
		ListPasswords: cfg.Users.ListPasswords,
		Logger:        logger,
	})

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(userService, logger)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}
