package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/storefront/internal/config"
	"github.com/hongminglow/storefront/internal/fakeapi"
	"github.com/hongminglow/storefront/internal/logging"
	"github.com/hongminglow/storefront/internal/server"
)

func main() {
	loadLocalEnv()

	cfg, err := config.LoadFakeAPI()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	menu, err := fakeapi.LoadMenu(cfg.MenuSeedPath)
	if err != nil {
		logger.Fatalf("load menu: %v", err)
	}

	srv := server.New(cfg, fakeapi.New(menu), logger)

	go func() {
		logger.Infof("storefront test backend listening on %s", cfg.HTTPAddress())
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("graceful shutdown error: %v", err)
	}
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found; relying on existing environment")
	}
}
