package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/storefront/internal/app"
	"github.com/hongminglow/storefront/internal/config"
	"github.com/hongminglow/storefront/internal/logging"
	"github.com/hongminglow/storefront/internal/metrics"
)

func main() {
	metricsAddr := flag.String("metrics-addr", "", "serve client metrics on this address, e.g. :9102")
	flag.Parse()

	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("start storefront: %v", err)
	}
	defer a.Close()

	if *metricsAddr != "" {
		srv := &http.Server{Addr: *metricsAddr, Handler: metrics.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorf("metrics server error: %v", err)
			}
		}()
		defer srv.Close()
	}

	newShell(a, os.Stdin, os.Stdout).run(ctx)
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found; relying on existing environment")
	}
}
