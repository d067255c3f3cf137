package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"der-reliability/internal/api"
	"der-reliability/internal/data"
	"der-reliability/internal/engine"
	"der-reliability/internal/logger"
	"der-reliability/internal/metrics"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	port := getenv("API_PORT", "8080")
	env := getenv("API_ENV", "development")

	format := "console"
	if env == "production" {
		format = "json"
		gin.SetMode(gin.ReleaseMode)
	}
	log, err := logger.New(logger.Config{
		Level:  getenv("LOG_LEVEL", "info"),
		Format: format,
		Output: "stderr",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ttl, err := time.ParseDuration(getenv("RESULT_TTL", "1h"))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid RESULT_TTL")
	}
	seed, err := strconv.ParseInt(getenv("SIMULATION_SEED", "0"), 10, 64)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid SIMULATION_SEED")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := data.NewResultStore(ttl)
	go store.Run(ctx, 5*time.Minute)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var origins []string
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins = strings.Split(v, ",")
	}

	router := api.NewRouter(api.Deps{
		Options: engine.Options{
			Seed:     seed,
			Logger:   &log,
			Recorder: metrics.New(reg),
		},
		Store:      store,
		BatteryDir: os.Getenv("BATTERY_DIR"),
		Gatherer:   reg,
		Origins:    origins,
		Log:        log,
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("addr", srv.Addr).Str("env", env).Dur("result_ttl", ttl).Msg("starting API server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
