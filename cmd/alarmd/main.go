package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v2"

	"alarmd/config"
	"alarmd/gpio"
	adminhttp "alarmd/internal/http/chi"
	"alarmd/monitor"
	"alarmd/webhook"
	"alarmd/zones"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Println(err)
		return
	}
	logger := httplog.NewLogger("alarmd", httplog.Options{
		JSON: cfg.LogJSON,
	})

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	zs, err := zones.Load(cfg.ZonesFile, cfg.SecurityID)
	if err != nil {
		logger.Error("loading zones", "error", err)
		return
	}
	pinNumbers := make([]int, 0, len(zs))
	for i := range zs {
		pinNumbers = append(pinNumbers, zs[i].Pin)
	}
	lines, err := gpio.Open(pinNumbers)
	if err != nil {
		logger.Error("opening GPIO lines", "error", err)
		return
	}
	defer lines.Close()

	client := webhook.NewClient(cfg.Host, cfg.Port, cfg.SendDelay, cfg.URLTimeout, logger.Logger)
	mon := monitor.New(zs, client, lines, monitor.Config{
		Heartbeat: cfg.Update,
		Spacing:   cfg.ZoneSpacing,
	}, logger.Logger)

	for i := range zs {
		if err := lines.Watch(ctx, zs[i].Pin, mon.NotifyEdge); err != nil {
			logger.Error("watching GPIO line", "pin", zs[i].Pin, "error", err)
			return
		}
	}

	srv := &http.Server{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		Addr:         cfg.AdminAddr,
		Handler:      adminhttp.Handlers(logger, zs, lines),
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("admin server", "error", err)
		}
	}()

	logger.Info("alarmd started",
		"bridge", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		"zones", len(zs),
		"admin", cfg.AdminAddr,
	)

	err = mon.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("monitor stopped", "error", err)
	}

	ctxTimeout, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctxTimeout); err != nil {
		logger.Error("shutting down admin server", "error", err)
	}
	logger.Info("alarmd stopped")
}
