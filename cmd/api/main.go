package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chainmeet/backend/internal/chain"
	"chainmeet/backend/internal/config"
	"chainmeet/backend/internal/geocode"
	"chainmeet/backend/internal/http/handlers"
	"chainmeet/backend/internal/http/middleware"
	"chainmeet/backend/internal/logging"
	"chainmeet/backend/internal/preview"
	"chainmeet/backend/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("log error: %v", err)
	}
	defer func() {
		_ = cleanup()
	}()
	slog.SetDefault(logger)

	var profiles *config.ProfileLoader
	endpoint := func() chain.Endpoint {
		return chain.Endpoint{RPCURL: cfg.ChainRPCURL, Contract: cfg.Contract}
	}
	if cfg.ProfileFile != "" {
		profiles, err = config.NewProfileLoader(cfg.ProfileFile)
		if err != nil {
			logger.Error("profile error", "error", err)
			os.Exit(1)
		}
		profiles.OnChange(func(p *config.ChainProfile) {
			logger.Info("chain_profile_reloaded", "network", p.Network, "contract", p.Contract)
		})
		stopWatch, err := profiles.Watch()
		if err != nil {
			logger.Error("profile watch error", "error", err)
			os.Exit(1)
		}
		defer stopWatch()
		endpoint = func() chain.Endpoint {
			p := profiles.Profile()
			return chain.Endpoint{RPCURL: p.RPCURL, Contract: p.Contract}
		}
	}

	chainClient := chain.NewHTTPClient(endpoint, nil, logger)
	svc := service.New(chainClient, service.Config{SettleDelay: cfg.SettleDelay}, logger)

	ctx := context.Background()
	if err := svc.Refresh(ctx, "startup"); err != nil {
		// The gateway starts with an empty snapshot and retries on the
		// refresh schedule.
		logger.Warn("initial_refresh_failed", "error", err)
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.RefreshSpec, func() {
		refreshCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := svc.Refresh(refreshCtx, "schedule"); err != nil {
			logger.Warn("scheduled_refresh_failed", "error", err)
		}
	}); err != nil {
		logger.Error("refresh schedule error", "spec", cfg.RefreshSpec, "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	geocoder := geocode.NewLookup(geocode.NewClient(geocode.Config{
		Endpoint: cfg.Geocode.Endpoint,
		Language: cfg.Geocode.Language,
	}))
	previews := preview.New(cfg.Preview.Timeout, logger)

	h := handlers.New(svc, geocoder, previews, profiles, cfg, logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/auth/session", h.AuthSession)
	r.Post("/auth/admin", h.AuthAdmin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		r.Get("/meetups", h.ListMeetups)
		r.Get("/meetups/active", h.ActiveMeetups)
		r.Get("/meetups/mine", h.MyMeetups)
		r.Get("/meetups/attending", h.AttendingMeetups)
		r.Get("/meetups/nearby", h.NearbyMeetups)
		r.Get("/meetups/calendar", h.CalendarMonth)
		r.Get("/meetups/{id}", h.GetMeetup)
		r.Get("/meetups/{id}/preview", h.MeetupPreview)
		r.Post("/meetups", h.CreateMeetup)
		r.Post("/meetups/{id}/register", h.RegisterMeetup)
		r.Post("/meetups/{id}/unregister", h.UnregisterMeetup)
		r.Post("/meetups/{id}/cancel", h.CancelMeetup)
		r.Get("/geocode", h.Geocode)
		r.Get("/calendar.ics", h.CalendarICS)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/admin/status", h.AdminStatus)
			r.Post("/admin/refresh", h.AdminRefresh)
		})
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		logger.Info("api_listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutdown", "service", "api")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type,X-Viewer-Zone")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
