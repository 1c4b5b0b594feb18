package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/technosupport/live-urlgen/internal/api"
	"github.com/technosupport/live-urlgen/internal/authkey"
	"github.com/technosupport/live-urlgen/internal/config"
	"github.com/technosupport/live-urlgen/internal/events"
	"github.com/technosupport/live-urlgen/internal/metrics"
	"github.com/technosupport/live-urlgen/internal/middleware"
	"github.com/technosupport/live-urlgen/internal/ratelimit"
	"github.com/technosupport/live-urlgen/internal/tokens"
)

func main() {
	configFlag := flag.String("config", "", "Path to config file (default $URLGEN_CONFIG or config/default.yaml)")
	flag.Parse()

	// 1. Config
	cfgPath := config.ResolvePath(*configFlag)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	store := config.NewStore(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector()
	config.Watch(ctx, cfgPath, store, func(next *config.Config) {
		collector.RecordReload()
		if stale := config.RestartRequired(cfg, next); len(stale) > 0 {
			log.Printf("[config] changes to %v take effect after restart", stale)
		}
	})

	// 2. Components
	var publisher events.Publisher = events.Noop{}
	if cfg.Events.NatsURL != "" {
		pub, nc, err := events.Connect(cfg.Events.NatsURL, cfg.Events.Subject, cfg.Events.MaxRetries)
		if err != nil {
			log.Printf("Warning: %v. Generation events disabled.", err)
		} else {
			defer nc.Drain()
			publisher = pub
			log.Printf("Publishing generation events to %s", cfg.Events.Subject)
		}
	}

	replay := authkey.NewReplayGuard(cfg.Signing.ReplayCacheSize, cfg.Signing.TTL)
	urls := api.NewURLHandler(store, collector, publisher, replay)
	deps := api.RouterDeps{URLs: urls, TrustProxyHeaders: cfg.Server.TrustProxyHeaders}
	if cfg.Server.TrustProxyHeaders {
		log.Println("Trusting X-Forwarded-For / X-Real-IP for client addresses")
	}

	if cfg.RateLimit.Enabled && cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer rdb.Close()
		limiter := ratelimit.NewLimiter(rdb, cfg.RateLimit.Salt)
		deps.RateLimit = middleware.NewRateLimitMiddleware(limiter, cfg.RateLimit.PerIP, collector)
		log.Printf("Rate limiting POST routes at %d/%v per IP", cfg.RateLimit.PerIP.Rate, cfg.RateLimit.PerIP.Window)
	}

	if cfg.Auth.JWTSigningKey != "" {
		deps.Auth = middleware.NewJWTAuth(tokens.NewManager(cfg.Auth.JWTSigningKey))
		log.Println("Operator token required on POST routes")
	}

	// 3. Serve
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: api.NewRouter(deps),
	}

	go func() {
		log.Printf("urlgend listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
