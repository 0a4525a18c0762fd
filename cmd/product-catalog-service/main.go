// Package main boots the Product Catalog Service HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fairyhunter13/product-catalog-service/internal/bus"
	"github.com/fairyhunter13/product-catalog-service/internal/cache"
	"github.com/fairyhunter13/product-catalog-service/internal/catalog"
	"github.com/fairyhunter13/product-catalog-service/internal/config"
	"github.com/fairyhunter13/product-catalog-service/internal/event"
	httpapi "github.com/fairyhunter13/product-catalog-service/internal/http"
	"github.com/fairyhunter13/product-catalog-service/internal/obs"
	"github.com/fairyhunter13/product-catalog-service/internal/store"
)

// notificationQueue is the durable queue the inbound listener drains. The
// name is shared with the rest of the fabric.
const notificationQueue = "java_notifications"

func main() {
	obs.InitLogger()
	cfg, err := config.Load()
	if err != nil {
		obs.Logger.Error("config_error", "error", err)
		os.Exit(1)
	}
	obs.Logger.Info("service_starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := openStore(ctx, cfg)
	ca := openCache(ctx, cfg)
	pub := openBus(ctx, cfg)

	ctl := catalog.New(st, ca, pub, cfg.CacheTTL)
	app := httpapi.NewApp(cfg, ctl)
	handler := httpapi.NewRouter(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obs.Logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	obs.Logger.Info("shutdown_signal", "signal", s.String())

	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelSrv()
	if err := srv.Shutdown(ctxSrv); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
	}
	cancel()
	closeAll(st, ca, pub)
	obs.Logger.Info("service_stopped")
}

// openStore picks MySQL when DATABASE_URL is set and the in-process store
// otherwise.
func openStore(ctx context.Context, cfg config.Config) store.Store {
	if cfg.DatabaseURL == "" {
		obs.Logger.Warn("store_memory_fallback")
		return store.NewMemory()
	}
	st, err := store.OpenSQL(cfg.DatabaseURL)
	if err != nil {
		obs.Logger.Error("store_connect_error", "error", err)
		os.Exit(1)
	}
	if err := st.EnsureSchema(ctx); err != nil {
		obs.Logger.Error("store_schema_error", "error", err)
		os.Exit(1)
	}
	obs.Logger.Info("store_connected")
	return st
}

// openCache picks Redis when REDIS_URL is set and the in-process cache
// otherwise.
func openCache(ctx context.Context, cfg config.Config) cache.Cache {
	if cfg.RedisURL == "" {
		obs.Logger.Warn("cache_memory_fallback")
		return cache.NewMemory(cfg.CacheTTL)
	}
	ca, err := cache.OpenRedis(ctx, cfg.RedisURL)
	if err != nil {
		// A dead cache degrades reads, it does not block startup.
		obs.Logger.Error("cache_connect_error", "error", err)
		return cache.NewMemory(cfg.CacheTTL)
	}
	obs.Logger.Info("cache_connected")
	return ca
}

// openBus connects to RabbitMQ, declares the topology, and starts the
// inbound listener. Without RABBITMQ_URL events are dropped.
func openBus(ctx context.Context, cfg config.Config) bus.Publisher {
	url := cfg.BusURL()
	if url == "" {
		obs.Logger.Warn("bus_not_configured")
		return bus.Nop{}
	}
	rb, err := bus.Dial(url)
	if err != nil {
		obs.Logger.Error("bus_connect_error", "error", err)
		return bus.Nop{}
	}
	if err := rb.DeclareTopicExchange(event.Exchange); err != nil {
		obs.Logger.Error("bus_declare_error", "error", err)
		return bus.Nop{}
	}
	lst, err := bus.NewListener(rb, event.Exchange, notificationQueue, "#")
	if err != nil {
		obs.Logger.Error("listener_setup_error", "error", err)
	} else {
		go func() {
			if err := lst.Run(ctx); err != nil && ctx.Err() == nil {
				obs.Logger.Error("listener_stopped", "error", err)
			}
		}()
	}
	obs.Logger.Info("bus_connected")
	return rb
}

func closeAll(st store.Store, ca cache.Cache, pub bus.Publisher) {
	if c, ok := st.(*store.SQL); ok {
		_ = c.Close()
	}
	if c, ok := ca.(*cache.Redis); ok {
		_ = c.Close()
	}
	if c, ok := pub.(*bus.Rabbit); ok {
		_ = c.Close()
	}
}
