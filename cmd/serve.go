package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/egor/vicai/config"
	"github.com/egor/vicai/database"
	"github.com/egor/vicai/handlers"
	"github.com/egor/vicai/llm"
	"github.com/egor/vicai/logging"
	"github.com/egor/vicai/memory"
	"github.com/egor/vicai/metrics"
	"github.com/egor/vicai/middleware"
	"github.com/egor/vicai/models"
	"github.com/egor/vicai/ratelimit"
	"github.com/egor/vicai/service"
	"github.com/egor/vicai/websocket"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and WebSocket gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(config.Load())
	},
}

func serve(cfg *config.Config) error {
	log := logging.NewStdout()
	defer log.Sync()
	gin.SetMode(cfg.GinMode)

	keywords, err := config.LoadKeywords(cfg.KeywordsFile)
	if err != nil {
		log.Fatal("load keywords", err.Error())
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if cfg.NeedsDatabase() {
		db, err = database.Open(cfg.DB)
		if err != nil {
			log.Fatal("database unavailable", err.Error())
			return err
		}
		defer db.Close()
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatal("migrate", err.Error())
			return err
		}
	}

	var store ratelimit.Store
	switch cfg.RateLimitStore {
	case "postgres":
		rs := database.NewRateStore(db)
		go purgeLoop(ctx, rs, log)
		store = rs
	case "memory":
		store = ratelimit.NewMemoryStore()
	default:
		err := fmt.Errorf("unknown RATE_LIMIT_STORE %q", cfg.RateLimitStore)
		log.Fatal("config", err.Error())
		return err
	}

	mem := memory.New(memory.DefaultLimit)
	gen, err := llm.New(cfg, mem)
	if err != nil {
		log.Fatal("config", err.Error())
		return err
	}

	hub := websocket.NewHub(log)
	go hub.Run(ctx)
	col := metrics.New()

	opts := service.Options{
		Limiter:         ratelimit.New(store, cfg.RateLimitWindow),
		Generator:       gen,
		Keywords:        keywords,
		MaxChars:        cfg.MaxMessageChars,
		GenerateTimeout: cfg.LLMTimeout,
		Logger:          log,
		Observers:       []service.Observer{col, hub},
	}
	if cfg.AuditEnabled {
		opts.Audit = database.NewAuditStore(db)
	}
	gw := service.New(opts)
	defer gw.Close()

	h := &handlers.Handler{
		Gateway:        gw,
		ClientIPHeader: cfg.ClientIPHeader,
		KeywordsFile:   cfg.KeywordsFile,
		Hub:            hub,
		Metrics:        col,
		Log:            log,
	}
	if db != nil {
		h.Ping = db.PingContext
	}
	if cfg.AdminEnabled() {
		h.Auth = middleware.NewAuth(cfg.JWTSecret, models.Admin{
			Email:        cfg.AdminEmail,
			PasswordHash: cfg.AdminPasswordHash,
		})
	} else {
		log.Warn("admin API disabled", "set JWT_SECRET_KEY and ADMIN_PASSWORD_HASH to enable")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", map[string]any{
			"port":      cfg.Port,
			"provider":  cfg.Provider,
			"rateStore": cfg.RateLimitStore,
			"audit":     cfg.AuditEnabled,
		})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", err.Error())
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", err.Error())
	}
	log.Info("server stopped", nil)
	return nil
}

func purgeLoop(ctx context.Context, rs *database.RateStore, log *logging.Logger) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := rs.PurgeExpired(ctx); err != nil {
				log.Warn("rate purge failed", err.Error())
			}
		}
	}
}
