package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"festival-media-center/internal/api"
	"festival-media-center/internal/api/handlers"
	"festival-media-center/internal/config"
	"festival-media-center/internal/database"
	"festival-media-center/internal/forms"
	"festival-media-center/internal/gallery"
	"festival-media-center/internal/intake"
	"festival-media-center/internal/models"
	"festival-media-center/internal/notify"
	"festival-media-center/internal/preview"
	"festival-media-center/internal/storage"
	"festival-media-center/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, log)
	},
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if !cfg.Server.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return err
	}
	defer database.Close(db)
	if err := database.Migrate(db); err != nil {
		return err
	}

	store, err := storage.New(cfg.Storage)
	if err != nil {
		return err
	}

	hub := websocket.NewManager(log)
	defer hub.Stop()

	notifiers := notify.Multi{hub, notify.NewLogger(log)}
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, notifications stay local", zap.Error(err))
		} else {
			notifiers = append(notifiers, notify.NewPublisher(client, log))
		}
	}

	previews := preview.NewRegistry(cfg.Server.PublicURL + "/api/v1/previews")
	manager := forms.NewManager(forms.Config{
		Latencies: forms.Latencies{
			Wishes: cfg.Intake.WishLatency,
			Photos: cfg.Intake.PhotoLatency,
		},
		Limits: intake.Limits{
			MaxImageSize: cfg.Intake.MaxImageSize,
			MaxVideoSize: cfg.Intake.MaxVideoSize,
		},
		TTL:           cfg.Session.TTL,
		SweepInterval: cfg.Session.SweepInterval,
	}, previews, notifiers, forms.WithLogger(log))
	defer manager.Stop()

	catalog := database.NewStore(db)
	h := &handlers.Handler{
		Gallery:  gallery.NewService(catalog, store, cfg.Storage.PresignTTL, log),
		Wishes:   catalog,
		Forms:    manager,
		Previews: previews,
		Media:    store,
		Hub:      hub,
		Venue: models.Venue{
			Latitude:  cfg.Venue.Latitude,
			Longitude: cfg.Venue.Longitude,
			Label:     cfg.Venue.Label,
		},
		SessionSecret: cfg.Session.Secret,
		SessionTTL:    cfg.Session.TTL,
		MaxUploadSize: cfg.Intake.MaxUploadSize,
		Log:           log,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           api.NewRouter(h, cfg.Server.AllowedOrigins, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
