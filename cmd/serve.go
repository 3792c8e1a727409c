package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/rueidis"
	"github.com/spf13/cobra"
	"github.com/yeremiapane/hospital-app/database"
	"github.com/yeremiapane/hospital-app/events"
	"github.com/yeremiapane/hospital-app/monitoring"
	"github.com/yeremiapane/hospital-app/router"
	"github.com/yeremiapane/hospital-app/utils"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Starts the hospital HTTP API, the live event stream and the metrics endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.IsRelease() {
			gin.SetMode(gin.ReleaseMode)
		}

		db, err := openDB(cfg, cfg.AutoMigrate)
		if err != nil {
			return err
		}
		defer closeDB(db)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		mongo := database.NewMongo(cfg.MongoURI, cfg.MongoDatabase, cfg.MongoTimeout())
		store, err := mongo.Connect(ctx)
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mongo.Close(closeCtx); err != nil {
				utils.ErrorLogger.Warnf("Closing MongoDB: %v", err)
			}
		}()

		blacklist := utils.TokenBlacklist(utils.NewMemoryBlacklist())
		if cfg.RedisAddr != "" {
			var client rueidis.Client
			client, err = utils.NewRedisClient(cfg.RedisAddr)
			if err != nil {
				return err
			}
			defer client.Close()
			blacklist = utils.NewRedisBlacklist(client)
			utils.InfoLogger.WithField("addr", cfg.RedisAddr).Info("Token blacklist backed by Redis")
		}

		hub := events.NewHub()
		r := router.SetupRouter(router.Deps{
			DB:                 db,
			Store:              store,
			Hub:                hub,
			Metrics:            monitoring.NewCollector(),
			Blacklist:          blacklist,
			CORSOrigins:        cfg.CORSOrigins,
			RateLimitPerSecond: cfg.RateLimitPerSecond,
		})

		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			utils.InfoLogger.WithField("port", cfg.Port).Info("HTTP server listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
			defer cancel()
			utils.InfoLogger.Info("Shutting down HTTP server")
			return srv.Shutdown(shutdownCtx)
		})

		if err := g.Wait(); err != nil {
			return err
		}
		utils.InfoLogger.Info("HTTP server shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
