package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ray-remotestate/gspot/checkout"
	"github.com/ray-remotestate/gspot/database"
	"github.com/ray-remotestate/gspot/database/dbhelper"
	"github.com/ray-remotestate/gspot/events"
	"github.com/ray-remotestate/gspot/handlers"
	"github.com/ray-remotestate/gspot/media"
	"github.com/ray-remotestate/gspot/server"
	"github.com/ray-remotestate/gspot/session"
	"github.com/ray-remotestate/gspot/tracking"
	"github.com/ray-remotestate/gspot/ws"
)

const sessionSweepInterval = 10 * time.Minute

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := database.ConnectAndMigrate(cfg.DatabaseURL); err != nil {
		return err
	}
	logrus.Info("migration is successful")
	defer func() {
		if err := database.ShutdownDatabase(); err != nil {
			logrus.WithError(err).Error("failed to close database connection!")
		}
	}()
	store := dbhelper.New(database.GSpot)

	var publisher events.Publisher = events.Noop{}
	if cfg.AMQPURL != "" {
		rp, err := events.NewRabbitPublisher(cfg.AMQPURL)
		if err != nil {
			logrus.WithError(err).Warn("rabbitmq unavailable, order events disabled")
		} else {
			publisher = rp
		}
	}
	defer publisher.Close()

	svc := &checkout.Service{
		Orders:   store,
		Payments: store,
		Events:   publisher,
		PageID:   cfg.MessengerPageID,
	}
	if cfg.CloudinaryURL != "" {
		uploader, err := media.NewCloudinaryUploader(cfg.CloudinaryURL, cfg.ReceiptFolder)
		if err != nil {
			return err
		}
		svc.Receipts = uploader
	} else {
		logrus.Warn("CLOUDINARY_URL not set, receipt uploads disabled")
	}

	hub := ws.NewHub()
	defer hub.Close()
	sessions := session.NewStore(cfg.SessionTTL)

	srv := server.SetupRoutes(&handlers.Handler{
		Menu:     store,
		Orders:   store,
		Users:    store,
		Checkout: svc,
		Tracking: &tracking.Service{Store: store},
		Hub:      hub,
		Events:   publisher,
		Sessions: sessions,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logrus.WithField("port", cfg.Port).Info("server started")
		if err := srv.Run(cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		sessions.Run(ctx, sessionSweepInterval)
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logrus.Info("shutting down...")
		return srv.Shutdown(cfg.ShutdownTimeout)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logrus.Info("system is shut ..zzz")
	return nil
}
