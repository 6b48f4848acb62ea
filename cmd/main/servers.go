package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"market-dashboard/src/feed"
	"market-dashboard/src/grpc_control"
	"market-dashboard/src/identity"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/models"
	"market-dashboard/src/server"
	"market-dashboard/src/utils"

	"github.com/spf13/cobra"
)

// -----------------------------------------------------------------------------

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Subscribe to the feed and serve the dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

// -----------------------------------------------------------------------------

func runServe() error {
	conf, appLogger, err := loadConfig()
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	// 1. Storage
	db, err := setupDatabase(conf, appLogger)
	if err != nil {
		return err
	}
	defer db.Close()

	// 2. Feed and identity
	transport, closeTransport, err := setupTransport(conf, appLogger)
	if err != nil {
		return err
	}
	defer closeTransport()

	identityProvider := identity.NewLocalProvider(appLogger.Named("Identity"))
	manager := feed.NewSubscriptionManager(transport, identityProvider, conf.Feed.Path, appLogger.Named("Subscription"))

	// 3. Presentation and health
	scheduler := utils.NewMarketScheduler(conf.Dashboard.DomesticMIC, conf.Dashboard.GlobalMIC, appLogger.Named("Calendar"))
	var srv interfaces.IViewPublisher = server.NewDashboardServer(conf.MConfig, db, identityProvider, manager, scheduler, appLogger.Named("Server"))
	healthSvc := grpc_control.NewHealthService(conf.MConfig, appLogger.Named("Health"))

	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Critical("Server failed: %v", err)
		}
	}()
	go func() {
		if err := healthSvc.Start(); err != nil {
			appLogger.Error("gRPC health server failed: %v", err)
		}
	}()

	// 4. Subscriptions
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	stopIdentity := manager.WatchIdentity(srv.IdentityChanged)
	defer stopIdentity()

	unsubscribe, err := manager.Subscribe(ctx, func(snapshot *models.MFeedSnapshot) {
		srv.Publish(snapshot)
		healthSvc.SetFeedServing(true)
	})
	if err != nil {
		// The dashboard keeps serving the waiting view
		appLogger.Error("Feed subscription failed: %v", err)
	} else {
		defer unsubscribe()
	}

	<-ctx.Done()
	appLogger.Info("Shutting down...")

	healthSvc.Stop()
	if err := srv.Stop(); err != nil {
		appLogger.Warning("Server shutdown: %v", err)
	}
	return nil
}
