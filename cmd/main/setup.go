package main

import (
	"fmt"

	"market-dashboard/src/config"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/network"
	"market-dashboard/src/storage"
)

// -----------------------------------------------------------------------------

// loadConfig reads the config and builds the application logger.
func loadConfig() (*config.Config, *logger.Logger, error) {
	conf, err := config.NewConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading config: %w", err)
	}
	return conf, logger.NewLogger(conf, conf.Name), nil
}

// -----------------------------------------------------------------------------

// setupDatabase opens and initializes the history store.
func setupDatabase(conf *config.Config, appLogger *logger.Logger) (interfaces.IHistoryDatabase, error) {
	db, err := storage.NewHistoryDatabase(conf.MConfig, appLogger.Named("Storage"))
	if err != nil {
		return nil, err
	}
	if err := db.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize %s history store: %w", conf.Storage.DBType, err)
	}
	return db, nil
}

// -----------------------------------------------------------------------------

// setupTransport builds the feed transport selected by feed.transport. The
// returned cleanup releases transport-owned connections.
func setupTransport(conf *config.Config, appLogger *logger.Logger) (interfaces.IFeedTransport, func(), error) {
	switch conf.Feed.Transport {
	case "websocket":
		return network.NewWebsocketTransport(conf.Feed, appLogger.Named("Feed")), func() {}, nil
	case "redis":
		t := network.NewRedisTransport(conf.Feed, appLogger.Named("Feed"))
		return t, func() { _ = t.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown feed transport '%s'", conf.Feed.Transport)
	}
}
