//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"CandleScan/pkg/config"
	"CandleScan/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideCache,
		ProvideKafkaProducer,
		ProvideLogSink,

		// Repositories
		ProvideCatalog,
		ProvidePriceStore,
		ProvideMarketData,
		ProvideSignalRecorder,
		ProvideEventPublisher,

		// Use cases
		ProvidePatternScanner,
		ProvideSnapshotRefresher,

		// Transport
		ProvideLimiter,
		ProvideWebHandler,
		ProvideHTTPServer,
		ProvideScheduler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
