//go:build wireinject
// +build wireinject

package di

import (
	"VixNav/internal/domain/repository"
	internalrepo "VixNav/internal/repository"
	"VixNav/internal/service/yahoo"
	"VixNav/internal/usecase"
	"VixNav/pkg/config"
	"VixNav/pkg/server"

	"github.com/google/wire"
)

var baseSet = wire.NewSet(
	ProvideLogger,
	ProvideRegistry,
	ProvideMetrics,
	ProvideCache,
	ProvideMasterCSV,
	ProvideCompositionStore,
	wire.Bind(new(repository.CompositionStore), new(*internalrepo.CompositionCSV)),
)

var quoteSet = wire.NewSet(
	ProvideYahoo,
	wire.Bind(new(repository.QuoteSource), new(*yahoo.Client)),
)

var alerterSet = wire.NewSet(
	baseSet,
	quoteSet,
	ProvideFXStream,
	ProvideHistory,
	ProvideKafkaProducer,
	ProvideAlertSink,
	ProvideAlerter,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		alerterSet,
		ProvideContracts,
		ProvideLimiter,
		ProvideHandlers,
		ProvideHTTPServer,
		ProvideApp,
	)
	return nil, nil, nil
}

// InitializeAlerterJob wires the alerter together with its optional FX stream.
func InitializeAlerterJob(cfg *config.Config) (*AlerterJob, func(), error) {
	wire.Build(
		alerterSet,
		ProvideAlerterJob,
	)
	return nil, nil, nil
}

func InitializeNAVEstimator(cfg *config.Config) (*usecase.NAVEstimator, func(), error) {
	wire.Build(
		baseSet,
		ProvideMarketCSV,
		ProvideHistory,
		ProvideNAVEstimator,
	)
	return nil, nil, nil
}

func InitializeContracts(cfg *config.Config) (*usecase.Contracts, func(), error) {
	wire.Build(
		baseSet,
		ProvideContracts,
	)
	return nil, nil, nil
}

func InitializeCollector(cfg *config.Config) (*usecase.Collector, func(), error) {
	wire.Build(
		baseSet,
		quoteSet,
		ProvideQuoteSources,
		ProvideMarketCSV,
		ProvideArchive,
		ProvideCollector,
	)
	return nil, nil, nil
}
