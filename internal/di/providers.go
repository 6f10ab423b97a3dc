package di

import (
	"context"
	"fmt"
	"time"

	"VixNav/internal/domain/repository"
	"VixNav/internal/handler/api"
	internalrepo "VixNav/internal/repository"
	"VixNav/internal/service/finnhub"
	"VixNav/internal/service/notify"
	"VixNav/internal/service/ratelimit"
	"VixNav/internal/service/yahoo"
	"VixNav/internal/usecase"
	"VixNav/pkg/cache"
	pkgch "VixNav/pkg/clickhouse"
	"VixNav/pkg/config"
	xhttp "VixNav/pkg/http"
	pkgkafka "VixNav/pkg/kafka"
	applogger "VixNav/pkg/logger"
	"VixNav/pkg/metrics"
	"VixNav/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
)

const usdJPY = "USDJPY"

// ProvideLogger builds the application logger from the logger section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	logger, err := applogger.New(&applogger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		MaxAgeDays: cfg.Logger.MaxAgeDays,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return logger.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideRegistry creates the registry served on /metrics.
func ProvideRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// ProvideMetrics creates the Prometheus recorder.
func ProvideMetrics(reg *prometheus.Registry) *metrics.Recorder {
	return metrics.New(reg)
}

// ProvideCache returns Redis when enabled, otherwise an in-process cache.
func ProvideCache(cfg *config.Config, logger *applogger.Logger) (cache.Service, func(), error) {
	var svc cache.Service
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisCache(
			cache.WithRedisHost(cfg.Redis.Host),
			cache.WithRedisPort(cfg.Redis.Port),
			cache.WithRedisPassword(cfg.Redis.Password),
			cache.WithRedisDB(cfg.Redis.DB),
			cache.WithRedisPrefix(cfg.Redis.Prefix),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		svc = rc
	} else {
		svc = cache.NewMemoryCache(cache.WithMemoryCleanup(time.Minute))
	}
	cleanup := func() {
		if err := svc.Close(); err != nil {
			logger.Warn("cache close failed", applogger.Error(err))
		}
	}
	return svc, cleanup, nil
}

// ProvideMasterCSV creates the master file store under data_dir.
func ProvideMasterCSV(cfg *config.Config, locker cache.Service, logger *applogger.Logger) *internalrepo.MasterCSV {
	return internalrepo.NewMasterCSV(cfg.DataDir, locker, cfg.Store.LockTTL, logger)
}

func ProvideCompositionStore(cfg *config.Config, store *internalrepo.MasterCSV) *internalrepo.CompositionCSV {
	return internalrepo.NewCompositionCSV(store, cfg.Fund.SharesFallback)
}

func ProvideMarketCSV(store *internalrepo.MasterCSV) *internalrepo.MarketCSV {
	return internalrepo.NewMarketCSV(store)
}

// ProvideYahoo creates the Yahoo chart client.
func ProvideYahoo(cfg *config.Config, c cache.Service, logger *applogger.Logger) *yahoo.Client {
	return yahoo.New(yahoo.Config{
		BaseURL:   cfg.Yahoo.BaseURL,
		Timeout:   cfg.Yahoo.Timeout,
		RPS:       cfg.Yahoo.RPS,
		Burst:     cfg.Yahoo.Burst,
		Lookback:  cfg.Yahoo.Lookback,
		CacheTTL:  cfg.Yahoo.CacheTTL,
		UserAgent: cfg.Yahoo.UserAgent,
	}, c, logger)
}

// ProvideQuoteSources lists the sources polled by the collector.
func ProvideQuoteSources(y *yahoo.Client) []repository.QuoteSource {
	return []repository.QuoteSource{y}
}

// ProvideFXStream returns nil when the Finnhub stream is disabled.
func ProvideFXStream(cfg *config.Config, recorder *metrics.Recorder, logger *applogger.Logger) repository.FXStream {
	if !cfg.Finnhub.Enabled {
		return nil
	}
	return finnhub.New(finnhub.Config{
		APIKey:         cfg.Finnhub.APIKey,
		WebSocketURL:   cfg.Finnhub.WebSocketURL,
		Symbol:         cfg.Finnhub.FXSymbol,
		ReconnectDelay: cfg.Finnhub.ReconnectDelay,
		PingInterval:   cfg.Finnhub.PingInterval,
	}, logger, finnhub.WithOnRate(recorder.RecordFXStream))
}

// ProvideHistory connects to ClickHouse and creates the history tables. It returns nil when disabled.
func ProvideHistory(cfg *config.Config, logger *applogger.Logger) (repository.History, func(), error) {
	if !cfg.ClickHouse.Enabled {
		return nil, func() {}, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithAddr(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}

	history := internalrepo.NewClickHouseHistory(client)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := history.InitSchema(ctx); err != nil {
		_ = history.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	cleanup := func() {
		if err := history.Close(); err != nil {
			logger.Warn("clickhouse close failed", applogger.Error(err))
		}
	}
	return history, cleanup, nil
}

// ProvideArchive returns nil when archiving is disabled.
func ProvideArchive(cfg *config.Config) (repository.Archive, error) {
	if !cfg.Archive.Enabled {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	archive, err := internalrepo.NewS3Archive(ctx, internalrepo.S3ArchiveConfig{
		Bucket:          cfg.Archive.Bucket,
		Region:          cfg.Archive.Region,
		Endpoint:        cfg.Archive.Endpoint,
		Prefix:          cfg.Archive.Prefix,
		AccessKeyID:     cfg.Archive.AccessKeyID,
		SecretAccessKey: cfg.Archive.SecretAccessKey,
		PathStyle:       cfg.Archive.PathStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 archive: %w", err)
	}
	return archive, nil
}

// ProvideKafkaProducer returns a nil producer when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config, logger *applogger.Logger) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers...),
		pkgkafka.WithDelivery(cfg.Kafka.RequiredAcks, cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithKeyedPartitioning(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	cleanup := func() {
		if err := producer.Close(); err != nil {
			logger.Warn("kafka producer close failed", applogger.Error(err))
		}
	}
	return producer, cleanup, nil
}

// ProvideAlertSink fans alerts out to the alert file and every enabled channel.
func ProvideAlertSink(cfg *config.Config, producer *pkgkafka.Producer, recorder *metrics.Recorder, logger *applogger.Logger) (repository.AlertSink, error) {
	sinks := []repository.AlertSink{internalrepo.NewFileAlertSink(cfg.DataDir)}
	if producer != nil {
		sinks = append(sinks, internalrepo.NewKafkaAlertSink(producer, cfg.Kafka.Topic))
	}
	if cfg.Telegram.Enabled {
		tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			return nil, fmt.Errorf("telegram: %w", err)
		}
		sinks = append(sinks, tg)
	}
	return notify.NewMultiSink(logger, recorder, sinks...), nil
}

// ProvideAlerter builds the price-limit alerter. A fresh streamed rate may be two check intervals old.
func ProvideAlerter(
	cfg *config.Config,
	quotes repository.QuoteSource,
	comps repository.CompositionStore,
	stream repository.FXStream,
	sink repository.AlertSink,
	history repository.History,
	recorder *metrics.Recorder,
	logger *applogger.Logger,
) *usecase.Alerter {
	opts := []usecase.AlerterOption{
		usecase.WithAlertSink(sink),
		usecase.WithMetrics(recorder),
	}
	if stream != nil {
		opts = append(opts, usecase.WithFXStream(stream))
	}
	if history != nil {
		opts = append(opts, usecase.WithHistory(history))
	}
	return usecase.NewAlerter(usecase.AlerterConfig{
		Fund:         cfg.Fund.Ticker,
		FundName:     cfg.Fund.Name,
		FXPair:       usdJPY,
		StreamMaxAge: 2 * cfg.Fund.CheckInterval,
	}, quotes, comps, logger, opts...)
}

func ProvideNAVEstimator(
	comps repository.CompositionStore,
	market *internalrepo.MarketCSV,
	history repository.History,
	recorder *metrics.Recorder,
	logger *applogger.Logger,
) *usecase.NAVEstimator {
	return usecase.NewNAVEstimator(comps, market, market, history, recorder, logger)
}

func ProvideContracts(comps repository.CompositionStore) *usecase.Contracts {
	return usecase.NewContracts(comps)
}

func ProvideCollector(
	comps repository.CompositionStore,
	sources []repository.QuoteSource,
	market *internalrepo.MarketCSV,
	archive repository.Archive,
	recorder *metrics.Recorder,
	logger *applogger.Logger,
) *usecase.Collector {
	return usecase.NewCollector(comps, sources, market, archive, recorder, logger)
}

func ProvideLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideHandlers registers the pricing API and the health check.
func ProvideHandlers(cfg *config.Config, contracts *usecase.Contracts, limiter *ratelimit.Limiter, history repository.History, logger *applogger.Logger) xhttp.Handlers {
	deps := map[string]api.Pinger{}
	if history != nil {
		deps["clickhouse"] = history
	}
	pricing := api.NewPricingEchoHandler(logger, contracts, limiter, api.RateLimit{
		Capacity:     float64(cfg.API.RateLimit.Capacity),
		RefillPerSec: cfg.API.RateLimit.RefillPerSec,
	})
	return xhttp.Handlers{pricing, api.NewHealthEchoHandler(deps)}
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(cfg *config.Config, handlers xhttp.Handlers, reg *prometheus.Registry, logger *applogger.Logger) *xhttp.Server {
	return xhttp.NewServer(handlers, logger,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(len(cfg.Server.AllowOrigins) > 0, cfg.Server.AllowOrigins...),
		xhttp.WithRegistry(reg),
	)
}

// ProvideApp assembles the long-running application.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	httpServer *xhttp.Server,
	alerter *usecase.Alerter,
	stream repository.FXStream,
	limiter *ratelimit.Limiter,
) *server.App {
	janitor := func(ctx context.Context) { limiter.Janitor(ctx, time.Minute, 10*time.Minute) }
	return server.New(server.Options{
		MonitorEnabled:  cfg.Fund.Monitor,
		CheckInterval:   cfg.Fund.CheckInterval,
		MaxAlerts:       cfg.Fund.MaxAlerts,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger, httpServer, alerter, stream, janitor)
}

// AlerterJob is the alerter command's dependency graph.
type AlerterJob struct {
	Alerter *usecase.Alerter
	Stream  repository.FXStream
	Logger  *applogger.Logger
}

func ProvideAlerterJob(alerter *usecase.Alerter, stream repository.FXStream, logger *applogger.Logger) *AlerterJob {
	return &AlerterJob{Alerter: alerter, Stream: stream, Logger: logger}
}
