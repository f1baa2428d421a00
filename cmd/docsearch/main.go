package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	config "github.com/davicafu/docsearch/internal/config"
	documentApp "github.com/davicafu/docsearch/internal/document/application"
	documentEvents "github.com/davicafu/docsearch/internal/document/infra/inbound/events"
	documentHttp "github.com/davicafu/docsearch/internal/document/infra/inbound/http"
	documentCache "github.com/davicafu/docsearch/internal/document/infra/outbound/cache"
	documentRepo "github.com/davicafu/docsearch/internal/document/infra/outbound/db/postgre"
	searchApp "github.com/davicafu/docsearch/internal/search/application"
	searchDomain "github.com/davicafu/docsearch/internal/search/domain"
	searchHttp "github.com/davicafu/docsearch/internal/search/infra/inbound/http"
	searchAnalytics "github.com/davicafu/docsearch/internal/search/infra/outbound/analytics/clickhouse"
	searchRepo "github.com/davicafu/docsearch/internal/search/infra/outbound/db/postgre"
	outboxRepo "github.com/davicafu/docsearch/internal/shared/infra/db/postgres"
	infraEvents "github.com/davicafu/docsearch/internal/shared/infra/events"
	sharedHttp "github.com/davicafu/docsearch/internal/shared/infra/inbound/http"
	sharedBus "github.com/davicafu/docsearch/internal/shared/infra/platform/bus"
	sharedCache "github.com/davicafu/docsearch/internal/shared/infra/platform/cache"
	"github.com/davicafu/docsearch/internal/shared/infra/platform/db"
	"github.com/davicafu/docsearch/internal/shared/infra/relayer"
	"github.com/davicafu/docsearch/pkg/logger"
	"github.com/davicafu/docsearch/pkg/tracer"

	_ "modernc.org/sqlite"
)

// ---------------- Main ----------------
func main() {
	cfg := config.MustLoad()

	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Env: cfg.AppEnv}); err != nil {
		panic(err)
	}
	log := logger.Logger()
	defer log.Sync() // flush buffers al salir

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracer.InitTracer(ctx, tracer.Config{ServiceName: "docsearch-api", Env: cfg.AppEnv, Endpoint: cfg.TracingEndpoint})
	if err != nil {
		log.Fatal("failed to init tracer", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	// ---------------- DB ----------------
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, log)
	if err != nil {
		log.Fatal("failed to connect to Postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := db.ApplySchema(ctx, pool); err != nil {
		log.Fatal("failed to apply schema", zap.Error(err))
	}
	txManager := db.NewTxManager(pool, log)
	outbox := outboxRepo.NewOutboxRepoPostgres()

	// ---------------- Cache ----------------
	var cacheInstance sharedCache.Cache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("⚠️ Redis no disponible, cache en memoria", zap.Error(err))
		} else {
			cacheInstance = documentCache.NewRedisCache(rdb, cfg.CacheTTL)
			log.Info("✅ Redis conectado, cache habilitado")
		}
	}
	if cacheInstance == nil {
		mem := documentCache.NewInMemoryCache(cfg.CacheTTL, 3*cfg.CacheTTL)
		defer mem.Stop()
		cacheInstance = mem
	}

	// --------------- Servicios --------------
	documentService := documentApp.NewDocumentService(
		documentRepo.NewDocumentRepoPostgres(pool, txManager, outbox),
		cacheInstance, cfg.CacheTTL, cfg.EventProducer, log,
	)

	var recorder searchDomain.QueryRecorder
	if cfg.ClickHouseAddr != "" {
		queryLog, err := searchAnalytics.NewQueryLogRepo(cfg.ClickHouseAddr, cfg.ClickHouseDatabase, 50, log)
		if err != nil {
			log.Warn("⚠️ ClickHouse no disponible, analítica deshabilitada", zap.Error(err))
		} else if err := queryLog.InitSchema(ctx); err != nil {
			log.Warn("⚠️ no se pudo crear la tabla de analítica", zap.Error(err))
		} else {
			defer func() {
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := queryLog.Flush(flushCtx); err != nil {
					log.Warn("failed to flush query log", zap.Error(err))
				}
				queryLog.Close()
			}()
			recorder = queryLog
		}
	}
	queryService := searchApp.NewQueryService(searchRepo.NewSearchRepoPostgres(pool), recorder, log)

	// ---------------- Events ---------------
	sink, closeSink, err := buildSink(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to build event sink", zap.Error(err))
	}
	defer closeSink()

	// Invalidación de la caché local a partir de los eventos publicados.
	documentConsumer := documentEvents.NewDocumentConsumer(cacheInstance, log)
	if memBus, ok := sink.(*infraEvents.InMemoryBus); ok {
		documentEvents.BackgroundConsumerChan(ctx, memBus.Subscribe(256), documentConsumer)
	}
	if cfg.EventSink == "kafka" && cfg.KafkaConsumerGroup != "" {
		reader := infraEvents.NewKafkaReader(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaConsumerGroup)
		defer reader.Close()
		infraEvents.NewConsumerAdapter(reader, documentConsumer, cfg.KafkaTopic, log).Start(ctx)
	}

	sink = infraEvents.NewBreakerSink(sink, "event-sink", cfg.SinkBreakerFailures, cfg.RelayMaxBackoff, log)

	publisher := relayer.NewPublisher(txManager, outbox, sink, log)

	// ------------ Outbox Publisher ------------
	var publisherLoop *relayer.Loop
	if cfg.PublisherEnabled {
		publisherLoop = relayer.NewLoop("publisher", publisher.RunOnce(cfg.PublisherBatch), cfg.PublisherInterval, cfg.RelayMaxBackoff, log)
		// parada vía Stop; el lote en curso no se cancela a medias
		publisherLoop.Start(context.WithoutCancel(ctx))
	}

	// ---------------- HTTP ----------------
	debug := !cfg.IsProduction()
	router := sharedHttp.NewRouter(log, cfg.IsProduction())
	documentHttp.RegisterDocumentRoutes(router, documentHttp.NewDocumentHandler(documentService, debug))
	searchHttp.RegisterSearchRoutes(router, searchHttp.NewSearchHandler(queryService, debug))
	sharedHttp.RegisterAdminRoutes(router, sharedHttp.NewAdminHandler(publisher, cfg.PublisherBatch, debug))

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("🚀 Server running", zap.String("url", "http://localhost:"+cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("🛑 shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	if publisherLoop != nil {
		publisherLoop.Stop()
		<-publisherLoop.Done()
	}
}

// buildSink elige el destino de los eventos según EVENT_SINK.
func buildSink(ctx context.Context, cfg *config.Config, log *zap.Logger) (sharedBus.EventBus, func(), error) {
	noop := func() {}

	switch cfg.EventSink {
	case "kafka":
		log.Info("🚀 Usando Kafka como sink de eventos", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
		writer := infraEvents.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
		return infraEvents.NewKafkaPublisher(writer, log), func() { writer.Close() }, nil

	case "mongo":
		log.Info("🍃 Usando MongoDB como archivo de eventos", zap.String("database", cfg.MongoDatabase))
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, noop, err
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		sink, err := infraEvents.NewMongoSink(ctx, client, cfg.MongoDatabase, log)
		if err != nil {
			closeFn()
			return nil, noop, err
		}
		return sink, closeFn, nil

	case "sqlite":
		log.Info("🗂️ Usando diario SQLite de eventos", zap.String("path", cfg.SQLitePath))
		sqlDB, err := sql.Open("sqlite", cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		sqlDB.SetMaxOpenConns(1)
		if err := infraEvents.InitSQLiteJournal(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, noop, err
		}
		return infraEvents.NewSQLiteSink(sqlDB, log), func() { sqlDB.Close() }, nil

	case "memory":
		log.Info("⚡️ Usando bus en memoria como sink de eventos")
		memBus := infraEvents.NewInMemoryBus()
		return memBus, memBus.Close, nil

	default:
		log.Info("📝 Usando el log como sink de eventos")
		return infraEvents.NewLogSink(log), noop, nil
	}
}
