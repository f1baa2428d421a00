package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	config "github.com/davicafu/docsearch/internal/config"
	searchApp "github.com/davicafu/docsearch/internal/search/application"
	searchRepo "github.com/davicafu/docsearch/internal/search/infra/outbound/db/postgre"
	outboxRepo "github.com/davicafu/docsearch/internal/shared/infra/db/postgres"
	"github.com/davicafu/docsearch/internal/shared/infra/platform/db"
	"github.com/davicafu/docsearch/internal/shared/infra/relayer"
	"github.com/davicafu/docsearch/pkg/logger"
	"github.com/davicafu/docsearch/pkg/tracer"
)

func main() {
	cfg := config.MustLoad()

	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Env: cfg.AppEnv}); err != nil {
		panic(err)
	}
	log := logger.Logger().With(zap.String("component", "indexer"))
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracer.InitTracer(ctx, tracer.Config{ServiceName: "docsearch-indexer", Env: cfg.AppEnv, Endpoint: cfg.TracingEndpoint})
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

	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, log)
	if err != nil {
		log.Fatal("failed to connect to Postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := db.ApplySchema(ctx, pool); err != nil {
		log.Fatal("failed to apply schema", zap.Error(err))
	}

	indexer := searchApp.NewIndexer(
		db.NewTxManager(pool, log),
		outboxRepo.NewOutboxRepoPostgres(),
		searchRepo.NewSearchRepoPostgres(pool),
		log,
	)

	loop := relayer.NewLoop("indexer", func(ctx context.Context) (int, error) {
		return indexer.ProcessOnce(ctx, cfg.IndexerBatch)
	}, cfg.IndexerInterval, cfg.RelayMaxBackoff, log)

	// Los lotes no heredan la cancelación de la señal: la parada llega por Stop
	// y el lote en curso termina (commit o rollback) antes de salir.
	loop.Start(context.WithoutCancel(ctx))

	<-ctx.Done()
	log.Info("🛑 shutting down")
	loop.Stop()
	<-loop.Done()
}
