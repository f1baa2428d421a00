// Package testsuite levanta un Postgres para tests de integración: usa
// TEST_DATABASE_URL si está definida o un contenedor de testcontainers.
package testsuite

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/davicafu/docsearch/internal/shared/infra/platform/db"
)

type PostgresSuite struct {
	suite.Suite
	Ctx  context.Context
	Pool *pgxpool.Pool
	Tx   *db.TxManager
	Log  *zap.Logger

	container *postgres.PostgresContainer
}

func (s *PostgresSuite) SetupSuite() {
	s.Ctx = context.Background()
	s.Log = zap.NewNop()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		testcontainers.SkipIfProviderIsNotHealthy(s.T())

		var err error
		s.container, err = postgres.Run(
			s.Ctx,
			"postgres:17-alpine",
			postgres.WithDatabase("docsearch_test"),
			postgres.WithUsername("test_user"),
			postgres.WithPassword("test_password"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		s.Require().NoError(err)

		dsn, err = s.container.ConnectionString(s.Ctx, "sslmode=disable")
		s.Require().NoError(err)
	}

	pool, err := pgxpool.New(s.Ctx, dsn)
	s.Require().NoError(err)
	s.Pool = pool
	s.Tx = db.NewTxManager(pool, s.Log)

	s.Require().NoError(db.ApplySchema(s.Ctx, s.Pool))
}

func (s *PostgresSuite) TearDownSuite() {
	if s.Pool != nil {
		s.Pool.Close()
	}
	if s.container != nil {
		if err := s.container.Terminate(s.Ctx); err != nil {
			s.T().Logf("failed to terminate postgres container: %v", err)
		}
	}
}

func (s *PostgresSuite) SetupTest() {
	_, err := s.Pool.Exec(s.Ctx, "TRUNCATE documents, outbox_events, search_documents")
	s.Require().NoError(err)
}

// Count devuelve count(*) de una tabla con filtro opcional.
func (s *PostgresSuite) Count(table, where string) int {
	q := "SELECT count(*) FROM " + table
	if where != "" {
		q += " WHERE " + where
	}
	var n int
	s.Require().NoError(s.Pool.QueryRow(s.Ctx, q).Scan(&n))
	return n
}
