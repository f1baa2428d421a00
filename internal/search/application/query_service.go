package application

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/davicafu/docsearch/internal/search/domain"
)

var tracer = otel.Tracer("docsearch/search")

const recordTimeout = 2 * time.Second

// QueryService resuelve búsquedas: primero full-text, y sólo si esa página sale
// vacía, similitud por trigramas sobre el título.
type QueryService struct {
	repo     domain.SearchRepository
	recorder domain.QueryRecorder
	log      *zap.Logger
}

// recorder puede ser nil (analítica deshabilitada).
func NewQueryService(repo domain.SearchRepository, recorder domain.QueryRecorder, log *zap.Logger) *QueryService {
	return &QueryService{repo: repo, recorder: recorder, log: log}
}

func (s *QueryService) Search(ctx context.Context, q domain.Query) (*domain.Result, error) {
	ctx, span := tracer.Start(ctx, "search.query")
	defer span.End()
	start := time.Now()

	result, err := s.search(ctx, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("search.mode", string(result.Mode)),
		attribute.Int("search.count", result.Count),
	)
	s.record(q, result, time.Since(start))
	return result, nil
}

func (s *QueryService) search(ctx context.Context, q domain.Query) (*domain.Result, error) {
	hits, total, err := s.repo.FullText(ctx, q)
	if err != nil {
		return nil, err
	}
	ftsResult := domain.NewResult(domain.ModeFullText, q, hits, &total)

	// La decisión se toma sobre la página actual: un offset más allá del último
	// acierto fts también cae a trigramas.
	if len(hits) > 0 {
		return ftsResult, nil
	}

	fuzzy, err := s.repo.Fuzzy(ctx, q, domain.SimilarityThreshold)
	if err != nil {
		return nil, err
	}
	if len(fuzzy) == 0 {
		return ftsResult, nil
	}
	return domain.NewResult(domain.ModeTrigram, q, fuzzy, nil), nil
}

// record envía la entrada en background; la respuesta no espera a la analítica.
func (s *QueryService) record(q domain.Query, r *domain.Result, latency time.Duration) {
	if s.recorder == nil {
		return
	}
	entry := domain.QueryLogEntry{
		Query:     q.Text,
		Mode:      r.Mode,
		Limit:     q.Limit,
		Offset:    q.Offset,
		Count:     r.Count,
		Total:     r.Total,
		Latency:   latency,
		Timestamp: time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := s.recorder.Record(ctx, entry); err != nil {
			s.log.Warn("failed to record search query", zap.Error(err))
		}
	}()
}
