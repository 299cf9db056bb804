package catalog

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bookmook/storefront/internal/apperr"
	"github.com/bookmook/storefront/internal/logging"
	"github.com/bookmook/storefront/internal/sheet"
)

// Service reads the inventory through a Source, optionally fronted by a
// RowCache, and derives every catalog view from the current snapshot.
type Service struct {
	source sheet.Source
	cache  RowCache
	logger *logging.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// NewService builds a catalog service. cache may be nil.
func NewService(source sheet.Source, cache RowCache, logger *logging.Logger) *Service {
	return &Service{
		source: source,
		cache:  cache,
		logger: logger,
		tracer: otel.Tracer("bookmook/catalog"),
		now:    time.Now,
	}
}

// WithClock replaces the time source used for stale discounts and age
// pricing.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Rows returns the current row snapshot.
func (s *Service) Rows(ctx context.Context) ([]sheet.Row, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.rows")
	defer span.End()

	if s.cache != nil {
		rows, err := s.cache.Load(ctx)
		switch {
		case err == nil:
			span.SetAttributes(attribute.Bool("cache.hit", true), attribute.Int("rows", len(rows)))
			return rows, nil
		case !errors.Is(err, ErrCacheMiss):
			s.logger.Warn("catalog cache unavailable, reading source", "error", err)
		}
	}

	span.SetAttributes(attribute.Bool("cache.hit", false))
	rows, err := s.source.FetchRows(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch rows")
		var upstream *apperr.UpstreamError
		if errors.As(err, &upstream) {
			return nil, err
		}
		return nil, apperr.Upstream("inventory sheet", err)
	}
	span.SetAttributes(attribute.Int("rows", len(rows)))

	if s.cache != nil {
		if err := s.cache.Store(ctx, rows); err != nil {
			s.logger.Warn("failed to cache row snapshot", "error", err)
		}
	}

	return rows, nil
}

// Records returns every row as a priced BookRecord, in sheet order.
func (s *Service) Records(ctx context.Context) ([]BookRecord, error) {
	rows, err := s.Rows(ctx)
	if err != nil {
		return nil, err
	}
	return FromRows(rows, s.now()), nil
}

// Recent returns the first limit records.
func (s *Service) Recent(ctx context.Context, limit int) ([]BookRecord, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	return Recent(records, limit), nil
}

// Book assembles the detail view for isbn.
func (s *Service) Book(ctx context.Context, isbn string) (*Book, error) {
	key := sheet.NormalizeISBN(isbn)
	if key == "" {
		return nil, apperr.Validation("isbn", "isbn must contain digits")
	}

	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}

	book, ok := AssembleOne(records, key, s.now())
	if !ok {
		return nil, &apperr.NotFoundError{Resource: "book"}
	}
	return &book, nil
}

// Search matches query against the current records.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]BookRecord, error) {
	if normText(query) == "" {
		return []BookRecord{}, nil
	}

	ctx, span := s.tracer.Start(ctx, "catalog.search", trace.WithAttributes(attribute.Int("limit", limit)))
	defer span.End()

	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}

	found := Search(records, query, limit)
	span.SetAttributes(attribute.Int("matches", len(found)))
	return found, nil
}

// Deals returns records priced at least 25% under list.
func (s *Service) Deals(ctx context.Context, limit int) ([]BookRecord, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	return Deals(records, limit), nil
}

// Lines returns quote lines from the sheet.
func (s *Service) Lines(ctx context.Context, limit int) ([]BookLine, error) {
	rows, err := s.Rows(ctx)
	if err != nil {
		return nil, err
	}
	return Lines(rows, limit), nil
}
