package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/trogers1052/stock-trader-dashboard/internal/models"
	"github.com/trogers1052/stock-trader-dashboard/internal/query"
)

// Logical query keys
const (
	KeyStocks  = "stocks"
	KeyTrades  = "trades"
	KeySummary = "summary"
)

// Source is the read-only backend the dashboard queries
type Source interface {
	Stocks(ctx context.Context) ([]models.Stock, error)
	Trades(ctx context.Context) ([]models.Trade, error)
	Summary(ctx context.Context) (*models.DashboardSummary, error)
}

// Service runs the three dashboard queries and derives the view
type Service struct {
	source  Source
	queries *query.Client
	loc     *time.Location
	log     zerolog.Logger
}

// NewService creates a new Service
func NewService(source Source, queries *query.Client, loc *time.Location, log zerolog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		source:  source,
		queries: queries,
		loc:     loc,
		log:     log.With().Str("component", "dashboard").Logger(),
	}
}

// Load issues the stocks, trades and summary queries concurrently and waits
// until all three settle or ctx is done. Fetches outlive ctx so a slow
// upstream still fills the cache for the next request; anything unsettled
// shows up as loading.
func (s *Service) Load(ctx context.Context) View {
	fetchCtx := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		query.Fetch(fetchCtx, s.queries, KeyStocks, s.source.Stocks)
	}()
	go func() {
		defer wg.Done()
		query.Fetch(fetchCtx, s.queries, KeyTrades, s.source.Trades)
	}()
	go func() {
		defer wg.Done()
		query.Fetch(fetchCtx, s.queries, KeySummary, s.source.Summary)
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.log.Debug().Err(ctx.Err()).Msg("Rendering before all queries settled")
	}

	view := s.Snapshot()
	if view.Err != nil {
		s.log.Warn().Err(view.Err).Interface("queries", view.Queries).Msg("Dashboard data unavailable")
	}
	return view
}

// Snapshot derives the view from whatever the cache holds right now
func (s *Service) Snapshot() View {
	return BuildView(
		query.Peek[[]models.Stock](s.queries, KeyStocks),
		query.Peek[[]models.Trade](s.queries, KeyTrades),
		query.Peek[*models.DashboardSummary](s.queries, KeySummary),
		s.loc,
	)
}

// Invalidate marks queries stale. Used by the trade-event listener.
func (s *Service) Invalidate(ctx context.Context, keys ...string) {
	s.queries.Invalidate(ctx, keys...)
}
