package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	dbgen "github.com/aryanbrs/packklite-sub001/internal/db/gen"
	"github.com/aryanbrs/packklite-sub001/internal/lock"
	"github.com/aryanbrs/packklite-sub001/internal/order"
	"github.com/aryanbrs/packklite-sub001/internal/pricing"
)

const (
	dashboardKey     = "an:dashboard"
	dashboardLockKey = "an:dashboard:lock"
)

// Querier defines the database access required for the dashboard.
type Querier interface {
	OrderStatusCounts(ctx context.Context) ([]dbgen.OrderStatusCountsRow, error)
	OrderRevenue(ctx context.Context) (decimal.Decimal, error)
	CountOpenQuotes(ctx context.Context) (int64, error)
	CountProducts(ctx context.Context) (int64, error)
}

// Dashboard is the admin overview.
type Dashboard struct {
	OrdersByStatus map[string]int64 `json:"orders_by_status"`
	Revenue        pricing.Money    `json:"revenue"`
	OpenQuotes     int64            `json:"open_quotes"`
	Products       int64            `json:"products"`
	GeneratedAt    time.Time        `json:"generated_at"`
}

// Service provides cached access to dashboard aggregates.
type Service struct {
	Q   Querier
	R   redis.UniversalClient
	TTL time.Duration
	// Lock, when set, lets one replica rebuild an expired dashboard while
	// the others wait for the cached copy.
	Lock *lock.Locker
	Log  zerolog.Logger
	Now  func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Dashboard returns the overview, serving from Redis while the cached copy is fresh.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	if s == nil || s.Q == nil {
		return Dashboard{}, fmt.Errorf("analytics service not configured")
	}
	if d, ok := s.fromCache(ctx); ok {
		return d, nil
	}
	if s.Lock == nil || s.R == nil || s.TTL <= 0 {
		return s.build(ctx)
	}

	var d Dashboard
	err := s.Lock.WithLock(ctx, dashboardLockKey, 10*time.Second, func(ctx context.Context) error {
		if cached, ok := s.fromCache(ctx); ok {
			d = cached
			return nil
		}
		built, err := s.build(ctx)
		d = built
		return err
	})
	if err != nil {
		return Dashboard{}, err
	}
	return d, nil
}

func (s *Service) build(ctx context.Context) (Dashboard, error) {
	var (
		counts   []dbgen.OrderStatusCountsRow
		revenue  decimal.Decimal
		open     int64
		products int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { counts, err = s.Q.OrderStatusCounts(gctx); return })
	g.Go(func() (err error) { revenue, err = s.Q.OrderRevenue(gctx); return })
	g.Go(func() (err error) { open, err = s.Q.CountOpenQuotes(gctx); return })
	g.Go(func() (err error) { products, err = s.Q.CountProducts(gctx); return })
	if err := g.Wait(); err != nil {
		return Dashboard{}, fmt.Errorf("load dashboard: %w", err)
	}

	byStatus := make(map[string]int64, len(order.Statuses))
	for _, st := range order.Statuses {
		byStatus[string(st)] = 0
	}
	for _, row := range counts {
		byStatus[row.Status] = row.Count
	}
	d := Dashboard{
		OrdersByStatus: byStatus,
		Revenue:        pricing.NewMoney(revenue),
		OpenQuotes:     open,
		Products:       products,
		GeneratedAt:    s.now().UTC(),
	}
	s.store(ctx, d)
	return d, nil
}

func (s *Service) fromCache(ctx context.Context) (Dashboard, bool) {
	if s.R == nil || s.TTL <= 0 {
		return Dashboard{}, false
	}
	data, err := s.R.Get(ctx, dashboardKey).Bytes()
	if err != nil {
		return Dashboard{}, false
	}
	var d Dashboard
	if err := json.Unmarshal(data, &d); err != nil {
		return Dashboard{}, false
	}
	return d, true
}

func (s *Service) store(ctx context.Context, d Dashboard) {
	if s.R == nil || s.TTL <= 0 {
		return
	}
	data, err := json.Marshal(d)
	if err != nil {
		return
	}
	if err := s.R.Set(ctx, dashboardKey, data, s.TTL).Err(); err != nil {
		s.Log.Warn().Err(err).Msg("dashboard cache write failed")
	}
}
