package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/am-muhwezi/ptf-sub000/internal/cache"
	"github.com/am-muhwezi/ptf-sub000/internal/clock"
	"github.com/am-muhwezi/ptf-sub000/internal/config"
	"github.com/am-muhwezi/ptf-sub000/internal/logger"
	"github.com/am-muhwezi/ptf-sub000/internal/metrics"
	"github.com/am-muhwezi/ptf-sub000/internal/subscription"
)

// Service serves cached snapshots. Staleness up to the TTL is accepted;
// write paths invalidate the stats: prefix to tighten it when they can.
type Service interface {
	Dashboard(ctx context.Context, timeframe Timeframe) (*Snapshot, error)
	Counts(ctx context.Context) ([]subscription.TypeStatusCount, error)
	Invalidate(ctx context.Context) error
}

// TypeStatusCounter is the one slice of the subscription repository the
// counts endpoint needs.
type TypeStatusCounter interface {
	CountsByTypeAndStatus(ctx context.Context) ([]subscription.TypeStatusCount, error)
}

type service struct {
	repo  Repository
	subs  TypeStatusCounter
	cache cache.Cache
	clk   clock.Clock
	ttls  config.CacheTTLs
}

func NewService(repo Repository, subs TypeStatusCounter, c cache.Cache, clk clock.Clock, ttls config.CacheTTLs) Service {
	return &service{repo: repo, subs: subs, cache: c, clk: clk, ttls: ttls}
}

func (s *service) Dashboard(ctx context.Context, timeframe Timeframe) (*Snapshot, error) {
	key := fmt.Sprintf("stats:dashboard:%s", timeframe)

	var cached Snapshot
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	snap, err := s.repo.Snapshot(ctx, timeframe, s.clk.Now())
	if err != nil {
		return nil, err
	}

	s.store(ctx, key, snap, s.ttls.Dashboard)
	return snap, nil
}

func (s *service) Counts(ctx context.Context) ([]subscription.TypeStatusCount, error) {
	key := "stats:counts:type-status"

	var cached []subscription.TypeStatusCount
	if s.lookup(ctx, key, &cached) {
		return cached, nil
	}

	counts, err := s.subs.CountsByTypeAndStatus(ctx)
	if err != nil {
		return nil, err
	}

	s.store(ctx, key, counts, s.ttls.Counts)
	return counts, nil
}

func (s *service) Invalidate(ctx context.Context) error {
	_, err := s.cache.DeletePrefix(ctx, "stats:")
	return err
}

func (s *service) lookup(ctx context.Context, key string, out interface{}) bool {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil || !ok {
		metrics.RecordCacheLookup(false)
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		metrics.RecordCacheLookup(false)
		return false
	}
	metrics.RecordCacheLookup(true)
	return true
}

func (s *service) store(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, ttl); err != nil {
		logger.Errorf("Failed to cache %s: %v", key, err)
	}
}
