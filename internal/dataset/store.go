package dataset

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/JARAWA/JOSAA-preference/internal/metrics"
	"github.com/JARAWA/JOSAA-preference/internal/models"
)

const snapshotKey = "cutoff_snapshot"

// Snapshot is one immutable load of the cutoff dataset. Snapshots are shared
// read-only across concurrent pipeline invocations and replaced, never
// mutated, on refresh.
type Snapshot struct {
	ID       uuid.UUID
	LoadedAt time.Time
	Records  []models.HistoricalRecord
}

// Store is the caller-owned dataset cache: it holds the current snapshot in a
// TTL cache and exposes explicit refresh and invalidation, optionally driven
// by a cron schedule.
type Store struct {
	source Source
	cache  *cache.Cache
	ttl    time.Duration
	logger *logrus.Logger
	cron   *cron.Cron

	mu       sync.Mutex
	branches []string
}

// NewStore creates a store over the given source. A zero ttl keeps snapshots
// until they are explicitly refreshed or invalidated.
func NewStore(source Source, ttl time.Duration, logger *logrus.Logger) *Store {
	expiry := ttl
	if expiry <= 0 {
		expiry = cache.NoExpiration
	}
	return &Store{
		source: source,
		cache:  cache.New(expiry, cleanupInterval(expiry)),
		ttl:    ttl,
		logger: logger,
	}
}

func cleanupInterval(expiry time.Duration) time.Duration {
	if expiry == cache.NoExpiration {
		return 0
	}
	return expiry * 2
}

// Snapshot returns the cached dataset snapshot, loading it from the source if
// the cache is empty or expired.
func (s *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	if v, ok := s.cache.Get(snapshotKey); ok {
		return v.(*Snapshot), nil
	}
	return s.Refresh(ctx)
}

// Refresh loads a fresh snapshot from the source, replacing whatever is
// cached. Concurrent callers are serialized; the second caller gets the
// snapshot the first one loaded.
func (s *Store) Refresh(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller may have refreshed while we waited on the lock.
	if v, ok := s.cache.Get(snapshotKey); ok {
		snap := v.(*Snapshot)
		if time.Since(snap.LoadedAt) < time.Second {
			return snap, nil
		}
	}

	records, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset from %s: %w", s.source.Name(), err)
	}

	snap := &Snapshot{
		ID:       uuid.New(),
		LoadedAt: time.Now().UTC(),
		Records:  records,
	}
	s.cache.Set(snapshotKey, snap, cache.DefaultExpiration)
	s.branches = nil

	metrics.DatasetRefreshesTotal.Inc()
	metrics.DatasetRecords.Set(float64(len(records)))
	s.logger.WithFields(logrus.Fields{
		"source":   s.source.Name(),
		"records":  len(records),
		"snapshot": snap.ID,
	}).Info("Cutoff dataset refreshed")
	return snap, nil
}

// Invalidate drops the cached snapshot and the memoized branch list; the next
// Snapshot call reloads from the source.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(snapshotKey)
	s.branches = nil
}

// Branches returns the sorted distinct academic program names in the current
// snapshot, memoized until the next refresh or invalidation.
func (s *Store) Branches(ctx context.Context) ([]string, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.branches != nil {
		return s.branches, nil
	}

	seen := make(map[string]struct{})
	var branches []string
	for _, rec := range snap.Records {
		if rec.Program == "" {
			continue
		}
		if _, ok := seen[rec.Program]; ok {
			continue
		}
		seen[rec.Program] = struct{}{}
		branches = append(branches, rec.Program)
	}
	sort.Strings(branches)
	s.branches = branches
	return branches, nil
}

// StartAutoRefresh schedules periodic refreshes with a cron expression.
func (s *Store) StartAutoRefresh(schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if _, err := s.Refresh(context.Background()); err != nil {
			s.logger.WithError(err).Warn("Scheduled dataset refresh failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}
	c.Start()
	s.cron = c
	s.logger.WithField("schedule", schedule).Info("Dataset auto-refresh scheduled")
	return nil
}

// Close stops the auto-refresh scheduler if one is running.
func (s *Store) Close() {
	if s.cron != nil {
		s.cron.Stop()
	}
}
