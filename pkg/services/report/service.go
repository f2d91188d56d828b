package report

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/rtao-god/solsignal-reports/pkg/adapters"
	"github.com/rtao-god/solsignal-reports/pkg/models/domain"
	"github.com/rtao-god/solsignal-reports/pkg/services/sections"
	"github.com/rtao-god/solsignal-reports/pkg/store/duckdb/snapshot"
)

// Source fetches raw report documents from the report backend.
type Source interface {
	FetchReport(ctx context.Context, endpoint string) (*domain.ReportDocument, error)
}

type Service interface {
	Kinds() []KindProfile
	GetReport(ctx context.Context, kind string) (*domain.ReportDocument, error)
	BuildView(ctx context.Context, kind string, query domain.ViewQuery) (*domain.ReportView, error)
	Table(ctx context.Context, kind string, query domain.ViewQuery, index int, sort TableSort) (*domain.TableSection, error)
	Refresh(ctx context.Context, kinds ...string) (map[string]error, error)
}

// TableSort is an optional row ordering for a single table.
type TableSort struct {
	Column    string
	Direction sections.SortDirection
}

type Options struct {
	Registry Registry
	Source   Source
	// Snapshots is optional. Without it there is no fallback on upstream failure.
	Snapshots     snapshot.Store
	KeepSnapshots int
	// CacheTTL is how long a fetched document serves reads. Zero disables the cache.
	CacheTTL    time.Duration
	Metrics     *Metrics
	Concurrency int
	Now         func() time.Time
}

type cachedReport struct {
	doc       *domain.ReportDocument
	fetchedAt time.Time
}

type service struct {
	registry    Registry
	source      Source
	snapshots   snapshot.Store
	keep        int
	cacheTTL    time.Duration
	metrics     *Metrics
	concurrency int
	now         func() time.Time

	mu     sync.Mutex
	cache  map[string]cachedReport
	flight singleflight.Group
}

func NewService(opts Options) (Service, error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("report source is nil")
	}
	if opts.Registry == nil {
		opts.Registry = NewDefaultRegistry()
	}
	if opts.Metrics == nil {
		return nil, fmt.Errorf("metrics are nil")
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &service{
		registry:    opts.Registry,
		source:      opts.Source,
		snapshots:   opts.Snapshots,
		keep:        opts.KeepSnapshots,
		cacheTTL:    opts.CacheTTL,
		metrics:     opts.Metrics,
		concurrency: opts.Concurrency,
		now:         opts.Now,
		cache:       make(map[string]cachedReport),
	}, nil
}

func (s *service) Kinds() []KindProfile {
	return s.registry.List()
}

// GetReport returns the latest document of a kind. Documents fetched within
// the cache TTL are reused; concurrent misses share one upstream call. When
// the backend fails the newest stored snapshot is served instead.
func (s *service) GetReport(ctx context.Context, kind string) (*domain.ReportDocument, error) {
	profile, err := s.registry.Get(kind)
	if err != nil {
		return nil, err
	}

	if doc, ok := s.cached(kind); ok {
		return doc, nil
	}

	v, fetchErr, _ := s.flight.Do(kind, func() (any, error) {
		return s.fetch(ctx, profile)
	})
	if fetchErr == nil {
		return v.(*domain.ReportDocument), nil
	}

	logger := zerolog.Ctx(ctx).With().Str("kind", kind).Logger()
	if s.snapshots == nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, fetchErr)
	}

	snap, err := s.snapshots.Latest(ctx, kind)
	if err != nil {
		if !errors.Is(err, snapshot.ErrNotFound) {
			logger.Error().Err(err).Msg("failed to load snapshot")
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, fetchErr)
	}

	doc, err := adapters.MapSnapshotToDomainReport(snap)
	if err != nil {
		logger.Error().Err(err).Str("snapshot", snap.ID).Msg("stored snapshot is unreadable")
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, fetchErr)
	}

	s.metrics.SnapshotFallbacks.WithLabelValues(kind).Inc()
	logger.Warn().Err(fetchErr).
		Str("snapshot", snap.ID).
		Time("fetched_at", snap.FetchedAt).
		Msg("upstream unavailable, serving stored snapshot")
	return doc, nil
}

func (s *service) fetch(ctx context.Context, profile KindProfile) (*domain.ReportDocument, error) {
	started := s.now()
	doc, err := s.source.FetchReport(ctx, profile.Endpoint)
	s.metrics.UpstreamFetch.WithLabelValues(profile.Kind).Observe(s.now().Sub(started).Seconds())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch report %s: %w", profile.Kind, err)
	}
	if doc.Kind == "" {
		doc.Kind = profile.Kind
	}

	if s.snapshots != nil {
		if err := s.store(ctx, doc); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("kind", profile.Kind).Msg("failed to store snapshot")
		}
	}
	s.remember(profile.Kind, doc)
	return doc, nil
}

func (s *service) cached(kind string) (*domain.ReportDocument, bool) {
	if s.cacheTTL <= 0 {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.cache[kind]
	if !ok || s.now().Sub(entry.fetchedAt) >= s.cacheTTL {
		return nil, false
	}
	return entry.doc, true
}

func (s *service) remember(kind string, doc *domain.ReportDocument) {
	if s.cacheTTL <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[kind] = cachedReport{doc: doc, fetchedAt: s.now()}
}

func (s *service) store(ctx context.Context, doc *domain.ReportDocument) error {
	snap, err := adapters.MapDomainReportToSnapshot(doc, s.now())
	if err != nil {
		return err
	}
	if err := s.snapshots.Save(ctx, snap); err != nil {
		return err
	}
	if s.keep > 0 {
		if _, err := s.snapshots.Prune(ctx, doc.Kind, s.keep); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) BuildView(ctx context.Context, kind string, query domain.ViewQuery) (*domain.ReportView, error) {
	view, err := s.buildView(ctx, kind, query)
	s.metrics.ReportViews.WithLabelValues(kind, resultOf(err)).Inc()
	if errors.Is(err, sections.ErrContractViolation) {
		s.metrics.ContractViolations.WithLabelValues(kind).Inc()
		zerolog.Ctx(ctx).Error().Err(err).Str("kind", kind).Msg("report rejected by view validation")
	}
	return view, err
}

func (s *service) buildView(ctx context.Context, kind string, query domain.ViewQuery) (*domain.ReportView, error) {
	profile, err := s.registry.Get(kind)
	if err != nil {
		return nil, err
	}

	doc, err := s.GetReport(ctx, kind)
	if err != nil {
		return nil, err
	}

	return Project(profile, doc, query)
}

func (s *service) Table(ctx context.Context, kind string, query domain.ViewQuery, index int, sort TableSort) (*domain.TableSection, error) {
	view, err := s.BuildView(ctx, kind, query)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(view.Tables) {
		return nil, fmt.Errorf("table %d of %d: %w", index, len(view.Tables), ErrTableNotFound)
	}

	table := view.Tables[index]
	if sort.Column == "" {
		return table, nil
	}
	if sort.Direction == "" {
		sort.Direction = sections.SortAsc
	}
	return sections.SortRows(table, sort.Column, sort.Direction)
}

// Refresh fetches the given kinds (all registered kinds when none are given)
// concurrently, bypassing the cache, and stores snapshots. Per-kind failures are returned in the map;
// the error is only set when the context is cancelled or a kind is unknown.
func (s *service) Refresh(ctx context.Context, kinds ...string) (map[string]error, error) {
	profiles := make([]KindProfile, 0, len(kinds))
	if len(kinds) == 0 {
		profiles = s.registry.List()
	}
	for _, k := range kinds {
		p, err := s.registry.Get(k)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}

	results := make([]error, len(profiles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, p := range profiles {
		g.Go(func() error {
			_, err := s.fetch(gctx, p)
			results[i] = err
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("refresh cancelled: %w", err)
	}

	failures := make(map[string]error)
	for i, p := range profiles {
		if results[i] != nil {
			failures[p.Kind] = results[i]
		}
	}
	return failures, nil
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, sections.ErrContractViolation):
		return ResultContractViolation
	case errors.Is(err, ErrUnknownKind):
		return ResultNotFound
	case errors.Is(err, ErrUnavailable):
		return ResultUnavailable
	case errors.Is(err, sections.ErrUnknownMode), errors.Is(err, ErrModeNotSupported), errors.Is(err, ErrUnknownGroup):
		return ResultBadRequest
	default:
		return ResultError
	}
}
