// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/mgrady/gridiron/internal/adapters/bus"
	"github.com/mgrady/gridiron/internal/adapters/repository"
	"github.com/mgrady/gridiron/internal/adapters/stats"
	"github.com/mgrady/gridiron/internal/domain/contest"
	"github.com/mgrady/gridiron/internal/domain/dedupe"
	"github.com/mgrady/gridiron/internal/domain/marquee"
	"github.com/mgrady/gridiron/internal/domain/power"
	"github.com/mgrady/gridiron/internal/domain/predict"
	"github.com/mgrady/gridiron/internal/domain/types"
	"github.com/mgrady/gridiron/pkg/logger"
	"github.com/mgrady/gridiron/pkg/metrics"
)

// Service implements the API dependencies for the season analytics and
// pick'em system. Contest lifecycle operations are served by the embedded
// manager once Start has run.
type Service struct {
	*contest.Manager

	mu sync.Mutex

	// Core components
	store     contest.Store
	provider  stats.Provider
	estimator *power.Estimator
	predictor *predict.Predictor
	selector  *marquee.Selector
	eventBus  bus.Bus
	deduper   dedupe.Deduper

	// Configuration
	dedupeSize int

	// State
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the contest store. Defaults to the in-memory store.
func WithStore(store contest.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithStatsProvider sets the league stats source.
func WithStatsProvider(p stats.Provider) Option {
	return func(s *Service) {
		if p != nil {
			s.provider = p
		}
	}
}

// WithEstimator sets the team strength estimator.
func WithEstimator(e *power.Estimator) Option {
	return func(s *Service) {
		if e != nil {
			s.estimator = e
		}
	}
}

// WithPredictor sets the outcome predictor.
func WithPredictor(p *predict.Predictor) Option {
	return func(s *Service) {
		if p != nil {
			s.predictor = p
		}
	}
}

// WithSelector sets the marquee game selector.
func WithSelector(sel *marquee.Selector) Option {
	return func(s *Service) {
		if sel != nil {
			s.selector = sel
		}
	}
}

// WithBus sets the broadcast notification bus.
func WithBus(b bus.Bus) Option {
	return func(s *Service) {
		if b != nil {
			s.eventBus = b
		}
	}
}

// WithDedupeSize sets the size of the broadcast deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dedupeSize: 10_000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the service components and begins consuming broadcast
// notifications.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting gridiron service...")

	if s.store == nil {
		s.store = repository.NewMemStore()
		s.logger.Info(ctx, "using in-memory store")
	}
	if s.provider == nil {
		s.provider = stats.NewStaticProvider()
	}
	if s.estimator == nil {
		s.estimator = power.NewEstimator()
	}
	if s.predictor == nil {
		s.predictor = predict.New()
	}
	if s.selector == nil {
		s.selector = marquee.New()
	}
	if s.eventBus == nil {
		s.eventBus = bus.NewInMemoryBus()
	}
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.Manager = contest.NewManager(s.store, s, contest.WithLogger(s.logger))

	consumeCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.wg.Add(1)
	go s.consumeBroadcasts(consumeCtx)

	s.started = true
	s.logger.Info(ctx, "gridiron service started",
		logger.Int("dedupeSize", s.dedupeSize))
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping gridiron service...")

	_ = s.eventBus.Close()
	s.cancel()
	s.wg.Wait()

	s.started = false
	s.logger.Info(context.Background(), "gridiron service stopped")
}

// consumeBroadcasts applies the implicit contest lock for each broadcast
// start notification. Delivery is at-least-once; redelivered message ids are
// dropped here so a retry storm cannot flip lock markers back and forth.
func (s *Service) consumeBroadcasts(ctx context.Context) {
	defer s.wg.Done()

	for ev := range s.eventBus.Subscribe(ctx) {
		if s.deduper.SeenAndRecord(ctx, ev.MessageID) {
			metrics.RecordBroadcastDuplicate()
			s.logger.Debug(ctx, "duplicate broadcast notification dropped",
				logger.String("messageID", ev.MessageID))
			continue
		}
		res, err := s.LockBroadcast(ctx, ev.Key())
		if err != nil {
			s.logger.Error(ctx, "broadcast lock failed",
				logger.String("contest", ev.Key().String()),
				logger.Error(err))
			continue
		}
		s.logger.Info(ctx, "broadcast lock applied",
			logger.String("contest", ev.Key().String()),
			logger.Bool("alreadyLocked", res.AlreadyLocked))
	}
}

// Baseline computes the system's picks for a new contest by running the
// prediction pipeline over the contest week's schedule.
func (s *Service) Baseline(ctx context.Context, key types.ContestKey) ([]contest.BaselinePick, error) {
	preds, err := s.PredictWeek(ctx, key.Season, key.Week)
	if err != nil {
		return nil, err
	}

	baseline := make([]contest.BaselinePick, len(preds))
	for i, p := range preds {
		baseline[i] = contest.BaselinePick{
			GameID:      p.GameID,
			Winner:      p.Winner,
			WinnerScore: p.WinnerScore,
			LoserScore:  p.LoserScore,
			Confidence:  p.Confidence,
			HomeRank:    p.HomeTeamPowerRank,
			AwayRank:    p.AwayTeamPowerRank,
			Reasoning:   p.Reasoning,
		}
	}
	return baseline, nil
}

// PowerRankings estimates team strength over the season played so far.
func (s *Service) PowerRankings(ctx context.Context, season types.Season) ([]power.Score, error) {
	records, err := s.provider.TeamSeasonRecords(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("season records %d: %w", season, err)
	}
	return s.estimator.Rankings(ctx, records), nil
}

// PredictWeek predicts every game on the week's schedule.
func (s *Service) PredictWeek(ctx context.Context, season types.Season, week types.Week) ([]predict.Prediction, error) {
	games, err := s.provider.WeekSchedule(ctx, season, week)
	if err != nil {
		return nil, fmt.Errorf("week schedule %d/%d: %w", season, week, err)
	}
	scores, err := s.PowerRankings(ctx, season)
	if err != nil {
		return nil, err
	}
	standings, err := s.provider.Standings(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("standings %d: %w", season, err)
	}
	return s.predictor.PredictWeek(ctx, games, scores, standings), nil
}

// MarqueeGame selects the game of the week.
func (s *Service) MarqueeGame(ctx context.Context, season types.Season, week types.Week) (marquee.Selection, error) {
	games, err := s.provider.WeekSchedule(ctx, season, week)
	if err != nil {
		return marquee.Selection{}, fmt.Errorf("week schedule %d/%d: %w", season, week, err)
	}
	preds, err := s.PredictWeek(ctx, season, week)
	if err != nil {
		return marquee.Selection{}, err
	}
	scores, err := s.PowerRankings(ctx, season)
	if err != nil {
		return marquee.Selection{}, err
	}
	standings, err := s.provider.Standings(ctx, season)
	if err != nil {
		return marquee.Selection{}, fmt.Errorf("standings %d: %w", season, err)
	}
	return s.selector.Select(ctx, games, preds, scores, standings)
}

// Publish forwards a broadcast start notification onto the service bus.
// Returns false on backpressure.
func (s *Service) Publish(ctx context.Context, ev bus.BroadcastStart) bool {
	return s.eventBus.Publish(ctx, ev)
}
