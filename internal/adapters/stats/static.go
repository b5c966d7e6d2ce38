package stats

import (
	"context"
	"fmt"
	"sync"

	"github.com/mgrady/gridiron/internal/domain/power"
	"github.com/mgrady/gridiron/internal/domain/types"
)

// StaticProvider implements Provider from in-memory fixtures. Used by tests
// and the season simulator; safe for concurrent use.
type StaticProvider struct {
	mu        sync.RWMutex
	standings map[types.Season][]types.TeamRecord
	schedules map[scheduleKey][]types.Game
	results   map[types.GameID]types.GameResult
	records   map[types.Season][]power.TeamSeasonRecord
	known     map[types.GameID]struct{}
}

type scheduleKey struct {
	season types.Season
	week   types.Week
}

// StaticOption seeds fixture data into a StaticProvider.
type StaticOption func(*StaticProvider)

// WithStandings seeds standings for a season.
func WithStandings(season types.Season, rows []types.TeamRecord) StaticOption {
	return func(p *StaticProvider) {
		p.standings[season] = append([]types.TeamRecord(nil), rows...)
	}
}

// WithSchedule seeds a week's games.
func WithSchedule(season types.Season, week types.Week, games []types.Game) StaticOption {
	return func(p *StaticProvider) {
		p.schedules[scheduleKey{season, week}] = append([]types.Game(nil), games...)
		for _, g := range games {
			p.known[g.ID] = struct{}{}
		}
	}
}

// WithTeamRecords seeds per-team season game logs.
func WithTeamRecords(season types.Season, recs []power.TeamSeasonRecord) StaticOption {
	return func(p *StaticProvider) {
		p.records[season] = append([]power.TeamSeasonRecord(nil), recs...)
	}
}

// NewStaticProvider creates a fixture-backed Provider.
func NewStaticProvider(opts ...StaticOption) *StaticProvider {
	p := &StaticProvider{
		standings: make(map[types.Season][]types.TeamRecord),
		schedules: make(map[scheduleKey][]types.Game),
		results:   make(map[types.GameID]types.GameResult),
		records:   make(map[types.Season][]power.TeamSeasonRecord),
		known:     make(map[types.GameID]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetResult records a final result, making it visible to GameResult.
func (p *StaticProvider) SetResult(res types.GameResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results[res.GameID] = res
	p.known[res.GameID] = struct{}{}
}

// SetSchedule replaces a week's games after construction.
func (p *StaticProvider) SetSchedule(season types.Season, week types.Week, games []types.Game) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.schedules[scheduleKey{season, week}] = append([]types.Game(nil), games...)
	for _, g := range games {
		p.known[g.ID] = struct{}{}
	}
}

// SetStandings replaces a season's standings after construction.
func (p *StaticProvider) SetStandings(season types.Season, rows []types.TeamRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.standings[season] = append([]types.TeamRecord(nil), rows...)
}

// SetTeamRecords replaces a season's team game logs after construction.
func (p *StaticProvider) SetTeamRecords(season types.Season, recs []power.TeamSeasonRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records[season] = append([]power.TeamSeasonRecord(nil), recs...)
}

func (p *StaticProvider) Standings(_ context.Context, season types.Season) ([]types.TeamRecord, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]types.TeamRecord(nil), p.standings[season]...), nil
}

func (p *StaticProvider) WeekSchedule(_ context.Context, season types.Season, week types.Week) ([]types.Game, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]types.Game(nil), p.schedules[scheduleKey{season, week}]...), nil
}

func (p *StaticProvider) GameResult(_ context.Context, gameID types.GameID) (types.GameResult, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if res, ok := p.results[gameID]; ok {
		return res, nil
	}
	if _, ok := p.known[gameID]; ok {
		return types.GameResult{}, fmt.Errorf("%w: %s", ErrNoResult, gameID)
	}
	return types.GameResult{}, fmt.Errorf("%w: %s", ErrUnknownGame, gameID)
}

func (p *StaticProvider) TeamSeasonRecords(_ context.Context, season types.Season) ([]power.TeamSeasonRecord, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]power.TeamSeasonRecord(nil), p.records[season]...), nil
}
