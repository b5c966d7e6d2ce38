// Package repository provides contest.Store implementations: an in-memory
// store for tests and simulation, and a Postgres store for production.
package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mgrady/gridiron/internal/domain/contest"
	"github.com/mgrady/gridiron/internal/domain/types"
	"github.com/mgrady/gridiron/pkg/metrics"
)

// MemStore implements contest.Store in memory. Contest state does not
// survive restarts; production uses GormStore. Safe for concurrent use: the
// lock/scored markers flip under one mutex-held check-and-set, and picks are
// keyed per (member, game) so concurrent submitters never clobber each
// other.
type MemStore struct {
	mu       sync.Mutex
	contests map[types.ContestKey]*memContest
	seasons  map[seasonKey]*contest.MemberSeasonStats
}

type memContest struct {
	baseline  []contest.BaselinePick
	picks     map[pickKey]contest.Pick
	results   []types.GameResult
	lock      *contest.Lock
	scoredAt  *time.Time
	createdAt time.Time
}

type pickKey struct {
	member types.MemberID
	game   types.GameID
}

type seasonKey struct {
	guild  types.GuildID
	league types.LeagueID
	season types.Season
	member types.MemberID
}

var _ contest.Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		contests: make(map[types.ContestKey]*memContest),
		seasons:  make(map[seasonKey]*contest.MemberSeasonStats),
	}
}

func (s *MemStore) GetContest(_ context.Context, key types.ContestKey) (*contest.Contest, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds())) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	mc, ok := s.contests[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", contest.ErrNotFound, key)
	}
	return mc.snapshot(key), nil
}

func (s *MemStore) CreateContest(_ context.Context, c *contest.Contest) error {
	start := time.Now()
	defer func() { metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds())) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contests[c.Key]; ok {
		return fmt.Errorf("%w: %s", contest.ErrExists, c.Key)
	}
	mc := &memContest{
		baseline:  append([]contest.BaselinePick(nil), c.Baseline...),
		picks:     make(map[pickKey]contest.Pick),
		createdAt: c.CreatedAt,
	}
	s.contests[c.Key] = mc
	return nil
}

func (s *MemStore) UpsertPick(_ context.Context, key types.ContestKey, p contest.Pick) error {
	start := time.Now()
	defer func() { metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds())) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	mc, ok := s.contests[key]
	if !ok {
		return fmt.Errorf("%w: %s", contest.ErrNotFound, key)
	}
	mc.picks[pickKey{member: p.Member, game: p.GameID}] = p
	return nil
}

func (s *MemStore) SetLock(_ context.Context, key types.ContestKey, l contest.Lock) (bool, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds())) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	mc, ok := s.contests[key]
	if !ok {
		return false, fmt.Errorf("%w: %s", contest.ErrNotFound, key)
	}
	if mc.lock != nil {
		return false, nil
	}
	mc.lock = &l
	return true, nil
}

func (s *MemStore) ClearLock(_ context.Context, key types.ContestKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mc, ok := s.contests[key]
	if !ok {
		return fmt.Errorf("%w: %s", contest.ErrNotFound, key)
	}
	mc.lock = nil
	return nil
}

func (s *MemStore) SaveResults(_ context.Context, key types.ContestKey, results []types.GameResult) error {
	start := time.Now()
	defer func() { metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds())) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	mc, ok := s.contests[key]
	if !ok {
		return fmt.Errorf("%w: %s", contest.ErrNotFound, key)
	}
	mc.results = append([]types.GameResult(nil), results...)
	return nil
}

func (s *MemStore) MarkScored(_ context.Context, key types.ContestKey, at time.Time) (bool, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds())) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	mc, ok := s.contests[key]
	if !ok {
		return false, fmt.Errorf("%w: %s", contest.ErrNotFound, key)
	}
	if mc.scoredAt != nil {
		return false, nil
	}
	mc.scoredAt = &at
	return true, nil
}

func (s *MemStore) AddSeasonDelta(_ context.Context, key types.ContestKey, member types.MemberID, displayName string, line contest.WeekLine) error {
	start := time.Now()
	defer func() { metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds())) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	sk := seasonKey{guild: key.Guild, league: key.League, season: key.Season, member: member}
	row, ok := s.seasons[sk]
	if !ok {
		row = &contest.MemberSeasonStats{
			Guild:  key.Guild,
			League: key.League,
			Season: key.Season,
			Member: member,
		}
		s.seasons[sk] = row
	}
	row.DisplayName = displayName
	row.TotalPicks += line.TotalPicks
	row.CorrectPicks += line.CorrectPicks
	row.Weeks = append(row.Weeks, line)
	return nil
}

func (s *MemStore) SeasonStats(_ context.Context, guild types.GuildID, league types.LeagueID, season types.Season) ([]contest.MemberSeasonStats, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds())) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []contest.MemberSeasonStats
	for sk, row := range s.seasons {
		if sk.guild != guild || sk.league != league || sk.season != season {
			continue
		}
		out := *row
		out.Weeks = append([]contest.WeekLine(nil), row.Weeks...)
		rows = append(rows, out)
	}
	return rows, nil
}

// snapshot copies the mutable contest state into a detached aggregate.
func (mc *memContest) snapshot(key types.ContestKey) *contest.Contest {
	c := &contest.Contest{
		Key:       key,
		Baseline:  append([]contest.BaselinePick(nil), mc.baseline...),
		Results:   append([]types.GameResult(nil), mc.results...),
		CreatedAt: mc.createdAt,
	}
	for _, p := range mc.picks {
		c.Picks = append(c.Picks, p)
	}
	// Map iteration order is random; keep snapshots deterministic.
	sortPicks(c.Picks)
	if mc.lock != nil {
		l := *mc.lock
		c.Lock = &l
	}
	if mc.scoredAt != nil {
		at := *mc.scoredAt
		c.ScoredAt = &at
	}
	return c
}

func sortPicks(picks []contest.Pick) {
	sort.Slice(picks, func(i, j int) bool {
		if picks[i].Member != picks[j].Member {
			return picks[i].Member < picks[j].Member
		}
		return picks[i].GameID < picks[j].GameID
	})
}
