package contest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mgrady/gridiron/internal/domain/types"
	"github.com/mgrady/gridiron/pkg/logger"
	"github.com/mgrady/gridiron/pkg/metrics"
)

// BaselineSource computes the system's baseline picks a new contest is
// seeded with. Wired to the prediction pipeline by the application layer.
type BaselineSource interface {
	Baseline(ctx context.Context, key types.ContestKey) ([]BaselinePick, error)
}

// Manager drives the contest lifecycle against a Store.
type Manager struct {
	store    Store
	baseline BaselineSource
	log      logger.Logger
	now      func() time.Time
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithClock overrides the manager's clock. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a Manager with configuration options.
func NewManager(store Store, baseline BaselineSource, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		baseline: baseline,
		log:      noopLogger{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Seed returns the contest for key, creating it with baseline picks when
// none exists. Idempotent: an existing contest is returned unchanged. The
// second return reports whether this call created the contest.
func (m *Manager) Seed(ctx context.Context, key types.ContestKey) (*Contest, bool, error) {
	if err := key.Validate(); err != nil {
		return nil, false, err
	}

	c, err := m.store.GetContest(ctx, key)
	switch {
	case err == nil:
		return c, false, nil
	case !errors.Is(err, ErrNotFound):
		return nil, false, fmt.Errorf("seed contest %s: %w", key, err)
	}

	baseline, err := m.baseline.Baseline(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("compute baseline for %s: %w", key, err)
	}

	c = &Contest{Key: key, Baseline: baseline, CreatedAt: m.now().UTC()}
	if err := m.store.CreateContest(ctx, c); err != nil {
		if errors.Is(err, ErrExists) {
			// Lost a create race; the winner's contest is authoritative.
			existing, getErr := m.store.GetContest(ctx, key)
			if getErr != nil {
				return nil, false, fmt.Errorf("reload contest %s: %w", key, getErr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("create contest %s: %w", key, err)
	}

	metrics.RecordContestSeeded()
	m.log.Info(ctx, "contest seeded",
		logger.String("contest", key.String()),
		logger.Int("baseline_games", len(baseline)))
	return c, true, nil
}

// SubmitResult reports the outcome of a pick submission.
type SubmitResult struct {
	Accepted int   `json:"accepted"`
	State    State `json:"state"`
}

// SubmitPicks records a member's picks, one row per game, merging with the
// member's existing picks and with other members' concurrent submissions.
// Rejected with ErrLocked once the contest has left OPEN.
func (m *Manager) SubmitPicks(ctx context.Context, key types.ContestKey, member types.MemberID, displayName string, picks map[types.GameID]types.TeamID) (SubmitResult, error) {
	if err := key.Validate(); err != nil {
		return SubmitResult{}, err
	}
	if err := types.ValidateMember(member); err != nil {
		return SubmitResult{}, err
	}
	if len(picks) == 0 {
		return SubmitResult{}, ErrNoPicks
	}

	// First access creates the contest.
	c, _, err := m.Seed(ctx, key)
	if err != nil {
		return SubmitResult{}, err
	}

	if state := c.State(); state != StateOpen {
		metrics.RecordPickRejectedLocked()
		return SubmitResult{State: state}, fmt.Errorf("%w: %s", ErrLocked, key)
	}
	for gameID := range picks {
		if !c.HasGame(gameID) {
			return SubmitResult{}, fmt.Errorf("%w: %s", ErrUnknownGame, gameID)
		}
	}

	// Deterministic write order keeps retries and logs stable.
	gameIDs := make([]types.GameID, 0, len(picks))
	for gameID := range picks {
		gameIDs = append(gameIDs, gameID)
	}
	sort.Slice(gameIDs, func(i, j int) bool { return gameIDs[i] < gameIDs[j] })

	now := m.now().UTC()
	for _, gameID := range gameIDs {
		p := Pick{
			Member:      member,
			DisplayName: displayName,
			GameID:      gameID,
			Winner:      picks[gameID],
			SubmittedAt: now,
		}
		if err := m.store.UpsertPick(ctx, key, p); err != nil {
			return SubmitResult{}, fmt.Errorf("save pick %s/%s: %w", member, gameID, err)
		}
	}

	metrics.RecordPickSubmitted(len(gameIDs))
	m.log.Info(ctx, "picks submitted",
		logger.String("contest", key.String()),
		logger.String("member", string(member)),
		logger.Int("picks", len(gameIDs)))
	return SubmitResult{Accepted: len(gameIDs), State: StateOpen}, nil
}

// LockResult reports the outcome of a lock attempt.
type LockResult struct {
	AlreadyLocked bool `json:"already_locked"`
	Lock          Lock `json:"lock"`
}

// LockManual locks the contest on behalf of an admin actor.
func (m *Manager) LockManual(ctx context.Context, key types.ContestKey, actor string) (LockResult, error) {
	return m.lock(ctx, key, Lock{Trigger: LockTriggerManual, Actor: actor})
}

// LockBroadcast applies the implicit lock on a live-broadcast start. Safe to
// call repeatedly: duplicate deliveries of the same signal are no-ops.
func (m *Manager) LockBroadcast(ctx context.Context, key types.ContestKey) (LockResult, error) {
	return m.lock(ctx, key, Lock{Trigger: LockTriggerBroadcast})
}

func (m *Manager) lock(ctx context.Context, key types.ContestKey, l Lock) (LockResult, error) {
	if err := key.Validate(); err != nil {
		return LockResult{}, err
	}
	l.At = m.now().UTC()

	locked, err := m.store.SetLock(ctx, key, l)
	if err != nil {
		return LockResult{}, fmt.Errorf("lock contest %s: %w", key, err)
	}
	if !locked {
		c, getErr := m.store.GetContest(ctx, key)
		if getErr != nil {
			return LockResult{}, fmt.Errorf("reload lock for %s: %w", key, getErr)
		}
		return LockResult{AlreadyLocked: true, Lock: *c.Lock}, nil
	}

	metrics.RecordContestLocked(string(l.Trigger))
	m.log.Info(ctx, "contest locked",
		logger.String("contest", key.String()),
		logger.String("trigger", string(l.Trigger)),
		logger.String("actor", l.Actor))
	return LockResult{Lock: l}, nil
}

// Unlock clears the lock marker, reopening the contest for picks. Rejected
// with ErrScored once the contest has been scored.
func (m *Manager) Unlock(ctx context.Context, key types.ContestKey) error {
	if err := key.Validate(); err != nil {
		return err
	}
	c, err := m.store.GetContest(ctx, key)
	if err != nil {
		return fmt.Errorf("unlock contest %s: %w", key, err)
	}
	if c.ScoredAt != nil {
		return fmt.Errorf("%w: %s", ErrScored, key)
	}
	if err := m.store.ClearLock(ctx, key); err != nil {
		return fmt.Errorf("unlock contest %s: %w", key, err)
	}
	m.log.Info(ctx, "contest unlocked", logger.String("contest", key.String()))
	return nil
}

// SaveResults attaches authoritative per-game outcomes. Does not score.
// Rejected with ErrScored once the contest has been scored.
func (m *Manager) SaveResults(ctx context.Context, key types.ContestKey, results []types.GameResult) error {
	if err := key.Validate(); err != nil {
		return err
	}
	c, err := m.store.GetContest(ctx, key)
	if err != nil {
		return fmt.Errorf("save results for %s: %w", key, err)
	}
	if c.ScoredAt != nil {
		return fmt.Errorf("%w: %s", ErrScored, key)
	}
	for _, res := range results {
		if !c.HasGame(res.GameID) {
			return fmt.Errorf("%w: %s", ErrUnknownGame, res.GameID)
		}
	}
	if err := m.store.SaveResults(ctx, key, results); err != nil {
		return fmt.Errorf("save results for %s: %w", key, err)
	}
	m.log.Info(ctx, "results saved",
		logger.String("contest", key.String()),
		logger.Int("games", len(results)))
	return nil
}

// ScoreOutcome describes what a scoring invocation did.
type ScoreOutcome string

const (
	// OutcomeScored means this invocation scored the contest.
	OutcomeScored ScoreOutcome = "scored"
	// OutcomeAlreadyScored means another invocation scored it first.
	OutcomeAlreadyScored ScoreOutcome = "already_scored"
	// OutcomeNoResults means no results are saved yet; benign no-op.
	OutcomeNoResults ScoreOutcome = "no_results"
	// OutcomeNoContest means no contest exists for the key; benign no-op.
	OutcomeNoContest ScoreOutcome = "no_contest"
)

// ScoreResult reports the outcome of a scoring invocation.
type ScoreResult struct {
	Outcome       ScoreOutcome `json:"outcome"`
	MembersScored int          `json:"members_scored"`
}

// Score applies saved results to member season stats, effectively at most
// once: the scored marker is flipped with an atomic check-and-set, and only
// the winner of that race applies deltas. Missing contest or results are
// benign no-ops. Per-member deltas run in parallel; each is itself an
// atomic increment.
func (m *Manager) Score(ctx context.Context, key types.ContestKey) (ScoreResult, error) {
	if err := key.Validate(); err != nil {
		return ScoreResult{}, err
	}

	c, err := m.store.GetContest(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			m.log.Info(ctx, "nothing to score: no contest", logger.String("contest", key.String()))
			return ScoreResult{Outcome: OutcomeNoContest}, nil
		}
		return ScoreResult{}, fmt.Errorf("score contest %s: %w", key, err)
	}
	if len(c.Results) == 0 {
		m.log.Info(ctx, "nothing to score: no results", logger.String("contest", key.String()))
		return ScoreResult{Outcome: OutcomeNoResults}, nil
	}
	if c.ScoredAt != nil {
		metrics.RecordScoringDuplicate()
		return ScoreResult{Outcome: OutcomeAlreadyScored}, nil
	}

	won, err := m.store.MarkScored(ctx, key, m.now().UTC())
	if err != nil {
		return ScoreResult{}, fmt.Errorf("mark scored %s: %w", key, err)
	}
	if !won {
		metrics.RecordScoringDuplicate()
		m.log.Info(ctx, "scoring race lost; skipping", logger.String("contest", key.String()))
		return ScoreResult{Outcome: OutcomeAlreadyScored}, nil
	}

	winners := make(map[types.GameID]types.TeamID, len(c.Results))
	for _, res := range c.Results {
		winners[res.GameID] = res.Winner
	}

	type memberLine struct {
		displayName string
		line        WeekLine
	}
	lines := make(map[types.MemberID]*memberLine)
	for _, p := range c.Picks {
		actual, ok := winners[p.GameID]
		if !ok {
			// No result for this game; it contributes nothing.
			continue
		}
		ml := lines[p.Member]
		if ml == nil {
			ml = &memberLine{displayName: p.DisplayName, line: WeekLine{Week: key.Week}}
			lines[p.Member] = ml
		}
		ml.line.TotalPicks++
		if p.Winner == actual {
			ml.line.CorrectPicks++
		}
	}

	// Members own disjoint season rows, so their deltas can run in parallel.
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		applyErr error
	)
	for member, ml := range lines {
		wg.Add(1)
		go func(member types.MemberID, ml *memberLine) {
			defer wg.Done()
			if err := m.store.AddSeasonDelta(ctx, key, member, ml.displayName, ml.line); err != nil {
				mu.Lock()
				applyErr = errors.Join(applyErr, fmt.Errorf("apply delta for %s: %w", member, err))
				mu.Unlock()
			}
		}(member, ml)
	}
	wg.Wait()

	if applyErr != nil {
		metrics.RecordScoringError()
		return ScoreResult{Outcome: OutcomeScored}, fmt.Errorf("score contest %s: %w", key, applyErr)
	}

	metrics.RecordContestScored()
	m.log.Info(ctx, "contest scored",
		logger.String("contest", key.String()),
		logger.Int("members", len(lines)))
	return ScoreResult{Outcome: OutcomeScored, MembersScored: len(lines)}, nil
}

// Leaderboard returns season stats ordered by accuracy desc, then total
// picks desc, then member id asc.
func (m *Manager) Leaderboard(ctx context.Context, guild types.GuildID, league types.LeagueID, season types.Season) ([]MemberSeasonStats, error) {
	if err := season.Validate(); err != nil {
		return nil, err
	}
	rows, err := m.store.SeasonStats(ctx, guild, league, season)
	if err != nil {
		return nil, fmt.Errorf("leaderboard %s/%s/%d: %w", guild, league, season, err)
	}
	for i := range rows {
		rows[i].ComputeAccuracy()
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Accuracy != rows[j].Accuracy {
			return rows[i].Accuracy > rows[j].Accuracy
		}
		if rows[i].TotalPicks != rows[j].TotalPicks {
			return rows[i].TotalPicks > rows[j].TotalPicks
		}
		return rows[i].Member < rows[j].Member
	})
	return rows, nil
}

// IsLocked reports whether the contest carries a lock marker. A missing
// contest reads as unlocked.
func (m *Manager) IsLocked(ctx context.Context, key types.ContestKey) (bool, error) {
	if err := key.Validate(); err != nil {
		return false, err
	}
	c, err := m.store.GetContest(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("lock query %s: %w", key, err)
	}
	return c.Lock != nil, nil
}

// noopLogger satisfies logger.Logger when no logger is configured.
type noopLogger struct{}

func (noopLogger) Debug(context.Context, string, ...logger.Field) {}
func (noopLogger) Info(context.Context, string, ...logger.Field)  {}
func (noopLogger) Warn(context.Context, string, ...logger.Field)  {}
func (noopLogger) Error(context.Context, string, ...logger.Field) {}
func (n noopLogger) Named(string) logger.Logger                   { return n }
