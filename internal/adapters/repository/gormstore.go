package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mgrady/gridiron/internal/domain/contest"
	"github.com/mgrady/gridiron/internal/domain/types"
	"github.com/mgrady/gridiron/pkg/metrics"
)

// GormStore implements contest.Store on Postgres. Atomicity notes:
//   - UpsertPick is a single INSERT ... ON CONFLICT touching one
//     (contest, member, game) row, so concurrent submitters cannot lose
//     each other's writes.
//   - SetLock and MarkScored are single conditional UPDATEs guarded by
//     "marker IS NULL"; RowsAffected tells the caller whether it won.
//   - AddSeasonDelta increments totals with an ON CONFLICT arithmetic
//     assignment, never a read-modify-write from the client.
type GormStore struct {
	db *gorm.DB
}

var _ contest.Store = (*GormStore)(nil)

// NewGormStore creates a Postgres-backed store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetContest(ctx context.Context, key types.ContestKey) (*contest.Contest, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds())) }()

	row, err := s.contestRow(ctx, key)
	if err != nil {
		return nil, err
	}

	c := &contest.Contest{Key: key, CreatedAt: row.CreatedAt, ScoredAt: row.ScoredAt}
	if row.LockedAt != nil {
		c.Lock = &contest.Lock{
			At:      *row.LockedAt,
			Trigger: contest.LockTrigger(row.LockTrigger),
			Actor:   row.LockActor,
		}
	}

	var baselines []BaselineRow
	if err := s.db.WithContext(ctx).Where("contest_id = ?", row.ID).Order("game_id").Find(&baselines).Error; err != nil {
		return nil, fmt.Errorf("load baseline for %s: %w", key, err)
	}
	for _, b := range baselines {
		c.Baseline = append(c.Baseline, contest.BaselinePick{
			GameID:      types.GameID(b.GameID),
			Winner:      types.TeamID(b.Winner),
			WinnerScore: b.WinnerScore,
			LoserScore:  b.LoserScore,
			Confidence:  b.Confidence,
			HomeRank:    b.HomeRank,
			AwayRank:    b.AwayRank,
			Reasoning:   b.Reasoning,
		})
	}

	var picks []PickRow
	if err := s.db.WithContext(ctx).Where("contest_id = ?", row.ID).Order("member_id, game_id").Find(&picks).Error; err != nil {
		return nil, fmt.Errorf("load picks for %s: %w", key, err)
	}
	for _, p := range picks {
		c.Picks = append(c.Picks, contest.Pick{
			Member:      types.MemberID(p.MemberID),
			DisplayName: p.DisplayName,
			GameID:      types.GameID(p.GameID),
			Winner:      types.TeamID(p.Winner),
			SubmittedAt: p.SubmittedAt,
		})
	}

	var results []ResultRow
	if err := s.db.WithContext(ctx).Where("contest_id = ?", row.ID).Order("game_id").Find(&results).Error; err != nil {
		return nil, fmt.Errorf("load results for %s: %w", key, err)
	}
	for _, r := range results {
		c.Results = append(c.Results, types.GameResult{
			GameID:    types.GameID(r.GameID),
			Winner:    types.TeamID(r.Winner),
			HomeScore: r.HomeScore,
			AwayScore: r.AwayScore,
		})
	}
	return c, nil
}

func (s *GormStore) CreateContest(ctx context.Context, c *contest.Contest) error {
	start := time.Now()
	defer func() { metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds())) }()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := ContestRow{
			Guild:     string(c.Key.Guild),
			League:    string(c.Key.League),
			Season:    int(c.Key.Season),
			Week:      int(c.Key.Week),
			CreatedAt: c.CreatedAt,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		for _, b := range c.Baseline {
			if err := tx.Create(&BaselineRow{
				ContestID:   row.ID,
				GameID:      string(b.GameID),
				Winner:      string(b.Winner),
				WinnerScore: b.WinnerScore,
				LoserScore:  b.LoserScore,
				Confidence:  b.Confidence,
				HomeRank:    b.HomeRank,
				AwayRank:    b.AwayRank,
				Reasoning:   b.Reasoning,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s", contest.ErrExists, c.Key)
		}
		return fmt.Errorf("create contest %s: %w", c.Key, err)
	}
	return nil
}

func (s *GormStore) UpsertPick(ctx context.Context, key types.ContestKey, p contest.Pick) error {
	start := time.Now()
	defer func() { metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds())) }()

	row, err := s.contestRow(ctx, key)
	if err != nil {
		return err
	}
	pick := PickRow{
		ContestID:   row.ID,
		MemberID:    string(p.Member),
		GameID:      string(p.GameID),
		DisplayName: p.DisplayName,
		Winner:      string(p.Winner),
		SubmittedAt: p.SubmittedAt,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "contest_id"}, {Name: "member_id"}, {Name: "game_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "winner", "submitted_at"}),
	}).Create(&pick).Error
	if err != nil {
		return fmt.Errorf("upsert pick %s/%s: %w", p.Member, p.GameID, err)
	}
	return nil
}

func (s *GormStore) SetLock(ctx context.Context, key types.ContestKey, l contest.Lock) (bool, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds())) }()

	res := s.db.WithContext(ctx).Model(&ContestRow{}).
		Where("guild = ? AND league = ? AND season = ? AND week = ? AND locked_at IS NULL",
			string(key.Guild), string(key.League), int(key.Season), int(key.Week)).
		Updates(map[string]any{
			"locked_at":    l.At,
			"lock_trigger": string(l.Trigger),
			"lock_actor":   l.Actor,
		})
	if res.Error != nil {
		return false, fmt.Errorf("lock contest %s: %w", key, res.Error)
	}
	if res.RowsAffected == 1 {
		return true, nil
	}
	// Distinguish "already locked" from "no such contest".
	if _, err := s.contestRow(ctx, key); err != nil {
		return false, err
	}
	return false, nil
}

func (s *GormStore) ClearLock(ctx context.Context, key types.ContestKey) error {
	res := s.db.WithContext(ctx).Model(&ContestRow{}).
		Where("guild = ? AND league = ? AND season = ? AND week = ?",
			string(key.Guild), string(key.League), int(key.Season), int(key.Week)).
		Updates(map[string]any{"locked_at": nil, "lock_trigger": "", "lock_actor": ""})
	if res.Error != nil {
		return fmt.Errorf("unlock contest %s: %w", key, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", contest.ErrNotFound, key)
	}
	return nil
}

func (s *GormStore) SaveResults(ctx context.Context, key types.ContestKey, results []types.GameResult) error {
	start := time.Now()
	defer func() { metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds())) }()

	row, err := s.contestRow(ctx, key)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, r := range results {
			res := ResultRow{
				ContestID: row.ID,
				GameID:    string(r.GameID),
				Winner:    string(r.Winner),
				HomeScore: r.HomeScore,
				AwayScore: r.AwayScore,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "contest_id"}, {Name: "game_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"winner", "home_score", "away_score"}),
			}).Create(&res).Error
			if err != nil {
				return fmt.Errorf("save result %s: %w", r.GameID, err)
			}
		}
		return nil
	})
}

func (s *GormStore) MarkScored(ctx context.Context, key types.ContestKey, at time.Time) (bool, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds())) }()

	// Single conditional UPDATE: the check and the set are one statement,
	// so at most one racing caller observes RowsAffected == 1.
	res := s.db.WithContext(ctx).Model(&ContestRow{}).
		Where("guild = ? AND league = ? AND season = ? AND week = ? AND scored_at IS NULL",
			string(key.Guild), string(key.League), int(key.Season), int(key.Week)).
		Update("scored_at", at)
	if res.Error != nil {
		return false, fmt.Errorf("mark scored %s: %w", key, res.Error)
	}
	if res.RowsAffected == 1 {
		return true, nil
	}
	if _, err := s.contestRow(ctx, key); err != nil {
		return false, err
	}
	return false, nil
}

func (s *GormStore) AddSeasonDelta(ctx context.Context, key types.ContestKey, member types.MemberID, displayName string, line contest.WeekLine) error {
	start := time.Now()
	defer func() { metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds())) }()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The week-line unique index makes re-applying the same week a
		// no-op for the breakdown rows.
		weekRow := WeekLineRow{
			Guild:        string(key.Guild),
			League:       string(key.League),
			Season:       int(key.Season),
			Member:       string(member),
			Week:         int(key.Week),
			TotalPicks:   line.TotalPicks,
			CorrectPicks: line.CorrectPicks,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "guild"}, {Name: "league"}, {Name: "season"}, {Name: "member"}, {Name: "week"},
			},
			DoNothing: true,
		}).Create(&weekRow)
		if res.Error != nil {
			return fmt.Errorf("record week line: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// Week already applied for this member.
			return nil
		}

		statsRow := SeasonStatsRow{
			Guild:        string(key.Guild),
			League:       string(key.League),
			Season:       int(key.Season),
			Member:       string(member),
			DisplayName:  displayName,
			TotalPicks:   line.TotalPicks,
			CorrectPicks: line.CorrectPicks,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "guild"}, {Name: "league"}, {Name: "season"}, {Name: "member"},
			},
			DoUpdates: clause.Assignments(map[string]any{
				"display_name":  displayName,
				"total_picks":   gorm.Expr("member_season_stats.total_picks + ?", line.TotalPicks),
				"correct_picks": gorm.Expr("member_season_stats.correct_picks + ?", line.CorrectPicks),
			}),
		}).Create(&statsRow).Error
		if err != nil {
			return fmt.Errorf("increment season stats: %w", err)
		}
		return nil
	})
}

func (s *GormStore) SeasonStats(ctx context.Context, guild types.GuildID, league types.LeagueID, season types.Season) ([]contest.MemberSeasonStats, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds())) }()

	var rows []SeasonStatsRow
	err := s.db.WithContext(ctx).
		Where("guild = ? AND league = ? AND season = ?", string(guild), string(league), int(season)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load season stats: %w", err)
	}

	var weekRows []WeekLineRow
	err = s.db.WithContext(ctx).
		Where("guild = ? AND league = ? AND season = ?", string(guild), string(league), int(season)).
		Order("member, week").
		Find(&weekRows).Error
	if err != nil {
		return nil, fmt.Errorf("load week lines: %w", err)
	}
	weeksByMember := make(map[string][]contest.WeekLine)
	for _, w := range weekRows {
		weeksByMember[w.Member] = append(weeksByMember[w.Member], contest.WeekLine{
			Week:         types.Week(w.Week),
			TotalPicks:   w.TotalPicks,
			CorrectPicks: w.CorrectPicks,
		})
	}

	out := make([]contest.MemberSeasonStats, 0, len(rows))
	for _, r := range rows {
		out = append(out, contest.MemberSeasonStats{
			Guild:        guild,
			League:       league,
			Season:       season,
			Member:       types.MemberID(r.Member),
			DisplayName:  r.DisplayName,
			TotalPicks:   r.TotalPicks,
			CorrectPicks: r.CorrectPicks,
			Weeks:        weeksByMember[r.Member],
		})
	}
	return out, nil
}

func (s *GormStore) contestRow(ctx context.Context, key types.ContestKey) (*ContestRow, error) {
	var row ContestRow
	err := s.db.WithContext(ctx).
		Where("guild = ? AND league = ? AND season = ? AND week = ?",
			string(key.Guild), string(key.League), int(key.Season), int(key.Week)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", contest.ErrNotFound, key)
		}
		return nil, fmt.Errorf("load contest %s: %w", key, err)
	}
	return &row, nil
}
