package repository

import "time"

// GORM row types backing the Postgres store. Picks are normalized to one
// row per (contest, member, game) so concurrent submitters write disjoint
// rows and no merge logic is needed.

// ContestRow is the contests table. The lock and scored markers live here;
// both flip via single-statement conditional updates.
type ContestRow struct {
	ID     uint   `gorm:"primaryKey"`
	Guild  string `gorm:"size:64;not null;uniqueIndex:idx_contest_key,priority:1"`
	League string `gorm:"size:64;not null;uniqueIndex:idx_contest_key,priority:2"`
	Season int    `gorm:"not null;uniqueIndex:idx_contest_key,priority:3"`
	Week   int    `gorm:"not null;uniqueIndex:idx_contest_key,priority:4"`

	LockedAt    *time.Time
	LockTrigger string `gorm:"size:16"`
	LockActor   string `gorm:"size:64"`
	ScoredAt    *time.Time

	CreatedAt time.Time
}

func (ContestRow) TableName() string { return "contests" }

// BaselineRow is one seeded baseline prediction.
type BaselineRow struct {
	ID        uint   `gorm:"primaryKey"`
	ContestID uint   `gorm:"not null;uniqueIndex:idx_baseline_game,priority:1"`
	GameID    string `gorm:"size:64;not null;uniqueIndex:idx_baseline_game,priority:2"`

	Winner      string `gorm:"size:64;not null"`
	WinnerScore int
	LoserScore  int
	Confidence  int
	HomeRank    int
	AwayRank    int
	Reasoning   string
}

func (BaselineRow) TableName() string { return "contest_baselines" }

// PickRow is one member's pick for one game.
type PickRow struct {
	ID        uint   `gorm:"primaryKey"`
	ContestID uint   `gorm:"not null;uniqueIndex:idx_pick,priority:1"`
	MemberID  string `gorm:"size:64;not null;uniqueIndex:idx_pick,priority:2"`
	GameID    string `gorm:"size:64;not null;uniqueIndex:idx_pick,priority:3"`

	DisplayName string `gorm:"size:128"`
	Winner      string `gorm:"size:64;not null"`
	SubmittedAt time.Time
}

func (PickRow) TableName() string { return "contest_picks" }

// ResultRow is one game's authoritative outcome.
type ResultRow struct {
	ID        uint   `gorm:"primaryKey"`
	ContestID uint   `gorm:"not null;uniqueIndex:idx_result_game,priority:1"`
	GameID    string `gorm:"size:64;not null;uniqueIndex:idx_result_game,priority:2"`

	Winner    string `gorm:"size:64;not null"`
	HomeScore int
	AwayScore int
}

func (ResultRow) TableName() string { return "contest_results" }

// SeasonStatsRow is a member's cumulative season totals. Scoring increments
// the totals in place; it never overwrites them.
type SeasonStatsRow struct {
	ID     uint   `gorm:"primaryKey"`
	Guild  string `gorm:"size:64;not null;uniqueIndex:idx_season_member,priority:1"`
	League string `gorm:"size:64;not null;uniqueIndex:idx_season_member,priority:2"`
	Season int    `gorm:"not null;uniqueIndex:idx_season_member,priority:3"`
	Member string `gorm:"size:64;not null;uniqueIndex:idx_season_member,priority:4"`

	DisplayName  string `gorm:"size:128"`
	TotalPicks   int
	CorrectPicks int
}

func (SeasonStatsRow) TableName() string { return "member_season_stats" }

// WeekLineRow is the per-week breakdown behind a season row. The unique
// index doubles as the idempotency constraint: a week's contribution can be
// recorded once per member.
type WeekLineRow struct {
	ID     uint   `gorm:"primaryKey"`
	Guild  string `gorm:"size:64;not null;uniqueIndex:idx_week_line,priority:1"`
	League string `gorm:"size:64;not null;uniqueIndex:idx_week_line,priority:2"`
	Season int    `gorm:"not null;uniqueIndex:idx_week_line,priority:3"`
	Member string `gorm:"size:64;not null;uniqueIndex:idx_week_line,priority:4"`
	Week   int    `gorm:"not null;uniqueIndex:idx_week_line,priority:5"`

	TotalPicks   int
	CorrectPicks int
}

func (WeekLineRow) TableName() string { return "member_week_stats" }
