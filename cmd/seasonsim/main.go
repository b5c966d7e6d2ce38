// Command seasonsim drives a full synthetic season through the service in
// process: power rankings, predictions, marquee selection, contest seeding,
// member picks, broadcast locks, results, and scoring. Deterministic for a
// given seed, so runs are comparable.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/mgrady/gridiron/internal/adapters/bus"
	"github.com/mgrady/gridiron/internal/adapters/repository"
	"github.com/mgrady/gridiron/internal/adapters/stats"
	app "github.com/mgrady/gridiron/internal/app"
	"github.com/mgrady/gridiron/internal/domain/contest"
	"github.com/mgrady/gridiron/internal/domain/power"
	"github.com/mgrady/gridiron/internal/domain/types"
	"github.com/mgrady/gridiron/pkg/logger"
)

// Default simulation parameters.
const (
	defaultSeason  = 2025
	defaultWeeks   = 6
	defaultTeams   = 8
	defaultMembers = 6
	defaultSeed    = 42

	lockWaitTimeout = 5 * time.Second
	lockPollEvery   = 10 * time.Millisecond

	// Probability that a member's pick follows the baseline prediction.
	followBaselineChance = 0.7

	maxWeeks = 23
	minTeams = 2
)

// teamPool supplies fictional franchise codes.
var teamPool = []types.TeamID{
	"AUS", "BER", "CAI", "DEL", "EDM", "FRA", "GLA", "HOU",
	"IND", "JAX", "KYO", "LIM", "MAD", "NAI", "OSA", "PER",
}

// simTeam carries one team's latent strength and running aggregates.
type simTeam struct {
	id       types.TeamID
	strength float64
	record   power.TeamSeasonRecord
	standing types.TeamRecord
}

type simulation struct {
	rng     *rand.Rand
	season  types.Season
	weeks   int
	teams   []*simTeam
	members []types.MemberID

	provider *stats.StaticProvider
	svc      *app.Service
}

func main() {
	var (
		season  = flag.Int("season", defaultSeason, "Season year to simulate")
		weeks   = flag.Int("weeks", defaultWeeks, "Number of weeks to simulate (1-23)")
		teams   = flag.Int("teams", defaultTeams, "Number of teams (even, 2-16)")
		members = flag.Int("members", defaultMembers, "Number of contest members")
		seed    = flag.Int64("seed", defaultSeed, "Random seed")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	_ = logger.SetLevelString("warn")

	if err := run(*season, *weeks, *teams, *members, *seed); err != nil {
		os.Stderr.WriteString("simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(season, weeks, teams, members int, seed int64) error {
	switch {
	case weeks < 1 || weeks > maxWeeks:
		return fmt.Errorf("weeks must be between 1 and %d", maxWeeks)
	case teams < minTeams || teams > len(teamPool):
		return fmt.Errorf("teams must be between %d and %d", minTeams, len(teamPool))
	case teams%2 != 0:
		return fmt.Errorf("teams must be even")
	case members < 1:
		return fmt.Errorf("members must be at least 1")
	}

	ctx := context.Background()
	sim := newSimulation(season, weeks, teams, members, seed)

	if err := sim.svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer sim.svc.Stop()

	fmt.Printf("simulating season %d: %d weeks, %d teams, %d members, seed %d\n\n",
		season, weeks, teams, members, seed)

	for w := 1; w <= weeks; w++ {
		if err := sim.playWeek(ctx, types.Week(w)); err != nil {
			return fmt.Errorf("week %d: %w", w, err)
		}
	}

	return sim.printLeaderboard(ctx)
}

func newSimulation(season, weeks, teams, members int, seed int64) *simulation {
	rng := rand.New(rand.NewSource(seed))

	sim := &simulation{
		rng:      rng,
		season:   types.Season(season),
		weeks:    weeks,
		provider: stats.NewStaticProvider(),
	}
	for i := 0; i < teams; i++ {
		id := teamPool[i]
		sim.teams = append(sim.teams, &simTeam{
			id:       id,
			strength: rng.Float64(),
			record:   power.TeamSeasonRecord{TeamID: id},
			standing: types.TeamRecord{TeamID: id},
		})
	}
	for i := 1; i <= members; i++ {
		sim.members = append(sim.members, types.MemberID(fmt.Sprintf("member-%d", i)))
	}

	sim.svc = app.New(
		app.WithStore(repository.NewMemStore()),
		app.WithStatsProvider(sim.provider),
	)
	return sim
}

func (sim *simulation) key(week types.Week) types.ContestKey {
	return types.ContestKey{Guild: "sim-guild", League: "sim-league", Season: sim.season, Week: week}
}

func (sim *simulation) playWeek(ctx context.Context, week types.Week) error {
	fmt.Printf("=== week %d ===\n", week)

	games := sim.scheduleWeek(week)
	sim.publishStats()

	key := sim.key(week)
	c, _, err := sim.svc.Seed(ctx, key)
	if err != nil {
		return fmt.Errorf("seed contest: %w", err)
	}
	for _, b := range c.Baseline {
		fmt.Printf("  prediction %s: %s %d-%d (%d%%)\n",
			b.GameID, b.Winner, b.WinnerScore, b.LoserScore, b.Confidence)
	}

	sel, err := sim.svc.MarqueeGame(ctx, sim.season, week)
	if err != nil {
		return fmt.Errorf("marquee: %w", err)
	}
	fmt.Printf("  game of the week: %s (%.1f)\n", sel.GameID, sel.CompositeScore)

	if err := sim.submitPicks(ctx, key, c.Baseline, games); err != nil {
		return err
	}
	if err := sim.broadcastLock(ctx, key); err != nil {
		return err
	}

	results := sim.playGames(games)
	if err := sim.svc.SaveResults(ctx, key, results); err != nil {
		return fmt.Errorf("save results: %w", err)
	}
	res, err := sim.svc.Score(ctx, key)
	if err != nil {
		return fmt.Errorf("score: %w", err)
	}
	fmt.Printf("  scored: %s, %d members\n\n", res.Outcome, res.MembersScored)
	return nil
}

// scheduleWeek pairs a shuffled team list into this week's slate.
func (sim *simulation) scheduleWeek(week types.Week) []types.Game {
	order := append([]*simTeam(nil), sim.teams...)
	sim.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	games := make([]types.Game, 0, len(order)/2)
	for i := 0; i+1 < len(order); i += 2 {
		games = append(games, types.Game{
			ID:         types.GameID(fmt.Sprintf("s%d-w%d-g%d", sim.season, week, i/2+1)),
			Season:     sim.season,
			Week:       week,
			Slot:       i/2 + 1,
			Home:       order[i].id,
			Away:       order[i+1].id,
			Divisional: sim.rng.Float64() < 0.25,
		})
	}
	sim.provider.SetSchedule(sim.season, week, games)
	return games
}

// publishStats pushes the running aggregates into the stats provider.
func (sim *simulation) publishStats() {
	records := make([]power.TeamSeasonRecord, len(sim.teams))
	standings := make([]types.TeamRecord, len(sim.teams))
	for i, t := range sim.teams {
		records[i] = t.record
		standings[i] = t.standing
	}
	sim.provider.SetTeamRecords(sim.season, records)
	sim.provider.SetStandings(sim.season, standings)
}

// submitPicks has each member pick every game, mostly following the baseline.
func (sim *simulation) submitPicks(ctx context.Context, key types.ContestKey, baseline []contest.BaselinePick, games []types.Game) error {
	byGame := make(map[types.GameID]types.TeamID, len(baseline))
	for _, b := range baseline {
		byGame[b.GameID] = b.Winner
	}

	for i, member := range sim.members {
		picks := make(map[types.GameID]types.TeamID, len(games))
		for _, g := range games {
			pick := byGame[g.ID]
			if sim.rng.Float64() >= followBaselineChance {
				if pick == g.Home {
					pick = g.Away
				} else {
					pick = g.Home
				}
			}
			picks[g.ID] = pick
		}
		display := fmt.Sprintf("Member %d", i+1)
		if _, err := sim.svc.SubmitPicks(ctx, key, member, display, picks); err != nil {
			return fmt.Errorf("submit picks for %s: %w", member, err)
		}
	}
	fmt.Printf("  picks submitted by %d members\n", len(sim.members))
	return nil
}

// broadcastLock publishes the broadcast start notification twice, imitating
// the at-least-once delivery of the real bus, and waits for the lock.
func (sim *simulation) broadcastLock(ctx context.Context, key types.ContestKey) error {
	ev := bus.NewBroadcastStart(key, time.Now())
	if !sim.svc.Publish(ctx, ev) {
		return fmt.Errorf("publish broadcast notification")
	}
	sim.svc.Publish(ctx, ev) // duplicate delivery

	deadline := time.Now().Add(lockWaitTimeout)
	for time.Now().Before(deadline) {
		locked, err := sim.svc.IsLocked(ctx, key)
		if err != nil {
			return fmt.Errorf("lock query: %w", err)
		}
		if locked {
			fmt.Printf("  contest locked by broadcast\n")
			return nil
		}
		time.Sleep(lockPollEvery)
	}
	return fmt.Errorf("contest never locked")
}

// playGames resolves each game from latent strengths plus noise and updates
// the running aggregates.
func (sim *simulation) playGames(games []types.Game) []types.GameResult {
	byID := make(map[types.TeamID]*simTeam, len(sim.teams))
	for _, t := range sim.teams {
		byID[t.id] = t
	}

	results := make([]types.GameResult, 0, len(games))
	for _, g := range games {
		home, away := byID[g.Home], byID[g.Away]

		// Strength gap plus noise decides the margin; home side gets a nudge.
		gap := (home.strength-away.strength)*20 + 3 + sim.rng.NormFloat64()*7
		margin := int(gap)
		if margin == 0 {
			margin = 1
		}

		base := 13 + sim.rng.Intn(14)
		homeScore, awayScore := base+margin, base
		winner := g.Home
		if margin < 0 {
			homeScore, awayScore = base, base-margin
			winner = g.Away
		}

		sim.applyGame(home, away, homeScore, awayScore)
		results = append(results, types.GameResult{
			GameID:    g.ID,
			Winner:    winner,
			HomeScore: homeScore,
			AwayScore: awayScore,
		})
		sim.provider.SetResult(results[len(results)-1])
		fmt.Printf("  final %s: %s %d, %s %d\n", g.ID, g.Home, homeScore, g.Away, awayScore)
	}
	return results
}

func (sim *simulation) applyGame(home, away *simTeam, homeScore, awayScore int) {
	homeYards := 250 + homeScore*4 + sim.rng.Intn(100)
	awayYards := 250 + awayScore*4 + sim.rng.Intn(100)

	update := func(t *simTeam, pf, pa, yf, ya int, won bool) {
		t.record.GamesPlayed++
		t.record.PointsFor += pf
		t.record.PointsAgainst += pa
		t.record.OffensiveYards += yf
		t.record.DefensiveYards += ya
		if won {
			t.record.Wins++
			t.standing.Wins++
		} else {
			t.record.Losses++
			t.standing.Losses++
		}
	}
	update(home, homeScore, awayScore, homeYards, awayYards, homeScore > awayScore)
	update(away, awayScore, homeScore, awayYards, homeYards, awayScore > homeScore)

	home.record.Opponents = append(home.record.Opponents, away.id)
	away.record.Opponents = append(away.record.Opponents, home.id)

	turnovers := sim.rng.Intn(4)
	if homeScore > awayScore {
		home.record.Takeaways += turnovers
		away.record.Giveaways += turnovers
	} else {
		away.record.Takeaways += turnovers
		home.record.Giveaways += turnovers
	}
}

func (sim *simulation) printLeaderboard(ctx context.Context) error {
	key := sim.key(1)
	rows, err := sim.svc.Leaderboard(ctx, key.Guild, key.League, sim.season)
	if err != nil {
		return fmt.Errorf("leaderboard: %w", err)
	}

	fmt.Printf("=== season %d leaderboard ===\n", sim.season)
	for i, row := range rows {
		fmt.Printf("%2d. %-12s %3d/%3d correct (%.1f%%)\n",
			i+1, row.DisplayName, row.CorrectPicks, row.TotalPicks, row.Accuracy)
	}
	return nil
}
