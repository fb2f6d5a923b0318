package standings

import (
	"fmt"
	"sort"

	"github.com/volleypro/match-sync/repos/store"
	"github.com/volleypro/match-sync/services/live"

	"github.com/gin-gonic/gin"
)

// StandingsService computes tournament tables and player statistics. All reads,
// no writes; everything is derived from fixtures and team documents.
type StandingsService struct {
	storeService *store.Service
}

func NewStandingsService(storeService *store.Service) *StandingsService {
	return &StandingsService{storeService: storeService}
}

// TableRow is one team's line in a group table.
type TableRow struct {
	TeamID   string `json:"teamId"`
	TeamName string `json:"teamName"`
	Played   int    `json:"played"`
	Won      int    `json:"won"`
	Lost     int    `json:"lost"`
	SetsWon  int    `json:"setsWon"`
	SetsLost int    `json:"setsLost"`
	Points   int    `json:"points"`
}

// PlayerRow is one player's line in a statistics leaderboard.
type PlayerRow struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Number     int    `json:"number"`
	Role       string `json:"role"`
	TeamID     string `json:"teamId"`
	TeamName   string `json:"teamName"`

	Stats store.PlayerStats `json:"stats"`
}

// MatchStats is the per-player breakdown of one finished fixture, replayed
// from its point log.
type MatchStats struct {
	FixtureID string                       `json:"fixtureId"`
	Players   map[string]store.PlayerStats `json:"players"`
}

// fixtureSets reads the set counts of a finished fixture. The archived result
// string is authoritative; fixtures recorded without one fall back to a
// replay of the saved sets.
func fixtureSets(fixture *store.Fixture) (setsA, setsB int) {
	if _, err := fmt.Sscanf(fixture.ResultString, "%d-%d", &setsA, &setsB); err == nil {
		return setsA, setsB
	}
	return live.SetsWon(fixture.SavedSets)
}

// matchPoints splits the table points for one finished fixture. A win at full
// distance, where the loser stayed one set behind the winning count, pays
// 2/1; any other win pays 3/0.
func matchPoints(winnerSets, loserSets int) (winnerPoints, loserPoints int) {
	if loserSets == winnerSets-1 && loserSets > 0 {
		return 2, 1
	}
	return 3, 0
}

// ComputeTable builds a sorted table from finished fixtures. Teams without a
// finished fixture still appear, with zeroes.
func ComputeTable(fixtures []*store.Fixture, teams []*store.Team) []TableRow {
	rows := map[string]*TableRow{}
	for _, team := range teams {
		rows[team.ID] = &TableRow{TeamID: team.ID, TeamName: team.Name}
	}
	rowFor := func(teamID string) *TableRow {
		if row, ok := rows[teamID]; ok {
			return row
		}
		row := &TableRow{TeamID: teamID, TeamName: teamID}
		rows[teamID] = row
		return row
	}

	for _, fixture := range fixtures {
		if fixture.Status != store.FixtureFinished || fixture.WinnerID == "" {
			continue
		}
		setsA, setsB := fixtureSets(fixture)

		rowA, rowB := rowFor(fixture.TeamAID), rowFor(fixture.TeamBID)
		rowA.Played++
		rowB.Played++
		rowA.SetsWon += setsA
		rowA.SetsLost += setsB
		rowB.SetsWon += setsB
		rowB.SetsLost += setsA

		winner, loser := rowA, rowB
		winnerSets, loserSets := setsA, setsB
		if fixture.WinnerID == fixture.TeamBID {
			winner, loser = rowB, rowA
			winnerSets, loserSets = setsB, setsA
		}
		winner.Won++
		loser.Lost++
		winnerPoints, loserPoints := matchPoints(winnerSets, loserSets)
		winner.Points += winnerPoints
		loser.Points += loserPoints
	}

	table := make([]TableRow, 0, len(rows))
	for _, row := range rows {
		table = append(table, *row)
	}
	sortTable(table)
	return table
}

// sortTable orders by points, then matches won, then set ratio. The ratio
// comparison is cross-multiplied so an unbeaten set record ranks above any
// finite ratio. Team ID breaks remaining ties to keep the order stable.
func sortTable(table []TableRow) {
	sort.Slice(table, func(i, j int) bool {
		a, b := table[i], table[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Won != b.Won {
			return a.Won > b.Won
		}
		left := a.SetsWon * b.SetsLost
		right := b.SetsWon * a.SetsLost
		if left != right {
			return left > right
		}
		return a.TeamID < b.TeamID
	})
}

// GetTable returns the group tables for a tournament, keyed by group name.
// Fixtures without a group land under "".
func (s *StandingsService) GetTable(c *gin.Context, slug string) (map[string][]TableRow, error) {
	tournament, err := s.storeService.GetTournament(c, slug)
	if err != nil {
		return nil, err
	}
	fixtures, err := s.storeService.ListFixtures(c, slug)
	if err != nil {
		return nil, err
	}
	teams, err := s.storeService.ListTeams(c, tournament.TeamIDs)
	if err != nil {
		return nil, err
	}

	teamsByID := map[string]*store.Team{}
	for _, team := range teams {
		teamsByID[team.ID] = team
	}

	fixturesByGroup := map[string][]*store.Fixture{}
	for _, fixture := range fixtures {
		fixturesByGroup[fixture.Group] = append(fixturesByGroup[fixture.Group], fixture)
	}

	tables := map[string][]TableRow{}
	for group, groupFixtures := range fixturesByGroup {
		var groupTeams []*store.Team
		if ids, ok := tournament.Groups[group]; ok {
			for _, id := range ids {
				if team, found := teamsByID[id]; found {
					groupTeams = append(groupTeams, team)
				}
			}
		} else {
			groupTeams = teams
		}
		tables[group] = ComputeTable(groupFixtures, groupTeams)
	}
	if len(fixturesByGroup) == 0 {
		tables[""] = ComputeTable(nil, teams)
	}
	return tables, nil
}

// TopPlayers builds a leaderboard over career stats. Metric is one of points,
// aces, blocks or mvps; an empty role matches everyone.
func TopPlayers(teams []*store.Team, role, metric string, limit int) []PlayerRow {
	var board []PlayerRow
	for _, team := range teams {
		for _, player := range team.Players {
			if role != "" && player.Role != role {
				continue
			}
			board = append(board, PlayerRow{
				PlayerID:   player.ID,
				PlayerName: player.Name,
				Number:     player.Number,
				Role:       player.Role,
				TeamID:     team.ID,
				TeamName:   team.Name,
				Stats:      player.Stats,
			})
		}
	}

	value := func(row PlayerRow) int {
		switch metric {
		case "aces":
			return row.Stats.Aces
		case "blocks":
			return row.Stats.Blocks
		case "mvps":
			return row.Stats.MVPs
		default:
			return row.Stats.Points
		}
	}
	sort.Slice(board, func(i, j int) bool {
		if value(board[i]) != value(board[j]) {
			return value(board[i]) > value(board[j])
		}
		return board[i].PlayerID < board[j].PlayerID
	})

	if limit > 0 && len(board) > limit {
		board = board[:limit]
	}
	return board
}

func (s *StandingsService) GetTopPlayers(c *gin.Context, slug, role, metric string, limit int) ([]PlayerRow, error) {
	tournament, err := s.storeService.GetTournament(c, slug)
	if err != nil {
		return nil, err
	}
	teams, err := s.storeService.ListTeams(c, tournament.TeamIDs)
	if err != nil {
		return nil, err
	}
	return TopPlayers(teams, role, metric, limit), nil
}

// GetMatchStats replays a finished fixture's point log into per-player stats.
func (s *StandingsService) GetMatchStats(c *gin.Context, slug, fixtureID string) (*MatchStats, error) {
	fixture, err := s.storeService.GetFixture(c, slug, fixtureID)
	if err != nil {
		return nil, err
	}
	return &MatchStats{
		FixtureID: fixture.ID,
		Players:   live.PlayerDeltas(fixture.SavedSets),
	}, nil
}
