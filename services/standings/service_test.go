package standings

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/volleypro/match-sync/repos/store"
)

func finishedFixture(id, teamA, teamB, winner string, sets ...[2]int) *store.Fixture {
	fixture := &store.Fixture{
		ID:       id,
		TeamAID:  teamA,
		TeamBID:  teamB,
		Status:   store.FixtureFinished,
		WinnerID: winner,
	}
	for _, set := range sets {
		fixture.SavedSets = append(fixture.SavedSets, store.MatchSet{ScoreA: set[0], ScoreB: set[1]})
	}
	return fixture
}

func namedTeams(ids ...string) []*store.Team {
	var teams []*store.Team
	for _, id := range ids {
		teams = append(teams, &store.Team{ID: id, Name: "Team " + id})
	}
	return teams
}

func TestMatchPointsSplit(t *testing.T) {
	winner, loser := matchPoints(2, 0)
	assert.Equal(t, 3, winner)
	assert.Equal(t, 0, loser)

	winner, loser = matchPoints(2, 1)
	assert.Equal(t, 2, winner)
	assert.Equal(t, 1, loser)

	winner, loser = matchPoints(3, 2)
	assert.Equal(t, 2, winner)
	assert.Equal(t, 1, loser)

	winner, loser = matchPoints(3, 1)
	assert.Equal(t, 3, winner)
	assert.Equal(t, 0, loser)

	// A one set match has no full distance loss.
	winner, loser = matchPoints(1, 0)
	assert.Equal(t, 3, winner)
	assert.Equal(t, 0, loser)
}

func TestComputeTable(t *testing.T) {
	fixtures := []*store.Fixture{
		finishedFixture("f1", "a", "b", "a", [2]int{25, 20}, [2]int{25, 18}),
		finishedFixture("f2", "b", "c", "b", [2]int{25, 23}, [2]int{20, 25}, [2]int{15, 12}),
		finishedFixture("f3", "a", "c", "a", [2]int{25, 19}, [2]int{25, 22}),
		{ID: "f4", TeamAID: "b", TeamBID: "c", Status: store.FixtureScheduled},
	}

	table := ComputeTable(fixtures, namedTeams("a", "b", "c"))

	assert.Len(t, table, 3)
	assert.Equal(t, "a", table[0].TeamID)
	assert.Equal(t, 6, table[0].Points)
	assert.Equal(t, 2, table[0].Won)
	assert.Equal(t, 4, table[0].SetsWon)
	assert.Equal(t, 0, table[0].SetsLost)

	assert.Equal(t, "b", table[1].TeamID)
	assert.Equal(t, 2, table[1].Points, "full distance win pays two")

	assert.Equal(t, "c", table[2].TeamID)
	assert.Equal(t, 1, table[2].Points, "full distance loss pays one")
	assert.Equal(t, 2, table[2].Lost)
	assert.Equal(t, 2, table[2].Played)
}

func TestComputeTableSetRatioTieBreak(t *testing.T) {
	// Both teams take three points from one win each; d has the better ratio.
	fixtures := []*store.Fixture{
		finishedFixture("f1", "d", "x", "d", [2]int{25, 10}, [2]int{25, 11}, [2]int{25, 12}),
		finishedFixture("f2", "e", "y", "e", [2]int{25, 20}, [2]int{20, 25}, [2]int{25, 15}, [2]int{25, 18}),
	}
	table := ComputeTable(fixtures, namedTeams("d", "e", "x", "y"))

	assert.Equal(t, "d", table[0].TeamID, "unbeaten set record ranks first")
	assert.Equal(t, "e", table[1].TeamID)
}

func TestComputeTableUsesResultStringWithoutSavedSets(t *testing.T) {
	// A paper result carries only the result string, no point-by-point sets.
	fixtures := []*store.Fixture{
		{
			ID:           "f1",
			TeamAID:      "a",
			TeamBID:      "b",
			Status:       store.FixtureFinished,
			WinnerID:     "a",
			ResultString: "2-1",
		},
	}

	table := ComputeTable(fixtures, namedTeams("a", "b"))

	assert.Equal(t, "a", table[0].TeamID)
	assert.Equal(t, 2, table[0].SetsWon)
	assert.Equal(t, 1, table[0].SetsLost)
	assert.Equal(t, 2, table[0].Points)
	assert.Equal(t, 1, table[1].Points)
}

func TestComputeTableIsDeterministic(t *testing.T) {
	fixtures := []*store.Fixture{
		finishedFixture("f1", "a", "b", "a", [2]int{25, 20}, [2]int{25, 18}),
		finishedFixture("f2", "c", "d", "c", [2]int{25, 20}, [2]int{25, 18}),
	}
	teams := namedTeams("a", "b", "c", "d")

	first := ComputeTable(fixtures, teams)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ComputeTable(fixtures, teams))
	}
}

func TestTopPlayers(t *testing.T) {
	teams := []*store.Team{
		{ID: "a", Name: "Team a", Players: []store.Player{
			{ID: "a-1", Name: "Setter", Role: "setter", Stats: store.PlayerStats{Points: 12, Aces: 5}},
			{ID: "a-2", Name: "Hitter", Role: "outside", Stats: store.PlayerStats{Points: 40, Aces: 2}},
		}},
		{ID: "b", Name: "Team b", Players: []store.Player{
			{ID: "b-1", Name: "Middle", Role: "middle", Stats: store.PlayerStats{Points: 25, Blocks: 9}},
		}},
	}

	board := TopPlayers(teams, "", "points", 2)
	assert.Len(t, board, 2)
	assert.Equal(t, "a-2", board[0].PlayerID)
	assert.Equal(t, "b-1", board[1].PlayerID)

	aces := TopPlayers(teams, "", "aces", 0)
	assert.Equal(t, "a-1", aces[0].PlayerID)

	setters := TopPlayers(teams, "setter", "points", 0)
	assert.Len(t, setters, 1)
	assert.Equal(t, "a-1", setters[0].PlayerID)
}
