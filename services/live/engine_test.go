package live

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/volleypro/match-sync/repos/store"
)

func testTeam(id string, size int) *store.Team {
	team := &store.Team{ID: id, Name: "Team " + id}
	for i := 1; i <= size; i++ {
		team.Players = append(team.Players, store.Player{
			ID:     fmt.Sprintf("%s-p%d", id, i),
			Name:   fmt.Sprintf("Player %d", i),
			Number: i,
		})
	}
	return team
}

func testMatch() LiveMatchState {
	teamA := testTeam("team-a", 8)
	teamB := testTeam("team-b", 8)
	fixture := &store.Fixture{ID: "fixture-1", TeamAID: teamA.ID, TeamBID: teamB.ID}
	state := NewLiveMatch(fixture, "beach-open", teamA, teamB, DefaultConfig(), 1000)
	return StartGame(state)
}

func scoreTo(state LiveMatchState, teamID string, points int) LiveMatchState {
	for i := 0; i < points; i++ {
		state = ApplyPoint(state, teamID, PointAttack, "", 2000)
	}
	return state
}

func TestNewLiveMatchSeedsWarmup(t *testing.T) {
	teamA := testTeam("team-a", 8)
	teamB := testTeam("team-b", 5)
	fixture := &store.Fixture{ID: "fixture-1", TeamAID: teamA.ID, TeamBID: teamB.ID}

	state := NewLiveMatch(fixture, "beach-open", teamA, teamB, DefaultConfig(), 1000)

	assert.Equal(t, StatusWarmup, state.Status)
	assert.Equal(t, 1, state.CurrentSet)
	assert.Equal(t, teamA.ID, state.ServingTeamID)
	assert.Len(t, state.RotationA, 6)
	assert.Len(t, state.BenchA, 2)
	assert.Len(t, state.RotationB, 5)
	assert.Empty(t, state.BenchB)
}

func TestStartGameOnlyFromWarmup(t *testing.T) {
	state := testMatch()
	assert.Equal(t, StatusPlaying, state.Status)
	assert.Equal(t, state, StartGame(state))
}

func TestScoresNeverDecreaseOnPoints(t *testing.T) {
	state := testMatch()
	for i := 0; i < 30; i++ {
		teamID := state.TeamAID
		if i%3 == 0 {
			teamID = state.TeamBID
		}
		next := ApplyPoint(state, teamID, PointAttack, "", 2000)
		assert.GreaterOrEqual(t, next.ScoreA, state.ScoreA)
		assert.GreaterOrEqual(t, next.ScoreB, state.ScoreB)
		state = next
	}
}

func TestSetEndsAtTwentyFive(t *testing.T) {
	state := testMatch()
	state = scoreTo(state, state.TeamBID, 20)
	state = scoreTo(state, state.TeamAID, 25)

	assert.Equal(t, StatusFinishedSet, state.Status)
	assert.Equal(t, 25, state.Sets[0].ScoreA)
	assert.Equal(t, 20, state.Sets[0].ScoreB)
}

func TestDeuceRequiresTwoPointMargin(t *testing.T) {
	state := testMatch()
	for i := 0; i < 24; i++ {
		state = ApplyPoint(state, state.TeamAID, PointAttack, "", 2000)
		state = ApplyPoint(state, state.TeamBID, PointAttack, "", 2000)
	}
	assert.Equal(t, StatusPlaying, state.Status)

	state = ApplyPoint(state, state.TeamAID, PointAttack, "", 2000)
	assert.Equal(t, StatusPlaying, state.Status, "25-24 is not enough")

	state = ApplyPoint(state, state.TeamAID, PointAttack, "", 2000)
	assert.Equal(t, StatusFinishedSet, state.Status)
	assert.Equal(t, 26, state.ScoreA)
	assert.Equal(t, 24, state.ScoreB)
}

func TestTieBreakEndsAtFifteen(t *testing.T) {
	state := testMatch()

	// Split the first two sets so set three is the decider.
	state = scoreTo(state, state.TeamAID, 25)
	state = FinishSet(state, 0, 3000)
	state = scoreTo(state, state.TeamBID, 25)
	state = FinishSet(state, 1, 4000)
	assert.Equal(t, 3, state.CurrentSet)

	state = scoreTo(state, state.TeamBID, 10)
	state = scoreTo(state, state.TeamAID, 15)

	assert.Equal(t, StatusFinished, state.Status)
	assert.Equal(t, 15, state.Sets[2].ScoreA)
	assert.Equal(t, 10, state.Sets[2].ScoreB)

	winnerID, result := FinalizeResult(state)
	assert.Equal(t, state.TeamAID, winnerID)
	assert.Equal(t, "2-1", result)
}

func TestStraightSetsFinishTheMatch(t *testing.T) {
	state := testMatch()
	state = scoreTo(state, state.TeamAID, 25)
	assert.Equal(t, StatusFinishedSet, state.Status)

	state = StartSet(state, 1, 3000)
	assert.Equal(t, state.TeamBID, state.ServingTeamID, "team B serves even sets")

	state = scoreTo(state, state.TeamAID, 25)
	assert.Equal(t, StatusFinished, state.Status)

	winnerID, result := FinalizeResult(state)
	assert.Equal(t, state.TeamAID, winnerID)
	assert.Equal(t, "2-0", result)
}

func TestPointOnFinishedMatchIsNoOp(t *testing.T) {
	state := testMatch()
	state = scoreTo(state, state.TeamAID, 25)
	state = StartSet(state, 1, 3000)
	state = scoreTo(state, state.TeamAID, 25)
	assert.Equal(t, StatusFinished, state.Status)

	assert.Equal(t, state, ApplyPoint(state, state.TeamAID, PointAttack, "", 5000))
}

func TestUnknownTeamOrTypeIsNoOp(t *testing.T) {
	state := testMatch()
	assert.Equal(t, state, ApplyPoint(state, "nobody", PointAttack, "", 2000))
	assert.Equal(t, state, ApplyPoint(state, state.TeamAID, "lucky_bounce", "", 2000))
}

func TestServeRotationOnSideOut(t *testing.T) {
	state := testMatch()
	originalRotation := append([]store.Player(nil), state.RotationB...)

	// B scores while A serves: B rotates forward and takes the serve.
	state = ApplyPoint(state, state.TeamBID, PointAttack, "", 2000)
	assert.Equal(t, state.TeamBID, state.ServingTeamID)
	assert.Equal(t, originalRotation[1].ID, state.RotationB[0].ID)
	assert.Equal(t, originalRotation[0].ID, state.RotationB[5].ID)

	// B scores again while already serving: no rotation.
	rotationAfterSideOut := append([]store.Player(nil), state.RotationB...)
	state = ApplyPoint(state, state.TeamBID, PointAttack, "", 2000)
	assert.Equal(t, rotationAfterSideOut, state.RotationB)
}

func TestSixRotationsRestoreOrder(t *testing.T) {
	state := testMatch()
	original := append([]store.Player(nil), state.RotationB...)

	for i := 0; i < 6; i++ {
		// Hand the serve back to A, then let B side-out to force a rotation.
		state = SetServe(state, state.TeamAID)
		state = ApplyPoint(state, state.TeamBID, PointAttack, "", 2000)
	}
	assert.Equal(t, original, state.RotationB)
}

func TestYellowCardLogsWithoutScoring(t *testing.T) {
	state := testMatch()
	next := ApplyPoint(state, state.TeamAID, PointYellowCard, "team-a-p1", 2000)

	assert.Equal(t, state.ScoreA, next.ScoreA)
	assert.Equal(t, state.ScoreB, next.ScoreB)
	assert.Len(t, next.Sets[0].History, 1)
	assert.Equal(t, PointYellowCard, next.Sets[0].History[0].Type)
}

func TestRedCardAwardsOpponentPoint(t *testing.T) {
	state := testMatch()

	// A serves; a red card on A gives B the point, so B rotates and serves.
	next := ApplyPoint(state, state.TeamAID, PointRedCard, "team-a-p1", 2000)
	assert.Equal(t, 0, next.ScoreA)
	assert.Equal(t, 1, next.ScoreB)
	assert.Equal(t, next.TeamBID, next.ServingTeamID)

	// Red card on B while A serves: A keeps the serve, no rotation.
	rotationA := append([]store.Player(nil), state.RotationA...)
	next = ApplyPoint(state, state.TeamBID, PointRedCard, "team-b-p1", 2000)
	assert.Equal(t, 1, next.ScoreA)
	assert.Equal(t, 0, next.ScoreB)
	assert.Equal(t, next.TeamAID, next.ServingTeamID)
	assert.Equal(t, rotationA, next.RotationA)
}

func TestRedCardPenaltyPointClosesSet(t *testing.T) {
	state := testMatch()
	state = scoreTo(state, state.TeamAID, 24)

	// The penalty point counts like any other for the set-win check.
	state = ApplyPoint(state, state.TeamBID, PointRedCard, "team-b-p1", 2000)
	assert.Equal(t, 25, state.ScoreA)
	assert.Equal(t, 0, state.ScoreB)
	assert.Equal(t, StatusFinishedSet, state.Status)
}

func TestYellowCardAtSetPointDoesNotEndSet(t *testing.T) {
	state := testMatch()
	state = scoreTo(state, state.TeamAID, 24)

	state = ApplyPoint(state, state.TeamAID, PointYellowCard, "team-a-p1", 2000)
	assert.Equal(t, 24, state.ScoreA)
	assert.Equal(t, StatusPlaying, state.Status)
}

func TestSubtractPointPopsHistory(t *testing.T) {
	state := testMatch()
	state = ApplyPoint(state, state.TeamAID, PointAttack, "team-a-p1", 2000)
	state = ApplyPoint(state, state.TeamBID, PointAce, "team-b-p2", 2000)

	next := SubtractPoint(state, state.TeamBID)
	assert.Equal(t, 1, next.ScoreA)
	assert.Equal(t, 0, next.ScoreB)
	assert.Len(t, next.Sets[0].History, 1)
	assert.Equal(t, "team-a-p1", next.Sets[0].History[0].PlayerID)
}

func TestSubtractPointAtZeroIsNoOp(t *testing.T) {
	state := testMatch()
	assert.Equal(t, state, SubtractPoint(state, state.TeamAID))
}

func TestSubstitutionPreservesRoster(t *testing.T) {
	state := testMatch()
	roster := testTeam("team-a", 8).Players

	next := ApplySubstitution(state, state.TeamAID, "team-a-p3", "team-a-p7", roster)

	assert.Equal(t, 1, next.SubstitutionsA)
	assert.Equal(t, "team-a-p7", next.RotationA[2].ID, "incoming player takes the vacated slot")

	seen := map[string]int{}
	for _, p := range next.RotationA {
		seen[p.ID]++
	}
	for _, p := range next.BenchA {
		seen[p.ID]++
	}
	assert.Len(t, seen, 8)
	for id, count := range seen {
		assert.Equal(t, 1, count, id)
	}
}

func TestSubstitutionWithOffCourtPlayerIsNoOp(t *testing.T) {
	state := testMatch()
	roster := testTeam("team-a", 8).Players
	assert.Equal(t, state, ApplySubstitution(state, state.TeamAID, "team-a-p8", "team-a-p7", roster))
}

func TestSetRotationByJerseyNumbers(t *testing.T) {
	state := testMatch()
	roster := testTeam("team-b", 8).Players

	next, err := SetRotation(state, state.TeamBID, []int{8, 7, 6, 5, 4, 3}, roster)
	assert.NoError(t, err)
	assert.Equal(t, "team-b-p8", next.RotationB[0].ID)
	assert.Len(t, next.BenchB, 2)

	_, err = SetRotation(state, state.TeamBID, []int{1, 2, 3}, roster)
	assert.Equal(t, ErrRotationSize, err)

	_, err = SetRotation(state, "nobody", []int{1, 2, 3, 4, 5, 6}, roster)
	assert.Equal(t, ErrUnknownTeam, err)
}

func TestSetRotationUnknownNumberGetsPlaceholder(t *testing.T) {
	state := testMatch()
	roster := testTeam("team-b", 8).Players

	next, err := SetRotation(state, state.TeamBID, []int{1, 2, 3, 4, 5, 99}, roster)
	assert.NoError(t, err)
	assert.Equal(t, "team-b-temp-99", next.RotationB[5].ID)
	assert.Equal(t, 99, next.RotationB[5].Number)
}

func TestFinishSetOnNonCurrentSetIsNoOp(t *testing.T) {
	state := testMatch()
	assert.Equal(t, state, FinishSet(state, 3, 5000))
	assert.Equal(t, state, FinishSet(state, -1, 5000))
}

func TestFinishSetAdvancesWithFreshCounters(t *testing.T) {
	state := testMatch()
	state = RecordTimeout(state, state.TeamAID)
	state = scoreTo(state, state.TeamAID, 10)
	state = scoreTo(state, state.TeamBID, 8)

	next := FinishSet(state, 0, 1000+20*60)
	assert.Equal(t, 2, next.CurrentSet)
	assert.Equal(t, StatusPlaying, next.Status)
	assert.Equal(t, 0, next.ScoreA)
	assert.Equal(t, 0, next.ScoreB)
	assert.Equal(t, 0, next.TimeoutsA)
	assert.Equal(t, next.TeamBID, next.ServingTeamID)
	assert.Equal(t, 20, next.Sets[0].DurationMinutes)
}

func TestReopenSetRestoresScore(t *testing.T) {
	state := testMatch()
	state = scoreTo(state, state.TeamAID, 25)
	state = StartSet(state, 1, 3000)
	state = scoreTo(state, state.TeamBID, 4)

	next := ReopenSet(state, 0)
	assert.Equal(t, 1, next.CurrentSet)
	assert.Equal(t, StatusPaused, next.Status)
	assert.Equal(t, 25, next.ScoreA)
	assert.Equal(t, 0, next.ScoreB)

	assert.Equal(t, state, ReopenSet(state, 5))
}

func TestScoringWhilePausedResumesPlay(t *testing.T) {
	state := testMatch()
	state = scoreTo(state, state.TeamAID, 3)
	state = ReopenSet(state, 0)
	assert.Equal(t, StatusPaused, state.Status)

	state = ApplyPoint(state, state.TeamBID, PointAttack, "", 2000)
	assert.Equal(t, StatusPlaying, state.Status)
	assert.Equal(t, 1, state.ScoreB)
}

func TestRequestQueueWorkflow(t *testing.T) {
	state := testMatch()
	roster := testTeam("team-b", 8).Players

	state = QueueTimeout(state, "req-1", state.TeamAID)
	state = QueueSubstitution(state, "req-2", state.TeamBID, "team-b-p1", "team-b-p7")
	assert.Len(t, state.Requests, 2)

	state = ProcessRequest(state, "req-1", false, nil)
	assert.Len(t, state.Requests, 1)
	assert.Equal(t, 0, state.TimeoutsA, "rejected timeout is not recorded")

	state = ProcessRequest(state, "req-2", true, roster)
	assert.Empty(t, state.Requests)
	assert.Equal(t, 1, state.SubstitutionsB)
	assert.Equal(t, "team-b-p7", state.RotationB[0].ID)

	assert.Equal(t, state, ProcessRequest(state, "req-unknown", true, nil))
}

func TestUpdateConfigMidGame(t *testing.T) {
	state := testMatch()
	state = scoreTo(state, state.TeamAID, 14)

	next, err := UpdateConfig(state, MatchConfig{MaxSets: 3, PointsPerSet: 15, TieBreakPoints: 15})
	assert.NoError(t, err)

	next = scoreTo(next, next.TeamAID, 1)
	assert.Equal(t, StatusFinishedSet, next.Status, "new threshold applies on next evaluation")

	_, err = UpdateConfig(state, MatchConfig{MaxSets: 4, PointsPerSet: 25, TieBreakPoints: 15})
	assert.Equal(t, ErrInvalidConfig, err)
}

func TestToggleDisplayCourtsAreExclusive(t *testing.T) {
	state := testMatch()

	state = ToggleDisplay(state, "courtA")
	assert.True(t, state.DisplayMode.ShowCourtA)

	state = ToggleDisplay(state, "courtB")
	assert.True(t, state.DisplayMode.ShowCourtB)
	assert.False(t, state.DisplayMode.ShowCourtA)

	assert.Equal(t, state, ToggleDisplay(state, "confetti"))
}

func TestSuppressAutoAdvance(t *testing.T) {
	state := testMatch()
	state = SuppressAutoAdvance(state, true)
	assert.True(t, state.AutoAdvanceSuppressed)
	state = SuppressAutoAdvance(state, false)
	assert.False(t, state.AutoAdvanceSuppressed)
}

func TestPlayerDeltasFromHistory(t *testing.T) {
	state := testMatch()
	state = ApplyPoint(state, state.TeamAID, PointAttack, "team-a-p1", 2000)
	state = ApplyPoint(state, state.TeamAID, PointBlock, "team-a-p1", 2000)
	state = ApplyPoint(state, state.TeamAID, PointAce, "team-a-p2", 2000)
	state = ApplyPoint(state, state.TeamBID, PointYellowCard, "team-b-p1", 2000)
	state = ApplyPoint(state, state.TeamAID, PointOpponentError, "", 2000)

	deltas := PlayerDeltas(state.Sets)
	assert.Len(t, deltas, 3, "anonymous entries are skipped")
	assert.Equal(t, store.PlayerStats{Points: 2, Blocks: 1, MatchesPlayed: 1}, deltas["team-a-p1"])
	assert.Equal(t, store.PlayerStats{Points: 1, Aces: 1, MatchesPlayed: 1}, deltas["team-a-p2"])
	assert.Equal(t, store.PlayerStats{YellowCards: 1, MatchesPlayed: 1}, deltas["team-b-p1"])
}

func TestTransitionsDoNotMutateInput(t *testing.T) {
	state := testMatch()
	state = ApplyPoint(state, state.TeamAID, PointAttack, "team-a-p1", 2000)
	before := clone(state)

	ApplyPoint(state, state.TeamBID, PointAce, "team-b-p1", 2000)
	ApplySubstitution(state, state.TeamAID, "team-a-p1", "team-a-p7", testTeam("team-a", 8).Players)
	ToggleDisplay(state, "mvp")

	assert.Equal(t, before, state)
}

func TestReconstructFinished(t *testing.T) {
	teamA := testTeam("team-a", 8)
	teamB := testTeam("team-b", 8)
	fixture := &store.Fixture{
		ID:      "fixture-1",
		TeamAID: teamA.ID,
		TeamBID: teamB.ID,
		Status:  store.FixtureFinished,
		SavedSets: []store.MatchSet{
			{ScoreA: 25, ScoreB: 20},
			{ScoreA: 23, ScoreB: 25},
			{ScoreA: 15, ScoreB: 11},
		},
	}

	view := ReconstructFinished(fixture, "beach-open", teamA, teamB)
	assert.Equal(t, StatusFinished, view.Match.Status)
	assert.Equal(t, 3, view.Match.CurrentSet)
	assert.Equal(t, 2, view.Match.ScoreA)
	assert.Equal(t, 1, view.Match.ScoreB)
	assert.Empty(t, view.Match.ServingTeamID)
}
