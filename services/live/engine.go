package live

import (
	"fmt"

	"github.com/volleypro/match-sync/repos/store"
)

// The functions in this file are the whole rules engine: pure transitions
// (state, command) -> state. Commands that hit a forbidden status or an
// unknown player/team return the state unchanged; only validation failures
// (rotation edits, rule edits) return errors.

// NewLiveMatch builds the initial warmup state for a fixture going live. The
// first six roster players take the court, the rest sit on the bench, and
// team A of the fixture serves first.
func NewLiveMatch(fixture *store.Fixture, slug string, teamA, teamB *store.Team, config MatchConfig, nowUnix int64) LiveMatchState {
	rotationA := firstSix(teamA.Players)
	rotationB := firstSix(teamB.Players)

	return LiveMatchState{
		MatchID:          fixture.ID,
		TournamentSlug:   slug,
		TeamAID:          teamA.ID,
		TeamBID:          teamB.ID,
		Config:           config,
		Status:           StatusWarmup,
		CurrentSet:       1,
		Sets:             []store.MatchSet{{}},
		RotationA:        rotationA,
		RotationB:        rotationB,
		BenchA:           remaining(teamA.Players, rotationA),
		BenchB:           remaining(teamB.Players, rotationB),
		ServingTeamID:    teamA.ID,
		SetStartedAtUnix: nowUnix,
	}
}

func firstSix(players []store.Player) []store.Player {
	n := 6
	if len(players) < n {
		n = len(players)
	}
	return append([]store.Player(nil), players[:n]...)
}

func remaining(roster, rotation []store.Player) []store.Player {
	onCourt := map[string]bool{}
	for _, p := range rotation {
		onCourt[p.ID] = true
	}
	var bench []store.Player
	for _, p := range roster {
		if !onCourt[p.ID] {
			bench = append(bench, p)
		}
	}
	return bench
}

// clone deep-copies the slices so a transition never aliases the previous
// state.
func clone(s LiveMatchState) LiveMatchState {
	out := s
	out.Sets = append([]store.MatchSet(nil), s.Sets...)
	for i := range out.Sets {
		out.Sets[i].History = append([]store.PointLog(nil), out.Sets[i].History...)
	}
	out.RotationA = append([]store.Player(nil), s.RotationA...)
	out.RotationB = append([]store.Player(nil), s.RotationB...)
	out.BenchA = append([]store.Player(nil), s.BenchA...)
	out.BenchB = append([]store.Player(nil), s.BenchB...)
	out.Requests = append([]RequestItem(nil), s.Requests...)
	if s.DisplayMode != nil {
		mode := *s.DisplayMode
		out.DisplayMode = &mode
	}
	return out
}

func growSets(sets []store.MatchSet, setIndex int) []store.MatchSet {
	for len(sets) <= setIndex {
		sets = append(sets, store.MatchSet{})
	}
	return sets
}

// serveForSet applies the parity rule: team A of the fixture serves odd sets,
// team B even sets.
func serveForSet(s LiveMatchState, setNumber int) string {
	if setNumber%2 != 0 {
		return s.TeamAID
	}
	return s.TeamBID
}

// StartGame moves a warmup match into play.
func StartGame(s LiveMatchState) LiveMatchState {
	if s.Status != StatusWarmup {
		return s
	}
	out := clone(s)
	out.Status = StatusPlaying
	return out
}

// StartSet makes the set at setIndex the current one, creating it if needed,
// and resets the per-set counters.
func StartSet(s LiveMatchState, setIndex int, nowUnix int64) LiveMatchState {
	if setIndex < 0 {
		return s
	}
	out := clone(s)
	out.Sets = growSets(out.Sets, setIndex)
	out.CurrentSet = setIndex + 1
	out.Status = StatusPlaying
	out.ScoreA = out.Sets[setIndex].ScoreA
	out.ScoreB = out.Sets[setIndex].ScoreB
	out.ServingTeamID = serveForSet(s, setIndex+1)
	out.TimeoutsA, out.TimeoutsB = 0, 0
	out.SubstitutionsA, out.SubstitutionsB = 0, 0
	out.SetStartedAtUnix = nowUnix
	return out
}

// FinishSet closes the current set. If a team has reached the required set
// count the match is finished; otherwise play advances to the next set with
// fresh counters and the parity serve. Finishing a non-current set is a no-op.
func FinishSet(s LiveMatchState, setIndex int, nowUnix int64) LiveMatchState {
	if setIndex != s.CurrentSet-1 {
		return s
	}

	out := clone(s)
	out.Sets = growSets(out.Sets, setIndex)
	stampDuration(&out, setIndex, nowUnix)

	winsA, winsB := SetsWon(out.Sets)
	if winsA >= s.Config.RequiredWins() || winsB >= s.Config.RequiredWins() {
		out.Status = StatusFinished
		return out
	}

	nextSetNum := setIndex + 2
	out.Sets = growSets(out.Sets, nextSetNum-1)
	out.CurrentSet = nextSetNum
	out.Status = StatusPlaying
	out.ScoreA, out.ScoreB = 0, 0
	out.ServingTeamID = serveForSet(s, nextSetNum)
	out.TimeoutsA, out.TimeoutsB = 0, 0
	out.SubstitutionsA, out.SubstitutionsB = 0, 0
	out.SetStartedAtUnix = nowUnix
	return out
}

// ReopenSet restores a previously completed set as current so a mis-recorded
// result can be corrected. Only the score is restored; rotation and bench keep
// their present partition.
func ReopenSet(s LiveMatchState, setIndex int) LiveMatchState {
	if setIndex < 0 || setIndex >= len(s.Sets) {
		return s
	}
	out := clone(s)
	out.CurrentSet = setIndex + 1
	out.Status = StatusPaused
	out.ScoreA = out.Sets[setIndex].ScoreA
	out.ScoreB = out.Sets[setIndex].ScoreB
	return out
}

func rotateForward(players []store.Player) []store.Player {
	if len(players) == 0 {
		return players
	}
	out := append([]store.Player(nil), players[1:]...)
	return append(out, players[0])
}

func validPointType(t string) bool {
	switch t {
	case PointAttack, PointBlock, PointAce, PointOpponentError, PointYellowCard, PointRedCard:
		return true
	}
	return false
}

func isMatchTeam(s LiveMatchState, teamID string) bool {
	return teamID == s.TeamAID || teamID == s.TeamBID
}

// ApplyPoint scores one rally event. Yellow cards only log; red cards award a
// point to the opponent. A team that scores while not serving rotates forward
// and takes the serve. When the set threshold is reached with a two point
// margin the set, and possibly the match, is closed.
func ApplyPoint(s LiveMatchState, teamID, pointType, playerID string, nowUnix int64) LiveMatchState {
	if s.Status == StatusFinished {
		return s
	}
	if !isMatchTeam(s, teamID) || !validPointType(pointType) {
		return s
	}

	out := clone(s)
	if out.Status == StatusWarmup || out.Status == StatusPaused {
		out.Status = StatusPlaying
	}

	pointAwarded := true
	switch pointType {
	case PointYellowCard:
		pointAwarded = false
	case PointRedCard:
		// The opposing team scores regardless of who committed the card, and
		// the penalty point can close the set like any other.
		if teamID == s.TeamAID {
			awardPoint(&out, s.TeamBID)
		} else {
			awardPoint(&out, s.TeamAID)
		}
	default:
		awardPoint(&out, teamID)
	}

	setIndex := out.CurrentSet - 1
	out.Sets = growSets(out.Sets, setIndex)
	out.Sets[setIndex].ScoreA = out.ScoreA
	out.Sets[setIndex].ScoreB = out.ScoreB
	out.Sets[setIndex].History = append(out.Sets[setIndex].History, store.PointLog{
		TeamID:        teamID,
		PlayerID:      playerID,
		Type:          pointType,
		ScoreSnapshot: fmt.Sprintf("%d-%d", out.ScoreA, out.ScoreB),
	})

	if pointAwarded && setWon(out) {
		stampDuration(&out, setIndex, nowUnix)
		winsA, winsB := SetsWon(out.Sets)
		if winsA == s.Config.RequiredWins() || winsB == s.Config.RequiredWins() {
			out.Status = StatusFinished
		} else {
			out.Status = StatusFinishedSet
		}
	}
	return out
}

// awardPoint bumps the score and applies the serve-rotation rule for the
// scoring team.
func awardPoint(out *LiveMatchState, scoringTeamID string) {
	if scoringTeamID == out.TeamAID {
		out.ScoreA++
		if out.ServingTeamID != out.TeamAID {
			out.RotationA = rotateForward(out.RotationA)
			out.ServingTeamID = out.TeamAID
		}
		return
	}
	out.ScoreB++
	if out.ServingTeamID != out.TeamBID {
		out.RotationB = rotateForward(out.RotationB)
		out.ServingTeamID = out.TeamBID
	}
}

func setWon(s LiveMatchState) bool {
	pointsToWin := s.Config.PointsPerSet
	if s.CurrentSet == s.Config.MaxSets {
		pointsToWin = s.Config.TieBreakPoints
	}
	lead := s.ScoreA - s.ScoreB
	if lead < 0 {
		lead = -lead
	}
	return (s.ScoreA >= pointsToWin || s.ScoreB >= pointsToWin) && lead >= 2
}

func stampDuration(out *LiveMatchState, setIndex int, nowUnix int64) {
	if out.SetStartedAtUnix <= 0 || nowUnix <= out.SetStartedAtUnix {
		return
	}
	out.Sets[setIndex].DurationMinutes = int((nowUnix - out.SetStartedAtUnix) / 60)
}

// SubtractPoint is the correction tool: it takes one point off the named team
// and pops the most recent history entry of the current set, whichever team it
// belonged to.
func SubtractPoint(s LiveMatchState, teamID string) LiveMatchState {
	if !isMatchTeam(s, teamID) {
		return s
	}
	if teamID == s.TeamAID && s.ScoreA == 0 {
		return s
	}
	if teamID == s.TeamBID && s.ScoreB == 0 {
		return s
	}

	out := clone(s)
	if teamID == s.TeamAID {
		out.ScoreA--
	} else {
		out.ScoreB--
	}

	setIndex := out.CurrentSet - 1
	out.Sets = growSets(out.Sets, setIndex)
	if n := len(out.Sets[setIndex].History); n > 0 {
		out.Sets[setIndex].History = out.Sets[setIndex].History[:n-1]
	}
	out.Sets[setIndex].ScoreA = out.ScoreA
	out.Sets[setIndex].ScoreB = out.ScoreB
	out.Status = StatusPlaying
	return out
}

// ApplySubstitution swaps an on-court player for one on the bench (or, for an
// initial assignment, anywhere on the roster). The incoming player takes the
// outgoing player's rotation slot.
func ApplySubstitution(s LiveMatchState, teamID, playerOutID, playerInID string, roster []store.Player) LiveMatchState {
	if !isMatchTeam(s, teamID) {
		return s
	}

	out := clone(s)
	rotation, bench := out.RotationA, out.BenchA
	if teamID == s.TeamBID {
		rotation, bench = out.RotationB, out.BenchB
	}

	outIndex := -1
	for i, p := range rotation {
		if p.ID == playerOutID {
			outIndex = i
			break
		}
	}

	inIndex := -1
	for i, p := range bench {
		if p.ID == playerInID {
			inIndex = i
			break
		}
	}

	var playerIn *store.Player
	if inIndex != -1 {
		p := bench[inIndex]
		playerIn = &p
	} else {
		for _, p := range roster {
			if p.ID == playerInID {
				p := p
				playerIn = &p
				break
			}
		}
	}

	if outIndex == -1 || playerIn == nil {
		return s
	}

	playerOut := rotation[outIndex]
	rotation[outIndex] = *playerIn
	if inIndex != -1 {
		bench[inIndex] = playerOut
	} else {
		bench = append(bench, playerOut)
	}

	if teamID == s.TeamAID {
		out.RotationA, out.BenchA = rotation, bench
		out.SubstitutionsA++
	} else {
		out.RotationB, out.BenchB = rotation, bench
		out.SubstitutionsB++
	}
	return out
}

// SetRotation replaces a team's full on-court lineup from six jersey numbers.
// Numbers that don't resolve against the roster get placeholder players; the
// bench becomes roster minus the new rotation.
func SetRotation(s LiveMatchState, teamID string, numbers []int, roster []store.Player) (LiveMatchState, error) {
	if !isMatchTeam(s, teamID) {
		return s, ErrUnknownTeam
	}
	if len(numbers) != 6 {
		return s, ErrRotationSize
	}

	byNumber := map[int]store.Player{}
	for _, p := range roster {
		byNumber[p.Number] = p
	}

	rotation := make([]store.Player, 0, 6)
	for _, num := range numbers {
		if p, ok := byNumber[num]; ok {
			rotation = append(rotation, p)
			continue
		}
		rotation = append(rotation, store.Player{
			ID:     fmt.Sprintf("%s-temp-%d", teamID, num),
			Name:   fmt.Sprintf("Player %d", num),
			Number: num,
		})
	}
	bench := remaining(roster, rotation)

	out := clone(s)
	if teamID == s.TeamAID {
		out.RotationA, out.BenchA = rotation, bench
	} else {
		out.RotationB, out.BenchB = rotation, bench
	}
	return out, nil
}

// SetServe hands the serve to a team without rotating anyone. Escape hatch for
// fixing a missed automatic rotation.
func SetServe(s LiveMatchState, teamID string) LiveMatchState {
	if !isMatchTeam(s, teamID) {
		return s
	}
	out := clone(s)
	out.ServingTeamID = teamID
	return out
}

// RecordTimeout is the admin direct-entry path; it never blocks on the soft
// limit.
func RecordTimeout(s LiveMatchState, teamID string) LiveMatchState {
	if !isMatchTeam(s, teamID) {
		return s
	}
	out := clone(s)
	if teamID == s.TeamAID {
		out.TimeoutsA++
	} else {
		out.TimeoutsB++
	}
	return out
}

func QueueTimeout(s LiveMatchState, requestID, teamID string) LiveMatchState {
	if !isMatchTeam(s, teamID) {
		return s
	}
	out := clone(s)
	out.Requests = append(out.Requests, RequestItem{
		ID:     requestID,
		TeamID: teamID,
		Type:   RequestTimeout,
		Status: "pending",
	})
	return out
}

func QueueSubstitution(s LiveMatchState, requestID, teamID, playerOutID, playerInID string) LiveMatchState {
	if !isMatchTeam(s, teamID) {
		return s
	}
	out := clone(s)
	out.Requests = append(out.Requests, RequestItem{
		ID:     requestID,
		TeamID: teamID,
		Type:   RequestSubstitution,
		Status: "pending",
		SubDetails: &SubDetails{
			PlayerOutID: playerOutID,
			PlayerInID:  playerInID,
		},
	})
	return out
}

// ProcessRequest resolves a pending coach request. Approval applies the
// underlying action; either outcome removes the request from the queue.
func ProcessRequest(s LiveMatchState, requestID string, approve bool, roster []store.Player) LiveMatchState {
	var req *RequestItem
	for i := range s.Requests {
		if s.Requests[i].ID == requestID {
			req = &s.Requests[i]
			break
		}
	}
	if req == nil {
		return s
	}

	out := clone(s)
	filtered := out.Requests[:0]
	for _, r := range out.Requests {
		if r.ID != requestID {
			filtered = append(filtered, r)
		}
	}
	out.Requests = filtered

	if !approve {
		return out
	}
	switch req.Type {
	case RequestTimeout:
		return RecordTimeout(out, req.TeamID)
	case RequestSubstitution:
		if req.SubDetails != nil {
			return ApplySubstitution(out, req.TeamID, req.SubDetails.PlayerOutID, req.SubDetails.PlayerInID, roster)
		}
	}
	return out
}

// UpdateConfig edits the match rules mid-game; the new thresholds apply on the
// next scoring evaluation.
func UpdateConfig(s LiveMatchState, config MatchConfig) (LiveMatchState, error) {
	if err := config.Validate(); err != nil {
		return s, err
	}
	out := clone(s)
	out.Config = config
	return out, nil
}

// ToggleDisplay flips one broadcast overlay toggle. The two court panels are
// mutually exclusive so the TV never stacks them.
func ToggleDisplay(s LiveMatchState, key string) LiveMatchState {
	out := clone(s)
	if out.DisplayMode == nil {
		out.DisplayMode = &DisplayMode{ShowFullScoreboard: true}
	}
	mode := out.DisplayMode
	switch key {
	case "fullScoreboard":
		mode.ShowFullScoreboard = !mode.ShowFullScoreboard
	case "courtA":
		mode.ShowCourtA = !mode.ShowCourtA
		if mode.ShowCourtA {
			mode.ShowCourtB = false
		}
	case "courtB":
		mode.ShowCourtB = !mode.ShowCourtB
		if mode.ShowCourtB {
			mode.ShowCourtA = false
		}
	case "mvp":
		mode.ShowMvp = !mode.ShowMvp
	case "teamStats":
		mode.ShowTeamStats = !mode.ShowTeamStats
	default:
		return s
	}
	return out
}

func SuppressAutoAdvance(s LiveMatchState, suppressed bool) LiveMatchState {
	out := clone(s)
	out.AutoAdvanceSuppressed = suppressed
	return out
}

// SetsWon tallies completed sets per team. A set counts for whoever leads it,
// matching how the scoreboard reports partial results.
func SetsWon(sets []store.MatchSet) (winsA, winsB int) {
	for _, set := range sets {
		if set.ScoreA > set.ScoreB {
			winsA++
		} else if set.ScoreB > set.ScoreA {
			winsB++
		}
	}
	return winsA, winsB
}

// FinalizeResult computes the archived outcome of the match.
func FinalizeResult(s LiveMatchState) (winnerID, resultString string) {
	winsA, winsB := SetsWon(s.Sets)
	if winsA > winsB {
		winnerID = s.TeamAID
	} else if winsB > winsA {
		winnerID = s.TeamBID
	}
	return winnerID, fmt.Sprintf("%d-%d", winsA, winsB)
}

// PlayerDeltas replays the full point log and returns the per-player stat
// increments to fold into career totals. MatchesPlayed is 1 for any player
// with at least one logged action.
func PlayerDeltas(sets []store.MatchSet) map[string]store.PlayerStats {
	deltas := map[string]store.PlayerStats{}
	for _, set := range sets {
		for _, entry := range set.History {
			if entry.PlayerID == "" {
				continue
			}
			d := deltas[entry.PlayerID]
			switch entry.Type {
			case PointAttack:
				d.Points++
			case PointBlock:
				d.Points++
				d.Blocks++
			case PointAce:
				d.Points++
				d.Aces++
			case PointYellowCard:
				d.YellowCards++
			case PointRedCard:
				d.RedCards++
			}
			d.MatchesPlayed = 1
			deltas[entry.PlayerID] = d
		}
	}
	return deltas
}

// ReconstructFinished rebuilds a finished match purely from the fixture's
// saved sets for historical display. The original rules were not archived, so
// defaults stand in, the serve is empty and the top-level score shows sets won.
func ReconstructFinished(fixture *store.Fixture, slug string, teamA, teamB *store.Team) FinishedView {
	winsA, winsB := SetsWon(fixture.SavedSets)
	sets := append([]store.MatchSet(nil), fixture.SavedSets...)

	return FinishedView{Match: LiveMatchState{
		MatchID:        fixture.ID,
		TournamentSlug: slug,
		TeamAID:        teamA.ID,
		TeamBID:        teamB.ID,
		Config:         MatchConfig{MaxSets: 5, PointsPerSet: 25, TieBreakPoints: 15},
		Status:         StatusFinished,
		CurrentSet:     len(sets),
		Sets:           sets,
		RotationA:      firstSix(teamA.Players),
		RotationB:      firstSix(teamB.Players),
		ScoreA:         winsA,
		ScoreB:         winsB,
	}}
}
