package live

import (
	"errors"

	"github.com/volleypro/match-sync/repos/store"
)

// Match status values. A match starts in warmup (no scoring), an explicit
// start-game command moves it to playing, and it ends in finished once a team
// reaches the required set count.
const (
	StatusWarmup      = "warmup"
	StatusPlaying     = "playing"
	StatusPaused      = "paused"
	StatusFinishedSet = "finished_set"
	StatusFinished    = "finished"
)

// Point log entry types.
const (
	PointAttack        = "attack"
	PointBlock         = "block"
	PointAce           = "ace"
	PointOpponentError = "opponent_error"
	PointYellowCard    = "yellow_card"
	PointRedCard       = "red_card"
)

const (
	RequestTimeout      = "timeout"
	RequestSubstitution = "substitution"
)

// Soft per-set limits for the coach request path. Admin direct entry bypasses
// them so irregular game situations can be corrected.
const (
	MaxTimeoutsPerSet      = 2
	MaxSubstitutionsPerSet = 6
)

var (
	ErrInvalidConfig = errors.New("match config must have an odd maxSets and positive point thresholds")
	ErrRotationSize  = errors.New("rotation requires exactly six jersey numbers")
	ErrLimitReached  = errors.New("per-set limit reached")
	ErrNoLiveMatch   = errors.New("no live match in progress")
	ErrNotAuthorized = errors.New("role is not allowed to perform this command")
	ErrUnknownTeam   = errors.New("team does not belong to this match")
	ErrNotFinished   = errors.New("fixture is not finished")
)

type MatchConfig struct {
	MaxSets        int `firestore:"MaxSets" json:"maxSets"`
	PointsPerSet   int `firestore:"PointsPerSet" json:"pointsPerSet"`
	TieBreakPoints int `firestore:"TieBreakPoints" json:"tieBreakPoints"`
}

func DefaultConfig() MatchConfig {
	return MatchConfig{MaxSets: 3, PointsPerSet: 25, TieBreakPoints: 15}
}

func (c MatchConfig) Validate() error {
	if c.MaxSets < 1 || c.MaxSets%2 == 0 || c.PointsPerSet <= 0 || c.TieBreakPoints <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// RequiredWins is the set count that decides the match.
func (c MatchConfig) RequiredWins() int {
	return (c.MaxSets + 1) / 2
}

type SubDetails struct {
	PlayerOutID string `firestore:"PlayerOutId" json:"playerOutId"`
	PlayerInID  string `firestore:"PlayerInId" json:"playerInId"`
}

type RequestItem struct {
	ID         string      `firestore:"ID" json:"id"`
	TeamID     string      `firestore:"TeamId" json:"teamId"`
	Type       string      `firestore:"Type" json:"type"`
	Status     string      `firestore:"Status" json:"status"`
	SubDetails *SubDetails `firestore:"SubDetails,omitempty" json:"subDetails,omitempty"`
}

// DisplayMode holds the broadcast overlay toggles. Opaque to the rules logic;
// carried on the state so TV clients replicate it.
type DisplayMode struct {
	ShowFullScoreboard bool `firestore:"ShowFullScoreboard" json:"showFullScoreboard"`
	ShowCourtA         bool `firestore:"ShowCourtA" json:"showCourtA"`
	ShowCourtB         bool `firestore:"ShowCourtB" json:"showCourtB"`
	ShowMvp            bool `firestore:"ShowMvp" json:"showMvp"`
	ShowTeamStats      bool `firestore:"ShowTeamStats" json:"showTeamStats"`
}

// LiveMatchState is the root aggregate for one live match. Every command is a
// pure transition over a value of this type; the previous value is never
// mutated in place.
type LiveMatchState struct {
	MatchID        string `firestore:"MatchId" json:"matchId"`
	TournamentSlug string `firestore:"TournamentSlug" json:"tournamentSlug"`
	TeamAID        string `firestore:"TeamAId" json:"teamAId"`
	TeamBID        string `firestore:"TeamBId" json:"teamBId"`

	Config     MatchConfig      `firestore:"Config" json:"config"`
	Status     string           `firestore:"Status" json:"status"`
	CurrentSet int              `firestore:"CurrentSet" json:"currentSet"`
	Sets       []store.MatchSet `firestore:"Sets" json:"sets"`

	RotationA []store.Player `firestore:"RotationA" json:"rotationA"`
	RotationB []store.Player `firestore:"RotationB" json:"rotationB"`
	BenchA    []store.Player `firestore:"BenchA" json:"benchA"`
	BenchB    []store.Player `firestore:"BenchB" json:"benchB"`

	ServingTeamID string `firestore:"ServingTeamId" json:"servingTeamId"`
	ScoreA        int    `firestore:"ScoreA" json:"scoreA"`
	ScoreB        int    `firestore:"ScoreB" json:"scoreB"`

	TimeoutsA      int `firestore:"TimeoutsA" json:"timeoutsA"`
	TimeoutsB      int `firestore:"TimeoutsB" json:"timeoutsB"`
	SubstitutionsA int `firestore:"SubstitutionsA" json:"substitutionsA"`
	SubstitutionsB int `firestore:"SubstitutionsB" json:"substitutionsB"`

	Requests    []RequestItem `firestore:"Requests" json:"requests"`
	DisplayMode *DisplayMode  `firestore:"DisplayMode,omitempty" json:"displayMode,omitempty"`

	// AutoAdvanceSuppressed blocks the between-sets countdown while an
	// operator is reviewing set statistics.
	AutoAdvanceSuppressed bool `firestore:"AutoAdvanceSuppressed" json:"autoAdvanceSuppressed"`

	// SetStartedAtUnix is the start of the current set, used to stamp
	// DurationMinutes when the set ends.
	SetStartedAtUnix int64 `firestore:"SetStartedAtUnix" json:"setStartedAtUnix"`
}

// FinishedView is a read-only reconstruction of a completed match built from
// a fixture's saved sets. It is a distinct type on purpose: there is no
// command that accepts one.
type FinishedView struct {
	Match LiveMatchState `json:"match"`
}
