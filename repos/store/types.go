package store

// PlayerStats is the career tally for one player. It is only mutated when a
// match is finalized.
type PlayerStats struct {
	Points        int `firestore:"Points" json:"points"`
	Aces          int `firestore:"Aces" json:"aces"`
	Blocks        int `firestore:"Blocks" json:"blocks"`
	Errors        int `firestore:"Errors" json:"errors"`
	MatchesPlayed int `firestore:"MatchesPlayed" json:"matchesPlayed"`
	MVPs          int `firestore:"MVPs" json:"mvps"`
	YellowCards   int `firestore:"YellowCards" json:"yellowCards"`
	RedCards      int `firestore:"RedCards" json:"redCards"`
}

type Player struct {
	ID        string      `firestore:"ID" json:"id"`
	Name      string      `firestore:"Name" json:"name"`
	Number    int         `firestore:"Number" json:"number"`
	Role      string      `firestore:"Role" json:"role"`
	IsCaptain bool        `firestore:"IsCaptain" json:"isCaptain"`
	Stats     PlayerStats `firestore:"Stats" json:"stats"`
}

type Team struct {
	ID        string   `firestore:"ID" json:"id"`
	Name      string   `firestore:"Name" json:"name"`
	Color     string   `firestore:"Color" json:"color"`
	CoachName string   `firestore:"CoachName" json:"coachName"`
	Players   []Player `firestore:"Players" json:"players"`
}

// PointLog is one scored (or carded) rally. Entries are append-only inside a
// set; the subtract-point correction pops the last entry instead of editing it.
type PointLog struct {
	TeamID        string `firestore:"TeamId" json:"teamId"`
	PlayerID      string `firestore:"PlayerId,omitempty" json:"playerId,omitempty"`
	Type          string `firestore:"Type" json:"type"`
	ScoreSnapshot string `firestore:"ScoreSnapshot" json:"scoreSnapshot"`
}

type MatchSet struct {
	ScoreA          int        `firestore:"ScoreA" json:"scoreA"`
	ScoreB          int        `firestore:"ScoreB" json:"scoreB"`
	History         []PointLog `firestore:"History" json:"history"`
	DurationMinutes int        `firestore:"DurationMinutes" json:"durationMinutes"`
}

const (
	FixtureScheduled = "scheduled"
	FixtureLive      = "live"
	FixtureFinished  = "finished"
)

type Fixture struct {
	ID           string     `firestore:"ID" json:"id"`
	Date         string     `firestore:"Date" json:"date"`
	TeamAID      string     `firestore:"TeamAId" json:"teamAId"`
	TeamBID      string     `firestore:"TeamBId" json:"teamBId"`
	Group        string     `firestore:"Group" json:"group"`
	Status       string     `firestore:"Status" json:"status"`
	WinnerID     string     `firestore:"WinnerId,omitempty" json:"winnerId,omitempty"`
	ResultString string     `firestore:"ResultString,omitempty" json:"resultString,omitempty"`
	SavedSets    []MatchSet `firestore:"SavedSets,omitempty" json:"savedSets,omitempty"`
}

type Tournament struct {
	Slug      string              `firestore:"Slug" json:"slug"`
	OwnerID   string              `firestore:"OwnerId" json:"ownerId"`
	Name      string              `firestore:"Name" json:"name"`
	StartDate string              `firestore:"StartDate" json:"startDate"`
	EndDate   string              `firestore:"EndDate" json:"endDate"`
	TeamIDs   []string            `firestore:"TeamIds" json:"teamIds"`
	Groups    map[string][]string `firestore:"Groups" json:"groups"`
}

// FixturePatch carries partial fixture updates; nil fields are left untouched.
type FixturePatch struct {
	Date         *string     `json:"date"`
	Status       *string     `json:"status"`
	WinnerID     *string     `json:"winnerId"`
	ResultString *string     `json:"resultString"`
	SavedSets    *[]MatchSet `json:"savedSets"`
}

// User links a Firebase UID to an app role. Coaches carry the team they are
// allowed to act for.
type User struct {
	UID          string `firestore:"UID" json:"uid"`
	Username     string `firestore:"Username" json:"username"`
	Role         string `firestore:"Role" json:"role"`
	LinkedTeamID string `firestore:"LinkedTeamId,omitempty" json:"linkedTeamId,omitempty"`
}
