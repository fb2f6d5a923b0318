package fixtures

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samborkent/uuidv7"
	"github.com/xorcare/pointer"

	firebaseauth "firebase.google.com/go/v4/auth"

	appauth "github.com/volleypro/match-sync/pkg/auth"
	timehelper "github.com/volleypro/match-sync/pkg/timeHelper"
	"github.com/volleypro/match-sync/repos/store"
	"github.com/volleypro/match-sync/services/live"
)

var (
	ErrNotAuthorized = errors.New("role is not allowed to manage fixtures")
	ErrBadDateRange  = errors.New("tournament has no playable dates in its range")
	ErrBadWeekday    = errors.New("unknown weekday name")
	ErrTooFewTeams   = errors.New("fixture generation needs at least two teams")
	ErrBadSetScores  = errors.New("a quick result needs at least one decided set")
)

// FixturesService owns the fixture plan of a tournament: the round robin
// generator plus the manual corrections admins make afterwards.
type FixturesService struct {
	storeService *store.Service
}

func NewFixturesService(storeService *store.Service) *FixturesService {
	return &FixturesService{storeService: storeService}
}

func (s *FixturesService) requireAdmin(c *gin.Context) error {
	token := c.MustGet("token").(*firebaseauth.Token)
	user, err := s.storeService.GetUser(c, token.UID)
	if err != nil {
		if err == store.ErrNotFound {
			return ErrNotAuthorized
		}
		return err
	}
	if user.Role != appauth.RoleAdmin {
		return ErrNotAuthorized
	}
	return nil
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekdays(names []string) ([]time.Weekday, error) {
	var days []time.Weekday
	for _, name := range names {
		day, ok := weekdayNames[strings.ToLower(name)]
		if !ok {
			return nil, ErrBadWeekday
		}
		days = append(days, day)
	}
	return days, nil
}

// splitGroups partitions the team list. Small fields play a single round
// robin; more than eight teams split into two groups to keep the match count
// manageable.
func splitGroups(teamIDs []string) map[string][]string {
	if len(teamIDs) <= 8 {
		return map[string][]string{"A": teamIDs}
	}
	half := (len(teamIDs) + 1) / 2
	return map[string][]string{
		"A": teamIDs[:half],
		"B": teamIDs[half:],
	}
}

// roundRobin pairs every team in the group against every other exactly once.
func roundRobin(group string, teamIDs []string) []*store.Fixture {
	var fixtures []*store.Fixture
	for i := 0; i < len(teamIDs); i++ {
		for j := i + 1; j < len(teamIDs); j++ {
			fixtures = append(fixtures, &store.Fixture{
				ID:      uuidv7.New().String(),
				TeamAID: teamIDs[i],
				TeamBID: teamIDs[j],
				Group:   group,
				Status:  store.FixtureScheduled,
			})
		}
	}
	return fixtures
}

// GenerateFixtures builds the full fixture plan for a tournament. Matches are
// spread over the playable dates in the tournament's range, cycling through
// them in order.
func (s *FixturesService) GenerateFixtures(c *gin.Context, slug string, weekdays []string) ([]*store.Fixture, error) {
	if err := s.requireAdmin(c); err != nil {
		return nil, err
	}

	tournament, err := s.storeService.GetTournament(c, slug)
	if err != nil {
		return nil, err
	}
	if len(tournament.TeamIDs) < 2 {
		return nil, ErrTooFewTeams
	}

	allowedDays, err := parseWeekdays(weekdays)
	if err != nil {
		return nil, err
	}

	start, ok := timehelper.ParseDate(tournament.StartDate)
	if !ok {
		start, _ = timehelper.ParseDate(timehelper.GetTodaysDateString())
	}
	end, ok := timehelper.ParseDate(tournament.EndDate)
	if !ok {
		end = start
	}
	dates := timehelper.DatesBetween(start, end, allowedDays)
	if len(dates) == 0 {
		return nil, ErrBadDateRange
	}

	groups := splitGroups(tournament.TeamIDs)
	var fixtures []*store.Fixture
	for _, group := range []string{"A", "B"} {
		teamIDs, ok := groups[group]
		if !ok {
			continue
		}
		fixtures = append(fixtures, roundRobin(group, teamIDs)...)
	}
	for i, fixture := range fixtures {
		fixture.Date = dates[i%len(dates)]
	}

	for _, fixture := range fixtures {
		if err := s.storeService.SaveFixture(c, slug, fixture); err != nil {
			return nil, err
		}
	}

	tournament.Groups = groups
	if err := s.storeService.SaveTournament(c, tournament); err != nil {
		return nil, err
	}
	return fixtures, nil
}

func (s *FixturesService) ListFixtures(c *gin.Context, slug string) ([]*store.Fixture, error) {
	return s.storeService.ListFixtures(c, slug)
}

// UpdateDate reschedules one fixture.
func (s *FixturesService) UpdateDate(c *gin.Context, slug, fixtureID, date string) error {
	if err := s.requireAdmin(c); err != nil {
		return err
	}
	if _, ok := timehelper.ParseDate(date); !ok {
		return ErrBadDateRange
	}
	return s.storeService.UpdateFixture(c, slug, fixtureID, &store.FixturePatch{
		Date: pointer.String(date),
	})
}

// QuickFinish records a final result directly, for matches scored on paper.
// Each entry is one set as teamA-teamB points; the winner is whoever took
// more sets.
func (s *FixturesService) QuickFinish(c *gin.Context, slug, fixtureID string, setScores [][2]int) (*store.Fixture, error) {
	if err := s.requireAdmin(c); err != nil {
		return nil, err
	}

	fixture, err := s.storeService.GetFixture(c, slug, fixtureID)
	if err != nil {
		return nil, err
	}

	var sets []store.MatchSet
	for _, score := range setScores {
		if score[0] == score[1] {
			continue
		}
		sets = append(sets, store.MatchSet{ScoreA: score[0], ScoreB: score[1]})
	}
	if len(sets) == 0 {
		return nil, ErrBadSetScores
	}

	winsA, winsB := live.SetsWon(sets)
	winnerID := fixture.TeamAID
	if winsB > winsA {
		winnerID = fixture.TeamBID
	}

	err = s.storeService.UpdateFixture(c, slug, fixtureID, &store.FixturePatch{
		Status:       pointer.String(store.FixtureFinished),
		WinnerID:     pointer.String(winnerID),
		ResultString: pointer.String(fmt.Sprintf("%d-%d", winsA, winsB)),
		SavedSets:    &sets,
	})
	if err != nil {
		return nil, err
	}

	fixture.Status = store.FixtureFinished
	fixture.WinnerID = winnerID
	fixture.ResultString = fmt.Sprintf("%d-%d", winsA, winsB)
	fixture.SavedSets = sets
	return fixture, nil
}
