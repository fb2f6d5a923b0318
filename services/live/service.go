package live

import (
	"log"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	auth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/samborkent/uuidv7"
	"github.com/xorcare/pointer"
	"golang.org/x/xerrors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	appauth "github.com/volleypro/match-sync/pkg/auth"
	"github.com/volleypro/match-sync/repos/store"
)

// LiveService is the single writer for a live match: it loads the state
// document, applies one pure transition and writes the result back. Observer
// clients replicate through Firestore listeners; nothing here waits on them.
type LiveService struct {
	firestoreClient *firestore.Client
	firebaseApp     *firebase.App
	storeService    *store.Service
}

func NewLiveService(firestoreClient *firestore.Client, firebaseApp *firebase.App, storeService *store.Service) *LiveService {
	return &LiveService{
		firestoreClient: firestoreClient,
		firebaseApp:     firebaseApp,
		storeService:    storeService,
	}
}

// caller resolves the requesting user's role record. Commands that mutate
// match state are gated here, at the dispatch boundary, not inside handlers.
func (s *LiveService) caller(c *gin.Context) (*store.User, error) {
	token := c.MustGet("token").(*auth.Token)
	user, err := s.storeService.GetUser(c, token.UID)
	if err != nil {
		if err == store.ErrNotFound {
			return &store.User{UID: token.UID, Role: appauth.RoleViewer}, nil
		}
		return nil, err
	}
	return user, nil
}

func (s *LiveService) requireAdmin(c *gin.Context) error {
	user, err := s.caller(c)
	if err != nil {
		return err
	}
	if user.Role != appauth.RoleAdmin {
		return ErrNotAuthorized
	}
	return nil
}

func (s *LiveService) getState(c *gin.Context, matchID string) (*LiveMatchState, error) {
	doc, err := s.firestoreClient.Collection("LiveMatches").Doc(matchID).Get(c)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNoLiveMatch
		}
		log.Printf("Failed to get live match from Firestore: %v\n", err)
		return nil, err
	}

	var state LiveMatchState
	if err := doc.DataTo(&state); err != nil {
		return nil, xerrors.Errorf(
			"consistency error. Converting %+v to internal live state struct failed: %w",
			doc,
			err,
		)
	}
	return &state, nil
}

func (s *LiveService) saveState(c *gin.Context, state LiveMatchState) error {
	_, err := s.firestoreClient.Collection("LiveMatches").Doc(state.MatchID).Set(c, state)
	if err != nil {
		log.Printf("Failed to write live match to Firestore: %v\n", err)
	}
	return err
}

func (s *LiveService) clearState(c *gin.Context, matchID string) error {
	_, err := s.firestoreClient.Collection("LiveMatches").Doc(matchID).Delete(c)
	if err != nil {
		log.Printf("Failed to delete live match from Firestore: %v\n", err)
	}
	return err
}

// roster returns the full player list for one of the match teams, used to
// resolve substitutions and rotation edits.
func (s *LiveService) roster(c *gin.Context, teamID string) ([]store.Player, error) {
	team, err := s.storeService.GetTeam(c, teamID)
	if err != nil {
		return nil, err
	}
	return team.Players, nil
}

// StartMatch moves a scheduled fixture to live and seeds the warmup state.
func (s *LiveService) StartMatch(c *gin.Context, slug, fixtureID string, config MatchConfig) (*LiveMatchState, error) {
	if err := s.requireAdmin(c); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	fixture, err := s.storeService.GetFixture(c, slug, fixtureID)
	if err != nil {
		return nil, err
	}
	teamA, err := s.storeService.GetTeam(c, fixture.TeamAID)
	if err != nil {
		return nil, err
	}
	teamB, err := s.storeService.GetTeam(c, fixture.TeamBID)
	if err != nil {
		return nil, err
	}

	state := NewLiveMatch(fixture, slug, teamA, teamB, config, time.Now().Unix())

	err = s.storeService.UpdateFixture(c, slug, fixtureID, &store.FixturePatch{
		Status: pointer.String(store.FixtureLive),
	})
	if err != nil {
		return nil, err
	}
	if err := s.saveState(c, state); err != nil {
		return nil, err
	}
	return &state, nil
}

// apply runs one admin-only pure transition and persists the result.
func (s *LiveService) apply(c *gin.Context, matchID string, transition func(LiveMatchState) LiveMatchState) (*LiveMatchState, error) {
	if err := s.requireAdmin(c); err != nil {
		return nil, err
	}
	state, err := s.getState(c, matchID)
	if err != nil {
		return nil, err
	}
	next := transition(*state)
	if err := s.saveState(c, next); err != nil {
		return nil, err
	}
	return &next, nil
}

func (s *LiveService) StartGame(c *gin.Context, matchID string) (*LiveMatchState, error) {
	return s.apply(c, matchID, StartGame)
}

func (s *LiveService) StartSet(c *gin.Context, matchID string, setIndex int) (*LiveMatchState, error) {
	now := time.Now().Unix()
	return s.apply(c, matchID, func(state LiveMatchState) LiveMatchState {
		return StartSet(state, setIndex, now)
	})
}

func (s *LiveService) FinishSet(c *gin.Context, matchID string, setIndex int) (*LiveMatchState, error) {
	now := time.Now().Unix()
	return s.apply(c, matchID, func(state LiveMatchState) LiveMatchState {
		return FinishSet(state, setIndex, now)
	})
}

// Advance is the auto-countdown expiry path: it finishes the current set
// unless an operator suppressed auto-advance to review statistics.
func (s *LiveService) Advance(c *gin.Context, matchID string) (*LiveMatchState, error) {
	now := time.Now().Unix()
	return s.apply(c, matchID, func(state LiveMatchState) LiveMatchState {
		if state.AutoAdvanceSuppressed || state.Status != StatusFinishedSet {
			return state
		}
		return FinishSet(state, state.CurrentSet-1, now)
	})
}

func (s *LiveService) ReopenSet(c *gin.Context, matchID string, setIndex int) (*LiveMatchState, error) {
	return s.apply(c, matchID, func(state LiveMatchState) LiveMatchState {
		return ReopenSet(state, setIndex)
	})
}

func (s *LiveService) ApplyPoint(c *gin.Context, matchID, teamID, pointType, playerID string) (*LiveMatchState, error) {
	now := time.Now().Unix()
	return s.apply(c, matchID, func(state LiveMatchState) LiveMatchState {
		return ApplyPoint(state, teamID, pointType, playerID, now)
	})
}

func (s *LiveService) SubtractPoint(c *gin.Context, matchID, teamID string) (*LiveMatchState, error) {
	return s.apply(c, matchID, func(state LiveMatchState) LiveMatchState {
		return SubtractPoint(state, teamID)
	})
}

func (s *LiveService) ApplySubstitution(c *gin.Context, matchID, teamID, playerOutID, playerInID string) (*LiveMatchState, error) {
	if err := s.requireAdmin(c); err != nil {
		return nil, err
	}
	state, err := s.getState(c, matchID)
	if err != nil {
		return nil, err
	}
	roster, err := s.roster(c, teamID)
	if err != nil {
		return nil, err
	}
	next := ApplySubstitution(*state, teamID, playerOutID, playerInID, roster)
	if err := s.saveState(c, next); err != nil {
		return nil, err
	}
	return &next, nil
}

func (s *LiveService) SetRotation(c *gin.Context, matchID, teamID string, numbers []int) (*LiveMatchState, error) {
	if err := s.requireAdmin(c); err != nil {
		return nil, err
	}
	state, err := s.getState(c, matchID)
	if err != nil {
		return nil, err
	}
	roster, err := s.roster(c, teamID)
	if err != nil {
		return nil, err
	}
	next, err := SetRotation(*state, teamID, numbers, roster)
	if err != nil {
		return nil, err
	}
	if err := s.saveState(c, next); err != nil {
		return nil, err
	}
	return &next, nil
}

func (s *LiveService) SetServe(c *gin.Context, matchID, teamID string) (*LiveMatchState, error) {
	return s.apply(c, matchID, func(state LiveMatchState) LiveMatchState {
		return SetServe(state, teamID)
	})
}

func (s *LiveService) RecordTimeout(c *gin.Context, matchID, teamID string) (*LiveMatchState, error) {
	return s.apply(c, matchID, func(state LiveMatchState) LiveMatchState {
		return RecordTimeout(state, teamID)
	})
}

// requestingCoach checks that the caller is a coach linked to teamID.
func (s *LiveService) requestingCoach(c *gin.Context, teamID string) error {
	user, err := s.caller(c)
	if err != nil {
		return err
	}
	if user.Role == appauth.RoleAdmin {
		return nil
	}
	if !appauth.IsCoach(user.Role) || user.LinkedTeamID != teamID {
		return ErrNotAuthorized
	}
	return nil
}

// RequestTimeout enqueues a coach timeout request. The per-set soft limit is
// enforced on this path only; admins record timeouts directly.
func (s *LiveService) RequestTimeout(c *gin.Context, matchID, teamID string) (*LiveMatchState, error) {
	if err := s.requestingCoach(c, teamID); err != nil {
		return nil, err
	}
	state, err := s.getState(c, matchID)
	if err != nil {
		return nil, err
	}
	if (teamID == state.TeamAID && state.TimeoutsA >= MaxTimeoutsPerSet) ||
		(teamID == state.TeamBID && state.TimeoutsB >= MaxTimeoutsPerSet) {
		return nil, ErrLimitReached
	}
	next := QueueTimeout(*state, uuidv7.New().String(), teamID)
	if err := s.saveState(c, next); err != nil {
		return nil, err
	}
	return &next, nil
}

func (s *LiveService) RequestSubstitution(c *gin.Context, matchID, teamID, playerOutID, playerInID string) (*LiveMatchState, error) {
	if err := s.requestingCoach(c, teamID); err != nil {
		return nil, err
	}
	state, err := s.getState(c, matchID)
	if err != nil {
		return nil, err
	}
	if (teamID == state.TeamAID && state.SubstitutionsA >= MaxSubstitutionsPerSet) ||
		(teamID == state.TeamBID && state.SubstitutionsB >= MaxSubstitutionsPerSet) {
		return nil, ErrLimitReached
	}
	next := QueueSubstitution(*state, uuidv7.New().String(), teamID, playerOutID, playerInID)
	if err := s.saveState(c, next); err != nil {
		return nil, err
	}
	return &next, nil
}

func (s *LiveService) ProcessRequest(c *gin.Context, matchID, requestID, action string) (*LiveMatchState, error) {
	if err := s.requireAdmin(c); err != nil {
		return nil, err
	}
	state, err := s.getState(c, matchID)
	if err != nil {
		return nil, err
	}

	var roster []store.Player
	for _, req := range state.Requests {
		if req.ID == requestID && req.Type == RequestSubstitution {
			roster, err = s.roster(c, req.TeamID)
			if err != nil {
				return nil, err
			}
			break
		}
	}

	next := ProcessRequest(*state, requestID, action == "approve", roster)
	if err := s.saveState(c, next); err != nil {
		return nil, err
	}
	return &next, nil
}

func (s *LiveService) UpdateConfig(c *gin.Context, matchID string, config MatchConfig) (*LiveMatchState, error) {
	if err := s.requireAdmin(c); err != nil {
		return nil, err
	}
	state, err := s.getState(c, matchID)
	if err != nil {
		return nil, err
	}
	next, err := UpdateConfig(*state, config)
	if err != nil {
		return nil, err
	}
	if err := s.saveState(c, next); err != nil {
		return nil, err
	}
	return &next, nil
}

func (s *LiveService) ToggleDisplay(c *gin.Context, matchID, key string) (*LiveMatchState, error) {
	return s.apply(c, matchID, func(state LiveMatchState) LiveMatchState {
		return ToggleDisplay(state, key)
	})
}

func (s *LiveService) SuppressAutoAdvance(c *gin.Context, matchID string, suppressed bool) (*LiveMatchState, error) {
	return s.apply(c, matchID, func(state LiveMatchState) LiveMatchState {
		return SuppressAutoAdvance(state, suppressed)
	})
}

// FinalizeMatch archives the sets into the fixture, folds the point log into
// each named player's career stats and clears the live document.
func (s *LiveService) FinalizeMatch(c *gin.Context, matchID string) error {
	if err := s.requireAdmin(c); err != nil {
		return err
	}
	state, err := s.getState(c, matchID)
	if err != nil {
		return err
	}

	winnerID, resultString := FinalizeResult(*state)
	err = s.storeService.UpdateFixture(c, state.TournamentSlug, state.MatchID, &store.FixturePatch{
		Status:       pointer.String(store.FixtureFinished),
		WinnerID:     &winnerID,
		ResultString: &resultString,
		SavedSets:    &state.Sets,
	})
	if err != nil {
		return err
	}

	deltas := PlayerDeltas(state.Sets)
	for _, teamID := range []string{state.TeamAID, state.TeamBID} {
		team, err := s.storeService.GetTeam(c, teamID)
		if err != nil {
			if err == store.ErrNotFound {
				continue
			}
			return err
		}
		changed := false
		for i := range team.Players {
			d, ok := deltas[team.Players[i].ID]
			if !ok {
				continue
			}
			stats := &team.Players[i].Stats
			stats.Points += d.Points
			stats.Aces += d.Aces
			stats.Blocks += d.Blocks
			stats.YellowCards += d.YellowCards
			stats.RedCards += d.RedCards
			stats.MatchesPlayed += d.MatchesPlayed
			changed = true
		}
		if changed {
			if err := s.storeService.SaveTeam(c, team); err != nil {
				return err
			}
		}
	}

	return s.clearState(c, matchID)
}

// ResetMatch force-resets a fixture back to scheduled and drops any live
// state for it.
func (s *LiveService) ResetMatch(c *gin.Context, slug, fixtureID string) error {
	if err := s.requireAdmin(c); err != nil {
		return err
	}
	empty := ""
	noSets := []store.MatchSet{}
	err := s.storeService.UpdateFixture(c, slug, fixtureID, &store.FixturePatch{
		Status:       pointer.String(store.FixtureScheduled),
		WinnerID:     &empty,
		ResultString: &empty,
		SavedSets:    &noSets,
	})
	if err != nil {
		return err
	}
	return s.clearState(c, fixtureID)
}

func (s *LiveService) GetState(c *gin.Context, matchID string) (*LiveMatchState, error) {
	return s.getState(c, matchID)
}

// GetFinishedView reconstructs a read-only view of a finished fixture from
// its saved sets.
func (s *LiveService) GetFinishedView(c *gin.Context, slug, fixtureID string) (*FinishedView, error) {
	fixture, err := s.storeService.GetFixture(c, slug, fixtureID)
	if err != nil {
		return nil, err
	}
	if fixture.Status != store.FixtureFinished {
		return nil, ErrNotFinished
	}
	teamA, err := s.storeService.GetTeam(c, fixture.TeamAID)
	if err != nil {
		return nil, err
	}
	teamB, err := s.storeService.GetTeam(c, fixture.TeamBID)
	if err != nil {
		return nil, err
	}
	view := ReconstructFinished(fixture, slug, teamA, teamB)
	return &view, nil
}
