package store

import (
	"context"
	"errors"
	"log"

	"cloud.google.com/go/firestore"
	"golang.org/x/xerrors"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var ErrNotFound = errors.New("document not found")

// Service is the persistence collaborator for the match engine. The engine
// only needs "read last value, write new value"; Firestore listeners handle
// fan-out to viewer clients on their own.
type Service struct {
	Client *firestore.Client
}

func NewService(client *firestore.Client) *Service {
	return &Service{
		Client: client,
	}
}

func (s Service) GetTournament(ctx context.Context, slug string) (*Tournament, error) {
	doc, err := s.Client.Collection("Tournaments").Doc(slug).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		log.Printf("Failed to get tournament from Firestore: %v\n", err)
		return nil, err
	}

	var tournament Tournament
	if err := doc.DataTo(&tournament); err != nil {
		// If this fails, we have an inconsistency error as we control both the data written to
		// Firestore and the shape of our struct.
		return nil, xerrors.Errorf(
			"consistency error. Converting %+v to internal tournament struct failed: %w",
			doc,
			err,
		)
	}
	return &tournament, nil
}

func (s Service) SaveTournament(ctx context.Context, tournament *Tournament) error {
	_, err := s.Client.Collection("Tournaments").Doc(tournament.Slug).Set(ctx, tournament)
	if err != nil {
		log.Printf("Failed to write tournament to Firestore: %v\n", err)
	}
	return err
}

func (s Service) GetTeam(ctx context.Context, teamID string) (*Team, error) {
	doc, err := s.Client.Collection("Teams").Doc(teamID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		log.Printf("Failed to get team from Firestore: %v\n", err)
		return nil, err
	}

	var team Team
	if err := doc.DataTo(&team); err != nil {
		return nil, xerrors.Errorf(
			"consistency error. Converting %+v to internal team struct failed: %w",
			doc,
			err,
		)
	}
	return &team, nil
}

func (s Service) SaveTeam(ctx context.Context, team *Team) error {
	_, err := s.Client.Collection("Teams").Doc(team.ID).Set(ctx, team)
	if err != nil {
		log.Printf("Failed to write team to Firestore: %v\n", err)
	}
	return err
}

func (s Service) ListTeams(ctx context.Context, teamIDs []string) ([]*Team, error) {
	var teams []*Team
	for _, id := range teamIDs {
		team, err := s.GetTeam(ctx, id)
		if err != nil {
			if err == ErrNotFound {
				continue
			}
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, nil
}

func (s Service) GetFixture(ctx context.Context, slug, fixtureID string) (*Fixture, error) {
	doc, err := s.Client.Collection("Tournaments").Doc(slug).Collection("Fixtures").Doc(fixtureID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		log.Printf("Failed to get fixture from Firestore: %v\n", err)
		return nil, err
	}

	var fixture Fixture
	if err := doc.DataTo(&fixture); err != nil {
		return nil, xerrors.Errorf(
			"consistency error. Converting %+v to internal fixture struct failed: %w",
			doc,
			err,
		)
	}
	return &fixture, nil
}

func (s Service) ListFixtures(ctx context.Context, slug string) ([]*Fixture, error) {
	iter := s.Client.Collection("Tournaments").Doc(slug).Collection("Fixtures").Documents(ctx)
	defer iter.Stop()

	var fixtures []*Fixture
	for {
		doc, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			log.Printf("Failed to iterate fixtures: %v\n", err)
			return nil, err
		}

		var fixture Fixture
		if err := doc.DataTo(&fixture); err != nil {
			return nil, xerrors.Errorf(
				"consistency error. Converting %+v to internal fixture struct failed: %w",
				doc,
				err,
			)
		}
		fixtures = append(fixtures, &fixture)
	}
	return fixtures, nil
}

func (s Service) SaveFixture(ctx context.Context, slug string, fixture *Fixture) error {
	_, err := s.Client.Collection("Tournaments").Doc(slug).Collection("Fixtures").Doc(fixture.ID).Set(ctx, fixture)
	if err != nil {
		log.Printf("Failed to write fixture to Firestore: %v\n", err)
	}
	return err
}

func (s Service) UpdateFixture(ctx context.Context, slug, fixtureID string, patch *FixturePatch) error {
	updates := createFixtureUpdates(patch)
	if len(updates) == 0 {
		return nil
	}
	_, err := s.Client.Collection("Tournaments").Doc(slug).Collection("Fixtures").Doc(fixtureID).Update(ctx, updates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		log.Printf("Failed to update fixture in Firestore: %v\n", err)
	}
	return err
}

func createFixtureUpdates(patch *FixturePatch) []firestore.Update {
	var updates []firestore.Update

	if patch.Date != nil {
		updates = append(updates, firestore.Update{Path: "Date", Value: *patch.Date})
	}
	if patch.Status != nil {
		updates = append(updates, firestore.Update{Path: "Status", Value: *patch.Status})
	}
	if patch.WinnerID != nil {
		updates = append(updates, firestore.Update{Path: "WinnerId", Value: *patch.WinnerID})
	}
	if patch.ResultString != nil {
		updates = append(updates, firestore.Update{Path: "ResultString", Value: *patch.ResultString})
	}
	if patch.SavedSets != nil {
		updates = append(updates, firestore.Update{Path: "SavedSets", Value: *patch.SavedSets})
	}

	return updates
}

func (s Service) GetUser(ctx context.Context, uid string) (*User, error) {
	doc, err := s.Client.Collection("Users").Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		log.Printf("Failed to get user from Firestore: %v\n", err)
		return nil, err
	}

	var user User
	if err := doc.DataTo(&user); err != nil {
		return nil, xerrors.Errorf(
			"consistency error. Converting %+v to internal user struct failed: %w",
			doc,
			err,
		)
	}
	return &user, nil
}

func (s Service) SaveUser(ctx context.Context, user *User) error {
	_, err := s.Client.Collection("Users").Doc(user.UID).Set(ctx, user)
	if err != nil {
		log.Printf("Failed to write user to Firestore: %v\n", err)
	}
	return err
}
