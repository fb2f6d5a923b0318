package admin

import (
	"context"
	"errors"
	"log"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	auth "firebase.google.com/go/v4/auth"

	"github.com/gin-gonic/gin"
	access "github.com/volleypro/match-sync/pkg/accessCode"
	resend "github.com/volleypro/match-sync/repos/resend"
)

var ErrInvalidAccessCode = errors.New("not valid access code")

// AdminService handles tournament access: mailing out role invites and
// redeeming the codes they carry.
type AdminService struct {
	firestoreClient *firestore.Client
	firebaseApp     *firebase.App
	resendService   *resend.Service
}

func NewAdminService(firestoreClient *firestore.Client, firebaseApp *firebase.App, resendService *resend.Service) *AdminService {
	return &AdminService{
		firestoreClient: firestoreClient,
		firebaseApp:     firebaseApp,
		resendService:   resendService,
	}
}

// ClaimAccess mails an access link for the requested role. The code embeds
// the tournament's secret so redeeming it can be verified server side.
func (s *AdminService) ClaimAccess(c *gin.Context, request resend.AccessRequest) error {
	token := c.MustGet("token").(*auth.Token)

	doc, err := s.firestoreClient.Collection("TournamentSecrets").Doc(request.Slug).Get(c)
	if err != nil {
		log.Printf("Failed to get tournament secret from Firestore: %v\n", err)
		return err
	}

	data := doc.Data()
	fieldValue, ok := data["Secret"]
	if !ok {
		log.Printf("Field does not exist in the document.")
	}

	secretString, ok := fieldValue.(string)
	if !ok {
		log.Printf("Failed to convert field value to string.")
	}

	accessCode := access.GenerateCode(request.Slug, secretString)

	if err := s.resendService.SendMail(c, request, accessCode); err != nil {
		return err
	}

	// The grant outlives the request, so it must not run on the gin context.
	go s.resendService.GrantAccess(context.Background(), token.UID, request.Role, request.TeamID)
	return nil
}

// AddTournamentAccess redeems a decoded access code for the calling user.
func (s *AdminService) AddTournamentAccess(c *gin.Context, slug, uniqueID, role, teamID string) error {
	token := c.MustGet("token").(*auth.Token)

	doc, err := s.firestoreClient.Collection("TournamentSecrets").Doc(slug).Get(c)
	if err != nil {
		log.Printf("Failed to get tournament secret from Firestore: %v\n", err)
		return err
	}

	data := doc.Data()
	fieldValue, ok := data["Secret"]
	if !ok {
		log.Printf("Field does not exist in the document.")
	}

	secretString, ok := fieldValue.(string)
	if !ok {
		log.Printf("Failed to convert field value to string.")
	}

	if uniqueID != secretString {
		return ErrInvalidAccessCode
	}
	return s.resendService.GrantAccess(c, token.UID, role, teamID)
}
