package resend

import (
	"context"
	"fmt"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	resend "github.com/resend/resend-go/v2"
)

// Service sends role invites by mail and records granted access.
type Service struct {
	firestoreClient *firestore.Client
	resendClient    *resend.Client
}

func NewService(firestoreClient *firestore.Client) *Service {
	resendKey := os.Getenv("RESEND_KEY")
	return &Service{
		firestoreClient: firestoreClient,
		resendClient:    resend.NewClient(resendKey),
	}
}

func (s Service) SendMail(ctx context.Context, request AccessRequest, accessCode string) error {
	appHost := os.Getenv("APP_HOST")
	body := fmt.Sprintf("<a>https://%s/get-access/%s</a>", appHost, accessCode)
	params := &resend.SendEmailRequest{
		From:    os.Getenv("RESEND_FROM"),
		To:      []string{request.Email},
		Subject: fmt.Sprintf("Scoreboard access for %s", request.Slug),
		Html:    body,
	}

	_, err := s.resendClient.Emails.Send(params)
	if err != nil {
		log.Printf("Failed to send mail request: %v", err)
		return err
	}
	return nil
}

// GrantAccess records a user's role in a transaction. A user that already
// carries the admin role is never downgraded by a later invite.
func (s Service) GrantAccess(ctx context.Context, userID, role, teamID string) error {
	docRef := s.firestoreClient.Collection("Users").Doc(userID)

	err := s.firestoreClient.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err == nil {
			if data, err := doc.DataAt("Role"); err == nil {
				if existingRole, ok := data.(string); ok && existingRole == "ADMIN" {
					return nil
				}
			}
			return tx.Update(docRef, []firestore.Update{
				{Path: "Role", Value: role},
				{Path: "LinkedTeamId", Value: teamID},
			})
		}
		return tx.Set(docRef, map[string]interface{}{
			"UID":          userID,
			"Role":         role,
			"LinkedTeamId": teamID,
		})
	})
	if err != nil {
		log.Printf("Failed to update document: %v", err)
		return err
	}
	return nil
}
