package main

import (
	"context"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"google.golang.org/api/option"

	resend "github.com/volleypro/match-sync/repos/resend"
	store "github.com/volleypro/match-sync/repos/store"

	auth "github.com/volleypro/match-sync/pkg/auth"

	admin "github.com/volleypro/match-sync/services/admin"
	fixtures "github.com/volleypro/match-sync/services/fixtures"
	live "github.com/volleypro/match-sync/services/live"
	standings "github.com/volleypro/match-sync/services/standings"
)

func main() {
	ctx := context.Background()

	projectID := os.Getenv("FIREBASE_PROJECT_ID")
	credentialsJSON := os.Getenv("FIREBASE_CREDENTIALS_JSON")
	port := os.Getenv("PORT")
	allowOrigins := os.Getenv("CORS_HOSTS")

	credentialsOption := option.WithCredentialsJSON([]byte(credentialsJSON))

	firestoreClient, err := firestore.NewClient(ctx, projectID, credentialsOption)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	firebaseApp, err := firebase.NewApp(ctx, nil, credentialsOption)
	if err != nil {
		log.Fatalf("error initializing app: %v\n", err)
	}

	storeService := store.NewService(firestoreClient)
	resendService := resend.NewService(firestoreClient)

	adminService := admin.NewAdminService(firestoreClient, firebaseApp, resendService)
	liveService := live.NewLiveService(firestoreClient, firebaseApp, storeService)
	fixturesService := fixtures.NewFixturesService(storeService)
	standingsService := standings.NewStandingsService(storeService)

	config := cors.DefaultConfig()
	config.AllowOrigins = strings.Split(allowOrigins, ",")
	config.AllowCredentials = true
	config.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Access-Control-Allow-Origin"}

	router := gin.Default()
	router.Use(cors.New(config))

	adminRouter := router.Group("/admin/v1")
	adminRouter.Use(auth.AuthMiddleware(firebaseApp))

	liveRouter := router.Group("/live/v1")
	liveRouter.Use(auth.AuthMiddleware(firebaseApp))

	fixturesRouter := router.Group("/fixtures/v1")
	fixturesRouter.Use(auth.AuthMiddleware(firebaseApp))

	standingsRouter := router.Group("/standings/v1")

	admin.NewHTTPHandler(admin.HTTPOptions{
		Service: adminService,
		Router:  adminRouter,
	})

	live.NewHTTPHandler(live.HTTPOptions{
		Service: liveService,
		Router:  liveRouter,
	})

	fixtures.NewHTTPHandler(fixtures.HTTPOptions{
		Service: fixturesService,
		Router:  fixturesRouter,
	})

	standings.NewHTTPHandler(standings.HTTPOptions{
		Service: standingsService,
		Router:  standingsRouter,
	})

	log.Fatal(router.Run(":" + port))
}
