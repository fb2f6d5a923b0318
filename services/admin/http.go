package admin

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	access "github.com/volleypro/match-sync/pkg/accessCode"
	appauth "github.com/volleypro/match-sync/pkg/auth"
	resend "github.com/volleypro/match-sync/repos/resend"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	POST(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	Use(middleware ...gin.HandlerFunc) gin.IRoutes
	Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup
}

// Admin is the interface for the access service.
type Admin interface {
	ClaimAccess(c *gin.Context, request resend.AccessRequest) error
	AddTournamentAccess(c *gin.Context, slug, uniqueID, role, teamID string) error
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// The service we provides the HTTP transport for.
	Service Admin

	// The router instance to configure the HTTP routes.
	Router Router
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}
	r.POST("/claim", h.claimHandler)
	r.GET("/access/:access_code", h.accessHandler)
}

type httpHandler struct {
	HTTPOptions
}

func (h *httpHandler) claimHandler(c *gin.Context) {
	var request resend.AccessRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}
	if request.Role == "" {
		request.Role = appauth.RoleViewer
	}

	if err := h.Service.ClaimAccess(c, request); err != nil {
		log.Printf("Failed to claim access: %v\n", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send mail request"})
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result": "Access granted",
		"slug":   request.Slug,
		"email":  request.Email,
	})
}

func (h *httpHandler) accessHandler(c *gin.Context) {
	accessCode := c.Param("access_code")
	slug, uniqueID, err := access.Decode(accessCode)
	if err != nil {
		log.Printf("Failed to decode access code: %v\n", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "not a valid access code"})
		c.Abort()
		return
	}

	role := c.Query("role")
	if role == "" {
		role = appauth.RoleViewer
	}
	err = h.Service.AddTournamentAccess(c, slug, uniqueID, role, c.Query("teamId"))
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "not valid access code"})
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, gin.H{"slug": slug})
}
