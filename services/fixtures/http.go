package fixtures

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/volleypro/match-sync/repos/store"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	POST(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	PUT(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	Use(middleware ...gin.HandlerFunc) gin.IRoutes
	Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup
}

// Fixtures is the interface for the fixture plan service.
type Fixtures interface {
	GenerateFixtures(c *gin.Context, slug string, weekdays []string) ([]*store.Fixture, error)
	ListFixtures(c *gin.Context, slug string) ([]*store.Fixture, error)
	UpdateDate(c *gin.Context, slug, fixtureID, date string) error
	QuickFinish(c *gin.Context, slug, fixtureID string, setScores [][2]int) (*store.Fixture, error)
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// The service we provides the HTTP transport for.
	Service Fixtures

	// The router instance to configure the HTTP routes.
	Router Router
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}
	r.POST("/tournaments/:slug/fixtures/generate", h.generateHandler)
	r.GET("/tournaments/:slug/fixtures", h.listHandler)
	r.PUT("/tournaments/:slug/fixtures/:fixture_id/date", h.dateHandler)
	r.POST("/tournaments/:slug/fixtures/:fixture_id/quick-finish", h.quickFinishHandler)
}

type httpHandler struct {
	HTTPOptions
}

type generateRequest struct {
	Weekdays []string `json:"weekdays"`
}

type dateRequest struct {
	Date string `json:"date"`
}

type quickFinishRequest struct {
	Sets [][2]int `json:"sets"`
}

func (h *httpHandler) fail(c *gin.Context, err error) {
	switch err {
	case ErrNotAuthorized:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case store.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case ErrBadDateRange, ErrBadWeekday, ErrTooFewTeams, ErrBadSetScores:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("Fixture command failed: %v\n", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
	}
	c.Abort()
}

func (h *httpHandler) generateHandler(c *gin.Context) {
	var request generateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}
	fixtures, err := h.Service.GenerateFixtures(c, c.Param("slug"), request.Weekdays)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, fixtures)
}

func (h *httpHandler) listHandler(c *gin.Context) {
	fixtures, err := h.Service.ListFixtures(c, c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, fixtures)
}

func (h *httpHandler) dateHandler(c *gin.Context) {
	var request dateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}
	if err := h.Service.UpdateDate(c, c.Param("slug"), c.Param("fixture_id"), request.Date); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Fixture rescheduled",
	})
}

func (h *httpHandler) quickFinishHandler(c *gin.Context) {
	var request quickFinishRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}
	fixture, err := h.Service.QuickFinish(c, c.Param("slug"), c.Param("fixture_id"), request.Sets)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, fixture)
}
