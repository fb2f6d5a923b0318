package standings

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/volleypro/match-sync/repos/store"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	Use(middleware ...gin.HandlerFunc) gin.IRoutes
	Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup
}

// Standings is the interface for the standings read service.
type Standings interface {
	GetTable(c *gin.Context, slug string) (map[string][]TableRow, error)
	GetTopPlayers(c *gin.Context, slug, role, metric string, limit int) ([]PlayerRow, error)
	GetMatchStats(c *gin.Context, slug, fixtureID string) (*MatchStats, error)
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// The service we provides the HTTP transport for.
	Service Standings

	// The router instance to configure the HTTP routes.
	Router Router
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}
	r.GET("/tournaments/:slug/standings", h.tableHandler)
	r.GET("/tournaments/:slug/top-players", h.topPlayersHandler)
	r.GET("/tournaments/:slug/fixtures/:fixture_id/stats", h.matchStatsHandler)
}

type httpHandler struct {
	HTTPOptions
}

func (h *httpHandler) fail(c *gin.Context, err error) {
	if err == store.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		c.Abort()
		return
	}
	log.Printf("Standings read failed: %v\n", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
	c.Abort()
}

func (h *httpHandler) tableHandler(c *gin.Context) {
	tables, err := h.Service.GetTable(c, c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tables)
}

func (h *httpHandler) topPlayersHandler(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive number"})
			c.Abort()
			return
		}
		limit = parsed
	}

	board, err := h.Service.GetTopPlayers(c, c.Param("slug"), c.Query("role"), c.Query("metric"), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

func (h *httpHandler) matchStatsHandler(c *gin.Context) {
	stats, err := h.Service.GetMatchStats(c, c.Param("slug"), c.Param("fixture_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
