package live

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	POST(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	Use(middleware ...gin.HandlerFunc) gin.IRoutes
	Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup
}

// Engine is the interface for the live match command service.
type Engine interface {
	StartMatch(c *gin.Context, slug, fixtureID string, config MatchConfig) (*LiveMatchState, error)
	StartGame(c *gin.Context, matchID string) (*LiveMatchState, error)
	StartSet(c *gin.Context, matchID string, setIndex int) (*LiveMatchState, error)
	FinishSet(c *gin.Context, matchID string, setIndex int) (*LiveMatchState, error)
	ReopenSet(c *gin.Context, matchID string, setIndex int) (*LiveMatchState, error)
	Advance(c *gin.Context, matchID string) (*LiveMatchState, error)
	ApplyPoint(c *gin.Context, matchID, teamID, pointType, playerID string) (*LiveMatchState, error)
	SubtractPoint(c *gin.Context, matchID, teamID string) (*LiveMatchState, error)
	ApplySubstitution(c *gin.Context, matchID, teamID, playerOutID, playerInID string) (*LiveMatchState, error)
	SetRotation(c *gin.Context, matchID, teamID string, numbers []int) (*LiveMatchState, error)
	SetServe(c *gin.Context, matchID, teamID string) (*LiveMatchState, error)
	RecordTimeout(c *gin.Context, matchID, teamID string) (*LiveMatchState, error)
	RequestTimeout(c *gin.Context, matchID, teamID string) (*LiveMatchState, error)
	RequestSubstitution(c *gin.Context, matchID, teamID, playerOutID, playerInID string) (*LiveMatchState, error)
	ProcessRequest(c *gin.Context, matchID, requestID, action string) (*LiveMatchState, error)
	UpdateConfig(c *gin.Context, matchID string, config MatchConfig) (*LiveMatchState, error)
	ToggleDisplay(c *gin.Context, matchID, key string) (*LiveMatchState, error)
	SuppressAutoAdvance(c *gin.Context, matchID string, suppressed bool) (*LiveMatchState, error)
	FinalizeMatch(c *gin.Context, matchID string) error
	ResetMatch(c *gin.Context, slug, fixtureID string) error
	GetState(c *gin.Context, matchID string) (*LiveMatchState, error)
	GetFinishedView(c *gin.Context, slug, fixtureID string) (*FinishedView, error)
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// The service we provides the HTTP transport for.
	Service Engine

	// The router instance to configure the HTTP routes.
	Router Router
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}
	r.POST("/match/:slug/:fixture_id/start", h.startMatchHandler)
	r.POST("/match/:match_id/game/start", h.startGameHandler)
	r.POST("/match/:match_id/set/:set/start", h.setHandler("start"))
	r.POST("/match/:match_id/set/:set/finish", h.setHandler("finish"))
	r.POST("/match/:match_id/set/:set/reopen", h.setHandler("reopen"))
	r.POST("/match/:match_id/advance", h.advanceHandler)
	r.POST("/match/:match_id/point", h.pointHandler)
	r.POST("/match/:match_id/point/subtract", h.subtractHandler)
	r.POST("/match/:match_id/substitution", h.substitutionHandler)
	r.POST("/match/:match_id/rotation", h.rotationHandler)
	r.POST("/match/:match_id/serve", h.serveHandler)
	r.POST("/match/:match_id/timeout", h.timeoutHandler)
	r.POST("/match/:match_id/request/timeout", h.requestTimeoutHandler)
	r.POST("/match/:match_id/request/substitution", h.requestSubstitutionHandler)
	r.POST("/match/:match_id/request/:request_id/:action", h.processRequestHandler)
	r.POST("/match/:match_id/rules", h.rulesHandler)
	r.POST("/match/:match_id/display", h.displayHandler)
	r.POST("/match/:match_id/auto-advance", h.autoAdvanceHandler)
	r.POST("/match/:match_id/finalize", h.finalizeHandler)
	r.POST("/match/:slug/:fixture_id/reset", h.resetHandler)
	r.GET("/match/:match_id", h.stateHandler)
	r.GET("/match/:slug/:fixture_id/view", h.viewHandler)
}

type httpHandler struct {
	HTTPOptions
}

type startMatchRequest struct {
	Config MatchConfig `json:"config"`
}

type teamRequest struct {
	TeamID string `json:"teamId"`
}

type pointRequest struct {
	TeamID   string `json:"teamId"`
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
}

type substitutionRequest struct {
	TeamID      string `json:"teamId"`
	PlayerOutID string `json:"playerOutId"`
	PlayerInID  string `json:"playerInId"`
}

type rotationRequest struct {
	TeamID  string `json:"teamId"`
	Numbers []int  `json:"numbers"`
}

type displayRequest struct {
	Key string `json:"key"`
}

type autoAdvanceRequest struct {
	Suppressed bool `json:"suppressed"`
}

func (h *httpHandler) respond(c *gin.Context, state *LiveMatchState, err error) {
	if err != nil {
		switch err {
		case ErrNoLiveMatch:
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case ErrNotAuthorized:
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case ErrInvalidConfig, ErrRotationSize, ErrLimitReached, ErrUnknownTeam:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("Live match command failed: %v\n", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		}
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *httpHandler) startMatchHandler(c *gin.Context) {
	var request startMatchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}
	if request.Config == (MatchConfig{}) {
		request.Config = DefaultConfig()
	}
	state, err := h.Service.StartMatch(c, c.Param("slug"), c.Param("fixture_id"), request.Config)
	h.respond(c, state, err)
}

func (h *httpHandler) startGameHandler(c *gin.Context) {
	state, err := h.Service.StartGame(c, c.Param("match_id"))
	h.respond(c, state, err)
}

func (h *httpHandler) setHandler(op string) gin.HandlerFunc {
	return func(c *gin.Context) {
		setIndex, err := strconv.Atoi(c.Param("set"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "set index must be a number"})
			c.Abort()
			return
		}
		matchID := c.Param("match_id")
		var state *LiveMatchState
		switch op {
		case "start":
			state, err = h.Service.StartSet(c, matchID, setIndex)
		case "finish":
			state, err = h.Service.FinishSet(c, matchID, setIndex)
		case "reopen":
			state, err = h.Service.ReopenSet(c, matchID, setIndex)
		}
		h.respond(c, state, err)
	}
}

func (h *httpHandler) advanceHandler(c *gin.Context) {
	state, err := h.Service.Advance(c, c.Param("match_id"))
	h.respond(c, state, err)
}

func (h *httpHandler) pointHandler(c *gin.Context) {
	var request pointRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}
	state, err := h.Service.ApplyPoint(c, c.Param("match_id"), request.TeamID, request.Type, request.PlayerID)
	h.respond(c, state, err)
}

func (h *httpHandler) subtractHandler(c *gin.Context) {
	var request teamRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}
	state, err := h.Service.SubtractPoint(c, c.Param("match_id"), request.TeamID)
	h.respond(c, state, err)
}

func (h *httpHandler) substitutionHandler(c *gin.Context) {
	var request substitutionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}
	state, err := h.Service.ApplySubstitution(c, c.Param("match_id"), request.TeamID, request.PlayerOutID, request.PlayerInID)
	h.respond(c, state, err)
}

func (h *httpHandler) rotationHandler(c *gin.Context) {
	var request rotationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}
	state, err := h.Service.SetRotation(c, c.Param("match_id"), request.TeamID, request.Numbers)
	h.respond(c, state, err)
}

func (h *httpHandler) serveHandler(c *gin.Context) {
	var request teamRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}
	state, err := h.Service.SetServe(c, c.Param("match_id"), request.TeamID)
	h.respond(c, state, err)
}

func (h *httpHandler) timeoutHandler(c *gin.Context) {
	var request teamRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}
	state, err := h.Service.RecordTimeout(c, c.Param("match_id"), request.TeamID)
	h.respond(c, state, err)
}

func (h *httpHandler) requestTimeoutHandler(c *gin.Context) {
	var request teamRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}
	state, err := h.Service.RequestTimeout(c, c.Param("match_id"), request.TeamID)
	h.respond(c, state, err)
}

func (h *httpHandler) requestSubstitutionHandler(c *gin.Context) {
	var request substitutionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}
	state, err := h.Service.RequestSubstitution(c, c.Param("match_id"), request.TeamID, request.PlayerOutID, request.PlayerInID)
	h.respond(c, state, err)
}

func (h *httpHandler) processRequestHandler(c *gin.Context) {
	action := c.Param("action")
	if action != "approve" && action != "reject" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action must be approve or reject"})
		c.Abort()
		return
	}
	state, err := h.Service.ProcessRequest(c, c.Param("match_id"), c.Param("request_id"), action)
	h.respond(c, state, err)
}

func (h *httpHandler) rulesHandler(c *gin.Context) {
	var request MatchConfig
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}
	state, err := h.Service.UpdateConfig(c, c.Param("match_id"), request)
	h.respond(c, state, err)
}

func (h *httpHandler) displayHandler(c *gin.Context) {
	var request displayRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}
	state, err := h.Service.ToggleDisplay(c, c.Param("match_id"), request.Key)
	h.respond(c, state, err)
}

func (h *httpHandler) autoAdvanceHandler(c *gin.Context) {
	var request autoAdvanceRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}
	state, err := h.Service.SuppressAutoAdvance(c, c.Param("match_id"), request.Suppressed)
	h.respond(c, state, err)
}

func (h *httpHandler) finalizeHandler(c *gin.Context) {
	err := h.Service.FinalizeMatch(c, c.Param("match_id"))
	if err != nil {
		h.respond(c, nil, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Match finalized",
	})
}

func (h *httpHandler) resetHandler(c *gin.Context) {
	err := h.Service.ResetMatch(c, c.Param("slug"), c.Param("fixture_id"))
	if err != nil {
		h.respond(c, nil, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Match reset",
	})
}

func (h *httpHandler) stateHandler(c *gin.Context) {
	state, err := h.Service.GetState(c, c.Param("match_id"))
	h.respond(c, state, err)
}

func (h *httpHandler) viewHandler(c *gin.Context) {
	view, err := h.Service.GetFinishedView(c, c.Param("slug"), c.Param("fixture_id"))
	if err != nil {
		if err == ErrNotFinished {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		h.respond(c, nil, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
