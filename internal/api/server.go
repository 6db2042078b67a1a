// Package api exposes the control and dashboard surface over HTTP. Every
// handler either reads an engine snapshot or enqueues a cooperative
// command; none of them reach into cycle internals.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"crypto-trading-bot/internal/engine"
	"crypto-trading-bot/internal/interfaces"
	"crypto-trading-bot/internal/notify"
	"crypto-trading-bot/internal/types"
)

// Server wires the REST and WebSocket endpoints around the engine.
type Server struct {
	Router *gin.Engine
	Engine interfaces.Engine
	Store  interfaces.Store
	Hub    *notify.Hub
	Meta   SystemMeta

	// runCtx is the process-lifetime context handed to engine restarts,
	// so a relaunched loop outlives the HTTP request that triggered it.
	runCtx context.Context
}

// SystemMeta describes runtime facts exposed to the dashboard.
type SystemMeta struct {
	Mode    string
	Venue   string
	Symbol  string
	Version string
}

type setWeightRequest struct {
	Weight *float64 `json:"weight" binding:"required"`
}

func NewServer(runCtx context.Context, eng interfaces.Engine, store interfaces.Store, hub *notify.Hub, meta SystemMeta) *Server {
	r := gin.New()

	// Middleware stack (order matters!)
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(RequestLogger())
	r.Use(RateLimitMiddleware())
	r.Use(TimeoutMiddleware(15 * time.Second))
	r.Use(CORSMiddleware())

	s := &Server{
		Router: r,
		Engine: eng,
		Store:  store,
		Hub:    hub,
		Meta:   meta,
		runCtx: runCtx,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Router.GET("/healthz", s.healthz)
	s.Router.GET("/ws", s.websocket)

	v1 := s.Router.Group("/api/v1")
	{
		v1.GET("/status", s.getStatus)
		v1.GET("/positions", s.getPositions)
		v1.GET("/trades", s.getTrades)
		v1.GET("/stats/daily", s.getDailyStats)
		v1.GET("/strategies", s.getStrategies)

		system := v1.Group("/system")
		{
			system.POST("/pause", s.pauseEngine)
			system.POST("/resume", s.resumeEngine)
			system.POST("/start", s.startEngine)
			system.POST("/reset-killswitch", s.resetKillSwitch)
		}

		v1.POST("/positions/close-all", s.closeAllPositions)

		strategies := v1.Group("/strategies")
		{
			strategies.PUT("/:name/weight", s.setStrategyWeight)
			strategies.POST("/:name/enable", s.enableStrategy)
			strategies.POST("/:name/disable", s.disableStrategy)
		}
	}
}

// Start runs the HTTP server until the listener fails.
func (s *Server) Start(addr string) error {
	return s.Router.Run(addr)
}

func respondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, gin.H{
		"code":  code,
		"error": msg,
	})
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"mode":    s.Meta.Mode,
		"version": s.Meta.Version,
	})
}

func (s *Server) websocket(c *gin.Context) {
	s.Hub.HandleWS(c.Writer, c.Request)
}

func (s *Server) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.Engine.Status())
}

func (s *Server) getPositions(c *gin.Context) {
	positions := s.Engine.Positions()
	if positions == nil {
		positions = []types.Position{}
	}
	c.JSON(http.StatusOK, positions)
}

func (s *Server) getTrades(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}

	trades, err := s.Store.RecentTrades(c.Request.Context(), limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}
	if trades == nil {
		trades = []types.Trade{}
	}
	c.JSON(http.StatusOK, trades)
}

func (s *Server) getDailyStats(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	if days <= 0 {
		days = 30
	}
	if days > 365 {
		days = 365
	}

	stats, err := s.Store.DailyStats(c.Request.Context(), days)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}
	if stats == nil {
		stats = []types.DailyStat{}
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) getStrategies(c *gin.Context) {
	strategies := s.Engine.Strategies()
	if strategies == nil {
		strategies = []types.StrategyInfo{}
	}
	c.JSON(http.StatusOK, strategies)
}

func (s *Server) pauseEngine(c *gin.Context) {
	s.Engine.Pause()
	c.JSON(http.StatusOK, gin.H{"status": "paused"})
}

func (s *Server) resumeEngine(c *gin.Context) {
	s.Engine.Resume()
	c.JSON(http.StatusOK, gin.H{"status": "resumed"})
}

func (s *Server) startEngine(c *gin.Context) {
	if err := s.Engine.Start(s.runCtx); err != nil {
		respondError(c, http.StatusConflict, "NOT_STARTABLE", err.Error())
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "starting"})
}

func (s *Server) resetKillSwitch(c *gin.Context) {
	if err := s.Engine.ResetKillSwitch(); err != nil {
		respondError(c, http.StatusInternalServerError, "RESET_FAILED", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

func (s *Server) closeAllPositions(c *gin.Context) {
	s.Engine.RequestCloseAll()
	c.JSON(http.StatusAccepted, gin.H{"status": "close-all requested"})
}

func (s *Server) setStrategyWeight(c *gin.Context) {
	var req setWeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	name := c.Param("name")
	if err := s.Engine.SetStrategyWeight(name, *req.Weight); err != nil {
		if errors.Is(err, engine.ErrUnknownStrategy) {
			respondError(c, http.StatusNotFound, "UNKNOWN_STRATEGY", err.Error())
			return
		}
		respondError(c, http.StatusBadRequest, "INVALID_WEIGHT", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"strategy": name, "weight": *req.Weight})
}

func (s *Server) enableStrategy(c *gin.Context) {
	name := c.Param("name")
	if err := s.Engine.EnableStrategy(name); err != nil {
		respondError(c, http.StatusNotFound, "UNKNOWN_STRATEGY", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"strategy": name, "enabled": true})
}

func (s *Server) disableStrategy(c *gin.Context) {
	name := c.Param("name")
	if err := s.Engine.DisableStrategy(name); err != nil {
		respondError(c, http.StatusNotFound, "UNKNOWN_STRATEGY", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"strategy": name, "enabled": false})
}
