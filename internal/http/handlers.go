package http

import (
	"errors"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/renatodellosso/Stockbot/internal/command"
	"github.com/renatodellosso/Stockbot/internal/domain"
)

type Server struct {
	R        *gin.Engine
	Registry *command.Registry
	Logger   *zap.Logger
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type reply struct {
	Message string `json:"message"`
}

// NewServer wires the router, the command registry, and middleware. Every
// request is dispatched to completion before the handler returns, so
// command errors always surface in the response.
func NewServer(registry *command.Registry, logger *zap.Logger, corsOrigin string) *Server {
	g := gin.New()

	// Request logging
	g.Use(func(cn *gin.Context) {
		start := time.Now()
		cn.Next()
		logger.Info("http_request",
			zap.String("method", cn.Request.Method),
			zap.String("path", cn.Request.URL.Path),
			zap.Int("status", cn.Writer.Status()),
			zap.String("ip", cn.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		)
	})

	g.Use(gin.Recovery())

	// CORS
	g.Use(func(cn *gin.Context) {
		origin := cn.GetHeader("Origin")
		cn.Writer.Header().Set("Vary", "Origin")
		cn.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		cn.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		cn.Writer.Header().Set("Access-Control-Max-Age", "86400")
		if corsOrigin == "*" {
			cn.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else if origin != "" && origin == corsOrigin {
			cn.Writer.Header().Set("Access-Control-Allow-Origin", corsOrigin)
		}
		if cn.Request.Method == http.MethodOptions {
			cn.AbortWithStatus(http.StatusNoContent)
			return
		}
		cn.Next()
	})

	s := &Server{R: g, Registry: registry, Logger: logger}

	g.GET("/health", func(cn *gin.Context) { cn.JSON(http.StatusOK, gin.H{"ok": true}) })
	g.POST("/api/portfolios", s.createPortfolio)
	g.GET("/api/profile/:handle", s.profile)
	g.GET("/api/portfolios/:handle", s.viewPortfolio)
	g.POST("/api/buy", s.buy)

	return s
}

// --- Helpers ---

func (s *Server) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, apiError{Code: "bad_request", Message: msg})
}

// respond maps a command response onto an HTTP status. Business rejections
// are client errors; anything else is a logged internal failure.
func (s *Server) respond(c *gin.Context, resp command.Response) {
	switch {
	case resp.Err == nil:
		c.JSON(http.StatusOK, reply{Message: resp.Content})
	case domain.IsNotFound(resp.Err), errors.Is(resp.Err, domain.ErrSymbolNotFound):
		c.JSON(http.StatusNotFound, apiError{Code: "not_found", Message: resp.Content})
	case errors.Is(resp.Err, domain.ErrDuplicateName), domain.IsConflict(resp.Err):
		c.JSON(http.StatusConflict, apiError{Code: "conflict", Message: resp.Content})
	case errors.Is(resp.Err, domain.ErrInvalidAmount), errors.Is(resp.Err, domain.ErrInsufficientFunds):
		c.JSON(http.StatusUnprocessableEntity, apiError{Code: "rejected", Message: resp.Content})
	default:
		s.Logger.Error("internal_error", zap.String("path", c.Request.URL.Path), zap.Error(resp.Err))
		c.JSON(http.StatusInternalServerError, apiError{Code: "internal_server_error", Message: "internal server error"})
	}
}

// --- Handlers ---

type createPortfolioBody struct {
	Handle string           `json:"handle" binding:"required"`
	Name   string           `json:"name"`
	Cash   *decimal.Decimal `json:"cash"`
}

func (s *Server) createPortfolio(c *gin.Context) {
	var body createPortfolioBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.badRequest(c, "handle is required")
		return
	}
	resp := s.Registry.Dispatch(c.Request.Context(), command.CreatePortfolio{
		Handle:       body.Handle,
		Name:         body.Name,
		StartingCash: body.Cash,
	})
	s.respond(c, resp)
}

func (s *Server) profile(c *gin.Context) {
	resp := s.Registry.Dispatch(c.Request.Context(), command.Profile{
		Handle: c.Param("handle"),
	})
	s.respond(c, resp)
}

func (s *Server) viewPortfolio(c *gin.Context) {
	resp := s.Registry.Dispatch(c.Request.Context(), command.ViewPortfolio{
		Handle: c.Param("handle"),
		Name:   c.Query("name"),
	})
	s.respond(c, resp)
}

type buyBody struct {
	Handle    string          `json:"handle" binding:"required"`
	Symbol    string          `json:"symbol" binding:"required"`
	Value     decimal.Decimal `json:"value"`
	Portfolio string          `json:"portfolio"`
}

func (s *Server) buy(c *gin.Context) {
	var body buyBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.badRequest(c, "handle and symbol are required")
		return
	}
	resp := s.Registry.Dispatch(c.Request.Context(), command.Buy{
		Handle:    body.Handle,
		Symbol:    body.Symbol,
		Value:     body.Value,
		Portfolio: body.Portfolio,
	})
	s.respond(c, resp)
}
