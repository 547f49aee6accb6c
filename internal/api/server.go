package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/codesentry/internal/conversation"
	"github.com/codesentry/internal/session"
	"github.com/codesentry/internal/storage"
)

// Server exposes the gateway over a local HTTP API so other on-device
// processes (or a UI shell) can drive turns without linking the Go code.
type Server struct {
	echo    *echo.Echo
	port    int
	gateway *session.Gateway
	store   *storage.Store
}

// NewServer creates a new API server around a gateway and its store.
func NewServer(port int, gateway *session.Gateway, store *storage.Store) *Server {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	server := &Server{
		echo:    e,
		port:    port,
		gateway: gateway,
		store:   store,
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "healthy",
		})
	})

	v1 := s.echo.Group("/api/v1")

	v1.POST("/turn", s.handleTurn)
	v1.GET("/conversations", s.listConversations)
	v1.GET("/conversations/:id", s.getConversation)
	v1.DELETE("/conversations/:id", s.deleteConversation)
}

// Start begins the API server and blocks until interrupted.
func (s *Server) Start() error {
	go func() {
		if err := s.echo.Start(fmt.Sprintf(":%d", s.port)); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.echo.Shutdown(ctx)
}

type turnRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Message        string `json:"message"`
	IsCode         bool   `json:"is_code"`
}

type turnMessage struct {
	Content          string               `json:"content"`
	Role             conversation.Origin  `json:"role"`
	IsCode           bool                 `json:"is_code"`
	Issues           []conversation.Issue `json:"issues,omitempty"`
	SuggestedActions []string             `json:"suggested_actions,omitempty"`
}

type turnResponse struct {
	ConversationID string        `json:"conversation_id"`
	Messages       []turnMessage `json:"messages"`
	LastError      string        `json:"last_error,omitempty"`
	IsConnected    bool          `json:"is_connected"`
}

// handleTurn runs one full gateway turn, including the remote round trip for
// forward decisions, and returns the updated conversation.
func (s *Server) handleTurn(c echo.Context) error {
	var req turnRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Message == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "message is required"})
	}

	state := s.gateway.Resume(req.ConversationID)
	state = s.gateway.RunTurn(c.Request().Context(), req.Message, req.IsCode, state)

	resp := turnResponse{
		ConversationID: state.ConversationID,
		LastError:      state.LastError,
		IsConnected:    state.IsConnected,
	}
	for _, m := range state.Messages {
		resp.Messages = append(resp.Messages, turnMessage{
			Content:          m.Content,
			Role:             m.Origin,
			IsCode:           m.IsCode,
			Issues:           m.Issues,
			SuggestedActions: m.SuggestedActions,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) listConversations(c echo.Context) error {
	summaries, err := s.store.List()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not list conversations"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"conversations": summaries,
		"total":         len(summaries),
	})
}

func (s *Server) getConversation(c echo.Context) error {
	record, err := s.store.Get(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not load conversation"})
	}
	if record == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "conversation not found"})
	}
	return c.JSON(http.StatusOK, record)
}

func (s *Server) deleteConversation(c echo.Context) error {
	deleted, err := s.store.Delete(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not delete conversation"})
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "conversation not found"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "conversation deleted", "conversation_id": c.Param("id")})
}
