// Package api exposes the tutor over HTTP for remote chat front ends.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/abhisek/eduindia/internal/dispatch"
	"github.com/abhisek/eduindia/internal/learner"
)

// Server serves the tutor API.
type Server struct {
	dispatcher *dispatch.Dispatcher
	logger     *zap.Logger
	newID      func() string

	// sessions maps a session ID to its last request.
	mu         sync.Mutex
	sessions   map[string]time.Time
	sessionTTL time.Duration
	now        func() time.Time
}

// NewServer creates a Server. Sessions idle for longer than sessionTTL
// are forgotten; zero keeps them until deleted. logger may be nil.
func NewServer(d *dispatch.Dispatcher, sessionTTL time.Duration, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		dispatcher: d,
		logger:     logger,
		newID:      uuid.NewString,
		sessions:   make(map[string]time.Time),
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// Sweep ends every session idle for longer than the TTL and returns how
// many were removed.
func (s *Server) Sweep() int {
	if s.sessionTTL <= 0 {
		return 0
	}
	now := s.now()

	s.mu.Lock()
	var expired []string
	for id, seen := range s.sessions {
		if now.Sub(seen) > s.sessionTTL {
			expired = append(expired, id)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, id := range expired {
		s.dispatcher.Store().EndSession(id)
	}
	if len(expired) > 0 {
		s.logger.Info("expired idle sessions", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Server) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())
	engine.GET("/healthz", s.handleHealthz)
	engine.GET("/api/profiles", s.handleProfiles)
	engine.POST("/api/sessions", s.handleCreateSession)
	engine.POST("/api/sessions/:id/messages", s.withSession(s.handleMessage))
	engine.GET("/api/sessions/:id/profile", s.withSession(s.handleGetProfile))
	engine.PUT("/api/sessions/:id/profile", s.withSession(s.handleSelectProfile))
	engine.DELETE("/api/sessions/:id", s.withSession(s.handleEndSession))
	return engine
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := s.now()
		c.Next()
		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", s.now().Sub(start)))
	}
}

// withSession rejects requests for sessions this server did not create or
// has expired, and marks the session as used.
func (s *Server) withSession(h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		now := s.now()

		s.mu.Lock()
		seen, ok := s.sessions[id]
		if ok && s.sessionTTL > 0 && now.Sub(seen) > s.sessionTTL {
			delete(s.sessions, id)
			s.dispatcher.Store().EndSession(id)
			ok = false
		}
		if ok {
			s.sessions[id] = now
		}
		s.mu.Unlock()
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		h(c)
	}
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleProfiles(c *gin.Context) {
	profiles := s.dispatcher.Store().Profiles()
	c.JSON(http.StatusOK, lo.Map(profiles, func(p *learner.Profile, _ int) learner.Snapshot {
		return p.Snapshot()
	}))
}

type createSessionRequest struct {
	ProfileID string `json:"profile_id"`
}

type sessionResponse struct {
	SessionID string           `json:"session_id"`
	Profile   learner.Snapshot `json:"profile"`
}

func (s *Server) handleCreateSession(c *gin.Context) {
	var req createSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
	}

	id := s.newID()
	if req.ProfileID != "" {
		if !s.selectProfile(c, id, req.ProfileID) {
			return
		}
	}

	s.mu.Lock()
	s.sessions[id] = s.now()
	s.mu.Unlock()

	c.JSON(http.StatusCreated, sessionResponse{
		SessionID: id,
		Profile:   s.dispatcher.Store().Active(id).Snapshot(),
	})
}

type messageRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query required"})
		return
	}

	res := s.dispatcher.Handle(c.Request.Context(), c.Param("id"), req.Query)
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleGetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, s.dispatcher.Store().Active(c.Param("id")).Snapshot())
}

type selectProfileRequest struct {
	ProfileID string `json:"profile_id"`
}

type selectProfileResponse struct {
	Profile learner.Snapshot `json:"profile"`

	// ResetTranscript tells the client to clear its local conversation.
	ResetTranscript bool `json:"reset_transcript"`
}

func (s *Server) handleSelectProfile(c *gin.Context) {
	var req selectProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	id := c.Param("id")
	if !s.selectProfile(c, id, req.ProfileID) {
		return
	}
	c.JSON(http.StatusOK, selectProfileResponse{
		Profile:         s.dispatcher.Store().Active(id).Snapshot(),
		ResetTranscript: true,
	})
}

// selectProfile makes profileID active for the session, or answers 404
// with the closest configured IDs.
func (s *Server) selectProfile(c *gin.Context, sessionID, profileID string) bool {
	var unknown *learner.UnknownProfileError
	if _, err := s.dispatcher.Store().Lookup(profileID); errors.As(err, &unknown) {
		c.JSON(http.StatusNotFound, gin.H{"error": unknown.Error(), "suggestions": unknown.Suggestions})
		return false
	}
	s.dispatcher.SelectProfile(sessionID, profileID)
	return true
}

func (s *Server) handleEndSession(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	s.dispatcher.Store().EndSession(id)
	c.Status(http.StatusNoContent)
}
