package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/anorlov/chatwire/internal/blob"
	"github.com/anorlov/chatwire/internal/core"
	"github.com/anorlov/chatwire/internal/proto"
)

// APIHandlers provides read-only REST views over the hub state plus blob
// retrieval. All state access goes through hub queries so the event loop
// remains the only owner of the maps.
type APIHandlers struct {
	hub   *core.Hub
	blobs blob.Store
	log   *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(hub *core.Hub, blobs blob.Store, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{hub: hub, blobs: blobs, log: logger}
}

// MessagesResponse is the body of GET /api/messages.
type MessagesResponse struct {
	Count    int             `json:"count"`
	Messages []proto.Message `json:"messages"`
}

// UsersResponse is the body of GET /api/users.
type UsersResponse struct {
	Online  []proto.User `json:"online"`
	Offline []proto.User `json:"offline"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status        string  `json:"status"`
	Users         int     `json:"users"`
	Messages      int     `json:"messages"`
	UptimeSeconds float64 `json:"uptime"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Messages returns the retained message count and the recent window.
// GET /api/messages
func (h *APIHandlers) Messages(c *gin.Context) {
	count, messages, err := h.hub.Messages(c.Request.Context())
	if err != nil {
		h.log.Error().Str("code", err.Code).Msg("messages query failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, MessagesResponse{Count: count, Messages: messagesToProto(messages)})
}

// Users returns all participants split by online status.
// GET /api/users
func (h *APIHandlers) Users(c *gin.Context) {
	users, err := h.hub.Users(c.Request.Context())
	if err != nil {
		h.log.Error().Str("code", err.Code).Msg("users query failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	resp := UsersResponse{Online: []proto.User{}, Offline: []proto.User{}}
	for _, p := range users {
		u := userFromParticipant(p)
		if p.Online {
			resp.Online = append(resp.Online, u)
		} else {
			resp.Offline = append(resp.Offline, u)
		}
	}
	c.JSON(http.StatusOK, resp)
}

// Health is the liveness probe.
// GET /health
func (h *APIHandlers) Health(c *gin.Context) {
	users, messages, err := h.hub.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "hub unavailable"})
		return
	}
	c.JSON(http.StatusOK, HealthResponse{
		Status:        "ok",
		Users:         users,
		Messages:      messages,
		UptimeSeconds: time.Since(h.hub.Started()).Seconds(),
	})
}

// Download serves a stored file blob by its generated name.
// GET /uploads/:filename
func (h *APIHandlers) Download(c *gin.Context) {
	path, err := h.blobs.Resolve(c.Param("filename"))
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "file not found"})
			return
		}
		h.log.Error().Err(err).Msg("blob resolve failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.File(path)
}
