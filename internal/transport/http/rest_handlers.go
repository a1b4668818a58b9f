package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/huddlechat/huddle-server/internal/store"
)

const maxHistoryLimit = 200

// APIHandlers provides HTTP handlers for the REST query surface consumed by
// the UI: recent message history and user lookup/creation.
type APIHandlers struct {
	store        store.Store
	historyLimit int
	log          *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance. historyLimit is the
// default message count for GET /api/messages.
func NewAPIHandlers(st store.Store, historyLimit int, logger *zerolog.Logger) *APIHandlers {
	if historyLimit <= 0 {
		historyLimit = 50
	}
	return &APIHandlers{
		store:        st,
		historyLimit: historyLimit,
		log:          logger,
	}
}

// CreateUserRequest represents the create-user request body.
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,max=64"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ListMessages returns recent messages ordered oldest to newest.
// GET /api/messages?limit=N
func (h *APIHandlers) ListMessages(c *gin.Context) {
	type listQuery struct {
		Limit int `form:"limit"`
	}
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		return
	}

	limit := q.Limit
	if limit <= 0 {
		limit = h.historyLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	messages, err := h.store.GetRecentMessages(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to fetch messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to fetch messages"})
		return
	}

	payload := make([]any, 0, len(messages))
	for _, msg := range messages {
		payload = append(payload, messagePayload(msg))
	}

	c.JSON(http.StatusOK, payload)
}

// CreateUser looks up a user by username, creating it on first use.
// POST /api/users
func (h *APIHandlers) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create user request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user data"})
		return
	}

	user, err := h.store.GetUserByUsername(c.Request.Context(), req.Username)
	if errors.Is(err, store.ErrUserNotFound) {
		user, err = h.store.CreateUser(c.Request.Context(), req.Username)
	}
	if err != nil {
		h.log.Error().Err(err).Str("username", req.Username).Msg("failed to create user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to create user"})
		return
	}

	c.JSON(http.StatusOK, UserResponse{ID: user.ID, Username: user.Username})
}
