package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"placeholder-mirror/internal/usecase/user"
	"placeholder-mirror/pkg/logger"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	svc     user.Service
	baseURL string
	log     *zap.Logger
}

// NewUserHandler creates a new UserHandler instance. baseURL prefixes the
// Location header of created users.
func NewUserHandler(svc user.Service, baseURL string, log *zap.Logger) *UserHandler {
	return &UserHandler{
		svc:     svc,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

// MessageResponse represents a plain confirmation message
type MessageResponse struct {
	Message string `json:"message"`
}

// isDigits reports whether s is a non-empty run of ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// GetUser handles GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id := c.Param("id")
	if !isDigits(id) {
		RouteNotFound(c)
		return
	}

	detail, err := h.svc.GetUserByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, MsgGetFailed)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// DeleteUser handles DELETE /users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if !isDigits(id) {
		RouteNotFound(c)
		return
	}

	if err := h.svc.DeleteUserByID(c.Request.Context(), id); err != nil {
		writeError(c, err, MsgDeleteFailed)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "User " + id + " deleted"})
}

// DeleteAllUsers handles DELETE /users
func (h *UserHandler) DeleteAllUsers(c *gin.Context) {
	if err := h.svc.DeleteAllUsers(c.Request.Context()); err != nil {
		writeError(c, err, MsgDeleteAll)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "All users deleted"})
}

// CreateUser handles PUT /users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req user.CreateUserRequest
	// an empty body decodes as {} and fails the presence check instead
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		logger.WithContext(c.Request.Context(), h.log).Warn("invalid create user body", zap.Error(err))
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: MsgInvalidBody})
		return
	}

	created, err := h.svc.CreateUser(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, MsgCreateFailed)
		return
	}

	c.Header("Location", h.baseURL+"/users/"+strconv.FormatInt(created.ID, 10))
	c.JSON(http.StatusCreated, created)
}
