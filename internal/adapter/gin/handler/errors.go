package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "placeholder-mirror/pkg/errors"
)

// Fixed client-facing messages.
const (
	MsgRouteNotFound  = "Route not found"
	MsgInvalidBody    = "Invalid request body"
	MsgLoadFailed     = "Failed to load data"
	MsgDeleteAll      = "Failed to delete users"
	MsgDeleteFailed   = "Failed to delete user"
	MsgGetFailed      = "Failed to get user"
	MsgCreateFailed   = "Failed to create user"
	MsgInternalFailed = "Internal server error"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusByKind maps client-caused error kinds to their HTTP status.
// Kinds not listed are server failures.
var statusByKind = map[apperrors.Kind]int{
	apperrors.KindInvalidID:     http.StatusBadRequest,
	apperrors.KindValidation:    http.StatusBadRequest,
	apperrors.KindNotFound:      http.StatusNotFound,
	apperrors.KindAlreadyExists: http.StatusConflict,
}

// writeError renders err. Client errors carry their own message; anything else
// becomes a 500 with the route's fallback message so driver details never leak.
func writeError(c *gin.Context, err error, fallback string) {
	_ = c.Error(err)

	if status, ok := statusByKind[apperrors.KindOf(err)]; ok {
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback})
}

// RouteNotFound answers requests that match no route.
func RouteNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: MsgRouteNotFound})
}
