package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"placeholder-mirror/internal/usecase/loader"
)

// Loader runs a full data load.
type Loader interface {
	LoadData(ctx context.Context) (*loader.Result, error)
}

// RootResponse is the body of GET /.
type RootResponse struct {
	Message   string `json:"message"`
	Author    string `json:"author"`
	Portfolio string `json:"portfolio"`
}

// DataHandler serves the root banner and the load trigger.
type DataHandler struct {
	loader Loader
	root   RootResponse
}

// NewDataHandler creates a new DataHandler instance
func NewDataHandler(l Loader, author, portfolio string) *DataHandler {
	return &DataHandler{
		loader: l,
		root: RootResponse{
			Message:   "REST API implementation completed successfully",
			Author:    author,
			Portfolio: portfolio,
		},
	}
}

// Root handles GET /
func (h *DataHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, h.root)
}

// Load handles GET /load
func (h *DataHandler) Load(c *gin.Context) {
	if _, err := h.loader.LoadData(c.Request.Context()); err != nil {
		// every load failure is a 500
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: MsgLoadFailed})
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}
