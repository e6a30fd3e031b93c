package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// HealthResponse reports that the server is up.
type HealthResponse struct {
	Status string `json:"status"`
}

// Health godoc
// @Summary     Health check
// @Description Reports that the server is running
// @Tags        system
// @Produce     json
// @Success     200 {object} HealthResponse "Server is up"
// @Router      /api/health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
