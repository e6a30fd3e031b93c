package middleware

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "faithledger/internal/errors"
	"faithledger/internal/logger"
)

// ErrorTemplate is the page rendered for failed HTML requests.
const ErrorTemplate = "error.html"

// PageData completes the data of a rendered page with the values the layout
// needs.
type PageData func(c *gin.Context, data gin.H) gin.H

// ErrorHandler returns a Gin middleware that converts errors set on the Gin
// context into an error page, or a JSON body for /ajax and /api requests.
// AppErrors keep their status and message; unexpected errors are logged and
// shown as a generic internal error to avoid leaking details.
func ErrorHandler(page PageData) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		// Process the last error (most relevant in a middleware chain)
		appErr := Resolve(c, c.Errors.Last().Err)
		if wantsJSON(c) {
			c.JSON(appErr.StatusCode, gin.H{
				"error": gin.H{
					"code":    appErr.Code,
					"message": appErr.Message,
				},
			})
			return
		}
		data := gin.H{
			"Status":  appErr.StatusCode,
			"Title":   http.StatusText(appErr.StatusCode),
			"Message": appErr.Message,
		}
		if page != nil {
			data = page(c, data)
		}
		c.HTML(appErr.StatusCode, ErrorTemplate, data)
	}
}

// Resolve maps err to the AppError shown to the client, logging anything
// that carries internal detail.
func Resolve(c *gin.Context, err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"message", appErr.Message,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
				"request_id", RequestID(c),
			)
		}
		return appErr
	}

	var fields apperrors.FieldErrors
	if errors.As(err, &fields) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, fields.Error())
	}

	// Unexpected error: log full details, return generic message
	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"request_id", RequestID(c),
	)
	return apperrors.ErrInternalServer
}

func wantsJSON(c *gin.Context) bool {
	path := c.Request.URL.Path
	return strings.HasPrefix(path, "/ajax/") || strings.HasPrefix(path, "/api/")
}

// Recovery returns a Gin middleware that turns a panic into an internal
// error for ErrorHandler to render. The panic is logged with zap.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		logger.Get().Errorw("panic recovered",
			"panic", fmt.Sprint(recovered),
			"path", c.Request.URL.Path,
			"request_id", RequestID(c),
		)
		_ = c.Error(apperrors.Wrap(apperrors.ErrInternalServer, fmt.Errorf("panic: %v", recovered)))
		c.Abort()
	})
}
