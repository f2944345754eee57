// Package response writes the JSON error bodies shared by every handler.
package response

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mdobak/go-xerrors"

	"blog_backend/internal/api"
	"blog_backend/internal/shared/validation"
)

const (
	msgInternal    = "internal server error"
	msgUnavailable = "service temporarily unavailable"
	msgValidation  = "validation failed"
	msgBadRequest  = "invalid request body"

	// RetryAfterSeconds is sent with every 503.
	RetryAfterSeconds = "1"
)

// Error aborts with status and {"error": message}.
func Error(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, api.ErrorResponse{Error: message})
}

// Validation aborts with 400 and one detail per invalid field.
func Validation(c *gin.Context, verr *validation.Error) {
	details := make([]api.FieldError, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		details = append(details, api.FieldError{Field: f.Field, Message: f.Message})
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, api.ErrorResponse{
		Error:   msgValidation,
		Details: &details,
	})
}

// BindError reports a failed ShouldBindJSON. Struct validation failures list their fields;
// anything else (malformed JSON, wrong types) gets a plain 400.
func BindError(c *gin.Context, err error) {
	if verr, ok := validation.FromBinding(err); ok {
		Validation(c, verr)
		return
	}
	slog.Warn("request body rejected", "error", err, "path", c.FullPath(), "remote_addr", c.ClientIP())
	Error(c, http.StatusBadRequest, msgBadRequest)
}

// Unavailable aborts with 503 and a Retry-After header.
func Unavailable(c *gin.Context, err error) {
	slog.Error("backing store unavailable", "error", err, "path", c.FullPath(), "remote_addr", c.ClientIP())
	c.Header("Retry-After", RetryAfterSeconds)
	Error(c, http.StatusServiceUnavailable, msgUnavailable)
}

// Internal logs err with its stack trace and aborts with a generic 500.
// Errors wrapped at the source keep that stack; others get the caller's.
// The error text is echoed in "detail" only when gin runs in debug mode.
func Internal(c *gin.Context, err error) {
	if err == nil {
		err = xerrors.New("unknown error")
	}
	// スタックを持たないエラーはここで記録する
	if len(xerrors.StackTrace(err)) == 0 {
		err = xerrors.WithStackTrace(err, 1)
	}
	slog.Error("internal error in handling request",
		"error", err.Error(),
		"stack", xerrors.Sprint(err),
		"request_method", c.Request.Method,
		"request_url", c.Request.URL.String(),
		"remote_addr", c.ClientIP(),
	)

	body := api.ErrorResponse{Error: msgInternal}
	if gin.Mode() == gin.DebugMode {
		detail := err.Error()
		body.Detail = &detail
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, body)
}
