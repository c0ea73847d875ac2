// Package handlers implements the gin handlers of the HTTP API.
package handlers

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/perm-tracker/internal/infrastructure/casefile"
	"github.com/turtacn/perm-tracker/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/perm-tracker/internal/interfaces/http/middleware"
	"github.com/turtacn/perm-tracker/pkg/errors"
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeAppError maps err to its HTTP status.  Server-side failures are
// logged and their message is replaced by the code's default.
func writeAppError(c *gin.Context, logger logging.Logger, err error) {
	var ae *errors.AppError
	if !errors.As(err, &ae) {
		ae = errors.Wrap(err, errors.ErrCodeInternal, errors.DefaultMessage(errors.ErrCodeInternal))
	}
	status := ae.HTTPStatus()
	resp := ErrorResponse{
		Code:      ae.Code.String(),
		Message:   ae.Message,
		Detail:    ae.Detail,
		RequestID: middleware.GetRequestID(c),
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			logging.Err(err),
			logging.String("path", c.FullPath()),
			logging.RequestID(resp.RequestID))
		resp.Message = errors.DefaultMessage(ae.Code)
		resp.Detail = ""
	} else if resp.Detail == "" && ae.Cause != nil {
		resp.Detail = ae.Cause.Error()
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

// bodyFormat picks the case document format from the Content-Type header.
// Anything that is not YAML is decoded as JSON.
func bodyFormat(c *gin.Context) casefile.Format {
	mt, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
	if err != nil {
		return casefile.FormatJSON
	}
	switch mt {
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return casefile.FormatYAML
	}
	return casefile.FormatJSON
}

// todayParam is the optional evaluation date override.
func todayParam(c *gin.Context) string {
	return c.Query("today")
}
