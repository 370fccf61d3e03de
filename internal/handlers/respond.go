// Package handlers adapts the services to JSON over HTTP: bind the
// request, call the service, translate the error kind to a status code.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adigold/splitbook/internal/errs"
)

// respondError maps the service error taxonomy onto transport status
// codes: Validation 400, Forbidden 403, NotFound 404, everything else
// 500. Server errors are logged with their detail and answered with a
// redacted message.
func respondError(c *gin.Context, err error) {
	var validation *errs.Validation
	if errors.As(err, &validation) {
		body := gin.H{"error": validation.Message}
		if len(validation.FieldErrors) > 0 {
			body["fieldErrors"] = validation.FieldErrors
		}
		c.JSON(http.StatusBadRequest, body)
		return
	}

	var forbidden *errs.Forbidden
	if errors.As(err, &forbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": forbidden.Message})
		return
	}

	var notFound *errs.NotFound
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":    notFound.Error(),
			"resource": notFound.Resource,
			"id":       notFound.ID,
		})
		return
	}

	slog.Error("Internal error", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// isoTime renders a Unix timestamp as RFC3339 UTC for the wire.
func isoTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}

// respondBadJSON rejects an unparseable request body.
func respondBadJSON(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
}
