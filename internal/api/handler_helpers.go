package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mlm20/terra-health-archetypes/internal"
	"github.com/mlm20/terra-health-archetypes/internal/apperr"
)

// HandleError logs the failure with its request id and writes the JSON
// error body, mapping the error's kind to an HTTP status. Unclassified
// errors fall back to 500.
func HandleError(c *gin.Context, logger internal.Logger, err error, msg string) {
	requestID := c.GetString("request_id")

	status := http.StatusInternalServerError
	body := msg
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		status = appErr.HTTPStatus()
		body = appErr.Msg
	}

	logger.Errorf("[request_id=%s] %s: %v", requestID, msg, err)
	c.JSON(status, gin.H{"error": body})
}

// HandleErrorStatus is HandleError with the status forced by the caller,
// for endpoints whose wire contract pins a code regardless of error kind.
func HandleErrorStatus(c *gin.Context, logger internal.Logger, err error, status int, msg string) {
	requestID := c.GetString("request_id")

	body := msg
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		body = appErr.Msg
	}

	logger.Errorf("[request_id=%s] %s: %v", requestID, msg, err)
	c.JSON(status, gin.H{"error": body})
}
