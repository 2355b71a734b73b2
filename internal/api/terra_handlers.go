package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mlm20/terra-health-archetypes/internal/apperr"
	"github.com/mlm20/terra-health-archetypes/internal/report"
)

// reportWindowDays is the trailing window the data report covers.
const reportWindowDays = 28

var validate = validator.New()

type ConfirmAuthRequest struct {
	SessionID          string `json:"sessionId" validate:"required"`
	TerraUserIDFromURL string `json:"terraUserIdFromUrl" validate:"required"`
}

type ClearSessionRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
}

// InitiateWidget starts a new session and hands back the hosted widget URL
// the frontend should open for device connection.
func InitiateWidget(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := uuid.NewString()
		app.Sessions().Initialize(sessionID)

		widgetURL, err := app.Health().InitiateWidgetSession(c.Request.Context(), sessionID)
		if err != nil {
			// A failed aggregator call here is a server-side setup problem,
			// not a generation upstream: always 500, never 502.
			HandleErrorStatus(c, app.Logger(), err, http.StatusInternalServerError, "Failed to initiate widget session")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"widgetUrl": widgetURL,
			"sessionId": sessionID,
		})
	}
}

// ConfirmAuth associates the provider user id the widget redirect carried
// with the session that initiated the connection. The latest redirect wins
// when a session already holds a different association.
func ConfirmAuth(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body ConfirmAuthRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), apperr.Validation("Session ID and Terra User ID are required."), "Invalid JSON")
			return
		}
		if err := validate.Struct(&body); err != nil {
			HandleError(c, app.Logger(), apperr.Validation("Session ID and Terra User ID are required."), "Validation failed")
			return
		}

		if existing, ok := app.Sessions().Get(body.SessionID); ok && existing == body.TerraUserIDFromURL {
			c.JSON(http.StatusOK, gin.H{"message": "Authentication already confirmed for this session."})
			return
		}

		app.Sessions().Store(body.SessionID, body.TerraUserIDFromURL)
		c.JSON(http.StatusOK, gin.H{"message": "Authentication confirmed and Terra User ID stored."})
	}
}

// WidgetCallback receives the browser redirect after the hosted widget
// finishes. The redirect URL configured at initiation is what actually
// brings the user back to the app; this endpoint just acknowledges.
func WidgetCallback(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if widgetErr := c.Query("error"); widgetErr != "" {
			app.Logger().Warnf("widget callback reported auth failure: %s (reason: %s)", widgetErr, c.Query("reason"))
			c.String(http.StatusOK, "Widget authentication callback processed with error: %s. Check the frontend page.", widgetErr)
			return
		}

		app.Logger().Infof("widget callback succeeded: user_id=%s reference_id=%s resource=%s",
			c.Query("user_id"), c.Query("reference_id"), c.Query("resource"))
		c.String(http.StatusOK, "Widget authentication callback successfully processed. Check the frontend page.")
	}
}

// DataReport fetches the trailing window of wearable data for the session's
// associated user and returns it packaged with availability notes.
func DataReport(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("sessionId")

		terraUserID, _ := app.Sessions().Get(sessionID)
		if terraUserID == "" {
			HandleError(c, app.Logger(),
				apperr.Session("Session not found or Terra User ID not associated. Please connect your wearable first."),
				"Data report lookup failed")
			return
		}

		endDate := time.Now()
		startDate := endDate.AddDate(0, 0, -reportWindowDays)

		raw, err := app.Health().FetchAll(c.Request.Context(), terraUserID, startDate, endDate)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to generate data report")
			return
		}

		c.JSON(http.StatusOK, report.Package(raw, startDate, endDate))
	}
}

// ClearSession drops the session's stored association so no wearable data
// remains linked after the journey finishes.
func ClearSession(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body ClearSessionRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), apperr.Validation("Session ID is required."), "Invalid JSON")
			return
		}
		if err := validate.Struct(&body); err != nil {
			HandleError(c, app.Logger(), apperr.Validation("Session ID is required."), "Validation failed")
			return
		}

		app.Sessions().Delete(body.SessionID)
		c.JSON(http.StatusOK, gin.H{"message": "Session data cleared."})
	}
}
