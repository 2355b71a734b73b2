package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mlm20/terra-health-archetypes/internal/apperr"
	"github.com/mlm20/terra-health-archetypes/internal/report"
)

type GenerateRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
}

type GenerateImageRequest struct {
	ImagePrompt string `json:"imagePrompt" validate:"required"`
}

// GenerateArchetype resolves the session's wearable data, packages it, and
// runs the text generation. The avatar image is a separate call so the
// frontend can show the persona while the image renders.
func GenerateArchetype(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body GenerateRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), apperr.Validation("Session ID is required."), "Invalid JSON")
			return
		}
		if err := validate.Struct(&body); err != nil {
			HandleError(c, app.Logger(), apperr.Validation("Session ID is required."), "Validation failed")
			return
		}

		terraUserID, _ := app.Sessions().Get(body.SessionID)
		if terraUserID == "" {
			HandleError(c, app.Logger(),
				apperr.Session("Session not found or Terra User ID not associated. Please connect your wearable first."),
				"Archetype generation lookup failed")
			return
		}

		endDate := time.Now()
		startDate := endDate.AddDate(0, 0, -reportWindowDays)

		raw, err := app.Health().FetchAll(c.Request.Context(), terraUserID, startDate, endDate)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to fetch health data for archetype")
			return
		}

		healthReport := report.Package(raw, startDate, endDate)
		result, err := app.Generator().GenerateArchetype(c.Request.Context(), healthReport)
		recordGeneration("text", err)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to generate archetype")
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// GenerateImage renders the avatar for an archetype's image prompt and
// returns it as a data URL.
func GenerateImage(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body GenerateImageRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), apperr.Validation("Image prompt is required."), "Invalid JSON")
			return
		}
		if err := validate.Struct(&body); err != nil {
			HandleError(c, app.Logger(), apperr.Validation("Image prompt is required."), "Validation failed")
			return
		}

		imageURL, err := app.Generator().GenerateImage(c.Request.Context(), body.ImagePrompt)
		recordGeneration("image", err)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to generate archetype image")
			return
		}

		c.JSON(http.StatusOK, gin.H{"imageUrl": imageURL})
	}
}
