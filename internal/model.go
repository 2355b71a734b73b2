package internal

import "time"

// Record is a single datapoint as returned by the wearable aggregator. The
// provider already normalizes and summarizes its payloads, so this system
// treats each record as an opaque document and never interprets its schema.
type Record = map[string]any

// Session correlates a browser visit with the aggregator's user identifier.
// ProviderUserID stays empty until the auth redirect is confirmed.
type Session struct {
	SessionID      string
	ProviderUserID string
	CreatedAt      time.Time
}

// HealthData holds the four raw category collections fetched for one window.
type HealthData struct {
	Daily    []Record `json:"daily"`
	Sleep    []Record `json:"sleep"`
	Activity []Record `json:"activity"`
	Body     []Record `json:"body"`
}

// HealthDataReport is the packaged, LLM-ready view of one data window. It is
// built fresh per request and never persisted.
type HealthDataReport struct {
	TimePeriodDays        int        `json:"timePeriodDays"`
	HealthData            HealthData `json:"healthData"`
	DataAvailabilityNotes []string   `json:"dataAvailabilityNotes"`
}

// SliderKeys is the fixed set of trait keys an archetype must carry, each
// valued 0-100.
var SliderKeys = []string{
	"recoveryReadiness",
	"activityLoad",
	"sleepStability",
	"heartRhythmBalance",
	"consistency",
}

// ArchetypeResult is the generated persona. ImageDataURL is filled by the
// separate image-generation step, so it is optional on the wire.
type ArchetypeResult struct {
	ArchetypeName        string         `json:"archetypeName"`
	ArchetypeDescription string         `json:"archetypeDescription"`
	ImagePrompt          string         `json:"imagePrompt"`
	SliderValues         map[string]int `json:"sliderValues"`
	ImageDataURL         string         `json:"imageDataUrl,omitempty"`
}
