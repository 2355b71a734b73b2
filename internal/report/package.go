// Package report assembles raw wearable category data into the structured
// report the archetype generator consumes.
package report

import (
	"math"
	"time"

	"github.com/mlm20/terra-health-archetypes/internal"
)

const allPresentNote = "Data from all expected categories (daily, sleep, activity, body) appears to be present for the period."

// Package wraps the fetched category collections with the window length and
// availability notes. Empty categories are kept as empty arrays rather than
// dropped so the report shape stays stable regardless of what the wearable
// actually recorded.
func Package(raw internal.HealthData, startDate, endDate time.Time) internal.HealthDataReport {
	report := internal.HealthDataReport{
		TimePeriodDays:        periodDays(startDate, endDate),
		HealthData:            raw,
		DataAvailabilityNotes: []string{},
	}

	if len(raw.Daily) == 0 {
		report.DataAvailabilityNotes = append(report.DataAvailabilityNotes, "Daily summary data not available or empty for the period.")
	}
	if len(raw.Sleep) == 0 {
		report.DataAvailabilityNotes = append(report.DataAvailabilityNotes, "Sleep summary data not available or empty for the period.")
	}
	if len(raw.Activity) == 0 {
		report.DataAvailabilityNotes = append(report.DataAvailabilityNotes, "Activity summary data not available or empty for the period.")
	}
	if len(raw.Body) == 0 {
		report.DataAvailabilityNotes = append(report.DataAvailabilityNotes, "Body composition data not available or empty for the period.")
	}
	if len(report.DataAvailabilityNotes) == 0 {
		report.DataAvailabilityNotes = append(report.DataAvailabilityNotes, allPresentNote)
	}

	return report
}

// periodDays rounds the window length to whole days, never reporting less
// than one even for a zero-length window.
func periodDays(startDate, endDate time.Time) int {
	days := int(math.Round(endDate.Sub(startDate).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}
