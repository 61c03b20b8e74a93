package attendance

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hour, min int) time.Time {
	return time.Date(2025, 6, 16, hour, min, 0, 0, time.Local)
}

func TestClassifyLateness(t *testing.T) {
	assert.Equal(t, AnomalyLate, Classify(InMorning, at(10, 0), nil))
	assert.Equal(t, AnomalyNone, Classify(InMorning, at(9, 59), nil))
	assert.Equal(t, AnomalyLate, Classify(InAfternoon, at(15, 0), []Punch{
		{Kind: InMorning, At: at(8, 0)},
		{Kind: OutMorning, At: at(12, 0)},
	}))
}

func TestClassifyEarliness(t *testing.T) {
	prior := []Punch{{Kind: InMorning, At: at(8, 0)}}
	assert.Equal(t, AnomalyEarly, Classify(OutMorning, at(10, 59), prior))
	assert.Equal(t, AnomalyNone, Classify(OutMorning, at(11, 0), prior))

	full := []Punch{
		{Kind: InMorning, At: at(8, 0)},
		{Kind: OutMorning, At: at(12, 0)},
		{Kind: InAfternoon, At: at(13, 30)},
	}
	assert.Equal(t, AnomalyEarly, Classify(OutEvening, at(16, 45), full))
	assert.Equal(t, AnomalyNone, Classify(OutEvening, at(17, 30), full))
}

func TestClassifyEmptyPrior(t *testing.T) {
	assert.Equal(t, AnomalyNone, Classify(InMorning, at(8, 5), nil))
	assert.Equal(t, AnomalyMissing, Classify(OutMorning, at(12, 0), nil))
	assert.Equal(t, AnomalyMissing, Classify(OutEvening, at(18, 0), nil))
}

func TestClassifySequence(t *testing.T) {
	prior := []Punch{{Kind: InMorning, At: at(8, 0)}}

	assert.Equal(t, AnomalyNone, Classify(OutMorning, at(12, 0), prior))
	// Skipping OUT_MORNING entirely.
	assert.Equal(t, AnomalyMissing, Classify(InAfternoon, at(13, 30), prior))
	// Repeating the same stage.
	assert.Equal(t, AnomalyOverlap, Classify(InMorning, at(8, 30), prior))
}

func TestClassifyTimePriorityOverSequence(t *testing.T) {
	// Late AND out of sequence: lateness wins because rules run in order.
	assert.Equal(t, AnomalyLate, Classify(InAfternoon, at(15, 0), nil))
}

func TestWorkedMinutes(t *testing.T) {
	punches := []Punch{
		{Kind: InMorning, At: at(8, 0)},
		{Kind: OutMorning, At: at(12, 0)},
	}
	assert.Equal(t, 240, WorkedMinutes(punches))

	// Afternoon session on top.
	punches = append(punches,
		Punch{Kind: InAfternoon, At: at(13, 30)},
		Punch{Kind: OutEvening, At: at(17, 45)},
	)
	assert.Equal(t, 240+255, WorkedMinutes(punches))

	// A lone clock-in contributes nothing.
	assert.Equal(t, 0, WorkedMinutes([]Punch{{Kind: InMorning, At: at(8, 0)}}))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "4h00", FormatDuration(240))
	assert.Equal(t, "0h00", FormatDuration(0))
	assert.Equal(t, "8h05", FormatDuration(485))
}

func TestSummarizeDay(t *testing.T) {
	s := SummarizeDay([]Punch{
		{Kind: InMorning, At: at(8, 5), Anomaly: AnomalyNone},
		{Kind: OutMorning, At: at(12, 10), Anomaly: AnomalyNone},
	})
	assert.Equal(t, 2, s.TotalPunches)
	assert.Equal(t, 245, s.WorkedMinutes)
	assert.Equal(t, "4h05", s.WorkedTime)
	assert.False(t, s.HasAnomalies)

	s = SummarizeDay([]Punch{{Kind: OutMorning, At: at(12, 0), Anomaly: AnomalyMissing}})
	assert.True(t, s.HasAnomalies)
}

func TestBuildReportSingleDay(t *testing.T) {
	r := BuildReport([]Punch{
		{Kind: InMorning, At: at(8, 0), Anomaly: AnomalyNone},
		{Kind: OutMorning, At: at(12, 0), Anomaly: AnomalyNone},
	})

	assert.Len(t, r.DailyReports, 1)
	assert.Equal(t, 240, r.DailyReports[0].WorkedMinutes)
	assert.Equal(t, "4h00", r.DailyReports[0].WorkedTime)
	assert.Equal(t, 1, r.Summary.DaysWorked)
	assert.Equal(t, "4h00", r.Summary.TotalWorkedTime)
	assert.Equal(t, 0, r.Summary.TotalAnomalies)
}

func TestBuildReportAttendanceRate(t *testing.T) {
	var punches []Punch
	for d := 1; d <= 11; d++ {
		day := time.Date(2025, 6, d, 0, 0, 0, 0, time.Local)
		punches = append(punches,
			Punch{Kind: InMorning, At: day.Add(8 * time.Hour)},
			Punch{Kind: OutMorning, At: day.Add(12 * time.Hour)},
		)
	}

	r := BuildReport(punches)
	assert.Equal(t, 11, r.Summary.DaysWorked)
	assert.Equal(t, "50%", r.Summary.AttendanceRate)
	assert.Equal(t, "4h00", r.Summary.AveragePerDay)
}

func TestBuildReportCountsAnomaliesAndSkipsEmptyDays(t *testing.T) {
	r := BuildReport([]Punch{
		// A day with only a clock-in works zero minutes.
		{Kind: InMorning, At: time.Date(2025, 6, 2, 8, 0, 0, 0, time.Local)},
		{Kind: InMorning, At: time.Date(2025, 6, 3, 10, 15, 0, 0, time.Local), Anomaly: AnomalyLate},
		{Kind: OutMorning, At: time.Date(2025, 6, 3, 12, 0, 0, 0, time.Local)},
	})

	assert.Len(t, r.DailyReports, 2)
	assert.Equal(t, 1, r.Summary.DaysWorked)
	assert.Equal(t, 1, r.Summary.TotalAnomalies)
	assert.Equal(t, []Anomaly{AnomalyLate}, r.DailyReports[1].Anomalies)
}

func TestExportCSV(t *testing.T) {
	csv := ExportCSV([]Punch{
		{Kind: InMorning, At: at(8, 0), Anomaly: AnomalyNone},
		{Kind: OutMorning, At: at(12, 0), Anomaly: AnomalyNone},
		{Kind: InAfternoon, At: at(15, 10), Anomaly: AnomalyLate},
	})

	lines := strings.Split(csv, "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, "Date,Type,Heure,Anomalie", lines[0])
	assert.Equal(t, "2025-06-16,IN_MORNING,08:00:00,NONE", lines[1])
	assert.Equal(t, "2025-06-16,IN_AFTERNOON,15:10:00,LATE", lines[3])
}

func TestExportCSVEmpty(t *testing.T) {
	assert.Equal(t, "Date,Type,Heure,Anomalie", ExportCSV(nil))
}
