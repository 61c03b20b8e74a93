// Package attendance computes anomaly classifications, worked-time
// aggregations and payroll exports over an employee's punch events. It has no
// persistence: callers load the punches and hand them over in chronological
// order.
package attendance

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type Kind string

const (
	InMorning   Kind = "IN_MORNING"
	OutMorning  Kind = "OUT_MORNING"
	InAfternoon Kind = "IN_AFTERNOON"
	OutEvening  Kind = "OUT_EVENING"
)

// kindOrder is the canonical progression of one attendance day.
var kindOrder = []Kind{InMorning, OutMorning, InAfternoon, OutEvening}

func indexOf(k Kind) int {
	for i, o := range kindOrder {
		if o == k {
			return i
		}
	}
	return -1
}

type Source string

const (
	SourceWeb    Source = "WEB"
	SourceMobile Source = "MOBILE"
	SourceQR     Source = "QR"
	SourceManual Source = "MANUAL"
)

type Anomaly string

const (
	AnomalyNone    Anomaly = "NONE"
	AnomalyLate    Anomaly = "LATE"
	AnomalyEarly   Anomaly = "EARLY"
	AnomalyMissing Anomaly = "MISSING"
	AnomalyOverlap Anomaly = "OVERLAP"
)

// Warning returns the user-facing message for a non-NONE anomaly.
func (a Anomaly) Warning() string {
	switch a {
	case AnomalyLate:
		return "Pointage en retard"
	case AnomalyEarly:
		return "Pointage en avance"
	case AnomalyMissing:
		return "Pointage(s) manquant(s) détecté(s)"
	case AnomalyOverlap:
		return "Ordre de pointage incorrect"
	}
	return ""
}

// Punch is a single clock event, already ordered by time within a day.
type Punch struct {
	Kind    Kind
	At      time.Time
	Anomaly Anomaly
}

// Classify returns the anomaly for a punch of the given kind at the given
// time, with prior the punches already recorded today in chronological order.
// Rules apply in fixed priority: lateness, earliness, then sequence. The
// first match wins, so a late but in-sequence punch reports LATE only.
func Classify(kind Kind, at time.Time, prior []Punch) Anomaly {
	hour := at.Hour()

	if kind == InMorning && hour > 9 {
		return AnomalyLate
	}
	if kind == InAfternoon && hour > 14 {
		return AnomalyLate
	}

	if kind == OutMorning && hour < 11 {
		return AnomalyEarly
	}
	if kind == OutEvening && hour < 17 {
		return AnomalyEarly
	}

	if len(prior) == 0 {
		if kind != InMorning {
			return AnomalyMissing
		}
		return AnomalyNone
	}

	lastIndex := indexOf(prior[len(prior)-1].Kind)
	currentIndex := indexOf(kind)
	if currentIndex <= lastIndex {
		return AnomalyOverlap
	}
	if currentIndex-lastIndex > 1 {
		return AnomalyMissing
	}
	return AnomalyNone
}

// WorkedMinutes sums the morning and afternoon sessions of one day. A session
// counts only when both of its punches are present; missing punches are never
// interpolated.
func WorkedMinutes(punches []Punch) int {
	find := func(k Kind) *Punch {
		for i := range punches {
			if punches[i].Kind == k {
				return &punches[i]
			}
		}
		return nil
	}

	minutes := 0
	if in, out := find(InMorning), find(OutMorning); in != nil && out != nil {
		minutes += int(out.At.Sub(in.At).Minutes())
	}
	if in, out := find(InAfternoon), find(OutEvening); in != nil && out != nil {
		minutes += int(out.At.Sub(in.At).Minutes())
	}
	return minutes
}

// FormatDuration renders minutes as "4h05".
func FormatDuration(minutes int) string {
	return fmt.Sprintf("%dh%02d", minutes/60, minutes%60)
}

type DailySummary struct {
	TotalPunches  int    `json:"totalPunches"`
	WorkedMinutes int    `json:"workedMinutes"`
	WorkedTime    string `json:"workedTime"`
	HasAnomalies  bool   `json:"hasAnomalies"`
}

// SummarizeDay aggregates one day's punches.
func SummarizeDay(punches []Punch) DailySummary {
	minutes := WorkedMinutes(punches)
	s := DailySummary{
		TotalPunches:  len(punches),
		WorkedMinutes: minutes,
		WorkedTime:    FormatDuration(minutes),
	}
	for _, p := range punches {
		if p.Anomaly != AnomalyNone && p.Anomaly != "" {
			s.HasAnomalies = true
			break
		}
	}
	return s
}

// workingDaysPerMonth is the fixed denominator of the attendance rate. It is
// deliberately not the actual count of business days in the period.
const workingDaysPerMonth = 22

type PunchEntry struct {
	Kind      Kind      `json:"type"`
	Time      string    `json:"time"`
	Timestamp time.Time `json:"timestamp"`
	Anomaly   Anomaly   `json:"anomaly"`
}

type DayReport struct {
	Date          string       `json:"date"`
	DayOfWeek     string       `json:"dayOfWeek"`
	Punches       []PunchEntry `json:"punches"`
	WorkedMinutes int          `json:"workedMinutes"`
	WorkedTime    string       `json:"workedTime"`
	Anomalies     []Anomaly    `json:"anomalies"`
}

type ReportSummary struct {
	DaysWorked         int    `json:"daysWorked"`
	TotalWorkedMinutes int    `json:"totalWorkedMinutes"`
	TotalWorkedTime    string `json:"totalWorkedTime"`
	AveragePerDay      string `json:"averagePerDay"`
	TotalAnomalies     int    `json:"totalAnomalies"`
	AttendanceRate     string `json:"attendanceRate"`
}

type Report struct {
	DailyReports []DayReport   `json:"dailyReports"`
	Summary      ReportSummary `json:"summary"`
}

// BuildReport groups punches by calendar day and aggregates worked time over
// the period. Days are computed independently, with no carry-over across
// midnight.
func BuildReport(punches []Punch) Report {
	byDay := make(map[string][]Punch)
	var days []string
	for _, p := range punches {
		day := p.At.Format("2006-01-02")
		if _, ok := byDay[day]; !ok {
			days = append(days, day)
		}
		byDay[day] = append(byDay[day], p)
	}
	sort.Strings(days)

	report := Report{DailyReports: []DayReport{}}
	totalMinutes := 0
	totalAnomalies := 0
	daysWorked := 0

	for _, day := range days {
		dayPunches := byDay[day]
		minutes := WorkedMinutes(dayPunches)

		dr := DayReport{
			Date:          day,
			DayOfWeek:     dayPunches[0].At.Weekday().String(),
			WorkedMinutes: minutes,
			WorkedTime:    FormatDuration(minutes),
			Anomalies:     []Anomaly{},
		}
		for _, p := range dayPunches {
			dr.Punches = append(dr.Punches, PunchEntry{
				Kind:      p.Kind,
				Time:      p.At.Format("15:04"),
				Timestamp: p.At,
				Anomaly:   p.Anomaly,
			})
			if p.Anomaly != AnomalyNone && p.Anomaly != "" {
				dr.Anomalies = append(dr.Anomalies, p.Anomaly)
				totalAnomalies++
			}
		}

		if minutes > 0 {
			totalMinutes += minutes
			daysWorked++
		}
		report.DailyReports = append(report.DailyReports, dr)
	}

	average := 0
	if daysWorked > 0 {
		average = totalMinutes / daysWorked
	}
	rate := int(float64(daysWorked)/workingDaysPerMonth*100 + 0.5)

	report.Summary = ReportSummary{
		DaysWorked:         daysWorked,
		TotalWorkedMinutes: totalMinutes,
		TotalWorkedTime:    FormatDuration(totalMinutes),
		AveragePerDay:      FormatDuration(average),
		TotalAnomalies:     totalAnomalies,
		AttendanceRate:     fmt.Sprintf("%d%%", rate),
	}
	return report
}

// ExportCSV renders the payroll export: a fixed header then one line per
// punch in chronological order. The column layout is part of the payroll
// contract; do not reorder it.
func ExportCSV(punches []Punch) string {
	lines := make([]string, 0, len(punches)+1)
	lines = append(lines, "Date,Type,Heure,Anomalie")
	for _, p := range punches {
		lines = append(lines, fmt.Sprintf("%s,%s,%s,%s",
			p.At.Format("2006-01-02"), p.Kind, p.At.Format("15:04:05"), p.Anomaly))
	}
	return strings.Join(lines, "\n")
}
