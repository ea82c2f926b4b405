package report

import (
	"time"

	"github.com/curlben/msuas-server/internal/models"
)

// Week is one generated entry of the attachment-period grid.
type Week struct {
	WeekNumber       int                `json:"weekNumber"`
	WorkingDays      []models.DateRange `json:"workingDays"`
	Tasks            []string           `json:"tasks"`
	OffDaysOrHoliday []models.DateRange `json:"offDaysOrHoliday"`
}

// GenerateWeeks splits the attachment period into consecutive 7-day
// weeks starting at start, listing working days (Mon-Fri, holidays
// excluded) and the holiday ranges overlapping each week.
func GenerateWeeks(start, end time.Time, holidays []models.DateRange) []Week {
	var weeks []Week
	current := start
	weekNumber := 1

	for !current.After(end) {
		endOfWeek := current.AddDate(0, 0, 6)
		weeks = append(weeks, Week{
			WeekNumber:       weekNumber,
			WorkingDays:      workingDays(current, endOfWeek, holidays),
			Tasks:            []string{},
			OffDaysOrHoliday: holidaysInRange(current, endOfWeek, holidays),
		})
		current = current.AddDate(0, 0, 7)
		weekNumber++
	}
	return weeks
}

func workingDays(start, end time.Time, holidays []models.DateRange) []models.DateRange {
	days := []models.DateRange{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		wd := d.Weekday()
		if wd == time.Saturday || wd == time.Sunday || inHolidays(d, holidays) {
			continue
		}
		days = append(days, models.DateRange{StartDate: d, EndDate: d})
	}
	return days
}

func inHolidays(day time.Time, holidays []models.DateRange) bool {
	for _, h := range holidays {
		if !day.Before(h.StartDate) && !day.After(h.EndDate) {
			return true
		}
	}
	return false
}

func holidaysInRange(start, end time.Time, holidays []models.DateRange) []models.DateRange {
	out := []models.DateRange{}
	for _, h := range holidays {
		if !h.StartDate.After(end) && !h.EndDate.Before(start) {
			reason := h.Reason
			if reason == "" {
				reason = "Holiday"
			}
			out = append(out, models.DateRange{StartDate: h.StartDate, EndDate: h.EndDate, Reason: reason})
		}
	}
	return out
}

// Progress summarizes how far through the grid the student is at now.
type Progress struct {
	TotalWeeks     int `json:"totalWeeks"`
	WeeksCompleted int `json:"weeksCompleted"`
	WeeksLeft      int `json:"weeksLeft"`
}

func Summarize(weeks []Week, now time.Time) Progress {
	completed := 0
	for _, w := range weeks {
		if len(w.WorkingDays) == 0 {
			continue
		}
		last := w.WorkingDays[len(w.WorkingDays)-1].EndDate
		if !last.After(now) {
			completed++
		}
	}
	return Progress{
		TotalWeeks:     len(weeks),
		WeeksCompleted: completed,
		WeeksLeft:      len(weeks) - completed,
	}
}
