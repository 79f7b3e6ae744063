package model

import (
	"time"

	"clinic/shared/model"
)

const (
	ScheduleTableName  = "doctor_schedules"
	ScheduleEntityName = "doctor_schedule"

	ScheduleFieldID          = "id"
	ScheduleFieldDoctorID    = "doctor_id"
	ScheduleFieldDay         = "day"
	ScheduleFieldStartTime   = "start_time"
	ScheduleFieldEndTime     = "end_time"
	ScheduleFieldIsAvailable = "is_available"
)

// Weekdays lists template day names in display order.
var Weekdays = []string{
	time.Monday.String(),
	time.Tuesday.String(),
	time.Wednesday.String(),
	time.Thursday.String(),
	time.Friday.String(),
	time.Saturday.String(),
	time.Sunday.String(),
}

// Schedule is one day record of a doctor's weekly template.
type Schedule struct {
	ID          string `db:"id"`
	DoctorID    string `db:"doctor_id"`
	Day         string `db:"day"`
	StartTime   string `db:"start_time"`
	EndTime     string `db:"end_time"`
	IsAvailable bool   `db:"is_available"`
	model.Metadata
}

// DayOrder returns the position of day in Weekdays, or len(Weekdays) for an unknown name.
func DayOrder(day string) int {
	for i, name := range Weekdays {
		if name == day {
			return i
		}
	}

	return len(Weekdays)
}
