package model

import (
	"errors"
	"strconv"

	"clinic/shared"
	"clinic/shared/constant"
	"clinic/shared/model"
)

const (
	TableName  = "appointments"
	EntityName = "appointment"

	FieldID        = "id"
	FieldDoctorID  = "doctor_id"
	FieldPatientID = "patient_id"
	FieldDate      = "appointment_date"
	FieldTime      = "slot_time"
	FieldStatus    = "status"
	FieldReason    = "reason"
	FieldNotes     = "notes"

	// ActiveSlotConstraint is the partial unique index over (doctor_id, appointment_date, slot_time)
	// for rows that are not cancelled.
	ActiveSlotConstraint = "appointments_active_slot_key"

	CacheSlots           = "appointment:slots"
	CacheSlotsGeneration = "appointment:slots_gen"

	// SlotsGenerationTTL outlives any slot list cached under a generation.
	SlotsGenerationTTL = 7 * 24 * 60 * 60
)

const (
	StatusBooked     = "booked"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

var ErrSlotTaken = errors.New("slot already booked")

var transitions = map[string][]string{
	StatusBooked:     {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

type Appointment struct {
	ID            string     `db:"id"`
	DoctorID      string     `db:"doctor_id"`
	PatientID     string     `db:"patient_id"`
	Date          model.Date `db:"appointment_date"`
	Time          string     `db:"slot_time"`
	Status        string     `db:"status"`
	Reason        string     `db:"reason"`
	Notes         string     `db:"notes"`
	DoctorUserID  string     `db:"doctor_user_id"   table:"doctors"       column:"user_id"`
	PatientUserID string     `db:"patient_user_id"  table:"patients"      column:"user_id"`
	DoctorName    string     `db:"doctor_name"      table:"doctor_users"  column:"name"`
	PatientName   string     `db:"patient_name"     table:"patient_users" column:"name"`
	model.Metadata
}

func (Appointment) GetJoinQuery() string {
	return "LEFT JOIN doctors ON doctors.id = appointments.doctor_id " +
		"LEFT JOIN users doctor_users ON doctor_users.id = doctors.user_id " +
		"LEFT JOIN patients ON patients.id = appointments.patient_id " +
		"LEFT JOIN users patient_users ON patient_users.id = patients.user_id"
}

func IsKnownStatus(status string) bool {
	_, ok := transitions[status]

	return ok
}

func IsTerminal(status string) bool {
	next, ok := transitions[status]

	return ok && len(next) == 0
}

// CanTransition reports whether a booking may move from one status to another.
// Staying in the same status is always allowed.
func CanTransition(from, to string) bool {
	if from == to {
		return IsKnownStatus(from)
	}

	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}

	return false
}

// SlotsCacheKey names the slot list of one doctor's day as of a generation. Every booking
// change on that day bumps the generation, so lists computed before the change go unread.
func SlotsCacheKey(doctorID, date string, generation int64) string {
	return shared.BuildCacheKey(CacheSlots, doctorID, date, strconv.FormatInt(generation, 10))
}

func SlotsGenerationKey(doctorID, date string) string {
	return shared.BuildCacheKey(CacheSlotsGeneration, doctorID, date)
}

// DoctorSlotsPattern matches every cached slot list of one doctor.
func DoctorSlotsPattern(doctorID string) string {
	return shared.BuildCacheKey(CacheSlots, doctorID, constant.Asterix)
}
