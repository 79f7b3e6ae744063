package dto

import (
	"strings"

	"clinic/internal/domains/appointment/model"
	"clinic/shared"
	"clinic/shared/constant"
	gDto "clinic/shared/dto"
	gModel "clinic/shared/model"
	"clinic/shared/timezone"

	"github.com/google/uuid"
)

type BookAppointmentRequest struct {
	DoctorID string `json:"doctor_id" validate:"required,uuid"`
	Date     string `json:"date"      validate:"required,calendardate"`
	Time     string `json:"time"      validate:"required,clock"`
	Reason   string `json:"reason"    validate:"omitempty,max=500"`
}

func (r *BookAppointmentRequest) ToModel(patientID, user string) model.Appointment {
	return model.Appointment{
		ID:        uuid.NewString(),
		DoctorID:  r.DoctorID,
		PatientID: patientID,
		Date:      gModel.Date(r.Date),
		Time:      r.Time,
		Status:    model.StatusBooked,
		Reason:    strings.TrimSpace(r.Reason),
		Metadata:  gModel.NewMetadata(timezone.Now(), user),
	}
}

type UpdateStatusRequest struct {
	Status *string `json:"status,omitempty" validate:"omitempty,oneof=booked confirmed in-progress completed cancelled"`
	Notes  *string `json:"notes,omitempty"  validate:"omitempty,max=2000"`
}

func (r *UpdateStatusRequest) IsEmpty() bool {
	return r.Status == nil && r.Notes == nil
}

// ListQuery narrows an appointment listing; empty fields do not filter.
type ListQuery struct {
	Status string `json:"status" validate:"omitempty,oneof=booked confirmed in-progress completed cancelled"`
	Date   string `json:"date"   validate:"omitempty,calendardate"`
}

func (q ListQuery) Filters() []any {
	filters := []any{}

	if q.Status != constant.Empty {
		filters = append(filters, gDto.Filter{
			Field:    model.FieldStatus,
			Value:    q.Status,
			Operator: gDto.FilterOperatorEq,
			Table:    model.TableName,
		})
	}

	if q.Date != constant.Empty {
		filters = append(filters, gDto.Filter{
			Field:    model.FieldDate,
			Value:    gModel.Date(q.Date),
			Operator: gDto.FilterOperatorEq,
			Table:    model.TableName,
		})
	}

	return filters
}

type AppointmentResponse struct {
	ID          string `json:"id"`
	DoctorID    string `json:"doctor_id"`
	DoctorName  string `json:"doctor_name,omitempty"`
	PatientID   string `json:"patient_id"`
	PatientName string `json:"patient_name,omitempty"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Status      string `json:"status"`
	Reason      string `json:"reason,omitempty"`
	Notes       string `json:"notes,omitempty"`
	gDto.Metadata
}

func (r *AppointmentResponse) FromModel(model model.Appointment) {
	r.ID = model.ID
	r.DoctorID = model.DoctorID
	r.DoctorName = model.DoctorName
	r.PatientID = model.PatientID
	r.PatientName = model.PatientName
	r.Date = model.Date.String()
	r.Time = model.Time
	r.Status = model.Status
	r.Reason = model.Reason
	r.Notes = model.Notes
	r.Metadata.FromModel(model.Metadata)
}

type GetAppointmentsResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	TotalPage    int                   `json:"total_page"`
	TotalData    int                   `json:"total_data"`
}

func (r *GetAppointmentsResponse) FromModels(models []model.Appointment, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Appointments = make([]AppointmentResponse, len(models))
	for i, mod := range models {
		r.Appointments[i].FromModel(mod)
	}
}
