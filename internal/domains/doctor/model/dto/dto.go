package dto

import (
	"fmt"
	"slices"
	"strings"

	"clinic/internal/domains/doctor/model"
	"clinic/shared"
	gDto "clinic/shared/dto"
	gModel "clinic/shared/model"
	"clinic/shared/timezone"

	"github.com/google/uuid"
)

type ScheduleEntry struct {
	Day         string `json:"day"                    validate:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	StartTime   string `json:"start_time"             validate:"required,clock"`
	EndTime     string `json:"end_time"               validate:"required,clock"`
	IsAvailable *bool  `json:"is_available,omitempty"`
}

// Available reports the entry as open unless it was explicitly switched off.
func (e ScheduleEntry) Available() bool {
	return e.IsAvailable == nil || *e.IsAvailable
}

type SetScheduleRequest struct {
	Schedules []ScheduleEntry `json:"schedules" validate:"omitempty,unique=Day,dive"`
}

// Check enforces the rule the struct tags cannot: an available day must open before it closes.
// Zero-padded clocks compare correctly as strings.
func (r *SetScheduleRequest) Check() error {
	return checkEntries(r.Schedules)
}

func (r *SetScheduleRequest) ToModels(doctorID, user string) []model.Schedule {
	return toScheduleModels(r.Schedules, doctorID, user)
}

type UpsertDoctorRequest struct {
	Specialization      string           `json:"specialization"         validate:"omitempty,max=100"`
	Qualifications      string           `json:"qualifications"         validate:"omitempty,max=255"`
	Experience          *int             `json:"experience,omitempty"   validate:"omitempty,gte=0,lte=80"`
	FeesPerConsultation *float64         `json:"fees_per_consultation"  validate:"omitempty,gte=0"`
	Schedules           *[]ScheduleEntry `json:"schedules,omitempty"    validate:"omitempty,unique=Day,dive"`
}

func (r *UpsertDoctorRequest) Check() error {
	if r.Schedules == nil {
		return nil
	}

	return checkEntries(*r.Schedules)
}

func (r *UpsertDoctorRequest) ToModel(userID string) model.Doctor {
	doctor := model.Doctor{
		ID:             uuid.NewString(),
		UserID:         userID,
		Specialization: strings.TrimSpace(r.Specialization),
		Qualifications: strings.TrimSpace(r.Qualifications),
		Metadata:       gModel.NewMetadata(timezone.Now(), userID),
	}

	if r.Experience != nil {
		doctor.Experience = *r.Experience
	}

	if r.FeesPerConsultation != nil {
		doctor.FeesPerConsultation = *r.FeesPerConsultation
	}

	return doctor
}

// ToFields keeps only the provided values, so an update leaves omitted fields untouched.
func (r *UpsertDoctorRequest) ToFields() map[string]any {
	fields := map[string]any{}

	if specialization := strings.TrimSpace(r.Specialization); specialization != "" {
		fields[model.FieldSpecialization] = specialization
	}

	if qualifications := strings.TrimSpace(r.Qualifications); qualifications != "" {
		fields[model.FieldQualifications] = qualifications
	}

	if r.Experience != nil {
		fields[model.FieldExperience] = *r.Experience
	}

	if r.FeesPerConsultation != nil {
		fields[model.FieldFeesPerConsultation] = *r.FeesPerConsultation
	}

	return fields
}

type ScheduleResponse struct {
	Day         string `json:"day"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsAvailable bool   `json:"is_available"`
}

func FromScheduleModels(models []model.Schedule) []ScheduleResponse {
	sorted := slices.Clone(models)
	slices.SortFunc(sorted, func(a, b model.Schedule) int {
		return model.DayOrder(a.Day) - model.DayOrder(b.Day)
	})

	res := make([]ScheduleResponse, len(sorted))
	for i, mod := range sorted {
		res[i] = ScheduleResponse{
			Day:         mod.Day,
			StartTime:   mod.StartTime,
			EndTime:     mod.EndTime,
			IsAvailable: mod.IsAvailable,
		}
	}

	return res
}

type DoctorResponse struct {
	ID                  string             `json:"id"`
	UserID              string             `json:"user_id"`
	Name                string             `json:"name"`
	Email               string             `json:"email"`
	Specialization      string             `json:"specialization"`
	Qualifications      string             `json:"qualifications"`
	Experience          int                `json:"experience"`
	FeesPerConsultation float64            `json:"fees_per_consultation"`
	Schedules           []ScheduleResponse `json:"schedules"`
	gDto.Metadata
}

func (r *DoctorResponse) FromModel(model model.Doctor) {
	r.ID = model.ID
	r.UserID = model.UserID
	r.Name = model.Name
	r.Email = model.Email
	r.Specialization = model.Specialization
	r.Qualifications = model.Qualifications
	r.Experience = model.Experience
	r.FeesPerConsultation = model.FeesPerConsultation
	r.Schedules = []ScheduleResponse{}
	r.Metadata.FromModel(model.Metadata)
}

type GetDoctorsResponse struct {
	Doctors   []DoctorResponse `json:"doctors"`
	TotalPage int              `json:"total_page"`
	TotalData int              `json:"total_data"`
}

func (r *GetDoctorsResponse) FromModels(models []model.Doctor, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Doctors = make([]DoctorResponse, len(models))
	for i, mod := range models {
		r.Doctors[i].FromModel(mod)
	}
}

func checkEntries(entries []ScheduleEntry) error {
	for _, entry := range entries {
		if entry.Available() && entry.StartTime >= entry.EndTime {
			return fmt.Errorf("%s: start_time must be before end_time", entry.Day)
		}
	}

	return nil
}

func toScheduleModels(entries []ScheduleEntry, doctorID, user string) []model.Schedule {
	now := timezone.Now()

	models := make([]model.Schedule, len(entries))
	for i, entry := range entries {
		models[i] = model.Schedule{
			ID:          uuid.NewString(),
			DoctorID:    doctorID,
			Day:         entry.Day,
			StartTime:   entry.StartTime,
			EndTime:     entry.EndTime,
			IsAvailable: entry.Available(),
			Metadata:    gModel.NewMetadata(now, user),
		}
	}

	return models
}
