package dto

import (
	"strings"

	"clinic/internal/domains/patient/model"
	"clinic/shared"
	gDto "clinic/shared/dto"
	gModel "clinic/shared/model"
	"clinic/shared/timezone"

	"github.com/google/uuid"
)

type UpsertPatientRequest struct {
	DateOfBirth    string `json:"date_of_birth"   validate:"omitempty,calendardate"`
	Gender         string `json:"gender"          validate:"omitempty,oneof=Male Female Other"`
	Phone          string `json:"phone"           validate:"omitempty,max=20"`
	Address        string `json:"address"         validate:"omitempty,max=255"`
	MedicalHistory string `json:"medical_history" validate:"omitempty,max=2000"`
}

func (r *UpsertPatientRequest) ToModel(userID string) model.Patient {
	return model.Patient{
		ID:             uuid.NewString(),
		UserID:         userID,
		DateOfBirth:    gModel.Date(r.DateOfBirth),
		Gender:         r.Gender,
		Phone:          strings.TrimSpace(r.Phone),
		Address:        strings.TrimSpace(r.Address),
		MedicalHistory: r.MedicalHistory,
		IsActive:       true,
		Metadata:       gModel.NewMetadata(timezone.Now(), userID),
	}
}

// ToFields keeps only non-empty values; an omitted field keeps its stored value.
func (r *UpsertPatientRequest) ToFields() map[string]any {
	fields := map[string]any{}

	if r.DateOfBirth != "" {
		fields[model.FieldDateOfBirth] = gModel.Date(r.DateOfBirth)
	}

	if r.Gender != "" {
		fields[model.FieldGender] = r.Gender
	}

	if phone := strings.TrimSpace(r.Phone); phone != "" {
		fields[model.FieldPhone] = phone
	}

	if address := strings.TrimSpace(r.Address); address != "" {
		fields[model.FieldAddress] = address
	}

	if r.MedicalHistory != "" {
		fields[model.FieldMedicalHistory] = r.MedicalHistory
	}

	return fields
}

type PatientResponse struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	DateOfBirth    string `json:"date_of_birth,omitempty"`
	Gender         string `json:"gender,omitempty"`
	Phone          string `json:"phone"`
	Address        string `json:"address,omitempty"`
	MedicalHistory string `json:"medical_history,omitempty"`
	IsActive       bool   `json:"is_active"`
	gDto.Metadata
}

func (r *PatientResponse) FromModel(model model.Patient) {
	r.ID = model.ID
	r.UserID = model.UserID
	r.Name = model.Name
	r.Email = model.Email
	r.DateOfBirth = model.DateOfBirth.String()
	r.Gender = model.Gender
	r.Phone = model.Phone
	r.Address = model.Address
	r.MedicalHistory = model.MedicalHistory
	r.IsActive = model.IsActive
	r.Metadata.FromModel(model.Metadata)
}

type GetPatientsResponse struct {
	Patients  []PatientResponse `json:"patients"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetPatientsResponse) FromModels(models []model.Patient, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Patients = make([]PatientResponse, len(models))
	for i, mod := range models {
		r.Patients[i].FromModel(mod)
	}
}
