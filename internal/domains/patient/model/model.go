package model

import (
	"errors"

	"clinic/shared/model"
)

const (
	TableName  = "patients"
	EntityName = "patient"

	FieldID             = "id"
	FieldUserID         = "user_id"
	FieldDateOfBirth    = "date_of_birth"
	FieldGender         = "gender"
	FieldPhone          = "phone"
	FieldAddress        = "address"
	FieldMedicalHistory = "medical_history"
	FieldIsActive       = "is_active"

	UserConstraint = "patients_user_id_key"
)

var ErrProfileExists = errors.New("patient profile already exists")

type Patient struct {
	ID             string     `db:"id"`
	UserID         string     `db:"user_id"`
	DateOfBirth    model.Date `db:"date_of_birth"`
	Gender         string     `db:"gender"`
	Phone          string     `db:"phone"`
	Address        string     `db:"address"`
	MedicalHistory string     `db:"medical_history"`
	IsActive       bool       `db:"is_active"`
	Name           string     `db:"name"            table:"users"`
	Email          string     `db:"email"           table:"users"`
	model.Metadata
}

func (Patient) GetJoinQuery() string {
	return "LEFT JOIN users ON users.id = patients.user_id"
}
