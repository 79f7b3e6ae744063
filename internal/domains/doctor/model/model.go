package model

import (
	"errors"

	"clinic/shared/model"
)

const (
	TableName  = "doctors"
	EntityName = "doctor"

	FieldID                  = "id"
	FieldUserID              = "user_id"
	FieldSpecialization      = "specialization"
	FieldQualifications      = "qualifications"
	FieldExperience          = "experience"
	FieldFeesPerConsultation = "fees_per_consultation"

	// UserConstraint keeps a single profile per account.
	UserConstraint = "doctors_user_id_key"

	joinedUserTable = "users"
)

var ErrProfileExists = errors.New("doctor profile already exists")

type Doctor struct {
	ID                  string  `db:"id"`
	UserID              string  `db:"user_id"`
	Specialization      string  `db:"specialization"`
	Qualifications      string  `db:"qualifications"`
	Experience          int     `db:"experience"`
	FeesPerConsultation float64 `db:"fees_per_consultation"`
	Name                string  `db:"name"                  table:"users"`
	Email               string  `db:"email"                 table:"users"`
	model.Metadata
}

func (Doctor) GetJoinQuery() string {
	return "LEFT JOIN " + joinedUserTable + " ON " + joinedUserTable + ".id = " + TableName + "." + FieldUserID
}
