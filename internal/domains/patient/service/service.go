package service

import (
	"context"
	"errors"
	"fmt"

	"clinic/config"
	"clinic/infras/otel"
	"clinic/internal/domains/patient/model"
	"clinic/internal/domains/patient/model/dto"
	"clinic/internal/domains/patient/repository"
	"clinic/shared"
	"clinic/shared/constant"
	gDto "clinic/shared/dto"
	"clinic/shared/failure"
	gModel "clinic/shared/model"

	"github.com/rs/zerolog/log"
)

const (
	msgPatientNotFound = "Patient not found"
	msgProfileNotFound = "Patient profile not found"
)

type Patient interface {
	Upsert(ctx context.Context, requester gModel.Requester, req dto.UpsertPatientRequest) (res dto.PatientResponse, created bool, err error)
	GetOwn(ctx context.Context, requester gModel.Requester) (dto.PatientResponse, error)
	Get(ctx context.Context, requester gModel.Requester, id string) (dto.PatientResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetPatientsResponse, error)
	Deactivate(ctx context.Context, requester gModel.Requester, id string) error
}

type serviceImpl struct {
	repo repository.Patient
	cfg  *config.Config
	otel otel.Otel
}

func New(repo repository.Patient, cfg *config.Config, otel otel.Otel) Patient {
	return &serviceImpl{
		repo: repo,
		cfg:  cfg,
		otel: otel,
	}
}

func (s *serviceImpl) Upsert(ctx context.Context, requester gModel.Requester, req dto.UpsertPatientRequest) (res dto.PatientResponse, created bool, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".patient.Upsert")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !requester.Is(constant.RolePatient) {
		return res, false, failure.Forbidden("Only patients can manage a patient profile") // nolint:wrapcheck
	}

	byUser := shared.FilterByField(requester.UserID, model.FieldUserID, model.TableName)

	patient, err := s.repo.Get(ctx, byUser)
	if err != nil {
		log.Error().Err(err).Msg("failed to get patient profile")

		return res, false, fmt.Errorf("failed to get patient profile: %w", err)
	}

	if patient.ID == constant.Empty {
		if req.Phone == constant.Empty {
			return res, false, failure.BadRequestFromString("phone is required") // nolint:wrapcheck
		}

		if err = s.repo.Insert(ctx, req.ToModel(requester.UserID)); err != nil {
			if errors.Is(err, model.ErrProfileExists) {
				return res, false, failure.BadRequestFromString("Patient profile already exists") // nolint:wrapcheck
			}

			log.Error().Err(err).Msg("failed to create patient profile")

			return res, false, fmt.Errorf("failed to create patient profile: %w", err)
		}

		created = true
	} else if fields := req.ToFields(); len(fields) > 0 {
		filter := shared.FilterByID(patient.ID, model.FieldID, model.TableName)

		if _, err = s.repo.Update(ctx, shared.WithModified(fields, requester.UserID), filter); err != nil {
			log.Error().Err(err).Msg("failed to update patient profile")

			return res, false, fmt.Errorf("failed to update patient profile: %w", err)
		}
	}

	res, err = s.load(ctx, byUser, msgProfileNotFound)

	return res, created, err
}

func (s *serviceImpl) GetOwn(ctx context.Context, requester gModel.Requester) (res dto.PatientResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".patient.GetOwn")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.load(ctx, shared.FilterByField(requester.UserID, model.FieldUserID, model.TableName), msgProfileNotFound)
}

// Get lets clinicians read any profile; a patient may only read their own.
func (s *serviceImpl) Get(ctx context.Context, requester gModel.Requester, id string) (res dto.PatientResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".patient.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	res, err = s.load(ctx, shared.FilterByID(id, model.FieldID, model.TableName), msgPatientNotFound)
	if err != nil {
		return res, err
	}

	switch {
	case requester.Is(constant.RoleDoctor, constant.RoleStaff, constant.RoleAdmin):
	case requester.Is(constant.RolePatient) && res.UserID == requester.UserID:
	default:
		return dto.PatientResponse{}, failure.ForbiddenError
	}

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetPatientsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".patient.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count patients")

		return res, fmt.Errorf("failed to count patients: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get patients")

		return res, fmt.Errorf("failed to get patients: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	return res, nil
}

// Deactivate keeps the row so existing appointments still resolve; the patient can no longer book.
func (s *serviceImpl) Deactivate(ctx context.Context, requester gModel.Requester, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".patient.Deactivate")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	fields := shared.WithModified(map[string]any{model.FieldIsActive: false}, requester.UserID)

	affected, err := s.repo.Update(ctx, fields, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to deactivate patient")

		return fmt.Errorf("failed to deactivate patient: %w", err)
	}

	if affected == 0 {
		return failure.NotFound(msgPatientNotFound) // nolint:wrapcheck
	}

	return nil
}

func (s *serviceImpl) load(ctx context.Context, filter gDto.FilterGroup, notFound string) (res dto.PatientResponse, err error) {
	patient, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get patient")

		return res, fmt.Errorf("failed to get patient: %w", err)
	}

	if patient.ID == constant.Empty {
		return res, failure.NotFound(notFound) // nolint:wrapcheck
	}

	res.FromModel(patient)

	return res, nil
}
