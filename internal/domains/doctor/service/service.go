package service

import (
	"context"
	"errors"
	"fmt"

	"clinic/config"
	"clinic/infras/otel"
	appointmentModel "clinic/internal/domains/appointment/model"
	"clinic/internal/domains/doctor/model"
	"clinic/internal/domains/doctor/model/dto"
	"clinic/internal/domains/doctor/repository"
	"clinic/shared"
	"clinic/shared/cache"
	"clinic/shared/constant"
	gDto "clinic/shared/dto"
	"clinic/shared/failure"
	gModel "clinic/shared/model"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetDoctor    = "doctor:get"
	cacheGetAllDoctor = "doctor:gets"

	msgDoctorNotFound  = "Doctor not found"
	msgProfileNotFound = "Doctor profile not found"
)

type Doctor interface {
	Upsert(ctx context.Context, requester gModel.Requester, req dto.UpsertDoctorRequest) (res dto.DoctorResponse, created bool, err error)
	GetOwn(ctx context.Context, requester gModel.Requester) (dto.DoctorResponse, error)
	Get(ctx context.Context, id string) (dto.DoctorResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetDoctorsResponse, error)
	GetSchedule(ctx context.Context, doctorID string) ([]dto.ScheduleResponse, error)
	SetSchedule(ctx context.Context, requester gModel.Requester, doctorID string, req dto.SetScheduleRequest) ([]dto.ScheduleResponse, error)
	SetOwnSchedule(ctx context.Context, requester gModel.Requester, req dto.SetScheduleRequest) ([]dto.ScheduleResponse, error)
}

type serviceImpl struct {
	repo         repository.Doctor
	scheduleRepo repository.Schedule
	cfg          *config.Config
	cache        cache.RedisCache
	otel         otel.Otel
}

func New(repo repository.Doctor, scheduleRepo repository.Schedule, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Doctor {
	return &serviceImpl{
		repo:         repo,
		scheduleRepo: scheduleRepo,
		cfg:          cfg,
		cache:        cache,
		otel:         otel,
	}
}

// Upsert creates the caller's profile on first use and patches it afterwards.
// A schedules array, when sent, replaces the whole weekly template.
func (s *serviceImpl) Upsert(ctx context.Context, requester gModel.Requester, req dto.UpsertDoctorRequest) (res dto.DoctorResponse, created bool, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".doctor.Upsert")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !requester.Is(constant.RoleDoctor) {
		return res, false, failure.Forbidden("Only doctors can manage a doctor profile") // nolint:wrapcheck
	}

	if err = req.Check(); err != nil {
		return res, false, failure.BadRequest(err) // nolint:wrapcheck
	}

	doctor, err := s.repo.Get(ctx, shared.FilterByField(requester.UserID, model.FieldUserID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get doctor profile")

		return res, false, fmt.Errorf("failed to get doctor profile: %w", err)
	}

	if doctor.ID == constant.Empty {
		if req.Specialization == constant.Empty {
			return res, false, failure.BadRequestFromString("specialization is required") // nolint:wrapcheck
		}

		doctor = req.ToModel(requester.UserID)

		if err = s.repo.Insert(ctx, doctor); err != nil {
			if errors.Is(err, model.ErrProfileExists) {
				return res, false, failure.BadRequestFromString("Doctor profile already exists") // nolint:wrapcheck
			}

			log.Error().Err(err).Msg("failed to create doctor profile")

			return res, false, fmt.Errorf("failed to create doctor profile: %w", err)
		}

		created = true
	} else if fields := req.ToFields(); len(fields) > 0 {
		filter := shared.FilterByID(doctor.ID, model.FieldID, model.TableName)

		if _, err = s.repo.Update(ctx, shared.WithModified(fields, requester.UserID), filter); err != nil {
			log.Error().Err(err).Msg("failed to update doctor profile")

			return res, false, fmt.Errorf("failed to update doctor profile: %w", err)
		}
	}

	if req.Schedules != nil {
		schedule := dto.SetScheduleRequest{Schedules: *req.Schedules}

		if err = s.scheduleRepo.Replace(ctx, doctor.ID, schedule.ToModels(doctor.ID, requester.UserID)); err != nil {
			log.Error().Err(err).Msg("failed to replace doctor schedule")

			return res, false, fmt.Errorf("failed to replace doctor schedule: %w", err)
		}
	}

	s.invalidate(ctx, doctor.ID, req.Schedules != nil)

	res, err = s.load(ctx, shared.FilterByID(doctor.ID, model.FieldID, model.TableName), msgDoctorNotFound)

	return res, created, err
}

func (s *serviceImpl) GetOwn(ctx context.Context, requester gModel.Requester) (res dto.DoctorResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".doctor.GetOwn")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.load(ctx, shared.FilterByField(requester.UserID, model.FieldUserID, model.TableName), msgProfileNotFound)
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.DoctorResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".doctor.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetDoctor, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for doctor")

		return res, nil
	}

	res, err = s.load(ctx, shared.FilterByID(id, model.FieldID, model.TableName), msgDoctorNotFound)
	if err != nil {
		return res, err
	}

	if err := s.cache.Save(ctx, cacheKey, res, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Msg("failed to save doctor to cache")
	}

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetDoctorsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".doctor.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllDoctor, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for doctors")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count doctors")

		return res, fmt.Errorf("failed to count doctors: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get doctors")

		return res, fmt.Errorf("failed to get doctors: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	if err := s.cache.Save(ctx, cacheKey, res, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Msg("failed to save doctors to cache")
	}

	return res, nil
}

// GetSchedule returns the weekly template; a doctor who never saved one has an empty template.
func (s *serviceImpl) GetSchedule(ctx context.Context, doctorID string) (res []dto.ScheduleResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".doctor.GetSchedule")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = s.ensureExists(ctx, doctorID); err != nil {
		return nil, err
	}

	schedules, err := s.scheduleRepo.GetByDoctor(ctx, doctorID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get doctor schedule")

		return nil, fmt.Errorf("failed to get doctor schedule: %w", err)
	}

	return dto.FromScheduleModels(schedules), nil
}

// SetSchedule replaces a doctor's whole template. Doctors may only edit their own.
func (s *serviceImpl) SetSchedule(ctx context.Context, requester gModel.Requester, doctorID string, req dto.SetScheduleRequest) (res []dto.ScheduleResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".doctor.SetSchedule")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = req.Check(); err != nil {
		return nil, failure.BadRequest(err) // nolint:wrapcheck
	}

	doctor, err := s.repo.Get(ctx, shared.FilterByID(doctorID, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get doctor")

		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}

	if doctor.ID == constant.Empty {
		return nil, failure.NotFound(msgDoctorNotFound) // nolint:wrapcheck
	}

	switch {
	case requester.Is(constant.RoleStaff, constant.RoleAdmin):
	case requester.Is(constant.RoleDoctor) && doctor.UserID == requester.UserID:
	default:
		return nil, failure.ForbiddenError
	}

	models := req.ToModels(doctor.ID, requester.UserID)

	if err = s.scheduleRepo.Replace(ctx, doctor.ID, models); err != nil {
		log.Error().Err(err).Msg("failed to replace doctor schedule")

		return nil, fmt.Errorf("failed to replace doctor schedule: %w", err)
	}

	s.invalidate(ctx, doctor.ID, true)

	return dto.FromScheduleModels(models), nil
}

func (s *serviceImpl) SetOwnSchedule(ctx context.Context, requester gModel.Requester, req dto.SetScheduleRequest) (res []dto.ScheduleResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".doctor.SetOwnSchedule")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	doctor, err := s.repo.Get(ctx, shared.FilterByField(requester.UserID, model.FieldUserID, model.TableName), model.FieldID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get doctor profile")

		return nil, fmt.Errorf("failed to get doctor profile: %w", err)
	}

	if doctor.ID == constant.Empty {
		return nil, failure.NotFound(msgProfileNotFound) // nolint:wrapcheck
	}

	return s.SetSchedule(ctx, requester, doctor.ID, req)
}

func (s *serviceImpl) ensureExists(ctx context.Context, doctorID string) error {
	exist, err := s.repo.Exist(ctx, shared.FilterByID(doctorID, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if doctor exists")

		return fmt.Errorf("failed to check if doctor exists: %w", err)
	}

	if !exist {
		return failure.NotFound(msgDoctorNotFound) // nolint:wrapcheck
	}

	return nil
}

func (s *serviceImpl) load(ctx context.Context, filter gDto.FilterGroup, notFound string) (res dto.DoctorResponse, err error) {
	doctor, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get doctor")

		return res, fmt.Errorf("failed to get doctor: %w", err)
	}

	if doctor.ID == constant.Empty {
		return res, failure.NotFound(notFound) // nolint:wrapcheck
	}

	schedules, err := s.scheduleRepo.GetByDoctor(ctx, doctor.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get doctor schedule")

		return res, fmt.Errorf("failed to get doctor schedule: %w", err)
	}

	res.FromModel(doctor)
	res.Schedules = dto.FromScheduleModels(schedules)

	return res, nil
}

// invalidate drops cached profile reads, plus the doctor's slot lists when the template changed.
func (s *serviceImpl) invalidate(ctx context.Context, doctorID string, templateChanged bool) {
	if err := s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetDoctor, doctorID)); err != nil {
		log.Error().Err(err).Msg("failed to delete doctor from cache")
	}

	shared.InvalidateCaches(ctx, s.cache, cacheGetAllDoctor)

	if templateChanged {
		if err := s.cache.Clear(ctx, appointmentModel.DoctorSlotsPattern(doctorID)); err != nil {
			log.Error().Err(err).Msg("failed to clear doctor slot cache")
		}
	}
}
