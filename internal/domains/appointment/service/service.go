package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"

	"clinic/config"
	"clinic/infras/otel"
	"clinic/internal/domains/appointment/event"
	"clinic/internal/domains/appointment/model"
	"clinic/internal/domains/appointment/model/dto"
	"clinic/internal/domains/appointment/repository"
	"clinic/internal/domains/appointment/slot"
	"clinic/internal/domains/appointment/slotcache"
	doctorModel "clinic/internal/domains/doctor/model"
	doctorRepo "clinic/internal/domains/doctor/repository"
	patientModel "clinic/internal/domains/patient/model"
	patientRepo "clinic/internal/domains/patient/repository"
	"clinic/shared"
	"clinic/shared/cache"
	"clinic/shared/constant"
	gDto "clinic/shared/dto"
	"clinic/shared/failure"
	gModel "clinic/shared/model"
	"clinic/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	msgAppointmentNotFound = "Appointment not found"
	msgDoctorNotFound      = "Doctor not found"
	msgPatientNotFound     = "Patient profile not found. Please complete your profile first."
	msgNotWorking          = "Doctor is not available on this day"
	msgNotCandidate        = "Requested time is not one of the doctor's slots"
	msgPastSlot            = "Cannot book an appointment in the past"
	msgConcurrentChange    = "Appointment was modified concurrently, please retry"
	msgCancelled           = "Appointment cancelled successfully"

	argCurrentStatus = "current_status"
)

type Appointment interface {
	ComputeAvailableSlots(ctx context.Context, doctorID, date string) ([]string, error)
	Admit(ctx context.Context, requester gModel.Requester, req dto.BookAppointmentRequest) (dto.AppointmentResponse, error)
	SetStatus(ctx context.Context, requester gModel.Requester, id string, req dto.UpdateStatusRequest) (dto.AppointmentResponse, error)
	Cancel(ctx context.Context, requester gModel.Requester, id string) (string, error)
	GetAll(ctx context.Context, requester gModel.Requester, params gDto.QueryParams, query dto.ListQuery) (dto.GetAppointmentsResponse, error)
	Get(ctx context.Context, requester gModel.Requester, id string) (dto.AppointmentResponse, error)
}

type serviceImpl struct {
	repo         repository.Appointment
	doctorRepo   doctorRepo.Doctor
	scheduleRepo doctorRepo.Schedule
	patientRepo  patientRepo.Patient
	calculator   slot.Calculator
	cache        cache.RedisCache
	publisher    event.Publisher
	cfg          *config.Config
	otel         otel.Otel
}

func New(
	repo repository.Appointment,
	doctors doctorRepo.Doctor,
	schedules doctorRepo.Schedule,
	patients patientRepo.Patient,
	calculator slot.Calculator,
	cache cache.RedisCache,
	publisher event.Publisher,
	cfg *config.Config,
	otel otel.Otel,
) Appointment {
	return &serviceImpl{
		repo:         repo,
		doctorRepo:   doctors,
		scheduleRepo: schedules,
		patientRepo:  patients,
		calculator:   calculator,
		cache:        cache,
		publisher:    publisher,
		cfg:          cfg,
		otel:         otel,
	}
}

// ComputeAvailableSlots lists the open start times of a doctor on one day in ascending order.
// A day the doctor does not work yields an empty list, not an error.
func (s *serviceImpl) ComputeAvailableSlots(ctx context.Context, doctorID, date string) (res []string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".appointment.ComputeAvailableSlots")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if date == constant.Empty {
		return nil, failure.BadRequestFromString("date is required") // nolint:wrapcheck
	}

	day, err := timezone.ParseDate(date)
	if err != nil {
		return nil, failure.BadRequestFromString("date must be in YYYY-MM-DD format") // nolint:wrapcheck
	}

	generation, cacheable := slotcache.Generation(ctx, s.cache, doctorID, date)
	cacheKey := model.SlotsCacheKey(doctorID, date, generation)

	if cacheable {
		if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
			log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for available slots")

			return res, nil
		}
	}

	if err = s.ensureDoctor(ctx, doctorID); err != nil {
		return nil, err
	}

	schedule, err := s.scheduleRepo.GetDay(ctx, doctorID, day.Weekday().String())
	if err != nil {
		log.Error().Err(err).Msg("failed to get doctor schedule")

		return nil, fmt.Errorf("failed to get doctor schedule: %w", err)
	}

	res = []string{}

	if schedule.ID != constant.Empty && schedule.IsAvailable {
		booked, err := s.repo.BookedTimes(ctx, doctorID, date)
		if err != nil {
			log.Error().Err(err).Msg("failed to get booked times")

			return nil, fmt.Errorf("failed to get booked times: %w", err)
		}

		res, err = s.calculator.Available(schedule.StartTime, schedule.EndTime, booked)
		if err != nil {
			log.Error().Err(err).Str("doctorID", doctorID).Msg("stored schedule is malformed")

			return nil, fmt.Errorf("failed to compute slots: %w", err)
		}
	}

	if !cacheable {
		return res, nil
	}

	// A booking change since the generation was read leaves this list under a key nobody reads.
	if err := s.cache.Save(ctx, cacheKey, res, s.cfg.Cache.SlotTTL); err != nil {
		log.Error().Err(err).Msg("failed to save available slots to cache")
	}

	return res, nil
}

// Admit books a slot for the requesting patient. The active-slot unique index settles races;
// the earlier existence check only spares the database a doomed insert.
func (s *serviceImpl) Admit(ctx context.Context, requester gModel.Requester, req dto.BookAppointmentRequest) (res dto.AppointmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".appointment.Admit")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !requester.Is(constant.RolePatient) {
		return res, failure.Forbidden("Only patients can book appointments") // nolint:wrapcheck
	}

	patient, err := s.patientRepo.Get(ctx, shared.FilterByField(requester.UserID, patientModel.FieldUserID, patientModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get patient profile")

		return res, fmt.Errorf("failed to get patient profile: %w", err)
	}

	if patient.ID == constant.Empty || !patient.IsActive {
		return res, failure.NotFound(msgPatientNotFound) // nolint:wrapcheck
	}

	if err = s.ensureDoctor(ctx, req.DoctorID); err != nil {
		return res, err
	}

	if err = s.checkBookable(ctx, req.DoctorID, req.Date, req.Time); err != nil {
		return res, err
	}

	filter := repository.ActiveSlotFilter(req.DoctorID, req.Date)
	filter.Filters = append(filter.Filters, gDto.Filter{
		Field:    model.FieldTime,
		Value:    req.Time,
		Operator: gDto.FilterOperatorEq,
		Table:    model.TableName,
	})

	taken, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check slot")

		return res, fmt.Errorf("failed to check slot: %w", err)
	}

	if taken {
		return res, failure.SlotUnavailableError
	}

	appointment := req.ToModel(patient.ID, requester.UserID)

	// The booking must land or fail as a whole once the insert is sent.
	writeCtx := context.WithoutCancel(ctx)

	if err = s.repo.Insert(writeCtx, appointment); err != nil {
		if errors.Is(err, model.ErrSlotTaken) {
			return res, failure.SlotUnavailableError
		}

		log.Error().Err(err).Msg("failed to create appointment")

		return res, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.dropSlots(writeCtx, appointment)
	s.publish(writeCtx, event.New(event.TypeBooked, appointment, constant.Empty, requester.UserID))

	res.FromModel(appointment)

	return res, nil
}

// SetStatus moves a booking along its lifecycle and records notes. Doctors act only on their
// own bookings; staff and admins act on any.
func (s *serviceImpl) SetStatus(ctx context.Context, requester gModel.Requester, id string, req dto.UpdateStatusRequest) (res dto.AppointmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".appointment.SetStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req.IsEmpty() {
		return res, failure.BadRequestFromString("status or notes is required") // nolint:wrapcheck
	}

	appointment, err := s.load(ctx, id)
	if err != nil {
		return res, err
	}

	switch {
	case requester.Is(constant.RoleStaff, constant.RoleAdmin):
	case requester.Is(constant.RoleDoctor) && appointment.DoctorUserID == requester.UserID:
	default:
		return res, failure.ForbiddenError
	}

	next := appointment.Status
	if req.Status != nil {
		next = *req.Status
	}

	if !model.IsKnownStatus(next) {
		return res, failure.BadRequestFromString("unknown status " + next) // nolint:wrapcheck
	}

	if !model.CanTransition(appointment.Status, next) {
		return res, failure.BadRequestFromString(fmt.Sprintf("cannot change status from %s to %s", appointment.Status, next)) // nolint:wrapcheck
	}

	fields := map[string]any{}
	if next != appointment.Status {
		fields[model.FieldStatus] = next
	}

	if req.Notes != nil {
		fields[model.FieldNotes] = *req.Notes
	}

	if len(fields) == 0 {
		res.FromModel(appointment)

		return res, nil
	}

	previous := appointment.Status

	if err = s.compareAndSet(ctx, appointment, fields, requester.UserID); err != nil {
		return res, err
	}

	appointment.Status = next
	if req.Notes != nil {
		appointment.Notes = *req.Notes
	}

	if next != previous {
		eventType := event.TypeStatusChanged
		if next == model.StatusCancelled {
			eventType = event.TypeCancelled

			s.dropSlots(ctx, appointment)
		}

		s.publish(ctx, event.New(eventType, appointment, previous, requester.UserID))
	}

	res.FromModel(appointment)

	return res, nil
}

// Cancel releases a booking's slot. The booking's patient and doctor may cancel it, as may staff and admins.
func (s *serviceImpl) Cancel(ctx context.Context, requester gModel.Requester, id string) (res string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".appointment.Cancel")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	appointment, err := s.load(ctx, id)
	if err != nil {
		return res, err
	}

	if !canAccess(requester, appointment) {
		return res, failure.ForbiddenError
	}

	if model.IsTerminal(appointment.Status) {
		return res, failure.BadRequestFromString("Cannot cancel a " + appointment.Status + " appointment") // nolint:wrapcheck
	}

	previous := appointment.Status

	if err = s.compareAndSet(ctx, appointment, map[string]any{model.FieldStatus: model.StatusCancelled}, requester.UserID); err != nil {
		return res, err
	}

	appointment.Status = model.StatusCancelled

	s.dropSlots(ctx, appointment)
	s.publish(ctx, event.New(event.TypeCancelled, appointment, previous, requester.UserID))

	return msgCancelled, nil
}

// GetAll lists bookings visible to the requester: patients and doctors see their own, staff and admins see all.
func (s *serviceImpl) GetAll(ctx context.Context, requester gModel.Requester, params gDto.QueryParams, query dto.ListQuery) (res dto.GetAppointmentsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".appointment.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  query.Filters(),
	}

	switch {
	case requester.Is(constant.RoleStaff, constant.RoleAdmin):
	case requester.Is(constant.RolePatient):
		filter.Filters = append(filter.Filters, ownerFilter(patientModel.TableName, requester.UserID))
	case requester.Is(constant.RoleDoctor):
		filter.Filters = append(filter.Filters, ownerFilter(doctorModel.TableName, requester.UserID))
	default:
		return res, failure.ForbiddenError
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count appointments")

		return res, fmt.Errorf("failed to count appointments: %w", err)
	}

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get appointments")

		return res, fmt.Errorf("failed to get appointments: %w", err)
	}

	res.FromModels(models, total, params.Limit)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, requester gModel.Requester, id string) (res dto.AppointmentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".appointment.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	appointment, err := s.load(ctx, id)
	if err != nil {
		return res, err
	}

	if !canAccess(requester, appointment) {
		return res, failure.ForbiddenError
	}

	res.FromModel(appointment)

	return res, nil
}

func (s *serviceImpl) load(ctx context.Context, id string) (model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get appointment")

		return appointment, fmt.Errorf("failed to get appointment: %w", err)
	}

	if appointment.ID == constant.Empty {
		return appointment, failure.NotFound(msgAppointmentNotFound) // nolint:wrapcheck
	}

	return appointment, nil
}

func (s *serviceImpl) ensureDoctor(ctx context.Context, doctorID string) error {
	exist, err := s.doctorRepo.Exist(ctx, shared.FilterByID(doctorID, doctorModel.FieldID, doctorModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check doctor")

		return fmt.Errorf("failed to check doctor: %w", err)
	}

	if !exist {
		return failure.NotFound(msgDoctorNotFound) // nolint:wrapcheck
	}

	return nil
}

// checkBookable verifies the requested time is a future candidate slot of the doctor's template.
func (s *serviceImpl) checkBookable(ctx context.Context, doctorID, date, clock string) error {
	day, err := timezone.ParseDate(date)
	if err != nil {
		return failure.BadRequestFromString("date must be in YYYY-MM-DD format") // nolint:wrapcheck
	}

	schedule, err := s.scheduleRepo.GetDay(ctx, doctorID, day.Weekday().String())
	if err != nil {
		log.Error().Err(err).Msg("failed to get doctor schedule")

		return fmt.Errorf("failed to get doctor schedule: %w", err)
	}

	if schedule.ID == constant.Empty || !schedule.IsAvailable {
		return failure.BadRequestFromString(msgNotWorking) // nolint:wrapcheck
	}

	ok, err := s.calculator.IsCandidate(schedule.StartTime, schedule.EndTime, clock)
	if err != nil {
		log.Error().Err(err).Str("doctorID", doctorID).Msg("stored schedule is malformed")

		return fmt.Errorf("failed to compute slots: %w", err)
	}

	if !ok {
		return failure.BadRequestFromString(msgNotCandidate) // nolint:wrapcheck
	}

	start, err := timezone.Parse(constant.CalendarLayout+" "+constant.ClockLayout, date+" "+clock)
	if err != nil {
		return failure.BadRequestFromString(msgNotCandidate) // nolint:wrapcheck
	}

	if start.Before(timezone.Now()) {
		return failure.BadRequestFromString(msgPastSlot) // nolint:wrapcheck
	}

	return nil
}

// compareAndSet writes fields only if the booking still has the status it was read with.
func (s *serviceImpl) compareAndSet(ctx context.Context, appointment model.Appointment, fields map[string]any, user string) error {
	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldID,
				Value:    appointment.ID,
				Operator: gDto.FilterOperatorEq,
			},
			gDto.Filter{
				ArgName:  argCurrentStatus,
				Field:    model.FieldStatus,
				Value:    appointment.Status,
				Operator: gDto.FilterOperatorEq,
			},
		},
	}

	affected, err := s.repo.Update(ctx, shared.WithModified(fields, user), filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to update appointment")

		return fmt.Errorf("failed to update appointment: %w", err)
	}

	if affected == 0 {
		return failure.BadRequestFromString(msgConcurrentChange) // nolint:wrapcheck
	}

	return nil
}

func (s *serviceImpl) dropSlots(ctx context.Context, appointment model.Appointment) {
	if _, err := slotcache.Bump(ctx, s.cache, appointment.DoctorID, appointment.Date.String()); err != nil {
		log.Error().Err(err).Str("doctorID", appointment.DoctorID).Msg("failed to invalidate available slots")
	}
}

func (s *serviceImpl) publish(ctx context.Context, evt event.Event) {
	if err := s.publisher.Publish(ctx, evt); err != nil {
		log.Error().Err(err).Str("type", evt.Type).Str("appointmentID", evt.AppointmentID).Msg("failed to publish appointment event")
	}
}

func canAccess(requester gModel.Requester, appointment model.Appointment) bool {
	switch {
	case requester.Is(constant.RoleStaff, constant.RoleAdmin):
		return true
	case requester.Is(constant.RolePatient):
		return appointment.PatientUserID == requester.UserID
	case requester.Is(constant.RoleDoctor):
		return appointment.DoctorUserID == requester.UserID
	default:
		return false
	}
}

func ownerFilter(table, userID string) gDto.Filter {
	return gDto.Filter{
		ArgName:  table + "_user_id",
		Field:    "user_id",
		Value:    userID,
		Operator: gDto.FilterOperatorEq,
		Table:    table,
	}
}
