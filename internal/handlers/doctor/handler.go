package doctor

import (
	"net/http"

	"clinic/infras/otel"
	appointmentService "clinic/internal/domains/appointment/service"
	"clinic/internal/domains/doctor/model"
	"clinic/internal/domains/doctor/model/dto"
	"clinic/internal/domains/doctor/service"
	"clinic/shared"
	"clinic/shared/constant"
	gDto "clinic/shared/dto"
	"clinic/shared/validator"
	"clinic/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service      service.Doctor
	appointments appointmentService.Appointment
	otel         otel.Otel
}

func New(service service.Doctor, appointments appointmentService.Appointment, otel otel.Otel) Handler {
	return Handler{
		service:      service,
		appointments: appointments,
		otel:         otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/doctors", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetDoctors)
		routerGroup.Post("/profile", handler.UpsertProfile)
		routerGroup.Get("/profile", handler.GetProfile)
		routerGroup.Put("/profile/schedule", handler.SetOwnSchedule)
		routerGroup.Get("/{id}", handler.GetDoctorByID)
		routerGroup.Get("/{id}/schedule", handler.GetSchedule)
		routerGroup.Put("/{id}/schedule", handler.SetSchedule)
		routerGroup.Get("/{id}/slots", handler.GetSlots)
	})
}

// GetDoctors lists doctor profiles.
// @Summary Get all doctors
// @Tags Doctor
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param specialization query string false "Filter by specialization"
// @Success 200 {object} response.Data[dto.GetDoctorsResponse] "List of doctors"
// @Failure 500 {object} response.Error
// @Router /v1/doctors [get]
func (handler *Handler) GetDoctors(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetDoctors")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	if specialization := r.URL.Query().Get(model.FieldSpecialization); specialization != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldSpecialization,
			Operator: gDto.FilterOperatorLike,
			Value:    specialization,
			Table:    model.TableName,
		})
	}

	doctors, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get doctors")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, doctors)
}

// UpsertProfile creates or updates the signed-in doctor's profile.
// @Summary Create or update own doctor profile
// @Description Creates the profile on first call. Sending schedules replaces the whole weekly template.
// @Tags Doctor
// @Accept json
// @Produce json
// @Param request body dto.UpsertDoctorRequest true "Doctor profile"
// @Success 200 {object} response.Data[dto.DoctorResponse] "Profile updated"
// @Success 201 {object} response.Data[dto.DoctorResponse] "Profile created"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/doctors/profile [post]
// @Security BearerAuth
func (handler *Handler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpsertDoctorProfile")
	defer scope.End()

	req := dto.UpsertDoctorRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, created, err := handler.service.Upsert(ctx, shared.RequesterFromContext(ctx), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to save doctor profile")

		response.WithError(w, err)

		return
	}

	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}

	response.WithJSON(w, code, res)
}

// GetProfile returns the signed-in doctor's profile.
// @Summary Get own doctor profile
// @Tags Doctor
// @Produce json
// @Success 200 {object} response.Data[dto.DoctorResponse] "Doctor profile"
// @Failure 404 {object} response.Error
// @Router /v1/doctors/profile [get]
// @Security BearerAuth
func (handler *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetDoctorProfile")
	defer scope.End()

	res, err := handler.service.GetOwn(ctx, shared.RequesterFromContext(ctx))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get doctor profile")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetDoctorByID returns one doctor with the weekly template.
// @Summary Get a doctor by ID
// @Tags Doctor
// @Produce json
// @Param id path string true "Doctor ID"
// @Success 200 {object} response.Data[dto.DoctorResponse] "Doctor"
// @Failure 404 {object} response.Error
// @Router /v1/doctors/{id} [get]
func (handler *Handler) GetDoctorByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetDoctorByID")
	defer scope.End()

	res, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get doctor")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetSchedule returns a doctor's weekly template.
// @Summary Get a doctor's weekly schedule
// @Tags Doctor
// @Produce json
// @Param id path string true "Doctor ID"
// @Success 200 {object} response.Data[[]dto.ScheduleResponse] "Weekly template"
// @Failure 404 {object} response.Error
// @Router /v1/doctors/{id}/schedule [get]
func (handler *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSchedule")
	defer scope.End()

	res, err := handler.service.GetSchedule(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get doctor schedule")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// SetSchedule replaces a doctor's weekly template.
// @Summary Replace a doctor's weekly schedule
// @Tags Doctor
// @Accept json
// @Produce json
// @Param id path string true "Doctor ID"
// @Param request body dto.SetScheduleRequest true "Weekly template"
// @Success 200 {object} response.Data[[]dto.ScheduleResponse] "Weekly template"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/doctors/{id}/schedule [put]
// @Security BearerAuth
func (handler *Handler) SetSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SetSchedule")
	defer scope.End()

	req := dto.SetScheduleRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.SetSchedule(ctx, shared.RequesterFromContext(ctx), chi.URLParam(r, constant.RequestParamID), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to set doctor schedule")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// SetOwnSchedule replaces the signed-in doctor's weekly template.
// @Summary Replace own weekly schedule
// @Tags Doctor
// @Accept json
// @Produce json
// @Param request body dto.SetScheduleRequest true "Weekly template"
// @Success 200 {object} response.Data[[]dto.ScheduleResponse] "Weekly template"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/doctors/profile/schedule [put]
// @Security BearerAuth
func (handler *Handler) SetOwnSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SetOwnSchedule")
	defer scope.End()

	req := dto.SetScheduleRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.SetOwnSchedule(ctx, shared.RequesterFromContext(ctx), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to set own schedule")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetSlots lists the open start times of a doctor on one day.
// @Summary Available slots
// @Description Candidate slots from the weekly template minus non-cancelled bookings, ascending.
// @Tags Doctor
// @Produce json
// @Param id path string true "Doctor ID"
// @Param date query string true "Calendar day (YYYY-MM-DD)"
// @Success 200 {object} response.Data[[]string] "Available HH:MM start times"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/doctors/{id}/slots [get]
func (handler *Handler) GetSlots(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSlots")
	defer scope.End()

	doctorID := chi.URLParam(r, constant.RequestParamID)
	date := r.URL.Query().Get(constant.RequestParamDate)

	slots, err := handler.appointments.ComputeAvailableSlots(ctx, doctorID, date)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("doctorID", doctorID).Msg("failed to compute available slots")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, slots)
}
