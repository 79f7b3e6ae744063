package patient

import (
	"net/http"

	"clinic/infras/otel"
	"clinic/internal/domains/patient/model"
	"clinic/internal/domains/patient/model/dto"
	"clinic/internal/domains/patient/service"
	"clinic/shared"
	"clinic/shared/constant"
	gDto "clinic/shared/dto"
	"clinic/shared/validator"
	"clinic/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Patient
	otel    otel.Otel
}

func New(service service.Patient, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/patients", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetPatients)
		routerGroup.Post("/profile", handler.UpsertProfile)
		routerGroup.Get("/profile", handler.GetProfile)
		routerGroup.Get("/{id}", handler.GetPatientByID)
		routerGroup.Delete("/{id}", handler.DeactivatePatient)
	})
}

// GetPatients lists patient profiles.
// @Summary Get all patients
// @Tags Patient
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param gender query string false "Filter by gender"
// @Success 200 {object} response.Data[dto.GetPatientsResponse] "List of patients"
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/patients [get]
// @Security BearerAuth
func (handler *Handler) GetPatients(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPatients")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	if gender := r.URL.Query().Get(model.FieldGender); gender != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldGender,
			Operator: gDto.FilterOperatorEq,
			Value:    gender,
			Table:    model.TableName,
		})
	}

	patients, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get patients")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, patients)
}

// UpsertProfile creates or updates the signed-in patient's profile.
// @Summary Create or update own patient profile
// @Tags Patient
// @Accept json
// @Produce json
// @Param request body dto.UpsertPatientRequest true "Patient profile"
// @Success 200 {object} response.Data[dto.PatientResponse] "Profile updated"
// @Success 201 {object} response.Data[dto.PatientResponse] "Profile created"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Router /v1/patients/profile [post]
// @Security BearerAuth
func (handler *Handler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpsertPatientProfile")
	defer scope.End()

	req := dto.UpsertPatientRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, created, err := handler.service.Upsert(ctx, shared.RequesterFromContext(ctx), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to save patient profile")

		response.WithError(w, err)

		return
	}

	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}

	response.WithJSON(w, code, res)
}

// GetProfile returns the signed-in patient's profile.
// @Summary Get own patient profile
// @Tags Patient
// @Produce json
// @Success 200 {object} response.Data[dto.PatientResponse] "Patient profile"
// @Failure 404 {object} response.Error
// @Router /v1/patients/profile [get]
// @Security BearerAuth
func (handler *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPatientProfile")
	defer scope.End()

	res, err := handler.service.GetOwn(ctx, shared.RequesterFromContext(ctx))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get patient profile")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetPatientByID returns one patient profile.
// @Summary Get a patient by ID
// @Tags Patient
// @Produce json
// @Param id path string true "Patient ID"
// @Success 200 {object} response.Data[dto.PatientResponse] "Patient"
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/patients/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetPatientByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPatientByID")
	defer scope.End()

	res, err := handler.service.Get(ctx, shared.RequesterFromContext(ctx), chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get patient")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// DeactivatePatient marks a patient inactive; bookings keep referencing it.
// @Summary Deactivate a patient
// @Tags Patient
// @Produce json
// @Param id path string true "Patient ID"
// @Success 200 {object} response.Message "Patient deactivated successfully"
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/patients/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeactivatePatient(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeactivatePatient")
	defer scope.End()

	if err := handler.service.Deactivate(ctx, shared.RequesterFromContext(ctx), chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to deactivate patient")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Patient deactivated successfully")

	response.WithMessage(w, http.StatusOK, "Patient deactivated successfully")
}
