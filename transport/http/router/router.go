package router

import (
	"clinic/internal/handlers/appointment"
	"clinic/internal/handlers/auth"
	"clinic/internal/handlers/doctor"
	"clinic/internal/handlers/patient"
	"clinic/internal/handlers/user"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Auth        auth.Handler
	User        user.Handler
	Doctor      doctor.Handler
	Patient     patient.Handler
	Appointment appointment.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Auth.Router(routerGroup)
		r.DomainHandlers.User.Router(routerGroup)
		r.DomainHandlers.Doctor.Router(routerGroup)
		r.DomainHandlers.Patient.Router(routerGroup)
		r.DomainHandlers.Appointment.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}
