//go:build wireinject
// +build wireinject

package di

import (
	"clinic/config"
	"clinic/infras/jwt"
	"clinic/infras/kafka"
	"clinic/infras/otel"
	"clinic/infras/postgres"
	"clinic/infras/redis"
	"clinic/permissions"
	"clinic/shared/cache"
	"clinic/transport/http"
	"clinic/transport/http/middleware"
	"clinic/transport/http/router"
	"clinic/transport/worker"

	"github.com/google/wire"

	appointmentEvent "clinic/internal/domains/appointment/event"
	appointmentRepository "clinic/internal/domains/appointment/repository"
	appointmentService "clinic/internal/domains/appointment/service"
	"clinic/internal/domains/appointment/slot"
	authService "clinic/internal/domains/auth/service"
	doctorRepository "clinic/internal/domains/doctor/repository"
	doctorService "clinic/internal/domains/doctor/service"
	patientRepository "clinic/internal/domains/patient/repository"
	patientService "clinic/internal/domains/patient/service"
	userRepository "clinic/internal/domains/user/repository"
	userService "clinic/internal/domains/user/service"
	appointmentHandler "clinic/internal/handlers/appointment"
	authHandler "clinic/internal/handlers/auth"
	doctorHandler "clinic/internal/handlers/doctor"
	patientHandler "clinic/internal/handlers/patient"
	userHandler "clinic/internal/handlers/user"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var userDomain = wire.NewSet(
	userRepository.New,
	userService.New,
)

var authDomain = wire.NewSet(
	authService.New,
)

var doctorDomain = wire.NewSet(
	doctorRepository.New,
	doctorRepository.NewSchedule,
	doctorService.New,
)

var patientDomain = wire.NewSet(
	patientRepository.New,
	patientService.New,
)

var appointmentDomain = wire.NewSet(
	appointmentRepository.New,
	slot.NewCalculatorFromConfig,
	appointmentEvent.NewPublisher,
	appointmentService.New,
)

var domains = wire.NewSet(
	userDomain,
	authDomain,
	doctorDomain,
	patientDomain,
	appointmentDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	userHandler.New,
	doctorHandler.New,
	patientHandler.New,
	appointmentHandler.New,
	router.New,
)

func InitializeService() (*http.HTTP, error) {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}, nil
}

func InitializeWorker() *worker.Worker {
	wire.Build(
		config.Get,
		otel.New,
		redis.New,
		kafka.New,
		sharedHelpers,
		appointmentEvent.NewSlotCacheListener,
		worker.New,
	)

	return &worker.Worker{}
}
