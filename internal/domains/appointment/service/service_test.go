package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"clinic/config"
	otelMocks "clinic/infras/otel/mocks"
	"clinic/internal/domains/appointment/event"
	eventMocks "clinic/internal/domains/appointment/event/mocks"
	"clinic/internal/domains/appointment/mocks"
	"clinic/internal/domains/appointment/model"
	"clinic/internal/domains/appointment/model/dto"
	"clinic/internal/domains/appointment/service"
	"clinic/internal/domains/appointment/slot"
	doctorMocks "clinic/internal/domains/doctor/mocks"
	doctorModel "clinic/internal/domains/doctor/model"
	patientMocks "clinic/internal/domains/patient/mocks"
	patientModel "clinic/internal/domains/patient/model"
	"clinic/shared/cache"
	cacheMocks "clinic/shared/cache/mocks"
	"clinic/shared/constant"
	gDto "clinic/shared/dto"
	"clinic/shared/failure"
	gModel "clinic/shared/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	doctorID      = "0b8a4a63-4a5b-4c1e-9d53-6f7a3c6f2d10"
	monday        = "2030-01-07"
	pastDay       = "2020-01-06"
	generationKey = "appointment:slots_gen:" + doctorID + ":" + monday
	slotsKey      = "appointment:slots:" + doctorID + ":" + monday + ":0"
	bumpedKey     = "appointment:slots:" + doctorID + ":" + monday + ":1"
	bookingID     = "appt-1"
)

var (
	patientUser = gModel.Requester{UserID: "user-pat", Role: constant.RolePatient}
	otherUser   = gModel.Requester{UserID: "user-other", Role: constant.RolePatient}
	doctorUser  = gModel.Requester{UserID: "user-doc", Role: constant.RoleDoctor}
	staffUser   = gModel.Requester{UserID: "user-staff", Role: constant.RoleStaff}

	mondayTemplate = doctorModel.Schedule{ID: "sch-1", DoctorID: doctorID, Day: "Monday", StartTime: "09:00", EndTime: "11:00", IsAvailable: true}
	activePatient  = patientModel.Patient{ID: "pat-1", UserID: patientUser.UserID, IsActive: true}
)

type fixture struct {
	repo      *mocks.MockAppointment
	doctors   *doctorMocks.MockDoctor
	schedules *doctorMocks.MockSchedule
	patients  *patientMocks.MockPatient
	cache     *cacheMocks.MockRedisCache
	publisher *eventMocks.MockPublisher
	svc       service.Appointment
}

func newConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Cache.SlotTTL = 60

	return cfg
}

func newCalculator() slot.Calculator {
	return slot.NewCalculator(30*time.Minute, slot.PolicyFit)
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := fixture{
		repo:      mocks.NewMockAppointment(ctrl),
		doctors:   doctorMocks.NewMockDoctor(ctrl),
		schedules: doctorMocks.NewMockSchedule(ctrl),
		patients:  patientMocks.NewMockPatient(ctrl),
		cache:     cacheMocks.NewMockRedisCache(ctrl),
		publisher: eventMocks.NewMockPublisher(ctrl),
	}
	f.svc = service.New(f.repo, f.doctors, f.schedules, f.patients, newCalculator(), f.cache, f.publisher, newConfig(), otelMocks.NewOtel())

	return f
}

func booking(status string) model.Appointment {
	return model.Appointment{
		ID:            bookingID,
		DoctorID:      doctorID,
		PatientID:     activePatient.ID,
		Date:          gModel.Date(monday),
		Time:          "09:30",
		Status:        status,
		DoctorUserID:  doctorUser.UserID,
		PatientUserID: patientUser.UserID,
	}
}

func strPtr(v string) *string {
	return &v
}

func miss() error {
	return fmt.Errorf("failed to get cache value: %w", cache.Nil)
}

func (f fixture) expectGeneration(generation int64) {
	f.cache.EXPECT().
		Get(gomock.Any(), generationKey, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, value any) error {
			if generation == 0 {
				return miss()
			}

			*value.(*int64) = generation

			return nil
		})
}

func (f fixture) expectBump() {
	gomock.InOrder(
		f.cache.EXPECT().Increment(gomock.Any(), generationKey, model.SlotsGenerationTTL).Return(int64(1), nil),
		f.cache.EXPECT().Delete(gomock.Any(), bumpedKey).Return(nil),
	)
}

func TestAppointmentService_ComputeAvailableSlots(t *testing.T) {
	t.Run("subtracts active bookings from the template", func(t *testing.T) {
		f := newFixture(t)

		f.expectGeneration(0)
		f.cache.EXPECT().Get(gomock.Any(), slotsKey, gomock.Any()).Return(miss())
		f.doctors.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.schedules.EXPECT().GetDay(gomock.Any(), doctorID, "Monday").Return(mondayTemplate, nil)
		f.repo.EXPECT().BookedTimes(gomock.Any(), doctorID, monday).Return([]string{"09:30"}, nil)
		f.cache.EXPECT().Save(gomock.Any(), slotsKey, []string{"09:00", "10:00", "10:30"}, 60).Return(nil)

		res, err := f.svc.ComputeAvailableSlots(context.Background(), doctorID, monday)

		require.NoError(t, err)
		assert.Equal(t, []string{"09:00", "10:00", "10:30"}, res)
	})

	t.Run("serves cached slots", func(t *testing.T) {
		f := newFixture(t)

		f.expectGeneration(0)
		f.cache.EXPECT().
			Get(gomock.Any(), slotsKey, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, value any) error {
				ptr, ok := value.(*[]string)
				require.True(t, ok)

				*ptr = []string{"10:30"}

				return nil
			})

		res, err := f.svc.ComputeAvailableSlots(context.Background(), doctorID, monday)

		require.NoError(t, err)
		assert.Equal(t, []string{"10:30"}, res)
	})

	t.Run("day off yields empty list", func(t *testing.T) {
		f := newFixture(t)

		f.expectGeneration(0)
		f.cache.EXPECT().Get(gomock.Any(), slotsKey, gomock.Any()).Return(miss())
		f.doctors.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.schedules.EXPECT().GetDay(gomock.Any(), doctorID, "Monday").Return(doctorModel.Schedule{ID: "sch-1", IsAvailable: false}, nil)
		f.cache.EXPECT().Save(gomock.Any(), slotsKey, []string{}, 60).Return(nil)

		res, err := f.svc.ComputeAvailableSlots(context.Background(), doctorID, monday)

		require.NoError(t, err)
		assert.NotNil(t, res)
		assert.Empty(t, res)
	})

	t.Run("missing day record yields empty list", func(t *testing.T) {
		f := newFixture(t)

		f.expectGeneration(0)
		f.cache.EXPECT().Get(gomock.Any(), slotsKey, gomock.Any()).Return(miss())
		f.doctors.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.schedules.EXPECT().GetDay(gomock.Any(), doctorID, "Monday").Return(doctorModel.Schedule{}, nil)
		f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		res, err := f.svc.ComputeAvailableSlots(context.Background(), doctorID, monday)

		require.NoError(t, err)
		assert.Empty(t, res)
	})

	t.Run("unknown doctor", func(t *testing.T) {
		f := newFixture(t)

		f.expectGeneration(0)
		f.cache.EXPECT().Get(gomock.Any(), slotsKey, gomock.Any()).Return(miss())
		f.doctors.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		_, err := f.svc.ComputeAvailableSlots(context.Background(), doctorID, monday)

		assert.Equal(t, 404, failure.GetCode(err))
	})

	t.Run("date is validated", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.ComputeAvailableSlots(context.Background(), doctorID, "")
		assert.Equal(t, 400, failure.GetCode(err))

		_, err = f.svc.ComputeAvailableSlots(context.Background(), doctorID, "07-01-2030")
		assert.Equal(t, 400, failure.GetCode(err))
	})

	t.Run("reads the list of the current generation", func(t *testing.T) {
		f := newFixture(t)

		f.expectGeneration(3)
		f.cache.EXPECT().Get(gomock.Any(), "appointment:slots:"+doctorID+":"+monday+":3", gomock.Any()).Return(miss())
		f.doctors.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.schedules.EXPECT().GetDay(gomock.Any(), doctorID, "Monday").Return(mondayTemplate, nil)
		f.repo.EXPECT().BookedTimes(gomock.Any(), doctorID, monday).Return(nil, nil)
		f.cache.EXPECT().Save(gomock.Any(), "appointment:slots:"+doctorID+":"+monday+":3", gomock.Any(), 60).Return(nil)

		res, err := f.svc.ComputeAvailableSlots(context.Background(), doctorID, monday)

		require.NoError(t, err)
		assert.Len(t, res, 4)
	})

	t.Run("unreadable generation bypasses the cache", func(t *testing.T) {
		f := newFixture(t)

		f.cache.EXPECT().Get(gomock.Any(), generationKey, gomock.Any()).Return(errors.New("redis down"))
		f.doctors.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.schedules.EXPECT().GetDay(gomock.Any(), gomock.Any(), gomock.Any()).Return(mondayTemplate, nil)
		f.repo.EXPECT().BookedTimes(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

		res, err := f.svc.ComputeAvailableSlots(context.Background(), doctorID, monday)

		require.NoError(t, err)
		assert.Len(t, res, 4)
	})

	t.Run("save failure does not fail the read", func(t *testing.T) {
		f := newFixture(t)

		f.expectGeneration(0)
		f.cache.EXPECT().Get(gomock.Any(), slotsKey, gomock.Any()).Return(miss())
		f.doctors.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.schedules.EXPECT().GetDay(gomock.Any(), gomock.Any(), gomock.Any()).Return(mondayTemplate, nil)
		f.repo.EXPECT().BookedTimes(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
		f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

		res, err := f.svc.ComputeAvailableSlots(context.Background(), doctorID, monday)

		require.NoError(t, err)
		assert.Len(t, res, 4)
	})
}

func (f fixture) expectAdmissible() {
	f.patients.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activePatient, nil)
	f.doctors.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	f.schedules.EXPECT().GetDay(gomock.Any(), doctorID, "Monday").Return(mondayTemplate, nil)
}

func TestAppointmentService_Admit(t *testing.T) {
	req := dto.BookAppointmentRequest{DoctorID: doctorID, Date: monday, Time: "09:30", Reason: " checkup "}

	t.Run("books free slot", func(t *testing.T) {
		f := newFixture(t)
		f.expectAdmissible()

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.repo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, appointment model.Appointment) error {
				assert.Equal(t, activePatient.ID, appointment.PatientID)
				assert.Equal(t, model.StatusBooked, appointment.Status)
				assert.Equal(t, "checkup", appointment.Reason)
				assert.NotEmpty(t, appointment.ID)

				return nil
			})
		f.expectBump()
		f.publisher.EXPECT().
			Publish(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, evt event.Event) error {
				assert.Equal(t, event.TypeBooked, evt.Type)
				assert.Equal(t, patientUser.UserID, evt.Actor)

				return nil
			})

		res, err := f.svc.Admit(context.Background(), patientUser, req)

		require.NoError(t, err)
		assert.Equal(t, model.StatusBooked, res.Status)
		assert.Equal(t, "09:30", res.Time)
		assert.Equal(t, monday, res.Date)
	})

	t.Run("insert survives caller cancellation", func(t *testing.T) {
		f := newFixture(t)
		f.expectAdmissible()

		ctx, cancel := context.WithCancel(context.Background())

		f.repo.EXPECT().
			Exist(gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, gDto.FilterGroup) (bool, error) {
				cancel()

				return false, nil
			})
		f.repo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ model.Appointment) error {
				return ctx.Err()
			})
		f.expectBump()
		f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

		_, err := f.svc.Admit(ctx, patientUser, req)

		require.NoError(t, err)
	})

	t.Run("fast path rejects taken slot", func(t *testing.T) {
		f := newFixture(t)
		f.expectAdmissible()

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)

		_, err := f.svc.Admit(context.Background(), patientUser, req)

		assert.True(t, failure.IsSlotUnavailable(err))
	})

	t.Run("unique index loss maps to slot unavailable", func(t *testing.T) {
		f := newFixture(t)
		f.expectAdmissible()

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(fmt.Errorf("%w: duplicate", model.ErrSlotTaken))

		_, err := f.svc.Admit(context.Background(), patientUser, req)

		assert.True(t, failure.IsSlotUnavailable(err))
		assert.Equal(t, 400, failure.GetCode(err))
	})

	t.Run("publish failure keeps the booking", func(t *testing.T) {
		f := newFixture(t)
		f.expectAdmissible()

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
		f.cache.EXPECT().Increment(gomock.Any(), generationKey, gomock.Any()).Return(int64(0), errors.New("redis down"))
		f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

		_, err := f.svc.Admit(context.Background(), patientUser, req)

		require.NoError(t, err)
	})

	t.Run("time off the slot grid", func(t *testing.T) {
		f := newFixture(t)
		f.expectAdmissible()

		offGrid := req
		offGrid.Time = "09:15"

		_, err := f.svc.Admit(context.Background(), patientUser, offGrid)

		assert.Equal(t, 400, failure.GetCode(err))
		assert.False(t, failure.IsSlotUnavailable(err))
	})

	t.Run("time outside working hours", func(t *testing.T) {
		f := newFixture(t)
		f.expectAdmissible()

		late := req
		late.Time = "11:00"

		_, err := f.svc.Admit(context.Background(), patientUser, late)

		assert.Equal(t, 400, failure.GetCode(err))
	})

	t.Run("malformed stored template is a server error", func(t *testing.T) {
		f := newFixture(t)

		broken := mondayTemplate
		broken.StartTime = "9am"

		f.patients.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activePatient, nil)
		f.doctors.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.schedules.EXPECT().GetDay(gomock.Any(), doctorID, "Monday").Return(broken, nil)

		_, err := f.svc.Admit(context.Background(), patientUser, req)

		require.Error(t, err)
		assert.Equal(t, 500, failure.GetCode(err))
		assert.NotEqual(t, "Requested time is not one of the doctor's slots", err.Error())
	})

	t.Run("doctor off that day", func(t *testing.T) {
		f := newFixture(t)

		f.patients.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activePatient, nil)
		f.doctors.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.schedules.EXPECT().GetDay(gomock.Any(), doctorID, "Monday").Return(doctorModel.Schedule{}, nil)

		_, err := f.svc.Admit(context.Background(), patientUser, req)

		assert.Equal(t, 400, failure.GetCode(err))
	})

	t.Run("slot in the past", func(t *testing.T) {
		f := newFixture(t)

		f.patients.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activePatient, nil)
		f.doctors.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.schedules.EXPECT().GetDay(gomock.Any(), doctorID, "Monday").Return(mondayTemplate, nil)

		past := req
		past.Date = pastDay

		_, err := f.svc.Admit(context.Background(), patientUser, past)

		require.Error(t, err)
		assert.Equal(t, "Cannot book an appointment in the past", err.Error())
	})

	t.Run("patient profile required", func(t *testing.T) {
		f := newFixture(t)

		f.patients.EXPECT().Get(gomock.Any(), gomock.Any()).Return(patientModel.Patient{}, nil)

		_, err := f.svc.Admit(context.Background(), patientUser, req)

		assert.Equal(t, 404, failure.GetCode(err))
	})

	t.Run("inactive patient", func(t *testing.T) {
		f := newFixture(t)

		inactive := activePatient
		inactive.IsActive = false

		f.patients.EXPECT().Get(gomock.Any(), gomock.Any()).Return(inactive, nil)

		_, err := f.svc.Admit(context.Background(), patientUser, req)

		assert.Equal(t, 404, failure.GetCode(err))
	})

	t.Run("unknown doctor", func(t *testing.T) {
		f := newFixture(t)

		f.patients.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activePatient, nil)
		f.doctors.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		_, err := f.svc.Admit(context.Background(), patientUser, req)

		assert.Equal(t, 404, failure.GetCode(err))
	})

	t.Run("only patients book", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Admit(context.Background(), doctorUser, req)

		assert.Equal(t, 403, failure.GetCode(err))
	})
}

func TestAppointmentService_AdmitConcurrentSameSlot(t *testing.T) {
	const racers = 16

	ctrl := gomock.NewController(t)
	store := newLedger()

	patients := patientMocks.NewMockPatient(ctrl)
	doctors := doctorMocks.NewMockDoctor(ctrl)
	schedules := doctorMocks.NewMockSchedule(ctrl)
	cache := cacheMocks.NewMockRedisCache(ctrl)
	publisher := eventMocks.NewMockPublisher(ctrl)

	patients.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activePatient, nil).Times(racers)
	doctors.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil).Times(racers)
	schedules.EXPECT().GetDay(gomock.Any(), doctorID, "Monday").Return(mondayTemplate, nil).Times(racers)
	cache.EXPECT().Increment(gomock.Any(), generationKey, model.SlotsGenerationTTL).Return(int64(1), nil).Times(1)
	cache.EXPECT().Delete(gomock.Any(), bumpedKey).Return(nil).Times(1)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	svc := service.New(store, doctors, schedules, patients, newCalculator(), cache, publisher, newConfig(), otelMocks.NewOtel())
	req := dto.BookAppointmentRequest{DoctorID: doctorID, Date: monday, Time: "10:00"}

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		admitted    int
		unavailable int
	)

	start := make(chan struct{})

	for range racers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			<-start

			_, err := svc.Admit(context.Background(), patientUser, req)

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				admitted++
			case failure.IsSlotUnavailable(err):
				unavailable++
			}
		}()
	}

	close(start)
	wg.Wait()

	assert.Equal(t, 1, admitted)
	assert.Equal(t, racers-1, unavailable)

	count, err := store.Count(context.Background(), gDto.FilterGroup{})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAppointmentService_SetStatus(t *testing.T) {
	t.Run("doctor confirms own booking", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(booking(model.StatusBooked), nil)
		f.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, filter gDto.FilterGroup) (int64, error) {
				assert.Equal(t, model.StatusConfirmed, fields[model.FieldStatus])
				assert.Equal(t, doctorUser.UserID, fields[constant.FieldModifiedBy])

				where, args := filter.GetWhereClause()
				assert.Contains(t, where, "status = :current_status")
				assert.Equal(t, model.StatusBooked, args["current_status"])

				return 1, nil
			})
		f.publisher.EXPECT().
			Publish(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, evt event.Event) error {
				assert.Equal(t, event.TypeStatusChanged, evt.Type)
				assert.Equal(t, model.StatusBooked, evt.PreviousStatus)
				assert.Equal(t, model.StatusConfirmed, evt.Status)

				return nil
			})

		res, err := f.svc.SetStatus(context.Background(), doctorUser, bookingID, dto.UpdateStatusRequest{Status: strPtr(model.StatusConfirmed)})

		require.NoError(t, err)
		assert.Equal(t, model.StatusConfirmed, res.Status)
	})

	t.Run("cancel through status frees the slot", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(booking(model.StatusConfirmed), nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
		f.expectBump()
		f.publisher.EXPECT().
			Publish(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, evt event.Event) error {
				assert.Equal(t, event.TypeCancelled, evt.Type)
				assert.True(t, evt.FreesSlot())

				return nil
			})

		res, err := f.svc.SetStatus(context.Background(), staffUser, bookingID, dto.UpdateStatusRequest{Status: strPtr(model.StatusCancelled)})

		require.NoError(t, err)
		assert.Equal(t, model.StatusCancelled, res.Status)
	})

	t.Run("notes only keep the status", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(booking(model.StatusInProgress), nil)
		f.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) (int64, error) {
				assert.NotContains(t, fields, model.FieldStatus)
				assert.Equal(t, "bp normal", fields[model.FieldNotes])

				return 1, nil
			})

		res, err := f.svc.SetStatus(context.Background(), doctorUser, bookingID, dto.UpdateStatusRequest{Notes: strPtr("bp normal")})

		require.NoError(t, err)
		assert.Equal(t, model.StatusInProgress, res.Status)
		assert.Equal(t, "bp normal", res.Notes)
	})

	t.Run("illegal transition", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(booking(model.StatusCompleted), nil)

		_, err := f.svc.SetStatus(context.Background(), doctorUser, bookingID, dto.UpdateStatusRequest{Status: strPtr(model.StatusBooked)})

		require.Error(t, err)
		assert.Equal(t, 400, failure.GetCode(err))
		assert.Equal(t, "cannot change status from completed to booked", err.Error())
	})

	t.Run("skipping a step is rejected", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(booking(model.StatusBooked), nil)

		_, err := f.svc.SetStatus(context.Background(), doctorUser, bookingID, dto.UpdateStatusRequest{Status: strPtr(model.StatusCompleted)})

		assert.Equal(t, 400, failure.GetCode(err))
	})

	t.Run("lost race reports concurrent change", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(booking(model.StatusBooked), nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)

		_, err := f.svc.SetStatus(context.Background(), doctorUser, bookingID, dto.UpdateStatusRequest{Status: strPtr(model.StatusConfirmed)})

		assert.Equal(t, 400, failure.GetCode(err))
	})

	t.Run("other doctor is forbidden", func(t *testing.T) {
		f := newFixture(t)

		stranger := gModel.Requester{UserID: "user-doc-2", Role: constant.RoleDoctor}

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(booking(model.StatusBooked), nil)

		_, err := f.svc.SetStatus(context.Background(), stranger, bookingID, dto.UpdateStatusRequest{Status: strPtr(model.StatusConfirmed)})

		assert.ErrorIs(t, err, failure.ForbiddenError)
	})

	t.Run("patient is forbidden", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(booking(model.StatusBooked), nil)

		_, err := f.svc.SetStatus(context.Background(), patientUser, bookingID, dto.UpdateStatusRequest{Status: strPtr(model.StatusConfirmed)})

		assert.ErrorIs(t, err, failure.ForbiddenError)
	})

	t.Run("empty request", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.SetStatus(context.Background(), doctorUser, bookingID, dto.UpdateStatusRequest{})

		assert.Equal(t, 400, failure.GetCode(err))
	})

	t.Run("missing booking", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Appointment{}, nil)

		_, err := f.svc.SetStatus(context.Background(), doctorUser, bookingID, dto.UpdateStatusRequest{Status: strPtr(model.StatusConfirmed)})

		assert.Equal(t, 404, failure.GetCode(err))
	})
}

func TestAppointmentService_Cancel(t *testing.T) {
	t.Run("patient cancels own booking", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(booking(model.StatusBooked), nil)
		f.repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) (int64, error) {
				assert.Equal(t, model.StatusCancelled, fields[model.FieldStatus])

				return 1, nil
			})
		f.expectBump()
		f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

		msg, err := f.svc.Cancel(context.Background(), patientUser, bookingID)

		require.NoError(t, err)
		assert.Equal(t, "Appointment cancelled successfully", msg)
	})

	t.Run("owning doctor may cancel", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(booking(model.StatusConfirmed), nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
		f.expectBump()
		f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

		_, err := f.svc.Cancel(context.Background(), doctorUser, bookingID)

		require.NoError(t, err)
	})

	t.Run("another patient is forbidden", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(booking(model.StatusBooked), nil)

		_, err := f.svc.Cancel(context.Background(), otherUser, bookingID)

		assert.ErrorIs(t, err, failure.ForbiddenError)
	})

	t.Run("terminal booking", func(t *testing.T) {
		for _, status := range []string{model.StatusCompleted, model.StatusCancelled} {
			f := newFixture(t)

			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(booking(status), nil)

			_, err := f.svc.Cancel(context.Background(), patientUser, bookingID)

			assert.Equal(t, 400, failure.GetCode(err), status)
		}
	})

	t.Run("missing booking", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Appointment{}, nil)

		_, err := f.svc.Cancel(context.Background(), patientUser, bookingID)

		assert.Equal(t, 404, failure.GetCode(err))
	})
}

func TestAppointmentService_GetAll(t *testing.T) {
	params := gDto.QueryParams{Page: 1, Limit: 10}

	tests := []struct {
		name      string
		requester gModel.Requester
		wantWhere string
	}{
		{name: "patient sees own", requester: patientUser, wantWhere: "patients.user_id = :patients_user_id"},
		{name: "doctor sees own", requester: doctorUser, wantWhere: "doctors.user_id = :doctors_user_id"},
		{name: "staff sees all", requester: staffUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			check := func(filter gDto.FilterGroup) {
				where, args := filter.GetWhereClause()
				assert.Contains(t, where, "appointments.status = :status")
				assert.Equal(t, model.StatusBooked, args["status"])

				if tt.wantWhere != "" {
					assert.Contains(t, where, tt.wantWhere)
				} else {
					assert.NotContains(t, where, "user_id")
				}
			}

			f.repo.EXPECT().
				Count(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
					check(filter)

					return 1, nil
				})
			f.repo.EXPECT().
				GetAll(gomock.Any(), params, gomock.Any()).
				DoAndReturn(func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]model.Appointment, error) {
					check(filter)

					return []model.Appointment{booking(model.StatusBooked)}, nil
				})

			res, err := f.svc.GetAll(context.Background(), tt.requester, params, dto.ListQuery{Status: model.StatusBooked})

			require.NoError(t, err)
			assert.Equal(t, 1, res.TotalData)
			assert.Equal(t, 1, res.TotalPage)
			require.Len(t, res.Appointments, 1)
		})
	}
}

func TestAppointmentService_Get(t *testing.T) {
	t.Run("participants and staff may read", func(t *testing.T) {
		for _, requester := range []gModel.Requester{patientUser, doctorUser, staffUser} {
			f := newFixture(t)

			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(booking(model.StatusBooked), nil)

			res, err := f.svc.Get(context.Background(), requester, bookingID)

			require.NoError(t, err, requester.Role)
			assert.Equal(t, bookingID, res.ID)
		}
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(booking(model.StatusBooked), nil)

		_, err := f.svc.Get(context.Background(), otherUser, bookingID)

		assert.ErrorIs(t, err, failure.ForbiddenError)
	})

	t.Run("repository failure", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Appointment{}, errors.New("db down"))

		_, err := f.svc.Get(context.Background(), staffUser, bookingID)

		require.Error(t, err)
		assert.Equal(t, 500, failure.GetCode(err))
	})
}
