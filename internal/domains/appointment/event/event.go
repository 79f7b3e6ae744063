package event

//go:generate go run go.uber.org/mock/mockgen -source=./event.go -destination=./mocks/event_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"clinic/config"
	"clinic/infras/kafka"
	"clinic/infras/otel"
	"clinic/internal/domains/appointment/model"
	"clinic/shared/constant"
	"clinic/shared/timezone"
)

const (
	TypeBooked        = "appointment.booked"
	TypeCancelled     = "appointment.cancelled"
	TypeStatusChanged = "appointment.status_changed"
)

// Event is the lifecycle record written to the appointment topic.
type Event struct {
	Type           string    `json:"type"`
	AppointmentID  string    `json:"appointment_id"`
	DoctorID       string    `json:"doctor_id"`
	PatientID      string    `json:"patient_id"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	Actor          string    `json:"actor"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// New builds the event for appointment as it is after the change.
func New(eventType string, appointment model.Appointment, previousStatus, actor string) Event {
	return Event{
		Type:           eventType,
		AppointmentID:  appointment.ID,
		DoctorID:       appointment.DoctorID,
		PatientID:      appointment.PatientID,
		Date:           appointment.Date.String(),
		Time:           appointment.Time,
		Status:         appointment.Status,
		PreviousStatus: previousStatus,
		Actor:          actor,
		OccurredAt:     timezone.Now(),
	}
}

// FreesSlot reports whether the event releases the booked slot for rebooking.
func (e Event) FreesSlot() bool {
	return e.Status == model.StatusCancelled
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type kafkaPublisher struct {
	client kafka.Client
	topic  string
	otel   otel.Otel
}

func NewPublisher(client kafka.Client, cfg *config.Config, otel otel.Otel) Publisher {
	return &kafkaPublisher{
		client: client,
		topic:  cfg.Kafka.Topic.Appointment,
		otel:   otel,
	}
}

// Publish keys messages by doctor so one doctor's events stay ordered within a partition.
func (p *kafkaPublisher) Publish(ctx context.Context, event Event) (err error) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".appointment.Publish")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute("event.type", event.Type)

	if err = p.client.SendMessages(ctx, p.topic, kafka.Message{Key: event.DoctorID, Value: event}); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	return nil
}
