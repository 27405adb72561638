package events

import (
	"academy-service/internal/model"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

type EventPublisher interface {
	PublishSessionScheduled(session *model.Session) error
	PublishSessionCompleted(session *model.Session) error
	PublishSessionCancelled(session *model.Session) error
	PublishLinkPending(session *model.Session) error
}

type NatsPublisher struct {
	conn *nats.Conn
}

func NewNatsPublisher(natsURL string) (EventPublisher, error) {
	nc, err := nats.Connect(natsURL)

	if err != nil {
		return nil, err
	}

	return &NatsPublisher{conn: nc}, nil
}

type SessionScheduledEvent struct {
	EventType    string    `json:"event_type"`
	SessionID    uuid.UUID `json:"session_id"`
	InstructorID uuid.UUID `json:"instructor_id"`
	Title        string    `json:"title"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
}

type SessionCompletedEvent struct {
	EventType  string    `json:"event_type"`
	SessionID  uuid.UUID `json:"session_id"`
	Attendance string    `json:"attendance"`
	MarkedAt   time.Time `json:"marked_at"`
}

type SessionCancelledEvent struct {
	EventType   string    `json:"event_type"`
	SessionID   uuid.UUID `json:"session_id"`
	CancelledAt time.Time `json:"cancelled_at"`
}

// LinkPendingEvent asks the link-attach worker to re-provision a meeting
// link for a session that was persisted with a placeholder.
type LinkPendingEvent struct {
	EventType string    `json:"event_type"`
	SessionID uuid.UUID `json:"session_id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

func (p *NatsPublisher) PublishSessionScheduled(session *model.Session) error {
	event := SessionScheduledEvent{
		EventType:    "session.scheduled",
		SessionID:    session.ID,
		InstructorID: session.InstructorID,
		Title:        session.Title,
		StartTime:    session.StartTime,
		EndTime:      session.EndTime,
	}
	return p.publish("session.scheduled", event)
}

func (p *NatsPublisher) PublishSessionCompleted(session *model.Session) error {
	attendance := ""
	if session.Attendance != nil {
		attendance = *session.Attendance
	}
	event := SessionCompletedEvent{
		EventType:  "session.completed",
		SessionID:  session.ID,
		Attendance: attendance,
		MarkedAt:   time.Now(),
	}
	return p.publish("session.completed", event)
}

func (p *NatsPublisher) PublishSessionCancelled(session *model.Session) error {
	event := SessionCancelledEvent{
		EventType:   "session.cancelled",
		SessionID:   session.ID,
		CancelledAt: time.Now(),
	}
	return p.publish("session.cancelled", event)
}

func (p *NatsPublisher) PublishLinkPending(session *model.Session) error {
	event := LinkPendingEvent{
		EventType: "session.link_pending",
		SessionID: session.ID,
		Title:     session.Title,
		StartTime: session.StartTime,
		EndTime:   session.EndTime,
	}
	return p.publish("session.link_pending", event)
}

func (p *NatsPublisher) publish(subject string, event interface{}) error {
	eventJSON, err := json.Marshal(event)

	if err != nil {
		log.Printf("Error marshalling event JSON: %v", err)
		return err
	}

	err = p.conn.Publish(subject, eventJSON)

	if err != nil {
		log.Printf("Error publishing to NATS: %v", err)
		return err
	}

	log.Printf("Published event to NATS on subject '%s'", subject)

	return nil
}

// NoopPublisher drops events. Used in dev mode without a broker and in tests.
type NoopPublisher struct{}

func (NoopPublisher) PublishSessionScheduled(*model.Session) error { return nil }
func (NoopPublisher) PublishSessionCompleted(*model.Session) error { return nil }
func (NoopPublisher) PublishSessionCancelled(*model.Session) error { return nil }
func (NoopPublisher) PublishLinkPending(*model.Session) error      { return nil }
