package events

import (
	"academy-service/internal/meet"
	"academy-service/internal/repository"
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	maxRetries    = 3
	retryDelaySec = 2
	dlqSubject    = "session.link_pending.failed"
)

// LinkSubscriber repairs sessions that were persisted with a placeholder
// link: it re-provisions against the meeting system and patches the row.
// Scheduling never waits on this path.
type LinkSubscriber struct {
	natsConn    *nats.Conn
	sessionRepo repository.SessionRepository
	provisioner meet.Provisioner
}

func NewLinkSubscriber(natsURL string, sessionRepo repository.SessionRepository, provisioner meet.Provisioner) (*LinkSubscriber, error) {
	nc, err := nats.Connect(natsURL)
	if err != nil {
		return nil, err
	}
	log.Println("Link subscriber connected to NATS.")

	subscriber := &LinkSubscriber{
		natsConn:    nc,
		sessionRepo: sessionRepo,
		provisioner: provisioner,
	}

	subscriber.subscribeToPendingLinks()

	return subscriber, nil
}

func (s *LinkSubscriber) subscribeToPendingLinks() {
	_, err := s.natsConn.Subscribe("session.link_pending", func(msg *nats.Msg) {
		var event LinkPendingEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			log.Printf("Failed to unmarshal link_pending event: %v", err)
			return
		}

		log.Printf("Link attach requested for session %s", event.SessionID)

		var lastErr error
		for attempt := 1; attempt <= maxRetries; attempt++ {
			link, err := s.provisioner.CreateMeeting(context.Background(), event.Title, event.StartTime, event.EndTime)
			if err == nil {
				if err := s.sessionRepo.AttachMeetLink(context.Background(), event.SessionID, link); err != nil {
					lastErr = err
				} else {
					log.Printf("Meeting link attached to session %s (attempt %d)", event.SessionID, attempt)
					return
				}
			} else {
				lastErr = err
			}

			log.Printf("Link attach failed for session %s (attempt %d): %v. Retrying in %d seconds...", event.SessionID, attempt, lastErr, retryDelaySec)
			time.Sleep(time.Second * retryDelaySec)
		}

		log.Printf("Giving up attaching link for session %s after %d attempts. Last error: %v", event.SessionID, maxRetries, lastErr)

		if err := s.natsConn.Publish(dlqSubject, msg.Data); err != nil {
			log.Printf("Failed to publish to DLQ '%s': %v", dlqSubject, err)
		} else {
			log.Printf("Published failed link attach to DLQ '%s'", dlqSubject)
		}
	})
	if err != nil {
		log.Printf("Failed to subscribe to link_pending event: %v", err)
	} else {
		log.Println("Link subscriber listening to event session.link_pending")
	}
}
