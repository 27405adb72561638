package events_test

import (
	"encoding/json"
	"testing"
	"time"

	"academy-service/internal/events"
	"academy-service/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSessionScheduledEvent_Marshal(t *testing.T) {
	s := &model.Session{ID: uuid.New(), InstructorID: uuid.New(), Title: "C", StartTime: time.Now(), EndTime: time.Now().Add(time.Hour)}
	ev := events.SessionScheduledEvent{
		EventType:    "session.scheduled",
		SessionID:    s.ID,
		InstructorID: s.InstructorID,
		Title:        s.Title,
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
	}

	b, err := json.Marshal(ev)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.Equal(t, "session.scheduled", decoded["event_type"])
}

func TestLinkPendingEvent_Marshal(t *testing.T) {
	ev := events.LinkPendingEvent{
		EventType: "session.link_pending",
		SessionID: uuid.New(),
		Title:     "Endgame Fundamentals",
		StartTime: time.Now(),
		EndTime:   time.Now().Add(time.Hour),
	}

	b, err := json.Marshal(ev)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.Equal(t, "session.link_pending", decoded["event_type"])
}

func TestSessionCompletedEvent_Marshal(t *testing.T) {
	ev := events.SessionCompletedEvent{
		EventType:  "session.completed",
		SessionID:  uuid.New(),
		Attendance: model.AttendancePresent,
		MarkedAt:   time.Now(),
	}

	b, err := json.Marshal(ev)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.Equal(t, "session.completed", decoded["event_type"])
	require.Equal(t, "present", decoded["attendance"])
}
