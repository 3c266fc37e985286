// Package events publishes appointment lifecycle changes for downstream
// consumers such as outreach and reminder workers.
package events

import (
	"context"
	"sync"
	"time"

	"clinic-schedule-api/internal/model"
)

type Type string

const (
	AppointmentCreated     Type = "appointment.created"
	AppointmentUpdated     Type = "appointment.updated"
	AppointmentRescheduled Type = "appointment.rescheduled"
	NoteAppended           Type = "appointment.note_appended"
	AppointmentDeleted     Type = "appointment.deleted"
)

type Event struct {
	Type          Type            `json:"type"`
	AppointmentID string          `json:"appointment_id"`
	ActorID       string          `json:"actor_id"`
	ActorRole     model.Role      `json:"actor_role"`
	Status        model.Status    `json:"status,omitempty"`
	RiskLevel     model.RiskLevel `json:"risk_level,omitempty"`
	At            time.Time       `json:"at"`
}

// Publisher is called after a write has committed.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Recorder keeps events in memory; useful for tests and local runs. It is
// safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	return nil
}

// Events returns a copy of what has been recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types lists recorded event types in order.
func (r *Recorder) Types() []Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Type, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}
