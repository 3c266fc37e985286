package model

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RolePatient  Role = "patient"
	RoleProvider Role = "provider"
)

type Status string

const (
	StatusScheduled   Status = "Scheduled"
	StatusRescheduled Status = "Rescheduled"
	StatusCheckedIn   Status = "CheckedIn"
	StatusCompleted   Status = "Completed"
	StatusCancelled   Status = "Cancelled"
)

type RiskLevel string

const (
	RiskNone   RiskLevel = "none"
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskLevels lists every risk level in ascending order.
var RiskLevels = []RiskLevel{RiskNone, RiskLow, RiskMedium, RiskHigh}

type Channel string

const (
	ChannelInPerson Channel = "in-person"
	ChannelVirtual  Channel = "virtual"
)

type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Principal is the authenticated identity performing an operation.
type Principal struct {
	ID   string
	Role Role
}

type Appointment struct {
	ID              string
	PatientName     string
	ProviderName    string
	PatientUserID   *string
	ProviderUserID  *string
	AppointmentTime time.Time
	Reason          string
	Location        string
	Channel         Channel
	Status          Status
	RiskLevel       RiskLevel
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewAppointment is the booking payload accepted by the lifecycle engine.
type NewAppointment struct {
	PatientName     string
	ProviderName    string
	PatientUserID   *string
	ProviderUserID  *string
	AppointmentTime time.Time
	Reason          string
	Location        string
	Channel         Channel
	Notes           *string
}

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	AppointmentTime *time.Time
	Status          *Status
	RiskLevel       *RiskLevel
	Notes           *string
	Reason          *string
	PatientUserID   *string
	ProviderUserID  *string
}

func (p Patch) IsEmpty() bool {
	return p.AppointmentTime == nil && p.Status == nil && p.RiskLevel == nil &&
		p.Notes == nil && p.Reason == nil && p.PatientUserID == nil && p.ProviderUserID == nil
}

// Filter fields are ANDed; empty fields match everything.
type Filter struct {
	Status     Status
	RiskLevel  RiskLevel
	PatientID  string
	ProviderID string
}

func (f Filter) Match(a *Appointment) bool {
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.RiskLevel != "" && a.RiskLevel != f.RiskLevel {
		return false
	}
	if f.PatientID != "" && (a.PatientUserID == nil || *a.PatientUserID != f.PatientID) {
		return false
	}
	if f.ProviderID != "" && (a.ProviderUserID == nil || *a.ProviderUserID != f.ProviderID) {
		return false
	}
	return true
}

type Summary struct {
	Total         int
	Active        int
	Cancelled     int
	Completed     int
	RiskBreakdown map[RiskLevel]int
}

func (r Role) Valid() bool { return r == RolePatient || r == RoleProvider }

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusRescheduled, StatusCheckedIn, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (r RiskLevel) Valid() bool {
	switch r {
	case RiskNone, RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

func (c Channel) Valid() bool { return c == ChannelInPerson || c == ChannelVirtual }

func ParseRole(s string) (Role, error) {
	if r := Role(strings.ToLower(strings.TrimSpace(s))); r.Valid() {
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
}

func ParseStatus(s string) (Status, error) {
	if st := Status(strings.TrimSpace(s)); st.Valid() {
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
}

func ParseRiskLevel(s string) (RiskLevel, error) {
	if r := RiskLevel(strings.ToLower(strings.TrimSpace(s))); r.Valid() {
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown risk level %q", ErrValidation, s)
}

func ParseChannel(s string) (Channel, error) {
	if c := Channel(strings.ToLower(strings.TrimSpace(s))); c.Valid() {
		return c, nil
	}
	return "", fmt.Errorf("%w: unknown channel %q", ErrValidation, s)
}

// ParseInstant accepts RFC 3339 timestamps with an explicit offset and
// returns the instant in UTC.
func ParseInstant(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: appointment time %q is not an RFC 3339 instant", ErrValidation, s)
	}
	return t.UTC(), nil
}

// FormatInstant renders t as an RFC 3339 UTC string.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (a *Appointment) Clone() *Appointment {
	c := *a
	c.PatientUserID = cloneStr(a.PatientUserID)
	c.ProviderUserID = cloneStr(a.ProviderUserID)
	c.Notes = cloneStr(a.Notes)
	return &c
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
