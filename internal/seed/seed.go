// Package seed loads a small demo clinic into an empty database.
package seed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"clinic-schedule-api/internal/identity"
	"clinic-schedule-api/internal/lifecycle"
	"clinic-schedule-api/internal/model"
)

type Counter interface {
	CountUsers(ctx context.Context) (int, error)
}

type demoUser struct {
	name, email, password string
	role                  model.Role
}

var users = []demoUser{
	{"Jordan Carter", "jordan@docclock.health", "patient123", model.RolePatient},
	{"Ava Mitchell", "ava@docclock.health", "patient123", model.RolePatient},
	{"Dr. Emilia Wong", "emilia.wong@docclock.health", "provider123", model.RoleProvider},
	{"Dr. Rishi Patel", "rishi.patel@docclock.health", "provider123", model.RoleProvider},
}

type demoAppointment struct {
	patient, provider string
	offset            time.Duration
	reason, location  string
	notes             string
	risk              model.RiskLevel
	rescheduled       bool
}

var appointments = []demoAppointment{
	{
		patient: "jordan@docclock.health", provider: "emilia.wong@docclock.health",
		offset: 4 * time.Hour, reason: "Chronic migraine follow-up", location: "UVA Neurology - Pavilion II",
		notes: "Missed last two appointments, commute > 1 hr", risk: model.RiskHigh,
	},
	{
		patient: "ava@docclock.health", provider: "rishi.patel@docclock.health",
		offset: 26 * time.Hour, reason: "Post-op wound check", location: "UVA Surgical Center",
		notes: "Confirmed via SMS", risk: model.RiskLow, rescheduled: true,
	},
	{
		patient: "jordan@docclock.health", provider: "emilia.wong@docclock.health",
		offset: 51 * time.Hour, reason: "Dermatology consult", location: "UVA Dermatology",
		notes: "Transit reliability score low", risk: model.RiskMedium,
	},
}

// Run seeds the demo users and appointments when no user exists yet. It
// reports whether anything was written.
func Run(ctx context.Context, counter Counter, dir *identity.Directory, eng *lifecycle.Engine, now time.Time, log *zap.Logger) (bool, error) {
	if log == nil {
		log = zap.NewNop()
	}
	n, err := counter.CountUsers(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		log.Debug("seed skipped", zap.Int("users", n))
		return false, nil
	}

	ids := make(map[string]model.Principal, len(users))
	for _, u := range users {
		p, err := dir.Register(ctx, u.name, u.email, u.password, u.role)
		if err != nil {
			return false, fmt.Errorf("seed user %s: %w", u.email, err)
		}
		ids[u.email] = p
	}

	for _, d := range appointments {
		provider := ids[d.provider]
		a, err := eng.Create(ctx, provider, model.NewAppointment{
			PatientUserID:   model.Ptr(ids[d.patient].ID),
			ProviderUserID:  model.Ptr(provider.ID),
			AppointmentTime: now.Add(d.offset),
			Reason:          d.reason,
			Location:        d.location,
			Channel:         model.ChannelInPerson,
			Notes:           model.Ptr(d.notes),
		})
		if err != nil {
			return false, fmt.Errorf("seed appointment %q: %w", d.reason, err)
		}
		if d.rescheduled {
			if _, err := eng.Reschedule(ctx, provider, a.ID, a.AppointmentTime); err != nil {
				return false, fmt.Errorf("seed reschedule %q: %w", d.reason, err)
			}
		}
		if _, err := eng.Update(ctx, provider, a.ID, model.Patch{RiskLevel: model.Ptr(d.risk)}); err != nil {
			return false, fmt.Errorf("seed risk %q: %w", d.reason, err)
		}
	}

	log.Info("demo data seeded", zap.Int("users", len(users)), zap.Int("appointments", len(appointments)))
	return true, nil
}
