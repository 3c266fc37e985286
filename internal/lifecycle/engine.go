// Package lifecycle owns the appointment state machine. Every operation takes
// the acting principal explicitly, checks ownership against the stored
// record, and performs its read-check-write inside a single store call.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clinic-schedule-api/internal/events"
	"clinic-schedule-api/internal/model"
	"clinic-schedule-api/internal/store"
	"clinic-schedule-api/internal/summary"
)

// Directory is the slice of the identity directory the engine needs to
// validate assignees.
type Directory interface {
	Lookup(ctx context.Context, id string) (model.User, error)
	ListByRole(ctx context.Context, role model.Role) ([]model.User, error)
}

type Engine struct {
	store  store.Appointments
	dir    Directory
	events events.Publisher
	log    *zap.Logger
	now    func() time.Time
}

type Option func(*Engine)

// WithClock overrides the clock used for note stamps and events.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(st store.Appointments, dir Directory, pub events.Publisher, log *zap.Logger, opts ...Option) *Engine {
	if pub == nil {
		pub = events.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{store: st, dir: dir, events: pub, log: log, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) Create(ctx context.Context, p model.Principal, in model.NewAppointment) (*model.Appointment, error) {
	if err := validPrincipal(p); err != nil {
		return nil, err
	}
	in = normalize(in)

	if p.Role == model.RolePatient {
		if in.PatientUserID == nil {
			in.PatientUserID = model.Ptr(p.ID)
		} else if *in.PatientUserID != p.ID {
			return nil, fmt.Errorf("%w: patients can only book for themselves", model.ErrForbidden)
		}
	}
	if in.PatientUserID != nil {
		u, err := e.assignee(ctx, *in.PatientUserID, model.RolePatient)
		if err != nil {
			return nil, err
		}
		in.PatientName = u.FullName
	}
	if in.ProviderUserID != nil {
		u, err := e.assignee(ctx, *in.ProviderUserID, model.RoleProvider)
		if err != nil {
			return nil, err
		}
		in.ProviderName = u.FullName
	} else if in.ProviderName != "" {
		id, err := e.providerByName(ctx, in.ProviderName)
		if err != nil {
			return nil, err
		}
		in.ProviderUserID = id
	}
	if err := checkNew(in); err != nil {
		return nil, err
	}

	a := &model.Appointment{
		ID:              uuid.NewString(),
		PatientName:     in.PatientName,
		ProviderName:    in.ProviderName,
		PatientUserID:   in.PatientUserID,
		ProviderUserID:  in.ProviderUserID,
		AppointmentTime: in.AppointmentTime.UTC(),
		Reason:          in.Reason,
		Location:        in.Location,
		Channel:         in.Channel,
		Status:          model.StatusScheduled,
		RiskLevel:       model.RiskNone,
		Notes:           in.Notes,
	}
	if err := e.store.CreateAppointment(ctx, a); err != nil {
		return nil, err
	}
	e.publish(ctx, events.AppointmentCreated, p, a)
	return a, nil
}

func (e *Engine) Get(ctx context.Context, p model.Principal, id string) (*model.Appointment, error) {
	if err := validPrincipal(p); err != nil {
		return nil, err
	}
	a, err := e.store.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	// other patients' records read as missing
	if !canRead(p, a) {
		return nil, fmt.Errorf("%w: appointment %s", model.ErrNotFound, id)
	}
	return a, nil
}

func (e *Engine) List(ctx context.Context, p model.Principal, f model.Filter) ([]model.Appointment, error) {
	if err := validPrincipal(p); err != nil {
		return nil, err
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, invalid("unknown status %q", f.Status)
	}
	if f.RiskLevel != "" && !f.RiskLevel.Valid() {
		return nil, invalid("unknown risk level %q", f.RiskLevel)
	}
	return e.store.ListAppointments(ctx, scope(p, f))
}

func (e *Engine) Summarize(ctx context.Context, p model.Principal, f model.Filter) (model.Summary, error) {
	list, err := e.List(ctx, p, f)
	if err != nil {
		return model.Summary{}, err
	}
	return summary.Compute(list), nil
}

// Update applies a partial patch. Omitted fields keep their stored value and
// Notes, when present, replaces the stored notes verbatim.
func (e *Engine) Update(ctx context.Context, p model.Principal, id string, patch model.Patch) (*model.Appointment, error) {
	if err := validPrincipal(p); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		a, err := e.store.GetAppointment(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := authorizeWrite(p, a); err != nil {
			return nil, err
		}
		return a, nil
	}

	// Lookups happen before the store transaction; their outcome is only
	// reported once ownership has been checked.
	as := e.resolvePatch(ctx, p, patch)

	updated, err := e.store.UpdateAppointment(ctx, id, func(a *model.Appointment) error {
		if err := authorizeWrite(p, a); err != nil {
			return err
		}
		if err := checkPatch(p, patch); err != nil {
			return err
		}
		if as.err != nil {
			return as.err
		}
		if patch.Status != nil {
			if err := checkTransition(a.Status, *patch.Status); err != nil {
				return err
			}
			a.Status = *patch.Status
		}
		if patch.AppointmentTime != nil {
			a.AppointmentTime = patch.AppointmentTime.UTC()
		}
		if patch.RiskLevel != nil {
			a.RiskLevel = *patch.RiskLevel
		}
		if patch.Notes != nil {
			a.Notes = model.Ptr(*patch.Notes)
		}
		if patch.Reason != nil {
			a.Reason = strings.TrimSpace(*patch.Reason)
		}
		if as.patient != nil {
			a.PatientUserID = model.Ptr(as.patient.ID)
			a.PatientName = as.patient.FullName
		}
		if as.provider != nil {
			a.ProviderUserID = model.Ptr(as.provider.ID)
			a.ProviderName = as.provider.FullName
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.publish(ctx, events.AppointmentUpdated, p, updated)
	return updated, nil
}

// Reschedule moves the appointment and marks it Rescheduled in one write.
func (e *Engine) Reschedule(ctx context.Context, p model.Principal, id string, at time.Time) (*model.Appointment, error) {
	if err := validPrincipal(p); err != nil {
		return nil, err
	}
	updated, err := e.store.UpdateAppointment(ctx, id, func(a *model.Appointment) error {
		if err := authorizeWrite(p, a); err != nil {
			return err
		}
		if at.IsZero() {
			return invalid("appointment time is required")
		}
		if err := checkTransition(a.Status, model.StatusRescheduled); err != nil {
			return err
		}
		a.AppointmentTime = at.UTC()
		a.Status = model.StatusRescheduled
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.publish(ctx, events.AppointmentRescheduled, p, updated)
	return updated, nil
}

// AppendNote adds a stamped line to the audit notes. Prior content is kept.
func (e *Engine) AppendNote(ctx context.Context, p model.Principal, id, text string) (*model.Appointment, error) {
	if err := validPrincipal(p); err != nil {
		return nil, err
	}
	updated, err := e.store.UpdateAppointment(ctx, id, func(a *model.Appointment) error {
		if err := authorizeWrite(p, a); err != nil {
			return err
		}
		line, err := noteLine(e.now(), p.Role, text)
		if err != nil {
			return err
		}
		a.Notes = model.Ptr(appendLine(a.Notes, line))
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.publish(ctx, events.NoteAppended, p, updated)
	return updated, nil
}

// Delete purges a completed appointment.
func (e *Engine) Delete(ctx context.Context, p model.Principal, id string) error {
	if err := validPrincipal(p); err != nil {
		return err
	}
	var gone model.Appointment
	err := e.store.DeleteAppointment(ctx, id, func(a *model.Appointment) error {
		if err := authorizeWrite(p, a); err != nil {
			return err
		}
		if a.Status != model.StatusCompleted {
			return fmt.Errorf("%w: only completed appointments can be deleted, this one is %s", model.ErrInvalidState, a.Status)
		}
		gone = *a
		return nil
	})
	if err != nil {
		return err
	}
	e.log.Info("appointment deleted",
		zap.String("appointment_id", id),
		zap.String("actor_id", p.ID),
	)
	e.publish(ctx, events.AppointmentDeleted, p, &gone)
	return nil
}

type assignment struct {
	patient  *model.User
	provider *model.User
	err      error
}

func (e *Engine) resolvePatch(ctx context.Context, p model.Principal, patch model.Patch) assignment {
	var as assignment
	if p.Role != model.RoleProvider {
		return as
	}
	if id := trimmedOrNil(patch.PatientUserID); id != nil {
		u, err := e.assignee(ctx, *id, model.RolePatient)
		if err != nil {
			as.err = err
			return as
		}
		as.patient = &u
	}
	if id := trimmedOrNil(patch.ProviderUserID); id != nil {
		u, err := e.assignee(ctx, *id, model.RoleProvider)
		if err != nil {
			as.err = err
			return as
		}
		as.provider = &u
	}
	return as
}

func (e *Engine) assignee(ctx context.Context, id string, role model.Role) (model.User, error) {
	u, err := e.dir.Lookup(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, invalid("%s %s does not exist", role, id)
	}
	if err != nil {
		return model.User{}, err
	}
	if u.Role != role {
		return model.User{}, invalid("user %s is not a %s", id, role)
	}
	return u, nil
}

// providerByName links a manual booking to a provider account when exactly
// one provider carries that full name.
func (e *Engine) providerByName(ctx context.Context, name string) (*string, error) {
	providers, err := e.dir.ListByRole(ctx, model.RoleProvider)
	if err != nil {
		return nil, err
	}
	var match *string
	for _, u := range providers {
		if u.FullName != name {
			continue
		}
		if match != nil {
			return nil, nil
		}
		match = model.Ptr(u.ID)
	}
	return match, nil
}

func (e *Engine) publish(ctx context.Context, typ events.Type, p model.Principal, a *model.Appointment) {
	ev := events.Event{
		Type:          typ,
		AppointmentID: a.ID,
		ActorID:       p.ID,
		ActorRole:     p.Role,
		Status:        a.Status,
		RiskLevel:     a.RiskLevel,
		At:            e.now().UTC(),
	}
	if err := e.events.Publish(ctx, ev); err != nil {
		e.log.Warn("publish lifecycle event",
			zap.String("type", string(typ)),
			zap.String("appointment_id", a.ID),
			zap.Error(err),
		)
	}
}
