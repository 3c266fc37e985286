// Package store holds the persistence contracts used by the lifecycle engine
// and the identity directory, plus the Postgres implementation.
package store

import (
	"context"
	"strconv"
	"strings"
	"time"

	"clinic-schedule-api/internal/model"
)

// Appointments is the appointment store. Mutations go through
// UpdateAppointment and DeleteAppointment, which run read, callback and write
// inside one transaction so the callback sees the row it is about to change.
type Appointments interface {
	CreateAppointment(ctx context.Context, a *model.Appointment) error
	GetAppointment(ctx context.Context, id string) (*model.Appointment, error)
	// ListAppointments returns matches in creation order.
	ListAppointments(ctx context.Context, f model.Filter) ([]model.Appointment, error)
	UpdateAppointment(ctx context.Context, id string, mutate func(*model.Appointment) error) (*model.Appointment, error)
	DeleteAppointment(ctx context.Context, id string, check func(*model.Appointment) error) error
}

type Users interface {
	// CreateUser returns model.ErrConflict when the email is taken.
	CreateUser(ctx context.Context, u *model.User) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UserByID(ctx context.Context, id string) (*model.User, error)
	UsersByRole(ctx context.Context, role model.Role) ([]model.User, error)
	CountUsers(ctx context.Context) (int, error)
}

type RefreshToken struct {
	ID         string
	UserID     string
	TokenHash  string
	ExpiresAt  time.Time
	Revoked    bool
	ReplacedBy *string
	CreatedAt  time.Time
}

type RefreshTokens interface {
	CreateRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (string, error)
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)
	RotateRefreshToken(ctx context.Context, oldID, newID, userID, newHash string, newExpiry time.Time) error
	RevokeAllRefreshTokens(ctx context.Context, userID string) error
}

// Backend bundles every store a running server needs.
type Backend interface {
	Appointments
	Users
	RefreshTokens
	Close()
}

// FilterClause renders f as a WHERE clause with positional placeholders
// produced by ph. It returns "" and no args for an empty filter.
func FilterClause(f model.Filter, ph func(n int) string) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(col, v string) {
		args = append(args, v)
		conds = append(conds, col+" = "+ph(len(args)))
	}
	if f.Status != "" {
		add("status", string(f.Status))
	}
	if f.RiskLevel != "" {
		add("risk_level", string(f.RiskLevel))
	}
	if f.PatientID != "" {
		add("patient_user_id", f.PatientID)
	}
	if f.ProviderID != "" {
		add("provider_user_id", f.ProviderID)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Dollar renders Postgres style placeholders.
func Dollar(n int) string { return "$" + strconv.Itoa(n) }

// Question renders SQLite style placeholders.
func Question(int) string { return "?" }
