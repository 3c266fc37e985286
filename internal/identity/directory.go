// Package identity is the credential store collaborator: it registers users,
// verifies credentials and answers role-filtered lookups. It hands out
// model.Principal values and never exposes password hashes to callers that
// only need to know who someone is.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clinic-schedule-api/internal/auth"
	"clinic-schedule-api/internal/model"
	"clinic-schedule-api/internal/store"
)

const (
	minNameLen     = 3
	minPasswordLen = 6
	// bcrypt rejects longer input
	maxPasswordBytes = 72
)

type Directory struct {
	users store.Users
	log   *zap.Logger
}

func New(users store.Users, log *zap.Logger) *Directory {
	if log == nil {
		log = zap.NewNop()
	}
	return &Directory{users: users, log: log}
}

// Register creates an account. Emails are compared case-insensitively and
// stored lower-cased.
func (d *Directory) Register(ctx context.Context, fullName, email, password string, role model.Role) (model.Principal, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))

	if utf8.RuneCountInString(fullName) < minNameLen {
		return model.Principal{}, fmt.Errorf("%w: full name must be at least %d characters", model.ErrValidation, minNameLen)
	}
	if _, err := mail.ParseAddress(email); err != nil || strings.ContainsAny(email, "<> ") {
		return model.Principal{}, fmt.Errorf("%w: invalid email address", model.ErrValidation)
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return model.Principal{}, fmt.Errorf("%w: password must be at least %d characters", model.ErrValidation, minPasswordLen)
	}
	if len(password) > maxPasswordBytes {
		return model.Principal{}, fmt.Errorf("%w: password must be at most %d bytes", model.ErrValidation, maxPasswordBytes)
	}
	if _, err := model.ParseRole(string(role)); err != nil {
		return model.Principal{}, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return model.Principal{}, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		ID:           uuid.NewString(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := d.users.CreateUser(ctx, u); err != nil {
		return model.Principal{}, err
	}
	d.log.Info("user registered", zap.String("user_id", u.ID), zap.String("role", string(role)))
	return model.Principal{ID: u.ID, Role: u.Role}, nil
}

// VerifyCredentials resolves a login. Unknown email, wrong password and a
// role mismatch are indistinguishable to the caller.
func (d *Directory) VerifyCredentials(ctx context.Context, email, password string, role model.Role) (model.Principal, error) {
	u, err := d.users.UserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, model.ErrNotFound) {
		return model.Principal{}, model.ErrAuth
	}
	if err != nil {
		return model.Principal{}, err
	}
	if u.Role != role || !auth.CheckPassword(u.PasswordHash, password) {
		return model.Principal{}, model.ErrAuth
	}
	return model.Principal{ID: u.ID, Role: u.Role}, nil
}

// ListByRole returns public user records, password hashes stripped.
func (d *Directory) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	users, err := d.users.UsersByRole(ctx, role)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (d *Directory) Lookup(ctx context.Context, id string) (model.User, error) {
	u, err := d.users.UserByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	u.PasswordHash = ""
	return *u, nil
}
