package identity_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-schedule-api/internal/identity"
	"clinic-schedule-api/internal/model"
	"clinic-schedule-api/internal/store/sqlite"
)

func newDirectory(t *testing.T) *identity.Directory {
	t.Helper()
	st, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "id.db"))
	require.NoError(t, err)
	t.Cleanup(st.Close)
	return identity.New(st, nil)
}

func TestRegisterAndLogin(t *testing.T) {
	d := newDirectory(t)
	ctx := context.Background()

	p, err := d.Register(ctx, "  Jordan Carter ", "Jordan@DocClinic.health", "patient123", model.RolePatient)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, model.RolePatient, p.Role)

	got, err := d.VerifyCredentials(ctx, "jordan@docclinic.health", "patient123", model.RolePatient)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	u, err := d.Lookup(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jordan Carter", u.FullName)
	assert.Equal(t, "jordan@docclinic.health", u.Email)
	assert.Empty(t, u.PasswordHash)
}

func TestRegisterDuplicateEmailCaseInsensitive(t *testing.T) {
	d := newDirectory(t)
	ctx := context.Background()

	_, err := d.Register(ctx, "First User", "same@example.com", "secret1", model.RolePatient)
	require.NoError(t, err)

	_, err = d.Register(ctx, "Second User", "SAME@Example.com", "secret2", model.RoleProvider)
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestRegisterValidation(t *testing.T) {
	d := newDirectory(t)
	tests := []struct {
		name, full, email, pw string
		role                  model.Role
	}{
		{"short name", "Al", "al@x.io", "secret1", model.RolePatient},
		{"bad email", "Alice Doe", "not-an-email", "secret1", model.RolePatient},
		{"short password", "Alice Doe", "alice@x.io", "12345", model.RolePatient},
		{"password over 72 bytes", "Alice Doe", "alice@x.io", strings.Repeat("a", 100), model.RolePatient},
		{"multibyte password over 72 bytes", "Alice Doe", "alice@x.io", strings.Repeat("é", 40), model.RolePatient},
		{"two character name in multibyte script", "李明", "li@x.io", "secret1", model.RolePatient},
		{"bad role", "Alice Doe", "alice@x.io", "secret1", model.Role("admin")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Register(context.Background(), tt.full, tt.email, tt.pw, tt.role)
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}
}

func TestRegisterPasswordLengthLimits(t *testing.T) {
	d := newDirectory(t)
	ctx := context.Background()

	longest := strings.Repeat("a", 72)
	_, err := d.Register(ctx, "Long Password", "long@x.io", longest, model.RolePatient)
	require.NoError(t, err)
	_, err = d.VerifyCredentials(ctx, "long@x.io", longest, model.RolePatient)
	require.NoError(t, err)

	_, err = d.Register(ctx, "Longer Password", "longer@x.io", longest+"a", model.RolePatient)
	assert.ErrorIs(t, err, model.ErrValidation)

	// six characters, twelve bytes
	_, err = d.Register(ctx, "José Núñez", "jose@x.io", "éééééé", model.RolePatient)
	require.NoError(t, err)
}

func TestVerifyCredentialsFailures(t *testing.T) {
	d := newDirectory(t)
	ctx := context.Background()
	_, err := d.Register(ctx, "Dr. Emilia Wong", "emilia@x.io", "provider123", model.RoleProvider)
	require.NoError(t, err)

	_, err = d.VerifyCredentials(ctx, "emilia@x.io", "wrong-pass", model.RoleProvider)
	assert.ErrorIs(t, err, model.ErrAuth)

	_, err = d.VerifyCredentials(ctx, "emilia@x.io", "provider123", model.RolePatient)
	assert.ErrorIs(t, err, model.ErrAuth, "role must match")

	_, err = d.VerifyCredentials(ctx, "nobody@x.io", "provider123", model.RoleProvider)
	assert.ErrorIs(t, err, model.ErrAuth)
}

func TestListByRole(t *testing.T) {
	d := newDirectory(t)
	ctx := context.Background()
	_, err := d.Register(ctx, "Dr. Rishi Patel", "rishi@x.io", "provider123", model.RoleProvider)
	require.NoError(t, err)
	_, err = d.Register(ctx, "Dr. Emilia Wong", "emilia@x.io", "provider123", model.RoleProvider)
	require.NoError(t, err)
	_, err = d.Register(ctx, "Ava Mitchell", "ava@x.io", "patient123", model.RolePatient)
	require.NoError(t, err)

	provs, err := d.ListByRole(ctx, model.RoleProvider)
	require.NoError(t, err)
	require.Len(t, provs, 2)
	assert.Equal(t, "Dr. Emilia Wong", provs[0].FullName)
	for _, p := range provs {
		assert.Equal(t, model.RoleProvider, p.Role)
		assert.Empty(t, p.PasswordHash)
	}
}
