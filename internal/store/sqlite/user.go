package sqlite

import (
	"context"
	"fmt"
	"strings"

	"clinic-schedule-api/internal/model"
)

const userCols = `id, full_name, email, password_hash, role, created_at`

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u             model.User
		role, created string
	)
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &role, &created); err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	t, err := parseTime(created)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = t
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	now := s.stamp()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, full_name, email, password_hash, role, created_at) VALUES (?,?,?,?,?,?)`,
		u.ID, u.FullName, strings.ToLower(u.Email), u.PasswordHash, string(u.Role), now,
	)
	if uniqueViolation(err) {
		return fmt.Errorf("%w: email already registered", model.ErrConflict)
	}
	if err != nil {
		return err
	}
	u.CreatedAt, _ = parseTime(now)
	return nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE lower(email) = lower(?)`, email))
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (s *Store) UserByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (s *Store) UsersByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userCols+` FROM users WHERE role = ? ORDER BY full_name, id`, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
