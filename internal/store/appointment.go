package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"clinic-schedule-api/internal/model"
)

const appointmentCols = `id, patient_name, provider_name, patient_user_id, provider_user_id,
	appointment_time, reason, location, channel, status, risk_level, notes,
	created_at, updated_at`

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	var (
		a                     model.Appointment
		channel, status, risk string
	)
	err := row.Scan(
		&a.ID, &a.PatientName, &a.ProviderName, &a.PatientUserID, &a.ProviderUserID,
		&a.AppointmentTime, &a.Reason, &a.Location, &channel, &status, &risk, &a.Notes,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Channel = model.Channel(channel)
	a.Status = model.Status(status)
	a.RiskLevel = model.RiskLevel(risk)
	a.AppointmentTime = a.AppointmentTime.UTC()
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return &a, nil
}

func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	return s.pool.QueryRow(ctx,
		`INSERT INTO appointments (id, patient_name, provider_name, patient_user_id, provider_user_id,
		        appointment_time, reason, location, channel, status, risk_level, notes)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		 RETURNING created_at, updated_at`,
		a.ID, a.PatientName, a.ProviderName, a.PatientUserID, a.ProviderUserID,
		a.AppointmentTime.UTC(), a.Reason, a.Location, string(a.Channel), string(a.Status),
		string(a.RiskLevel), a.Notes,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (s *Store) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	a, err := scanAppointment(s.pool.QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func (s *Store) ListAppointments(ctx context.Context, f model.Filter) ([]model.Appointment, error) {
	where, args := FilterClause(f, Dollar)
	rows, err := s.pool.Query(ctx,
		`SELECT `+appointmentCols+` FROM appointments`+where+` ORDER BY seq`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// UpdateAppointment locks the row, applies mutate and writes every mutable
// column back in the same transaction.
func (s *Store) UpdateAppointment(ctx context.Context, id string, mutate func(*model.Appointment) error) (*model.Appointment, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	a, err := scanAppointment(tx.QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err)
	}
	if err := mutate(a); err != nil {
		return nil, err
	}

	err = tx.QueryRow(ctx,
		`UPDATE appointments
		 SET patient_name=$1, provider_name=$2, patient_user_id=$3, provider_user_id=$4,
		     appointment_time=$5, reason=$6, location=$7, channel=$8, status=$9,
		     risk_level=$10, notes=$11, updated_at=NOW()
		 WHERE id=$12
		 RETURNING updated_at`,
		a.PatientName, a.ProviderName, a.PatientUserID, a.ProviderUserID,
		a.AppointmentTime.UTC(), a.Reason, a.Location, string(a.Channel), string(a.Status),
		string(a.RiskLevel), a.Notes, a.ID,
	).Scan(&a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, tx.Commit(ctx)
}

func (s *Store) DeleteAppointment(ctx context.Context, id string, check func(*model.Appointment) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	a, err := scanAppointment(tx.QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return notFound(err)
	}
	if err := check(a); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
