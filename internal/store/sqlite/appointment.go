package sqlite

import (
	"context"
	"database/sql"

	"clinic-schedule-api/internal/model"
	"clinic-schedule-api/internal/store"
)

const appointmentCols = `id, patient_name, provider_name, patient_user_id, provider_user_id,
	appointment_time, reason, location, channel, status, risk_level, notes,
	created_at, updated_at`

func scanAppointment(row rowScanner) (*model.Appointment, error) {
	var (
		a                         model.Appointment
		patientID, providerID     sql.NullString
		notes                     sql.NullString
		channel, status, risk     string
		apptAt, created, modified string
	)
	err := row.Scan(
		&a.ID, &a.PatientName, &a.ProviderName, &patientID, &providerID,
		&apptAt, &a.Reason, &a.Location, &channel, &status, &risk, &notes,
		&created, &modified,
	)
	if err != nil {
		return nil, err
	}
	a.PatientUserID = fromNullable(patientID)
	a.ProviderUserID = fromNullable(providerID)
	a.Notes = fromNullable(notes)
	a.Channel = model.Channel(channel)
	a.Status = model.Status(status)
	a.RiskLevel = model.RiskLevel(risk)
	if a.AppointmentTime, err = parseTime(apptAt); err != nil {
		return nil, err
	}
	if a.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if a.UpdatedAt, err = parseTime(modified); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	now := s.stamp()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO appointments (id, patient_name, provider_name, patient_user_id, provider_user_id,
		        appointment_time, reason, location, channel, status, risk_level, notes,
		        created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		a.ID, a.PatientName, a.ProviderName, nullable(a.PatientUserID), nullable(a.ProviderUserID),
		formatTime(a.AppointmentTime), a.Reason, a.Location, string(a.Channel), string(a.Status),
		string(a.RiskLevel), nullable(a.Notes), now, now,
	)
	if err != nil {
		return err
	}
	a.CreatedAt, _ = parseTime(now)
	a.UpdatedAt = a.CreatedAt
	return nil
}

func (s *Store) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	a, err := scanAppointment(s.db.QueryRowContext(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func (s *Store) ListAppointments(ctx context.Context, f model.Filter) ([]model.Appointment, error) {
	where, args := store.FilterClause(f, store.Question)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+appointmentCols+` FROM appointments`+where+` ORDER BY rowid`, args...)
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

func (s *Store) UpdateAppointment(ctx context.Context, id string, mutate func(*model.Appointment) error) (*model.Appointment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	a, err := scanAppointment(tx.QueryRowContext(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	if err := mutate(a); err != nil {
		return nil, err
	}

	now := s.stamp()
	_, err = tx.ExecContext(ctx,
		`UPDATE appointments
		 SET patient_name=?, provider_name=?, patient_user_id=?, provider_user_id=?,
		     appointment_time=?, reason=?, location=?, channel=?, status=?,
		     risk_level=?, notes=?, updated_at=?
		 WHERE id=?`,
		a.PatientName, a.ProviderName, nullable(a.PatientUserID), nullable(a.ProviderUserID),
		formatTime(a.AppointmentTime), a.Reason, a.Location, string(a.Channel), string(a.Status),
		string(a.RiskLevel), nullable(a.Notes), now, a.ID,
	)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	a.UpdatedAt, _ = parseTime(now)
	return a, nil
}

func (s *Store) DeleteAppointment(ctx context.Context, id string, check func(*model.Appointment) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	a, err := scanAppointment(tx.QueryRowContext(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE id = ?`, id))
	if err != nil {
		return notFound(err)
	}
	if err := check(a); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM appointments WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}
