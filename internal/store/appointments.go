package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateAppointment books an appointment. A doctor+patient pair can hold at
// most one pending or confirmed appointment at a time.
func (p *Postgres) CreateAppointment(ctx context.Context, a Appointment) (Appointment, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return Appointment{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	if err := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_id = $1 AND patient_id = $2
			  AND status IN ('pending', 'confirmed')
		)
	`, a.DoctorID, a.PatientID).Scan(&exists); err != nil {
		return Appointment{}, err
	}
	if exists {
		return Appointment{}, ErrDuplicate
	}

	if a.Mode == "" {
		a.Mode = ModeInPerson
	}
	a.ID = uuid.NewString()
	a.Status = StatusPending

	row := tx.QueryRow(ctx, `
		INSERT INTO appointments (id, doctor_id, patient_id, date, from_time,
			to_time, reason, mode, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`, a.ID, a.DoctorID, a.PatientID, a.Date, a.FromTime, a.ToTime, a.Reason,
		a.Mode, a.Status)
	if err := row.Scan(&a.CreatedAt); err != nil {
		return Appointment{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Appointment{}, err
	}
	p.log.Info("appointment.created", "id", a.ID, "doctor", a.DoctorID,
		"patient", a.PatientID, "mode", a.Mode)
	return a, nil
}

const apptCols = `id, doctor_id, patient_id, date, from_time, to_time, reason,
	mode, status, COALESCE(symptoms, ''), COALESCE(diagnosis, ''),
	COALESCE(prescription, ''), COALESCE(notes, ''), created_at`

func scanAppointment(row pgx.Row) (Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.DoctorID, &a.PatientID, &a.Date, &a.FromTime,
		&a.ToTime, &a.Reason, &a.Mode, &a.Status, &a.Symptoms, &a.Diagnosis,
		&a.Prescription, &a.Notes, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Appointment{}, ErrNotFound
		}
		return Appointment{}, err
	}
	return a, nil
}

// GetAppointment fetches an appointment by ID
func (p *Postgres) GetAppointment(ctx context.Context, id string) (Appointment, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+apptCols+` FROM appointments WHERE id = $1`, id)
	return scanAppointment(row)
}

const apptDetailQuery = `
	SELECT a.id, a.doctor_id, a.patient_id, a.date, a.from_time, a.to_time,
		a.reason, a.mode, a.status, COALESCE(a.symptoms, ''),
		COALESCE(a.diagnosis, ''), COALESCE(a.prescription, ''),
		COALESCE(a.notes, ''), a.created_at,
		du.name, d.specialization, pu.name
	FROM appointments a
	JOIN doctors d ON d.id = a.doctor_id
	JOIN users du ON du.id = d.user_id
	JOIN patients pt ON pt.id = a.patient_id
	JOIN users pu ON pu.id = pt.user_id`

func scanAppointmentDetail(row pgx.Row) (AppointmentDetail, error) {
	var d AppointmentDetail
	err := row.Scan(&d.ID, &d.DoctorID, &d.PatientID, &d.Date, &d.FromTime,
		&d.ToTime, &d.Reason, &d.Mode, &d.Status, &d.Symptoms, &d.Diagnosis,
		&d.Prescription, &d.Notes, &d.CreatedAt,
		&d.DoctorName, &d.DoctorSpecialization, &d.PatientName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AppointmentDetail{}, ErrNotFound
		}
		return AppointmentDetail{}, err
	}
	return d, nil
}

// GetAppointmentDetail fetches an appointment with both parties joined in.
func (p *Postgres) GetAppointmentDetail(ctx context.Context, id string) (AppointmentDetail, error) {
	row := p.pool.QueryRow(ctx, apptDetailQuery+` WHERE a.id = $1`, id)
	return scanAppointmentDetail(row)
}

func (p *Postgres) listAppointments(ctx context.Context, query string, args ...any) ([]AppointmentDetail, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AppointmentDetail
	for rows.Next() {
		d, err := scanAppointmentDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListAppointmentsByDoctor returns a doctor's appointments, identified by
// the doctor's user account id.
func (p *Postgres) ListAppointmentsByDoctor(ctx context.Context, doctorUserID string) ([]AppointmentDetail, error) {
	return p.listAppointments(ctx,
		apptDetailQuery+` WHERE d.user_id = $1 ORDER BY a.date, a.from_time`,
		doctorUserID)
}

// ListAppointmentsByPatient returns a patient's appointments, identified by
// the patient's user account id.
func (p *Postgres) ListAppointmentsByPatient(ctx context.Context, patientUserID string) ([]AppointmentDetail, error) {
	return p.listAppointments(ctx,
		apptDetailQuery+` WHERE pt.user_id = $1 ORDER BY a.date, a.from_time`,
		patientUserID)
}

// UpdateAppointment replaces the schedulable fields of an appointment.
func (p *Postgres) UpdateAppointment(ctx context.Context, a Appointment) error {
	ct, err := p.pool.Exec(ctx, `
		UPDATE appointments
		SET date = $2, from_time = $3, to_time = $4, reason = $5, mode = $6
		WHERE id = $1
	`, a.ID, a.Date, a.FromTime, a.ToTime, a.Reason, a.Mode)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetAppointmentStatus moves an appointment to a new status (confirm,
// cancel).
func (p *Postgres) SetAppointmentStatus(ctx context.Context, id, status string) error {
	ct, err := p.pool.Exec(ctx, `
		UPDATE appointments SET status = $2 WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	p.log.Info("appointment.status", "id", id, "status", status)
	return nil
}

// CompleteAppointment closes out a visit with the doctor's findings.
func (p *Postgres) CompleteAppointment(ctx context.Context, id, symptoms, diagnosis, prescription, notes string) error {
	ct, err := p.pool.Exec(ctx, `
		UPDATE appointments
		SET status = 'completed', symptoms = $2, diagnosis = $3,
			prescription = $4, notes = $5
		WHERE id = $1
	`, id, symptoms, diagnosis, prescription, notes)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	p.log.Info("appointment.completed", "id", id)
	return nil
}

// DeleteAppointment removes an appointment entirely.
func (p *Postgres) DeleteAppointment(ctx context.Context, id string) error {
	ct, err := p.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
