package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreatePatient inserts a patient profile and promotes the user to the
// patient role. Mirrors the doctor-side exclusivity check.
func (p *Postgres) CreatePatient(ctx context.Context, pt Patient, name string) (Patient, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return Patient{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	if err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM doctors WHERE user_id = $1)
	`, pt.UserID).Scan(&exists); err != nil {
		return Patient{}, err
	}
	if exists {
		return Patient{}, ErrDuplicate
	}

	pt.ID = uuid.NewString()
	if _, err := tx.Exec(ctx, `
		INSERT INTO patients (id, user_id, age, gender, street_address, city, state,
			country, phone, emergency_contact_name, emergency_contact_phone,
			emergency_contact_relationship)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, pt.ID, pt.UserID, pt.Age, pt.Gender, pt.StreetAddress, pt.City, pt.State,
		pt.Country, pt.Phone, pt.EmergencyContactName, pt.EmergencyContactPhone,
		pt.EmergencyContactRelationship); err != nil {
		return Patient{}, err
	}

	if name == "" {
		name = "Not Specified"
	}
	if _, err := tx.Exec(ctx, `
		UPDATE users SET role = 'patient', name = $2 WHERE id = $1
	`, pt.UserID, name); err != nil {
		return Patient{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Patient{}, err
	}
	p.log.Info("patient.created", "id", pt.ID, "user", pt.UserID)
	return pt, nil
}

// GetPatientByUser fetches the patient profile owned by a user account.
func (p *Postgres) GetPatientByUser(ctx context.Context, userID string) (Patient, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT id, user_id, age, gender, street_address, city, state, country,
			phone, emergency_contact_name, emergency_contact_phone,
			emergency_contact_relationship
		FROM patients
		WHERE user_id = $1
	`, userID)

	var pt Patient
	err := row.Scan(&pt.ID, &pt.UserID, &pt.Age, &pt.Gender, &pt.StreetAddress,
		&pt.City, &pt.State, &pt.Country, &pt.Phone, &pt.EmergencyContactName,
		&pt.EmergencyContactPhone, &pt.EmergencyContactRelationship)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Patient{}, ErrNotFound
		}
		return Patient{}, err
	}
	return pt, nil
}

// UpdatePatient replaces the editable profile fields.
func (p *Postgres) UpdatePatient(ctx context.Context, pt Patient) error {
	ct, err := p.pool.Exec(ctx, `
		UPDATE patients
		SET age = $2, gender = $3, street_address = $4, city = $5, state = $6,
			country = $7, phone = $8, emergency_contact_name = $9,
			emergency_contact_phone = $10, emergency_contact_relationship = $11
		WHERE id = $1
	`, pt.ID, pt.Age, pt.Gender, pt.StreetAddress, pt.City, pt.State, pt.Country,
		pt.Phone, pt.EmergencyContactName, pt.EmergencyContactPhone,
		pt.EmergencyContactRelationship)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePatient removes a patient profile.
func (p *Postgres) DeletePatient(ctx context.Context, id string) error {
	ct, err := p.pool.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
