package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateDoctor inserts a doctor profile and promotes the user to the doctor
// role. A user that already has a patient profile cannot also be a doctor.
func (p *Postgres) CreateDoctor(ctx context.Context, d Doctor, name string) (Doctor, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return Doctor{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	if err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM patients WHERE user_id = $1)
	`, d.UserID).Scan(&exists); err != nil {
		return Doctor{}, err
	}
	if exists {
		return Doctor{}, ErrDuplicate
	}

	hours, err := json.Marshal(d.Hours)
	if err != nil {
		return Doctor{}, err
	}

	d.ID = uuid.NewString()
	if _, err := tx.Exec(ctx, `
		INSERT INTO doctors (id, user_id, gender, age, street_address, city, state,
			country, additional_info, specialization, phone, working_hours)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, d.ID, d.UserID, d.Gender, d.Age, d.StreetAddress, d.City, d.State,
		d.Country, d.AdditionalInfo, d.Specialization, d.Phone, hours); err != nil {
		return Doctor{}, err
	}

	if name == "" {
		name = "Not Specified"
	}
	if _, err := tx.Exec(ctx, `
		UPDATE users SET role = 'doctor', name = $2 WHERE id = $1
	`, d.UserID, name); err != nil {
		return Doctor{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Doctor{}, err
	}
	p.log.Info("doctor.created", "id", d.ID, "user", d.UserID)
	return d, nil
}

const doctorCols = `id, user_id, gender, age, street_address, city, state,
	country, additional_info, specialization, phone, working_hours`

func scanDoctor(row pgx.Row) (Doctor, error) {
	var d Doctor
	var hours []byte
	err := row.Scan(&d.ID, &d.UserID, &d.Gender, &d.Age, &d.StreetAddress,
		&d.City, &d.State, &d.Country, &d.AdditionalInfo, &d.Specialization,
		&d.Phone, &hours)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Doctor{}, ErrNotFound
		}
		return Doctor{}, err
	}
	if err := json.Unmarshal(hours, &d.Hours); err != nil {
		return Doctor{}, err
	}
	return d, nil
}

// GetDoctorByUser fetches the doctor profile owned by a user account.
func (p *Postgres) GetDoctorByUser(ctx context.Context, userID string) (Doctor, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE user_id = $1`, userID)
	return scanDoctor(row)
}

// GetDoctorListing fetches a doctor profile joined with its user account.
func (p *Postgres) GetDoctorListing(ctx context.Context, id string) (DoctorListing, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT d.id, d.user_id, d.gender, d.age, d.street_address, d.city, d.state,
			d.country, d.additional_info, d.specialization, d.phone, d.working_hours,
			u.name, u.email
		FROM doctors d
		JOIN users u ON u.id = d.user_id
		WHERE d.id = $1
	`, id)

	var l DoctorListing
	var hours []byte
	err := row.Scan(&l.ID, &l.UserID, &l.Gender, &l.Age, &l.StreetAddress,
		&l.City, &l.State, &l.Country, &l.AdditionalInfo, &l.Specialization,
		&l.Phone, &hours, &l.Name, &l.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DoctorListing{}, ErrNotFound
		}
		return DoctorListing{}, err
	}
	if err := json.Unmarshal(hours, &l.Hours); err != nil {
		return DoctorListing{}, err
	}
	return l, nil
}

// ListDoctorsByCity returns the doctors practicing in a city, joined with
// their user accounts for display.
func (p *Postgres) ListDoctorsByCity(ctx context.Context, city string) ([]DoctorListing, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT d.id, d.user_id, d.gender, d.age, d.street_address, d.city, d.state,
			d.country, d.additional_info, d.specialization, d.phone, d.working_hours,
			u.name, u.email
		FROM doctors d
		JOIN users u ON u.id = d.user_id
		WHERE d.city = $1
		ORDER BY u.name
	`, city)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DoctorListing
	for rows.Next() {
		var l DoctorListing
		var hours []byte
		if err := rows.Scan(&l.ID, &l.UserID, &l.Gender, &l.Age, &l.StreetAddress,
			&l.City, &l.State, &l.Country, &l.AdditionalInfo, &l.Specialization,
			&l.Phone, &hours, &l.Name, &l.Email); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(hours, &l.Hours); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// UpdateDoctor replaces the editable profile fields.
func (p *Postgres) UpdateDoctor(ctx context.Context, d Doctor) error {
	hours, err := json.Marshal(d.Hours)
	if err != nil {
		return err
	}
	ct, err := p.pool.Exec(ctx, `
		UPDATE doctors
		SET gender = $2, age = $3, street_address = $4, city = $5, state = $6,
			country = $7, additional_info = $8, specialization = $9, phone = $10,
			working_hours = $11
		WHERE id = $1
	`, d.ID, d.Gender, d.Age, d.StreetAddress, d.City, d.State, d.Country,
		d.AdditionalInfo, d.Specialization, d.Phone, hours)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteDoctor removes a doctor profile.
func (p *Postgres) DeleteDoctor(ctx context.Context, id string) error {
	ct, err := p.pool.Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
