package store

import "time"

// Appointment status and mode values, enforced by DB check constraints too.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"

	ModeInPerson = "in-person"
	ModeVirtual  = "virtual"
)

type User struct {
	ID        string
	Email     string
	Name      string
	Role      string // "patient", "doctor", or "guest"
	CreatedAt time.Time
}

// DayHours is one weekday's consultation window; empty strings mean closed.
type DayHours struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// WorkingHours maps lowercase weekday names to consultation windows.
type WorkingHours map[string]DayHours

type Doctor struct {
	ID             string
	UserID         string
	Gender         string
	Age            int
	StreetAddress  string
	City           string
	State          string
	Country        string
	AdditionalInfo string
	Specialization string
	Phone          string
	Hours          WorkingHours
}

// DoctorListing is a doctor profile joined with its user account, the shape
// patients browse when booking.
type DoctorListing struct {
	Doctor
	Name  string
	Email string
}

type Patient struct {
	ID            string
	UserID        string
	Age           int
	Gender        string
	StreetAddress string
	City          string
	State         string
	Country       string
	Phone         string

	EmergencyContactName         string
	EmergencyContactPhone        string
	EmergencyContactRelationship string
}

type Appointment struct {
	ID        string
	DoctorID  string
	PatientID string
	Date      *time.Time
	FromTime  string
	ToTime    string
	Reason    string
	Mode      string
	Status    string

	// Filled in when the appointment is completed.
	Symptoms     string
	Diagnosis    string
	Prescription string
	Notes        string

	CreatedAt time.Time
}

// AppointmentDetail joins both parties' names onto the appointment, the
// shape the dashboards render.
type AppointmentDetail struct {
	Appointment
	DoctorName           string
	DoctorSpecialization string
	PatientName          string
}
