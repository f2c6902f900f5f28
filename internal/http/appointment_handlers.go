package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mzeev8/online-medical-consultation/internal/store"
)

// AppointmentStore is the slice of the store the appointments API needs.
type AppointmentStore interface {
	CreateAppointment(ctx context.Context, a store.Appointment) (store.Appointment, error)
	GetAppointment(ctx context.Context, id string) (store.Appointment, error)
	GetAppointmentDetail(ctx context.Context, id string) (store.AppointmentDetail, error)
	ListAppointmentsByDoctor(ctx context.Context, doctorUserID string) ([]store.AppointmentDetail, error)
	ListAppointmentsByPatient(ctx context.Context, patientUserID string) ([]store.AppointmentDetail, error)
	UpdateAppointment(ctx context.Context, a store.Appointment) error
	SetAppointmentStatus(ctx context.Context, id, status string) error
	CompleteAppointment(ctx context.Context, id, symptoms, diagnosis, prescription, notes string) error
	DeleteAppointment(ctx context.Context, id string) error
}

type AppointmentsAPI struct{ DB AppointmentStore }

type appointmentReq struct {
	DoctorID  string `json:"doctor_id"`
	PatientID string `json:"patient_id"`
	Date      string `json:"date"` // YYYY-MM-DD
	FromTime  string `json:"from_time"`
	ToTime    string `json:"to_time"`
	Reason    string `json:"reason"`
	Mode      string `json:"mode"`
}

type completeReq struct {
	Symptoms     string `json:"symptoms"`
	Diagnosis    string `json:"diagnosis"`
	Prescription string `json:"prescription"`
	Notes        string `json:"notes"`
}

type appointmentResp struct {
	ID        string `json:"id"`
	DoctorID  string `json:"doctor_id"`
	PatientID string `json:"patient_id"`
	Date      string `json:"date,omitempty"`
	FromTime  string `json:"from_time"`
	ToTime    string `json:"to_time"`
	Reason    string `json:"reason"`
	Mode      string `json:"mode"`
	Status    string `json:"status"`

	Symptoms     string `json:"symptoms,omitempty"`
	Diagnosis    string `json:"diagnosis,omitempty"`
	Prescription string `json:"prescription,omitempty"`
	Notes        string `json:"notes,omitempty"`

	DoctorName           string `json:"doctor_name,omitempty"`
	DoctorSpecialization string `json:"doctor_specialization,omitempty"`
	PatientName          string `json:"patient_name,omitempty"`
}

func apptToResp(a store.Appointment) appointmentResp {
	resp := appointmentResp{
		ID: a.ID, DoctorID: a.DoctorID, PatientID: a.PatientID,
		FromTime: a.FromTime, ToTime: a.ToTime, Reason: a.Reason,
		Mode: a.Mode, Status: a.Status,
		Symptoms: a.Symptoms, Diagnosis: a.Diagnosis,
		Prescription: a.Prescription, Notes: a.Notes,
	}
	if a.Date != nil {
		resp.Date = a.Date.Format(time.DateOnly)
	}
	return resp
}

func detailToResp(d store.AppointmentDetail) appointmentResp {
	resp := apptToResp(d.Appointment)
	resp.DoctorName = d.DoctorName
	resp.DoctorSpecialization = d.DoctorSpecialization
	resp.PatientName = d.PatientName
	return resp
}

// Create books a new appointment.
func (a *AppointmentsAPI) Create(w http.ResponseWriter, r *http.Request) {
	var req appointmentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DoctorID == "" || req.PatientID == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	appt := store.Appointment{
		DoctorID:  req.DoctorID,
		PatientID: req.PatientID,
		FromTime:  req.FromTime,
		ToTime:    req.ToTime,
		Reason:    req.Reason,
		Mode:      req.Mode,
	}
	if req.Date != "" {
		d, err := time.Parse(time.DateOnly, req.Date)
		if err != nil {
			http.Error(w, "invalid date", http.StatusBadRequest)
			return
		}
		appt.Date = &d
	}

	created, err := a.DB.CreateAppointment(r.Context(), appt)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, apptToResp(created))
}

// Get returns one appointment; ?detailed=true joins both parties in.
func (a *AppointmentsAPI) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if r.URL.Query().Get("detailed") == "true" {
		d, err := a.DB.GetAppointmentDetail(r.Context(), id)
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, detailToResp(d))
		return
	}

	appt, err := a.DB.GetAppointment(r.Context(), id)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apptToResp(appt))
}

// ListByDoctor returns the appointments of a doctor's user account.
func (a *AppointmentsAPI) ListByDoctor(w http.ResponseWriter, r *http.Request) {
	a.list(w, r, a.DB.ListAppointmentsByDoctor)
}

// ListByPatient returns the appointments of a patient's user account.
func (a *AppointmentsAPI) ListByPatient(w http.ResponseWriter, r *http.Request) {
	a.list(w, r, a.DB.ListAppointmentsByPatient)
}

func (a *AppointmentsAPI) list(w http.ResponseWriter, r *http.Request,
	fetch func(context.Context, string) ([]store.AppointmentDetail, error)) {

	details, err := fetch(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	resp := make([]appointmentResp, 0, len(details))
	for _, d := range details {
		resp = append(resp, detailToResp(d))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Update reschedules an appointment.
func (a *AppointmentsAPI) Update(w http.ResponseWriter, r *http.Request) {
	var req appointmentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	appt := store.Appointment{
		ID:       r.PathValue("id"),
		FromTime: req.FromTime,
		ToTime:   req.ToTime,
		Reason:   req.Reason,
		Mode:     req.Mode,
	}
	if req.Date != "" {
		d, err := time.Parse(time.DateOnly, req.Date)
		if err != nil {
			http.Error(w, "invalid date", http.StatusBadRequest)
			return
		}
		appt.Date = &d
	}

	if err := a.DB.UpdateAppointment(r.Context(), appt); err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "appointment updated"})
}

// Confirm moves a pending appointment to confirmed.
func (a *AppointmentsAPI) Confirm(w http.ResponseWriter, r *http.Request) {
	a.setStatus(w, r, store.StatusConfirmed)
}

// Cancel moves an appointment to cancelled.
func (a *AppointmentsAPI) Cancel(w http.ResponseWriter, r *http.Request) {
	a.setStatus(w, r, store.StatusCancelled)
}

func (a *AppointmentsAPI) setStatus(w http.ResponseWriter, r *http.Request, status string) {
	if err := a.DB.SetAppointmentStatus(r.Context(), r.PathValue("id"), status); err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "appointment " + status})
}

// Complete closes out a visit with the doctor's findings.
func (a *AppointmentsAPI) Complete(w http.ResponseWriter, r *http.Request) {
	var req completeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	err := a.DB.CompleteAppointment(r.Context(), r.PathValue("id"),
		req.Symptoms, req.Diagnosis, req.Prescription, req.Notes)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "appointment completed"})
}

// Delete removes an appointment.
func (a *AppointmentsAPI) Delete(w http.ResponseWriter, r *http.Request) {
	if err := a.DB.DeleteAppointment(r.Context(), r.PathValue("id")); err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "appointment deleted"})
}
