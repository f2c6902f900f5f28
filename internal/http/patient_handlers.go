package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mzeev8/online-medical-consultation/internal/store"
)

// PatientStore is the slice of the store the patients API needs.
type PatientStore interface {
	CreatePatient(ctx context.Context, pt store.Patient, name string) (store.Patient, error)
	GetPatientByUser(ctx context.Context, userID string) (store.Patient, error)
	UpdatePatient(ctx context.Context, pt store.Patient) error
	DeletePatient(ctx context.Context, id string) error
}

type PatientsAPI struct{ DB PatientStore }

type patientReq struct {
	UserID        string `json:"user_id"`
	Name          string `json:"name,omitempty"`
	Age           int    `json:"age"`
	Gender        string `json:"gender"`
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	State         string `json:"state"`
	Country       string `json:"country"`
	Phone         string `json:"phone"`

	EmergencyContactName         string `json:"emergency_contact_name"`
	EmergencyContactPhone        string `json:"emergency_contact_phone"`
	EmergencyContactRelationship string `json:"emergency_contact_relationship"`
}

func (req patientReq) toModel() store.Patient {
	return store.Patient{
		UserID: req.UserID, Age: req.Age, Gender: req.Gender,
		StreetAddress: req.StreetAddress, City: req.City, State: req.State,
		Country: req.Country, Phone: req.Phone,
		EmergencyContactName:         req.EmergencyContactName,
		EmergencyContactPhone:        req.EmergencyContactPhone,
		EmergencyContactRelationship: req.EmergencyContactRelationship,
	}
}

type patientResp struct {
	ID string `json:"id"`
	patientReq
}

// Create registers a patient profile for the posting user.
func (a *PatientsAPI) Create(w http.ResponseWriter, r *http.Request) {
	var req patientReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	pt, err := a.DB.CreatePatient(r.Context(), req.toModel(), req.Name)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	req.Name = ""
	writeJSON(w, http.StatusCreated, patientResp{ID: pt.ID, patientReq: req})
}

// GetByUser finds the patient profile owned by a user account.
func (a *PatientsAPI) GetByUser(w http.ResponseWriter, r *http.Request) {
	pt, err := a.DB.GetPatientByUser(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, patientResp{
		ID: pt.ID,
		patientReq: patientReq{
			UserID: pt.UserID, Age: pt.Age, Gender: pt.Gender,
			StreetAddress: pt.StreetAddress, City: pt.City, State: pt.State,
			Country: pt.Country, Phone: pt.Phone,
			EmergencyContactName:         pt.EmergencyContactName,
			EmergencyContactPhone:        pt.EmergencyContactPhone,
			EmergencyContactRelationship: pt.EmergencyContactRelationship,
		},
	})
}

// Update replaces a patient's editable profile fields.
func (a *PatientsAPI) Update(w http.ResponseWriter, r *http.Request) {
	var req patientReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	pt := req.toModel()
	pt.ID = r.PathValue("id")
	if err := a.DB.UpdatePatient(r.Context(), pt); err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "patient updated"})
}

// Delete removes a patient profile.
func (a *PatientsAPI) Delete(w http.ResponseWriter, r *http.Request) {
	if err := a.DB.DeletePatient(r.Context(), r.PathValue("id")); err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "patient deleted"})
}
