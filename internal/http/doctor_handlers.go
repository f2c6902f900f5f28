package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mzeev8/online-medical-consultation/internal/store"
)

// DoctorStore is the slice of the store the doctors API needs.
type DoctorStore interface {
	CreateDoctor(ctx context.Context, d store.Doctor, name string) (store.Doctor, error)
	GetDoctorByUser(ctx context.Context, userID string) (store.Doctor, error)
	GetDoctorListing(ctx context.Context, id string) (store.DoctorListing, error)
	ListDoctorsByCity(ctx context.Context, city string) ([]store.DoctorListing, error)
	UpdateDoctor(ctx context.Context, d store.Doctor) error
	DeleteDoctor(ctx context.Context, id string) error
}

type DoctorsAPI struct{ DB DoctorStore }

type doctorReq struct {
	UserID         string             `json:"user_id"`
	Name           string             `json:"name"`
	Gender         string             `json:"gender"`
	Age            int                `json:"age"`
	StreetAddress  string             `json:"street_address"`
	City           string             `json:"city"`
	State          string             `json:"state"`
	Country        string             `json:"country"`
	AdditionalInfo string             `json:"additional_information"`
	Specialization string             `json:"specialization"`
	Phone          string             `json:"phone"`
	Hours          store.WorkingHours `json:"working_hours"`
}

type doctorResp struct {
	ID             string             `json:"id"`
	UserID         string             `json:"user_id"`
	Name           string             `json:"name,omitempty"`
	Email          string             `json:"email,omitempty"`
	Gender         string             `json:"gender"`
	Age            int                `json:"age"`
	StreetAddress  string             `json:"street_address"`
	City           string             `json:"city"`
	State          string             `json:"state"`
	Country        string             `json:"country"`
	AdditionalInfo string             `json:"additional_information"`
	Specialization string             `json:"specialization"`
	Phone          string             `json:"phone"`
	Hours          store.WorkingHours `json:"working_hours"`
}

func doctorToResp(d store.Doctor) doctorResp {
	return doctorResp{
		ID: d.ID, UserID: d.UserID, Gender: d.Gender, Age: d.Age,
		StreetAddress: d.StreetAddress, City: d.City, State: d.State,
		Country: d.Country, AdditionalInfo: d.AdditionalInfo,
		Specialization: d.Specialization, Phone: d.Phone, Hours: d.Hours,
	}
}

func listingToResp(l store.DoctorListing) doctorResp {
	resp := doctorToResp(l.Doctor)
	resp.Name = l.Name
	resp.Email = l.Email
	return resp
}

func (req doctorReq) toModel() store.Doctor {
	return store.Doctor{
		UserID: req.UserID, Gender: req.Gender, Age: req.Age,
		StreetAddress: req.StreetAddress, City: req.City, State: req.State,
		Country: req.Country, AdditionalInfo: req.AdditionalInfo,
		Specialization: req.Specialization, Phone: req.Phone, Hours: req.Hours,
	}
}

// Create registers a doctor profile for the posting user.
func (a *DoctorsAPI) Create(w http.ResponseWriter, r *http.Request) {
	var req doctorReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	d, err := a.DB.CreateDoctor(r.Context(), req.toModel(), req.Name)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doctorToResp(d))
}

// GetByUser finds the doctor profile owned by a user account.
func (a *DoctorsAPI) GetByUser(w http.ResponseWriter, r *http.Request) {
	d, err := a.DB.GetDoctorByUser(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doctorToResp(d))
}

// Get returns a doctor profile joined with its account details.
func (a *DoctorsAPI) Get(w http.ResponseWriter, r *http.Request) {
	l, err := a.DB.GetDoctorListing(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listingToResp(l))
}

// ListByCity returns doctors practicing in a city.
func (a *DoctorsAPI) ListByCity(w http.ResponseWriter, r *http.Request) {
	ls, err := a.DB.ListDoctorsByCity(r.Context(), r.PathValue("city"))
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	if len(ls) == 0 {
		http.Error(w, "no doctors found in this city", http.StatusNotFound)
		return
	}
	resp := make([]doctorResp, 0, len(ls))
	for _, l := range ls {
		resp = append(resp, listingToResp(l))
	}
	writeJSON(w, http.StatusOK, resp)
}

// WorkingHours returns only the weekly consultation windows of a doctor,
// looked up by user account.
func (a *DoctorsAPI) WorkingHours(w http.ResponseWriter, r *http.Request) {
	d, err := a.DB.GetDoctorByUser(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d.Hours)
}

// Update replaces a doctor's editable profile fields.
func (a *DoctorsAPI) Update(w http.ResponseWriter, r *http.Request) {
	var req doctorReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	d := req.toModel()
	d.ID = r.PathValue("id")
	if err := a.DB.UpdateDoctor(r.Context(), d); err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "doctor updated"})
}

// Delete removes a doctor profile.
func (a *DoctorsAPI) Delete(w http.ResponseWriter, r *http.Request) {
	if err := a.DB.DeleteDoctor(r.Context(), r.PathValue("id")); err != nil {
		writeStoreErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "doctor deleted"})
}
