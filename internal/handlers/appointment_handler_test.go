package handlers_test

import (
	"net/http"
	"testing"

	"github.com/harentsoaR/telecare-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *harness) addPatient(token, name string) int64 {
	h.t.Helper()
	res := h.do(http.MethodPost, "/api/patients", token, map[string]any{
		"fullName": name, "relation": "Self", "age": 34, "gender": "F",
	})
	require.Equal(h.t, http.StatusCreated, res.Code, res.Body)
	return int64(res.obj("patient")["id"].(float64))
}

func (h *harness) book(token string, patientID, doctorID int64) int64 {
	h.t.Helper()
	res := h.do(http.MethodPost, "/api/appointments", token, map[string]any{
		"patientId": patientID, "doctorId": doctorID, "consultationType": "Video",
		"date": "2026-05-04", "time": "10:30", "symptoms": "fever, cough ,",
	})
	require.Equal(h.t, http.StatusCreated, res.Code, res.Body)
	return int64(res.obj("appointment")["id"].(float64))
}

func TestPatients(t *testing.T) {
	h := newHarness(t)
	u := h.signupUser("u@x.com")
	other := h.signupUser("o@x.com")
	d := h.signupDoctor("d@x.com")

	res := h.do(http.MethodPost, "/api/patients", u.AccessToken, map[string]any{"fullName": "Mom"})
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "Missing fields: relation, age, gender", res.str("error"))

	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/api/patients", d.AccessToken, nil).Code, "doctors have no patients list")

	first := h.addPatient(u.AccessToken, "Self")
	second := h.addPatient(u.AccessToken, "Mom")

	res = h.do(http.MethodGet, "/api/patients", u.AccessToken, nil)
	require.Equal(t, http.StatusOK, res.Code)
	require.Len(t, res.list("patients"), 2)
	assert.EqualValues(t, second, res.list("patients")[0].(map[string]any)["id"], "newest first")

	path := "/api/patients/" + itoa(first)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, path, other.AccessToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodDelete, path, other.AccessToken, nil).Code)

	res = h.do(http.MethodPut, path, u.AccessToken, map[string]any{"age": 35, "userId": other.ID})
	require.Equal(t, http.StatusOK, res.Code)
	assert.EqualValues(t, 35, res.obj("patient")["age"])
	assert.EqualValues(t, u.ID, res.obj("patient")["userId"])

	assert.Equal(t, http.StatusOK, h.do(http.MethodDelete, path, u.AccessToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, path, u.AccessToken, nil).Code)
}

func TestDoctorsDirectory(t *testing.T) {
	h := newHarness(t)
	h.signup(map[string]any{"fullName": "Zed", "email": "z@x.com", "password": "secret1", "role": "doctor", "department": "Cardiology"})
	h.signup(map[string]any{"fullName": "Amy", "email": "a@x.com", "password": "secret1", "role": "doctor", "department": "Dermatology"})

	res := h.do(http.MethodGet, "/api/doctors", "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	doctors := res.list("doctors")
	require.Len(t, doctors, 2)
	assert.Equal(t, "Amy", doctors[0].(map[string]any)["fullName"])
	assert.Equal(t, "doctor", doctors[0].(map[string]any)["role"])
	assert.NotContains(t, doctors[0], "password")

	res = h.do(http.MethodGet, "/api/doctors?department=Cardiology&available=true", "", nil)
	require.Len(t, res.list("doctors"), 1)

	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/doctors?available=maybe", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/doctors/99", "", nil).Code)
}

func TestAppointments(t *testing.T) {
	h := newHarness(t)
	u := h.signupUser("u@x.com")
	other := h.signupUser("o@x.com")
	d := h.signupDoctor("d@x.com")
	d2 := h.signupDoctor("d2@x.com")
	patient := h.addPatient(u.AccessToken, "Self")

	t.Run("create validation", func(t *testing.T) {
		res := h.do(http.MethodPost, "/api/appointments", u.AccessToken, map[string]any{"patientId": patient})
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "Missing fields: doctorId, consultationType, date, time", res.str("error"))

		res = h.do(http.MethodPost, "/api/appointments", u.AccessToken, map[string]any{
			"patientId": patient, "doctorId": d.ID, "consultationType": "Video", "date": "04/05/2026", "time": "10:30",
		})
		assert.Equal(t, http.StatusBadRequest, res.Code)

		res = h.do(http.MethodPost, "/api/appointments", other.AccessToken, map[string]any{
			"patientId": patient, "doctorId": d.ID, "consultationType": "Video", "date": "2026-05-04", "time": "10:30",
		})
		assert.Equal(t, http.StatusNotFound, res.Code, "patient belongs to someone else")

		res = h.do(http.MethodPost, "/api/appointments", u.AccessToken, map[string]any{
			"patientId": patient, "doctorId": 999, "consultationType": "Video", "date": "2026-05-04", "time": "10:30",
		})
		assert.Equal(t, http.StatusNotFound, res.Code)

		res = h.do(http.MethodPost, "/api/appointments", d.AccessToken, map[string]any{
			"patientId": patient, "doctorId": d.ID, "consultationType": "Video", "date": "2026-05-04", "time": "10:30",
		})
		assert.Equal(t, http.StatusForbidden, res.Code)
	})

	id := h.book(u.AccessToken, patient, d.ID)
	path := "/api/appointments/" + itoa(id)

	t.Run("created pending with parsed symptoms", func(t *testing.T) {
		res := h.do(http.MethodGet, path, u.AccessToken, nil)
		require.Equal(t, http.StatusOK, res.Code)
		apt := res.obj("appointment")
		assert.Equal(t, string(models.StatusPending), apt["status"])
		assert.Equal(t, []any{"fever", "cough"}, apt["symptoms"])
		assert.Equal(t, "+15550000000", apt["mobile"])
	})

	t.Run("visibility", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, h.do(http.MethodGet, path, d.AccessToken, nil).Code)
		assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, path, d2.AccessToken, nil).Code)
		assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, path, other.AccessToken, nil).Code)

		assert.Len(t, h.do(http.MethodGet, "/api/appointments", u.AccessToken, nil).list("appointments"), 1)
		assert.Len(t, h.do(http.MethodGet, "/api/appointments", d.AccessToken, nil).list("appointments"), 1)
		assert.Empty(t, h.do(http.MethodGet, "/api/appointments", d2.AccessToken, nil).list("appointments"))
		assert.Empty(t, h.do(http.MethodGet, "/api/appointments?status=Confirmed", u.AccessToken, nil).list("appointments"))
		assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/appointments?status=Lost", u.AccessToken, nil).Code)
	})

	t.Run("status rules", func(t *testing.T) {
		status := path + "/status"
		assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPut, status, d.AccessToken, map[string]any{"status": "Done"}).Code)
		assert.Equal(t, http.StatusForbidden, h.do(http.MethodPut, status, u.AccessToken, map[string]any{"status": "Confirmed"}).Code)
		assert.Equal(t, http.StatusForbidden, h.do(http.MethodPut, status, d2.AccessToken, map[string]any{"status": "Confirmed"}).Code)

		res := h.do(http.MethodPut, status, d.AccessToken, map[string]any{"status": "Confirmed"})
		require.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, "Confirmed", res.obj("appointment")["status"])

		res = h.do(http.MethodPut, status, u.AccessToken, map[string]any{"status": "Cancelled"})
		require.Equal(t, http.StatusOK, res.Code)

		assert.Equal(t, []models.AppointmentStatus{models.StatusConfirmed, models.StatusCancelled}, h.notifier.changes)
	})

	t.Run("delete", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, h.do(http.MethodDelete, path, d.AccessToken, nil).Code)
		assert.Equal(t, http.StatusForbidden, h.do(http.MethodDelete, path, other.AccessToken, nil).Code)
		assert.Equal(t, http.StatusOK, h.do(http.MethodDelete, path, u.AccessToken, nil).Code)
		assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, path, u.AccessToken, nil).Code)
	})

	t.Run("deleting the patient removes its appointments", func(t *testing.T) {
		again := h.book(u.AccessToken, patient, d.ID)
		require.Equal(t, http.StatusOK, h.do(http.MethodDelete, "/api/patients/"+itoa(patient), u.AccessToken, nil).Code)
		assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/appointments/"+itoa(again), u.AccessToken, nil).Code)
	})
}
