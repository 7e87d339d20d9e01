package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/harentsoaR/telecare-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymptomList_UnmarshalJSON(t *testing.T) {
	t.Run("array", func(t *testing.T) {
		var s models.SymptomList
		require.NoError(t, json.Unmarshal([]byte(`["fever", " cough ", ""]`), &s))
		assert.Equal(t, models.SymptomList{"fever", "cough"}, s)
	})

	t.Run("comma separated string", func(t *testing.T) {
		var s models.SymptomList
		require.NoError(t, json.Unmarshal([]byte(`"fever, headache,,nausea"`), &s))
		assert.Equal(t, models.SymptomList{"fever", "headache", "nausea"}, s)
	})

	t.Run("rejects numbers", func(t *testing.T) {
		var s models.SymptomList
		assert.Error(t, json.Unmarshal([]byte(`42`), &s))
	})
}

func TestAppointmentStatus_Valid(t *testing.T) {
	for _, s := range models.AppointmentStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, models.AppointmentStatus("Scheduled").Valid())
	assert.False(t, models.AppointmentStatus("").Valid())
}

func TestAppointment_StartsAt(t *testing.T) {
	apt := &models.Appointment{Date: "2026-03-04", Time: "09:30"}
	at, err := apt.StartsAt(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC), at)

	apt.Time = "9h30"
	_, err = apt.StartsAt(time.UTC)
	assert.Error(t, err)
}

func TestParseRole(t *testing.T) {
	r, ok := models.ParseRole("")
	assert.True(t, ok)
	assert.Equal(t, models.RoleUser, r)

	r, ok = models.ParseRole("doctor")
	assert.True(t, ok)
	assert.Equal(t, models.RoleDoctor, r)

	_, ok = models.ParseRole("admin")
	assert.False(t, ok)
}

func TestAccountView_IncludesRoleAndHidesPassword(t *testing.T) {
	u := &models.User{ID: 1, Email: "a@x.com", Password: "hash"}
	raw, err := json.Marshal(u.View())
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "user", got["role"])
	assert.Equal(t, "a@x.com", got["email"])
	assert.NotContains(t, got, "password")
	assert.NotContains(t, got, "Password")

	d := &models.Doctor{ID: 1, Email: "d@x.com", Specialization: "Cardiology"}
	raw, err = json.Marshal(d.View())
	require.NoError(t, err)
	got = map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "doctor", got["role"])
	assert.Equal(t, "Cardiology", got["specialization"])
}
