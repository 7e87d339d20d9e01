package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/telecare-api/internal/apperror"
	"github.com/harentsoaR/telecare-api/internal/middleware"
	"github.com/harentsoaR/telecare-api/internal/models"
	"github.com/harentsoaR/telecare-api/internal/repository"
	"go.uber.org/zap"
)

type AppointmentRequest struct {
	PatientID        int64              `json:"patientId" binding:"required"`
	DoctorID         int64              `json:"doctorId" binding:"required"`
	ConsultationType string             `json:"consultationType" binding:"required"`
	Date             string             `json:"date" binding:"required"`
	Time             string             `json:"time" binding:"required"`
	Symptoms         models.SymptomList `json:"symptoms"`
	Mobile           string             `json:"mobile"`
}

var errAppointmentNotFound = apperror.NotFound("Appointment not found")

// --- CREATE APPOINTMENT (users only) ---
func (h *Handler) CreateAppointment(c *gin.Context) {
	var req AppointmentRequest
	if err := bindJSON(c, &req); err != nil {
		apperror.Respond(c, err)
		return
	}
	if _, err := time.Parse("2006-01-02 15:04", req.Date+" "+req.Time); err != nil {
		apperror.Respond(c, apperror.Validation("Invalid date or time. Use YYYY-MM-DD and HH:MM"))
		return
	}

	ctx := c.Request.Context()
	acc, _ := middleware.CurrentAccount(c)
	user := acc.(*models.User)

	patient, err := h.Store.FindPatient(ctx, req.PatientID, user.ID)
	if errors.Is(err, repository.ErrNotFound) {
		apperror.Respond(c, errPatientNotFound)
		return
	}
	if err != nil {
		apperror.Respond(c, apperror.Internal("Failed to create appointment", err))
		return
	}
	doctor, err := h.Store.FindDoctorByID(ctx, req.DoctorID)
	if errors.Is(err, repository.ErrNotFound) {
		apperror.Respond(c, apperror.NotFound("Doctor not found"))
		return
	}
	if err != nil {
		apperror.Respond(c, apperror.Internal("Failed to create appointment", err))
		return
	}

	mobile := req.Mobile
	if mobile == "" {
		mobile = user.Phone
	}
	apt := &models.Appointment{
		PatientID:        patient.ID,
		PatientName:      patient.FullName,
		DoctorID:         doctor.ID,
		DoctorName:       doctor.FullName,
		UserID:           user.ID,
		ConsultationType: req.ConsultationType,
		Symptoms:         req.Symptoms,
		Date:             req.Date,
		Time:             req.Time,
		Mobile:           mobile,
		Status:           models.StatusPending,
	}
	if apt.Symptoms == nil {
		apt.Symptoms = models.SymptomList{}
	}
	err = h.Store.CreateAppointment(ctx, apt)
	if errors.Is(err, repository.ErrNotFound) {
		// Patient or doctor removed between lookup and insert.
		apperror.Respond(c, apperror.NotFound("Patient or doctor not found"))
		return
	}
	if err != nil {
		apperror.Respond(c, apperror.Internal("Failed to create appointment", err))
		return
	}

	h.Logger.Info("appointment booked",
		zap.Int64("appointmentId", apt.ID),
		zap.Int64("userId", user.ID),
		zap.Int64("doctorId", doctor.ID))
	c.JSON(http.StatusCreated, gin.H{"message": "Appointment booked successfully", "appointment": apt})
}

// --- LIST APPOINTMENTS (scoped to the caller's role) ---
func (h *Handler) ListAppointments(c *gin.Context) {
	acc, _ := middleware.CurrentAccount(c)

	var filter repository.AppointmentFilter
	switch acc.AccountRole() {
	case models.RoleDoctor:
		filter.DoctorID = acc.AccountID()
	default:
		filter.UserID = acc.AccountID()
	}
	if s := c.Query("status"); s != "" {
		status := models.AppointmentStatus(s)
		if !status.Valid() {
			apperror.Respond(c, apperror.Validation("Invalid status"))
			return
		}
		filter.Status = status
	}
	filter.Date = c.Query("date")

	appointments, err := h.Store.ListAppointments(c.Request.Context(), filter)
	if err != nil {
		apperror.Respond(c, apperror.Internal("Failed to retrieve appointments", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appointments})
}

// visibleAppointment loads :id when the caller booked it or is its doctor.
func (h *Handler) visibleAppointment(c *gin.Context) (*models.Appointment, error) {
	id, err := idParam(c, "id", "Appointment")
	if err != nil {
		return nil, err
	}
	apt, err := h.Store.FindAppointment(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errAppointmentNotFound
	}
	if err != nil {
		return nil, apperror.Internal("Failed to retrieve appointment", err)
	}

	acc, _ := middleware.CurrentAccount(c)
	if !canSee(acc, apt) {
		return nil, apperror.Forbidden("You do not have access to this appointment")
	}
	return apt, nil
}

func canSee(acc models.Account, apt *models.Appointment) bool {
	switch acc.AccountRole() {
	case models.RoleDoctor:
		return apt.DoctorID == acc.AccountID()
	default:
		return apt.UserID == acc.AccountID()
	}
}

func (h *Handler) GetAppointment(c *gin.Context) {
	apt, err := h.visibleAppointment(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": apt})
}

// --- UPDATE STATUS ---
// Users may only cancel. Doctors may set any status on their own
// appointments.
func (h *Handler) UpdateAppointmentStatus(c *gin.Context) {
	var req struct {
		Status models.AppointmentStatus `json:"status" binding:"required"`
	}
	if err := bindJSON(c, &req); err != nil {
		apperror.Respond(c, err)
		return
	}
	if !req.Status.Valid() {
		apperror.Respond(c, apperror.Validation("Invalid status"))
		return
	}

	apt, err := h.visibleAppointment(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	acc, _ := middleware.CurrentAccount(c)
	if acc.AccountRole() == models.RoleUser && req.Status != models.StatusCancelled {
		apperror.Respond(c, apperror.Forbidden("Users can only cancel appointments"))
		return
	}

	previous := apt.Status
	apt.Status = req.Status
	if err := h.Store.SaveAppointment(c.Request.Context(), apt); err != nil {
		apperror.Respond(c, apperror.Internal("Failed to update appointment", err))
		return
	}

	if previous != apt.Status && (apt.Status == models.StatusConfirmed || apt.Status == models.StatusCancelled) {
		h.Notifier.NotifyStatusChange(apt)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment status updated", "appointment": apt})
}

// --- DELETE APPOINTMENT (booking user only) ---
func (h *Handler) DeleteAppointment(c *gin.Context) {
	id, err := idParam(c, "id", "Appointment")
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	ctx := c.Request.Context()
	apt, err := h.Store.FindAppointment(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		apperror.Respond(c, errAppointmentNotFound)
		return
	}
	if err != nil {
		apperror.Respond(c, apperror.Internal("Failed to delete appointment", err))
		return
	}

	acc, _ := middleware.CurrentAccount(c)
	if acc.AccountRole() != models.RoleUser || apt.UserID != acc.AccountID() {
		apperror.Respond(c, apperror.Forbidden("Only the booking user can delete this appointment"))
		return
	}

	err = h.Store.DeleteAppointment(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		apperror.Respond(c, apperror.Internal("Failed to delete appointment", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment deleted successfully"})
}
