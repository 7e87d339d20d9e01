package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/telecare-api/internal/apperror"
	"github.com/harentsoaR/telecare-api/internal/middleware"
	"github.com/harentsoaR/telecare-api/internal/models"
	"github.com/harentsoaR/telecare-api/internal/repository"
)

type PatientRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Relation string `json:"relation" binding:"required"`
	Age      *int   `json:"age" binding:"required,gte=0,lte=150"`
	Gender   string `json:"gender" binding:"required"`
}

var errPatientNotFound = apperror.NotFound("Patient not found")

func (h *Handler) ListPatients(c *gin.Context) {
	acc, _ := middleware.CurrentAccount(c)
	patients, err := h.Store.ListPatients(c.Request.Context(), acc.AccountID())
	if err != nil {
		apperror.Respond(c, apperror.Internal("Failed to retrieve patients", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"patients": patients})
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req PatientRequest
	if err := bindJSON(c, &req); err != nil {
		apperror.Respond(c, err)
		return
	}
	acc, _ := middleware.CurrentAccount(c)

	p := &models.Patient{
		UserID:   acc.AccountID(),
		FullName: req.FullName,
		Relation: req.Relation,
		Age:      *req.Age,
		Gender:   req.Gender,
	}
	if err := h.Store.CreatePatient(c.Request.Context(), p); err != nil {
		apperror.Respond(c, apperror.Internal("Failed to create patient", err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Patient added successfully", "patient": p})
}

// ownPatient loads :id only when it belongs to the caller.
func (h *Handler) ownPatient(c *gin.Context) (*models.Patient, error) {
	id, err := idParam(c, "id", "Patient")
	if err != nil {
		return nil, err
	}
	acc, _ := middleware.CurrentAccount(c)
	p, err := h.Store.FindPatient(c.Request.Context(), id, acc.AccountID())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errPatientNotFound
	}
	if err != nil {
		return nil, apperror.Internal("Failed to retrieve patient", err)
	}
	return p, nil
}

func (h *Handler) GetPatient(c *gin.Context) {
	p, err := h.ownPatient(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"patient": p})
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	p, err := h.ownPatient(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	var req struct {
		FullName *string `json:"fullName"`
		Relation *string `json:"relation"`
		Age      *int    `json:"age" binding:"omitempty,gte=0,lte=150"`
		Gender   *string `json:"gender"`
	}
	if err := bindJSON(c, &req); err != nil {
		apperror.Respond(c, err)
		return
	}
	set(&p.FullName, req.FullName)
	set(&p.Relation, req.Relation)
	set(&p.Age, req.Age)
	set(&p.Gender, req.Gender)

	if err := h.Store.SavePatient(c.Request.Context(), p); err != nil {
		apperror.Respond(c, apperror.Internal("Failed to update patient", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Patient updated successfully", "patient": p})
}

// DeletePatient also removes the patient's appointments.
func (h *Handler) DeletePatient(c *gin.Context) {
	id, err := idParam(c, "id", "Patient")
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	acc, _ := middleware.CurrentAccount(c)
	err = h.Store.DeletePatient(c.Request.Context(), id, acc.AccountID())
	if errors.Is(err, repository.ErrNotFound) {
		apperror.Respond(c, errPatientNotFound)
		return
	}
	if err != nil {
		apperror.Respond(c, apperror.Internal("Failed to delete patient", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Patient deleted successfully"})
}
