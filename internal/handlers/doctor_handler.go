package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/telecare-api/internal/apperror"
	"github.com/harentsoaR/telecare-api/internal/repository"
)

// ListDoctors is public. ?department= and ?available= narrow the list.
func (h *Handler) ListDoctors(c *gin.Context) {
	filter := repository.DoctorFilter{Department: c.Query("department")}
	if v := c.Query("available"); v != "" {
		available, err := strconv.ParseBool(v)
		if err != nil {
			apperror.Respond(c, apperror.Validation("available must be true or false"))
			return
		}
		filter.Available = &available
	}

	doctors, err := h.Store.ListDoctors(c.Request.Context(), filter)
	if err != nil {
		apperror.Respond(c, apperror.Internal("Failed to retrieve doctors", err))
		return
	}
	views := make([]any, 0, len(doctors))
	for i := range doctors {
		views = append(views, doctors[i].View())
	}
	c.JSON(http.StatusOK, gin.H{"doctors": views})
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, err := idParam(c, "id", "Doctor")
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	d, err := h.Store.FindDoctorByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		apperror.Respond(c, apperror.NotFound("Doctor not found"))
		return
	}
	if err != nil {
		apperror.Respond(c, apperror.Internal("Failed to retrieve doctor", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"doctor": d.View()})
}
