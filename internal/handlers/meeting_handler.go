package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/telecare-api/internal/apperror"
	"go.uber.org/zap"
)

// CreateMeeting opens a conferencing room and returns it with a join token.
func (h *Handler) CreateMeeting(c *gin.Context) {
	roomID, err := h.Meetings.CreateRoom(c.Request.Context())
	if err != nil {
		h.Logger.Error("create room failed", zap.Error(err))
		apperror.Respond(c, apperror.Upstream("Failed to create meeting room", err))
		return
	}
	token, err := h.Meetings.GenerateToken()
	if err != nil {
		apperror.Respond(c, apperror.Upstream("Failed to generate meeting token", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"meetingId": roomID, "token": token})
}
