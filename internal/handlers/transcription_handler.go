package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/telecare-api/internal/apperror"
	"github.com/harentsoaR/telecare-api/internal/services"
)

func transcriptionError(err error) error {
	switch {
	case errors.Is(err, services.ErrSessionExists):
		return apperror.Conflict("Transcription already running for this meeting")
	case errors.Is(err, services.ErrSessionNotFound):
		return apperror.NotFound("No transcription running for this meeting")
	case errors.Is(err, services.ErrInvalidMeetingID):
		return apperror.Validation("Invalid meeting id")
	default:
		return apperror.Upstream("Transcription provider error", err)
	}
}

func (h *Handler) StartTranscription(c *gin.Context) {
	meetingID := c.Param("meetingId")
	if _, err := h.Transcripts.Start(c.Request.Context(), meetingID); err != nil {
		apperror.Respond(c, transcriptionError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Transcription started", "meetingId": meetingID})
}

func (h *Handler) StopTranscription(c *gin.Context) {
	meetingID := c.Param("meetingId")
	path, err := h.Transcripts.Stop(c.Request.Context(), meetingID)
	if err != nil {
		apperror.Respond(c, transcriptionError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Transcription stopped", "meetingId": meetingID, "transcript": path})
}

// TranscriptionEvent is what the provider posts to the webhook. Text events
// carry participantName and text. State events carry only status.
type TranscriptionEvent struct {
	MeetingID       string `json:"meetingId"`
	RoomID          string `json:"roomId"`
	ParticipantName string `json:"participantName"`
	Text            string `json:"text"`
	Status          string `json:"status"`
}

// TranscriptionWebhook appends provider events to the running session.
func (h *Handler) TranscriptionWebhook(c *gin.Context) {
	if h.WebhookToken != "" &&
		subtle.ConstantTimeCompare([]byte(c.Query("token")), []byte(h.WebhookToken)) != 1 {
		apperror.Respond(c, apperror.Unauthenticated("Invalid webhook token"))
		return
	}

	var ev TranscriptionEvent
	if err := bindJSON(c, &ev); err != nil {
		apperror.Respond(c, err)
		return
	}
	meetingID := ev.MeetingID
	if meetingID == "" {
		meetingID = ev.RoomID
	}
	if meetingID == "" {
		apperror.Respond(c, apperror.Validation("Missing fields: meetingId"))
		return
	}

	var line string
	switch text := strings.TrimSpace(ev.Text); {
	case text != "" && ev.ParticipantName != "":
		line = ev.ParticipantName + ": " + text
	case text != "":
		line = text
	case ev.Status != "":
		line = "State changed: " + ev.Status
	default:
		apperror.Respond(c, apperror.Validation("Missing fields: text"))
		return
	}

	if err := h.Transcripts.Append(meetingID, line); err != nil {
		apperror.Respond(c, transcriptionError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
