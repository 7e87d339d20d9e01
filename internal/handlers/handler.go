package handlers

import (
	"context"

	"github.com/harentsoaR/telecare-api/internal/repository"
	"github.com/harentsoaR/telecare-api/internal/services"
	"github.com/harentsoaR/telecare-api/internal/utils"
	"go.uber.org/zap"
)

// MeetingProvider creates conferencing rooms and join tokens.
type MeetingProvider interface {
	GenerateToken() (string, error)
	CreateRoom(ctx context.Context) (string, error)
}

// Handler carries the dependencies shared by every route.
type Handler struct {
	Store        repository.Store
	Codec        *utils.TokenCodec
	Resolver     *services.AccountResolver
	Notifier     services.AppointmentNotifier
	Meetings     MeetingProvider
	Transcripts  *services.TranscriptionManager
	WebhookToken string
	Logger       *zap.Logger
}

func NewHandler(store repository.Store, codec *utils.TokenCodec, notifier services.AppointmentNotifier, logger *zap.Logger) *Handler {
	return &Handler{
		Store:    store,
		Codec:    codec,
		Resolver: services.NewAccountResolver(store),
		Notifier: notifier,
		Logger:   logger,
	}
}
