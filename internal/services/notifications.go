package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/harentsoaR/telecare-api/internal/models"
	"go.uber.org/zap"
)

const textbeltURL = "https://textbelt.com/text"

// AppointmentNotifier tells patients about their appointments.
type AppointmentNotifier interface {
	NotifyStatusChange(apt *models.Appointment)
	NotifyReminder(ctx context.Context, apt *models.Appointment) error
}

// NotificationService sends SMS through Textbelt.
type NotificationService struct {
	apiKey   string
	endpoint string
	client   *http.Client
	logger   *zap.Logger
	wg       sync.WaitGroup
}

func NewNotificationService(apiKey string, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		apiKey:   apiKey,
		endpoint: textbeltURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

// WithEndpoint points the service at another Textbelt-compatible URL.
func (s *NotificationService) WithEndpoint(url string) *NotificationService {
	s.endpoint = url
	return s
}

// NotifyStatusChange sends the SMS in the background so it never delays the
// API response.
func (s *NotificationService) NotifyStatusChange(apt *models.Appointment) {
	msg := fmt.Sprintf("Appointment %s: %s with %s on %s at %s.",
		apt.Status, apt.PatientName, apt.DoctorName, apt.Date, apt.Time)
	phone := apt.Mobile

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.SendSMS(ctx, phone, msg); err != nil {
			s.logger.Warn("status sms not sent", zap.Int64("appointmentId", apt.ID), zap.Error(err))
		}
	}()
}

func (s *NotificationService) NotifyReminder(ctx context.Context, apt *models.Appointment) error {
	msg := fmt.Sprintf("Reminder: %s has a %s consultation with %s on %s at %s.",
		apt.PatientName, apt.ConsultationType, apt.DoctorName, apt.Date, apt.Time)
	return s.SendSMS(ctx, apt.Mobile, msg)
}

var (
	ErrNoPhone       = errors.New("no phone number")
	ErrSMSDisabled   = errors.New("TEXTBELT_API_KEY is not configured")
	errTextbeltReply = errors.New("textbelt rejected the message")
)

func (s *NotificationService) SendSMS(ctx context.Context, phone, message string) error {
	if phone == "" {
		return ErrNoPhone
	}
	if s.apiKey == "" {
		return ErrSMSDisabled
	}

	body, err := json.Marshal(map[string]string{
		"phone":   phone,
		"message": message,
		"key":     s.apiKey,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("textbelt request: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("textbelt response: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("%w: %s", errTextbeltReply, result.Error)
	}
	s.logger.Info("sms sent", zap.String("phone", phone))
	return nil
}

// Wait blocks until background sends have finished.
func (s *NotificationService) Wait() {
	s.wg.Wait()
}
