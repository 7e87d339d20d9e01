package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/harentsoaR/telecare-api/internal/models"
	"github.com/harentsoaR/telecare-api/internal/repository"
	"go.uber.org/zap"
)

// ReminderLead is how far ahead of its start a confirmed appointment gets
// its reminder.
const ReminderLead = time.Hour

// AppointmentReminder sends one SMS reminder per confirmed appointment.
type AppointmentReminder struct {
	store    repository.AppointmentStore
	notifier AppointmentNotifier
	logger   *zap.Logger
	loc      *time.Location
}

func NewAppointmentReminder(store repository.AppointmentStore, notifier AppointmentNotifier, logger *zap.Logger) *AppointmentReminder {
	return &AppointmentReminder{
		store:    store,
		notifier: notifier,
		logger:   logger,
		loc:      time.Local,
	}
}

// StartReminderCron runs SendAppointmentReminders every interval. Callers
// stop the returned scheduler on shutdown.
func (ar *AppointmentReminder) StartReminderCron(interval time.Duration) (*gocron.Scheduler, error) {
	scheduler := gocron.NewScheduler(ar.loc)
	scheduler.SingletonModeAll()

	_, err := scheduler.Every(interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()
		sent, err := ar.SendAppointmentReminders(ctx, time.Now().In(ar.loc))
		if err != nil {
			ar.logger.Error("appointment reminder run failed", zap.Error(err))
			return
		}
		ar.logger.Debug("appointment reminder run", zap.Int("sent", sent))
	})
	if err != nil {
		return nil, fmt.Errorf("schedule reminders: %w", err)
	}

	scheduler.StartAsync()
	ar.logger.Info("appointment reminder cron started", zap.Duration("interval", interval))
	return scheduler, nil
}

// SendAppointmentReminders reminds every confirmed appointment starting
// within ReminderLead of now and marks it so it is never reminded twice.
// It returns how many reminders went out.
func (ar *AppointmentReminder) SendAppointmentReminders(ctx context.Context, now time.Time) (int, error) {
	appointments, err := ar.store.ListAppointments(ctx, repository.AppointmentFilter{Status: models.StatusConfirmed})
	if err != nil {
		return 0, fmt.Errorf("list confirmed appointments: %w", err)
	}

	sent := 0
	for i := range appointments {
		apt := &appointments[i]
		if apt.ReminderSent {
			continue
		}
		start, err := apt.StartsAt(ar.loc)
		if err != nil {
			ar.logger.Warn("unparseable appointment time", zap.Int64("appointmentId", apt.ID), zap.Error(err))
			continue
		}
		if start.Before(now) || start.After(now.Add(ReminderLead)) {
			continue
		}

		if err := ar.notifier.NotifyReminder(ctx, apt); err != nil {
			ar.logger.Warn("reminder not sent", zap.Int64("appointmentId", apt.ID), zap.Error(err))
			continue
		}
		apt.ReminderSent = true
		if err := ar.store.SaveAppointment(ctx, apt); err != nil {
			return sent, fmt.Errorf("mark appointment %d reminded: %w", apt.ID, err)
		}
		sent++
	}
	return sent, nil
}
